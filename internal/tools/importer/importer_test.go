package importer

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/louisbranch/iconhost/internal/services/iconhost/storage"
	iconsqlite "github.com/louisbranch/iconhost/internal/services/iconhost/storage/sqlite"
)

const (
	squareSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><rect width="20" height="20" x="2" y="2"/></svg>`
	circleSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24"><circle cx="12" cy="12" r="10"/></svg>`
)

func writePack(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "shapes")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatalf("mkdir pack: %v", err)
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return dir
}

func TestParseConfigRequiresDir(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("icon-importer", flag.ContinueOnError)
	if _, err := ParseConfig(fs, nil); err == nil {
		t.Fatal("expected dir error")
	}
}

func TestParseConfigDefaults(t *testing.T) {
	t.Parallel()

	fs := flag.NewFlagSet("icon-importer", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-dir", "pack", "-no-replace"})
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.DBPath != filepath.Join("data", "icons.db") {
		t.Fatalf("DBPath = %q", cfg.DBPath)
	}
	if !cfg.NoReplace || cfg.DryRun {
		t.Fatalf("flags = %+v", cfg)
	}
	if cfg.Timeout <= 0 {
		t.Fatalf("Timeout = %s, want positive default", cfg.Timeout)
	}
}

func TestRunDryRunDoesNotWrite(t *testing.T) {
	t.Parallel()

	dir := writePack(t, map[string]string{"square.svg": squareSVG, "circle.svg": circleSVG})
	dbPath := filepath.Join(t.TempDir(), "icons.db")
	var out bytes.Buffer
	if err := Run(context.Background(), Config{Dir: dir, DBPath: dbPath, DryRun: true}, &out); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := out.String(); got != "validated 2 icon(s)\n" {
		t.Fatalf("output = %q", got)
	}
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatalf("dry run should not create the database, stat err = %v", err)
	}
}

func TestRunImportsManifestPack(t *testing.T) {
	t.Parallel()

	dir := writePack(t, map[string]string{
		"square.svg": squareSVG,
		"round.svg":  circleSVG,
		"manifest.yaml": `icons:
  - name: square
    label: Square
    description: Four equal sides.
  - name: circle
    file: round.svg
`,
	})
	dbPath := filepath.Join(t.TempDir(), "icons.db")
	var out bytes.Buffer
	if err := Run(context.Background(), Config{Dir: dir, DBPath: dbPath}, &out); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.HasPrefix(out.String(), "imported 2 icon(s) into ") {
		t.Fatalf("output = %q", out.String())
	}

	store, err := iconsqlite.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	square, err := store.GetIcon(context.Background(), "square")
	if err != nil {
		t.Fatalf("get square: %v", err)
	}
	if square.Label != "Square" || square.Description != "Four equal sides." || square.Source != "shapes" {
		t.Fatalf("square = %+v", square)
	}
	asset, err := store.Load(context.Background(), "circle")
	if err != nil {
		t.Fatalf("load circle: %v", err)
	}
	if asset.Body != `<circle cx="12" cy="12" r="10"/>` {
		t.Fatalf("circle body = %q", asset.Body)
	}
}

func TestRunNoReplaceSkipsExisting(t *testing.T) {
	t.Parallel()

	dir := writePack(t, map[string]string{"square.svg": squareSVG})
	dbPath := filepath.Join(t.TempDir(), "icons.db")

	store, err := iconsqlite.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	if err := store.PutIcon(context.Background(), storage.Icon{Name: "square", Label: "Kept", SVG: []byte(circleSVG)}); err != nil {
		t.Fatalf("seed icon: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	var out bytes.Buffer
	if err := Run(context.Background(), Config{Dir: dir, DBPath: dbPath, NoReplace: true, Source: "custom"}, &out); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "imported 0 icon(s)") || !strings.Contains(out.String(), "skipped 1 existing") {
		t.Fatalf("output = %q", out.String())
	}

	store, err = iconsqlite.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer store.Close()
	got, err := store.GetIcon(context.Background(), "square")
	if err != nil {
		t.Fatalf("get square: %v", err)
	}
	if got.Label != "Kept" {
		t.Fatalf("label = %q, want Kept", got.Label)
	}
}

func TestRunRejectsInvalidPacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{name: "empty", files: map[string]string{"notes.txt": "x"}, wantErr: "no manifest and no svg files"},
		{name: "invalid svg", files: map[string]string{"bad.svg": `<svg><script>x()</script></svg>`}, wantErr: `icon "bad"`},
		{name: "missing file", files: map[string]string{"manifest.yaml": "icons:\n  - name: ghost\n"}, wantErr: `icon "ghost"`},
		{
			name:    "duplicate",
			files:   map[string]string{"a.svg": squareSVG, "manifest.yaml": "icons:\n  - name: a\n  - name: a\n"},
			wantErr: "listed twice",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			dir := writePack(t, tc.files)
			err := Run(context.Background(), Config{Dir: dir, DryRun: true}, nil)
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Run() error = %v, want containing %q", err, tc.wantErr)
			}
		})
	}
}

// Package importer loads an icon pack directory into the SQLite icon store.
package importer

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/iconhost/internal/platform/icons"
	"github.com/louisbranch/iconhost/internal/platform/timeouts"
	"github.com/louisbranch/iconhost/internal/services/iconhost/storage"
	iconsqlite "github.com/louisbranch/iconhost/internal/services/iconhost/storage/sqlite"
)

// Config holds configuration for the icon importer.
type Config struct {
	Dir    string
	DBPath string
	// Source labels imported icons; defaults to the directory base name.
	Source    string
	DryRun    bool
	NoReplace bool
	Timeout   time.Duration
}

// ParseConfig parses CLI flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{
		DBPath:  filepath.Join("data", "icons.db"),
		Timeout: timeouts.Import,
	}

	fs.StringVar(&cfg.Dir, "dir", "", "icon pack directory (*.svg files, optional manifest.yaml)")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "icon database path")
	fs.StringVar(&cfg.Source, "source", "", "source label stored with each icon")
	fs.BoolVar(&cfg.DryRun, "dry-run", false, "validate without writing to the database")
	fs.BoolVar(&cfg.NoReplace, "no-replace", false, "skip icons that already exist instead of replacing them")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "overall import timeout")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.Dir) == "" {
		return Config{}, errors.New("dir is required")
	}
	return cfg, nil
}

// Result counts what an import did.
type Result struct {
	Imported int
	Skipped  int
}

// Run executes the importer using the provided Config.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if out == nil {
		out = io.Discard
	}
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		return errors.New("dir is required")
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	source := strings.TrimSpace(cfg.Source)
	if source == "" {
		source = filepath.Base(filepath.Clean(dir))
	}
	records, err := readPack(os.DirFS(dir), source)
	if err != nil {
		return fmt.Errorf("read %s: %w", dir, err)
	}

	if cfg.DryRun {
		_, err = fmt.Fprintf(out, "validated %d icon(s)\n", len(records))
		return err
	}

	store, err := iconsqlite.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open icon store: %w", err)
	}
	defer store.Close()

	result, err := importIcons(ctx, store, records, cfg.NoReplace)
	if err != nil {
		return err
	}
	if result.Skipped > 0 {
		_, err = fmt.Fprintf(out, "imported %d icon(s) into %s, skipped %d existing\n", result.Imported, cfg.DBPath, result.Skipped)
		return err
	}
	_, err = fmt.Fprintf(out, "imported %d icon(s) into %s\n", result.Imported, cfg.DBPath)
	return err
}

// readPack reads and validates every icon the pack lists.
func readPack(fsys fs.FS, source string) ([]storage.Icon, error) {
	manifest, err := icons.ReadManifest(fsys)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(manifest.Icons))
	records := make([]storage.Icon, 0, len(manifest.Icons))
	for _, entry := range manifest.Icons {
		if _, dup := seen[entry.Name]; dup {
			return nil, fmt.Errorf("icon %q is listed twice", entry.Name)
		}
		seen[entry.Name] = struct{}{}

		data, err := fs.ReadFile(fsys, entry.File)
		if err != nil {
			return nil, fmt.Errorf("icon %q: %w", entry.Name, err)
		}
		if _, err := icons.ParseSVG(entry.Name, data); err != nil {
			return nil, fmt.Errorf("icon %q: %w", entry.Name, err)
		}
		records = append(records, storage.Icon{
			Name:        entry.Name,
			Label:       entry.Label,
			Description: entry.Description,
			Source:      source,
			SVG:         data,
		})
	}
	return records, nil
}

func importIcons(ctx context.Context, store storage.IconStore, records []storage.Icon, noReplace bool) (Result, error) {
	var result Result
	now := time.Now().UTC()
	for _, record := range records {
		record.CreatedAt = now
		record.UpdatedAt = now
		if noReplace {
			err := store.CreateIcon(ctx, record)
			if errors.Is(err, storage.ErrAlreadyExists) {
				result.Skipped++
				continue
			}
			if err != nil {
				return result, fmt.Errorf("create icon %s: %w", record.Name, err)
			}
			result.Imported++
			continue
		}
		if err := store.PutIcon(ctx, record); err != nil {
			return result, fmt.Errorf("put icon %s: %w", record.Name, err)
		}
		result.Imported++
	}
	return result, nil
}

// Command icondocgen writes the icon catalog as a markdown page.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/louisbranch/iconhost/internal/platform/config"
	"github.com/louisbranch/iconhost/internal/platform/icons"
	iconsqlite "github.com/louisbranch/iconhost/internal/services/iconhost/storage/sqlite"
)

const frontMatter = `---
title: "Icon Catalog"
parent: "Project"
nav_order: 30
---

`

func main() {
	config.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) error {
	var (
		outPath  string
		rootFlag string
		iconDir  string
		dbPath   string
	)
	flags := flag.NewFlagSet("icondocgen", flag.ContinueOnError)
	flags.StringVar(&outPath, "out", "docs/project/icon-catalog.md", "output path for the icon catalog (- for stdout)")
	flags.StringVar(&rootFlag, "root", "", "repo root (defaults to locating go.mod)")
	flags.StringVar(&iconDir, "icon-dir", "", "directory icon pack listed ahead of the embedded pack")
	flags.StringVar(&dbPath, "db-path", "", "SQLite icon store listed ahead of every pack")
	flags.SetOutput(stderr)
	if err := flags.Parse(args); err != nil {
		return err
	}

	library, closeLibrary, err := openLibrary(ctx, dbPath, iconDir)
	if err != nil {
		return err
	}
	defer closeLibrary()

	defs, err := library.List(ctx)
	if err != nil {
		return fmt.Errorf("list icons: %w", err)
	}
	content := frontMatter + icons.CatalogMarkdown(defs)

	if outPath == "-" {
		_, err := io.WriteString(stdout, content)
		return err
	}
	root, err := resolveRoot(rootFlag)
	if err != nil {
		return err
	}
	output := outPath
	if !filepath.IsAbs(output) {
		output = filepath.Join(root, outPath)
	}
	return writeOutput(output, content)
}

func openLibrary(ctx context.Context, dbPath, iconDir string) (icons.Chain, func(), error) {
	var chain icons.Chain
	closeFn := func() {}
	if path := strings.TrimSpace(dbPath); path != "" {
		store, err := iconsqlite.Open(ctx, path)
		if err != nil {
			return nil, closeFn, fmt.Errorf("open icon store: %w", err)
		}
		chain = append(chain, store)
		closeFn = func() { _ = store.Close() }
	}
	if dir := strings.TrimSpace(iconDir); dir != "" {
		pack, err := icons.LoadFS(os.DirFS(dir), dir)
		if err != nil {
			closeFn()
			return nil, func() {}, fmt.Errorf("load icon dir: %w", err)
		}
		chain = append(chain, pack)
	}
	embedded, err := icons.NewEmbedded()
	if err != nil {
		closeFn()
		return nil, func() {}, err
	}
	return append(chain, embedded), closeFn, nil
}

func writeOutput(output, content string) error {
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(output, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

// resolveRoot picks the directory relative output paths are joined to.
func resolveRoot(flagRoot string) (string, error) {
	if flagRoot != "" {
		return filepath.Clean(flagRoot), nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working dir: %w", err)
	}
	return findModuleRoot(wd)
}

func findModuleRoot(start string) (string, error) {
	for dir := start; ; {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("go.mod not found above %s", start)
		}
		dir = parent
	}
}

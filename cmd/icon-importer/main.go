// Package main imports an icon pack directory into the iconhost SQLite store.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/louisbranch/iconhost/internal/platform/config"
	"github.com/louisbranch/iconhost/internal/tools/importer"
)

func main() {
	cfg, err := importer.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exit(err)
	}
	config.Exit(importer.Run(context.Background(), cfg, os.Stdout))
}

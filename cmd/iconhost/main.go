// Package main starts the iconhost service.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	iconhostcmd "github.com/louisbranch/iconhost/internal/cmd/iconhost"
	entrypoint "github.com/louisbranch/iconhost/internal/platform/cmd"
)

func main() {
	cfg, err := iconhostcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix(entrypoint.LogPrefix(entrypoint.ServiceIconhost))
	ctx, stop := entrypoint.SignalContext(context.Background())
	defer stop()
	if err := iconhostcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}

// Package iconhost parses iconhost service flags and launches the service.
package iconhost

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/iconhost/internal/platform/cmd"
	"github.com/louisbranch/iconhost/internal/platform/icons"
	"github.com/louisbranch/iconhost/internal/platform/timeouts"
	server "github.com/louisbranch/iconhost/internal/services/iconhost"
	iconsqlite "github.com/louisbranch/iconhost/internal/services/iconhost/storage/sqlite"
)

// DefaultHTMXScriptURL serves htmx when no self-hosted copy is configured.
const DefaultHTMXScriptURL = "https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"

// Config holds iconhost command configuration.
type Config struct {
	HTTPAddr       string        `env:"HTTP_ADDR"       envDefault:"localhost:8090"`
	GRPCAddr       string        `env:"GRPC_ADDR"       envDefault:"localhost:8091"`
	DBPath         string        `env:"DB_PATH"`
	IconDir        string        `env:"ICON_DIR"`
	ResolveTimeout time.Duration `env:"RESOLVE_TIMEOUT" envDefault:"2s"`
	InlineWait     time.Duration `env:"INLINE_WAIT"     envDefault:"50ms"`
	HTMXScriptURL  string        `env:"HTMX_SCRIPT_URL" envDefault:"https://unpkg.com/htmx.org@2.0.4/dist/htmx.min.js"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "gRPC health listen address (empty disables)")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite icon store path (empty disables)")
	fs.StringVar(&cfg.IconDir, "icon-dir", cfg.IconDir, "directory icon pack (empty disables)")
	fs.DurationVar(&cfg.ResolveTimeout, "resolve-timeout", cfg.ResolveTimeout, "how long an icon fragment waits for its lookup")
	fs.DurationVar(&cfg.InlineWait, "inline-wait", cfg.InlineWait, "how long the gallery waits before rendering lazy placeholders")
	fs.StringVar(&cfg.HTMXScriptURL, "htmx-script-url", cfg.HTMXScriptURL, "htmx script URL")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Library is an icon library plus whatever it holds open.
type Library struct {
	icons.Chain
	closers []io.Closer
}

// Close releases the library's stores.
func (l *Library) Close() error {
	if l == nil {
		return nil
	}
	var firstErr error
	for _, closer := range l.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// OpenLibrary builds the lookup chain: the SQLite store first, then the
// directory pack, then the embedded pack.
func OpenLibrary(ctx context.Context, cfg Config) (*Library, error) {
	lib := &Library{}
	if path := strings.TrimSpace(cfg.DBPath); path != "" {
		store, err := iconsqlite.Open(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("open icon store: %w", err)
		}
		lib.Chain = append(lib.Chain, store)
		lib.closers = append(lib.closers, store)
	}
	if dir := strings.TrimSpace(cfg.IconDir); dir != "" {
		pack, err := icons.LoadFS(os.DirFS(dir), dir)
		if err != nil {
			_ = lib.Close()
			return nil, fmt.Errorf("load icon dir: %w", err)
		}
		lib.Chain = append(lib.Chain, pack)
	}
	embedded, err := icons.NewEmbedded()
	if err != nil {
		_ = lib.Close()
		return nil, fmt.Errorf("load embedded icons: %w", err)
	}
	lib.Chain = append(lib.Chain, embedded)
	return lib, nil
}

// Run starts the iconhost HTTP and gRPC health service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceIconhost, func(ctx context.Context) error {
		lib, err := OpenLibrary(ctx, cfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := lib.Close(); err != nil {
				log.Printf("close icon library: %v", err)
			}
		}()

		resolveTimeout := cfg.ResolveTimeout
		if resolveTimeout <= 0 {
			resolveTimeout = timeouts.ResolveFragment
		}
		srv, err := server.NewServer(ctx, server.Config{
			HTTPAddr:       cfg.HTTPAddr,
			GRPCAddr:       cfg.GRPCAddr,
			Library:        lib,
			ResolveTimeout: resolveTimeout,
			InlineWait:     cfg.InlineWait,
			HTMXScriptURL:  cfg.HTMXScriptURL,
		})
		if err != nil {
			return err
		}
		defer srv.Close()
		return srv.ListenAndServe(ctx)
	})
}

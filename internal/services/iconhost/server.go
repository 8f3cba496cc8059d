// Package iconhost serves the icon catalog over HTTP: a gallery page, settled
// icon fragments for htmx swaps, raw SVG documents and the catalog listing.
package iconhost

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/iconhost/internal/platform/icons"
	"github.com/louisbranch/iconhost/internal/platform/timeouts"
	platformgrpc "github.com/louisbranch/iconhost/internal/platform/grpc"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

// HealthServiceName is the gRPC health service name reported for the catalog.
const HealthServiceName = "iconhost.v1.IconCatalog"

// Config defines startup inputs for the iconhost service.
type Config struct {
	HTTPAddr string
	// GRPCAddr enables the gRPC health endpoint when set.
	GRPCAddr       string
	Library        icons.Library
	ResolveTimeout time.Duration
	InlineWait     time.Duration
	HTMXScriptURL  string
	Logger         *log.Logger
	Tracer         trace.Tracer
}

func (c Config) logger() *log.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return log.Default()
}

// Server hosts the iconhost HTTP surface, the optional gRPC health endpoint
// and their lifecycle.
type Server struct {
	httpAddr     string
	httpServer   *http.Server
	grpcListener net.Listener
	grpcServer   *grpc.Server
	health       *health.Server
	logger       *log.Logger
}

// NewServer validates config, checks that the catalog lists, and constructs
// an iconhost server.
func NewServer(ctx context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	handler, err := NewHandler(cfg)
	if err != nil {
		return nil, fmt.Errorf("compose iconhost handler: %w", err)
	}
	defs, err := cfg.Library.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list icon catalog: %w", err)
	}
	logger := cfg.logger()
	logger.Printf("icon catalog loaded icons=%d", len(defs))

	s := &Server{
		httpAddr: httpAddr,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           handler,
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		logger: logger,
	}

	if grpcAddr := strings.TrimSpace(cfg.GRPCAddr); grpcAddr != "" {
		listener, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			return nil, fmt.Errorf("listen on %s: %w", grpcAddr, err)
		}
		s.grpcListener = listener
		s.grpcServer, s.health = platformgrpc.NewHealthServer(HealthServiceName)
		platformgrpc.SetServing(s.health, true, HealthServiceName)
	}
	return s, nil
}

// GRPCAddr returns the gRPC listener address, or "" when disabled.
func (s *Server) GRPCAddr() string {
	if s == nil || s.grpcListener == nil {
		return ""
	}
	return s.grpcListener.Addr().String()
}

// ListenAndServe serves traffic until context cancellation or server stop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("iconhost server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 2)
	go func() {
		s.logger.Printf("iconhost http listening at %s", s.httpAddr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("serve iconhost http: %w", err)
			return
		}
		serveErr <- nil
	}()
	if s.grpcServer != nil {
		go func() {
			s.logger.Printf("iconhost grpc listening at %s", s.grpcListener.Addr())
			if err := s.grpcServer.Serve(s.grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				serveErr <- fmt.Errorf("serve iconhost grpc: %w", err)
				return
			}
			serveErr <- nil
		}()
	}

	select {
	case <-ctx.Done():
		return s.shutdown()
	case err := <-serveErr:
		shutdownErr := s.shutdown()
		if err != nil {
			return err
		}
		return shutdownErr
	}
}

func (s *Server) shutdown() error {
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.GracefulStop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown iconhost http server: %w", err)
	}
	return nil
}

// Close closes open server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.grpcListener != nil {
		_ = s.grpcListener.Close()
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
}

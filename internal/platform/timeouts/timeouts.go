// Package timeouts defines the timeout constants shared by iconhost servers
// and commands.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long servers wait for in-flight requests during
// graceful shutdown.
const Shutdown = 5 * time.Second

// ResolveFragment caps how long a fragment request waits for one lookup.
const ResolveFragment = 2 * time.Second

// Import caps one icon pack import run.
const Import = time.Minute

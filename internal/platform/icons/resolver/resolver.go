// Package resolver resolves icon names to assets asynchronously.
//
// A Resolver belongs to one consumer (one mounted icon view). Each distinct
// name it is asked for moves through Pending and then Resolved or Failed.
// Asking for a new name supersedes the previous lookup: its context is
// cancelled and, whatever it eventually returns, its result is dropped.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"sync"

	"github.com/louisbranch/iconhost/internal/platform/icons"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/iconhost/internal/platform/icons/resolver"

// ErrNoRequest is returned by Wait before the first Request.
var ErrNoRequest = errors.New("resolver has no request")

// State is the lifecycle stage of one resolution.
type State int

const (
	// StateIdle means no name has been requested yet.
	StateIdle State = iota
	// StatePending means a lookup is in flight.
	StatePending
	// StateResolved means the lookup produced an asset.
	StateResolved
	// StateFailed means the lookup found nothing or errored.
	StateFailed
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePending:
		return "pending"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is an immutable view of a resolver's state.
type Snapshot struct {
	Name  string
	State State
	// Token identifies the request that produced this snapshot.
	Token uint64
	asset icons.Asset
}

// Loading reports whether the lookup for Name is still in flight.
func (s Snapshot) Loading() bool {
	return s.State == StatePending
}

// Asset returns the resolved asset, if any.
func (s Snapshot) Asset() (icons.Asset, bool) {
	if s.State != StateResolved {
		return icons.Asset{}, false
	}
	return s.asset, true
}

// Settled reports whether the lookup reached a terminal state.
func (s Snapshot) Settled() bool {
	return s.State == StateResolved || s.State == StateFailed
}

// Resolved builds a settled snapshot for an already known asset.
func Resolved(name string, asset icons.Asset) Snapshot {
	return Snapshot{Name: name, State: StateResolved, asset: asset}
}

// Failed builds a settled snapshot with no asset.
func Failed(name string) Snapshot {
	return Snapshot{Name: name, State: StateFailed}
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used to report failed lookups.
func WithLogger(logger *log.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTracer sets the tracer used for lookup spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Resolver) {
		if tracer != nil {
			r.tracer = tracer
		}
	}
}

// Resolver tracks the resolution of the most recently requested icon name.
type Resolver struct {
	source icons.Source
	logger *log.Logger
	tracer trace.Tracer

	mu      sync.Mutex
	current Snapshot
	token   uint64
	cancel  context.CancelFunc
	settled chan struct{}
	closed  bool
	nextSub int
	subs    map[int]func(Snapshot)

	// Transitions waiting for observer delivery, drained by one goroutine at
	// a time so observers see them in order without holding mu.
	queue      []Snapshot
	delivering bool
}

// New returns a resolver that loads assets from source.
func New(source icons.Source, opts ...Option) *Resolver {
	r := &Resolver{
		source: source,
		logger: log.New(io.Discard, "", 0),
		tracer: otel.Tracer(tracerName),
		subs:   make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Request asks for name and returns the current snapshot.
//
// The first request for a name moves the resolver to Pending and dispatches
// exactly one lookup. Repeating the current name is a no-op.
func (r *Resolver) Request(ctx context.Context, name string) Snapshot {
	if ctx == nil {
		ctx = context.Background()
	}
	r.mu.Lock()
	if r.closed || (r.token > 0 && r.current.Name == name) {
		snap := r.current
		r.mu.Unlock()
		return snap
	}

	r.releaseLocked()
	r.token++
	token := r.token
	lookupCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.settled = make(chan struct{})
	r.current = Snapshot{Name: name, State: StatePending, Token: token}
	snap := r.current
	drain := r.enqueueLocked(snap)
	r.mu.Unlock()

	go r.lookup(lookupCtx, token, name)

	if drain {
		r.drain()
	}
	return snap
}

// Snapshot returns the current state.
func (r *Resolver) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Subscribe registers fn to be called after every applied transition.
//
// Callbacks run one at a time, in transition order, without any resolver
// lock held.
func (r *Resolver) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	if fn == nil {
		return func() {}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return func() {}
	}
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

// Wait blocks until the current request settles or ctx ends.
//
// If the name changes while waiting, Wait follows the newer request.
func (r *Resolver) Wait(ctx context.Context) (Snapshot, error) {
	for {
		r.mu.Lock()
		if r.token == 0 {
			r.mu.Unlock()
			return Snapshot{}, ErrNoRequest
		}
		if r.closed || r.current.Settled() {
			snap := r.current
			r.mu.Unlock()
			return snap, nil
		}
		settled := r.settled
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return r.Snapshot(), ctx.Err()
		case <-settled:
		}
	}
}

// Close unmounts the resolver. The in-flight lookup is cancelled and its
// result discarded; later requests are ignored.
func (r *Resolver) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	r.releaseLocked()
	r.subs = map[int]func(Snapshot){}
	r.queue = nil
}

func (r *Resolver) lookup(ctx context.Context, token uint64, name string) {
	ctx, span := r.tracer.Start(ctx, "icons.resolve", trace.WithAttributes(attribute.String("icon.name", name)))
	defer span.End()

	asset, err := r.load(ctx, name)

	r.mu.Lock()
	if r.closed || token != r.token {
		r.mu.Unlock()
		span.SetAttributes(attribute.Bool("icon.superseded", true))
		return
	}
	if err != nil {
		r.current = Snapshot{Name: name, State: StateFailed, Token: token}
	} else {
		r.current = Snapshot{Name: name, State: StateResolved, Token: token, asset: asset}
	}
	r.releaseLocked()
	snap := r.current
	drain := r.enqueueLocked(snap)
	r.mu.Unlock()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "icon lookup failed")
		r.logger.Printf("icon lookup failed name=%q error=%v", name, err)
	}
	span.SetAttributes(attribute.String("icon.state", snap.State.String()))
	if drain {
		r.drain()
	}
}

func (r *Resolver) load(ctx context.Context, name string) (asset icons.Asset, err error) {
	if r.source == nil {
		return icons.Asset{}, fmt.Errorf("%w: %q (no source)", icons.ErrNotFound, name)
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("icon source panicked: %v", recovered)
		}
	}()
	return r.source.Load(ctx, name)
}

// releaseLocked cancels the in-flight lookup and wakes its waiters.
func (r *Resolver) releaseLocked() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	if r.settled != nil {
		close(r.settled)
		r.settled = nil
	}
}

// enqueueLocked queues snap for observers and reports whether the caller
// must drain the queue.
func (r *Resolver) enqueueLocked(snap Snapshot) bool {
	if len(r.subs) == 0 && !r.delivering {
		return false
	}
	r.queue = append(r.queue, snap)
	if r.delivering {
		return false
	}
	r.delivering = true
	return true
}

func (r *Resolver) drain() {
	for {
		r.mu.Lock()
		if len(r.queue) == 0 {
			r.delivering = false
			r.mu.Unlock()
			return
		}
		snap := r.queue[0]
		r.queue = r.queue[1:]
		subs := r.subscribersLocked()
		r.mu.Unlock()

		for _, fn := range subs {
			fn(snap)
		}
	}
}

func (r *Resolver) subscribersLocked() []func(Snapshot) {
	ids := make([]int, 0, len(r.subs))
	for id := range r.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(Snapshot), len(ids))
	for i, id := range ids {
		out[i] = r.subs[id]
	}
	return out
}

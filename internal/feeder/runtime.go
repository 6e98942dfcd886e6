package feeder

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"mockspec/internal/expectation"
	"mockspec/pkg/logging"
)

// Option configures a Runtime.
type Option func(*options)

type options struct {
	clock    Clock
	registry prometheus.Registerer
}

// WithClock sets the clock used to stamp received messages.
func WithClock(c Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithRegisterer registers the runtime metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registry = reg }
}

// Runtime routes messages to the endpoints of a set of definitions.
type Runtime struct {
	endpoints map[string]*Endpoint
	order     []string
}

// NewRuntime creates a runtime with one endpoint per definition. Definitions
// are kept in the given order.
func NewRuntime(defs []*expectation.Definition, opts ...Option) (*Runtime, error) {
	o := options{clock: RealClock{}}
	for _, opt := range opts {
		opt(&o)
	}

	metrics, err := NewMetrics(o.registry)
	if err != nil {
		return nil, err
	}

	r := &Runtime{endpoints: make(map[string]*Endpoint, len(defs))}
	for _, def := range defs {
		if _, exists := r.endpoints[def.Endpoint()]; exists {
			return nil, &expectation.MergeConflictError{
				Endpoint:  def.Endpoint(),
				Attribute: "endpoint",
				Message:   "more than one definition for the endpoint",
			}
		}
		r.endpoints[def.Endpoint()] = newEndpoint(def, o.clock, metrics)
		r.order = append(r.order, def.Endpoint())
	}
	return r, nil
}

// Endpoint returns the named endpoint.
func (r *Runtime) Endpoint(name string) (*Endpoint, bool) {
	e, ok := r.endpoints[name]
	return e, ok
}

// Endpoints returns all endpoints in definition order.
func (r *Runtime) Endpoints() []*Endpoint {
	out := make([]*Endpoint, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.endpoints[name])
	}
	return out
}

// Deliver hands msg to the named endpoint.
func (r *Runtime) Deliver(ctx context.Context, endpoint string, msg *expectation.Message) (*expectation.Message, error) {
	e, ok := r.endpoints[endpoint]
	if !ok {
		logging.Warn("Feeder", "Dropping message for unknown endpoint %s", endpoint)
		return nil, &UnknownEndpointError{Endpoint: endpoint}
	}
	return e.Deliver(ctx, msg)
}

// Await waits for every endpoint concurrently and joins their verification
// errors.
func (r *Runtime) Await(ctx context.Context) error {
	errs := make([]error, len(r.order))

	g, gctx := errgroup.WithContext(ctx)
	for i, e := range r.Endpoints() {
		g.Go(func() error {
			errs[i] = e.Await(gctx)
			if errs[i] != nil && !IsVerificationError(errs[i]) {
				return errs[i]
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	joined := errors.Join(errs...)
	if joined == nil {
		logging.Info("Feeder", "All %d endpoints satisfied their expectations", len(r.order))
	}
	return joined
}

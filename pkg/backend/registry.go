package backend

import "context"

// Registry owns the set of active backends for the session. Discovery
// runs once at startup; after that the registry is append-only, so
// concurrent readers need no locking. Re-discovery requires a new
// session.
type Registry struct {
	backends []Backend // registration order, the merge tie-break order
	index    map[string]Backend
	failures []InitFailure
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]Backend),
	}
}

// Register adds an already-initialized backend. Duplicate tags are
// ignored: the first registration wins, keeping merge order stable.
func (r *Registry) Register(b Backend) {
	if _, exists := r.index[b.Tag()]; exists {
		return
	}
	r.backends = append(r.backends, b)
	r.index[b.Tag()] = b
}

// Discover probes each candidate in order and registers those whose
// Initialize succeeds. A failed probe is recorded for diagnostics and
// skipped; a host missing one package manager can still use the
// others. Discover returns a NoBackendsError only when every candidate
// failed.
func (r *Registry) Discover(ctx context.Context, candidates []Backend) error {
	for _, c := range candidates {
		if err := c.Initialize(ctx); err != nil {
			r.failures = append(r.failures, InitFailure{Tag: c.Tag(), Err: err})
			continue
		}
		r.Register(c)
	}
	if len(r.backends) == 0 {
		return &NoBackendsError{Failures: r.failures}
	}
	return nil
}

// Active returns the registered backends in registration order.
func (r *Registry) Active() []Backend {
	out := make([]Backend, len(r.backends))
	copy(out, r.backends)
	return out
}

// Tags returns the registered backend tags in registration order.
func (r *Registry) Tags() []string {
	tags := make([]string, len(r.backends))
	for i, b := range r.backends {
		tags[i] = b.Tag()
	}
	return tags
}

// Get looks up a backend by tag.
func (r *Registry) Get(tag string) (Backend, bool) {
	b, ok := r.index[tag]
	return b, ok
}

// InitFailures returns the discovery failures recorded by Discover,
// in probe order.
func (r *Registry) InitFailures() []InitFailure {
	out := make([]InitFailure, len(r.failures))
	copy(out, r.failures)
	return out
}

package content

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/sitesmith/sitesmith/errs"
)

// Registry is the named collection of content sources for one build.
// InitAll must run before any page queries content.
type Registry struct {
	order   []string
	sources map[string]Source
	inited  bool
}

// NewRegistry creates a registry over the given sources. Source order is
// preserved for deterministic initialization.
func NewRegistry(sources ...Source) (*Registry, error) {
	r := &Registry{sources: make(map[string]Source, len(sources))}
	for _, s := range sources {
		if err := r.Add(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add registers a source. Duplicate names are a configuration error.
func (r *Registry) Add(s Source) error {
	if _, ok := r.sources[s.Name()]; ok {
		return errs.New(errs.CategoryConfig, fmt.Sprintf("content source %q registered twice", s.Name()))
	}
	r.sources[s.Name()] = s
	r.order = append(r.order, s.Name())
	return nil
}

// InitAll initializes every source in registration order. Sources are loaded
// eagerly and sequentially; loaders that want laziness handle it internally.
func (r *Registry) InitAll() error {
	for _, name := range r.order {
		start := time.Now()
		if err := r.sources[name].Init(); err != nil {
			return errs.Wrap(err, errs.CategoryContent, fmt.Sprintf("initializing content source %q", name))
		}
		slog.Debug("content source initialized",
			"source", name,
			"entries", len(r.sources[name].Entries()),
			"elapsed", time.Since(start))
	}
	r.inited = true
	return nil
}

// Initialized reports whether InitAll has completed.
func (r *Registry) Initialized() bool { return r.inited }

// Source looks up a source by name. Querying before InitAll or looking up an
// unregistered name fails.
func (r *Registry) Source(name string) (Source, error) {
	s, ok := r.sources[name]
	if !ok {
		return nil, errs.SourceNotFound(name)
	}
	if !r.inited || !s.Initialized() {
		return nil, errs.SourceNotInitialized(name)
	}
	return s, nil
}

// Names returns the registered source names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

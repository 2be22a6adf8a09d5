// Package source maps channel-fetch strategy names to their implementations,
// so channels configured with different transports (MTProto, web preview)
// resolve to the right fetcher.
package source

import (
	"fmt"

	"VCScanner/internal/ports"
)

// Registry keeps a mapping from strategy names to message sources.
type Registry struct {
	sources map[string]ports.MessageSource
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: map[string]ports.MessageSource{}}
}

// Register adds or replaces a fetch strategy.
func (r *Registry) Register(name string, src ports.MessageSource) {
	if r.sources == nil {
		r.sources = map[string]ports.MessageSource{}
	}
	r.sources[name] = src
}

// Resolve returns a source by strategy name or an error if it is absent.
func (r *Registry) Resolve(name string) (ports.MessageSource, error) {
	if src, ok := r.sources[name]; ok {
		return src, nil
	}
	return nil, fmt.Errorf("source strategy %s is not registered", name)
}

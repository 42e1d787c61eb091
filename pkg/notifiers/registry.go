package notifiers

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nebula-hq/nebula-lead-relay/internal/logger"
)

// Builder creates a Notifier from a config entry.
type Builder func(ctx context.Context, cfg NotifierConfig, log logger.Logger) (Notifier, error)

// Registry maps notifier types to builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// DefaultRegistry wires up all built-in notifier types.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TypeHTTP, newHTTPNotifier)
	r.Register(TypeSQS, newSQSNotifier)
	r.Register(TypeSNS, newSNSNotifier)
	r.Register(TypeGCPPubSub, newGCPPubSubNotifier)
	return r
}

// Register associates a builder with a notifier type.
func (r *Registry) Register(typ string, builder Builder) {
	typ = strings.ToLower(strings.TrimSpace(typ))
	if typ == "" || builder == nil {
		return
	}
	r.mu.Lock()
	r.builders[typ] = builder
	r.mu.Unlock()
}

// Build instantiates a notifier for the config.
func (r *Registry) Build(ctx context.Context, cfg NotifierConfig, log logger.Logger) (Notifier, error) {
	r.mu.RLock()
	builder := r.builders[cfg.Type]
	r.mu.RUnlock()

	if builder == nil {
		return nil, fmt.Errorf("no notifier registered for type %q", cfg.Type)
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return builder(ctx, cfg, log)
}

// BuildAll instantiates notifiers for every config.
func (r *Registry) BuildAll(ctx context.Context, cfgs []NotifierConfig, log logger.Logger) ([]Notifier, error) {
	var out []Notifier
	for _, cfg := range cfgs {
		n, err := r.Build(ctx, cfg, log)
		if err != nil {
			return nil, fmt.Errorf("notifier %q: %w", cfg.ID, err)
		}
		out = append(out, n)
	}
	return out, nil
}

package storage

import (
	"fmt"
	"strings"
	"time"
)

// Package storage provides the local dedupe cache for submitted leads.

// Store tracks fingerprints of leads already relayed to the CRM so the same
// inquiry is not resubmitted within the retention window.
type Store interface {
	Close() error
	SeenLead(fingerprint string) (bool, error)
	MarkLead(fingerprint string) error
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	LeadTTL         time.Duration
	CleanupInterval time.Duration
}

const (
	defaultLeadTTL         = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.LeadTTL <= 0 {
		opts.LeadTTL = defaultLeadTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

// noopStore disables dedupe: every lead looks new.
type noopStore struct{}

func (noopStore) Close() error                  { return nil }
func (noopStore) SeenLead(string) (bool, error) { return false, nil }
func (noopStore) MarkLead(string) error         { return nil }

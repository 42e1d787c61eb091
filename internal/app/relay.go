package app

import (
	"context"
	"fmt"
	"time"

	"github.com/nebula-hq/nebula-lead-relay/internal/config"
	"github.com/nebula-hq/nebula-lead-relay/internal/domain"
	"github.com/nebula-hq/nebula-lead-relay/internal/inquiry"
	"github.com/nebula-hq/nebula-lead-relay/internal/intake"
	"github.com/nebula-hq/nebula-lead-relay/internal/logger"
	"github.com/nebula-hq/nebula-lead-relay/internal/storage"
	"github.com/nebula-hq/nebula-lead-relay/pkg/followupboss"
	"github.com/nebula-hq/nebula-lead-relay/pkg/notifiers"
)

// receiveErrorBackoff spaces out retries when the intake queue is unreachable.
const receiveErrorBackoff = 5 * time.Second

// Source abstracts the intake queue.
type Source interface {
	Receive(ctx context.Context) ([]intake.Message, error)
	Ack(ctx context.Context, msg intake.Message) error
}

// Relay is the lead relay runtime: it pulls lead messages off the intake
// queue, resolves and dedupes them, submits them to Follow Up Boss, and fans
// out a notification per submitted lead.
type Relay struct {
	cfg    *config.Config
	client *followupboss.Client
	source Source
	store  storage.Store
	fanout *notifiers.Fanout
	log    logger.Logger
}

// NewRelay wires the runtime from config.
func NewRelay(ctx context.Context, cfg *config.Config, log logger.Logger) (*Relay, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := followupboss.New(cfg.FollowUpBossAPIKey,
		followupboss.WithBaseURL(cfg.FollowUpBossBaseURL),
		followupboss.WithSystem(cfg.System),
		followupboss.WithTimeout(cfg.FUBTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("init followupboss client: %w", err)
	}

	source, err := intake.NewSQSSource(ctx, cfg.IntakeQueueURL, cfg.IntakeRegion, cfg.IntakeWaitSeconds, log)
	if err != nil {
		return nil, fmt.Errorf("init intake source: %w", err)
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		LeadTTL:         cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"lead_ttl_seconds":         int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	fanout, err := buildFanout(ctx, cfg.NotifiersFile, log)
	if err != nil {
		return nil, err
	}

	return &Relay{
		cfg:    cfg,
		client: client,
		source: source,
		store:  store,
		fanout: fanout,
		log:    log,
	}, nil
}

// buildFanout loads the notifier registry; an empty path disables fanout.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*notifiers.Fanout, error) {
	if path == "" {
		return notifiers.NewFanout(nil), nil
	}

	cfgs, err := notifiers.LoadConfigs(path)
	if err != nil {
		return nil, fmt.Errorf("load notifiers registry: %w", err)
	}
	enabled := notifiers.Enabled(cfgs)

	built, err := notifiers.DefaultRegistry().BuildAll(ctx, enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build notifiers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, c := range enabled {
		summaries = append(summaries, map[string]string{"id": c.ID, "type": c.Type})
	}
	log.InfoObj("notifiers registry loaded", "notifiers_meta", map[string]any{
		"count":     len(summaries),
		"notifiers": summaries,
	})

	return notifiers.NewFanout(built), nil
}

// Run polls the intake queue until the context is cancelled. Messages are
// acked only after a successful relay; failed messages stay on the queue to
// redeliver.
func (r *Relay) Run(ctx context.Context) error {
	if r == nil || r.source == nil {
		return fmt.Errorf("relay is not initialized")
	}
	defer r.closeStore()

	r.log.InfoObj("relay loop starting", "relay_state", map[string]any{
		"queue_url":       r.cfg.IntakeQueueURL,
		"notifiers_count": r.fanout.Size(),
	})

	for {
		select {
		case <-ctx.Done():
			r.log.InfoObj("relay loop exiting", "reason", ctx.Err())
			return nil
		default:
		}

		msgs, err := r.source.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.log.ErrorObj("intake receive failed", "error", err)
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(receiveErrorBackoff):
			}
			continue
		}

		for _, msg := range msgs {
			if err := r.process(ctx, msg.Envelope); err != nil {
				r.log.ErrorObj("lead relay failed", "relay_error", map[string]any{
					"message_id": msg.ID,
					"error":      err.Error(),
				})
				continue
			}
			if err := r.source.Ack(ctx, msg); err != nil {
				r.log.ErrorObj("intake ack failed", "error", err)
			}
		}
	}
}

// process relays one envelope: resolve the lead, skip duplicates, submit,
// record the fingerprint, and notify downstream.
func (r *Relay) process(ctx context.Context, env domain.LeadMessage) error {
	lead, err := resolveLead(env)
	if err != nil {
		return err
	}
	if err := lead.Validate(); err != nil {
		return err
	}

	fingerprint := storage.Fingerprint(lead)
	seen, err := r.store.SeenLead(fingerprint)
	if err != nil {
		return fmt.Errorf("dedupe lookup: %w", err)
	}
	if seen {
		r.log.InfoObj("duplicate lead skipped", "lead_dupe", map[string]any{
			"fingerprint": fingerprint,
			"source":      lead.Source,
		})
		return nil
	}

	resp, err := r.client.CreateLead(ctx, lead)
	if err != nil {
		return err
	}

	if err := r.store.MarkLead(fingerprint); err != nil {
		r.log.WarnObj("failed to record lead fingerprint", "error", err)
	}

	personID, _ := followupboss.PersonID(resp)
	r.log.InfoObj("lead relayed", "lead_relayed", map[string]any{
		"person_id": personID,
		"source":    lead.Source,
	})

	evt := notifiers.NewEvent(env.Source, personID, lead)
	if delivered, err := r.fanout.Notify(ctx, evt); err != nil {
		r.log.WarnObj("notifier fanout incomplete", "fanout_result", map[string]any{
			"delivered": delivered,
			"error":     err.Error(),
		})
	}
	return nil
}

// resolveLead merges the structured lead with fields parsed from inquiry HTML.
// Structured fields win; the HTML fills in gaps only.
func resolveLead(env domain.LeadMessage) (followupboss.Lead, error) {
	var lead followupboss.Lead
	if env.Lead != nil {
		lead = *env.Lead
	}

	if env.InquiryHTML != "" {
		parsed, err := inquiry.Parse([]byte(env.InquiryHTML))
		if err != nil {
			return followupboss.Lead{}, err
		}
		fillMissing(&lead, parsed)
	}

	if env.Source != "" {
		lead.Source = env.Source
	}
	return lead, nil
}

func fillMissing(dst *followupboss.Lead, src followupboss.Lead) {
	if dst.FirstName == "" {
		dst.FirstName = src.FirstName
	}
	if dst.LastName == "" {
		dst.LastName = src.LastName
	}
	if dst.Email == "" {
		dst.Email = src.Email
	}
	if dst.Phone == "" {
		dst.Phone = src.Phone
	}
	if dst.Source == "" {
		dst.Source = src.Source
	}
	if dst.Message == "" {
		dst.Message = src.Message
	}
	if dst.PriceMin == 0 {
		dst.PriceMin = src.PriceMin
	}
	if dst.PriceMax == 0 {
		dst.PriceMax = src.PriceMax
	}
}

// closeStore safely closes the storage backend, logging any errors encountered.
func (r *Relay) closeStore() {
	if r == nil || r.store == nil {
		return
	}
	if err := r.store.Close(); err != nil {
		r.log.ErrorObj("storage close failed", "error", err)
	}
}

package notifier

import (
	"context"
	"log/slog"

	"github.com/shaharia-lab/mailcast/internal/config"
	"github.com/shaharia-lab/mailcast/internal/directory"
	"github.com/shaharia-lab/mailcast/internal/metrics"
)

// Resolver translates a RecipientSpec into a set of email addresses by
// querying the directory. Resolution is read-only and idempotent: the same
// spec against an unchanged directory yields the same set.
type Resolver struct {
	directory directory.Client
	broadcast *config.BroadcastConfig
	logger    *slog.Logger
}

// NewResolver creates a Resolver. broadcast may be nil, in which case
// broadcast notifications resolve to an empty set.
func NewResolver(dir directory.Client, broadcast *config.BroadcastConfig, logger *slog.Logger) *Resolver {
	return &Resolver{directory: dir, broadcast: broadcast, logger: logger}
}

// Resolve produces the deduplicated address set for spec. Per-entity lookup
// failures are recoverable: they are logged as warnings and skipped so one
// bad reference never aborts resolution of the others. Only a malformed
// spec is an error.
func (r *Resolver) Resolve(ctx context.Context, spec RecipientSpec) (Recipients, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	recipients := Recipients{}
	switch spec.Type {
	case RecipientEntity:
		r.addEntityRef(ctx, recipients, spec.EntityRef)
	case RecipientEntities:
		for _, ref := range spec.EntityRefs {
			r.addEntityRef(ctx, recipients, ref)
		}
	case RecipientBroadcast:
		r.addBroadcast(ctx, recipients)
	}
	return recipients, nil
}

// addEntityRef fetches one entity and adds its email, if any. A missing
// entity contributes nothing; a lookup failure is logged and skipped.
func (r *Resolver) addEntityRef(ctx context.Context, recipients Recipients, ref string) {
	entity, err := r.directory.EntityByRef(ctx, ref)
	if err != nil {
		r.logger.Warn("entity lookup failed, skipping recipient",
			slog.String("entity_ref", ref),
			slog.String("error", err.Error()),
		)
		metrics.ResolutionWarnings.Inc()
		return
	}
	if entity == nil {
		r.logger.Debug("entity not found, nobody to notify", slog.String("entity_ref", ref))
		return
	}
	if email, ok := entity.Email(); ok {
		recipients.Add(email)
	}
}

// addBroadcast expands the broadcast policy: either the configured address
// list, or the emails of every User entity in the directory.
func (r *Resolver) addBroadcast(ctx context.Context, recipients Recipients) {
	if r.broadcast == nil {
		r.logger.Debug("broadcast received but no broadcast policy configured")
		return
	}

	switch r.broadcast.Receiver {
	case config.BroadcastReceiverConfig:
		for _, addr := range r.broadcast.ReceiverEmails {
			recipients.Add(addr)
		}
	case config.BroadcastReceiverUsers:
		users, err := r.directory.EntitiesByKind(ctx, directory.KindUser)
		if err != nil {
			r.logger.Warn("listing users for broadcast failed",
				slog.String("error", err.Error()),
			)
			metrics.ResolutionWarnings.Inc()
			return
		}
		for i := range users {
			// Entities lacking an email are skipped silently.
			if email, ok := users[i].Email(); ok {
				recipients.Add(email)
			}
		}
	default:
		// BroadcastConfig.Validate rejects other receivers at load time.
		r.logger.Error("unknown broadcast receiver",
			slog.String("receiver", r.broadcast.Receiver),
		)
	}
}

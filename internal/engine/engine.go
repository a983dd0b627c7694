// Package engine keeps contacts, tags, and groups mutually consistent.
//
// Manual groups hold explicit member sets; derived (auto/smart) groups
// materialize membership from which contacts currently carry any of the
// group's defining tags. Every operation runs under the owner lock, reads
// fresh state, stages all of its effects into one write batch, and commits
// that batch atomically: either the full chain of mutations and derived
// recomputations becomes visible, or none of it does.
package engine

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"tagdex/internal/ownerlock"
	"tagdex/internal/platform/metrics"
	"tagdex/internal/store"
	id "tagdex/pkg/domain"
	dErrors "tagdex/pkg/domain-errors"
	"tagdex/pkg/platform/audit"
	"tagdex/pkg/platform/sentinel"
	"tagdex/pkg/requestcontext"
)

// Engine is the consistency façade. All externally invoked operations live
// on this type; each takes an explicit owner scope and returns the updated,
// fully consistent entity or a coded domain error.
type Engine struct {
	store          store.EntityStore
	locker         ownerlock.Locker
	sync           *synchronizer
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher audit.Publisher
	tracer         trace.Tracer
}

// Option configures optional engine collaborators.
type Option func(e *Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(e *Engine) { e.auditPublisher = publisher }
}

// New constructs an Engine over the given store and owner locker.
func New(entityStore store.EntityStore, locker ownerlock.Locker, opts ...Option) *Engine {
	e := &Engine{
		store:  entityStore,
		locker: locker,
		tracer: otel.Tracer("tagdex/engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.sync = &synchronizer{metrics: e.metrics}
	return e
}

// withOwnerLock runs fn inside the owner's critical section. State must only
// be read after the lock is held, so fn never acts on a snapshot from before
// acquisition.
func (e *Engine) withOwnerLock(ctx context.Context, owner id.OwnerID, op string, fn func(ctx context.Context) error) error {
	if owner.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "owner id is required")
	}

	ctx, span := e.tracer.Start(ctx, op)
	defer span.End()

	release, err := e.locker.Acquire(ctx, owner)
	if err != nil {
		if errors.Is(err, ownerlock.ErrNotAcquired) {
			if e.metrics != nil {
				e.metrics.IncrementLockContention()
			}
			return dErrors.New(dErrors.CodeContention, "owner scope is busy, retry the operation")
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return dErrors.Wrap(err, dErrors.CodeTimeout, "operation cancelled before acquiring owner lock")
		}
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to acquire owner lock")
	}
	defer release()

	return fn(ctx)
}

// commit applies the staged batch atomically, translating store sentinels
// into domain error codes. Nothing is visible if this fails.
func (e *Engine) commit(ctx context.Context, ws *workset) error {
	if err := e.store.ApplyBatch(ctx, ws.owner, ws.batch); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			return dErrors.New(dErrors.CodeConflict, "name must be unique")
		case errors.Is(err, sentinel.ErrConflict):
			return dErrors.New(dErrors.CodeContention, "store reported a write conflict, retry the operation")
		default:
			return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to commit changes")
		}
	}
	return nil
}

// notFound translates a store read failure for a specific entity.
func notFound(err error, what string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, what+" not found")
	}
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to load "+what)
}

// listErr translates a store enumeration failure.
func listErr(err error, what string) error {
	return dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list "+what)
}

func (e *Engine) emitAudit(ctx context.Context, owner id.OwnerID, action, subject string) {
	if e.logger != nil {
		e.logger.InfoContext(ctx, action,
			"owner_id", owner.String(),
			"subject", subject,
			"request_id", requestcontext.RequestID(ctx),
			"log_type", "audit",
		)
	}
	if e.auditPublisher == nil {
		return
	}
	_ = e.auditPublisher.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		OwnerID:   owner,
		Action:    action,
		Subject:   subject,
		RequestID: requestcontext.RequestID(ctx),
	})
}

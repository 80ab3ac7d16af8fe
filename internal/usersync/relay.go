package usersync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/OkontaEhis/myhitmeup-backend/internal/config"
	"github.com/OkontaEhis/myhitmeup-backend/internal/model"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/metrics"
	"github.com/OkontaEhis/myhitmeup-backend/internal/pkg/queue"
	"github.com/OkontaEhis/myhitmeup-backend/internal/store"
)

// ChangeStore is the outbox side of the relational store.
type ChangeStore interface {
	GetUser(ctx context.Context, uid string) (*model.User, error)
	PendingChanges(ctx context.Context, limit, maxAttempts int) ([]model.UserChange, error)
	PendingChangeCount(ctx context.Context, maxAttempts int) (int64, error)
	MarkChangesProcessed(ctx context.Context, ids ...uint64) error
	MarkChangesFailed(ctx context.Context, reason string, ids ...uint64) error
}

// Runner executes projection jobs. A nil Runner projects inline.
type Runner interface {
	SubmitWait(ctx context.Context, name string, job queue.Job) error
}

// Relay projects pending outbox changes into the document store. Each
// changed uid is projected from its current relational row, so replays and
// reordering converge on the same document.
type Relay struct {
	changes     ChangeStore
	docs        UserDocs
	runner      Runner
	logger      *slog.Logger
	interval    time.Duration
	batchSize   int
	maxAttempts int
	kick        chan struct{}
}

func NewRelay(changes ChangeStore, docs UserDocs, runner Runner, cfg config.SyncConfig, logger *slog.Logger) *Relay {
	r := &Relay{
		changes:     changes,
		docs:        docs,
		runner:      runner,
		logger:      logger,
		interval:    cfg.Interval,
		batchSize:   cfg.BatchSize,
		maxAttempts: cfg.MaxAttempts,
		kick:        make(chan struct{}, 1),
	}
	if r.interval <= 0 {
		r.interval = 5 * time.Second
	}
	if r.batchSize <= 0 {
		r.batchSize = 100
	}
	if r.maxAttempts <= 0 {
		r.maxAttempts = 8
	}
	return r
}

// Kick asks for a pass without waiting for the next tick.
func (r *Relay) Kick() {
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

// Run polls until ctx is done.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	r.logger.Info("user sync relay started",
		slog.Duration("interval", r.interval),
		slog.Int("batch_size", r.batchSize))
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("user sync relay stopped")
			return
		case <-ticker.C:
		case <-r.kick:
		}
		if _, err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error("user sync pass failed", slog.String("error", err.Error()))
		}
	}
}

type uidBatch struct {
	uid     string
	changes []model.UserChange
	op      string
	err     error
}

// RunOnce projects one batch and returns how many changes were marked
// processed.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	pending, err := r.changes.PendingChanges(ctx, r.batchSize, r.maxAttempts)
	if err != nil {
		return 0, fmt.Errorf("load pending changes: %w", err)
	}
	defer r.reportPending(ctx)
	if len(pending) == 0 {
		return 0, nil
	}

	var batches []*uidBatch
	byUID := make(map[string]*uidBatch)
	for _, c := range pending {
		b, ok := byUID[c.UserUID]
		if !ok {
			b = &uidBatch{uid: c.UserUID}
			byUID[c.UserUID] = b
			batches = append(batches, b)
		}
		b.changes = append(b.changes, c)
	}

	var wg sync.WaitGroup
	for _, b := range batches {
		if r.runner == nil {
			b.op, b.err = r.project(ctx, b.uid)
			continue
		}
		wg.Add(1)
		err := r.runner.SubmitWait(ctx, "usersync:"+b.uid, func(jobCtx context.Context) error {
			defer wg.Done()
			b.op, b.err = r.project(jobCtx, b.uid)
			return b.err
		})
		if err != nil {
			wg.Done()
			b.err = fmt.Errorf("submit projection: %w", err)
		}
	}
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return 0, ctx.Err()
	}

	processed := 0
	for _, b := range batches {
		ids := changeIDs(b.changes)
		if b.err == nil {
			if err := r.changes.MarkChangesProcessed(ctx, ids...); err != nil {
				return processed, fmt.Errorf("mark processed: %w", err)
			}
			metrics.SyncChangesTotal.WithLabelValues(b.op, "processed").Add(float64(len(ids)))
			processed += len(ids)
			continue
		}
		r.fail(ctx, b)
	}
	return processed, nil
}

// project copies the current relational state of uid into the document
// store, deleting the document when the row is gone.
func (r *Relay) project(ctx context.Context, uid string) (string, error) {
	u, err := r.changes.GetUser(ctx, uid)
	if errors.Is(err, store.ErrNotFound) {
		return string(model.ChangeDelete), r.docs.DeleteUser(ctx, uid)
	}
	if err != nil {
		return string(model.ChangeUpsert), fmt.Errorf("read user: %w", err)
	}
	return string(model.ChangeUpsert), r.docs.UpsertUser(ctx, ToDoc(u))
}

func (r *Relay) fail(ctx context.Context, b *uidBatch) {
	op := b.op
	if op == "" {
		op = string(b.changes[len(b.changes)-1].Operation)
	}
	ids := changeIDs(b.changes)
	r.logger.Warn("user projection failed",
		slog.String("uid", b.uid),
		slog.Int("changes", len(ids)),
		slog.String("error", b.err.Error()))
	if err := r.changes.MarkChangesFailed(ctx, b.err.Error(), ids...); err != nil {
		r.logger.Error("mark changes failed", slog.String("uid", b.uid), slog.String("error", err.Error()))
		return
	}
	metrics.SyncChangesTotal.WithLabelValues(op, "failed").Add(float64(len(ids)))
	for _, c := range b.changes {
		if c.Attempts+1 >= r.maxAttempts {
			metrics.SyncChangesTotal.WithLabelValues(op, "parked").Inc()
			r.logger.Error("user change parked after max attempts",
				slog.String("uid", b.uid),
				slog.Uint64("change_id", c.ID),
				slog.Int("attempts", c.Attempts+1))
		}
	}
}

func (r *Relay) reportPending(ctx context.Context) {
	n, err := r.changes.PendingChangeCount(ctx, r.maxAttempts)
	if err != nil {
		return
	}
	metrics.SyncPendingChanges.Set(float64(n))
}

func changeIDs(changes []model.UserChange) []uint64 {
	ids := make([]uint64, len(changes))
	for i, c := range changes {
		ids[i] = c.ID
	}
	return ids
}

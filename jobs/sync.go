package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/dongphonui/sigma-vie-shop/internal/remote"
	"github.com/dongphonui/sigma-vie-shop/internal/syncer"
)

// Metrics counts processed sync tasks. Implemented by the observability
// package; nil disables counting.
type Metrics interface {
	SyncTaskProcessed(taskType, outcome string)
}

// SyncHandlers drains the outbox and runs reconciles.
type SyncHandlers struct {
	remote      *remote.Client
	reconcilers map[string]syncer.EntityReconciler
	logger      *slog.Logger
	metrics     Metrics
}

// NewSyncHandlers constructs the sync task handlers.
func NewSyncHandlers(client *remote.Client, logger *slog.Logger, metrics Metrics, reconcilers ...syncer.EntityReconciler) *SyncHandlers {
	byEntity := make(map[string]syncer.EntityReconciler, len(reconcilers))
	for _, r := range reconcilers {
		byEntity[r.Entity()] = r
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncHandlers{remote: client, reconcilers: byEntity, logger: logger, metrics: metrics}
}

// HandleSyncPush processes TaskSyncPush tasks. Transient remote failures are
// returned so Asynq retries with backoff.
func (h *SyncHandlers) HandleSyncPush(ctx context.Context, t *asynq.Task) error {
	var payload SyncPushPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if err := h.remote.PushRaw(ctx, payload.Entity, payload.Record); err != nil {
		h.count(TaskSyncPush, "retry")
		h.logger.Warn("remote push failed", slog.String("entity", payload.Entity), slog.Any("error", err))
		return err
	}
	h.count(TaskSyncPush, "ok")
	return nil
}

// HandleSyncDelete processes TaskSyncDelete tasks.
func (h *SyncHandlers) HandleSyncDelete(ctx context.Context, t *asynq.Task) error {
	var payload SyncDeletePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if err := h.remote.DeleteOne(ctx, payload.Entity, payload.ID); err != nil {
		h.count(TaskSyncDelete, "retry")
		h.logger.Warn("remote delete failed", slog.String("entity", payload.Entity),
			slog.String("id", payload.ID), slog.Any("error", err))
		return err
	}
	h.count(TaskSyncDelete, "ok")
	return nil
}

// HandleSyncReconcile processes TaskSyncReconcile tasks.
func (h *SyncHandlers) HandleSyncReconcile(ctx context.Context, t *asynq.Task) error {
	var payload SyncReconcilePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	run := func(rec syncer.EntityReconciler) error {
		if payload.Force {
			return rec.Reconcile(ctx)
		}
		return rec.MaybeReconcile(ctx)
	}

	if payload.Entity != "" {
		rec, ok := h.reconcilers[payload.Entity]
		if !ok {
			h.logger.Warn("reconcile task for unknown entity", slog.String("entity", payload.Entity))
			return asynq.SkipRetry
		}
		if err := run(rec); err != nil {
			h.count(TaskSyncReconcile, "retry")
			return err
		}
		h.count(TaskSyncReconcile, "ok")
		return nil
	}

	for _, rec := range h.reconcilers {
		if err := run(rec); err != nil {
			h.count(TaskSyncReconcile, "retry")
			return err
		}
	}
	h.count(TaskSyncReconcile, "ok")
	return nil
}

func (h *SyncHandlers) count(taskType, outcome string) {
	if h.metrics != nil {
		h.metrics.SyncTaskProcessed(taskType, outcome)
	}
}

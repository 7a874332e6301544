package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// QueueSync carries outbox tasks toward the remote collaborator.
	QueueSync = "sync"

	// TaskSyncPush pushes one record to the remote collaborator.
	TaskSyncPush = "sync:push"
	// TaskSyncDelete deletes one record remotely.
	TaskSyncDelete = "sync:delete"
	// TaskSyncReconcile merges a local collection with the remote one.
	TaskSyncReconcile = "sync:reconcile"
)

// SyncPushPayload carries one serialized record bound for the remote store.
type SyncPushPayload struct {
	Entity string          `json:"entity"`
	Record json.RawMessage `json:"record"`
}

// SyncDeletePayload identifies a record to delete remotely.
type SyncDeletePayload struct {
	Entity string `json:"entity"`
	ID     string `json:"id"`
}

// SyncReconcilePayload selects which collection to reconcile. An empty
// entity reconciles every registered collection.
type SyncReconcilePayload struct {
	Entity string `json:"entity"`
	Force  bool   `json:"force"`
}

// NewSyncPushTask constructs an Asynq task for one record push.
func NewSyncPushTask(entity string, record any) (*asynq.Task, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(SyncPushPayload{Entity: entity, Record: raw})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSyncPush, data), nil
}

// NewSyncDeleteTask constructs an Asynq task for one remote delete.
func NewSyncDeleteTask(entity, id string) (*asynq.Task, error) {
	data, err := json.Marshal(SyncDeletePayload{Entity: entity, ID: id})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSyncDelete, data), nil
}

// NewSyncReconcileTask constructs an Asynq task for a reconcile run.
func NewSyncReconcileTask(entity string, force bool) (*asynq.Task, error) {
	data, err := json.Marshal(SyncReconcilePayload{Entity: entity, Force: force})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSyncReconcile, data), nil
}

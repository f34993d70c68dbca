package activity

import (
	"context"
	"time"

	"github.com/santhossiva2002/taskflow/docstore"
	"github.com/santhossiva2002/taskflow/domain"
)

const activitiesCollection = "activities"

// Recorder writes derived activity records. Records are written once, after
// the primary mutation is acknowledged, and never mutated or deleted
// afterwards.
type Recorder struct {
	store docstore.Store
}

// NewRecorder creates a Recorder over the given store.
func NewRecorder(store docstore.Store) *Recorder {
	return &Recorder{store: store}
}

// TaskCreated records a created activity for a new task.
func (r *Recorder) TaskCreated(ctx context.Context, actor domain.Identity, taskID string, draft domain.TaskDraft) error {
	return r.record(ctx, FromCreate(actor, taskID, draft))
}

// TaskChanged records the single activity classified from an update.
func (r *Recorder) TaskChanged(ctx context.Context, actor domain.Identity, prev domain.Task, patch domain.TaskPatch) error {
	return r.record(ctx, FromUpdate(actor, prev, patch))
}

func (r *Recorder) record(ctx context.Context, a domain.Activity) error {
	doc := docstore.Document{
		"type":      string(a.Type),
		"taskId":    a.TaskID,
		"taskTitle": a.TaskTitle,
		"user":      a.User,
		"timestamp": time.Now().UnixMilli(),
	}
	if a.Priority != "" {
		doc["priority"] = string(a.Priority)
	}
	if a.FromStatus != "" {
		doc["fromStatus"] = string(a.FromStatus)
	}
	if a.ToStatus != "" {
		doc["toStatus"] = string(a.ToStatus)
	}
	_, err := r.store.Insert(ctx, activitiesCollection, doc)
	return err
}

// Package board keeps the canonical in-memory task collection consistent
// with the remote store. Mutations only request changes; the visible state
// updates when the store's subscription echoes them back.
package board

import (
	"context"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/santhossiva2002/taskflow/docstore"
	"github.com/santhossiva2002/taskflow/domain"
)

const tasksCollection = "tasks"

// Recorder derives and persists exactly one activity record per observed
// mutation. Implemented by the activity package.
type Recorder interface {
	TaskCreated(ctx context.Context, actor domain.Identity, taskID string, draft domain.TaskDraft) error
	TaskChanged(ctx context.Context, actor domain.Identity, prev domain.Task, patch domain.TaskPatch) error
}

// Core owns the canonical task view. The view is only ever replaced
// wholesale by subscription deliveries, never mutated by request-issuing
// code, so no partial-apply state can exist.
type Core struct {
	store docstore.Store
	audit Recorder

	mu    sync.RWMutex
	tasks []domain.Task
}

// New creates a Core over the given store. audit may be nil, in which case
// no activity records are derived.
func New(store docstore.Store, audit Recorder) *Core {
	return &Core{store: store, audit: audit}
}

// Create requests a new task. The draft must already satisfy its
// preconditions (non-empty title after trimming); the core does not
// re-validate. The returned identity does not imply the local view already
// reflects the new task: that happens on the next subscription delivery.
func (c *Core) Create(ctx context.Context, actor domain.Identity, draft domain.TaskDraft) (string, error) {
	doc := docstore.Document{
		"title":     draft.Title,
		"status":    string(draft.Status),
		"createdAt": time.Now().UnixMilli(),
	}
	if draft.Description != "" {
		doc["description"] = draft.Description
	}
	if draft.Priority != "" {
		doc["priority"] = string(draft.Priority)
	}
	if draft.Assignee != "" {
		doc["assignee"] = draft.Assignee
	}
	id, err := c.store.Insert(ctx, tasksCollection, doc)
	if err != nil {
		return "", &domain.StoreWriteError{Op: "insert", Collection: tasksCollection, Err: err}
	}
	if c.audit != nil {
		if err := c.audit.TaskCreated(ctx, actor, id, draft); err != nil {
			return id, &domain.AuditError{Err: err}
		}
	}
	return id, nil
}

// Update applies the supplied fields to a task and derives an activity from
// the pre-update snapshot held locally. That snapshot may be stale relative
// to concurrent remote writers; the store is last-write-wins. An AuditError
// return means the mutation itself was committed.
func (c *Core) Update(ctx context.Context, actor domain.Identity, id string, patch domain.TaskPatch) error {
	if strings.TrimSpace(id) == "" {
		return &domain.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if err := patch.Validate(); err != nil {
		return err
	}

	prev, havePrev := c.find(id)

	doc := patchDocument(patch)
	doc["updatedAt"] = time.Now().UnixMilli()
	if actor.Name != "" {
		doc["updatedBy"] = actor.Name
	}
	if err := c.store.Mutate(ctx, tasksCollection, id, doc); err != nil {
		return &domain.StoreWriteError{Op: "mutate", Collection: tasksCollection, Err: err}
	}

	if c.audit == nil {
		return nil
	}
	if !havePrev {
		log.WithField("task", id).Warn("no local snapshot for mutated task, skipping activity derivation")
		return nil
	}
	if err := c.audit.TaskChanged(ctx, actor, prev, patch); err != nil {
		return &domain.AuditError{Err: err}
	}
	return nil
}

// Move changes a task's lane. It is the drag-and-drop entry point and is
// sugar for a status-only Update; classification follows the derivation
// rule, so moving to a differing lane yields a moved activity.
func (c *Core) Move(ctx context.Context, actor domain.Identity, id string, status domain.Status) error {
	if !status.Valid() {
		return &domain.ValidationError{Field: "status", Reason: "must be todo, inprogress or done"}
	}
	return c.Update(ctx, actor, id, domain.TaskPatch{Status: &status})
}

// Delete removes a task. No activity is derived for deletions.
func (c *Core) Delete(ctx context.Context, actor domain.Identity, id string) error {
	if strings.TrimSpace(id) == "" {
		return &domain.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if err := c.store.Remove(ctx, tasksCollection, id); err != nil {
		return &domain.StoreWriteError{Op: "remove", Collection: tasksCollection, Err: err}
	}
	return nil
}

// Snapshot returns a copy of the current canonical view, newest-created
// first.
func (c *Core) Snapshot() []domain.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// ByStatus partitions the current view by lane, preserving its order.
func (c *Core) ByStatus(status domain.Status) []domain.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := []domain.Task{}
	for _, t := range c.tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out
}

func (c *Core) setSnapshot(tasks []domain.Task) {
	c.mu.Lock()
	c.tasks = tasks
	c.mu.Unlock()
}

func (c *Core) find(id string) (domain.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Task{}, false
}

func patchDocument(patch domain.TaskPatch) docstore.Document {
	doc := docstore.Document{}
	if patch.Title != nil {
		doc["title"] = *patch.Title
	}
	if patch.Description != nil {
		doc["description"] = *patch.Description
	}
	if patch.Status != nil {
		doc["status"] = string(*patch.Status)
	}
	if patch.Priority != nil {
		doc["priority"] = string(*patch.Priority)
	}
	if patch.Assignee != nil {
		doc["assignee"] = *patch.Assignee
	}
	return doc
}

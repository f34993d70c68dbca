package board

import (
	"context"

	"github.com/santhossiva2002/taskflow/docstore"
	"github.com/santhossiva2002/taskflow/domain"
)

// Stream is a live view over the task collection. Each delivery is the full
// current collection ordered newest-created first, never a diff.
type Stream struct {
	sub   *docstore.Subscription
	tasks chan []domain.Task
	errs  chan error
}

// Subscribe establishes a live view and keeps the canonical snapshot
// current. Cancelling the returned stream detaches it without affecting
// other subscriptions.
func (c *Core) Subscribe(ctx context.Context) (*Stream, error) {
	sub, err := c.store.Subscribe(ctx, tasksCollection, "createdAt", docstore.Descending)
	if err != nil {
		return nil, &domain.SubscriptionError{Collection: tasksCollection, Err: err}
	}
	s := &Stream{
		sub:   sub,
		tasks: make(chan []domain.Task, 1),
		errs:  make(chan error, 4),
	}
	go s.run(c)
	return s, nil
}

// Tasks returns the snapshot delivery channel. It is closed once the stream
// is cancelled or its context ends.
func (s *Stream) Tasks() <-chan []domain.Task { return s.tasks }

// Errs returns the stream-fault channel.
func (s *Stream) Errs() <-chan error { return s.errs }

// Cancel detaches the view. Idempotent; no callbacks follow.
func (s *Stream) Cancel() { s.sub.Cancel() }

func (s *Stream) run(c *Core) {
	defer close(s.tasks)
	defer close(s.errs)
	for {
		select {
		case snap, ok := <-s.sub.Snapshots():
			if !ok {
				return
			}
			tasks := tasksFromDocuments(snap)
			c.setSnapshot(tasks)
			s.push(tasks)
		case err, ok := <-s.sub.Errs():
			if !ok {
				return
			}
			select {
			case s.errs <- err:
			default:
			}
		}
	}
}

func (s *Stream) push(tasks []domain.Task) {
	for {
		select {
		case s.tasks <- tasks:
			return
		default:
			select {
			case <-s.tasks:
			default:
			}
		}
	}
}

func tasksFromDocuments(docs []docstore.Document) []domain.Task {
	tasks := make([]domain.Task, 0, len(docs))
	for _, doc := range docs {
		tasks = append(tasks, taskFromDocument(doc))
	}
	return tasks
}

func taskFromDocument(doc docstore.Document) domain.Task {
	return domain.Task{
		ID:          docstore.String(doc["id"]),
		Title:       docstore.String(doc["title"]),
		Description: docstore.String(doc["description"]),
		Status:      domain.Status(docstore.String(doc["status"])),
		Priority:    domain.Priority(docstore.String(doc["priority"])),
		Assignee:    docstore.String(doc["assignee"]),
		CreatedAt:   docstore.Int64(doc["createdAt"]),
		UpdatedAt:   docstore.Int64(doc["updatedAt"]),
		UpdatedBy:   docstore.String(doc["updatedBy"]),
	}
}

package activity

import (
	"context"
	"sync"

	"github.com/santhossiva2002/taskflow/docstore"
	"github.com/santhossiva2002/taskflow/domain"
)

// FeedLimit caps the visible history at the most recent records. The cap is
// applied client-side after ordering, not assumed from the store.
const FeedLimit = 20

// Feed mirrors the activity collection newest-first. It never writes; all
// writes originate from the Recorder. Its subscription fails independently
// of the task stream.
type Feed struct {
	store docstore.Store

	mu      sync.RWMutex
	current []domain.Activity
}

// NewFeed creates a Feed over the given store.
func NewFeed(store docstore.Store) *Feed {
	return &Feed{store: store}
}

// FeedStream is a live view over the capped activity history.
type FeedStream struct {
	sub        *docstore.Subscription
	activities chan []domain.Activity
	errs       chan error
}

// Subscribe establishes a live view delivering the 20 most recent records,
// newest first, on every change.
func (f *Feed) Subscribe(ctx context.Context) (*FeedStream, error) {
	sub, err := f.store.Subscribe(ctx, activitiesCollection, "timestamp", docstore.Descending)
	if err != nil {
		return nil, &domain.SubscriptionError{Collection: activitiesCollection, Err: err}
	}
	s := &FeedStream{
		sub:        sub,
		activities: make(chan []domain.Activity, 1),
		errs:       make(chan error, 4),
	}
	go s.run(f)
	return s, nil
}

// Snapshot returns a copy of the current capped view.
func (f *Feed) Snapshot() []domain.Activity {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]domain.Activity, len(f.current))
	copy(out, f.current)
	return out
}

// Activities returns the delivery channel; closed when the stream ends.
func (s *FeedStream) Activities() <-chan []domain.Activity { return s.activities }

// Errs returns the stream-fault channel.
func (s *FeedStream) Errs() <-chan error { return s.errs }

// Cancel detaches the view. Idempotent.
func (s *FeedStream) Cancel() { s.sub.Cancel() }

func (s *FeedStream) run(f *Feed) {
	defer close(s.activities)
	defer close(s.errs)
	for {
		select {
		case snap, ok := <-s.sub.Snapshots():
			if !ok {
				return
			}
			acts := activitiesFromDocuments(snap)
			if len(acts) > FeedLimit {
				acts = acts[:FeedLimit]
			}
			f.mu.Lock()
			f.current = acts
			f.mu.Unlock()
			s.push(acts)
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

func (s *FeedStream) push(acts []domain.Activity) {
	for {
		select {
		case s.activities <- acts:
			return
		default:
			select {
			case <-s.activities:
			default:
			}
		}
	}
}

func activitiesFromDocuments(docs []docstore.Document) []domain.Activity {
	acts := make([]domain.Activity, 0, len(docs))
	for _, doc := range docs {
		acts = append(acts, domain.Activity{
			ID:         docstore.String(doc["id"]),
			Type:       domain.ActivityType(docstore.String(doc["type"])),
			TaskID:     docstore.String(doc["taskId"]),
			TaskTitle:  docstore.String(doc["taskTitle"]),
			User:       docstore.String(doc["user"]),
			Timestamp:  docstore.Int64(doc["timestamp"]),
			Priority:   domain.Priority(docstore.String(doc["priority"])),
			FromStatus: domain.Status(docstore.String(doc["fromStatus"])),
			ToStatus:   domain.Status(docstore.String(doc["toStatus"])),
		})
	}
	return acts
}

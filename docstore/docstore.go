// Package docstore exposes the remote document store the board core writes
// through: schemaless documents grouped into collections, with a push
// subscription that delivers the full ordered collection on every change.
package docstore

import (
	"context"
	"sync"
)

// Document is a schemaless key/value record. Reads always carry the assigned
// identity under the "id" key; writes must not include it.
type Document map[string]any

// Direction orders a subscribed collection by its order field.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// Store is the consumed storage capability. Mutate and Remove surface
// domain.ErrNotFound for an empty or unknown identity.
type Store interface {
	Insert(ctx context.Context, collection string, doc Document) (string, error)
	Mutate(ctx context.Context, collection, id string, patch Document) error
	Remove(ctx context.Context, collection, id string) error
	Subscribe(ctx context.Context, collection, orderField string, dir Direction) (*Subscription, error)
}

// Subscription is a live view over one collection. Snapshots carries the
// complete ordered collection after every observed change, never a diff. A
// slow consumer only ever sees the latest snapshot; intermediate ones are
// replaced, not queued. Cancel detaches the view and is safe to call any
// number of times.
type Subscription struct {
	snapshots chan []Document
	errs      chan error
	stop      context.CancelFunc
	once      sync.Once
}

func newSubscription(stop context.CancelFunc) *Subscription {
	return &Subscription{
		snapshots: make(chan []Document, 1),
		errs:      make(chan error, 4),
		stop:      stop,
	}
}

// Snapshots returns the snapshot delivery channel. It is closed once the
// subscription is cancelled or its context ends.
func (s *Subscription) Snapshots() <-chan []Document { return s.snapshots }

// Errs returns the stream-fault channel. Faults do not end the subscription;
// delivery resumes on the next successful refresh.
func (s *Subscription) Errs() <-chan error { return s.errs }

// Cancel detaches the view. Idempotent.
func (s *Subscription) Cancel() { s.once.Do(s.stop) }

// push replaces any undelivered snapshot with the latest one.
func (s *Subscription) push(snap []Document) {
	for {
		select {
		case s.snapshots <- snap:
			return
		default:
			select {
			case <-s.snapshots:
			default:
			}
		}
	}
}

// fail reports a stream fault without blocking; faults are dropped when the
// consumer is not draining them.
func (s *Subscription) fail(err error) {
	select {
	case s.errs <- err:
	default:
	}
}

func (s *Subscription) close() {
	close(s.snapshots)
	close(s.errs)
}

package docstore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/santhossiva2002/taskflow/domain"
)

// Memory is an in-process Store with the same contract as Tables. It backs
// local runs without storage credentials and the package tests.
type Memory struct {
	mu   sync.RWMutex
	data map[string]map[string]Document
	subs map[*memorySub]struct{}
}

type memorySub struct {
	sub        *Subscription
	collection string
	orderField string
	dir        Direction
}

// NewMemory creates an empty in-process store.
func NewMemory() *Memory {
	return &Memory{
		data: make(map[string]map[string]Document),
		subs: make(map[*memorySub]struct{}),
	}
}

// Insert stores a new document and returns its assigned identity.
func (m *Memory) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	id := uuid.NewString()
	m.mu.Lock()
	coll := m.data[collection]
	if coll == nil {
		coll = make(map[string]Document)
		m.data[collection] = coll
	}
	coll[id] = cloneDocument(doc)
	m.mu.Unlock()
	m.broadcast(collection)
	return id, nil
}

// Mutate merges the supplied fields into an existing document.
func (m *Memory) Mutate(ctx context.Context, collection, id string, patch Document) error {
	if id == "" {
		return domain.ErrNotFound
	}
	m.mu.Lock()
	doc, ok := m.data[collection][id]
	if !ok {
		m.mu.Unlock()
		return domain.ErrNotFound
	}
	for k, v := range patch {
		if k == "id" {
			continue
		}
		doc[k] = v
	}
	m.mu.Unlock()
	m.broadcast(collection)
	return nil
}

// Remove deletes a document.
func (m *Memory) Remove(ctx context.Context, collection, id string) error {
	if id == "" {
		return domain.ErrNotFound
	}
	m.mu.Lock()
	if _, ok := m.data[collection][id]; !ok {
		m.mu.Unlock()
		return domain.ErrNotFound
	}
	delete(m.data[collection], id)
	m.mu.Unlock()
	m.broadcast(collection)
	return nil
}

// Subscribe establishes a live full-snapshot view over one collection. The
// initial snapshot is delivered before Subscribe returns.
func (m *Memory) Subscribe(ctx context.Context, collection, orderField string, dir Direction) (*Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	sub := newSubscription(cancel)
	ms := &memorySub{sub: sub, collection: collection, orderField: orderField, dir: dir}

	// registration and the initial push happen under the same lock so a
	// concurrent write's broadcast cannot be overwritten by an older
	// initial snapshot
	m.mu.Lock()
	m.subs[ms] = struct{}{}
	sub.push(m.snapshotLocked(collection, orderField, dir))
	m.mu.Unlock()

	go func() {
		<-subCtx.Done()
		m.mu.Lock()
		delete(m.subs, ms)
		m.mu.Unlock()
		sub.close()
	}()
	return sub, nil
}

// broadcast pushes fresh snapshots while holding the read lock so a
// concurrent cancellation, which closes the channels under the write lock
// path, cannot interleave with a push.
func (m *Memory) broadcast(collection string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for ms := range m.subs {
		if ms.collection != collection {
			continue
		}
		ms.sub.push(m.snapshotLocked(collection, ms.orderField, ms.dir))
	}
}

func (m *Memory) snapshotLocked(collection, orderField string, dir Direction) []Document {
	docs := make([]Document, 0, len(m.data[collection]))
	for id, doc := range m.data[collection] {
		out := cloneDocument(doc)
		out["id"] = id
		docs = append(docs, out)
	}
	sortDocuments(docs, orderField, dir)
	return docs
}

func cloneDocument(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

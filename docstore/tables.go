package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/data/aztables"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/santhossiva2002/taskflow/domain"
)

// Tables is the production Store: documents live in a single Azure table
// partitioned by collection, change notifications fan out over a Redis
// pub/sub channel per collection, and the latest ordered snapshot is kept in
// Redis so fresh subscribers get a first delivery without a table scan.
type Tables struct {
	table    *aztables.Client
	redis    *redis.Client
	cacheTTL time.Duration
}

// NewTables creates a Tables store from the given connection string.
func NewTables(connStr, table string, rc *redis.Client, cacheTTL time.Duration) (*Tables, error) {
	opts := aztables.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries:    3,
				TryTimeout:    time.Minute * 3,
				RetryDelay:    time.Second * 1,
				MaxRetryDelay: time.Second * 15,
				StatusCodes:   []int{408, 429, 500, 502, 503, 504},
			},
		},
	}
	svc, err := aztables.NewServiceClientFromConnectionString(connStr, &opts)
	if err != nil {
		return nil, err
	}
	if cacheTTL < 0 {
		cacheTTL = 0
	}
	return &Tables{table: svc.NewClient(table), redis: rc, cacheTTL: cacheTTL}, nil
}

// Insert stores a new document and returns its assigned identity.
func (t *Tables) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	id := uuid.NewString()
	payload, err := encodeEntity(collection, id, doc)
	if err != nil {
		return "", err
	}
	if _, err := t.table.UpsertEntity(ctx, payload, nil); err != nil {
		return "", err
	}
	t.notify(ctx, collection, id, "insert")
	return id, nil
}

// Mutate merges the supplied fields into an existing document. Unsupplied
// fields are untouched.
func (t *Tables) Mutate(ctx context.Context, collection, id string, patch Document) error {
	if id == "" {
		return domain.ErrNotFound
	}
	payload, err := encodeEntity(collection, id, patch)
	if err != nil {
		return err
	}
	et := azcore.ETagAny
	_, err = t.table.UpdateEntity(ctx, payload, &aztables.UpdateEntityOptions{
		IfMatch:    &et,
		UpdateMode: aztables.UpdateModeMerge,
	})
	if err != nil {
		return mapNotFound(err)
	}
	t.notify(ctx, collection, id, "mutate")
	return nil
}

// Remove deletes a document.
func (t *Tables) Remove(ctx context.Context, collection, id string) error {
	if id == "" {
		return domain.ErrNotFound
	}
	if _, err := t.table.DeleteEntity(ctx, collection, id, nil); err != nil {
		return mapNotFound(err)
	}
	t.notify(ctx, collection, id, "remove")
	return nil
}

// Subscribe establishes a live full-snapshot view over one collection.
func (t *Tables) Subscribe(ctx context.Context, collection, orderField string, dir Direction) (*Subscription, error) {
	subCtx, cancel := context.WithCancel(ctx)
	sub := newSubscription(cancel)
	go runSubscription(subCtx, sub, t.redis, t, collection, orderField, dir, t.cacheTTL)
	return sub, nil
}

// List fetches and orders the full collection.
func (t *Tables) List(ctx context.Context, collection, orderField string, dir Direction) ([]Document, error) {
	filter := "PartitionKey eq '" + collection + "'"
	pager := t.table.NewListEntitiesPager(&aztables.ListEntitiesOptions{Filter: &filter})
	docs := []Document{}
	for pager.More() {
		resp, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, e := range resp.Entities {
			doc, err := decodeEntity(e)
			if err != nil {
				return nil, err
			}
			docs = append(docs, doc)
		}
	}
	sortDocuments(docs, orderField, dir)
	return docs, nil
}

// notify publishes a change notification and drops the stale snapshot cache.
// Both are best-effort: a lost notification only delays visibility until the
// next change, it never loses data.
func (t *Tables) notify(ctx context.Context, collection, id, op string) {
	if err := publishChange(ctx, t.redis, collection, id, op); err != nil {
		log.WithFields(log.Fields{"collection": collection, "op": op}).Warnf("publish change: %v", err)
	}
	if err := t.redis.Del(ctx, snapshotCacheKey(collection)).Err(); err != nil {
		log.WithField("collection", collection).Warnf("evict snapshot cache: %v", err)
	}
}

func mapNotFound(err error) error {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) && respErr.StatusCode == 404 {
		return domain.ErrNotFound
	}
	return err
}

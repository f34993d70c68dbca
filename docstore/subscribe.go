package docstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/santhossiva2002/taskflow/domain"
)

const keyPrefix = "taskflow:"

func changeChannel(collection string) string {
	return keyPrefix + "changes:" + collection
}

func snapshotCacheKey(collection string) string {
	return keyPrefix + "snapshot:" + collection
}

// changeNote is the pub/sub payload emitted after every acknowledged write.
// Subscribers never apply it as a diff; it only triggers a snapshot refetch.
type changeNote struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
	Op         string `json:"op"`
}

func publishChange(ctx context.Context, rc *redis.Client, collection, id, op string) error {
	data, err := json.Marshal(changeNote{Collection: collection, ID: id, Op: op})
	if err != nil {
		return err
	}
	return rc.Publish(ctx, changeChannel(collection), data).Err()
}

type lister interface {
	List(ctx context.Context, collection, orderField string, dir Direction) ([]Document, error)
}

// runSubscription pumps full collection snapshots into sub until ctx ends.
// It delivers the cached snapshot first if one exists, refetches on every
// change notification, and reconnects with a delay when the pub/sub channel
// drops. Fetch failures and channel drops surface on the fault channel
// without ending the stream; a refetch runs on every (re)establishment so
// writes made during an outage become visible on reconnect.
func runSubscription(ctx context.Context, sub *Subscription, rc *redis.Client, ls lister, collection, orderField string, dir Direction, cacheTTL time.Duration) {
	defer sub.close()

	if cached, ok := loadSnapshotCache(ctx, rc, collection); ok {
		sortDocuments(cached, orderField, dir)
		sub.push(cached)
	}

	refresh := func() {
		snap, err := ls.List(ctx, collection, orderField, dir)
		if err != nil {
			if ctx.Err() == nil {
				sub.fail(&domain.SubscriptionError{Collection: collection, Err: err})
			}
			return
		}
		storeSnapshotCache(ctx, rc, collection, snap, cacheTTL)
		sub.push(snap)
	}

	for {
		pubsub := rc.Subscribe(ctx, changeChannel(collection))
		refresh()
		var recvErr error
		for recvErr == nil {
			if _, recvErr = pubsub.ReceiveMessage(ctx); recvErr == nil {
				refresh()
			}
		}
		pubsub.Close()
		if ctx.Err() != nil {
			return
		}
		sub.fail(&domain.SubscriptionError{Collection: collection, Err: recvErr})
		log.WithField("collection", collection).Warnf("change channel dropped, reconnecting: %v", recvErr)
		time.Sleep(time.Second)
	}
}

func loadSnapshotCache(ctx context.Context, rc *redis.Client, collection string) ([]Document, bool) {
	data, err := rc.Get(ctx, snapshotCacheKey(collection)).Bytes()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			log.WithField("collection", collection).Warnf("snapshot cache read: %v", err)
		}
		return nil, false
	}
	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		_ = rc.Del(ctx, snapshotCacheKey(collection)).Err()
		return nil, false
	}
	return docs, true
}

func storeSnapshotCache(ctx context.Context, rc *redis.Client, collection string, docs []Document, ttl time.Duration) {
	if ttl == 0 {
		return
	}
	data, err := json.Marshal(docs)
	if err != nil {
		return
	}
	if err := rc.Set(ctx, snapshotCacheKey(collection), data, ttl).Err(); err != nil {
		log.WithField("collection", collection).Warnf("snapshot cache write: %v", err)
	}
}

package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/santhossiva2002/taskflow/activity"
	"github.com/santhossiva2002/taskflow/board"
)

type updateBroker struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func newUpdateBroker() *updateBroker {
	return &updateBroker{subs: make(map[chan struct{}]struct{})}
}

func (b *updateBroker) subscribe() chan struct{} {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *updateBroker) unsubscribe(ch chan struct{}) {
	b.mu.Lock()
	delete(b.subs, ch)
	b.mu.Unlock()
}

func (b *updateBroker) notify() {
	b.mu.Lock()
	for ch := range b.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	b.mu.Unlock()
}

// pumpStreams drains both board subscriptions, waking SSE clients on every
// snapshot delivery. Stream faults are logged per collection and do not stop
// the pump: the sibling subscription keeps delivering.
func pumpStreams(ctx context.Context, broker *updateBroker, tasks *board.Stream, acts *activity.FeedStream, logger *log.Logger) {
	defer tasks.Cancel()
	defer acts.Cancel()
	taskCh := tasks.Tasks()
	actCh := acts.Activities()
	taskErrs := tasks.Errs()
	actErrs := acts.Errs()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-taskCh:
			if !ok {
				taskCh = nil
				break
			}
			broker.notify()
		case _, ok := <-actCh:
			if !ok {
				actCh = nil
				break
			}
			broker.notify()
		case err, ok := <-taskErrs:
			if !ok {
				taskErrs = nil
				break
			}
			logger.Errorf("task stream: %v", err)
		case err, ok := <-actErrs:
			if !ok {
				actErrs = nil
				break
			}
			logger.Errorf("activity stream: %v", err)
		}
		if taskCh == nil && actCh == nil && taskErrs == nil && actErrs == nil {
			return
		}
	}
}

type streamPayload struct {
	EntityType string `json:"entityType"`
	Data       any    `json:"data"`
}

// streamBoard pushes the full task snapshot and the capped activity feed to
// the client on connect and after every change.
func streamBoard(core *board.Core, feed *activity.Feed, broker *updateBroker) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set(echo.HeaderContentType, "text/event-stream")
		c.Response().Header().Set(echo.HeaderCacheControl, "no-cache")
		c.Response().Header().Set(echo.HeaderConnection, "keep-alive")
		c.Response().Header().Set("X-Accel-Buffering", "no")
		flusher, ok := c.Response().Writer.(http.Flusher)
		if !ok {
			return c.String(http.StatusInternalServerError, "stream unsupported")
		}
		ctx := c.Request().Context()
		ch := broker.subscribe()
		defer broker.unsubscribe(ch)
		for {
			if err := writeEvent(c, "task", core.Snapshot()); err != nil {
				c.Logger().Error(err)
				return err
			}
			if err := writeEvent(c, "activity", feed.Snapshot()); err != nil {
				c.Logger().Error(err)
				return err
			}
			flusher.Flush()
			select {
			case <-ctx.Done():
				return nil
			case <-ch:
			}
		}
	}
}

func writeEvent(c echo.Context, entityType string, data any) error {
	payload, err := sonic.Marshal(streamPayload{EntityType: entityType, Data: data})
	if err != nil {
		return err
	}
	if _, err := c.Response().Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := c.Response().Write(payload); err != nil {
		return err
	}
	_, err = c.Response().Write([]byte("\n\n"))
	return err
}

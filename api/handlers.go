package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/santhossiva2002/taskflow/activity"
	"github.com/santhossiva2002/taskflow/board"
	"github.com/santhossiva2002/taskflow/domain"
)

const requestMaxSize = 1 << 20

// Register wires up all board routes on the provided Echo instance and
// starts the background mirrors feeding the SSE broker. The two
// subscriptions are independent failure domains: a fault on one never tears
// down the other.
func Register(ctx context.Context, e *echo.Echo, core *board.Core, feed *activity.Feed, logger *log.Logger) error {
	taskStream, err := core.Subscribe(ctx)
	if err != nil {
		return err
	}
	feedStream, err := feed.Subscribe(ctx)
	if err != nil {
		taskStream.Cancel()
		return err
	}
	broker := newUpdateBroker()
	go pumpStreams(ctx, broker, taskStream, feedStream, logger)

	e.GET("/api/tasks", getTasks(core))
	e.POST("/api/tasks", createTask(core))
	e.PATCH("/api/tasks/:id", updateTask(core))
	e.POST("/api/tasks/:id/move", moveTask(core))
	e.DELETE("/api/tasks/:id", deleteTask(core))
	e.GET("/api/activities", getActivities(feed))
	e.GET("/api/stream", streamBoard(core, feed, broker))
	e.GET("/healthz", healthz())
	return nil
}

type tasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

type activitiesResponse struct {
	Activities []domain.Activity `json:"activities"`
}

// mutationResponse reports a committed mutation. A non-empty AuditError
// means the mutation succeeded but the activity write did not; callers may
// retry the audit without re-mutating.
type mutationResponse struct {
	ID         string `json:"id,omitempty"`
	AuditError string `json:"auditError,omitempty"`
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func getTasks(core *board.Core) echo.HandlerFunc {
	return func(c echo.Context) error {
		tasks := core.Snapshot()
		if st := c.QueryParam("status"); st != "" {
			status := domain.Status(st)
			if !status.Valid() {
				return c.String(http.StatusBadRequest, "invalid status")
			}
			tasks = core.ByStatus(status)
		}
		switch key := board.SortKey(c.QueryParam("sortBy")); key {
		case "":
		case board.SortByDate, board.SortByTitle, board.SortByPriority:
			tasks = board.Sort(tasks, key, c.QueryParam("order") == "desc")
		default:
			return c.String(http.StatusBadRequest, "invalid sort key")
		}
		return c.JSON(http.StatusOK, tasksResponse{Tasks: tasks})
	}
}

func getActivities(feed *activity.Feed) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, activitiesResponse{Activities: feed.Snapshot()})
	}
}

func createTask(core *board.Core) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := actorFrom(c)
		if err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		var draft domain.TaskDraft
		if err := decodeBody(c, &draft); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		if err := draft.Validate(); err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		id, err := core.Create(c.Request().Context(), actor, draft)
		if err != nil {
			var auditErr *domain.AuditError
			if errors.As(err, &auditErr) {
				return c.JSON(http.StatusCreated, mutationResponse{ID: id, AuditError: auditErr.Error()})
			}
			c.Logger().Error(err)
			return c.String(http.StatusInternalServerError, "failed to create task")
		}
		return c.JSON(http.StatusCreated, mutationResponse{ID: id})
	}
}

func updateTask(core *board.Core) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := actorFrom(c)
		if err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		var patch domain.TaskPatch
		if err := decodeBody(c, &patch); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		return writeMutation(c, core.Update(c.Request().Context(), actor, c.Param("id"), patch))
	}
}

func moveTask(core *board.Core) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := actorFrom(c)
		if err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		var req struct {
			Status domain.Status `json:"status"`
		}
		if err := decodeBody(c, &req); err != nil {
			return c.String(http.StatusBadRequest, "invalid body")
		}
		return writeMutation(c, core.Move(c.Request().Context(), actor, c.Param("id"), req.Status))
	}
}

func deleteTask(core *board.Core) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := actorFrom(c)
		if err != nil {
			return c.String(http.StatusBadRequest, err.Error())
		}
		return writeMutation(c, core.Delete(c.Request().Context(), actor, c.Param("id")))
	}
}

// writeMutation maps a mutation outcome onto the wire, keeping "mutation
// failed" and "mutation committed, audit failed" distinct.
func writeMutation(c echo.Context, err error) error {
	if err == nil {
		return c.JSON(http.StatusOK, mutationResponse{})
	}
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return c.String(http.StatusBadRequest, validationErr.Error())
	}
	var auditErr *domain.AuditError
	if errors.As(err, &auditErr) {
		return c.JSON(http.StatusOK, mutationResponse{AuditError: auditErr.Error()})
	}
	if errors.Is(err, domain.ErrNotFound) {
		return c.String(http.StatusNotFound, "task not found")
	}
	c.Logger().Error(err)
	return c.String(http.StatusInternalServerError, "mutation failed")
}

func decodeBody(c echo.Context, v any) error {
	lr := io.LimitReader(c.Request().Body, requestMaxSize)
	dec := sonic.ConfigStd.NewDecoder(lr)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

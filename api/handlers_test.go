package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/santhossiva2002/taskflow/activity"
	"github.com/santhossiva2002/taskflow/board"
	"github.com/santhossiva2002/taskflow/docstore"
	"github.com/santhossiva2002/taskflow/domain"
)

func newTestServer(t *testing.T, store docstore.Store) *echo.Echo {
	t.Helper()
	core := board.New(store, activity.NewRecorder(store))
	feed := activity.NewFeed(store)
	e := echo.New()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := Register(ctx, e, core, feed, log.New()); err != nil {
		t.Fatalf("register: %v", err)
	}
	return e
}

func do(e *echo.Echo, method, path, body string, asUser string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if asUser != "" {
		req.Header.Set(userNameHeader, asUser)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func listTasks(t *testing.T, e *echo.Echo, query string) []domain.Task {
	t.Helper()
	rec := do(e, http.MethodGet, "/api/tasks"+query, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list tasks: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Tasks []domain.Task `json:"tasks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode tasks: %v", err)
	}
	return resp.Tasks
}

func TestCreateTaskRequiresIdentity(t *testing.T) {
	e := newTestServer(t, docstore.NewMemory())
	rec := do(e, http.MethodPost, "/api/tasks", `{"title":"x","status":"todo"}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateTaskRejectsEmptyTitle(t *testing.T) {
	e := newTestServer(t, docstore.NewMemory())
	rec := do(e, http.MethodPost, "/api/tasks", `{"title":"   ","status":"todo"}`, "Ann")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreateTaskReturnsIDAndEchoesIntoView(t *testing.T) {
	e := newTestServer(t, docstore.NewMemory())
	rec := do(e, http.MethodPost, "/api/tasks", `{"title":"Ship v1","status":"todo"}`, "Ann")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", rec.Code, rec.Body.String())
	}
	var resp mutationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID == "" {
		t.Fatal("expected an assigned id")
	}
	if resp.AuditError != "" {
		t.Fatalf("unexpected audit error: %s", resp.AuditError)
	}

	waitFor(t, func() bool {
		tasks := listTasks(t, e, "")
		return len(tasks) == 1 && tasks[0].ID == resp.ID
	})
}

func TestMoveTaskProducesMovedActivity(t *testing.T) {
	e := newTestServer(t, docstore.NewMemory())
	rec := do(e, http.MethodPost, "/api/tasks", `{"title":"Ship v1","status":"todo"}`, "Ann")
	var created mutationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	waitFor(t, func() bool { return len(listTasks(t, e, "")) == 1 })

	rec = do(e, http.MethodPost, "/api/tasks/"+created.ID+"/move", `{"status":"inprogress"}`, "Ann")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}

	waitFor(t, func() bool {
		tasks := listTasks(t, e, "?status=inprogress")
		return len(tasks) == 1
	})

	waitFor(t, func() bool {
		rec := do(e, http.MethodGet, "/api/activities", "", "")
		var resp struct {
			Activities []domain.Activity `json:"activities"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			return false
		}
		for _, a := range resp.Activities {
			if a.Type == domain.ActivityMoved &&
				a.FromStatus == domain.StatusTodo && a.ToStatus == domain.StatusInProgress {
				return true
			}
		}
		return false
	})
}

func TestUpdateUnknownTaskIs404(t *testing.T) {
	e := newTestServer(t, docstore.NewMemory())
	rec := do(e, http.MethodPatch, "/api/tasks/missing", `{"description":"x"}`, "Ann")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestDeleteTask(t *testing.T) {
	e := newTestServer(t, docstore.NewMemory())
	rec := do(e, http.MethodPost, "/api/tasks", `{"title":"Ship v1","status":"todo"}`, "Ann")
	var created mutationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	waitFor(t, func() bool { return len(listTasks(t, e, "")) == 1 })

	rec = do(e, http.MethodDelete, "/api/tasks/"+created.ID, "", "Ann")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}
	waitFor(t, func() bool { return len(listTasks(t, e, "")) == 0 })
}

func TestGetTasksSortedByPriority(t *testing.T) {
	store := docstore.NewMemory()
	ctx := context.Background()
	seed := []docstore.Document{
		{"title": "low", "status": "todo", "priority": "low", "createdAt": int64(1)},
		{"title": "urgent", "status": "todo", "priority": "urgent", "createdAt": int64(2)},
		{"title": "none", "status": "todo", "createdAt": int64(3)},
	}
	for _, doc := range seed {
		if _, err := store.Insert(ctx, "tasks", doc); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	e := newTestServer(t, store)
	waitFor(t, func() bool { return len(listTasks(t, e, "")) == 3 })

	tasks := listTasks(t, e, "?sortBy=priority&order=desc")
	if tasks[0].Title != "urgent" || tasks[1].Title != "none" || tasks[2].Title != "low" {
		t.Fatalf("unexpected order: %+v", tasks)
	}

	rec := do(e, http.MethodGet, "/api/tasks?sortBy=deadline", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown sort key, got %d", rec.Code)
	}
}

// auditFailStore fails every activity write, passing task writes through.
type auditFailStore struct {
	docstore.Store
}

func (s *auditFailStore) Insert(ctx context.Context, collection string, doc docstore.Document) (string, error) {
	if collection == "activities" {
		return "", errors.New("audit backend down")
	}
	return s.Store.Insert(ctx, collection, doc)
}

func TestAuditFailureIsReportedDistinctly(t *testing.T) {
	e := newTestServer(t, &auditFailStore{Store: docstore.NewMemory()})
	rec := do(e, http.MethodPost, "/api/tasks", `{"title":"Ship v1","status":"todo"}`, "Ann")
	if rec.Code != http.StatusCreated {
		t.Fatalf("audit failure must not fail the mutation, got %d %s", rec.Code, rec.Body.String())
	}
	var resp mutationResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ID == "" || resp.AuditError == "" {
		t.Fatalf("expected id plus distinct audit error, got %+v", resp)
	}
}

func TestHealthz(t *testing.T) {
	e := newTestServer(t, docstore.NewMemory())
	rec := do(e, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

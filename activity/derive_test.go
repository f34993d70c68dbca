package activity

import (
	"testing"

	"github.com/santhossiva2002/taskflow/domain"
)

var bob = domain.Identity{Name: "Bob", Role: domain.RoleAdmin}

func TestFromCreateSnapshotsDraft(t *testing.T) {
	a := FromCreate(bob, "task-1", domain.TaskDraft{
		Title:    "Ship v1",
		Status:   domain.StatusTodo,
		Priority: domain.PriorityHigh,
	})
	if a.Type != domain.ActivityCreated {
		t.Fatalf("expected created, got %s", a.Type)
	}
	if a.TaskID != "task-1" || a.TaskTitle != "Ship v1" || a.User != "Bob" || a.Priority != domain.PriorityHigh {
		t.Fatalf("unexpected activity: %+v", a)
	}
	if a.FromStatus != "" || a.ToStatus != "" {
		t.Fatalf("created must not carry boundary statuses: %+v", a)
	}
}

func TestFromUpdateClassification(t *testing.T) {
	prev := domain.Task{
		ID:       "task-1",
		Title:    "Ship v1",
		Status:   domain.StatusTodo,
		Priority: domain.PriorityUrgent,
	}
	todo := domain.StatusTodo
	inprogress := domain.StatusInProgress
	title := "renamed"

	cases := []struct {
		name     string
		patch    domain.TaskPatch
		wantType domain.ActivityType
		wantFrom domain.Status
		wantTo   domain.Status
	}{
		{"status change is moved", domain.TaskPatch{Status: &inprogress}, domain.ActivityMoved, domain.StatusTodo, domain.StatusInProgress},
		{"same status is updated", domain.TaskPatch{Status: &todo}, domain.ActivityUpdated, "", ""},
		{"no status field is updated", domain.TaskPatch{Title: &title}, domain.ActivityUpdated, "", ""},
		{"status change with other fields is moved", domain.TaskPatch{Title: &title, Status: &inprogress}, domain.ActivityMoved, domain.StatusTodo, domain.StatusInProgress},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := FromUpdate(bob, prev, tc.patch)
			if a.Type != tc.wantType {
				t.Fatalf("expected %s, got %s", tc.wantType, a.Type)
			}
			if a.FromStatus != tc.wantFrom || a.ToStatus != tc.wantTo {
				t.Fatalf("unexpected boundary statuses: %+v", a)
			}
			// title and priority are snapshots of the pre-update task
			if a.TaskTitle != "Ship v1" || a.Priority != domain.PriorityUrgent {
				t.Fatalf("expected pre-update snapshot, got %+v", a)
			}
		})
	}
}

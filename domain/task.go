package domain

import "strings"

// Status identifies the board lane a task belongs to.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "inprogress"
	StatusDone       Status = "done"
)

// Valid reports whether s is one of the three board lanes.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Priority is an optional task weight. An absent priority sorts as medium.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is a known priority value.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Rank returns the total order urgent > high > medium > low, with an absent
// or unknown priority treated as medium.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// Task is a mutable work item on the board. CreatedAt is assigned on the
// first write and never changes afterwards. UpdatedAt and UpdatedBy are
// advisory; the core stamps them on mutation but never reads them back.
type Task struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority,omitempty"`
	Assignee    string   `json:"assignee,omitempty"`
	CreatedAt   int64    `json:"createdAt"`
	UpdatedAt   int64    `json:"updatedAt,omitempty"`
	UpdatedBy   string   `json:"updatedBy,omitempty"`
}

// TaskDraft is the create input: everything a Task carries except the
// identity and creation timestamp, which the store assigns.
type TaskDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority,omitempty"`
	Assignee    string   `json:"assignee,omitempty"`
}

// Validate checks the draft preconditions before any remote call.
func (d TaskDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if !d.Status.Valid() {
		return &ValidationError{Field: "status", Reason: "must be todo, inprogress or done"}
	}
	if d.Priority != "" && !d.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: "must be low, medium, high or urgent"}
	}
	return nil
}

// TaskPatch carries a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string   `json:"title,omitempty"`
	Description *string   `json:"description,omitempty"`
	Status      *Status   `json:"status,omitempty"`
	Priority    *Priority `json:"priority,omitempty"`
	Assignee    *string   `json:"assignee,omitempty"`
}

// Empty reports whether the patch carries no fields at all.
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Priority == nil && p.Assignee == nil
}

// Validate checks the supplied patch fields.
func (p TaskPatch) Validate() error {
	if p.Empty() {
		return &ValidationError{Field: "patch", Reason: "no fields supplied"}
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if p.Status != nil && !p.Status.Valid() {
		return &ValidationError{Field: "status", Reason: "must be todo, inprogress or done"}
	}
	if p.Priority != nil && *p.Priority != "" && !p.Priority.Valid() {
		return &ValidationError{Field: "priority", Reason: "must be low, medium, high or urgent"}
	}
	return nil
}

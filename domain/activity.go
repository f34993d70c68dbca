package domain

// ActivityType classifies an observed mutation. Completed and assigned are
// part of the taxonomy but no current mutation path emits them.
type ActivityType string

const (
	ActivityCreated   ActivityType = "created"
	ActivityUpdated   ActivityType = "updated"
	ActivityCompleted ActivityType = "completed"
	ActivityAssigned  ActivityType = "assigned"
	ActivityMoved     ActivityType = "moved"
)

// Activity is an immutable audit record derived from one observed mutation.
// TaskTitle is a snapshot taken at derivation time, so the record stays
// meaningful after the referenced task changes or disappears.
type Activity struct {
	ID         string       `json:"id"`
	Type       ActivityType `json:"type"`
	TaskID     string       `json:"taskId"`
	TaskTitle  string       `json:"taskTitle"`
	User       string       `json:"user"`
	Timestamp  int64        `json:"timestamp"`
	Priority   Priority     `json:"priority,omitempty"`
	FromStatus Status       `json:"fromStatus,omitempty"`
	ToStatus   Status       `json:"toStatus,omitempty"`
}

package domain

// Role is advisory only; the core performs no authorization checks.
type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = "User"
)

// Identity names the acting user. It is passed explicitly into every
// operation that stamps an actor on an activity record; the core holds no
// ambient current-user state.
type Identity struct {
	Name string `json:"name"`
	Role Role   `json:"role"`
}

package models

// User is the stored account. PasswordHash never leaves the server.
type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// PublicUser is the only user shape written to clients.
type PublicUser struct {
	Username string `json:"username"`
}

func (u User) Public() PublicUser {
	return PublicUser{Username: u.Username}
}

// Principal is the identity resolved by the auth gate for one request.
type Principal struct {
	ID       int
	Username string
}

type Task struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Done        *bool  `json:"done"`
}

// TaskPatch carries the fields of a partial update.
// pointer (*) marks a field that may be absent from the request
type TaskPatch struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Done        *bool   `json:"done"`
}

// Apply copies the present fields onto t.
func (p TaskPatch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Done != nil {
		done := *p.Done
		t.Done = &done
	}
}

const (
	TaskCreated = "task.created"
	TaskUpdated = "task.updated"
	TaskDeleted = "task.deleted"
)

// TaskEvent is broadcast to websocket subscribers after a task mutation.
type TaskEvent struct {
	Event string `json:"event"`
	Task  Task   `json:"task"`
}

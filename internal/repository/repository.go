package repository

import (
	"context"
	"fmt"

	"taskmanager/internal/models"
)

type CredentialStore interface {
	CreateUser(ctx context.Context, username, password string) (models.User, error)
	// VerifyCredentials reports ok=false for an unknown user or a wrong
	// password. err is reserved for storage failures.
	VerifyCredentials(ctx context.Context, username, password string) (p models.Principal, ok bool, err error)
	GetUser(ctx context.Context, id int) (models.User, error)
}

type TaskStore interface {
	CreateTask(ctx context.Context, title, description string, done *bool) (models.Task, error)
	// ListTasks returns ErrNotFound when there are no tasks at all.
	ListTasks(ctx context.Context) ([]models.Task, error)
	GetTask(ctx context.Context, id int) (models.Task, error)
	UpdateTask(ctx context.Context, id int, patch models.TaskPatch) (models.Task, error)
	DeleteTask(ctx context.Context, id int) error
}

// Store is everything the HTTP layer needs from persistence.
type Store interface {
	CredentialStore
	TaskStore
}

// checkPatch rejects a patch that would blank a required field.
func checkPatch(patch models.TaskPatch) error {
	if (patch.Title != nil && *patch.Title == "") || (patch.Description != nil && *patch.Description == "") {
		return fmt.Errorf("title and description cannot be empty: %w", ErrValidation)
	}
	return nil
}

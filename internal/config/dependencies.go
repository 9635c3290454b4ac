package config

import (
	"github.com/go-playground/validator/v10"

	"taskmanager/internal/models"
	"taskmanager/internal/repository"
)

// EventPublisher receives task mutations; the websocket hub implements it.
type EventPublisher interface {
	Publish(event models.TaskEvent)
}

// Dependencies is built once by the entry point and handed to the routes.
type Dependencies struct {
	Store    repository.Store
	Events   EventPublisher
	Validate *validator.Validate

	// credentials for the static /page and /otherpage gate
	StaticUsername string
	StaticPassword string
}

func NewDependencies(store repository.Store, events EventPublisher, staticUsername, staticPassword string) Dependencies {
	if events == nil {
		events = nopPublisher{}
	}
	return Dependencies{
		Store:          store,
		Events:         events,
		Validate:       validator.New(),
		StaticUsername: staticUsername,
		StaticPassword: staticPassword,
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(models.TaskEvent) {}

package handlers

import (
	"github.com/sirupsen/logrus"

	"clipperai/internal/orchestrator"
	"clipperai/internal/tasks"
)

// TaskLauncher starts a clip-production task and returns its id.
type TaskLauncher interface {
	Launch(req orchestrator.Request) string
}

// ApplicationHandler holds the dependencies for the HTTP handlers.
type ApplicationHandler struct {
	Launcher TaskLauncher
	Store    *tasks.Store
	Logger   *logrus.Logger

	// OutputDir is where rendered clips live; the download/stream
	// endpoints serve from it and nowhere else.
	OutputDir string

	// APIKeyConfigured is surfaced by the health endpoint so operators can
	// spot a missing key without submitting a task.
	APIKeyConfigured bool
}

// NewApplicationHandler creates a new ApplicationHandler with its dependencies.
func NewApplicationHandler(launcher TaskLauncher, store *tasks.Store, logger *logrus.Logger, outputDir string, apiKeyConfigured bool) *ApplicationHandler {
	return &ApplicationHandler{
		Launcher:         launcher,
		Store:            store,
		Logger:           logger,
		OutputDir:        outputDir,
		APIKeyConfigured: apiKeyConfigured,
	}
}

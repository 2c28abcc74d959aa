package handlers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"clipperai/internal/orchestrator"
	"clipperai/internal/timecode"
	"clipperai/utils"
)

var validate = validator.New()

// CreateClipRequest is the body of POST /api/v1/clips.
type CreateClipRequest struct {
	URL       string `json:"url" validate:"required,url"`
	Mode      string `json:"mode" validate:"omitempty,oneof=ai manual"`
	StartTime string `json:"start_time" validate:"required_if=Mode manual"`
	EndTime   string `json:"end_time" validate:"required_if=Mode manual"`
	NumClips  int    `json:"num_clips" validate:"omitempty,min=1,max=3"`
}

// CreateClipTask accepts a clip-production request and returns its task id
// immediately; progress is polled on the tasks endpoint.
func (h *ApplicationHandler) CreateClipTask(c *fiber.Ctx) error {
	var req CreateClipRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.RespondWithError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		errs := utils.FormatValidationErrors(err)
		return utils.RespondWithError(c, fiber.StatusBadRequest, strings.Join(errs, "; "))
	}

	mode := orchestrator.ModeAI
	if req.Mode == string(orchestrator.ModeManual) {
		mode = orchestrator.ModeManual
		// An unusable span is rejected here rather than surfacing later as
		// a failed task. The duration ceiling still waits for metadata.
		start := timecode.ToSeconds(req.StartTime)
		end := timecode.ToSeconds(req.EndTime)
		if end <= start {
			return utils.RespondWithError(c, fiber.StatusBadRequest,
				fmt.Sprintf("Invalid manual time range %q to %q.", req.StartTime, req.EndTime))
		}
	}
	taskID := h.Launcher.Launch(orchestrator.Request{
		URL:       req.URL,
		Mode:      mode,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		NumClips:  req.NumClips,
	})

	h.Logger.WithFields(logrus.Fields{"task_id": taskID, "mode": mode}).Info("Task accepted")
	return utils.RespondWithJSON(c, fiber.StatusAccepted, fiber.Map{"task_id": taskID})
}

// GetTaskProgress returns the current snapshot of a task.
func (h *ApplicationHandler) GetTaskProgress(c *fiber.Ctx) error {
	taskID := c.Params("taskId")
	task, ok := h.Store.Get(taskID)
	if !ok {
		return utils.RespondWithError(c, fiber.StatusNotFound, "Task not found")
	}
	return c.JSON(task)
}

// DownloadClip serves a rendered clip as an attachment.
func (h *ApplicationHandler) DownloadClip(c *fiber.Ctx) error {
	path, err := h.clipPath(c.Params("filename"))
	if err != nil {
		return err
	}
	return c.Download(path)
}

// ServeClip streams a rendered clip inline for in-browser preview.
func (h *ApplicationHandler) ServeClip(c *fiber.Ctx) error {
	path, err := h.clipPath(c.Params("filename"))
	if err != nil {
		return err
	}
	return c.SendFile(path)
}

// clipPath resolves a clip filename inside the output directory. Anything
// that is not a bare filename is rejected before touching the filesystem.
func (h *ApplicationHandler) clipPath(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fiber.NewError(fiber.StatusBadRequest, "Invalid filename")
	}
	path := filepath.Join(h.OutputDir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fiber.NewError(fiber.StatusNotFound, "Clip not found")
	}
	return path, nil
}

// Health reports service liveness and whether the AI key is configured.
func (h *ApplicationHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":             "ok",
		"api_key_configured": h.APIKeyConfigured,
	})
}

// RegisterRoutes mounts all the application routes on the Fiber app.
func RegisterRoutes(app *fiber.App, h *ApplicationHandler) {
	app.Get("/health", h.Health)

	api := app.Group("/api/v1")
	api.Post("/clips", h.CreateClipTask)
	api.Get("/tasks/:taskId", h.GetTaskProgress)

	app.Get("/download/:filename", h.DownloadClip)
	app.Get("/video/:filename", h.ServeClip)
}

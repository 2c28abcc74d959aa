package main

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"clipperai/config"
	"clipperai/handlers"
	"clipperai/internal/aiclient"
	"clipperai/internal/ffmpeg"
	"clipperai/internal/orchestrator"
	"clipperai/internal/tasks"
	"clipperai/internal/ytdlp"
	"clipperai/middleware"
)

const janitorInterval = 10 * time.Minute

func main() {
	var port, outputDir string

	root := &cobra.Command{
		Use:   "clipperd",
		Short: "AI video clipper service",
		Long:  "clipperd ingests an online video, transcribes it and produces short vertical clips.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(port, outputDir)
		},
	}
	root.Flags().StringVar(&port, "port", "", "HTTP listen port (overrides PORT)")
	root.Flags().StringVar(&outputDir, "output-dir", "", "directory for rendered clips (overrides OUTPUT_DIR)")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// applyOverrides layers non-empty flag values over the env-sourced config.
func applyOverrides(cfg config.Config, port, outputDir string) config.Config {
	if port != "" {
		cfg.Port = port
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	return cfg
}

func serve(port, outputDir string) error {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := applyOverrides(config.Load(), port, outputDir)
	config.InitLogger()
	log := config.Log

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return err
	}

	store := tasks.NewStore()
	store.StartJanitor(context.Background(), janitorInterval, cfg.TaskRetention)

	orch := &orchestrator.Orchestrator{
		Source: ytdlp.New(cfg.YtdlpPath, log),
		Media:  ffmpeg.New(cfg.FFmpegPath, cfg.FFprobePath, log),
		AI:     aiclient.New(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiBaseURL, log),
		Store:  store,
		Cfg:    cfg,
		Log:    log,
		Retry:  aiclient.DefaultRetryPolicy,
	}

	app := fiber.New(fiber.Config{
		AppName:   "clipperd",
		BodyLimit: 1 * 1024 * 1024,
	})
	app.Use(cors.New())
	app.Use(middleware.RequestLogger())

	h := handlers.NewApplicationHandler(orch, store, log, cfg.OutputDir, cfg.GeminiAPIKey != "")
	handlers.RegisterRoutes(app, h)

	log.WithField("port", cfg.Port).Info("Starting clipperd")
	return app.Listen(":" + cfg.Port)
}

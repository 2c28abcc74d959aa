package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Pipeline constants. Earlier revisions of the pipeline shipped with [15,70]
// second clip bounds; [16,60] is the validated set. Change them here (or via
// env), never inline.
const (
	DefaultMinClipSeconds = 16
	DefaultMaxClipSeconds = 60

	// DefaultNumClips is the batch size a completed AI-mode task reports.
	DefaultNumClips = 3

	// MaxVideoDurationSeconds is the ceiling enforced at the validating
	// stage, before any download happens.
	MaxVideoDurationSeconds = 3600
)

// Config holds the service configuration, loaded from the environment.
type Config struct {
	Port      string
	OutputDir string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	YtdlpPath   string
	FFmpegPath  string
	FFprobePath string

	MinClipSeconds int
	MaxClipSeconds int

	// TaskRetention is how long terminal tasks stay queryable before the
	// janitor evicts them.
	TaskRetention time.Duration
}

// Load reads the configuration from the environment, applying defaults.
// Callers are expected to have loaded .env beforehand (best-effort).
func Load() Config {
	return Config{
		Port:      getenvDefault("PORT", "8080"),
		OutputDir: getenvDefault("OUTPUT_DIR", "output"),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getenvDefault("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiBaseURL: getenvDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),

		YtdlpPath:   getenvDefault("YTDLP_PATH", "yt-dlp"),
		FFmpegPath:  getenvDefault("FFMPEG_PATH", "ffmpeg"),
		FFprobePath: getenvDefault("FFPROBE_PATH", "ffprobe"),

		MinClipSeconds: getenvInt("MIN_CLIP_SECONDS", DefaultMinClipSeconds),
		MaxClipSeconds: getenvInt("MAX_CLIP_SECONDS", DefaultMaxClipSeconds),

		TaskRetention: getenvDuration("TASK_RETENTION", time.Hour),
	}
}

func (c Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is empty")
	}
	if c.OutputDir == "" {
		return errors.New("output dir is empty")
	}
	if c.MinClipSeconds <= 0 {
		return fmt.Errorf("min clip seconds must be > 0")
	}
	if c.MaxClipSeconds < c.MinClipSeconds {
		return fmt.Errorf("max clip seconds must be >= min clip seconds")
	}
	if c.GeminiAPIKey == "" {
		return errors.New("GEMINI_API_KEY is required (set it in .env)")
	}
	return nil
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

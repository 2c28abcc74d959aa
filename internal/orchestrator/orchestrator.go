// Package orchestrator drives the clip pipeline for one task: validate ->
// download -> extract audio -> transcribe -> analyze -> clip, with a shared
// progress record consumable by a polling client.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"

	"clipperai/config"
	"clipperai/internal/aiclient"
	"clipperai/internal/analysis"
	"clipperai/internal/highlights"
	"clipperai/internal/tasks"
	"clipperai/internal/timecode"
	"clipperai/internal/transcript"
	"clipperai/internal/ytdlp"
	"clipperai/models"
)

// VideoSource fetches video metadata and media files.
type VideoSource interface {
	Metadata(ctx context.Context, url string) (ytdlp.Metadata, error)
	Download(ctx context.Context, url, outDir, id string, progress func(frac float64)) (string, error)
}

// MediaTool covers the ffmpeg-backed operations.
type MediaTool interface {
	ExtractAudio(ctx context.Context, videoPath string) (string, error)
	RenderVerticalClip(ctx context.Context, inputPath, startTime, endTime, outputPath string) error
	VideoDuration(ctx context.Context, filePath string) (time.Duration, error)
}

// AIBackend is the generative transcription/analysis collaborator.
type AIBackend interface {
	Transcribe(ctx context.Context, audioPath string) (aiclient.Transcription, error)
	Analyze(ctx context.Context, prompt string) (string, error)
}

// Mode selects how clips are produced.
type Mode string

const (
	// ModeAI runs the full transcription/analysis pipeline.
	ModeAI Mode = "ai"
	// ModeManual renders exactly one caller-supplied time range, skipping
	// transcription and analysis.
	ModeManual Mode = "manual"
)

// Request is one clip-production request.
type Request struct {
	URL       string
	Mode      Mode
	StartTime string
	EndTime   string
	NumClips  int
}

// Orchestrator owns task execution. Each launched task runs on its own
// goroutine; the task store is the only structure shared with pollers.
type Orchestrator struct {
	Source VideoSource
	Media  MediaTool
	AI     AIBackend
	Store  *tasks.Store
	Cfg    config.Config
	Log    *logrus.Logger
	Retry  aiclient.RetryPolicy
}

// Progress milestones. These are a UX contract, not a work measure.
const (
	downloadProgressSpan = 25
	clippingBaseProgress = 85
	clippingProgressSpan = 15
)

// Launch registers a task and starts its worker goroutine. There is no
// admission control: every accepted request gets its own worker.
func (o *Orchestrator) Launch(req Request) string {
	id := o.Store.Create()
	go o.Run(context.Background(), id, req)
	return id
}

// Run executes the pipeline for one task through to a terminal state. Any
// transient media artifacts are removed on the way out regardless of outcome,
// and a panicking worker still leaves its task in a terminal error state.
func (o *Orchestrator) Run(ctx context.Context, taskID string, req Request) {
	log := o.Log.WithFields(logrus.Fields{"task_id": taskID, "url": req.URL})

	var videoPath, audioPath string
	defer func() {
		o.removeArtifact(videoPath, log)
		o.removeArtifact(audioPath, log)
	}()
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Task worker panicked")
			o.Store.Fail(taskID, "An unexpected error occurred")
		}
	}()

	if err := o.run(ctx, taskID, req, &videoPath, &audioPath, log); err != nil {
		log.WithError(err).Error("Task failed")
		o.Store.Fail(taskID, failureMessage(err))
		return
	}
	log.Info("Task completed")
}

func (o *Orchestrator) run(ctx context.Context, taskID string, req Request, videoPath, audioPath *string, log *logrus.Entry) error {
	if strings.TrimSpace(req.URL) == "" {
		return &models.ValidationError{Reason: "Please provide a video link."}
	}
	numClips := req.NumClips
	if numClips <= 0 || numClips > config.DefaultNumClips {
		numClips = config.DefaultNumClips
	}

	o.Store.SetStage(taskID, models.StatusValidating, 0, "Validating video...")
	md, err := o.Source.Metadata(ctx, req.URL)
	if err != nil {
		return &models.DownloadError{Err: err}
	}
	if md.DurationSeconds > config.MaxVideoDurationSeconds {
		return &models.ValidationError{Reason: fmt.Sprintf(
			"Video is too long (%s). The limit is %s.",
			timecode.FromSeconds(md.DurationSeconds),
			timecode.FromSeconds(config.MaxVideoDurationSeconds),
		)}
	}
	if req.Mode == ModeManual {
		if err := validateManualTimes(req, md.DurationSeconds); err != nil {
			return err
		}
	}

	o.Store.SetStage(taskID, models.StatusDownloading, 0, "Starting download...")
	path, err := o.Source.Download(ctx, req.URL, o.Cfg.OutputDir, md.ID, func(frac float64) {
		p := frac * downloadProgressSpan
		if p > downloadProgressSpan {
			p = downloadProgressSpan
		}
		o.Store.SetProgress(taskID, p, fmt.Sprintf("Downloading... %.1f%%", p))
	})
	if err != nil {
		return &models.DownloadError{Err: err}
	}
	*videoPath = path
	o.Store.SetProgress(taskID, downloadProgressSpan, "Download completed")

	if req.Mode == ModeManual {
		return o.runManual(ctx, taskID, req, md, *videoPath, log)
	}

	o.Store.SetStage(taskID, models.StatusExtractingAudio, 26, "Extracting audio...")
	ap, err := o.Media.ExtractAudio(ctx, *videoPath)
	if err != nil {
		return &models.ExtractionError{Err: err}
	}
	*audioPath = ap
	o.Store.SetProgress(taskID, 30, "Audio extracted.")

	o.Store.SetStage(taskID, models.StatusTranscribing, 35, "Preparing for transcription...")
	tr, err := aiclient.TranscribeWithRetry(ctx, o.AI, ap, o.Retry, log, func(d time.Duration) {
		o.Store.SetMessage(taskID, fmt.Sprintf("Rate limit hit, waiting %ds...", int(d.Seconds())))
	})
	if err != nil {
		return err
	}
	o.Store.SetProgress(taskID, 60, "Transcription completed")
	log.WithField("language", tr.Language).Info("Transcript ready")

	segs := transcript.ParseSegments(tr.Transcript, md.DurationSeconds)
	bounds := highlights.Bounds{MinSeconds: o.Cfg.MinClipSeconds, MaxSeconds: o.Cfg.MaxClipSeconds}

	o.Store.SetStage(taskID, models.StatusAnalyzing, 70, "Analyzing transcript for best clips...")
	var aiClips []models.ClipCandidate
	resp, err := o.AI.Analyze(ctx, analysis.BuildAnalysisPrompt(tr.Transcript, bounds))
	if err != nil {
		// Analysis failures never fail the task; the heuristic path covers.
		aerr := &models.AnalysisError{Err: err}
		log.WithError(aerr).Warn("Analysis failed, using intelligent fallback")
		o.Store.SetMessage(taskID, "Analysis failed, using intelligent fallback")
	} else {
		var report []string
		aiClips, report = analysis.ParseClipResponse(resp, bounds)
		if len(report) > 0 {
			log.WithField("rejected", report).Info("Dropped unusable AI clip proposals")
		}
	}
	batch := analysis.AssembleBatch(aiClips, segs, md.DurationSeconds, numClips, bounds)
	o.Store.SetProgress(taskID, 80, "Clip analysis completed")

	o.Store.SetStage(taskID, models.StatusClipping, clippingBaseProgress, "Creating vertical clips...")
	o.renderBatch(ctx, taskID, md, *videoPath, batch, log)

	o.Store.Complete(taskID, &models.ClipResult{Clips: batch, VideoTitle: md.Title})
	return nil
}

func (o *Orchestrator) runManual(ctx context.Context, taskID string, req Request, md ytdlp.Metadata, videoPath string, log *logrus.Entry) error {
	o.Store.SetStage(taskID, models.StatusClipping, clippingBaseProgress, "Creating vertical clip...")

	start := timecode.ToSeconds(req.StartTime)
	end := timecode.ToSeconds(req.EndTime)
	// The container's real duration can undershoot the source metadata;
	// clamp the end so the renderer is not asked to seek past EOF.
	if d, err := o.Media.VideoDuration(ctx, videoPath); err == nil {
		if durS := int(d.Seconds()); durS > start && end > durS {
			end = durS
		}
	}

	batch := []models.ClipCandidate{{
		StartTime: timecode.FromSeconds(start),
		EndTime:   timecode.FromSeconds(end),
		Score:     models.ClipScore{Value: 0, Origin: models.ScoreOriginManual},
		Reason:    "Manually selected time range",
	}}
	o.renderBatch(ctx, taskID, md, videoPath, batch, log)

	o.Store.Complete(taskID, &models.ClipResult{Clips: batch, VideoTitle: md.Title})
	return nil
}

func (o *Orchestrator) renderBatch(ctx context.Context, taskID string, md ytdlp.Metadata, videoPath string, batch []models.ClipCandidate, log *logrus.Entry) {
	safeTitle := sanitizeTitle(md.Title)
	for i := range batch {
		cand := &batch[i]
		if !cand.Renderable() {
			continue
		}
		filename := fmt.Sprintf("%s_%s_clip%d_9x16.mp4", md.ID, safeTitle, i+1)
		outPath := filepath.Join(o.Cfg.OutputDir, filename)
		if err := o.renderWithFallback(ctx, videoPath, cand, outPath); err != nil {
			rerr := &models.RenderError{Clip: i + 1, Err: err}
			log.WithError(rerr).Warn("Clip render failed")
			cand.Processed = false
			cand.Reason += " (Processing failed)"
		} else {
			cand.Processed = true
			name := filename
			cand.Filename = &name
		}
		progress := clippingBaseProgress + float64(i+1)/float64(len(batch))*clippingProgressSpan
		if progress > 99 {
			progress = 99
		}
		o.Store.SetProgress(taskID, progress, fmt.Sprintf("Created clip %d/%d...", i+1, len(batch)))
	}
}

// renderWithFallback tries the requested span, then one shorter attempt
// (half the duration, floored at the minimum clip bound) before giving up.
func (o *Orchestrator) renderWithFallback(ctx context.Context, videoPath string, cand *models.ClipCandidate, outPath string) error {
	err := o.Media.RenderVerticalClip(ctx, videoPath, cand.StartTime, cand.EndTime, outPath)
	if err == nil {
		return nil
	}

	start := timecode.ToSeconds(cand.StartTime)
	end := timecode.ToSeconds(cand.EndTime)
	short := (end - start) / 2
	if short < o.Cfg.MinClipSeconds {
		short = o.Cfg.MinClipSeconds
	}
	if end-start <= short {
		return err
	}
	shortEnd := timecode.FromSeconds(start + short)
	if err2 := o.Media.RenderVerticalClip(ctx, videoPath, cand.StartTime, shortEnd, outPath); err2 != nil {
		return err
	}
	cand.EndTime = shortEnd
	cand.Reason += " (shortened after a render failure)"
	return nil
}

func validateManualTimes(req Request, videoDuration int) error {
	start := timecode.ToSeconds(req.StartTime)
	end := timecode.ToSeconds(req.EndTime)
	if end <= start {
		return &models.ValidationError{Reason: fmt.Sprintf(
			"Invalid manual time range %q to %q.", req.StartTime, req.EndTime,
		)}
	}
	if videoDuration > 0 && start >= videoDuration {
		return &models.ValidationError{Reason: "Manual start time is past the end of the video."}
	}
	return nil
}

func failureMessage(err error) string {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return verr.Reason
	}
	var rlerr *models.RateLimitError
	if errors.As(err, &rlerr) {
		return "API rate limit exceeded. Please wait a few minutes and try again."
	}
	var derr *models.DownloadError
	if errors.As(err, &derr) {
		return "Failed to download video."
	}
	var xerr *models.ExtractionError
	if errors.As(err, &xerr) {
		return "Failed to extract audio."
	}
	var terr *models.TranscriptionError
	if errors.As(err, &terr) {
		return "Transcription error: " + terr.Err.Error()
	}
	return "An unexpected error occurred: " + err.Error()
}

func (o *Orchestrator) removeArtifact(path string, log *logrus.Entry) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.WithError(err).WithField("path", path).Warn("Failed to clean up artifact")
		return
	}
	log.WithField("path", path).Debug("Cleaned up artifact")
}

func sanitizeTitle(title string) string {
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	s := strings.ReplaceAll(strings.TrimSpace(b.String()), " ", "_")
	if runes := []rune(s); len(runes) > 20 {
		s = string(runes[:20])
	}
	if s == "" {
		s = "video"
	}
	return s
}

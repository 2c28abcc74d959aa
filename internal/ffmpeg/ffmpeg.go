// Package ffmpeg wraps the ffmpeg/ffprobe invocations the pipeline needs:
// audio extraction, duration probing and vertical clip rendering.
package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Executor struct {
	ffmpeg  string
	ffprobe string
	log     *logrus.Logger
}

func New(ffmpegPath, ffprobePath string, log *logrus.Logger) *Executor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if log == nil {
		log = logrus.New()
	}
	return &Executor{ffmpeg: ffmpegPath, ffprobe: ffprobePath, log: log}
}

// ffprobeOutput captures the format.duration field of ffprobe's JSON output.
type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// VideoDuration uses ffprobe to get the duration of a media file.
func (e *Executor) VideoDuration(ctx context.Context, filePath string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, e.ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		filePath,
	)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w\n%s", err, stderr.String())
	}

	var probed ffprobeOutput
	if err := json.Unmarshal(out.Bytes(), &probed); err != nil {
		return 0, fmt.Errorf("unmarshal ffprobe output: %w", err)
	}
	if probed.Format.Duration == "" {
		return 0, fmt.Errorf("no duration in ffprobe output: %s", out.String())
	}
	sec, err := strconv.ParseFloat(probed.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", probed.Format.Duration, err)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

// ExtractAudio extracts the audio track as an mp3 next to the video file and
// returns its path.
func (e *Executor) ExtractAudio(ctx context.Context, videoPath string) (string, error) {
	audioPath := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".mp3"
	cmd := exec.CommandContext(ctx, e.ffmpeg,
		"-i", videoPath,
		"-q:a", "0",
		"-map", "a",
		"-y",
		audioPath,
	)
	if b, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("ffmpeg extract audio: %w\n%s", err, string(b))
	}
	e.log.WithFields(logrus.Fields{"video": videoPath, "audio": audioPath}).Info("Audio extracted")
	return audioPath, nil
}

// RenderVerticalClip renders a 9:16 vertical-crop clip between two HH:MM:SS
// timestamps: center crop, 1080x1920 scale, libx264/aac.
func (e *Executor) RenderVerticalClip(ctx context.Context, inputPath, startTime, endTime, outputPath string) error {
	cmd := exec.CommandContext(ctx, e.ffmpeg,
		"-i", inputPath,
		"-ss", startTime,
		"-to", endTime,
		"-vf", "crop=ih*9/16:ih,scale=1080:1920,setsar=1",
		"-c:v", "libx264",
		"-c:a", "aac",
		"-preset", "fast",
		"-crf", "23",
		"-y",
		outputPath,
	)
	if b, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg render clip: %w\n%s", err, string(b))
	}
	e.log.WithFields(logrus.Fields{
		"input":  inputPath,
		"output": outputPath,
		"start":  startTime,
		"end":    endTime,
	}).Info("Clip rendered")
	return nil
}

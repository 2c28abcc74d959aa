// Package ytdlp shells out to yt-dlp for video metadata and downloads.
package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// Metadata is the subset of video metadata the pipeline needs.
type Metadata struct {
	ID              string
	Title           string
	DurationSeconds int
}

type Client struct {
	bin string
	log *logrus.Logger
}

func New(binPath string, log *logrus.Logger) *Client {
	if binPath == "" {
		binPath = "yt-dlp"
	}
	if log == nil {
		log = logrus.New()
	}
	return &Client{bin: binPath, log: log}
}

// Metadata fetches id, title and duration without downloading anything, so
// the duration ceiling can be enforced before the download stage.
func (c *Client) Metadata(ctx context.Context, url string) (Metadata, error) {
	cmd := exec.CommandContext(ctx, c.bin, "--dump-json", "--no-download", "--no-playlist", url)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Metadata{}, fmt.Errorf("yt-dlp metadata: %w\n%s", err, stderr.String())
	}

	var info struct {
		ID       string  `json:"id"`
		Title    string  `json:"title"`
		Duration float64 `json:"duration"`
	}
	if err := json.Unmarshal(out.Bytes(), &info); err != nil {
		return Metadata{}, fmt.Errorf("parse yt-dlp metadata: %w", err)
	}
	return Metadata{ID: info.ID, Title: info.Title, DurationSeconds: int(info.Duration)}, nil
}

var progressLine = regexp.MustCompile(`\[download\]\s+([\d.]+)%`)

// Download fetches the best mp4 rendition into outDir as <id>.<ext>,
// reporting fractional progress (0..1) through the callback as yt-dlp emits
// progress lines. Returns the path of the downloaded file.
func (c *Client) Download(ctx context.Context, url, outDir, id string, progress func(frac float64)) (string, error) {
	cmd := exec.CommandContext(ctx, c.bin,
		"-f", "best[ext=mp4]/best",
		"-o", filepath.Join(outDir, "%(id)s.%(ext)s"),
		"--no-playlist",
		"--newline",
		url,
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", err
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("yt-dlp start: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		m := progressLine.FindStringSubmatch(scanner.Text())
		if m == nil || progress == nil {
			continue
		}
		if pct, err := strconv.ParseFloat(m[1], 64); err == nil {
			progress(pct / 100)
		}
	}

	if err := cmd.Wait(); err != nil {
		return "", fmt.Errorf("yt-dlp download: %w\n%s", err, stderr.String())
	}

	path, err := findDownloaded(outDir, id)
	if err != nil {
		return "", err
	}
	c.log.WithFields(logrus.Fields{"url": url, "path": path}).Info("Download completed")
	return path, nil
}

func findDownloaded(outDir, id string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(outDir, id+".*"))
	if err != nil {
		return "", err
	}
	for _, m := range matches {
		switch strings.ToLower(filepath.Ext(m)) {
		case ".part", ".json", ".ytdl":
			continue
		}
		return m, nil
	}
	return "", fmt.Errorf("downloaded file for %q not found in %s", id, outDir)
}

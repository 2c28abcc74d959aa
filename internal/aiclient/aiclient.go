// Package aiclient talks to the generative transcription/analysis backend
// over its REST API and wraps the transcription call with bounded retries.
package aiclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const requestTimeout = 5 * time.Minute

// Client is a Gemini generateContent client.
type Client struct {
	key     string
	model   string
	baseURL string
	httpc   *http.Client
	log     *logrus.Logger
}

func New(apiKey, model, baseURL string, log *logrus.Logger) *Client {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	if log == nil {
		log = logrus.New()
	}
	return &Client{
		key:     apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: requestTimeout},
		log:     log,
	}
}

// apiError is a non-2xx backend response, kept for signature matching.
type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("ai backend status %d: %s", e.Status, e.Body)
}

// rateWord matches "rate" as a standalone word. A bare substring check would
// also hit the ":generateContent" endpoint name that URL errors carry.
var rateWord = regexp.MustCompile(`\brate\b`)

// IsRateLimited reports whether the error carries a rate-limit signature:
// HTTP 429, or error text mentioning a quota or rate.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var ae *apiError
	if errors.As(err, &ae) && ae.Status == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || rateWord.MatchString(msg)
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

func (c *Client) generate(ctx context.Context, parts []part) (string, error) {
	payload := map[string]any{
		"contents": []map[string]any{{"parts": parts}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.key)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(resp.Body)
		return "", &apiError{Status: resp.StatusCode, Body: truncate(string(rb), 400)}
	}

	var raw struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(raw.Candidates) == 0 {
		return "", errors.New("ai backend returned no candidates")
	}
	var b strings.Builder
	for _, p := range raw.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.New("ai backend returned empty content")
	}
	return text, nil
}

const transcriptionPrompt = `Transcribe the following audio. Include timestamps for each segment in [MM:SS] or [MM:SS.MS] format.
If the spoken language is primarily Hindi, you MUST provide the transcription in Hinglish (Hindi written in the Roman/Latin alphabet).
For all other languages, provide the transcription in English.
At the very beginning of your response, you MUST indicate the detected language on a single line, like this:
LANGUAGE: [Hinglish/English]

Then, provide the full transcript. For example:

LANGUAGE: Hinglish
[00:05] Namaste, aaj hum baat karenge...
[00:12] Ye bahut important topic hai...`

// Transcription is the result of a successful transcription call, with the
// language declaration already parsed out of the transcript text.
type Transcription struct {
	Transcript string
	Language   string
	IsHindi    bool
}

// Transcribe sends the audio file inline with the transcription prompt and
// returns the timestamped transcript. Rate-limit classification of the
// returned error is the retry controller's concern.
func (c *Client) Transcribe(ctx context.Context, audioPath string) (Transcription, error) {
	audio, err := os.ReadFile(audioPath)
	if err != nil {
		return Transcription{}, fmt.Errorf("read audio: %w", err)
	}

	c.log.WithFields(logrus.Fields{"audio": audioPath, "model": c.model}).Info("Transcribing audio")

	out, err := c.generate(ctx, []part{
		{Text: transcriptionPrompt},
		{InlineData: &inlineData{
			MimeType: "audio/mp3",
			Data:     base64.StdEncoding.EncodeToString(audio),
		}},
	})
	if err != nil {
		return Transcription{}, err
	}

	lang, transcript := splitLanguageHeader(out)
	return Transcription{
		Transcript: transcript,
		Language:   lang,
		IsHindi:    strings.EqualFold(lang, "Hinglish"),
	}, nil
}

// Analyze sends a text-only prompt and returns the raw response text.
func (c *Client) Analyze(ctx context.Context, prompt string) (string, error) {
	c.log.WithField("model", c.model).Info("Analyzing transcript")
	return c.generate(ctx, []part{{Text: prompt}})
}

var languageHeader = regexp.MustCompile(`(?i)^\s*LANGUAGE:\s*\[?([A-Za-z]+)\]?.*\n?`)

// splitLanguageHeader parses the leading "LANGUAGE: <value>" declaration and
// strips it from the transcript. Absent a declaration, English is assumed.
func splitLanguageHeader(s string) (lang, transcript string) {
	lang = "English"
	if m := languageHeader.FindStringSubmatch(s); m != nil {
		lang = m[1]
		s = s[len(m[0]):]
	}
	return lang, strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

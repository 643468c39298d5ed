// Package visionllm reads screen text with a multimodal chat model served
// through an OpenAI-compatible API such as OpenRouter.
package visionllm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"
	"time"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
	"desktop-agent/internal/infrastructure/prompts"
	"desktop-agent/internal/infrastructure/vision"

	"github.com/disintegration/imaging"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

var _ output.OCRBackend = (*Backend)(nil)

const (
	Name = "vision"

	noTextMarker      = "NO_TEXT"
	defaultConfidence = 0.8
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	// MaxImageWidth bounds the width of the uploaded image; boxes are scaled
	// back to the original size.
	MaxImageWidth     int
	RequestsPerSecond float64
	Timeout           time.Duration
	// Languages hints the expected scripts to the model.
	Languages []string
}

func DefaultConfig(apiKey, model string) Config {
	return Config{
		APIKey:            apiKey,
		Model:             model,
		BaseURL:           "https://openrouter.ai/api/v1",
		MaxImageWidth:     1600,
		RequestsPerSecond: 1,
		Timeout:           60 * time.Second,
	}
}

type Backend struct {
	client  *openai.Client
	model   string
	cfg     Config
	limiter *rate.Limiter
	logger  output.LoggerPort
}

type loggingTransport struct {
	base   http.RoundTripper
	logger output.LoggerPort
}

// RoundTrip logs request lines and status codes. Bodies carry whole
// screenshots and are never logged.
func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.logger.Warn("Vision request failed", "method", req.Method, "url", req.URL.String(), "error", err)
		return nil, err
	}
	t.logger.Debug("Vision request",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"elapsed", time.Since(start),
	)
	return resp, nil
}

func New(cfg Config, logger output.LoggerPort) *Backend {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	config.HTTPClient = &http.Client{
		Timeout:   cfg.Timeout,
		Transport: &loggingTransport{base: http.DefaultTransport, logger: logger},
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Backend{
		client:  openai.NewClientWithConfig(config),
		model:   cfg.Model,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

func (b *Backend) Name() string {
	return Name
}

func (b *Backend) Extract(ctx context.Context, img image.Image) (string, error) {
	prompt, err := prompts.Extract(prompts.ExtractData{NoTextMarker: noTextMarker, Languages: b.cfg.Languages})
	if err != nil {
		return "", err
	}
	sent := vision.Downscale(img, b.cfg.MaxImageWidth)
	reply, err := b.ask(ctx, prompt, sent)
	if err != nil {
		return "", err
	}
	if reply == noTextMarker {
		return "", nil
	}
	return reply, nil
}

func (b *Backend) Locate(ctx context.Context, img image.Image) ([]entity.RecognizedText, error) {
	sent := vision.Downscale(img, b.cfg.MaxImageWidth)
	sb := sent.Bounds()
	prompt, err := prompts.Locate(prompts.LocateData{Width: sb.Dx(), Height: sb.Dy(), Languages: b.cfg.Languages})
	if err != nil {
		return nil, err
	}
	reply, err := b.ask(ctx, prompt, sent)
	if err != nil {
		return nil, err
	}

	blocks, err := parseBlocks(reply, sb.Dx(), sb.Dy(), entity.RectFromImage(img.Bounds()))
	if err != nil {
		return nil, fmt.Errorf("vision model reply: %w", err)
	}
	b.logger.Debug("Vision model located text", "blocks", len(blocks))
	return blocks, nil
}

func (b *Backend) ask(ctx context.Context, prompt string, img image.Image) (string, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("vision rate limit: %w", err)
	}
	url, err := dataURL(img)
	if err != nil {
		return "", err
	}

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       b.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: prompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
					URL:    url,
					Detail: openai.ImageURLDetailHigh,
				}},
			},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func dataURL(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

type wireBlock struct {
	Text       string    `json:"text"`
	Box        []float64 `json:"box"`
	Confidence *float64  `json:"confidence"`
}

// parseBlocks decodes the model's JSON array. Boxes are given in the sent
// image's pixels, or as 0..1 fractions when every corner is at most 1, and
// are mapped onto bounds, the original image.
func parseBlocks(reply string, sentW, sentH int, bounds entity.Rect) ([]entity.RecognizedText, error) {
	start, end := strings.Index(reply, "["), strings.LastIndex(reply, "]")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON array in %q", truncate(reply, 80))
	}
	var wire []wireBlock
	if err := json.Unmarshal([]byte(reply[start:end+1]), &wire); err != nil {
		return nil, err
	}

	sx := float64(bounds.Width) / float64(max(sentW, 1))
	sy := float64(bounds.Height) / float64(max(sentH, 1))

	out := make([]entity.RecognizedText, 0, len(wire))
	for _, w := range wire {
		text := strings.TrimSpace(w.Text)
		if text == "" || len(w.Box) != 4 {
			continue
		}
		fx, fy := sx, sy
		if fractional(w.Box) {
			fx, fy = float64(bounds.Width), float64(bounds.Height)
		}
		box := entity.RectFromCorners(
			int(w.Box[0]*fx), int(w.Box[1]*fy),
			int(w.Box[2]*fx), int(w.Box[3]*fy),
		).Intersect(entity.NewRect(0, 0, bounds.Width, bounds.Height))
		if box.Empty() {
			continue
		}

		conf := defaultConfidence
		if w.Confidence != nil {
			conf = entity.ClampUnit(*w.Confidence)
		}
		out = append(out, entity.RecognizedText{Text: text, Box: box, Confidence: conf, Engine: Name})
	}
	return out, nil
}

func fractional(box []float64) bool {
	for _, v := range box {
		if v > 1 {
			return false
		}
	}
	return true
}

func truncate(s string, n int) string {
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}

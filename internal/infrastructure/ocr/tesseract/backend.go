// Package tesseract adapts the local Tesseract engine to the OCR backend port.
package tesseract

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"strings"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

var _ output.OCRBackend = (*Backend)(nil)

const Name = "tesseract"

// minWordConfidence drops boxes Tesseract itself is unsure about.
const minWordConfidence = 0.5

type Config struct {
	Languages []string
	// Lines boxes whole text lines instead of single words.
	Lines bool
}

func DefaultConfig() Config {
	return Config{Languages: []string{"chi_sim", "eng"}, Lines: true}
}

type Backend struct {
	cfg    Config
	logger output.LoggerPort
}

func New(cfg Config, logger output.LoggerPort) *Backend {
	if len(cfg.Languages) == 0 {
		cfg.Languages = DefaultConfig().Languages
	}
	return &Backend{cfg: cfg, logger: logger}
}

func (b *Backend) Name() string {
	return Name
}

// client returns a fresh engine loaded with img. Clients are not safe for
// concurrent use, so each call owns one.
func (b *Backend) client(img image.Image) (*gosseract.Client, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}

	c := gosseract.NewClient()
	if err := c.SetLanguage(b.cfg.Languages...); err != nil {
		c.Close()
		return nil, fmt.Errorf("set languages %v: %w", b.cfg.Languages, err)
	}
	if err := c.SetImageFromBytes(buf.Bytes()); err != nil {
		c.Close()
		return nil, fmt.Errorf("set image: %w", err)
	}
	return c, nil
}

func (b *Backend) Extract(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c, err := b.client(img)
	if err != nil {
		return "", err
	}
	defer c.Close()

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract recognition failed: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func (b *Backend) Locate(ctx context.Context, img image.Image) ([]entity.RecognizedText, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := b.client(img)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	level := gosseract.RIL_WORD
	if b.cfg.Lines {
		level = gosseract.RIL_TEXTLINE
	}
	boxes, err := c.GetBoundingBoxes(level)
	if err != nil {
		return nil, fmt.Errorf("tesseract layout analysis failed: %w", err)
	}

	out := recognized(boxes)
	b.logger.Debug("Tesseract located text", "boxes", len(boxes), "kept", len(out))
	return out, nil
}

// recognized converts Tesseract boxes, whose confidence is a percentage, and
// drops blank or uncertain ones.
func recognized(boxes []gosseract.BoundingBox) []entity.RecognizedText {
	out := make([]entity.RecognizedText, 0, len(boxes))
	for _, bb := range boxes {
		text := strings.TrimSpace(bb.Word)
		conf := bb.Confidence / 100
		if text == "" || conf <= minWordConfidence {
			continue
		}
		out = append(out, entity.RecognizedText{
			Text:       text,
			Box:        entity.RectFromImage(bb.Box),
			Confidence: conf,
			Engine:     Name,
		})
	}
	return out
}

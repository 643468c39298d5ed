// Package ocr runs text recognition through an ordered cascade of backends and
// learns which backend performs best.
package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
	"desktop-agent/internal/infrastructure/vision"
)

// DefaultBaseScores are the prior confidences per backend name.
func DefaultBaseScores() map[string]float64 {
	return map[string]float64{
		"paddleocr": 0.85,
		"easyocr":   0.80,
		"vision":    0.80,
		"tesseract": 0.75,
		"builtin":   0.60,
	}
}

const defaultBaseScore = 0.5

type Config struct {
	BaseScores map[string]float64
}

type ExtractOptions struct {
	// Preferred is tried first when registered.
	Preferred  string
	Preprocess entity.PreprocessMethod
}

type Cascade struct {
	engines []output.OCRBackend
	base    map[string]float64
	stats   *StatsStore
	logger  output.LoggerPort
	metrics output.MetricsPort
	now     func() time.Time
}

// NewCascade panics when engines is empty or two engines share a name.
func NewCascade(
	engines []output.OCRBackend,
	stats *StatsStore,
	logger output.LoggerPort,
	metrics output.MetricsPort,
	cfg Config,
) *Cascade {
	if len(engines) == 0 {
		panic("ocr: cascade needs at least one engine")
	}
	seen := make(map[string]bool, len(engines))
	for _, e := range engines {
		if seen[e.Name()] {
			panic(fmt.Sprintf("ocr: engine %q registered twice", e.Name()))
		}
		seen[e.Name()] = true
	}
	base := cfg.BaseScores
	if base == nil {
		base = DefaultBaseScores()
	}
	return &Cascade{
		engines: engines,
		base:    base,
		stats:   stats,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

func (c *Cascade) Engines() []string {
	names := make([]string, len(c.engines))
	for i, e := range c.engines {
		names[i] = e.Name()
	}
	return names
}

func (c *Cascade) order(preferred string) []output.OCRBackend {
	out := make([]output.OCRBackend, 0, len(c.engines))
	for _, e := range c.engines {
		if e.Name() == preferred {
			out = append(out, e)
		}
	}
	for _, e := range c.engines {
		if e.Name() != preferred {
			out = append(out, e)
		}
	}
	return out
}

// ExtractText tries each engine in turn until one returns non-empty text.
func (c *Cascade) ExtractText(ctx context.Context, frame *entity.Frame, opts ExtractOptions) entity.OCRResult {
	img := vision.Preprocess(frame.Image, opts.Preprocess)

	for _, engine := range c.order(opts.Preferred) {
		if ctx.Err() != nil {
			c.logger.Warn("OCR cascade cancelled", "engine", engine.Name(), "error", ctx.Err())
			break
		}

		start := c.now()
		text, err := engine.Extract(ctx, img)
		elapsed := c.now().Sub(start)
		text = strings.TrimSpace(text)
		ok := err == nil && text != ""

		c.stats.Record(engine.Name(), ok, elapsed)
		c.metrics.ObserveOCR(engine.Name(), ok, elapsed)

		if !ok {
			if err != nil {
				c.logger.Warn("OCR engine failed", "engine", engine.Name(), "error", err)
			} else {
				c.logger.Debug("OCR engine returned no text", "engine", engine.Name())
			}
			continue
		}

		c.logger.Debug("OCR engine succeeded", "engine", engine.Name(), "chars", len(text), "elapsed", elapsed)
		return entity.OCRResult{
			Text:       text,
			Confidence: c.Confidence(engine.Name(), text),
			EngineUsed: engine.Name(),
			Duration:   elapsed,
			Success:    true,
		}
	}

	return entity.OCRResult{Success: false}
}

// ExtractRegion runs ExtractText over a sub-rectangle of the frame.
func (c *Cascade) ExtractRegion(ctx context.Context, frame *entity.Frame, region entity.Rect, opts ExtractOptions) entity.OCRResult {
	region = region.Intersect(entity.NewRect(0, 0, frame.Width(), frame.Height()))
	if region.Empty() {
		return entity.OCRResult{}
	}
	sub := frame.WithImage(vision.Crop(frame.Image, region))
	sub.Bounds = frame.RectToScreen(region)
	return c.ExtractText(ctx, sub, opts)
}

// Confidence derives a score from the engine prior and the text shape.
func (c *Cascade) Confidence(engine, text string) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	score, ok := c.base[engine]
	if !ok {
		score = defaultBaseScore
	}
	switch n := len([]rune(text)); {
	case n > 10:
		score += 0.05
	case n < 3:
		score -= 0.10
	}
	if strings.IndexFunc(text, func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }) >= 0 {
		score += 0.05
	}
	return entity.ClampUnit(score)
}

// BestEngine ranks tried engines by 0.7*success rate + 0.3*speed. Untried
// engines are skipped; with no history the first registered engine wins.
func (c *Cascade) BestEngine() string {
	stats := c.stats.Snapshot()
	best, bestScore := "", -1.0
	for _, e := range c.engines {
		st, ok := stats[e.Name()]
		if !ok || st.Attempts == 0 {
			continue
		}
		if s := st.Score(); s > bestScore {
			best, bestScore = e.Name(), s
		}
	}
	if best == "" {
		return c.engines[0].Name()
	}
	return best
}

func (c *Cascade) engine(name string) output.OCRBackend {
	for _, e := range c.engines {
		if e.Name() == name {
			return e
		}
	}
	return nil
}

// ReadAll returns every text block the named engine can box, or the best
// engine's blocks when name is empty or unknown.
func (c *Cascade) ReadAll(ctx context.Context, frame *entity.Frame, name string) []entity.RecognizedText {
	engine := c.engine(name)
	if engine == nil {
		engine = c.engine(c.BestEngine())
	}
	blocks, err := engine.Locate(ctx, frame.Image)
	if err != nil {
		c.logger.Warn("Text location failed", "engine", engine.Name(), "error", err)
		return nil
	}
	return blocks
}

// FindTextLocations returns the blocks of the named (or best) engine matching
// target, best match first.
func (c *Cascade) FindTextLocations(ctx context.Context, frame *entity.Frame, target, engine string) []entity.TextMatch {
	matches := MatchAll(target, c.ReadAll(ctx, frame, engine))
	c.logger.Debug("Text search finished", "target", target, "matches", len(matches))
	return matches
}

func (c *Cascade) Statistics() map[string]entity.EngineStats {
	return c.stats.Snapshot()
}

// Package locator finds UI controls in a frame by fusing text, template and
// geometric-feature detection.
package locator

import (
	"context"
	"image"

	"desktop-agent/internal/application/port/input"
	"desktop-agent/internal/application/port/output"
	"desktop-agent/internal/domain/entity"
	"desktop-agent/internal/infrastructure/vision"
	"desktop-agent/internal/usecase/ocr"
)

var _ input.ElementLocator = (*Locator)(nil)

// TextFinder is the slice of the OCR cascade the locator depends on.
type TextFinder interface {
	ReadAll(ctx context.Context, frame *entity.Frame, engine string) []entity.RecognizedText
	FindTextLocations(ctx context.Context, frame *entity.Frame, target, engine string) []entity.TextMatch
	ExtractRegion(ctx context.Context, frame *entity.Frame, region entity.Rect, opts ocr.ExtractOptions) entity.OCRResult
}

const (
	textPadding       = 10
	templateThreshold = entity.DefaultSearchTolerance
	templateLimit     = 200
	regionFilterLimit = 20
)

type strategy int

const (
	useText strategy = 1 << iota
	useTemplate
	useFeature
	allowFuzzy
)

// tuning is derived from the retry parameters of the current attempt.
type tuning struct {
	strategies        strategy
	templateThreshold float64
	areaExpansion     float64
	engine            string
	preprocess        entity.PreprocessMethod
}

func defaultTuning() tuning {
	return tuning{
		strategies:        useText | useTemplate | useFeature | allowFuzzy,
		templateThreshold: templateThreshold,
		areaExpansion:     1,
	}
}

func tuningFor(p entity.RetryParams) tuning {
	t := defaultTuning()
	switch p.DetectionMethod {
	case entity.SearchOCRText:
		t.strategies = useText
	case entity.SearchFuzzyMatch:
		t.strategies = useText | allowFuzzy
	case entity.SearchImageMatch:
		t.strategies = useTemplate | useFeature
	case entity.SearchCoordinateEstimate:
		t.strategies = useFeature
	}
	if p.SearchTolerance > 0 {
		t.templateThreshold = min(t.templateThreshold, p.SearchTolerance)
	}
	if p.SearchAreaExpansion > 0 {
		t.areaExpansion = p.SearchAreaExpansion
	}
	t.engine = p.OCREngine
	t.preprocess = p.Preprocess
	return t
}

type Locator struct {
	text    TextFinder
	logger  output.LoggerPort
	metrics output.MetricsPort
	tune    tuning
}

func New(text TextFinder, logger output.LoggerPort, metrics output.MetricsPort) *Locator {
	return &Locator{
		text:    text,
		logger:  logger,
		metrics: metrics,
		tune:    defaultTuning(),
	}
}

func (l *Locator) Tuned(params entity.RetryParams) input.ElementLocator {
	cp := *l
	cp.tune = tuningFor(params)
	return &cp
}

func (l *Locator) allows(s strategy) bool {
	return l.tune.strategies&s != 0
}

// FindButton runs the text, template and feature strategies that apply and
// fuses their results.
func (l *Locator) FindButton(ctx context.Context, frame *entity.Frame, text string, template image.Image) []entity.Candidate {
	var out []entity.Candidate
	if text != "" && l.allows(useText) {
		out = append(out, l.buttonsByText(ctx, frame, text)...)
	}
	if template != nil && l.allows(useTemplate) {
		out = append(out, l.buttonsByTemplate(frame, template)...)
	}
	if l.allows(useFeature) {
		out = append(out, buttonsByFeatures(vision.ToGray(frame.Image))...)
	}
	out = Deduplicate(out)
	l.observe(string(entity.KindButton), out)
	return out
}

func (l *Locator) FindInput(ctx context.Context, frame *entity.Frame, label string) []entity.Candidate {
	gray := vision.ToGray(frame.Image)
	var out []entity.Candidate
	if label != "" && l.allows(useText) {
		out = append(out, l.inputsByLabel(ctx, frame, gray, label)...)
	}
	if l.allows(useFeature) {
		out = append(out, inputsByFeatures(gray)...)
	}
	out = Deduplicate(out)
	l.observe(string(entity.KindInput), out)
	return out
}

// FindClickable aggregates buttons, links, icons and menu items.
func (l *Locator) FindClickable(ctx context.Context, frame *entity.Frame) []entity.Candidate {
	gray := vision.ToGray(frame.Image)
	var out []entity.Candidate
	if l.allows(useFeature) {
		out = append(out, buttonsByFeatures(gray)...)
		out = append(out, findLinks(frame.Image)...)
		out = append(out, findIcons(gray)...)
	}
	if l.allows(useText) {
		out = append(out, l.menuItems(ctx, frame)...)
	}
	out = Deduplicate(out)
	l.observe("clickable", out)
	return out
}

func (l *Locator) observe(kind string, out []entity.Candidate) {
	l.metrics.ObserveCandidates(kind, len(out))
	l.logger.Debug("Candidates found", "kind", kind, "count", len(out))
}

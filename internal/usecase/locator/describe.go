package locator

import (
	"context"
	"regexp"
	"strings"

	"desktop-agent/internal/domain/entity"
	"desktop-agent/internal/usecase/ocr"
)

// Description is a parsed natural-language element reference such as
// "OK button" or "用户名输入框". An empty Kind means the kind was not stated.
type Description struct {
	Kind   entity.ElementKind
	Target string
}

var descriptionKinds = []struct {
	kind    entity.ElementKind
	pattern *regexp.Regexp
}{
	{entity.KindButton, regexp.MustCompile(`(?i)按钮|\bbutton\b`)},
	{entity.KindInput, regexp.MustCompile(`(?i)输入框|输入|\binput\b`)},
	{entity.KindText, regexp.MustCompile(`(?i)文字|文本|\btext\b`)},
}

func ParseDescription(description string) Description {
	for _, k := range descriptionKinds {
		if k.pattern.MatchString(description) {
			target := k.pattern.ReplaceAllString(description, " ")
			return Description{Kind: k.kind, Target: strings.Join(strings.Fields(target), " ")}
		}
	}
	return Description{Target: strings.Join(strings.Fields(description), " ")}
}

// FindElement resolves a description into candidates. Unqualified
// descriptions are tried as text first, then as the label of a clickable
// element.
func (l *Locator) FindElement(ctx context.Context, description string, frame *entity.Frame) []entity.Candidate {
	d := ParseDescription(description)
	l.logger.Debug("Finding element", "description", description, "kind", d.Kind, "target", d.Target)

	switch d.Kind {
	case entity.KindButton:
		return l.FindButton(ctx, frame, d.Target, nil)
	case entity.KindInput:
		return l.FindInput(ctx, frame, d.Target)
	case entity.KindText:
		return l.textCandidates(ctx, frame, d.Target)
	}

	if d.Target == "" {
		return l.FindClickable(ctx, frame)
	}
	if out := l.textCandidates(ctx, frame, d.Target); len(out) > 0 {
		return out
	}
	return l.labelledClickables(ctx, frame, d.Target)
}

func (l *Locator) textCandidates(ctx context.Context, frame *entity.Frame, target string) []entity.Candidate {
	if target == "" || !l.allows(useText) {
		return nil
	}
	matches := l.textMatches(ctx, frame, target)
	out := make([]entity.Candidate, 0, len(matches))
	for _, m := range matches {
		out = append(out, entity.Candidate{
			Box:        m.Box,
			Confidence: entity.ClampUnit(m.Score),
			Method:     entity.DetectText,
			Kind:       entity.KindText,
			Text:       m.Text,
		})
	}
	out = Deduplicate(out)
	l.observe(string(entity.KindText), out)
	return out
}

// labelledClickables keeps the clickable elements whose own text contains
// target.
func (l *Locator) labelledClickables(ctx context.Context, frame *entity.Frame, target string) []entity.Candidate {
	clickable := l.FindClickable(ctx, frame)
	if len(clickable) > regionFilterLimit {
		clickable = clickable[:regionFilterLimit]
	}
	opts := ocr.ExtractOptions{Preferred: l.tune.engine, Preprocess: l.tune.preprocess}
	want := strings.ToLower(target)

	var out []entity.Candidate
	for _, c := range clickable {
		if ctx.Err() != nil {
			break
		}
		res := l.text.ExtractRegion(ctx, frame, c.Box, opts)
		if !res.Success || !strings.Contains(strings.ToLower(res.Text), want) {
			continue
		}
		c.Text = strings.TrimSpace(res.Text)
		out = append(out, c)
	}
	return out
}

// LocatePrecisely returns the center of the best candidate for description.
func (l *Locator) LocatePrecisely(ctx context.Context, description string, frame *entity.Frame) (entity.Point, bool) {
	candidates := l.FindElement(ctx, description, frame)
	if len(candidates) == 0 {
		l.logger.Info("Element not located", "description", description)
		return entity.Point{}, false
	}
	best := candidates[0]
	l.logger.Info("Element located",
		"description", description,
		"point", best.Center().String(),
		"method", best.Method,
		"confidence", best.Confidence,
	)
	return best.Center(), true
}

package locator

import (
	"context"
	"strings"
	"unicode/utf8"

	"desktop-agent/internal/domain/entity"
	"desktop-agent/internal/infrastructure/vision"
)

const (
	textConfidenceFactor  = 0.9
	labelConfidenceFactor = 0.8
	menuConfidence        = 0.7

	// Input boxes are searched this far to the right of, or below, a label.
	labelRightGap   = 10
	labelRightWidth = 200
	labelBelowGap   = 5
	labelBelowExtra = 100
	labelBelowH     = 30
)

var menuKeywords = []string{
	"文件", "编辑", "查看", "工具", "帮助", "设置", "选项",
	"File", "Edit", "View", "Tools", "Help", "Settings", "Options",
	"首页", "关于", "联系", "登录", "注册", "退出",
}

// prepared applies the tuned preprocessing before OCR.
func (l *Locator) prepared(frame *entity.Frame) *entity.Frame {
	if l.tune.preprocess != "" && l.tune.preprocess != entity.PreprocessNone {
		return frame.WithImage(vision.Preprocess(frame.Image, l.tune.preprocess))
	}
	return frame
}

func (l *Locator) readFrame(ctx context.Context, frame *entity.Frame) []entity.RecognizedText {
	return l.text.ReadAll(ctx, l.prepared(frame), l.tune.engine)
}

func (l *Locator) textMatches(ctx context.Context, frame *entity.Frame, target string) []entity.TextMatch {
	matches := l.text.FindTextLocations(ctx, l.prepared(frame), target, l.tune.engine)
	if l.allows(allowFuzzy) {
		return matches
	}
	kept := matches[:0]
	for _, m := range matches {
		if m.Kind != entity.MatchFuzzy {
			kept = append(kept, m)
		}
	}
	return kept
}

func (l *Locator) buttonsByText(ctx context.Context, frame *entity.Frame, text string) []entity.Candidate {
	matches := l.textMatches(ctx, frame, text)
	out := make([]entity.Candidate, 0, len(matches))
	for _, m := range matches {
		out = append(out, entity.Candidate{
			Box:        m.Box.Expand(textPadding).Scale(l.tune.areaExpansion),
			Confidence: m.Score * textConfidenceFactor,
			Method:     entity.DetectText,
			Kind:       entity.KindButton,
			Text:       m.Text,
		})
	}
	return out
}

// labelSearchAreas are the regions right of and below a label where its
// input box is expected.
func labelSearchAreas(label entity.Rect) []entity.Rect {
	return []entity.Rect{
		entity.NewRect(label.X+label.Width+labelRightGap, label.Y, labelRightWidth, label.Height),
		entity.NewRect(label.X, label.Y+label.Height+labelBelowGap, label.Width+labelBelowExtra, labelBelowH),
	}
}

func (l *Locator) inputsByLabel(ctx context.Context, frame *entity.Frame, gray *vision.Gray, label string) []entity.Candidate {
	bounds := gray.Bounds()
	var out []entity.Candidate
	for _, m := range l.textMatches(ctx, frame, label) {
		for _, area := range labelSearchAreas(m.Box) {
			area = area.Intersect(bounds)
			if area.Empty() {
				continue
			}
			if s := inputScore(gray, area); s > labelAccept {
				out = append(out, entity.Candidate{
					Box:        area,
					Confidence: m.Score * labelConfidenceFactor,
					Method:     entity.DetectText,
					Kind:       entity.KindInput,
					Text:       m.Text,
				})
			}
		}
	}
	return out
}

func isMenuText(text string) bool {
	n := utf8.RuneCountInString(text)
	if n < 2 || n > 20 {
		return false
	}
	for _, k := range menuKeywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

func (l *Locator) menuItems(ctx context.Context, frame *entity.Frame) []entity.Candidate {
	var out []entity.Candidate
	for _, block := range l.readFrame(ctx, frame) {
		text := strings.TrimSpace(block.Text)
		if !isMenuText(text) {
			continue
		}
		out = append(out, entity.Candidate{
			Box:        block.Box,
			Confidence: menuConfidence,
			Method:     entity.DetectMenu,
			Kind:       entity.KindMenuItem,
			Text:       text,
		})
	}
	return out
}

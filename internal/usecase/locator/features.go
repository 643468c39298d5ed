package locator

import (
	"image"

	"desktop-agent/internal/domain/entity"
	"desktop-agent/internal/infrastructure/vision"
)

type shapeFilter struct {
	minArea, maxArea     int
	minAspect, maxAspect float64
	minExtent            float64
}

func (f shapeFilter) accepts(c vision.Contour) bool {
	if c.Area < f.minArea || c.Area > f.maxArea {
		return false
	}
	aspect := c.Box.AspectRatio()
	if aspect < f.minAspect || aspect > f.maxAspect {
		return false
	}
	return c.Extent() >= f.minExtent
}

var (
	buttonShape = shapeFilter{minArea: 100, maxArea: 50000, minAspect: 0.3, maxAspect: 10, minExtent: 0.5}
	inputShape  = shapeFilter{minArea: 200, maxArea: 20000, minAspect: 1.5, maxAspect: 20}
	iconShape   = shapeFilter{minArea: 100, maxArea: 2500, minAspect: 0.5, maxAspect: 2}
)

const (
	buttonAccept = 0.5
	inputAccept  = 0.6
	labelAccept  = 0.5

	linkConfidence = 0.7
	iconConfidence = 0.6
	linkMinArea    = 50
)

// buttonScore rates how button-like a region looks: a moderate amount of
// border, a flat fill and a typical size.
func buttonScore(gray *vision.Gray, r entity.Rect) float64 {
	region := gray.Sub(r)
	if region.W == 0 || region.H == 0 {
		return 0
	}
	score := 0.0
	if d := vision.Canny(region, 50, 150).Density(); d > 0.1 && d < 0.5 {
		score += 0.3
	}
	if _, std := region.Stats(); std < 30 {
		score += 0.3
	}
	if r.Width > 20 && r.Width < 200 && r.Height > 15 && r.Height < 60 {
		score += 0.4
	}
	return min(1, score)
}

// inputScore rates how input-like a region looks: wide, with a rectangular
// border and a bright interior.
func inputScore(gray *vision.Gray, r entity.Rect) float64 {
	region := gray.Sub(r)
	if region.W == 0 || region.H == 0 || r.Height == 0 {
		return 0
	}
	score := 0.0
	if aspect := r.AspectRatio(); aspect > 2 && aspect < 15 {
		score += 0.4
	}
	for _, c := range vision.FindContours(vision.Canny(region, 30, 100)) {
		if vision.IsQuadrilateral(c.Boundary) {
			score += 0.3
			break
		}
	}
	if mean, _ := region.Stats(); mean > 200 {
		score += 0.3
	}
	return min(1, score)
}

func buttonsByFeatures(gray *vision.Gray) []entity.Candidate {
	var out []entity.Candidate
	for _, c := range vision.FindContours(vision.Canny(gray, 50, 150)) {
		if !buttonShape.accepts(c) {
			continue
		}
		if s := buttonScore(gray, c.Box); s > buttonAccept {
			out = append(out, entity.Candidate{
				Box:        c.Box,
				Confidence: s,
				Method:     entity.DetectFeature,
				Kind:       entity.KindButton,
			})
		}
	}
	return out
}

func inputsByFeatures(gray *vision.Gray) []entity.Candidate {
	var out []entity.Candidate
	for _, c := range vision.FindContours(vision.Canny(gray, 30, 100)) {
		if !inputShape.accepts(c) {
			continue
		}
		if s := inputScore(gray, c.Box); s > inputAccept {
			out = append(out, entity.Candidate{
				Box:        c.Box,
				Confidence: s,
				Method:     entity.DetectFeature,
				Kind:       entity.KindInput,
			})
		}
	}
	return out
}

// findLinks marks saturated blue regions, the default hyperlink colour.
func findLinks(img image.Image) []entity.Candidate {
	mask := vision.InRange(img, vision.HSV{H: 100, S: 50, V: 50}, vision.HSV{H: 130, S: 255, V: 255})
	var out []entity.Candidate
	for _, c := range vision.FindContours(mask) {
		if c.Area < linkMinArea {
			continue
		}
		out = append(out, entity.Candidate{
			Box:        c.Box,
			Confidence: linkConfidence,
			Method:     entity.DetectColor,
			Kind:       entity.KindLink,
		})
	}
	return out
}

// findIcons marks small near-square outlines.
func findIcons(gray *vision.Gray) []entity.Candidate {
	var out []entity.Candidate
	for _, c := range vision.FindContours(vision.Canny(gray, 50, 150)) {
		if !iconShape.accepts(c) {
			continue
		}
		out = append(out, entity.Candidate{
			Box:        c.Box,
			Confidence: iconConfidence,
			Method:     entity.DetectShape,
			Kind:       entity.KindIcon,
		})
	}
	return out
}

func (l *Locator) buttonsByTemplate(frame *entity.Frame, template image.Image) []entity.Candidate {
	matches := vision.FindTemplate(vision.ToGray(frame.Image), vision.ToGray(template), l.tune.templateThreshold, templateLimit)
	out := make([]entity.Candidate, 0, len(matches))
	for _, m := range matches {
		out = append(out, entity.Candidate{
			Box:        m.Box,
			Confidence: m.Score,
			Method:     entity.DetectTemplate,
			Kind:       entity.KindButton,
		})
	}
	return out
}

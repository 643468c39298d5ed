package entity

type DetectionMethod string

const (
	DetectText     DetectionMethod = "text"
	DetectTemplate DetectionMethod = "template"
	DetectFeature  DetectionMethod = "feature"
	DetectColor    DetectionMethod = "color"
	DetectShape    DetectionMethod = "shape"
	DetectMenu     DetectionMethod = "menu"
)

type ElementKind string

const (
	KindButton   ElementKind = "button"
	KindInput    ElementKind = "input"
	KindIcon     ElementKind = "icon"
	KindLink     ElementKind = "link"
	KindMenuItem ElementKind = "menu-item"
	KindText     ElementKind = "text"
)

// Candidate is a scored hypothesis that Box holds a UI control.
// Box is in frame-local coordinates.
type Candidate struct {
	Box        Rect            `json:"box"`
	Confidence float64         `json:"confidence"`
	Method     DetectionMethod `json:"method"`
	Kind       ElementKind     `json:"kind"`
	Text       string          `json:"text,omitempty"`
}

func (c Candidate) Center() Point {
	return c.Box.Center()
}

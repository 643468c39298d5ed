package entity

import "time"

type RecognizedText struct {
	Text       string  `json:"text"`
	Box        Rect    `json:"box"`
	Confidence float64 `json:"confidence"`
	Engine     string  `json:"engine"`
}

type MatchKind string

const (
	MatchExact    MatchKind = "exact"
	MatchContains MatchKind = "contains"
	MatchFuzzy    MatchKind = "fuzzy"
)

// TextMatch is a located occurrence of a searched string.
type TextMatch struct {
	RecognizedText
	Kind  MatchKind `json:"match_kind"`
	Score float64   `json:"match_score"`
}

type OCRResult struct {
	Text       string        `json:"text"`
	Confidence float64       `json:"confidence"`
	EngineUsed string        `json:"engine_used,omitempty"`
	Duration   time.Duration `json:"duration"`
	Success    bool          `json:"success"`
}

type PreprocessMethod string

const (
	PreprocessNone     PreprocessMethod = "none"
	PreprocessContrast PreprocessMethod = "enhance_contrast"
	PreprocessDenoise  PreprocessMethod = "denoise"
	PreprocessSharpen  PreprocessMethod = "sharpen"
	PreprocessBinarize PreprocessMethod = "binarize"
)

var PreprocessMethods = []PreprocessMethod{
	PreprocessNone,
	PreprocessContrast,
	PreprocessDenoise,
	PreprocessSharpen,
	PreprocessBinarize,
}

// EngineStats are rolling per-engine counters.
type EngineStats struct {
	Attempts   int           `json:"attempts"`
	Successes  int           `json:"successes"`
	AvgLatency time.Duration `json:"avg_latency"`
}

func (s EngineStats) SuccessRate() float64 {
	if s.Attempts <= 0 {
		return 0
	}
	return ClampUnit(float64(s.Successes) / float64(s.Attempts))
}

// SpeedScore maps average latency onto [0,1] with 10s as the zero point.
func (s EngineStats) SpeedScore() float64 {
	return max(0, 1-s.AvgLatency.Seconds()/10)
}

func (s EngineStats) Score() float64 {
	return 0.7*s.SuccessRate() + 0.3*s.SpeedScore()
}

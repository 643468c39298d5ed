package entity

import "time"

type ClickMethod string

const (
	ClickSingle ClickMethod = "single"
	ClickDouble ClickMethod = "double"
	ClickRight  ClickMethod = "right"
	ClickMiddle ClickMethod = "middle"
)

var ClickMethods = []ClickMethod{ClickSingle, ClickDouble, ClickRight, ClickMiddle}

type InputMethod string

const (
	InputType     InputMethod = "type"
	InputPaste    InputMethod = "paste"
	InputSendKeys InputMethod = "send_keys"
)

var InputMethods = []InputMethod{InputType, InputPaste, InputSendKeys}

type SearchMethod string

const (
	SearchOCRText            SearchMethod = "ocr_text"
	SearchImageMatch         SearchMethod = "image_match"
	SearchCoordinateEstimate SearchMethod = "coordinate_estimate"
	SearchFuzzyMatch         SearchMethod = "fuzzy_match"
)

var SearchMethods = []SearchMethod{SearchOCRText, SearchImageMatch, SearchCoordinateEstimate, SearchFuzzyMatch}

// DefaultSearchTolerance is the template-match acceptance score used when no
// retry has relaxed it.
const DefaultSearchTolerance = 0.7

// RetryParams is the typed parameter bag an operation reads on each attempt.
// Zero values mean "use the operation's own default".
type RetryParams struct {
	SearchTolerance     float64
	DetectionMethod     SearchMethod
	SearchAreaExpansion float64
	ForceNewCapture     bool
	TryScroll           bool
	ScrollDirection     string

	ClickOffset  Point
	ClickMethod  ClickMethod
	PreClickWait time.Duration
	ClickHold    time.Duration

	ClearBeforeInput bool
	InputDelay       time.Duration
	Refocus          bool
	InputMethod      InputMethod

	OCREngine           string
	Preprocess          PreprocessMethod
	OCRRegionExpansion  float64
	ConfidenceThreshold float64

	OperationTimeout time.Duration
	ElementWait      time.Duration

	ConnectionTimeout time.Duration
	Reconnect         bool

	ElevatedPrivileges bool
	AlternativeMethod  bool

	GenericWait    time.Duration
	VerboseLogging bool
}

// ParamPatch is a partial update of RetryParams. Nil fields are left alone.
type ParamPatch struct {
	SearchTolerance     *float64
	DetectionMethod     *SearchMethod
	SearchAreaExpansion *float64
	ForceNewCapture     *bool
	TryScroll           *bool
	ScrollDirection     *string

	ClickOffset  *Point
	ClickMethod  *ClickMethod
	PreClickWait *time.Duration
	ClickHold    *time.Duration

	ClearBeforeInput *bool
	InputDelay       *time.Duration
	Refocus          *bool
	InputMethod      *InputMethod

	OCREngine           *string
	Preprocess          *PreprocessMethod
	OCRRegionExpansion  *float64
	ConfidenceThreshold *float64

	OperationTimeout *time.Duration
	ElementWait      *time.Duration

	ConnectionTimeout *time.Duration
	Reconnect         *bool

	ElevatedPrivileges *bool
	AlternativeMethod  *bool

	GenericWait    *time.Duration
	VerboseLogging *bool
}

func Ptr[T any](v T) *T {
	return &v
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Apply returns p with every non-nil patch field written over it.
func (p RetryParams) Apply(patch ParamPatch) RetryParams {
	setIf(&p.SearchTolerance, patch.SearchTolerance)
	setIf(&p.DetectionMethod, patch.DetectionMethod)
	setIf(&p.SearchAreaExpansion, patch.SearchAreaExpansion)
	setIf(&p.ForceNewCapture, patch.ForceNewCapture)
	setIf(&p.TryScroll, patch.TryScroll)
	setIf(&p.ScrollDirection, patch.ScrollDirection)

	setIf(&p.ClickOffset, patch.ClickOffset)
	setIf(&p.ClickMethod, patch.ClickMethod)
	setIf(&p.PreClickWait, patch.PreClickWait)
	setIf(&p.ClickHold, patch.ClickHold)

	setIf(&p.ClearBeforeInput, patch.ClearBeforeInput)
	setIf(&p.InputDelay, patch.InputDelay)
	setIf(&p.Refocus, patch.Refocus)
	setIf(&p.InputMethod, patch.InputMethod)

	setIf(&p.OCREngine, patch.OCREngine)
	setIf(&p.Preprocess, patch.Preprocess)
	setIf(&p.OCRRegionExpansion, patch.OCRRegionExpansion)
	setIf(&p.ConfidenceThreshold, patch.ConfidenceThreshold)

	setIf(&p.OperationTimeout, patch.OperationTimeout)
	setIf(&p.ElementWait, patch.ElementWait)

	setIf(&p.ConnectionTimeout, patch.ConnectionTimeout)
	setIf(&p.Reconnect, patch.Reconnect)

	setIf(&p.ElevatedPrivileges, patch.ElevatedPrivileges)
	setIf(&p.AlternativeMethod, patch.AlternativeMethod)

	setIf(&p.GenericWait, patch.GenericWait)
	setIf(&p.VerboseLogging, patch.VerboseLogging)
	return p
}

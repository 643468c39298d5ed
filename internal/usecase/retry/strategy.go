package retry

import (
	"math/rand"
	"time"

	"desktop-agent/internal/domain/entity"
)

// Strategy derives the parameter patch for the next attempt after a failure
// on the given zero-based attempt.
type Strategy func(p entity.RetryParams, attempt int, rng *rand.Rand) entity.ParamPatch

const (
	toleranceStep       = 0.1
	minTolerance        = 0.5
	initialConfidence   = 0.8
	minConfidence       = 0.3
	maxClickOffset      = 5
	defaultInputDelay   = 100 * time.Millisecond
	maxInputDelay       = time.Second
	initialOpTimeout    = 30 * time.Second
	initialElementWait  = 5 * time.Second
	initialConnTimeout  = 10 * time.Second
	initialGenericWait  = time.Second
	scrollFromAttempt   = 2
	defaultOCRRotation  = "tesseract"
	areaExpansionStep   = 0.2
	regionExpansionStep = 0.1
)

// DefaultStrategies returns the strategy table keyed by failure type. The
// OCR strategy rotates through engines in the given order.
func DefaultStrategies(engines []string) map[entity.FailureType]Strategy {
	if len(engines) == 0 {
		engines = []string{defaultOCRRotation}
	}
	return map[entity.FailureType]Strategy{
		entity.FailureElementNotFound:  elementSearch,
		entity.FailureClickFailed:      clickRetry,
		entity.FailureInputFailed:      inputRetry,
		entity.FailureOCRFailed:        ocrRetry(engines),
		entity.FailureTimeout:          longerWait,
		entity.FailureNetworkError:     networkRetry,
		entity.FailurePermissionDenied: permissionRetry,
		entity.FailureUnknown:          genericRetry,
	}
}

func elementSearch(p entity.RetryParams, attempt int, _ *rand.Rand) entity.ParamPatch {
	patch := entity.ParamPatch{ForceNewCapture: entity.Ptr(true)}

	tolerance := p.SearchTolerance
	if tolerance <= 0 {
		tolerance = entity.DefaultSearchTolerance
	}
	tolerance = max(minTolerance, tolerance-toleranceStep)
	patch.SearchTolerance = &tolerance

	if attempt < len(entity.SearchMethods) {
		patch.DetectionMethod = entity.Ptr(entity.SearchMethods[attempt])
	}

	expansion := 1.0
	if p.SearchAreaExpansion > 0 {
		expansion = p.SearchAreaExpansion + areaExpansionStep
	}
	patch.SearchAreaExpansion = &expansion

	if attempt >= scrollFromAttempt {
		patch.TryScroll = entity.Ptr(true)
		dir := "up"
		if attempt%2 == 0 {
			dir = "down"
		}
		patch.ScrollDirection = &dir
	}
	return patch
}

func clickRetry(_ entity.RetryParams, attempt int, rng *rand.Rand) entity.ParamPatch {
	var offset entity.Point
	if attempt > 0 {
		offset = entity.Point{
			X: rng.Intn(2*maxClickOffset+1) - maxClickOffset,
			Y: rng.Intn(2*maxClickOffset+1) - maxClickOffset,
		}
	}
	patch := entity.ParamPatch{
		ClickOffset:  &offset,
		PreClickWait: entity.Ptr(500*time.Millisecond + time.Duration(attempt)*200*time.Millisecond),
		ClickHold:    entity.Ptr(100*time.Millisecond + time.Duration(attempt)*50*time.Millisecond),
	}
	if attempt < len(entity.ClickMethods) {
		patch.ClickMethod = entity.Ptr(entity.ClickMethods[attempt])
	}
	return patch
}

func inputRetry(p entity.RetryParams, _ int, _ *rand.Rand) entity.ParamPatch {
	delay := p.InputDelay
	if delay <= 0 {
		delay = defaultInputDelay
	}
	delay = min(delay*3/2, maxInputDelay)

	next := entity.InputType
	for i, m := range entity.InputMethods {
		if m == p.InputMethod || (p.InputMethod == "" && m == entity.InputType) {
			next = entity.InputMethods[(i+1)%len(entity.InputMethods)]
			break
		}
	}
	return entity.ParamPatch{
		ClearBeforeInput: entity.Ptr(true),
		InputDelay:       &delay,
		Refocus:          entity.Ptr(true),
		InputMethod:      &next,
	}
}

func ocrRetry(engines []string) Strategy {
	return func(p entity.RetryParams, attempt int, _ *rand.Rand) entity.ParamPatch {
		var patch entity.ParamPatch
		if attempt < len(engines) {
			patch.OCREngine = entity.Ptr(engines[attempt])
		}
		if attempt < len(entity.PreprocessMethods) {
			patch.Preprocess = entity.Ptr(entity.PreprocessMethods[attempt])
		}

		expansion := 1.0
		if p.OCRRegionExpansion > 0 {
			expansion = p.OCRRegionExpansion + regionExpansionStep
		}
		patch.OCRRegionExpansion = &expansion

		threshold := initialConfidence
		if p.ConfidenceThreshold > 0 {
			threshold = max(minConfidence, p.ConfidenceThreshold-0.1)
		}
		patch.ConfidenceThreshold = &threshold
		return patch
	}
}

func longerWait(p entity.RetryParams, _ int, _ *rand.Rand) entity.ParamPatch {
	timeout := initialOpTimeout
	if p.OperationTimeout > 0 {
		timeout = p.OperationTimeout + 10*time.Second
	}
	wait := initialElementWait
	if p.ElementWait > 0 {
		wait = p.ElementWait + 3*time.Second
	}
	return entity.ParamPatch{OperationTimeout: &timeout, ElementWait: &wait}
}

func networkRetry(p entity.RetryParams, _ int, _ *rand.Rand) entity.ParamPatch {
	timeout := initialConnTimeout
	if p.ConnectionTimeout > 0 {
		timeout = p.ConnectionTimeout + 5*time.Second
	}
	return entity.ParamPatch{ConnectionTimeout: &timeout, Reconnect: entity.Ptr(true)}
}

func permissionRetry(entity.RetryParams, int, *rand.Rand) entity.ParamPatch {
	return entity.ParamPatch{
		ElevatedPrivileges: entity.Ptr(true),
		AlternativeMethod:  entity.Ptr(true),
	}
}

func genericRetry(p entity.RetryParams, _ int, _ *rand.Rand) entity.ParamPatch {
	wait := initialGenericWait
	if p.GenericWait > 0 {
		wait = p.GenericWait + 500*time.Millisecond
	}
	return entity.ParamPatch{GenericWait: &wait, VerboseLogging: entity.Ptr(true)}
}

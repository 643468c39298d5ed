package entity

import "strings"

type FailureType string

const (
	FailureNone             FailureType = ""
	FailureElementNotFound  FailureType = "element_not_found"
	FailureClickFailed      FailureType = "click_failed"
	FailureInputFailed      FailureType = "input_failed"
	FailureOCRFailed        FailureType = "ocr_failed"
	FailureTimeout          FailureType = "timeout"
	FailureNetworkError     FailureType = "network_error"
	FailurePermissionDenied FailureType = "permission_denied"
	FailureUnknown          FailureType = "unknown"
)

var FailureTypes = []FailureType{
	FailureElementNotFound,
	FailureClickFailed,
	FailureInputFailed,
	FailureOCRFailed,
	FailureTimeout,
	FailureNetworkError,
	FailurePermissionDenied,
	FailureUnknown,
}

func (f FailureType) String() string {
	if f == FailureNone {
		return "none"
	}
	return string(f)
}

var failurePatterns = []struct {
	needles []string
	failure FailureType
}{
	{[]string{"not found", "element"}, FailureElementNotFound},
	{[]string{"click", "mouse"}, FailureClickFailed},
	{[]string{"ocr", "text", "recognition"}, FailureOCRFailed},
	{[]string{"timeout", "time"}, FailureTimeout},
	{[]string{"network", "connection"}, FailureNetworkError},
	{[]string{"permission", "access"}, FailurePermissionDenied},
}

// ClassifyMessage maps an untyped error string onto a FailureType. The
// pattern order is fixed: earlier groups win when several match.
func ClassifyMessage(msg string) FailureType {
	msg = strings.ToLower(msg)
	for _, p := range failurePatterns {
		for _, n := range p.needles {
			if strings.Contains(msg, n) {
				return p.failure
			}
		}
	}
	return FailureUnknown
}

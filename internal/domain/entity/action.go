package entity

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

type ActionType string

const (
	ActionClick        ActionType = "click"
	ActionDoubleClick  ActionType = "double_click"
	ActionRightClick   ActionType = "right_click"
	ActionTypeText     ActionType = "type"
	ActionKeyPress     ActionType = "key_press"
	ActionHotkey       ActionType = "hotkey"
	ActionDrag         ActionType = "drag"
	ActionScroll       ActionType = "scroll"
	ActionMove         ActionType = "move"
	ActionWindowOpen   ActionType = "window_open"
	ActionWindowClose  ActionType = "window_close"
	ActionWindowSwitch ActionType = "window_switch"
	ActionWindowResize ActionType = "window_resize"
	ActionWait         ActionType = "wait"
)

var ActionTypes = []ActionType{
	ActionClick, ActionDoubleClick, ActionRightClick, ActionTypeText, ActionKeyPress, ActionHotkey,
	ActionDrag, ActionScroll, ActionMove, ActionWindowOpen, ActionWindowClose, ActionWindowSwitch,
	ActionWindowResize, ActionWait,
}

func (t ActionType) String() string {
	return string(t)
}

func (t ActionType) Valid() bool {
	for _, a := range ActionTypes {
		if a == t {
			return true
		}
	}
	return false
}

type MouseButton string

const (
	ButtonLeft   MouseButton = "left"
	ButtonRight  MouseButton = "right"
	ButtonMiddle MouseButton = "middle"
)

func (b MouseButton) Valid() bool {
	return b == ButtonLeft || b == ButtonRight || b == ButtonMiddle
}

// ActionParams holds the arguments of every action type. Each handler reads
// only the fields its type needs.
type ActionParams struct {
	X      int         `json:"x"`
	Y      int         `json:"y"`
	Button MouseButton `json:"button,omitempty"`

	Text string   `json:"text,omitempty"`
	Key  string   `json:"key,omitempty"`
	Keys []string `json:"keys,omitempty"`

	EndX int `json:"end_x,omitempty"`
	EndY int `json:"end_y,omitempty"`

	Clicks int `json:"clicks,omitempty"`

	App    string `json:"app_name,omitempty"`
	Title  string `json:"window_title,omitempty"`
	Force  bool   `json:"force,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`

	Duration time.Duration `json:"-"`
}

type ActionRequest struct {
	Type   ActionType
	Params ActionParams
	// Delay overrides the executor's default pause after this action.
	Delay *time.Duration
	Retry RetryParams
}

// Target names what the action operates on, for logs. Typed text is reduced
// to its length.
func (r ActionRequest) Target() string {
	switch r.Type {
	case ActionTypeText:
		return fmt.Sprintf("text (%d chars)", utf8.RuneCountInString(r.Params.Text))
	case ActionKeyPress:
		return r.Params.Key
	case ActionWindowOpen, ActionWindowClose:
		return r.Params.App
	case ActionWindowSwitch, ActionWindowResize:
		return r.Params.Title
	}
	return Point{r.Params.X, r.Params.Y}.String()
}

type ActionResult struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
	Failure FailureType    `json:"failure,omitempty"`
}

func Succeeded(msg string, data map[string]any) ActionResult {
	return ActionResult{Success: true, Message: msg, Data: data}
}

// FailedWith builds a failed result from err, tagging it with err's failure type.
func FailedWith(err error) ActionResult {
	return ActionResult{Success: false, Message: err.Error(), Failure: FailureTypeOf(err)}
}

var ErrUnknownAction = errors.New("unknown action type")

type wireAction struct {
	Type ActionType `json:"type"`
	ActionParams
	StartX   *int     `json:"start_x,omitempty"`
	StartY   *int     `json:"start_y,omitempty"`
	Duration float64  `json:"duration,omitempty"`
	Delay    *float64 `json:"delay,omitempty"`
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func (r *ActionRequest) UnmarshalJSON(data []byte) error {
	var w wireAction
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Type == "" {
		return errors.New("action is missing its type")
	}
	if !w.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownAction, w.Type)
	}
	if w.StartX != nil {
		w.X = *w.StartX
	}
	if w.StartY != nil {
		w.Y = *w.StartY
	}
	if w.Duration < 0 {
		return fmt.Errorf("%s: negative duration", w.Type)
	}
	*r = ActionRequest{Type: w.Type, Params: w.ActionParams}
	r.Params.Duration = seconds(w.Duration)
	if w.Delay != nil {
		if *w.Delay < 0 {
			return fmt.Errorf("%s: negative delay", w.Type)
		}
		d := seconds(*w.Delay)
		r.Delay = &d
	}
	return nil
}

// DecodeActions parses a declarative action sequence, a JSON array of
// {type, ...params, delay?} objects.
func DecodeActions(data []byte) ([]ActionRequest, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode actions: %w", err)
	}
	out := make([]ActionRequest, 0, len(raw))
	for i, msg := range raw {
		var req ActionRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			return nil, fmt.Errorf("action %d: %w", i+1, err)
		}
		out = append(out, req)
	}
	return out, nil
}

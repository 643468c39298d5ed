package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeActions(t *testing.T) {
	data := []byte(`[
		{"type": "click", "x": 100, "y": 200, "button": "right"},
		{"type": "type", "text": "hello", "delay": 0.25},
		{"type": "hotkey", "keys": ["ctrl", "s"]},
		{"type": "drag", "start_x": 1, "start_y": 2, "end_x": 30, "end_y": 40, "duration": 1.5},
		{"type": "window_resize", "window_title": "Editor", "width": 800, "height": 600},
		{"type": "wait", "duration": 0.5}
	]`)

	actions, err := DecodeActions(data)
	require.NoError(t, err)
	require.Len(t, actions, 6)

	assert.Equal(t, ActionClick, actions[0].Type)
	assert.Equal(t, 100, actions[0].Params.X)
	assert.Equal(t, ButtonRight, actions[0].Params.Button)
	assert.Nil(t, actions[0].Delay)

	require.NotNil(t, actions[1].Delay)
	assert.Equal(t, 250*time.Millisecond, *actions[1].Delay)
	assert.Equal(t, "hello", actions[1].Params.Text)

	assert.Equal(t, []string{"ctrl", "s"}, actions[2].Params.Keys)

	assert.Equal(t, 1, actions[3].Params.X)
	assert.Equal(t, 2, actions[3].Params.Y)
	assert.Equal(t, 40, actions[3].Params.EndY)
	assert.Equal(t, 1500*time.Millisecond, actions[3].Params.Duration)

	assert.Equal(t, "Editor", actions[4].Params.Title)
	assert.Equal(t, 800, actions[4].Params.Width)

	assert.Equal(t, 500*time.Millisecond, actions[5].Params.Duration)
}

func TestDecodeActions_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"not an array", `{"type":"click"}`, "decode actions"},
		{"missing type", `[{"x":1}]`, "missing its type"},
		{"unknown type", `[{"type":"teleport"}]`, "unknown action type"},
		{"negative delay", `[{"type":"wait","duration":1,"delay":-1}]`, "negative delay"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeActions([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestActionType_Valid(t *testing.T) {
	for _, a := range ActionTypes {
		assert.True(t, a.Valid(), a)
	}
	assert.False(t, ActionType("teleport").Valid())
	assert.Len(t, ActionTypes, 14)
}

func TestFailedWith(t *testing.T) {
	res := FailedWith(NewNotFoundError("locate", "OK button"))
	assert.False(t, res.Success)
	assert.Equal(t, FailureElementNotFound, res.Failure)
	assert.Contains(t, res.Message, "OK button not found")
}

func TestActionRequest_Target(t *testing.T) {
	tests := []struct {
		name string
		req  ActionRequest
		want string
	}{
		{"click", ActionRequest{Type: ActionClick, Params: ActionParams{X: 3, Y: 4}}, "(3,4)"},
		{"typed text is reduced to its length", ActionRequest{Type: ActionTypeText, Params: ActionParams{Text: "pässword"}}, "text (8 chars)"},
		{"key", ActionRequest{Type: ActionKeyPress, Params: ActionParams{Key: "enter"}}, "enter"},
		{"window", ActionRequest{Type: ActionWindowSwitch, Params: ActionParams{Title: "Editor"}}, "Editor"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.Target())
		})
	}
}

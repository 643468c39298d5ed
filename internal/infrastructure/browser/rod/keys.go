package rod

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"desktop-agent/internal/domain/entity"

	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/proto"
)

// wheelPixels is the scroll distance of one wheel click.
const wheelPixels = 100

var namedKeys = map[string]input.Key{
	"ctrl":      input.ControlLeft,
	"control":   input.ControlLeft,
	"shift":     input.ShiftLeft,
	"alt":       input.AltLeft,
	"win":       input.MetaLeft,
	"cmd":       input.MetaLeft,
	"meta":      input.MetaLeft,
	"super":     input.MetaLeft,
	"enter":     input.Enter,
	"return":    input.Enter,
	"tab":       input.Tab,
	"esc":       input.Escape,
	"escape":    input.Escape,
	"backspace": input.Backspace,
	"delete":    input.Delete,
	"del":       input.Delete,
	"space":     input.Space,
	"up":        input.ArrowUp,
	"down":      input.ArrowDown,
	"left":      input.ArrowLeft,
	"right":     input.ArrowRight,
	"home":      input.Home,
	"end":       input.End,
	"pageup":    input.PageUp,
	"pagedown":  input.PageDown,
	"insert":    input.Insert,
	"f1":        input.F1,
	"f2":        input.F2,
	"f3":        input.F3,
	"f4":        input.F4,
	"f5":        input.F5,
	"f6":        input.F6,
	"f7":        input.F7,
	"f8":        input.F8,
	"f9":        input.F9,
	"f10":       input.F10,
	"f11":       input.F11,
	"f12":       input.F12,
}

// keyFor maps a key name, or a single printable ASCII character, to a CDP key.
func keyFor(name string) (input.Key, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if k, ok := namedKeys[lower]; ok {
		return k, nil
	}
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		if r > ' ' && r < utf8.RuneSelf {
			return input.Key(r), nil
		}
	}
	return 0, entity.NewActionFailedError("key", entity.FailureInputFailed, fmt.Errorf("unsupported key %q", name))
}

func mouseButton(b entity.MouseButton) proto.InputMouseButton {
	switch b {
	case entity.ButtonRight:
		return proto.InputMouseButtonRight
	case entity.ButtonMiddle:
		return proto.InputMouseButtonMiddle
	}
	return proto.InputMouseButtonLeft
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

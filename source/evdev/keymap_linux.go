//go:build linux

package evdev

import (
	evdev "github.com/holoplot/go-evdev"

	"github.com/Alia5/viashift/keys"
)

var keymap = map[evdev.EvCode]keys.Code{
	evdev.KEY_A: keys.KeyA, evdev.KEY_B: keys.KeyB, evdev.KEY_C: keys.KeyC,
	evdev.KEY_D: keys.KeyD, evdev.KEY_E: keys.KeyE, evdev.KEY_F: keys.KeyF,
	evdev.KEY_G: keys.KeyG, evdev.KEY_H: keys.KeyH, evdev.KEY_I: keys.KeyI,
	evdev.KEY_J: keys.KeyJ, evdev.KEY_K: keys.KeyK, evdev.KEY_L: keys.KeyL,
	evdev.KEY_M: keys.KeyM, evdev.KEY_N: keys.KeyN, evdev.KEY_O: keys.KeyO,
	evdev.KEY_P: keys.KeyP, evdev.KEY_Q: keys.KeyQ, evdev.KEY_R: keys.KeyR,
	evdev.KEY_S: keys.KeyS, evdev.KEY_T: keys.KeyT, evdev.KEY_U: keys.KeyU,
	evdev.KEY_V: keys.KeyV, evdev.KEY_W: keys.KeyW, evdev.KEY_X: keys.KeyX,
	evdev.KEY_Y: keys.KeyY, evdev.KEY_Z: keys.KeyZ,

	evdev.KEY_1: keys.Key1, evdev.KEY_2: keys.Key2, evdev.KEY_3: keys.Key3,
	evdev.KEY_4: keys.Key4, evdev.KEY_5: keys.Key5, evdev.KEY_6: keys.Key6,
	evdev.KEY_7: keys.Key7, evdev.KEY_8: keys.Key8, evdev.KEY_9: keys.Key9,
	evdev.KEY_0: keys.Key0,

	evdev.KEY_ENTER:      keys.KeyEnter,
	evdev.KEY_ESC:        keys.KeyEscape,
	evdev.KEY_BACKSPACE:  keys.KeyBackspace,
	evdev.KEY_TAB:        keys.KeyTab,
	evdev.KEY_SPACE:      keys.KeySpace,
	evdev.KEY_MINUS:      keys.KeyMinus,
	evdev.KEY_EQUAL:      keys.KeyEqual,
	evdev.KEY_LEFTBRACE:  keys.KeyLeftBrace,
	evdev.KEY_RIGHTBRACE: keys.KeyRightBrace,
	evdev.KEY_BACKSLASH:  keys.KeyBackslash,
	evdev.KEY_SEMICOLON:  keys.KeySemicolon,
	evdev.KEY_APOSTROPHE: keys.KeyApostrophe,
	evdev.KEY_GRAVE:      keys.KeyGrave,
	evdev.KEY_COMMA:      keys.KeyComma,
	evdev.KEY_DOT:        keys.KeyPeriod,
	evdev.KEY_SLASH:      keys.KeySlash,
	evdev.KEY_CAPSLOCK:   keys.KeyCapsLock,

	evdev.KEY_F1: keys.KeyF1, evdev.KEY_F2: keys.KeyF1 + 1, evdev.KEY_F3: keys.KeyF1 + 2,
	evdev.KEY_F4: keys.KeyF1 + 3, evdev.KEY_F5: keys.KeyF1 + 4, evdev.KEY_F6: keys.KeyF1 + 5,
	evdev.KEY_F7: keys.KeyF1 + 6, evdev.KEY_F8: keys.KeyF1 + 7, evdev.KEY_F9: keys.KeyF1 + 8,
	evdev.KEY_F10: keys.KeyF1 + 9, evdev.KEY_F11: keys.KeyF1 + 10, evdev.KEY_F12: keys.KeyF12,

	evdev.KEY_INSERT:   keys.KeyInsert,
	evdev.KEY_HOME:     keys.KeyHome,
	evdev.KEY_PAGEUP:   keys.KeyPageUp,
	evdev.KEY_DELETE:   keys.KeyDelete,
	evdev.KEY_END:      keys.KeyEnd,
	evdev.KEY_PAGEDOWN: keys.KeyPageDown,
	evdev.KEY_RIGHT:    keys.KeyRight,
	evdev.KEY_LEFT:     keys.KeyLeft,
	evdev.KEY_DOWN:     keys.KeyDown,
	evdev.KEY_UP:       keys.KeyUp,

	evdev.KEY_NUMLOCK:    keys.KeyNumLock,
	evdev.KEY_KPSLASH:    keys.KeyKpSlash,
	evdev.KEY_KPASTERISK: keys.KeyKpAsterisk,
	evdev.KEY_KPMINUS:    keys.KeyKpMinus,
	evdev.KEY_KPPLUS:     keys.KeyKpPlus,
	evdev.KEY_KPENTER:    keys.KeyKpEnter,
	evdev.KEY_KP1:        keys.KeyKp1,
	evdev.KEY_KP2:        keys.KeyKp2,
	evdev.KEY_KP3:        keys.KeyKp3,
	evdev.KEY_KP4:        keys.KeyKp4,
	evdev.KEY_KP5:        keys.KeyKp5,
	evdev.KEY_KP6:        keys.KeyKp6,
	evdev.KEY_KP7:        keys.KeyKp7,
	evdev.KEY_KP8:        keys.KeyKp8,
	evdev.KEY_KP9:        keys.KeyKp9,
	evdev.KEY_KP0:        keys.KeyKp0,
	evdev.KEY_KPDOT:      keys.KeyKpDot,
	evdev.KEY_KPEQUAL:    keys.KeyKpEqual,
	evdev.KEY_KPCOMMA:    keys.KeyKpComma,

	evdev.KEY_CLEAR: keys.KeyClear,
}

var modifiers = map[evdev.EvCode]keys.Key{
	evdev.KEY_LEFTCTRL:   keys.LeftCtrl,
	evdev.KEY_LEFTSHIFT:  keys.LeftShift,
	evdev.KEY_LEFTALT:    keys.LeftAlt,
	evdev.KEY_LEFTMETA:   keys.LeftGUI,
	evdev.KEY_RIGHTCTRL:  keys.RightCtrl,
	evdev.KEY_RIGHTSHIFT: keys.RightShift,
	evdev.KEY_RIGHTALT:   keys.RightAlt,
	evdev.KEY_RIGHTMETA:  keys.RightGUI,
}

// Translate maps an evdev key code to a key identity.
func Translate(code evdev.EvCode) (keys.Key, bool) {
	if k, ok := modifiers[code]; ok {
		return k, true
	}
	if c, ok := keymap[code]; ok {
		return keys.Plain(c), true
	}
	return keys.Key{}, false
}

// Event values of EV_KEY.
const (
	valueRelease = 0
	valuePress   = 1
	valueRepeat  = 2
)

// FromEvent converts a key event into a transition. Non-key events,
// auto-repeat and unknown codes yield ok=false.
func FromEvent(ev *evdev.InputEvent) (t keys.Transition, ok bool) {
	if ev == nil || ev.Type != evdev.EV_KEY {
		return keys.Transition{}, false
	}
	if ev.Value != valuePress && ev.Value != valueRelease {
		return keys.Transition{}, false
	}
	k, ok := Translate(ev.Code)
	if !ok {
		return keys.Transition{}, false
	}
	return keys.Transition{Key: k, Down: ev.Value == valuePress}, true
}

// looksLikeKeyboard reports whether codes contain the letter keys.
func looksLikeKeyboard(codes []evdev.EvCode) bool {
	var a, z, space bool
	for _, c := range codes {
		switch c {
		case evdev.KEY_A:
			a = true
		case evdev.KEY_Z:
			z = true
		case evdev.KEY_SPACE:
			space = true
		}
	}
	return a && z && space
}

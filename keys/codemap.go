package keys

import "fmt"

// KeyName maps plain key codes to the names used in diagnostics and by
// Registry lookups.
var KeyName = map[Code]string{
	KeyA: "A", KeyB: "B", KeyC: "C", KeyD: "D", KeyE: "E", KeyF: "F", KeyG: "G",
	KeyH: "H", KeyI: "I", KeyJ: "J", KeyK: "K", KeyL: "L", KeyM: "M", KeyN: "N",
	KeyO: "O", KeyP: "P", KeyQ: "Q", KeyR: "R", KeyS: "S", KeyT: "T", KeyU: "U",
	KeyV: "V", KeyW: "W", KeyX: "X", KeyY: "Y", KeyZ: "Z",

	Key1: "N1", Key2: "N2", Key3: "N3", Key4: "N4", Key5: "N5",
	Key6: "N6", Key7: "N7", Key8: "N8", Key9: "N9", Key0: "N0",

	KeyEnter:      "ENTER",
	KeyEscape:     "ESC",
	KeyBackspace:  "BKSP",
	KeyTab:        "TAB",
	KeySpace:      "SPACE",
	KeyMinus:      "MINUS",
	KeyEqual:      "EQUAL",
	KeyLeftBrace:  "LBRC",
	KeyRightBrace: "RBRC",
	KeyBackslash:  "BSLS",
	KeyNonUSHash:  "NUHS",
	KeySemicolon:  "SCLN",
	KeyApostrophe: "QUOT",
	KeyGrave:      "GRV",
	KeyComma:      "COMM",
	KeyPeriod:     "DOT",
	KeySlash:      "SLSH",
	KeyCapsLock:   "CAPS",

	KeyInsert:   "INS",
	KeyHome:     "HOME",
	KeyPageUp:   "PGUP",
	KeyDelete:   "DEL",
	KeyEnd:      "END",
	KeyPageDown: "PGDN",

	KeyRight: "RIGHT",
	KeyLeft:  "LEFT",
	KeyDown:  "DOWN",
	KeyUp:    "UP",

	KeyNumLock:    "NUMLOCK",
	KeyKpSlash:    "NUMPAD_SLASH",
	KeyKpAsterisk: "NUMPAD_ASTERISK",
	KeyKpMinus:    "NUMPAD_MINUS",
	KeyKpPlus:     "NUMPAD_PLUS",
	KeyKpEnter:    "NUMPAD_ENTER",
	KeyKp1:        "NUMPAD_1",
	KeyKp2:        "NUMPAD_2",
	KeyKp3:        "NUMPAD_3",
	KeyKp4:        "NUMPAD_4",
	KeyKp5:        "NUMPAD_5",
	KeyKp6:        "NUMPAD_6",
	KeyKp7:        "NUMPAD_7",
	KeyKp8:        "NUMPAD_8",
	KeyKp9:        "NUMPAD_9",
	KeyKp0:        "NUMPAD_0",
	KeyKpDot:      "NUMPAD_DOT",
	KeyKpEqual:    "NUMPAD_EQUAL",
	KeyKpComma:    "NUMPAD_COMMA",

	KeyClear:  "CLEAR",
	KeyReturn: "RETURN",
}

// Name returns the diagnostic name of a plain key code.
func Name(code Code) string {
	if n, ok := KeyName[code]; ok {
		return n
	}
	return fmt.Sprintf("0x%02x", uint16(code))
}

// CharToKey maps ASCII characters to the key producing them on a US layout.
// Shifted characters share the code of their unshifted key; see ShiftChars.
var CharToKey = map[byte]Code{
	'a': KeyA, 'b': KeyB, 'c': KeyC, 'd': KeyD, 'e': KeyE, 'f': KeyF, 'g': KeyG,
	'h': KeyH, 'i': KeyI, 'j': KeyJ, 'k': KeyK, 'l': KeyL, 'm': KeyM, 'n': KeyN,
	'o': KeyO, 'p': KeyP, 'q': KeyQ, 'r': KeyR, 's': KeyS, 't': KeyT, 'u': KeyU,
	'v': KeyV, 'w': KeyW, 'x': KeyX, 'y': KeyY, 'z': KeyZ,

	'A': KeyA, 'B': KeyB, 'C': KeyC, 'D': KeyD, 'E': KeyE, 'F': KeyF, 'G': KeyG,
	'H': KeyH, 'I': KeyI, 'J': KeyJ, 'K': KeyK, 'L': KeyL, 'M': KeyM, 'N': KeyN,
	'O': KeyO, 'P': KeyP, 'Q': KeyQ, 'R': KeyR, 'S': KeyS, 'T': KeyT, 'U': KeyU,
	'V': KeyV, 'W': KeyW, 'X': KeyX, 'Y': KeyY, 'Z': KeyZ,

	'1': Key1, '2': Key2, '3': Key3, '4': Key4, '5': Key5,
	'6': Key6, '7': Key7, '8': Key8, '9': Key9, '0': Key0,

	'!': Key1, '@': Key2, '#': Key3, '$': Key4, '%': Key5,
	'^': Key6, '&': Key7, '*': Key8, '(': Key9, ')': Key0,

	'-': KeyMinus, '_': KeyMinus,
	'=': KeyEqual, '+': KeyEqual,
	'[': KeyLeftBrace, '{': KeyLeftBrace,
	']': KeyRightBrace, '}': KeyRightBrace,
	'\\': KeyBackslash, '|': KeyBackslash,
	';': KeySemicolon, ':': KeySemicolon,
	'\'': KeyApostrophe, '"': KeyApostrophe,
	'`': KeyGrave, '~': KeyGrave,
	',': KeyComma, '<': KeyComma,
	'.': KeyPeriod, '>': KeyPeriod,
	'/': KeySlash, '?': KeySlash,

	' ':  KeySpace,
	'\n': KeyEnter,
	'\r': KeyEnter,
	'\t': KeyTab,
	0x08: KeyBackspace,
	0x1B: KeyEscape,
	0x7F: KeyDelete,
}

// ShiftChars defines which characters require the Shift modifier.
var ShiftChars = map[byte]bool{
	'A': true, 'B': true, 'C': true, 'D': true, 'E': true, 'F': true, 'G': true,
	'H': true, 'I': true, 'J': true, 'K': true, 'L': true, 'M': true, 'N': true,
	'O': true, 'P': true, 'Q': true, 'R': true, 'S': true, 'T': true, 'U': true,
	'V': true, 'W': true, 'X': true, 'Y': true, 'Z': true,

	'!': true, '@': true, '#': true, '$': true, '%': true,
	'^': true, '&': true, '*': true, '(': true, ')': true,

	'_': true, '+': true, '{': true, '}': true, '|': true,
	':': true, '"': true, '~': true, '<': true, '>': true, '?': true,
}

// NeedsShift returns true if the character requires the Shift modifier.
func NeedsShift(c byte) bool {
	return ShiftChars[c]
}

// ForChar returns the key identity producing c, tagged with left shift when
// the character needs it.
func ForChar(c byte) (Key, bool) {
	code, ok := CharToKey[c]
	if !ok {
		return Key{}, false
	}
	k := Plain(code)
	if NeedsShift(c) {
		k.Mods = ModLeftShift
	}
	return k, true
}

package keys

// Mask is a modifier bitmask. The low nibble carries the left-hand modifiers
// and the high nibble the right-hand ones, which is also the layout of the
// HID modifier byte.
type Mask uint8

// Modifier bits.
const (
	ModLeftCtrl   Mask = 0x01
	ModLeftShift  Mask = 0x02
	ModLeftAlt    Mask = 0x04
	ModLeftGUI    Mask = 0x08 // Windows/Command key
	ModRightCtrl  Mask = 0x10
	ModRightShift Mask = 0x20
	ModRightAlt   Mask = 0x40
	ModRightGUI   Mask = 0x80
)

// Modifier categories, either hand.
const (
	Ctrl  = ModLeftCtrl | ModRightCtrl
	Shift = ModLeftShift | ModRightShift
	Alt   = ModLeftAlt | ModRightAlt
	Cmd   = ModLeftGUI | ModRightGUI
)

// Code is a stable per-key identity. Plain keys use HID usage codes
// (keyboard/keypad page); modifier keys use their own modifier bit.
type Code uint16

// FirstInternalCode is the first code reserved for firmware-internal keys
// (layer switches, one-shots, tap dances). Events at or above it are never
// encoded.
const FirstInternalCode Code = 1000

// PlaceholderCode marks a modifier key that has no modifier bit of its own and
// only carries modifier tags (Meh, Hyper).
const PlaceholderCode Code = 0xFFFF

// HID usage codes for keyboard keys (USB HID Keyboard/Keypad usage page)
const (
	KeyA Code = 0x04 + iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	Key0
	KeyEnter
	KeyEscape
	KeyBackspace
	KeyTab
	KeySpace
	KeyMinus      // - and _
	KeyEqual      // = and +
	KeyLeftBrace  // [ and {
	KeyRightBrace // ] and }
	KeyBackslash  // \ and |
	KeyNonUSHash  // Non-US # and ~
	KeySemicolon  // ; and :
	KeyApostrophe // ' and "
	KeyGrave      // ` and ~
	KeyComma      // , and <
	KeyPeriod     // . and >
	KeySlash      // / and ?
	KeyCapsLock
)

const (
	KeyF1  Code = 0x3A
	KeyF12 Code = 0x45

	KeyInsert   Code = 0x49
	KeyHome     Code = 0x4A
	KeyPageUp   Code = 0x4B
	KeyDelete   Code = 0x4C // Delete forward
	KeyEnd      Code = 0x4D
	KeyPageDown Code = 0x4E

	KeyRight Code = 0x4F
	KeyLeft  Code = 0x50
	KeyDown  Code = 0x51
	KeyUp    Code = 0x52

	KeyNumLock    Code = 0x53
	KeyKpSlash    Code = 0x54
	KeyKpAsterisk Code = 0x55
	KeyKpMinus    Code = 0x56
	KeyKpPlus     Code = 0x57
	KeyKpEnter    Code = 0x58
	KeyKp1        Code = 0x59
	KeyKp2        Code = 0x5A
	KeyKp3        Code = 0x5B
	KeyKp4        Code = 0x5C
	KeyKp5        Code = 0x5D
	KeyKp6        Code = 0x5E
	KeyKp7        Code = 0x5F
	KeyKp8        Code = 0x60
	KeyKp9        Code = 0x61
	KeyKp0        Code = 0x62
	KeyKpDot      Code = 0x63
	KeyKpEqual    Code = 0x67
	KeyKpComma    Code = 0x85

	KeyClear  Code = 0x9C
	KeyReturn Code = 0x9E // Return, distinct from Enter
)

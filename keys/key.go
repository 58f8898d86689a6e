// Package keys defines key identities, modifier masks and the press/release
// transitions that event sources deliver to the encoder.
package keys

import (
	"fmt"
	"strings"
)

// Key identifies a logical key. Plain keys may carry inherent modifier tags
// (the identity for '!' is Key1 tagged with left shift). Modifier keys carry
// their own modifier bit as Code.
type Key struct {
	Code     Code
	Mods     Mask
	Modifier bool
	Name     string
}

// Modifier keys.
var (
	LeftCtrl   = Key{Code: Code(ModLeftCtrl), Modifier: true, Name: "LCTRL"}
	LeftShift  = Key{Code: Code(ModLeftShift), Modifier: true, Name: "LSHIFT"}
	LeftAlt    = Key{Code: Code(ModLeftAlt), Modifier: true, Name: "LALT"}
	LeftGUI    = Key{Code: Code(ModLeftGUI), Modifier: true, Name: "LGUI"}
	RightCtrl  = Key{Code: Code(ModRightCtrl), Modifier: true, Name: "RCTRL"}
	RightShift = Key{Code: Code(ModRightShift), Modifier: true, Name: "RSHIFT"}
	RightAlt   = Key{Code: Code(ModRightAlt), Modifier: true, Name: "RALT"}
	RightGUI   = Key{Code: Code(ModRightGUI), Modifier: true, Name: "RGUI"}

	// Meh and Hyper have no modifier bit of their own.
	Meh   = Key{Code: PlaceholderCode, Mods: ModLeftCtrl | ModLeftShift | ModLeftAlt, Modifier: true, Name: "MEH"}
	Hyper = Key{Code: PlaceholderCode, Mods: ModLeftCtrl | ModLeftShift | ModLeftAlt | ModLeftGUI, Modifier: true, Name: "HYPR"}
)

// Plain returns a plain key for code without modifier tags.
func Plain(code Code) Key {
	return Key{Code: code, Name: Name(code)}
}

// Internal reports whether k is a firmware-internal key.
func (k Key) Internal() bool {
	return k.Code >= FirstInternalCode && !k.Modifier
}

// Shifted reports whether k carries a shift tag.
func (k Key) Shifted() bool {
	return k.Mods&Shift != 0
}

// ID returns the identity used to track k as held, ignoring tags and name.
func (k Key) ID() ID {
	return ID{Code: k.Code, Modifier: k.Modifier}
}

// ID is the comparable identity of a key.
type ID struct {
	Code     Code
	Modifier bool
}

func (k Key) String() string {
	name := k.Name
	if name == "" {
		name = fmt.Sprintf("0x%02x", uint16(k.Code))
	}
	if k.Mods == 0 {
		return name
	}
	return k.Mods.String() + "+" + name
}

var maskNames = [...]string{"LCTRL", "LSHIFT", "LALT", "LGUI", "RCTRL", "RSHIFT", "RALT", "RGUI"}

func (m Mask) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	for i, n := range maskNames {
		if m&(1<<i) != 0 {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, "+")
}

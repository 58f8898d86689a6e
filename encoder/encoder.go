// Package encoder resolves modifier masks and turns key codes into the byte
// sent to the host.
package encoder

import (
	"github.com/Alia5/viashift/codetable"
	"github.com/Alia5/viashift/keys"
)

const maxMask = ^keys.Mask(0)

// Scope selects which keys contribute to the modifier mask.
type Scope string

const (
	// ScopeKey uses only the triggering key's own modifier tags.
	ScopeKey Scope = "key"
	// ScopeHeld also ORs in every held modifier key.
	ScopeHeld Scope = "held"
)

// ResolveKey returns the triggering key's own modifier tags.
func ResolveKey(trigger keys.Key) keys.Mask {
	return trigger.Mods
}

// Resolve ORs the trigger's tags with every held modifier key. A modifier key
// contributes its tags if it has any, else its code as a modifier bit.
// Placeholder modifier codes and codes wider than a mask contribute nothing
// by themselves. Plain keys other than the trigger are ignored.
func Resolve(trigger keys.Key, held []keys.Key) keys.Mask {
	mask := trigger.Mods
	for _, k := range held {
		if !k.Modifier {
			if k.ID() == trigger.ID() {
				mask |= k.Mods
			}
			continue
		}
		switch {
		case k.Mods != 0:
			mask |= k.Mods
		case k.Code <= keys.Code(maxMask):
			mask |= keys.Mask(k.Code)
		}
	}
	return mask
}

// ResolveScope dispatches to ResolveKey or Resolve.
func ResolveScope(s Scope, ev keys.Event) keys.Mask {
	if s == ScopeKey {
		return ResolveKey(ev.Key)
	}
	return Resolve(ev.Key, ev.Held)
}

// Encode looks code up in t and applies mask. It returns ok=false when the
// code has no entry.
//
// Shift selects the shifted byte. Control clears bits 5-7 only when the
// byte lies in 0x40-0x7F; other bytes pass through. Alt or Cmd then sets
// bit 7.
func Encode(code keys.Code, mask keys.Mask, t *codetable.Table) (b byte, ok bool) {
	e, ok := t.Lookup(code)
	if !ok {
		return 0, false
	}
	b = e.Unshifted
	if mask&keys.Shift != 0 {
		b = e.Shifted
	}
	if mask&keys.Ctrl != 0 && b&0xC0 == 0x40 {
		b &= 0x1F
	}
	if mask&(keys.Alt|keys.Cmd) != 0 {
		b |= 0x80
	}
	return b, true
}

// Printable renders b for diagnostics: control bytes as ^X, DEL as ^? and
// bytes with bit 7 set with an M- prefix.
func Printable(b byte) string {
	prefix := ""
	if b&0x80 != 0 {
		prefix = "M-"
		b &= 0x7F
	}
	switch {
	case b < 0x20:
		return prefix + "^" + string(rune(b+0x40))
	case b == 0x7F:
		return prefix + "^?"
	default:
		return prefix + string(rune(b))
	}
}

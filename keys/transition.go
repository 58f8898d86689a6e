package keys

import (
	"encoding/binary"
	"errors"
	"io"
)

// TransitionSize is the wire size of one Transition frame.
const TransitionSize = 4

// ErrShortFrame is returned when decoding fewer than TransitionSize bytes.
var ErrShortFrame = errors.New("keys: short transition frame")

const (
	flagDown     = 0x01
	flagModifier = 0x02
)

// Transition is a single press or release reported by an event source.
type Transition struct {
	Key  Key
	Down bool
}

// Press returns a press transition for k.
func Press(k Key) Transition { return Transition{Key: k, Down: true} }

// Release returns a release transition for k.
func Release(k Key) Transition { return Transition{Key: k} }

// MarshalBinary encodes t to its wire format.
//
// Wire format:
//
//	Byte 0: Flags (bit 0 down, bit 1 modifier key)
//	Byte 1: Modifier tags
//	Bytes 2-3: Code (big endian)
func (t Transition) MarshalBinary() ([]byte, error) {
	b := make([]byte, TransitionSize)
	if t.Down {
		b[0] |= flagDown
	}
	if t.Key.Modifier {
		b[0] |= flagModifier
	}
	b[1] = uint8(t.Key.Mods)
	binary.BigEndian.PutUint16(b[2:], uint16(t.Key.Code))
	return b, nil
}

// UnmarshalBinary decodes a wire frame into t. The key name is filled in from
// the code tables.
func (t *Transition) UnmarshalBinary(data []byte) error {
	if len(data) < TransitionSize {
		return ErrShortFrame
	}
	t.Down = data[0]&flagDown != 0
	t.Key = Key{
		Code:     Code(binary.BigEndian.Uint16(data[2:])),
		Mods:     Mask(data[1]),
		Modifier: data[0]&flagModifier != 0,
	}
	t.Key.Name = nameFor(t.Key)
	return nil
}

// ReadTransition reads exactly one frame from r.
func ReadTransition(r io.Reader) (Transition, error) {
	var buf [TransitionSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return Transition{}, err
	}
	var t Transition
	err := t.UnmarshalBinary(buf[:])
	return t, err
}

func nameFor(k Key) string {
	if !k.Modifier {
		return Name(k.Code)
	}
	for _, m := range []Key{LeftCtrl, LeftShift, LeftAlt, LeftGUI, RightCtrl, RightShift, RightAlt, RightGUI} {
		if m.Code == k.Code {
			return m.Name
		}
	}
	if k.Code == PlaceholderCode {
		switch k.Mods {
		case Meh.Mods:
			return Meh.Name
		case Hyper.Mods:
			return Hyper.Name
		}
	}
	return "MOD"
}

// Package codetable maps key codes to the pair of bytes a key produces
// unshifted and shifted.
package codetable

import (
	"log/slog"
	"sort"

	"github.com/Alia5/viashift/keys"
)

// Resolver looks up key identities by name.
type Resolver interface {
	Lookup(name string) (keys.Key, bool)
}

// Entry is the byte pair of one code.
type Entry struct {
	Code      keys.Code
	Unshifted byte
	Shifted   byte
}

// Table maps key codes to byte pairs. It is built once and read-only after.
type Table struct {
	entries map[keys.Code]Entry
}

// New returns an empty table.
func New() *Table {
	return &Table{entries: make(map[keys.Code]Entry)}
}

// Map records that k produces b. The first observation of a code fills both
// slots; later ones overwrite only the slot matching k's shift state.
func (t *Table) Map(k keys.Key, b byte) {
	e, ok := t.entries[k.Code]
	if !ok {
		t.entries[k.Code] = Entry{Code: k.Code, Unshifted: b, Shifted: b}
		return
	}
	if k.Shifted() {
		e.Shifted = b
	} else {
		e.Unshifted = b
	}
	t.entries[k.Code] = e
}

// Lookup returns the entry for code.
func (t *Table) Lookup(code keys.Code) (Entry, bool) {
	e, ok := t.entries[code]
	return e, ok
}

// Len returns the number of mapped codes.
func (t *Table) Len() int { return len(t.entries) }

// Entries returns every entry ordered by code.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.entries))
	for _, e := range t.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// NumpadAliases maps characters to keypad key names. The keypad comma key
// produces '='.
var NumpadAliases = []struct {
	Char byte
	Name string
}{
	{'/', "NUMPAD_SLASH"},
	{'*', "NUMPAD_ASTERISK"},
	{'-', "NUMPAD_MINUS"},
	{'+', "NUMPAD_PLUS"},
	{'\r', "NUMPAD_ENTER"},
	{'.', "NUMPAD_DOT"},
	{'=', "NUMPAD_COMMA"},
	{'0', "NUMPAD_0"},
	{'1', "NUMPAD_1"},
	{'2', "NUMPAD_2"},
	{'3', "NUMPAD_3"},
	{'4', "NUMPAD_4"},
	{'5', "NUMPAD_5"},
	{'6', "NUMPAD_6"},
	{'7', "NUMPAD_7"},
	{'8', "NUMPAD_8"},
	{'9', "NUMPAD_9"},
}

// Controls maps special keys to control characters. The arrows follow the
// Apple II convention.
var Controls = []struct {
	Name string
	Byte byte
}{
	{"BKSP", 0x08},
	{"TAB", 0x09},
	{"ENTER", 0x0D},
	{"ESC", 0x1B},
	{"DEL", 0x7F},
	{"LEFT", 0x08},  // Ctrl-H
	{"DOWN", 0x0A},  // Ctrl-J
	{"UP", 0x0B},    // Ctrl-K
	{"RIGHT", 0x15}, // Ctrl-U
	{"RETURN", 0x0D},
	{"CLEAR", 0x18}, // Ctrl-X
}

// Build populates a table from printable ASCII, the keypad aliases and the
// control keys. Names the resolver cannot find are logged and skipped.
func Build(r Resolver, logger *slog.Logger) *Table {
	if logger == nil {
		logger = slog.Default()
	}
	t := New()
	mapName := func(name string, b byte) {
		k, ok := r.Lookup(name)
		if !ok {
			logger.Warn("no key for code table entry", "name", name, "byte", b)
			return
		}
		t.Map(k, b)
	}

	for c := byte(0x20); c < 0x7F; c++ {
		mapName(string(c), c)
	}
	for _, a := range NumpadAliases {
		mapName(a.Name, a.Char)
	}
	for _, c := range Controls {
		mapName(c.Name, c.Byte)
	}
	logger.Debug("code table built", "entries", t.Len())
	return t
}

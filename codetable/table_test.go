package codetable_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/viashift/codetable"
	th "github.com/Alia5/viashift/internal/testing"
	"github.com/Alia5/viashift/keys"
)

func TestMap_OrderIndependent(t *testing.T) {
	one := keys.Plain(keys.Key1)
	bang := keys.Key{Code: keys.Key1, Mods: keys.ModLeftShift}

	a := codetable.New()
	a.Map(one, '1')
	a.Map(bang, '!')

	b := codetable.New()
	b.Map(bang, '!')
	b.Map(one, '1')

	ea, ok := a.Lookup(keys.Key1)
	require.True(t, ok)
	eb, ok := b.Lookup(keys.Key1)
	require.True(t, ok)
	assert.Equal(t, ea, eb)
	assert.Equal(t, codetable.Entry{Code: keys.Key1, Unshifted: '1', Shifted: '!'}, ea)
}

func TestMap_PrintableRangeOrderIndependent(t *testing.T) {
	build := func(order []byte) *codetable.Table {
		tbl := codetable.New()
		for _, c := range order {
			k, ok := keys.Default.Lookup(string(c))
			require.True(t, ok, "%q", c)
			tbl.Map(k, c)
		}
		return tbl
	}

	var forward, reverse []byte
	for c := byte(0x20); c < 0x7F; c++ {
		forward = append(forward, c)
		reverse = append([]byte{c}, reverse...)
	}
	fwd := build(forward)
	rev := build(reverse)
	require.Equal(t, fwd.Entries(), rev.Entries())

	for _, c := range forward {
		k, _ := keys.Default.Lookup(string(c))
		e, ok := fwd.Lookup(k.Code)
		require.True(t, ok)
		if k.Shifted() {
			assert.Equal(t, c, e.Shifted, "%q", c)
		} else {
			assert.Equal(t, c, e.Unshifted, "%q", c)
		}
	}
}

func TestMap_SingleObservationFillsBoth(t *testing.T) {
	tbl := codetable.New()
	tbl.Map(keys.Plain(keys.KeyTab), 0x09)
	e, ok := tbl.Lookup(keys.KeyTab)
	require.True(t, ok)
	assert.Equal(t, byte(0x09), e.Unshifted)
	assert.Equal(t, byte(0x09), e.Shifted)
}

func TestBuild(t *testing.T) {
	logger, rec := th.NewLogRecorder()
	tbl := codetable.Build(keys.Default, logger)

	tests := []struct {
		name      string
		code      keys.Code
		unshifted byte
		shifted   byte
	}{
		{name: "letter", code: keys.KeyA, unshifted: 'a', shifted: 'A'},
		{name: "digit", code: keys.Key2, unshifted: '2', shifted: '@'},
		{name: "grave", code: keys.KeyGrave, unshifted: '`', shifted: '~'},
		{name: "space", code: keys.KeySpace, unshifted: ' ', shifted: ' '},
		{name: "keypad comma", code: keys.KeyKpComma, unshifted: '=', shifted: '='},
		{name: "keypad enter", code: keys.KeyKpEnter, unshifted: 0x0D, shifted: 0x0D},
		{name: "enter", code: keys.KeyEnter, unshifted: 0x0D, shifted: 0x0D},
		{name: "return", code: keys.KeyReturn, unshifted: 0x0D, shifted: 0x0D},
		{name: "clear", code: keys.KeyClear, unshifted: 0x18, shifted: 0x18},
		{name: "left arrow", code: keys.KeyLeft, unshifted: 0x08, shifted: 0x08},
		{name: "right arrow", code: keys.KeyRight, unshifted: 0x15, shifted: 0x15},
		{name: "delete", code: keys.KeyDelete, unshifted: 0x7F, shifted: 0x7F},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, ok := tbl.Lookup(tt.code)
			require.True(t, ok)
			assert.Equal(t, tt.unshifted, e.Unshifted)
			assert.Equal(t, tt.shifted, e.Shifted)
		})
	}

	_, ok := tbl.Lookup(keys.KeyF1)
	assert.False(t, ok)
	assert.Empty(t, rec.AtLeast(slog.LevelWarn))

	entries := tbl.Entries()
	assert.Equal(t, tbl.Len(), len(entries))
	for i := 1; i < len(entries); i++ {
		assert.Less(t, entries[i-1].Code, entries[i].Code)
	}
}

func TestBuild_MissingNamesAreSkipped(t *testing.T) {
	reg := keys.NewRegistry()
	reg.Remove("CLEAR")
	reg.Remove("NUMPAD_COMMA")

	logger, rec := th.NewLogRecorder()
	tbl := codetable.Build(reg, logger)

	_, ok := tbl.Lookup(keys.KeyClear)
	assert.False(t, ok)
	_, ok = tbl.Lookup(keys.KeyKpComma)
	assert.False(t, ok)

	warns := rec.AtLeast(slog.LevelWarn)
	require.Len(t, warns, 2)
	assert.Equal(t, "no key for code table entry", warns[0].Message)
	assert.Equal(t, "NUMPAD_COMMA", warns[0].Attrs["name"])
	assert.Equal(t, "CLEAR", warns[1].Attrs["name"])
}

package keys

// TypeString converts a string into press/release transition pairs.
// A shifted character is pressed as left shift held around the base key, so
// either modifier scope resolves it. Unsupported characters are returned in
// skipped and produce no transitions.
//
// Example:
//
//	ts, _ := TypeString("Hi")
//	// [Press LSHIFT, Press H, Release H, Release LSHIFT, Press I, Release I]
func TypeString(s string) (ts []Transition, skipped []byte) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		k, ok := ForChar(c)
		if !ok {
			skipped = append(skipped, c)
			continue
		}
		ts = append(ts, TypeKey(k)...)
	}
	return ts, skipped
}

// TypeKey returns the transitions typing k once.
func TypeKey(k Key) []Transition {
	if !k.Shifted() {
		return []Transition{Press(k), Release(k)}
	}
	return []Transition{Press(LeftShift), Press(k), Release(k), Release(LeftShift)}
}

package log

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// RawLogger writes one hex line per traced frame.
// in=true marks data received from an event source, in=false bytes shifted
// onto the lines.
type RawLogger interface {
	Log(in bool, data []byte)
}

type rawLogger struct {
	w   io.Writer
	mu  sync.Mutex
	now func() time.Time
}

// NewRaw returns a RawLogger on w. A nil writer discards everything.
func NewRaw(w io.Writer) RawLogger {
	return &rawLogger{w: w, now: time.Now}
}

func (r *rawLogger) Log(in bool, data []byte) {
	if len(data) == 0 || r.w == nil {
		return
	}

	dir := "LINES<-"
	if in {
		dir = "SRC->"
	}

	var hex strings.Builder
	for i, b := range data {
		if i > 0 {
			hex.WriteByte(' ')
		}
		fmt.Fprintf(&hex, "%02x", b)
	}

	line := fmt.Sprintf("%s %s %d bytes: %s\n", r.now().Format("2006/01/02 15:04:05.000"), dir, len(data), hex.String())

	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = io.WriteString(r.w, line)
}

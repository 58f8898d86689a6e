package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Alia5/viashift/line"
	"github.com/Alia5/viashift/liveness"
)

// Probe watches the sense line and reports whether a host clock is running.
type Probe struct {
	Lines  line.Config   `embed:"" prefix:"lines." group:"lines"`
	Window time.Duration `help:"How long to watch the host clock" default:"1500ms" env:"VIASHIFT_PROBE_WINDOW"`

	out io.Writer
}

// Run is called by Kong when the probe command is executed.
func (p *Probe) Run(logger *slog.Logger) error {
	lines, err := openLines(p.Lines, true, logger)
	if err != nil {
		return err
	}
	defer lines.Close()
	return p.measure(lines.Sense, liveness.SystemClock, logger)
}

func (p *Probe) measure(sense line.EdgeCounter, clock liveness.Clock, logger *slog.Logger) error {
	m, err := liveness.New(sense, clock)
	if err != nil {
		return err
	}
	res := m.Measure(p.Window)
	logger.Debug("probe finished", "active", res.Active, "edges", res.Edges, "elapsed", res.Elapsed)

	w := p.out
	if w == nil {
		w = os.Stdout
	}
	state := "inactive"
	if res.Active {
		state = "active"
	}
	_, err = fmt.Fprintf(w, "host clock %s: %d falling edges in %s\n", state, res.Edges, res.Elapsed.Round(time.Millisecond))
	return err
}

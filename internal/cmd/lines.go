package cmd

import (
	"fmt"
	"log/slog"

	"github.com/Alia5/viashift/internal/sim"
	"github.com/Alia5/viashift/line"
)

// openLines opens the line set for a clocking mode. External mode requests
// the sense line instead of ready.
func openLines(cfg line.Config, external bool, logger *slog.Logger) (*line.Set, error) {
	switch cfg.Driver {
	case "gpiocdev":
		logger.Info("requesting GPIO lines", "chip", cfg.Chip, "data", cfg.Data, "clock", cfg.Clock, "ready", cfg.Ready, "sense", cfg.Sense)
		return line.OpenChip(cfg, !external, external)
	case "sim", "":
		logger.Info("using simulated lines", "external", external, "clockHz", cfg.SimClockHz)
		set, _ := sim.Open(cfg, external, logger.With("lines", "sim"))
		return set, nil
	default:
		return nil, fmt.Errorf("unknown line driver %q", cfg.Driver)
	}
}

package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Alia5/viashift/apitypes"
	"github.com/Alia5/viashift/internal/server/api"
	"github.com/Alia5/viashift/liveness"
	"github.com/Alia5/viashift/shifter"
)

// StatsSource is the part of a shifter the status route reads.
type StatsSource interface {
	Stats() shifter.Stats
	Probe() liveness.Result
}

// Status returns a handler reporting mode, transmitter state and counters.
// The probe is included in external mode only.
func Status(s StatsSource) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		b, err := json.Marshal(StatusResponse(s))
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}

// StatusResponse converts a shifter snapshot into its API document.
func StatusResponse(s StatsSource) apitypes.StatusResponse {
	st := s.Stats()
	out := apitypes.StatusResponse{
		Mode:    string(st.Mode),
		Enabled: st.Enabled,
		State:   st.State.String(),
		Counters: apitypes.Counters{
			Sent:     st.Sent,
			Unmapped: st.Unmapped,
			Ignored:  st.Ignored,
			Dropped:  st.Dropped,
			Errors:   st.Errors,
		},
	}
	if st.HasLast {
		out.LastByte = fmt.Sprintf("0x%02X", st.LastByte)
	}
	if st.Mode == shifter.ModeExternal {
		p := s.Probe()
		out.Probe = &apitypes.Probe{Active: p.Active, Edges: p.Edges, ElapsedMs: p.Elapsed.Milliseconds()}
	}
	return out
}

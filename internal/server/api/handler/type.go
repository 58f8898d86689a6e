package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/Alia5/viashift/apitypes"
	"github.com/Alia5/viashift/internal/bridge"
	"github.com/Alia5/viashift/internal/server/api"
	"github.com/Alia5/viashift/keys"
)

// Type returns a handler that types the request text as key presses.
// Characters without a key are skipped and reported back. Every request is
// its own session.
func Type(op bridge.Opener) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		if strings.TrimSpace(req.Payload) == "" {
			return api.ErrBadRequest("missing payload")
		}
		var in apitypes.TypeRequest
		if err := json.Unmarshal([]byte(req.Payload), &in); err != nil {
			return api.ErrBadRequest(fmt.Sprintf("invalid json payload: %v", err))
		}

		sub := op.Open("type")
		defer sub.Close()

		out := apitypes.TypeResponse{Skipped: []string{}}
		for _, r := range in.Text {
			if r > unicode.MaxASCII {
				out.Skipped = append(out.Skipped, string(r))
				continue
			}
			ts, skipped := keys.TypeString(string(r))
			if len(skipped) > 0 {
				out.Skipped = append(out.Skipped, string(r))
				continue
			}
			for _, t := range ts {
				if err := sub.Submit(req.Ctx, t); err != nil {
					return api.ErrUnavailable(err.Error())
				}
			}
			out.Typed++
		}
		if len(out.Skipped) > 0 {
			logger.Warn("typed text contained unsupported characters", "count", len(out.Skipped))
		}

		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}

package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/Alia5/viashift/apitypes"
	"github.com/Alia5/viashift/codetable"
	"github.com/Alia5/viashift/internal/server/api"
	"github.com/Alia5/viashift/keys"
)

// Table returns a handler listing the code table ordered by code.
func Table(t *codetable.Table) api.HandlerFunc {
	return func(req *api.Request, res *api.Response, logger *slog.Logger) error {
		b, err := json.Marshal(TableResponse(t))
		if err != nil {
			return err
		}
		res.JSON = string(b)
		return nil
	}
}

// TableResponse converts t into its API document.
func TableResponse(t *codetable.Table) apitypes.TableResponse {
	entries := t.Entries()
	out := apitypes.TableResponse{Entries: make([]apitypes.TableEntry, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, apitypes.TableEntry{
			Code:      uint16(e.Code),
			Name:      keys.Name(e.Code),
			Unshifted: e.Unshifted,
			Shifted:   e.Shifted,
		})
	}
	return out
}

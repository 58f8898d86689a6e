// Package apitypes holds the JSON documents exchanged over the control API.
package apitypes

import "fmt"

// ApiError represents an RFC 7807 (problem+json) error response.
type ApiError struct {
	// Status is the HTTP-style status code (e.g., 400, 404, 500)
	Status int `json:"status"`
	// Title is a short, human-readable summary of the problem type
	Title string `json:"title"`
	// Detail is a human-readable explanation specific to this occurrence
	Detail string `json:"detail"`
}

func (e ApiError) Error() string {
	if e.Status == 0 && e.Title == "" {
		return "unknown error"
	}
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Title, e.Detail)
}

// --

type PingResponse struct {
	Server  string `json:"server"`
	Version string `json:"version"`
}

// Counters mirrors the shifter statistics.
type Counters struct {
	Sent     uint64 `json:"sent"`
	Unmapped uint64 `json:"unmapped"`
	Ignored  uint64 `json:"ignored"`
	Dropped  uint64 `json:"dropped"`
	Errors   uint64 `json:"errors"`
}

// Probe is the startup clock measurement of external mode.
type Probe struct {
	Active    bool   `json:"active"`
	Edges     uint64 `json:"edges"`
	ElapsedMs int64  `json:"elapsedMs"`
}

type StatusResponse struct {
	Mode     string   `json:"mode"`
	Enabled  bool     `json:"enabled"`
	State    string   `json:"state"`
	Counters Counters `json:"counters"`
	// LastByte is the last byte shifted out, as 0xNN.
	LastByte string `json:"lastByte,omitempty"`
	Probe    *Probe `json:"probe,omitempty"`
}

type TableEntry struct {
	Code      uint16 `json:"code" yaml:"code" toml:"code"`
	Name      string `json:"name" yaml:"name" toml:"name"`
	Unshifted uint8  `json:"unshifted" yaml:"unshifted" toml:"unshifted"`
	Shifted   uint8  `json:"shifted" yaml:"shifted" toml:"shifted"`
}

type TableResponse struct {
	Entries []TableEntry `json:"entries" yaml:"entries" toml:"entries"`
}

type TypeRequest struct {
	Text string `json:"text"`
}

type TypeResponse struct {
	// Typed counts the characters turned into key presses.
	Typed int `json:"typed"`
	// Skipped lists characters with no key, in input order.
	Skipped []string `json:"skipped"`
}

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apitypes "github.com/Alia5/viashift/apitypes"
)

// Client provides a high-level interface to the viashift API, handling request
// formatting, response parsing, and error handling.
type Client struct{ transport *Transport }

// New constructs a high-level API client using the internal low-level Transport.
// The addr parameter specifies the TCP address (host:port) of the API server.
func New(addr string) *Client { return &Client{transport: NewTransport(addr)} }

// NewWithPassword constructs a client that authenticates with the given password.
func NewWithPassword(addr, password string) *Client {
	return &Client{transport: NewTransportWithPassword(addr, password)}
}

// NewWithConfig constructs a client with custom transport timeouts.
func NewWithConfig(addr string, cfg *Config) *Client {
	return &Client{transport: NewTransportWithConfig(addr, cfg)}
}

// WithTransport constructs a Client using a custom Transport implementation.
// This is primarily useful for testing or when advanced transport configuration is needed.
func WithTransport(t *Transport) *Client { return &Client{transport: t} }

// Ping returns the version and identity of the server.
func (c *Client) Ping() (*apitypes.PingResponse, error) {
	return c.PingCtx(context.Background())
}

// PingCtx is the context-aware version of Ping.
func (c *Client) PingCtx(ctx context.Context) (*apitypes.PingResponse, error) {
	const path = "ping"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.PingResponse](raw)
}

// Status returns the shifter mode, transmitter state and counters.
func (c *Client) Status() (*apitypes.StatusResponse, error) {
	return c.StatusCtx(context.Background())
}

func (c *Client) StatusCtx(ctx context.Context) (*apitypes.StatusResponse, error) {
	const path = "status"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.StatusResponse](raw)
}

// Table returns the code table the server encodes with.
func (c *Client) Table() (*apitypes.TableResponse, error) {
	return c.TableCtx(context.Background())
}

func (c *Client) TableCtx(ctx context.Context) (*apitypes.TableResponse, error) {
	const path = "table"
	raw, err := c.transport.DoCtx(ctx, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.TableResponse](raw)
}

// Type sends text as key presses. Characters without a key are returned in
// Skipped.
func (c *Client) Type(text string) (*apitypes.TypeResponse, error) {
	return c.TypeCtx(context.Background(), text)
}

func (c *Client) TypeCtx(ctx context.Context, text string) (*apitypes.TypeResponse, error) {
	const path = "type"
	payload, err := json.Marshal(apitypes.TypeRequest{Text: text})
	if err != nil {
		return nil, fmt.Errorf("marshal type request: %w", err)
	}
	raw, err := c.transport.DoCtx(ctx, path, string(payload), nil)
	if err != nil {
		return nil, err
	}
	return parse[apitypes.TypeResponse](raw)
}

func parse[T any](data string) (*T, error) {
	if data == "" {
		return nil, errors.New("empty response")
	}
	var problem apitypes.ApiError
	if err := json.Unmarshal([]byte(data), &problem); err == nil && (problem.Status != 0 || problem.Title != "") {
		return nil, &problem
	}
	var out T
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}

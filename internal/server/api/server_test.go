package api_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/viashift/internal/server/api"
	th "github.com/Alia5/viashift/internal/testing"
)

func echo(req *api.Request, res *api.Response, logger *slog.Logger) error {
	res.JSON = fmt.Sprintf(`{"params":%d,"payload":%q}`, len(req.Params), req.Payload)
	return nil
}

func TestRouter_Match(t *testing.T) {
	r := api.NewRouter()
	r.Register("status", echo)
	r.Register("table/{Code}", echo)
	r.RegisterStream("keys", func(ctx context.Context, conn net.Conn, params map[string]string, logger *slog.Logger) error {
		return nil
	})

	tests := []struct {
		name       string
		path       string
		wantMatch  bool
		wantParams map[string]string
	}{
		{name: "static", path: "status", wantMatch: true, wantParams: map[string]string{}},
		{name: "case insensitive", path: "STATUS", wantMatch: true, wantParams: map[string]string{}},
		{name: "placeholder keeps name case", path: "table/4", wantMatch: true, wantParams: map[string]string{"Code": "4"}},
		{name: "too many segments", path: "status/x"},
		{name: "stream routes are separate", path: "keys"},
		{name: "unknown", path: "nope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, params := r.Match(tt.path)
			if !tt.wantMatch {
				assert.Nil(t, h)
				return
			}
			require.NotNil(t, h)
			assert.Equal(t, tt.wantParams, params)
		})
	}

	sh, _ := r.MatchStream("keys")
	assert.NotNil(t, sh)
	assert.Equal(t, []string{"status", "table/{Code}", "keys"}, r.Routes())
}

func TestAPIServer_Requests(t *testing.T) {
	addr, done := th.StartAPIServer(t, func(r *api.Router, _ *api.Server) {
		r.Register("echo", echo)
		r.Register("echo/{id}", echo)
		r.Register("fail", func(req *api.Request, res *api.Response, logger *slog.Logger) error {
			return errors.New("boom")
		})
		r.Register("conflict", func(req *api.Request, res *api.Response, logger *slog.Logger) error {
			return api.ErrConflict("busy")
		})
	})
	defer done()

	tests := []struct {
		name     string
		cmd      string
		expected string
	}{
		{name: "no payload", cmd: "echo", expected: `{"params":0,"payload":""}`},
		{name: "payload", cmd: "echo hello world", expected: `{"params":0,"payload":"hello world"}`},
		{name: "path params", cmd: "ECHO/7 x", expected: `{"params":1,"payload":"x"}`},
		{name: "plain error is internal", cmd: "fail", expected: `{"status":500,"title":"Internal Server Error","detail":"boom"}`},
		{name: "api error passes through", cmd: "conflict", expected: `{"status":409,"title":"Conflict","detail":"busy"}`},
		{name: "unknown path", cmd: "nope", expected: `{"status":404,"title":"Not Found","detail":"unknown path: nope"}`},
		{name: "empty request", cmd: "", expected: `{"status":400,"title":"Bad Request","detail":"empty request"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, th.ExecCmd(t, addr, tt.cmd))
		})
	}
}

func TestAPIServer_StreamHandlerError_ClosesConn(t *testing.T) {
	addr, done := th.StartAPIServer(t, func(r *api.Router, _ *api.Server) {
		r.RegisterStream("keys", func(ctx context.Context, conn net.Conn, params map[string]string, logger *slog.Logger) error {
			return errors.New("boom")
		})
	})
	defer done()

	c, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer c.Close()
	_, err = fmt.Fprintf(c, "keys\x00")
	require.NoError(t, err)

	buf := make([]byte, 1)
	_ = c.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
	_, readErr := c.Read(buf)
	require.Error(t, readErr)
	var ne net.Error
	if errors.As(readErr, &ne) {
		assert.False(t, ne.Timeout(), "connection should be closed, not idle")
	}
}

func TestAPIServer_StreamSeesBytesSentWithPath(t *testing.T) {
	got := make(chan string, 1)
	addr, done := th.StartAPIServer(t, func(r *api.Router, _ *api.Server) {
		r.RegisterStream("keys", func(ctx context.Context, conn net.Conn, params map[string]string, logger *slog.Logger) error {
			buf := make([]byte, 3)
			_, err := conn.Read(buf)
			got <- string(buf)
			return err
		})
	})
	defer done()

	c, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer c.Close()
	_, err = c.Write([]byte("keys\x00abc"))
	require.NoError(t, err)

	select {
	case s := <-got:
		assert.Equal(t, "abc", s)
	case <-time.After(2 * time.Second):
		t.Fatal("stream handler did not receive data")
	}
}

func TestAPIServer_CloseCancelsStreams(t *testing.T) {
	ended := make(chan struct{})
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	_ = ln.Close()

	srv, err := api.New(api.ServerConfig{Addr: addr}, slog.Default())
	require.NoError(t, err)
	srv.Router().RegisterStream("keys", func(ctx context.Context, conn net.Conn, params map[string]string, logger *slog.Logger) error {
		<-ctx.Done()
		close(ended)
		return nil
	})
	require.NoError(t, srv.Start())

	c, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer c.Close()
	_, err = c.Write([]byte("keys\x00"))
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	srv.Close()
	select {
	case <-ended:
	case <-time.After(2 * time.Second):
		t.Fatal("stream handler not cancelled")
	}
}

func TestAPIServer_RequestTimeout(t *testing.T) {
	addr, done := th.StartAPIServerWithConfig(t, api.ServerConfig{ConnectionTimeout: 100 * time.Millisecond}, nil)
	defer done()

	c, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer c.Close()
	_, err = c.Write([]byte("stat"))
	require.NoError(t, err)

	buf := make([]byte, 1)
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, readErr := c.Read(buf)
	require.Error(t, readErr)
	var ne net.Error
	if errors.As(readErr, &ne) {
		assert.False(t, ne.Timeout(), "server should drop the connection first")
	}
}

func TestNew_RequireAuthWithoutPassword(t *testing.T) {
	_, err := api.New(api.ServerConfig{RequireAuth: true}, nil)
	assert.Error(t, err)
}

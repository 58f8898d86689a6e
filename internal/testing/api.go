package testing

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode"

	"github.com/Alia5/viashift/internal/bridge"
	"github.com/Alia5/viashift/internal/server/api"
	"github.com/Alia5/viashift/keys"
)

// StartAPIServer starts an API server on a free port and calls register to allow
// the caller to register the handlers needed for the test. Returns the address
// and a function to call when done.
func StartAPIServer(t *testing.T, register func(r *api.Router, apiSrv *api.Server)) (addr string, done func()) {
	t.Helper()
	return StartAPIServerWithConfig(t, api.ServerConfig{}, register)
}

// StartAPIServerWithConfig is StartAPIServer with a custom configuration.
// The address is always a free loopback port.
func StartAPIServerWithConfig(t *testing.T, cfg api.ServerConfig, register func(r *api.Router, apiSrv *api.Server)) (addr string, done func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	cfg.Addr = ln.Addr().String()
	_ = ln.Close()

	apiSrv, err := api.New(cfg, slog.Default())
	if err != nil {
		t.Fatalf("api new failed: %v", err)
	}
	if register != nil {
		register(apiSrv.Router(), apiSrv)
	}
	if err := apiSrv.Start(); err != nil {
		t.Fatalf("api start failed: %v", err)
	}

	done = func() {
		apiSrv.Close()
		time.Sleep(10 * time.Millisecond)
	}
	return apiSrv.Addr(), done
}

// ExecCmd dials the API server, sends cmd and reads the full response.
// The command should not include a trailing newline. Returns the response
// without the trailing newline.
func ExecCmd(t *testing.T, addr string, cmd string) string {
	t.Helper()
	c, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer c.Close()

	_, _ = fmt.Fprintf(c, "%s\x00", cmd)

	r := bufio.NewReader(c)
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		t.Fatalf("read failed: %v", err)
	}

	result := strings.TrimSuffix(line, "\n")
	result = strings.TrimSuffix(result, "\r")
	return result
}

// ExecuteLine routes a command string through the provided router,
// emulating Server.handleConn logic but without network IO.
// The data parameter is the full request data (path + optional payload).
func ExecuteLine(t *testing.T, r *api.Router, data string) string {
	t.Helper()
	if data == "" {
		return problem(api.ErrBadRequest("empty request"))
	}

	path, payload := data, ""
	if i := strings.IndexFunc(data, unicode.IsSpace); i >= 0 {
		path, payload = data[:i], data[i+1:]
	}
	if path == "" {
		return problem(api.ErrBadRequest("empty path"))
	}

	path = strings.ToLower(path)

	if h, params := r.Match(path); h != nil {
		req := &api.Request{Ctx: context.Background(), Params: params, Payload: payload}
		res := &api.Response{}
		if err := h(req, res, slog.Default()); err != nil {
			return problem(err)
		}
		return res.JSON
	}
	return problem(api.ErrNotFound(fmt.Sprintf("unknown path: %s", path)))
}

func problem(err error) string {
	b, _ := json.Marshal(api.WrapError(err))
	return string(b)
}

// Submissions records transitions handed to it, in order. It is a
// bridge.Opener; every session records into the same list.
type Submissions struct {
	mu     sync.Mutex
	ts     []keys.Transition
	opened []string
	closed []string
	err    error
	wait   chan struct{}
}

// NewSubmissions returns a recorder that fails every Submit with err when
// err is non-nil.
func NewSubmissions(err error) *Submissions {
	return &Submissions{err: err, wait: make(chan struct{}, 1024)}
}

func (s *Submissions) Submit(ctx context.Context, t keys.Transition) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	s.ts = append(s.ts, t)
	s.mu.Unlock()
	select {
	case s.wait <- struct{}{}:
	default:
	}
	return nil
}

// Open starts a recording session.
func (s *Submissions) Open(name string) bridge.Session {
	s.mu.Lock()
	s.opened = append(s.opened, name)
	s.mu.Unlock()
	return &recordingSession{s: s, name: name}
}

// Sessions returns how many sessions were opened and how many of them are
// closed.
func (s *Submissions) Sessions() (opened, closed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.opened), len(s.closed)
}

type recordingSession struct {
	s      *Submissions
	name   string
	closed bool
}

func (r *recordingSession) Submit(ctx context.Context, t keys.Transition) error {
	if r.closed {
		return bridge.ErrSessionClosed
	}
	return r.s.Submit(ctx, t)
}

func (r *recordingSession) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.s.mu.Lock()
	r.s.closed = append(r.s.closed, r.name)
	r.s.mu.Unlock()
	select {
	case r.s.wait <- struct{}{}:
	default:
	}
	return nil
}

// WaitClosed blocks until n sessions are closed or d elapsed.
func (s *Submissions) WaitClosed(n int, d time.Duration) bool {
	deadline := time.After(d)
	for {
		if _, closed := s.Sessions(); closed >= n {
			return true
		}
		select {
		case <-s.wait:
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			return false
		}
	}
}

// Transitions returns a copy of the recorded transitions.
func (s *Submissions) Transitions() []keys.Transition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]keys.Transition(nil), s.ts...)
}

// WaitFor blocks until at least n transitions were recorded or d elapsed.
func (s *Submissions) WaitFor(n int, d time.Duration) bool {
	deadline := time.After(d)
	for {
		s.mu.Lock()
		got := len(s.ts)
		s.mu.Unlock()
		if got >= n {
			return true
		}
		select {
		case <-s.wait:
		case <-deadline:
			return false
		}
	}
}

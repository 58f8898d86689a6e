package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/Alia5/viashift/internal/server/api/auth"
)

// Server implements a small TCP API to inspect and feed the shifter.
type Server struct {
	addr   string
	ln     net.Listener
	logger *slog.Logger
	router *Router
	config ServerConfig
	key    []byte

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an API server. A configured password is stretched once here.
func New(config ServerConfig, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &Server{
		addr:   config.Addr,
		logger: logger,
		config: config,
		router: NewRouter(),
	}
	if config.Password != "" {
		key, err := auth.DeriveKey(config.Password)
		if err != nil {
			return nil, err
		}
		a.key = key
	} else if config.RequireAuth {
		return nil, errors.New("api: authentication required but no password set")
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	return a, nil
}

// Router returns the router used by the API server so callers can register handlers.
func (a *Server) Router() *Router { return a.router }

// Config returns the server configuration.
func (a *Server) Config() ServerConfig { return a.config }

// Addr returns the bound address once started.
func (a *Server) Addr() string {
	if a.ln != nil {
		return a.ln.Addr().String()
	}
	return a.addr
}

// Start listens on the configured address and serves incoming API commands.
func (a *Server) Start() error {
	ln, err := net.Listen("tcp", a.addr)
	if err != nil {
		return err
	}
	a.ln = ln
	a.logger.Info("API listening", "addr", ln.Addr().String(), "auth", a.key != nil)
	a.wg.Add(1)
	go a.serve()
	return nil
}

// Close stops accepting, cancels open streams and waits for their handlers.
func (a *Server) Close() {
	a.cancel()
	if a.ln != nil {
		_ = a.ln.Close()
	}
	a.wg.Wait()
}

func (a *Server) serve() {
	defer a.wg.Done()
	for {
		c, err := a.ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				a.logger.Info("API server stopped")
			} else {
				a.logger.Error("API accept error", "error", err)
			}
			return
		}
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.handleConn(c)
		}()
	}
}

func (a *Server) writeError(w io.Writer, err error) {
	problemJSON, _ := json.Marshal(WrapError(err))
	fmt.Fprintf(w, "%s\n", problemJSON)
}

func (a *Server) writeOK(w io.Writer, rest string) {
	fmt.Fprintf(w, "%s\n", rest)
}

// splitRequest separates the path from the payload at the first whitespace.
func splitRequest(data string) (path, payload string) {
	i := strings.IndexFunc(data, unicode.IsSpace)
	if i < 0 {
		return data, ""
	}
	return data[:i], data[i+1:]
}

// upgrade runs the optional handshake and returns the connection and reader
// to use for the request.
func (a *Server) upgrade(conn net.Conn, r *bufio.Reader) (net.Conn, *bufio.Reader, error) {
	if a.key == nil {
		return conn, r, nil
	}
	isAuth, err := auth.IsAuthHandshake(r)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, nil, err
	}
	if !isAuth {
		if a.config.RequireAuth {
			return nil, nil, ErrUnauthorized("authentication required")
		}
		return conn, r, nil
	}
	sc, err := auth.Accept(conn, r, a.key)
	if err != nil {
		return nil, nil, err
	}
	return sc, bufio.NewReader(sc), nil
}

func (a *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	connLogger := a.logger.With("remote", conn.RemoteAddr().String())

	if a.config.ConnectionTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(a.config.ConnectionTimeout))
	}

	r := bufio.NewReader(conn)
	var w net.Conn
	var err error
	w, r, err = a.upgrade(conn, r)
	if err != nil {
		connLogger.Warn("api auth failed", "error", err)
		a.writeError(conn, err)
		return
	}

	reqData, err := r.ReadString('\x00')
	if err != nil {
		if errors.Is(err, io.EOF) {
			connLogger.Error("api incomplete request (no null terminator)")
		} else {
			connLogger.Error("read api data", "error", err)
		}
		return
	}
	reqData = strings.TrimSuffix(reqData, "\x00")
	if reqData == "" {
		connLogger.Error("api empty command")
		a.writeError(w, ErrBadRequest("empty request"))
		return
	}

	path, payload := splitRequest(reqData)
	if path == "" {
		connLogger.Error("api empty path")
		a.writeError(w, ErrBadRequest("empty path"))
		return
	}
	path = strings.ToLower(path)
	connLogger.Debug("api cmd", "path", path)

	if h, params := a.router.Match(path); h != nil {
		req := &Request{Ctx: a.ctx, Params: params, Payload: payload}
		res := &Response{}
		if err := h(req, res, connLogger); err != nil {
			connLogger.Error("api handler error", "path", path, "error", err)
			a.writeError(w, err)
			return
		}
		connLogger.Debug("api handler success", "path", path)
		a.writeOK(w, res.JSON)
		return
	}

	if sh, params := a.router.MatchStream(path); sh != nil {
		_ = conn.SetReadDeadline(time.Time{})
		connLogger.Info("api stream begin", "path", path)
		stream := &bufferedConn{Conn: w, r: r}
		ctx, cancel := context.WithCancel(a.ctx)
		stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
		if err := sh(ctx, stream, params, connLogger); err != nil {
			connLogger.Error("api stream handler error", "path", path, "error", err)
		}
		stop()
		cancel()
		connLogger.Info("api stream end", "path", path)
		return
	}

	connLogger.Error("api unknown path", "path", path)
	a.writeError(w, ErrNotFound(fmt.Sprintf("unknown path: %s", path)))
}

// bufferedConn reads through the request reader so bytes sent right after
// the stream path are not lost.
type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c *bufferedConn) Read(p []byte) (int, error) { return c.r.Read(p) }

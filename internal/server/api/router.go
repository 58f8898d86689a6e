package api

import (
	"context"
	"log/slog"
	"net"
	"strings"
)

// Request contains route parameters and additional args from the command.
type Request struct {
	Ctx     context.Context
	Params  map[string]string
	Payload string
}

// Response holds the JSON string to return to the client.
type Response struct {
	JSON string
}

// HandlerFunc processes a request and populates the response.
// The logger is connection-scoped and carries the remote address.
type HandlerFunc func(req *Request, res *Response, logger *slog.Logger) error

// StreamHandlerFunc takes ownership of a long-lived connection. A returned
// error is logged by the server.
type StreamHandlerFunc func(ctx context.Context, conn net.Conn, params map[string]string, logger *slog.Logger) error

// Router implements simple path pattern matching with placeholders in {name}.
type Router struct {
	routes       []route[HandlerFunc]
	streamRoutes []route[StreamHandlerFunc]
}

type route[H any] struct {
	parts    []string
	names    []string
	handler  H
	original string
}

func newRoute[H any](pattern string, h H) route[H] {
	orig := strings.Split(pattern, "/")
	rt := route[H]{parts: strings.Split(strings.ToLower(pattern), "/"), names: make([]string, len(orig)), handler: h, original: pattern}
	for i, p := range orig {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") {
			rt.names[i] = p[1 : len(p)-1]
		}
	}
	return rt
}

func (rt route[H]) match(parts []string) (map[string]string, bool) {
	if len(rt.parts) != len(parts) {
		return nil, false
	}
	params := map[string]string{}
	for i := range parts {
		if rt.names[i] != "" {
			params[rt.names[i]] = parts[i]
			continue
		}
		if rt.parts[i] != parts[i] {
			return nil, false
		}
	}
	return params, true
}

func lookup[H any](routes []route[H], path string) (H, map[string]string) {
	parts := strings.Split(strings.ToLower(path), "/")
	for _, rt := range routes {
		if params, ok := rt.match(parts); ok {
			return rt.handler, params
		}
	}
	var zero H
	return zero, nil
}

// NewRouter returns a new Router instance.
func NewRouter() *Router { return &Router{} }

// Register registers a handler for a path pattern like "table/{code}".
func (r *Router) Register(pattern string, handler HandlerFunc) {
	r.routes = append(r.routes, newRoute(pattern, handler))
}

// RegisterStream registers a StreamHandler for long-lived TCP connections.
func (r *Router) RegisterStream(pattern string, handler StreamHandlerFunc) {
	r.streamRoutes = append(r.streamRoutes, newRoute(pattern, handler))
}

// Match returns the handler and params of the first matching pattern, or nil.
func (r *Router) Match(path string) (HandlerFunc, map[string]string) {
	return lookup(r.routes, path)
}

// MatchStream is Match for stream routes.
func (r *Router) MatchStream(path string) (StreamHandlerFunc, map[string]string) {
	return lookup(r.streamRoutes, path)
}

// Routes lists the registered patterns, request routes first.
func (r *Router) Routes() []string {
	out := make([]string, 0, len(r.routes)+len(r.streamRoutes))
	for _, rt := range r.routes {
		out = append(out, rt.original)
	}
	for _, rt := range r.streamRoutes {
		out = append(out, rt.original)
	}
	return out
}

package router

import (
	"strings"

	"github.com/ShazimR/myownwebserver/internal/request"
	"github.com/ShazimR/myownwebserver/internal/response"
)

// Router dispatches on the exact request method and the longest registered
// path prefix. A path known under a different method yields 405, an unknown
// path yields 404.
type Router struct {
	routes map[string]map[string]response.Handler
}

func NewRouter() *Router {
	return &Router{
		routes: map[string]map[string]response.Handler{},
	}
}

func (r *Router) Handle(method string, prefix string, handler response.Handler) {
	m, ok := r.routes[method]
	if !ok {
		m = make(map[string]response.Handler)
		r.routes[method] = m
	}
	m[normalize(prefix)] = handler
}

func (r *Router) GET(prefix string, handler response.Handler) {
	r.Handle("GET", prefix, handler)
}

func normalize(path string) string {
	if !strings.HasPrefix(path, "/") {
		return "/" + path
	}
	return path
}

func match(m map[string]response.Handler, path string) (response.Handler, bool) {
	best := -1
	var h response.Handler
	for prefix, handler := range m {
		if strings.HasPrefix(path, prefix) && len(prefix) > best {
			best = len(prefix)
			h = handler
		}
	}
	return h, best != -1
}

func (r *Router) GetHandler(req *request.Request) response.Handler {
	method := req.RequestLine.Method
	path := normalize(req.RequestLine.RequestTarget)

	if m, ok := r.routes[method]; ok {
		if h, ok := match(m, path); ok {
			return h
		}
	}

	for _, m := range r.routes {
		if _, ok := match(m, path); ok {
			return methodNotAllowedHandler
		}
	}

	return notFoundHandler
}

func methodNotAllowedHandler(w *response.Writer, req *request.Request) error {
	return w.WriteError(response.StatusMethodNotAllowed)
}

// Reached only when no registered prefix matches under any method.
func notFoundHandler(w *response.Writer, req *request.Request) error {
	return w.WriteError(response.StatusNotFound)
}

// Serve runs the handler matching req.
func (r *Router) Serve(w *response.Writer, req *request.Request) error {
	return r.GetHandler(req)(w, req)
}

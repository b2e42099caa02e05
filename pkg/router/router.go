package router

import (
	"log"
	"net/http"
	"strings"
	"time"
)

// --- ANSI color codes ---
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

type HandlerFunc func(http.ResponseWriter, *http.Request)

// Router is a small logging mux with segment wildcards: "*" matches one
// path segment, a trailing "*" matches the rest of the path.
type Router struct {
	routes   map[string]HandlerFunc // key = METHOD:PATTERN
	paths    map[string]bool
	patterns []string // wildcard patterns in registration order: specific routes first
}

func New() *Router {
	return &Router{
		routes: make(map[string]HandlerFunc),
		paths:  make(map[string]bool),
	}
}

func (r *Router) register(method, path string, handler HandlerFunc) {
	r.routes[method+":"+path] = handler
	if !r.paths[path] && strings.Contains(path, "*") {
		r.patterns = append(r.patterns, path)
	}
	r.paths[path] = true
}

func (r *Router) GET(path string, handler HandlerFunc)    { r.register(http.MethodGet, path, handler) }
func (r *Router) POST(path string, handler HandlerFunc)   { r.register(http.MethodPost, path, handler) }
func (r *Router) PUT(path string, handler HandlerFunc)    { r.register(http.MethodPut, path, handler) }
func (r *Router) DELETE(path string, handler HandlerFunc) { r.register(http.MethodDelete, path, handler) }

// ServeHTTP dispatches to the first matching route, preferring an exact
// match and then wildcard patterns in registration order, and logs every
// request with its status and duration.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	lrw := &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

	if h, ok := r.routes[req.Method+":"+req.URL.Path]; ok {
		h(lrw, req)
	} else if h := r.matchWildcard(req.Method, req.URL.Path); h != nil {
		h(lrw, req)
	} else if r.pathKnown(req.URL.Path) {
		http.Error(lrw, "Method Not Allowed", http.StatusMethodNotAllowed)
	} else {
		http.Error(lrw, "Not Found", http.StatusNotFound)
	}

	duration := time.Since(start)
	log.Printf("%s[%s]%s %s%s%s %s %s%d%s %s(%v)%s",
		colorCyan, start.Format("2006-01-02 15:04:05"), colorReset,
		methodColor(req.Method), req.Method, colorReset,
		req.URL.Path,
		statusColor(lrw.statusCode), lrw.statusCode, colorReset,
		colorBlue, duration, colorReset,
	)
}

func (r *Router) matchWildcard(method, path string) HandlerFunc {
	for _, pattern := range r.patterns {
		if matchPattern(path, pattern) {
			if h, ok := r.routes[method+":"+pattern]; ok {
				return h
			}
		}
	}
	return nil
}

func (r *Router) pathKnown(path string) bool {
	if r.paths[path] {
		return true
	}
	for _, pattern := range r.patterns {
		if matchPattern(path, pattern) {
			return true
		}
	}
	return false
}

// matchPattern compares path segments against pattern segments; "*" matches
// any single segment, and a trailing "*" swallows the remainder.
func matchPattern(path, pattern string) bool {
	pathSegs := strings.Split(strings.Trim(path, "/"), "/")
	patSegs := strings.Split(strings.Trim(pattern, "/"), "/")

	if patSegs[len(patSegs)-1] == "*" && len(pathSegs) >= len(patSegs) {
		for i := 0; i < len(patSegs)-1; i++ {
			if patSegs[i] != "*" && patSegs[i] != pathSegs[i] {
				return false
			}
		}
		return true
	}

	if len(pathSegs) != len(patSegs) {
		return false
	}
	for i, seg := range patSegs {
		if seg != "*" && seg != pathSegs[i] {
			return false
		}
	}
	return true
}

// Segment returns the n-th segment (0-based) of the request path, or "".
// Handlers use it to pull wildcard values out of matched routes.
func Segment(path string, n int) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	if n < 0 || n >= len(segs) {
		return ""
	}
	return segs[n]
}

// Start runs the server on addr, blocking.
func (r *Router) Start(addr string) {
	log.Printf("🚀 Server started on %shttp://localhost%s%s", colorGreen, addr, colorReset)
	log.Fatal(http.ListenAndServe(addr, r))
}

// --- Logging response writer to capture status codes ---
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// --- Color helpers ---
func statusColor(code int) string {
	switch {
	case code >= 200 && code < 300:
		return colorGreen
	case code >= 300 && code < 400:
		return colorCyan
	case code >= 400 && code < 500:
		return colorYellow
	default:
		return colorRed
	}
}

func methodColor(method string) string {
	switch method {
	case http.MethodGet:
		return colorGreen
	case http.MethodPost:
		return colorBlue
	case http.MethodPut:
		return colorYellow
	case http.MethodDelete:
		return colorRed
	default:
		return colorCyan
	}
}

// Package router provides named route registration with deterministic name
// derivation and automatic trailing-slash-insensitive twins. Handlers are
// collected into an immutable table at startup and mounted on a chi router.
package router

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
)

// Route is a single (method, path) registration.
type Route struct {
	Method  string
	Path    string
	Name    string
	Handler http.HandlerFunc
}

var nonWord = regexp.MustCompile(`\W`)

// MakeRouteName derives a deterministic route name from a method and path:
// the lowercased method, a colon, then the path segments joined with dots.
// Non-word characters in a segment become underscores, segments starting
// with a digit get a "p_" prefix, and an empty path yields "root".
func MakeRouteName(method, path string) string {
	method = strings.ToLower(method)
	path = strings.Trim(path, "/")

	var segments []string
	if path != "" {
		for _, part := range strings.Split(path, "/") {
			part = nonWord.ReplaceAllString(part, "_")
			if part == "" {
				part = "part"
			} else if part[0] >= '0' && part[0] <= '9' {
				part = "p_" + part
			}
			segments = append(segments, part)
		}
	}
	if len(segments) == 0 {
		segments = []string{"root"}
	}
	return method + ":" + strings.Join(segments, ".")
}

type addOptions struct {
	name    string
	noSlash bool
}

// Option customizes a route registration.
type Option func(*addOptions)

// WithName sets an explicit route name instead of the derived one.
func WithName(name string) Option {
	return func(o *addOptions) { o.name = name }
}

// NoSlashTwin suppresses the automatic registration of the route without its
// trailing slash.
func NoSlashTwin() Option {
	return func(o *addOptions) { o.noSlash = true }
}

// Table is an insertion-ordered collection of named routes.
type Table struct {
	routes []Route
	byName map[string]int
}

// NewTable returns an empty route table.
func NewTable() *Table {
	return &Table{byName: map[string]int{}}
}

// Add registers a handler under (method, path). A route named the same as an
// earlier one replaces it. For any non-root path ending in "/", a second
// route is registered for the path without the trailing slash, sharing the
// handler, unless suppressed with NoSlashTwin.
func (t *Table) Add(method, path string, h http.HandlerFunc, opts ...Option) *Table {
	var o addOptions
	for _, opt := range opts {
		opt(&o)
	}
	name := o.name
	if name == "" {
		name = MakeRouteName(method, path)
	}

	t.put(Route{Method: strings.ToUpper(method), Path: path, Name: name, Handler: h})
	if !o.noSlash && path != "/" && strings.HasSuffix(path, "/") {
		t.put(Route{
			Method:  strings.ToUpper(method),
			Path:    strings.TrimSuffix(path, "/"),
			Name:    name + "_no_slash",
			Handler: h,
		})
	}
	return t
}

func (t *Table) put(r Route) {
	if i, ok := t.byName[r.Name]; ok {
		t.routes[i] = r
		return
	}
	t.byName[r.Name] = len(t.routes)
	t.routes = append(t.routes, r)
}

// Routes returns the registered routes in insertion order.
func (t *Table) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// Lookup returns the route registered under name.
func (t *Table) Lookup(name string) (Route, bool) {
	i, ok := t.byName[name]
	if !ok {
		return Route{}, false
	}
	return t.routes[i], true
}

// Mount registers every route on the given chi router. Paths are normalized
// to a leading slash as chi requires.
func (t *Table) Mount(r chi.Router) {
	for _, rt := range t.routes {
		path := rt.Path
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		r.Method(rt.Method, path, rt.Handler)
	}
}

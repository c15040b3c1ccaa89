// Package router maps client paths to pages and lays them out.
package router

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/diya-thabet/hirfa/internal/i18n"
	"github.com/diya-thabet/hirfa/internal/pages"
)

var ErrBadParam = errors.New("bad route parameter")

type Layout int

const (
	// Chrome wraps the page in the header and footer.
	Chrome Layout = iota
	// Bare renders the page alone; used by the auth forms.
	Bare
)

type Params map[string]string

// Int64 reads a numeric path parameter.
func (p Params) Int64(name string) (int64, error) {
	v, err := strconv.ParseInt(p[name], 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", ErrBadParam, name, p[name])
	}
	return v, nil
}

// Loader builds the view for a matched route.
type Loader func(ctx context.Context, d pages.Deps, p Params, q url.Values) (pages.View, error)

type Route struct {
	Pattern string
	Layout  Layout
	Load    Loader
}

type Router struct {
	deps   pages.Deps
	routes []Route
}

func New(deps pages.Deps) *Router {
	return &Router{deps: deps, routes: Routes()}
}

// Navigate loads the page at target and renders it. A loader error is shown
// in place of the page and also returned.
func (r *Router) Navigate(ctx context.Context, w io.Writer, target string) error {
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("parse route %q: %w", target, err)
	}
	route, params, ok := r.match(u.Path)
	if !ok {
		return r.Show(w, "*", pages.NotFoundView{Route: u.Path})
	}

	view, loadErr := route.Load(ctx, r.deps, params, u.Query())
	if loadErr != nil {
		r.deps.Log.Warn().Err(loadErr).Str("route", route.Pattern).Msg("route failed")
		view = errorView{err: loadErr}
	}
	if err := r.render(w, route, view); err != nil {
		return err
	}
	return loadErr
}

// Show renders a view produced by an action under the layout of pattern.
func (r *Router) Show(w io.Writer, pattern string, view pages.View) error {
	for _, route := range r.routes {
		if route.Pattern == pattern {
			return r.render(w, route, view)
		}
	}
	return r.render(w, Route{Pattern: pattern, Layout: Chrome}, view)
}

func (r *Router) render(w io.Writer, route Route, view pages.View) error {
	t := r.deps.T
	return pages.Boundary(w, t, r.deps.Log, route.Pattern, func(w io.Writer) error {
		if route.Layout == Chrome {
			r.header(w, t)
		}
		if err := view.Render(w, t); err != nil {
			return err
		}
		if route.Layout == Chrome {
			footer(w, t)
		}
		return nil
	})
}

func (r *Router) match(path string) (Route, Params, bool) {
	segments := split(path)
	for _, route := range r.routes {
		if params, ok := matchPattern(split(route.Pattern), segments); ok {
			return route, params, true
		}
	}
	return Route{}, nil, false
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func matchPattern(pattern, segments []string) (Params, bool) {
	if len(pattern) != len(segments) {
		return nil, false
	}
	params := Params{}
	for i, seg := range pattern {
		if name, ok := strings.CutPrefix(seg, ":"); ok {
			params[name] = segments[i]
			continue
		}
		if seg != segments[i] {
			return nil, false
		}
	}
	return params, true
}

func (r *Router) header(w io.Writer, t *i18n.Translator) {
	links := []string{t.T("nav.home"), t.T("nav.jobs"), t.T("nav.community")}
	if r.deps.Session.IsAuthenticated() {
		links = append(links, t.T("nav.dashboard"), t.T("nav.profile"), t.T("nav.logout"))
	} else {
		links = append(links, t.T("nav.login"), t.T("nav.register"))
	}
	fmt.Fprintf(w, "Hirfa [%s] %s\n", t.Direction(), strings.Join(links, " | "))
	fmt.Fprintln(w, strings.Repeat("-", 40))
}

func footer(w io.Writer, t *i18n.Translator) {
	fmt.Fprintln(w, strings.Repeat("-", 40))
	fmt.Fprintf(w, "%s  %s\n", t.T("footer.madeInTunisia"), t.T("footer.copyright"))
}

type errorView struct{ err error }

func (v errorView) Render(w io.Writer, t *i18n.Translator) error {
	fmt.Fprintf(w, "! %s: %v\n", t.T("common.error"), v.err)
	return nil
}

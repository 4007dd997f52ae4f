package middleware

import (
	"net/http"
	"strings"
)

// RedirectPolicy decides, once per session before the attempt gate, whether
// the exposure-minimizing redirect should happen for this request at all.
// Returning false does not skip validation — it only keeps it inline.
type RedirectPolicy interface {
	ShouldRedirect(r *http.Request) bool
}

// RedirectAlways defines a public type used by persist APIs.
//
// RedirectAlways instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RedirectAlways struct{}

// ShouldRedirect describes the shouldredirect operation and its observable behavior.
func (RedirectAlways) ShouldRedirect(*http.Request) bool { return true }

// RedirectNavigations defines a public type used by persist APIs.
//
// RedirectNavigations instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// It approves the redirect only for browser navigations, so API clients that
// cannot follow redirects keep inline validation.
type RedirectNavigations struct{}

// ShouldRedirect describes the shouldredirect operation and its observable behavior.
func (RedirectNavigations) ShouldRedirect(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}

	accept := r.Header.Get("Accept")
	if accept == "" {
		return true
	}
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "*/*")
}

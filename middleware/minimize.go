package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	persist "github.com/persistkit/persist"
)

// Sessions is the host's session-store collaborator: it loads and persists
// the per-session [persist.SessionState] keyed to the browser session. Load
// must return a fresh state (not an error) for a brand-new session.
type Sessions interface {
	Load(r *http.Request) (*persist.SessionState, error)
	Save(w http.ResponseWriter, r *http.Request, st *persist.SessionState) error
}

type identityContextKey struct{}

// IdentityFromContext describes the identityfromcontext operation and its observable behavior.
//
// IdentityFromContext may return an error when input validation, dependency calls, or security checks fail.
// IdentityFromContext does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func IdentityFromContext(ctx context.Context) (*persist.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*persist.Identity)
	return id, ok
}

// Options defines a public type used by persist APIs.
//
// Options instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Options struct {
	// Policy defaults to [RedirectAlways].
	Policy RedirectPolicy

	// OnAuthenticated is the host's "user authenticated via token" hook,
	// typically promoting the identity into the host session.
	OnAuthenticated func(w http.ResponseWriter, r *http.Request, identity *persist.Identity)

	// OnTheft is the host's hook for the user-visible security warning after
	// a rejected (replayed) token. The request still proceeds as anonymous.
	OnTheft func(w http.ResponseWriter, r *http.Request)
}

// Minimizer defines a public type used by persist APIs.
//
// Minimizer instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Minimizer struct {
	scheme   *persist.Scheme
	sessions Sessions
	cookies  CookieTransport
	opts     Options
	redirect persist.RedirectConfig
}

// NewMinimizer describes the newminimizer operation and its observable behavior.
//
// NewMinimizer may return an error when input validation, dependency calls, or security checks fail.
// NewMinimizer does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMinimizer(scheme *persist.Scheme, sessions Sessions, cookies CookieTransport, opts Options) (*Minimizer, error) {
	if scheme == nil {
		return nil, errors.New("scheme is required")
	}
	if sessions == nil {
		return nil, errors.New("sessions collaborator is required")
	}
	if cookies == nil {
		return nil, errors.New("cookie transport is required")
	}
	if opts.Policy == nil {
		opts.Policy = RedirectAlways{}
	}

	return &Minimizer{
		scheme:   scheme,
		sessions: sessions,
		cookies:  cookies,
		opts:     opts,
		redirect: scheme.Config().Redirect,
	}, nil
}

// Guard wraps an application handler with the persistent-login entry point.
// Requests to the check path are handled by the check endpoint; everything
// else either redirects there (minimization enabled, policy approves, first
// time this session) or validates inline.
func (m *Minimizer) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st, err := m.sessions.Load(r)
		if err != nil {
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}
		if st == nil {
			st = persist.NewSessionState()
		}

		if m.redirect.Enabled && r.URL.Path == m.redirect.CheckPath {
			m.check(w, r, st)
			return
		}

		if st.Attempted || st.Phase == persist.PhaseChecked {
			next.ServeHTTP(w, r)
			return
		}

		if m.redirect.Enabled && st.Phase == persist.PhaseIdle && m.opts.Policy.ShouldRedirect(r) {
			st.Phase = persist.PhaseRedirecting
			if err := m.sessions.Save(w, r, st); err != nil {
				http.Error(w, "session unavailable", http.StatusInternalServerError)
				return
			}
			target := m.redirect.CheckPath + "?" + m.redirect.ReturnParam + "=" + url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, target, http.StatusFound)
			return
		}

		res, ok := m.validate(w, r, st)
		if !ok {
			return
		}

		ctx := r.Context()
		if res.Outcome == persist.OutcomeAuthenticated {
			ctx = context.WithValue(ctx, identityContextKey{}, res.Identity)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CheckHandler exposes the check endpoint for hosts that route it explicitly
// instead of letting [Minimizer.Guard] intercept the path.
func (m *Minimizer) CheckHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st, err := m.sessions.Load(r)
		if err != nil {
			http.Error(w, "session unavailable", http.StatusInternalServerError)
			return
		}
		if st == nil {
			st = persist.NewSessionState()
		}
		m.check(w, r, st)
	})
}

// check runs the real validation and always hands control back to the
// application via redirect, authenticated or not.
func (m *Minimizer) check(w http.ResponseWriter, r *http.Request, st *persist.SessionState) {
	if _, ok := m.validate(w, r, st); !ok {
		return
	}

	http.Redirect(w, r, m.returnTarget(r), http.StatusFound)
}

// validate performs one guarded validation pass: session save, cookie
// instructions, and host hooks. ok=false means an error response has already
// been written.
func (m *Minimizer) validate(w http.ResponseWriter, r *http.Request, st *persist.SessionState) (*persist.Result, bool) {
	payload, err := m.cookies.Read(r)
	if err != nil {
		payload = nil
	}

	res, err := m.scheme.Validate(r.Context(), payload, st)

	st.Phase = persist.PhaseChecked
	if saveErr := m.sessions.Save(w, r, st); saveErr != nil {
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return nil, false
	}

	if err != nil {
		// Storage failure: fail closed, surface the host's generic error.
		http.Error(w, "authentication backend unavailable", http.StatusInternalServerError)
		return nil, false
	}

	if res.SetCookie != nil {
		m.cookies.Write(w, res.SetCookie)
	}
	if res.ClearCookie {
		m.cookies.Clear(w)
	}

	switch res.Outcome {
	case persist.OutcomeAuthenticated:
		if m.opts.OnAuthenticated != nil {
			m.opts.OnAuthenticated(w, r, res.Identity)
		}
	case persist.OutcomeRejected:
		if m.opts.OnTheft != nil {
			m.opts.OnTheft(w, r)
		}
	}

	return res, true
}

func (m *Minimizer) returnTarget(r *http.Request) string {
	target := r.URL.Query().Get(m.redirect.ReturnParam)
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, "\\") {
		return "/"
	}
	return target
}

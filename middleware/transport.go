package middleware

import (
	"errors"
	"net/http"
	"time"

	persist "github.com/persistkit/persist"
)

// CookieTransport moves the opaque token payload between the scheme and the
// browser. Implementations own encoding, encryption, and cookie attributes;
// Read returns nil with no error when the cookie is absent.
type CookieTransport interface {
	Read(r *http.Request) ([]byte, error)
	Write(w http.ResponseWriter, payload []byte)
	Clear(w http.ResponseWriter)
}

// PlainTransport defines a public type used by persist APIs.
//
// PlainTransport instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// It stores the payload as the cookie value verbatim (codec output is already
// cookie-safe). It applies NO encryption: use it for development and tests,
// or behind a host cookie layer that encrypts, never bare in production.
type PlainTransport struct {
	name   string
	path   string
	domain string
	secure bool
	maxAge int
}

// NewPlainTransport describes the newplaintransport operation and its observable behavior.
//
// NewPlainTransport may return an error when input validation, dependency calls, or security checks fail.
// NewPlainTransport does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewPlainTransport(cfg persist.Config) (*PlainTransport, error) {
	if cfg.Cookie.Name == "" {
		return nil, errors.New("cookie name is required")
	}

	path := cfg.Cookie.Path
	if path == "" {
		path = "/"
	}

	return &PlainTransport{
		name:   cfg.Cookie.Name,
		path:   path,
		domain: cfg.Cookie.Domain,
		secure: cfg.Cookie.Secure,
		maxAge: int(cfg.Token.TTL / time.Second),
	}, nil
}

// Read describes the read operation and its observable behavior.
//
// Read may return an error when input validation, dependency calls, or security checks fail.
// Read does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (t *PlainTransport) Read(r *http.Request) ([]byte, error) {
	c, err := r.Cookie(t.name)
	if errors.Is(err, http.ErrNoCookie) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(c.Value), nil
}

// Write describes the write operation and its observable behavior.
//
// Write may return an error when input validation, dependency calls, or security checks fail.
// Write does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (t *PlainTransport) Write(w http.ResponseWriter, payload []byte) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.name,
		Value:    string(payload),
		Path:     t.path,
		Domain:   t.domain,
		MaxAge:   t.maxAge,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (t *PlainTransport) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.name,
		Value:    "",
		Path:     t.path,
		Domain:   t.domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

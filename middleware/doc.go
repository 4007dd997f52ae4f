// Package middleware exposes the exposure-minimizing HTTP layer for the
// persist scheme: a guard that funnels the one-time token check through a
// dedicated low-traffic endpoint so the sensitive cookie rides on as few
// requests as possible.
//
// # Flow
//
// On a session's first eligible request, [Minimizer.Guard] redirects the
// browser to the check endpoint instead of validating inline. The check
// endpoint performs the real validation, applies the cookie instructions,
// and redirects back to the originally requested resource — success or
// failure either way. A request already at the check path validates
// immediately, which is what prevents a redirect loop. With minimization
// disabled the guard validates inline and no redirect happens.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Scheme calls. Session
// persistence ([Sessions]) and cookie transport ([CookieTransport]) are host
// collaborators; [PlainTransport] is a development transport only — in
// production the cookie layer must apply authenticated encryption, the
// payload is a live bearer secret.
//
// # What this package must NOT do
//
//   - Decide authentication outcomes (delegates to Scheme.Validate).
//   - Access Redis (the Scheme handles I/O).
//   - Follow an absolute or protocol-relative return target after the check.
package middleware

package persist

import (
	"context"
	"errors"

	"github.com/persistkit/persist/token"
)

// Validate runs the persistent-token authentication state machine for one
// request. The session state gates it to at most one decision per browser
// session: once Attempted is set, every later call returns OutcomeNoToken
// without touching the cookie or the store.
//
// The returned Result carries cookie instructions the host must apply.
// Absence and rejection are recovered into the Result; storage and hasher
// failures propagate and never fall back to authenticating.
func (s *Scheme) Validate(ctx context.Context, cookie []byte, st *SessionState) (*Result, error) {
	if s == nil {
		return nil, ErrSchemeNotReady
	}
	if st == nil {
		return nil, ErrSessionStateRequired
	}

	if st.Attempted {
		s.metricInc(MetricAttemptGateHit)
		return &Result{Outcome: OutcomeNoToken}, nil
	}
	st.Attempted = true
	s.metricInc(MetricValidateAttempt)

	// Housekeeping, not security: a failed sweep is reported and ignored.
	if n, err := s.store.RemoveExpired(ctx); err != nil {
		s.emit(ctx, EventSweepFailed, "", "", false, err.Error())
	} else if n > 0 {
		s.metrics.Add(MetricExpiredSwept, uint64(n))
	}

	if len(cookie) == 0 {
		s.metricInc(MetricNoToken)
		return &Result{Outcome: OutcomeNoToken}, nil
	}

	series, providedSecret, err := s.codec.Decode(cookie)
	if err != nil {
		// A payload that cannot decode is dead weight on every request;
		// ask the host to drop it, still nothing user-visible.
		s.metricInc(MetricNoToken)
		return &Result{Outcome: OutcomeNoToken, ClearCookie: true}, nil
	}

	rec, err := s.store.FindBySeries(ctx, series)
	if errors.Is(err, token.ErrNotFound) {
		// Revoked or never-existed series. Absence is not suspicious.
		s.metricInc(MetricNoToken)
		return &Result{Outcome: OutcomeNoToken, Series: series, ClearCookie: true}, nil
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(providedSecret[:], rec.SecretHash)
	if err != nil {
		return nil, err
	}

	if !ok {
		// Theft signal: the legitimate holder has rotated past this secret.
		// Every lineage for the owner is assumed equally compromised.
		if _, err := s.store.DeleteAllByOwner(ctx, rec.OwnerID); err != nil {
			return nil, err
		}
		s.metricInc(MetricTheftDetected)
		s.emit(ctx, EventTheftDetected, rec.OwnerID, series.String(), false, ErrCookieTheft.Error())
		return &Result{Outcome: OutcomeRejected, Series: series, ClearCookie: true}, nil
	}

	next, newSecret, err := s.store.Rotate(ctx, rec)
	if err != nil {
		return nil, err
	}

	payload, err := s.codec.Encode(next.Series, newSecret)
	if err != nil {
		return nil, err
	}

	identity, err := s.users.Resolve(ctx, rec.OwnerID)
	if err != nil {
		return nil, err
	}

	s.metricInc(MetricAuthenticated)
	s.emit(ctx, EventAuthenticated, rec.OwnerID, series.String(), true, "")

	return &Result{
		Outcome:   OutcomeAuthenticated,
		Identity:  identity,
		Series:    series,
		SetCookie: payload,
	}, nil
}

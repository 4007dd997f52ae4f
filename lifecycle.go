package persist

import (
	"context"
	"errors"

	"github.com/persistkit/persist/token"
)

func isNotFound(err error) bool {
	return errors.Is(err, token.ErrNotFound)
}

// OnIdentified is the "user identified by some other path" lifecycle hook.
// When the identifying path is anything but this scheme's own validator, it
// mints a fresh token lineage for the owner and returns the cookie payload
// the host must set. When the tag is [IdentifiedByPersistentToken] the token
// was already rotated during validation, so no payload is returned.
func (s *Scheme) OnIdentified(ctx context.Context, ownerID string, by IdentifiedBy) ([]byte, error) {
	if s == nil {
		return nil, ErrSchemeNotReady
	}
	if by == IdentifiedByPersistentToken {
		return nil, nil
	}

	rec, sec, err := s.store.Create(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	payload, err := s.codec.Encode(rec.Series, sec)
	if err != nil {
		return nil, err
	}

	s.metricInc(MetricTokenMinted)
	s.emit(ctx, EventMinted, ownerID, rec.Series.String(), true, "")

	return payload, nil
}

// OnLogout is the "user logging out" lifecycle hook. If the presented cookie
// still validates, the specific series it names is revoked; the host clears
// the cookie regardless of what happens here. A mismatch at logout is not
// treated as theft — the user is leaving either way.
func (s *Scheme) OnLogout(ctx context.Context, cookie []byte) error {
	if s == nil {
		return ErrSchemeNotReady
	}
	if len(cookie) == 0 {
		return nil
	}

	series, providedSecret, err := s.codec.Decode(cookie)
	if err != nil {
		return nil
	}

	rec, err := s.store.FindBySeries(ctx, series)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}

	ok, err := s.hasher.Verify(providedSecret[:], rec.SecretHash)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	if err := s.store.DeleteBySeries(ctx, rec.Series); err != nil {
		return err
	}

	s.metricInc(MetricTokenRevoked)
	s.emit(ctx, EventRevoked, rec.OwnerID, rec.Series.String(), true, "")

	return nil
}

package persist

import (
	"context"
	"time"

	"github.com/persistkit/persist/secret"
	"github.com/persistkit/persist/token"
)

// Scheme defines a public type used by persist APIs.
//
// Scheme instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Scheme struct {
	config  Config
	store   *token.Store
	codec   token.Codec
	hasher  secret.Hasher
	users   UserProvider
	events  *eventDispatcher
	metrics *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Scheme) Close() {
	if s == nil {
		return
	}
	if s.events != nil {
		s.events.Close()
	}
}

// Config returns a copy of the scheme's configuration for collaborators such
// as the redirect middleware and cookie transports.
func (s *Scheme) Config() Config {
	if s == nil {
		return Config{}
	}
	return cloneConfig(s.config)
}

// EventsDropped describes the eventsdropped operation and its observable behavior.
//
// EventsDropped may return an error when input validation, dependency calls, or security checks fail.
// EventsDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Scheme) EventsDropped() uint64 {
	if s == nil || s.events == nil {
		return 0
	}
	return s.events.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Scheme) MetricsSnapshot() MetricsSnapshot {
	if s == nil || s.metrics == nil {
		return MetricsSnapshot{
			Counters: map[MetricID]uint64{},
		}
	}
	return s.metrics.Snapshot()
}

// RemoveExpired runs the expiry sweep outside the validation path, for hosts
// that schedule it periodically in addition to the opportunistic per-attempt
// sweep. It returns the number of records removed.
func (s *Scheme) RemoveExpired(ctx context.Context) (int, error) {
	if s == nil {
		return 0, ErrSchemeNotReady
	}
	n, err := s.store.RemoveExpired(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.metrics.Add(MetricExpiredSwept, uint64(n))
	}
	return n, nil
}

func (s *Scheme) metricInc(id MetricID) {
	if s == nil || s.metrics == nil {
		return
	}
	s.metrics.Inc(id)
}

func (s *Scheme) emit(ctx context.Context, eventType, ownerID, series string, success bool, errText string) {
	if s == nil || s.events == nil {
		return
	}
	s.events.Emit(ctx, Event{
		Timestamp: time.Now(),
		EventType: eventType,
		OwnerID:   ownerID,
		Series:    series,
		Success:   success,
		Error:     errText,
	})
}

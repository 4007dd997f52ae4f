package persist

import (
	"errors"
	"strings"
	"time"

	"github.com/persistkit/persist/secret"
)

const (
	// DefaultCookieName is an exported constant or variable used by the persistent-login scheme.
	DefaultCookieName = "userdata"
	// DefaultTokenTTL is the default expiry horizon for a token lineage:
	// five weeks from issuance or last rotation.
	DefaultTokenTTL = 5 * 7 * 24 * time.Hour
	// DefaultCheckPath is an exported constant or variable used by the persistent-login scheme.
	DefaultCheckPath = "/_persist/check"
	// DefaultReturnParam is an exported constant or variable used by the persistent-login scheme.
	DefaultReturnParam = "return"
	// DefaultKeyPrefix is an exported constant or variable used by the persistent-login scheme.
	DefaultKeyPrefix = "pl"
)

// Config defines a public type used by persist APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Cookie   CookieConfig
	Token    TokenConfig
	Redirect RedirectConfig
	Secret   secret.Config
	Events   EventConfig
	Metrics  MetricsConfig
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig defines a public type used by persist APIs.
//
// CookieConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// The value placed under Name is the codec's opaque payload; transport
// encryption is the host cookie layer's job and is mandatory in production.
type CookieConfig struct {
	Name   string
	Path   string
	Domain string
	Secure bool

	// HTTPOnly must remain true: the payload is a live bearer secret and
	// must never be script-readable. Build rejects a config that unsets it.
	HTTPOnly bool
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by persist APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	TTL       time.Duration
	KeyPrefix string
}

/*
====================================
REDIRECT CONFIG
====================================
*/

// RedirectConfig defines a public type used by persist APIs.
//
// RedirectConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// When Enabled, the first eligible request of a session is redirected to
// CheckPath, the one-time validation endpoint, instead of validating inline.
type RedirectConfig struct {
	Enabled     bool
	CheckPath   string
	ReturnParam string
}

/*
====================================
EVENT CONFIG
====================================
*/

// EventConfig defines a public type used by persist APIs.
//
// EventConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type EventConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by persist APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the scheme defaults: a five-week token TTL, httpOnly
// cookie, events and metrics enabled, and exposure-minimizing redirects off.
// Callers adjust the copy and pass it to [Builder.WithConfig].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Cookie: CookieConfig{
			Name:     DefaultCookieName,
			Path:     "/",
			HTTPOnly: true,
		},
		Token: TokenConfig{
			TTL:       DefaultTokenTTL,
			KeyPrefix: DefaultKeyPrefix,
		},
		Redirect: RedirectConfig{
			Enabled:     false,
			CheckPath:   DefaultCheckPath,
			ReturnParam: DefaultReturnParam,
		},
		Secret: secret.DefaultConfig(),
		Events: EventConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a full copy.
	return cfg
}

func validateConfig(cfg Config) error {
	if cfg.Cookie.Name == "" {
		return errors.New("cookie name is required")
	}
	if strings.ContainsAny(cfg.Cookie.Name, " ;,=") {
		return errors.New("cookie name contains invalid characters")
	}
	if !cfg.Cookie.HTTPOnly {
		return errors.New("cookie must be httpOnly")
	}

	if cfg.Token.TTL <= 0 {
		return errors.New("token ttl must be positive")
	}
	if cfg.Token.KeyPrefix == "" {
		return errors.New("token key prefix is required")
	}
	if strings.Contains(cfg.Token.KeyPrefix, ":") {
		return errors.New("token key prefix must not contain ':'")
	}

	if cfg.Redirect.Enabled {
		if !strings.HasPrefix(cfg.Redirect.CheckPath, "/") {
			return errors.New("redirect check path must be absolute")
		}
		if cfg.Redirect.ReturnParam == "" {
			return errors.New("redirect return parameter is required")
		}
	}

	if cfg.Events.Enabled && cfg.Events.BufferSize <= 0 {
		return errors.New("event buffer size must be positive")
	}

	return nil
}

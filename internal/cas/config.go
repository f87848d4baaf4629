package cas

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rizesql/cas/internal/casdb"
	"github.com/rizesql/cas/internal/o11y/logging"
)

const DefaultExpiration = 30 * time.Second

// Persisted option names (options table).
const (
	OptionExpiration = "expiration"
	OptionAllowReuse = "allow_ticket_reuse"
	OptionAttributes = "attributes"
)

// Config is the site-wide CAS configuration, resolved once at
// construction time; no endpoint reads ambient global state.
type Config struct {
	// Expiration is the ticket lifetime.
	Expiration time.Duration

	// ProxyGrantingExpiration is the PGT lifetime. PGTs outlive the
	// tickets they mint.
	ProxyGrantingExpiration time.Duration

	// AllowReuse disables single-use enforcement. Escape hatch for
	// unreliable storage backends; weakens the protocol and is off by
	// default.
	AllowReuse bool

	// Attributes is the ordered set of attribute keys disclosed on
	// successful validation.
	Attributes []string

	// AuthURL is the external credential UI users are redirected to
	// when no session exists or authentication fails.
	AuthURL string

	// HomeURL is the redirect target when no service is given.
	HomeURL string
}

func (c Config) WithDefaults() Config {
	if c.Expiration == 0 {
		c.Expiration = DefaultExpiration
	}
	if c.ProxyGrantingExpiration == 0 {
		c.ProxyGrantingExpiration = 2 * time.Hour
	}
	if c.HomeURL == "" {
		c.HomeURL = "/"
	}
	if c.AuthURL == "" {
		c.AuthURL = "/auth"
	}
	return c
}

// LoadOptions overlays persisted site options onto the base config.
// Unset or unparseable options keep the base value.
func LoadOptions(ctx context.Context, db casdb.Database, logger *logging.Logger, base Config) Config {
	cfg := base.WithDefaults()

	if v, ok := option(ctx, db, logger, OptionExpiration); ok {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.Expiration = time.Duration(secs) * time.Second
		}
	}

	if v, ok := option(ctx, db, logger, OptionAllowReuse); ok {
		if allow, err := strconv.ParseBool(v); err == nil {
			cfg.AllowReuse = allow
		}
	}

	if v, ok := option(ctx, db, logger, OptionAttributes); ok {
		var attrs []string
		for _, key := range strings.Split(v, ",") {
			if key = strings.TrimSpace(key); key != "" {
				attrs = append(attrs, key)
			}
		}
		cfg.Attributes = attrs
	}

	return cfg
}

func option(ctx context.Context, db casdb.Database, logger *logging.Logger, name string) (string, bool) {
	v, ok, err := casdb.Query.GetOption(ctx, db, name)
	if err != nil {
		logger.Warn("failed to load option", "name", name, "err", err)
		return "", false
	}
	return v, ok
}

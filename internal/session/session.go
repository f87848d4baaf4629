package session

import (
	"context"
	"net/http"
	"time"

	"github.com/rizesql/cas/internal/directory"
	"github.com/rizesql/cas/internal/o11y/logging"
	"github.com/rizesql/cas/internal/protocol"
	"github.com/rizesql/cas/internal/ticket"
)

// TGCCookieName is the ticket-granting cookie set on the CAS domain.
const TGCCookieName = "CASTGC"

// Provider answers the "is there an authenticated session" question
// and owns credential checks, keeping the CAS core ignorant of how
// sessions are stored.
type Provider interface {
	Current(ctx context.Context, r *http.Request) (protocol.Principal, bool)
	Establish(ctx context.Context, w http.ResponseWriter, p protocol.Principal) error
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request)
	Authenticate(ctx context.Context, username protocol.Login, password string) (protocol.Principal, error)
}

// Cookie implements Provider with a TGC: a TGC-typed ticket signed by
// the regular codec and carried in an HttpOnly cookie. The TGC is
// session continuity, not a validation credential, so it never enters
// the ticket store and is not single-use.
type Cookie struct {
	codec    *ticket.Codec
	dir      directory.Directory
	logger   *logging.Logger
	lifetime time.Duration
}

func NewCookie(codec *ticket.Codec, dir directory.Directory, logger *logging.Logger, lifetime time.Duration) *Cookie {
	if lifetime == 0 {
		lifetime = 2 * time.Hour
	}

	return &Cookie{
		codec:    codec,
		dir:      dir,
		logger:   logger,
		lifetime: lifetime,
	}
}

var _ Provider = (*Cookie)(nil)

func (c *Cookie) Current(ctx context.Context, r *http.Request) (protocol.Principal, bool) {
	cookie, err := r.Cookie(TGCCookieName)
	if err != nil || cookie.Value == "" {
		return protocol.Principal{}, false
	}

	t, p, err := c.codec.Decode(ctx, cookie.Value)
	if err != nil || t.Kind() != protocol.TypeTGC {
		return protocol.Principal{}, false
	}

	return p, true
}

func (c *Cookie) Establish(ctx context.Context, w http.ResponseWriter, p protocol.Principal) error {
	tgc, err := c.codec.New(protocol.TypeTGC, p, "", c.lifetime)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     TGCCookieName,
		Value:    c.codec.Encode(tgc),
		Path:     "/",
		MaxAge:   int(c.lifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (c *Cookie) Destroy(_ context.Context, w http.ResponseWriter, r *http.Request) {
	if _, err := r.Cookie(TGCCookieName); err != nil {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     TGCCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func (c *Cookie) Authenticate(ctx context.Context, username protocol.Login, password string) (protocol.Principal, error) {
	p, err := c.dir.Verify(ctx, username, password)
	if err != nil {
		c.logger.Warn("authentication failed", "login", username)
		return protocol.Principal{}, err
	}
	return p, nil
}

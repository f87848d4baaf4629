package login

import (
	"context"
	"net/url"

	"github.com/rizesql/cas/internal/cas"
	"github.com/rizesql/cas/internal/o11y/logging"
	"github.com/rizesql/cas/internal/o11y/metrics"
	"github.com/rizesql/cas/internal/protocol"
	"github.com/rizesql/cas/internal/session"
	"github.com/rizesql/cas/internal/store"
	"github.com/rizesql/cas/internal/ticket"
)

// RedirectFilter lets the surrounding platform rewrite the final
// redirect target (host allow-listing and the like) before it is sent.
type RedirectFilter func(target string) string

// Request is everything the login state machine looks at. Session
// resolution happens in the handler so the exchange stays a pure
// function of its inputs.
type Request struct {
	Username string
	Password string
	LT       string

	Service string
	Renew   bool
	Gateway bool
	Warn    bool

	// SelfURL is the request's own URL, needed to strip renew on the
	// re-entry redirect.
	SelfURL *url.URL

	// Session is the currently authenticated principal, if any.
	Session protocol.Principal
	HasSess bool
}

// Action is the terminal outcome of a login request: always a
// redirect, optionally with session side effects applied first.
type Action struct {
	RedirectURL  string
	SetSession   *protocol.Principal
	ClearSession bool
}

type Exchange struct {
	codec    *ticket.Codec
	store    store.Store
	sessions session.Provider
	nonces   *session.Nonces
	logger   *logging.Logger
	metrics  *metrics.Metrics
	cfg      cas.Config
	filter   RedirectFilter
}

func NewExchange(platform *cas.Platform, cfg cas.Config, filter RedirectFilter) *Exchange {
	if filter == nil {
		filter = func(target string) string { return target }
	}

	return &Exchange{
		codec:    platform.Codec,
		store:    platform.Store,
		sessions: platform.Sessions,
		nonces:   platform.Nonces,
		logger:   platform.Logger,
		metrics:  platform.Metrics,
		cfg:      cfg,
		filter:   filter,
	}
}

func (e *Exchange) Handle(ctx context.Context, req Request) Action {
	// TODO: the warn parameter should interpose a confirmation page
	// before silent SSO redirects; there is no such page yet.

	if req.Username != "" && req.Password != "" && req.LT != "" {
		return e.acceptor(ctx, req)
	}
	return e.requestor(ctx, req)
}

// acceptor handles a credential submission from the external auth UI.
func (e *Exchange) acceptor(ctx context.Context, req Request) Action {
	ok, err := e.nonces.Verify(ctx, req.LT)
	if err != nil || !ok {
		e.logger.Warn("login ticket rejected", "lt", req.LT)
		return e.authRedirect(ctx, req.Service)
	}

	p, err := e.sessions.Authenticate(ctx, protocol.Login(req.Username), req.Password)
	if err != nil {
		return e.authRedirect(ctx, req.Service)
	}

	action := e.issue(ctx, p, req.Service)
	action.SetSession = &p
	return action
}

// requestor handles a plain visit to /login.
func (e *Exchange) requestor(ctx context.Context, req Request) Action {
	if req.Renew {
		return Action{
			RedirectURL:  stripParam(req.SelfURL, "renew"),
			ClearSession: true,
		}
	}

	if !req.HasSess {
		if req.Gateway && req.Service != "" {
			// Gateway mode fails silently: bounce straight back with
			// no ticket.
			return Action{RedirectURL: e.filter(req.Service)}
		}
		return e.authRedirect(ctx, req.Service)
	}

	return e.issue(ctx, req.Session, req.Service)
}

// issue mints a service ticket bound to the service and redirects the
// user there with the ticket appended. An empty service sends the user
// to the site home with no ticket.
func (e *Exchange) issue(ctx context.Context, p protocol.Principal, serviceURI string) Action {
	if serviceURI == "" {
		return Action{RedirectURL: e.filter(e.cfg.HomeURL)}
	}

	service := protocol.NormalizeService(serviceURI)

	st, err := e.codec.New(protocol.TypeST, p, service, e.cfg.Expiration)
	if err != nil {
		e.logger.Error("failed to mint service ticket", "err", err)
		return Action{RedirectURL: e.filter(serviceURI)}
	}

	wire := e.codec.Encode(st)
	if err := e.store.MarkUnused(ctx, e.codec.StoreKey(st, p), wire, e.cfg.Expiration); err != nil {
		// Fail closed: an unrecorded ticket would never validate, so
		// do not hand it out.
		e.logger.Error("failed to record service ticket", "err", err)
		return Action{RedirectURL: e.filter(serviceURI)}
	}

	e.metrics.TicketIssued(string(protocol.TypeST))
	return Action{RedirectURL: e.filter(service.WithTicket(wire))}
}

// authRedirect sends the user to the external credential UI with a
// fresh login ticket.
func (e *Exchange) authRedirect(ctx context.Context, serviceURI string) Action {
	target, err := url.Parse(e.cfg.AuthURL)
	if err != nil {
		return Action{RedirectURL: e.cfg.AuthURL}
	}

	q := target.Query()
	if serviceURI != "" {
		q.Set("service", serviceURI)
	}
	if lt, err := e.nonces.Issue(ctx); err == nil {
		q.Set("lt", lt)
	} else {
		e.logger.Error("failed to issue login ticket", "err", err)
	}
	target.RawQuery = q.Encode()

	return Action{RedirectURL: target.String()}
}

func stripParam(u *url.URL, name string) string {
	if u == nil {
		return "/login"
	}

	clone := *u
	q := clone.Query()
	q.Del(name)
	clone.RawQuery = q.Encode()

	return clone.String()
}

package login

import (
	"net/http"
	"strconv"

	"github.com/rizesql/cas/internal/cas"
	"github.com/rizesql/cas/internal/o11y/logging"
	"github.com/rizesql/cas/internal/session"
)

type Handler struct {
	method   string
	exchange *Exchange
	sessions session.Provider
	log      *logging.Logger
}

// NewHandler serves the credential-requestor side (GET /login).
func NewHandler(platform *cas.Platform, cfg cas.Config, filter RedirectFilter) *Handler {
	return &Handler{
		method:   http.MethodGet,
		exchange: NewExchange(platform, cfg, filter),
		sessions: platform.Sessions,
		log:      platform.Logger,
	}
}

// NewSubmitHandler serves the credential-acceptor side (POST /login).
func NewSubmitHandler(platform *cas.Platform, cfg cas.Config, filter RedirectFilter) *Handler {
	h := NewHandler(platform, cfg, filter)
	h.method = http.MethodPost
	return h
}

func (h *Handler) Method() string { return h.method }
func (h *Handler) Path() string   { return "/login" }

func (h *Handler) Handle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		req := Request{
			Username: r.FormValue("username"),
			Password: r.FormValue("password"),
			LT:       r.FormValue("lt"),
			Service:  r.FormValue("service"),
			Renew:    boolParam(r.FormValue("renew")),
			Gateway:  boolParam(r.FormValue("gateway")),
			Warn:     boolParam(r.FormValue("warn")),
			SelfURL:  r.URL,
		}

		if p, ok := h.sessions.Current(ctx, r); ok {
			req.Session = p
			req.HasSess = true
		}

		action := h.exchange.Handle(ctx, req)

		if action.ClearSession {
			h.sessions.Destroy(ctx, w, r)
		}
		if action.SetSession != nil {
			if err := h.sessions.Establish(ctx, w, *action.SetSession); err != nil {
				h.log.Error("failed to establish session", "err", err)
			}
		}

		http.Redirect(w, r, action.RedirectURL, http.StatusFound)
	}
}

func boolParam(v string) bool {
	if v == "" {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		// CAS clients send gateway=true but also bare gateway=gateway.
		return true
	}
	return b
}

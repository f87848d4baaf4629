package logout

import (
	"net/http"

	"github.com/rizesql/cas/internal/cas"
	"github.com/rizesql/cas/internal/o11y/logging"
	"github.com/rizesql/cas/internal/session"
)

type Handler struct {
	sessions session.Provider
	cfg      cas.Config
	log      *logging.Logger
}

func NewHandler(platform *cas.Platform, cfg cas.Config) *Handler {
	return &Handler{
		sessions: platform.Sessions,
		cfg:      cfg,
		log:      platform.Logger,
	}
}

func (h *Handler) Method() string { return http.MethodGet }
func (h *Handler) Path() string   { return "/logout" }

func (h *Handler) Handle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.sessions.Destroy(r.Context(), w, r)

		target := r.FormValue("service")
		if target == "" {
			target = h.cfg.HomeURL
		}

		http.Redirect(w, r, target, http.StatusFound)
	}
}

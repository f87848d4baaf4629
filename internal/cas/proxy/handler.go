package proxy

import (
	"net/http"

	"github.com/rizesql/cas/internal/cas"
	"github.com/rizesql/cas/internal/o11y/logging"
	"github.com/rizesql/cas/internal/server"
)

type Handler struct {
	exchange *Exchange
	log      *logging.Logger
}

func NewHandler(platform *cas.Platform, cfg cas.Config) *Handler {
	return &Handler{
		exchange: NewExchange(platform, cfg),
		log:      platform.Logger,
	}
}

func (h *Handler) Method() string { return http.MethodGet }
func (h *Handler) Path() string   { return "/proxy" }

func (h *Handler) Handle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := h.exchange.Handle(r.Context(), r.FormValue("pgt"), r.FormValue("targetService"))

		if err := server.EncodeXML(w, http.StatusOK, res); err != nil {
			h.log.Error("failed to encode proxy response", "err", err)
		}
	}
}

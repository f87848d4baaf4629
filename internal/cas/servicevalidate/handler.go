package servicevalidate

import (
	"net/http"
	"strconv"

	"github.com/rizesql/cas/internal/cas"
	"github.com/rizesql/cas/internal/o11y/logging"
	"github.com/rizesql/cas/internal/protocol"
	"github.com/rizesql/cas/internal/server"
)

type Handler struct {
	path     string
	exchange *Exchange
	log      *logging.Logger
}

// NewHandler serves /serviceValidate: CAS 2.0 validation of service
// tickets only. Proxy tickets are rejected here.
func NewHandler(platform *cas.Platform, cfg cas.Config) *Handler {
	return &Handler{
		path:     "/serviceValidate",
		exchange: NewExchange(platform, cfg, []protocol.TicketType{protocol.TypeST}),
		log:      platform.Logger,
	}
}

// NewProxyValidateHandler serves /proxyValidate, which accepts both
// service and proxy tickets.
func NewProxyValidateHandler(platform *cas.Platform, cfg cas.Config) *Handler {
	return &Handler{
		path:     "/proxyValidate",
		exchange: NewExchange(platform, cfg, []protocol.TicketType{protocol.TypeST, protocol.TypePT}),
		log:      platform.Logger,
	}
}

func (h *Handler) Method() string { return http.MethodGet }
func (h *Handler) Path() string   { return h.path }

func (h *Handler) Handle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renew, _ := strconv.ParseBool(r.FormValue("renew"))

		res := h.exchange.Handle(r.Context(), Request{
			Service: r.FormValue("service"),
			Ticket:  r.FormValue("ticket"),
			PgtURL:  r.FormValue("pgtUrl"),
			Renew:   renew,
		})

		if err := server.EncodeXML(w, http.StatusOK, res); err != nil {
			h.log.Error("failed to encode validation response", "err", err)
		}
	}
}

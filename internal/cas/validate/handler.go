package validate

import (
	"context"
	"net/http"

	"github.com/rizesql/cas/internal/cas"
	"github.com/rizesql/cas/internal/cas/validation"
	"github.com/rizesql/cas/internal/protocol"
	"github.com/rizesql/cas/internal/server"
)

// Handler is the CAS 1.0 /validate endpoint. It accepts only service
// tickets and reveals nothing about failures: the body is exactly
// "yes\n<login>\n" or "no\n\n".
type Handler struct {
	engine *validation.Engine
}

func NewHandler(platform *cas.Platform, cfg cas.Config) *Handler {
	return &Handler{engine: validation.New(platform, cfg)}
}

func (h *Handler) Method() string { return http.MethodGet }
func (h *Handler) Path() string   { return "/validate" }

func (h *Handler) Handle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := h.exchange(r.Context(), r.FormValue("service"), r.FormValue("ticket"))
		server.EncodeText(w, http.StatusOK, body)
	}
}

func (h *Handler) exchange(ctx context.Context, service, wire string) string {
	t, _, err := h.engine.Validate(ctx, wire, service, []protocol.TicketType{protocol.TypeST})
	if err != nil {
		return protocol.ValidateFailure()
	}
	return protocol.ValidateSuccess(t.Login())
}

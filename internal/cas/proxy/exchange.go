package proxy

import (
	"context"

	"github.com/rizesql/cas/internal/cas"
	"github.com/rizesql/cas/internal/cas/validation"
	"github.com/rizesql/cas/internal/o11y/logging"
	"github.com/rizesql/cas/internal/o11y/metrics"
	"github.com/rizesql/cas/internal/protocol"
	"github.com/rizesql/cas/internal/store"
	"github.com/rizesql/cas/internal/ticket"
)

// Exchange implements /proxy: a back-end service presents its PGT and
// receives a fresh proxy ticket bound to the target service. All
// failures use the proxyFailure element, and ticket-level failures
// carry the BAD_PGT code.
type Exchange struct {
	engine  *validation.Engine
	codec   *ticket.Codec
	store   store.Store
	logger  *logging.Logger
	metrics *metrics.Metrics
	cfg     cas.Config
}

func NewExchange(platform *cas.Platform, cfg cas.Config) *Exchange {
	return &Exchange{
		engine:  validation.New(platform, cfg),
		codec:   platform.Codec,
		store:   platform.Store,
		logger:  platform.Logger,
		metrics: platform.Metrics,
		cfg:     cfg,
	}
}

func (e *Exchange) Handle(ctx context.Context, pgt, targetService string) protocol.ServiceResponse {
	_, p, err := e.engine.Validate(ctx, pgt, targetService, []protocol.TicketType{protocol.TypePGT})
	if err != nil {
		code, message := protocol.CodeOf(err)
		return protocol.NewProxyFailure(code, message)
	}

	service := protocol.NormalizeService(targetService)

	pt, err := e.codec.New(protocol.TypePT, p, service, e.cfg.Expiration)
	if err != nil {
		e.logger.Error("failed to mint proxy ticket", "err", err)
		return protocol.NewProxyFailure(protocol.CodeInternalError, "internal error")
	}

	wire := e.codec.Encode(pt)
	if err := e.store.MarkUnused(ctx, e.codec.StoreKey(pt, p), wire, e.cfg.Expiration); err != nil {
		e.logger.Error("failed to record proxy ticket", "err", err)
		return protocol.NewProxyFailure(protocol.CodeInternalError, "internal error")
	}

	e.metrics.TicketIssued(string(protocol.TypePT))
	return protocol.NewProxySuccess(wire)
}

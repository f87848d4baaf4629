package validation

import (
	"context"
	"errors"
	"fmt"

	"github.com/rizesql/cas/internal/cas"
	"github.com/rizesql/cas/internal/o11y/logging"
	"github.com/rizesql/cas/internal/o11y/metrics"
	"github.com/rizesql/cas/internal/protocol"
	"github.com/rizesql/cas/internal/store"
	"github.com/rizesql/cas/internal/ticket"
)

var (
	ErrAlreadyUsed          = errors.New("ticket has already been used")
	ErrTicketTypeNotAllowed = errors.New("ticket type not valid for this endpoint")
)

// Engine is the single chokepoint every ticket-accepting endpoint
// calls through.
type Engine struct {
	codec      *ticket.Codec
	store      store.Store
	logger     *logging.Logger
	metrics    *metrics.Metrics
	allowReuse bool
}

func New(platform *cas.Platform, cfg cas.Config) *Engine {
	return &Engine{
		codec:      platform.Codec,
		store:      platform.Store,
		logger:     platform.Logger,
		metrics:    platform.Metrics,
		allowReuse: cfg.AllowReuse,
	}
}

// Validate decodes, verifies and consumes a ticket. The ticket is
// consumed on presentation, even when the service check afterwards
// fails: retrying a stolen ticket against other services must not work.
//
// In a PGT-validating context (allowed contains PGT) every ticket
// error is relabeled BAD_PGT; callers distinguish bad proxy tickets
// from bad service tickets purely by code.
func (e *Engine) Validate(
	ctx context.Context,
	wire string,
	serviceURI string,
	allowed []protocol.TicketType,
) (protocol.Ticket, protocol.Principal, error) {
	t, p, err := e.validate(ctx, wire, serviceURI, allowed)
	if err != nil {
		err = relabel(err, allowed)

		code, _ := protocol.CodeOf(err)
		e.metrics.Validation(code)
		return protocol.Ticket{}, protocol.Principal{}, err
	}

	e.metrics.Validation("ok")
	e.logger.Info("ticket validated",
		"type", t.Kind(),
		"login", t.Login(),
		"service", t.Service(),
	)
	return t, p, nil
}

func (e *Engine) validate(
	ctx context.Context,
	wire string,
	serviceURI string,
	allowed []protocol.TicketType,
) (protocol.Ticket, protocol.Principal, error) {
	if wire == "" {
		return protocol.Ticket{}, protocol.Principal{}, protocol.InvalidRequest("ticket is required")
	}
	if serviceURI == "" {
		return protocol.Ticket{}, protocol.Principal{}, protocol.InvalidRequest("service is required")
	}

	if kind := protocol.TypeOf(wire); !kind.In(allowed) {
		return protocol.Ticket{}, protocol.Principal{},
			protocol.InvalidTicket(fmt.Sprintf("ticket type %s not valid here", kind), ErrTicketTypeNotAllowed)
	}

	t, p, err := e.codec.Decode(ctx, wire)
	if err != nil {
		return protocol.Ticket{}, protocol.Principal{}, decodeError(err)
	}

	// Consume before any further check; failures past this point still
	// burn the ticket.
	fresh, err := e.store.Consume(ctx, e.codec.StoreKey(t, p))
	if err != nil {
		// Fail closed: an unreachable store never passes for unused.
		e.logger.Error("ticket store unavailable", "err", err)
		return protocol.Ticket{}, protocol.Principal{}, protocol.Internal("ticket store unavailable", err)
	}
	if !fresh && !e.allowReuse {
		return protocol.Ticket{}, protocol.Principal{}, protocol.InvalidTicket("ticket has already been used", ErrAlreadyUsed)
	}

	// An unbound ticket (PGT flows) skips the binding check; the
	// presented service names the audience of the next ticket, not
	// this one.
	if !t.Service().IsZero() {
		presented := protocol.NormalizeService(serviceURI)
		if !t.Service().Equal(presented) {
			return protocol.Ticket{}, protocol.Principal{},
				protocol.InvalidService(fmt.Sprintf("ticket is not valid for service %s", presented))
		}
	}

	return t, p, nil
}

func decodeError(err error) error {
	switch {
	case errors.Is(err, ticket.ErrMalformed):
		return protocol.InvalidTicket("ticket is malformed", err)
	case errors.Is(err, ticket.ErrExpired):
		return protocol.InvalidTicket("ticket has expired", err)
	case errors.Is(err, ticket.ErrUnknownPrincipal):
		return protocol.InvalidTicket("ticket principal is unknown", err)
	case errors.Is(err, ticket.ErrCorrupted):
		return protocol.InvalidTicket("ticket signature is invalid", err)
	default:
		return protocol.Internal("ticket decode failed", err)
	}
}

func relabel(err error, allowed []protocol.TicketType) error {
	if !protocol.TypePGT.In(allowed) {
		return err
	}

	var ticketErr *protocol.TicketError
	if errors.As(err, &ticketErr) {
		return &protocol.TicketError{
			Code:    protocol.CodeBadPGT,
			Message: ticketErr.Message,
			Err:     ticketErr.Err,
		}
	}
	return err
}

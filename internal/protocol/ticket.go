package protocol

import (
	"errors"
	"time"
)

var (
	ErrTicketInvalidType      = errors.New("ticket type must be a known CAS ticket type")
	ErrTicketInvalidLogin     = errors.New("ticket login cannot be empty")
	ErrTicketInvalidExpiry    = errors.New("ticket expiry cannot be zero")
	ErrTicketInvalidSignature = errors.New("ticket signature cannot be empty")
)

// Ticket is one opaque, short-lived CAS credential. The signature is a
// derived value computed by the codec at creation; expiresAt is fixed
// at creation and never mutated.
type Ticket struct {
	kind      TicketType
	login     Login
	service   Service
	expiresAt time.Time
	signature string
}

func NewTicket(
	kind TicketType,
	login Login,
	service Service,
	expiresAt time.Time,
	signature string,
) (Ticket, error) {
	if _, err := ParseTicketType(string(kind)); err != nil {
		return Ticket{}, ErrTicketInvalidType
	}
	if login == "" {
		return Ticket{}, ErrTicketInvalidLogin
	}
	if expiresAt.IsZero() {
		return Ticket{}, ErrTicketInvalidExpiry
	}
	if signature == "" {
		return Ticket{}, ErrTicketInvalidSignature
	}

	return Ticket{
		kind:      kind,
		login:     login,
		service:   service,
		expiresAt: expiresAt,
		signature: signature,
	}, nil
}

func (t Ticket) Kind() TicketType     { return t.kind }
func (t Ticket) Login() Login         { return t.login }
func (t Ticket) Service() Service     { return t.service }
func (t Ticket) ExpiresAt() time.Time { return t.expiresAt }
func (t Ticket) Signature() string    { return t.signature }

func (t Ticket) IsZero() bool { return t.kind == "" }

func (t Ticket) IsExpired(now time.Time) bool {
	return now.After(t.expiresAt)
}

package ticket

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rizesql/cas/internal/clock"
	"github.com/rizesql/cas/internal/crypto"
	"github.com/rizesql/cas/internal/directory"
	"github.com/rizesql/cas/internal/o11y/logging"
	"github.com/rizesql/cas/internal/protocol"
)

var (
	ErrMalformed        = errors.New("ticket is malformed")
	ErrExpired          = errors.New("ticket is expired")
	ErrUnknownPrincipal = errors.New("ticket principal is unknown")
	ErrCorrupted        = errors.New("ticket signature does not match")
)

// Codec owns the ticket wire format:
//
//	<TYPE>-<base64(login "|" urlescape(service) "|" expiresAt "|" signature)>
//
// Encoding is pure; decoding resolves the login through the directory
// because the signature key depends on the principal's credential
// state.
type Codec struct {
	signer *crypto.Signer
	dir    directory.Directory
	clock  clock.Clock
	logger *logging.Logger
}

func NewCodec(signer *crypto.Signer, dir directory.Directory, clk clock.Clock, logger *logging.Logger) *Codec {
	return &Codec{signer: signer, dir: dir, clock: clk, logger: logger}
}

// New mints a signed ticket for the principal, expiring after lifetime.
// The expiry is truncated to microseconds so the serialized form
// round-trips exactly.
func (c *Codec) New(
	kind protocol.TicketType,
	p protocol.Principal,
	service protocol.Service,
	lifetime time.Duration,
) (protocol.Ticket, error) {
	expiresAt := c.clock.Now().Add(lifetime).Truncate(time.Microsecond)

	signature := c.signer.Sign(
		string(p.Login()),
		service.String(),
		FormatExpiry(expiresAt),
		p.Secret(),
	)

	return protocol.NewTicket(kind, p.Login(), service, expiresAt, signature)
}

func (c *Codec) Encode(t protocol.Ticket) string {
	payload := strings.Join([]string{
		string(t.Login()),
		url.QueryEscape(t.Service().String()),
		FormatExpiry(t.ExpiresAt()),
		t.Signature(),
	}, "|")

	return string(t.Kind()) + "-" + base64.StdEncoding.EncodeToString([]byte(payload))
}

// Decode reconstructs a candidate ticket from a caller-supplied wire
// string and re-derives its signature for comparison. Single-use
// bookkeeping is the validation engine's concern, not the codec's.
func (c *Codec) Decode(ctx context.Context, wire string) (protocol.Ticket, protocol.Principal, error) {
	kindStr, payload, found := strings.Cut(wire, "-")
	if !found {
		// CAS 1.0 compatibility: bare tickets are service tickets.
		kindStr, payload = string(protocol.TypeST), wire
	}

	kind, err := protocol.ParseTicketType(kindStr)
	if err != nil {
		return protocol.Ticket{}, protocol.Principal{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return protocol.Ticket{}, protocol.Principal{}, fmt.Errorf("%w: bad base64 payload", ErrMalformed)
	}

	fields := strings.Split(string(raw), "|")
	if len(fields) != 4 {
		return protocol.Ticket{}, protocol.Principal{}, fmt.Errorf("%w: expected 4 fields, got %d", ErrMalformed, len(fields))
	}
	login, escapedService, expiryStr, signature := fields[0], fields[1], fields[2], fields[3]

	service, err := url.QueryUnescape(escapedService)
	if err != nil {
		return protocol.Ticket{}, protocol.Principal{}, fmt.Errorf("%w: bad service encoding", ErrMalformed)
	}

	expiresAt, err := ParseExpiry(expiryStr)
	if err != nil {
		return protocol.Ticket{}, protocol.Principal{}, fmt.Errorf("%w: bad expiry", ErrMalformed)
	}
	if c.clock.Now().After(expiresAt) {
		return protocol.Ticket{}, protocol.Principal{}, ErrExpired
	}

	p, err := c.dir.Lookup(ctx, protocol.Login(login))
	if err != nil {
		if errors.Is(err, directory.ErrUserNotFound) {
			return protocol.Ticket{}, protocol.Principal{}, ErrUnknownPrincipal
		}
		return protocol.Ticket{}, protocol.Principal{}, err
	}

	// Sign over the expiry string exactly as received; reformatting
	// would break verification of tickets we did not encode ourselves.
	if !c.signer.Verify(login, service, expiryStr, p.Secret(), signature) {
		c.logger.Warn("ticket signature mismatch", "login", login, "kind", kind)
		return protocol.Ticket{}, protocol.Principal{}, ErrCorrupted
	}

	t, err := protocol.NewTicket(kind, p.Login(), protocol.Service(service), expiresAt, signature)
	if err != nil {
		return protocol.Ticket{}, protocol.Principal{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return t, p, nil
}

// StoreKey derives the TicketStore key for a ticket. The key is an
// HMAC of principal and expiry, never the wire string itself.
func (c *Codec) StoreKey(t protocol.Ticket, p protocol.Principal) string {
	return c.signer.StoreKey(string(t.Login()), FormatExpiry(t.ExpiresAt()), p.Secret())
}

// FormatExpiry serializes an expiry as decimal seconds since epoch
// with microsecond precision.
func FormatExpiry(t time.Time) string {
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/1000)
}

func ParseExpiry(s string) (time.Time, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return time.Time{}, err
	}
	micros := int64(f*1e6 + 0.5)
	return time.UnixMicro(micros), nil
}

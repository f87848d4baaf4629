package ticket_test

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/rizesql/cas/internal/assert"
	"github.com/rizesql/cas/internal/protocol"
	"github.com/rizesql/cas/internal/testkit"
	"github.com/rizesql/cas/internal/ticket"
)

func TestCodec_RoundTrip(t *testing.T) {
	h := testkit.NewHarness(t)
	p := h.CreateUser(t.Context(), "alice", "hunter2", nil)

	minted, err := h.Codec.New(protocol.TypeST, p, "https://app.test/", 30*time.Second)
	assert.Err(t, err, nil)

	wire := h.Codec.Encode(minted)
	assert.True(t, strings.HasPrefix(wire, "ST-"))

	decoded, principal, err := h.Codec.Decode(t.Context(), wire)
	assert.Err(t, err, nil)
	assert.Equal(t, decoded.Kind(), protocol.TypeST)
	assert.Equal(t, decoded.Login(), protocol.Login("alice"))
	assert.Equal(t, decoded.Service(), protocol.Service("https://app.test/"))
	assert.True(t, decoded.ExpiresAt().Equal(minted.ExpiresAt()))
	assert.Equal(t, principal.Login(), p.Login())
}

func TestCodec_BareTicketIsServiceTicket(t *testing.T) {
	h := testkit.NewHarness(t)
	p := h.CreateUser(t.Context(), "alice", "hunter2", nil)

	minted, err := h.Codec.New(protocol.TypeST, p, "https://app.test/", 30*time.Second)
	assert.Err(t, err, nil)

	// CAS 1.0 clients may strip the prefix; the payload alone still
	// decodes as a service ticket.
	bare := strings.TrimPrefix(h.Codec.Encode(minted), "ST-")

	decoded, _, err := h.Codec.Decode(t.Context(), bare)
	assert.Err(t, err, nil)
	assert.Equal(t, decoded.Kind(), protocol.TypeST)
}

func TestCodec_ServiceWithDelimiters(t *testing.T) {
	h := testkit.NewHarness(t)
	p := h.CreateUser(t.Context(), "alice", "hunter2", nil)

	// The service URI contains the field separator; escaping must keep
	// the payload at exactly four fields.
	service := protocol.NormalizeService("https://app.test/path?a=1|2&b=x")

	minted, err := h.Codec.New(protocol.TypePT, p, service, 30*time.Second)
	assert.Err(t, err, nil)

	decoded, _, err := h.Codec.Decode(t.Context(), h.Codec.Encode(minted))
	assert.Err(t, err, nil)
	assert.Equal(t, decoded.Service(), service)
}

func TestCodec_Malformed(t *testing.T) {
	h := testkit.NewHarness(t)
	h.CreateUser(t.Context(), "alice", "hunter2", nil)

	for _, wire := range []string{
		"ST-%%%not-base64%%%",
		"XYZ-" + base64.StdEncoding.EncodeToString([]byte("alice|svc|1700000000.000000|sig")),
		"ST-" + base64.StdEncoding.EncodeToString([]byte("alice|too|few")),
		"ST-" + base64.StdEncoding.EncodeToString([]byte("alice|svc|not-a-number|sig")),
	} {
		_, _, err := h.Codec.Decode(t.Context(), wire)
		assert.Err(t, err, ticket.ErrMalformed)
	}
}

func TestCodec_Expired(t *testing.T) {
	h := testkit.NewHarness(t)
	p := h.CreateUser(t.Context(), "alice", "hunter2", nil)

	wire := h.IssueTicket(t.Context(), protocol.TypeST, p, "https://app.test/", 30*time.Second)
	h.Clock.Tick(time.Minute)

	_, _, err := h.Codec.Decode(t.Context(), wire)
	assert.Err(t, err, ticket.ErrExpired)
}

func TestCodec_UnknownPrincipal(t *testing.T) {
	h := testkit.NewHarness(t)

	expiry := ticket.FormatExpiry(h.Clock.Now().Add(time.Hour))
	wire := "ST-" + base64.StdEncoding.EncodeToString(
		[]byte("ghost|https%3A%2F%2Fapp.test%2F|"+expiry+"|0000"))

	_, _, err := h.Codec.Decode(t.Context(), wire)
	assert.Err(t, err, ticket.ErrUnknownPrincipal)
}

func TestCodec_TamperedPayload(t *testing.T) {
	h := testkit.NewHarness(t)
	p := h.CreateUser(t.Context(), "alice", "hunter2", nil)

	minted, err := h.Codec.New(protocol.TypeST, p, "https://app.test/", 30*time.Second)
	assert.Err(t, err, nil)
	wire := h.Codec.Encode(minted)

	// Rebind the ticket to another service without re-signing.
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(wire, "ST-"))
	assert.Err(t, err, nil)
	fields := strings.Split(string(raw), "|")
	fields[1] = "https%3A%2F%2Fevil.test%2F"
	forged := "ST-" + base64.StdEncoding.EncodeToString([]byte(strings.Join(fields, "|")))

	_, _, err = h.Codec.Decode(t.Context(), forged)
	assert.Err(t, err, ticket.ErrCorrupted)
}

func TestCodec_PasswordChangeInvalidatesTickets(t *testing.T) {
	h := testkit.NewHarness(t)
	p := h.CreateUser(t.Context(), "alice", "hunter2", nil)

	wire := h.IssueTicket(t.Context(), protocol.TypeST, p, "https://app.test/", 30*time.Second)

	_, err := h.DB.ExecContext(t.Context(),
		`UPDATE users SET password_hash = ? WHERE login = ?`,
		[]byte("rotated"), "alice")
	assert.Err(t, err, nil)

	// The signing key is derived from the credential hash, so the old
	// ticket no longer verifies.
	_, _, err = h.Codec.Decode(t.Context(), wire)
	assert.Err(t, err, ticket.ErrCorrupted)
}

func TestExpiry_RoundTrip(t *testing.T) {
	at := time.UnixMicro(1700000000123456)

	s := ticket.FormatExpiry(at)
	assert.Equal(t, s, "1700000000.123456")

	parsed, err := ticket.ParseExpiry(s)
	assert.Err(t, err, nil)
	assert.True(t, parsed.Equal(at))
}

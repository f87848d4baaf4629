package testkit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rizesql/cas/internal/assert"
	"github.com/rizesql/cas/internal/cas"
	"github.com/rizesql/cas/internal/casdb"
	"github.com/rizesql/cas/internal/clock"
	"github.com/rizesql/cas/internal/crypto"
	"github.com/rizesql/cas/internal/directory"
	"github.com/rizesql/cas/internal/o11y/logging"
	"github.com/rizesql/cas/internal/o11y/metrics"
	"github.com/rizesql/cas/internal/protocol"
	"github.com/rizesql/cas/internal/server"
	"github.com/rizesql/cas/internal/session"
	"github.com/rizesql/cas/internal/store"
	"github.com/rizesql/cas/internal/ticket"
)

// Harness wires a complete in-memory CAS platform for tests: sqlite
// :memory: for users, the memory ticket store, a controllable clock
// and a low-iteration KDF so signing stays cheap.
type Harness struct {
	t *testing.T

	DB        casdb.Database
	Clock     *clock.TestClock
	Store     *store.Memory
	Signer    *crypto.Signer
	Directory *directory.DB
	Codec     *ticket.Codec
	Sessions  *session.Cookie
	Nonces    *session.Nonces
	Metrics   *metrics.Metrics
	Logger    *logging.Logger
}

func NewHarness(t *testing.T) *Harness {
	t.Helper()

	logger := logging.Noop()

	db, err := casdb.New(casdb.Config{
		DSN:    ":memory:",
		Logger: logger,
	})
	assert.Err(t, err, nil)

	err = db.Migrate()
	assert.Err(t, err, nil)

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Error(err)
		}
	})

	testClock := clock.NewTestClock()
	memStore := store.NewMemory(testClock)

	signer, err := crypto.NewSigner("test-site-secret", crypto.WithIterations(16))
	assert.Err(t, err, nil)

	dir := directory.New(db, logger)
	codec := ticket.NewCodec(signer, dir, testClock, logger)

	return &Harness{
		t:         t,
		DB:        db,
		Clock:     testClock,
		Store:     memStore,
		Signer:    signer,
		Directory: dir,
		Codec:     codec,
		Sessions:  session.NewCookie(codec, dir, logger, time.Hour),
		Nonces:    session.NewNonces(memStore, signer, 5*time.Minute),
		Metrics:   metrics.New(),
		Logger:    logger,
	}
}

// --- Platform factories ---

func (h *Harness) NewPlatform() *cas.Platform {
	return &cas.Platform{
		Clock:     h.Clock,
		Logger:    h.Logger,
		Metrics:   h.Metrics,
		Store:     h.Store,
		Directory: h.Directory,
		Sessions:  h.Sessions,
		Nonces:    h.Nonces,
		Codec:     h.Codec,
	}
}

func (h *Harness) Config() cas.Config {
	return cas.Config{
		AuthURL: "https://idp.test/auth",
		HomeURL: "https://cas.test/",
	}.WithDefaults()
}

func (h *Harness) NewServer() *server.Server {
	return server.New(h.Logger)
}

// --- Data helpers ---

func (h *Harness) CreateUser(ctx context.Context, login, password string, attrs map[string]string) protocol.Principal {
	h.t.Helper()

	raw, err := json.Marshal(attrs)
	assert.Err(h.t, err, nil)

	_, err = casdb.Query.CreateUser(ctx, h.DB, casdb.CreateUserParams{
		Login:        login,
		PasswordHash: directory.HashPassword(login, password),
		Attributes:   string(raw),
	})
	assert.Err(h.t, err, nil)

	p, err := h.Directory.Lookup(ctx, protocol.Login(login))
	assert.Err(h.t, err, nil)
	return p
}

// SessionCookie establishes a session for p and returns the resulting
// ticket-granting cookie, ready to attach to requests.
func (h *Harness) SessionCookie(p protocol.Principal) *http.Cookie {
	h.t.Helper()

	rr := httptest.NewRecorder()
	err := h.Sessions.Establish(context.Background(), rr, p)
	assert.Err(h.t, err, nil)

	for _, c := range rr.Result().Cookies() {
		if c.Name == session.TGCCookieName {
			return c
		}
	}

	h.t.Fatal("no session cookie was set")
	return nil
}

// IssueTicket mints and records a ticket the way the endpoints do.
func (h *Harness) IssueTicket(ctx context.Context, kind protocol.TicketType, p protocol.Principal, service string, ttl time.Duration) string {
	h.t.Helper()

	t, err := h.Codec.New(kind, p, protocol.NormalizeService(service), ttl)
	assert.Err(h.t, err, nil)

	wire := h.Codec.Encode(t)
	err = h.Store.MarkUnused(ctx, h.Codec.StoreKey(t, p), wire, ttl)
	assert.Err(h.t, err, nil)

	return wire
}

// --- Server helpers ---

type Response struct {
	Status  int
	Headers http.Header
	Cookies []*http.Cookie
	Body    string
}

// Get performs a query-string GET through the server mux, the way CAS
// clients call every endpoint.
func Get(t *testing.T, srv *server.Server, path string, query url.Values, cookies ...*http.Cookie) Response {
	t.Helper()

	target := path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	return do(srv, req)
}

// PostForm performs a form POST, used by the credential-acceptor side
// of /login.
func PostForm(t *testing.T, srv *server.Server, path string, form url.Values, cookies ...*http.Cookie) Response {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	return do(srv, req)
}

func do(srv *server.Server, req *http.Request) Response {
	rr := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rr, req)

	res := rr.Result()
	defer res.Body.Close()

	return Response{
		Status:  rr.Code,
		Headers: rr.Header(),
		Cookies: res.Cookies(),
		Body:    rr.Body.String(),
	}
}

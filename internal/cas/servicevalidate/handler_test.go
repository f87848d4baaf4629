package servicevalidate_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rizesql/cas/internal/assert"
	"github.com/rizesql/cas/internal/cas"
	"github.com/rizesql/cas/internal/cas/servicevalidate"
	"github.com/rizesql/cas/internal/protocol"
	"github.com/rizesql/cas/internal/server"
	"github.com/rizesql/cas/internal/testkit"
)

func newValidateServer(h *testkit.Harness, cfg cas.Config) *server.Server {
	srv := h.NewServer()
	platform := h.NewPlatform()

	srv.Register(servicevalidate.NewHandler(platform, cfg))
	srv.Register(servicevalidate.NewProxyValidateHandler(platform, cfg))
	return srv
}

func TestServiceValidate_Success(t *testing.T) {
	h := testkit.NewHarness(t)
	srv := newValidateServer(h, h.Config())
	p := h.CreateUser(t.Context(), "alice", "hunter2", nil)

	wire := h.IssueTicket(t.Context(), protocol.TypeST, p, "https://app.test/", 30*time.Second)

	res := testkit.Get(t, srv, "/serviceValidate", url.Values{
		"service": {"https://app.test/"},
		"ticket":  {wire},
	})

	assert.Equal(t, res.Status, http.StatusOK)
	assert.Equal(t, res.Headers.Get("Content-Type"), "text/xml; charset=utf-8")
	assert.Equal(t, res.Body,
		`<cas:serviceResponse xmlns:cas="http://www.yale.edu/tp/cas">`+
			`<cas:authenticationSuccess><cas:user>alice</cas:user></cas:authenticationSuccess>`+
			`</cas:serviceResponse>`)
}

func TestServiceValidate_DisclosedAttributes(t *testing.T) {
	h := testkit.NewHarness(t)
	cfg := h.Config()
	cfg.Attributes = []string{"email", "displayName", "department"}
	srv := newValidateServer(h, cfg)

	p := h.CreateUser(t.Context(), "alice", "hunter2", map[string]string{
		"email":       "alice@example.org",
		"displayName": "Alice",
		"shoeSize":    "38",
	})

	wire := h.IssueTicket(t.Context(), protocol.TypeST, p, "https://app.test/", 30*time.Second)

	res := testkit.Get(t, srv, "/serviceValidate", url.Values{
		"service": {"https://app.test/"},
		"ticket":  {wire},
	})

	// Only configured keys are disclosed, in configuration order;
	// missing keys are skipped.
	assert.True(t, strings.Contains(res.Body,
		`<cas:attributes><cas:email>alice@example.org</cas:email><cas:displayName>Alice</cas:displayName></cas:attributes>`))
	assert.Equal(t, strings.Contains(res.Body, "shoeSize"), false)
}

func TestServiceValidate_Failures(t *testing.T) {
	h := testkit.NewHarness(t)
	srv := newValidateServer(h, h.Config())
	p := h.CreateUser(t.Context(), "alice", "hunter2", nil)

	wire := h.IssueTicket(t.Context(), protocol.TypeST, p, "https://app.test/", 30*time.Second)

	for _, tc := range []struct {
		name  string
		query url.Values
		code  string
	}{
		{"missing ticket", url.Values{"service": {"https://app.test/"}}, "INVALID_REQUEST"},
		{"missing service", url.Values{"ticket": {wire}}, "INVALID_REQUEST"},
		{"garbage ticket", url.Values{"service": {"https://app.test/"}, "ticket": {"ST-garbage"}}, "INVALID_TICKET"},
		{"wrong service", url.Values{"service": {"https://other.test/"}, "ticket": {wire}}, "INVALID_SERVICE"},
	} {
		res := testkit.Get(t, srv, "/serviceValidate", tc.query)
		if !strings.Contains(res.Body, `<cas:authenticationFailure code="`+tc.code+`"`) {
			t.Errorf("%s: expected %s failure, got %s", tc.name, tc.code, res.Body)
		}
	}
}

func TestServiceValidate_SingleUse(t *testing.T) {
	h := testkit.NewHarness(t)
	srv := newValidateServer(h, h.Config())
	p := h.CreateUser(t.Context(), "alice", "hunter2", nil)

	wire := h.IssueTicket(t.Context(), protocol.TypeST, p, "https://app.test/", 30*time.Second)
	query := url.Values{"service": {"https://app.test/"}, "ticket": {wire}}

	res := testkit.Get(t, srv, "/serviceValidate", query)
	assert.True(t, strings.Contains(res.Body, "<cas:authenticationSuccess>"))

	res = testkit.Get(t, srv, "/serviceValidate", query)
	assert.True(t, strings.Contains(res.Body, `<cas:authenticationFailure code="INVALID_TICKET"`))
}

func TestServiceValidate_RejectsProxyTickets(t *testing.T) {
	h := testkit.NewHarness(t)
	srv := newValidateServer(h, h.Config())
	p := h.CreateUser(t.Context(), "alice", "hunter2", nil)

	pt := h.IssueTicket(t.Context(), protocol.TypePT, p, "https://app.test/", 30*time.Second)
	query := url.Values{"service": {"https://app.test/"}, "ticket": {pt}}

	res := testkit.Get(t, srv, "/serviceValidate", query)
	assert.True(t, strings.Contains(res.Body, `<cas:authenticationFailure code="INVALID_TICKET"`))
}

func TestProxyValidate_AcceptsBothTicketTypes(t *testing.T) {
	h := testkit.NewHarness(t)
	srv := newValidateServer(h, h.Config())
	p := h.CreateUser(t.Context(), "alice", "hunter2", nil)

	for _, kind := range []protocol.TicketType{protocol.TypeST, protocol.TypePT} {
		wire := h.IssueTicket(t.Context(), kind, p, "https://app.test/", 30*time.Second)

		res := testkit.Get(t, srv, "/proxyValidate", url.Values{
			"service": {"https://app.test/"},
			"ticket":  {wire},
		})
		assert.True(t, strings.Contains(res.Body, "<cas:user>alice</cas:user>"))
	}
}

func TestServiceValidate_ProxyGrant(t *testing.T) {
	h := testkit.NewHarness(t)
	srv := newValidateServer(h, h.Config())
	p := h.CreateUser(t.Context(), "alice", "hunter2", nil)

	var gotID, gotIOU string
	callback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.URL.Query().Get("pgtId")
		gotIOU = r.URL.Query().Get("pgtIou")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(callback.Close)

	wire := h.IssueTicket(t.Context(), protocol.TypeST, p, "https://app.test/", 30*time.Second)

	res := testkit.Get(t, srv, "/serviceValidate", url.Values{
		"service": {"https://app.test/"},
		"ticket":  {wire},
		"pgtUrl":  {callback.URL},
	})

	// The response carries the IOU; the PGT itself only travels over
	// the callback.
	assert.True(t, strings.Contains(res.Body, "<cas:proxyGrantingTicket>"+gotIOU+"</cas:proxyGrantingTicket>"))
	assert.True(t, strings.HasPrefix(gotIOU, "PGTIOU-"))
	assert.True(t, strings.HasPrefix(gotID, "PGT-"))
	assert.Equal(t, strings.Contains(res.Body, gotID), false)

	decoded, _, err := h.Codec.Decode(t.Context(), gotID)
	assert.Err(t, err, nil)
	assert.Equal(t, decoded.Kind(), protocol.TypePGT)
	assert.True(t, decoded.Service().IsZero())
}

func TestServiceValidate_ProxyGrantCallbackRejected(t *testing.T) {
	h := testkit.NewHarness(t)
	srv := newValidateServer(h, h.Config())
	p := h.CreateUser(t.Context(), "alice", "hunter2", nil)

	var gotID string
	callback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID = r.URL.Query().Get("pgtId")
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(callback.Close)

	wire := h.IssueTicket(t.Context(), protocol.TypeST, p, "https://app.test/", 30*time.Second)

	res := testkit.Get(t, srv, "/serviceValidate", url.Values{
		"service": {"https://app.test/"},
		"ticket":  {wire},
		"pgtUrl":  {callback.URL},
	})

	// Validation still succeeds, but without a proxy grant, and the
	// minted PGT is burnt.
	assert.True(t, strings.Contains(res.Body, "<cas:authenticationSuccess>"))
	assert.Equal(t, strings.Contains(res.Body, "proxyGrantingTicket"), false)

	decoded, principal, err := h.Codec.Decode(t.Context(), gotID)
	assert.Err(t, err, nil)
	fresh, err := h.Store.Consume(t.Context(), h.Codec.StoreKey(decoded, principal))
	assert.Err(t, err, nil)
	assert.Equal(t, fresh, false)
}

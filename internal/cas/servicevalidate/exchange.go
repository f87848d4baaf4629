package servicevalidate

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rizesql/cas/internal/cas"
	"github.com/rizesql/cas/internal/cas/validation"
	"github.com/rizesql/cas/internal/crypto"
	"github.com/rizesql/cas/internal/o11y/logging"
	"github.com/rizesql/cas/internal/o11y/metrics"
	"github.com/rizesql/cas/internal/protocol"
	"github.com/rizesql/cas/internal/store"
	"github.com/rizesql/cas/internal/ticket"
)

type Request struct {
	Service string
	Ticket  string
	PgtURL  string
	Renew   bool
}

// Exchange implements the CAS 2.0 XML validation endpoints. The same
// machine serves /serviceValidate and /proxyValidate; only the allowed
// ticket types differ, so the split is a parameter rather than a
// hierarchy.
type Exchange struct {
	engine  *validation.Engine
	codec   *ticket.Codec
	store   store.Store
	logger  *logging.Logger
	metrics *metrics.Metrics
	cfg     cas.Config
	allowed []protocol.TicketType
	client  *http.Client
}

func NewExchange(platform *cas.Platform, cfg cas.Config, allowed []protocol.TicketType) *Exchange {
	return &Exchange{
		engine:  validation.New(platform, cfg),
		codec:   platform.Codec,
		store:   platform.Store,
		logger:  platform.Logger,
		metrics: platform.Metrics,
		cfg:     cfg,
		allowed: allowed,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func (e *Exchange) Handle(ctx context.Context, req Request) protocol.ServiceResponse {
	t, p, err := e.engine.Validate(ctx, req.Ticket, req.Service, e.allowed)
	if err != nil {
		code, message := protocol.CodeOf(err)
		return protocol.NewFailure(code, message)
	}

	pgtIOU := ""
	if req.PgtURL != "" {
		pgtIOU = e.grantProxy(ctx, p, req.PgtURL)
	}

	return protocol.NewSuccess(t.Login(), e.attributes(p), pgtIOU, nil)
}

// attributes projects the principal's attributes through the
// configured disclosure list, preserving its order.
func (e *Exchange) attributes(p protocol.Principal) []protocol.Attribute {
	var attrs []protocol.Attribute
	for _, key := range e.cfg.Attributes {
		if v, ok := p.Attribute(key); ok {
			attrs = append(attrs, protocol.Attribute{Key: key, Value: v})
		}
	}
	return attrs
}

// grantProxy mints a PGT, delivers it out-of-band to the callback URL
// and returns the PGTIOU receipt. Any failure degrades to "no proxy
// granted": the validation itself still succeeds.
func (e *Exchange) grantProxy(ctx context.Context, p protocol.Principal, pgtURL string) string {
	pgt, err := e.codec.New(protocol.TypePGT, p, "", e.cfg.ProxyGrantingExpiration)
	if err != nil {
		e.logger.Error("failed to mint proxy-granting ticket", "err", err)
		return ""
	}

	wire := e.codec.Encode(pgt)
	if err := e.store.MarkUnused(ctx, e.codec.StoreKey(pgt, p), wire, e.cfg.ProxyGrantingExpiration); err != nil {
		e.logger.Error("failed to record proxy-granting ticket", "err", err)
		return ""
	}

	iou := crypto.OpaqueID(string(protocol.TypePGTIOU))
	if err := e.callback(ctx, pgtURL, wire, iou); err != nil {
		e.logger.Warn("pgtUrl callback rejected", "pgtUrl", pgtURL, "err", err)
		// The service never learned the PGT; burn it.
		_ = e.store.MarkUsed(ctx, e.codec.StoreKey(pgt, p))
		return ""
	}

	e.metrics.TicketIssued(string(protocol.TypePGT))
	return iou
}

func (e *Exchange) callback(ctx context.Context, pgtURL, pgtID, pgtIOU string) error {
	u, err := url.Parse(pgtURL)
	if err != nil {
		return err
	}

	q := u.Query()
	q.Set("pgtId", pgtID)
	q.Set("pgtIou", pgtIOU)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}

	res, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("callback returned %d", res.StatusCode)
	}
	return nil
}

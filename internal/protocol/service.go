package protocol

import (
	"net/url"
	"strings"
)

// Service is the URI of the relying application a ticket is bound to.
// Empty for tickets not yet bound to a service (PGT flows).
type Service string

// NormalizeService canonicalizes a caller-supplied service URI so that
// binding comparisons are exact string matches. Unparseable values are
// only trimmed; the validation engine will reject them on mismatch.
func NormalizeService(raw string) Service {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	u, err := url.Parse(s)
	if err != nil {
		return Service(s)
	}
	u.Host = strings.ToLower(u.Host)
	u.Scheme = strings.ToLower(u.Scheme)

	return Service(u.String())
}

func (s Service) Equal(other Service) bool { return s == other }
func (s Service) IsZero() bool             { return s == "" }
func (s Service) String() string           { return string(s) }

// WithTicket appends a ticket parameter to the service URI, keeping
// any query string the service already carries.
func (s Service) WithTicket(wire string) string {
	u, err := url.Parse(string(s))
	if err != nil {
		return string(s)
	}

	q := u.Query()
	q.Set("ticket", wire)
	u.RawQuery = q.Encode()

	return u.String()
}

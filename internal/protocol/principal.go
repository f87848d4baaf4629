package protocol

import (
	"errors"
	"maps"
)

var (
	ErrPrincipalEmptyLogin  = errors.New("principal login cannot be empty")
	ErrPrincipalEmptySecret = errors.New("principal secret fragment cannot be empty")
)

type Login string

// Principal is the authenticated identity a ticket represents. The
// secret fragment is credential-derived key material: it feeds the
// ticket HMAC key, so a password change invalidates every outstanding
// ticket without a revocation list.
type Principal struct {
	login      Login
	secret     string
	attributes map[string]string
}

func NewPrincipal(login Login, secret string, attributes map[string]string) (Principal, error) {
	if login == "" {
		return Principal{}, ErrPrincipalEmptyLogin
	}
	if secret == "" {
		return Principal{}, ErrPrincipalEmptySecret
	}

	attrs := make(map[string]string, len(attributes))
	maps.Copy(attrs, attributes)

	return Principal{
		login:      login,
		secret:     secret,
		attributes: attrs,
	}, nil
}

func (p Principal) Login() Login   { return p.login }
func (p Principal) Secret() string { return p.secret }
func (p Principal) IsZero() bool   { return p.login == "" }

func (p Principal) Attribute(key string) (string, bool) {
	v, ok := p.attributes[key]
	return v, ok
}

func (p Principal) Attributes() map[string]string {
	attrs := make(map[string]string, len(p.attributes))
	maps.Copy(attrs, p.attributes)
	return attrs
}

func (p Principal) String() string { return string(p.login) }

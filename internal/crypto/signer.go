package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var ErrSignerEmptySecret = errors.New("signer site secret cannot be empty")

// Signer produces and verifies ticket HMACs. The per-ticket key mixes
// the site-wide secret, the principal's credential-derived fragment and
// the expiry string, so a credential change invalidates every
// outstanding ticket and a signature never replays across expiry
// windows.
type Signer struct {
	siteSecret string
	kdfOpts    []Option
}

func NewSigner(siteSecret string, opts ...Option) (*Signer, error) {
	if siteSecret == "" {
		return nil, ErrSignerEmptySecret
	}
	return &Signer{siteSecret: siteSecret, kdfOpts: opts}, nil
}

func (s *Signer) key(fragment, expiresAt string) []byte {
	return DeriveKey(s.siteSecret+fragment, expiresAt, s.kdfOpts...)
}

// Sign computes the ticket signature over login|service|expiresAt.
// expiresAt is the serialized wire field, not a time.Time, so decode
// re-derives the exact bytes that were signed.
func (s *Signer) Sign(login, service, expiresAt, fragment string) string {
	mac := hmac.New(sha256.New, s.key(fragment, expiresAt))
	mac.Write([]byte(login + "|" + service + "|" + expiresAt))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *Signer) Verify(login, service, expiresAt, fragment, signature string) bool {
	expected := s.Sign(login, service, expiresAt, fragment)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// StoreKey derives the TicketStore lookup key. It never embeds the
// plaintext wire string, so stored keys cannot be enumerated into
// usable tickets.
func (s *Signer) StoreKey(login, expiresAt, fragment string) string {
	mac := hmac.New(sha256.New, s.key(fragment, expiresAt))
	mac.Write([]byte("store|" + login + "|" + expiresAt))
	return hex.EncodeToString(mac.Sum(nil))
}

// NonceKey keys short-lived identifiers (login tickets, PGTIOU
// receipts) that carry no principal of their own.
func (s *Signer) NonceKey(id string) string {
	mac := hmac.New(sha256.New, []byte(s.siteSecret))
	mac.Write([]byte("nonce|" + id))
	return hex.EncodeToString(mac.Sum(nil))
}

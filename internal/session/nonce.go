package session

import (
	"context"
	"time"

	"github.com/rizesql/cas/internal/crypto"
	"github.com/rizesql/cas/internal/protocol"
	"github.com/rizesql/cas/internal/store"
)

// Nonces issues and consumes login tickets: one-time identifiers that
// prevent replay of the credential-submission POST. They live in the
// same TTL store as real tickets, keyed by an HMAC of the identifier.
type Nonces struct {
	store    store.Store
	signer   *crypto.Signer
	lifetime time.Duration
}

func NewNonces(st store.Store, signer *crypto.Signer, lifetime time.Duration) *Nonces {
	if lifetime == 0 {
		lifetime = 5 * time.Minute
	}

	return &Nonces{store: st, signer: signer, lifetime: lifetime}
}

func (n *Nonces) Issue(ctx context.Context) (string, error) {
	id := crypto.OpaqueID(string(protocol.TypeLT))
	if err := n.store.MarkUnused(ctx, n.signer.NonceKey(id), id, n.lifetime); err != nil {
		return "", err
	}
	return id, nil
}

// Verify consumes the nonce; a second verification of the same value
// always fails.
func (n *Nonces) Verify(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, nil
	}
	return n.store.Consume(ctx, n.signer.NonceKey(id))
}

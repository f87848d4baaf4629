package directory

import (
	"context"
	"crypto/hmac"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rizesql/cas/internal/casdb"
	"github.com/rizesql/cas/internal/crypto"
	"github.com/rizesql/cas/internal/o11y/logging"
	"github.com/rizesql/cas/internal/protocol"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrBadCredentials = errors.New("invalid credentials")
)

// Directory resolves logins to principals. The CAS core never sees
// primary credentials beyond this boundary.
type Directory interface {
	Lookup(ctx context.Context, login protocol.Login) (protocol.Principal, error)
	Verify(ctx context.Context, login protocol.Login, password string) (protocol.Principal, error)
}

type DB struct {
	db     casdb.Database
	logger *logging.Logger
}

func New(db casdb.Database, logger *logging.Logger) *DB {
	return &DB{db: db, logger: logger}
}

var _ Directory = (*DB)(nil)

func (d *DB) Lookup(ctx context.Context, login protocol.Login) (protocol.Principal, error) {
	row, err := casdb.Query.GetUser(ctx, d.db, string(login))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return protocol.Principal{}, ErrUserNotFound
		}
		d.logger.Warn("user lookup failed", "login", login, "err", err)
		return protocol.Principal{}, err
	}

	return principalFromRow(row)
}

func (d *DB) Verify(ctx context.Context, login protocol.Login, password string) (protocol.Principal, error) {
	row, err := casdb.Query.GetUser(ctx, d.db, string(login))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return protocol.Principal{}, ErrBadCredentials
		}
		return protocol.Principal{}, err
	}

	if !hmac.Equal(row.PasswordHash, HashPassword(string(login), password)) {
		return protocol.Principal{}, ErrBadCredentials
	}

	return principalFromRow(row)
}

// HashPassword derives the stored credential hash. The login is the
// salt, so equal passwords on different accounts hash differently.
func HashPassword(login, password string) []byte {
	return crypto.DeriveKey(password, "cas:"+login)
}

func principalFromRow(row casdb.User) (protocol.Principal, error) {
	var attrs map[string]string
	if err := json.Unmarshal([]byte(row.Attributes), &attrs); err != nil {
		return protocol.Principal{}, fmt.Errorf("decode attributes for %s: %w", row.Login, err)
	}

	// The credential hash doubles as the principal's secret fragment:
	// ticket HMAC keys are bound to the live credential state.
	return protocol.NewPrincipal(
		protocol.Login(row.Login),
		hex.EncodeToString(row.PasswordHash),
		attrs,
	)
}

package store

import (
	"context"
	"time"

	"github.com/rizesql/cas/internal/casdb"
	"github.com/rizesql/cas/internal/clock"
)

// SQL keeps ticket freshness in the tickets table. Consume is a single
// DELETE guarded by the expiry column, so check-and-delete is atomic
// at the database.
type SQL struct {
	db    casdb.Database
	clock clock.Clock
}

func NewSQL(db casdb.Database, clk clock.Clock) *SQL {
	return &SQL{db: db, clock: clk}
}

var _ Store = (*SQL)(nil)

func (s *SQL) MarkUnused(ctx context.Context, key, serialized string, ttl time.Duration) error {
	expiresAt := epoch(s.clock.Now().Add(ttl))

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tickets (key, data, expires_at) VALUES (?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`,
		key, serialized, expiresAt,
	)
	return err
}

func (s *SQL) Consume(ctx context.Context, key string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tickets WHERE key = ? AND expires_at > ?`,
		key, epoch(s.clock.Now()),
	)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQL) MarkUsed(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tickets WHERE key = ?`, key)
	return err
}

// Close is a no-op: the database handle is owned by the caller and
// shared with the directory.
func (s *SQL) Close() error { return nil }

func epoch(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}

package store

import (
	"context"
	"encoding/json"
	"net/url"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/rizesql/cas/internal/clock"
)

// LevelDB persists ticket freshness on disk for deployments that
// restart between issuance and validation. LevelDB has no atomic
// check-and-delete, so Consume serializes through a mutex.
type LevelDB struct {
	mu    sync.Mutex
	db    *leveldb.DB
	clock clock.Clock
}

type ldbEntry struct {
	Data      string  `json:"data"`
	ExpiresAt float64 `json:"expires_at"`
}

// OpenLevelDB opens (or creates) the database at the path of a
// leveldb:// DSN.
func OpenLevelDB(dsn string, opts *opt.Options, clk clock.Clock) (*LevelDB, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return nil, err
	}

	db, err := leveldb.OpenFile(u.Host+u.Path, opts)
	if err != nil {
		return nil, err
	}

	return &LevelDB{db: db, clock: clk}, nil
}

var _ Store = (*LevelDB)(nil)

func (l *LevelDB) MarkUnused(_ context.Context, key, serialized string, ttl time.Duration) error {
	e := ldbEntry{
		Data:      serialized,
		ExpiresAt: epoch(l.clock.Now().Add(ttl)),
	}

	raw, err := json.Marshal(&e)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.Put([]byte(key), raw, nil)
}

func (l *LevelDB) Consume(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw, err := l.db.Get([]byte(key), nil)
	if err == leveldb.ErrNotFound {
		return false, nil
	} else if err != nil {
		return false, err
	}

	if err := l.db.Delete([]byte(key), nil); err != nil {
		return false, err
	}

	var e ldbEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return false, err
	}
	return epoch(l.clock.Now()) < e.ExpiresAt, nil
}

func (l *LevelDB) MarkUsed(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.db.Delete([]byte(key), nil)
}

func (l *LevelDB) Close() error {
	return l.db.Close()
}

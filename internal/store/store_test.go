package store_test

import (
	"testing"
	"time"

	"github.com/rizesql/cas/internal/assert"
	"github.com/rizesql/cas/internal/clock"
	"github.com/rizesql/cas/internal/store"
	"github.com/rizesql/cas/internal/testkit"
)

// exercise runs the freshness contract every backend must honor.
func exercise(t *testing.T, st store.Store, clk *clock.TestClock) {
	t.Helper()
	ctx := t.Context()

	err := st.MarkUnused(ctx, "key-1", "ST-serialized", 30*time.Second)
	assert.Err(t, err, nil)

	// First consumption wins, second always loses.
	fresh, err := st.Consume(ctx, "key-1")
	assert.Err(t, err, nil)
	assert.True(t, fresh)

	fresh, err = st.Consume(ctx, "key-1")
	assert.Err(t, err, nil)
	assert.Equal(t, fresh, false)

	// Unknown keys are never fresh.
	fresh, err = st.Consume(ctx, "never-recorded")
	assert.Err(t, err, nil)
	assert.Equal(t, fresh, false)

	// Expired entries are never fresh.
	err = st.MarkUnused(ctx, "key-2", "ST-serialized", 30*time.Second)
	assert.Err(t, err, nil)
	clk.Tick(time.Minute)

	fresh, err = st.Consume(ctx, "key-2")
	assert.Err(t, err, nil)
	assert.Equal(t, fresh, false)

	// MarkUsed burns an entry out of band and is idempotent.
	err = st.MarkUnused(ctx, "key-3", "PGT-serialized", time.Hour)
	assert.Err(t, err, nil)
	err = st.MarkUsed(ctx, "key-3")
	assert.Err(t, err, nil)
	err = st.MarkUsed(ctx, "key-3")
	assert.Err(t, err, nil)

	fresh, err = st.Consume(ctx, "key-3")
	assert.Err(t, err, nil)
	assert.Equal(t, fresh, false)
}

func TestMemory(t *testing.T) {
	clk := clock.NewTestClock()
	exercise(t, store.NewMemory(clk), clk)
}

func TestSQL(t *testing.T) {
	h := testkit.NewHarness(t)
	exercise(t, store.NewSQL(h.DB, h.Clock), h.Clock)
}

func TestLevelDB(t *testing.T) {
	clk := clock.NewTestClock()

	st, err := store.OpenLevelDB("leveldb://"+t.TempDir(), nil, clk)
	assert.Err(t, err, nil)
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Error(err)
		}
	})

	exercise(t, st, clk)
}

func TestMemory_ReMarkRefreshes(t *testing.T) {
	clk := clock.NewTestClock()
	st := store.NewMemory(clk)
	ctx := t.Context()

	err := st.MarkUnused(ctx, "key", "a", 30*time.Second)
	assert.Err(t, err, nil)
	clk.Tick(20 * time.Second)

	// Re-marking the same key restarts its lifetime.
	err = st.MarkUnused(ctx, "key", "a", 30*time.Second)
	assert.Err(t, err, nil)
	clk.Tick(20 * time.Second)

	fresh, err := st.Consume(ctx, "key")
	assert.Err(t, err, nil)
	assert.True(t, fresh)
}

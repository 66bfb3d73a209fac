package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFor(t *testing.T) {
	cfg := DefaultConfig()

	var counter int64
	n := 1000

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	assert.Equal(t, int64(n), counter)
}

func TestFor_Sequential(t *testing.T) {
	cfg := Config{Enabled: false}

	var counter int64
	For(100, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	assert.Equal(t, int64(100), counter)
}

func TestFor_SmallChunk(t *testing.T) {
	// Test that small work units fall back to sequential.
	cfg := DefaultConfig()

	var counter int64
	n := cfg.MinChunkSize - 1

	For(n, func(_ int) {
		atomic.AddInt64(&counter, 1)
	}, cfg)

	assert.Equal(t, int64(n), counter)
}

func TestMap_VisitsEveryIndex(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 4}
	seen := make([]int32, 50)

	err := Map(context.Background(), len(seen), func(_ context.Context, i int) error {
		atomic.AddInt32(&seen[i], 1)
		return nil
	}, cfg)

	require.NoError(t, err)
	for i, v := range seen {
		assert.Equal(t, int32(1), v, "index %d", i)
	}
}

func TestMap_BoundsConcurrency(t *testing.T) {
	cfg := Config{Enabled: true, NumWorkers: 3}
	var inFlight, peak int32

	err := Map(context.Background(), 40, func(_ context.Context, _ int) error {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
				break
			}
		}
		for j := 0; j < 1000; j++ {
			_ = j * j
		}
		atomic.AddInt32(&inFlight, -1)
		return nil
	}, cfg)

	require.NoError(t, err)
	assert.LessOrEqual(t, peak, int32(3))
	assert.GreaterOrEqual(t, peak, int32(1))
}

func TestMap_Disabled(t *testing.T) {
	var order []int
	err := Map(context.Background(), 5, func(_ context.Context, i int) error {
		order = append(order, i)
		return nil
	}, Config{})

	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestMap_FirstError(t *testing.T) {
	boom := errors.New("boom")
	var calls int32

	err := Map(context.Background(), 100, func(ctx context.Context, i int) error {
		atomic.AddInt32(&calls, 1)
		if i == 3 {
			return boom
		}
		return ctx.Err()
	}, Config{})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestMap_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int32
	err := Map(ctx, 10, func(_ context.Context, _ int) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, Config{Enabled: true, NumWorkers: 2})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestMap_Empty(t *testing.T) {
	assert.NoError(t, Map(context.Background(), 0, nil, DefaultConfig()))
}

func BenchmarkMap(b *testing.B) {
	cfg := DefaultConfig()
	for i := 0; i < b.N; i++ {
		var sum int64
		_ = Map(context.Background(), 256, func(_ context.Context, j int) error {
			atomic.AddInt64(&sum, int64(j))
			return nil
		}, cfg)
	}
}

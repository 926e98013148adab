package numerator

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	val int64
	err error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) > 0 {
		if ptr, ok := dest[0].(*int64); ok {
			*ptr = r.val
		}
	}
	return nil
}

// fakeSequence emulates the sys_sequences upsert: increments
// current_val by the given step, or overwrites it for the
// SetNextNumber statement.
type fakeSequence struct {
	mu      sync.Mutex
	current int64
	queries int
}

func (f *fakeSequence) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++

	if strings.Contains(sql, "current_val = $2") {
		f.current = args[1].(int64)
		return &fakeRow{val: f.current}
	}

	var step int64 = 1
	if len(args) == 2 {
		if v, ok := args[1].(int64); ok {
			step = v
		}
	}
	f.current += step
	return &fakeRow{val: f.current}
}

func TestGetNextNumber_Strict(t *testing.T) {
	seq := &fakeSequence{}
	svc := New(seq)
	ctx := context.Background()
	cfg := DefaultConfig("OP")

	num, err := svc.GetNextNumber(ctx, cfg, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "OP-000001", num)

	num, err = svc.GetNextNumber(ctx, cfg, nil, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "OP-000002", num)

	// strict hits the DB on every number
	assert.Equal(t, 2, seq.queries)
}

func TestGetNextNumber_CachedRange(t *testing.T) {
	seq := &fakeSequence{}
	svc := New(seq)
	ctx := context.Background()
	cfg := DefaultConfig("SIM")
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}

	num, err := svc.GetNextNumber(ctx, cfg, opts, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "SIM-000001", num)
	assert.EqualValues(t, 10, seq.current, "first call reserves the whole range")

	num, err = svc.GetNextNumber(ctx, cfg, opts, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "SIM-000002", num)
	assert.EqualValues(t, 10, seq.current, "second number comes from memory")

	for i := 0; i < 8; i++ {
		_, err = svc.GetNextNumber(ctx, cfg, opts, time.Now())
		require.NoError(t, err)
	}

	// range 1..10 is spent, the next call reserves 11..20
	num, err = svc.GetNextNumber(ctx, cfg, opts, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "SIM-000011", num)
	assert.EqualValues(t, 20, seq.current)
}

func TestCachedRangesIsolatedByPrefix(t *testing.T) {
	seq := &fakeSequence{}
	svc := New(seq)
	ctx := context.Background()
	opts := &Options{Strategy: StrategyCached, RangeSize: 5}

	num, err := svc.GetNextNumber(ctx, DefaultConfig("OP"), opts, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "OP-000001", num)

	// OC shares the fake sequence state, so it picks up after OP's
	// reserved range rather than restarting from 1
	num, err = svc.GetNextNumber(ctx, DefaultConfig("OC"), opts, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "OC-000006", num)
}

func TestSetNextNumber_InvalidatesCache(t *testing.T) {
	seq := &fakeSequence{}
	svc := New(seq)
	ctx := context.Background()
	cfg := DefaultConfig("OC")
	opts := &Options{Strategy: StrategyCached, RangeSize: 10}
	now := time.Now()

	num, err := svc.GetNextNumber(ctx, cfg, opts, now)
	require.NoError(t, err)
	assert.Equal(t, "OC-000001", num)

	// restore bumps the sequence past the cached range
	require.NoError(t, svc.SetNextNumber(ctx, cfg, now, 100))

	num, err = svc.GetNextNumber(ctx, cfg, opts, now)
	require.NoError(t, err)
	assert.Equal(t, "OC-000101", num, "cached range must be dropped after a restore")
}

func TestParseNumber(t *testing.T) {
	assert.EqualValues(t, 42, ParseNumber("OP-000042"))
	assert.EqualValues(t, 7, ParseNumber("SIM-2026-000007"))
	assert.EqualValues(t, -1, ParseNumber("garbage"))
}

package store_test

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-watch/internal/market"
	"stock-watch/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "data", "watch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, st.Close()) })
	return st
}

func TestStore_RecordAndQuery(t *testing.T) {
	t.Parallel()

	st := openStore(t)
	t0 := time.Date(2025, 3, 4, 9, 30, 0, 0, time.UTC)

	require.NoError(t, st.Record(t.Context(), []market.Quote{
		{Code: "600519", Title: "Kweichow Moutai", Price: 1680, PercentChange: -1.25},
		{Code: "NVDA", Title: "NVIDIA", Price: 135.21},
	}, t0))
	require.NoError(t, st.Record(t.Context(), []market.Quote{
		{Code: "600519", Title: "Kweichow Moutai", Price: 1690, PercentChange: -0.65},
	}, t0.Add(time.Minute)))

	rows, err := st.QuerySnapshots("600519", 0, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, t0.Add(time.Minute).Unix(), rows[0].TS)
	assert.Equal(t, 1690.0, rows[0].Price)
	assert.Equal(t, 1680.0, rows[1].Price)
	assert.NotEmpty(t, rows[1].CreatedAt)

	var raw market.Quote
	require.NoError(t, json.Unmarshal([]byte(rows[1].Raw), &raw))
	assert.Equal(t, -1.25, raw.PercentChange)

	paged, err := st.QuerySnapshots("600519", 1, 1)
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, 1680.0, paged[0].Price)

	none, err := st.QuerySnapshots("AAPL", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_RecordEmptyBatchIsNoop(t *testing.T) {
	t.Parallel()

	st := openStore(t)
	require.NoError(t, st.Record(t.Context(), nil, time.Now()))
}

func TestStore_NilStore(t *testing.T) {
	t.Parallel()

	var st *store.Store
	require.NoError(t, st.Close())
	require.NoError(t, st.Record(t.Context(), []market.Quote{{Code: "NVDA"}}, time.Now()))
	_, err := st.QuerySnapshots("NVDA", 1, 0)
	require.Error(t, err)
}

func TestOpen_RejectsEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := store.Open("")
	require.Error(t, err)
}

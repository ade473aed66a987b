package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/stockmap/internal/cmd/application"
	"github.com/agentstation/stockmap/internal/store"
	"github.com/agentstation/stockmap/pkg/ledger"
)

var now = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*application.Mock, *store.Store) {
	t.Helper()
	Now = func() time.Time { return now }
	t.Cleanup(func() { Now = time.Now })

	st, err := store.Open(filepath.Join(t.TempDir(), "stockmap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return &application.Mock{
		StoreFunc:        func() (*store.Store, error) { return st, nil },
		OutputFormatFunc: func() string { return "json" },
		SettingsFunc: func() application.Settings {
			return application.Settings{StaleAfter: 7 * 24 * time.Hour, Quiet: true}
		},
	}, st
}

func execute(t *testing.T, app application.Application, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewCommand(app)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func rowsBySupplier(t *testing.T, out string) map[string]Row {
	t.Helper()
	var rows []Row
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	m := make(map[string]Row, len(rows))
	for _, r := range rows {
		m[r.Supplier] = r
	}
	return m
}

func TestLedgerStaleness(t *testing.T) {
	app, st := setup(t)
	l := ledger.New()
	l.Record("VF", now.Add(-24*time.Hour))
	l.Record("BY", now.Add(-30*24*time.Hour))
	require.NoError(t, st.SaveLedger(context.Background(), l))

	out, err := execute(t, app)
	require.NoError(t, err)
	rows := rowsBySupplier(t, out)

	assert.Equal(t, "13-Oct", rows["VF"].Date)
	assert.False(t, rows["VF"].Stale)
	assert.True(t, rows["BY"].Stale)
	assert.True(t, rows["AL"].Stale, "never updated")
	assert.Empty(t, rows["AL"].Date)

	out, err = execute(t, app, "--stale-after", "0")
	require.NoError(t, err)
	for code, r := range rowsBySupplier(t, out) {
		assert.False(t, r.Stale, code)
	}
}

func TestLedgerImport(t *testing.T) {
	app, st := setup(t)
	l := ledger.New()
	l.Record("VF", now)
	require.NoError(t, st.SaveLedger(context.Background(), l))

	path := filepath.Join(t.TempDir(), "update_history.csv")
	require.NoError(t, os.WriteFile(path, []byte("Initial,Date\nVF,01-Jan\nBY,02-Oct\n"), 0o644))

	_, err := execute(t, app, "import", path)
	require.NoError(t, err)

	got, err := st.Ledger(context.Background())
	require.NoError(t, err)
	vf, ok := got.Get("VF")
	require.True(t, ok)
	assert.Equal(t, "14-Oct", vf.Date, "stored entries win over imported ones")
	by, ok := got.Get("BY")
	require.True(t, ok)
	assert.Equal(t, "02-Oct", by.Date)
}

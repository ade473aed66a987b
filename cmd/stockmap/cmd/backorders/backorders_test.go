package backorders

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/stockmap/internal/cmd/application"
	"github.com/agentstation/stockmap/internal/store"
)

func newApp(t *testing.T) (*application.Mock, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "stockmap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return &application.Mock{
		StoreFunc: func() (*store.Store, error) { return st, nil },
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

func TestBackorders(t *testing.T) {
	app, st := newApp(t)

	out, err := execute(t, app, "add", "222", " 111 ", "222")
	require.NoError(t, err)
	assert.Contains(t, out, "Added 2 backorders")

	codes, err := st.Backorders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"111", "222"}, codes)

	out, err = execute(t, app, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "111")
	assert.Contains(t, out, "222")

	out, err = execute(t, app, "remove", "111", "333")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 backorders (1 not listed)")

	codes, err = st.Backorders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"222"}, codes)
}

func TestBackordersArgs(t *testing.T) {
	app, _ := newApp(t)
	_, err := execute(t, app, "add")
	require.Error(t, err)
}

func TestBackordersStoreError(t *testing.T) {
	_, err := execute(t, &application.Mock{}, "list")
	require.Error(t, err)
}

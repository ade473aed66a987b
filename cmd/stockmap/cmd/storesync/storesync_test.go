package storesync

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/stockmap/internal/cmd/application"
	"github.com/agentstation/stockmap/internal/store"
	"github.com/agentstation/stockmap/pkg/storesync"
)

func TestPlan(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "stockmap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	variations := filepath.Join(dir, "variations.csv")
	require.NoError(t, os.WriteFile(variations, []byte("object_id,upc\nOBJ-1,12345\nOBJ-2,99999\nOBJ-3,\n"), 0o644))
	pos := filepath.Join(dir, "POS.csv")
	require.NoError(t, os.WriteFile(pos, []byte("Item Lookup Code,Qty On Hand,Display\n12345,-3,\n"), 0o644))

	app := &application.Mock{
		StoreFunc: func() (*store.Store, error) { return st, nil },
		SettingsFunc: func() application.Settings {
			return application.Settings{LocationID: "LOC-1", Quiet: true}
		},
	}

	var out bytes.Buffer
	cmd := NewCommand(app)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"plan", "--variations", variations, "--pos", pos})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var batches []storesync.Batch
	require.NoError(t, json.Unmarshal(out.Bytes(), &batches))
	require.Len(t, batches, 1)
	require.Len(t, batches[0].Changes, 1)
	assert.NotEmpty(t, batches[0].IdempotencyKey)

	pc := batches[0].Changes[0].PhysicalCount
	assert.Equal(t, "OBJ-1", pc.CatalogObjectID)
	assert.Equal(t, "LOC-1", pc.LocationID)
	assert.Equal(t, "0", pc.Quantity)
	assert.Equal(t, storesync.StateInStock, pc.State)
}

func TestPlanRequiresInputs(t *testing.T) {
	cmd := NewCommand(&application.Mock{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"plan"})
	require.Error(t, cmd.ExecuteContext(context.Background()))
}

func TestWriteBatchesEmpty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, writeBatches(&out, nil))
	assert.JSONEq(t, "[]", out.String())
}

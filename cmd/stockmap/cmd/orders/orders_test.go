package orders

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
	"github.com/agentstation/stockmap/pkg/inventory"
	"github.com/agentstation/stockmap/pkg/marketplace"
)

var now = time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC)

const orderReport = "order-id\tsku\tquantity-purchased\tproduct-id\n" +
	"111-1\tSKU-1\t2\t12345\n" +
	"111-1\tSKU-1\t2\t12345\n" +
	"222-2\tSKU-2\t1\t67890\n" +
	"333-3\tSKU-3\tx\t55555\n"

func setup(t *testing.T) (*application.Mock, *store.Store, string) {
	t.Helper()
	Now = func() time.Time { return now }
	t.Cleanup(func() { Now = time.Now })

	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "stockmap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.SaveInventory(context.Background(), inventory.NewTable(
		inventory.Row{Supplier: "VF", ProductCode: "12345", Description: "Braid", Quantity: 5},
		inventory.Row{Supplier: "VF", ProductCode: "67890", Description: "Wig", Quantity: 1},
	)))

	path := filepath.Join(dir, "orders.txt")
	require.NoError(t, os.WriteFile(path, []byte(orderReport), 0o644))

	app := &application.Mock{
		StoreFunc:        func() (*store.Store, error) { return st, nil },
		OutputFormatFunc: func() string { return "json" },
	}
	return app, st, path
}

func TestPick(t *testing.T) {
	app, st, path := setup(t)

	var out bytes.Buffer
	cmd := NewCommand(app)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"pick", "--orders", path, "--sku", "SKU-2", "--sku", "SKU-1"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	var lines []marketplace.PickLine
	require.NoError(t, json.Unmarshal(out.Bytes(), &lines))
	assert.Equal(t, []marketplace.PickLine{
		{SKU: "SKU-1", ORD: 2, Description: "Braid"},
		{SKU: "SKU-2", ORD: 1, Description: "Wig"},
	}, lines)

	history, err := st.OrderHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 2)
	for _, h := range history {
		assert.True(t, h.OrderDate.Equal(time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)), h.OrderDate)
	}
}

func TestPickNoRecord(t *testing.T) {
	app, st, path := setup(t)

	lines, err := Pick(context.Background(), app, PickOptions{OrdersFile: path, SKUs: []string{"SKU-3"}, NoRecord: true})
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 0, lines[0].ORD, "unparseable quantities are zeroed")

	history, err := st.OrderHistory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestPickValidation(t *testing.T) {
	app, _, path := setup(t)

	_, err := Pick(context.Background(), app, PickOptions{SKUs: []string{"SKU-1"}})
	require.Error(t, err)

	_, err = Pick(context.Background(), app, PickOptions{OrdersFile: path})
	require.Error(t, err)
}

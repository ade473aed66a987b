package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/floor"
	"github.com/agentstation/stockmap/pkg/inventory"
	"github.com/agentstation/stockmap/pkg/reconciler"
	"github.com/agentstation/stockmap/pkg/sales"
	"github.com/agentstation/stockmap/pkg/suppliers"
	"github.com/agentstation/stockmap/pkg/table"
)

var now = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

func runResult(t *testing.T) *reconciler.Result {
	t.Helper()
	r, err := reconciler.New(
		reconciler.WithSuppliers("VF", "BY"),
		reconciler.WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)

	source := reconciler.FeedSourceFunc(func(_ context.Context, s *suppliers.Supplier) (*reconciler.Feed, error) {
		if s.Code != "VF" {
			return nil, errors.NewSourceUnavailableError(string(s.Code), "", errors.New("no file"))
		}
		return &reconciler.Feed{Tables: []*table.Table{table.New("VF.xlsx",
			[]string{"Barcode", "On hand", "Product ID", "SKU"},
			[]string{"12345", "40", "Braid", "1B"},
		)}}, nil
	})

	res, err := r.Run(context.Background(), reconciler.Inputs{
		Base:   inventory.NewTable(inventory.Row{Supplier: "BY", ProductCode: "777", Quantity: 3}),
		Source: source,
		Floor: table.New("POS.xlsx",
			[]string{floor.ColumnItemLookupCode, floor.ColumnOnHand, floor.ColumnDisplay, floor.ColumnBinLocation},
			[]string{"12345", "4", "(1)(1)", "A1"},
		),
		Listings: table.New("listings.txt", []string{"seller-sku", "product-id", "item-name"},
			[]string{"SKU-1", "12345", "Braid 1B"},
		),
		Orders: table.New("orders.txt", []string{"order-id", "sku", "quantity-purchased"},
			[]string{"111-1", "SKU-1", "2"},
		),
	})
	require.NoError(t, err)
	return res
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestFileNames(t *testing.T) {
	assert.Equal(t, "fromPOS_101426.csv", FloorFile(now))
	assert.Equal(t, "amazon_order_101426.csv", OrdersFile(now))
	assert.Equal(t, "All_Listings_Report_10_14_2026.xlsx", WorkbookFile(now))
}

func TestRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	res := runResult(t)

	written, err := Run(context.Background(), dir, res)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, OrdersFile(now)),
		filepath.Join(dir, FloorFile(now)),
		filepath.Join(dir, InventoryFile),
		filepath.Join(dir, WorkbookFile(now)),
		filepath.Join(dir, ReportFile),
	}, written)

	inv := readCSV(t, filepath.Join(dir, InventoryFile))
	assert.Equal(t, inventory.Columns, inv[0])
	assert.Len(t, inv, 3)

	pos := readCSV(t, filepath.Join(dir, FloorFile(now)))
	assert.Contains(t, pos[0], floor.ColumnSellable)
	assert.Contains(t, pos[0], "Comp Inv 1014")
	assert.Equal(t, "2", pos[1][2], "display written as parsed count")

	wb, err := excelize.OpenFile(filepath.Join(dir, WorkbookFile(now)))
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()
	assert.Equal(t, []string{SheetListings, SheetOrders, SheetFloor, SheetInventory, SheetLedger}, wb.GetSheetList())

	rows, err := wb.GetRows(SheetListings)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"SKU-1", "12345", "Braid 1B", "42", "40", "2"}, rows[1])

	ledgerRows, err := wb.GetRows(SheetLedger)
	require.NoError(t, err)
	assert.Equal(t, []string{"VF", "14-Oct"}, ledgerRows[1])

	report, err := os.ReadFile(filepath.Join(dir, ReportFile))
	require.NoError(t, err)
	assert.Contains(t, string(report), "# Reconciliation report")
	assert.Contains(t, string(report), "| VF")
	assert.Contains(t, string(report), "## Warnings")
}

func TestWriteReport(t *testing.T) {
	res := runResult(t)
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, res))

	out := buf.String()
	assert.Contains(t, out, res.RunID)
	assert.Contains(t, out, "## Suppliers")
	assert.Contains(t, out, "## Corrections")
	assert.Contains(t, out, "skipped")
	assert.NotContains(t, out, "## Errors")
}

func TestWriteWorkbookEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteWorkbook(path))

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()
	assert.Len(t, wb.GetSheetList(), 1)
}

func TestWriteSales(t *testing.T) {
	fl, err := floor.Reconcile(table.New("POS",
		[]string{floor.ColumnItemLookupCode, floor.ColumnOnHand, floor.ColumnDisplay, floor.ColumnReorderNumber},
		[]string{"111", "3", "0", "WIG-A"},
	), nil)
	require.NoError(t, err)
	report, err := sales.Report(table.New("history",
		[]string{sales.ColumnDate, sales.ColumnItemLookupCode, sales.ColumnDescription, sales.ColumnQtySold},
		[]string{"2026-10-01", "111", "WIG-A 1B", "2"},
	), fl)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	path, err := WriteSales(dir, report, fl, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "STORE Sales_101426.xlsx"), path)

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()
	assert.Equal(t, []string{SheetSales, SheetStoreFloor}, wb.GetSheetList())

	rows, err := wb.GetRows(SheetSales)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, sales.Columns, rows[0])
	assert.Equal(t, "WIG-A(3)", rows[1][12])

	_, err = WriteSales(dir, nil, fl, now)
	assert.True(t, errors.IsValidationError(err))
}

package sales

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/floor"
	"github.com/agentstation/stockmap/pkg/inventory"
	"github.com/agentstation/stockmap/pkg/table"
)

var historyColumns = []string{ColumnDate, ColumnItemLookupCode, ColumnDescription, ColumnQtySold, ColumnDepartment}

func floorView(t *testing.T) *floor.Result {
	t.Helper()
	raw := table.New("POS", []string{
		floor.ColumnItemLookupCode, floor.ColumnOnHand, floor.ColumnDisplay,
		floor.ColumnReorderNumber, floor.ColumnSupplierName,
	},
		[]string{"111", "3", "1", "WIG-A", "Vivica"},
		[]string{"112", "7", "0", "WIG-A", "Vivica"},
		[]string{"012345678905", "5", "0", "BRAID", "Bobbi"},
	)
	canon := inventory.NewTable(
		inventory.Row{Supplier: "VF", ProductCode: "111", Quantity: 40},
		inventory.Row{Supplier: "BY", ProductCode: "012345678905", Quantity: 6},
	)
	res, err := floor.Reconcile(raw, canon)
	require.NoError(t, err)
	return res
}

func TestReport(t *testing.T) {
	raw := table.New("history.csv", historyColumns,
		[]string{"2026-03-02", "112", "WIG-A 2", "1", "Wigs"},
		[]string{"2026-03-01", "111", "WIG-A 1B", "2", "Wigs"},
		[]string{"2026-03-01", "12345678905", "BRAID 613", "4", "Braids"},
		[]string{"2026-03-01", "999", "GONE", "1", "Wigs"},
	)

	res, err := Report(raw, floorView(t))
	require.NoError(t, err)
	require.Len(t, res.Lines, 3)

	t.Run("ordered by date", func(t *testing.T) {
		assert.Equal(t, "111", res.Lines[0].ItemLookupCode)
		assert.Equal(t, "12345678905", res.Lines[1].ItemLookupCode)
		assert.Equal(t, "112", res.Lines[2].ItemLookupCode)
	})

	t.Run("floor join", func(t *testing.T) {
		l := res.Lines[0]
		assert.Equal(t, "WIG-A", l.Item)
		assert.Equal(t, "1B", l.Color)
		assert.Equal(t, "Vivica", l.Company)
		assert.Equal(t, 3, l.StoreInventory)
		assert.Equal(t, 40, l.CompInventory)
		assert.Equal(t, 9, l.ItemTotal)
		assert.Equal(t, "2603", l.Month())
		assert.Equal(t, "WIG-A(9)", l.ItemInv())
		assert.Equal(t, "1B(3 - 40) - 111", l.ColorInv())
		assert.Equal(t, "(3) WIG-A (40)", l.StoreItemCompany())

		assert.Equal(t, 6, res.Lines[1].CompInventory, "leading-zero code joins")
	})

	t.Run("stats", func(t *testing.T) {
		assert.Equal(t, Stats{Rows: 4, Lines: 3, Unmatched: 1, UnitsSold: 7}, res.Stats)
		require.Len(t, res.Warnings, 1)
		assert.True(t, errors.IsDataQuality(res.Warnings[0]))
	})

	t.Run("by item", func(t *testing.T) {
		assert.Equal(t, []ItemTotal{
			{Item: "BRAID", UnitsSold: 4, ItemTotal: 5},
			{Item: "WIG-A", UnitsSold: 3, ItemTotal: 9},
		}, res.ByItem())
	})

	t.Run("table", func(t *testing.T) {
		out := res.Table()
		assert.Equal(t, Columns, out.Columns())
		assert.Equal(t, "2026-03-01", out.Value(0, ColumnDate))
		assert.Equal(t, "WIG-A(9)", out.Value(0, ColumnItemInv))
	})
}

func TestReportFilters(t *testing.T) {
	raw := table.New("history.csv", historyColumns,
		[]string{"2026-02-28", "111", "WIG-A 1B", "1", "Wigs"},
		[]string{"3/1/2026", "111", "WIG-A 1B", "1", "Wigs"},
		[]string{"2026-03-31 18:45:00", "111", "WIG-A 1B", "1", "wigs"},
		[]string{"2026-04-01", "111", "WIG-A 1B", "1", "Wigs"},
		[]string{"2026-03-15", "111", "WIG-A 1B", "1", "Accessories"},
		[]string{"someday", "111", "WIG-A 1B", "1", "Wigs"},
		[]string{"2026-03-20", "111", "WIG-A 1B", "x", "Wigs"},
	)
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)

	res, err := Report(raw, floorView(t), WithDateRange(from, to), WithDepartments("Wigs", "Braids"))
	require.NoError(t, err)

	assert.Equal(t, 3, res.Stats.Lines)
	assert.Equal(t, 2, res.Stats.OutOfRange)
	assert.Equal(t, 1, res.Stats.OtherDepartment)
	assert.Equal(t, 1, res.Stats.DateUnparsed)
	assert.Equal(t, 1, res.Stats.QuantityUnparsed)
	assert.Equal(t, 2, res.Stats.UnitsSold)
}

func TestReportErrors(t *testing.T) {
	fl := floorView(t)

	_, err := Report(nil, fl)
	assert.True(t, errors.IsValidationError(err))

	_, err = Report(table.New("h", historyColumns), nil)
	assert.True(t, errors.IsValidationError(err))

	_, err = Report(table.New("h", []string{ColumnDate, ColumnItemLookupCode}), fl)
	var se *errors.SchemaError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, []string{ColumnQtySold}, se.Missing)

	_, err = Report(table.New("h", historyColumns), fl,
		WithDateRange(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, errors.IsValidationError(err))
}

func TestColor(t *testing.T) {
	assert.Equal(t, "1B", Color("WIG-A 1B", "WIG-A"))
	assert.Equal(t, "T1B/30", Color("WIG-A T1B/30", "WIG-A"))
	assert.Equal(t, "", Color("WIG-A", "WIG-A"))
	assert.Equal(t, "", Color("BRAID 613", "WIG-A"))
	assert.Equal(t, "", Color("BRAID 613", ""))
}

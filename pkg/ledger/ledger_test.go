package ledger

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/inventory"
	"github.com/agentstation/stockmap/pkg/table"
)

var now = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func TestRecordUpserts(t *testing.T) {
	l := New()
	l.Record("VF", now.AddDate(0, 0, -2))
	e := l.Record("VF", now)

	assert.Equal(t, 1, l.Len())
	assert.Equal(t, "14-Oct", e.Date)
	got, ok := l.Get("VF")
	require.True(t, ok)
	assert.Equal(t, now, got.UpdatedAt)
}

func TestEntriesSortedAndTable(t *testing.T) {
	l := New()
	l.Record("OUTRE", now)
	l.Record("AL", now.AddDate(0, 0, -1))

	entries := l.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, inventory.SupplierCode("AL"), entries[0].Supplier)

	raw := l.Table()
	assert.Equal(t, []string{ColumnInitial, ColumnDate}, raw.Columns())
	assert.Equal(t, "AL", raw.Value(0, ColumnInitial))
	assert.Equal(t, "13-Oct", raw.Value(0, ColumnDate))
}

func TestFromTable(t *testing.T) {
	raw := table.New("update_history", []string{ColumnInitial, ColumnDate},
		[]string{"AL", "13-Oct"},
		[]string{"VF", "20-Dec"},
		[]string{"BY", ""},
		[]string{"HZ", "2026-10-01"},
	)
	l, err := FromTable(raw, now)
	require.NoError(t, err)
	assert.Equal(t, 3, l.Len())

	al, _ := l.Get("AL")
	assert.Equal(t, time.Date(2026, 10, 13, 0, 0, 0, 0, time.UTC), al.UpdatedAt)

	vf, _ := l.Get("VF")
	assert.Equal(t, 2025, vf.UpdatedAt.Year(), "future day-month resolves to last year")

	_, ok := l.Get("BY")
	assert.False(t, ok)

	t.Run("bad date", func(t *testing.T) {
		_, err := FromTable(table.New("u", []string{ColumnInitial, ColumnDate}, []string{"AL", "soon"}), now)
		var pe *errors.ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, 2, pe.Line)
	})

	t.Run("schema", func(t *testing.T) {
		_, err := FromTable(table.New("u", []string{ColumnInitial}), now)
		assert.True(t, errors.IsSchemaError(err))
	})
}

func TestResolveLeapDay(t *testing.T) {
	got, err := ResolveDate("29-Feb", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), got)
}

func TestStale(t *testing.T) {
	l := New()
	l.Record("AL", now.AddDate(0, 0, -1))
	l.Record("VF", now.AddDate(0, 0, -10))

	stale := l.Stale(now, 7*24*time.Hour, []inventory.SupplierCode{"AL", "VF", "SNG"})
	require.Len(t, stale, 2)

	assert.Equal(t, inventory.SupplierCode("VF"), stale[0].Supplier)
	assert.Equal(t, 10*24*time.Hour, stale[0].Age)
	assert.False(t, stale[0].Never)

	assert.True(t, stale[1].Never)
	for _, s := range stale {
		assert.True(t, errors.IsDataQuality(s.Warning()))
	}
}

func TestConcurrentRecord(t *testing.T) {
	l := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			code := inventory.SupplierCode([]string{"AL", "VF", "BY"}[i%3])
			l.Record(code, now)
			_ = l.Entries()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 3, l.Len())
}

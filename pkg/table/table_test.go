package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/stockmap/pkg/table"
)

func TestNew(t *testing.T) {
	tbl := table.New("pos.csv", []string{"\ufeffItem Lookup Code", " Display "},
		[]string{"123", " (6)(4) "},
		[]string{"456"},
		[]string{"789", "1", "extra"},
	)

	assert.Equal(t, "pos.csv", tbl.Name())
	assert.Equal(t, []string{"Item Lookup Code", "Display"}, tbl.Columns())
	assert.Equal(t, 3, tbl.Len())
	assert.Equal(t, "(6)(4)", tbl.Value(0, "Display"))
	assert.Equal(t, "", tbl.Value(1, "Display"))
	assert.Equal(t, "", tbl.Value(0, "Nope"))
	assert.Equal(t, "", tbl.Value(9, "Display"))
	assert.Equal(t, []string{"789", "1"}, tbl.Row(2))
	assert.Equal(t, []string{"123", "456", "789"}, tbl.Column("Item Lookup Code"))
	assert.Equal(t, []string{"O/H"}, tbl.Missing("Display", "O/H"))

	idx, ok := tbl.Index("Display")
	require.True(t, ok)
	assert.Equal(t, 1, idx)
}

func TestRowsAreCopies(t *testing.T) {
	tbl := table.New("t", []string{"a"}, []string{"1"})
	rows := tbl.Rows()
	rows[0][0] = "changed"
	assert.Equal(t, "1", tbl.Value(0, "a"))
}

func TestRecords(t *testing.T) {
	tbl := table.New("t", []string{"upc", "qty"}, []string{"1", "2"})
	assert.Equal(t, []map[string]string{{"upc": "1", "qty": "2"}}, tbl.Records())
}

func TestConcat(t *testing.T) {
	brs := table.New("AL_brs.xlsx", []string{"AliasItemNo", "OnHand Customer"},
		[]string{"1", "5"}, []string{"2", "6"})
	inv := table.New("AL_inv.xlsx", []string{"OnHand Customer", "AliasItemNo", "ItemCode"},
		[]string{"7", "3", "X"})

	out, err := table.Concat("AL", brs, nil, inv)
	require.NoError(t, err)

	assert.Equal(t, brs.Len()+inv.Len(), out.Len())
	assert.Equal(t, []string{"AliasItemNo", "OnHand Customer", "ItemCode"}, out.Columns())
	assert.Equal(t, []string{"1", "2", "3"}, out.Column("AliasItemNo"))
	assert.Equal(t, []string{"5", "6", "7"}, out.Column("OnHand Customer"))
	assert.Equal(t, []string{"", "", "X"}, out.Column("ItemCode"))
}

func TestConcatEmpty(t *testing.T) {
	out, err := table.Concat("none")
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
}

package suppliers

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/inventory"
	"github.com/agentstation/stockmap/pkg/table"
)

func TestDefaultRegistry(t *testing.T) {
	reg := Default()
	require.NoError(t, reg.Validate())

	assert.Equal(t,
		[]inventory.SupplierCode{"AL", "VF", "BY", "NBF", "OUTRE", "HZ", "SNG", "MANE"},
		reg.Codes())

	vf, ok := reg.Get("VF")
	require.True(t, ok)
	assert.Equal(t, CodeNumeric, vf.CodeKind)
	assert.Equal(t, 10, vf.MinThreshold)

	outre, ok := reg.Get("OUTRE")
	require.True(t, ok)
	assert.Equal(t, '\t', outre.Format.Comma())
	assert.Equal(t, EncodingUTF16, outre.Format.Encoding)
	assert.Equal(t, []int{0}, outre.Format.SkipRows)
	assert.Equal(t, 1, outre.Format.SkipFooter)
	assert.Equal(t, 20, outre.QuantityMap["Y"])

	by, _ := reg.Get("BY")
	assert.Equal(t, 3, by.Format.HeaderRow)

	al, _ := reg.Get("AL")
	assert.True(t, al.MultiFile)
	assert.Len(t, al.Files, 2)

	sng, _ := reg.Get("SNG")
	assert.Equal(t, 9, sng.NameLength)

	_, ok = reg.Get("NOPE")
	assert.False(t, ok)
}

func TestSelect(t *testing.T) {
	reg := Default()

	got, err := reg.Select("HZ", "AL")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, inventory.SupplierCode("AL"), got[0].Code, "registry order wins")

	all, err := reg.Select()
	require.NoError(t, err)
	assert.Len(t, all, reg.Len())

	_, err = reg.Select("XX")
	assert.True(t, errors.IsNotFound(err))
}

func TestLoadValidation(t *testing.T) {
	const valid = `
suppliers:
  - code: T1
    name: Test
    columns: {upc: U, inventory: Q, description: D, extended_description: E}
    code_kind: text
    files: ["T1_*"]
    format: {kind: csv}
`
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"valid", valid, false},
		{"empty", "suppliers: []\n", true},
		{"duplicate code", valid + strings.TrimPrefix(valid, "\nsuppliers:\n"), true},
		{"bad code kind", strings.Replace(valid, "code_kind: text", "code_kind: alpha", 1), true},
		{"bad format", strings.Replace(valid, "kind: csv", "kind: xls", 1), true},
		{"missing column", strings.Replace(valid, "upc: U, ", "", 1), true},
		{"negative threshold", strings.Replace(valid, "code_kind: text", "code_kind: text\n    min_threshold: -1", 1), true},
		{"unknown field", strings.Replace(valid, "code_kind: text", "code_kind: text\n    colour: red", 1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func vf(t *testing.T) *Supplier {
	t.Helper()
	s, ok := Default().Get("VF")
	require.True(t, ok)
	return s
}

func TestNormalizeVendorThresholdScenario(t *testing.T) {
	raw := table.New("VF_Inventory.xlsx",
		[]string{"Barcode", "On hand", "Product ID", "SKU"},
		[]string{"12345", "7", "A", "x"},
		[]string{"abc", "50", "B", "y"},
		[]string{"67890.0", "25", "C", "z"},
	)

	res, err := Normalize(vf(t), raw)
	require.NoError(t, err)

	want := []inventory.Row{
		{Supplier: "VF", ProductCode: "12345", Quantity: 0, Description: "A", ExtendedDescription: "x"},
		{Supplier: "VF", ProductCode: "67890", Quantity: 25, Description: "C", ExtendedDescription: "z"},
	}
	if diff := cmp.Diff(want, res.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, res.Stats.InvalidCode)
	assert.Equal(t, 1, res.Stats.Thresholded)
	assert.Equal(t, 3, res.Stats.Input)
	assert.Equal(t, 2, res.Stats.Output)
	assert.Empty(t, res.Warnings)
}

func TestNormalizeSteps(t *testing.T) {
	s := &Supplier{
		Code:        "T1",
		Columns:     Columns{UPC: "U", Inventory: "Q", Description: "D", ExtendedDescription: "E"},
		CodeKind:    CodeText,
		QuantityMap: map[string]int{"Y": 20, "N": 0},
		Format:      Format{Kind: FormatCSV},
	}
	raw := table.New("t1.csv", []string{"U", "Q", "D", "E"},
		[]string{" 0812.0 ", " Y ", "a", ""},
		[]string{"A-1", "N", "b", ""},
		[]string{"", "5", "c", ""},
		[]string{"A-2", "", "d", ""},
		[]string{"A-3", "-3", "e", ""},
		[]string{"A-4", "7.0", "f", ""},
		[]string{"A-5", "lots", "g", ""},
		[]string{"A-1", "2", "h", ""},
	)

	res, err := Normalize(s, raw)
	require.NoError(t, err)

	got := map[string]int{}
	for _, r := range res.Rows {
		assert.GreaterOrEqual(t, r.Quantity, 0)
		got[r.ProductCode+"/"+r.Description] = r.Quantity
	}
	assert.Equal(t, map[string]int{
		"0812/a": 20,
		"A-1/b":  0,
		"A-3/e":  0,
		"A-4/f":  7,
		"A-1/h":  2,
	}, got)

	assert.Equal(t, Stats{
		Input:           8,
		MissingCode:     1,
		MissingQuantity: 1,
		InvalidQuantity: 1,
		Clamped:         1,
		DuplicateCodes:  1,
		Output:          5,
	}, res.Stats)
	require.Len(t, res.Warnings, 1)
	assert.True(t, errors.IsDataQuality(res.Warnings[0]))
	assert.Equal(t, 3, res.Stats.Dropped())
}

func TestNormalizeMultiFile(t *testing.T) {
	al, ok := Default().Get("AL")
	require.True(t, ok)
	cols := []string{"AliasItemNo", "OnHand Customer", "ItemCode", "ItemCodeDesc"}

	brs := table.New("AL_brs.xlsx", cols, []string{"1", "3", "a", "b"})
	inv := table.New("AL_inv.xlsx", append(cols, "Extra"), []string{"2", "4", "c", "d", "z"})

	res, err := Normalize(al, brs, inv)
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
}

func TestNormalizeErrors(t *testing.T) {
	t.Run("no input", func(t *testing.T) {
		_, err := Normalize(vf(t))
		assert.True(t, errors.IsSourceUnavailable(err))

		_, err = Normalize(vf(t), nil)
		assert.True(t, errors.IsSourceUnavailable(err))
	})

	t.Run("schema drift", func(t *testing.T) {
		raw := table.New("VF.xlsx", []string{"Barcode", "Product ID"}, []string{"1", "x"})
		_, err := Normalize(vf(t), raw)
		require.Error(t, err)

		var se *errors.SchemaError
		require.ErrorAs(t, err, &se)
		assert.ElementsMatch(t, []string{"On hand", "SKU"}, se.Missing)
		assert.Equal(t, "VF", se.Supplier)
	})
}

func TestStatsString(t *testing.T) {
	s := Stats{Input: 3, Output: 2, InvalidCode: 1, Thresholded: 1}
	assert.Equal(t, "in=3 out=2 dropped=1 clamped=0 thresholded=1 duplicates=0", s.String())
}

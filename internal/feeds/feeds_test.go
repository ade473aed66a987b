package feeds

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"

	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/suppliers"
)

func writeUTF16(t *testing.T, path, content string) {
	t.Helper()
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	data, err := enc.Bytes([]byte(content))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func writeWorkbook(t *testing.T, path string, rows ...[]any) {
	t.Helper()
	wb := excelize.NewFile()
	defer func() { _ = wb.Close() }()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, wb.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, wb.SaveAs(path))
}

func touch(t *testing.T, path string, at time.Time) {
	t.Helper()
	require.NoError(t, os.Chtimes(path, at, at))
}

func TestReadFileUTF16TSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "OUTRE_StockAvailability.csv")
	writeUTF16(t, path, strings.Join([]string{
		"BARCODE\tAVAIL\tITEM\tCOLOR",
		"----\t----\t----\t----",
		"827298\tY\tX-PRESSION\t1B",
		"827299\tN\tX-PRESSION\t2",
		"Total\t2\t\t",
	}, "\r\n")+"\r\n")

	outre, ok := suppliers.Default().Get("OUTRE")
	require.True(t, ok)

	tbl, err := ReadFile(path, outre.Format)
	require.NoError(t, err)
	assert.Equal(t, []string{"BARCODE", "AVAIL", "ITEM", "COLOR"}, tbl.Columns())
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "827298", tbl.Value(0, "BARCODE"))
	assert.Equal(t, "N", tbl.Value(1, "AVAIL"))

	res, err := suppliers.Normalize(outre, tbl)
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, 20, res.Rows[0].Quantity)
	assert.Equal(t, 0, res.Rows[1].Quantity)
}

func TestReadFileWorkbookHeaderRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "BY_InventoryListAll.xlsx")
	writeWorkbook(t, path,
		[]any{"Bobbi Boss"},
		[]any{"Inventory list"},
		[]any{""},
		[]any{"Barcode", "O/H", "Item Name", "Color"},
		[]any{"100", 12, "Wig", "1B"},
		[]any{},
		[]any{"101", 3, "Wig", "2"},
	)

	tbl, err := ReadFile(path, suppliers.Format{Kind: suppliers.FormatXLSX, HeaderRow: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"Barcode", "O/H", "Item Name", "Color"}, tbl.Columns())
	require.Equal(t, 2, tbl.Len(), "blank rows are dropped")
	assert.Equal(t, "12", tbl.Value(0, "O/H"))
	assert.Equal(t, "101", tbl.Value(1, "Barcode"))
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("legacy xls", func(t *testing.T) {
		path := filepath.Join(dir, "VF_Inventory.xls")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		_, err := ReadFile(path, suppliers.Format{Kind: suppliers.FormatXLSX})
		require.Error(t, err)
		assert.Contains(t, err.Error(), ".xlsx")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadFile(filepath.Join(dir, "nope.csv"), suppliers.Format{Kind: suppliers.FormatCSV})
		require.Error(t, err)
	})

	t.Run("header past end", func(t *testing.T) {
		path := filepath.Join(dir, "short.csv")
		require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0o644))
		_, err := ReadFile(path, suppliers.Format{Kind: suppliers.FormatCSV, HeaderRow: 2})
		require.Error(t, err)
	})
}

func TestReadExtract(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Amazon_unshipped_report.txt")
	require.NoError(t, os.WriteFile(path, []byte("order-id\tsku\tquantity-purchased\n111-1\tSKU-1\t2\n"), 0o644))

	tbl, err := ReadExtract(path)
	require.NoError(t, err)
	assert.Equal(t, "SKU-1", tbl.Value(0, "sku"))

	csvPath := filepath.Join(dir, "variations.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("\ufeffobject_id,upc\nOBJ,\"12345\"\n"), 0o644))
	tbl, err = ReadExtract(csvPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"object_id", "upc"}, tbl.Columns(), "utf-8 BOM stripped")
	assert.Equal(t, "12345", tbl.Value(0, "upc"))

	none, err := ReadOptional("")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestLoaderResolve(t *testing.T) {
	dir := t.TempDir()
	old := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	recent := old.Add(48 * time.Hour)

	write := func(name string, at time.Time) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("Barcode,On hand\n1,2\n"), 0o644))
		touch(t, path, at)
		return path
	}

	oldVF := write("VF_Inventory_old.csv", old)
	newVF := write("VF_Inventory_new.csv", recent)
	write("SNG/SNG_inv.xlsx", old)
	sng := write("SNG/SNG1.xlsx", old)
	write("AL_brs inv.csv", old)

	l := NewLoader(dir)

	t.Run("newest single file", func(t *testing.T) {
		files, err := l.Resolve(&suppliers.Supplier{Code: "VF", Files: []string{"VF_*"}})
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, newVF, files[0].Path)
		assert.NotEqual(t, oldVF, files[0].Path)
	})

	t.Run("name length filter", func(t *testing.T) {
		files, err := l.Resolve(&suppliers.Supplier{Code: "SNG", Files: []string{"SNG/*.xlsx"}, NameLength: 9})
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, sng, files[0].Path)
	})

	t.Run("multi file needs every pattern", func(t *testing.T) {
		_, err := l.Resolve(&suppliers.Supplier{Code: "AL", MultiFile: true, Files: []string{"AL_brs*", "AL_inv*"}})
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("no match", func(t *testing.T) {
		_, err := l.Resolve(&suppliers.Supplier{Code: "MANE", Files: []string{"MANE_*"}})
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestLoaderLoad(t *testing.T) {
	dir := t.TempDir()
	at := time.Date(2026, 10, 13, 8, 0, 0, 0, time.UTC)
	for _, name := range []string{"AL_brs inv.csv", "AL_inv.csv"} {
		path := filepath.Join(dir, name)
		content := "AliasItemNo,OnHand Customer,ItemCode,ItemCodeDesc\n" + name[:6] + ",5,A,B\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		touch(t, path, at)
	}

	al := &suppliers.Supplier{Code: "AL", MultiFile: true, Files: []string{"AL_brs*", "AL_inv*"}, Format: suppliers.Format{Kind: suppliers.FormatCSV}}
	feed, err := NewLoader(dir).Load(context.Background(), al)
	require.NoError(t, err)
	require.Len(t, feed.Tables, 2)
	assert.Equal(t, at, feed.ReceivedAt.UTC())
	assert.Equal(t, "AL_brs", feed.Tables[0].Value(0, "AliasItemNo"))

	_, err = NewLoader(t.TempDir()).Load(context.Background(), al)
	assert.True(t, errors.IsSourceUnavailable(err))
}

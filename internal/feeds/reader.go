package feeds

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/suppliers"
	"github.com/agentstation/stockmap/pkg/table"
)

// ReadFile reads one supplier file into a raw table, applying the header,
// skip and footer rules of f. The table is named after the file.
func ReadFile(path string, f suppliers.Format) (*table.Table, error) {
	records, err := readRecords(path, f)
	if err != nil {
		return nil, err
	}
	return shape(filepath.Base(path), records, f)
}

// ReadExtract reads a POS, listing or order extract. Delimited text files
// ending in .txt or .tsv are tab-separated; .csv files are comma-separated.
func ReadExtract(path string) (*table.Table, error) {
	f := suppliers.Format{Kind: suppliers.FormatCSV}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xls":
		f.Kind = suppliers.FormatXLSX
	case ".txt", ".tsv":
		f.Delimiter = "\t"
	}
	return ReadFile(path, f)
}

func readRecords(path string, f suppliers.Format) ([][]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".xls" {
		return nil, errors.NewParseError("xls", path,
			"legacy .xls workbooks are not supported; re-save the file as .xlsx", nil)
	}

	switch f.Kind {
	case suppliers.FormatXLSX:
		return readWorkbook(path, f.Sheet)
	case suppliers.FormatCSV, "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapIO("read", path, err)
		}
		return readDelimited(path, data, f)
	default:
		return nil, errors.NewParseError(string(f.Kind), path, "unsupported format kind", nil)
	}
}

// readDelimited decodes data and splits it into records. A byte order mark
// picks the encoding when present; otherwise the declared encoding is used.
func readDelimited(name string, data []byte, f suppliers.Format) ([][]string, error) {
	fallback := unicode.UTF8.NewDecoder()
	if strings.EqualFold(f.Encoding, suppliers.EncodingUTF16) {
		fallback = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()
	}
	r := csv.NewReader(transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(fallback)))
	r.Comma = f.Comma()
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParseError("csv", name, err.Error(), err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func readWorkbook(path, sheet string) ([][]string, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.WrapParse("xlsx", path, err)
	}
	defer func() { _ = wb.Close() }()

	if sheet == "" {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.NewParseError("xlsx", path, "workbook has no sheets", nil)
		}
		sheet = sheets[0]
	}
	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, errors.WrapParse("xlsx", path, err)
	}
	return rows, nil
}

// shape turns records into a table: lines above HeaderRow are discarded,
// the next line is the header, SkipFooter lines are cut from the end and
// SkipRows indexes are removed from what remains.
func shape(name string, records [][]string, f suppliers.Format) (*table.Table, error) {
	if f.HeaderRow >= len(records) {
		return nil, errors.NewParseError(string(f.Kind), name, "no header row", nil)
	}
	records = records[f.HeaderRow:]

	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.TrimSpace(h)
	}
	data := records[1:]
	if f.SkipFooter > 0 {
		data = data[:max(len(data)-f.SkipFooter, 0)]
	}

	t := table.New(name, header)
	for i, rec := range data {
		if slices.Contains(f.SkipRows, i) || blank(rec) {
			continue
		}
		t.Append(rec)
	}
	return t, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

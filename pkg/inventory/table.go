package inventory

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/quantity"
	"github.com/agentstation/stockmap/pkg/table"
)

// Table is the immutable canonical inventory: the union of every supplier's
// current rows.
type Table struct {
	rows []Row
}

// NewTable creates a table from rows. The slice is copied.
func NewTable(rows ...Row) *Table {
	return &Table{rows: slices.Clone(rows)}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Rows returns a copy of all rows.
func (t *Table) Rows() []Row {
	if t == nil {
		return nil
	}
	return slices.Clone(t.rows)
}

// Suppliers returns the distinct supplier codes present, sorted.
func (t *Table) Suppliers() []SupplierCode {
	seen := make(map[SupplierCode]bool)
	var codes []SupplierCode
	for _, r := range t.Rows() {
		if !seen[r.Supplier] {
			seen[r.Supplier] = true
			codes = append(codes, r.Supplier)
		}
	}
	slices.Sort(codes)
	return codes
}

// BySupplier returns the rows of one supplier.
func (t *Table) BySupplier(code SupplierCode) []Row {
	var out []Row
	for _, r := range t.Rows() {
		if r.Supplier == code {
			out = append(out, r)
		}
	}
	return out
}

// Lookup returns every row whose product code has the same join key as
// productCode, ordered by supplier code.
func (t *Table) Lookup(productCode string) []Row {
	key := quantity.Key(productCode)
	var out []Row
	for _, r := range t.Rows() {
		if quantity.Key(r.ProductCode) == key {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b Row) int { return cmp.Compare(a.Supplier, b.Supplier) })
	return out
}

// Index groups rows by the join key of their product code (see
// quantity.Key), each group ordered by supplier code.
func (t *Table) Index() map[string][]Row {
	idx := make(map[string][]Row)
	for _, r := range t.Sorted() {
		k := quantity.Key(r.ProductCode)
		idx[k] = append(idx[k], r)
	}
	return idx
}

// Sorted returns the rows ordered by supplier, product code and description.
func (t *Table) Sorted() []Row {
	rows := t.Rows()
	slices.SortStableFunc(rows, func(a, b Row) int {
		return cmp.Or(
			cmp.Compare(a.Supplier, b.Supplier),
			cmp.Compare(a.ProductCode, b.ProductCode),
			cmp.Compare(a.Description, b.Description),
			cmp.Compare(a.ExtendedDescription, b.ExtendedDescription),
		)
	})
	return rows
}

// Table converts the canonical rows into a raw table with legacy headers.
func (t *Table) Table() *table.Table {
	out := table.New("all_upc_inv", Columns)
	for _, r := range t.Sorted() {
		out.Append([]string{
			string(r.Supplier),
			r.ProductCode,
			strconv.Itoa(r.Quantity),
			r.Description,
			r.ExtendedDescription,
		})
	}
	return out
}

// FromTable parses a persisted canonical table. Rows without a product code
// are skipped; unparseable or negative quantities become 0.
func FromTable(raw *table.Table) (*Table, error) {
	if missing := raw.Missing(Columns...); len(missing) > 0 {
		return nil, errors.NewSchemaError("", raw.Name(), missing, raw.Columns())
	}
	rows := make([]Row, 0, raw.Len())
	for i := 0; i < raw.Len(); i++ {
		code := raw.Value(i, ColumnProductCode)
		if code == "" {
			continue
		}
		qty, _ := quantity.Int(raw.Value(i, ColumnQuantity))
		rows = append(rows, Row{
			Supplier:            SupplierCode(raw.Value(i, ColumnSupplier)),
			ProductCode:         code,
			Quantity:            max(qty, 0),
			Description:         raw.Value(i, ColumnDescription),
			ExtendedDescription: raw.Value(i, ColumnExtendedDescription),
		})
	}
	return &Table{rows: rows}, nil
}

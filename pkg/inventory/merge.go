package inventory

import (
	"fmt"

	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/quantity"
)

// ReplaceSupplier returns a new table in which every prior row of code is
// replaced by rows. The input table is left untouched, so a failed call
// leaves the caller holding the previous generation.
func ReplaceSupplier(t *Table, code SupplierCode, rows []Row) (*Table, error) {
	if code == "" {
		return t, errors.NewValidationError("supplier", code, "cannot be empty")
	}
	for i, r := range rows {
		if r.Supplier != code {
			return t, errors.NewValidationError("supplier", r.Supplier,
				fmt.Sprintf("row %d belongs to %q, not %q", i, r.Supplier, code))
		}
	}

	kept := make([]Row, 0, t.Len()+len(rows))
	for _, r := range t.Rows() {
		if r.Supplier != code {
			kept = append(kept, r)
		}
	}
	kept = append(kept, rows...)
	return &Table{rows: kept}, nil
}

// ApplyBackorders forces the quantity of every row whose product code has
// the join key of a listed code to 0 and returns the number of rows affected. Unknown codes are ignored.
func ApplyBackorders(t *Table, codes []string) (*Table, int) {
	if len(codes) == 0 {
		return t, 0
	}
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		if c = quantity.Key(c); c != "" {
			set[c] = struct{}{}
		}
	}

	rows := t.Rows()
	affected := 0
	for i := range rows {
		if _, ok := set[quantity.Key(rows[i].ProductCode)]; ok {
			rows[i].Quantity = 0
			affected++
		}
	}
	return &Table{rows: rows}, affected
}

// RemoveDuplicates drops rows whose (product code, description, extended
// description) exactly matches an entry, and returns the number removed.
// Repeating the call with the same entries removes nothing further.
func RemoveDuplicates(t *Table, entries []DuplicateEntry) (*Table, int) {
	if len(entries) == 0 {
		return t, 0
	}
	set := make(map[tripleKey]struct{}, len(entries))
	for _, e := range entries {
		set[e.key()] = struct{}{}
	}

	rows := t.Rows()
	kept := rows[:0]
	for _, r := range rows {
		if _, ok := set[r.key()]; ok {
			continue
		}
		kept = append(kept, r)
	}
	return &Table{rows: kept}, len(rows) - len(kept)
}

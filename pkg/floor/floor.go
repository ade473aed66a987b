// Package floor reconciles the point-of-sale floor extract against the
// canonical inventory: it computes sellable units per item, reorder-group
// totals and the supplier quantity backing each item.
package floor

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/stockmap/pkg/constants"
	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/inventory"
	"github.com/agentstation/stockmap/pkg/quantity"
	"github.com/agentstation/stockmap/pkg/table"
)

// POS extract columns.
const (
	ColumnItemLookupCode      = "Item Lookup Code"
	ColumnOnHand              = "Qty On Hand"
	ColumnDisplay             = "Display"
	ColumnBinLocation         = "Bin Location"
	ColumnReorderNumber       = "Reorder Number"
	ColumnDescription         = "Description"
	ColumnExtendedDescription = "Extended Description"
	ColumnPrice               = "Price"
	ColumnBrand               = "BRAND"
	ColumnDepartment          = "Departments"
	ColumnSupplierCode        = "Supplier Code"
	ColumnSupplierName        = "Supplier Name"
)

// Derived columns added by Result.Table.
const (
	ColumnSellable         = "ITEM QTY"
	ColumnGroupTotal       = "FIN TOT QTY"
	CompanyInventoryPrefix = "Comp Inv "
)

// Required lists the columns every POS extract must carry.
var Required = []string{ColumnItemLookupCode, ColumnOnHand, ColumnDisplay}

// Row is one POS item after reconciliation.
type Row struct {
	ItemLookupCode      string `json:"item_lookup_code" yaml:"item_lookup_code"`
	OnHand              int    `json:"on_hand" yaml:"on_hand"`
	DisplayRaw          string `json:"display_raw" yaml:"display_raw"`
	Display             int    `json:"display" yaml:"display"`
	Sellable            int    `json:"sellable" yaml:"sellable"`
	BinLocation         string `json:"bin_location,omitempty" yaml:"bin_location,omitempty"`
	ReorderCode         string `json:"reorder_code,omitempty" yaml:"reorder_code,omitempty"`
	ReorderGroupTotal   int    `json:"reorder_group_total" yaml:"reorder_group_total"`
	CompanyInventory    int    `json:"company_inventory" yaml:"company_inventory"`
	Description         string `json:"description,omitempty" yaml:"description,omitempty"`
	ExtendedDescription string `json:"extended_description,omitempty" yaml:"extended_description,omitempty"`
	Price               string `json:"price,omitempty" yaml:"price,omitempty"`
	Brand               string `json:"brand,omitempty" yaml:"brand,omitempty"`
	Department          string `json:"department,omitempty" yaml:"department,omitempty"`
	SupplierCode        string `json:"supplier_code,omitempty" yaml:"supplier_code,omitempty"`
	SupplierName        string `json:"supplier_name,omitempty" yaml:"supplier_name,omitempty"`
}

// Stats counts corrections and findings.
type Stats struct {
	Rows               int `json:"rows" yaml:"rows"`
	DisplayUnparsed    int `json:"display_unparsed" yaml:"display_unparsed"`
	OnHandUnparsed     int `json:"on_hand_unparsed" yaml:"on_hand_unparsed"`
	DuplicateCodes     int `json:"duplicate_codes" yaml:"duplicate_codes"`
	Negative           int `json:"negative" yaml:"negative"`
	CanonicalConflicts int `json:"canonical_conflicts" yaml:"canonical_conflicts"`
}

// Result is the reconciled floor view.
type Result struct {
	Rows     []Row
	Stats    Stats
	Warnings []error

	raw   *table.Table
	first map[string]int
}

// Reconcile parses a POS extract and joins it to the canonical inventory.
// canon may be nil, in which case every CompanyInventory is 0.
func Reconcile(raw *table.Table, canon *inventory.Table, opts ...Option) (*Result, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.NewValidationError("floor", nil, "POS table cannot be nil")
	}
	if missing := raw.Missing(Required...); len(missing) > 0 {
		return nil, errors.NewSchemaError("", raw.Name(), missing, raw.Columns())
	}

	res := &Result{
		Rows:  make([]Row, raw.Len()),
		raw:   raw,
		first: make(map[string]int, raw.Len()),
	}
	res.Stats.Rows = raw.Len()
	index := canon.Index()

	// Step 1: Parse quantities and compute sellable units
	counts := make(map[string]int)
	for i := range res.Rows {
		code, _ := quantity.TextCode(raw.Value(i, ColumnItemLookupCode))
		onHand, ok := quantity.Int(raw.Value(i, ColumnOnHand))
		if !ok {
			res.Stats.OnHandUnparsed++
			onHand = 0
		}
		displayRaw := raw.Value(i, ColumnDisplay)
		display, ok := o.display(displayRaw)
		if !ok || display < 0 {
			res.Stats.DisplayUnparsed++
			display = 0
		}

		sellable := onHand - display
		if sellable < 0 {
			res.Stats.Negative++
			sellable = 0
		}

		res.Rows[i] = Row{
			ItemLookupCode:      code,
			OnHand:              onHand,
			DisplayRaw:          displayRaw,
			Display:             display,
			Sellable:            sellable,
			BinLocation:         raw.Value(i, ColumnBinLocation),
			ReorderCode:         raw.Value(i, o.reorderColumn),
			Description:         raw.Value(i, ColumnDescription),
			ExtendedDescription: raw.Value(i, ColumnExtendedDescription),
			Price:               raw.Value(i, ColumnPrice),
			Brand:               raw.Value(i, ColumnBrand),
			Department:          raw.Value(i, ColumnDepartment),
			SupplierCode:        raw.Value(i, ColumnSupplierCode),
			SupplierName:        raw.Value(i, ColumnSupplierName),
		}
		key := quantity.Key(code)
		if key == "" {
			continue
		}
		if _, seen := res.first[key]; !seen {
			res.first[key] = i
		}
		counts[key]++
	}

	// Step 2: Reorder group totals, fanned out to every member
	totals := make(map[string]int)
	for i, r := range res.Rows {
		totals[groupKey(i, r)] += r.Sellable
	}
	for i := range res.Rows {
		res.Rows[i].ReorderGroupTotal = totals[groupKey(i, res.Rows[i])]
	}

	// Step 3: Company inventory from the canonical table
	conflicted := make(map[string]bool)
	for i := range res.Rows {
		key := quantity.Key(res.Rows[i].ItemLookupCode)
		matches := index[key]
		if len(matches) == 0 {
			continue
		}
		res.Rows[i].CompanyInventory = matches[0].Quantity
		if len(matches) > 1 && !conflicted[key] {
			conflicted[key] = true
			res.Stats.CanonicalConflicts++
			res.Warnings = append(res.Warnings, errors.NewDataQualityWarning(
				"floor", res.Rows[i].ItemLookupCode, len(matches),
				fmt.Sprintf("%d suppliers list this code; using %s", len(matches), matches[0].Supplier)))
		}
	}

	// Step 4: Report duplicate item codes in the extract
	for code, n := range counts {
		if n > 1 {
			res.Stats.DuplicateCodes++
			res.Warnings = append(res.Warnings, errors.NewDataQualityWarning(
				"floor", code, n, fmt.Sprintf("item appears %d times in POS extract", n)))
		}
	}
	sortWarnings(res.Warnings)

	return res, nil
}

func groupKey(i int, r Row) string {
	if r.ReorderCode == "" {
		return "\x00" + strconv.Itoa(i)
	}
	return r.ReorderCode
}

func sortWarnings(ws []error) {
	slices.SortStableFunc(ws, func(a, b error) int {
		return strings.Compare(a.Error(), b.Error())
	})
}

// Lookup returns the first row whose item code has the join key of code.
func (r *Result) Lookup(code string) (Row, bool) {
	if r == nil {
		return Row{}, false
	}
	i, ok := r.first[quantity.Key(code)]
	if !ok {
		return Row{}, false
	}
	return r.Rows[i], true
}

// Sellable returns the sellable units of the first row for code.
func (r *Result) Sellable(code string) (int, bool) {
	row, ok := r.Lookup(code)
	return row.Sellable, ok
}

// BinLocation returns the bin of the first row for code.
func (r *Result) BinLocation(code string) (string, bool) {
	row, ok := r.Lookup(code)
	return row.BinLocation, ok
}

// Len returns the number of rows.
func (r *Result) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Rows)
}

// CompanyInventoryColumn returns the dated company inventory header, e.g.
// "Comp Inv 1014".
func CompanyInventoryColumn(asOf time.Time) string {
	return CompanyInventoryPrefix + asOf.Format(constants.CompanyInventoryLayout)
}

// Table returns the raw extract with the parsed Display value and the
// derived columns appended.
func (r *Result) Table(asOf time.Time) *table.Table {
	compCol := CompanyInventoryColumn(asOf)
	cols := r.raw.Columns()
	extra := []string{ColumnSellable, ColumnGroupTotal}
	if !r.raw.Has(compCol) {
		extra = append(extra, compCol)
	}
	out := table.New("fromPOS", append(cols, extra...))

	displayIdx, _ := r.raw.Index(ColumnDisplay)
	compIdx, hasComp := r.raw.Index(compCol)
	for i, row := range r.Rows {
		cells := r.raw.Row(i)
		cells[displayIdx] = strconv.Itoa(row.Display)
		cells = append(cells, strconv.Itoa(row.Sellable), strconv.Itoa(row.ReorderGroupTotal))
		if hasComp {
			cells[compIdx] = strconv.Itoa(row.CompanyInventory)
		} else {
			cells = append(cells, strconv.Itoa(row.CompanyInventory))
		}
		out.Append(cells)
	}
	return out
}

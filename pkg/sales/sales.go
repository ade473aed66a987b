// Package sales builds the store sales report: POS sales history joined to
// the reconciled floor view, so each sale shows the item group, the store
// and company inventory behind it.
package sales

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/floor"
	"github.com/agentstation/stockmap/pkg/quantity"
	"github.com/agentstation/stockmap/pkg/table"
)

// Sales history columns.
const (
	ColumnDate           = "Date"
	ColumnItemLookupCode = "Item Lookup Code"
	ColumnDescription    = "Description"
	ColumnQtySold        = "QTY SOLD"
	ColumnDepartment     = "Department"
)

// Report columns added to the history.
const (
	ColumnMonth     = "yymm"
	ColumnItem      = "Item"
	ColumnColor     = "Color"
	ColumnCompany   = "Company"
	ColumnStoreInv  = "RMH_Inv"
	ColumnCompInv   = "Comp Inv"
	ColumnItemTotal = "Item Tot"
	ColumnItemInv   = "Item_Inv"
	ColumnColorInv  = "Color_Inv"
	ColumnStItmCmp  = "st_itm_cmp"
)

// Columns lists the report columns in export order.
var Columns = []string{
	ColumnDate, ColumnItemLookupCode, ColumnDescription, ColumnQtySold, ColumnDepartment,
	ColumnMonth, ColumnItem, ColumnColor, ColumnCompany, ColumnStoreInv, ColumnCompInv,
	ColumnItemTotal, ColumnItemInv, ColumnColorInv, ColumnStItmCmp,
}

// Required lists the columns every sales history extract must carry.
var Required = []string{ColumnDate, ColumnItemLookupCode, ColumnQtySold}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"01/02/2006",
	"1/2/2006",
}

// Line is one sale enriched with floor inventory.
type Line struct {
	Date           time.Time `json:"date" yaml:"date"`
	ItemLookupCode string    `json:"item_lookup_code" yaml:"item_lookup_code"`
	Description    string    `json:"description" yaml:"description"`
	QtySold        int       `json:"qty_sold" yaml:"qty_sold"`
	Department     string    `json:"department,omitempty" yaml:"department,omitempty"`
	Item           string    `json:"item" yaml:"item"`
	Color          string    `json:"color" yaml:"color"`
	Company        string    `json:"company,omitempty" yaml:"company,omitempty"`
	StoreInventory int       `json:"store_inventory" yaml:"store_inventory"`
	CompInventory  int       `json:"comp_inventory" yaml:"comp_inventory"`
	ItemTotal      int       `json:"item_total" yaml:"item_total"`
}

// Month returns the yyMM sales period.
func (l Line) Month() string {
	return l.Date.Format("0601")
}

// ItemInv renders the item group with its sellable total, e.g. "WIG-A(12)".
func (l Line) ItemInv() string {
	return l.Item + "(" + strconv.Itoa(l.ItemTotal) + ")"
}

// ColorInv renders the color with store and company inventory and the code,
// e.g. "1B(3 - 40) - 111".
func (l Line) ColorInv() string {
	return l.Color + "(" + strconv.Itoa(l.StoreInventory) + " - " + strconv.Itoa(l.CompInventory) + ") - " + l.ItemLookupCode
}

// StoreItemCompany renders "(store) item (company)".
func (l Line) StoreItemCompany() string {
	return "(" + strconv.Itoa(l.StoreInventory) + ") " + l.Item + " (" + strconv.Itoa(l.CompInventory) + ")"
}

// Stats counts rows dropped or corrected while building the report.
type Stats struct {
	Rows             int `json:"rows" yaml:"rows"`
	Lines            int `json:"lines" yaml:"lines"`
	Unmatched        int `json:"unmatched" yaml:"unmatched"`
	OutOfRange       int `json:"out_of_range" yaml:"out_of_range"`
	OtherDepartment  int `json:"other_department" yaml:"other_department"`
	DateUnparsed     int `json:"date_unparsed" yaml:"date_unparsed"`
	QuantityUnparsed int `json:"quantity_unparsed" yaml:"quantity_unparsed"`
	UnitsSold        int `json:"units_sold" yaml:"units_sold"`
}

// Result is the sales report.
type Result struct {
	Lines    []Line
	Stats    Stats
	Warnings []error
}

// Report joins the sales history to the floor view. Only sales whose item
// is on the floor are kept; lines are ordered by date and keep the input
// order within a day.
func Report(raw *table.Table, fl *floor.Result, opts ...Option) (*Result, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.NewValidationError("sales", nil, "sales history table cannot be nil")
	}
	if fl == nil {
		return nil, errors.NewValidationError("floor", nil, "floor view is required for the sales report")
	}
	if missing := raw.Missing(Required...); len(missing) > 0 {
		return nil, errors.NewSchemaError("", raw.Name(), missing, raw.Columns())
	}

	res := &Result{Lines: make([]Line, 0, raw.Len())}
	res.Stats.Rows = raw.Len()

	for i := 0; i < raw.Len(); i++ {
		// Step 1: Filter by date and department
		date, ok := parseDate(raw.Value(i, ColumnDate))
		if !ok {
			res.Stats.DateUnparsed++
			continue
		}
		if !o.keepDate(date) {
			res.Stats.OutOfRange++
			continue
		}
		department := raw.Value(i, ColumnDepartment)
		if !o.keepDepartment(department) {
			res.Stats.OtherDepartment++
			continue
		}

		// Step 2: Join the floor row
		code, _ := quantity.TextCode(raw.Value(i, ColumnItemLookupCode))
		row, ok := fl.Lookup(code)
		if !ok {
			res.Stats.Unmatched++
			continue
		}

		qty, ok := quantity.Int(raw.Value(i, ColumnQtySold))
		if !ok {
			res.Stats.QuantityUnparsed++
			qty = 0
		}

		line := Line{
			Date:           date,
			ItemLookupCode: code,
			Description:    raw.Value(i, ColumnDescription),
			QtySold:        qty,
			Department:     department,
			Item:           row.ReorderCode,
			Company:        row.SupplierName,
			StoreInventory: row.OnHand,
			CompInventory:  row.CompanyInventory,
			ItemTotal:      row.ReorderGroupTotal,
		}
		line.Color = Color(line.Description, line.Item)
		res.Lines = append(res.Lines, line)
		res.Stats.UnitsSold += qty
	}

	// Step 3: Order by date
	slices.SortStableFunc(res.Lines, func(a, b Line) int { return a.Date.Compare(b.Date) })
	res.Stats.Lines = len(res.Lines)

	if n := res.Stats.Unmatched; n > 0 {
		res.Warnings = append(res.Warnings, errors.NewDataQualityWarning(
			"sales", "", n, strconv.Itoa(n)+" sales have no matching floor item and were left out"))
	}
	return res, nil
}

// Color returns the part of a sale description after the item group name
// and one separator, e.g. Color("WIG-A 1B", "WIG-A") is "1B". A description
// that does not start with the item yields "".
func Color(description, item string) string {
	if item == "" || len(description) <= len(item)+1 || !strings.HasPrefix(description, item) {
		return ""
	}
	return strings.TrimSpace(description[len(item)+1:])
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return day(t), true
		}
	}
	return time.Time{}, false
}

// Table renders the report with its legacy headers.
func (r *Result) Table() *table.Table {
	out := table.New("sales", Columns)
	for _, l := range r.Lines {
		out.Append([]string{
			l.Date.Format("2006-01-02"),
			l.ItemLookupCode,
			l.Description,
			strconv.Itoa(l.QtySold),
			l.Department,
			l.Month(),
			l.Item,
			l.Color,
			l.Company,
			strconv.Itoa(l.StoreInventory),
			strconv.Itoa(l.CompInventory),
			strconv.Itoa(l.ItemTotal),
			l.ItemInv(),
			l.ColorInv(),
			l.StoreItemCompany(),
		})
	}
	return out
}

// ItemTotal sums units sold per item group.
type ItemTotal struct {
	Item      string `json:"item" yaml:"item"`
	UnitsSold int    `json:"units_sold" yaml:"units_sold"`
	ItemTotal int    `json:"item_total" yaml:"item_total"`
}

// ByItem sums units sold per item group, largest first.
func (r *Result) ByItem() []ItemTotal {
	idx := make(map[string]int)
	var out []ItemTotal
	for _, l := range r.Lines {
		i, ok := idx[l.Item]
		if !ok {
			i = len(out)
			idx[l.Item] = i
			out = append(out, ItemTotal{Item: l.Item, ItemTotal: l.ItemTotal})
		}
		out[i].UnitsSold += l.QtySold
	}
	slices.SortStableFunc(out, func(a, b ItemTotal) int {
		return cmp.Or(cmp.Compare(b.UnitsSold, a.UnitsSold), cmp.Compare(a.Item, b.Item))
	})
	return out
}

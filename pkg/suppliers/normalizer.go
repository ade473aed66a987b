package suppliers

import (
	"fmt"

	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/inventory"
	"github.com/agentstation/stockmap/pkg/quantity"
	"github.com/agentstation/stockmap/pkg/table"
)

// Stats counts what normalization did to a feed.
type Stats struct {
	Input           int `json:"input" yaml:"input"`
	MissingCode     int `json:"missing_code" yaml:"missing_code"`
	InvalidCode     int `json:"invalid_code" yaml:"invalid_code"`
	MissingQuantity int `json:"missing_quantity" yaml:"missing_quantity"`
	InvalidQuantity int `json:"invalid_quantity" yaml:"invalid_quantity"`
	Clamped         int `json:"clamped" yaml:"clamped"`
	Thresholded     int `json:"thresholded" yaml:"thresholded"`
	DuplicateCodes  int `json:"duplicate_codes" yaml:"duplicate_codes"`
	Output          int `json:"output" yaml:"output"`
}

// Dropped returns the number of input rows that produced no output row.
func (s Stats) Dropped() int {
	return s.MissingCode + s.InvalidCode + s.MissingQuantity + s.InvalidQuantity
}

// Result is the outcome of normalizing one supplier feed.
type Result struct {
	Supplier inventory.SupplierCode
	Rows     []inventory.Row
	Stats    Stats
	Warnings []error
}

// candidate is a row between selection and coercion.
type candidate struct {
	code, qty, desc, ext string
}

// Normalize converts raw supplier tables into canonical rows. Multiple
// tables are concatenated first. It performs no I/O and never mutates its
// inputs.
func Normalize(s *Supplier, tables ...*table.Table) (*Result, error) {
	if s == nil {
		return nil, errors.NewValidationError("supplier", nil, "cannot be nil")
	}
	code := string(s.Code)

	// Step 0: Concatenate all inputs
	present := 0
	for _, t := range tables {
		if t != nil {
			present++
		}
	}
	if present == 0 {
		return nil, errors.NewSourceUnavailableError(code, "", errors.New("no input tables"))
	}
	raw, err := table.Concat(code, tables...)
	if err != nil {
		return nil, errors.WrapSourceUnavailable(code, "concat", err)
	}

	// Step 1: Fail early if the mapping does not match the feed
	if missing := raw.Missing(s.Columns.List()...); len(missing) > 0 {
		return nil, errors.NewSchemaError(code, raw.Name(), missing, raw.Columns())
	}

	result := &Result{Supplier: s.Code}
	result.Stats.Input = raw.Len()

	// Step 2: Select and rename, type-checking codes
	candidates := make([]candidate, 0, raw.Len())
	for i := 0; i < raw.Len(); i++ {
		c := candidate{
			code: raw.Value(i, s.Columns.UPC),
			qty:  raw.Value(i, s.Columns.Inventory),
			desc: raw.Value(i, s.Columns.Description),
			ext:  raw.Value(i, s.Columns.ExtendedDescription),
		}
		if s.CodeKind == CodeNumeric && c.code != "" {
			if _, ok := quantity.NumericCode(c.code); !ok {
				result.Stats.InvalidCode++
				continue
			}
		}
		candidates = append(candidates, c)
	}

	// Step 3: Categorical substitution
	for i := range candidates {
		candidates[i].qty = s.QuantityMap.Substitute(candidates[i].qty)
	}

	// Step 4: Drop rows missing a code or a quantity
	kept := candidates[:0]
	for _, c := range candidates {
		switch {
		case c.code == "":
			result.Stats.MissingCode++
		case c.qty == "":
			result.Stats.MissingQuantity++
		default:
			kept = append(kept, c)
		}
	}

	result.Rows = make([]inventory.Row, 0, len(kept))
	for _, c := range kept {
		// Step 5: Integer coercion
		qty, ok := quantity.Int(c.qty)
		if !ok {
			result.Stats.InvalidQuantity++
			continue
		}
		if qty < 0 {
			qty = 0
			result.Stats.Clamped++
		}

		// Step 6: Threshold
		if qty < s.MinThreshold && qty != 0 {
			qty = 0
			result.Stats.Thresholded++
		}

		// Step 7: Code normalization
		normalized, ok := normalizeCode(s.CodeKind, c.code)
		if !ok {
			result.Stats.InvalidCode++
			continue
		}

		result.Rows = append(result.Rows, inventory.Row{
			Supplier:            s.Code,
			ProductCode:         normalized,
			Quantity:            qty,
			Description:         c.desc,
			ExtendedDescription: c.ext,
		})
	}

	// Duplicate codes are kept but reported
	counts := make(map[string]int, len(result.Rows))
	var order []string
	for _, r := range result.Rows {
		if counts[r.ProductCode] == 0 {
			order = append(order, r.ProductCode)
		}
		counts[r.ProductCode]++
	}
	for _, pc := range order {
		if n := counts[pc]; n > 1 {
			result.Stats.DuplicateCodes++
			result.Warnings = append(result.Warnings, errors.NewDataQualityWarning(
				"normalize", pc, n,
				fmt.Sprintf("supplier %s lists product code %d times", code, n)))
		}
	}

	result.Stats.Output = len(result.Rows)
	return result, nil
}

func normalizeCode(kind CodeKind, code string) (string, bool) {
	if kind == CodeNumeric {
		return quantity.NumericCode(code)
	}
	return quantity.TextCode(code)
}

// String renders a one-line summary for logs and reports.
func (s Stats) String() string {
	return fmt.Sprintf("in=%d out=%d dropped=%d clamped=%d thresholded=%d duplicates=%d",
		s.Input, s.Output, s.Dropped(), s.Clamped, s.Thresholded, s.DuplicateCodes)
}

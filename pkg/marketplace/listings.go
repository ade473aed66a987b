// Package marketplace enriches marketplace listings and unshipped orders
// with company and store availability, and derives the supplier pick form
// from selected orders.
package marketplace

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/floor"
	"github.com/agentstation/stockmap/pkg/inventory"
	"github.com/agentstation/stockmap/pkg/quantity"
	"github.com/agentstation/stockmap/pkg/table"
)

// Listing report columns.
const (
	ColumnSellerSKU = "seller-sku"
	ColumnProductID = "product-id"
	ColumnItemName  = "item-name"
	ColumnInvSum    = "inv_Sum"
	ColumnInvComp   = "inv_comp"
	ColumnInvStore  = "inv_store"
)

// Listing is one marketplace listing with derived availability.
type Listing struct {
	SellerSKU  string `json:"seller_sku" yaml:"seller_sku"`
	ProductID  string `json:"product_id" yaml:"product_id"`
	ItemName   string `json:"item_name,omitempty" yaml:"item_name,omitempty"`
	InvCompany int    `json:"inv_company" yaml:"inv_company"`
	InvStore   int    `json:"inv_store" yaml:"inv_store"`
	InvSum     int    `json:"inv_sum" yaml:"inv_sum"`
}

// ListingStats counts join outcomes.
type ListingStats struct {
	Rows             int `json:"rows" yaml:"rows"`
	UnmatchedCompany int `json:"unmatched_company" yaml:"unmatched_company"`
	UnmatchedStore   int `json:"unmatched_store" yaml:"unmatched_store"`
	DuplicateKeys    int `json:"duplicate_keys" yaml:"duplicate_keys"`
}

// ListingResult holds the enriched listings.
type ListingResult struct {
	Listings []Listing
	Stats    ListingStats
	Warnings []error

	raw   *table.Table
	bySKU map[string]int
	dupes map[string]int
}

// ProductID normalizes a marketplace product id to the join key shared
// with canonical and floor codes. Integral numbers take their integer
// decimal form; other ids (ASINs) are trimmed.
func ProductID(s string) string {
	return quantity.Key(s)
}

// warner emits one DataQualityWarning per duplicated key.
type warner struct {
	stage string
	seen  map[string]bool
	out   *[]error
	count *int
}

func (w warner) duplicate(key string, n int, what string) {
	if n < 2 || w.seen[key] {
		return
	}
	w.seen[key] = true
	*w.count++
	*w.out = append(*w.out, errors.NewDataQualityWarning(w.stage, key, n,
		fmt.Sprintf("%d %s rows share this key; using the first", n, what)))
}

// EnrichListings joins the listing report to the canonical inventory and
// the floor. fl may be nil, giving zero store inventory.
func EnrichListings(raw *table.Table, canon *inventory.Table, fl *floor.Result) (*ListingResult, error) {
	if raw == nil {
		return nil, errors.NewValidationError("listings", nil, "listing table cannot be nil")
	}
	if missing := raw.Missing(ColumnSellerSKU, ColumnProductID); len(missing) > 0 {
		return nil, errors.NewSchemaError("", raw.Name(), missing, raw.Columns())
	}

	res := &ListingResult{
		Listings: make([]Listing, raw.Len()),
		raw:      raw,
		bySKU:    make(map[string]int, raw.Len()),
		dupes:    make(map[string]int),
	}
	res.Stats.Rows = raw.Len()
	w := warner{stage: "listings", seen: map[string]bool{}, out: &res.Warnings, count: &res.Stats.DuplicateKeys}
	index := canon.Index()
	floorCounts := floorCodeCounts(fl)

	for i := range res.Listings {
		l := Listing{
			SellerSKU: raw.Value(i, ColumnSellerSKU),
			ProductID: ProductID(raw.Value(i, ColumnProductID)),
			ItemName:  raw.Value(i, ColumnItemName),
		}

		// Step 1: Company inventory
		if rows := index[l.ProductID]; len(rows) > 0 {
			l.InvCompany = rows[0].Quantity
			w.duplicate(l.ProductID, len(rows), "canonical")
		} else {
			res.Stats.UnmatchedCompany++
		}

		// Step 2: Store inventory
		if n, ok := fl.Sellable(l.ProductID); ok {
			l.InvStore = n
			w.duplicate(l.ProductID, floorCounts[l.ProductID], "floor")
		} else {
			res.Stats.UnmatchedStore++
		}

		l.InvSum = l.InvCompany + l.InvStore
		res.Listings[i] = l

		if l.SellerSKU != "" {
			if _, ok := res.bySKU[l.SellerSKU]; !ok {
				res.bySKU[l.SellerSKU] = i
			}
			res.dupes[l.SellerSKU]++
		}
	}
	return res, nil
}

func floorCodeCounts(fl *floor.Result) map[string]int {
	counts := make(map[string]int)
	if fl == nil {
		return counts
	}
	for _, r := range fl.Rows {
		counts[quantity.Key(r.ItemLookupCode)]++
	}
	return counts
}

// Lookup returns the first listing with the given seller sku and the number
// of listings carrying it.
func (r *ListingResult) Lookup(sku string) (Listing, int) {
	if r == nil {
		return Listing{}, 0
	}
	i, ok := r.bySKU[sku]
	if !ok {
		return Listing{}, 0
	}
	return r.Listings[i], r.dupes[sku]
}

// Len returns the number of listings.
func (r *ListingResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Listings)
}

// Table returns the raw listing columns followed by the derived ones.
func (r *ListingResult) Table() *table.Table {
	derived := []string{ColumnInvSum, ColumnInvComp, ColumnInvStore}
	var cols []string
	var idx []int
	for i, c := range r.raw.Columns() {
		if !slices.Contains(derived, c) {
			cols = append(cols, c)
			idx = append(idx, i)
		}
	}
	out := table.New("All_Amazon", append(slices.Clone(cols), derived...))
	for i, l := range r.Listings {
		src := r.raw.Row(i)
		cells := make([]string, 0, len(cols)+len(derived))
		for _, j := range idx {
			cells = append(cells, src[j])
		}
		cells = append(cells, strconv.Itoa(l.InvSum), strconv.Itoa(l.InvCompany), strconv.Itoa(l.InvStore))
		out.Append(cells)
	}
	return out
}

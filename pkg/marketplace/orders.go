package marketplace

import (
	"fmt"
	"strconv"
	"time"

	"github.com/agentstation/stockmap/pkg/constants"
	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/floor"
	"github.com/agentstation/stockmap/pkg/inventory"
	"github.com/agentstation/stockmap/pkg/quantity"
	"github.com/agentstation/stockmap/pkg/table"
)

// Unshipped order report columns.
const (
	ColumnOrderID           = "order-id"
	ColumnSKU               = "sku"
	ColumnQuantityPurchased = "quantity-purchased"
	ColumnPurchaseDate      = "purchase-date"
	ColumnShipServiceLevel  = "ship-service-level"
)

// Derived order columns.
const (
	ColumnORD         = "ORD"
	ColumnBinLocation = "Bin Location"
	ColumnDescription = "DESCRIPTION"
	ColumnLastOrder   = "Last Order"
	ColumnLink        = "link"
)

// OrderColumns is the column order of OrderResult.Table.
var OrderColumns = []string{
	ColumnInvComp, ColumnInvStore, ColumnSKU, ColumnORD, ColumnQuantityPurchased,
	ColumnBinLocation, ColumnProductID, ColumnShipServiceLevel, ColumnDescription,
	ColumnOrderID, ColumnPurchaseDate, ColumnItemName, ColumnLastOrder, ColumnLink,
}

// OrderLine is one unshipped order line with joined availability.
type OrderLine struct {
	OrderID           string    `json:"order_id" yaml:"order_id"`
	SKU               string    `json:"sku" yaml:"sku"`
	PurchaseDate      string    `json:"purchase_date,omitempty" yaml:"purchase_date,omitempty"`
	ShipServiceLevel  string    `json:"ship_service_level,omitempty" yaml:"ship_service_level,omitempty"`
	QuantityPurchased int       `json:"quantity_purchased" yaml:"quantity_purchased"`
	ProductID         string    `json:"product_id" yaml:"product_id"`
	InvCompany        int       `json:"inv_company" yaml:"inv_company"`
	InvStore          int       `json:"inv_store" yaml:"inv_store"`
	ItemName          string    `json:"item_name,omitempty" yaml:"item_name,omitempty"`
	BinLocation       string    `json:"bin_location,omitempty" yaml:"bin_location,omitempty"`
	Description       string    `json:"description,omitempty" yaml:"description,omitempty"`
	ORD               int       `json:"ord" yaml:"ord"`
	Link              string    `json:"link" yaml:"link"`
	LastOrdered       time.Time `json:"last_ordered,omitzero" yaml:"last_ordered,omitempty"`
}

// OrderStats counts join outcomes and corrections.
type OrderStats struct {
	Rows              int `json:"rows" yaml:"rows"`
	UnmatchedListings int `json:"unmatched_listings" yaml:"unmatched_listings"`
	QuantityCorrected int `json:"quantity_corrected" yaml:"quantity_corrected"`
	DuplicateKeys     int `json:"duplicate_keys" yaml:"duplicate_keys"`
}

// OrderResult holds the enriched order lines.
type OrderResult struct {
	Lines    []OrderLine
	Stats    OrderStats
	Warnings []error
}

// OrderLink returns the seller-central page of an order.
func OrderLink(orderID string) string {
	return constants.SellerCentralOrderURL + orderID
}

// EnrichOrders joins unshipped orders to listings, floor bins and canonical
// descriptions. Every join keeps the order row count. listings and fl may
// be nil.
func EnrichOrders(raw *table.Table, listings *ListingResult, fl *floor.Result, canon *inventory.Table, history []OrderHistoryEntry) (*OrderResult, error) {
	if raw == nil {
		return nil, errors.NewValidationError("orders", nil, "order table cannot be nil")
	}
	if missing := raw.Missing(ColumnOrderID, ColumnSKU, ColumnQuantityPurchased); len(missing) > 0 {
		return nil, errors.NewSchemaError("", raw.Name(), missing, raw.Columns())
	}

	res := &OrderResult{Lines: make([]OrderLine, 0, raw.Len())}
	res.Stats.Rows = raw.Len()
	w := warner{stage: "orders", seen: map[string]bool{}, out: &res.Warnings, count: &res.Stats.DuplicateKeys}
	index := canon.Index()
	last := LastOrdered(history)
	floorCounts := floorCodeCounts(fl)

	for i := 0; i < raw.Len(); i++ {
		line := OrderLine{
			OrderID:          raw.Value(i, ColumnOrderID),
			SKU:              raw.Value(i, ColumnSKU),
			PurchaseDate:     raw.Value(i, ColumnPurchaseDate),
			ShipServiceLevel: raw.Value(i, ColumnShipServiceLevel),
			ProductID:        ProductID(raw.Value(i, ColumnProductID)),
			ItemName:         raw.Value(i, ColumnItemName),
		}

		qty, ok := quantity.Int(raw.Value(i, ColumnQuantityPurchased))
		if !ok || qty < 0 {
			res.Stats.QuantityCorrected++
			qty = 0
		}
		line.QuantityPurchased = qty
		line.ORD = qty

		// Step 1: Listing join on sku
		if l, n := listings.Lookup(line.SKU); n > 0 {
			line.InvCompany = l.InvCompany
			line.InvStore = l.InvStore
			if line.ItemName == "" {
				line.ItemName = l.ItemName
			}
			if line.ProductID == "" {
				line.ProductID = l.ProductID
			}
			w.duplicate(line.SKU, n, "listing")
		} else {
			res.Stats.UnmatchedListings++
		}

		// Step 2: Floor join for the bin
		if bin, ok := fl.BinLocation(line.ProductID); ok {
			line.BinLocation = bin
			w.duplicate(line.ProductID, floorCounts[line.ProductID], "floor")
		}

		// Step 3: Canonical join for the description
		if rows := index[line.ProductID]; len(rows) > 0 {
			line.Description = rows[0].Description
			w.duplicate(line.ProductID, len(rows), "canonical")
		}

		line.Link = OrderLink(line.OrderID)
		line.LastOrdered = last[line.SKU]
		res.Lines = append(res.Lines, line)
	}

	if len(res.Lines) != raw.Len() {
		res.Warnings = append(res.Warnings, errors.NewDataQualityWarning("orders", "", len(res.Lines),
			fmt.Sprintf("order row count changed from %d to %d", raw.Len(), len(res.Lines))))
	}
	return res, nil
}

// Len returns the number of order lines.
func (r *OrderResult) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Lines)
}

// Table returns the order lines in report column order.
func (r *OrderResult) Table() *table.Table {
	out := table.New("order", OrderColumns)
	for _, l := range r.Lines {
		lastOrder := ""
		if !l.LastOrdered.IsZero() {
			lastOrder = l.LastOrdered.Format(constants.OrderDateLayout)
		}
		out.Append([]string{
			strconv.Itoa(l.InvCompany),
			strconv.Itoa(l.InvStore),
			l.SKU,
			strconv.Itoa(l.ORD),
			strconv.Itoa(l.QuantityPurchased),
			l.BinLocation,
			l.ProductID,
			l.ShipServiceLevel,
			l.Description,
			l.OrderID,
			l.PurchaseDate,
			l.ItemName,
			lastOrder,
			l.Link,
		})
	}
	return out
}

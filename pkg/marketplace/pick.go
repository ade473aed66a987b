package marketplace

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// PickLine is one entry of the supplier pick form.
type PickLine struct {
	SKU         string `json:"sku" yaml:"sku"`
	ORD         int    `json:"ord" yaml:"ord"`
	Description string `json:"description" yaml:"description"`
}

// OrderHistoryEntry records that a SKU was ordered from a supplier.
type OrderHistoryEntry struct {
	SKU       string    `json:"sku" yaml:"sku"`
	OrderDate time.Time `json:"order_date" yaml:"order_date"`
	Quantity  int       `json:"quantity" yaml:"quantity"`
}

// PickForm selects the order lines for the given SKUs, projects them to
// pick lines, removes exact duplicates and sorts by SKU.
func PickForm(orders []OrderLine, skus []string) []PickLine {
	want := make(map[string]bool, len(skus))
	for _, s := range skus {
		if s = strings.TrimSpace(s); s != "" {
			want[s] = true
		}
	}

	seen := make(map[PickLine]bool)
	var lines []PickLine
	for _, o := range orders {
		if !want[o.SKU] {
			continue
		}
		p := PickLine{SKU: o.SKU, ORD: o.ORD, Description: o.Description}
		if seen[p] {
			continue
		}
		seen[p] = true
		lines = append(lines, p)
	}
	slices.SortStableFunc(lines, func(a, b PickLine) int {
		return cmp.Compare(a.SKU, b.SKU)
	})
	return lines
}

// HistoryEntries converts pick lines into order history entries dated on.
func HistoryEntries(lines []PickLine, on time.Time) []OrderHistoryEntry {
	day := time.Date(on.Year(), on.Month(), on.Day(), 0, 0, 0, 0, on.Location())
	out := make([]OrderHistoryEntry, len(lines))
	for i, l := range lines {
		out[i] = OrderHistoryEntry{SKU: l.SKU, OrderDate: day, Quantity: l.ORD}
	}
	return out
}

// LastOrdered returns the most recent order date per SKU.
func LastOrdered(history []OrderHistoryEntry) map[string]time.Time {
	last := make(map[string]time.Time)
	for _, h := range history {
		if cur, ok := last[h.SKU]; !ok || h.OrderDate.After(cur) {
			last[h.SKU] = h.OrderDate
		}
	}
	return last
}

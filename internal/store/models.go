package store

import "time"

// LedgerEntry is the persisted update date of one supplier.
type LedgerEntry struct {
	SupplierCode string    `gorm:"primaryKey;size:16"`
	Date         string    `gorm:"size:16"`
	LastUpdate   time.Time `gorm:"column:last_update"`
}

// TableName implements gorm's tabler.
func (LedgerEntry) TableName() string { return "ledger_entries" }

// Backorder marks a product code whose company inventory is forced to 0.
type Backorder struct {
	ProductCode string `gorm:"primaryKey;size:64"`
	CreatedAt   time.Time
}

// TableName implements gorm's tabler.
func (Backorder) TableName() string { return "backorders" }

// Duplicate is one suppressed (code, description, extended description) row.
type Duplicate struct {
	ID                  uint   `gorm:"primaryKey"`
	ProductCode         string `gorm:"uniqueIndex:idx_duplicate;size:64"`
	Description         string `gorm:"uniqueIndex:idx_duplicate"`
	ExtendedDescription string `gorm:"uniqueIndex:idx_duplicate"`
	CreatedAt           time.Time
}

// TableName implements gorm's tabler.
func (Duplicate) TableName() string { return "duplicates" }

// OrderHistory is one picked order line.
type OrderHistory struct {
	ID        uint      `gorm:"primaryKey"`
	SKU       string    `gorm:"index;size:64"`
	OrderDate time.Time `gorm:"index"`
	Quantity  int
}

// TableName implements gorm's tabler.
func (OrderHistory) TableName() string { return "order_history" }

// InventoryRow is one row of the last canonical table.
type InventoryRow struct {
	ID                  uint   `gorm:"primaryKey"`
	Supplier            string `gorm:"index;size:16"`
	ProductCode         string `gorm:"index;size:64"`
	Quantity            int
	Description         string
	ExtendedDescription string
}

// TableName implements gorm's tabler.
func (InventoryRow) TableName() string { return "inventory_rows" }

var models = []any{
	&LedgerEntry{},
	&Backorder{},
	&Duplicate{},
	&OrderHistory{},
	&InventoryRow{},
}

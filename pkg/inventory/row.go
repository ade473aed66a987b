// Package inventory defines the canonical inventory record shared by every
// supplier feed and the merge engine that maintains the canonical table.
//
// Tables are immutable: every merge operation returns a new table, so a
// reader always observes one complete generation of rows per supplier.
package inventory

import (
	"strings"

	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/quantity"
)

// SupplierCode is the short registry identifier of a supplier, e.g. "VF".
type SupplierCode string

// String returns the code as a string.
func (c SupplierCode) String() string {
	return string(c)
}

// Legacy column names of the canonical table as exchanged with spreadsheets.
const (
	ColumnSupplier            = "COMPAY"
	ColumnProductCode         = "UPC"
	ColumnQuantity            = "company Inventory"
	ColumnDescription         = "DESCRIPTION"
	ColumnExtendedDescription = "EXTENDED DESCRIPTION"
)

// Columns lists the canonical columns in export order.
var Columns = []string{
	ColumnSupplier,
	ColumnProductCode,
	ColumnQuantity,
	ColumnDescription,
	ColumnExtendedDescription,
}

// Row is one supplier's availability for one product.
type Row struct {
	Supplier            SupplierCode `json:"supplier" yaml:"supplier"`
	ProductCode         string       `json:"product_code" yaml:"product_code"`
	Quantity            int          `json:"quantity" yaml:"quantity"`
	Description         string       `json:"description" yaml:"description"`
	ExtendedDescription string       `json:"extended_description" yaml:"extended_description"`
}

// Validate checks the row invariants.
func (r Row) Validate() error {
	if strings.TrimSpace(r.ProductCode) == "" {
		return errors.NewValidationError("product_code", r.ProductCode, "cannot be empty")
	}
	if r.Quantity < 0 {
		return errors.NewValidationError("quantity", r.Quantity, "cannot be negative")
	}
	if r.Supplier == "" {
		return errors.NewValidationError("supplier", r.Supplier, "cannot be empty")
	}
	return nil
}

// DuplicateEntry identifies a canonical row the operator wants suppressed.
// The product code matches by join key; descriptions match exactly after
// trimming.
type DuplicateEntry struct {
	ProductCode         string `json:"product_code" yaml:"product_code"`
	Description         string `json:"description" yaml:"description"`
	ExtendedDescription string `json:"extended_description" yaml:"extended_description"`
}

type tripleKey struct {
	code, desc, ext string
}

func (d DuplicateEntry) key() tripleKey {
	return tripleKey{
		code: quantity.Key(d.ProductCode),
		desc: strings.TrimSpace(d.Description),
		ext:  strings.TrimSpace(d.ExtendedDescription),
	}
}

func (r Row) key() tripleKey {
	return DuplicateEntry{
		ProductCode:         r.ProductCode,
		Description:         r.Description,
		ExtendedDescription: r.ExtendedDescription,
	}.key()
}

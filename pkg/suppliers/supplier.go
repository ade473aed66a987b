package suppliers

import (
	"fmt"
	"slices"

	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/inventory"
	"github.com/agentstation/stockmap/pkg/quantity"
)

// CodeKind selects how a supplier's product codes are type-checked and
// normalized.
type CodeKind string

// Code kinds.
const (
	CodeNumeric CodeKind = "numeric"
	CodeText    CodeKind = "text"
)

// FormatKind is the container format of a supplier's raw files.
type FormatKind string

// Format kinds.
const (
	FormatCSV  FormatKind = "csv"
	FormatXLSX FormatKind = "xlsx"
)

// Encodings understood by the csv reader.
const (
	EncodingUTF8  = "utf-8"
	EncodingUTF16 = "utf-16"
)

// Columns maps the canonical fields onto source headers.
type Columns struct {
	UPC                 string `yaml:"upc" json:"upc"`
	Inventory           string `yaml:"inventory" json:"inventory"`
	Description         string `yaml:"description" json:"description"`
	ExtendedDescription string `yaml:"extended_description" json:"extended_description"`
}

// List returns the mapped source headers in canonical order.
func (c Columns) List() []string {
	return []string{c.UPC, c.Inventory, c.Description, c.ExtendedDescription}
}

// Format describes how to read a supplier's raw files.
type Format struct {
	Kind       FormatKind `yaml:"kind" json:"kind"`
	Delimiter  string     `yaml:"delimiter,omitempty" json:"delimiter,omitempty"`
	Encoding   string     `yaml:"encoding,omitempty" json:"encoding,omitempty"`
	SkipRows   []int      `yaml:"skip_rows,omitempty" json:"skip_rows,omitempty"`
	HeaderRow  int        `yaml:"header_row,omitempty" json:"header_row,omitempty"`
	SkipFooter int        `yaml:"skip_footer,omitempty" json:"skip_footer,omitempty"`
	Sheet      string     `yaml:"sheet,omitempty" json:"sheet,omitempty"`
}

// Comma returns the field delimiter, defaulting to a comma.
func (f Format) Comma() rune {
	if f.Delimiter == "" {
		return ','
	}
	return []rune(f.Delimiter)[0]
}

// Supplier is one registry entry.
type Supplier struct {
	Code         inventory.SupplierCode `yaml:"code" json:"code"`
	Name         string                 `yaml:"name" json:"name"`
	Columns      Columns                `yaml:"columns" json:"columns"`
	CodeKind     CodeKind               `yaml:"code_kind" json:"code_kind"`
	QuantityMap  quantity.Mapping       `yaml:"quantity_map,omitempty" json:"quantity_map,omitempty"`
	MinThreshold int                    `yaml:"min_threshold,omitempty" json:"min_threshold,omitempty"`
	MultiFile    bool                   `yaml:"multi_file,omitempty" json:"multi_file,omitempty"`
	Files        []string               `yaml:"files" json:"files"`
	NameLength   int                    `yaml:"name_length,omitempty" json:"name_length,omitempty"`
	Format       Format                 `yaml:"format" json:"format"`
}

// Validate checks a single entry.
func (s *Supplier) Validate() error {
	if s == nil {
		return errors.NewValidationError("supplier", nil, "cannot be nil")
	}
	if s.Code == "" {
		return errors.NewValidationError("code", s.Code, "cannot be empty")
	}
	field := func(name string) string { return fmt.Sprintf("%s.%s", s.Code, name) }

	for name, col := range map[string]string{
		"columns.upc":                  s.Columns.UPC,
		"columns.inventory":            s.Columns.Inventory,
		"columns.description":          s.Columns.Description,
		"columns.extended_description": s.Columns.ExtendedDescription,
	} {
		if col == "" {
			return errors.NewValidationError(field(name), col, "column mapping is required")
		}
	}
	if !slices.Contains([]CodeKind{CodeNumeric, CodeText}, s.CodeKind) {
		return errors.NewValidationError(field("code_kind"), s.CodeKind, "must be numeric or text")
	}
	if !slices.Contains([]FormatKind{FormatCSV, FormatXLSX}, s.Format.Kind) {
		return errors.NewValidationError(field("format.kind"), s.Format.Kind, "must be csv or xlsx")
	}
	if enc := s.Format.Encoding; enc != "" && enc != EncodingUTF8 && enc != EncodingUTF16 {
		return errors.NewValidationError(field("format.encoding"), enc, "must be utf-8 or utf-16")
	}
	if s.MinThreshold < 0 {
		return errors.NewValidationError(field("min_threshold"), s.MinThreshold, "cannot be negative")
	}
	if s.Format.HeaderRow < 0 || s.Format.SkipFooter < 0 {
		return errors.NewValidationError(field("format"), s.Format, "row offsets cannot be negative")
	}
	if s.NameLength < 0 {
		return errors.NewValidationError(field("name_length"), s.NameLength, "cannot be negative")
	}
	for k, v := range s.QuantityMap {
		if v < 0 {
			return errors.NewValidationError(field("quantity_map."+k), v, "cannot be negative")
		}
	}
	return nil
}

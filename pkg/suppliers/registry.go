// Package suppliers holds the declarative supplier registry and the
// normalizer that turns one supplier's raw feed into canonical rows.
package suppliers

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"slices"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/inventory"
)

//go:embed suppliers.yaml
var defaultRegistry []byte

// Registry is an ordered, read-only set of suppliers. Order is the
// pipeline's merge order.
type Registry struct {
	suppliers []*Supplier
	index     map[inventory.SupplierCode]*Supplier
}

type document struct {
	Suppliers []*Supplier `yaml:"suppliers"`
}

// Load parses and validates a registry document.
func Load(r io.Reader) (*Registry, error) {
	var doc document
	if err := yaml.NewDecoder(r, yaml.DisallowUnknownField()).Decode(&doc); err != nil {
		return nil, errors.WrapParse("yaml", "registry", err)
	}
	reg := &Registry{
		suppliers: doc.Suppliers,
		index:     make(map[inventory.SupplierCode]*Supplier, len(doc.Suppliers)),
	}
	for _, s := range doc.Suppliers {
		if s != nil && s.Code != "" {
			if _, dup := reg.index[s.Code]; !dup {
				reg.index[s.Code] = s
			}
		}
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

// LoadFile loads a registry from a YAML file.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Default returns the built-in registry.
func Default() *Registry {
	reg, err := Load(bytes.NewReader(defaultRegistry))
	if err != nil {
		panic("suppliers: embedded registry is invalid: " + err.Error())
	}
	return reg
}

// Validate checks every entry and rejects duplicate codes.
func (r *Registry) Validate() error {
	if len(r.suppliers) == 0 {
		return errors.NewValidationError("suppliers", nil, "registry is empty")
	}
	seen := make(map[inventory.SupplierCode]bool, len(r.suppliers))
	for _, s := range r.suppliers {
		if err := s.Validate(); err != nil {
			return err
		}
		if seen[s.Code] {
			return errors.NewValidationError("code", s.Code, "duplicate supplier code")
		}
		seen[s.Code] = true
	}
	return nil
}

// Get returns the supplier with the given code.
func (r *Registry) Get(code inventory.SupplierCode) (*Supplier, bool) {
	s, ok := r.index[code]
	return s, ok
}

// List returns the suppliers in registry order.
func (r *Registry) List() []*Supplier {
	return slices.Clone(r.suppliers)
}

// Codes returns the supplier codes in registry order.
func (r *Registry) Codes() []inventory.SupplierCode {
	codes := make([]inventory.SupplierCode, len(r.suppliers))
	for i, s := range r.suppliers {
		codes[i] = s.Code
	}
	return codes
}

// Len returns the number of suppliers.
func (r *Registry) Len() int {
	return len(r.suppliers)
}

// Select returns the named suppliers in registry order. With no codes it
// returns the whole registry.
func (r *Registry) Select(codes ...inventory.SupplierCode) ([]*Supplier, error) {
	if len(codes) == 0 {
		return r.List(), nil
	}
	for _, c := range codes {
		if _, ok := r.index[c]; !ok {
			return nil, errors.NewNotFoundError("supplier", string(c))
		}
	}
	var out []*Supplier
	for _, s := range r.suppliers {
		if slices.Contains(codes, s.Code) {
			out = append(out, s)
		}
	}
	return out, nil
}

package reconciler

import (
	"fmt"
	"strings"

	"github.com/agentstation/stockmap/pkg/errors"
)

// Validate rejects inputs that would make a run meaningless.
func (in Inputs) Validate() error {
	for i, d := range in.Duplicates {
		if strings.TrimSpace(d.ProductCode) == "" {
			return errors.NewValidationError(fmt.Sprintf("duplicates[%d].product_code", i), d.ProductCode, "cannot be empty")
		}
	}
	for _, r := range in.Base.Rows() {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("base inventory row %s/%s: %w", r.Supplier, r.ProductCode, err)
		}
	}
	return nil
}

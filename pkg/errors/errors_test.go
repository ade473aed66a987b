package errors_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/stockmap/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestNotFoundError(t *testing.T) {
	t.Run("constructor", func(t *testing.T) {
		err := pkgerrors.NewNotFoundError("supplier", "ZZ")
		assert.Equal(t, "supplier with ID ZZ not found", err.Error())
		assert.True(t, pkgerrors.IsNotFound(err))
	})

	t.Run("wrapped error", func(t *testing.T) {
		wrapped := errors.Join(errors.New("failed"), pkgerrors.NewNotFoundError("supplier", "ZZ"))
		assert.True(t, pkgerrors.IsNotFound(wrapped))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("quantity", -3, "clamped to 0")
		assert.Equal(t, "validation failed for field quantity: clamped to 0", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
		assert.Equal(t, -3, err.Value)
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "empty product code"}
		assert.Equal(t, "validation failed: empty product code", err.Error())
	})
}

func TestSourceUnavailableError(t *testing.T) {
	base := errors.New("no such file")
	err := pkgerrors.NewSourceUnavailableError("VF", "VF_Inventory.xlsx", base)

	assert.Equal(t, "source unavailable for supplier VF (VF_Inventory.xlsx): no such file", err.Error())
	assert.True(t, pkgerrors.IsSourceUnavailable(err))
	assert.False(t, pkgerrors.IsSchemaError(err))
	assert.ErrorIs(t, err, base)

	t.Run("wrap keeps existing", func(t *testing.T) {
		wrapped := pkgerrors.WrapSourceUnavailable("AL", "x", err)
		assert.Same(t, err, wrapped)
	})

	t.Run("wrap nil", func(t *testing.T) {
		assert.NoError(t, pkgerrors.WrapSourceUnavailable("AL", "x", nil))
	})
}

func TestSchemaError(t *testing.T) {
	err := pkgerrors.NewSchemaError("BY", "", []string{"O/H"}, []string{"Barcode", "Item Name"})
	assert.Equal(t, `schema error in supplier BY: missing columns ["O/H"] (have ["Barcode", "Item Name"])`, err.Error())
	assert.True(t, pkgerrors.IsSchemaError(err))

	var target *pkgerrors.SchemaError
	require.True(t, errors.As(fmt.Errorf("normalize: %w", err), &target))
	assert.Equal(t, []string{"O/H"}, target.Missing)
}

func TestDataQualityWarning(t *testing.T) {
	w := pkgerrors.NewDataQualityWarning("floor", "12345", 2, "duplicate item lookup code")
	assert.Equal(t, "data quality warning in floor for 12345: duplicate item lookup code", w.Error())
	assert.True(t, pkgerrors.IsDataQuality(w))

	w = pkgerrors.NewDataQualityWarning("orders", "", 0, "row count drift")
	assert.Equal(t, "data quality warning in orders: row count drift", w.Error())
}

func TestCanceled(t *testing.T) {
	err := pkgerrors.Canceled("supplier VF", context.Canceled)
	assert.True(t, pkgerrors.IsCanceled(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, pkgerrors.Canceled("x", nil))
}

func TestWrapHelpers(t *testing.T) {
	base := errors.New("boom")

	tests := []struct {
		name string
		wrap func(error) error
		want string
	}{
		{"io", func(e error) error { return pkgerrors.WrapIO("read", "/tmp/a.csv", e) }, "IO error during read of /tmp/a.csv: boom"},
		{"resource", func(e error) error { return pkgerrors.WrapResource("save", "ledger", "", e) }, "failed to save ledger: boom"},
		{"parse", func(e error) error { return pkgerrors.WrapParse("yaml", "suppliers.yaml", e) }, "parse error in yaml file suppliers.yaml: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, tt.wrap(nil))
			err := tt.wrap(base)
			assert.Equal(t, tt.want, err.Error())
			assert.ErrorIs(t, err, base)
		})
	}
}

func TestConfigError(t *testing.T) {
	base := errors.New("bad duration")
	err := pkgerrors.NewConfigError("stale_after", "cannot parse", base)
	assert.Equal(t, "configuration error in stale_after: cannot parse", err.Error())
	assert.ErrorIs(t, err, base)
}

package export

import (
	"os"
	"path/filepath"
	"time"

	"github.com/agentstation/stockmap/pkg/constants"
	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/floor"
	"github.com/agentstation/stockmap/pkg/sales"
)

// Sales workbook sheet names.
const (
	SheetSales      = "sales"
	SheetStoreFloor = "RMH_INV"
)

// SalesFile returns the dated store sales workbook name.
func SalesFile(asOf time.Time) string {
	return "STORE Sales_" + asOf.Format(constants.FileDateLayout) + ".xlsx"
}

// WriteSales writes the sales report and the floor view it was built from
// into one workbook in dir and returns its path.
func WriteSales(dir string, res *sales.Result, fl *floor.Result, asOf time.Time) (string, error) {
	if res == nil || fl == nil {
		return "", errors.NewValidationError("sales", nil, "sales report and floor view are required")
	}
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return "", errors.WrapIO("create", dir, err)
	}
	path := filepath.Join(dir, SalesFile(asOf))
	err := WriteWorkbook(path,
		Sheet{SheetSales, res.Table()},
		Sheet{SheetStoreFloor, fl.Table(asOf)},
	)
	if err != nil {
		return "", err
	}
	return path, nil
}

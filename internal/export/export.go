// Package export writes the outputs of a reconciliation run: CSV extracts,
// the listings workbook and a markdown run report.
package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/agentstation/stockmap/pkg/constants"
	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/logging"
	"github.com/agentstation/stockmap/pkg/reconciler"
	"github.com/agentstation/stockmap/pkg/table"
)

// File names.
const (
	InventoryFile = "all_upc_inv.csv"
	ReportFile    = "run_report.md"
)

// Workbook sheet names.
const (
	SheetListings  = "All_Amazon"
	SheetOrders    = "order"
	SheetFloor     = "from POS"
	SheetInventory = "all_upc_inv"
	SheetLedger    = "update_history"
)

// FloorFile returns the dated floor extract name.
func FloorFile(asOf time.Time) string {
	return "fromPOS_" + asOf.Format(constants.FileDateLayout) + ".csv"
}

// OrdersFile returns the dated order extract name.
func OrdersFile(asOf time.Time) string {
	return "amazon_order_" + asOf.Format(constants.FileDateLayout) + ".csv"
}

// WorkbookFile returns the dated workbook name.
func WorkbookFile(asOf time.Time) string {
	return "All_Listings_Report_" + asOf.Format(constants.WorkbookDateLayout) + ".xlsx"
}

// Sheet is one named workbook sheet.
type Sheet struct {
	Name  string
	Table *table.Table
}

// Run writes every output of res into dir and returns the paths written.
// Tables absent from res are skipped.
func Run(ctx context.Context, dir string, res *reconciler.Result) ([]string, error) {
	logger := logging.FromContext(ctx)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", dir, err)
	}
	asOf := res.Metadata.StartTime

	var written []string
	write := func(name string, fn func(path string) error) error {
		path := filepath.Join(dir, name)
		if err := fn(path); err != nil {
			return err
		}
		logger.Debug().Str("file", path).Msg("Wrote export")
		written = append(written, path)
		return nil
	}

	var sheets []Sheet
	if res.Listings != nil {
		sheets = append(sheets, Sheet{SheetListings, res.Listings.Table()})
	}
	if res.Orders != nil {
		t := res.Orders.Table()
		sheets = append(sheets, Sheet{SheetOrders, t})
		if err := write(OrdersFile(asOf), func(p string) error { return WriteCSV(p, t) }); err != nil {
			return written, err
		}
	}
	if res.Floor != nil {
		t := res.Floor.Table(asOf)
		sheets = append(sheets, Sheet{SheetFloor, t})
		if err := write(FloorFile(asOf), func(p string) error { return WriteCSV(p, t) }); err != nil {
			return written, err
		}
	}
	if res.Inventory != nil {
		t := res.Inventory.Table()
		sheets = append(sheets, Sheet{SheetInventory, t})
		if err := write(InventoryFile, func(p string) error { return WriteCSV(p, t) }); err != nil {
			return written, err
		}
	}
	if res.Ledger != nil {
		sheets = append(sheets, Sheet{SheetLedger, res.Ledger.Table()})
	}

	if err := write(WorkbookFile(asOf), func(p string) error { return WriteWorkbook(p, sheets...) }); err != nil {
		return written, err
	}
	if err := write(ReportFile, func(p string) error { return WriteReportFile(p, res) }); err != nil {
		return written, err
	}
	return written, nil
}

// WriteCSV writes t with a header row.
func WriteCSV(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}

	w := csv.NewWriter(f)
	_ = w.Write(t.Columns())
	_ = w.WriteAll(t.Rows())
	if err := w.Error(); err != nil {
		_ = f.Close()
		return errors.WrapIO("write", path, err)
	}
	return errors.WrapIO("close", path, f.Close())
}

// WriteWorkbook writes one sheet per table. The workbook always has at
// least one sheet.
func WriteWorkbook(path string, sheets ...Sheet) error {
	wb := excelize.NewFile()
	defer func() { _ = wb.Close() }()

	const initial = "Sheet1"
	for i, s := range sheets {
		if i == 0 {
			if err := wb.SetSheetName(initial, s.Name); err != nil {
				return errors.WrapResource("create", "sheet", s.Name, err)
			}
		} else if _, err := wb.NewSheet(s.Name); err != nil {
			return errors.WrapResource("create", "sheet", s.Name, err)
		}
		if err := writeSheet(wb, s); err != nil {
			return errors.WrapResource("write", "sheet", s.Name, err)
		}
	}

	if err := wb.SaveAs(path); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}

func writeSheet(wb *excelize.File, s Sheet) error {
	sw, err := wb.NewStreamWriter(s.Name)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", cells(s.Table.Columns())); err != nil {
		return err
	}
	for i, row := range s.Table.Rows() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, cells(row)); err != nil {
			return err
		}
	}
	return sw.Flush()
}

func cells(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}

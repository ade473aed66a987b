// Package store persists the state carried between reconciliation runs:
// the canonical table, the update ledger, the backorder and duplicate
// lists and the order history. It is backed by SQLite through gorm.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/agentstation/stockmap/pkg/constants"
	"github.com/agentstation/stockmap/pkg/errors"
	"github.com/agentstation/stockmap/pkg/inventory"
	"github.com/agentstation/stockmap/pkg/ledger"
	"github.com/agentstation/stockmap/pkg/logging"
	"github.com/agentstation/stockmap/pkg/marketplace"
)

// Store is a handle on the state database.
type Store struct {
	db *gorm.DB
}

// printer routes gorm's log lines to zerolog at debug level.
type printer struct {
	logger *zerolog.Logger
}

func (p printer) Printf(format string, args ...any) {
	p.logger.Debug().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Open opens or creates the database at path and migrates its schema.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
			return nil, errors.WrapIO("create", filepath.Dir(path), err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.New(printer{logger: logging.Default()}, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, errors.WrapResource("open", "database", path, err)
	}
	if err := db.AutoMigrate(models...); err != nil {
		return nil, errors.WrapResource("migrate", "database", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ledger loads the update ledger.
func (s *Store) Ledger(ctx context.Context) (*ledger.Ledger, error) {
	var rows []LedgerEntry
	if err := s.db.WithContext(ctx).Order("supplier_code").Find(&rows).Error; err != nil {
		return nil, errors.WrapResource("load", "ledger", "", err)
	}
	entries := make([]ledger.Entry, len(rows))
	for i, r := range rows {
		entries[i] = ledger.Entry{
			Supplier:  inventory.SupplierCode(r.SupplierCode),
			Date:      r.Date,
			UpdatedAt: r.LastUpdate,
		}
	}
	return ledger.New(entries...), nil
}

// SaveLedger upserts every entry of l.
func (s *Store) SaveLedger(ctx context.Context, l *ledger.Ledger) error {
	entries := l.Entries()
	if len(entries) == 0 {
		return nil
	}
	rows := make([]LedgerEntry, len(entries))
	for i, e := range entries {
		rows[i] = LedgerEntry{SupplierCode: string(e.Supplier), Date: e.Date, LastUpdate: e.UpdatedAt}
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "supplier_code"}},
		DoUpdates: clause.AssignmentColumns([]string{"date", "last_update"}),
	}).Create(&rows).Error
	return errors.WrapResource("save", "ledger", "", err)
}

// Backorders returns the backordered product codes in order.
func (s *Store) Backorders(ctx context.Context) ([]string, error) {
	var codes []string
	err := s.db.WithContext(ctx).Model(&Backorder{}).Order("product_code").Pluck("product_code", &codes).Error
	if err != nil {
		return nil, errors.WrapResource("load", "backorders", "", err)
	}
	return codes, nil
}

// AddBackorders adds codes, ignoring blanks and ones already present. It
// returns how many were new.
func (s *Store) AddBackorders(ctx context.Context, codes ...string) (int, error) {
	var rows []Backorder
	for _, c := range codes {
		if c = strings.TrimSpace(c); c != "" {
			rows = append(rows, Backorder{ProductCode: c})
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if res.Error != nil {
		return 0, errors.WrapResource("save", "backorders", "", res.Error)
	}
	return int(res.RowsAffected), nil
}

// RemoveBackorders deletes codes and returns how many existed.
func (s *Store) RemoveBackorders(ctx context.Context, codes ...string) (int, error) {
	if len(codes) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Where("product_code IN ?", codes).Delete(&Backorder{})
	if res.Error != nil {
		return 0, errors.WrapResource("delete", "backorders", "", res.Error)
	}
	return int(res.RowsAffected), nil
}

// Duplicates returns the duplicate suppression list.
func (s *Store) Duplicates(ctx context.Context) ([]inventory.DuplicateEntry, error) {
	var rows []Duplicate
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, errors.WrapResource("load", "duplicates", "", err)
	}
	out := make([]inventory.DuplicateEntry, len(rows))
	for i, r := range rows {
		out[i] = inventory.DuplicateEntry{
			ProductCode:         r.ProductCode,
			Description:         r.Description,
			ExtendedDescription: r.ExtendedDescription,
		}
	}
	return out, nil
}

// AddDuplicates stores entries, trimmed, skipping ones already present.
func (s *Store) AddDuplicates(ctx context.Context, entries ...inventory.DuplicateEntry) (int, error) {
	var rows []Duplicate
	for _, e := range entries {
		if strings.TrimSpace(e.ProductCode) == "" {
			return 0, errors.NewValidationError("product_code", e.ProductCode, "duplicate entry needs a product code")
		}
		rows = append(rows, duplicateRow(e))
	}
	if len(rows) == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&rows)
	if res.Error != nil {
		return 0, errors.WrapResource("save", "duplicates", "", res.Error)
	}
	return int(res.RowsAffected), nil
}

// RemoveDuplicate deletes one entry and reports whether it existed.
func (s *Store) RemoveDuplicate(ctx context.Context, e inventory.DuplicateEntry) (bool, error) {
	row := duplicateRow(e)
	res := s.db.WithContext(ctx).
		Where("product_code = ? AND description = ? AND extended_description = ?",
			row.ProductCode, row.Description, row.ExtendedDescription).
		Delete(&Duplicate{})
	if res.Error != nil {
		return false, errors.WrapResource("delete", "duplicates", row.ProductCode, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func duplicateRow(e inventory.DuplicateEntry) Duplicate {
	return Duplicate{
		ProductCode:         strings.TrimSpace(e.ProductCode),
		Description:         strings.TrimSpace(e.Description),
		ExtendedDescription: strings.TrimSpace(e.ExtendedDescription),
	}
}

// OrderHistory returns every recorded order line, oldest first.
func (s *Store) OrderHistory(ctx context.Context) ([]marketplace.OrderHistoryEntry, error) {
	var rows []OrderHistory
	if err := s.db.WithContext(ctx).Order("order_date, id").Find(&rows).Error; err != nil {
		return nil, errors.WrapResource("load", "order history", "", err)
	}
	out := make([]marketplace.OrderHistoryEntry, len(rows))
	for i, r := range rows {
		out[i] = marketplace.OrderHistoryEntry{SKU: r.SKU, OrderDate: r.OrderDate, Quantity: r.Quantity}
	}
	return out, nil
}

// AppendOrderHistory records entries.
func (s *Store) AppendOrderHistory(ctx context.Context, entries ...marketplace.OrderHistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]OrderHistory, len(entries))
	for i, e := range entries {
		rows[i] = OrderHistory{SKU: e.SKU, OrderDate: e.OrderDate, Quantity: e.Quantity}
	}
	err := s.db.WithContext(ctx).CreateInBatches(&rows, constants.InsertBatchSize).Error
	return errors.WrapResource("save", "order history", "", err)
}

// Inventory loads the last saved canonical table.
func (s *Store) Inventory(ctx context.Context) (*inventory.Table, error) {
	var rows []InventoryRow
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, errors.WrapResource("load", "inventory", "", err)
	}
	out := make([]inventory.Row, len(rows))
	for i, r := range rows {
		out[i] = inventory.Row{
			Supplier:            inventory.SupplierCode(r.Supplier),
			ProductCode:         r.ProductCode,
			Quantity:            r.Quantity,
			Description:         r.Description,
			ExtendedDescription: r.ExtendedDescription,
		}
	}
	return inventory.NewTable(out...), nil
}

// SaveInventory replaces the stored canonical table with t in one
// transaction.
func (s *Store) SaveInventory(ctx context.Context, t *inventory.Table) error {
	rows := make([]InventoryRow, 0, t.Len())
	for _, r := range t.Rows() {
		rows = append(rows, InventoryRow{
			Supplier:            string(r.Supplier),
			ProductCode:         r.ProductCode,
			Quantity:            r.Quantity,
			Description:         r.Description,
			ExtendedDescription: r.ExtendedDescription,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&InventoryRow{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(&rows, constants.InsertBatchSize).Error
	})
	if err != nil {
		return errors.WrapResource("save", "inventory", "", err)
	}
	logging.FromContext(ctx).Debug().Int("rows", len(rows)).Msg("Saved canonical inventory")
	return nil
}

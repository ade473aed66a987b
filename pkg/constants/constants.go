// Package constants provides shared constants used throughout the stockmap
// codebase: date layouts, limits, file permissions and well-known column names.
package constants

import "time"

// Date layouts
const (
	// LedgerDateLayout is the "DD-Mon" form written to the update-history ledger.
	LedgerDateLayout = "02-Jan"

	// OrderDateLayout is the date form used in the supplier order history.
	OrderDateLayout = "01/02/2006"

	// FileDateLayout is the date suffix for exported CSV files (MMDDYY).
	FileDateLayout = "010206"

	// WorkbookDateLayout is the date suffix for the exported workbook.
	WorkbookDateLayout = "01_02_2006"

	// CompanyInventoryLayout builds the "Comp Inv MMDD" floor column.
	CompanyInventoryLayout = "0102"

	// PhysicalCountTimeLayout is the occurred_at format for storefront counts.
	PhysicalCountTimeLayout = "2006-01-02T15:04:05.000Z"
)

// Timeout and interval constants
const (
	// DefaultStaleAfter is how old a supplier's last update may be before a warning.
	DefaultStaleAfter = 7 * 24 * time.Hour

	// ShutdownTimeout bounds graceful shutdown of the CLI.
	ShutdownTimeout = 5 * time.Second

	// CommandTimeout is the default timeout for a single reconciliation run.
	CommandTimeout = 10 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants
const (
	// MaxPhysicalCountBatch is the largest batch the storefront inventory API accepts.
	MaxPhysicalCountBatch = 100

	// DefaultConcurrency is the default number of suppliers normalized at once.
	DefaultConcurrency = 1

	// InsertBatchSize is the row batch size for bulk database inserts.
	InsertBatchSize = 500
)

// SellerCentralOrderURL prefixes an order id to build a marketplace order link.
const SellerCentralOrderURL = "https://sellercentral.amazon.com/orders-v3/order/"

package gormstore

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CashBookRow represents the cash_books table.
type CashBookRow struct {
	BookID    string    `gorm:"type:uuid;primaryKey"`
	TenantID  string    `gorm:"not null;index:idx_cash_books_tenant"`
	Name      string    `gorm:"not null"`
	IsDefault bool      `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	CreatedBy string    `gorm:"not null"`
}

func (CashBookRow) TableName() string { return "cash_books" }

func (row *CashBookRow) BeforeCreate(tx *gorm.DB) error {
	if row.BookID == "" {
		row.BookID = uuid.NewString()
	}
	return nil
}

// EntryColumns is the shared shape of the three entry collections.
type EntryColumns struct {
	EntryID    string          `gorm:"type:uuid;primaryKey"`
	TenantID   string          `gorm:"not null;index"`
	CashBookID string          `gorm:"index"`
	Kind       string          `gorm:"not null"`
	Number     string          `gorm:"not null"`
	Amount     decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Method     string          `gorm:""`
	Category   string          `gorm:""`
	Details    string          `gorm:""`
	OccurredAt time.Time       `gorm:"not null;index"`
	CreatedBy  string          `gorm:"not null"`
	CreatedAt  time.Time       `gorm:"not null"`
}

// CashInEntryRow mirrors the cash_in_entries collection.
type CashInEntryRow struct {
	EntryColumns `gorm:"embedded"`
}

func (CashInEntryRow) TableName() string { return "cash_in_entries" }

func (row *CashInEntryRow) BeforeCreate(tx *gorm.DB) error {
	if row.EntryID == "" {
		row.EntryID = uuid.NewString()
	}
	return nil
}

// ExpenseEntryRow mirrors the expense_entries collection.
type ExpenseEntryRow struct {
	EntryColumns `gorm:"embedded"`
}

func (ExpenseEntryRow) TableName() string { return "expense_entries" }

func (row *ExpenseEntryRow) BeforeCreate(tx *gorm.DB) error {
	if row.EntryID == "" {
		row.EntryID = uuid.NewString()
	}
	return nil
}

// StockPaymentRow mirrors the stock_payments collection.
type StockPaymentRow struct {
	EntryColumns `gorm:"embedded"`
}

func (StockPaymentRow) TableName() string { return "stock_payments" }

func (row *StockPaymentRow) BeforeCreate(tx *gorm.DB) error {
	if row.EntryID == "" {
		row.EntryID = uuid.NewString()
	}
	return nil
}

// InvoiceRow mirrors the invoices table. Invoices are written by the
// sales side of the application; this store only reads them.
type InvoiceRow struct {
	InvoiceID string          `gorm:"type:uuid;primaryKey"`
	TenantID  string          `gorm:"not null;index"`
	Number    string          `gorm:"not null"`
	Total     decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Method    string          `gorm:"not null"`
	IssuedAt  time.Time       `gorm:"not null;index"`
	CreatedAt time.Time       `gorm:"not null"`
}

func (InvoiceRow) TableName() string { return "invoices" }

func (row *InvoiceRow) BeforeCreate(tx *gorm.DB) error {
	if row.InvoiceID == "" {
		row.InvoiceID = uuid.NewString()
	}
	return nil
}

// TransferRow mirrors the transfers table.
type TransferRow struct {
	TransferID  string          `gorm:"type:uuid;primaryKey"`
	TenantID    string          `gorm:"not null;index"`
	FromID      string          `gorm:"not null;index"`
	FromLabel   string          `gorm:"not null"`
	ToID        string          `gorm:"not null;index"`
	ToLabel     string          `gorm:"not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Description string          `gorm:""`
	CreatedAt   time.Time       `gorm:"not null"`
	CreatedBy   string          `gorm:"not null"`
}

func (TransferRow) TableName() string { return "transfers" }

func (row *TransferRow) BeforeCreate(tx *gorm.DB) error {
	if row.TransferID == "" {
		row.TransferID = uuid.NewString()
	}
	return nil
}

// ReconciliationReportRow mirrors the reconciliation_reports table.
// The five summary buckets are stored as one JSON document.
type ReconciliationReportRow struct {
	ReportID     string         `gorm:"type:uuid;primaryKey"`
	TenantID     string         `gorm:"not null;index:idx_reports_tenant_date,priority:1"`
	Date         string         `gorm:"not null;index:idx_reports_tenant_date,priority:2"`
	ReconciledAt time.Time      `gorm:"not null"`
	ReconciledBy string         `gorm:"not null"`
	Summary      datatypes.JSON `gorm:"not null"`
}

func (ReconciliationReportRow) TableName() string { return "reconciliation_reports" }

func (row *ReconciliationReportRow) BeforeCreate(tx *gorm.DB) error {
	if row.ReportID == "" {
		row.ReportID = uuid.NewString()
	}
	return nil
}

// ReconciliationMarkRow mirrors the reconciliation_marks table.
type ReconciliationMarkRow struct {
	TenantID     string    `gorm:"primaryKey"`
	Date         string    `gorm:"primaryKey"`
	ReconciledAt time.Time `gorm:"not null"`
	ReconciledBy string    `gorm:"not null"`
}

func (ReconciliationMarkRow) TableName() string { return "reconciliation_marks" }

// LockedDayRow mirrors the locked_days table. EntryIDs accumulates the
// union of locked ids across repeated reconciliations of the date.
type LockedDayRow struct {
	TenantID         string         `gorm:"primaryKey"`
	Date             string         `gorm:"primaryKey"`
	EntryIDs         datatypes.JSON `gorm:"not null"`
	LastReconciledAt time.Time      `gorm:"not null"`
}

func (LockedDayRow) TableName() string { return "locked_days" }

// SequenceCounterRow backs the monotonic human-readable number sequences.
type SequenceCounterRow struct {
	TenantID string `gorm:"primaryKey"`
	Prefix   string `gorm:"primaryKey"`
	Value    int64  `gorm:"not null"`
}

func (SequenceCounterRow) TableName() string { return "sequence_counters" }

// Models lists every table for schema migration.
func Models() []any {
	return []any{
		&CashBookRow{},
		&CashInEntryRow{},
		&ExpenseEntryRow{},
		&StockPaymentRow{},
		&InvoiceRow{},
		&TransferRow{},
		&ReconciliationReportRow{},
		&ReconciliationMarkRow{},
		&LockedDayRow{},
		&SequenceCounterRow{},
	}
}

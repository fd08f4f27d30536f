package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	gosqlite "github.com/glebarez/go-sqlite"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/SakunaTharaka/easypos-cashbook/pkg/cashbook"
)

const (
	pgUniqueViolationCode = "23505"
	sqliteConstraintCode  = 19

	errorOperationStore  = "store"
	errorSubjectCashBook = "cash_book"
	errorSubjectEntry    = "entry"
	errorSubjectInvoice  = "invoice"
	errorSubjectReport   = "report"
	errorSubjectMark     = "mark"
	errorSubjectLock     = "lock"
	errorSubjectTransfer = "transfer"
	errorSubjectSequence = "sequence"

	errorCodeCreate  = "create"
	errorCodeDelete  = "delete"
	errorCodeGet     = "get"
	errorCodeInsert  = "insert"
	errorCodeInvalid = "invalid"
	errorCodeList    = "list"
	errorCodeRename  = "rename"
	errorCodeSum     = "sum"
	errorCodeUpdate  = "update"
)

// Store implements cashbook.Store using GORM.
type Store struct {
	db *gorm.DB
}

// New returns a Store backed by gorm.DB.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// WithTx executes fn within a transaction.
func (store *Store) WithTx(ctx context.Context, fn func(ctx context.Context, txStore cashbook.Store) error) error {
	return store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		return fn(ctx, &Store{db: transaction})
	})
}

func (store *Store) ListCashBooks(ctx context.Context, tenantID cashbook.TenantID) ([]cashbook.CashBook, error) {
	var rows []CashBookRow
	err := store.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID.String()).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectCashBook, errorCodeList, storeFailure(err))
	}
	books := make([]cashbook.CashBook, 0, len(rows))
	for _, row := range rows {
		books = append(books, mapCashBook(row))
	}
	return books, nil
}

func (store *Store) CreateCashBook(ctx context.Context, input cashbook.CashBookInput) (cashbook.CashBook, error) {
	row := CashBookRow{
		TenantID:  input.TenantID.String(),
		Name:      input.Name.String(),
		IsDefault: input.IsDefault,
		CreatedAt: time.Now().UTC(),
		CreatedBy: input.CreatedBy.String(),
	}
	if err := store.db.WithContext(ctx).Create(&row).Error; err != nil {
		return cashbook.CashBook{}, wrapStoreError(errorSubjectCashBook, errorCodeCreate, storeFailure(err))
	}
	return mapCashBook(row), nil
}

func (store *Store) RenameCashBook(ctx context.Context, tenantID cashbook.TenantID, bookID string, name cashbook.CashBookName) error {
	result := store.db.WithContext(ctx).
		Model(&CashBookRow{}).
		Where("tenant_id = ? AND book_id = ?", tenantID.String(), bookID).
		Update("name", name.String())
	if result.Error != nil {
		return wrapStoreError(errorSubjectCashBook, errorCodeRename, storeFailure(result.Error))
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectCashBook, errorCodeRename, cashbook.ErrUnknownCashBook)
	}
	return nil
}

func (store *Store) DeleteCashBook(ctx context.Context, tenantID cashbook.TenantID, bookID string) error {
	result := store.db.WithContext(ctx).
		Where("tenant_id = ? AND book_id = ?", tenantID.String(), bookID).
		Delete(&CashBookRow{})
	if result.Error != nil {
		return wrapStoreError(errorSubjectCashBook, errorCodeDelete, storeFailure(result.Error))
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectCashBook, errorCodeDelete, cashbook.ErrUnknownCashBook)
	}
	return nil
}

func (store *Store) SumEntriesByBook(ctx context.Context, tenantID cashbook.TenantID, collection cashbook.Collection) (map[string]decimal.Decimal, error) {
	type bookSum struct {
		CashBookID string
		Total      decimal.Decimal
	}
	query := store.db.WithContext(ctx).
		Table(string(collection)).
		Select("cash_book_id, coalesce(sum(amount),0) as total").
		Where("tenant_id = ?", tenantID.String()).
		Where("cash_book_id <> ''").
		Group("cash_book_id")
	query = restrictToCashMethod(query, collection)
	var sums []bookSum
	if err := query.Scan(&sums).Error; err != nil {
		return nil, wrapStoreError(errorSubjectEntry, errorCodeSum, storeFailure(err))
	}
	totals := make(map[string]decimal.Decimal, len(sums))
	for _, sum := range sums {
		totals[sum.CashBookID] = sum.Total
	}
	return totals, nil
}

func (store *Store) SumEntriesForBook(ctx context.Context, tenantID cashbook.TenantID, bookID string, collection cashbook.Collection) (decimal.Decimal, error) {
	type totalSum struct {
		Total decimal.Decimal
	}
	query := store.db.WithContext(ctx).
		Table(string(collection)).
		Select("coalesce(sum(amount),0) as total").
		Where("tenant_id = ? AND cash_book_id = ?", tenantID.String(), bookID)
	query = restrictToCashMethod(query, collection)
	var sum totalSum
	if err := query.Scan(&sum).Error; err != nil {
		return decimal.Zero, wrapStoreError(errorSubjectEntry, errorCodeSum, storeFailure(err))
	}
	return sum.Total, nil
}

func (store *Store) InsertEntry(ctx context.Context, input cashbook.EntryInput) (cashbook.LedgerEntry, error) {
	columns := EntryColumns{
		TenantID:   input.TenantID.String(),
		CashBookID: input.CashBookID,
		Kind:       input.Kind.String(),
		Number:     input.Number,
		Amount:     input.Amount.Decimal(),
		Method:     input.Method.String(),
		Category:   input.Category,
		Details:    input.Details,
		OccurredAt: input.OccurredAt.UTC(),
		CreatedBy:  input.CreatedBy.String(),
		CreatedAt:  time.Now().UTC(),
	}
	model := entryModel(input.Kind.Collection(), columns)
	if err := store.db.WithContext(ctx).Create(model).Error; err != nil {
		return cashbook.LedgerEntry{}, wrapStoreError(errorSubjectEntry, errorCodeInsert, storeFailure(err))
	}
	entry, err := mapEntry(entryColumnsOf(model))
	if err != nil {
		return cashbook.LedgerEntry{}, wrapStoreError(errorSubjectEntry, errorCodeInvalid, err)
	}
	return entry, nil
}

func (store *Store) GetEntry(ctx context.Context, tenantID cashbook.TenantID, collection cashbook.Collection, entryID string) (cashbook.LedgerEntry, error) {
	var columns EntryColumns
	err := store.db.WithContext(ctx).
		Table(string(collection)).
		Where("tenant_id = ? AND entry_id = ?", tenantID.String(), entryID).
		Take(&columns).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return cashbook.LedgerEntry{}, wrapStoreError(errorSubjectEntry, errorCodeGet, cashbook.ErrUnknownEntry)
		}
		return cashbook.LedgerEntry{}, wrapStoreError(errorSubjectEntry, errorCodeGet, storeFailure(err))
	}
	entry, err := mapEntry(columns)
	if err != nil {
		return cashbook.LedgerEntry{}, wrapStoreError(errorSubjectEntry, errorCodeInvalid, err)
	}
	return entry, nil
}

func (store *Store) DeleteEntry(ctx context.Context, tenantID cashbook.TenantID, collection cashbook.Collection, entryID string) error {
	result := store.db.WithContext(ctx).
		Exec("DELETE FROM "+string(collection)+" WHERE tenant_id = ? AND entry_id = ?", tenantID.String(), entryID)
	if result.Error != nil {
		return wrapStoreError(errorSubjectEntry, errorCodeDelete, storeFailure(result.Error))
	}
	if result.RowsAffected == 0 {
		return wrapStoreError(errorSubjectEntry, errorCodeDelete, cashbook.ErrUnknownEntry)
	}
	return nil
}

func (store *Store) ListEntriesPage(ctx context.Context, tenantID cashbook.TenantID, bookID string, collection cashbook.Collection, cursor *cashbook.EntryCursor, limit int) ([]cashbook.LedgerEntry, error) {
	query := store.db.WithContext(ctx).
		Table(string(collection)).
		Where("tenant_id = ? AND cash_book_id = ?", tenantID.String(), bookID)
	query = restrictToCashMethod(query, collection)
	if cursor != nil {
		query = query.Where(
			"(occurred_at > ?) OR (occurred_at = ? AND entry_id > ?)",
			cursor.OccurredAt, cursor.OccurredAt, cursor.EntryID,
		)
	}
	var rows []EntryColumns
	err := query.
		Order("occurred_at ASC, entry_id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectEntry, errorCodeList, storeFailure(err))
	}
	return mapEntries(rows)
}

func (store *Store) ListEntriesInWindow(ctx context.Context, tenantID cashbook.TenantID, collection cashbook.Collection, window cashbook.TimeWindow) ([]cashbook.LedgerEntry, error) {
	query := store.db.WithContext(ctx).
		Table(string(collection)).
		Where("tenant_id = ?", tenantID.String())
	query = applyWindow(query, "occurred_at", window)
	var rows []EntryColumns
	if err := query.Order("occurred_at ASC").Find(&rows).Error; err != nil {
		return nil, wrapStoreError(errorSubjectEntry, errorCodeList, storeFailure(err))
	}
	return mapEntries(rows)
}

func (store *Store) ListInvoicesInWindow(ctx context.Context, tenantID cashbook.TenantID, window cashbook.TimeWindow) ([]cashbook.Invoice, error) {
	query := store.db.WithContext(ctx).
		Model(&InvoiceRow{}).
		Where("tenant_id = ?", tenantID.String())
	query = applyWindow(query, "issued_at", window)
	var rows []InvoiceRow
	if err := query.Order("issued_at ASC").Find(&rows).Error; err != nil {
		return nil, wrapStoreError(errorSubjectInvoice, errorCodeList, storeFailure(err))
	}
	invoices := make([]cashbook.Invoice, 0, len(rows))
	for _, row := range rows {
		invoice, err := mapInvoice(row)
		if err != nil {
			return nil, wrapStoreError(errorSubjectInvoice, errorCodeInvalid, err)
		}
		invoices = append(invoices, invoice)
	}
	return invoices, nil
}

func (store *Store) SumInvoicesByMethod(ctx context.Context, tenantID cashbook.TenantID) (map[cashbook.PaymentMethod]decimal.Decimal, error) {
	type methodSum struct {
		Method string
		Total  decimal.Decimal
	}
	var sums []methodSum
	err := store.db.WithContext(ctx).
		Model(&InvoiceRow{}).
		Select("method, coalesce(sum(total),0) as total").
		Where("tenant_id = ?", tenantID.String()).
		Group("method").
		Scan(&sums).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectInvoice, errorCodeSum, storeFailure(err))
	}
	totals := make(map[cashbook.PaymentMethod]decimal.Decimal, len(sums))
	for _, sum := range sums {
		method, methodErr := cashbook.ParsePaymentMethod(sum.Method)
		if methodErr != nil {
			return nil, wrapStoreError(errorSubjectInvoice, errorCodeInvalid, methodErr)
		}
		totals[method] = sum.Total
	}
	return totals, nil
}

func (store *Store) LatestReport(ctx context.Context, tenantID cashbook.TenantID, date cashbook.Date) (*cashbook.ReconciliationReport, error) {
	var row ReconciliationReportRow
	err := store.db.WithContext(ctx).
		Where("tenant_id = ? AND date = ?", tenantID.String(), date.String()).
		Order("reconciled_at DESC").
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapStoreError(errorSubjectReport, errorCodeGet, storeFailure(err))
	}
	report, err := mapReport(row)
	if err != nil {
		return nil, wrapStoreError(errorSubjectReport, errorCodeInvalid, err)
	}
	return &report, nil
}

func (store *Store) ListReports(ctx context.Context, tenantID cashbook.TenantID, date cashbook.Date) ([]cashbook.ReconciliationReport, error) {
	var rows []ReconciliationReportRow
	err := store.db.WithContext(ctx).
		Where("tenant_id = ? AND date = ?", tenantID.String(), date.String()).
		Order("reconciled_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectReport, errorCodeList, storeFailure(err))
	}
	reports := make([]cashbook.ReconciliationReport, 0, len(rows))
	for _, row := range rows {
		report, mapErr := mapReport(row)
		if mapErr != nil {
			return nil, wrapStoreError(errorSubjectReport, errorCodeInvalid, mapErr)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

func (store *Store) InsertReport(ctx context.Context, report cashbook.ReconciliationReport) (cashbook.ReconciliationReport, error) {
	summary, err := json.Marshal(reportSummary{
		CashSales:     report.CashSales,
		CardSales:     report.CardSales,
		OnlineSales:   report.OnlineSales,
		Expenses:      report.Expenses,
		StockPayments: report.StockPayments,
	})
	if err != nil {
		return cashbook.ReconciliationReport{}, wrapStoreError(errorSubjectReport, errorCodeInvalid, err)
	}
	row := ReconciliationReportRow{
		TenantID:     report.TenantID,
		Date:         report.Date.String(),
		ReconciledAt: report.ReconciledAt.UTC(),
		ReconciledBy: report.ReconciledBy,
		Summary:      datatypes.JSON(summary),
	}
	if err := store.db.WithContext(ctx).Create(&row).Error; err != nil {
		return cashbook.ReconciliationReport{}, wrapStoreError(errorSubjectReport, errorCodeInsert, storeFailure(err))
	}
	report.ID = row.ReportID
	return report, nil
}

// AddLockedEntryIDs unions new ids into the date's locked set. Callers
// run this inside WithTx, which serializes concurrent reconciliations of
// the same date at the store level.
func (store *Store) AddLockedEntryIDs(ctx context.Context, tenantID cashbook.TenantID, date cashbook.Date, entryIDs []string, reconciledAt time.Time) error {
	db := store.db.WithContext(ctx)
	var row LockedDayRow
	err := db.
		Where("tenant_id = ? AND date = ?", tenantID.String(), date.String()).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		encoded, encodeErr := json.Marshal(dedupe(entryIDs))
		if encodeErr != nil {
			return wrapStoreError(errorSubjectLock, errorCodeInvalid, encodeErr)
		}
		row = LockedDayRow{
			TenantID:         tenantID.String(),
			Date:             date.String(),
			EntryIDs:         datatypes.JSON(encoded),
			LastReconciledAt: reconciledAt.UTC(),
		}
		if createErr := db.Create(&row).Error; createErr != nil {
			return wrapStoreError(errorSubjectLock, errorCodeCreate, storeFailure(createErr))
		}
		return nil
	}
	if err != nil {
		return wrapStoreError(errorSubjectLock, errorCodeGet, storeFailure(err))
	}

	var existing []string
	if decodeErr := json.Unmarshal(row.EntryIDs, &existing); decodeErr != nil {
		return wrapStoreError(errorSubjectLock, errorCodeInvalid, decodeErr)
	}
	encoded, encodeErr := json.Marshal(dedupe(append(existing, entryIDs...)))
	if encodeErr != nil {
		return wrapStoreError(errorSubjectLock, errorCodeInvalid, encodeErr)
	}
	updateErr := db.
		Model(&LockedDayRow{}).
		Where("tenant_id = ? AND date = ?", tenantID.String(), date.String()).
		Updates(map[string]any{
			"entry_ids":          datatypes.JSON(encoded),
			"last_reconciled_at": reconciledAt.UTC(),
		}).Error
	if updateErr != nil {
		return wrapStoreError(errorSubjectLock, errorCodeUpdate, storeFailure(updateErr))
	}
	return nil
}

func (store *Store) LockedEntryIDs(ctx context.Context, tenantID cashbook.TenantID, date cashbook.Date) ([]string, error) {
	var row LockedDayRow
	err := store.db.WithContext(ctx).
		Where("tenant_id = ? AND date = ?", tenantID.String(), date.String()).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapStoreError(errorSubjectLock, errorCodeGet, storeFailure(err))
	}
	var entryIDs []string
	if decodeErr := json.Unmarshal(row.EntryIDs, &entryIDs); decodeErr != nil {
		return nil, wrapStoreError(errorSubjectLock, errorCodeInvalid, decodeErr)
	}
	return entryIDs, nil
}

func (store *Store) InsertMark(ctx context.Context, mark cashbook.ReconciliationMark) error {
	row := ReconciliationMarkRow{
		TenantID:     mark.TenantID,
		Date:         mark.Date.String(),
		ReconciledAt: mark.ReconciledAt.UTC(),
		ReconciledBy: mark.ReconciledBy,
	}
	err := store.db.WithContext(ctx).Create(&row).Error
	if isUniqueViolation(err) {
		// A concurrent reconciliation already marked the date.
		return nil
	}
	if err != nil {
		return wrapStoreError(errorSubjectMark, errorCodeInsert, storeFailure(err))
	}
	return nil
}

func (store *Store) ListMarks(ctx context.Context, tenantID cashbook.TenantID) ([]cashbook.ReconciliationMark, error) {
	var rows []ReconciliationMarkRow
	err := store.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID.String()).
		Order("date ASC").
		Find(&rows).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectMark, errorCodeList, storeFailure(err))
	}
	marks := make([]cashbook.ReconciliationMark, 0, len(rows))
	for _, row := range rows {
		date, dateErr := cashbook.NewDate(row.Date)
		if dateErr != nil {
			return nil, wrapStoreError(errorSubjectMark, errorCodeInvalid, dateErr)
		}
		marks = append(marks, cashbook.ReconciliationMark{
			TenantID:     row.TenantID,
			Date:         date,
			ReconciledAt: row.ReconciledAt,
			ReconciledBy: row.ReconciledBy,
		})
	}
	return marks, nil
}

func (store *Store) InsertTransfer(ctx context.Context, transfer cashbook.Transfer) (cashbook.Transfer, error) {
	row := TransferRow{
		TenantID:    transfer.TenantID,
		FromID:      transfer.FromID,
		FromLabel:   transfer.FromLabel,
		ToID:        transfer.ToID,
		ToLabel:     transfer.ToLabel,
		Amount:      transfer.Amount,
		Description: transfer.Description,
		CreatedAt:   transfer.CreatedAt.UTC(),
		CreatedBy:   transfer.CreatedBy,
	}
	if err := store.db.WithContext(ctx).Create(&row).Error; err != nil {
		return cashbook.Transfer{}, wrapStoreError(errorSubjectTransfer, errorCodeInsert, storeFailure(err))
	}
	transfer.ID = row.TransferID
	return transfer, nil
}

func (store *Store) SumTransfersByAccount(ctx context.Context, tenantID cashbook.TenantID) (map[string]decimal.Decimal, error) {
	type accountSum struct {
		AccountID string
		Total     decimal.Decimal
	}
	net := make(map[string]decimal.Decimal)

	var inbound []accountSum
	err := store.db.WithContext(ctx).
		Model(&TransferRow{}).
		Select("to_id as account_id, coalesce(sum(amount),0) as total").
		Where("tenant_id = ?", tenantID.String()).
		Group("to_id").
		Scan(&inbound).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectTransfer, errorCodeSum, storeFailure(err))
	}
	for _, sum := range inbound {
		net[sum.AccountID] = net[sum.AccountID].Add(sum.Total)
	}

	var outbound []accountSum
	err = store.db.WithContext(ctx).
		Model(&TransferRow{}).
		Select("from_id as account_id, coalesce(sum(amount),0) as total").
		Where("tenant_id = ?", tenantID.String()).
		Group("from_id").
		Scan(&outbound).Error
	if err != nil {
		return nil, wrapStoreError(errorSubjectTransfer, errorCodeSum, storeFailure(err))
	}
	for _, sum := range outbound {
		net[sum.AccountID] = net[sum.AccountID].Sub(sum.Total)
	}
	return net, nil
}

// NextSequence atomically increments and returns the tenant's counter for
// a prefix. Runs in its own transaction (a savepoint when nested).
func (store *Store) NextSequence(ctx context.Context, tenantID cashbook.TenantID, prefix string) (int64, error) {
	var next int64
	err := store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		var counter SequenceCounterRow
		err := transaction.
			Where("tenant_id = ? AND prefix = ?", tenantID.String(), prefix).
			Take(&counter).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			counter = SequenceCounterRow{TenantID: tenantID.String(), Prefix: prefix, Value: 1}
			if createErr := transaction.Create(&counter).Error; createErr != nil {
				return createErr
			}
			next = counter.Value
			return nil
		}
		if err != nil {
			return err
		}
		counter.Value++
		if saveErr := transaction.
			Model(&SequenceCounterRow{}).
			Where("tenant_id = ? AND prefix = ?", tenantID.String(), prefix).
			Update("value", counter.Value).Error; saveErr != nil {
			return saveErr
		}
		next = counter.Value
		return nil
	})
	if err != nil {
		return 0, wrapStoreError(errorSubjectSequence, errorCodeUpdate, storeFailure(err))
	}
	return next, nil
}

// reportSummary is the JSON document persisted per report row.
type reportSummary struct {
	CashSales     cashbook.InvoiceBucket `json:"cashSales"`
	CardSales     cashbook.InvoiceBucket `json:"cardSales"`
	OnlineSales   cashbook.InvoiceBucket `json:"onlineSales"`
	Expenses      cashbook.EntryBucket   `json:"expenses"`
	StockPayments cashbook.EntryBucket   `json:"stockPayments"`
}

func wrapStoreError(subject string, code string, err error) error {
	return cashbook.WrapError(errorOperationStore, subject, code, err)
}

func storeFailure(err error) error {
	return fmt.Errorf("%w: %v", cashbook.ErrStoreUnavailable, err)
}

// restrictToCashMethod narrows book-scoped stock-payment reads to
// Cash-method rows; other methods never touch a book balance.
func restrictToCashMethod(query *gorm.DB, collection cashbook.Collection) *gorm.DB {
	if collection == cashbook.CollectionStockPayment {
		return query.Where("method = ?", cashbook.MethodCash.String())
	}
	return query
}

func applyWindow(query *gorm.DB, column string, window cashbook.TimeWindow) *gorm.DB {
	if window.FromExclusive {
		query = query.Where(column+" > ?", window.From)
	} else {
		query = query.Where(column+" >= ?", window.From)
	}
	return query.Where(column+" < ?", window.To)
}

func entryModel(collection cashbook.Collection, columns EntryColumns) any {
	switch collection {
	case cashbook.CollectionCashIn:
		return &CashInEntryRow{EntryColumns: columns}
	case cashbook.CollectionExpense:
		return &ExpenseEntryRow{EntryColumns: columns}
	default:
		return &StockPaymentRow{EntryColumns: columns}
	}
}

func entryColumnsOf(model any) EntryColumns {
	switch row := model.(type) {
	case *CashInEntryRow:
		return row.EntryColumns
	case *ExpenseEntryRow:
		return row.EntryColumns
	case *StockPaymentRow:
		return row.EntryColumns
	}
	return EntryColumns{}
}

func mapCashBook(row CashBookRow) cashbook.CashBook {
	return cashbook.CashBook{
		ID:        row.BookID,
		TenantID:  row.TenantID,
		Name:      row.Name,
		IsDefault: row.IsDefault,
		CreatedAt: row.CreatedAt,
		CreatedBy: row.CreatedBy,
	}
}

func mapEntries(rows []EntryColumns) ([]cashbook.LedgerEntry, error) {
	entries := make([]cashbook.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := mapEntry(row)
		if err != nil {
			return nil, wrapStoreError(errorSubjectEntry, errorCodeInvalid, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func mapEntry(row EntryColumns) (cashbook.LedgerEntry, error) {
	kind, err := cashbook.ParseEntryKind(row.Kind)
	if err != nil {
		return cashbook.LedgerEntry{}, err
	}
	var method cashbook.PaymentMethod
	if row.Method != "" {
		method, err = cashbook.ParsePaymentMethod(row.Method)
		if err != nil {
			return cashbook.LedgerEntry{}, err
		}
	}
	return cashbook.LedgerEntry{
		ID:         row.EntryID,
		Number:     row.Number,
		TenantID:   row.TenantID,
		CashBookID: row.CashBookID,
		Kind:       kind,
		Amount:     row.Amount,
		Method:     method,
		Category:   row.Category,
		Details:    row.Details,
		OccurredAt: row.OccurredAt,
		CreatedBy:  row.CreatedBy,
	}, nil
}

func mapInvoice(row InvoiceRow) (cashbook.Invoice, error) {
	method, err := cashbook.ParsePaymentMethod(row.Method)
	if err != nil {
		return cashbook.Invoice{}, err
	}
	return cashbook.Invoice{
		ID:       row.InvoiceID,
		Number:   row.Number,
		TenantID: row.TenantID,
		Total:    row.Total,
		Method:   method,
		IssuedAt: row.IssuedAt,
	}, nil
}

func mapReport(row ReconciliationReportRow) (cashbook.ReconciliationReport, error) {
	date, err := cashbook.NewDate(row.Date)
	if err != nil {
		return cashbook.ReconciliationReport{}, err
	}
	var summary reportSummary
	if err := json.Unmarshal(row.Summary, &summary); err != nil {
		return cashbook.ReconciliationReport{}, err
	}
	return cashbook.ReconciliationReport{
		ID:            row.ReportID,
		TenantID:      row.TenantID,
		Date:          date,
		ReconciledAt:  row.ReconciledAt,
		ReconciledBy:  row.ReconciledBy,
		CashSales:     summary.CashSales,
		CardSales:     summary.CardSales,
		OnlineSales:   summary.OnlineSales,
		Expenses:      summary.Expenses,
		StockPayments: summary.StockPayments,
	}, nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	return result
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolationCode
	}
	var sqliteErr *gosqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xFF == sqliteConstraintCode
	}
	return false
}

package cashbook

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Reconcile snapshots every not-yet-reconciled transaction of a calendar
// day into an immutable report and locks the included ids against deletion.
// The first run of a date covers the whole day; later runs cover only the
// increment since the previous report's ReconciledAt, so re-reconciling a
// quiet day is a no-op. The returned bool reports whether a report was
// written. All writes happen in one store transaction.
func (service *Service) Reconcile(ctx context.Context, tenantID TenantID, date Date, actor UserID) (ReconciliationReport, bool, error) {
	report, wrote, operationError := service.reconcile(ctx, tenantID, date, actor)
	service.logOperation(ctx, OperationLog{
		Operation: operationReconcile,
		TenantID:  tenantID,
		Actor:     actor,
		Date:      date,
		Error:     operationError,
	})
	if operationError != nil {
		return ReconciliationReport{}, false, operationError
	}
	if !wrote {
		return report, false, nil
	}
	if _, err := service.Refresh(ctx, tenantID, actor); err != nil {
		return ReconciliationReport{}, false, err
	}
	return report, true, nil
}

func (service *Service) reconcile(ctx context.Context, tenantID TenantID, date Date, actor UserID) (ReconciliationReport, bool, error) {
	var (
		report ReconciliationReport
		wrote  bool
	)
	operationError := service.store.WithTx(ctx, func(ctx context.Context, txStore Store) error {
		latest, err := txStore.LatestReport(ctx, tenantID, date)
		if err != nil {
			return err
		}

		window := date.Window(service.location)
		if latest != nil {
			// Incremental run: resume just past the previous report.
			// Note the lower bound is the previous ReconciledAt, not
			// day start, so clock skew between back-to-back runs can
			// exclude a transaction from every report.
			window.From = latest.ReconciledAt
			window.FromExclusive = true
		}

		invoices, err := txStore.ListInvoicesInWindow(ctx, tenantID, window)
		if err != nil {
			return err
		}
		expenses, err := txStore.ListEntriesInWindow(ctx, tenantID, CollectionExpense, window)
		if err != nil {
			return err
		}
		stockPayments, err := txStore.ListEntriesInWindow(ctx, tenantID, CollectionStockPayment, window)
		if err != nil {
			return err
		}

		report = ReconciliationReport{
			TenantID:      tenantID.String(),
			Date:          date,
			ReconciledAt:  service.nowFn(),
			ReconciledBy:  actor.String(),
			CashSales:     invoiceBucket(invoices, MethodCash),
			CardSales:     invoiceBucket(invoices, MethodCard),
			OnlineSales:   invoiceBucket(invoices, MethodOnline),
			Expenses:      entryBucket(expenses),
			StockPayments: entryBucket(stockPayments),
		}
		if report.IsEmpty() {
			return nil
		}

		saved, err := txStore.InsertReport(ctx, report)
		if err != nil {
			return err
		}
		report = saved
		if err := txStore.AddLockedEntryIDs(ctx, tenantID, date, saved.EntryIDs(), saved.ReconciledAt); err != nil {
			return err
		}
		if latest == nil {
			if err := txStore.InsertMark(ctx, ReconciliationMark{
				TenantID:     tenantID.String(),
				Date:         date,
				ReconciledAt: saved.ReconciledAt,
				ReconciledBy: actor.String(),
			}); err != nil {
				return err
			}
		}
		wrote = true
		return nil
	})
	if operationError != nil {
		return ReconciliationReport{}, false, operationError
	}
	return report, wrote, nil
}

// ListReports returns every report saved for a date, oldest first.
func (service *Service) ListReports(ctx context.Context, tenantID TenantID, date Date) ([]ReconciliationReport, error) {
	return service.store.ListReports(ctx, tenantID, date)
}

// DeleteExpense removes an expense entry unless its day is reconciled.
func (service *Service) DeleteExpense(ctx context.Context, tenantID TenantID, entryID string, actor UserID) error {
	return service.deleteGuarded(ctx, tenantID, CollectionExpense, entryID, actor)
}

// DeleteStockPayment removes a stock payment unless its day is reconciled.
func (service *Service) DeleteStockPayment(ctx context.Context, tenantID TenantID, entryID string, actor UserID) error {
	return service.deleteGuarded(ctx, tenantID, CollectionStockPayment, entryID, actor)
}

// deleteGuarded is the single mutation entry point for expense and
// stock-payment deletion. The lock check lives here, not at call sites.
func (service *Service) deleteGuarded(ctx context.Context, tenantID TenantID, collection Collection, entryID string, actor UserID) error {
	operationError := service.deleteEntry(ctx, tenantID, collection, entryID)
	service.logOperation(ctx, OperationLog{
		Operation: operationDeleteEntry,
		TenantID:  tenantID,
		Actor:     actor,
		Error:     operationError,
	})
	if operationError != nil {
		return operationError
	}
	_, err := service.Refresh(ctx, tenantID, actor)
	return err
}

func (service *Service) deleteEntry(ctx context.Context, tenantID TenantID, collection Collection, entryID string) error {
	entry, err := service.store.GetEntry(ctx, tenantID, collection, entryID)
	if err != nil {
		return err
	}
	date := DateOf(entry.OccurredAt, service.location)
	lockedIDs, err := service.store.LockedEntryIDs(ctx, tenantID, date)
	if err != nil {
		return err
	}
	for _, lockedID := range lockedIDs {
		if lockedID == entryID {
			return fmt.Errorf("%w: %s is part of a reconciliation report", ErrLocked, entryID)
		}
	}
	marks, err := service.store.ListMarks(ctx, tenantID)
	if err != nil {
		return err
	}
	for _, mark := range marks {
		if mark.Date == date {
			return fmt.Errorf("%w: %s is reconciled", ErrLocked, date.String())
		}
	}
	return service.store.DeleteEntry(ctx, tenantID, collection, entryID)
}

func invoiceBucket(invoices []Invoice, method PaymentMethod) InvoiceBucket {
	bucket := InvoiceBucket{Total: decimal.Zero}
	for _, invoice := range invoices {
		if invoice.Method != method {
			continue
		}
		bucket.Records = append(bucket.Records, invoice)
		bucket.Total = bucket.Total.Add(invoice.Total)
	}
	return bucket
}

func entryBucket(entries []LedgerEntry) EntryBucket {
	bucket := EntryBucket{Total: decimal.Zero}
	for _, entry := range entries {
		bucket.Records = append(bucket.Records, entry)
		bucket.Total = bucket.Total.Add(entry.Amount)
	}
	return bucket
}

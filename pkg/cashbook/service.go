package cashbook

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// balanceEpsilon is the tolerance under which a book counts as empty.
var balanceEpsilon = decimal.New(1, -2)

// Service contains the domain logic over a Store.
type Service struct {
	store    Store
	nowFn    func() time.Time
	location *time.Location
	logger   OperationLogger

	mu         sync.RWMutex
	snapshots  map[string]Snapshot
	versions   map[string]uint64
	refreshing bool
}

// NewService wires a Service.
func NewService(store Store, now func() time.Time, options ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: store dependency is nil", ErrInvalidServiceConfig)
	}
	if now == nil {
		return nil, fmt.Errorf("%w: clock dependency is nil", ErrInvalidServiceConfig)
	}
	service := &Service{
		store:     store,
		nowFn:     now,
		location:  time.UTC,
		snapshots: map[string]Snapshot{},
		versions:  map[string]uint64{},
	}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	return service, nil
}

// Refresh recomputes the tenant's full application state: the cash-book
// set (provisioning the default book when the tenant has none), per-book
// balances, sales-bucket totals, and the reconciled-date lookup. Balances
// are a full recompute over all historical entries; nothing incremental
// is cached, so stored and derived balances cannot drift.
func (service *Service) Refresh(ctx context.Context, tenantID TenantID, actor UserID) (Snapshot, error) {
	service.setRefreshing(true)
	defer service.setRefreshing(false)

	snapshot, err := service.buildSnapshot(ctx, tenantID, actor)
	service.logOperation(ctx, OperationLog{
		Operation: operationRefresh,
		TenantID:  tenantID,
		Actor:     actor,
		Error:     err,
	})
	if err != nil {
		return Snapshot{}, err
	}

	key := tenantID.String()
	service.mu.Lock()
	service.versions[key]++
	snapshot.Version = service.versions[key]
	service.snapshots[key] = snapshot
	service.mu.Unlock()
	return snapshot, nil
}

func (service *Service) buildSnapshot(ctx context.Context, tenantID TenantID, actor UserID) (Snapshot, error) {
	books, err := service.store.ListCashBooks(ctx, tenantID)
	if err != nil {
		return Snapshot{}, err
	}
	if len(books) == 0 {
		defaultName, nameErr := NewCashBookName(DefaultCashBookName)
		if nameErr != nil {
			return Snapshot{}, nameErr
		}
		created, createErr := service.store.CreateCashBook(ctx, CashBookInput{
			TenantID:  tenantID,
			Name:      defaultName,
			IsDefault: true,
			CreatedBy: actor,
		})
		if createErr != nil {
			return Snapshot{}, createErr
		}
		books = []CashBook{created}
	}

	sums := make(map[Collection]map[string]decimal.Decimal, len(Collections))
	for _, collection := range Collections {
		collectionSums, sumErr := service.store.SumEntriesByBook(ctx, tenantID, collection)
		if sumErr != nil {
			return Snapshot{}, sumErr
		}
		sums[collection] = collectionSums
	}

	// Entries pointing at ids absent from the book set are ignored,
	// not treated as an error.
	balances := make(map[string]decimal.Decimal, len(books))
	for _, book := range books {
		balance := sums[CollectionCashIn][book.ID].
			Sub(sums[CollectionExpense][book.ID]).
			Sub(sums[CollectionStockPayment][book.ID])
		balances[book.ID] = balance
	}

	bucketTotals, err := service.bucketTotals(ctx, tenantID)
	if err != nil {
		return Snapshot{}, err
	}

	marks, err := service.store.ListMarks(ctx, tenantID)
	if err != nil {
		return Snapshot{}, err
	}
	reconciled := make(DateSet, len(marks))
	for _, mark := range marks {
		reconciled.Add(mark.Date)
	}

	return Snapshot{
		TakenAt:         service.nowFn(),
		Books:           books,
		Balances:        balances,
		BucketTotals:    bucketTotals,
		ReconciledDates: reconciled,
	}, nil
}

// bucketTotals derives the three sales-bucket balances from raw invoice
// totals plus transfers touching the bucket sentinel ids.
func (service *Service) bucketTotals(ctx context.Context, tenantID TenantID) (map[PaymentMethod]decimal.Decimal, error) {
	invoiceTotals, err := service.store.SumInvoicesByMethod(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	transferNet, err := service.store.SumTransfersByAccount(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	totals := map[PaymentMethod]decimal.Decimal{
		MethodCash:   invoiceTotals[MethodCash].Add(transferNet[BucketCash]),
		MethodCard:   invoiceTotals[MethodCard].Add(transferNet[BucketCard]),
		MethodOnline: invoiceTotals[MethodOnline].Add(transferNet[BucketOnline]),
	}
	return totals, nil
}

// Snapshot returns the tenant's latest refresh result and whether that
// tenant has refreshed yet. Snapshots are keyed per tenant so one
// tenant's refresh is never visible to another.
func (service *Service) Snapshot(tenantID TenantID) (Snapshot, bool) {
	service.mu.RLock()
	defer service.mu.RUnlock()
	snapshot, loaded := service.snapshots[tenantID.String()]
	return snapshot, loaded
}

// Refreshing reports whether a refresh is currently in flight.
func (service *Service) Refreshing() bool {
	service.mu.RLock()
	defer service.mu.RUnlock()
	return service.refreshing
}

func (service *Service) setRefreshing(value bool) {
	service.mu.Lock()
	service.refreshing = value
	service.mu.Unlock()
}

// bookBalance recomputes one book's balance from the three collections,
// independent of any cached snapshot.
func (service *Service) bookBalance(ctx context.Context, tenantID TenantID, bookID string) (decimal.Decimal, error) {
	balance := decimal.Zero
	for _, collection := range Collections {
		sum, err := service.store.SumEntriesForBook(ctx, tenantID, bookID, collection)
		if err != nil {
			return decimal.Zero, err
		}
		if collection == CollectionCashIn {
			balance = balance.Add(sum)
		} else {
			balance = balance.Sub(sum)
		}
	}
	return balance, nil
}

func (service *Service) findBook(ctx context.Context, tenantID TenantID, bookID string) (CashBook, []CashBook, error) {
	books, err := service.store.ListCashBooks(ctx, tenantID)
	if err != nil {
		return CashBook{}, nil, err
	}
	for _, book := range books {
		if book.ID == bookID {
			return book, books, nil
		}
	}
	return CashBook{}, books, fmt.Errorf("%w: %s", ErrUnknownCashBook, bookID)
}

func (service *Service) logOperation(ctx context.Context, entry OperationLog) {
	if service.logger == nil {
		return
	}
	if entry.Status == "" {
		if entry.Error != nil {
			entry.Status = operationStatusError
		} else {
			entry.Status = operationStatusOK
		}
	}
	service.logger.LogOperation(ctx, entry)
}

func formatSequenceNumber(prefix string, value int64) string {
	return fmt.Sprintf("%s%0*d", prefix, sequenceNumberWidth, value)
}

package cashbook

import (
	"context"
	"errors"
	"testing"
)

const (
	caseListBooksError    = "list books error"
	caseSumEntriesError   = "sum entries error"
	caseListWindowError   = "list window error"
	caseInsertReportError = "insert report error"
	caseInsertMarkError   = "insert mark error"
	caseInsertAuditError  = "insert audit error"
	caseInsertLegError    = "insert leg error"
	errorMismatchMessage  = "expected %v, got %v"
)

var errStoreFailure = errors.New("store error")

func TestRefreshReturnsStoreErrors(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name      string
		configure func(test *testing.T, store *stubStore)
	}{
		{
			name: caseListBooksError,
			configure: func(test *testing.T, store *stubStore) {
				store.listBooksError = errStoreFailure
			},
		},
		{
			name: caseSumEntriesError,
			configure: func(test *testing.T, store *stubStore) {
				store.sumEntriesError = errStoreFailure
			},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			store := newStubStore(test)
			store.seedBook(test, DefaultCashBookName, true)
			testCase.configure(test, store)
			service := mustNewService(test, store)

			_, err := service.Refresh(context.Background(), mustTenantID(test, defaultTenantIDValue), mustUserID(test, defaultUserIDValue))
			if !errors.Is(err, errStoreFailure) {
				test.Fatalf(errorMismatchMessage, errStoreFailure, err)
			}
			if _, loaded := service.Snapshot(mustTenantID(test, defaultTenantIDValue)); loaded {
				test.Fatal("failed refresh must not publish a snapshot")
			}
		})
	}
}

func TestReconcileReturnsStoreErrors(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name      string
		configure func(test *testing.T, store *stubStore)
	}{
		{
			name: caseListWindowError,
			configure: func(test *testing.T, store *stubStore) {
				store.listWindowError = errStoreFailure
			},
		},
		{
			name: caseInsertReportError,
			configure: func(test *testing.T, store *stubStore) {
				store.insertReportError = errStoreFailure
			},
		},
		{
			name: caseInsertMarkError,
			configure: func(test *testing.T, store *stubStore) {
				store.insertMarkError = errStoreFailure
			},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			store := newStubStore(test)
			store.seedBook(test, DefaultCashBookName, true)
			store.seedInvoice(test, "100.00", MethodCash, testClock)
			testCase.configure(test, store)
			service := mustNewService(test, store)

			_, _, err := service.Reconcile(context.Background(), mustTenantID(test, defaultTenantIDValue), mustDate(test, "2026-01-15"), mustUserID(test, defaultUserIDValue))
			if !errors.Is(err, errStoreFailure) {
				test.Fatalf(errorMismatchMessage, errStoreFailure, err)
			}
		})
	}
}

func TestTransferReturnsStoreErrors(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name      string
		configure func(test *testing.T, store *stubStore)
	}{
		{
			name: caseInsertAuditError,
			configure: func(test *testing.T, store *stubStore) {
				store.transferError = errStoreFailure
			},
		},
		{
			name: caseInsertLegError,
			configure: func(test *testing.T, store *stubStore) {
				store.insertEntryError = errStoreFailure
			},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			store := newStubStore(test)
			book := store.seedBook(test, DefaultCashBookName, true)
			testCase.configure(test, store)
			service := mustNewService(test, store)

			_, err := service.Transfer(context.Background(), mustTenantID(test, defaultTenantIDValue), book.ID, BucketCash, mustAmount(test, "10.00"), "", mustUserID(test, defaultUserIDValue))
			if !errors.Is(err, errStoreFailure) {
				test.Fatalf(errorMismatchMessage, errStoreFailure, err)
			}
		})
	}
}

func TestLedgerPageReturnsStoreErrors(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	book := store.seedBook(test, DefaultCashBookName, true)
	service := mustNewService(test, store)
	pager := service.NewLedgerPager(mustTenantID(test, defaultTenantIDValue), book.ID)

	// ListEntriesPage has no injection hook; route the failure through a
	// wrapper that fails every page read.
	failing := &failingPageStore{Store: store}
	failingService := mustNewService(test, failing)
	failingPager := failingService.NewLedgerPager(mustTenantID(test, defaultTenantIDValue), book.ID)
	if _, err := failingPager.NextPage(context.Background()); !errors.Is(err, errStoreFailure) {
		test.Fatalf(errorMismatchMessage, errStoreFailure, err)
	}

	if _, err := pager.NextPage(context.Background()); err != nil {
		test.Fatalf("healthy pager: %v", err)
	}
}

type failingPageStore struct {
	Store
}

func (store *failingPageStore) ListEntriesPage(ctx context.Context, tenantID TenantID, bookID string, collection Collection, cursor *EntryCursor, limit int) ([]LedgerEntry, error) {
	return nil, errStoreFailure
}

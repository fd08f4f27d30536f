package cashbook

import (
	"context"
	"errors"
	"testing"
)

func TestCreateCashBookEnforcesLimit(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	store.seedBook(test, DefaultCashBookName, true)
	store.seedBook(test, "Petty Cash", false)
	store.seedBook(test, "Safe", false)
	store.seedBook(test, "Register Two", false)
	service := mustNewService(test, store)

	_, err := service.CreateCashBook(context.Background(), mustTenantID(test, defaultTenantIDValue), mustCashBookName(test, "One Too Many"), mustUserID(test, defaultUserIDValue))
	if !errors.Is(err, ErrLimitExceeded) {
		test.Fatalf("expected ErrLimitExceeded, got %v", err)
	}
	if len(store.books) != MaxCashBooks {
		test.Fatalf("expected %d books, got %d", MaxCashBooks, len(store.books))
	}
}

func TestCreateCashBookRejectsDuplicateNameCaseInsensitive(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	store.seedBook(test, DefaultCashBookName, true)
	store.seedBook(test, "Petty Cash", false)
	service := mustNewService(test, store)

	_, err := service.CreateCashBook(context.Background(), mustTenantID(test, defaultTenantIDValue), mustCashBookName(test, "PETTY cash"), mustUserID(test, defaultUserIDValue))
	if !errors.Is(err, ErrDuplicateName) {
		test.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestCreateCashBookRefreshesSnapshot(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	store.seedBook(test, DefaultCashBookName, true)
	service := mustNewService(test, store)

	book, err := service.CreateCashBook(context.Background(), mustTenantID(test, defaultTenantIDValue), mustCashBookName(test, "Petty Cash"), mustUserID(test, defaultUserIDValue))
	if err != nil {
		test.Fatalf("create: %v", err)
	}
	if book.IsDefault {
		test.Fatal("created book must not be the default")
	}
	snapshot, loaded := service.Snapshot(mustTenantID(test, defaultTenantIDValue))
	if !loaded {
		test.Fatal("expected snapshot after create")
	}
	if len(snapshot.Books) != 2 {
		test.Fatalf("expected two books in snapshot, got %d", len(snapshot.Books))
	}
	if _, ok := snapshot.Balances[book.ID]; !ok {
		test.Fatal("expected balance entry for new book")
	}
}

func TestRenameCashBookProtectsDefault(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	defaultBook := store.seedBook(test, DefaultCashBookName, true)
	service := mustNewService(test, store)

	err := service.RenameCashBook(context.Background(), mustTenantID(test, defaultTenantIDValue), defaultBook.ID, mustCashBookName(test, "New Name"), mustUserID(test, defaultUserIDValue))
	if !errors.Is(err, ErrProtectedCashBook) {
		test.Fatalf("expected ErrProtectedCashBook, got %v", err)
	}
	if store.books[0].Name != DefaultCashBookName {
		test.Fatalf("default book name changed to %q", store.books[0].Name)
	}
}

func TestRenameCashBookRejectsDuplicateName(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	store.seedBook(test, DefaultCashBookName, true)
	petty := store.seedBook(test, "Petty Cash", false)
	store.seedBook(test, "Safe", false)
	service := mustNewService(test, store)

	err := service.RenameCashBook(context.Background(), mustTenantID(test, defaultTenantIDValue), petty.ID, mustCashBookName(test, "safe"), mustUserID(test, defaultUserIDValue))
	if !errors.Is(err, ErrDuplicateName) {
		test.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestRenameCashBookAllowsKeepingOwnName(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	store.seedBook(test, DefaultCashBookName, true)
	petty := store.seedBook(test, "Petty Cash", false)
	service := mustNewService(test, store)

	if err := service.RenameCashBook(context.Background(), mustTenantID(test, defaultTenantIDValue), petty.ID, mustCashBookName(test, "Petty cash"), mustUserID(test, defaultUserIDValue)); err != nil {
		test.Fatalf("rename: %v", err)
	}
	if store.books[1].Name != "Petty cash" {
		test.Fatalf("expected renamed book, got %q", store.books[1].Name)
	}
}

func TestDeleteCashBookProtectsDefault(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	defaultBook := store.seedBook(test, DefaultCashBookName, true)
	service := mustNewService(test, store)

	err := service.DeleteCashBook(context.Background(), mustTenantID(test, defaultTenantIDValue), defaultBook.ID, mustUserID(test, defaultUserIDValue))
	if !errors.Is(err, ErrProtectedCashBook) {
		test.Fatalf("expected ErrProtectedCashBook, got %v", err)
	}
}

func TestDeleteCashBookRejectsNonZeroBalance(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	store.seedBook(test, DefaultCashBookName, true)
	petty := store.seedBook(test, "Petty Cash", false)
	store.seedEntry(test, petty.ID, EntryCashIn, "10.00", MethodCash, testClock)
	service := mustNewService(test, store)

	err := service.DeleteCashBook(context.Background(), mustTenantID(test, defaultTenantIDValue), petty.ID, mustUserID(test, defaultUserIDValue))
	if !errors.Is(err, ErrNonZeroBalance) {
		test.Fatalf("expected ErrNonZeroBalance, got %v", err)
	}
	if len(store.books) != 2 {
		test.Fatalf("expected book to survive, got %d books", len(store.books))
	}
}

func TestDeleteCashBookAllowsBalanceWithinEpsilon(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	store.seedBook(test, DefaultCashBookName, true)
	petty := store.seedBook(test, "Petty Cash", false)
	store.seedEntry(test, petty.ID, EntryCashIn, "10.00", MethodCash, testClock)
	store.seedEntry(test, petty.ID, EntryExpense, "9.995", "", testClock)
	service := mustNewService(test, store)

	if err := service.DeleteCashBook(context.Background(), mustTenantID(test, defaultTenantIDValue), petty.ID, mustUserID(test, defaultUserIDValue)); err != nil {
		test.Fatalf("delete within epsilon: %v", err)
	}
	if len(store.books) != 1 {
		test.Fatalf("expected one book after delete, got %d", len(store.books))
	}
}

func TestDeleteCashBookRejectsOneCentResidual(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name    string
		cashIn  string
		expense string
	}{
		{name: "positive one cent", cashIn: "10.00", expense: "9.99"},
		{name: "negative one cent", cashIn: "9.99", expense: "10.00"},
	}

	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			store := newStubStore(test)
			store.seedBook(test, DefaultCashBookName, true)
			petty := store.seedBook(test, "Petty Cash", false)
			store.seedEntry(test, petty.ID, EntryCashIn, testCase.cashIn, MethodCash, testClock)
			store.seedEntry(test, petty.ID, EntryExpense, testCase.expense, "", testClock)
			service := mustNewService(test, store)

			err := service.DeleteCashBook(context.Background(), mustTenantID(test, defaultTenantIDValue), petty.ID, mustUserID(test, defaultUserIDValue))
			if !errors.Is(err, ErrNonZeroBalance) {
				test.Fatalf("expected ErrNonZeroBalance, got %v", err)
			}
			if len(store.books) != 2 {
				test.Fatalf("expected book to survive, got %d books", len(store.books))
			}
		})
	}
}

func TestDeleteCashBookUnknownID(test *testing.T) {
	test.Parallel()
	store := newStubStore(test)
	store.seedBook(test, DefaultCashBookName, true)
	service := mustNewService(test, store)

	err := service.DeleteCashBook(context.Background(), mustTenantID(test, defaultTenantIDValue), "book-missing", mustUserID(test, defaultUserIDValue))
	if !errors.Is(err, ErrUnknownCashBook) {
		test.Fatalf("expected ErrUnknownCashBook, got %v", err)
	}
}

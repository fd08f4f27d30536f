package cashbook

import (
	"context"
	"fmt"
)

// CreateCashBook adds a named ledger for the tenant, enforcing the book
// cap and case-insensitive name uniqueness, then refreshes the snapshot.
func (service *Service) CreateCashBook(ctx context.Context, tenantID TenantID, name CashBookName, actor UserID) (CashBook, error) {
	created, operationError := service.createCashBook(ctx, tenantID, name, actor)
	service.logOperation(ctx, OperationLog{
		Operation:  operationCreateCashBook,
		TenantID:   tenantID,
		Actor:      actor,
		CashBookID: created.ID,
		Error:      operationError,
	})
	if operationError != nil {
		return CashBook{}, operationError
	}
	if _, err := service.Refresh(ctx, tenantID, actor); err != nil {
		return CashBook{}, err
	}
	return created, nil
}

func (service *Service) createCashBook(ctx context.Context, tenantID TenantID, name CashBookName, actor UserID) (CashBook, error) {
	books, err := service.store.ListCashBooks(ctx, tenantID)
	if err != nil {
		return CashBook{}, err
	}
	if len(books) >= MaxCashBooks {
		return CashBook{}, fmt.Errorf("%w: at most %d cash books", ErrLimitExceeded, MaxCashBooks)
	}
	for _, book := range books {
		if name.EqualFold(book.Name) {
			return CashBook{}, fmt.Errorf("%w: %s", ErrDuplicateName, book.Name)
		}
	}
	return service.store.CreateCashBook(ctx, CashBookInput{
		TenantID:  tenantID,
		Name:      name,
		CreatedBy: actor,
	})
}

// RenameCashBook updates a book's name. The default book is never renamed.
func (service *Service) RenameCashBook(ctx context.Context, tenantID TenantID, bookID string, name CashBookName, actor UserID) error {
	operationError := service.renameCashBook(ctx, tenantID, bookID, name)
	service.logOperation(ctx, OperationLog{
		Operation:  operationRenameCashBook,
		TenantID:   tenantID,
		Actor:      actor,
		CashBookID: bookID,
		Error:      operationError,
	})
	if operationError != nil {
		return operationError
	}
	_, err := service.Refresh(ctx, tenantID, actor)
	return err
}

func (service *Service) renameCashBook(ctx context.Context, tenantID TenantID, bookID string, name CashBookName) error {
	book, books, err := service.findBook(ctx, tenantID, bookID)
	if err != nil {
		return err
	}
	if book.IsDefault {
		return fmt.Errorf("%w: default cash book cannot be renamed", ErrProtectedCashBook)
	}
	for _, existing := range books {
		if existing.ID != bookID && name.EqualFold(existing.Name) {
			return fmt.Errorf("%w: %s", ErrDuplicateName, existing.Name)
		}
	}
	return service.store.RenameCashBook(ctx, tenantID, bookID, name)
}

// DeleteCashBook removes a book. The default book is protected, and the
// book's balance is recomputed fresh from the three collections right
// before the decision; anything beyond the 0.01 epsilon blocks deletion.
func (service *Service) DeleteCashBook(ctx context.Context, tenantID TenantID, bookID string, actor UserID) error {
	operationError := service.deleteCashBook(ctx, tenantID, bookID)
	service.logOperation(ctx, OperationLog{
		Operation:  operationDeleteCashBook,
		TenantID:   tenantID,
		Actor:      actor,
		CashBookID: bookID,
		Error:      operationError,
	})
	if operationError != nil {
		return operationError
	}
	_, err := service.Refresh(ctx, tenantID, actor)
	return err
}

func (service *Service) deleteCashBook(ctx context.Context, tenantID TenantID, bookID string) error {
	book, _, err := service.findBook(ctx, tenantID, bookID)
	if err != nil {
		return err
	}
	if book.IsDefault {
		return fmt.Errorf("%w: default cash book cannot be deleted", ErrProtectedCashBook)
	}
	balance, err := service.bookBalance(ctx, tenantID, bookID)
	if err != nil {
		return err
	}
	// A residual of exactly 0.01 (either sign) still blocks deletion;
	// only strictly smaller rounding dust is tolerated.
	if balance.Abs().GreaterThanOrEqual(balanceEpsilon) {
		return fmt.Errorf("%w: balance is %s", ErrNonZeroBalance, balance.String())
	}
	return service.store.DeleteCashBook(ctx, tenantID, bookID)
}

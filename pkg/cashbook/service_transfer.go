package cashbook

import (
	"context"
	"fmt"
)

// Transfer moves an amount between two accounts, each either a cash book
// or a sales bucket. It writes the audit record plus a TransferOut expense
// leg when the source is a book and a TransferIn cash-in leg when the
// destination is one, all in a single store transaction. Bucket sides get
// no ledger entry; bucket totals are derived from transfers and invoices.
func (service *Service) Transfer(ctx context.Context, tenantID TenantID, fromID string, toID string, amount Amount, description string, actor UserID) (Transfer, error) {
	transfer, operationError := service.transfer(ctx, tenantID, fromID, toID, amount, description, actor)
	service.logOperation(ctx, OperationLog{
		Operation: operationTransfer,
		TenantID:  tenantID,
		Actor:     actor,
		Amount:    amount.Decimal(),
		Error:     operationError,
	})
	if operationError != nil {
		return Transfer{}, operationError
	}
	if _, err := service.Refresh(ctx, tenantID, actor); err != nil {
		return Transfer{}, err
	}
	return transfer, nil
}

func (service *Service) transfer(ctx context.Context, tenantID TenantID, fromID string, toID string, amount Amount, description string, actor UserID) (Transfer, error) {
	if fromID == toID {
		return Transfer{}, fmt.Errorf("%w: source and destination are the same", ErrInvalidAccount)
	}
	books, err := service.store.ListCashBooks(ctx, tenantID)
	if err != nil {
		return Transfer{}, err
	}
	fromLabel, fromIsBook, err := resolveAccount(books, fromID)
	if err != nil {
		return Transfer{}, err
	}
	toLabel, toIsBook, err := resolveAccount(books, toID)
	if err != nil {
		return Transfer{}, err
	}

	now := service.nowFn()
	var transfer Transfer
	operationError := service.store.WithTx(ctx, func(ctx context.Context, txStore Store) error {
		saved, err := txStore.InsertTransfer(ctx, Transfer{
			TenantID:    tenantID.String(),
			FromID:      fromID,
			FromLabel:   fromLabel,
			ToID:        toID,
			ToLabel:     toLabel,
			Amount:      amount.Decimal(),
			Description: description,
			CreatedAt:   now,
			CreatedBy:   actor.String(),
		})
		if err != nil {
			return err
		}
		transfer = saved

		if fromIsBook {
			sequence, err := txStore.NextSequence(ctx, tenantID, sequencePrefixExpense)
			if err != nil {
				return err
			}
			if _, err := txStore.InsertEntry(ctx, EntryInput{
				TenantID:   tenantID,
				CashBookID: fromID,
				Kind:       EntryTransferOut,
				Number:     formatSequenceNumber(sequencePrefixExpense, sequence),
				Amount:     amount,
				Category:   InternalTransferCategory,
				Details:    "Transfer to " + toLabel,
				OccurredAt: now,
				CreatedBy:  actor,
			}); err != nil {
				return err
			}
		}
		if toIsBook {
			sequence, err := txStore.NextSequence(ctx, tenantID, sequencePrefixCashIn)
			if err != nil {
				return err
			}
			if _, err := txStore.InsertEntry(ctx, EntryInput{
				TenantID:   tenantID,
				CashBookID: toID,
				Kind:       EntryTransferIn,
				Number:     formatSequenceNumber(sequencePrefixCashIn, sequence),
				Amount:     amount,
				Details:    "Transfer from " + fromLabel,
				OccurredAt: now,
				CreatedBy:  actor,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if operationError != nil {
		return Transfer{}, operationError
	}
	return transfer, nil
}

func resolveAccount(books []CashBook, accountID string) (label string, isBook bool, err error) {
	if IsSalesBucket(accountID) {
		return BucketLabel(accountID), false, nil
	}
	for _, book := range books {
		if book.ID == accountID {
			return book.Name, true, nil
		}
	}
	return "", false, fmt.Errorf("%w: %s", ErrInvalidAccount, accountID)
}

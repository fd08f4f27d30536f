package httpapi

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SakunaTharaka/easypos-cashbook/pkg/cashbook"
)

func TestPageTokenRoundTrip(test *testing.T) {
	test.Parallel()

	occurredAt := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	encoded := encodePageToken("book-1", 3, decimal.RequireFromString("125.50"), cashbook.PageCursors{
		CashIn:  &cashbook.EntryCursor{OccurredAt: occurredAt, EntryID: "entry-9"},
		Expense: &cashbook.EntryCursor{OccurredAt: occurredAt.Add(time.Hour), EntryID: "entry-4"},
	})

	page, carry, cursors, err := decodePageToken(encoded, "book-1")
	if err != nil {
		test.Fatalf("decode token: %v", err)
	}
	if page != 3 {
		test.Fatalf("expected page 3, got %d", page)
	}
	if !carry.Equal(decimal.RequireFromString("125.50")) {
		test.Fatalf("expected carry 125.50, got %s", carry)
	}
	if cursors.CashIn == nil || cursors.CashIn.EntryID != "entry-9" {
		test.Fatalf("cash-in cursor not preserved: %+v", cursors.CashIn)
	}
	if !cursors.CashIn.OccurredAt.Equal(occurredAt) {
		test.Fatalf("cash-in cursor time not preserved: %v", cursors.CashIn.OccurredAt)
	}
	if cursors.Expense == nil || cursors.Expense.EntryID != "entry-4" {
		test.Fatalf("expense cursor not preserved: %+v", cursors.Expense)
	}
	if cursors.StockPayment != nil {
		test.Fatalf("expected nil stock-payment cursor, got %+v", cursors.StockPayment)
	}
}

func TestDecodePageTokenEmptyStartsAtPageOne(test *testing.T) {
	test.Parallel()

	page, carry, cursors, err := decodePageToken("", "book-1")
	if err != nil {
		test.Fatalf("decode empty token: %v", err)
	}
	if page != 1 {
		test.Fatalf("expected page 1, got %d", page)
	}
	if !carry.IsZero() {
		test.Fatalf("expected zero carry, got %s", carry)
	}
	if cursors.CashIn != nil || cursors.Expense != nil || cursors.StockPayment != nil {
		test.Fatalf("expected empty cursors, got %+v", cursors)
	}
}

func TestDecodePageTokenRejectsGarbage(test *testing.T) {
	test.Parallel()

	_, _, _, err := decodePageToken("not-base64!!", "book-1")
	if !errors.Is(err, cashbook.ErrInvalidPageCursor) {
		test.Fatalf("expected ErrInvalidPageCursor, got %v", err)
	}
}

func TestDecodePageTokenRejectsOtherCashBook(test *testing.T) {
	test.Parallel()

	encoded := encodePageToken("book-1", 2, decimal.RequireFromString("40.00"), cashbook.PageCursors{
		CashIn: &cashbook.EntryCursor{OccurredAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC), EntryID: "entry-9"},
	})

	_, _, _, err := decodePageToken(encoded, "book-2")
	if !errors.Is(err, cashbook.ErrInvalidPageCursor) {
		test.Fatalf("expected ErrInvalidPageCursor, got %v", err)
	}
}

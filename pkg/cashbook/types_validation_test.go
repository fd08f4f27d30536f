package cashbook

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewTenantIDRejectsBlankValues(test *testing.T) {
	test.Parallel()
	for _, raw := range []string{"", "   ", "\t"} {
		if _, err := NewTenantID(raw); !errors.Is(err, ErrInvalidTenantID) {
			test.Fatalf("raw %q: expected ErrInvalidTenantID, got %v", raw, err)
		}
	}
	value, err := NewTenantID("  tenant-1  ")
	if err != nil {
		test.Fatalf("tenant id: %v", err)
	}
	if value.String() != "tenant-1" {
		test.Fatalf("expected trimmed value, got %q", value.String())
	}
}

func TestNewUserIDRejectsBlankValues(test *testing.T) {
	test.Parallel()
	if _, err := NewUserID(" "); !errors.Is(err, ErrInvalidUserID) {
		test.Fatalf("expected ErrInvalidUserID, got %v", err)
	}
}

func TestNewCashBookNameValidation(test *testing.T) {
	test.Parallel()
	testCases := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "empty", raw: "", wantErr: ErrInvalidCashBookName},
		{name: "whitespace only", raw: "   ", wantErr: ErrInvalidCashBookName},
		{name: "too long", raw: strings.Repeat("x", 81), wantErr: ErrInvalidCashBookName},
		{name: "valid", raw: "Petty Cash"},
		{name: "max length", raw: strings.Repeat("x", 80)},
	}
	for _, testCase := range testCases {
		testCase := testCase
		test.Run(testCase.name, func(test *testing.T) {
			test.Parallel()
			_, err := NewCashBookName(testCase.raw)
			if testCase.wantErr == nil {
				if err != nil {
					test.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, testCase.wantErr) {
				test.Fatalf("expected %v, got %v", testCase.wantErr, err)
			}
		})
	}
}

func TestCashBookNameEqualFold(test *testing.T) {
	test.Parallel()
	name := mustCashBookName(test, "Petty Cash")
	if !name.EqualFold("  PETTY cash ") {
		test.Fatal("expected case-insensitive match")
	}
	if name.EqualFold("Safe") {
		test.Fatal("unexpected match")
	}
}

func TestNewDateValidation(test *testing.T) {
	test.Parallel()
	for _, raw := range []string{"", "2026-13-01", "15-01-2026", "2026/01/15", "yesterday"} {
		if _, err := NewDate(raw); !errors.Is(err, ErrInvalidDate) {
			test.Fatalf("raw %q: expected ErrInvalidDate, got %v", raw, err)
		}
	}
	date, err := NewDate(" 2026-01-15 ")
	if err != nil {
		test.Fatalf("date: %v", err)
	}
	if date.String() != "2026-01-15" {
		test.Fatalf("expected trimmed date, got %q", date.String())
	}
}

func TestDateWindowBoundsAreExclusiveAtDayEnd(test *testing.T) {
	test.Parallel()
	date := mustDate(test, "2026-01-15")
	window := date.Window(time.UTC)
	if !window.From.Equal(time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)) {
		test.Fatalf("unexpected window start %v", window.From)
	}
	if !window.To.Equal(time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC)) {
		test.Fatalf("unexpected window end %v", window.To)
	}
	if window.FromExclusive {
		test.Fatal("first-run window start must be inclusive")
	}
}

func TestDateOfUsesLocation(test *testing.T) {
	test.Parallel()
	location := time.FixedZone("UTC+5", 5*3600)
	// 23:30 UTC is already the next day at UTC+5.
	at := time.Date(2026, 1, 15, 23, 30, 0, 0, time.UTC)
	if got := DateOf(at, location).String(); got != "2026-01-16" {
		test.Fatalf("expected 2026-01-16, got %s", got)
	}
	if got := DateOf(at, time.UTC).String(); got != "2026-01-15" {
		test.Fatalf("expected 2026-01-15, got %s", got)
	}
}

func TestNewAmountRequiresStrictlyPositive(test *testing.T) {
	test.Parallel()
	for _, raw := range []string{"0", "-1", "-0.01"} {
		if _, err := NewAmountFromString(raw); !errors.Is(err, ErrInvalidAmount) {
			test.Fatalf("raw %q: expected ErrInvalidAmount, got %v", raw, err)
		}
	}
	if _, err := NewAmountFromString("not a number"); !errors.Is(err, ErrInvalidAmount) {
		test.Fatalf("expected ErrInvalidAmount for garbage input, got %v", err)
	}
	amount := mustAmount(test, "12.34")
	if amount.String() != "12.34" {
		test.Fatalf("expected 12.34, got %s", amount.String())
	}
}

func TestParseEntryKind(test *testing.T) {
	test.Parallel()
	for _, raw := range []string{"cash_in", "expense", "stock_payment", "transfer_in", "transfer_out"} {
		if _, err := ParseEntryKind(raw); err != nil {
			test.Fatalf("raw %q: %v", raw, err)
		}
	}
	if _, err := ParseEntryKind("withdrawal"); !errors.Is(err, ErrInvalidEntryKind) {
		test.Fatalf("expected ErrInvalidEntryKind, got %v", err)
	}
}

func TestEntryKindSignConvention(test *testing.T) {
	test.Parallel()
	credit := mustDecimal(test, "10")
	if !EntryCashIn.Signed(credit).Equal(credit) || !EntryTransferIn.Signed(credit).Equal(credit) {
		test.Fatal("credit kinds must keep the sign")
	}
	negated := credit.Neg()
	for _, kind := range []EntryKind{EntryExpense, EntryStockPayment, EntryTransferOut} {
		if !kind.Signed(credit).Equal(negated) {
			test.Fatalf("kind %s must negate the amount", kind)
		}
	}
}

func TestEntryKindCollectionMapping(test *testing.T) {
	test.Parallel()
	mapping := map[EntryKind]Collection{
		EntryCashIn:       CollectionCashIn,
		EntryTransferIn:   CollectionCashIn,
		EntryExpense:      CollectionExpense,
		EntryTransferOut:  CollectionExpense,
		EntryStockPayment: CollectionStockPayment,
	}
	for kind, expected := range mapping {
		if kind.Collection() != expected {
			test.Fatalf("kind %s: expected collection %s, got %s", kind, expected, kind.Collection())
		}
	}
}

func TestParsePaymentMethod(test *testing.T) {
	test.Parallel()
	for _, raw := range []string{"Cash", "Card", "Online"} {
		if _, err := ParsePaymentMethod(raw); err != nil {
			test.Fatalf("raw %q: %v", raw, err)
		}
	}
	if _, err := ParsePaymentMethod("cash"); !errors.Is(err, ErrInvalidPaymentMethod) {
		test.Fatalf("expected ErrInvalidPaymentMethod for lowercase, got %v", err)
	}
}

func TestSalesBucketHelpers(test *testing.T) {
	test.Parallel()
	if !IsSalesBucket(BucketCash) || !IsSalesBucket(BucketCard) || !IsSalesBucket(BucketOnline) {
		test.Fatal("expected sentinel ids to be buckets")
	}
	if IsSalesBucket("book-1") {
		test.Fatal("book id is not a bucket")
	}
	if BucketLabel(BucketOnline) != "Online Sales" {
		test.Fatalf("unexpected label %q", BucketLabel(BucketOnline))
	}
	if BucketMethod(BucketCard) != MethodCard {
		test.Fatalf("unexpected method %s", BucketMethod(BucketCard))
	}
}

func TestReportEntryIDsAndIsEmpty(test *testing.T) {
	test.Parallel()
	empty := ReconciliationReport{}
	if !empty.IsEmpty() {
		test.Fatal("zero report must be empty")
	}
	report := ReconciliationReport{
		CashSales: InvoiceBucket{
			Total:   mustDecimal(test, "10"),
			Records: []Invoice{{ID: "invoice-1"}},
		},
		Expenses: EntryBucket{
			Total:   mustDecimal(test, "5"),
			Records: []LedgerEntry{{ID: "entry-1"}},
		},
	}
	if report.IsEmpty() {
		test.Fatal("report with totals must not be empty")
	}
	ids := report.EntryIDs()
	if len(ids) != 2 || ids[0] != "invoice-1" || ids[1] != "entry-1" {
		test.Fatalf("unexpected ids %v", ids)
	}
}

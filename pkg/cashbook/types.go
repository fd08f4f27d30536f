package cashbook

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TenantID identifies the owner of a set of cash books.
type TenantID struct {
	value string
}

// UserID identifies the actor performing an operation.
type UserID struct {
	value string
}

// CashBookName is a validated, display-ready ledger name.
type CashBookName struct {
	value string
}

// Date is a tenant-local calendar day in YYYY-MM-DD form.
type Date struct {
	value string
}

const dateLayout = "2006-01-02"

// NewTenantID validates and normalizes a tenant id.
func NewTenantID(raw string) (TenantID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return TenantID{}, fmt.Errorf("%w: empty value", ErrInvalidTenantID)
	}
	return TenantID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id TenantID) String() string {
	return id.value
}

// NewUserID validates and normalizes a user id.
func NewUserID(raw string) (UserID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return UserID{}, fmt.Errorf("%w: empty value", ErrInvalidUserID)
	}
	return UserID{value: trimmed}, nil
}

// String returns the normalized identifier.
func (id UserID) String() string {
	return id.value
}

// NewCashBookName validates and normalizes a cash book name.
func NewCashBookName(raw string) (CashBookName, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return CashBookName{}, fmt.Errorf("%w: empty value", ErrInvalidCashBookName)
	}
	if len(trimmed) > 80 {
		return CashBookName{}, fmt.Errorf("%w: longer than 80 characters", ErrInvalidCashBookName)
	}
	return CashBookName{value: trimmed}, nil
}

// String returns the normalized name.
func (name CashBookName) String() string {
	return name.value
}

// EqualFold reports whether two names collide case-insensitively.
func (name CashBookName) EqualFold(other string) bool {
	return strings.EqualFold(name.value, strings.TrimSpace(other))
}

// NewDate validates a YYYY-MM-DD calendar day.
func NewDate(raw string) (Date, error) {
	trimmed := strings.TrimSpace(raw)
	if _, err := time.Parse(dateLayout, trimmed); err != nil {
		return Date{}, fmt.Errorf("%w: %q is not YYYY-MM-DD", ErrInvalidDate, raw)
	}
	return Date{value: trimmed}, nil
}

// DateOf converts an instant into a calendar day in the given location.
func DateOf(at time.Time, location *time.Location) Date {
	return Date{value: at.In(location).Format(dateLayout)}
}

// String returns the YYYY-MM-DD value.
func (date Date) String() string {
	return date.value
}

// IsZero reports whether the date is unset.
func (date Date) IsZero() bool {
	return date.value == ""
}

// DayStart returns midnight at the start of the day in the given location.
func (date Date) DayStart(location *time.Location) time.Time {
	parsed, _ := time.ParseInLocation(dateLayout, date.value, location)
	return parsed
}

// Window returns the full-day query window for the date.
func (date Date) Window(location *time.Location) TimeWindow {
	start := date.DayStart(location)
	return TimeWindow{From: start, To: start.AddDate(0, 0, 1)}
}

// DateSet is an opaque lookup of reconciled calendar days.
type DateSet map[string]struct{}

// Has reports whether the date is present.
func (set DateSet) Has(date Date) bool {
	_, ok := set[date.value]
	return ok
}

// Add records a date in the set.
func (set DateSet) Add(date Date) {
	set[date.value] = struct{}{}
}

// Amount is a strictly positive decimal value.
type Amount struct {
	value decimal.Decimal
}

// NewAmount validates an amount and ensures it is strictly positive.
func NewAmount(raw decimal.Decimal) (Amount, error) {
	if !raw.IsPositive() {
		return Amount{}, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	return Amount{value: raw}, nil
}

// NewAmountFromString parses and validates a decimal amount.
func NewAmountFromString(raw string) (Amount, error) {
	parsed, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	return NewAmount(parsed)
}

// Decimal returns the underlying value.
func (amount Amount) Decimal() decimal.Decimal {
	return amount.value
}

// String renders the amount.
func (amount Amount) String() string {
	return amount.value.String()
}

// EntryKind enumerates unified ledger entry kinds.
type EntryKind string

const (
	EntryCashIn       EntryKind = "cash_in"
	EntryExpense      EntryKind = "expense"
	EntryStockPayment EntryKind = "stock_payment"
	EntryTransferIn   EntryKind = "transfer_in"
	EntryTransferOut  EntryKind = "transfer_out"
)

// ParseEntryKind validates a raw entry kind.
func ParseEntryKind(raw string) (EntryKind, error) {
	switch EntryKind(raw) {
	case EntryCashIn, EntryExpense, EntryStockPayment, EntryTransferIn, EntryTransferOut:
		return EntryKind(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidEntryKind, raw)
}

// String returns the raw kind.
func (kind EntryKind) String() string {
	return string(kind)
}

// IsCredit reports whether the kind increases a book balance.
func (kind EntryKind) IsCredit() bool {
	return kind == EntryCashIn || kind == EntryTransferIn
}

// Signed applies the kind's sign convention to a positive amount.
func (kind EntryKind) Signed(amount decimal.Decimal) decimal.Decimal {
	if kind.IsCredit() {
		return amount
	}
	return amount.Neg()
}

// Collection returns the physical collection the kind is stored in.
// Transfer legs reuse the cash-in and expense collections.
func (kind EntryKind) Collection() Collection {
	switch kind {
	case EntryCashIn, EntryTransferIn:
		return CollectionCashIn
	case EntryExpense, EntryTransferOut:
		return CollectionExpense
	default:
		return CollectionStockPayment
	}
}

// Collection names one of the three physical entry collections.
type Collection string

const (
	CollectionCashIn       Collection = "cash_in_entries"
	CollectionExpense      Collection = "expense_entries"
	CollectionStockPayment Collection = "stock_payments"
)

// Collections lists the physical collections in merge order.
var Collections = []Collection{CollectionCashIn, CollectionExpense, CollectionStockPayment}

// PaymentMethod enumerates sales payment methods.
type PaymentMethod string

const (
	MethodCash   PaymentMethod = "Cash"
	MethodCard   PaymentMethod = "Card"
	MethodOnline PaymentMethod = "Online"
)

// ParsePaymentMethod validates a raw payment method.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch PaymentMethod(raw) {
	case MethodCash, MethodCard, MethodOnline:
		return PaymentMethod(raw), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPaymentMethod, raw)
}

// String returns the raw method.
func (method PaymentMethod) String() string {
	return string(method)
}

// Sales bucket sentinel account ids. They are not backed by cash book
// documents; bucket totals are derived from invoices and transfers.
const (
	BucketCash   = "bucket:cash"
	BucketCard   = "bucket:card"
	BucketOnline = "bucket:online"
)

// IsSalesBucket reports whether an account id names a sales bucket.
func IsSalesBucket(accountID string) bool {
	switch accountID {
	case BucketCash, BucketCard, BucketOnline:
		return true
	}
	return false
}

// BucketLabel returns the display label for a sales bucket id.
func BucketLabel(accountID string) string {
	switch accountID {
	case BucketCash:
		return "Cash Sales"
	case BucketCard:
		return "Card Sales"
	case BucketOnline:
		return "Online Sales"
	}
	return ""
}

// BucketMethod maps a sales bucket id to its payment method.
func BucketMethod(accountID string) PaymentMethod {
	switch accountID {
	case BucketCard:
		return MethodCard
	case BucketOnline:
		return MethodOnline
	default:
		return MethodCash
	}
}

// CashBook is a named ledger owned by a tenant.
type CashBook struct {
	ID        string
	TenantID  string
	Name      string
	IsDefault bool
	CreatedAt time.Time
	CreatedBy string
}

// CashBookInput describes a cash book to persist.
type CashBookInput struct {
	TenantID  TenantID
	Name      CashBookName
	IsDefault bool
	CreatedBy UserID
}

// LedgerEntry is the unified read model over the three physical collections.
type LedgerEntry struct {
	ID         string
	Number     string
	TenantID   string
	CashBookID string
	Kind       EntryKind
	Amount     decimal.Decimal
	Method     PaymentMethod
	Category   string
	Details    string
	OccurredAt time.Time
	CreatedBy  string
}

// SignedAmount applies the entry kind's sign convention.
func (entry LedgerEntry) SignedAmount() decimal.Decimal {
	return entry.Kind.Signed(entry.Amount)
}

// EntryInput describes a ledger entry to persist.
type EntryInput struct {
	TenantID   TenantID
	CashBookID string
	Kind       EntryKind
	Number     string
	Amount     Amount
	Method     PaymentMethod
	Category   string
	Details    string
	OccurredAt time.Time
	CreatedBy  UserID
}

// Invoice is a read-only sales record consumed by reconciliation
// and bucket totals.
type Invoice struct {
	ID       string
	Number   string
	TenantID string
	Total    decimal.Decimal
	Method   PaymentMethod
	IssuedAt time.Time
}

// Transfer is the audit record of a value movement between accounts.
type Transfer struct {
	ID          string
	TenantID    string
	FromID      string
	FromLabel   string
	ToID        string
	ToLabel     string
	Amount      decimal.Decimal
	Description string
	CreatedAt   time.Time
	CreatedBy   string
}

// ReconciliationMark flags a calendar day as having at least one report.
type ReconciliationMark struct {
	TenantID     string
	Date         Date
	ReconciledAt time.Time
	ReconciledBy string
}

// InvoiceBucket is a reconciliation summary category over invoices.
type InvoiceBucket struct {
	Total   decimal.Decimal
	Records []Invoice
}

// EntryBucket is a reconciliation summary category over ledger entries.
type EntryBucket struct {
	Total   decimal.Decimal
	Records []LedgerEntry
}

// ReconciliationReport is an immutable snapshot of a day's activity.
// Several reports may exist for one date; each covers only the increment
// since the previous report's ReconciledAt.
type ReconciliationReport struct {
	ID            string
	TenantID      string
	Date          Date
	ReconciledAt  time.Time
	ReconciledBy  string
	CashSales     InvoiceBucket
	CardSales     InvoiceBucket
	OnlineSales   InvoiceBucket
	Expenses      EntryBucket
	StockPayments EntryBucket
}

// EntryIDs collects every source-record id included in the report.
func (report ReconciliationReport) EntryIDs() []string {
	ids := make([]string, 0,
		len(report.CashSales.Records)+len(report.CardSales.Records)+len(report.OnlineSales.Records)+
			len(report.Expenses.Records)+len(report.StockPayments.Records))
	for _, bucket := range []InvoiceBucket{report.CashSales, report.CardSales, report.OnlineSales} {
		for _, record := range bucket.Records {
			ids = append(ids, record.ID)
		}
	}
	for _, bucket := range []EntryBucket{report.Expenses, report.StockPayments} {
		for _, record := range bucket.Records {
			ids = append(ids, record.ID)
		}
	}
	return ids
}

// IsEmpty reports whether every bucket total is zero.
func (report ReconciliationReport) IsEmpty() bool {
	for _, total := range []decimal.Decimal{
		report.CashSales.Total, report.CardSales.Total, report.OnlineSales.Total,
		report.Expenses.Total, report.StockPayments.Total,
	} {
		if !total.IsZero() {
			return false
		}
	}
	return true
}

// TimeWindow bounds a reconciliation query. From is inclusive unless
// FromExclusive is set; To is the exclusive start of the next day, which
// makes the day end inclusive for any timestamp within the day.
type TimeWindow struct {
	From          time.Time
	FromExclusive bool
	To            time.Time
}

// EntryCursor resumes a per-collection range query after the last row seen.
type EntryCursor struct {
	OccurredAt time.Time
	EntryID    string
}

// PageCursors captures, per physical collection, where the next ledger
// page resumes.
type PageCursors struct {
	CashIn       *EntryCursor
	Expense      *EntryCursor
	StockPayment *EntryCursor
}

// Snapshot is the refresh-derived application state consumed by callers.
type Snapshot struct {
	Version         uint64
	TakenAt         time.Time
	Books           []CashBook
	Balances        map[string]decimal.Decimal
	BucketTotals    map[PaymentMethod]decimal.Decimal
	ReconciledDates DateSet
}

// Store is the persistence contract used by Service.
//
// Book-scoped stock-payment reads (sums and ledger pages) cover only
// Cash-method rows; reconciliation windows cover every method.
type Store interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, txStore Store) error) error

	ListCashBooks(ctx context.Context, tenantID TenantID) ([]CashBook, error)
	CreateCashBook(ctx context.Context, input CashBookInput) (CashBook, error)
	RenameCashBook(ctx context.Context, tenantID TenantID, bookID string, name CashBookName) error
	DeleteCashBook(ctx context.Context, tenantID TenantID, bookID string) error

	SumEntriesByBook(ctx context.Context, tenantID TenantID, collection Collection) (map[string]decimal.Decimal, error)
	SumEntriesForBook(ctx context.Context, tenantID TenantID, bookID string, collection Collection) (decimal.Decimal, error)

	InsertEntry(ctx context.Context, input EntryInput) (LedgerEntry, error)
	GetEntry(ctx context.Context, tenantID TenantID, collection Collection, entryID string) (LedgerEntry, error)
	DeleteEntry(ctx context.Context, tenantID TenantID, collection Collection, entryID string) error
	ListEntriesPage(ctx context.Context, tenantID TenantID, bookID string, collection Collection, cursor *EntryCursor, limit int) ([]LedgerEntry, error)
	ListEntriesInWindow(ctx context.Context, tenantID TenantID, collection Collection, window TimeWindow) ([]LedgerEntry, error)

	ListInvoicesInWindow(ctx context.Context, tenantID TenantID, window TimeWindow) ([]Invoice, error)
	SumInvoicesByMethod(ctx context.Context, tenantID TenantID) (map[PaymentMethod]decimal.Decimal, error)

	LatestReport(ctx context.Context, tenantID TenantID, date Date) (*ReconciliationReport, error)
	ListReports(ctx context.Context, tenantID TenantID, date Date) ([]ReconciliationReport, error)
	InsertReport(ctx context.Context, report ReconciliationReport) (ReconciliationReport, error)
	AddLockedEntryIDs(ctx context.Context, tenantID TenantID, date Date, entryIDs []string, reconciledAt time.Time) error
	LockedEntryIDs(ctx context.Context, tenantID TenantID, date Date) ([]string, error)
	InsertMark(ctx context.Context, mark ReconciliationMark) error
	ListMarks(ctx context.Context, tenantID TenantID) ([]ReconciliationMark, error)

	InsertTransfer(ctx context.Context, transfer Transfer) (Transfer, error)
	SumTransfersByAccount(ctx context.Context, tenantID TenantID) (map[string]decimal.Decimal, error)

	NextSequence(ctx context.Context, tenantID TenantID, prefix string) (int64, error)
}

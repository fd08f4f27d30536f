package cashbook

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
)

// LedgerLine is one unified entry with the balance after applying it.
type LedgerLine struct {
	Entry          LedgerEntry
	RunningBalance decimal.Decimal
}

// LedgerPage is one chronological window of a book's unified ledger.
type LedgerPage struct {
	Number         int
	Lines          []LedgerLine
	OpeningBalance decimal.Decimal
	ClosingBalance decimal.Decimal
	HasNext        bool
}

// LedgerPage fetches a single page given explicit cursor state: three
// per-collection range queries of pageSize+1 rows each, merged and
// re-sorted into one chronological stream. The returned cursors resume
// the page after this one; the carry is the opening balance the caller
// must pass back for that page. Pages are strictly sequential: cursor
// state for page N only exists once pages 1..N-1 have been fetched.
func (service *Service) LedgerPage(ctx context.Context, tenantID TenantID, bookID string, cursors PageCursors, carry decimal.Decimal, pageNumber int) (LedgerPage, PageCursors, error) {
	page, nextCursors, operationError := service.ledgerPage(ctx, tenantID, bookID, cursors, carry, pageNumber)
	service.logOperation(ctx, OperationLog{
		Operation:  operationLedgerPage,
		TenantID:   tenantID,
		CashBookID: bookID,
		Error:      operationError,
	})
	return page, nextCursors, operationError
}

func (service *Service) ledgerPage(ctx context.Context, tenantID TenantID, bookID string, cursors PageCursors, carry decimal.Decimal, pageNumber int) (LedgerPage, PageCursors, error) {
	limit := LedgerPageSize + 1
	merged := make([]LedgerEntry, 0, 3*limit)
	for _, collection := range Collections {
		rows, err := service.store.ListEntriesPage(ctx, tenantID, bookID, collection, cursorFor(cursors, collection), limit)
		if err != nil {
			return LedgerPage{}, PageCursors{}, err
		}
		merged = append(merged, rows...)
	}

	sort.SliceStable(merged, func(left, right int) bool {
		if merged[left].OccurredAt.Equal(merged[right].OccurredAt) {
			return merged[left].ID < merged[right].ID
		}
		return merged[left].OccurredAt.Before(merged[right].OccurredAt)
	})

	hasNext := len(merged) > LedgerPageSize
	if hasNext {
		merged = merged[:LedgerPageSize]
	}

	running := carry
	lines := make([]LedgerLine, 0, len(merged))
	for _, entry := range merged {
		running = running.Add(entry.SignedAmount())
		lines = append(lines, LedgerLine{Entry: entry, RunningBalance: running})
	}

	nextCursors := cursors
	for _, entry := range merged {
		cursor := &EntryCursor{OccurredAt: entry.OccurredAt, EntryID: entry.ID}
		switch entry.Kind.Collection() {
		case CollectionCashIn:
			nextCursors.CashIn = cursor
		case CollectionExpense:
			nextCursors.Expense = cursor
		case CollectionStockPayment:
			nextCursors.StockPayment = cursor
		}
	}

	page := LedgerPage{
		Number:         pageNumber,
		Lines:          lines,
		OpeningBalance: carry,
		ClosingBalance: running,
		HasNext:        hasNext,
	}
	return page, nextCursors, nil
}

func cursorFor(cursors PageCursors, collection Collection) *EntryCursor {
	switch collection {
	case CollectionCashIn:
		return cursors.CashIn
	case CollectionExpense:
		return cursors.Expense
	default:
		return cursors.StockPayment
	}
}

// LedgerPager walks a book's unified ledger one page at a time, carrying
// the running balance forward. There is no random page access; jumping to
// page N requires visiting pages 1..N-1 in order.
type LedgerPager struct {
	service  *Service
	tenantID TenantID
	bookID   string
	pages    int
	cursors  []PageCursors
	carries  []decimal.Decimal
}

// NewLedgerPager starts pagination for one cash book at page one.
func (service *Service) NewLedgerPager(tenantID TenantID, bookID string) *LedgerPager {
	return &LedgerPager{
		service:  service,
		tenantID: tenantID,
		bookID:   bookID,
		cursors:  []PageCursors{{}},
		carries:  []decimal.Decimal{decimal.Zero},
	}
}

// NextPage fetches the next sequential page.
func (pager *LedgerPager) NextPage(ctx context.Context) (LedgerPage, error) {
	index := pager.pages
	page, nextCursors, err := pager.service.LedgerPage(ctx, pager.tenantID, pager.bookID, pager.cursors[index], pager.carries[index], index+1)
	if err != nil {
		return LedgerPage{}, err
	}
	pager.pages++
	pager.cursors = append(pager.cursors, nextCursors)
	pager.carries = append(pager.carries, page.ClosingBalance)
	return page, nil
}

// Page reports how many pages have been served so far.
func (pager *LedgerPager) Page() int {
	return pager.pages
}

// Reset switches the pager to a book and restarts from page one.
func (pager *LedgerPager) Reset(bookID string) {
	pager.bookID = bookID
	pager.pages = 0
	pager.cursors = []PageCursors{{}}
	pager.carries = []decimal.Decimal{decimal.Zero}
}

package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SakunaTharaka/easypos-cashbook/pkg/cashbook"
)

// pageToken serializes the resume point of a ledger stream. Pages are
// strictly sequential, so the token for page N encodes everything needed
// to continue from the end of page N-1: per-collection cursors, the
// carried balance, and the next page number.
type pageToken struct {
	CashBookID string            `json:"cash_book_id"`
	Page       int               `json:"page"`
	Carry      string            `json:"carry"`
	Cursors    map[string]cursor `json:"cursors,omitempty"`
}

type cursor struct {
	OccurredAt time.Time `json:"occurred_at"`
	EntryID    string    `json:"entry_id"`
}

const (
	tokenKeyCashIn       = "cash_in"
	tokenKeyExpense      = "expense"
	tokenKeyStockPayment = "stock_payment"
)

func encodePageToken(cashBookID string, page int, carry decimal.Decimal, cursors cashbook.PageCursors) string {
	token := pageToken{
		CashBookID: cashBookID,
		Page:       page,
		Carry:      carry.String(),
		Cursors:    map[string]cursor{},
	}
	put := func(key string, source *cashbook.EntryCursor) {
		if source != nil {
			token.Cursors[key] = cursor{OccurredAt: source.OccurredAt, EntryID: source.EntryID}
		}
	}
	put(tokenKeyCashIn, cursors.CashIn)
	put(tokenKeyExpense, cursors.Expense)
	put(tokenKeyStockPayment, cursors.StockPayment)

	raw, err := json.Marshal(token)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

// decodePageToken validates the token against the cash book being paged;
// cursors and carry from one book must never resume a stream on another.
func decodePageToken(encoded string, cashBookID string) (int, decimal.Decimal, cashbook.PageCursors, error) {
	if encoded == "" {
		return 1, decimal.Zero, cashbook.PageCursors{}, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return 0, decimal.Zero, cashbook.PageCursors{}, fmt.Errorf("%w: %v", cashbook.ErrInvalidPageCursor, err)
	}
	var token pageToken
	if err := json.Unmarshal(raw, &token); err != nil {
		return 0, decimal.Zero, cashbook.PageCursors{}, fmt.Errorf("%w: %v", cashbook.ErrInvalidPageCursor, err)
	}
	if token.Page < 1 {
		return 0, decimal.Zero, cashbook.PageCursors{}, fmt.Errorf("%w: page %d", cashbook.ErrInvalidPageCursor, token.Page)
	}
	if token.CashBookID != cashBookID {
		return 0, decimal.Zero, cashbook.PageCursors{}, fmt.Errorf("%w: token issued for another cash book", cashbook.ErrInvalidPageCursor)
	}
	carry, err := decimal.NewFromString(token.Carry)
	if err != nil {
		return 0, decimal.Zero, cashbook.PageCursors{}, fmt.Errorf("%w: %v", cashbook.ErrInvalidPageCursor, err)
	}

	cursors := cashbook.PageCursors{}
	get := func(key string) *cashbook.EntryCursor {
		stored, ok := token.Cursors[key]
		if !ok {
			return nil
		}
		return &cashbook.EntryCursor{OccurredAt: stored.OccurredAt, EntryID: stored.EntryID}
	}
	cursors.CashIn = get(tokenKeyCashIn)
	cursors.Expense = get(tokenKeyExpense)
	cursors.StockPayment = get(tokenKeyStockPayment)

	return token.Page, carry, cursors, nil
}

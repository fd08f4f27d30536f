package cashbook

const (
	// DefaultCashBookName is the book auto-provisioned for a tenant with no books.
	DefaultCashBookName = "Main Account Cashier"

	// MaxCashBooks caps the number of books a tenant may hold.
	MaxCashBooks = 4

	// LedgerPageSize is the number of unified entries per ledger page.
	LedgerPageSize = 65

	// InternalTransferCategory tags expense entries written by the transfer engine.
	InternalTransferCategory = "Internal Transfer"

	operationRefresh        = "refresh"
	operationCreateCashBook = "create_cash_book"
	operationRenameCashBook = "rename_cash_book"
	operationDeleteCashBook = "delete_cash_book"
	operationLedgerPage     = "ledger_page"
	operationReconcile      = "reconcile"
	operationTransfer       = "transfer"
	operationDeleteEntry    = "delete_entry"

	operationStatusOK    = "ok"
	operationStatusError = "error"

	sequencePrefixCashIn       = "CIN"
	sequencePrefixExpense      = "EXP"
	sequencePrefixStockPayment = "STK"
	sequenceNumberWidth        = 7
)

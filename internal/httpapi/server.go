// Package httpapi exposes the cash-book service over HTTP.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/SakunaTharaka/easypos-cashbook/pkg/cashbook"
)

// Run boots the HTTP facade using the supplied configuration.
func Run(ctx context.Context, cfg Config, service *cashbook.Service, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	handler := &httpHandler{
		logger:  logger,
		service: service,
		cfg:     cfg,
	}

	router := setupRouter(cfg, handler)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("cashbook api listening", zap.String("addr", cfg.ListenAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.Warn("server shutdown error", zap.Error(shutdownErr))
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func setupRouter(cfg Config, handler *httpHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Origin", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.Use(authMiddleware([]byte(cfg.JWTSigningKey), cfg.JWTIssuer))

	api.GET("/state", handler.handleState)
	api.POST("/refresh", handler.handleRefresh)
	api.POST("/cashbooks", handler.handleCreateCashBook)
	api.PATCH("/cashbooks/:id", handler.handleRenameCashBook)
	api.DELETE("/cashbooks/:id", handler.handleDeleteCashBook)
	api.GET("/cashbooks/:id/ledger", handler.handleLedgerPage)
	api.POST("/transfers", handler.handleTransfer)
	api.POST("/reconciliations", handler.handleReconcile)
	api.GET("/reconciliations/:date", handler.handleListReports)
	api.DELETE("/expenses/:id", handler.handleDeleteExpense)
	api.DELETE("/stock-payments/:id", handler.handleDeleteStockPayment)

	return router
}

type httpHandler struct {
	logger  *zap.Logger
	service *cashbook.Service
	cfg     Config
}

func (handler *httpHandler) handleState(ctx *gin.Context) {
	caller, ok := getIdentity(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing identity"))
		return
	}
	snapshot, loaded := handler.service.Snapshot(caller.TenantID)
	if !loaded {
		requestCtx, cancel := handler.requestContext(ctx)
		defer cancel()
		refreshed, err := handler.service.Refresh(requestCtx, caller.TenantID, caller.Actor)
		if err != nil {
			handler.respondError(ctx, err)
			return
		}
		snapshot = refreshed
	}
	ctx.JSON(http.StatusOK, snapshotPayloadFrom(snapshot, handler.service.Refreshing()))
}

func (handler *httpHandler) handleRefresh(ctx *gin.Context) {
	caller, ok := getIdentity(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing identity"))
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	snapshot, err := handler.service.Refresh(requestCtx, caller.TenantID, caller.Actor)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, snapshotPayloadFrom(snapshot, handler.service.Refreshing()))
}

func (handler *httpHandler) handleCreateCashBook(ctx *gin.Context) {
	caller, ok := getIdentity(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing identity"))
		return
	}
	var request createCashBookRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	name, err := cashbook.NewCashBookName(request.Name)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	book, err := handler.service.CreateCashBook(requestCtx, caller.TenantID, name, caller.Actor)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"cash_book": cashBookPayloadFrom(book)})
}

func (handler *httpHandler) handleRenameCashBook(ctx *gin.Context) {
	caller, ok := getIdentity(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing identity"))
		return
	}
	var request renameCashBookRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	name, err := cashbook.NewCashBookName(request.Name)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	if err := handler.service.RenameCashBook(requestCtx, caller.TenantID, ctx.Param("id"), name, caller.Actor); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "renamed"})
}

func (handler *httpHandler) handleDeleteCashBook(ctx *gin.Context) {
	caller, ok := getIdentity(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing identity"))
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	if err := handler.service.DeleteCashBook(requestCtx, caller.TenantID, ctx.Param("id"), caller.Actor); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (handler *httpHandler) handleLedgerPage(ctx *gin.Context) {
	caller, ok := getIdentity(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing identity"))
		return
	}
	page, carry, cursors, err := decodePageToken(ctx.Query("token"), ctx.Param("id"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	ledgerPage, nextCursors, err := handler.service.LedgerPage(requestCtx, caller.TenantID, ctx.Param("id"), cursors, carry, page)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}

	payload := ledgerPagePayloadFrom(ledgerPage)
	if ledgerPage.HasNext {
		payload.NextToken = encodePageToken(ctx.Param("id"), page+1, ledgerPage.ClosingBalance, nextCursors)
	}
	ctx.JSON(http.StatusOK, payload)
}

func (handler *httpHandler) handleTransfer(ctx *gin.Context) {
	caller, ok := getIdentity(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing identity"))
		return
	}
	var request transferRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	amount, err := cashbook.NewAmountFromString(request.Amount)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	transfer, err := handler.service.Transfer(requestCtx, caller.TenantID, request.FromID, request.ToID, amount, request.Description, caller.Actor)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"transfer": transferPayloadFrom(transfer)})
}

func (handler *httpHandler) handleReconcile(ctx *gin.Context) {
	caller, ok := getIdentity(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing identity"))
		return
	}
	var request reconcileRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, errorResponse("invalid_payload", "expected JSON body"))
		return
	}
	date, err := cashbook.NewDate(request.Date)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	report, wrote, err := handler.service.Reconcile(requestCtx, caller.TenantID, date, caller.Actor)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	if !wrote {
		ctx.JSON(http.StatusOK, gin.H{"status": "no_activity"})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"status": "reconciled",
		"report": reportPayloadFrom(report),
	})
}

func (handler *httpHandler) handleListReports(ctx *gin.Context) {
	caller, ok := getIdentity(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing identity"))
		return
	}
	date, err := cashbook.NewDate(ctx.Param("date"))
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	reports, err := handler.service.ListReports(requestCtx, caller.TenantID, date)
	if err != nil {
		handler.respondError(ctx, err)
		return
	}
	payloads := make([]reportPayload, 0, len(reports))
	for _, report := range reports {
		payloads = append(payloads, reportPayloadFrom(report))
	}
	ctx.JSON(http.StatusOK, gin.H{"reports": payloads})
}

func (handler *httpHandler) handleDeleteExpense(ctx *gin.Context) {
	caller, ok := getIdentity(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing identity"))
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	if err := handler.service.DeleteExpense(requestCtx, caller.TenantID, ctx.Param("id"), caller.Actor); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (handler *httpHandler) handleDeleteStockPayment(ctx *gin.Context) {
	caller, ok := getIdentity(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, errorResponse("unauthorized", "missing identity"))
		return
	}
	requestCtx, cancel := handler.requestContext(ctx)
	defer cancel()
	if err := handler.service.DeleteStockPayment(requestCtx, caller.TenantID, ctx.Param("id"), caller.Actor); err != nil {
		handler.respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (handler *httpHandler) requestContext(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), handler.cfg.RequestTimeout)
}

func (handler *httpHandler) respondError(ctx *gin.Context, err error) {
	status, code := classifyError(err)
	if status == http.StatusInternalServerError || status == http.StatusBadGateway {
		handler.logger.Error("request failed", zap.String("path", ctx.FullPath()), zap.Error(err))
	}
	ctx.JSON(status, errorResponse(code, err.Error()))
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, cashbook.ErrInvalidTenantID),
		errors.Is(err, cashbook.ErrInvalidUserID),
		errors.Is(err, cashbook.ErrInvalidCashBookID),
		errors.Is(err, cashbook.ErrInvalidCashBookName),
		errors.Is(err, cashbook.ErrInvalidEntryID),
		errors.Is(err, cashbook.ErrInvalidEntryKind),
		errors.Is(err, cashbook.ErrInvalidPaymentMethod),
		errors.Is(err, cashbook.ErrInvalidDate),
		errors.Is(err, cashbook.ErrInvalidAmount),
		errors.Is(err, cashbook.ErrInvalidAccount),
		errors.Is(err, cashbook.ErrInvalidPageCursor):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, cashbook.ErrUnknownCashBook),
		errors.Is(err, cashbook.ErrUnknownEntry):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, cashbook.ErrDuplicateName):
		return http.StatusConflict, "duplicate_name"
	case errors.Is(err, cashbook.ErrLimitExceeded):
		return http.StatusConflict, "limit_exceeded"
	case errors.Is(err, cashbook.ErrProtectedCashBook):
		return http.StatusForbidden, "protected_cash_book"
	case errors.Is(err, cashbook.ErrNonZeroBalance):
		return http.StatusConflict, "non_zero_balance"
	case errors.Is(err, cashbook.ErrLocked):
		return http.StatusConflict, "reconciled_locked"
	case errors.Is(err, cashbook.ErrStoreUnavailable):
		return http.StatusBadGateway, "store_unavailable"
	}
	return http.StatusInternalServerError, "internal"
}

func errorResponse(code string, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

type createCashBookRequest struct {
	Name string `json:"name"`
}

type renameCashBookRequest struct {
	Name string `json:"name"`
}

type transferRequest struct {
	FromID      string `json:"from_id"`
	ToID        string `json:"to_id"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
}

type reconcileRequest struct {
	Date string `json:"date"`
}

type snapshotPayload struct {
	Version         uint64            `json:"version"`
	TakenAt         time.Time         `json:"taken_at"`
	Refreshing      bool              `json:"refreshing"`
	CashBooks       []cashBookPayload `json:"cash_books"`
	Balances        map[string]string `json:"balances"`
	BucketTotals    map[string]string `json:"bucket_totals"`
	ReconciledDates []string          `json:"reconciled_dates"`
}

type cashBookPayload struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
}

type ledgerPagePayload struct {
	Page           int          `json:"page"`
	Lines          []ledgerLine `json:"lines"`
	OpeningBalance string       `json:"opening_balance"`
	ClosingBalance string       `json:"closing_balance"`
	HasNext        bool         `json:"has_next"`
	NextToken      string       `json:"next_token,omitempty"`
}

type ledgerLine struct {
	EntryID        string    `json:"entry_id"`
	Number         string    `json:"number"`
	Kind           string    `json:"kind"`
	Amount         string    `json:"amount"`
	Method         string    `json:"method,omitempty"`
	Category       string    `json:"category,omitempty"`
	Details        string    `json:"details,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
	RunningBalance string    `json:"running_balance"`
}

type transferPayload struct {
	ID          string    `json:"id"`
	FromID      string    `json:"from_id"`
	FromLabel   string    `json:"from_label"`
	ToID        string    `json:"to_id"`
	ToLabel     string    `json:"to_label"`
	Amount      string    `json:"amount"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type reportPayload struct {
	ID            string               `json:"id"`
	Date          string               `json:"date"`
	ReconciledAt  time.Time            `json:"reconciled_at"`
	ReconciledBy  string               `json:"reconciled_by"`
	CashSales     invoiceBucketPayload `json:"cash_sales"`
	CardSales     invoiceBucketPayload `json:"card_sales"`
	OnlineSales   invoiceBucketPayload `json:"online_sales"`
	Expenses      entryBucketPayload   `json:"expenses"`
	StockPayments entryBucketPayload   `json:"stock_payments"`
}

type invoiceBucketPayload struct {
	Total   string           `json:"total"`
	Records []invoicePayload `json:"records"`
}

type entryBucketPayload struct {
	Total   string       `json:"total"`
	Records []ledgerLine `json:"records"`
}

type invoicePayload struct {
	ID       string    `json:"id"`
	Number   string    `json:"number"`
	Total    string    `json:"total"`
	Method   string    `json:"method"`
	IssuedAt time.Time `json:"issued_at"`
}

func snapshotPayloadFrom(snapshot cashbook.Snapshot, refreshing bool) snapshotPayload {
	books := make([]cashBookPayload, 0, len(snapshot.Books))
	for _, book := range snapshot.Books {
		books = append(books, cashBookPayloadFrom(book))
	}
	balances := make(map[string]string, len(snapshot.Balances))
	for bookID, balance := range snapshot.Balances {
		balances[bookID] = balance.String()
	}
	buckets := make(map[string]string, len(snapshot.BucketTotals))
	for method, total := range snapshot.BucketTotals {
		buckets[method.String()] = total.String()
	}
	dates := make([]string, 0, len(snapshot.ReconciledDates))
	for date := range snapshot.ReconciledDates {
		dates = append(dates, date)
	}
	return snapshotPayload{
		Version:         snapshot.Version,
		TakenAt:         snapshot.TakenAt,
		Refreshing:      refreshing,
		CashBooks:       books,
		Balances:        balances,
		BucketTotals:    buckets,
		ReconciledDates: dates,
	}
}

func cashBookPayloadFrom(book cashbook.CashBook) cashBookPayload {
	return cashBookPayload{
		ID:        book.ID,
		Name:      book.Name,
		IsDefault: book.IsDefault,
		CreatedAt: book.CreatedAt,
	}
}

func ledgerPagePayloadFrom(page cashbook.LedgerPage) ledgerPagePayload {
	lines := make([]ledgerLine, 0, len(page.Lines))
	for _, line := range page.Lines {
		payload := ledgerLineFrom(line.Entry)
		payload.RunningBalance = line.RunningBalance.String()
		lines = append(lines, payload)
	}
	return ledgerPagePayload{
		Page:           page.Number,
		Lines:          lines,
		OpeningBalance: page.OpeningBalance.String(),
		ClosingBalance: page.ClosingBalance.String(),
		HasNext:        page.HasNext,
	}
}

func ledgerLineFrom(entry cashbook.LedgerEntry) ledgerLine {
	return ledgerLine{
		EntryID:    entry.ID,
		Number:     entry.Number,
		Kind:       entry.Kind.String(),
		Amount:     entry.Amount.String(),
		Method:     entry.Method.String(),
		Category:   entry.Category,
		Details:    entry.Details,
		OccurredAt: entry.OccurredAt,
	}
}

func transferPayloadFrom(transfer cashbook.Transfer) transferPayload {
	return transferPayload{
		ID:          transfer.ID,
		FromID:      transfer.FromID,
		FromLabel:   transfer.FromLabel,
		ToID:        transfer.ToID,
		ToLabel:     transfer.ToLabel,
		Amount:      transfer.Amount.String(),
		Description: transfer.Description,
		CreatedAt:   transfer.CreatedAt,
	}
}

func reportPayloadFrom(report cashbook.ReconciliationReport) reportPayload {
	return reportPayload{
		ID:            report.ID,
		Date:          report.Date.String(),
		ReconciledAt:  report.ReconciledAt,
		ReconciledBy:  report.ReconciledBy,
		CashSales:     invoiceBucketPayloadFrom(report.CashSales),
		CardSales:     invoiceBucketPayloadFrom(report.CardSales),
		OnlineSales:   invoiceBucketPayloadFrom(report.OnlineSales),
		Expenses:      entryBucketPayloadFrom(report.Expenses),
		StockPayments: entryBucketPayloadFrom(report.StockPayments),
	}
}

func invoiceBucketPayloadFrom(bucket cashbook.InvoiceBucket) invoiceBucketPayload {
	records := make([]invoicePayload, 0, len(bucket.Records))
	for _, invoice := range bucket.Records {
		records = append(records, invoicePayload{
			ID:       invoice.ID,
			Number:   invoice.Number,
			Total:    invoice.Total.String(),
			Method:   invoice.Method.String(),
			IssuedAt: invoice.IssuedAt,
		})
	}
	return invoiceBucketPayload{Total: bucket.Total.String(), Records: records}
}

func entryBucketPayloadFrom(bucket cashbook.EntryBucket) entryBucketPayload {
	records := make([]ledgerLine, 0, len(bucket.Records))
	for _, entry := range bucket.Records {
		records = append(records, ledgerLineFrom(entry))
	}
	return entryBucketPayload{Total: bucket.Total.String(), Records: records}
}

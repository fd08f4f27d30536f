// Package oplog adapts cash-book operation callbacks onto a zap logger.
package oplog

import (
	"context"

	"go.uber.org/zap"

	"github.com/SakunaTharaka/easypos-cashbook/pkg/cashbook"
)

// ZapLogger emits one structured log line per service operation.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger wraps a zap logger. A nil logger falls back to zap.NewNop.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{logger: logger}
}

// LogOperation implements cashbook.OperationLogger.
func (adapter *ZapLogger) LogOperation(_ context.Context, entry cashbook.OperationLog) {
	fields := []zap.Field{
		zap.String("operation", entry.Operation),
		zap.String("tenant_id", entry.TenantID.String()),
		zap.String("actor", entry.Actor.String()),
		zap.String("status", entry.Status),
	}
	if entry.CashBookID != "" {
		fields = append(fields, zap.String("cash_book_id", entry.CashBookID))
	}
	if !entry.Date.IsZero() {
		fields = append(fields, zap.String("date", entry.Date.String()))
	}
	if !entry.Amount.IsZero() {
		fields = append(fields, zap.String("amount", entry.Amount.String()))
	}
	if entry.Error != nil {
		fields = append(fields, zap.Error(entry.Error))
		adapter.logger.Warn("cashbook operation failed", fields...)
		return
	}
	adapter.logger.Info("cashbook operation", fields...)
}

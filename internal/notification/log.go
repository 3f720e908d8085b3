package notification

import (
	"github.com/fotoforma/backoffice/internal/models"
	"go.uber.org/zap"
)

// LogNotifier writes transitions to the application log. Used when no email
// provider is configured, typically in development.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyTransition logs the transition summary.
func (n *LogNotifier) NotifyTransition(expense *models.Expense, entry *models.HistoryEntry) {
	n.logger.Info("Workflow notification",
		zap.Int64("numero_ci", expense.NumeroCI),
		zap.String("action", entry.Action),
		zap.String("from", entry.PreviousStatus),
		zap.String("to", entry.NewStatus),
		zap.String("actor", entry.ActorName))
}

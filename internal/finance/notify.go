package finance

import (
	"context"

	"fintrack/internal/dates"
	"fintrack/internal/events"
	"fintrack/internal/logger"
	"fintrack/internal/notify"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// analyticsRecord is the SpendingAnalytics body accepted by insight's
// POST /analytics.
type analyticsRecord struct {
	UserID           int64           `json:"userId"`
	CategoryID       int64           `json:"categoryId"`
	AnalysisPeriod   string          `json:"analysisPeriod"`
	PeriodStart      dates.Date      `json:"periodStart"`
	PeriodEnd        dates.Date      `json:"periodEnd"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	TransactionCount int64           `json:"transactionCount"`
}

func newAnalyticsRecord(t Transaction) analyticsRecord {
	start, end := t.TransactionDate.MonthBounds()
	return analyticsRecord{
		UserID:           t.UserID,
		CategoryID:       t.CategoryID,
		AnalysisPeriod:   "MONTHLY",
		PeriodStart:      start,
		PeriodEnd:        end,
		TotalAmount:      t.Amount,
		TransactionCount: 1,
	}
}

func newTransactionEvent(eventType events.EventType, t Transaction) events.TransactionEvent {
	event := events.NewTransactionEvent(eventType)
	event.TransactionID = t.ID
	event.UserID = t.UserID
	event.Type = string(t.Type)
	event.Description = t.Description
	event.Amount = t.Amount
	event.TransactionDate = t.TransactionDate.String()
	if t.Category != nil {
		event.Category = t.Category.Name
	}
	return event
}

// afterWrite hands the best-effort side effects of a transaction write to the
// dispatcher. Nothing here can change the HTTP outcome.
func (h *Handler) afterWrite(eventType events.EventType, t Transaction) {
	if h.dispatcher == nil {
		return
	}
	for _, job := range h.sideEffects(eventType, t) {
		h.dispatcher.Go(job.name, job.run)
	}
}

// afterImport submits the side effects of every imported row as one batch so
// a long statement cannot saturate the dispatcher and lose rows.
func (h *Handler) afterImport(ctx context.Context, rows []Transaction) {
	if h.dispatcher == nil || len(rows) == 0 {
		return
	}
	var jobs []notify.Job
	for _, t := range rows {
		for _, job := range h.sideEffects(events.Created, t) {
			jobs = append(jobs, job.run)
		}
	}
	if !h.dispatcher.Batch(ctx, "statement import side effects", jobs) {
		logger.Log.Warn("statement import side effects skipped", zap.Int("rows", len(rows)))
	}
}

type sideEffect struct {
	name string
	run  notify.Job
}

func (h *Handler) sideEffects(eventType events.EventType, t Transaction) []sideEffect {
	var out []sideEffect

	if h.insight != nil {
		switch eventType {
		case events.Created, events.Updated:
			record := newAnalyticsRecord(t)
			out = append(out, sideEffect{"notify insight analytics", func(ctx context.Context) error {
				return h.insight.Post(ctx, "/analytics", record, nil)
			}})
		case events.Deleted:
			logger.Log.Info("transaction deleted, insight keeps its analytics",
				zap.Int64("transaction_id", t.ID), zap.Int64("user_id", t.UserID))
		}
	}

	if h.publisher != nil {
		event := newTransactionEvent(eventType, t)
		out = append(out, sideEffect{"publish transaction event", func(ctx context.Context) error {
			return h.publisher.Publish(ctx, eventType.Topic(), events.Key(t.UserID), event)
		}})
	}
	return out
}

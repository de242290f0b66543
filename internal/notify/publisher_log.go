package notify

import (
	"context"
	"log/slog"
)

// LogPublisher records events to the log. Used when no Kafka brokers are
// configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) {
	p.logger.InfoContext(ctx, "notification",
		"type", event.Type,
		"msisdn", event.MSISDN,
		"loan_id", event.LoanID,
		"amount", event.Amount,
	)
}

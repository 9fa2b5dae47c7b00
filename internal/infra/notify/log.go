// Package notify delivers booking notices outside the transaction that created them.
package notify

import (
	"context"
	"log/slog"
	"time"

	"table-booking/internal/usecase/shared"
)

// LogNotifier writes each notice as one structured log event.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger.With(slog.String("component", "notifier"))}
}

func (n *LogNotifier) ReservationCreated(ctx context.Context, notice shared.ReservationNotice) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	attrs := []slog.Attr{
		slog.String("reservation_id", notice.ReservationID.String()),
		slog.String("customer_name", notice.CustomerName),
		slog.String("customer_phone", notice.CustomerPhone),
		slog.String("start", notice.Start.Format(time.RFC3339)),
		slog.String("end", notice.End.Format(time.RFC3339)),
		slog.Int("party_size", notice.PartySize),
		slog.String("source", notice.Source),
	}
	if notice.TableNumber != nil {
		attrs = append(attrs, slog.Int("table_number", *notice.TableNumber))
	}
	if notice.Comment != "" {
		attrs = append(attrs, slog.String("comment", notice.Comment))
	}
	n.logger.LogAttrs(ctx, slog.LevelInfo, "reservation created", attrs...)
	return nil
}

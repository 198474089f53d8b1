package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/booking-orchestrator/internal/booking"
	"github.com/example/booking-orchestrator/internal/models"
)

// Logger records guest notifications on the structured log instead of
// sending mail. Message content and templating are out of scope; what
// matters to callers is only whether the send was accepted.
type Logger struct {
	log *slog.Logger
}

func NewLogger(log *slog.Logger) *Logger {
	if log == nil {
		log = slog.Default()
	}
	return &Logger{log: log}
}

func (l *Logger) SendModificationConfirmation(ctx context.Context, b *models.BookingConfirmation, email string) error {
	if email == "" {
		return &booking.NotificationError{Kind: "modification", Err: errors.New("no recipient address")}
	}
	l.log.Info("notification sent",
		"kind", "modification",
		"booking_id", b.BookingID,
		"reference", b.Reference,
		"email", email,
	)
	return nil
}

func (l *Logger) SendCancellationConfirmation(ctx context.Context, b *models.BookingConfirmation, refundAmount float64, email string) error {
	if email == "" {
		return &booking.NotificationError{Kind: "cancellation", Err: errors.New("no recipient address")}
	}
	l.log.Info("notification sent",
		"kind", "cancellation",
		"booking_id", b.BookingID,
		"reference", b.Reference,
		"refund_amount", refundAmount,
		"email", email,
	)
	return nil
}

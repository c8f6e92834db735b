/*
Package notify provides the Notification collaborator used by the dining engine.

PURPOSE:
  Delivers confirmation and cancellation messages to diners. The engine calls
  Notify after the triggering transaction commits and only logs failures.

IMPLEMENTATIONS:
  - LogNotifier:  writes each message as a structured log record
  - AMQPNotifier: publishes each message as JSON to a RabbitMQ exchange,
                  where a mail worker picks it up

SEE ALSO:
  - dining/service.go: Notifier interface and dispatch
*/
package notify

import (
	"context"
	"log/slog"
	"time"
)

// Message is the payload published for each notification.
type Message struct {
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// LogNotifier records notifications in the log instead of delivering them.
type LogNotifier struct {
	Logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, recipient, subject, body string) error {
	n.Logger.LogAttrs(ctx, slog.LevelInfo, "notification",
		slog.String("action", "notify"),
		slog.String("recipient", recipient),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}

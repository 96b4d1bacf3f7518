package bridge

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/blobrelay/internal/record"
)

// AckMessage is the acknowledgment shown after a committed write.
const AckMessage = "Data successfully stored"

// Ack acknowledges one committed write.
type Ack struct {
	Record  record.Record
	Message string
}

// Notifier shows the write acknowledgment to the user.
// Notify must not block for user interaction.
type Notifier interface {
	Notify(ctx context.Context, ack Ack)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(ctx context.Context, ack Ack)

// Notify calls f(ctx, ack).
func (f NotifierFunc) Notify(ctx context.Context, ack Ack) {
	f(ctx, ack)
}

// NopNotifier discards acknowledgments.
type NopNotifier struct{}

// Notify does nothing.
func (NopNotifier) Notify(context.Context, Ack) {}

// LogNotifier logs acknowledgments at info level.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify logs ack.
func (n LogNotifier) Notify(ctx context.Context, ack Ack) {
	l := n.Logger
	if l == nil {
		l = slog.Default()
	}
	l.InfoContext(ctx, ack.Message, "id", ack.Record.ID)
}

// WriterNotifier prints each acknowledgment with its record id, one per line.
type WriterNotifier struct {
	W io.Writer
}

// Notify writes "<message> (id N)".
func (n WriterNotifier) Notify(_ context.Context, ack Ack) {
	fmt.Fprintf(n.W, "%s (id %d)\n", ack.Message, ack.Record.ID)
}

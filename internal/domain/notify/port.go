package notify

import "context"

// Notifier port for the user push channel. Implementations must be
// best-effort: callers treat a Push failure as non-fatal.
type Notifier interface {
	Push(ctx context.Context, title, message string) error
	Enabled() bool
}

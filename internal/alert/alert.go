// Package alert delivers best-effort operator notifications. Alert
// failures must never take down the delivery loop; callers log and move on.
package alert

import "context"

// Alerter notifies an operator about a delivery problem.
type Alerter interface {
	Notify(ctx context.Context, subject, body string) error
}

// Nop is an Alerter that does nothing.
type Nop struct{}

func (Nop) Notify(ctx context.Context, subject, body string) error {
	return nil
}

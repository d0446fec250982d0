// Package notify is the outbound notification port. Dispatch is
// best-effort: the engine logs a failed Send and moves on, it never
// fails the operation that triggered it.
package notify

import "context"

type Notifier interface {
	// Send queues a notification for the customer identified by ownerTaxID.
	Send(ctx context.Context, ownerTaxID string) error
}

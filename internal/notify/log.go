package notify

import (
	"context"
	"log"
)

// Log writes dispatches to the process log. Dev mode only.
type Log struct{}

func NewLog() Log { return Log{} }

func (Log) Send(_ context.Context, ownerTaxID string) error {
	log.Printf("[notify] email dispatch queued owner_tax_id=%s", ownerTaxID)
	return nil
}

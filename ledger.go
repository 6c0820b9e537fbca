package s402

import (
	"sync"
	"time"

	"github.com/w3hf/s402-go/types"
)

// Ledger is an append-only in-memory record of completed payments. Appends
// and snapshots are mutually exclusive, so concurrent payments never lose a
// record and History never observes a partial write.
type Ledger struct {
	mu      sync.Mutex
	records []types.PaymentRecord
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Record appends one payment record.
func (l *Ledger) Record(rec types.PaymentRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, rec)
}

// History returns a point-in-time copy of all records in the order their
// confirmations completed.
func (l *Ledger) History() []types.PaymentRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]types.PaymentRecord, len(l.records))
	copy(out, l.records)
	return out
}

// FindValid returns the most recent record whose payment still covers the
// given resource and token at time now.
func (l *Ledger) FindValid(serviceURL, token string, now time.Time) (types.PaymentRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(l.records) - 1; i >= 0; i-- {
		if l.records[i].Covers(serviceURL, token, now) {
			return l.records[i], true
		}
	}
	return types.PaymentRecord{}, false
}

// Len returns the current number of records.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

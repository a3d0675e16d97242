package paper

import (
	"sync"

	"github.com/samber/lo"

	"stock-trader-go/internal/execution"
)

// Ledger keeps the fills of a run in memory so reports can count trades.
type Ledger struct {
	mu    sync.Mutex
	fills []execution.Fill
}

// NewLedger creates an empty ledger optionally pre-sizing storage.
func NewLedger(capacity int) *Ledger {
	if capacity < 0 {
		capacity = 0
	}
	return &Ledger{fills: make([]execution.Fill, 0, capacity)}
}

// Record appends a fill to the ledger.
func (l *Ledger) Record(fill execution.Fill) {
	l.mu.Lock()
	l.fills = append(l.fills, fill)
	l.mu.Unlock()
}

// Snapshot returns a copy of the recorded fills.
func (l *Ledger) Snapshot() []execution.Fill {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]execution.Fill, len(l.fills))
	copy(out, l.fills)
	return out
}

// CountBySide tallies fills per side.
func (l *Ledger) CountBySide() map[execution.Side]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return lo.CountValuesBy(l.fills, func(f execution.Fill) execution.Side { return f.Side })
}

package events

import (
	"sync"
	"time"
)

// CycleReport summarises one finished poll cycle.
// Decimal values are strings so consumers do not lose precision.
type CycleReport struct {
	Timestamp    time.Time         `json:"ts"`
	CycleID      string            `json:"cycle_id"`
	Outcome      string            `json:"outcome"`
	Decision     string            `json:"decision,omitempty"`
	NavUSD       string            `json:"nav_usd,omitempty"`
	NavBreakdown map[string]string `json:"nav_breakdown,omitempty"`
	IndexUSD     string            `json:"index_usd,omitempty"`
	PremiumPct   string            `json:"premium_pct,omitempty"`
	TxHash       string            `json:"tx_hash,omitempty"`
	ErrorKind    string            `json:"error_kind,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// CycleBroadcaster fans out reports to subscribers via buffered channels
// and remembers the most recent one.
type CycleBroadcaster struct {
	mu      sync.RWMutex
	subs    map[chan CycleReport]struct{}
	buffer  int
	last    CycleReport
	hasLast bool
}

// NewCycleBroadcaster creates a broadcaster with the given per-subscriber buffer.
func NewCycleBroadcaster(buffer int) *CycleBroadcaster {
	if buffer < 1 {
		buffer = 16
	}
	return &CycleBroadcaster{
		subs:   make(map[chan CycleReport]struct{}),
		buffer: buffer,
	}
}

// Publish records r as the latest report and sends it to every subscriber,
// dropping it for subscribers that are not keeping up.
func (b *CycleBroadcaster) Publish(r CycleReport) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = r
	b.hasLast = true
	for ch := range b.subs {
		select {
		case ch <- r:
		default:
			// drop slow consumer
		}
	}
}

// Last returns the most recent report.
func (b *CycleBroadcaster) Last() (CycleReport, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.last, b.hasLast
}

// Subscribe returns a channel that receives reports until Unsubscribe is called.
func (b *CycleBroadcaster) Subscribe() chan CycleReport {
	ch := make(chan CycleReport, b.buffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the channel and closes it.
func (b *CycleBroadcaster) Unsubscribe(ch chan CycleReport) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

package event

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Pools for high-frequency event allocation. The quote feed is the hot
// producer; recycling its events keeps GC pressure off the sequencer loop.
//
// Usage:
//
//	ev := AcquireQuoteEvent()
//	ev.Symbol = "XYZ"
//	// ... hand to the inbox, release after processing ...
//	ReleaseQuoteEvent(ev)
var quotePool = sync.Pool{
	New: func() interface{} {
		return &QuoteEvent{}
	},
}

// AcquireQuoteEvent gets a QuoteEvent from the pool.
// The returned event has zero values and must be initialized.
func AcquireQuoteEvent() *QuoteEvent {
	return quotePool.Get().(*QuoteEvent)
}

// ReleaseQuoteEvent returns a QuoteEvent to the pool.
// The event is reset to zero values before being pooled.
func ReleaseQuoteEvent(ev *QuoteEvent) {
	if ev == nil {
		return
	}
	ev.Seq = 0
	ev.Ts = 0
	ev.Symbol = ""
	ev.NBB = decimal.Decimal{}
	ev.NBO = decimal.Decimal{}
	ev.LimitUp = decimal.Decimal{}
	ev.LimitDown = decimal.Decimal{}

	quotePool.Put(ev)
}

// RefPriceEvent pool
var refPricePool = sync.Pool{
	New: func() interface{} {
		return &RefPriceEvent{}
	},
}

// AcquireRefPriceEvent gets a RefPriceEvent from the pool.
func AcquireRefPriceEvent() *RefPriceEvent {
	return refPricePool.Get().(*RefPriceEvent)
}

// ReleaseRefPriceEvent returns a RefPriceEvent to the pool.
func ReleaseRefPriceEvent(ev *RefPriceEvent) {
	if ev == nil {
		return
	}
	ev.Seq = 0
	ev.Ts = 0
	ev.Symbol = ""
	ev.Price = decimal.Decimal{}

	refPricePool.Put(ev)
}

// Warmup pre-allocates event objects to reduce GC pressure at startup.
// It acquires and releases a batch of events.
func Warmup() {
	const batchSize = 1000

	quoteEvs := make([]*QuoteEvent, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		quoteEvs = append(quoteEvs, AcquireQuoteEvent())
	}
	for _, ev := range quoteEvs {
		ReleaseQuoteEvent(ev)
	}

	refEvs := make([]*RefPriceEvent, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		refEvs = append(refEvs, AcquireRefPriceEvent())
	}
	for _, ev := range refEvs {
		ReleaseRefPriceEvent(ev)
	}
}

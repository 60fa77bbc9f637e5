package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"darkcross/internal/domain"
	"darkcross/internal/event"
	"darkcross/internal/infra"
	"darkcross/internal/policy"

	"github.com/shopspring/decimal"
)

// CrossDecision is a priced crossing opportunity: given the current book,
// the best buy and best sell would execute at Price for Qty. Execution is
// the downstream consumer's job; the engine only prices.
type CrossDecision struct {
	Symbol string          `json:"symbol"`
	BuyID  uint64          `json:"buy_id"`
	SellID uint64          `json:"sell_id"`
	Price  decimal.Decimal `json:"price"`
	Qty    int64           `json:"qty"`
	Seq    uint64          `json:"seq"`
}

// bookState is the per-symbol hotpath state. Buys and sells stay ranked
// best-first by domain.HigherRanked against the held snapshot.
type bookState struct {
	Market    domain.MarketData `json:"market"`
	HasMarket bool              `json:"has_market"` // a valid snapshot has been seen
	RefPrice  decimal.Decimal   `json:"ref_price"`
	HasRef    bool              `json:"has_ref"`
	Buys      []*domain.Order   `json:"buys"`
	Sells     []*domain.Order   `json:"sells"`
}

func (st *bookState) book() *domain.OrderBook {
	return &domain.OrderBook{Buys: st.Buys, Sells: st.Sells}
}

// checkpointEvery is how many events pass between checkpoint writes.
const checkpointEvery = 1000

// Sequencer is the core single-threaded event processor. All book
// mutation, ranking and cross pricing happens on its goroutine; infra
// workers only feed the inbox.
type Sequencer struct {
	inbox       chan event.Event
	books       map[string]*bookState
	nextSeq     uint64
	nextOrderID uint64
	store       domain.CrossRepository
	policies    policy.Chain
	alerts      []*domain.AlertConfig

	// Boundary: used to notify the read model of priced crosses
	onCross  func(*CrossDecision)
	onMarket func(symbol string, md domain.MarketData, buyDepth, sellDepth int)

	mu sync.RWMutex // Used only for external reads (e.g. API)
}

// NewSequencer creates a new sequencer instance.
func NewSequencer(inboxSize int, store domain.CrossRepository, policies policy.Chain, onCross func(*CrossDecision)) *Sequencer {
	return &Sequencer{
		inbox:       make(chan event.Event, inboxSize),
		books:       make(map[string]*bookState),
		nextSeq:     1,
		nextOrderID: 1,
		store:       store,
		policies:    policies,
		onCross:     onCross,
	}
}

// Inbox returns the event channel. External workers send events here.
func (s *Sequencer) Inbox() chan<- event.Event {
	return s.inbox
}

// SetMarketObserver registers a callback invoked after book mutations once
// a valid snapshot is held. Runs on the sequencer goroutine; keep it cheap.
func (s *Sequencer) SetMarketObserver(fn func(symbol string, md domain.MarketData, buyDepth, sellDepth int)) {
	s.onMarket = fn
}

// AddAlert registers a cross-price alert.
func (s *Sequencer) AddAlert(a *domain.AlertConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alerts = append(s.alerts, a)
}

// Run starts the main event loop. This MUST be run in a single goroutine.
func (s *Sequencer) Run(ctx context.Context) {
	slog.Info("Sequencer started (Single-Thread Hotpath)")

	defer func() {
		if r := recover(); r != nil {
			slog.Error("CRITICAL_PANIC_DETECTED", slog.Any("panic", r))
			s.DumpState("panic_dump.json")
			// Halt after dump; a corrupted book must not keep pricing.
			panic(fmt.Sprintf("HALTED: %v", r))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Sequencer stopping...")
			return
		case ev := <-s.inbox:
			s.processEvent(ev)
		}
	}
}

func (s *Sequencer) processEvent(ev event.Event) {
	start := time.Now()

	// 1. Sequence Gap Check (Halt Policy)
	if ev.GetSeq() != s.nextSeq {
		panic(fmt.Sprintf("SEQUENCE_GAP_DETECTED: expected %d, got %d", s.nextSeq, ev.GetSeq()))
	}

	// 2. Logic Dispatch
	s.mu.Lock()
	switch e := ev.(type) {
	case *event.QuoteEvent:
		s.handleQuote(e)
	case *event.RefPriceEvent:
		s.handleRefPrice(e)
	case *event.OrderEvent:
		s.handleOrder(e)
	case *event.CancelEvent:
		s.handleCancel(e)
	default:
		slog.Warn("Unknown event type", slog.Any("type", ev.GetType()))
	}
	s.mu.Unlock()

	// 3. Increment Sequence
	s.nextSeq++

	// Periodic checkpoint of the last processed sequence
	if s.store != nil && (s.nextSeq-1)%checkpointEvery == 0 {
		if err := s.store.SaveCheckpoint(s.nextSeq - 1); err != nil {
			slog.Error("Failed to persist checkpoint", slog.Any("error", err))
		}
	}

	// Recycle pooled feed events now that their payload is consumed
	switch e := ev.(type) {
	case *event.QuoteEvent:
		event.ReleaseQuoteEvent(e)
	case *event.RefPriceEvent:
		event.ReleaseRefPriceEvent(e)
	}

	infra.GlobalMetrics.RecordEvent(time.Since(start).Nanoseconds())
}

func (s *Sequencer) state(symbol string) *bookState {
	st, ok := s.books[symbol]
	if !ok {
		st = &bookState{}
		s.books[symbol] = st
		infra.GlobalMetrics.SetActiveBooks(int32(len(s.books)))
	}
	return st
}

// handleQuote swaps in a new market snapshot. Invalid snapshots are
// counted and dropped: pricing keeps using the last valid one, and no
// cross is attempted on the stale data path.
func (s *Sequencer) handleQuote(e *event.QuoteEvent) {
	st := s.state(e.Symbol)

	md := e.MarketData()
	if !md.Valid() {
		infra.GlobalMetrics.RecordInvalidSnapshot()
		slog.Warn("Dropping invalid market snapshot",
			slog.String("symbol", e.Symbol),
			slog.String("condition", md.Condition().String()))
		return
	}

	st.Market = md
	st.HasMarket = true

	// Re-rank both sides against the frozen snapshot. The comparator is
	// only coherent for a single snapshot, so both sorts use md.
	rankSide(st.Buys, domain.Buy, md)
	rankSide(st.Sells, domain.Sell, md)

	s.notifyMarket(e.Symbol, st)
	s.attemptCross(e.Symbol, st, e.Seq)
}

func (s *Sequencer) notifyMarket(symbol string, st *bookState) {
	if s.onMarket == nil || !st.HasMarket {
		return
	}
	s.onMarket(symbol, st.Market, len(st.Buys), len(st.Sells))
}

func (s *Sequencer) handleRefPrice(e *event.RefPriceEvent) {
	st := s.state(e.Symbol)
	st.RefPrice = e.Price
	st.HasRef = true
	s.attemptCross(e.Symbol, st, e.Seq)
}

func (s *Sequencer) handleOrder(e *event.OrderEvent) {
	o := e.Order // copy; the book owns its snapshot
	st := s.state(o.Symbol)

	o.ID = s.nextOrderID
	o.Time = int64(e.Seq) // arrival stamp: inbox order is time priority

	if !o.Valid() {
		infra.GlobalMetrics.RecordOrderRejected()
		slog.Warn("Rejecting malformed order",
			slog.String("client_id", o.ClientID),
			slog.String("symbol", o.Symbol),
			slog.Any("error", domain.ErrInvalidOrder))
		return
	}

	var mkt *domain.MarketData
	if st.HasMarket {
		mkt = &st.Market
	}
	if err := s.policies.Check(&o, mkt); err != nil {
		infra.GlobalMetrics.RecordOrderRejected()
		slog.Warn("Order rejected by policy",
			slog.String("client_id", o.ClientID),
			slog.String("symbol", o.Symbol),
			slog.Any("error", err))
		return
	}

	s.nextOrderID++

	if o.Side == domain.Buy {
		st.Buys = append(st.Buys, &o)
		if st.HasMarket {
			rankSide(st.Buys, domain.Buy, st.Market)
		}
	} else {
		st.Sells = append(st.Sells, &o)
		if st.HasMarket {
			rankSide(st.Sells, domain.Sell, st.Market)
		}
	}

	if s.store != nil {
		rec := &domain.OrderRecord{
			ID:       o.ID,
			ClientID: o.ClientID,
			Symbol:   o.Symbol,
			Side:     o.Side.String(),
			Type:     o.Type.String(),
			Peg:      o.Peg.String(),
			Qty:      o.Qty,
			MinQty:   o.MinQty,
			Price:    o.Price,
			Time:     o.Time,
		}
		if err := s.store.SaveOrder(rec); err != nil {
			slog.Error("Failed to persist order audit", slog.Any("error", err))
		}
	}

	s.notifyMarket(o.Symbol, st)
	s.attemptCross(o.Symbol, st, e.Seq)
}

func (s *Sequencer) handleCancel(e *event.CancelEvent) {
	st, ok := s.books[e.Symbol]
	if !ok {
		slog.Warn("Cancel for unknown symbol", slog.String("symbol", e.Symbol))
		return
	}

	if removed := removeOrder(&st.Buys, e.OrderID) || removeOrder(&st.Sells, e.OrderID); !removed {
		slog.Warn("Cancel for unknown order",
			slog.String("symbol", e.Symbol),
			slog.Uint64("order_id", e.OrderID),
			slog.Any("error", domain.ErrUnknownOrder))
		return
	}

	s.notifyMarket(e.Symbol, st)
	s.attemptCross(e.Symbol, st, e.Seq)
}

// attemptCross prices the top of the book. It runs only once both a valid
// market snapshot and a reference price are known; an indeterminate result
// is a normal outcome and only counted.
func (s *Sequencer) attemptCross(symbol string, st *bookState, seq uint64) {
	if !st.HasMarket || !st.HasRef {
		return
	}

	price := domain.MatchPrice(st.book(), st.RefPrice)
	if price == nil {
		infra.GlobalMetrics.RecordIndeterminate()
		return
	}

	bb := st.book().BestBuy()
	bs := st.book().BestSell()
	qty := bb.LeavesQty
	if bs.LeavesQty < qty {
		qty = bs.LeavesQty
	}

	decision := &CrossDecision{
		Symbol: symbol,
		BuyID:  bb.ID,
		SellID: bs.ID,
		Price:  *price,
		Qty:    qty,
		Seq:    seq,
	}

	infra.GlobalMetrics.RecordCrossPriced()
	slog.Info("CROSS_PRICED",
		slog.String("symbol", symbol),
		slog.String("price", price.String()),
		slog.Int64("qty", qty))

	if s.store != nil {
		rec := &domain.CrossRecord{
			Symbol: symbol,
			BuyID:  bb.ID,
			SellID: bs.ID,
			Price:  *price,
			Qty:    qty,
			Seq:    seq,
		}
		if err := s.store.SaveCross(rec); err != nil {
			slog.Error("Failed to persist cross decision", slog.Any("error", err))
		}
	}

	s.checkAlerts(symbol, *price, qty)

	if s.onCross != nil {
		s.onCross(decision)
	}
}

func (s *Sequencer) checkAlerts(symbol string, price decimal.Decimal, qty int64) {
	for _, a := range s.alerts {
		if a.Symbol != symbol || !a.CheckCondition(price, qty) {
			continue
		}
		slog.Info("CROSS_ALERT",
			slog.String("symbol", symbol),
			slog.String("price", price.String()),
			slog.Int64("qty", qty),
			slog.String("target", a.TargetPrice.String()),
			slog.String("direction", a.Direction))
		if !a.IsPersistent {
			a.SetActive(false)
		}
	}
}

// rankSide restores best-first order in place for one side of a book.
func rankSide(orders []*domain.Order, side domain.OrderSide, mkt domain.MarketData) {
	sort.SliceStable(orders, func(i, j int) bool {
		return domain.HigherRanked(side, orders[i], orders[j], mkt)
	})
}

func removeOrder(orders *[]*domain.Order, id uint64) bool {
	for i, o := range *orders {
		if o.ID == id {
			*orders = append((*orders)[:i], (*orders)[i+1:]...)
			return true
		}
	}
	return false
}

// BookSnapshot returns a copy of one symbol's book state (external read).
func (s *Sequencer) BookSnapshot(symbol string) (domain.OrderBook, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.books[symbol]
	if !ok {
		return domain.OrderBook{}, false
	}

	snap := domain.OrderBook{
		Buys:  make([]*domain.Order, len(st.Buys)),
		Sells: make([]*domain.Order, len(st.Sells)),
	}
	for i, o := range st.Buys {
		c := *o
		snap.Buys[i] = &c
	}
	for i, o := range st.Sells {
		c := *o
		snap.Sells[i] = &c
	}
	return snap, true
}

// DumpState writes the entire internal state to a file (for post-mortem).
func (s *Sequencer) DumpState(filename string) {
	slog.Info("Dumping internal state...", slog.String("file", filename))

	data := struct {
		NextSeq uint64                `json:"next_seq"`
		Books   map[string]*bookState `json:"books"`
	}{
		NextSeq: s.nextSeq,
		Books:   s.books,
	}

	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("Failed to marshal state", slog.Any("error", err))
		return
	}

	err = os.WriteFile(filename, b, 0644)
	if err != nil {
		slog.Error("Failed to write state dump", slog.Any("error", err))
	}
}

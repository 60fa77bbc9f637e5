package service

import (
	"sort"
	"sync"
	"time"

	"darkcross/internal/domain"
	"darkcross/internal/engine"

	"github.com/shopspring/decimal"
)

// BookView is the externally visible state of one symbol: its market
// snapshot, book depth and the most recent priced cross.
type BookView struct {
	Symbol     string           `json:"symbol"`
	NBB        decimal.Decimal  `json:"nbb"`
	NBO        decimal.Decimal  `json:"nbo"`
	Condition  string           `json:"condition"`
	BuyDepth   int              `json:"buy_depth"`
	SellDepth  int              `json:"sell_depth"`
	LastCross  *decimal.Decimal `json:"last_cross,omitempty"`
	LastQty    int64            `json:"last_qty,omitempty"`
	CrossCount uint64           `json:"cross_count"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// BookService manages the read-model state of all books. The engine pushes
// updates through the callbacks; API handlers read concurrently.
type BookService struct {
	mu    sync.RWMutex
	views map[string]*BookView
}

// NewBookService creates a new BookService instance
func NewBookService() *BookService {
	return &BookService{
		views: make(map[string]*BookView),
	}
}

// GetAll returns all book views sorted by symbol
func (s *BookService) GetAll() []*BookView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*BookView, 0, len(s.views))
	for _, v := range s.views {
		c := *v
		result = append(result, &c)
	}

	// Sort by symbol for consistent ordering
	sort.Slice(result, func(i, j int) bool {
		return result[i].Symbol < result[j].Symbol
	})

	return result
}

// Get returns the view for a specific symbol, nil when unknown.
func (s *BookService) Get(symbol string) *BookView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.views[symbol]
	if !ok {
		return nil
	}
	c := *v
	return &c
}

// UpdateMarket refreshes the snapshot fields of a symbol's view.
func (s *BookService) UpdateMarket(symbol string, md domain.MarketData, buyDepth, sellDepth int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.view(symbol)
	v.NBB = md.NBB
	v.NBO = md.NBO
	v.Condition = md.Condition().String()
	v.BuyDepth = buyDepth
	v.SellDepth = sellDepth
	v.UpdatedAt = time.Now()
}

// OnCross records a priced cross decision. Wired as the engine's cross
// callback, so it runs on the sequencer goroutine and must stay cheap.
func (s *BookService) OnCross(d *engine.CrossDecision) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := s.view(d.Symbol)
	price := d.Price
	v.LastCross = &price
	v.LastQty = d.Qty
	v.CrossCount++
	v.UpdatedAt = time.Now()
}

// view returns the entry for symbol, creating it if needed.
// Must be called with lock held.
func (s *BookService) view(symbol string) *BookView {
	v, ok := s.views[symbol]
	if !ok {
		v = &BookView{Symbol: symbol}
		s.views[symbol] = v
	}
	return v
}

package domain

// OrderBook is a ranked snapshot of one symbol's resting orders. Buys and
// Sells are ordered best-first by HigherRanked; the book itself never
// re-sorts, that is the engine's job. MatchPrice only ever consults the
// first two slots of each side.
type OrderBook struct {
	Buys  []*Order
	Sells []*Order
}

// BestBuy returns the top-ranked buy order, or nil if the side is empty.
func (b *OrderBook) BestBuy() *Order {
	if len(b.Buys) == 0 {
		return nil
	}
	return b.Buys[0]
}

// BestSell returns the top-ranked sell order, or nil if the side is empty.
func (b *OrderBook) BestSell() *Order {
	if len(b.Sells) == 0 {
		return nil
	}
	return b.Sells[0]
}

// NextBuy returns the second-best buy order, or nil.
func (b *OrderBook) NextBuy() *Order {
	if len(b.Buys) < 2 {
		return nil
	}
	return b.Buys[1]
}

// NextSell returns the second-best sell order, or nil.
func (b *OrderBook) NextSell() *Order {
	if len(b.Sells) < 2 {
		return nil
	}
	return b.Sells[1]
}

package domain

import "github.com/shopspring/decimal"

// LessAggressive clamps a limit price toward the less aggressive of the two
// prices. A buy can never execute above its cap, a sell never below its
// floor. A non-positive limitPrice is the "no limit" sentinel and yields
// refPrice unchanged.
func LessAggressive(side OrderSide, limitPrice, refPrice decimal.Decimal) decimal.Decimal {
	if limitPrice.Sign() <= 0 {
		return refPrice
	}
	if side == Buy {
		return decimal.Min(limitPrice, refPrice)
	}
	return decimal.Max(limitPrice, refPrice)
}

// PriorityPrice computes the effective, clamp-adjusted price used to rank an
// order against competitors on the same side of the book.
func PriorityPrice(side OrderSide, o *Order, mkt MarketData) decimal.Decimal {
	switch {
	case o.Type.IsLimitKind():
		if side == Buy {
			return LessAggressive(Buy, o.Price, mkt.NBO)
		}
		return LessAggressive(Sell, o.Price, mkt.NBB)
	case o.Type == Market:
		if side == Buy {
			return mkt.NBO
		}
		return mkt.NBB
	default: // pegged kinds
		switch o.Peg {
		case Far:
			if side == Buy {
				return LessAggressive(side, o.Price, mkt.NBO)
			}
			return LessAggressive(side, o.Price, mkt.NBB)
		case Mid:
			return LessAggressive(side, o.Price, mkt.MidPoint())
		case Near:
			if side == Buy {
				return LessAggressive(side, o.Price, mkt.NBB)
			}
			return LessAggressive(side, o.Price, mkt.NBO)
		default: // NoPeg carries its raw price, unclamped
			return o.Price
		}
	}
}

// HigherRanked reports whether o1 strictly outranks o2 on the given side.
//
// Price decides first: higher priority price wins for buys, lower for
// sells. On a price tie, two conditional indications rank by size, then
// time priority applies, then a firm order outranks a conditional one, and
// the final tie-break is again size.
//
// The comparison is only coherent against a single frozen market snapshot;
// a sort must hold one snapshot for its whole duration. Within one snapshot
// the relation is asymmetric but ties between conditional and firm orders at
// the same priority price resolve by different keys (size vs time), so a
// stable sort is used rather than anything that assumes strict ordering.
func HigherRanked(side OrderSide, o1, o2 *Order, mkt MarketData) bool {
	p1 := PriorityPrice(side, o1, mkt)
	p2 := PriorityPrice(side, o2, mkt)

	cmp := p1.Cmp(p2)
	if side.IsSell() {
		cmp = -cmp
	}
	if cmp > 0 {
		return true
	}
	if cmp < 0 {
		return false
	}

	// Same price level. Conditional indications compete on size first.
	if o1.Type.IsCI() && o2.Type.IsCI() {
		return o1.LeavesQty > o2.LeavesQty
	}

	// Time priority.
	if o1.Time != o2.Time {
		return o1.Time < o2.Time
	}

	// Firm orders outrank conditional indications regardless of time.
	if !o1.Type.IsCI() && o2.Type.IsCI() {
		return true
	}
	if o1.Type.IsCI() && !o2.Type.IsCI() {
		return false
	}

	return o1.LeavesQty > o2.LeavesQty
}

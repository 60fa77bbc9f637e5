package domain

import "github.com/shopspring/decimal"

// MatchPrice determines the price at which the best buy and best sell of a
// ranked book would cross. It returns nil when no single clearing price can
// be established; that is a normal outcome ("retry after the book changes"),
// not an error.
//
// refPrice is the exchange's last stable trade price. It anchors the
// market/market case when the book itself carries no price information.
//
// The rules form an ordered decision table; the first matching rule wins:
//
//  1. either side empty            -> nil
//  2. Limit/Limit or Pegged/Pegged -> older order's price
//  3. Market/Market                -> quantity-matched, bounded by the
//     second-best resting prices around refPrice
//  4. Market vs limit-kind         -> the limit side's price
//  5. pegged-kind vs limit-kind or Market -> quoteCrossPrice, with buy and
//     sell roles swapped as needed
//  6. anything else                -> nil
func MatchPrice(book *OrderBook, refPrice decimal.Decimal) *decimal.Decimal {
	bb := book.BestBuy()
	bs := book.BestSell()
	if bb == nil || bs == nil {
		return nil
	}

	switch {
	case bb.Type == Limit && bs.Type == Limit,
		bb.Type == Pegged && bs.Type == Pegged:
		return ptr(olderPrice(bb, bs))

	case bb.Type == Market && bs.Type == Market:
		return marketMarketPrice(bb, bs, book, refPrice)

	case bb.Type == Market && bs.Type.IsLimitKind():
		// The market side takes liquidity at the resting limit.
		return ptr(bs.Price)

	case bb.Type.IsLimitKind() && bs.Type == Market:
		return ptr(bb.Price)

	case bb.Type.IsPeggedKind() && (bs.Type.IsLimitKind() || bs.Type == Market):
		return quoteCrossPrice(bb, bs, book, true)

	case (bb.Type.IsLimitKind() || bb.Type == Market) && bs.Type.IsPeggedKind():
		return quoteCrossPrice(bs, bb, book, false)

	default:
		// Incompatible combinations, e.g. two conditional indications of
		// mixed kinds, cannot be priced against each other.
		return nil
	}
}

// olderPrice returns the price of the order that arrived first. On an
// identical-time tie the buy side's price is used for determinism; the rule
// is only reachable with equal prices in that case anyway.
func olderPrice(bb, bs *Order) decimal.Decimal {
	if bb.Time > bs.Time {
		return bs.Price
	}
	return bb.Price
}

// marketMarketPrice prices a market-against-market cross. A quantity
// imbalance blocks the cross outright. Otherwise the second-best resting
// orders, when they carry firm prices, bound the reference price.
func marketMarketPrice(bb, bs *Order, book *OrderBook, refPrice decimal.Decimal) *decimal.Decimal {
	if bb.LeavesQty != bs.LeavesQty {
		return nil
	}

	bBid := nextNonMarketPrice(book.NextBuy())
	bAsk := nextNonMarketPrice(book.NextSell())

	switch {
	case bBid == nil && bAsk == nil:
		return ptr(refPrice)
	case bBid == nil:
		if bAsk.LessThan(refPrice) {
			return bAsk
		}
		return ptr(refPrice)
	case bAsk == nil:
		if bBid.GreaterThan(refPrice) {
			return bBid
		}
		return ptr(refPrice)
	default:
		// The bid bound takes precedence over the ask bound.
		if bBid.GreaterThan(refPrice) {
			return bBid
		}
		if bAsk.LessThan(refPrice) {
			return bAsk
		}
		return ptr(refPrice)
	}
}

// nextNonMarketPrice extracts a candidate price bound from a second-best
// order: present and firm-priced, or no bound at all.
func nextNonMarketPrice(o *Order) *decimal.Decimal {
	if o != nil && o.Type != Market {
		return ptr(o.Price)
	}
	return nil
}

// quoteCrossPrice prices a pegged quote against a firm order (limit-kind or
// market). One helper covers all four directional combinations; callers
// swap roles and pass isBuyQuote accordingly.
//
// A resting quote prices the cross unconditionally. An incoming quote
// (strictly younger than the firm order) trades at the resting order's
// price when smaller, consults the resting side's second-best order when
// equal, and cannot be priced at all when larger: a partial fill has no
// single clearing price.
func quoteCrossPrice(quote, other *Order, book *OrderBook, isBuyQuote bool) *decimal.Decimal {
	if quote.Time > other.Time {
		switch {
		case quote.LeavesQty < other.LeavesQty:
			return ptr(other.Price)
		case quote.LeavesQty == other.LeavesQty:
			var next *Order
			if isBuyQuote {
				next = book.NextSell()
			} else {
				next = book.NextBuy()
			}
			if next != nil {
				return ptr(next.Price)
			}
			return ptr(quote.Price)
		default:
			return nil
		}
	}
	return ptr(quote.Price)
}

func ptr(d decimal.Decimal) *decimal.Decimal {
	return &d
}

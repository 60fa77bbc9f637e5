package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func limitAt(price string, qty, ts int64) *Order {
	return &Order{Type: Limit, Price: dec(price), Qty: qty, LeavesQty: qty, Time: ts}
}

func marketAt(qty, ts int64) *Order {
	return &Order{Type: Market, Price: dec("1"), Qty: qty, LeavesQty: qty, Time: ts}
}

func peggedAt(price string, qty, ts int64) *Order {
	return &Order{Type: Pegged, Peg: Mid, Price: dec(price), Qty: qty, LeavesQty: qty, Time: ts}
}

func requirePrice(t *testing.T, want string, got *decimal.Decimal) {
	t.Helper()
	require.NotNil(t, got, "expected fill price %s, got none", want)
	assert.True(t, got.Equal(dec(want)), "expected fill price %s, got %s", want, got)
}

func TestMatchPrice_EmptySides(t *testing.T) {
	ref := dec("100")

	assert.Nil(t, MatchPrice(&OrderBook{}, ref))
	assert.Nil(t, MatchPrice(&OrderBook{Buys: []*Order{limitAt("10", 100, 1)}}, ref))
	assert.Nil(t, MatchPrice(&OrderBook{Sells: []*Order{limitAt("10", 100, 1)}}, ref))
}

func TestMatchPrice_LimitLimit(t *testing.T) {
	t.Run("older order prices the cross", func(t *testing.T) {
		book := &OrderBook{
			Buys:  []*Order{limitAt("12.56", 100, 1)},
			Sells: []*Order{limitAt("12.56", 100, 2)},
		}
		requirePrice(t, "12.56", MatchPrice(book, dec("123.45")))
	})

	t.Run("second sell order does not participate", func(t *testing.T) {
		book := &OrderBook{
			Buys:  []*Order{limitAt("12.56", 100, 1)},
			Sells: []*Order{limitAt("12.56", 100, 2), limitAt("40.00", 100, 3)},
		}
		requirePrice(t, "12.56", MatchPrice(book, dec("123.45")))
	})

	t.Run("older sell side wins", func(t *testing.T) {
		book := &OrderBook{
			Buys:  []*Order{limitAt("40.00", 100, 3)},
			Sells: []*Order{limitAt("12.56", 100, 1), limitAt("12.56", 100, 2)},
		}
		requirePrice(t, "12.56", MatchPrice(book, dec("34.44")))
	})

	t.Run("identical arrival time uses the buy price", func(t *testing.T) {
		book := &OrderBook{
			Buys:  []*Order{limitAt("15.00", 100, 7)},
			Sells: []*Order{limitAt("16.00", 100, 7)},
		}
		requirePrice(t, "15.00", MatchPrice(book, dec("100")))
	})
}

func TestMatchPrice_PeggedPegged(t *testing.T) {
	book := &OrderBook{
		Buys:  []*Order{peggedAt("22.00", 100, 5)},
		Sells: []*Order{peggedAt("21.00", 100, 2)},
	}
	// Sell arrived first, so its price anchors the cross.
	requirePrice(t, "21.00", MatchPrice(book, dec("100")))
}

func TestMatchPrice_MarketMarket(t *testing.T) {
	ref := dec("50")

	t.Run("quantity imbalance blocks the cross", func(t *testing.T) {
		book := &OrderBook{
			Buys:  []*Order{marketAt(100, 1)},
			Sells: []*Order{marketAt(200, 2)},
		}
		assert.Nil(t, MatchPrice(book, ref))
	})

	t.Run("no resting bounds falls back to the reference price", func(t *testing.T) {
		book := &OrderBook{
			Buys:  []*Order{marketAt(100, 1)},
			Sells: []*Order{marketAt(100, 2)},
		}
		requirePrice(t, "50", MatchPrice(book, ref))
	})

	t.Run("market-type second best carries no bound", func(t *testing.T) {
		book := &OrderBook{
			Buys:  []*Order{marketAt(100, 1), marketAt(50, 3)},
			Sells: []*Order{marketAt(100, 2), marketAt(50, 4)},
		}
		requirePrice(t, "50", MatchPrice(book, ref))
	})

	t.Run("ask bound below reference caps the price", func(t *testing.T) {
		book := &OrderBook{
			Buys:  []*Order{marketAt(100, 1)},
			Sells: []*Order{marketAt(100, 2), limitAt("45", 50, 3)},
		}
		requirePrice(t, "45", MatchPrice(book, ref))
	})

	t.Run("ask bound above reference is ignored", func(t *testing.T) {
		book := &OrderBook{
			Buys:  []*Order{marketAt(100, 1)},
			Sells: []*Order{marketAt(100, 2), limitAt("55", 50, 3)},
		}
		requirePrice(t, "50", MatchPrice(book, ref))
	})

	t.Run("bid bound above reference floors the price", func(t *testing.T) {
		book := &OrderBook{
			Buys:  []*Order{marketAt(100, 1), limitAt("58", 50, 3)},
			Sells: []*Order{marketAt(100, 2)},
		}
		requirePrice(t, "58", MatchPrice(book, ref))
	})

	t.Run("bid bound below reference is ignored", func(t *testing.T) {
		book := &OrderBook{
			Buys:  []*Order{marketAt(100, 1), limitAt("42", 50, 3)},
			Sells: []*Order{marketAt(100, 2)},
		}
		requirePrice(t, "50", MatchPrice(book, ref))
	})

	t.Run("bid bound is evaluated before the ask bound", func(t *testing.T) {
		book := &OrderBook{
			Buys:  []*Order{marketAt(100, 1), limitAt("58", 50, 3)},
			Sells: []*Order{marketAt(100, 2), limitAt("44", 50, 4)},
		}
		requirePrice(t, "58", MatchPrice(book, ref))
	})

	t.Run("both bounds straddling reference yields the reference", func(t *testing.T) {
		book := &OrderBook{
			Buys:  []*Order{marketAt(100, 1), limitAt("42", 50, 3)},
			Sells: []*Order{marketAt(100, 2), limitAt("55", 50, 4)},
		}
		requirePrice(t, "50", MatchPrice(book, ref))
	})
}

func TestMatchPrice_MarketLimit(t *testing.T) {
	t.Run("market buy takes the resting sell limit", func(t *testing.T) {
		book := &OrderBook{
			Buys:  []*Order{marketAt(100, 2)},
			Sells: []*Order{limitAt("40.00", 100, 1)},
		}
		requirePrice(t, "40.00", MatchPrice(book, dec("100")))
	})

	t.Run("market sell takes the resting buy limit", func(t *testing.T) {
		book := &OrderBook{
			Buys:  []*Order{limitAt("39.50", 100, 1)},
			Sells: []*Order{marketAt(100, 2)},
		}
		requirePrice(t, "39.50", MatchPrice(book, dec("100")))
	})

	t.Run("conditional limit kinds price the market side too", func(t *testing.T) {
		ci := limitAt("41.00", 100, 1)
		ci.Type = LimitCI
		book := &OrderBook{
			Buys:  []*Order{marketAt(100, 2)},
			Sells: []*Order{ci},
		}
		requirePrice(t, "41.00", MatchPrice(book, dec("100")))
	})
}

func TestMatchPrice_QuoteAgainstFirm(t *testing.T) {
	t.Run("resting buy quote prices the cross unconditionally", func(t *testing.T) {
		book := &OrderBook{
			Buys:  []*Order{peggedAt("20.00", 100, 1)},
			Sells: []*Order{limitAt("19.00", 300, 5)},
		}
		requirePrice(t, "20.00", MatchPrice(book, dec("100")))
	})

	t.Run("incoming smaller quote takes the resting price", func(t *testing.T) {
		book := &OrderBook{
			Buys:  []*Order{peggedAt("20.00", 100, 9)},
			Sells: []*Order{limitAt("19.00", 300, 5)},
		}
		requirePrice(t, "19.00", MatchPrice(book, dec("100")))
	})

	t.Run("incoming equal quote consults the resting side's second best", func(t *testing.T) {
		book := &OrderBook{
			Buys:  []*Order{peggedAt("20.00", 300, 9)},
			Sells: []*Order{limitAt("19.00", 300, 5), limitAt("19.50", 100, 6)},
		}
		requirePrice(t, "19.50", MatchPrice(book, dec("100")))
	})

	t.Run("incoming equal quote with no second best uses its own price", func(t *testing.T) {
		book := &OrderBook{
			Buys:  []*Order{peggedAt("20.00", 300, 9)},
			Sells: []*Order{limitAt("19.00", 300, 5)},
		}
		requirePrice(t, "20.00", MatchPrice(book, dec("100")))
	})

	t.Run("incoming larger quote cannot be priced", func(t *testing.T) {
		book := &OrderBook{
			Buys:  []*Order{peggedAt("20.00", 500, 9)},
			Sells: []*Order{limitAt("19.00", 300, 5)},
		}
		assert.Nil(t, MatchPrice(book, dec("100")))
	})

	t.Run("sell-side quote swaps the roles", func(t *testing.T) {
		book := &OrderBook{
			Buys:  []*Order{limitAt("21.00", 300, 5), limitAt("20.50", 100, 6)},
			Sells: []*Order{peggedAt("20.00", 300, 9)},
		}
		// Incoming sell quote, equal size: the buy side's second best prices it.
		requirePrice(t, "20.50", MatchPrice(book, dec("100")))
	})

	t.Run("quote against market order", func(t *testing.T) {
		book := &OrderBook{
			Buys:  []*Order{peggedAt("20.00", 100, 1)},
			Sells: []*Order{marketAt(100, 5)},
		}
		requirePrice(t, "20.00", MatchPrice(book, dec("100")))
	})

	t.Run("incoming sell quote against resting market buy", func(t *testing.T) {
		book := &OrderBook{
			Buys:  []*Order{marketAt(300, 2)},
			Sells: []*Order{peggedAt("20.00", 100, 9)},
		}
		// Incoming smaller quote takes the resting order's price.
		requirePrice(t, "1", MatchPrice(book, dec("100")))
	})
}

func TestMatchPrice_IncompatibleCombinations(t *testing.T) {
	ciBuy := limitAt("20.00", 100, 1)
	ciBuy.Type = LimitCI
	ciSell := limitAt("20.00", 100, 2)
	ciSell.Type = LimitCI

	t.Run("two conditional limits", func(t *testing.T) {
		book := &OrderBook{Buys: []*Order{ciBuy}, Sells: []*Order{ciSell}}
		assert.Nil(t, MatchPrice(book, dec("100")))
	})

	t.Run("mixed limit kinds", func(t *testing.T) {
		firmUp := limitAt("20.00", 100, 2)
		firmUp.Type = FirmUpLimit
		book := &OrderBook{Buys: []*Order{limitAt("20.00", 100, 1)}, Sells: []*Order{firmUp}}
		assert.Nil(t, MatchPrice(book, dec("100")))
	})

	t.Run("mixed pegged kinds", func(t *testing.T) {
		ciPeg := peggedAt("20.00", 100, 2)
		ciPeg.Type = PeggedCI
		book := &OrderBook{Buys: []*Order{peggedAt("20.00", 100, 1)}, Sells: []*Order{ciPeg}}
		assert.Nil(t, MatchPrice(book, dec("100")))
	})
}

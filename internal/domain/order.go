package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OrderSide identifies which half of the book an order belongs to.
// SellShort prices and ranks exactly like Sell everywhere in this package.
type OrderSide int

const (
	Buy OrderSide = iota + 1
	Sell
	SellShort
)

// String returns the string representation of OrderSide
func (s OrderSide) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	case SellShort:
		return "SELL_SHORT"
	default:
		return "UNKNOWN"
	}
}

// IsSell reports whether the side rests on the offer half of the book.
func (s OrderSide) IsSell() bool {
	return s == Sell || s == SellShort
}

// ParseSide maps the wire representation back to an OrderSide.
func ParseSide(s string) (OrderSide, error) {
	switch s {
	case "BUY":
		return Buy, nil
	case "SELL":
		return Sell, nil
	case "SELL_SHORT":
		return SellShort, nil
	default:
		return 0, fmt.Errorf("unknown side: %q", s)
	}
}

// OrderType is the closed set of order types the crossing logic understands.
type OrderType int

const (
	Market OrderType = iota + 1
	Limit
	Pegged
	PeggedCI
	LimitCI
	FirmUpPegged
	FirmUpLimit
)

// String returns the string representation of OrderType
func (t OrderType) String() string {
	switch t {
	case Market:
		return "MARKET"
	case Limit:
		return "LIMIT"
	case Pegged:
		return "PEGGED"
	case PeggedCI:
		return "PEGGED_CI"
	case LimitCI:
		return "LIMIT_CI"
	case FirmUpPegged:
		return "FIRM_UP_PEGGED"
	case FirmUpLimit:
		return "FIRM_UP_LIMIT"
	default:
		return "UNKNOWN"
	}
}

// ParseType maps the wire representation back to an OrderType.
func ParseType(s string) (OrderType, error) {
	switch s {
	case "MARKET":
		return Market, nil
	case "LIMIT":
		return Limit, nil
	case "PEGGED":
		return Pegged, nil
	case "PEGGED_CI":
		return PeggedCI, nil
	case "LIMIT_CI":
		return LimitCI, nil
	case "FIRM_UP_PEGGED":
		return FirmUpPegged, nil
	case "FIRM_UP_LIMIT":
		return FirmUpLimit, nil
	default:
		return 0, fmt.Errorf("unknown order type: %q", s)
	}
}

// IsCI reports whether the type is a Conditional Indication: a non-firm
// order that needs a separate firm-up before it can trade at full size.
func (t OrderType) IsCI() bool {
	return t == PeggedCI || t == LimitCI
}

// IsLimitKind reports whether the type carries a firm limit price.
func (t OrderType) IsLimitKind() bool {
	return t == Limit || t == LimitCI || t == FirmUpLimit
}

// IsPeggedKind reports whether the type tracks a reference point of the NBBO.
func (t OrderType) IsPeggedKind() bool {
	return t == Pegged || t == PeggedCI || t == FirmUpPegged
}

// OrderPeg selects which NBBO reference point a pegged-kind order tracks.
// Meaningful only for pegged-kind order types.
type OrderPeg int

const (
	NoPeg OrderPeg = iota
	Near
	Mid
	Far
)

// String returns the string representation of OrderPeg
func (p OrderPeg) String() string {
	switch p {
	case Near:
		return "NEAR"
	case Mid:
		return "MID"
	case Far:
		return "FAR"
	default:
		return "NO_PEG"
	}
}

// ParsePeg maps the wire representation back to an OrderPeg. The empty
// string reads as NoPeg so non-pegged orders can omit the field.
func ParsePeg(s string) (OrderPeg, error) {
	switch s {
	case "", "NO_PEG":
		return NoPeg, nil
	case "NEAR":
		return Near, nil
	case "MID":
		return Mid, nil
	case "FAR":
		return Far, nil
	default:
		return 0, fmt.Errorf("unknown peg: %q", s)
	}
}

// Order is an immutable order snapshot. The pricing functions never mutate
// one; the engine replaces snapshots wholesale.
//
// Price <= 0 is permitted only as the internal "no limit" sentinel consumed
// by LessAggressive. Orders entering a book must satisfy Valid().
type Order struct {
	ID        uint64          `json:"id"`        // unique within a book, assigned by the engine
	ClientID  string          `json:"client_id"` // owner-supplied id (uuid at the API edge)
	Symbol    string          `json:"symbol"`
	Side      OrderSide       `json:"side"`
	Type      OrderType       `json:"type"`
	Peg       OrderPeg        `json:"peg"`
	Qty       int64           `json:"qty"`        // originally requested quantity
	MinQty    int64           `json:"min_qty"`    // minimum acceptable cross size
	LeavesQty int64           `json:"leaves_qty"` // remaining unfilled quantity
	Price     decimal.Decimal `json:"price"`
	Time      int64           `json:"time"` // monotonically increasing arrival stamp
}

// Valid reports whether the order is well formed. The pricing functions
// assume this holds and do not re-check it on every call.
func (o *Order) Valid() bool {
	return o.LeavesQty <= o.Qty &&
		o.Time >= 0 &&
		o.Price.Sign() > 0 &&
		o.Qty > 0 &&
		o.LeavesQty >= 0
}

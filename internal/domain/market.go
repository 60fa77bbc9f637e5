package domain

import "github.com/shopspring/decimal"

// MarketCondition classifies the shape of the NBBO.
type MarketCondition int

const (
	Normal MarketCondition = iota + 1
	Crossed
	Locked
)

// String returns the string representation of MarketCondition
func (c MarketCondition) String() string {
	switch c {
	case Normal:
		return "NORMAL"
	case Crossed:
		return "CROSSED"
	case Locked:
		return "LOCKED"
	default:
		return "UNKNOWN"
	}
}

// MarketData is an immutable NBBO snapshot with limit-up/limit-down bands.
type MarketData struct {
	NBB       decimal.Decimal `json:"nbb"` // national best bid
	NBO       decimal.Decimal `json:"nbo"` // national best offer
	LimitUp   decimal.Decimal `json:"l_up"`
	LimitDown decimal.Decimal `json:"l_down"`
}

var two = decimal.NewFromInt(2)

// MidPoint returns the midpoint of the NBBO.
func (m MarketData) MidPoint() decimal.Decimal {
	return m.NBB.Add(m.NBO).Div(two)
}

// Valid reports whether the snapshot is internally consistent. The pricing
// functions trust their input; callers gate on this before pricing, the
// pricing functions do not re-validate.
func (m MarketData) Valid() bool {
	return m.LimitDown.Sign() > 0 &&
		m.NBB.GreaterThan(m.LimitDown) &&
		m.NBO.GreaterThan(m.NBB) &&
		m.LimitUp.GreaterThan(m.NBO)
}

// Condition classifies the NBBO. A Valid snapshot is always Normal.
func (m MarketData) Condition() MarketCondition {
	switch m.NBB.Cmp(m.NBO) {
	case 1:
		return Crossed
	case 0:
		return Locked
	default:
		return Normal
	}
}

// WithinBands reports whether a price sits inside the LULD bands.
func (m MarketData) WithinBands(price decimal.Decimal) bool {
	return price.GreaterThanOrEqual(m.LimitDown) && price.LessThanOrEqual(m.LimitUp)
}

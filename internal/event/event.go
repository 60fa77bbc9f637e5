package event

import (
	"darkcross/internal/domain"

	"github.com/shopspring/decimal"
)

// Type tags every event for dispatch logging.
type Type string

const (
	TypeQuote    Type = "QUOTE"
	TypeRefPrice Type = "REF_PRICE"
	TypeOrder    Type = "ORDER"
	TypeCancel   Type = "CANCEL"
)

// Event is the unit of work flowing through the sequencer inbox. Every
// event carries a strictly increasing sequence number; the sequencer halts
// on a gap.
type Event interface {
	GetSeq() uint64
	GetTs() int64
	GetType() Type
}

// BaseEvent carries the fields common to all events.
type BaseEvent struct {
	Seq uint64 `json:"seq"`
	Ts  int64  `json:"ts"` // unix microseconds at ingest
}

func (e *BaseEvent) GetSeq() uint64 { return e.Seq }
func (e *BaseEvent) GetTs() int64   { return e.Ts }

// QuoteEvent is an NBBO snapshot update for one symbol, including the
// limit-up/limit-down bands.
type QuoteEvent struct {
	BaseEvent
	Symbol    string          `json:"symbol"`
	NBB       decimal.Decimal `json:"nbb"`
	NBO       decimal.Decimal `json:"nbo"`
	LimitUp   decimal.Decimal `json:"l_up"`
	LimitDown decimal.Decimal `json:"l_down"`
}

func (e *QuoteEvent) GetType() Type { return TypeQuote }

// MarketData converts the event payload into a domain snapshot.
func (e *QuoteEvent) MarketData() domain.MarketData {
	return domain.MarketData{
		NBB:       e.NBB,
		NBO:       e.NBO,
		LimitUp:   e.LimitUp,
		LimitDown: e.LimitDown,
	}
}

// RefPriceEvent updates the last stable trade price used to anchor
// market/market crosses.
type RefPriceEvent struct {
	BaseEvent
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

func (e *RefPriceEvent) GetType() Type { return TypeRefPrice }

// OrderEvent submits a new order for admission to a book.
type OrderEvent struct {
	BaseEvent
	Order domain.Order `json:"order"`
}

func (e *OrderEvent) GetType() Type { return TypeOrder }

// CancelEvent removes a resting order from a book.
type CancelEvent struct {
	BaseEvent
	Symbol  string `json:"symbol"`
	OrderID uint64 `json:"order_id"`
}

func (e *CancelEvent) GetType() Type { return TypeCancel }

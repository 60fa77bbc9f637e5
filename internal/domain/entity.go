package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CrossRecord is a persisted pricing decision: given the book state at Seq,
// the best buy and best sell would cross at Price.
type CrossRecord struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Symbol    string          `gorm:"index" json:"symbol"`
	BuyID     uint64          `json:"buy_id"`
	SellID    uint64          `json:"sell_id"`
	Price     decimal.Decimal `gorm:"type:text" json:"price"`
	Qty       int64           `json:"qty"` // crossable size, min of the two leaves
	Seq       uint64          `gorm:"index" json:"seq"`
	CreatedAt time.Time       `json:"created_at"`
}

// OrderRecord is the audit trail of orders admitted to a book.
type OrderRecord struct {
	ID        uint64          `gorm:"primaryKey" json:"id"`
	ClientID  string          `gorm:"index" json:"client_id"`
	Symbol    string          `gorm:"index" json:"symbol"`
	Side      string          `json:"side"`
	Type      string          `json:"type"`
	Peg       string          `json:"peg"`
	Qty       int64           `json:"qty"`
	MinQty    int64           `json:"min_qty"`
	Price     decimal.Decimal `gorm:"type:text" json:"price"`
	Time      int64           `json:"time"`
	CreatedAt time.Time       `json:"created_at"`
}

// EngineState holds engine checkpoints as key-value pairs (e.g. last
// processed sequence number).
type EngineState struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

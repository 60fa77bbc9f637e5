package domain

import "github.com/shopspring/decimal"

// AlertConfig is a standing watch on cross decisions for one symbol. The
// engine checks active alerts against every priced cross; an alert fires on
// the first decision that reaches the target price in its direction with at
// least MinQty shares crossing.
type AlertConfig struct {
	Symbol       string          `json:"symbol"`
	TargetPrice  decimal.Decimal `json:"target"`
	Direction    string          `json:"direction"` // "UP" or "DOWN"
	MinQty       int64           `json:"min_qty"`   // 0 = any size
	IsPersistent bool            `json:"is_persistent"`
	active       bool
}

// NewAlertConfig creates a new alert configuration.
// Direction is automatically determined based on currentPrice:
// - UP: targetPrice > currentPrice (waiting for crosses to price higher)
// - DOWN: targetPrice < currentPrice (waiting for crosses to price lower)
func NewAlertConfig(symbol string, targetPrice, currentPrice decimal.Decimal, minQty int64, isPersistent bool) *AlertConfig {
	direction := "UP"
	if targetPrice.LessThan(currentPrice) {
		direction = "DOWN"
	}
	return &AlertConfig{
		Symbol:       symbol,
		TargetPrice:  targetPrice,
		Direction:    direction,
		MinQty:       minQty,
		IsPersistent: isPersistent,
		active:       true,
	}
}

// IsActive returns whether the alert is active
func (a *AlertConfig) IsActive() bool {
	return a.active
}

// SetActive sets the alert's active state
func (a *AlertConfig) SetActive(active bool) {
	a.active = active
}

// CheckCondition checks whether a priced cross trips the alert. Returns
// true when the crossing quantity covers MinQty and:
// - Direction is UP and crossPrice >= targetPrice
// - Direction is DOWN and crossPrice <= targetPrice
func (a *AlertConfig) CheckCondition(crossPrice decimal.Decimal, qty int64) bool {
	if !a.active || qty < a.MinQty {
		return false
	}
	switch a.Direction {
	case "UP":
		return crossPrice.GreaterThanOrEqual(a.TargetPrice)
	case "DOWN":
		return crossPrice.LessThanOrEqual(a.TargetPrice)
	default:
		return false
	}
}

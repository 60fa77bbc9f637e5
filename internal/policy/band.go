package policy

import (
	"fmt"

	"darkcross/internal/domain"
)

// Band rejects limit-kind orders priced outside the limit-up/limit-down
// bands of the current market snapshot. Without a snapshot the policy
// admits everything; the sequencer will not price crosses until a valid
// snapshot arrives anyway.
type Band struct{}

// NewBand creates the policy.
func NewBand() *Band {
	return &Band{}
}

// Name identifies the policy.
func (p *Band) Name() string { return "band" }

// Check validates limit prices against the LULD bands.
func (p *Band) Check(o *domain.Order, mkt *domain.MarketData) error {
	if mkt == nil || !o.Type.IsLimitKind() {
		return nil
	}
	if !mkt.WithinBands(o.Price) {
		return &domain.RejectError{
			Policy: p.Name(),
			Reason: fmt.Sprintf("price %s outside bands [%s, %s]",
				o.Price, mkt.LimitDown, mkt.LimitUp),
		}
	}
	return nil
}

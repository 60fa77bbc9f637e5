package policy

import (
	"fmt"

	"darkcross/internal/domain"
)

// MinQty enforces the minimum-cross-size contract: MinQty may never be
// negative or exceed the order's requested quantity, and conditional
// indications must state a minimum so a firm-up has a floor to honor.
type MinQty struct{}

// NewMinQty creates the policy.
func NewMinQty() *MinQty {
	return &MinQty{}
}

// Name identifies the policy.
func (p *MinQty) Name() string { return "min_qty" }

// Check validates the MinQty field against the order size.
func (p *MinQty) Check(o *domain.Order, _ *domain.MarketData) error {
	if o.MinQty < 0 {
		return &domain.RejectError{
			Policy: p.Name(),
			Reason: fmt.Sprintf("negative min qty %d", o.MinQty),
		}
	}
	if o.MinQty > o.Qty {
		return &domain.RejectError{
			Policy: p.Name(),
			Reason: fmt.Sprintf("min qty %d exceeds order qty %d", o.MinQty, o.Qty),
		}
	}
	if o.Type.IsCI() && o.MinQty == 0 {
		return &domain.RejectError{
			Policy: p.Name(),
			Reason: "conditional indication without a minimum quantity",
		}
	}
	return nil
}

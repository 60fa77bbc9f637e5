package policy

import "darkcross/internal/domain"

// Policy is an admission check applied to every order before it enters a
// book. The sequencer calls policies synchronously; mkt is nil when no
// valid market snapshot is known for the symbol yet.
type Policy interface {
	// Name identifies the policy in rejection errors and logs.
	Name() string

	// Check returns nil to admit the order or a *domain.RejectError.
	Check(o *domain.Order, mkt *domain.MarketData) error
}

// Chain applies policies in order and stops at the first rejection.
type Chain []Policy

// Check runs the chain.
func (c Chain) Check(o *domain.Order, mkt *domain.MarketData) error {
	for _, p := range c {
		if err := p.Check(o, mkt); err != nil {
			return err
		}
	}
	return nil
}

package policy

import (
	"errors"
	"testing"

	"darkcross/internal/domain"

	"github.com/shopspring/decimal"
)

func validOrder() *domain.Order {
	return &domain.Order{
		ID:        1,
		Symbol:    "XYZ",
		Side:      domain.Buy,
		Type:      domain.Limit,
		Qty:       100,
		LeavesQty: 100,
		Price:     decimal.NewFromInt(40),
		Time:      1,
	}
}

func snapshot() *domain.MarketData {
	return &domain.MarketData{
		NBB:       decimal.NewFromInt(40),
		NBO:       decimal.NewFromInt(42),
		LimitUp:   decimal.NewFromInt(80),
		LimitDown: decimal.NewFromInt(20),
	}
}

func TestMinQty(t *testing.T) {
	p := NewMinQty()

	t.Run("Admits plain order", func(t *testing.T) {
		if err := p.Check(validOrder(), nil); err != nil {
			t.Errorf("expected admit, got %v", err)
		}
	})

	t.Run("Rejects negative min qty", func(t *testing.T) {
		o := validOrder()
		o.MinQty = -5
		if err := p.Check(o, nil); err == nil {
			t.Error("expected rejection")
		}
	})

	t.Run("Rejects min qty above order qty", func(t *testing.T) {
		o := validOrder()
		o.MinQty = 150
		err := p.Check(o, nil)
		var rej *domain.RejectError
		if !errors.As(err, &rej) {
			t.Fatalf("expected RejectError, got %v", err)
		}
		if rej.Policy != "min_qty" {
			t.Errorf("expected min_qty policy, got %s", rej.Policy)
		}
	})

	t.Run("Rejects CI without minimum", func(t *testing.T) {
		o := validOrder()
		o.Type = domain.LimitCI
		if err := p.Check(o, nil); err == nil {
			t.Error("expected rejection")
		}
		o.MinQty = 50
		if err := p.Check(o, nil); err != nil {
			t.Errorf("expected admit with minimum set, got %v", err)
		}
	})
}

func TestBand(t *testing.T) {
	p := NewBand()

	t.Run("Admits without a snapshot", func(t *testing.T) {
		o := validOrder()
		o.Price = decimal.NewFromInt(500)
		if err := p.Check(o, nil); err != nil {
			t.Errorf("expected admit, got %v", err)
		}
	})

	t.Run("Admits within bands", func(t *testing.T) {
		if err := p.Check(validOrder(), snapshot()); err != nil {
			t.Errorf("expected admit, got %v", err)
		}
	})

	t.Run("Rejects limit outside bands", func(t *testing.T) {
		o := validOrder()
		o.Price = decimal.NewFromInt(500)
		if err := p.Check(o, snapshot()); err == nil {
			t.Error("expected rejection")
		}
	})

	t.Run("Ignores market orders", func(t *testing.T) {
		o := validOrder()
		o.Type = domain.Market
		o.Price = decimal.NewFromInt(1)
		if err := p.Check(o, snapshot()); err != nil {
			t.Errorf("expected admit, got %v", err)
		}
	})
}

func TestChain(t *testing.T) {
	chain := Chain{NewMinQty(), NewBand()}

	o := validOrder()
	o.MinQty = 150
	o.Price = decimal.NewFromInt(500)

	err := chain.Check(o, snapshot())
	var rej *domain.RejectError
	if !errors.As(err, &rej) {
		t.Fatalf("expected RejectError, got %v", err)
	}
	// First policy in the chain wins.
	if rej.Policy != "min_qty" {
		t.Errorf("expected min_qty rejection first, got %s", rej.Policy)
	}
}

package service

import (
	"testing"

	"darkcross/internal/domain"
	"darkcross/internal/engine"

	"github.com/shopspring/decimal"
)

func testSnapshot() domain.MarketData {
	return domain.MarketData{
		NBB:       decimal.NewFromInt(40),
		NBO:       decimal.NewFromInt(42),
		LimitUp:   decimal.NewFromInt(80),
		LimitDown: decimal.NewFromInt(20),
	}
}

func TestBookService_UpdateMarket(t *testing.T) {
	s := NewBookService()

	s.UpdateMarket("XYZ", testSnapshot(), 3, 2)

	v := s.Get("XYZ")
	if v == nil {
		t.Fatal("expected a view")
	}
	if !v.NBB.Equal(decimal.NewFromInt(40)) {
		t.Errorf("expected NBB 40, got %s", v.NBB)
	}
	if v.Condition != "NORMAL" {
		t.Errorf("expected NORMAL condition, got %s", v.Condition)
	}
	if v.BuyDepth != 3 || v.SellDepth != 2 {
		t.Errorf("expected depth 3x2, got %dx%d", v.BuyDepth, v.SellDepth)
	}
}

func TestBookService_OnCross(t *testing.T) {
	s := NewBookService()

	s.OnCross(&engine.CrossDecision{
		Symbol: "XYZ",
		Price:  decimal.RequireFromString("41.5"),
		Qty:    200,
		Seq:    7,
	})
	s.OnCross(&engine.CrossDecision{
		Symbol: "XYZ",
		Price:  decimal.NewFromInt(42),
		Qty:    50,
		Seq:    9,
	})

	v := s.Get("XYZ")
	if v == nil {
		t.Fatal("expected a view")
	}
	if v.CrossCount != 2 {
		t.Errorf("expected 2 crosses, got %d", v.CrossCount)
	}
	if v.LastCross == nil || !v.LastCross.Equal(decimal.NewFromInt(42)) {
		t.Errorf("expected last cross 42, got %v", v.LastCross)
	}
	if v.LastQty != 50 {
		t.Errorf("expected last qty 50, got %d", v.LastQty)
	}
}

func TestBookService_GetAllSorted(t *testing.T) {
	s := NewBookService()

	s.UpdateMarket("ZZZ", testSnapshot(), 0, 0)
	s.UpdateMarket("AAA", testSnapshot(), 0, 0)
	s.UpdateMarket("MMM", testSnapshot(), 0, 0)

	views := s.GetAll()
	if len(views) != 3 {
		t.Fatalf("expected 3 views, got %d", len(views))
	}
	if views[0].Symbol != "AAA" || views[2].Symbol != "ZZZ" {
		t.Errorf("views not sorted by symbol: %s, %s, %s",
			views[0].Symbol, views[1].Symbol, views[2].Symbol)
	}
}

func TestBookService_GetUnknown(t *testing.T) {
	s := NewBookService()

	if v := s.Get("NOPE"); v != nil {
		t.Errorf("expected nil for unknown symbol, got %+v", v)
	}
}

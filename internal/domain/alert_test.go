package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAlertConfig_Direction(t *testing.T) {
	t.Run("Target above current waits for UP", func(t *testing.T) {
		a := NewAlertConfig("XYZ", decimal.NewFromInt(50), decimal.NewFromInt(40), 0, false)
		if a.Direction != "UP" {
			t.Errorf("expected UP, got %s", a.Direction)
		}
	})

	t.Run("Target below current waits for DOWN", func(t *testing.T) {
		a := NewAlertConfig("XYZ", decimal.NewFromInt(30), decimal.NewFromInt(40), 0, false)
		if a.Direction != "DOWN" {
			t.Errorf("expected DOWN, got %s", a.Direction)
		}
	})
}

func TestAlertConfig_CheckCondition(t *testing.T) {
	t.Run("UP triggers at or above target", func(t *testing.T) {
		a := NewAlertConfig("XYZ", decimal.NewFromInt(50), decimal.NewFromInt(40), 0, false)
		if a.CheckCondition(decimal.NewFromInt(49), 100) {
			t.Error("should not trigger below target")
		}
		if !a.CheckCondition(decimal.NewFromInt(50), 100) {
			t.Error("should trigger at target")
		}
	})

	t.Run("DOWN triggers at or below target", func(t *testing.T) {
		a := NewAlertConfig("XYZ", decimal.NewFromInt(30), decimal.NewFromInt(40), 0, false)
		if a.CheckCondition(decimal.NewFromInt(31), 100) {
			t.Error("should not trigger above target")
		}
		if !a.CheckCondition(decimal.NewFromInt(30), 100) {
			t.Error("should trigger at target")
		}
	})

	t.Run("Quantity floor gates the trigger", func(t *testing.T) {
		a := NewAlertConfig("XYZ", decimal.NewFromInt(50), decimal.NewFromInt(40), 200, false)
		if a.CheckCondition(decimal.NewFromInt(55), 100) {
			t.Error("should not trigger below the size floor")
		}
		if !a.CheckCondition(decimal.NewFromInt(55), 200) {
			t.Error("should trigger at the size floor")
		}
	})

	t.Run("Inactive alert never triggers", func(t *testing.T) {
		a := NewAlertConfig("XYZ", decimal.NewFromInt(50), decimal.NewFromInt(40), 0, false)
		a.SetActive(false)
		if a.CheckCondition(decimal.NewFromInt(99), 100) {
			t.Error("inactive alert should not trigger")
		}
	})
}

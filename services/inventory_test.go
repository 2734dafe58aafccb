package services

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestReconcileStock(t *testing.T) {
	cases := []struct {
		name                     string
		purchased, exited, waste int64
		want                     int64
	}{
		{"movements on all ledgers", 100, 40, 10, 50},
		{"no movements", 0, 0, 0, 0},
		{"purchases only", 75, 0, 0, 75},
		{"fully consumed", 30, 25, 5, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := reconcileStock(d(tc.purchased), d(tc.exited), d(tc.waste))
			if !got.Equal(d(tc.want)) {
				t.Fatalf("reconcileStock(%d, %d, %d) = %s, want %d",
					tc.purchased, tc.exited, tc.waste, got, tc.want)
			}
		})
	}
}

func TestReconcileStockFractionalQuantities(t *testing.T) {
	got := reconcileStock(
		decimal.NewFromFloat(12.5),
		decimal.NewFromFloat(3.25),
		decimal.NewFromFloat(0.75),
	)
	if !got.Equal(decimal.NewFromFloat(8.5)) {
		t.Fatalf("reconcileStock = %s, want 8.5", got)
	}
}

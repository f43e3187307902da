package economy

import (
	"errors"
	"testing"
)

func TestWallet_Spend(t *testing.T) {
	w := NewWallet(1000)
	if err := w.Spend(1200); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("got %v, want ErrInsufficientFunds", err)
	}
	if w.Balance() != 1000 {
		t.Errorf("balance changed on failed spend: %d", w.Balance())
	}
	if err := w.Spend(400); err != nil {
		t.Fatal(err)
	}
	if w.Balance() != 600 || w.Spent() != 400 {
		t.Errorf("balance=%d spent=%d", w.Balance(), w.Spent())
	}
	if err := w.Spend(-1); err == nil {
		t.Error("negative spend accepted")
	}
	w.Deposit(50)
	if w.Balance() != 650 {
		t.Errorf("after deposit balance=%d", w.Balance())
	}
}

func TestProgress_Clamp(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 1}, {1, 1}, {5, 5}, {10, 10}, {42, 10},
	}
	for _, tt := range tests {
		if got := NewProgress(tt.in).Level(); got != tt.want {
			t.Errorf("NewProgress(%d).Level() = %d, want %d", tt.in, got, tt.want)
		}
	}
}

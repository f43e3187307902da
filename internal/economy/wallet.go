// Package economy provides the company's funds and progression state consumed
// by the labor market.
package economy

import (
	"errors"
	"fmt"
)

// ErrInsufficientFunds is returned when a spend exceeds the balance.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Wallet is the company treasury. Spends are all-or-nothing.
type Wallet struct {
	balance int64
	spent   int64
}

// NewWallet creates a wallet with a starting balance.
func NewWallet(balance int64) *Wallet {
	return &Wallet{balance: balance}
}

// Balance returns the current balance.
func (w *Wallet) Balance() int64 {
	return w.balance
}

// Spent returns the total spent since creation.
func (w *Wallet) Spent() int64 {
	return w.spent
}

// Spend deducts amount, or fails without changing the balance.
func (w *Wallet) Spend(amount int64) error {
	if amount < 0 {
		return fmt.Errorf("negative spend %d", amount)
	}
	if amount > w.balance {
		return fmt.Errorf("%w: need %d, have %d", ErrInsufficientFunds, amount, w.balance)
	}
	w.balance -= amount
	w.spent += amount
	return nil
}

// Deposit adds income.
func (w *Wallet) Deposit(amount int64) {
	if amount > 0 {
		w.balance += amount
	}
}

// Package memory provides an in-process bank for development and tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/xraph/stipend/id"
	"github.com/xraph/stipend/transfer"
	"github.com/xraph/stipend/types"
)

// Account errors.
var (
	ErrUnknownAccount    = errors.New("bank: unknown account")
	ErrInsufficientFunds = errors.New("bank: insufficient funds")
)

// Receipt records one completed movement.
type Receipt struct {
	ID     id.ReceiptID
	From   types.Identity
	To     types.Identity
	Amount uint64
}

// Bank is a map-backed Mover. Accounts must be opened before they can send
// or receive; every completed transfer produces a receipt.
type Bank struct {
	mu       sync.Mutex
	balances map[types.Identity]uint64
	receipts []Receipt
}

var _ transfer.Mover = (*Bank)(nil)

// NewBank returns an empty bank.
func NewBank() *Bank {
	return &Bank{balances: make(map[types.Identity]uint64)}
}

// Open creates an account with the given opening balance. Opening an
// existing account resets its balance.
func (b *Bank) Open(account types.Identity, balance uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[account] = balance
}

// Balance reports an account's balance. Unknown accounts report zero.
func (b *Bank) Balance(account types.Identity) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.balances[account]
}

// Transfer moves amount between two open accounts. It either completes
// fully or leaves both balances untouched.
func (b *Bank) Transfer(_ context.Context, from, to types.Identity, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	src, ok := b.balances[from]
	if !ok {
		return &transfer.Error{From: from, To: to, Amount: amount, Err: fmt.Errorf("%w: %s", ErrUnknownAccount, from)}
	}
	if _, ok := b.balances[to]; !ok {
		return &transfer.Error{From: from, To: to, Amount: amount, Err: fmt.Errorf("%w: %s", ErrUnknownAccount, to)}
	}
	if src < amount {
		return &transfer.Error{From: from, To: to, Amount: amount, Err: ErrInsufficientFunds}
	}

	b.balances[from] = src - amount
	b.balances[to] += amount
	b.receipts = append(b.receipts, Receipt{ID: id.NewReceiptID(), From: from, To: to, Amount: amount})
	return nil
}

// Receipts returns a copy of the completed-transfer log in order.
func (b *Bank) Receipts() []Receipt {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Receipt, len(b.receipts))
	copy(out, b.receipts)
	return out
}

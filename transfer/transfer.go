// Package transfer defines the value-movement boundary the engine settles
// through. The engine never holds funds itself; it asks a Mover to move
// value between accounts and treats any failure as grounds to roll the
// bookkeeping back.
package transfer

import (
	"context"
	"fmt"

	"github.com/xraph/stipend/types"
)

// Mover moves value between accounts. Implementations may be backed by an
// in-process bank, a payment rail, or an on-chain token program; the engine
// only requires that a nil return means the value has moved.
type Mover interface {
	// Transfer moves amount from one account to the other. It returns an
	// error without moving anything if from cannot cover amount or either
	// account is unknown.
	Transfer(ctx context.Context, from, to types.Identity, amount uint64) error
}

// Func adapts a function to the Mover interface.
type Func func(ctx context.Context, from, to types.Identity, amount uint64) error

// Transfer calls f.
func (f Func) Transfer(ctx context.Context, from, to types.Identity, amount uint64) error {
	return f(ctx, from, to, amount)
}

// Error wraps a failure reported by a Mover.
type Error struct {
	From   types.Identity
	To     types.Identity
	Amount uint64
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transfer of %d from %s to %s failed: %v", e.Amount, e.From, e.To, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

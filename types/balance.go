// Package types provides common types used across Stipend.
package types

import (
	"fmt"
	"math"
)

// Balance is an unsigned reward balance in the smallest payout unit.
// All mutation goes through checked arithmetic — a Balance can never
// wrap around, and callers must handle the failure explicitly.
type Balance uint64

// MaxBalance is the largest representable Balance.
const MaxBalance Balance = math.MaxUint64

// CheckedAdd returns b + n, reporting false when the sum would overflow.
func (b Balance) CheckedAdd(n uint64) (Balance, bool) {
	if n > uint64(MaxBalance-b) {
		return b, false
	}
	return b + Balance(n), true
}

// CheckedSub returns b - n, reporting false when n exceeds the balance.
func (b Balance) CheckedSub(n uint64) (Balance, bool) {
	if n > uint64(b) {
		return b, false
	}
	return b - Balance(n), true
}

// Covers reports whether the balance can pay out n in full.
// Partial payouts are never made.
func (b Balance) Covers(n uint64) bool {
	return uint64(b) >= n
}

// IsZero reports whether the balance is empty.
func (b Balance) IsZero() bool { return b == 0 }

// Uint64 returns the raw balance value.
func (b Balance) Uint64() uint64 { return uint64(b) }

// String formats the balance for logs and events.
func (b Balance) String() string {
	return fmt.Sprintf("%d", uint64(b))
}

// Package stipend provides a composable reward pool engine for fleets of
// compute servers.
//
// Stipend is designed as a library, not a service. Import it directly into
// your Go application. It provides:
//
//   - A registry of compute servers with owner-based access control
//   - Point accrual from telemetry reports with checked arithmetic
//   - Cooldown-gated reward claims against a shared treasury
//   - Pool funding and authority-driven reclamation of stale rewards
//   - An append-only audit stream of every accepted transition
//   - Pluggable settlement via the transfer.Mover interface
//
// # Quick Start
//
// Create an engine with your preferred store and a settlement mover:
//
//	import (
//	    "github.com/xraph/stipend"
//	    "github.com/xraph/stipend/store/memory"
//	    transfermem "github.com/xraph/stipend/transfer/memory"
//	)
//
//	bank := transfermem.NewBank()
//	bank.Open(stipend.DefaultPoolAccount, 0)
//
//	eng := stipend.New(memory.New(), bank)
//	if err := eng.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Stop()
//
// # Core Concepts
//
// The treasury is a singleton holding the pool balance, the authority
// identity and the pause flag:
//
//	t, err := eng.Initialize(ctx, "authority")
//
// The authority registers servers for their owners and attests telemetry,
// which accrues points onto the record:
//
//	rec, err := eng.RegisterServer(ctx, "srv-01", "owner", "authority")
//	rep, err := eng.SubmitMetrics(ctx, "srv-01", 99, 1200, 500, "authority")
//
// Owners collect accrued rewards once the claim cooldown has elapsed and
// the pool covers the amount:
//
//	amount, err := eng.ClaimRewards(ctx, "srv-01", "owner")
//
// All balances are unsigned integers in the smallest reward unit; every
// addition and subtraction is checked, never wrapped.
//
// # TypeID
//
// Reports, audit events and settlement receipts use TypeID for globally
// unique, type-safe identifiers:
//
//	rpt_01h2xcejqtf2nbrexx3vqjhp41  // Report ID
//	evt_01h455vb4pex5vsknk084sn02q  // Event ID
//
// TypeIDs are K-sortable, providing natural time-ordering of entities.
package stipend

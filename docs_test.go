package stipend_test

import (
	"context"
	"log"
	"log/slog"
	"testing"

	"github.com/xraph/stipend"
	"github.com/xraph/stipend/server"
	"github.com/xraph/stipend/store/memory"
	transfermem "github.com/xraph/stipend/transfer/memory"
)

// TestDocumentationExamples verifies that all examples in the documentation compile
func TestDocumentationExamples(t *testing.T) {
	// Test Quick Start example from README
	t.Run("QuickStartExample", func(t *testing.T) {
		// Create settlement bank (in-process for demo, use a real rail in production)
		bank := transfermem.NewBank()
		bank.Open(stipend.DefaultPoolAccount, 0)
		bank.Open("owner", 0)
		bank.Open("authority", 100_000)

		// Initialize the engine
		eng := stipend.New(memory.New(), bank,
			stipend.WithLogger(slog.Default()),
		)

		// Start the engine
		ctx := context.Background()
		if err := eng.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer eng.Stop()

		// Create the treasury
		if _, err := eng.Initialize(ctx, "authority"); err != nil {
			t.Fatal(err)
		}

		// Fund the pool
		if err := eng.DepositRewards(ctx, "authority", 50_000); err != nil {
			t.Fatal(err)
		}

		// Register a server for its owner
		rec, err := eng.RegisterServer(ctx, "srv-01", "owner", "authority")
		if err != nil {
			t.Fatal(err)
		}
		log.Printf("server registered: %s (grace period until %d)\n", rec.ID, rec.GracePeriodEnd)

		// Submit telemetry, accruing points
		rep, err := eng.SubmitMetrics(ctx, "srv-01", 99, 1200, 500, "authority")
		if err != nil {
			t.Fatal(err)
		}
		log.Printf("report accepted: %s\n", rep.ID)

		// Accrued rewards are visible on the record
		rec, err = eng.Server(ctx, "srv-01")
		if err != nil {
			t.Fatal(err)
		}
		log.Printf("pending rewards: %s\n", rec.PendingRewards)

		// List active servers for an owner
		recs, err := eng.Servers(ctx, server.ListOpts{Owner: "owner", ActiveOnly: true})
		if err != nil {
			t.Fatal(err)
		}
		if len(recs) != 1 {
			t.Fatalf("listed %d servers, want 1", len(recs))
		}
	})

	// Test Balance type examples
	t.Run("BalanceExamples", func(t *testing.T) {
		b := stipend.Balance(100)

		// Checked arithmetic
		if sum, ok := b.CheckedAdd(50); ok {
			_ = sum // 150
		}
		if rem, ok := b.CheckedSub(30); ok {
			_ = rem // 70
		}

		// Coverage check before a payout
		if b.Covers(100) {
			// the balance can pay out 100 in full
		}

		// Formatting
		_ = b.String() // "100"
	})
}

package stipend_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	stipend "github.com/xraph/stipend"
	"github.com/xraph/stipend/event"
	memstore "github.com/xraph/stipend/store/memory"
	"github.com/xraph/stipend/transfer"
	bankmem "github.com/xraph/stipend/transfer/memory"
	"github.com/xraph/stipend/types"
)

const (
	authority = types.Identity("authority")
	alice     = types.Identity("alice")
	bob       = types.Identity("bob")
)

// testClock is a manually advanced engine clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Unix(1_700_000_000, 0).UTC()}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// newTestEngine builds an initialized engine over a memory store and a bank
// with the standard accounts opened. The authority's bank account funds
// deposits.
func newTestEngine(t *testing.T) (*stipend.Engine, *bankmem.Bank, *testClock) {
	t.Helper()

	clk := newTestClock()
	bank := bankmem.NewBank()
	bank.Open(stipend.DefaultPoolAccount, 0)
	bank.Open(authority, 10_000)
	bank.Open(alice, 0)
	bank.Open(bob, 0)

	eng := stipend.New(memstore.New(), bank, stipend.WithClock(clk.Now))
	if err := eng.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = eng.Stop() })

	if _, err := eng.Initialize(context.Background(), authority); err != nil {
		t.Fatal(err)
	}
	return eng, bank, clk
}

func TestInitialize(t *testing.T) {
	ctx := context.Background()
	eng := stipend.New(memstore.New(), bankmem.NewBank())

	t.Run("EmptyAuthority", func(t *testing.T) {
		if _, err := eng.Initialize(ctx, ""); !errors.Is(err, stipend.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("NotInitialized", func(t *testing.T) {
		if _, err := eng.RegisterServer(ctx, "srv-1", alice, authority); !errors.Is(err, stipend.ErrNotInitialized) {
			t.Fatalf("expected ErrNotInitialized, got %v", err)
		}
	})

	t.Run("Success", func(t *testing.T) {
		tr, err := eng.Initialize(ctx, authority)
		if err != nil {
			t.Fatal(err)
		}
		if tr.Authority != authority {
			t.Errorf("authority = %q, want %q", tr.Authority, authority)
		}
		if !tr.RewardPool.IsZero() {
			t.Errorf("reward pool = %d, want 0", tr.RewardPool)
		}
		if tr.Paused {
			t.Error("new treasury should not be paused")
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		if _, err := eng.Initialize(ctx, bob); !errors.Is(err, stipend.ErrAlreadyInitialized) {
			t.Fatalf("expected ErrAlreadyInitialized, got %v", err)
		}
	})
}

func TestRegisterServer(t *testing.T) {
	ctx := context.Background()
	eng, _, clk := newTestEngine(t)

	t.Run("Success", func(t *testing.T) {
		start := clk.Now().Unix()
		rec, err := eng.RegisterServer(ctx, "srv-1", alice, authority)
		if err != nil {
			t.Fatal(err)
		}
		if !rec.Active {
			t.Error("new record should be active")
		}
		if rec.Owner != alice {
			t.Errorf("owner = %q, want %q", rec.Owner, alice)
		}
		if rec.RegisteredAt != start {
			t.Errorf("registered_at = %d, want %d", rec.RegisteredAt, start)
		}
		if want := start + stipend.GracePeriod; rec.GracePeriodEnd != want {
			t.Errorf("grace_period_end = %d, want %d", rec.GracePeriodEnd, want)
		}
		if !rec.PendingRewards.IsZero() {
			t.Errorf("pending rewards = %d, want 0", rec.PendingRewards)
		}
	})

	t.Run("NotAuthority", func(t *testing.T) {
		if _, err := eng.RegisterServer(ctx, "srv-2", alice, alice); !errors.Is(err, stipend.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("DuplicateID", func(t *testing.T) {
		if _, err := eng.RegisterServer(ctx, "srv-1", bob, authority); !errors.Is(err, stipend.ErrDuplicateServerID) {
			t.Fatalf("expected ErrDuplicateServerID, got %v", err)
		}
	})

	t.Run("EmptyID", func(t *testing.T) {
		if _, err := eng.RegisterServer(ctx, "", alice, authority); !errors.Is(err, stipend.ErrEmptyServerID) {
			t.Fatalf("expected ErrEmptyServerID, got %v", err)
		}
	})

	t.Run("IDTooLong", func(t *testing.T) {
		long := strings.Repeat("x", 33)
		if _, err := eng.RegisterServer(ctx, long, alice, authority); !errors.Is(err, stipend.ErrServerIDTooLong) {
			t.Fatalf("expected ErrServerIDTooLong, got %v", err)
		}
	})

	t.Run("EventsRecorded", func(t *testing.T) {
		evs, err := eng.Events(ctx, event.ListOpts{ServerID: "srv-1"})
		if err != nil {
			t.Fatal(err)
		}
		var kinds []event.Kind
		for _, ev := range evs {
			kinds = append(kinds, ev.Kind)
		}
		want := []event.Kind{event.KindServerRegistered, event.KindGracePeriodStarted}
		if len(kinds) != len(want) {
			t.Fatalf("event kinds = %v, want %v", kinds, want)
		}
		for i := range want {
			if kinds[i] != want[i] {
				t.Errorf("event[%d] = %q, want %q", i, kinds[i], want[i])
			}
		}
	})
}

func TestSubmitMetrics(t *testing.T) {
	ctx := context.Background()
	eng, _, clk := newTestEngine(t)

	if _, err := eng.RegisterServer(ctx, "srv-1", alice, authority); err != nil {
		t.Fatal(err)
	}

	t.Run("Accrual", func(t *testing.T) {
		rep, err := eng.SubmitMetrics(ctx, "srv-1", 99, 42, 500, authority)
		if err != nil {
			t.Fatal(err)
		}
		if rep.Points != 500 || rep.Uptime != 99 || rep.TasksCompleted != 42 {
			t.Errorf("unexpected report %+v", rep)
		}

		rec, err := eng.Server(ctx, "srv-1")
		if err != nil {
			t.Fatal(err)
		}
		if rec.PendingRewards.Uint64() != 500 {
			t.Errorf("pending = %d, want 500", rec.PendingRewards)
		}
		if rec.LastMetricsUpdate != clk.Now().Unix() {
			t.Errorf("last_metrics_update = %d, want %d", rec.LastMetricsUpdate, clk.Now().Unix())
		}

		if _, err := eng.SubmitMetrics(ctx, "srv-1", 100, 0, 250, authority); err != nil {
			t.Fatal(err)
		}
		rec, _ = eng.Server(ctx, "srv-1")
		if rec.PendingRewards.Uint64() != 750 {
			t.Errorf("pending = %d, want 750", rec.PendingRewards)
		}
	})

	t.Run("NotAuthority", func(t *testing.T) {
		// Metrics are attested by the authority, not the server owner.
		if _, err := eng.SubmitMetrics(ctx, "srv-1", 90, 0, 10, alice); !errors.Is(err, stipend.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("InvalidUptime", func(t *testing.T) {
		if _, err := eng.SubmitMetrics(ctx, "srv-1", 101, 0, 10, authority); !errors.Is(err, stipend.ErrInvalidUptime) {
			t.Fatalf("expected ErrInvalidUptime, got %v", err)
		}
	})

	t.Run("UnknownServer", func(t *testing.T) {
		_, err := eng.SubmitMetrics(ctx, "missing", 50, 0, 10, authority)
		if !stipend.IsNotFound(err) {
			t.Fatalf("expected not-found, got %v", err)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		if _, err := eng.RegisterServer(ctx, "srv-max", alice, authority); err != nil {
			t.Fatal(err)
		}
		if _, err := eng.SubmitMetrics(ctx, "srv-max", 100, 0, math.MaxUint64, authority); err != nil {
			t.Fatal(err)
		}
		if _, err := eng.SubmitMetrics(ctx, "srv-max", 100, 0, 1, authority); !errors.Is(err, stipend.ErrNumericOverflow) {
			t.Fatalf("expected ErrNumericOverflow, got %v", err)
		}
	})

	t.Run("InactiveStillAccrues", func(t *testing.T) {
		if _, err := eng.RegisterServer(ctx, "srv-retired", alice, authority); err != nil {
			t.Fatal(err)
		}
		if err := eng.DeactivateServer(ctx, "srv-retired", authority); err != nil {
			t.Fatal(err)
		}
		if _, err := eng.SubmitMetrics(ctx, "srv-retired", 80, 1, 25, authority); err != nil {
			t.Fatal(err)
		}
		rec, _ := eng.Server(ctx, "srv-retired")
		if rec.PendingRewards.Uint64() != 25 {
			t.Errorf("pending = %d, want 25", rec.PendingRewards)
		}
	})
}

func TestClaimRewards(t *testing.T) {
	ctx := context.Background()
	eng, bank, clk := newTestEngine(t)

	if err := eng.DepositRewards(ctx, authority, 1000); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.RegisterServer(ctx, "srv-1", alice, authority); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.SubmitMetrics(ctx, "srv-1", 95, 10, 600, authority); err != nil {
		t.Fatal(err)
	}

	t.Run("CooldownActive", func(t *testing.T) {
		if _, err := eng.ClaimRewards(ctx, "srv-1", alice); !errors.Is(err, stipend.ErrClaimCooldownActive) {
			t.Fatalf("expected ErrClaimCooldownActive, got %v", err)
		}
		clk.Advance(time.Duration(stipend.ClaimCooldown)*time.Second - time.Second)
		if _, err := eng.ClaimRewards(ctx, "srv-1", alice); !errors.Is(err, stipend.ErrClaimCooldownActive) {
			t.Fatalf("one second early, expected ErrClaimCooldownActive, got %v", err)
		}
	})

	t.Run("NotOwner", func(t *testing.T) {
		clk.Advance(time.Second) // cooldown satisfied exactly
		if _, err := eng.ClaimRewards(ctx, "srv-1", authority); !errors.Is(err, stipend.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("Payout", func(t *testing.T) {
		amount, err := eng.ClaimRewards(ctx, "srv-1", alice)
		if err != nil {
			t.Fatal(err)
		}
		if amount != 600 {
			t.Errorf("claimed %d, want 600", amount)
		}
		if got := bank.Balance(alice); got != 600 {
			t.Errorf("alice balance = %d, want 600", got)
		}
		if got := bank.Balance(stipend.DefaultPoolAccount); got != 400 {
			t.Errorf("pool account balance = %d, want 400", got)
		}
		pool, err := eng.PoolBalance(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if pool != 400 {
			t.Errorf("pool = %d, want 400", pool)
		}
		rec, _ := eng.Server(ctx, "srv-1")
		if !rec.PendingRewards.IsZero() {
			t.Errorf("pending = %d, want 0 after claim", rec.PendingRewards)
		}
	})

	t.Run("ZeroClaimIsPaid", func(t *testing.T) {
		amount, err := eng.ClaimRewards(ctx, "srv-1", alice)
		if err != nil {
			t.Fatal(err)
		}
		if amount != 0 {
			t.Errorf("claimed %d, want 0", amount)
		}
		if got := bank.Balance(alice); got != 600 {
			t.Errorf("alice balance = %d, want 600", got)
		}
		evs, err := eng.Events(ctx, event.ListOpts{Kind: event.KindRewardsClaimed})
		if err != nil {
			t.Fatal(err)
		}
		if len(evs) != 2 {
			t.Fatalf("got %d claim events, want 2", len(evs))
		}
		if last := evs[len(evs)-1]; last.Amount != 0 {
			t.Errorf("zero claim event amount = %d, want 0", last.Amount)
		}
	})

	t.Run("InsufficientPool", func(t *testing.T) {
		if _, err := eng.SubmitMetrics(ctx, "srv-1", 95, 0, 9000, authority); err != nil {
			t.Fatal(err)
		}
		clk.Advance(time.Duration(stipend.ClaimCooldown) * time.Second)
		if _, err := eng.ClaimRewards(ctx, "srv-1", alice); !errors.Is(err, stipend.ErrInsufficientRewardPool) {
			t.Fatalf("expected ErrInsufficientRewardPool, got %v", err)
		}
		// Rejection must leave both sides untouched.
		rec, _ := eng.Server(ctx, "srv-1")
		if rec.PendingRewards.Uint64() != 9000 {
			t.Errorf("pending = %d, want 9000", rec.PendingRewards)
		}
		pool, _ := eng.PoolBalance(ctx)
		if pool != 400 {
			t.Errorf("pool = %d, want 400", pool)
		}
	})

	t.Run("SurvivesDeactivation", func(t *testing.T) {
		if err := eng.DepositRewards(ctx, authority, 9000); err != nil {
			t.Fatal(err)
		}
		if err := eng.DeactivateServer(ctx, "srv-1", authority); err != nil {
			t.Fatal(err)
		}
		amount, err := eng.ClaimRewards(ctx, "srv-1", alice)
		if err != nil {
			t.Fatal(err)
		}
		if amount != 9000 {
			t.Errorf("claimed %d, want 9000", amount)
		}
	})
}

func TestClaimTransferFailure(t *testing.T) {
	ctx := context.Background()
	clk := newTestClock()

	// Deposits settle, payouts are rejected.
	mover := transfer.Func(func(_ context.Context, from, _ types.Identity, _ uint64) error {
		if from == stipend.DefaultPoolAccount {
			return errors.New("wire rejected")
		}
		return nil
	})

	eng := stipend.New(memstore.New(), mover, stipend.WithClock(clk.Now))
	if _, err := eng.Initialize(ctx, authority); err != nil {
		t.Fatal(err)
	}
	if err := eng.DepositRewards(ctx, authority, 1000); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.RegisterServer(ctx, "srv-1", alice, authority); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.SubmitMetrics(ctx, "srv-1", 90, 0, 300, authority); err != nil {
		t.Fatal(err)
	}
	clk.Advance(time.Duration(stipend.ClaimCooldown) * time.Second)

	_, err := eng.ClaimRewards(ctx, "srv-1", alice)
	if !errors.Is(err, stipend.ErrTransferFailed) {
		t.Fatalf("expected ErrTransferFailed, got %v", err)
	}

	// Nothing moved on the books.
	rec, _ := eng.Server(ctx, "srv-1")
	if rec.PendingRewards.Uint64() != 300 {
		t.Errorf("pending = %d, want 300", rec.PendingRewards)
	}
	pool, _ := eng.PoolBalance(ctx)
	if pool != 1000 {
		t.Errorf("pool = %d, want 1000", pool)
	}
}

func TestDepositRewards(t *testing.T) {
	ctx := context.Background()
	eng, bank, _ := newTestEngine(t)

	t.Run("NotAuthority", func(t *testing.T) {
		if err := eng.DepositRewards(ctx, alice, 100); !errors.Is(err, stipend.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("ZeroDepositSettles", func(t *testing.T) {
		if err := eng.DepositRewards(ctx, authority, 0); err != nil {
			t.Fatal(err)
		}
		if got := bank.Balance(authority); got != 10_000 {
			t.Errorf("authority balance = %d, want untouched 10000", got)
		}
		evs, err := eng.Events(ctx, event.ListOpts{Kind: event.KindRewardsDeposited})
		if err != nil {
			t.Fatal(err)
		}
		if len(evs) != 1 || evs[0].Amount != 0 {
			t.Fatalf("want one deposit event with amount 0, got %+v", evs)
		}
	})

	t.Run("Success", func(t *testing.T) {
		if err := eng.DepositRewards(ctx, authority, 2500); err != nil {
			t.Fatal(err)
		}
		pool, err := eng.PoolBalance(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if pool != 2500 {
			t.Errorf("pool = %d, want 2500", pool)
		}
		if got := bank.Balance(authority); got != 7500 {
			t.Errorf("authority balance = %d, want 7500", got)
		}
	})

	t.Run("InsufficientFunds", func(t *testing.T) {
		err := eng.DepositRewards(ctx, authority, 20_000)
		if !errors.Is(err, stipend.ErrTransferFailed) {
			t.Fatalf("expected ErrTransferFailed, got %v", err)
		}
		pool, _ := eng.PoolBalance(ctx)
		if pool != 2500 {
			t.Errorf("pool = %d, want 2500 after rejected deposit", pool)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		bank.Open(authority, math.MaxUint64)
		if err := eng.DepositRewards(ctx, authority, math.MaxUint64-2500); err != nil {
			t.Fatal(err)
		}
		if err := eng.DepositRewards(ctx, authority, 1); !errors.Is(err, stipend.ErrNumericOverflow) {
			t.Fatalf("expected ErrNumericOverflow, got %v", err)
		}
	})
}

func TestDeactivateServer(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t)

	if _, err := eng.RegisterServer(ctx, "srv-1", alice, authority); err != nil {
		t.Fatal(err)
	}

	// Owners cannot deactivate their own records.
	if err := eng.DeactivateServer(ctx, "srv-1", alice); !errors.Is(err, stipend.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := eng.DeactivateServer(ctx, "srv-1", authority); err != nil {
		t.Fatal(err)
	}
	rec, err := eng.Server(ctx, "srv-1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Active {
		t.Error("record should be inactive")
	}

	// Idempotent.
	if err := eng.DeactivateServer(ctx, "srv-1", authority); err != nil {
		t.Fatal(err)
	}
}

func TestReassignServer(t *testing.T) {
	ctx := context.Background()
	eng, _, clk := newTestEngine(t)

	if err := eng.DepositRewards(ctx, authority, 1000); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.RegisterServer(ctx, "srv-1", alice, authority); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.SubmitMetrics(ctx, "srv-1", 90, 0, 100, authority); err != nil {
		t.Fatal(err)
	}

	t.Run("NotAuthority", func(t *testing.T) {
		if err := eng.ReassignServer(ctx, "srv-1", bob, alice); !errors.Is(err, stipend.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("EmptyNewOwner", func(t *testing.T) {
		if err := eng.ReassignServer(ctx, "srv-1", "", authority); !errors.Is(err, stipend.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("MovesClaimRights", func(t *testing.T) {
		if err := eng.ReassignServer(ctx, "srv-1", bob, authority); err != nil {
			t.Fatal(err)
		}
		clk.Advance(time.Duration(stipend.ClaimCooldown) * time.Second)

		if _, err := eng.ClaimRewards(ctx, "srv-1", alice); !errors.Is(err, stipend.ErrUnauthorized) {
			t.Fatalf("old owner should not claim, got %v", err)
		}
		amount, err := eng.ClaimRewards(ctx, "srv-1", bob)
		if err != nil {
			t.Fatal(err)
		}
		if amount != 100 {
			t.Errorf("claimed %d, want 100", amount)
		}
	})

	t.Run("InactiveRejected", func(t *testing.T) {
		if err := eng.DeactivateServer(ctx, "srv-1", authority); err != nil {
			t.Fatal(err)
		}
		if err := eng.ReassignServer(ctx, "srv-1", alice, authority); !errors.Is(err, stipend.ErrServerNotActive) {
			t.Fatalf("expected ErrServerNotActive, got %v", err)
		}
	})
}

func TestPauseUnpause(t *testing.T) {
	ctx := context.Background()
	eng, _, _ := newTestEngine(t)

	if _, err := eng.RegisterServer(ctx, "srv-1", alice, authority); err != nil {
		t.Fatal(err)
	}

	t.Run("NotAuthority", func(t *testing.T) {
		if err := eng.Pause(ctx, alice); !errors.Is(err, stipend.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("PausedRejectsMutations", func(t *testing.T) {
		if err := eng.Pause(ctx, authority); err != nil {
			t.Fatal(err)
		}
		// Pausing again is a no-op.
		if err := eng.Pause(ctx, authority); err != nil {
			t.Fatal(err)
		}

		if _, err := eng.RegisterServer(ctx, "srv-2", alice, authority); !errors.Is(err, stipend.ErrPaused) {
			t.Errorf("register: expected ErrPaused, got %v", err)
		}
		if _, err := eng.SubmitMetrics(ctx, "srv-1", 90, 0, 10, authority); !errors.Is(err, stipend.ErrPaused) {
			t.Errorf("submit: expected ErrPaused, got %v", err)
		}
		if _, err := eng.ClaimRewards(ctx, "srv-1", alice); !errors.Is(err, stipend.ErrPaused) {
			t.Errorf("claim: expected ErrPaused, got %v", err)
		}
		if err := eng.DepositRewards(ctx, authority, 100); !errors.Is(err, stipend.ErrPaused) {
			t.Errorf("deposit: expected ErrPaused, got %v", err)
		}
		if err := eng.DeactivateServer(ctx, "srv-1", authority); !errors.Is(err, stipend.ErrPaused) {
			t.Errorf("deactivate: expected ErrPaused, got %v", err)
		}
		if err := eng.ReassignServer(ctx, "srv-1", bob, authority); !errors.Is(err, stipend.ErrPaused) {
			t.Errorf("reassign: expected ErrPaused, got %v", err)
		}
		if _, err := eng.ReclaimStaleRewards(ctx, "srv-1", authority); !errors.Is(err, stipend.ErrPaused) {
			t.Errorf("reclaim: expected ErrPaused, got %v", err)
		}
		// The pause gate comes before argument checks.
		longID := strings.Repeat("x", 33)
		if _, err := eng.RegisterServer(ctx, longID, alice, authority); !errors.Is(err, stipend.ErrPaused) {
			t.Errorf("register long id: expected ErrPaused, got %v", err)
		}
		if _, err := eng.SubmitMetrics(ctx, "srv-1", 101, 0, 10, authority); !errors.Is(err, stipend.ErrPaused) {
			t.Errorf("submit bad uptime: expected ErrPaused, got %v", err)
		}
		if err := eng.ReassignServer(ctx, "srv-1", "", authority); !errors.Is(err, stipend.ErrPaused) {
			t.Errorf("reassign empty owner: expected ErrPaused, got %v", err)
		}
		// Reads stay available.
		if _, err := eng.Server(ctx, "srv-1"); err != nil {
			t.Errorf("read while paused: %v", err)
		}
		paused, err := eng.Paused(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !paused {
			t.Error("Paused() should report true")
		}
	})

	t.Run("UnpauseRestores", func(t *testing.T) {
		if err := eng.Unpause(ctx, alice); !errors.Is(err, stipend.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
		if err := eng.Unpause(ctx, authority); err != nil {
			t.Fatal(err)
		}
		if _, err := eng.RegisterServer(ctx, "srv-2", alice, authority); err != nil {
			t.Fatal(err)
		}
	})
}

func TestReclaimStaleRewards(t *testing.T) {
	ctx := context.Background()
	eng, _, clk := newTestEngine(t)

	if err := eng.DepositRewards(ctx, authority, 1000); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.RegisterServer(ctx, "srv-1", alice, authority); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.SubmitMetrics(ctx, "srv-1", 90, 0, 400, authority); err != nil {
		t.Fatal(err)
	}

	t.Run("NotAuthority", func(t *testing.T) {
		if _, err := eng.ReclaimStaleRewards(ctx, "srv-1", alice); !errors.Is(err, stipend.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("NotStale", func(t *testing.T) {
		if _, err := eng.ReclaimStaleRewards(ctx, "srv-1", authority); !errors.Is(err, stipend.ErrRewardsNotStale) {
			t.Fatalf("expected ErrRewardsNotStale, got %v", err)
		}
	})

	t.Run("ForfeitBurns", func(t *testing.T) {
		clk.Advance(time.Duration(stipend.StalenessThreshold) * time.Second)
		forfeited, err := eng.ReclaimStaleRewards(ctx, "srv-1", authority)
		if err != nil {
			t.Fatal(err)
		}
		if forfeited != 400 {
			t.Errorf("forfeited %d, want 400", forfeited)
		}
		rec, _ := eng.Server(ctx, "srv-1")
		if !rec.PendingRewards.IsZero() {
			t.Errorf("pending = %d, want 0", rec.PendingRewards)
		}
		// Forfeited value leaves the books; the pool does not grow back.
		pool, _ := eng.PoolBalance(ctx)
		if pool != 1000 {
			t.Errorf("pool = %d, want 1000", pool)
		}
	})

	t.Run("NothingPendingStillEmits", func(t *testing.T) {
		forfeited, err := eng.ReclaimStaleRewards(ctx, "srv-1", authority)
		if err != nil {
			t.Fatal(err)
		}
		if forfeited != 0 {
			t.Errorf("forfeited %d, want 0", forfeited)
		}
		evs, err := eng.Events(ctx, event.ListOpts{Kind: event.KindRewardsReclaimed})
		if err != nil {
			t.Fatal(err)
		}
		if len(evs) != 2 {
			t.Fatalf("got %d reclaim events, want 2", len(evs))
		}
		if last := evs[len(evs)-1]; last.Amount != 0 {
			t.Errorf("reclaim event amount = %d, want 0", last.Amount)
		}
	})

	t.Run("NeverReportedUsesRegistration", func(t *testing.T) {
		if _, err := eng.RegisterServer(ctx, "srv-quiet", alice, authority); err != nil {
			t.Fatal(err)
		}
		if _, err := eng.ReclaimStaleRewards(ctx, "srv-quiet", authority); !errors.Is(err, stipend.ErrRewardsNotStale) {
			t.Fatalf("expected ErrRewardsNotStale, got %v", err)
		}
		clk.Advance(time.Duration(stipend.StalenessThreshold) * time.Second)
		if _, err := eng.ReclaimStaleRewards(ctx, "srv-quiet", authority); err != nil {
			t.Fatal(err)
		}
	})
}

func TestEventStream(t *testing.T) {
	ctx := context.Background()
	eng, _, clk := newTestEngine(t)

	if err := eng.DepositRewards(ctx, authority, 1000); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.RegisterServer(ctx, "srv-1", alice, authority); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.SubmitMetrics(ctx, "srv-1", 90, 0, 100, authority); err != nil {
		t.Fatal(err)
	}
	clk.Advance(time.Duration(stipend.ClaimCooldown) * time.Second)
	if _, err := eng.ClaimRewards(ctx, "srv-1", alice); err != nil {
		t.Fatal(err)
	}

	t.Run("FilterByKind", func(t *testing.T) {
		evs, err := eng.Events(ctx, event.ListOpts{Kind: event.KindRewardsClaimed})
		if err != nil {
			t.Fatal(err)
		}
		if len(evs) != 1 {
			t.Fatalf("got %d claim events, want 1", len(evs))
		}
		ev := evs[0]
		if ev.Amount != 100 || ev.ServerID != "srv-1" || ev.Actor != alice {
			t.Errorf("unexpected event %+v", ev)
		}
		if ev.PoolBalance != 900 {
			t.Errorf("pool balance on event = %d, want 900", ev.PoolBalance)
		}
		if ev.ID.IsNil() {
			t.Error("event should carry an id")
		}
	})

	t.Run("FilterByServer", func(t *testing.T) {
		evs, err := eng.Events(ctx, event.ListOpts{ServerID: "srv-1"})
		if err != nil {
			t.Fatal(err)
		}
		// registered, grace period, metrics, claim
		if len(evs) != 4 {
			t.Fatalf("got %d events, want 4", len(evs))
		}
	})
}

func TestConcurrentOperations(t *testing.T) {
	ctx := context.Background()
	eng, bank, clk := newTestEngine(t)

	if err := eng.DepositRewards(ctx, authority, 5000); err != nil {
		t.Fatal(err)
	}
	for _, s := range []struct {
		id    string
		owner types.Identity
	}{
		{"srv-a", alice}, {"srv-b", alice}, {"srv-c", alice}, {"srv-d", bob},
	} {
		if _, err := eng.RegisterServer(ctx, s.id, s.owner, authority); err != nil {
			t.Fatal(err)
		}
	}
	// srv-c and srv-d accrue up front so their owners can claim while
	// fresh reports land on srv-a and srv-b.
	if _, err := eng.SubmitMetrics(ctx, "srv-c", 90, 0, 700, authority); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.SubmitMetrics(ctx, "srv-d", 90, 0, 300, authority); err != nil {
		t.Fatal(err)
	}
	clk.Advance(time.Duration(stipend.ClaimCooldown) * time.Second)

	var wg sync.WaitGroup
	for _, id := range []string{"srv-a", "srv-b"} {
		for w := 0; w < 4; w++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				for i := 0; i < 25; i++ {
					if _, err := eng.SubmitMetrics(ctx, id, 90, 1, 2, authority); err != nil {
						t.Error(err)
					}
				}
			}(id)
		}
	}
	for _, c := range []struct {
		id    string
		owner types.Identity
	}{
		{"srv-c", alice}, {"srv-d", bob},
	} {
		wg.Add(1)
		go func(id string, owner types.Identity) {
			defer wg.Done()
			if _, err := eng.ClaimRewards(ctx, id, owner); err != nil {
				t.Error(err)
			}
		}(c.id, c.owner)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			if err := eng.DepositRewards(ctx, authority, 10); err != nil {
				t.Error(err)
			}
		}
	}()
	wg.Wait()

	var pending uint64
	for _, id := range []string{"srv-a", "srv-b", "srv-c", "srv-d"} {
		rec, err := eng.Server(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		pending += rec.PendingRewards.Uint64()
	}
	if pending != 400 {
		t.Errorf("pending sum = %d, want 400", pending)
	}

	pool, err := eng.PoolBalance(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if pool != 4100 {
		t.Errorf("pool = %d, want 4100", pool)
	}
	if got := bank.Balance(stipend.DefaultPoolAccount); got != pool {
		t.Errorf("pool account balance = %d, ledger says %d", got, pool)
	}

	// Every unit deposited is in the pool, pending on a record, or paid out.
	paid := bank.Balance(alice) + bank.Balance(bob)
	if total := pool + pending + paid; total != 5100 {
		t.Errorf("pool %d + pending %d + paid %d = %d, want 5100", pool, pending, paid, total)
	}
}

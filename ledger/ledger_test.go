package ledger

import "testing"

func TestSideOpposite(t *testing.T) {
	if Buy.Opposite() != Sell || Sell.Opposite() != Buy {
		t.Fatalf("opposite mapping broken")
	}
}

func TestApplyFillOpensAndCloses(t *testing.T) {
	var l Ledger
	l.ApplyFill(Buy, 2, 100, false)
	if got := l.NetInventory(); got != 2 {
		t.Fatalf("expected net 2, got %f", got)
	}
	l.ApplyFill(Buy, 2, 110, false) // avg cost -> 105

	l.ApplyFill(Sell, 4, 115, true)
	st := l.Snapshot()
	if st.Long != 0 || st.Net != 0 {
		t.Fatalf("expected flat after reduce, got %+v", st)
	}
	if st.Realized != (115-105)*4 {
		t.Fatalf("expected realized 40, got %f", st.Realized)
	}
}

func TestReduceOnlyClampsAtZero(t *testing.T) {
	var l Ledger
	l.ApplyFill(Sell, 3, 100, false) // short 3
	clamped := l.ApplyFill(Buy, 5, 90, true)
	if !clamped {
		t.Fatalf("expected clamp when closing more than position")
	}
	st := l.Snapshot()
	if st.Short != 0 || st.Long != 0 {
		t.Fatalf("reduce-only must not flip position: %+v", st)
	}
	if st.Realized != (100-90)*3 {
		t.Fatalf("expected realized 30, got %f", st.Realized)
	}
}

func TestMarkPriceUnrealized(t *testing.T) {
	var l Ledger
	l.ApplyFill(Buy, 2, 100, false)
	l.MarkPrice(105)
	if got := l.TotalPnL(); got != 10 {
		t.Fatalf("expected unrealized 10, got %f", got)
	}
	l.MarkPrice(95)
	if got := l.TotalPnL(); got != -10 {
		t.Fatalf("expected unrealized -10, got %f", got)
	}
}

func TestApplySnapshotWins(t *testing.T) {
	var l Ledger
	l.ApplyFill(Buy, 2, 100, false)
	l.ApplySnapshot(5, 0, 12.5)
	st := l.Snapshot()
	if st.Long != 5 || st.Unrealized != 12.5 {
		t.Fatalf("gateway snapshot must override local state: %+v", st)
	}
}

func TestNetInventoryIdentity(t *testing.T) {
	var l Ledger
	l.ApplyFill(Buy, 3, 100, false)
	l.ApplyFill(Sell, 1, 100, false)
	st := l.Snapshot()
	if st.Net != st.Long-st.Short {
		t.Fatalf("net invariant broken: %+v", st)
	}
}

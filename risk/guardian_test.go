package risk

import "testing"

type stubPnL struct{ v float64 }

func (s *stubPnL) TotalPnL() float64 { return s.v }

func TestGuardianTriggersOnTarget(t *testing.T) {
	src := &stubPnL{v: 0}
	g := &Guardian{Enabled: true, Target: 100, Source: src}
	g.Arm()

	if trig, _ := g.Check(); trig {
		t.Fatalf("must not trigger at baseline")
	}
	src.v = 99.9
	if trig, _ := g.Check(); trig {
		t.Fatalf("must not trigger below target")
	}
	src.v = 105
	trig, profit := g.Check()
	if !trig {
		t.Fatalf("expected trigger at 105")
	}
	if profit != 105 {
		t.Fatalf("expected profit 105, got %f", profit)
	}
}

func TestGuardianBaselineOffsets(t *testing.T) {
	src := &stubPnL{v: 50}
	g := &Guardian{Enabled: true, Target: 100, Source: src}
	g.Arm()

	src.v = 120 // only +70 since baseline
	if trig, _ := g.Check(); trig {
		t.Fatalf("baseline must offset pre-run pnl")
	}
	src.v = 155
	if trig, _ := g.Check(); !trig {
		t.Fatalf("expected trigger at +105 since baseline")
	}
}

func TestGuardianDisabledOrDisarmed(t *testing.T) {
	src := &stubPnL{v: 1000}
	g := &Guardian{Enabled: false, Target: 1, Source: src}
	g.Arm()
	if trig, _ := g.Check(); trig {
		t.Fatalf("disabled guardian must not trigger")
	}

	g.Enabled = true
	g.Disarm()
	if trig, _ := g.Check(); trig {
		t.Fatalf("disarmed guardian must not trigger")
	}

	var nilG *Guardian
	if trig, _ := nilG.Check(); trig {
		t.Fatalf("nil guardian must not trigger")
	}
}

func TestGuardianRearmCapturesNewBaseline(t *testing.T) {
	src := &stubPnL{v: 105}
	g := &Guardian{Enabled: true, Target: 100, Source: src}
	g.Arm()
	if g.Baseline() != 105 {
		t.Fatalf("expected fresh baseline 105, got %f", g.Baseline())
	}
	if trig, _ := g.Check(); trig {
		t.Fatalf("must not re-trigger right after re-arm")
	}
}

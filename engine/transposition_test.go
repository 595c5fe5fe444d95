package engine

import "testing"

func newTestTT(clusters int) *TransTable {
	tt := &TransTable{}
	tt.Resize(uint64(clusters) * clusterSize * 16)
	return tt
}

func TestTTStoreProbeRoundTrip(t *testing.T) {
	tt := newTestTT(64)
	hash := uint64(0xdeadbeef12345678)
	best := Move(42)

	tt.Store(hash, 3, 8, Score(120), Score(90), BoundExact, true, best)

	res, ok := tt.Probe(hash, 3)
	if !ok {
		t.Fatal("expected a hit after Store")
	}
	if res.Move != best {
		t.Errorf("Move = %v, want %v", res.Move, best)
	}
	if res.Score != 120 {
		t.Errorf("Score = %d, want 120", res.Score)
	}
	if res.StaticEval != 90 {
		t.Errorf("StaticEval = %d, want 90", res.StaticEval)
	}
	if res.Depth != 8 {
		t.Errorf("Depth = %d, want 8", res.Depth)
	}
	if res.Bound != BoundExact {
		t.Errorf("Bound = %v, want BoundExact", res.Bound)
	}
	if !res.IsPV {
		t.Error("IsPV = false, want true")
	}
}

func TestTTProbeMissOnEmptyOrWrongKey(t *testing.T) {
	tt := newTestTT(64)
	if _, ok := tt.Probe(12345, 0); ok {
		t.Error("expected miss on an empty table")
	}

	tt.Store(1, 0, 4, 0, 0, BoundExact, false, NullMove)
	if _, ok := tt.Probe(2, 0); ok {
		t.Error("expected miss for a different hash sharing no slot")
	}
}

func TestTTProbeOnUnresizedTableIsSafeNoOp(t *testing.T) {
	tt := &TransTable{}
	if _, ok := tt.Probe(1, 0); ok {
		t.Error("expected Probe on zero-value TransTable to report a miss")
	}
	tt.Store(1, 0, 4, 0, 0, BoundExact, false, NullMove) // must not panic
}

func TestUsableBoundLogic(t *testing.T) {
	exact := TTProbeResult{Depth: 10, Bound: BoundExact, Score: 50}
	if !Usable(exact, 5, -100, 100) {
		t.Error("exact bound at sufficient depth should always be usable")
	}
	if Usable(exact, 20, -100, 100) {
		t.Error("a shallower stored depth than required should not be usable")
	}

	lower := TTProbeResult{Depth: 10, Bound: BoundLower, Score: 200}
	if !Usable(lower, 5, -100, 100) {
		t.Error("a lower bound above beta should cause a cutoff")
	}
	if Usable(TTProbeResult{Depth: 10, Bound: BoundLower, Score: 50}, 5, -100, 100) {
		t.Error("a lower bound below beta should not cause a cutoff")
	}

	upper := TTProbeResult{Depth: 10, Bound: BoundUpper, Score: -200}
	if !Usable(upper, 5, -100, 100) {
		t.Error("an upper bound below alpha should cause a cutoff")
	}
	if Usable(TTProbeResult{Depth: 10, Bound: BoundUpper, Score: 50}, 5, -100, 100) {
		t.Error("an upper bound above alpha should not cause a cutoff")
	}
}

func TestTTReplacementKeepsSameKeySlot(t *testing.T) {
	tt := newTestTT(1) // single cluster forces collisions within clusterSize
	hash := uint64(77)

	tt.Store(hash, 0, 10, 1, 1, BoundExact, false, Move(1))
	tt.Store(hash, 0, 3, 2, 2, BoundExact, false, Move(2))

	res, ok := tt.Probe(hash, 0)
	if !ok {
		t.Fatal("expected a hit")
	}
	if res.Depth != 3 || res.Move != Move(2) {
		t.Errorf("second Store for the same key should overwrite in place, got depth=%d move=%v", res.Depth, res.Move)
	}
}

func TestTTClearRemovesAllEntries(t *testing.T) {
	tt := newTestTT(64)
	tt.Store(99, 0, 5, 1, 1, BoundExact, false, Move(3))
	tt.Clear()
	if _, ok := tt.Probe(99, 0); ok {
		t.Error("expected a miss after Clear")
	}
}

func TestTTNewGenerationAdvancesAge(t *testing.T) {
	tt := newTestTT(64)
	before := tt.generation.Load()
	tt.NewGeneration()
	if tt.generation.Load() != before+1 {
		t.Errorf("generation = %d, want %d", tt.generation.Load(), before+1)
	}
}

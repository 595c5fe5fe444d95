package engine

import "testing"

func TestScoreToFromTTRoundTrip(t *testing.T) {
	cases := []struct {
		score  Score
		height int
	}{
		{100, 0},
		{-100, 5},
		{Draw, 12},
		{mateIn(3), 7},
		{matedIn(4), 2},
		{KnownWin - 1, 40},
	}
	for _, c := range cases {
		stored := ScoreToTT(c.score, c.height)
		got := ScoreFromTT(stored, c.height)
		if got != c.score {
			t.Errorf("ScoreFromTT(ScoreToTT(%d, %d), %d) = %d, want %d", c.score, c.height, c.height, got, c.score)
		}
	}
}

func TestScoreToTTInvalidPassesThrough(t *testing.T) {
	if got := ScoreToTT(Invalid, 10); got != Invalid {
		t.Errorf("ScoreToTT(Invalid, 10) = %d, want Invalid", got)
	}
	if got := ScoreFromTT(Invalid, 10); got != Invalid {
		t.Errorf("ScoreFromTT(Invalid, 10) = %d, want Invalid", got)
	}
}

func TestMateInMatedInAreOpposites(t *testing.T) {
	for h := 0; h < 10; h++ {
		if mateIn(h) != -matedIn(h) {
			t.Errorf("mateIn(%d)=%d, -matedIn(%d)=%d, want equal", h, mateIn(h), h, -matedIn(h))
		}
	}
}

func TestIsWinIsLoss(t *testing.T) {
	if !IsWin(mateIn(1)) {
		t.Error("mateIn(1) should be a win")
	}
	if !IsLoss(matedIn(1)) {
		t.Error("matedIn(1) should be a loss")
	}
	if IsWin(Score(50)) {
		t.Error("a small centipawn score should not be classified as a win")
	}
	if IsLoss(Score(-50)) {
		t.Error("a small centipawn score should not be classified as a loss")
	}
}

func TestClampEvalStaysInsideKnownWin(t *testing.T) {
	if got := clampEval(1_000_000); got >= KnownWin {
		t.Errorf("clampEval(1_000_000) = %d, want < KnownWin", got)
	}
	if got := clampEval(-1_000_000); got <= -KnownWin {
		t.Errorf("clampEval(-1_000_000) = %d, want > -KnownWin", got)
	}
	if got := clampEval(10); got != 10 {
		t.Errorf("clampEval(10) = %d, want 10 (untouched)", got)
	}
}

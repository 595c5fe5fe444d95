package engine

import (
	"testing"

	"github.com/dylhunn/dragontoothmg"
)

// The starting position is exactly symmetric under a colour swap, so the
// hand-crafted score (no NN) must come out identical whether White or Black
// is recorded as the side to move: the tempo bonus sign and the final
// side-relative negation cancel each other out.
func TestEvaluateStartposSideToMoveInvariant(t *testing.T) {
	e := &Evaluator{}
	white := NewPositionFromFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	black := NewPositionFromFEN("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1")

	sw := e.Evaluate(&white, nil)
	sb := e.Evaluate(&black, nil)
	if sw != sb {
		t.Errorf("Evaluate(startpos, white to move) = %d, Evaluate(startpos, black to move) = %d, want equal", sw, sb)
	}
}

func TestEvaluateRewardsMaterialAdvantage(t *testing.T) {
	e := &Evaluator{}
	even := NewPositionFromFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	whiteUp := NewPositionFromFEN("4k3/8/8/8/8/8/3Q4/4K3 w - - 0 1")

	sEven := e.Evaluate(&even, nil)
	sUp := e.Evaluate(&whiteUp, nil)
	if sUp <= sEven {
		t.Errorf("Evaluate with an extra queen = %d, want > bare-kings score %d", sUp, sEven)
	}
}

// After a quiet non-king move, the incrementally updated psqt/material
// cache must exactly match a full recompute for the resulting position.
func TestUpdatePSQTMatchesFullRecomputeAfterQuietMove(t *testing.T) {
	e := &Evaluator{}
	pos := NewPositionFromFEN("r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4")

	var parent NodeInfo
	e.computePSQTAndMaterial(&pos, true, &parent)
	e.computePSQTAndMaterial(&pos, false, &parent)
	parent.psqtValid = true

	var move Move
	for _, m := range pos.GenerateMoves(FilterAll) {
		if !dragontoothmgIsKingMove(&pos, m) {
			move = m
			break
		}
	}
	if isNullMove(move) {
		t.Fatal("expected at least one non-king legal move")
	}

	undo, dirty := pos.DoMove(move)
	defer undo()

	var child NodeInfo
	updatePSQT(&parent, &child, &pos, dirty)
	if !child.psqtValid {
		t.Fatal("expected the cache to stay valid after a non-king move")
	}

	var fresh NodeInfo
	wantMG, wantEG := e.computePSQTAndMaterial(&pos, true, &fresh)
	if child.psqtMG[0] != wantMG || child.psqtEG[0] != wantEG {
		t.Errorf("incremental white psqt/material = (%d, %d), want (%d, %d)", child.psqtMG[0], child.psqtEG[0], wantMG, wantEG)
	}
	wantMG, wantEG = e.computePSQTAndMaterial(&pos, false, &fresh)
	if child.psqtMG[1] != wantMG || child.psqtEG[1] != wantEG {
		t.Errorf("incremental black psqt/material = (%d, %d), want (%d, %d)", child.psqtMG[1], child.psqtEG[1], wantMG, wantEG)
	}
}

// A king move must invalidate the cache outright rather than patch it.
func TestUpdatePSQTInvalidatesOnKingMove(t *testing.T) {
	e := &Evaluator{}
	pos := NewPositionFromFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")

	var parent NodeInfo
	e.computePSQTAndMaterial(&pos, true, &parent)
	e.computePSQTAndMaterial(&pos, false, &parent)
	parent.psqtValid = true

	moves := pos.GenerateMoves(FilterAll)
	if len(moves) == 0 {
		t.Fatal("expected a legal king move")
	}
	undo, dirty := pos.DoMove(moves[0])
	defer undo()

	var child NodeInfo
	updatePSQT(&parent, &child, &pos, dirty)
	if child.psqtValid {
		t.Error("expected a king move to invalidate the psqt cache")
	}
}

func dragontoothmgIsKingMove(pos *Position, m Move) bool {
	piece, _ := GetPieceTypeAtPosition(m.From(), sideBitboards(&pos.Board, pos.GetSideToMove()))
	return piece == dragontoothmg.King
}

func TestEvaluateMirroredMaterialDisadvantage(t *testing.T) {
	e := &Evaluator{}
	whiteUp := NewPositionFromFEN("4k3/8/8/8/8/8/3Q4/4K3 w - - 0 1")
	blackUp := NewPositionFromFEN("4k3/3q4/8/8/8/8/8/4K3 w - - 0 1")

	sWhiteUp := e.Evaluate(&whiteUp, nil)
	sBlackUp := e.Evaluate(&blackUp, nil)
	if sWhiteUp <= 0 {
		t.Errorf("white up a queen should score positive (white to move), got %d", sWhiteUp)
	}
	if sBlackUp >= 0 {
		t.Errorf("black up a queen should score negative (white to move), got %d", sBlackUp)
	}
}

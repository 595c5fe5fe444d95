package engine

import (
	"math/bits"

	"github.com/dylhunn/dragontoothmg"
	"chess-engine/nnue"
)

// EndgameOracle is the pluggable "evaluator oracle" from §6: for positions
// with few pieces it may return a definite (score, scale) pair, bypassing
// both the hand-crafted terms and the NN.
type EndgameOracle interface {
	EvaluateEndgame(pos *Position) (score Score, scale int, ok bool)
}

// nnThresholdMin/Max bound the hand-crafted score magnitude within which the
// NN is trusted and blended in; beyond nnThresholdMax the position is
// considered decisive enough that the (cheaper, less precise near mates)
// hand-crafted score alone is used. Mirrors c_nnTresholdMin/Max.
const (
	nnThresholdMin = 768
	nnThresholdMax = 1024
)

// Evaluator computes a side-to-move-relative centipawn score for a
// Position, optionally blending in a quantized NN and an endgame oracle.
type Evaluator struct {
	Network *nnue.Network // nil means hand-crafted-only mode
	Oracle  EndgameOracle
}

// Evaluate implements §4.B step by step. node may be nil (full recompute,
// no incremental PSQT/accumulator available); when non-nil, its cached
// psqtMG/psqtEG sums (valid unless the last move was a king move) and its NN
// accumulator (when marked Computed) are reused incrementally.
func (e *Evaluator) Evaluate(pos *Position, node *NodeInfo) Score {
	if pos.GetNumPieces() <= 6 && e.Oracle != nil {
		if s, _, ok := e.Oracle.EvaluateEndgame(pos); ok {
			return s
		}
	}

	mgWhite, egWhite := e.computePSQTAndMaterial(pos, true, node)
	mgBlack, egBlack := e.computePSQTAndMaterial(pos, false, node)
	if node != nil {
		node.psqtValid = true
	}
	mg := mgWhite - mgBlack
	eg := egWhite - egBlack

	b := &pos.Board
	if hasBishopPair(b.White.Bishops) {
		mg += bishopPairBonusMG
		eg += bishopPairBonusEG
	}
	if hasBishopPair(b.Black.Bishops) {
		mg -= bishopPairBonusMG
		eg -= bishopPairBonusEG
	}

	mg += mobilityDelta(pos, true) - mobilityDelta(pos, false)

	if pos.GetSideToMove() {
		mg += tempoBonus
	} else {
		mg -= tempoBonus
	}

	phase := gamePhase(b)
	hc := (mg*phase + eg*(totalPhase-phase)) / totalPhase
	if !pos.GetSideToMove() {
		hc = -hc
	}

	score := hc
	if e.Network != nil && abs(hc) < nnThresholdMax {
		nnScore := e.evaluateNN(pos, node)
		score = blend(hc, nnScore, nnThresholdMin, nnThresholdMax)
	}

	score = saturate(score)
	score = (score * endgameScale(pos)) / endgameScaleMax

	return clampEval(score)
}

// computePSQTAndMaterial returns (mg, eg) contributions for one side, caching
// the result into node (if given) so a later child position can reuse it
// incrementally via updatePSQT instead of rescanning every piece.
func (e *Evaluator) computePSQTAndMaterial(pos *Position, white bool, node *NodeInfo) (mg, eg int) {
	if node != nil && node.psqtValid {
		return node.psqtMG[side(white)], node.psqtEG[side(white)]
	}
	bb := pos.Whites()
	if !white {
		bb = pos.Blacks()
	}
	kingSq := pos.GetKingSquare(white)
	bucket := kingBucket(kingSq)

	for _, pc := range []dragontoothmg.Piece{dragontoothmg.Pawn, dragontoothmg.Knight, dragontoothmg.Bishop, dragontoothmg.Rook, dragontoothmg.Queen, dragontoothmg.King} {
		bits64 := pieceBitboard(bb, pc)
		for x := bits64; x != 0; x &= x - 1 {
			sq := uint8(bits.TrailingZeros64(x))
			mg += psqtTerm(pc, sq, white, bucket, true)
			eg += psqtTerm(pc, sq, white, bucket, false)
		}
	}
	if node != nil {
		node.psqtMG[side(white)] = mg
		node.psqtEG[side(white)] = eg
	}
	return mg, eg
}

// psqtTerm is one piece's combined piece-square and material value, shared
// between the full scan above and updatePSQT's incremental deltas below.
func psqtTerm(piece dragontoothmg.Piece, sq uint8, white bool, bucket int, mg bool) int {
	if mg {
		return psqtValue(piece, sq, white, bucket, true) + pieceValueMG[piece]
	}
	return psqtValue(piece, sq, white, bucket, false) + pieceValueEG[piece]
}

// updatePSQT derives the child node's cached psqtMG/psqtEG from the parent's
// cache plus the squares DoMove touched, mirroring updateAccumulators'
// incremental-with-full-recompute-fallback shape (§4.B step 2, §4.E). A king
// move invalidates the cache outright since every king-bucketed term for
// that perspective depends on the king's own square; Evaluate then falls
// back to computePSQTAndMaterial's full scan next time it's needed.
func updatePSQT(parent, child *NodeInfo, pos *Position, dirty []DirtyPiece) {
	child.psqtValid = false
	if parent == nil || !parent.psqtValid {
		return
	}
	for _, d := range dirty {
		if d.Piece == dragontoothmg.King {
			return
		}
	}

	child.psqtMG = parent.psqtMG
	child.psqtEG = parent.psqtEG
	for _, d := range dirty {
		bucket := kingBucket(pos.GetKingSquare(d.White))
		idx := side(d.White)
		mgTerm := psqtTerm(d.Piece, d.Square, d.White, bucket, true)
		egTerm := psqtTerm(d.Piece, d.Square, d.White, bucket, false)
		if d.Removed {
			child.psqtMG[idx] -= mgTerm
			child.psqtEG[idx] -= egTerm
		} else {
			child.psqtMG[idx] += mgTerm
			child.psqtEG[idx] += egTerm
		}
	}
	child.psqtValid = true
}

func pieceBitboard(bb *dragontoothmg.Bitboards, pc dragontoothmg.Piece) uint64 {
	switch pc {
	case dragontoothmg.Pawn:
		return bb.Pawns
	case dragontoothmg.Knight:
		return bb.Knights
	case dragontoothmg.Bishop:
		return bb.Bishops
	case dragontoothmg.Rook:
		return bb.Rooks
	case dragontoothmg.Queen:
		return bb.Queens
	case dragontoothmg.King:
		return bb.Kings
	}
	return 0
}

func side(white bool) int {
	if white {
		return 0
	}
	return 1
}

func hasBishopPair(bishops uint64) bool {
	return bishops&lightSquares != 0 && bishops&^lightSquares != 0
}

func mobilityDelta(pos *Position, white bool) int {
	bb := pos.Whites()
	if !white {
		bb = pos.Blacks()
	}
	all := pos.Board.White.All | pos.Board.Black.All
	own := bb.All
	total := 0
	for x := bb.Knights; x != 0; x &= x - 1 {
		sq := uint8(bits.TrailingZeros64(x))
		total += bits.OnesCount64(KnightMasks[sq]&^own) * mobilityValueMG[dragontoothmg.Knight]
	}
	for x := bb.Bishops; x != 0; x &= x - 1 {
		sq := uint8(bits.TrailingZeros64(x))
		total += bits.OnesCount64(dragontoothmg.CalculateBishopMoveBitboard(sq, all)&^own) * mobilityValueMG[dragontoothmg.Bishop]
	}
	for x := bb.Rooks; x != 0; x &= x-1 {
		sq := uint8(bits.TrailingZeros64(x))
		total += bits.OnesCount64(dragontoothmg.CalculateRookMoveBitboard(sq, all)&^own) * mobilityValueMG[dragontoothmg.Rook]
	}
	return total
}

func gamePhase(b *dragontoothmg.Board) int {
	p := bits.OnesCount64(b.White.Pawns|b.Black.Pawns)*pawnPhase +
		bits.OnesCount64(b.White.Knights|b.Black.Knights)*knightPhase +
		bits.OnesCount64(b.White.Bishops|b.Black.Bishops)*bishopPhase +
		bits.OnesCount64(b.White.Rooks|b.Black.Rooks)*rookPhase +
		bits.OnesCount64(b.White.Queens|b.Black.Queens)*queenPhase
	if p > totalPhase {
		p = totalPhase
	}
	return p
}

func blend(handCrafted, nn int, min, max int) int {
	mag := abs(handCrafted)
	if mag <= min {
		return nn
	}
	if mag >= max {
		return handCrafted
	}
	w := (mag - min) * 256 / (max - min)
	return (nn*(256-w) + handCrafted*w) / 256
}

func saturate(s int) int {
	if s > saturationThreshold {
		return saturationThreshold + (s-saturationThreshold)/8
	}
	if s < -saturationThreshold {
		return -saturationThreshold + (s+saturationThreshold)/8
	}
	return s
}

// endgameScale returns a value in [0, endgameScaleMax] that pulls drawish
// material toward zero: a pawnless position with at most two non-king pieces
// on the board is scaled to a quarter; every other position is unscaled.
func endgameScale(pos *Position) int {
	b := &pos.Board
	pawns := bits.OnesCount64(b.White.Pawns | b.Black.Pawns)
	if pawns == 0 {
		nonPawnMaterial := bits.OnesCount64(b.White.All&^b.White.Pawns&^b.White.Kings) +
			bits.OnesCount64(b.Black.All&^b.Black.Pawns&^b.Black.Kings)
		if nonPawnMaterial <= 2 {
			return endgameScaleMax / 4
		}
	}
	return endgameScaleMax
}

func (e *Evaluator) evaluateNN(pos *Position, node *NodeInfo) int {
	var acc *nnue.Accumulator
	if node != nil && node.accum != nil && node.accum.Computed {
		acc = node.accum
	} else {
		var full nnue.Accumulator
		full.ComputeFull(nnuePosition{pos}, e.Network)
		acc = &full
	}
	raw := e.Network.Forward(acc, pos.GetSideToMove())
	cp := int(float64(raw) * nnOutputToCentipawns)
	if !pos.GetSideToMove() {
		cp = -cp
	}
	return cp
}

// nnOutputToCentipawns is 400/ln(10) divided by 1024: it converts the
// network's integer logistic-scale output from Forward into centipawns.
const nnOutputToCentipawns = 400.0 / 2.302585092994046 / 1024.0

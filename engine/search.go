package engine

import (
	"sync/atomic"

	"github.com/dylhunn/dragontoothmg"
)

// LMR is the late-move-reduction table indexed by [min(depth,63)][min(moveIndex,63)].
var LMR [64][64]int8

func init() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			r := 1.0 + float64(d)/8.0 + float64(m)/16.0
			LMR[d][m] = int8(r)
		}
	}
}

const (
	nullMoveMinDepth   = 3
	nullMoveBaseReduction = 3
	rfpMaxDepth        = 8
	rfpMarginPerDepth  = 75
	razorMaxDepth      = 3
	razorMargin        = 300
	lmpMaxDepth        = 8
	iidMinDepth        = 6
	singularMinDepth   = 6
	doubleExtensionCap = 6
	checkEveryNNodes   = 2048
	seePruneMaxDepth   = 7
	seePruneMargin     = 90
)

// SearchParam bundles everything one DoSearch call shares across worker
// threads: the transposition table, the limits, the evaluator, the
// tablebase oracle, and the single shared stop flag (§3, §5).
type SearchParam struct {
	TT         *TransTable
	Limits     SearchLimits
	NumThreads int
	NumPvLines int
	Evaluator  *Evaluator
	Oracle     TablebaseOracle
	Stop       atomic.Bool
}

// TablebaseOracle is the pluggable Syzygy-style probe interface from §6.
type TablebaseOracle interface {
	ProbeWDL(pos *Position) (score Score, ok bool)
	ProbeDTZ(pos *Position) (move Move, ok bool)
}

// negamax implements §4.F. alpha<beta and depth>=0 (quiescence is entered
// explicitly once depth<=0) are the caller's responsibility.
func negamax(td *ThreadData, param *SearchParam, pos *Position, height, depth int, alpha, beta Score, cutNode bool, filteredMove Move) Score {
	isPV := beta-alpha > 1

	if depth <= 0 {
		return quiescence(td, param, pos, height, alpha, beta)
	}

	td.stats.addNode()
	if td.stats.Nodes%checkEveryNNodes == 0 && (param.Stop.Load() || td.stopThread.Load()) {
		return Invalid
	}
	if param.Stop.Load() {
		return Invalid
	}

	node := &td.stack[height]
	node.position = *pos
	node.height = height
	node.depth = depth
	node.isPV = isPV
	node.filteredMove = filteredMove
	node.previousMove = NullMove
	node.doubleExtensions = 0
	if height > 0 {
		node.previousMove = td.stack[height-1].lastMoveMade
		node.doubleExtensions = td.stack[height-1].doubleExtensions
	}
	node.pvLength = 0

	if height > 0 {
		if isRepetition(td, pos.GetHash(), height) || pos.IsDrawByFiftyMoves() {
			return Draw
		}
		if pos.IsInsufficientMaterial() {
			return Draw
		}
	}

	// Mate-distance pruning (§4.F step 3).
	if alpha < matedIn(height) {
		alpha = matedIn(height)
	}
	if beta > mateIn(height+1) {
		beta = mateIn(height + 1)
	}
	if alpha >= beta {
		return alpha
	}

	white := pos.GetSideToMove()
	inCheck := pos.IsInCheck(white)
	node.isInCheck = inCheck

	hash := pos.GetHash()
	var ttMove Move
	ttHit, hasTT := param.TT.Probe(hash, height)
	if hasTT {
		ttMove = ttHit.Move
		if isNullMove(filteredMove) && Usable(ttHit, depth, alpha, beta) && (!isPV || ttHit.Bound == BoundExact) {
			td.stats.TTCutoffs++
			return ttHit.Score
		}
	}

	if param.Oracle != nil && height > 0 && pos.GetNumPieces() <= 6 {
		if s, ok := param.Oracle.ProbeWDL(pos); ok {
			td.stats.TBHits++
			param.TT.Store(hash, height, int8(depth), s, s, BoundExact, isPV, NullMove)
			return s
		}
	}

	var staticEval Score
	if inCheck {
		staticEval = Invalid
	} else if hasTT && ttHit.StaticEval != Invalid {
		staticEval = ttHit.StaticEval
	} else {
		staticEval = param.Evaluator.Evaluate(pos, node)
	}
	node.staticEval = staticEval

	if !isPV && !inCheck && isNullMove(filteredMove) {
		// Reverse futility / static-null pruning.
		if depth <= rfpMaxDepth && staticEval-Score(rfpMarginPerDepth*depth) >= beta && !IsWin(beta) {
			return staticEval
		}
		// Razoring.
		if depth <= razorMaxDepth && staticEval+Score(razorMargin) <= alpha {
			return quiescence(td, param, pos, height, alpha, beta)
		}
		// Null-move pruning.
		if depth >= nullMoveMinDepth && staticEval >= beta && hasNonPawnMaterial(pos, white) {
			r := nullMoveBaseReduction + depth/4
			undo := applyNullMove(pos)
			node.isNullMove = true
			score := -negamax(td, param, pos, height+1, depth-1-r, -beta, -beta+1, !cutNode, NullMove)
			undo()
			node.isNullMove = false
			if score != Invalid && score >= beta {
				if IsWin(score) {
					score = beta
				}
				return score
			}
		}
	}

	// Internal iterative deepening: no TT move at a PV node, high depth.
	if isPV && !hasTT && depth >= iidMinDepth && isNullMove(filteredMove) {
		negamax(td, param, pos, height, depth-2, alpha, beta, cutNode, NullMove)
		if probe, ok := param.TT.Probe(hash, height); ok {
			ttMove = probe.Move
		}
	}

	moves := pos.GenerateMoves(FilterAll)
	if len(moves) == 0 {
		if inCheck {
			return matedIn(height)
		}
		return Draw
	}

	var prevPiece dragontoothmg.Piece
	if height > 0 && !isNullMove(node.previousMove) {
		prevPiece, _ = GetPieceTypeAtPosition(node.previousMove.To(), sideBitboards(&pos.Board, !white))
	}
	scored := td.orderer.ScoreMoves(pos, moves, ttMove, height, node.previousMove, prevPiece, !white)

	bestScore := Score(Invalid)
	var bestMove Move
	origAlpha := alpha
	triedQuiets := make([]Move, 0, len(moves))
	triedCaptures := make([]Move, 0, len(moves))
	legalCount := 0

	for i := range scored {
		move := Next(scored, i)
		if move == filteredMove {
			continue
		}

		isCap := dragontoothmg.IsCapture(move, &pos.Board)
		isPromo := move.Promote() != dragontoothmg.Nothing

		if legalCount > 0 && !isPV {
			// Late-move pruning.
			if depth <= lmpMaxDepth && !isCap && !isPromo && legalCount > 3+depth*depth {
				continue
			}
			// SEE pruning: skip clearly losing captures at shallow depth.
			if isCap && depth <= seePruneMaxDepth && SEE(&pos.Board, move) < -seePruneMargin*depth {
				continue
			}
		}

		// Singular extension.
		extension := 0
		if move == ttMove && hasTT && depth >= singularMinDepth && int(ttHit.Depth) >= depth-3 && ttHit.Bound == BoundLower && node.doubleExtensions < doubleExtensionCap {
			singBeta := ttHit.Score - Score(2*depth)
			sScore := negamax(td, param, pos, height, depth/2, singBeta-1, singBeta, cutNode, move)
			if sScore != Invalid && sScore < singBeta {
				extension = 1
				if singBeta-sScore > 64 {
					extension = 2
				}
				node.doubleExtensions++
			}
		}
		if gives := movegivesCheck(pos, move); gives && SEE(&pos.Board, move) >= 0 {
			extension = max(extension, 1)
		}

		undo, dirty := pos.DoMove(move)
		legalCount++
		node.lastMoveMade = move
		updateAccumulators(td, param, pos, height, dirty)
		updatePSQT(node, &td.stack[height+1], pos, dirty)

		childDepth := depth - 1 + extension
		var score Score
		if legalCount == 1 {
			score = -negamax(td, param, pos, height+1, childDepth, -beta, -alpha, false, NullMove)
		} else {
			reduction := 0
			if !isCap && !isPromo && legalCount > 3 {
				reduction = int(LMR[min64(depth, 63)][min64(legalCount, 63)])
				if cutNode {
					reduction++
				}
				if node.isInCheck {
					reduction--
				}
				if reduction < 0 {
					reduction = 0
				}
				if childDepth-reduction < 1 {
					reduction = childDepth - 1
				}
			}
			score = -negamax(td, param, pos, height+1, childDepth-reduction, -alpha-1, -alpha, true, NullMove)
			if score != Invalid && score > alpha && (reduction > 0 || score < beta) {
				score = -negamax(td, param, pos, height+1, childDepth, -beta, -alpha, false, NullMove)
			}
		}
		undo()

		if score == Invalid {
			return Invalid
		}

		if !isCap && !isPromo {
			triedQuiets = append(triedQuiets, move)
		} else if isCap {
			triedCaptures = append(triedCaptures, move)
		}

		if score > bestScore {
			bestScore = score
			bestMove = move
			if score > alpha {
				alpha = score
				if isPV {
					node.pvLine[0] = move
					copy(node.pvLine[1:], td.stack[height+1].pvLine[:td.stack[height+1].pvLength])
					node.pvLength = 1 + td.stack[height+1].pvLength
				}
			}
		}

		if alpha >= beta {
			if !isCap && !isPromo {
				td.orderer.OnBetaCutoff(pos, move, triedQuiets, height, depth, node.previousMove, prevPiece)
			} else if isCap {
				td.orderer.OnCaptureBetaCutoff(pos, move, triedCaptures, depth)
			}
			td.stats.BetaCutoffs++
			bound := BoundLower
			param.TT.Store(hash, height, int8(depth), bestScore, staticEval, bound, isPV, bestMove)
			return bestScore
		}
	}

	if legalCount == 0 {
		if inCheck {
			return matedIn(height)
		}
		return Draw
	}

	bound := BoundUpper
	if alpha > origAlpha {
		bound = BoundExact
	}
	param.TT.Store(hash, height, int8(depth), bestScore, staticEval, bound, isPV, bestMove)
	return bestScore
}

// quiescence implements the stripped-down §4.F quiescence contract: stand
// pat, captures (+queen promotions) only, SEE + delta pruning.
func quiescence(td *ThreadData, param *SearchParam, pos *Position, height int, alpha, beta Score) Score {
	td.stats.addNode()
	if param.Stop.Load() {
		return Invalid
	}

	white := pos.GetSideToMove()
	inCheck := pos.IsInCheck(white)

	node := &td.stack[height]
	node.height = height

	var standPat Score
	if !inCheck {
		standPat = param.Evaluator.Evaluate(pos, node)
		if standPat >= beta {
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
	} else {
		standPat = matedIn(height)
	}

	filter := FilterCapturesOnly
	if inCheck {
		filter = FilterAll
	}
	moves := pos.GenerateMoves(filter)
	if len(moves) == 0 {
		if inCheck {
			return matedIn(height)
		}
		return standPat
	}

	scored := td.orderer.ScoreMoves(pos, moves, NullMove, min64(height, MaxSearchDepth), NullMove, dragontoothmg.Nothing, !white)
	best := standPat

	for i := range scored {
		move := Next(scored, i)
		isCap := dragontoothmg.IsCapture(move, &pos.Board)
		if !inCheck {
			if !isCap && move.Promote() != dragontoothmg.Queen {
				continue
			}
			if isCap {
				see := SEE(&pos.Board, move)
				if see < 0 {
					continue
				}
				if standPat+Score(see)+200 <= alpha {
					continue
				}
			}
		}

		undo, dirty := pos.DoMove(move)
		updateAccumulators(td, param, pos, height, dirty)
		updatePSQT(node, &td.stack[height+1], pos, dirty)
		score := -quiescence(td, param, pos, height+1, -beta, -alpha)
		undo()

		if score == Invalid {
			return Invalid
		}
		if score > best {
			best = score
			if score > alpha {
				alpha = score
			}
		}
		if alpha >= beta {
			break
		}
	}

	return best
}

func hasNonPawnMaterial(pos *Position, white bool) bool {
	bb := pos.Whites()
	if !white {
		bb = pos.Blacks()
	}
	return bb.Knights|bb.Bishops|bb.Rooks|bb.Queens != 0
}

func movegivesCheck(pos *Position, move Move) bool {
	undo, _ := pos.DoMove(move)
	defer undo()
	return pos.IsInCheck(pos.GetSideToMove())
}

// updateAccumulators maintains the child node's NN accumulator
// incrementally from the parent's, per perspective (§4.E). It is purely a
// performance path: Evaluate falls back to a full recompute whenever
// node.accum is nil or stale, so a skipped update never costs correctness.
func updateAccumulators(td *ThreadData, param *SearchParam, pos *Position, height int, dirty []DirtyPiece) {
	net := param.Evaluator.Network
	if net == nil {
		return
	}
	parent := &td.stack[height]
	child := &td.stack[height+1]
	if parent.accum == nil || !parent.accum.Computed {
		return
	}

	src := nnuePosition{pos}
	whiteKing, blackKing := pos.GetKingSquare(true), pos.GetKingSquare(false)
	kingMovedWhite, kingMovedBlack := false, false
	for _, d := range dirty {
		if d.Piece == dragontoothmg.King {
			if d.White {
				kingMovedWhite = true
			} else {
				kingMovedBlack = true
			}
		}
	}

	addedW, removedW := accumulatorDeltas(dirty, true, whiteKing)
	addedB, removedB := accumulatorDeltas(dirty, false, blackKing)

	child.accum.UpdateSide(parent.accum, true, addedW, removedW, kingMovedWhite, net, src)
	child.accum.UpdateSide(parent.accum, false, addedB, removedB, kingMovedBlack, net, src)
	child.accum.Computed = true
}

func isRepetition(td *ThreadData, hash uint64, height int) bool {
	for h := height - 2; h >= 0 && h >= height-100; h -= 2 {
		if td.stack[h].position.GetHash() == hash {
			return true
		}
	}
	return false
}

func min64(a, b int) int {
	if a < b {
		return a
	}
	return b
}

package engine

import "github.com/dylhunn/dragontoothmg"

const historyClamp = 16384

// scoredMove pairs a pseudo-legal move with its ordering rank for selection-sort
// picking.
type scoredMove struct {
	move  Move
	score int32
}

const (
	rankTT         int32 = 1 << 30
	rankGoodCap    int32 = 1 << 20
	rankPromoQueen int32 = 1<<20 + 1<<16
	rankKiller     int32 = 1 << 15
	rankCounter    int32 = 1 << 14
	rankQuiet      int32 = 0
	rankBadCap     int32 = -(1 << 20)
)

// MoveOrderer holds all per-thread move-ordering state (§3, §4.D): killers,
// counter moves, butterfly history, capture history and continuation
// history. Nothing here is shared between threads.
type MoveOrderer struct {
	killers       [MaxSearchDepth + 1][2]Move
	counterMoves  [2][7][64]Move
	butterfly     [2][64][64]int32
	captureHist   [7][7][64]int32
	contHist      map[contKey]*[7][64]int32
}

type contKey struct {
	piece dragontoothmg.Piece
	to    uint8
}

func (o *MoveOrderer) clear() {
	*o = MoveOrderer{}
	o.contHist = make(map[contKey]*[7][64]int32)
}

// ScoreMoves assigns an ordering rank to every pseudo-legal move, ready for
// selection-sort-on-demand picking via Next.
func (o *MoveOrderer) ScoreMoves(pos *Position, moves []Move, ttMove Move, height int, prevMove Move, prevPiece dragontoothmg.Piece, prevWhite bool) []scoredMove {
	out := make([]scoredMove, len(moves))
	white := pos.GetSideToMove()
	colorIdx := 0
	if !white {
		colorIdx = 1
	}

	var counterMove Move
	if !isNullMove(prevMove) {
		counterMove = o.counterMoves[colorIdx][prevPiece][prevMove.To()]
	}
	cont := o.contHist[contKey{prevPiece, prevMove.To()}]

	for i, m := range moves {
		if m == ttMove {
			out[i] = scoredMove{m, rankTT}
			continue
		}

		isCap := dragontoothmg.IsCapture(m, &pos.Board)
		if isCap {
			see := SEE(&pos.Board, m)
			victim, _ := GetPieceTypeAtPosition(m.To(), sideBitboards(&pos.Board, !white))
			attacker, _ := GetPieceTypeAtPosition(m.From(), sideBitboards(&pos.Board, white))
			mvvLva := int32(victim)*8 - int32(attacker) + int32(see)
			capScore := mvvLva + o.captureHist[attacker][victim][m.To()]
			if see >= 0 {
				out[i] = scoredMove{m, rankGoodCap + capScore}
			} else {
				out[i] = scoredMove{m, rankBadCap + capScore}
			}
			continue
		}
		if m.Promote() == dragontoothmg.Queen {
			out[i] = scoredMove{m, rankPromoQueen}
			continue
		}
		if m == o.killers[height][0] {
			out[i] = scoredMove{m, rankKiller + 1}
			continue
		}
		if m == o.killers[height][1] {
			out[i] = scoredMove{m, rankKiller}
			continue
		}
		if !isNullMove(counterMove) && m == counterMove {
			out[i] = scoredMove{m, rankCounter}
			continue
		}
		score := rankQuiet + o.butterfly[colorIdx][m.From()][m.To()]
		if cont != nil {
			movedPiece, _ := GetPieceTypeAtPosition(m.From(), sideBitboards(&pos.Board, white))
			score += cont[movedPiece][m.To()]
		}
		out[i] = scoredMove{m, score}
	}
	return out
}

// Next performs one step of selection-sort-on-demand: find the max-scored
// move in list[i:], swap it into position i, and return it.
func Next(list []scoredMove, i int) Move {
	best := i
	for j := i + 1; j < len(list); j++ {
		if list[j].score > list[best].score {
			best = j
		}
	}
	list[i], list[best] = list[best], list[i]
	return list[i].move
}

// OnBetaCutoff updates killers/history/counter-moves after a quiet move
// causes a cutoff at remaining depth d (§4.D).
func (o *MoveOrderer) OnBetaCutoff(pos *Position, cutoffMove Move, triedQuiets []Move, height, depth int, prevMove Move, prevPiece dragontoothmg.Piece) {
	white := pos.GetSideToMove()
	colorIdx := 0
	if !white {
		colorIdx = 1
	}

	if o.killers[height][0] != cutoffMove {
		o.killers[height][1] = o.killers[height][0]
		o.killers[height][0] = cutoffMove
	}

	bonus := int32(depth * depth)
	o.adjustHistory(colorIdx, cutoffMove, bonus)
	for _, q := range triedQuiets {
		if q != cutoffMove {
			o.adjustHistory(colorIdx, q, -bonus)
		}
	}

	if !isNullMove(prevMove) {
		o.counterMoves[colorIdx][prevPiece][prevMove.To()] = cutoffMove
	}

	key := contKey{prevPiece, prevMove.To()}
	cont := o.contHist[key]
	if cont == nil {
		cont = &[7][64]int32{}
		o.contHist[key] = cont
	}
	movedPiece, _ := GetPieceTypeAtPosition(cutoffMove.From(), sideBitboards(&pos.Board, white))
	cont[movedPiece][cutoffMove.To()] = clampHistory(cont[movedPiece][cutoffMove.To()] + bonus)
}

func (o *MoveOrderer) adjustHistory(colorIdx int, m Move, delta int32) {
	v := &o.butterfly[colorIdx][m.From()][m.To()]
	*v = clampHistory(*v + delta)
}

// OnCaptureBetaCutoff updates captureHist after a capture causes a cutoff at
// remaining depth d, mirroring OnBetaCutoff's quiet-move bonus/malus shape
// (§3, §4.D) but keyed by attacker/victim/target square instead of from/to.
func (o *MoveOrderer) OnCaptureBetaCutoff(pos *Position, cutoffMove Move, triedCaptures []Move, depth int) {
	white := pos.GetSideToMove()
	bonus := int32(depth * depth)
	o.adjustCaptureHistory(pos, white, cutoffMove, bonus)
	for _, c := range triedCaptures {
		if c != cutoffMove {
			o.adjustCaptureHistory(pos, white, c, -bonus)
		}
	}
}

func (o *MoveOrderer) adjustCaptureHistory(pos *Position, white bool, m Move, delta int32) {
	victim, _ := GetPieceTypeAtPosition(m.To(), sideBitboards(&pos.Board, !white))
	attacker, _ := GetPieceTypeAtPosition(m.From(), sideBitboards(&pos.Board, white))
	v := &o.captureHist[attacker][victim][m.To()]
	*v = clampHistory(*v + delta)
}

func clampHistory(v int32) int32 {
	if v > historyClamp {
		return historyClamp
	}
	if v < -historyClamp {
		return -historyClamp
	}
	return v
}

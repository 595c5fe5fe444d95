package engine

import (
	"math/bits"

	"chess-engine/nnue"
	"github.com/dylhunn/dragontoothmg"
)

// nnuePosition adapts Position to nnue.FeatureSource so the accumulator
// package never needs to know about dragontoothmg.
type nnuePosition struct{ pos *Position }

func (n nnuePosition) ActiveFeatures(white bool) []int {
	b := &n.pos.Board
	kingSq := n.pos.GetKingSquare(white)
	if !white {
		kingSq = mirrorSquare(kingSq)
	}

	own, opp := &b.White, &b.Black
	if !white {
		own, opp = &b.Black, &b.White
	}

	out := make([]int, 0, 32)
	collect := func(bb uint64, kind nnue.PieceKind) {
		for x := bb; x != 0; x &= x - 1 {
			sq := uint8(bits.TrailingZeros64(x))
			if !white {
				sq = mirrorSquare(sq)
			}
			out = append(out, nnue.FeatureIndex(int(kingSq), kind, int(sq)))
		}
	}
	collect(own.Pawns, nnue.OwnPawn)
	collect(own.Knights, nnue.OwnKnight)
	collect(own.Bishops, nnue.OwnBishop)
	collect(own.Rooks, nnue.OwnRook)
	collect(own.Queens, nnue.OwnQueen)
	collect(opp.Pawns, nnue.OppPawn)
	collect(opp.Knights, nnue.OppKnight)
	collect(opp.Bishops, nnue.OppBishop)
	collect(opp.Rooks, nnue.OppRook)
	collect(opp.Queens, nnue.OppQueen)
	return out
}

// pieceToKind maps a captured/moved piece to its perspective-relative NN
// feature kind, for incremental accumulator updates after DoMove.
func pieceToKind(p dragontoothmg.Piece, own bool) (nnue.PieceKind, bool) {
	var base nnue.PieceKind
	switch p {
	case dragontoothmg.Pawn:
		base = nnue.OwnPawn
	case dragontoothmg.Knight:
		base = nnue.OwnKnight
	case dragontoothmg.Bishop:
		base = nnue.OwnBishop
	case dragontoothmg.Rook:
		base = nnue.OwnRook
	case dragontoothmg.Queen:
		base = nnue.OwnQueen
	default:
		return 0, false
	}
	if own {
		return base, true
	}
	return base + nnue.OppPawn, true
}

// accumulatorDeltas converts a DirtyPiece list from Position.DoMove into the
// added/removed NN feature indices for one perspective, skipping king moves
// (handled separately by forcing a full recompute).
func accumulatorDeltas(dirty []DirtyPiece, perspectiveWhite bool, kingSq uint8) (added, removed []int) {
	viewKing := kingSq
	if !perspectiveWhite {
		viewKing = mirrorSquare(kingSq)
	}
	for _, d := range dirty {
		if d.Piece == dragontoothmg.King {
			continue
		}
		kind, ok := pieceToKind(d.Piece, d.White == perspectiveWhite)
		if !ok {
			continue
		}
		sq := d.Square
		if !perspectiveWhite {
			sq = mirrorSquare(sq)
		}
		idx := nnue.FeatureIndex(int(viewKing), kind, int(sq))
		if d.Removed {
			removed = append(removed, idx)
		} else {
			added = append(added, idx)
		}
	}
	return added, removed
}

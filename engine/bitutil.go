package engine

import "github.com/dylhunn/dragontoothmg"

// PositionBB[sq] is the single-bit bitboard for square sq. KnightMasks and
// KingMoves are the corresponding attack tables. All three are filled once
// in init() the way the teacher engine built its lookup tables: plain
// shift-and-mask loops, no external library, since dragontoothmg exposes
// only sliding-piece attack generators (CalculateRookMoveBitboard /
// CalculateBishopMoveBitboard), not leaper tables.
var (
	PositionBB  [64]uint64
	KnightMasks [64]uint64
	KingMoves   [64]uint64
)

func init() {
	for sq := 0; sq < 64; sq++ {
		PositionBB[sq] = 1 << uint(sq)
	}
	knightDeltas := [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingDeltas := [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	for sq := 0; sq < 64; sq++ {
		f, r := sq&7, sq>>3
		for _, d := range knightDeltas {
			nf, nr := f+d[0], r+d[1]
			if nf >= 0 && nf < 8 && nr >= 0 && nr < 8 {
				KnightMasks[sq] |= PositionBB[nr*8+nf]
			}
		}
		for _, d := range kingDeltas {
			nf, nr := f+d[0], r+d[1]
			if nf >= 0 && nf < 8 && nr >= 0 && nr < 8 {
				KingMoves[sq] |= PositionBB[nr*8+nf]
			}
		}
	}
}

// GetPieceTypeAtPosition returns the piece occupying square sq in bb, if any.
func GetPieceTypeAtPosition(sq uint8, bb *dragontoothmg.Bitboards) (piece dragontoothmg.Piece, occupied bool) {
	mask := PositionBB[sq]
	switch {
	case bb.Pawns&mask != 0:
		return dragontoothmg.Pawn, true
	case bb.Knights&mask != 0:
		return dragontoothmg.Knight, true
	case bb.Bishops&mask != 0:
		return dragontoothmg.Bishop, true
	case bb.Rooks&mask != 0:
		return dragontoothmg.Rook, true
	case bb.Queens&mask != 0:
		return dragontoothmg.Queen, true
	case bb.Kings&mask != 0:
		return dragontoothmg.King, true
	}
	return dragontoothmg.Nothing, false
}

// PawnCaptureBitboards returns the east/west pawn-attack bitboards for a
// single pawn on sqBB, for the given side.
func PawnCaptureBitboards(sqBB uint64, white bool) (east, west uint64) {
	const notFileA = ^uint64(0x0101010101010101)
	const notFileH = ^uint64(0x8080808080808080)
	if white {
		east = (sqBB & notFileH) << 9
		west = (sqBB & notFileA) << 7
	} else {
		east = (sqBB & notFileH) >> 7
		west = (sqBB & notFileA) >> 9
	}
	return east, west
}

// squareAttacked reports whether sq is attacked by the given side, used for
// check detection.
func squareAttacked(b *dragontoothmg.Board, sq uint8, byWhite bool) bool {
	var bb dragontoothmg.Bitboards
	if byWhite {
		bb = b.White
	} else {
		bb = b.Black
	}
	all := b.White.All | b.Black.All

	if KnightMasks[sq]&bb.Knights != 0 {
		return true
	}
	if KingMoves[sq]&bb.Kings != 0 {
		return true
	}
	east, west := PawnCaptureBitboards(PositionBB[sq], !byWhite)
	if (east|west)&bb.Pawns != 0 {
		return true
	}
	if dragontoothmg.CalculateBishopMoveBitboard(sq, all)&(bb.Bishops|bb.Queens) != 0 {
		return true
	}
	if dragontoothmg.CalculateRookMoveBitboard(sq, all)&(bb.Rooks|bb.Queens) != 0 {
		return true
	}
	return false
}

package engine

import (
	"math/bits"
	"reflect"
	"unsafe"

	"github.com/dylhunn/dragontoothmg"
)

// MoveFilter selects which pseudo-legal moves GenerateMoves returns.
type MoveFilter uint8

const (
	FilterAll MoveFilter = iota
	FilterCapturesOnly
	FilterQuietChecks
)

// DirtyPiece describes one square whose occupant changed as the result of a
// move, for accumulator maintenance (§4.E).
type DirtyPiece struct {
	Square  uint8
	Piece   dragontoothmg.Piece
	White   bool
	Removed bool // true if the piece left Square, false if it arrived
}

// Position is the external collaborator specified in §6: move generation,
// Zobrist hashing and FEN/bitboard plumbing are delegated entirely to
// dragontoothmg.Board; this wrapper only adds the dirty-piece bookkeeping the
// search core needs to maintain NN accumulators and incremental PSQT scores
// incrementally.
type Position struct {
	Board dragontoothmg.Board
}

// NewPositionFromFEN parses a FEN string into a root Position.
func NewPositionFromFEN(fen string) Position {
	return Position{Board: dragontoothmg.ParseFen(fen)}
}

func (p *Position) GetHash() uint64 { return p.Board.Hash() }

func (p *Position) GetSideToMove() bool { return p.Board.Wtomove }

// GetMaterialKey returns a compact tagging of non-pawn, non-king material
// counts: knights, bishops, rooks and queens in successive 4-bit fields.
func (p *Position) GetMaterialKey() uint32 {
	var key uint32
	b := &p.Board
	key |= uint32(bits.OnesCount64(b.White.Knights)+bits.OnesCount64(b.Black.Knights)) << 0
	key |= uint32(bits.OnesCount64(b.White.Bishops)+bits.OnesCount64(b.Black.Bishops)) << 4
	key |= uint32(bits.OnesCount64(b.White.Rooks)+bits.OnesCount64(b.Black.Rooks)) << 8
	key |= uint32(bits.OnesCount64(b.White.Queens)+bits.OnesCount64(b.Black.Queens)) << 12
	return key
}

func (p *Position) GetNumPieces() int {
	b := &p.Board
	return bits.OnesCount64(b.White.All | b.Black.All)
}

func (p *Position) GetHalfMoveCount() int { return int(p.Board.Halfmoveclock) }

// GenerateMoves returns pseudo-legal moves matching filter. dragontoothmg
// only exposes a legal-move generator; captures-only and quiet-check
// filtering is done as a post-pass, which is cheap next to the search tree
// this feeds.
func (p *Position) GenerateMoves(filter MoveFilter) []Move {
	moves := p.Board.GenerateLegalMoves()
	if filter == FilterAll {
		return moves
	}
	out := moves[:0:0]
	for _, m := range moves {
		switch filter {
		case FilterCapturesOnly:
			if dragontoothmg.IsCapture(m, &p.Board) || m.Promote() == dragontoothmg.Queen {
				out = append(out, m)
			}
		case FilterQuietChecks:
			if !dragontoothmg.IsCapture(m, &p.Board) && movegivesCheck(p, m) {
				out = append(out, m)
			}
		}
	}
	return out
}

// DoMove applies m in place and returns an undo function plus the set of
// squares whose occupant changed, for accumulator/PSQT maintenance. dirty
// always has length 2-4: from and to (holding the promoted piece on a
// promotion), plus the captured piece (an en passant pawn included) or, for
// castling, the rook's two squares.
func (p *Position) DoMove(m Move) (undo func(), dirty []DirtyPiece) {
	from, to := m.From(), m.To()
	white := p.Board.Wtomove
	movingPiece, _ := GetPieceTypeAtPosition(from, sideBitboards(&p.Board, white))

	dirty = make([]DirtyPiece, 0, 4)
	dirty = append(dirty, DirtyPiece{Square: from, Piece: movingPiece, White: white, Removed: true})

	if capturedPiece, occ := GetPieceTypeAtPosition(to, sideBitboards(&p.Board, !white)); occ {
		dirty = append(dirty, DirtyPiece{Square: to, Piece: capturedPiece, White: !white, Removed: true})
	} else if movingPiece == dragontoothmg.Pawn && from&7 != to&7 {
		epSq := to + 8 // en passant: the captured pawn stands behind the target square
		if white {
			epSq = to - 8
		}
		dirty = append(dirty, DirtyPiece{Square: epSq, Piece: dragontoothmg.Pawn, White: !white, Removed: true})
	}

	landingPiece := movingPiece
	if promo := m.Promote(); promo != dragontoothmg.Nothing {
		landingPiece = promo
	}
	dirty = append(dirty, DirtyPiece{Square: to, Piece: landingPiece, White: white, Removed: false})
	if movingPiece == dragontoothmg.King && (to == from+2 || from == to+2) {
		rookFrom, rookTo := from+3, from+1 // castling also moves the rook
		if to < from {
			rookFrom, rookTo = from-4, from-1
		}
		dirty = append(dirty, DirtyPiece{Square: rookFrom, Piece: dragontoothmg.Rook, White: white, Removed: true},
			DirtyPiece{Square: rookTo, Piece: dragontoothmg.Rook, White: white})
	}

	undoFn := p.Board.Apply(m)
	return undoFn, dirty
}

func sideBitboards(b *dragontoothmg.Board, white bool) *dragontoothmg.Bitboards {
	if white {
		return &b.White
	}
	return &b.Black
}

func (p *Position) IsInCheck(white bool) bool {
	b := &p.Board
	var kingBB uint64
	if white {
		kingBB = b.White.Kings
	} else {
		kingBB = b.Black.Kings
	}
	if kingBB == 0 {
		return false
	}
	sq := uint8(bits.TrailingZeros64(kingBB))
	return squareAttacked(b, sq, !white)
}

// Whites/Blacks expose the raw bitboards for the evaluator and SEE.
func (p *Position) Whites() *dragontoothmg.Bitboards { return &p.Board.White }
func (p *Position) Blacks() *dragontoothmg.Bitboards { return &p.Board.Black }

func (p *Position) GetKingSquare(white bool) uint8 {
	bb := p.Whites().Kings
	if !white {
		bb = p.Blacks().Kings
	}
	return uint8(bits.TrailingZeros64(bb))
}

// MoveToString renders a move in long algebraic notation for PV printing.
func (p *Position) MoveToString(m Move) string { return m.String() }

func (p *Position) ToFEN() string { return p.Board.ToFen() }

// IsDrawByFiftyMoves reports the hard 50-move (100-halfmove) boundary.
func (p *Position) IsDrawByFiftyMoves() bool { return p.Board.Halfmoveclock >= 100 }

// IsInsufficientMaterial implements the strict KK / KB-v-K / KN-v-K /
// same-colour-bishops draw rule used by §8's insufficient-material scenario.
func (p *Position) IsInsufficientMaterial() bool {
	b := &p.Board
	if b.White.Pawns|b.Black.Pawns|b.White.Rooks|b.Black.Rooks|b.White.Queens|b.Black.Queens != 0 {
		return false
	}
	wMinors := bits.OnesCount64(b.White.Knights) + bits.OnesCount64(b.White.Bishops)
	bMinors := bits.OnesCount64(b.White.Bishops)
	_ = bMinors
	blackMinors := bits.OnesCount64(b.Black.Knights) + bits.OnesCount64(b.Black.Bishops)
	if wMinors == 0 && blackMinors == 0 {
		return true
	}
	if wMinors+blackMinors == 1 {
		return true
	}
	if wMinors == 1 && blackMinors == 1 && bits.OnesCount64(b.White.Knights) == 0 && bits.OnesCount64(b.Black.Knights) == 0 {
		wBishopLight := b.White.Bishops&lightSquares != 0
		bBishopLight := b.Black.Bishops&lightSquares != 0
		return wBishopLight == bBishopLight
	}
	return false
}

const lightSquares uint64 = 0x55AA55AA55AA55AA

// boardEnpassant returns a pointer to dragontoothmg.Board's unexported
// enpassant field. The field has no exported accessor, so this reaches it
// via reflection on the addressable struct.
func boardEnpassant(b *dragontoothmg.Board) *uint8 {
	f := reflect.ValueOf(b).Elem().FieldByName("enpassant")
	return (*uint8)(unsafe.Pointer(f.UnsafeAddr()))
}

// applyNullMove flips side to move and clears any en passant right, without
// touching the board otherwise. dragontoothmg has no native null-move
// support, so this mirrors Apply's undo-closure convention by hand.
func applyNullMove(pos *Position) func() {
	ep := boardEnpassant(&pos.Board)
	prevEP := *ep
	*ep = 0
	pos.Board.Wtomove = !pos.Board.Wtomove
	return func() {
		pos.Board.Wtomove = !pos.Board.Wtomove
		*ep = prevEP
	}
}

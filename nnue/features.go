package nnue

// HalfKP-style sparse feature indexing: one feature per (own king square,
// non-king piece, piece square), computed separately for each perspective.
const (
	squares        = 64
	pieceKinds     = 10 // own/opponent x {pawn,knight,bishop,rook,queen}
	HalfKPSize     = squares * pieceKinds * squares
	L1Size         = 256
	L2Size         = 32
)

// PieceKind is a perspective-relative piece code: kind 0-4 are the
// perspective's own pawn..queen, 5-9 are the opponent's.
type PieceKind int

const (
	OwnPawn PieceKind = iota
	OwnKnight
	OwnBishop
	OwnRook
	OwnQueen
	OppPawn
	OppKnight
	OppBishop
	OppRook
	OppQueen
)

// FeatureIndex computes the sparse input index for one (kingSquare, kind,
// pieceSquare) triple.
func FeatureIndex(kingSquare int, kind PieceKind, pieceSquare int) int {
	return kingSquare*pieceKinds*squares + int(kind)*squares + pieceSquare
}

// FeatureSource is implemented by the host engine's position type so the
// accumulator can stay independent of any particular move-generation
// library. ActiveFeatures returns the sparse feature indices active for the
// given perspective (true = white).
type FeatureSource interface {
	ActiveFeatures(white bool) []int
}

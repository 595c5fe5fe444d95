package engine

import "github.com/dylhunn/dragontoothmg"

// Piece-square and material tables. Values are mined from the teacher
// engine's tuned tables (its evaluation_gen.go init() overrides), kept at
// the authored per-square granularity rather than re-tuned.
var (
	PSQT_MG = [7][64]int{
		dragontoothmg.Pawn: {
			0, 0, 0, 0, 0, 0, 0, 0,
			-12, -12, -13, -6, -8, 27, 28, -1,
			-19, -23, -16, -15, -4, -1, 7, -12,
			-12, -10, -3, -5, 9, 13, 10, -9,
			-2, 6, 5, 21, 35, 41, 25, 0,
			-2, 16, 32, 39, 55, 81, 39, 0,
			77, 79, 67, 67, 51, 56, 13, 16,
			0, 0, 0, 0, 0, 0, 0, 0,
		},
		dragontoothmg.Knight: {
			-33, -7, -23, -3, 4, 6, -7, -27,
			-17, -16, 4, 13, 10, 12, 5, 5,
			-9, 10, 12, 21, 26, 12, 12, -2,
			7, 17, 27, 28, 35, 27, 40, 17,
			8, 25, 44, 51, 34, 54, 28, 36,
			-15, 26, 48, 51, 66, 75, 42, 17,
			-12, 0, 39, 38, 36, 39, -1, 11,
			-92, -16, -8, 0, 7, -24, 0, -33,
		},
		dragontoothmg.Bishop: {
			-5, -4, -18, -18, -19, -12, -14, -8,
			-3, 3, 9, -5, -3, 4, 10, -2,
			-11, 4, 1, 3, -1, 2, -4, -3,
			-15, 0, 3, 14, 18, -8, 0, -6,
			-17, 12, 7, 31, 17, 22, 8, -10,
			-8, 7, 20, 10, 25, 30, 18, -2,
			-30, -12, -11, -9, -9, 6, -16, -9,
			-17, -6, -20, -13, -7, -19, 1, -9,
		},
		dragontoothmg.Rook: {
			1, 5, 9, 17, 12, 14, 9, -4,
			-31, -8, -12, -6, -10, 3, 12, -28,
			-20, -11, -18, -7, -12, -12, 5, -13,
			-17, -15, -15, -6, -14, -13, 7, -13,
			-5, 5, 10, 24, 9, 12, 9, 1,
			3, 34, 23, 37, 29, 29, 36, 17,
			11, 7, 22, 26, 19, 18, 2, 21,
			29, 26, 11, 14, 6, 6, 16, 27,
		},
		dragontoothmg.Queen: {
			7, 5, 12, 22, 18, -6, -7, -6,
			2, 11, 21, 18, 20, 30, 28, 5,
			0, 14, 10, 6, 5, 5, 15, -1,
			5, 6, 1, -5, -8, -17, -2, -12,
			-6, -2, -18, -30, -24, -23, -9, -13,
			-7, -2, -2, -22, -28, -10, -16, -12,
			-4, -43, -5, -16, -50, -11, -18, 19,
			-2, 7, 4, -3, -2, 5, 11, 15,
		},
		dragontoothmg.King: {
			-4, 42, 9, -51, -19, -48, 15, 23,
			2, -8, -15, -51, -34, -35, -5, 14,
			-4, -4, 5, -1, 7, 4, 2, -14,
			-2, 7, 16, 12, 10, 7, 13, -10,
			0, 6, 14, 9, 12, 12, 9, -10,
			0, 8, 12, 10, 8, 13, 8, -1,
			-2, 3, 5, 3, 3, 5, 3, -2,
			-2, 0, 1, 1, 0, 0, 0, -1,
		},
	}

	PSQT_EG = [7][64]int{
		dragontoothmg.Pawn: {
			0, 0, 0, 0, 0, 0, 0, 0,
			24, 18, 22, 20, 27, 24, 7, -2,
			17, 13, 13, 14, 15, 15, 2, 4,
			23, 19, 7, 5, 2, 8, 5, 10,
			35, 26, 21, 0, 6, 12, 17, 19,
			70, 78, 67, 59, 53, 48, 63, 61,
			140, 126, 111, 94, 88, 80, 100, 119,
			0, 0, 0, 0, 0, 0, 0, 0,
		},
		dragontoothmg.Knight: {
			-16, -47, -17, -8, -13, -18, -37, -22,
			-18, -2, -7, 2, 2, -12, -9, -22,
			-31, 4, 10, 28, 23, 4, 0, -30,
			-5, 21, 40, 46, 42, 42, 20, -1,
			0, 22, 39, 50, 56, 42, 34, 8,
			-9, 13, 32, 33, 29, 38, 18, -3,
			-11, 0, 7, 33, 30, 8, 1, -8,
			-22, -1, 10, 8, 5, 13, -3, -27,
		},
		dragontoothmg.Bishop: {
			-12, -3, -16, 0, -5, -8, -9, -8,
			0, -14, -3, 5, 5, -8, -7, -25,
			-1, 8, 14, 19, 17, 9, -1, -1,
			6, 12, 25, 22, 17, 21, 13, -1,
			11, 20, 19, 20, 26, 22, 25, 15,
			10, 19, 19, 17, 20, 27, 23, 16,
			3, 18, 19, 20, 18, 18, 20, 7,
			7, 11, 15, 17, 16, 6, 10, 7,
		},
		dragontoothmg.Rook: {
			-2, 1, 0, -7, -11, 0, 2, -11,
			-2, -6, 0, -6, -9, -18, -9, -4,
			6, 12, 9, 4, -2, -3, 3, -2,
			20, 28, 25, 17, 13, 14, 15, 12,
			27, 26, 25, 17, 14, 12, 16, 21,
			29, 18, 25, 15, 10, 18, 10, 17,
			8, 12, 8, 10, 3, -5, 7, 0,
			25, 26, 27, 21, 20, 35, 38, 36,
		},
		dragontoothmg.Queen: {
			-8, -9, -13, -3, -9, -8, -7, -2,
			1, -5, -17, 2, -7, -31, -14, -2,
			2, 10, 20, -5, -5, 23, 10, 1,
			12, 28, 7, 26, 19, 15, 30, 23,
			19, 37, 5, 22, 16, 9, 37, 22,
			16, 22, 19, 9, -4, -1, -4, -15,
			23, 41, 21, 18, 18, -15, 12, 14,
			9, 18, 13, 8, -5, 9, 16, 12,
		},
		dragontoothmg.King: {
			-38, -42, -21, -22, -43, -15, -41, -85,
			-18, -10, 2, 9, 5, 5, -16, -36,
			-15, 1, 14, 28, 24, 12, -5, -16,
			-14, 13, 30, 40, 38, 28, 11, -16,
			-1, 26, 36, 39, 38, 37, 26, -3,
			2, 30, 33, 25, 23, 43, 38, 1,
			-11, 15, 15, 6, 7, 15, 23, -8,
			-17, -9, -2, 1, -2, -1, -4, -11,
		},
	}

	pieceValueMG = [7]int{dragontoothmg.King: 0, dragontoothmg.Pawn: 79, dragontoothmg.Knight: 337, dragontoothmg.Bishop: 364, dragontoothmg.Rook: 481, dragontoothmg.Queen: 1004}
	pieceValueEG = [7]int{dragontoothmg.King: 0, dragontoothmg.Pawn: 95, dragontoothmg.Knight: 293, dragontoothmg.Bishop: 301, dragontoothmg.Rook: 520, dragontoothmg.Queen: 916}

	mobilityValueMG = [7]int{dragontoothmg.Knight: 3, dragontoothmg.Bishop: 2, dragontoothmg.Rook: 2, dragontoothmg.Queen: 1}
	mobilityValueEG = [7]int{dragontoothmg.Knight: 2, dragontoothmg.Bishop: 3, dragontoothmg.Rook: 6, dragontoothmg.Queen: 7}
)

const (
	bishopPairBonusMG = 0
	bishopPairBonusEG = 50
	tempoBonus        = 10

	pawnPhase, knightPhase, bishopPhase, rookPhase, queenPhase = 0, 1, 1, 2, 4
	totalPhase                                                 = 16*pawnPhase + 4*knightPhase + 4*bishopPhase + 4*rookPhase + 2*queenPhase

	saturationThreshold = 4000
	endgameScaleMax     = 128

	// NumKingBuckets is rank*4+mirroredFile, per §4.B's "kings perspective"
	// indexing after horizontal mirroring by king file.
	NumKingBuckets = 32
)

// mirrorSquare flips a square vertically (for Black's PSQT and NN lookups).
func mirrorSquare(sq uint8) uint8 { return sq ^ 56 }

// kingBucket computes the "kings perspective" bucket for a king square: the
// file is mirrored to the queenside half so a king on the kingside reuses
// the same bucket as its mirror image on the queenside.
func kingBucket(kingSq uint8) int {
	file := int(kingSq & 7)
	rank := int(kingSq >> 3)
	if file >= 4 {
		file = 7 - file
	}
	return rank*4 + file
}

// kingShelterAdjust is a small additive term layered on top of the flat
// PSQT for pawns and king, selected by the owner's king bucket: a pawn (or
// the king itself) whose file, folded onto the a-d half, is within one of
// the king's folded file gets a bonus on any rank. Because of the fold, a
// pawn on the opposite wing at the mirrored file also gets the bonus. This
// stands in for a king-bucketed PSQT without re-tuning 32 independent
// tables from scratch.
func kingShelterAdjust(piece dragontoothmg.Piece, sq uint8, bucket int, mg bool) int {
	if piece != dragontoothmg.Pawn && piece != dragontoothmg.King {
		return 0
	}
	kingFile := bucket % 4
	pawnFile := int(sq & 7)
	if pawnFile >= 4 {
		pawnFile = 7 - pawnFile
	}
	if abs(kingFile-pawnFile) > 1 {
		return 0
	}
	if mg {
		return 4
	}
	return 1
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// psqtValue returns the (mg or eg) piece-square value for piece on sq, from
// the perspective of its own colour, king-bucketed per §4.B.
func psqtValue(piece dragontoothmg.Piece, sq uint8, white bool, ownKingBucket int, mg bool) int {
	idx := sq
	if !white {
		idx = mirrorSquare(sq)
	}
	var base int
	if mg {
		base = PSQT_MG[piece][idx]
	} else {
		base = PSQT_EG[piece][idx]
	}
	return base + kingShelterAdjust(piece, idx, ownKingBucket, mg)
}

package engine

import "github.com/dylhunn/dragontoothmg"

// Move is the engine-internal move representation. dragontoothmg already
// packs from/to/promotion/flags into 16 bits, which is exactly the packed
// form §3 requires TT entries and PV lines to hold, so it is reused directly
// rather than wrapped in a second redundant encoding.
type Move = dragontoothmg.Move

// NullMove is the zero value of Move; dragontoothmg never produces a legal
// move with from==to==0 and no promotion, so it doubles as "no move".
const NullMove Move = 0

func isNullMove(m Move) bool { return m == NullMove }

// packedMove is the 16-bit form stored inside a TTEntry slot.
type packedMove uint16

func packMove(m Move) packedMove { return packedMove(m) }
func unpackMove(p packedMove) Move { return Move(p) }

package engine

import (
	"sync/atomic"

	"chess-engine/nnue"
)

// NodeInfo is the transient, stack-allocated record for one search ply
// (§3). It is kept in ThreadData.stack, indexed by height, so no
// allocation happens on the hot path.
type NodeInfo struct {
	position Position

	filteredMove Move // excluded move during a singular-extension sub-search
	pvIndex      int
	doubleExtensions int

	depth  int
	height int
	alpha, beta Score

	staticEval Score
	previousMove Move
	lastMoveMade Move

	psqtMG, psqtEG [2]int // [white, black] mg/eg sums, cached for incremental reuse
	psqtValid      bool

	isPV             bool
	isCutNode        bool
	isNullMove       bool
	isInCheck        bool
	isSingularSearch bool

	accum *nnue.Accumulator // points into ThreadData.accumStack, never heap-allocated

	pvLength int
	pvLine   [MaxSearchDepth]Move
}

// IsPV reports whether this node is on the current principal variation.
func (n *NodeInfo) IsPV() bool { return n.isPV }

// SearchStats are per-thread relaxed atomic counters (§5).
type SearchStats struct {
	Nodes      uint64
	TBHits     uint64
	SelDepth   int64
	TTCutoffs  uint64
	BetaCutoffs uint64
}

func (s *SearchStats) addNode() { atomic.AddUint64(&s.Nodes, 1) }

// ThreadData is exclusively owned by one worker thread: its move orderer,
// NN accumulator stack, node cache and RNG seed are never touched by any
// other thread (§3 Ownership, §5 shared-resource policy).
type ThreadData struct {
	id int

	stack [MaxSearchDepth + 1]NodeInfo
	accumStack nnue.AccumulatorStack

	orderer MoveOrderer
	cache   NodeCache

	stats SearchStats

	rootDepth      int
	depthCompleted int
	pvLines        []PvLine

	rootMoves []rootMoveEntry

	randomSeed uint64

	stopThread atomic.Bool
}

type rootMoveEntry struct {
	move  Move
	nodes uint64
}

func newThreadData(id int, numPvLines int) *ThreadData {
	td := &ThreadData{id: id}
	td.pvLines = make([]PvLine, numPvLines)
	td.randomSeed = uint64(id)*2685821657736338717 + 1
	td.cache.init()
	td.orderer.clear()
	for i := range td.stack {
		td.stack[i].accum = td.accumStack.At(i)
	}
	return td
}

// PvLine is one principal variation result: moves, score and an optional
// tablebase score (§3).
type PvLine struct {
	Moves   []Move
	Score   Score
	TBScore Score
	HasTB   bool
}

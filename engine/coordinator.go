package engine

import (
	"log"
	"sync"
	"time"

	"golang.org/x/exp/slices"
)

// SearchResult is the DoSearch output: one PvLine per requested multi-PV
// index, plus a ponder move taken from the best line's second move (§6).
type SearchResult struct {
	Lines  []PvLine
	Ponder Move
}

// InfoLine is emitted once per (depth, PV index) completion, matching the
// UCI "info depth ... pv ..." shape §4.G asks for, without committing to
// any particular I/O format.
type InfoLine struct {
	Depth, SelDepth int
	Score           Score
	Nodes           uint64
	Elapsed         float64
	PV              []Move
	PVIndex         int
}

// InfoHandler receives one InfoLine per completed (depth, pvIndex) pair.
type InfoHandler func(InfoLine)

// Coordinator runs iterative deepening with aspiration windows, multi-PV
// and a Lazy-SMP thread pool (§4.G). One Coordinator drives one DoSearch
// call; it owns the TimeManager and the shared stop flag.
type Coordinator struct {
	Param    SearchParam
	TimeMgr  TimeManager
	OnInfo   InfoHandler
	Logger   *log.Logger
	Book     *BookStore // optional; nil disables the analysis cache entirely

	threads []*ThreadData
}

// DoSearch runs the full §4.G flow and returns the root result once the
// last completed iteration's time budget is exhausted.
func (c *Coordinator) DoSearch(root Position, limits SearchLimits) (SearchResult, error) {
	rootMoves := root.GenerateMoves(FilterAll)
	if len(rootMoves) == 0 {
		if root.IsInCheck(root.GetSideToMove()) {
			return SearchResult{Lines: []PvLine{{Score: matedIn(0)}}}, nil
		}
		return SearchResult{Lines: []PvLine{{Score: Draw}}}, nil
	}

	numThreads := c.Param.NumThreads
	if numThreads < 1 {
		numThreads = 1
	}
	numPv := c.Param.NumPvLines
	if numPv < 1 {
		numPv = 1
	}
	if numPv > len(rootMoves) {
		numPv = len(rootMoves)
	}

	c.threads = make([]*ThreadData, numThreads)
	for i := range c.threads {
		c.threads[i] = newThreadData(i, numPv)
	}
	main := c.threads[0]

	plies := max(0, 2*(int(root.Board.Fullmoveno)-1))
	if !root.GetSideToMove() {
		plies++
	}
	c.TimeMgr.Start(limits, root.GetSideToMove(), plies)
	c.Param.Limits = limits
	c.Param.Stop.Store(false)

	if c.Book != nil && c.Logger != nil {
		if mv, ok := c.Book.SuggestRootMove(root.GetHash(), 1); ok {
			c.Logger.Printf("bookstore suggests %s before search starts", root.MoveToString(mv))
		}
	}

	maxDepth := limits.Depth
	if maxDepth == 0 {
		maxDepth = MaxSearchDepth - 1
	}

	lastResult := SearchResult{Lines: make([]PvLine, numPv)}

	for depth := 1; depth <= maxDepth; depth++ {
		c.Param.TT.NewGeneration()

		excluded := map[Move]bool{}
		for pvIdx := 0; pvIdx < numPv; pvIdx++ {
			score, pv, ok := c.searchOnePV(main, root, depth, pvIdx, excluded)
			if !ok {
				goto done
			}
			lastResult.Lines[pvIdx] = PvLine{Moves: pv, Score: score}
			if len(pv) > 0 {
				excluded[pv[0]] = true
			}
			if c.OnInfo != nil {
				c.OnInfo(InfoLine{
					Depth: depth, SelDepth: depth, Score: score,
					Nodes: main.stats.Nodes, Elapsed: c.TimeMgr.Elapsed().Seconds(),
					PV: pv, PVIndex: pvIdx,
				})
			}
		}

		main.depthCompleted = depth
		if len(lastResult.Lines) > 0 {
			bm := NullMove
			if len(lastResult.Lines[0].Moves) > 0 {
				bm = lastResult.Lines[0].Moves[0]
			}
			fraction := main.rootMoveNodeFraction(bm)
			c.TimeMgr.Update(bm, lastResult.Lines[0].Score, fraction)

			if c.Book != nil && !isNullMove(bm) {
				if err := c.Book.Put(root.GetHash(), BookRecord{
					Depth: int8(depth), Score: lastResult.Lines[0].Score, Best: bm, Timestamp: time.Now(),
				}); err != nil && c.Logger != nil {
					c.Logger.Printf("bookstore put failed: %v", err)
				}
			}
		}

		if c.TimeMgr.ShouldStopAtIterationBoundary() {
			break
		}
	}
done:

	result := lastResult
	slices.SortFunc(result.Lines, func(a, b PvLine) bool { return a.Score > b.Score })
	if len(result.Lines) > 0 && len(result.Lines[0].Moves) > 1 {
		result.Ponder = result.Lines[0].Moves[1]
	}
	return result, nil
}

// searchOnePV runs one aspiration-window iterative-deepening step for one
// multi-PV slot, dispatching the Lazy-SMP helper pool alongside the main
// thread and waiting only on the main thread's completion (§4.G, §5).
func (c *Coordinator) searchOnePV(main *ThreadData, root Position, depth, pvIdx int, excluded map[Move]bool) (Score, []Move, bool) {
	prevScore := Score(0)
	if pvIdx < len(main.pvLines) {
		prevScore = main.pvLines[pvIdx].Score
	}

	delta := Score(15)
	alpha, beta := Score(-Inf), Score(Inf)
	if depth >= 4 {
		alpha = prevScore - delta
		beta = prevScore + delta
	}

	for {
		if c.TimeMgr.ShouldHardStop() {
			c.Param.Stop.Store(true)
		}
		if c.Param.Stop.Load() {
			return 0, nil, false
		}

		score := c.dispatchHelpers(root, depth, alpha, beta, excluded)
		if score == Invalid {
			return 0, nil, false
		}

		if score <= alpha {
			beta = (alpha + beta) / 2
			alpha -= delta
			delta *= 2
			continue
		}
		if score >= beta {
			beta += delta
			delta *= 2
			continue
		}

		pv := pvFromNode(main)
		main.pvLines[pvIdx] = PvLine{Moves: pv, Score: score}
		return score, pv, true
	}
}

// dispatchHelpers runs one "main + N-1 helpers" root search: helpers vary
// their starting depth to diverge (Lazy-SMP move-ordering noise). Per §4.G
// step 3.b, only main's completion is waited on; helpers are then told to
// stop rather than left to finish naturally, and a concurrent watchdog
// enforces the hard time limit while the WaitGroups are blocked.
func (c *Coordinator) dispatchHelpers(root Position, depth int, alpha, beta Score, excluded map[Move]bool) Score {
	watchDone := make(chan struct{})
	go c.watchHardStop(watchDone)
	defer close(watchDone)

	for _, td := range c.threads {
		td.stopThread.Store(false)
	}

	var mainScore Score
	var mainWG sync.WaitGroup
	mainWG.Add(1)
	go func(td *ThreadData) {
		defer mainWG.Done()
		p := root
		td.rootDepth = depth
		mainScore = searchRootExcluding(td, &c.Param, &p, depth, alpha, beta, excluded)
	}(c.threads[0])

	var helperWG sync.WaitGroup
	for i := 1; i < len(c.threads); i++ {
		helperDepth := depth + (i % 2)
		helperWG.Add(1)
		go func(td *ThreadData, d int) {
			defer helperWG.Done()
			p := root
			td.rootDepth = d
			searchRootExcluding(td, &c.Param, &p, d, alpha, beta, excluded)
		}(c.threads[i], helperDepth)
	}

	mainWG.Wait()
	for i := 1; i < len(c.threads); i++ {
		c.threads[i].stopThread.Store(true)
	}
	helperWG.Wait()
	return mainScore
}

// watchHardStop polls the time manager's hard deadline while a root search
// is in flight, setting the shared stop flag the moment it's exceeded so
// workers observe it within checkEveryNNodes nodes even though the
// coordinator itself is blocked on a WaitGroup.
func (c *Coordinator) watchHardStop(done <-chan struct{}) {
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if c.TimeMgr.ShouldHardStop() {
				c.Param.Stop.Store(true)
			}
		}
	}
}

func (td *ThreadData) rootMoveNodeFraction(best Move) float64 {
	var bestNodes, total uint64
	for _, rm := range td.rootMoves {
		total += rm.nodes
		if rm.move == best {
			bestNodes = rm.nodes
		}
	}
	if total == 0 {
		return 1
	}
	return float64(bestNodes) / float64(total)
}

func pvFromNode(td *ThreadData) []Move {
	n := &td.stack[0]
	out := make([]Move, n.pvLength)
	copy(out, n.pvLine[:n.pvLength])
	return out
}

// searchRootExcluding runs the root ply of negamax, skipping any move in
// excluded (used by multi-PV to force later PV lines away from earlier
// root moves).
func searchRootExcluding(td *ThreadData, param *SearchParam, pos *Position, depth int, alpha, beta Score, excluded map[Move]bool) Score {
	moves := pos.GenerateMoves(FilterAll)
	root := &td.stack[0]
	root.position = *pos
	root.height = 0
	root.isPV = true

	if td.rootMoves == nil {
		td.rootMoves = make([]rootMoveEntry, 0, len(moves))
		for _, m := range moves {
			td.rootMoves = append(td.rootMoves, rootMoveEntry{move: m})
		}
	}

	scored := td.orderer.ScoreMoves(pos, moves, NullMove, 0, NullMove, 0, pos.GetSideToMove())
	bestScore := Score(-Inf)
	origAlpha := alpha

	for i := range scored {
		m := Next(scored, i)
		if excluded[m] {
			continue
		}
		before := td.stats.Nodes
		undo, dirty := pos.DoMove(m)
		updateAccumulators(td, param, pos, 0, dirty)
		updatePSQT(root, &td.stack[1], pos, dirty)
		score := -negamax(td, param, pos, 1, depth-1, -beta, -alpha, false, NullMove)
		undo()
		if score == Invalid {
			return Invalid
		}
		for j := range td.rootMoves {
			if td.rootMoves[j].move == m {
				td.rootMoves[j].nodes += td.stats.Nodes - before
			}
		}
		if score > bestScore {
			bestScore = score
			if score > alpha {
				alpha = score
				root.pvLine[0] = m
				copy(root.pvLine[1:], td.stack[1].pvLine[:td.stack[1].pvLength])
				root.pvLength = 1 + td.stack[1].pvLength
			}
		}
		if alpha >= beta {
			break
		}
	}
	_ = origAlpha
	root.staticEval = bestScore
	return bestScore
}

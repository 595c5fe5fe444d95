package engine

import (
	"math"
	"time"
)

// SearchLimits are the raw UCI-style clock inputs (§4.H, §6).
type SearchLimits struct {
	WhiteTime, BlackTime           time.Duration
	WhiteIncrement, BlackIncrement time.Duration
	MovesToGo                      int
	MoveTime                       time.Duration // fixed-move-time override, 0 if unset
	MoveOverhead                   time.Duration
	Depth                          int // fixed-depth override, 0 if unset
	Infinite                       bool
}

// Tuned constants mirrored from the original search's time manager.
const (
	tmMovesLeftMidpoint     = 36.0
	tmMovesLeftSteepness    = 222.0 / 100.0
	tmIdealTimeFactor       = 0.843
	tmMaxTimeFraction       = 0.76
	tmStabilityScale        = 41
	tmStabilityOffset       = 1264
	tmStabilityCap          = 10
	tmScoreChangeFactorScale  = 12
	tmScoreChangeFactorOffset = 803
	tmScoreChangeMax          = 49
	tmNodesCountScale       = 195
	tmNodesCountOffset      = 53
)

// TimeManager converts clock info into soft ("ideal") and hard deadlines,
// and updates the soft deadline between iterations from PV stability,
// score change and best-move node fraction (§4.H).
type TimeManager struct {
	start time.Time

	idealTime time.Duration
	maxTime   time.Duration

	fixedMoveTime bool
	fixedDepth    int
	infinite      bool

	stableIterations int
	lastBestMove     Move
	scoreHistory     []Score
}

// estimateMovesLeft follows the LeelaChessZero-style curve from
// TimeManager.cpp: movesPlayed plies in, estimate how many remain.
func estimateMovesLeft(pliesPlayed int) float64 {
	m := tmMovesLeftMidpoint
	mtg := m * math.Pow(1+1.5*math.Pow(float64(pliesPlayed)/m, tmMovesLeftSteepness), 1/tmMovesLeftSteepness)
	return mtg - float64(pliesPlayed)
}

// Start computes the initial ideal/hard deadlines for one search.
func (tm *TimeManager) Start(limits SearchLimits, white bool, pliesPlayed int) {
	tm.start = time.Now()
	tm.stableIterations = 0
	tm.lastBestMove = NullMove
	tm.scoreHistory = tm.scoreHistory[:0]
	tm.infinite = limits.Infinite
	tm.fixedDepth = limits.Depth

	if limits.MoveTime > 0 {
		tm.fixedMoveTime = true
		tm.idealTime = limits.MoveTime
		tm.maxTime = limits.MoveTime
		return
	}
	tm.fixedMoveTime = false

	remaining := limits.WhiteTime
	inc := limits.WhiteIncrement
	if !white {
		remaining, inc = limits.BlackTime, limits.BlackIncrement
	}
	if remaining <= 0 {
		remaining = time.Second
	}

	movesLeft := float64(limits.MovesToGo)
	if movesLeft <= 0 {
		movesLeft = estimateMovesLeft(pliesPlayed)
	}
	if movesLeft < 1 {
		movesLeft = 1
	}

	ideal := tmIdealTimeFactor * (float64(remaining)/movesLeft + float64(inc))
	tm.idealTime = time.Duration(ideal)

	overhead := limits.MoveOverhead
	maxT := float64(remaining-overhead)/math.Sqrt(movesLeft) + float64(inc)
	tm.maxTime = time.Duration(maxT)
	if cap := time.Duration(float64(remaining) * tmMaxTimeFraction); tm.maxTime > cap {
		tm.maxTime = cap
	}
	if tm.idealTime > tm.maxTime {
		tm.idealTime = tm.maxTime
	}
	if tm.idealTime < 0 {
		tm.idealTime = 0
	}
}

// Update adjusts the soft deadline after completing one iteration, from PV
// stability, score change versus the last two iterations, and the fraction
// of total nodes the best root move consumed.
func (tm *TimeManager) Update(bestMove Move, score Score, bestMoveNodeFraction float64) {
	if bestMove == tm.lastBestMove {
		if tm.stableIterations < tmStabilityCap {
			tm.stableIterations++
		}
	} else {
		tm.stableIterations = 0
	}
	tm.lastBestMove = bestMove
	tm.scoreHistory = append(tm.scoreHistory, score)

	stabilityFactor := (float64(tmStabilityOffset) - float64(tm.stabilityIterationsScaled())) / 1000.0

	scoreChangeFactor := 1.0
	if n := len(tm.scoreHistory); n >= 2 {
		delta := abs(int(score) - int(tm.scoreHistory[n-2]))
		if n >= 3 {
			delta2 := abs(int(score) - int(tm.scoreHistory[n-3]))
			if delta2 > delta {
				delta = delta2
			}
		}
		if delta > tmScoreChangeMax {
			delta = tmScoreChangeMax
		}
		scoreChangeFactor = (float64(tmScoreChangeFactorOffset) + float64(delta)*tmScoreChangeFactorScale) / 1000.0
	}

	nodeFactor := (float64(tmNodesCountOffset) + (1-bestMoveNodeFraction)*tmNodesCountScale) / 100.0

	adjusted := float64(tm.idealTime) * stabilityFactor * scoreChangeFactor * nodeFactor
	if d := time.Duration(adjusted); d < tm.maxTime {
		tm.idealTime = d
	} else {
		tm.idealTime = tm.maxTime
	}
}

func (tm *TimeManager) stabilityIterationsScaled() int { return tm.stableIterations * tmStabilityScale }

// ShouldStopAtIterationBoundary implements the §4.H contract: stop once
// elapsed exceeds the (possibly updated) soft deadline.
func (tm *TimeManager) ShouldStopAtIterationBoundary() bool {
	if tm.infinite || tm.fixedDepth > 0 {
		return false
	}
	return time.Since(tm.start) >= tm.idealTime
}

// ShouldHardStop implements the mid-search hard-stop check, polled by
// workers alongside the atomic stop flag.
func (tm *TimeManager) ShouldHardStop() bool {
	if tm.infinite {
		return false
	}
	return time.Since(tm.start) >= tm.maxTime
}

func (tm *TimeManager) Elapsed() time.Duration { return time.Since(tm.start) }

package nnue

// Accumulator caches the first hidden layer's pre-activation values for
// both perspectives, so descending one ply only needs to add/subtract the
// weight columns of the pieces that actually moved.
type Accumulator struct {
	White, Black [L1Size]int16
	Computed     bool
}

// ComputeFull recomputes both perspectives from scratch via the position's
// active feature list. Used at the root and whenever a king move or cache
// miss invalidates the incremental path.
func (a *Accumulator) ComputeFull(src FeatureSource, net *Network) {
	copy(a.White[:], net.L1Bias[:])
	copy(a.Black[:], net.L1Bias[:])
	for _, idx := range src.ActiveFeatures(true) {
		addRow(&a.White, net.L1Weights[idx][:])
	}
	for _, idx := range src.ActiveFeatures(false) {
		addRow(&a.Black, net.L1Weights[idx][:])
	}
	a.Computed = true
}

// UpdateSide derives one perspective's half of a child accumulator from the
// matching half of parent, plus the features added/removed by one move.
// Forces a full single-side recompute when that perspective's own king
// moved, since every feature for a perspective is keyed by its king square.
// The two perspectives are updated via two independent calls (one per
// side), so neither overwrites the other's half.
func (a *Accumulator) UpdateSide(parent *Accumulator, white bool, added, removed []int, kingMoved bool, net *Network, src FeatureSource) {
	dst, base := &a.White, &parent.White
	if !white {
		dst, base = &a.Black, &parent.Black
	}
	if kingMoved {
		*dst = net.L1Bias
		for _, idx := range src.ActiveFeatures(white) {
			addRow(dst, net.L1Weights[idx][:])
		}
		return
	}
	*dst = *base
	for _, idx := range added {
		addRow(dst, net.L1Weights[idx][:])
	}
	for _, idx := range removed {
		subRow(dst, net.L1Weights[idx][:])
	}
}

func addRow(acc *[L1Size]int16, row []int16) {
	for i := 0; i < L1Size; i++ {
		acc[i] += row[i]
	}
}

func subRow(acc *[L1Size]int16, row []int16) {
	for i := 0; i < L1Size; i++ {
		acc[i] -= row[i]
	}
}

// AccumulatorStack is a per-thread, preallocated array of accumulators
// indexed by search height, so a thread's NodeInfo stack can hand out a
// stable *Accumulator per ply without ever heap-allocating one on the hot
// path (mirrors the search stack discipline in §9).
type AccumulatorStack struct {
	stack [MaxSearchDepth]Accumulator
}

// MaxSearchDepth is one more than engine.MaxSearchDepth so every slot in a
// ThreadData's [MaxSearchDepth+1]NodeInfo stack has a matching accumulator.
const MaxSearchDepth = 129

// Reset marks every slot as not-yet-computed, forcing the next Evaluate at
// each height to fall back to a full recompute rather than reuse a stale
// accumulator left over from a previous search.
func (s *AccumulatorStack) Reset() {
	for i := range s.stack {
		s.stack[i].Computed = false
	}
}

// At returns the preallocated accumulator slot for one search height.
func (s *AccumulatorStack) At(height int) *Accumulator { return &s.stack[height] }

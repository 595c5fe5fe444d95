package engine

import "sync/atomic"

const clusterSize = 4

// ttSlot is two lockless 64-bit atomic words per §4.C/§5: dataWord carries
// the packed entry, keyWord is hash^dataWord. A reader recomputes
// hash'=keyWord^dataWord(as just read) and only trusts the slot if hash'
// equals the probed hash, which rejects torn reads from a concurrent
// writer without any lock.
type ttSlot struct {
	keyWord  atomic.Uint64
	dataWord atomic.Uint64
}

type ttCluster [clusterSize]ttSlot

// TransTable is the shared, bucketed, lock-free transposition table (§3,
// §4.C). All access happens through atomic loads/stores; there is no mutex
// anywhere in this type.
type TransTable struct {
	clusters   []ttCluster
	generation atomic.Uint32 // low 6 bits significant
}

// Resize allocates clusterCount clusters sized to hold roughly bytes of
// table, zeroing everything and resetting the generation counter.
func (t *TransTable) Resize(bytes uint64) {
	clusterBytes := uint64(clusterSize * 16)
	count := bytes / clusterBytes
	if count == 0 {
		count = 1
	}
	t.clusters = make([]ttCluster, count)
	t.generation.Store(0)
}

func (t *TransTable) NewGeneration() {
	t.generation.Add(1)
}

func (t *TransTable) clusterFor(hash uint64) *ttCluster {
	return &t.clusters[hash%uint64(len(t.clusters))]
}

// ttData packs one entry's payload into a single 64-bit word.
type ttData struct {
	move       packedMove
	score      int16
	staticEval int16
	depth      int8
	bound      Bound
	age        uint8
	isPV       bool
}

func packData(d ttData) uint64 {
	var pv uint64
	if d.isPV {
		pv = 1
	}
	return uint64(uint16(d.move)) |
		uint64(uint16(d.score))<<16 |
		uint64(uint16(d.staticEval))<<32 |
		uint64(uint8(d.depth))<<48 |
		uint64(d.bound&0x3)<<56 |
		uint64(d.age&0x3F)<<58 |
		pv<<63
}

func unpackData(w uint64) ttData {
	return ttData{
		move:       packedMove(uint16(w)),
		score:      int16(uint16(w >> 16)),
		staticEval: int16(uint16(w >> 32)),
		depth:      int8(uint8(w >> 48)),
		bound:      Bound((w >> 56) & 0x3),
		age:        uint8((w >> 58) & 0x3F),
		isPV:       (w>>63)&1 == 1,
	}
}

// TTProbeResult is what Probe returns on a hit.
type TTProbeResult struct {
	Move       Move
	Score      Score
	StaticEval Score
	Depth      int8
	Bound      Bound
	IsPV       bool
}

// Probe looks for hash in its cluster. The stored move, if any, is always
// usable for ordering; usability of the score for a cutoff is the caller's
// job per §4.C's invariant list.
func (t *TransTable) Probe(hash uint64, height int) (TTProbeResult, bool) {
	if len(t.clusters) == 0 {
		return TTProbeResult{}, false
	}
	c := t.clusterFor(hash)
	for i := range c {
		kw := c[i].keyWord.Load()
		dw := c[i].dataWord.Load()
		if kw^dw != hash {
			continue
		}
		d := unpackData(dw)
		return TTProbeResult{
			Move:       unpackMove(d.move),
			Score:      ScoreFromTT(Score(d.score), height),
			StaticEval: Score(d.staticEval),
			Depth:      d.depth,
			Bound:      d.bound,
			IsPV:       d.isPV,
		}, true
	}
	return TTProbeResult{}, false
}

// Store writes an entry into hash's cluster, using depth-and-age-based
// replacement (§4.C): prefer a slot already holding this key, then an
// empty slot, then the slot with the lowest (depth - agingPenalty*delta).
func (t *TransTable) Store(hash uint64, height int, depth int8, score Score, staticEval Score, bound Bound, isPV bool, best Move) {
	if len(t.clusters) == 0 {
		return
	}
	if depth < -MaxPly {
		depth = -MaxPly
	}
	if depth > 255-128 {
		depth = 255 - 128
	}

	gen := uint8(t.generation.Load() & 0x3F)
	c := t.clusterFor(hash)

	victim := -1
	var victimScore int32 = 1 << 30
	for i := range c {
		kw := c[i].keyWord.Load()
		dw := c[i].dataWord.Load()
		if kw^dw == hash {
			victim = i
			break
		}
		if dw == 0 {
			victim = i
			break
		}
		d := unpackData(dw)
		genDelta := int32(gen) - int32(d.age)
		if genDelta < 0 {
			genDelta += 64
		}
		repl := int32(d.depth) - 2*genDelta
		if repl < victimScore {
			victimScore = repl
			victim = i
		}
	}
	if victim < 0 {
		victim = 0
	}

	mv := packedMove(0)
	if !isNullMove(best) {
		mv = packMove(best)
	} else if prior := c[victim].dataWord.Load(); prior != 0 {
		// keep the previous move for ordering if this store has none
		mv = unpackData(prior).move
	}

	data := packData(ttData{
		move:       mv,
		score:      int16(ScoreToTT(score, height)),
		staticEval: int16(staticEval),
		depth:      depth,
		bound:      bound,
		age:        gen,
		isPV:       isPV,
	})
	key := hash ^ data

	c[victim].dataWord.Store(data)
	c[victim].keyWord.Store(key)
}

// Usable implements §4.C's bound-check for whether a probed score may cause
// a cutoff at the current window, given the remaining search depth.
func Usable(r TTProbeResult, depth int, alpha, beta Score) bool {
	if int(r.Depth) < depth {
		return false
	}
	switch r.Bound {
	case BoundExact:
		return true
	case BoundLower:
		return r.Score >= beta
	case BoundUpper:
		return r.Score <= alpha
	}
	return false
}

// Clear zeroes every slot without reallocating.
func (t *TransTable) Clear() {
	for i := range t.clusters {
		for j := range t.clusters[i] {
			t.clusters[i][j].keyWord.Store(0)
			t.clusters[i][j].dataWord.Store(0)
		}
	}
	t.generation.Store(0)
}

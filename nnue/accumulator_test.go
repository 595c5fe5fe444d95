package nnue

import "testing"

// fixedFeatures is a trivial FeatureSource returning a fixed active-feature
// list per perspective, enough to exercise ComputeFull/UpdateSide without
// needing a real board representation.
type fixedFeatures struct {
	white, black []int
}

func (f fixedFeatures) ActiveFeatures(white bool) []int {
	if white {
		return f.white
	}
	return f.black
}

func testNetwork() *Network {
	n := &Network{}
	n.InitRandom(7)
	return n
}

func TestUpdateSideMatchesComputeFullAfterQuietMove(t *testing.T) {
	net := testNetwork()

	parentSrc := fixedFeatures{
		white: []int{FeatureIndex(4, OwnPawn, 20), FeatureIndex(4, OppKnight, 40)},
		black: []int{FeatureIndex(60, OwnPawn, 44), FeatureIndex(60, OppKnight, 24)},
	}
	var parent Accumulator
	parent.ComputeFull(parentSrc, net)

	// A quiet pawn push: the moved pawn's feature is removed and replaced by
	// its new-square feature, for both perspectives, with neither king
	// moving.
	childSrc := fixedFeatures{
		white: []int{FeatureIndex(4, OwnPawn, 28), FeatureIndex(4, OppKnight, 40)},
		black: []int{FeatureIndex(60, OwnPawn, 36), FeatureIndex(60, OppKnight, 24)},
	}

	var incremental Accumulator
	incremental.UpdateSide(&parent, true, []int{FeatureIndex(4, OwnPawn, 28)}, []int{FeatureIndex(4, OwnPawn, 20)}, false, net, childSrc)
	incremental.UpdateSide(&parent, false, []int{FeatureIndex(60, OwnPawn, 36)}, []int{FeatureIndex(60, OwnPawn, 44)}, false, net, childSrc)

	var fromScratch Accumulator
	fromScratch.ComputeFull(childSrc, net)

	if incremental.White != fromScratch.White {
		t.Error("UpdateSide(white) diverged from ComputeFull's white perspective after a quiet move")
	}
	if incremental.Black != fromScratch.Black {
		t.Error("UpdateSide(black) diverged from ComputeFull's black perspective after a quiet move")
	}
}

func TestUpdateSideRecomputesOnKingMove(t *testing.T) {
	net := testNetwork()

	parentSrc := fixedFeatures{
		white: []int{FeatureIndex(4, OwnPawn, 20)},
		black: []int{FeatureIndex(60, OwnPawn, 44)},
	}
	var parent Accumulator
	parent.ComputeFull(parentSrc, net)

	// The white king moves from square 4 to square 6; every white feature is
	// now keyed by the new king square, which UpdateSide must handle by
	// recomputing that perspective from scratch rather than patching deltas.
	childSrc := fixedFeatures{
		white: []int{FeatureIndex(6, OwnPawn, 20)},
		black: []int{FeatureIndex(60, OwnPawn, 44)},
	}

	var incremental Accumulator
	incremental.UpdateSide(&parent, true, nil, nil, true, net, childSrc)

	var fromScratch Accumulator
	fromScratch.ComputeFull(childSrc, net)

	if incremental.White != fromScratch.White {
		t.Error("UpdateSide with kingMoved=true should match a full recompute for that perspective")
	}
}

func TestComputeFullStartsFromBias(t *testing.T) {
	net := testNetwork()
	var a Accumulator
	a.ComputeFull(fixedFeatures{}, net)
	if a.White != net.L1Bias {
		t.Error("ComputeFull with no active features should leave the accumulator equal to the bias")
	}
	if !a.Computed {
		t.Error("ComputeFull should mark the accumulator as Computed")
	}
}

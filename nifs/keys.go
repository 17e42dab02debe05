package nifs

import (
	"github.com/sp301415/latticefold/ajtai"
	"github.com/sp301415/latticefold/rangecheck"
)

// Keys holds the commitment keys of one folding session: the key for
// witness vectors, and the double-commitment key for range-check
// monomial tables. Both are expanded deterministically from one seed.
type Keys struct {
	// Witness commits to witness vectors.
	Witness ajtai.CommitKey
	// Range commits to range-check monomial tables.
	Range ajtai.DoubleCommitKey
}

// GenKeys expands the commitment keys from seed.
func GenKeys(params Parameters, seed []byte) Keys {
	r := params.Ring()
	witnessSeed := append([]byte("witness/"), seed...)
	rangeSeed := append([]byte("range/"), seed...)

	return Keys{
		Witness: ajtai.GenCommitKey(r, params.Kappa(), params.WitnessLen(), witnessSeed),
		Range: ajtai.GenDoubleCommitKey(
			r,
			params.Kappa(), rangecheck.TableSize(r, params.WitnessLen()),
			params.DecompBase(), params.DecompParts(), params.MaxNestingDepth(),
			rangeSeed,
		),
	}
}

package nifs

import (
	"fmt"

	"github.com/sp301415/latticefold/ajtai"
	"github.com/sp301415/latticefold/mle"
	"github.com/sp301415/latticefold/rangecheck"
	"github.com/sp301415/latticefold/sumcheck"
	"github.com/sp301415/latticefold/transcript"
)

// Verifier verifies folding proofs.
type Verifier struct {
	// Parameters is the parameters for the folding scheme.
	Parameters Parameters
	// Keys is the commitment keys of this session.
	Keys Keys
}

// NewVerifier creates a new Verifier.
func NewVerifier(params Parameters, keys Keys) *Verifier {
	return &Verifier{
		Parameters: params,
		Keys:       keys,
	}
}

// Verify verifies a folding proof against the two input instances,
// using only their public data. On success it returns the folded
// linearized instance the proof commits the prover to.
func (v *Verifier) Verify(inst1, inst2 CommittedInstance, proof FoldingProof) (LinearizedInstance, error) {
	r := v.Parameters.Ring()
	ccs := inst1.CCS

	if err := checkInputShapes(v.Parameters, inst1, inst2); err != nil {
		return LinearizedInstance{}, err
	}
	t := len(ccs.Matrices)
	if len(proof.Etas[0]) != t || len(proof.Etas[1]) != t {
		return LinearizedInstance{}, fmt.Errorf("%w: wrong claim count", ErrSumcheckRejected)
	}

	ts := transcript.NewTranscript(r, "latticefold")
	absorbInstances(ts, inst1, inst2)

	alpha := ts.SampleScalar("alpha")
	beta := ts.SampleScalars("beta", ccs.NumRounds())

	r0, finalClaim, err := sumcheck.Verify(r, ts, proof.Linearization, r.NewPoly(), ccs.NumRounds(), ccs.MaxDegree())
	if err != nil {
		return LinearizedInstance{}, fmt.Errorf("%w: %v", ErrSumcheckRejected, err)
	}

	// The final claim must equal
	// eq(beta, r0) * (claims_1 + alpha * claims_2).
	buf1 := r.NewPoly()
	buf2 := r.NewPoly()
	ccs.CombineClaims(r, proof.Etas[0], buf1)
	ccs.CombineClaims(r, proof.Etas[1], buf2)
	r.ScalarMulAssign(buf2, alpha, buf2)
	r.AddAssign(buf1, buf2, buf1)
	r.ScalarMulAssign(buf1, mle.EqEval(beta, r0, r.Modulus()), buf1)
	if !r.Equal(buf1, finalClaim) {
		return LinearizedInstance{}, fmt.Errorf("%w: final evaluation mismatch", ErrSumcheckRejected)
	}

	ts.WritePolys("eta1", proof.Etas[0])
	ts.WritePolys("eta2", proof.Etas[1])

	rho := r.NewPoly()
	ts.SampleChallengeAssign("rho", rho)

	xStar, uStar := foldParts(r, inst1, inst2, proof.Etas, rho)

	cStar := ajtai.NewCommitment(r, v.Parameters.Kappa())
	if err := ajtai.CombineAssign(r, inst1.Commitment, inst2.Commitment, rho, cStar); err != nil {
		return LinearizedInstance{}, err
	}

	rcClaims, err := rangecheck.Verify(r, ts, v.Keys.Range, proof.Range, v.Parameters.WitnessLen(), v.Parameters.FoldedBound())
	if err != nil {
		return LinearizedInstance{}, fmt.Errorf("%w: %v", ErrRangeCheckRejected, err)
	}

	return LinearizedInstance{
		CCS:        ccs,
		X:          xStar,
		Commitment: cStar,
		Bound:      v.Parameters.FoldedBound(),

		R:           r0,
		U:           uStar,
		RangeClaims: rcClaims,
	}, nil
}

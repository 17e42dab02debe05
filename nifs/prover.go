package nifs

import (
	"fmt"
	"math/big"

	"github.com/sp301415/latticefold/ajtai"
	"github.com/sp301415/latticefold/mle"
	"github.com/sp301415/latticefold/rangecheck"
	"github.com/sp301415/latticefold/rq"
	"github.com/sp301415/latticefold/sumcheck"
	"github.com/sp301415/latticefold/transcript"
)

// Prover folds committed instances.
type Prover struct {
	// Parameters is the parameters for the folding scheme.
	Parameters Parameters
	// Keys is the commitment keys of this session.
	Keys Keys
}

// NewProver creates a new Prover.
func NewProver(params Parameters, keys Keys) *Prover {
	return &Prover{
		Parameters: params,
		Keys:       keys,
	}
}

// Fold folds two satisfied committed instances into one linearized
// instance, its witness, and a proof of the reduction.
// The inputs are validated before any cryptographic work.
func (p *Prover) Fold(inst1 CommittedInstance, w1 []rq.Poly, inst2 CommittedInstance, w2 []rq.Poly) (FoldedResult, error) {
	r := p.Parameters.Ring()
	ccs := inst1.CCS

	if err := checkInputShapes(p.Parameters, inst1, inst2); err != nil {
		return FoldedResult{}, err
	}
	if len(w1) != p.Parameters.WitnessLen() || len(w2) != p.Parameters.WitnessLen() {
		return FoldedResult{}, ErrShapeMismatch
	}

	bound := big.NewInt(0).SetUint64(p.Parameters.Bound())
	for _, w := range [][]rq.Poly{w1, w2} {
		for i := range w {
			if r.InfNorm(w[i]).Cmp(bound) >= 0 {
				return FoldedResult{}, ErrNormViolation
			}
		}
	}
	if !p.Keys.Witness.Verify(w1, inst1.Commitment) || !p.Keys.Witness.Verify(w2, inst2.Commitment) {
		return FoldedResult{}, ErrCommitmentMismatch
	}

	ts := transcript.NewTranscript(r, "latticefold")
	absorbInstances(ts, inst1, inst2)

	alpha := ts.SampleScalar("alpha")
	beta := ts.SampleScalars("beta", ccs.NumRounds())

	tables := []*mle.DenseMLE{mle.EqTable(r, beta)}
	tables = append(tables, ccs.LinearizationTables(r, ccs.Z(inst1.X, w1))...)
	tables = append(tables, ccs.LinearizationTables(r, ccs.Z(inst2.X, w2))...)

	scProof, r0, finals := sumcheck.Prove(r, ts, tables, linearizationCombine(ccs, alpha), ccs.MaxDegree())

	t := len(ccs.Matrices)
	etas := [2][]rq.Poly{finals[1 : 1+t], finals[1+t : 1+2*t]}
	ts.WritePolys("eta1", etas[0])
	ts.WritePolys("eta2", etas[1])

	rho := r.NewPoly()
	ts.SampleChallengeAssign("rho", rho)

	wStar := make([]rq.Poly, len(w1))
	buf := r.NewPoly()
	for i := range wStar {
		wStar[i] = r.NewPoly()
		r.MulAssign(rho, w2[i], buf)
		r.AddAssign(w1[i], buf, wStar[i])
	}
	xStar, uStar := foldParts(r, inst1, inst2, etas, rho)

	cStar := ajtai.NewCommitment(r, p.Parameters.Kappa())
	if err := ajtai.CombineAssign(r, inst1.Commitment, inst2.Commitment, rho, cStar); err != nil {
		return FoldedResult{}, err
	}

	rcProof, rcClaims, err := rangecheck.Prove(r, ts, p.Keys.Range, wStar, p.Parameters.FoldedBound())
	if err != nil {
		return FoldedResult{}, fmt.Errorf("%w: %v", ErrRangeCheckRejected, err)
	}

	folded := LinearizedInstance{
		CCS:        ccs,
		X:          xStar,
		Commitment: cStar,
		Bound:      p.Parameters.FoldedBound(),

		R:           r0,
		U:           uStar,
		RangeClaims: rcClaims,
	}

	return FoldedResult{
		Instance: folded,
		Witness:  wStar,
		Proof: FoldingProof{
			Linearization: scProof,
			Etas:          etas,
			Range:         rcProof,
		},
	}, nil
}

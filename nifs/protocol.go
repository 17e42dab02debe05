package nifs

import (
	"math/big"

	"github.com/sp301415/latticefold/arith"
	"github.com/sp301415/latticefold/rq"
	"github.com/sp301415/latticefold/sumcheck"
	"github.com/sp301415/latticefold/transcript"
)

// absorbInstances absorbs the public data of both input instances:
// the constraint system and, per instance, public input, commitment
// and bound. Prover and verifier must absorb identically.
func absorbInstances(ts *transcript.Transcript, inst1, inst2 CommittedInstance) {
	absorbCCS(ts, inst1.CCS)
	for _, inst := range []CommittedInstance{inst1, inst2} {
		ts.WriteUint64("bound", inst.Bound)
		ts.WritePolys("public input", inst.X)
		ts.WritePolys("commitment", inst.Commitment.Value)
	}
}

func absorbCCS(ts *transcript.Transcript, ccs *arith.CCS) {
	ts.WriteUint64("constraints", uint64(ccs.NumConstraints))
	ts.WriteUint64("variables", uint64(ccs.NumVariables))
	ts.WriteUint64("public", uint64(ccs.NumPublic))
	for _, mat := range ccs.Matrices {
		for _, row := range mat {
			ts.WritePolys("matrix row", row)
		}
	}
	for s, sel := range ccs.Selectors {
		for j, ok := sel.NextSet(0); ok; j, ok = sel.NextSet(j + 1) {
			ts.WriteUint64("selector", uint64(j))
		}
		ts.WriteScalar("coefficient", ccs.Coeffs[s])
	}
}

// linearizationCombine evaluates the joint linearization polynomial
// eq * (claims_1 + alpha * claims_2), where claims_i applies the
// selector structure to the matrix-table values of instance i.
func linearizationCombine(ccs *arith.CCS, alpha *big.Int) sumcheck.CombineFunc {
	t := len(ccs.Matrices)
	return func(r rq.Ring, vals []rq.Poly, pOut rq.Poly) {
		buf1 := r.NewPoly()
		buf2 := r.NewPoly()
		ccs.CombineClaims(r, vals[1:1+t], buf1)
		ccs.CombineClaims(r, vals[1+t:1+2*t], buf2)
		r.ScalarMulAssign(buf2, alpha, buf2)
		r.AddAssign(buf1, buf2, buf1)
		r.MulAssign(vals[0], buf1, pOut)
	}
}

// checkInputShapes validates that the two instances share a shape
// compatible with the session parameters.
func checkInputShapes(params Parameters, inst1, inst2 CommittedInstance) error {
	if !inst1.CCS.SameShape(inst2.CCS) {
		return ErrShapeMismatch
	}
	if len(inst1.X) != inst1.CCS.NumPublic || len(inst2.X) != inst2.CCS.NumPublic {
		return ErrShapeMismatch
	}
	if inst1.CCS.NumVariables-inst1.CCS.NumPublic != params.WitnessLen() {
		return ErrShapeMismatch
	}
	if inst1.Bound != params.Bound() || inst2.Bound != params.Bound() {
		return ErrShapeMismatch
	}
	if len(inst1.Commitment.Value) != params.Kappa() || len(inst2.Commitment.Value) != params.Kappa() {
		return ErrShapeMismatch
	}
	return nil
}

// foldParts combines the public parts of both instances with the folding
// challenge rho: public input, commitments and evaluation claims.
func foldParts(r rq.Ring, inst1, inst2 CommittedInstance, etas [2][]rq.Poly, rho rq.Poly) (x, u []rq.Poly) {
	buf := r.NewPoly()

	x = make([]rq.Poly, len(inst1.X))
	for i := range x {
		x[i] = r.NewPoly()
		r.MulAssign(rho, inst2.X[i], buf)
		r.AddAssign(inst1.X[i], buf, x[i])
	}

	u = make([]rq.Poly, len(etas[0]))
	for j := range u {
		u[j] = r.NewPoly()
		r.MulAssign(rho, etas[1][j], buf)
		r.AddAssign(etas[0][j], buf, u[j])
	}
	return x, u
}

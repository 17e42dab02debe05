// Package rangecheck proves that every coefficient of a committed witness
// lies in (-bound, bound), without bit decomposition. Each coefficient v is
// encoded as the signed monomial X^v; signed monomials are exactly the ring
// elements m with m * conj(m) = 1, which one sumcheck instance checks for
// the whole table at once. The exponent is recovered through the constant
// term of psi * conj(m), for psi = sum_j j*(X^j - X^-j).
package rangecheck

import (
	"errors"
	"math/big"

	"github.com/sp301415/latticefold/ajtai"
	"github.com/sp301415/latticefold/mle"
	"github.com/sp301415/latticefold/rq"
	"github.com/sp301415/latticefold/sumcheck"
	"github.com/sp301415/latticefold/transcript"
)

var (
	// ErrOutOfRange is returned by the prover when a witness coefficient
	// does not lie in (-bound, bound).
	ErrOutOfRange = errors.New("rangecheck: witness coefficient out of range")
	// ErrRejected is returned by the verifier when the proof fails.
	ErrRejected = errors.New("rangecheck: proof rejected")
)

// Proof is a range-check proof.
type Proof struct {
	// MonomialCommitment commits to the table of coefficient monomials.
	MonomialCommitment ajtai.Commitment
	// DoubleCommitment commits to the balanced decomposition of
	// MonomialCommitment. The verifier recomputes it.
	DoubleCommitment ajtai.Commitment

	// Sumcheck proves sum_x eq(beta, x) * (m(x)*conj(m)(x) - 1) = 0.
	Sumcheck sumcheck.Proof

	// ThetaM is the monomial-table evaluation at the sumcheck point.
	ThetaM rq.Poly
	// ThetaF is the coefficient-table evaluation at the sumcheck point.
	ThetaF *big.Int
}

// Claims are the evaluation claims a range check leaves open. They bind
// the proof to the witness and are checked against it when the folded
// instance is opened.
type Claims struct {
	// Point is the sumcheck challenge point.
	Point []*big.Int
	// ThetaM is the claimed monomial-table evaluation at Point.
	ThetaM rq.Poly
	// ThetaF is the claimed coefficient-table evaluation at Point.
	ThetaF *big.Int
}

// TableSize returns the padded coefficient-table size for a witness of
// length n over a degree-d ring.
func TableSize(r rq.Ring, n int) int {
	return 1 << mle.NumVarsFor(n*r.N())
}

// monomialAssign assigns X^v to pOut, for v in (-d, d).
func monomialAssign(r rq.Ring, v int64, pOut rq.Poly) {
	coeffs := make([]*big.Int, r.N())
	for i := range coeffs {
		coeffs[i] = big.NewInt(0)
	}
	if v >= 0 {
		coeffs[v].SetInt64(1)
	} else {
		coeffs[int64(r.N())+v].SetInt64(-1)
	}
	r.SetCoeffsAssign(coeffs, pOut)
}

// expFunctional assigns psi = sum_{j=1}^{bound-1} j*(X^j - X^-j) to pOut.
// The constant term of psi * X^-v is v for every |v| < bound.
func expFunctional(r rq.Ring, bound uint64, pOut rq.Poly) {
	if 2*bound > uint64(r.N()) {
		panic("range bound too large for ring degree")
	}

	coeffs := make([]*big.Int, r.N())
	for i := range coeffs {
		coeffs[i] = big.NewInt(0)
	}
	for j := uint64(1); j < bound; j++ {
		coeffs[j].SetUint64(j)
		coeffs[uint64(r.N())-j].SetUint64(j)
	}
	r.SetCoeffsAssign(coeffs, pOut)
}

// tables builds the padded coefficient and monomial tables of w.
// Padding slots hold the coefficient 0 and the monomial X^0 = 1.
func tables(r rq.Ring, w []rq.Poly, bound uint64) ([]*big.Int, []rq.Poly, error) {
	boundBig := big.NewInt(0).SetUint64(bound)
	size := TableSize(r, len(w))

	coeffs := make([]*big.Int, 0, size)
	for i := range w {
		coeffs = append(coeffs, r.CoeffsCentered(w[i])...)
	}
	for len(coeffs) < size {
		coeffs = append(coeffs, big.NewInt(0))
	}

	monomials := make([]rq.Poly, size)
	for k, v := range coeffs {
		if v.CmpAbs(boundBig) >= 0 {
			return nil, nil, ErrOutOfRange
		}
		monomials[k] = r.NewPoly()
		monomialAssign(r, v.Int64(), monomials[k])
	}
	return coeffs, monomials, nil
}

func combineRange(one rq.Poly) sumcheck.CombineFunc {
	return func(r rq.Ring, vals []rq.Poly, pOut rq.Poly) {
		r.MulAssign(vals[1], vals[2], pOut)
		r.SubAssign(pOut, one, pOut)
		r.MulAssign(vals[0], pOut, pOut)
	}
}

// Prove proves that every coefficient of w lies in (-bound, bound).
// The monomial table is committed under dk.
func Prove(r rq.Ring, ts *transcript.Transcript, dk ajtai.DoubleCommitKey, w []rq.Poly, bound uint64) (Proof, Claims, error) {
	coeffs, monomials, err := tables(r, w, bound)
	if err != nil {
		return Proof{}, Claims{}, err
	}

	outer, inner, err := dk.DoubleCommit(monomials, 0)
	if err != nil {
		return Proof{}, Claims{}, err
	}

	ts.WritePolys("range monomial commitment", outer.Value)
	ts.WritePolys("range double commitment", inner.Value)

	numVars := mle.NumVarsFor(len(monomials))
	beta := ts.SampleScalars("range beta", numVars)

	conj := make([]rq.Poly, len(monomials))
	for k := range conj {
		conj[k] = r.NewPoly()
		r.ConjugateAssign(monomials[k], conj[k])
	}

	scTables := []*mle.DenseMLE{
		mle.EqTable(r, beta),
		mle.FromSlice(r, monomials),
		mle.FromSlice(r, conj),
	}
	scProof, point, finals := sumcheck.Prove(r, ts, scTables, combineRange(r.One()), 3)

	thetaM := finals[1]
	thetaF := mle.EvaluateScalars(coeffs, point, r.Modulus())
	thetaF.Mod(thetaF, r.Modulus())

	ts.WritePoly("range theta_m", thetaM)
	ts.WriteScalar("range theta_f", thetaF)

	proof := Proof{
		MonomialCommitment: outer,
		DoubleCommitment:   inner,
		Sumcheck:           scProof,
		ThetaM:             thetaM,
		ThetaF:             thetaF,
	}
	claims := Claims{
		Point:  point,
		ThetaM: thetaM,
		ThetaF: thetaF,
	}
	return proof, claims, nil
}

// Verify verifies a range-check proof for a committed witness of length
// witnessLen, and returns the evaluation claims it leaves open.
func Verify(r rq.Ring, ts *transcript.Transcript, dk ajtai.DoubleCommitKey, proof Proof, witnessLen int, bound uint64) (Claims, error) {
	inner, err := dk.CommitDecomposition(proof.MonomialCommitment)
	if err != nil {
		return Claims{}, err
	}
	if !inner.Equal(r, proof.DoubleCommitment) {
		return Claims{}, ErrRejected
	}

	ts.WritePolys("range monomial commitment", proof.MonomialCommitment.Value)
	ts.WritePolys("range double commitment", proof.DoubleCommitment.Value)

	numVars := mle.NumVarsFor(witnessLen * r.N())
	beta := ts.SampleScalars("range beta", numVars)

	point, finalClaim, err := sumcheck.Verify(r, ts, proof.Sumcheck, r.NewPoly(), numVars, 3)
	if err != nil {
		return Claims{}, err
	}

	// finalClaim must equal eq(beta, point) * (theta_m * conj(theta_m) - 1).
	conjTheta := r.NewPoly()
	r.ConjugateAssign(proof.ThetaM, conjTheta)
	oracle := r.NewPoly()
	r.MulAssign(proof.ThetaM, conjTheta, oracle)
	r.SubAssign(oracle, r.One(), oracle)
	r.ScalarMulAssign(oracle, mle.EqEval(beta, point, r.Modulus()), oracle)
	if !r.Equal(oracle, finalClaim) {
		return Claims{}, ErrRejected
	}

	// Exponent link: ct(psi * conj(theta_m)) must equal theta_f.
	psi := r.NewPoly()
	expFunctional(r, bound, psi)
	link := r.NewPoly()
	r.MulAssign(psi, conjTheta, link)
	ct := r.CoeffsCentered(link)[0]
	ct.Mod(ct, r.Modulus())
	thetaF := big.NewInt(0).Mod(proof.ThetaF, r.Modulus())
	if ct.Cmp(thetaF) != 0 {
		return Claims{}, ErrRejected
	}

	ts.WritePoly("range theta_m", proof.ThetaM)
	ts.WriteScalar("range theta_f", proof.ThetaF)

	return Claims{
		Point:  point,
		ThetaM: proof.ThetaM,
		ThetaF: proof.ThetaF,
	}, nil
}

// VerifyClaims checks the deferred evaluation claims of a range check
// against the opened witness.
func VerifyClaims(r rq.Ring, w []rq.Poly, bound uint64, claims Claims) bool {
	coeffs, monomials, err := tables(r, w, bound)
	if err != nil {
		return false
	}

	thetaF := mle.EvaluateScalars(coeffs, claims.Point, r.Modulus())
	thetaF.Mod(thetaF, r.Modulus())
	if thetaF.Cmp(big.NewInt(0).Mod(claims.ThetaF, r.Modulus())) != 0 {
		return false
	}

	thetaM := mle.FromSlice(r, monomials).Evaluate(r, claims.Point)
	return r.Equal(thetaM, claims.ThetaM)
}

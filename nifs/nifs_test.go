package nifs_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sp301415/latticefold/arith"
	"github.com/sp301415/latticefold/nifs"
	"github.com/sp301415/latticefold/rq"
)

var (
	params = nifs.ParametersLiteral{
		RingDegree: 64,
		LogQ:       []int{55},

		Kappa:      2,
		WitnessLen: 2,
		Bound:      8,

		DecompBase:      1 << 8,
		MaxNestingDepth: 4,
	}.Compile()
	keys   = nifs.GenKeys(params, []byte("nifs test key"))
	ringQ  = params.Ring()
	prover = nifs.NewProver(params, keys)
)

// constMatrix embeds an integer matrix as ring constants.
func constMatrix(vals [][]int64) [][]rq.Poly {
	m := make([][]rq.Poly, len(vals))
	for i := range vals {
		m[i] = make([]rq.Poly, len(vals[i]))
		for j := range vals[i] {
			m[i][j] = ringQ.NewPoly()
			ringQ.ConstantAssign(big.NewInt(vals[i][j]), m[i][j])
		}
	}
	return m
}

// monomial returns X^deg.
func monomial(deg int) rq.Poly {
	coeffs := make([]*big.Int, ringQ.N())
	for i := range coeffs {
		coeffs[i] = big.NewInt(0)
	}
	coeffs[deg].SetInt64(1)
	p := ringQ.NewPoly()
	ringQ.SetCoeffsAssign(coeffs, p)
	return p
}

// testR1CS encodes, over z = (c, a, b):
//
//	a * b = c
//	a * a = b
func testR1CS() *arith.CCS {
	a := constMatrix([][]int64{{0, 1, 0}, {0, 1, 0}})
	b := constMatrix([][]int64{{0, 0, 1}, {0, 1, 0}})
	c := constMatrix([][]int64{{1, 0, 0}, {0, 0, 1}})
	return arith.NewR1CS(a, b, c, 1)
}

// testInstance builds a satisfying committed instance with a = X^k.
func testInstance(t *testing.T, ccs *arith.CCS, k int) (nifs.CommittedInstance, []rq.Poly) {
	x := []rq.Poly{monomial(3 * k)}
	w := []rq.Poly{monomial(k), monomial(2 * k)}

	com, err := keys.Witness.Commit(w)
	assert.NoError(t, err)

	inst := nifs.CommittedInstance{
		CCS:        ccs,
		X:          x,
		Commitment: com,
		Bound:      params.Bound(),
	}
	assert.True(t, inst.IsSatisfied(ringQ, keys.Witness, w))
	return inst, w
}

func TestFold(t *testing.T) {
	ccs := testR1CS()
	verifier := nifs.NewVerifier(params, keys)

	inst1, w1 := testInstance(t, ccs, 1)
	inst2, w2 := testInstance(t, ccs, 3)

	res, err := prover.Fold(inst1, w1, inst2, w2)
	assert.NoError(t, err)

	t.Run("FoldedWitnessSatisfies", func(t *testing.T) {
		assert.True(t, res.Instance.IsSatisfied(ringQ, keys.Witness, res.Witness))
	})

	t.Run("VerifierAccepts", func(t *testing.T) {
		folded, err := verifier.Verify(inst1, inst2, res.Proof)
		assert.NoError(t, err)

		assert.True(t, folded.Commitment.Equal(ringQ, res.Instance.Commitment))
		for j := range folded.U {
			assert.True(t, ringQ.Equal(folded.U[j], res.Instance.U[j]))
		}
		for i := range folded.R {
			assert.Zero(t, folded.R[i].Cmp(res.Instance.R[i]))
		}
		assert.True(t, folded.IsSatisfied(ringQ, keys.Witness, res.Witness))
	})

	t.Run("VerificationIdempotent", func(t *testing.T) {
		_, err0 := verifier.Verify(inst1, inst2, res.Proof)
		_, err1 := verifier.Verify(inst1, inst2, res.Proof)
		assert.Equal(t, err0 == nil, err1 == nil)
	})

	t.Run("TamperedEta", func(t *testing.T) {
		resT, err := prover.Fold(inst1, w1, inst2, w2)
		assert.NoError(t, err)
		ringQ.AddAssign(resT.Proof.Etas[0][0], ringQ.One(), resT.Proof.Etas[0][0])

		_, err = verifier.Verify(inst1, inst2, resT.Proof)
		assert.ErrorIs(t, err, nifs.ErrSumcheckRejected)
	})

	t.Run("TamperedSumcheck", func(t *testing.T) {
		resT, err := prover.Fold(inst1, w1, inst2, w2)
		assert.NoError(t, err)
		rounds := resT.Proof.Linearization.Rounds
		ringQ.AddAssign(rounds[0][0], ringQ.One(), rounds[0][0])

		_, err = verifier.Verify(inst1, inst2, resT.Proof)
		assert.ErrorIs(t, err, nifs.ErrSumcheckRejected)
	})

	t.Run("TamperedRangeProof", func(t *testing.T) {
		resT, err := prover.Fold(inst1, w1, inst2, w2)
		assert.NoError(t, err)
		resT.Proof.Range.ThetaF.Add(resT.Proof.Range.ThetaF, big.NewInt(1))

		_, err = verifier.Verify(inst1, inst2, resT.Proof)
		assert.ErrorIs(t, err, nifs.ErrRangeCheckRejected)
	})
}

func TestFoldRejectsBadInputs(t *testing.T) {
	ccs := testR1CS()

	inst1, w1 := testInstance(t, ccs, 1)
	inst2, w2 := testInstance(t, ccs, 3)

	t.Run("ShapeMismatch", func(t *testing.T) {
		other := arith.NewR1CS(
			constMatrix([][]int64{{0, 1, 0}, {0, 1, 0}}),
			constMatrix([][]int64{{0, 0, 1}, {0, 1, 0}}),
			constMatrix([][]int64{{1, 0, 0}, {0, 0, 1}}),
			0,
		)
		instBad := inst2
		instBad.CCS = other

		_, err := prover.Fold(inst1, w1, instBad, w2)
		assert.ErrorIs(t, err, nifs.ErrShapeMismatch)
	})

	t.Run("NormViolation", func(t *testing.T) {
		wBad := []rq.Poly{ringQ.NewPoly(), ringQ.NewPoly()}
		wBad[0].Copy(w2[0])
		wBad[1].Copy(w2[1])

		coeffs := ringQ.CoeffsCentered(wBad[0])
		coeffs[0].SetInt64(int64(params.Bound()))
		ringQ.SetCoeffsAssign(coeffs, wBad[0])

		instBad := inst2
		com, err := keys.Witness.Commit(wBad)
		assert.NoError(t, err)
		instBad.Commitment = com

		_, err = prover.Fold(inst1, w1, instBad, wBad)
		assert.ErrorIs(t, err, nifs.ErrNormViolation)
	})

	t.Run("CommitmentMismatch", func(t *testing.T) {
		instBad := inst2
		instBad.Commitment = instBad.Commitment.Copy(ringQ)
		ringQ.AddAssign(instBad.Commitment.Value[0], ringQ.One(), instBad.Commitment.Value[0])

		_, err := prover.Fold(inst1, w1, instBad, w2)
		assert.ErrorIs(t, err, nifs.ErrCommitmentMismatch)
	})
}

func TestFoldSoundness(t *testing.T) {
	ccs := testR1CS()
	verifier := nifs.NewVerifier(params, keys)

	inst1, w1 := testInstance(t, ccs, 1)
	_, w2 := testInstance(t, ccs, 3)

	// Corrupt the second witness but commit to it honestly, so the fold
	// itself goes through and only verification can catch it.
	wBad := []rq.Poly{ringQ.NewPoly(), ringQ.NewPoly()}
	wBad[0].Copy(w2[0])
	wBad[1].Copy(w2[1])
	ringQ.AddAssign(wBad[0], ringQ.One(), wBad[0])

	com, err := keys.Witness.Commit(wBad)
	assert.NoError(t, err)
	instBad := nifs.CommittedInstance{
		CCS:        ccs,
		X:          []rq.Poly{monomial(9)},
		Commitment: com,
		Bound:      params.Bound(),
	}
	assert.False(t, instBad.IsSatisfied(ringQ, keys.Witness, wBad))

	res, err := prover.Fold(inst1, w1, instBad, wBad)
	assert.NoError(t, err)

	_, err = verifier.Verify(inst1, instBad, res.Proof)
	if err == nil {
		assert.False(t, res.Instance.IsSatisfied(ringQ, keys.Witness, res.Witness))
	}
}

package rangecheck_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sp301415/latticefold/ajtai"
	"github.com/sp301415/latticefold/csprng"
	"github.com/sp301415/latticefold/rangecheck"
	"github.com/sp301415/latticefold/rq"
	"github.com/sp301415/latticefold/transcript"
)

var (
	ringQ = rq.NewNegacyclicRing(64, []int{55})
	dk    = ajtai.GenDoubleCommitKey(
		ringQ,
		2, rangecheck.TableSize(ringQ, 2),
		1<<8, 8, 4,
		[]byte("range test key"),
	)
)

func sampleShortWitness(s *csprng.StreamSampler, n int, bound int64) []rq.Poly {
	w := make([]rq.Poly, n)
	coeffs := make([]*big.Int, ringQ.N())
	for i := range w {
		w[i] = ringQ.NewPoly()
		for j := range coeffs {
			coeffs[j] = big.NewInt(int64(s.SampleN(uint64(2*bound-1))) - (bound - 1))
		}
		ringQ.SetCoeffsAssign(coeffs, w[i])
	}
	return w
}

func TestRangeCheck(t *testing.T) {
	us := csprng.NewStreamSampler()

	t.Run("Completeness", func(t *testing.T) {
		w := sampleShortWitness(us, 2, 16)

		tsP := transcript.NewTranscript(ringQ, "range test")
		proof, claims, err := rangecheck.Prove(ringQ, tsP, dk, w, 16)
		assert.NoError(t, err)

		tsV := transcript.NewTranscript(ringQ, "range test")
		claimsOut, err := rangecheck.Verify(ringQ, tsV, dk, proof, 2, 16)
		assert.NoError(t, err)

		assert.True(t, ringQ.Equal(claims.ThetaM, claimsOut.ThetaM))
		assert.Zero(t, claims.ThetaF.Cmp(claimsOut.ThetaF))
		for i := range claims.Point {
			assert.Zero(t, claims.Point[i].Cmp(claimsOut.Point[i]))
		}

		assert.True(t, rangecheck.VerifyClaims(ringQ, w, 16, claimsOut))
	})

	t.Run("OutOfRange", func(t *testing.T) {
		w := sampleShortWitness(us, 2, 16)
		coeffs := ringQ.CoeffsCentered(w[0])
		coeffs[0].SetInt64(16)
		ringQ.SetCoeffsAssign(coeffs, w[0])

		ts := transcript.NewTranscript(ringQ, "range test")
		_, _, err := rangecheck.Prove(ringQ, ts, dk, w, 16)
		assert.ErrorIs(t, err, rangecheck.ErrOutOfRange)
	})

	t.Run("TamperedThetaF", func(t *testing.T) {
		w := sampleShortWitness(us, 2, 16)

		tsP := transcript.NewTranscript(ringQ, "range test")
		proof, _, err := rangecheck.Prove(ringQ, tsP, dk, w, 16)
		assert.NoError(t, err)
		proof.ThetaF.Add(proof.ThetaF, big.NewInt(1))

		tsV := transcript.NewTranscript(ringQ, "range test")
		_, err = rangecheck.Verify(ringQ, tsV, dk, proof, 2, 16)
		assert.ErrorIs(t, err, rangecheck.ErrRejected)
	})

	t.Run("TamperedDoubleCommitment", func(t *testing.T) {
		w := sampleShortWitness(us, 2, 16)

		tsP := transcript.NewTranscript(ringQ, "range test")
		proof, _, err := rangecheck.Prove(ringQ, tsP, dk, w, 16)
		assert.NoError(t, err)
		ringQ.AddAssign(proof.DoubleCommitment.Value[0], ringQ.One(), proof.DoubleCommitment.Value[0])

		tsV := transcript.NewTranscript(ringQ, "range test")
		_, err = rangecheck.Verify(ringQ, tsV, dk, proof, 2, 16)
		assert.ErrorIs(t, err, rangecheck.ErrRejected)
	})

	t.Run("TamperedSumcheck", func(t *testing.T) {
		w := sampleShortWitness(us, 2, 16)

		tsP := transcript.NewTranscript(ringQ, "range test")
		proof, _, err := rangecheck.Prove(ringQ, tsP, dk, w, 16)
		assert.NoError(t, err)
		ringQ.AddAssign(proof.Sumcheck.Rounds[0][0], ringQ.One(), proof.Sumcheck.Rounds[0][0])

		tsV := transcript.NewTranscript(ringQ, "range test")
		_, err = rangecheck.Verify(ringQ, tsV, dk, proof, 2, 16)
		assert.Error(t, err)
	})

	t.Run("WrongWitnessClaims", func(t *testing.T) {
		w := sampleShortWitness(us, 2, 16)

		tsP := transcript.NewTranscript(ringQ, "range test")
		_, claims, err := rangecheck.Prove(ringQ, tsP, dk, w, 16)
		assert.NoError(t, err)

		other := sampleShortWitness(us, 2, 16)
		assert.False(t, rangecheck.VerifyClaims(ringQ, other, 16, claims))
	})
}

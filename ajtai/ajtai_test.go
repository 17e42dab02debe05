package ajtai_test

import (
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/sp301415/latticefold/ajtai"
	"github.com/sp301415/latticefold/csprng"
	"github.com/sp301415/latticefold/rq"
)

var ringQ = rq.NewNegacyclicRing(64, []int{55})

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

func TestCommit(t *testing.T) {
	ck := ajtai.GenCommitKey(ringQ, 2, 4, []byte("test key"))
	us := csprng.NewStreamSampler()

	t.Run("Deterministic", func(t *testing.T) {
		ckOut := ajtai.GenCommitKey(ringQ, 2, 4, []byte("test key"))
		for i := range ck.A {
			for j := range ck.A[i] {
				assert.True(t, ringQ.Equal(ck.A[i][j], ckOut.A[i][j]))
			}
		}
	})

	t.Run("VerifyOpen", func(t *testing.T) {
		w := sampleShortWitness(us, 4, 8)
		c, err := ck.Commit(w)
		assert.NoError(t, err)
		assert.True(t, ck.Verify(w, c))

		ringQ.AddAssign(w[0], ringQ.One(), w[0])
		assert.False(t, ck.Verify(w, c))
	})

	t.Run("WrongWitnessLength", func(t *testing.T) {
		_, err := ck.Commit(sampleShortWitness(us, 3, 8))
		assert.ErrorIs(t, err, ajtai.ErrWrongWitnessLength)
	})

	t.Run("Homomorphic", func(t *testing.T) {
		properties := gopter.NewProperties(nil)

		properties.Property("commit(w0 + rho*w1) = commit(w0) + rho*commit(w1)", prop.ForAll(
			func(chIdx uint64) bool {
				w0 := sampleShortWitness(us, 4, 8)
				w1 := sampleShortWitness(us, 4, 8)
				rho := ringQ.NewPoly()
				ringQ.ChallengeAssign(chIdx, rho)

				c0, _ := ck.Commit(w0)
				c1, _ := ck.Commit(w1)
				cOut := ajtai.NewCommitment(ringQ, 2)
				ajtai.CombineAssign(ringQ, c0, c1, rho, cOut)

				wFold := make([]rq.Poly, len(w0))
				buf := ringQ.NewPoly()
				for i := range wFold {
					wFold[i] = ringQ.NewPoly()
					ringQ.MulAssign(rho, w1[i], buf)
					ringQ.AddAssign(w0[i], buf, wFold[i])
				}
				cFold, _ := ck.Commit(wFold)

				return cFold.Equal(ringQ, cOut)
			},
			gen.UInt64Range(0, ringQ.ChallengeSetSize()-1),
		))

		properties.TestingRun(t)
	})
}

func TestDecompose(t *testing.T) {
	us := csprng.NewStreamSampler()

	t.Run("RoundTrip", func(t *testing.T) {
		w := make([]rq.Poly, 2)
		for i := range w {
			w[i] = ringQ.NewPoly()
			for l, subRing := range ringQ.RingQ().SubRings {
				for j := range w[i].Coeffs[l] {
					w[i].Coeffs[l][j] = us.SampleN(subRing.Modulus)
				}
			}
		}

		parts := ajtai.DecomposeBalanced(ringQ, w, 1<<8, 8)
		wOut := make([]rq.Poly, len(w))
		for i := range wOut {
			wOut[i] = ringQ.NewPoly()
		}
		ajtai.RecomposeAssign(ringQ, parts, 1<<8, wOut)

		for i := range w {
			assert.True(t, ringQ.Equal(w[i], wOut[i]))
		}
	})

	t.Run("ShortDigits", func(t *testing.T) {
		w := sampleShortWitness(us, 1, 1<<20)
		parts := ajtai.DecomposeBalanced(ringQ, w, 1<<8, 8)
		for i := range parts {
			for j := range parts[i] {
				assert.LessOrEqual(t, ringQ.InfNorm(parts[i][j]).Int64(), int64(1<<7))
			}
		}
	})
}

func TestDoubleCommit(t *testing.T) {
	dk := ajtai.GenDoubleCommitKey(ringQ, 2, 4, 1<<8, 8, 4, []byte("test key"))
	us := csprng.NewStreamSampler()

	t.Run("Recomputable", func(t *testing.T) {
		w := sampleShortWitness(us, 4, 8)
		outer, inner, err := dk.DoubleCommit(w, 0)
		assert.NoError(t, err)

		innerOut, err := dk.CommitDecomposition(outer)
		assert.NoError(t, err)
		assert.True(t, inner.Equal(ringQ, innerOut))
	})

	t.Run("NestingDepthExceeded", func(t *testing.T) {
		w := sampleShortWitness(us, 4, 8)
		_, _, err := dk.DoubleCommit(w, 3)
		assert.ErrorIs(t, err, ajtai.ErrNestingDepthExceeded)
	})
}

// Package sumcheck implements the generalized sumcheck protocol over R_q.
// The summed polynomial g is a combination of multilinear tables, the
// verifier's challenges are scalars in Z_Q, and round messages are the
// evaluations of the round polynomial at 0, ..., D.
package sumcheck

import (
	"errors"
	"math/big"

	"github.com/sp301415/latticefold/mle"
	"github.com/sp301415/latticefold/rq"
	"github.com/sp301415/latticefold/transcript"
)

var (
	// ErrDegreeExceeded is returned when a round message has more
	// evaluations than the degree bound allows.
	ErrDegreeExceeded = errors.New("sumcheck: round degree exceeds bound")
	// ErrInconsistentRound is returned when a round message does not sum
	// to the running claim.
	ErrInconsistentRound = errors.New("sumcheck: inconsistent round message")
)

// CombineFunc evaluates the combined polynomial g at one point, given the
// values of the underlying multilinear tables at that point.
type CombineFunc func(r rq.Ring, vals []rq.Poly, pOut rq.Poly)

// Proof is a sumcheck proof. Rounds[i] holds the evaluations of the i-th
// round polynomial at 0, ..., D.
type Proof struct {
	Rounds [][]rq.Poly
}

// Prove runs the sumcheck prover for sum_x g(tables(x)) over the
// hypercube, where g is evaluated by combine with per-round degree at
// most degree. The tables are consumed.
//
// It returns the proof, the challenge point, and the value of each table
// at the challenge point.
func Prove(r rq.Ring, ts *transcript.Transcript, tables []*mle.DenseMLE, combine CombineFunc, degree int) (Proof, []*big.Int, []rq.Poly) {
	numVars := tables[0].NumVars
	for _, tab := range tables {
		if tab.NumVars != numVars {
			panic("tables have different numbers of variables")
		}
	}

	rounds := make([][]rq.Poly, numVars)
	point := make([]*big.Int, numVars)

	vals := make([]rq.Poly, len(tables))
	for k := range vals {
		vals[k] = r.NewPoly()
	}
	diff := r.NewPoly()
	buf := r.NewPoly()

	for i := 0; i < numVars; i++ {
		half := len(tables[0].Evals) >> 1

		evals := make([]rq.Poly, degree+1)
		for t := range evals {
			evals[t] = r.NewPoly()
			tBig := big.NewInt(int64(t))
			for j := 0; j < half; j++ {
				for k, tab := range tables {
					r.SubAssign(tab.Evals[2*j+1], tab.Evals[2*j], diff)
					r.ScalarMulAssign(diff, tBig, diff)
					r.AddAssign(tab.Evals[2*j], diff, vals[k])
				}
				combine(r, vals, buf)
				r.AddAssign(evals[t], buf, evals[t])
			}
		}
		rounds[i] = evals

		ts.WritePolys("sumcheck round", evals)
		point[i] = ts.SampleScalar("sumcheck challenge")

		for _, tab := range tables {
			tab.FixVariable(r, point[i])
		}
	}

	finals := make([]rq.Poly, len(tables))
	for k, tab := range tables {
		finals[k] = r.NewPoly()
		finals[k].Copy(tab.Evals[0])
	}

	return Proof{Rounds: rounds}, point, finals
}

// Verify runs the sumcheck verifier for the given claim. It returns the
// challenge point and the claimed value of g at that point, which the
// caller must check against an oracle evaluation.
func Verify(r rq.Ring, ts *transcript.Transcript, proof Proof, claim rq.Poly, numVars, degree int) ([]*big.Int, rq.Poly, error) {
	if len(proof.Rounds) != numVars {
		return nil, rq.Poly{}, ErrInconsistentRound
	}

	running := r.NewPoly()
	running.Copy(claim)

	point := make([]*big.Int, numVars)
	buf := r.NewPoly()

	for i := 0; i < numVars; i++ {
		evals := proof.Rounds[i]
		if len(evals) > degree+1 {
			return nil, rq.Poly{}, ErrDegreeExceeded
		}
		if len(evals) < 2 {
			return nil, rq.Poly{}, ErrInconsistentRound
		}

		r.AddAssign(evals[0], evals[1], buf)
		if !r.Equal(buf, running) {
			return nil, rq.Poly{}, ErrInconsistentRound
		}

		ts.WritePolys("sumcheck round", evals)
		point[i] = ts.SampleScalar("sumcheck challenge")

		evaluateAssign(r, evals, point[i], running)
	}

	return point, running, nil
}

// evaluateAssign evaluates the polynomial with values evals at 0, ...,
// len(evals)-1 at the scalar x, by Lagrange interpolation on the nodes.
func evaluateAssign(r rq.Ring, evals []rq.Poly, x *big.Int, pOut rq.Poly) {
	q := r.Modulus()
	n := len(evals)

	// prefix[t] = prod_{s<t} (x-s), suffix[t] = prod_{s>t} (x-s).
	prefix := make([]*big.Int, n)
	suffix := make([]*big.Int, n)
	prefix[0] = big.NewInt(1)
	for t := 1; t < n; t++ {
		prefix[t] = big.NewInt(0).Sub(x, big.NewInt(int64(t-1)))
		prefix[t].Mul(prefix[t], prefix[t-1])
		prefix[t].Mod(prefix[t], q)
	}
	suffix[n-1] = big.NewInt(1)
	for t := n - 2; t >= 0; t-- {
		suffix[t] = big.NewInt(0).Sub(x, big.NewInt(int64(t+1)))
		suffix[t].Mul(suffix[t], suffix[t+1])
		suffix[t].Mod(suffix[t], q)
	}

	weight := big.NewInt(0)
	denom := big.NewInt(0)
	buf := r.NewPoly()
	acc := r.NewPoly()

	for t := 0; t < n; t++ {
		denom.SetInt64(1)
		for s := 0; s < n; s++ {
			if s != t {
				denom.Mul(denom, big.NewInt(int64(t-s)))
			}
		}
		denom.Mod(denom, q)
		denom.ModInverse(denom, q)

		weight.Mul(prefix[t], suffix[t])
		weight.Mul(weight, denom)
		weight.Mod(weight, q)

		r.ScalarMulAssign(evals[t], weight, buf)
		r.AddAssign(acc, buf, acc)
	}

	pOut.Copy(acc)
}

package nifs

import (
	"errors"
	"math/big"

	"github.com/sp301415/latticefold/ajtai"
	"github.com/sp301415/latticefold/arith"
	"github.com/sp301415/latticefold/rangecheck"
	"github.com/sp301415/latticefold/rq"
	"github.com/sp301415/latticefold/sumcheck"
)

var (
	// ErrShapeMismatch is returned when the two input instances do not
	// share the same constraint-system structure.
	ErrShapeMismatch = errors.New("nifs: instance shapes do not match")
	// ErrNormViolation is returned when an input witness exceeds its
	// declared norm bound.
	ErrNormViolation = errors.New("nifs: witness norm exceeds bound")
	// ErrCommitmentMismatch is returned when a supplied witness does not
	// open a supplied commitment.
	ErrCommitmentMismatch = errors.New("nifs: commitment does not open to witness")
	// ErrSumcheckRejected is returned when the linearization sumcheck or
	// its final evaluation identity fails.
	ErrSumcheckRejected = errors.New("nifs: sumcheck rejected")
	// ErrRangeCheckRejected is returned when the range-check proof fails.
	ErrRangeCheckRejected = errors.New("nifs: range check rejected")
)

// CommittedInstance is a CCS instance with a committed witness.
// Every coefficient of the witness must lie in (-Bound, Bound),
// and Commitment must open to it.
type CommittedInstance struct {
	// CCS is the constraint system.
	CCS *arith.CCS
	// X is the public input.
	X []rq.Poly
	// Commitment commits to the witness.
	Commitment ajtai.Commitment
	// Bound is the witness norm bound.
	Bound uint64
}

// IsSatisfied checks that w opens the commitment, respects the norm
// bound, and satisfies the constraint system.
func (ci CommittedInstance) IsSatisfied(r rq.Ring, ck ajtai.CommitKey, w []rq.Poly) bool {
	if !ck.Verify(w, ci.Commitment) {
		return false
	}
	bound := big.NewInt(0).SetUint64(ci.Bound)
	for i := range w {
		if r.InfNorm(w[i]).Cmp(bound) >= 0 {
			return false
		}
	}
	return ci.CCS.IsSatisfied(r, ci.X, w)
}

// LinearizedInstance is the output of one fold: a committed instance
// whose constraint claims have been reduced to per-matrix evaluation
// claims at a common point, plus the deferred range-check claims.
type LinearizedInstance struct {
	// CCS is the constraint system.
	CCS *arith.CCS
	// X is the folded public input.
	X []rq.Poly
	// Commitment is the folded commitment.
	Commitment ajtai.Commitment
	// Bound is the folded norm bound.
	Bound uint64

	// R is the linearization point.
	R []*big.Int
	// U holds the folded evaluation claims, one per constraint matrix.
	U []rq.Poly
	// RangeClaims are the deferred range-check evaluation claims.
	RangeClaims rangecheck.Claims
}

// IsSatisfied checks the linearized satisfaction predicate for w:
// the commitment opens, the norm bound holds, the evaluation claims
// match direct evaluation, and the range-check claims match.
func (li LinearizedInstance) IsSatisfied(r rq.Ring, ck ajtai.CommitKey, w []rq.Poly) bool {
	if !ck.Verify(w, li.Commitment) {
		return false
	}
	bound := big.NewInt(0).SetUint64(li.Bound)
	for i := range w {
		if r.InfNorm(w[i]).Cmp(bound) >= 0 {
			return false
		}
	}
	if !li.CCS.IsSatisfiedLinearized(r, li.CCS.Z(li.X, w), li.R, li.U) {
		return false
	}
	return rangecheck.VerifyClaims(r, w, li.Bound, li.RangeClaims)
}

// FoldingProof proves that one fold was performed honestly.
type FoldingProof struct {
	// Linearization is the joint linearization sumcheck proof.
	Linearization sumcheck.Proof
	// Etas holds the per-instance, per-matrix evaluation claims at the
	// linearization point.
	Etas [2][]rq.Poly
	// Range is the range-check proof for the folded witness.
	Range rangecheck.Proof
}

// FoldedResult is the output of one fold step. The witness is owned by
// the caller; the prover retains no reference to it.
type FoldedResult struct {
	// Instance is the folded linearized instance.
	Instance LinearizedInstance
	// Witness is the folded witness.
	Witness []rq.Poly
	// Proof is the folding proof.
	Proof FoldingProof
}

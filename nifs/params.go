// Package nifs implements a non-interactive folding scheme for committed
// constraint systems over module lattices. One fold reduces two satisfied
// committed CCS instances to a single linearized instance together with a
// proof that the reduction was performed honestly, keeping the folded
// witness short enough for the commitment to stay binding.
package nifs

import (
	"math/big"

	"github.com/sp301415/latticefold/rq"
)

// ParametersLiteral is a structure for the folding scheme parameters.
type ParametersLiteral struct {
	// RingDegree is the degree d of the ring R_q.
	RingDegree int
	// LogQ is the bit lengths of the primes of the modulus chain.
	LogQ []int

	// Kappa is the length of Ajtai commitments.
	Kappa int
	// WitnessLen is the length of committed witness vectors.
	WitnessLen int
	// Bound is the witness norm bound B: every coefficient of a committed
	// witness must lie in (-B, B).
	Bound uint64

	// DecompBase is the base of the balanced gadget decomposition used by
	// double commitments.
	DecompBase uint64
	// MaxNestingDepth bounds how many commitment layers may be stacked
	// across repeated folds before re-expansion.
	MaxNestingDepth int
}

// Compile transforms ParametersLiteral to read-only Parameters.
// If there are invalid parameters in the literal, it panics.
func (p ParametersLiteral) Compile() Parameters {
	switch {
	case p.Kappa <= 0:
		panic("Kappa smaller than one")
	case p.WitnessLen <= 0:
		panic("WitnessLen smaller than one")
	case p.Bound < 2:
		panic("Bound smaller than two")
	case 4*p.Bound > uint64(p.RingDegree):
		panic("folded range bound exceeds ring degree")
	case p.DecompBase < 2:
		panic("DecompBase smaller than two")
	case p.MaxNestingDepth < 2:
		panic("MaxNestingDepth smaller than two")
	}

	ringQ := rq.NewNegacyclicRing(p.RingDegree, p.LogQ)

	// The decomposition must cover centered values up to q/2.
	decompParts := 1
	pow := big.NewInt(0).SetUint64(p.DecompBase)
	base := big.NewInt(0).SetUint64(p.DecompBase)
	for pow.Cmp(ringQ.Modulus()) < 0 {
		pow.Mul(pow, base)
		decompParts++
	}
	decompParts++

	return Parameters{
		ringQ: ringQ,

		kappa:      p.Kappa,
		witnessLen: p.WitnessLen,
		bound:      p.Bound,

		decompBase:      p.DecompBase,
		decompParts:     decompParts,
		maxNestingDepth: p.MaxNestingDepth,
	}
}

// Parameters is a read-only structure for the folding scheme parameters.
// It is created from ParametersLiteral.
type Parameters struct {
	ringQ rq.Ring

	kappa      int
	witnessLen int
	bound      uint64

	decompBase      uint64
	decompParts     int
	maxNestingDepth int
}

// Ring returns the underlying ring R_q.
func (p Parameters) Ring() rq.Ring {
	return p.ringQ
}

// Kappa returns the length of Ajtai commitments.
func (p Parameters) Kappa() int {
	return p.kappa
}

// WitnessLen returns the length of committed witness vectors.
func (p Parameters) WitnessLen() int {
	return p.witnessLen
}

// Bound returns the witness norm bound B.
func (p Parameters) Bound() uint64 {
	return p.bound
}

// FoldedBound returns the norm bound of a folded witness, 2B.
func (p Parameters) FoldedBound() uint64 {
	return 2 * p.bound
}

// DecompBase returns the base of the balanced gadget decomposition.
func (p Parameters) DecompBase() uint64 {
	return p.decompBase
}

// DecompParts returns the number of digits of the balanced gadget
// decomposition.
func (p Parameters) DecompParts() int {
	return p.decompParts
}

// MaxNestingDepth returns the maximum commitment nesting depth.
func (p Parameters) MaxNestingDepth() int {
	return p.maxNestingDepth
}

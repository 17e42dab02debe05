// Package rq provides arithmetic over the cyclotomic ring R_q = Z_q[X]/(X^d+1)
// as an abstract capability, together with a lattigo-backed implementation.
package rq

import (
	"math/big"

	"github.com/tuneinsight/lattigo/v6/ring"
)

// Poly is a ring element. Unless stated otherwise, all Polys handled by this
// module are kept in the NTT + Montgomery domain.
type Poly = ring.Poly

// Ring is the algebraic capability consumed by the commitment engine, the
// sumcheck engine and the folding protocol. Implementations must provide a
// conjugation automorphism and a challenge set of ring elements whose
// pairwise differences are invertible.
type Ring interface {
	// N returns the degree d of the ring.
	N() int
	// Modulus returns the full modulus q as a big integer.
	Modulus() *big.Int
	// RingQ returns the underlying lattigo ring.
	RingQ() *ring.Ring

	// NewPoly creates a new zero Poly.
	NewPoly() Poly
	// One returns the multiplicative identity.
	One() Poly

	// AddAssign assigns pOut = p0 + p1.
	AddAssign(p0, p1, pOut Poly)
	// SubAssign assigns pOut = p0 - p1.
	SubAssign(p0, p1, pOut Poly)
	// NegAssign assigns pOut = -p.
	NegAssign(p, pOut Poly)
	// MulAssign assigns pOut = p0 * p1.
	MulAssign(p0, p1, pOut Poly)
	// MulAddAssign assigns pOut += p0 * p1.
	MulAddAssign(p0, p1, pOut Poly)
	// ScalarMulAssign assigns pOut = c * p for a scalar c in [0, q).
	ScalarMulAssign(p Poly, c *big.Int, pOut Poly)
	// ConstantAssign assigns the constant polynomial c to pOut.
	ConstantAssign(c *big.Int, pOut Poly)

	// ConjugateAssign assigns pOut = p(X^-1), the conjugation automorphism.
	ConjugateAssign(p, pOut Poly)

	// CoeffsCentered returns the coefficient vector of p,
	// centered in (-q/2, q/2].
	CoeffsCentered(p Poly) []*big.Int
	// SetCoeffsAssign assigns the polynomial with the given (possibly
	// negative) coefficients to pOut.
	SetCoeffsAssign(coeffs []*big.Int, pOut Poly)
	// InfNorm returns the infinity norm of the centered coefficients of p.
	InfNorm(p Poly) *big.Int

	// Equal checks if two Polys are equal.
	Equal(p0, p1 Poly) bool

	// ChallengeSetSize returns the number of elements of the challenge set.
	ChallengeSetSize() uint64
	// ChallengeAssign assigns the idx-th element of the challenge set
	// to pOut. Panics if idx is out of range.
	ChallengeAssign(idx uint64, pOut Poly)
}

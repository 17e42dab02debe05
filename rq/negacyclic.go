package rq

import (
	"math"
	"math/big"

	"github.com/tuneinsight/lattigo/v6/core/rlwe"
	"github.com/tuneinsight/lattigo/v6/ring"
)

// NegacyclicRing implements [Ring] over the power-of-two cyclotomic
// R_q = Z_q[X]/(X^d+1), with q a product of NTT-friendly primes.
//
// Its challenge set is the set of signed monomials +-X^i for 0 <= i < d.
// In power-of-two cyclotomics the difference of two distinct signed
// monomials divides 2, so it is invertible whenever q is odd.
type NegacyclicRing struct {
	ringQ *ring.Ring

	modulus *big.Int
	// rnsGadget reconstructs a bigint coefficient from its RNS residues.
	rnsGadget []*big.Int
}

// NewNegacyclicRing creates a new NegacyclicRing of degree N, with a modulus
// chain of primes of the given bit lengths.
//
// Panics if N is not a power of two of at least 16,
// or if modulus generation fails.
func NewNegacyclicRing(N int, logQ []int) *NegacyclicRing {
	logN := int(math.Round(math.Log2(float64(N))))
	if N < 16 || 1<<logN != N {
		panic("ring degree must be a power of two of at least 16")
	}

	q, _, err := rlwe.GenModuli(logN+1, logQ, nil)
	if err != nil {
		panic(err)
	}

	ringQ, err := ring.NewRing(N, q)
	if err != nil {
		panic(err)
	}

	rnsGadget := make([]*big.Int, ringQ.ModuliChainLength())
	qFull := ringQ.Modulus()
	for i := 0; i <= ringQ.Level(); i++ {
		qi := big.NewInt(0).SetUint64(ringQ.SubRings[i].Modulus)
		qDiv := big.NewInt(0).Div(qFull, qi)
		qInv := big.NewInt(0).ModInverse(qDiv, qi)
		rnsGadget[i] = big.NewInt(0).Mul(qDiv, qInv)
	}

	return &NegacyclicRing{
		ringQ: ringQ,

		modulus:   big.NewInt(0).Set(qFull),
		rnsGadget: rnsGadget,
	}
}

// N returns the degree of the ring.
func (r *NegacyclicRing) N() int {
	return r.ringQ.N()
}

// Modulus returns the full modulus q.
func (r *NegacyclicRing) Modulus() *big.Int {
	return r.modulus
}

// RingQ returns the underlying lattigo ring.
func (r *NegacyclicRing) RingQ() *ring.Ring {
	return r.ringQ
}

// NewPoly creates a new zero Poly.
func (r *NegacyclicRing) NewPoly() Poly {
	return r.ringQ.NewPoly()
}

// One returns the multiplicative identity.
func (r *NegacyclicRing) One() Poly {
	pOut := r.ringQ.NewPoly()
	r.ConstantAssign(big.NewInt(1), pOut)
	return pOut
}

// AddAssign assigns pOut = p0 + p1.
func (r *NegacyclicRing) AddAssign(p0, p1, pOut Poly) {
	r.ringQ.Add(p0, p1, pOut)
}

// SubAssign assigns pOut = p0 - p1.
func (r *NegacyclicRing) SubAssign(p0, p1, pOut Poly) {
	r.ringQ.Sub(p0, p1, pOut)
}

// NegAssign assigns pOut = -p.
func (r *NegacyclicRing) NegAssign(p, pOut Poly) {
	r.ringQ.Neg(p, pOut)
}

// MulAssign assigns pOut = p0 * p1.
func (r *NegacyclicRing) MulAssign(p0, p1, pOut Poly) {
	r.ringQ.MulCoeffsMontgomery(p0, p1, pOut)
}

// MulAddAssign assigns pOut += p0 * p1.
func (r *NegacyclicRing) MulAddAssign(p0, p1, pOut Poly) {
	r.ringQ.MulCoeffsMontgomeryThenAdd(p0, p1, pOut)
}

// ScalarMulAssign assigns pOut = c * p.
// The scalar is reduced to [0, q) first.
func (r *NegacyclicRing) ScalarMulAssign(p Poly, c *big.Int, pOut Poly) {
	cc := big.NewInt(0).Mod(c, r.modulus)
	r.ringQ.MulScalarBigint(p, cc, pOut)
}

// ConstantAssign assigns the constant polynomial c to pOut.
func (r *NegacyclicRing) ConstantAssign(c *big.Int, pOut Poly) {
	cc := big.NewInt(0).Mod(c, r.modulus)
	qi := big.NewInt(0)

	pOut.Zero()
	for i := 0; i <= r.ringQ.Level(); i++ {
		qi.SetUint64(r.ringQ.SubRings[i].Modulus)
		pOut.Coeffs[i][0] = big.NewInt(0).Mod(cc, qi).Uint64()
	}
	r.ringQ.NTT(pOut, pOut)
	r.ringQ.MForm(pOut, pOut)
}

// ConjugateAssign assigns pOut = p(X^-1).
func (r *NegacyclicRing) ConjugateAssign(p, pOut Poly) {
	buf := r.ringQ.NewPoly()
	r.ringQ.INTT(p, buf)
	r.ringQ.IMForm(buf, buf)

	N := r.ringQ.N()
	for i := 0; i <= r.ringQ.Level(); i++ {
		qi := r.ringQ.SubRings[i].Modulus
		pOut.Coeffs[i][0] = buf.Coeffs[i][0]
		for j := 1; j < N; j++ {
			c := buf.Coeffs[i][j]
			if c == 0 {
				pOut.Coeffs[i][N-j] = 0
			} else {
				pOut.Coeffs[i][N-j] = qi - c
			}
		}
	}

	r.ringQ.NTT(pOut, pOut)
	r.ringQ.MForm(pOut, pOut)
}

// CoeffsCentered returns the coefficient vector of p, centered in (-q/2, q/2].
func (r *NegacyclicRing) CoeffsCentered(p Poly) []*big.Int {
	buf := r.ringQ.NewPoly()
	r.ringQ.INTT(p, buf)
	r.ringQ.IMForm(buf, buf)

	qHalf := big.NewInt(0).Rsh(r.modulus, 1)
	res := big.NewInt(0)

	coeffs := make([]*big.Int, r.ringQ.N())
	for j := 0; j < r.ringQ.N(); j++ {
		c := big.NewInt(0)
		for i := 0; i <= r.ringQ.Level(); i++ {
			res.SetUint64(buf.Coeffs[i][j])
			res.Mul(res, r.rnsGadget[i])
			c.Add(c, res)
		}
		c.Mod(c, r.modulus)
		if c.Cmp(qHalf) > 0 {
			c.Sub(c, r.modulus)
		}
		coeffs[j] = c
	}

	return coeffs
}

// SetCoeffsAssign assigns the polynomial with the given coefficients to pOut.
// Coefficients may be negative; they are reduced modulo q.
func (r *NegacyclicRing) SetCoeffsAssign(coeffs []*big.Int, pOut Poly) {
	if len(coeffs) != r.ringQ.N() {
		panic("coefficient vector length does not match ring degree")
	}

	qi := big.NewInt(0)
	c := big.NewInt(0)
	for i := 0; i <= r.ringQ.Level(); i++ {
		qi.SetUint64(r.ringQ.SubRings[i].Modulus)
		for j := 0; j < r.ringQ.N(); j++ {
			pOut.Coeffs[i][j] = c.Mod(coeffs[j], qi).Uint64()
		}
	}

	r.ringQ.NTT(pOut, pOut)
	r.ringQ.MForm(pOut, pOut)
}

// InfNorm returns the infinity norm of the centered coefficients of p.
func (r *NegacyclicRing) InfNorm(p Poly) *big.Int {
	norm := big.NewInt(0)
	for _, c := range r.CoeffsCentered(p) {
		c.Abs(c)
		if c.Cmp(norm) > 0 {
			norm.Set(c)
		}
	}
	return norm
}

// Equal checks if two Polys are equal.
func (r *NegacyclicRing) Equal(p0, p1 Poly) bool {
	return p0.Equal(&p1)
}

// ChallengeSetSize returns the number of signed monomials, 2d.
func (r *NegacyclicRing) ChallengeSetSize() uint64 {
	return uint64(2 * r.ringQ.N())
}

// ChallengeAssign assigns the idx-th signed monomial to pOut:
// X^(idx>>1), negated if idx is odd.
func (r *NegacyclicRing) ChallengeAssign(idx uint64, pOut Poly) {
	if idx >= r.ChallengeSetSize() {
		panic("challenge index out of range")
	}

	pOut.Zero()
	for i := 0; i <= r.ringQ.Level(); i++ {
		if idx&1 == 0 {
			pOut.Coeffs[i][idx>>1] = 1
		} else {
			pOut.Coeffs[i][idx>>1] = r.ringQ.SubRings[i].Modulus - 1
		}
	}

	r.ringQ.NTT(pOut, pOut)
	r.ringQ.MForm(pOut, pOut)
}

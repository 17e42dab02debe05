// Package mle implements dense multilinear extensions over R_q, evaluated
// over the Boolean hypercube. Hypercube points are indexed with the first
// variable in the lowest bit.
package mle

import (
	"math/big"
	"math/bits"

	"github.com/sp301415/latticefold/rq"
)

// DenseMLE is a multilinear polynomial over R_q in evaluation form:
// Evals[x] is the value at the hypercube point x.
type DenseMLE struct {
	// NumVars is the number of variables.
	NumVars int
	// Evals has length 1 << NumVars.
	Evals []rq.Poly
}

// New creates a new zero DenseMLE with numVars variables.
func New(r rq.Ring, numVars int) *DenseMLE {
	evals := make([]rq.Poly, 1<<numVars)
	for i := range evals {
		evals[i] = r.NewPoly()
	}
	return &DenseMLE{
		NumVars: numVars,
		Evals:   evals,
	}
}

// NumVarsFor returns the hypercube dimension covering n points.
func NumVarsFor(n int) int {
	if n <= 1 {
		return 0
	}
	return bits.Len(uint(n - 1))
}

// FromSlice creates a DenseMLE from the given evaluations,
// padding with zeros up to the next power of two.
// The evaluations are not copied.
func FromSlice(r rq.Ring, evals []rq.Poly) *DenseMLE {
	numVars := NumVarsFor(len(evals))
	padded := make([]rq.Poly, 1<<numVars)
	copy(padded, evals)
	for i := len(evals); i < len(padded); i++ {
		padded[i] = r.NewPoly()
	}
	return &DenseMLE{
		NumVars: numVars,
		Evals:   padded,
	}
}

// FromScalars creates a DenseMLE whose evaluations are the given scalars
// embedded as constant polynomials, padded with zeros.
func FromScalars(r rq.Ring, scalars []*big.Int) *DenseMLE {
	numVars := NumVarsFor(len(scalars))
	evals := make([]rq.Poly, 1<<numVars)
	for i := range evals {
		evals[i] = r.NewPoly()
		if i < len(scalars) {
			r.ConstantAssign(scalars[i], evals[i])
		}
	}
	return &DenseMLE{
		NumVars: numVars,
		Evals:   evals,
	}
}

// Copy returns a deep copy of m.
func (m *DenseMLE) Copy(r rq.Ring) *DenseMLE {
	evals := make([]rq.Poly, len(m.Evals))
	for i := range evals {
		evals[i] = r.NewPoly()
		evals[i].Copy(m.Evals[i])
	}
	return &DenseMLE{
		NumVars: m.NumVars,
		Evals:   evals,
	}
}

// FixVariable fixes the first variable to the scalar c, halving the table.
func (m *DenseMLE) FixVariable(r rq.Ring, c *big.Int) {
	if m.NumVars == 0 {
		panic("no variable left to fix")
	}

	buf := r.NewPoly()
	half := len(m.Evals) >> 1
	for j := 0; j < half; j++ {
		r.SubAssign(m.Evals[2*j+1], m.Evals[2*j], buf)
		r.ScalarMulAssign(buf, c, buf)
		r.AddAssign(m.Evals[2*j], buf, m.Evals[j])
	}

	m.NumVars--
	m.Evals = m.Evals[:half]
}

// Evaluate evaluates m at the given scalar point.
func (m *DenseMLE) Evaluate(r rq.Ring, point []*big.Int) rq.Poly {
	if len(point) != m.NumVars {
		panic("point dimension does not match number of variables")
	}

	mm := m.Copy(r)
	for _, c := range point {
		mm.FixVariable(r, c)
	}

	pOut := r.NewPoly()
	pOut.Copy(mm.Evals[0])
	return pOut
}

// EqTable returns the DenseMLE of eq(beta, x) over the hypercube,
// with the scalar entries embedded as ring constants.
func EqTable(r rq.Ring, beta []*big.Int) *DenseMLE {
	scalars := EqScalarTable(beta, r.Modulus())
	return FromScalars(r, scalars)
}

// EqScalarTable returns the table of eq(beta, x) over the hypercube.
func EqScalarTable(beta []*big.Int, modulus *big.Int) []*big.Int {
	tab := []*big.Int{big.NewInt(1)}
	buf := big.NewInt(0)

	// Variable i occupies bit i of the hypercube index.
	for _, b := range beta {
		half := len(tab)
		next := make([]*big.Int, 2*half)
		for x := range tab {
			buf.Sub(big.NewInt(1), b)
			buf.Mod(buf, modulus)
			next[x] = big.NewInt(0).Mul(tab[x], buf)
			next[x].Mod(next[x], modulus)
			next[x+half] = big.NewInt(0).Mul(tab[x], b)
			next[x+half].Mod(next[x+half], modulus)
		}
		tab = next
	}

	return tab
}

// EqEval returns eq(u, v) = prod_i (u_i*v_i + (1-u_i)*(1-v_i)) mod modulus.
func EqEval(u, v []*big.Int, modulus *big.Int) *big.Int {
	if len(u) != len(v) {
		panic("point dimensions do not match")
	}

	res := big.NewInt(1)
	t0 := big.NewInt(0)
	t1 := big.NewInt(0)
	for i := range u {
		t0.Mul(u[i], v[i])
		t1.Sub(big.NewInt(1), u[i])
		t1.Mul(t1, big.NewInt(0).Sub(big.NewInt(1), v[i]))
		t0.Add(t0, t1)
		res.Mul(res, t0)
		res.Mod(res, modulus)
	}
	return res
}

// EvaluateScalars evaluates the multilinear extension of the scalar table
// at the given point. The table is padded with zeros to a power of two.
func EvaluateScalars(table []*big.Int, point []*big.Int, modulus *big.Int) *big.Int {
	numVars := NumVarsFor(len(table))
	if len(point) != numVars {
		panic("point dimension does not match table size")
	}

	tab := make([]*big.Int, 1<<numVars)
	for i := range tab {
		tab[i] = big.NewInt(0)
		if i < len(table) {
			tab[i].Set(table[i])
		}
	}

	buf := big.NewInt(0)
	for _, c := range point {
		half := len(tab) >> 1
		for j := 0; j < half; j++ {
			buf.Sub(tab[2*j+1], tab[2*j])
			buf.Mul(buf, c)
			tab[j].Add(tab[2*j], buf)
			tab[j].Mod(tab[j], modulus)
		}
		tab = tab[:half]
	}

	return tab[0]
}

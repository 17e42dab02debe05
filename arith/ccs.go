// Package arith implements customizable constraint systems (CCS) over
// R_q, with R1CS as a specialization. A CCS is satisfied when
// sum_s c_s * hadamard_{j in S_s} (M_j z) = 0 for z = (x || w).
package arith

import (
	"math/big"
	"runtime"
	"sync"

	"github.com/bits-and-blooms/bitset"

	"github.com/sp301415/latticefold/mle"
	"github.com/sp301415/latticefold/rq"
)

// CCS is the public description of a constraint system over R_q.
type CCS struct {
	// NumConstraints is the number of rows of each matrix.
	NumConstraints int
	// NumVariables is the number of columns, the length of z = (x || w).
	NumVariables int
	// NumPublic is the length of the public input x.
	NumPublic int

	// Matrices holds the constraint matrices M_1, ..., M_t, each of shape
	// NumConstraints x NumVariables.
	Matrices [][][]rq.Poly
	// Selectors maps each multiplication to the set of matrix indices
	// whose products it multiplies.
	Selectors []*bitset.BitSet
	// Coeffs holds the scalar coefficient of each multiplication.
	Coeffs []*big.Int
}

// NewCCS creates a new CCS.
// Panics if the shape is inconsistent.
func NewCCS(matrices [][][]rq.Poly, selectors []*bitset.BitSet, coeffs []*big.Int, numPublic int) *CCS {
	if len(matrices) == 0 {
		panic("ccs has no matrices")
	}
	if len(selectors) != len(coeffs) {
		panic("selector and coefficient counts do not match")
	}

	m, n := len(matrices[0]), 0
	if m > 0 {
		n = len(matrices[0][0])
	}
	for _, mat := range matrices {
		if len(mat) != m {
			panic("matrices have different row counts")
		}
		for _, row := range mat {
			if len(row) != n {
				panic("matrix rows have different lengths")
			}
		}
	}
	for _, sel := range selectors {
		if _, ok := sel.NextSet(uint(len(matrices))); ok {
			panic("selector references a matrix out of range")
		}
	}
	if numPublic > n {
		panic("public input longer than variable vector")
	}

	return &CCS{
		NumConstraints: m,
		NumVariables:   n,
		NumPublic:      numPublic,
		Matrices:       matrices,
		Selectors:      selectors,
		Coeffs:         coeffs,
	}
}

// NewR1CS creates the CCS encoding (Az) o (Bz) - Cz = 0.
func NewR1CS(a, b, c [][]rq.Poly, numPublic int) *CCS {
	selAB := bitset.New(3)
	selAB.Set(0)
	selAB.Set(1)
	selC := bitset.New(3)
	selC.Set(2)

	return NewCCS(
		[][][]rq.Poly{a, b, c},
		[]*bitset.BitSet{selAB, selC},
		[]*big.Int{big.NewInt(1), big.NewInt(-1)},
		numPublic,
	)
}

// SameShape checks if two constraint systems have identical structure:
// dimensions, selector sets, and coefficients.
func (c *CCS) SameShape(other *CCS) bool {
	if c.NumConstraints != other.NumConstraints ||
		c.NumVariables != other.NumVariables ||
		c.NumPublic != other.NumPublic ||
		len(c.Matrices) != len(other.Matrices) ||
		len(c.Selectors) != len(other.Selectors) {
		return false
	}
	for i := range c.Selectors {
		if !c.Selectors[i].Equal(other.Selectors[i]) {
			return false
		}
		if c.Coeffs[i].Cmp(other.Coeffs[i]) != 0 {
			return false
		}
	}
	return true
}

// NumRounds returns the hypercube dimension of the linearized system.
func (c *CCS) NumRounds() int {
	return mle.NumVarsFor(c.NumConstraints)
}

// MaxDegree returns the per-round degree bound of the linearization
// sumcheck, including the eq factor.
func (c *CCS) MaxDegree() int {
	max := 0
	for _, sel := range c.Selectors {
		if int(sel.Count()) > max {
			max = int(sel.Count())
		}
	}
	return max + 1
}

// MulVecAssign computes the matrix-vector product M z and writes it to
// vOut. Rows are processed in parallel.
func MulVecAssign(r rq.Ring, m [][]rq.Poly, z []rq.Poly, vOut []rq.Poly) {
	workSize := len(m)
	rowJobs := make(chan int)
	go func() {
		defer close(rowJobs)
		for i := 0; i < workSize; i++ {
			rowJobs <- i
		}
	}()

	var wg sync.WaitGroup
	for worker := 0; worker < min(runtime.NumCPU(), max(workSize, 1)); worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rowJobs {
				vOut[i].Zero()
				for j := range z {
					r.MulAddAssign(m[i][j], z[j], vOut[i])
				}
			}
		}()
	}
	wg.Wait()
}

// Z assembles the full variable vector z = (x || w).
// Panics if the lengths do not match the shape.
func (c *CCS) Z(x, w []rq.Poly) []rq.Poly {
	if len(x) != c.NumPublic || len(x)+len(w) != c.NumVariables {
		panic("variable vector length does not match shape")
	}
	z := make([]rq.Poly, 0, c.NumVariables)
	z = append(z, x...)
	return append(z, w...)
}

// Residual computes the constraint residual vector
// sum_s c_s * hadamard_{j in S_s} (M_j z).
func (c *CCS) Residual(r rq.Ring, z []rq.Poly) []rq.Poly {
	mz := c.matrixProducts(r, z)

	res := make([]rq.Poly, c.NumConstraints)
	one := r.One()
	term := r.NewPoly()
	buf := r.NewPoly()
	for i := range res {
		res[i] = r.NewPoly()
		for s, sel := range c.Selectors {
			term.Copy(one)
			for j, ok := sel.NextSet(0); ok; j, ok = sel.NextSet(j + 1) {
				r.MulAssign(term, mz[j][i], term)
			}
			r.ScalarMulAssign(term, c.Coeffs[s], buf)
			r.AddAssign(res[i], buf, res[i])
		}
	}
	return res
}

// IsSatisfied evaluates the CCS satisfaction predicate for z = (x || w).
// An instance with no constraints is trivially satisfied.
func (c *CCS) IsSatisfied(r rq.Ring, x, w []rq.Poly) bool {
	zero := r.NewPoly()
	for _, res := range c.Residual(r, c.Z(x, w)) {
		if !r.Equal(res, zero) {
			return false
		}
	}
	return true
}

// LinearizationTables computes the multilinear tables of M_j z for every
// matrix, padded to the hypercube dimension.
func (c *CCS) LinearizationTables(r rq.Ring, z []rq.Poly) []*mle.DenseMLE {
	mz := c.matrixProducts(r, z)
	tables := make([]*mle.DenseMLE, len(mz))
	for j := range mz {
		tables[j] = mle.FromSlice(r, mz[j])
	}
	return tables
}

// IsSatisfiedLinearized checks the evaluation claims of a linearized
// instance against z: claims[j] must equal the MLE of M_j z at point.
func (c *CCS) IsSatisfiedLinearized(r rq.Ring, z []rq.Poly, point []*big.Int, claims []rq.Poly) bool {
	if len(claims) != len(c.Matrices) {
		return false
	}
	for j, tab := range c.LinearizationTables(r, z) {
		if !r.Equal(tab.Evaluate(r, point), claims[j]) {
			return false
		}
	}
	return true
}

// CombineClaims computes sum_s c_s * prod_{j in S_s} etas[j] and writes
// it to pOut. This is the selector structure applied to per-matrix
// evaluation claims instead of full constraint rows.
func (c *CCS) CombineClaims(r rq.Ring, etas []rq.Poly, pOut rq.Poly) {
	one := r.One()
	term := r.NewPoly()
	buf := r.NewPoly()
	acc := r.NewPoly()
	for s, sel := range c.Selectors {
		term.Copy(one)
		for j, ok := sel.NextSet(0); ok; j, ok = sel.NextSet(j + 1) {
			r.MulAssign(term, etas[j], term)
		}
		r.ScalarMulAssign(term, c.Coeffs[s], buf)
		r.AddAssign(acc, buf, acc)
	}
	pOut.Copy(acc)
}

func (c *CCS) matrixProducts(r rq.Ring, z []rq.Poly) [][]rq.Poly {
	mz := make([][]rq.Poly, len(c.Matrices))
	for j := range c.Matrices {
		mz[j] = make([]rq.Poly, c.NumConstraints)
		for i := range mz[j] {
			mz[j][i] = r.NewPoly()
		}
		MulVecAssign(r, c.Matrices[j], z, mz[j])
	}
	return mz
}

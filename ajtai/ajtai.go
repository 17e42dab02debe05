// Package ajtai implements Ajtai commitments over R_q, together with
// balanced gadget decomposition and the double commitment used to
// compress commitments to long witnesses.
package ajtai

import (
	"errors"
	"math/big"
	"runtime"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/sp301415/latticefold/csprng"
	"github.com/sp301415/latticefold/rq"
)

var (
	// ErrWrongWitnessLength is returned when a witness does not match the
	// width of the commitment key.
	ErrWrongWitnessLength = errors.New("ajtai: wrong witness length")
	// ErrWrongCommitmentLength is returned when a commitment does not match
	// the height of the commitment key.
	ErrWrongCommitmentLength = errors.New("ajtai: wrong commitment length")
	// ErrNestingDepthExceeded is returned when a double commitment would
	// exceed the configured nesting depth.
	ErrNestingDepthExceeded = errors.New("ajtai: nesting depth exceeded")
)

// Commitment is an Ajtai commitment, a vector of kappa ring elements.
type Commitment struct {
	Value []rq.Poly
}

// NewCommitment creates a new zero commitment of length kappa.
func NewCommitment(r rq.Ring, kappa int) Commitment {
	value := make([]rq.Poly, kappa)
	for i := range value {
		value[i] = r.NewPoly()
	}
	return Commitment{Value: value}
}

// Copy returns a deep copy of c.
func (c Commitment) Copy(r rq.Ring) Commitment {
	cOut := NewCommitment(r, len(c.Value))
	for i := range c.Value {
		cOut.Value[i].Copy(c.Value[i])
	}
	return cOut
}

// Equal checks if two commitments are equal.
func (c Commitment) Equal(r rq.Ring, other Commitment) bool {
	if len(c.Value) != len(other.Value) {
		return false
	}
	for i := range c.Value {
		if !r.Equal(c.Value[i], other.Value[i]) {
			return false
		}
	}
	return true
}

// CommitKey is an Ajtai commitment key, a kappa x width matrix of
// uniform ring elements expanded from a public seed.
type CommitKey struct {
	ring rq.Ring

	// A has kappa rows of width elements each.
	A [][]rq.Poly
}

// GenCommitKey expands a commitment key from seed.
// The same seed always yields the same key.
func GenCommitKey(r rq.Ring, kappa, width int, seed []byte) CommitKey {
	streamSeed := blake2b.Sum384(seed)
	sampler := csprng.NewStreamSamplerWithSeed(streamSeed[:])

	moduli := r.RingQ().ModuliChain()
	A := make([][]rq.Poly, kappa)
	for i := range A {
		A[i] = make([]rq.Poly, width)
		for j := range A[i] {
			A[i][j] = r.NewPoly()
			for level, q := range moduli {
				coeffs := A[i][j].Coeffs[level]
				for k := range coeffs {
					coeffs[k] = sampler.SampleN(q)
				}
			}
		}
	}

	return CommitKey{
		ring: r,
		A:    A,
	}
}

// Kappa returns the commitment length.
func (ck CommitKey) Kappa() int {
	return len(ck.A)
}

// Width returns the witness length.
func (ck CommitKey) Width() int {
	if len(ck.A) == 0 {
		return 0
	}
	return len(ck.A[0])
}

// Commit commits to w.
func (ck CommitKey) Commit(w []rq.Poly) (Commitment, error) {
	cOut := NewCommitment(ck.ring, ck.Kappa())
	if err := ck.CommitAssign(w, cOut); err != nil {
		return Commitment{}, err
	}
	return cOut, nil
}

// CommitAssign commits to w and writes it to cOut.
func (ck CommitKey) CommitAssign(w []rq.Poly, cOut Commitment) error {
	if len(w) != ck.Width() {
		return ErrWrongWitnessLength
	}
	if len(cOut.Value) != ck.Kappa() {
		return ErrWrongCommitmentLength
	}

	workSize := ck.Kappa()
	rowJobs := make(chan int)
	go func() {
		defer close(rowJobs)
		for i := 0; i < workSize; i++ {
			rowJobs <- i
		}
	}()

	var wg sync.WaitGroup
	for worker := 0; worker < min(runtime.NumCPU(), workSize); worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range rowJobs {
				cOut.Value[i].Zero()
				for j := range w {
					ck.ring.MulAddAssign(ck.A[i][j], w[j], cOut.Value[i])
				}
			}
		}()
	}
	wg.Wait()

	return nil
}

// Verify checks that c opens to w.
// The caller is responsible for checking the norm of w.
func (ck CommitKey) Verify(w []rq.Poly, c Commitment) bool {
	cc, err := ck.Commit(w)
	if err != nil {
		return false
	}
	return cc.Equal(ck.ring, c)
}

// CombineAssign computes c0 + rho * c1 and writes it to cOut.
func CombineAssign(r rq.Ring, c0, c1 Commitment, rho rq.Poly, cOut Commitment) error {
	if len(c0.Value) != len(c1.Value) || len(c0.Value) != len(cOut.Value) {
		return ErrWrongCommitmentLength
	}

	buf := r.NewPoly()
	for i := range c0.Value {
		r.MulAssign(rho, c1.Value[i], buf)
		r.AddAssign(c0.Value[i], buf, cOut.Value[i])
	}
	return nil
}

// DecomposeBalanced decomposes each element of w into parts balanced
// base-b digits, so that w[j] = sum_i base^i * out[i][j] with every digit
// coefficient in [-base/2, base/2].
// It panics if a coefficient does not fit in parts digits.
func DecomposeBalanced(r rq.Ring, w []rq.Poly, base uint64, parts int) [][]rq.Poly {
	out := make([][]rq.Poly, parts)
	for i := range out {
		out[i] = make([]rq.Poly, len(w))
		for j := range out[i] {
			out[i][j] = r.NewPoly()
		}
	}

	baseBig := big.NewInt(0).SetUint64(base)
	halfBase := big.NewInt(0).SetUint64(base / 2)
	digit := big.NewInt(0)
	digits := make([]*big.Int, r.N())
	for k := range digits {
		digits[k] = big.NewInt(0)
	}

	for j := range w {
		coeffs := r.CoeffsCentered(w[j])
		for i := 0; i < parts; i++ {
			for k, c := range coeffs {
				digit.Mod(c, baseBig)
				if digit.Cmp(halfBase) > 0 {
					digit.Sub(digit, baseBig)
				}
				digits[k].Set(digit)
				c.Sub(c, digit)
				c.Div(c, baseBig)
			}
			r.SetCoeffsAssign(digits, out[i][j])
		}
		for _, c := range coeffs {
			if c.Sign() != 0 {
				panic("coefficient does not fit in balanced decomposition")
			}
		}
	}

	return out
}

// RecomposeAssign inverts DecomposeBalanced, writing
// sum_i base^i * parts[i][j] to wOut[j].
func RecomposeAssign(r rq.Ring, parts [][]rq.Poly, base uint64, wOut []rq.Poly) {
	baseBig := big.NewInt(0).SetUint64(base)
	pow := big.NewInt(1)
	buf := r.NewPoly()

	for j := range wOut {
		wOut[j].Zero()
	}
	for i := range parts {
		for j := range wOut {
			r.ScalarMulAssign(parts[i][j], pow, buf)
			r.AddAssign(wOut[j], buf, wOut[j])
		}
		pow.Mul(pow, baseBig)
	}
}

// DoubleCommitKey holds the keys for a double commitment: an outer key
// committing to witnesses, and an inner key committing to the balanced
// decomposition of outer commitments.
type DoubleCommitKey struct {
	ring rq.Ring

	// Outer commits to witness vectors.
	Outer CommitKey
	// Inner commits to decomposed outer commitments.
	Inner CommitKey

	// Base is the decomposition base.
	Base uint64
	// Parts is the number of decomposition digits.
	Parts int
	// MaxNestingDepth bounds how many commitment layers may be stacked.
	MaxNestingDepth int
}

// GenDoubleCommitKey expands a double commitment key from seed.
func GenDoubleCommitKey(r rq.Ring, kappa, width int, base uint64, parts, maxNestingDepth int, seed []byte) DoubleCommitKey {
	outerSeed := append([]byte("outer/"), seed...)
	innerSeed := append([]byte("inner/"), seed...)
	return DoubleCommitKey{
		ring:            r,
		Outer:           GenCommitKey(r, kappa, width, outerSeed),
		Inner:           GenCommitKey(r, kappa, kappa*parts, innerSeed),
		Base:            base,
		Parts:           parts,
		MaxNestingDepth: maxNestingDepth,
	}
}

// DoubleCommit commits to w, then commits to the balanced decomposition
// of the outer commitment. depth counts the layers already stacked above
// this call.
func (dk DoubleCommitKey) DoubleCommit(w []rq.Poly, depth int) (outer, inner Commitment, err error) {
	if depth+2 > dk.MaxNestingDepth {
		return Commitment{}, Commitment{}, ErrNestingDepthExceeded
	}

	outer, err = dk.Outer.Commit(w)
	if err != nil {
		return Commitment{}, Commitment{}, err
	}

	inner, err = dk.CommitDecomposition(outer)
	if err != nil {
		return Commitment{}, Commitment{}, err
	}
	return outer, inner, nil
}

// CommitDecomposition commits to the balanced decomposition of outer
// under the inner key. It is public and recomputable by the verifier.
func (dk DoubleCommitKey) CommitDecomposition(outer Commitment) (Commitment, error) {
	parts := DecomposeBalanced(dk.ring, outer.Value, dk.Base, dk.Parts)
	flat := make([]rq.Poly, 0, dk.Parts*len(outer.Value))
	for i := range parts {
		flat = append(flat, parts[i]...)
	}
	return dk.Inner.Commit(flat)
}

// Package transcript implements a Fiat-Shamir transcript backed by a
// BLAKE2b XOF. Every absorbed value is framed with a label, and every
// challenge squeeze flushes the pending writes first.
package transcript

import (
	"encoding/binary"
	"math/big"

	"github.com/sp301415/latticefold/csprng"
	"github.com/sp301415/latticefold/rq"
)

// Transcript is a Fiat-Shamir transcript.
// It must be created with NewTranscript.
type Transcript struct {
	ring    rq.Ring
	sampler *csprng.XOFSampler

	hasAbsorbed bool
	buf         []byte
}

// NewTranscript creates a new Transcript over the given ring,
// domain-separated by name.
func NewTranscript(r rq.Ring, name string) *Transcript {
	t := &Transcript{
		ring:    r,
		sampler: csprng.NewXOFSampler(),
		buf:     make([]byte, 8),
	}
	t.writeLabel(name)
	return t
}

func (t *Transcript) writeLabel(label string) {
	binary.LittleEndian.PutUint64(t.buf, uint64(len(label)))
	t.sampler.Write(t.buf)
	t.sampler.Write([]byte(label))
	t.hasAbsorbed = true
}

// WriteBytes absorbs a labeled byte string.
func (t *Transcript) WriteBytes(label string, b []byte) {
	t.writeLabel(label)
	binary.LittleEndian.PutUint64(t.buf, uint64(len(b)))
	t.sampler.Write(t.buf)
	t.sampler.Write(b)
}

// WriteUint64 absorbs a labeled uint64.
func (t *Transcript) WriteUint64(label string, v uint64) {
	t.writeLabel(label)
	binary.LittleEndian.PutUint64(t.buf, v)
	t.sampler.Write(t.buf)
}

// WriteScalar absorbs a labeled scalar, reduced mod Q.
func (t *Transcript) WriteScalar(label string, c *big.Int) {
	v := big.NewInt(0).Mod(c, t.ring.Modulus())
	t.WriteBytes(label, v.Bytes())
}

// WritePoly absorbs a labeled ring element.
func (t *Transcript) WritePoly(label string, p rq.Poly) {
	t.writeLabel(label)
	for i := range p.Coeffs {
		for _, c := range p.Coeffs[i] {
			binary.LittleEndian.PutUint64(t.buf, c)
			t.sampler.Write(t.buf)
		}
	}
}

// WritePolys absorbs a labeled vector of ring elements.
func (t *Transcript) WritePolys(label string, ps []rq.Poly) {
	t.writeLabel(label)
	for i := range ps {
		t.WritePoly("elem", ps[i])
	}
}

// SampleScalar squeezes a uniform scalar in [0, Q).
func (t *Transcript) SampleScalar(label string) *big.Int {
	if !t.hasAbsorbed {
		panic("squeeze from empty transcript")
	}

	t.writeLabel(label)
	t.sampler.Flush()

	c := big.NewInt(0)
	t.sampler.SampleModAssign(t.ring.Modulus(), c)
	return c
}

// SampleScalars squeezes n uniform scalars in [0, Q).
func (t *Transcript) SampleScalars(label string, n int) []*big.Int {
	cs := make([]*big.Int, n)
	for i := range cs {
		cs[i] = t.SampleScalar(label)
	}
	return cs
}

// SampleChallengeAssign squeezes a challenge-set element,
// a signed monomial, and writes it to pOut.
func (t *Transcript) SampleChallengeAssign(label string, pOut rq.Poly) {
	if !t.hasAbsorbed {
		panic("squeeze from empty transcript")
	}

	t.writeLabel(label)
	t.sampler.Flush()

	idx := t.sampler.SampleN(t.ring.ChallengeSetSize())
	t.ring.ChallengeAssign(idx, pOut)
}

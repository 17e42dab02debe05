// Package csprng implements the cryptographically secure pseudorandom
// samplers shared by the transcript and the commitment-key expansion.
package csprng

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/binary"
	"math"
	"math/big"

	"golang.org/x/crypto/blake2b"
)

// XOFSampler samples uniform values from a blake2b XOF.
// It is the deterministic sampler: two XOFSamplers fed the same
// byte sequence produce identical outputs.
//
// Writes absorb data into the XOF state. Reads consume the output
// stream of a snapshot of the state taken at the last [XOFSampler.Flush].
type XOFSampler struct {
	absorb  blake2b.XOF
	squeeze blake2b.XOF

	word [8]byte
}

// NewXOFSampler creates a new XOFSampler with an empty state.
//
// Panics if blake2b initialization fails.
func NewXOFSampler() *XOFSampler {
	return NewXOFSamplerWithSeed(nil)
}

// NewXOFSamplerWithSeed creates a new XOFSampler seeded with seed.
// A nil seed is equivalent to an empty state.
//
// Panics if blake2b initialization fails.
func NewXOFSamplerWithSeed(seed []byte) *XOFSampler {
	xof, err := blake2b.NewXOF(blake2b.OutputLengthUnknown, nil)
	if err != nil {
		panic(err)
	}

	if len(seed) > 0 {
		if _, err := xof.Write(seed); err != nil {
			panic(err)
		}
	}

	return &XOFSampler{
		absorb:  xof,
		squeeze: xof.Clone(),
	}
}

// Write implements the [io.Writer] interface, absorbing p into the state.
func (s *XOFSampler) Write(p []byte) (n int, err error) {
	return s.absorb.Write(p)
}

// Read implements the [io.Reader] interface.
func (s *XOFSampler) Read(p []byte) (n int, err error) {
	return s.squeeze.Read(p)
}

// Flush snapshots the absorbed state, so that subsequent reads
// reflect all data written so far.
func (s *XOFSampler) Flush() {
	s.squeeze = s.absorb.Clone()
}

// Reset resets the XOFSampler to an empty state.
func (s *XOFSampler) Reset() {
	s.absorb.Reset()
	s.squeeze.Reset()
}

// Sample uniformly samples a random uint64.
func (s *XOFSampler) Sample() uint64 {
	if _, err := s.squeeze.Read(s.word[:]); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(s.word[:])
}

// SampleN uniformly samples a random integer in [0, N).
func (s *XOFSampler) SampleN(N uint64) uint64 {
	bound := math.MaxUint64 - (math.MaxUint64 % N)
	for {
		res := s.Sample()
		if res < bound {
			return res % N
		}
	}
}

// SampleModAssign uniformly samples a value in [0, m) and assigns it to xOut.
func (s *XOFSampler) SampleModAssign(m *big.Int, xOut *big.Int) {
	k := (m.BitLen() + 7) / 8
	b := uint(m.BitLen() % 8)
	if b == 0 {
		b = 8
	}
	msbMask := byte((1 << b) - 1)

	buf := make([]byte, k)
	for {
		if _, err := s.squeeze.Read(buf); err != nil {
			panic(err)
		}
		buf[0] &= msbMask

		xOut.SetBytes(buf)
		if xOut.Cmp(m) < 0 {
			return
		}
	}
}

// StreamSampler samples uniform values from an AES-256-CTR keystream.
// With a nil seed the key and IV are drawn from crypto/rand, making the
// stream non-deterministic; with a seed the stream is reproducible.
type StreamSampler struct {
	stream cipher.Stream

	word [8]byte
}

// NewStreamSampler creates a new StreamSampler keyed from crypto/rand.
//
// Panics when read from crypto/rand or AES initialization fails.
func NewStreamSampler() *StreamSampler {
	seed := make([]byte, 48)
	if _, err := rand.Read(seed); err != nil {
		panic(err)
	}
	return NewStreamSamplerWithSeed(seed)
}

// NewStreamSamplerWithSeed creates a new StreamSampler with a 48-byte seed:
// the first 32 bytes key AES-256, the last 16 form the initial counter.
//
// Panics if the seed has the wrong length or AES initialization fails.
func NewStreamSamplerWithSeed(seed []byte) *StreamSampler {
	if len(seed) != 48 {
		panic("stream sampler seed must be 48 bytes")
	}

	block, err := aes.NewCipher(seed[:32])
	if err != nil {
		panic(err)
	}

	return &StreamSampler{
		stream: cipher.NewCTR(block, seed[32:]),
	}
}

// Read implements the [io.Reader] interface.
func (s *StreamSampler) Read(p []byte) (n int, err error) {
	for i := range p {
		p[i] = 0
	}
	s.stream.XORKeyStream(p, p)
	return len(p), nil
}

// Sample uniformly samples a random uint64.
func (s *StreamSampler) Sample() uint64 {
	for i := range s.word {
		s.word[i] = 0
	}
	s.stream.XORKeyStream(s.word[:], s.word[:])
	return binary.LittleEndian.Uint64(s.word[:])
}

// SampleN uniformly samples a random integer in [0, N).
func (s *StreamSampler) SampleN(N uint64) uint64 {
	bound := math.MaxUint64 - (math.MaxUint64 % N)
	for {
		res := s.Sample()
		if res < bound {
			return res % N
		}
	}
}

package cvm

import (
	"bufio"
	"encoding/binary"
	"io"
	"math/rand/v2"
)

// Source supplies uniformly distributed 64-bit words. Every random decision the estimator makes
// is derived from these words, so a seeded Source makes a run reproducible.
//
// A Source that can fail, for example one backed by an entropy pool, must return the failure
// instead of a made up word.
type Source interface {
	Uint64() (uint64, error)
}

// SourceFunc adapts an ordinary function to a Source.
type SourceFunc func() (uint64, error)

func (f SourceFunc) Uint64() (uint64, error) {
	return f()
}

// FromRand adapts a math/rand/v2 source, such as rand.NewPCG(seed1, seed2). It never fails.
func FromRand(src rand.Source) Source {
	return randSource{src}
}

type randSource struct {
	src rand.Source
}

func (r randSource) Uint64() (uint64, error) {
	return r.src.Uint64(), nil
}

// FromReader reads little-endian words from r, for example crypto/rand.Reader. Reads are
// buffered. A short read is reported as io.ErrUnexpectedEOF.
func FromReader(r io.Reader) Source {
	return &readerSource{r: bufio.NewReader(r)}
}

type readerSource struct {
	r   *bufio.Reader
	buf [8]byte
}

func (s *readerSource) Uint64() (uint64, error) {
	if _, err := io.ReadFull(s.r, s.buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(s.buf[:]), nil
}

// trial reports success with probability 2^-round. Each word read decides up to 64 of the
// round's bits, which must all be zero. Round 0 still reads one word and always succeeds, since
// shifting a uint64 by 64 yields 0.
func trial(src Source, round uint) (bool, error) {
	for {
		w, err := src.Uint64()
		if err != nil {
			return false, err
		}
		if round <= 64 {
			return w>>(64-round) == 0, nil
		}
		if w != 0 {
			return false, nil
		}
		round -= 64
	}
}

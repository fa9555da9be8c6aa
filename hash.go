package cvm

import (
	"bytes"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
)

// Hasher is the dedup strategy for items that can't be Go map keys, or whose keys should be
// hashed differently. Equal items must have equal hashes.
type Hasher[T any] interface {
	Hash(x T) uint64
	Equal(a, b T) bool
}

var (
	// Bytes hashes byte slices with xxHash.
	Bytes Hasher[[]byte] = xxhashBytes{}

	// Strings hashes strings with xxHash.
	Strings Hasher[string] = xxhashString{}

	// Murmur3Bytes hashes byte slices with 64-bit MurmurHash3.
	Murmur3Bytes Hasher[[]byte] = murmur3Bytes{}
)

type xxhashBytes struct{}

func (xxhashBytes) Hash(x []byte) uint64 { return xxhash.Sum64(x) }

func (xxhashBytes) Equal(a, b []byte) bool { return bytes.Equal(a, b) }

type xxhashString struct{}

func (xxhashString) Hash(x string) uint64 { return xxhash.Sum64String(x) }

func (xxhashString) Equal(a, b string) bool { return a == b }

type murmur3Bytes struct{}

func (murmur3Bytes) Hash(x []byte) uint64 { return murmur3.Sum64(x) }

func (murmur3Bytes) Equal(a, b []byte) bool { return bytes.Equal(a, b) }

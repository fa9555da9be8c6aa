package cvm

import (
	"testing"

	"github.com/bmizerany/assert"
)

func TestHashers(t *testing.T) {
	// Reference value of XXH64 with seed 0.
	assert.Equal(t, uint64(0xef46db3751d8e999), Bytes.Hash(nil))
	assert.Equal(t, uint64(0xef46db3751d8e999), Strings.Hash(""))

	for _, s := range []string{"a", "ab", "abc", "to be or not to be"} {
		assert.Equal(t, Bytes.Hash([]byte(s)), Strings.Hash(s), s)
		assert.Equal(t, Murmur3Bytes.Hash([]byte(s)), Murmur3Bytes.Hash([]byte(s)), s)
		assert.NotEqual(t, Bytes.Hash([]byte(s)), Murmur3Bytes.Hash([]byte(s)), s)

		assert.T(t, Bytes.Equal([]byte(s), []byte(s)), s)
		assert.T(t, Murmur3Bytes.Equal([]byte(s), []byte(s)), s)
		assert.T(t, !Bytes.Equal([]byte(s), []byte(s+"!")), s)
		assert.T(t, Strings.Equal(s, s), s)
	}
}

func TestEstimatorHashersAgree(t *testing.T) {
	words := []string{"to", "be", "or", "not", "to", "be", "that", "is", "the", "question"}

	byXX, err := NewWithHasher(100, Bytes)
	assert.Equal(t, nil, err)
	byMurmur, err := NewWithHasher(100, Murmur3Bytes)
	assert.Equal(t, nil, err)
	byString, err := NewWithHasher(100, Strings)
	assert.Equal(t, nil, err)

	a, b, c := seeded(9), seeded(9), seeded(9)
	for _, w := range words {
		assert.Equal(t, nil, byXX.Insert([]byte(w), a))
		assert.Equal(t, nil, byMurmur.Insert([]byte(w), b))
		assert.Equal(t, nil, byString.Insert(w, c))
	}

	assert.Equal(t, 8.0, byXX.Count())
	assert.Equal(t, byXX.Sample(), byMurmur.Sample())
	assert.Equal(t, 8, len(byString.Sample()))
}

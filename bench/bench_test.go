package bench

import (
	"fmt"
	"hash"
	"hash/fnv"
	"math/rand/v2"
	"strconv"
	"testing"

	axiom "github.com/axiomhq/hyperloglog"
	clark "github.com/clarkduvall/hyperloglog"
	"github.com/lytics/cvm"
	rn "github.com/retailnext/hllpp"
)

const seed = 0x1234

// genInts draws n integers from [0, n/2), so roughly 43% of them are distinct.
func genInts(n uint64) []uint64 {
	rng := rand.New(rand.NewPCG(seed, seed))
	ints := make([]uint64, n)
	for i := range ints {
		ints[i] = rng.Uint64N(n / 2)
	}
	return ints
}

// genWords builds a text-like stream: a small vocabulary in which a few words dominate.
func genWords(n int) []string {
	rng := rand.New(rand.NewPCG(seed, seed))
	zipf := rand.NewZipf(rng, 1.1, 1, 20000)
	words := make([]string, n)
	for i := range words {
		words[i] = "w" + strconv.FormatUint(zipf.Uint64(), 36)
	}
	return words
}

func run[T comparable](b *testing.B, items []T, capacity int) {
	b.ReportAllocs()
	var count float64
	for i := 0; i < b.N; i++ {
		src := cvm.FromRand(rand.NewPCG(seed, 0))
		est := cvm.MustNew[T](capacity)
		for _, x := range items {
			if err := est.Insert(x, src); err != nil {
				b.Fatal(err)
			}
		}
		count = est.Count()
	}
	b.ReportMetric(float64(len(items)), "items/op")
	b.ReportMetric(count, "estimate")
}

func BenchmarkInts(b *testing.B) {
	for _, bc := range []struct {
		count    uint64
		capacity int
	}{
		{10000, 1000},
		{100000, 1000},
		{1000000, 1000},
		{1000000, 10000},
	} {
		ints := genInts(bc.count)
		b.Run(fmt.Sprintf("n=%d/capacity=%d", bc.count, bc.capacity), func(b *testing.B) {
			run(b, ints, bc.capacity)
		})
	}
}

func BenchmarkWords(b *testing.B) {
	words := genWords(200000)
	for _, capacity := range []int{100, 1000, 10000} {
		b.Run(fmt.Sprintf("capacity=%d", capacity), func(b *testing.B) {
			run(b, words, capacity)
		})
	}
}

// The benchmarks below insert one new item and read the estimate per iteration, the way the
// HyperLogLog comparisons do.

func BenchmarkCVM(b *testing.B) {
	b.ReportAllocs()
	src := cvm.FromRand(rand.NewPCG(seed, 0))
	est := cvm.MustNew[string](10000)
	for i := 0; i < b.N; i++ {
		if err := est.Insert(randStr(i), src); err != nil {
			b.Fatal(err)
		}
		est.Count()
	}
}

func BenchmarkCVMBytes(b *testing.B) {
	b.ReportAllocs()
	src := cvm.FromRand(rand.NewPCG(seed, 0))
	est, err := cvm.NewWithHasher(10000, cvm.Bytes)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < b.N; i++ {
		if err := est.Insert([]byte(randStr(i)), src); err != nil {
			b.Fatal(err)
		}
		est.Count()
	}
}

// https://github.com/clarkduvall/hyperloglog
func BenchmarkClarkDuvall(b *testing.B) {
	b.ReportAllocs()
	h, _ := clark.NewPlus(14)
	for i := 0; i < b.N; i++ {
		h.Add(hash64(randStr(i)))
		h.Count()
	}
}

// https://github.com/retailnext/hllpp
func BenchmarkRetailNext(b *testing.B) {
	b.ReportAllocs()
	h := rn.New()
	for i := 0; i < b.N; i++ {
		h.Add(hash64(randStr(i)).Sum(nil))
		h.Count()
	}
}

// https://github.com/axiomhq/hyperloglog
func BenchmarkAxiomHQ(b *testing.B) {
	b.ReportAllocs()
	h := axiom.New16()
	for i := 0; i < b.N; i++ {
		h.Insert(hash64(randStr(i)).Sum(nil))
		h.Estimate()
	}
}

func hash64(s string) hash.Hash64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h
}

func randStr(n int) string {
	return fmt.Sprintf("%d %d", rand.Uint32(), n)
}

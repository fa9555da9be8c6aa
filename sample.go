package cvm

// sampleSet holds the sampled items in a deterministic order. Add must only be called with an
// item that is not already in the set.
type sampleSet[T any] interface {
	Len() int
	Contains(x T) bool
	Add(x T)
	Remove(x T) bool
	Retain(keep func(i int) bool)
	Items() []T
}

// comparableSample indexes items by value using a Go map.
type comparableSample[T comparable] struct {
	items []T
	pos   map[T]int
}

func newComparableSample[T comparable](capacity int) *comparableSample[T] {
	return &comparableSample[T]{
		items: make([]T, 0, capacity),
		pos:   make(map[T]int, capacity),
	}
}

func (s *comparableSample[T]) Len() int {
	return len(s.items)
}

func (s *comparableSample[T]) Contains(x T) bool {
	_, ok := s.pos[x]
	return ok
}

func (s *comparableSample[T]) Add(x T) {
	s.pos[x] = len(s.items)
	s.items = append(s.items, x)
}

// Remove moves the last item into the hole left by x.
func (s *comparableSample[T]) Remove(x T) bool {
	i, ok := s.pos[x]
	if !ok {
		return false
	}
	last := len(s.items) - 1
	s.items[i] = s.items[last]
	s.pos[s.items[i]] = i
	delete(s.pos, x)

	var zero T
	s.items[last] = zero
	s.items = s.items[:last]
	return true
}

// Retain keeps the items at the positions keep accepts, preserving their order.
func (s *comparableSample[T]) Retain(keep func(i int) bool) {
	j := 0
	for i, x := range s.items {
		if !keep(i) {
			delete(s.pos, x)
			continue
		}
		s.items[j] = x
		s.pos[x] = j
		j++
	}
	clear(s.items[j:])
	s.items = s.items[:j]
}

func (s *comparableSample[T]) Items() []T {
	return s.items
}

// hashedSample indexes items by a caller supplied hash. Items whose hashes collide share a
// bucket and are told apart with Equal.
type hashedSample[T any] struct {
	hasher  Hasher[T]
	items   []T
	hashes  []uint64         // hashes[i] is the hash of items[i]
	buckets map[uint64][]int // hash -> positions in items
}

func newHashedSample[T any](capacity int, h Hasher[T]) *hashedSample[T] {
	return &hashedSample[T]{
		hasher:  h,
		items:   make([]T, 0, capacity),
		hashes:  make([]uint64, 0, capacity),
		buckets: make(map[uint64][]int, capacity),
	}
}

func (s *hashedSample[T]) Len() int {
	return len(s.items)
}

// find returns the position of x and its hash, or -1 if x isn't sampled.
func (s *hashedSample[T]) find(x T) (int, uint64) {
	sum := s.hasher.Hash(x)
	for _, i := range s.buckets[sum] {
		if s.hasher.Equal(s.items[i], x) {
			return i, sum
		}
	}
	return -1, sum
}

func (s *hashedSample[T]) Contains(x T) bool {
	i, _ := s.find(x)
	return i >= 0
}

func (s *hashedSample[T]) Add(x T) {
	sum := s.hasher.Hash(x)
	s.buckets[sum] = append(s.buckets[sum], len(s.items))
	s.items = append(s.items, x)
	s.hashes = append(s.hashes, sum)
}

func (s *hashedSample[T]) Remove(x T) bool {
	i, sum := s.find(x)
	if i < 0 {
		return false
	}
	s.unlink(sum, i)

	last := len(s.items) - 1
	if i != last {
		moved := s.hashes[last]
		s.relink(moved, last, i)
		s.items[i] = s.items[last]
		s.hashes[i] = moved
	}

	var zero T
	s.items[last] = zero
	s.items = s.items[:last]
	s.hashes = s.hashes[:last]
	return true
}

// unlink drops position i from the bucket for sum.
func (s *hashedSample[T]) unlink(sum uint64, i int) {
	bucket := s.buckets[sum]
	for k, p := range bucket {
		if p == i {
			bucket[k] = bucket[len(bucket)-1]
			bucket = bucket[:len(bucket)-1]
			break
		}
	}
	if len(bucket) == 0 {
		delete(s.buckets, sum)
		return
	}
	s.buckets[sum] = bucket
}

// relink records that the item with hash sum moved from position from to position to.
func (s *hashedSample[T]) relink(sum uint64, from, to int) {
	for k, p := range s.buckets[sum] {
		if p == from {
			s.buckets[sum][k] = to
			return
		}
	}
}

// Retain keeps the items at the positions keep accepts, preserving their order. Buckets are
// rebuilt from scratch since most positions change.
func (s *hashedSample[T]) Retain(keep func(i int) bool) {
	clear(s.buckets)
	j := 0
	for i, x := range s.items {
		if !keep(i) {
			continue
		}
		sum := s.hashes[i]
		s.items[j] = x
		s.hashes[j] = sum
		s.buckets[sum] = append(s.buckets[sum], j)
		j++
	}
	clear(s.items[j:])
	s.items = s.items[:j]
	s.hashes = s.hashes[:j]
}

func (s *hashedSample[T]) Items() []T {
	return s.items
}

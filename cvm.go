package cvm

import (
	"math"

	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrInvalidCapacity is returned when an estimator is constructed with a capacity below 1.
	ErrInvalidCapacity = errors.New("cvm: capacity must be at least 1")

	// ErrNilHasher is returned by NewWithHasher when no hasher is given.
	ErrNilHasher = errors.New("cvm: hasher must not be nil")

	// ErrNilSource is returned by Insert when no randomness source is given.
	ErrNilSource = errors.New("cvm: source must not be nil")
)

// Estimator approximates the number of distinct items in a stream.
//
// The probability of keeping an item is always 2^-round, so it starts at 1 and only ever changes
// by exact halvings. An Estimator is not safe for concurrent use.
type Estimator[T any] struct {
	capacity int          // the sample never holds this many items between calls
	round    uint         // number of thinning rounds so far
	sample   sampleSet[T] // items retained with probability 2^-round
	logger   *zap.Logger
}

// Option configures an Estimator.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger sets the logger that thinning rounds are reported to at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New returns an empty estimator whose sample holds fewer than capacity items. Items are
// compared and hashed the way Go map keys are.
func New[T comparable](capacity int, opts ...Option) (*Estimator[T], error) {
	if err := checkCapacity(capacity); err != nil {
		return nil, err
	}
	return newEstimator[T](capacity, newComparableSample[T](capacity), opts), nil
}

// MustNew is like New but panics if the capacity is invalid.
func MustNew[T comparable](capacity int, opts ...Option) *Estimator[T] {
	e, err := New[T](capacity, opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// NewWithHasher returns an empty estimator that deduplicates items with h. Use it for items
// that are not comparable, such as []byte, or to swap in a different hash function.
func NewWithHasher[T any](capacity int, h Hasher[T], opts ...Option) (*Estimator[T], error) {
	if err := checkCapacity(capacity); err != nil {
		return nil, err
	}
	if h == nil {
		return nil, ErrNilHasher
	}
	return newEstimator[T](capacity, newHashedSample[T](capacity, h), opts), nil
}

func checkCapacity(capacity int) error {
	if capacity < 1 {
		return errors.Wrapf(ErrInvalidCapacity, "capacity %d", capacity)
	}
	return nil
}

func newEstimator[T any](capacity int, sample sampleSet[T], opts []Option) *Estimator[T] {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Estimator[T]{
		capacity: capacity,
		sample:   sample,
		logger:   o.logger,
	}
}

// Insert observes one item of the stream.
//
// A previously sampled item is dropped and sampled again like a new one. If the sample reaches
// capacity it is thinned, halving the probability, until it is below capacity again.
//
// Errors from src are returned wrapped. When Insert returns an error the estimator holds the same
// items and probability it held before the call.
func (e *Estimator[T]) Insert(item T, src Source) error {
	if src == nil {
		return ErrNilSource
	}

	kept, err := trial(src, e.round)
	if err != nil {
		return errors.Wrap(err, "cvm: sampling trial")
	}

	present := e.sample.Remove(item)
	if kept {
		e.sample.Add(item)
	}

	start := e.round
	for e.sample.Len() >= e.capacity {
		if err := e.thin(src); err != nil {
			// Only a round that removes nothing can be followed by another one, so undoing the
			// item and the rounds restores the sample.
			e.round = start
			if kept {
				e.sample.Remove(item)
			}
			if present {
				e.sample.Add(item)
			}
			return errors.Wrap(err, "cvm: thinning")
		}
	}
	return nil
}

// thin flips one coin per sampled item, keeps the heads and halves the probability. Every coin
// is drawn before the sample is touched.
func (e *Estimator[T]) thin(src Source) error {
	n := e.sample.Len()
	words := make([]uint64, (n+63)/64)
	for i := range words {
		w, err := src.Uint64()
		if err != nil {
			return err
		}
		words[i] = w
	}
	heads := bitset.From(words)

	e.sample.Retain(func(i int) bool {
		return heads.Test(uint(i))
	})
	e.round++

	e.logger.Debug("sample thinned",
		zap.Uint("round", e.round),
		zap.Float64("probability", e.Probability()),
		zap.Int("before", n),
		zap.Int("after", e.sample.Len()))
	return nil
}

// Count returns the estimated number of distinct items inserted so far.
func (e *Estimator[T]) Count() float64 {
	return math.Ldexp(float64(e.sample.Len()), int(e.round))
}

// Capacity returns the capacity the estimator was created with.
func (e *Estimator[T]) Capacity() int {
	return e.capacity
}

// Round returns the number of thinning rounds so far.
func (e *Estimator[T]) Round() uint {
	return e.round
}

// Probability returns the current sampling probability, 2^-Round().
func (e *Estimator[T]) Probability() float64 {
	return math.Ldexp(1, -int(e.round))
}

// SampleSize returns the number of items currently sampled. This is not the number of distinct
// items seen so far; see Count for that.
func (e *Estimator[T]) SampleSize() int {
	return e.sample.Len()
}

// Contains reports whether item is currently sampled.
func (e *Estimator[T]) Contains(item T) bool {
	return e.sample.Contains(item)
}

// Sample returns a copy of the sampled items in sample order.
func (e *Estimator[T]) Sample() []T {
	items := e.sample.Items()
	out := make([]T, len(items))
	copy(out, items)
	return out
}

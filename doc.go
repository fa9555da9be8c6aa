// This is a Go implementation of the CVM algorithm from "Distinct Elements in Streams: An
// Algorithm for the (Text) Book" by Chakraborty, Vinodchandran and Meel. This is a cardinality
// estimation algorithm: given a stream of input elements, it will estimate the number of unique
// items in the stream in a single pass. The memory used is bounded by the capacity chosen at
// construction, and a larger capacity gives a tighter estimate.
//
// The estimator keeps a sample of the items it has seen, each retained with the current sampling
// probability. Whenever the sample fills up, every sampled item is kept or dropped on a fair coin
// and the probability is halved. The estimate is the sample size divided by the probability.
//
// Randomness is never owned by the estimator. Every call to Insert takes a Source, so callers
// decide between a seeded generator (reproducible runs and tests) and an entropy pool.
//
// The paper is available at https://arxiv.org/abs/2301.10191
package cvm

// Package rng provides the deterministic pseudo-random stream used by lloyd.
//
// The stream is a pure function of an integer cursor:
//
//	next = frac(sin(seed) * 10000); seed++
//
// It is not statistically strong. It exists so that a data set, an
// initialisation and therefore a whole clustering run can be replayed
// exactly from a single seed.
//
// # Usage
//
//	src := rng.New(42)
//	r := src.Next() // [0, 1)
//	src.Reseed(7)   // restart from another cursor
package rng

// Package model defines the core 2D types used throughout lloyd.
//
// # Data Types
//
//   - Point: an input observation; its index in the working set is its identity
//   - Centroid: the centre of one cluster, indexed 0..k-1
//
// Both are plain values. Copying a Point into a Centroid never aliases memory,
// so initialisation and update steps cannot mutate the input data set.
package model

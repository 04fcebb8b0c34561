// Package dataset builds the point sets that lloyd clusters.
//
// # Synthetic Data
//
// Generate draws up to five blob centres inside a 20x20 square around the
// origin and scatters points on a disk of radius 3 around each of them.
// Points that do not divide evenly between the blobs are placed uniformly over
// the whole square. Given the same seed the output is bit-identical.
//
//	pts := dataset.Generate(100, 3, rng.New(42))
//
// # User Input
//
// Parse accepts free-form text with one "(x, y)" pair per line. Parentheses
// and whitespace are optional. Malformed lines never fail the call; they are
// counted in ParseResult.Errors.
//
//	res := dataset.Parse("(-1.5, 2.0)\nbad line\n(3,-4)")
//	// res.Added == 2, res.Errors == 1
package dataset

// Package lloyd provides an interactive, step-driven K-Means clustering engine.
//
// A Session owns a 2D point set and drives Lloyd's algorithm one iteration at
// a time, or straight to convergence. Every iteration is recorded, so the
// distance table of any earlier step can be inspected or exported as CSV
// after the fact. All randomness comes from a single integer seed, which makes
// a run fully reproducible.
//
// # Quick Start
//
//	ctx := context.Background()
//	s := lloyd.New(lloyd.WithInitMethod(lloyd.InitKMeansPlusPlus))
//
//	_ = s.Generate(100, 3, 42)  // synthetic blobs, seed 42
//	if err := s.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
//	res, _ := s.RunToConvergence(ctx)
//	fmt.Println(res.Iterations, res.Converged)
//
// # Stepping
//
// Presentation layers that animate a run can split each iteration in two and
// render a frame in between:
//
//	s.AssignStep(ctx)  // points move to their nearest centroid
//	render(s.Snapshot())
//	s.UpdateStep(ctx)  // centroids move to the mean of their points
//	render(s.Snapshot())
//
// Step does both halves back to back. The session never sleeps or schedules
// anything itself; see package player for a paced driver.
//
// # State Machine
//
//	Idle --Start--> Running --(no centroid moved)--> Converged
//	                   \--Stop--> Aborted
//
// Reset returns any state to Idle and drops points, centroids, assignments
// and history together.
package lloyd

package lloyd_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/lloyd"
	"github.com/hupe1980/lloyd/model"
)

// Example demonstrates clustering three well separated groups.
func Example() {
	ctx := context.Background()

	s := lloyd.New(
		lloyd.WithK(3),
		lloyd.WithSeed(42),
		lloyd.WithInitMethod(lloyd.InitUniform),
	)

	points := "(0, 0)\n(0.5, 0)\n(0, 0.5)\n" +
		"(10, 10)\n(10.5, 10)\n(10, 10.5)\n" +
		"(-10, 10)\n(-9.5, 10)\n(-10, 10.5)"
	if _, err := s.AddPoints(ctx, points); err != nil {
		log.Fatal(err)
	}

	if err := s.Start(ctx); err != nil {
		log.Fatal(err)
	}

	res, err := s.RunToConvergence(ctx)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("converged:", res.Converged)
	fmt.Println("iterations:", res.Iterations)
	fmt.Println("sizes:", s.ClusterSizes())
	// Output:
	// converged: true
	// iterations: 3
	// sizes: [3 3 3]
}

// Example_twoPhase demonstrates driving the assign and update halves
// separately, as an animated front end would.
func Example_twoPhase() {
	ctx := context.Background()

	s := lloyd.New(lloyd.WithK(2), lloyd.WithSeed(7))
	for _, p := range []model.Point{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 8, Y: 8}, {X: 8, Y: 9}} {
		if err := s.AddPoint(p); err != nil {
			log.Fatal(err)
		}
	}
	if err := s.Start(ctx); err != nil {
		log.Fatal(err)
	}

	for s.State() == lloyd.StateRunning {
		if _, err := s.AssignStep(ctx); err != nil {
			log.Fatal(err)
		}
		// render the intermediate frame here
		if _, err := s.UpdateStep(ctx); err != nil {
			log.Fatal(err)
		}
	}

	fmt.Println(s.State())
	fmt.Println(s.ClusterSizes())
	// Output:
	// converged
	// [2 2]
}

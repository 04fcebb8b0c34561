package shell

import (
	"fmt"
	"text/tabwriter"

	"github.com/hupe1980/lloyd"
	"github.com/hupe1980/lloyd/history"
)

func (s *Shell) printHelp() {
	fmt.Fprint(s.out, `Data:
  gen [n] [k] [seed]   generate a synthetic dataset
  add x,y              add a point
  load <file>          add points from a file, one (x, y) per line
  k [n]                show or set the cluster count
  init [method]        show or set the init method (uniform, kmeans++)
  seed [n]             show or set the random seed

Algorithm:
  start                initialize centroids
  assign               assign points to the nearest centroid
  update               move centroids to the mean of their points
  step                 assign and update
  run                  step until converged
  play [delay]         step with a pause per iteration
  stop                 abort the run
  reset                drop points, centroids and history

Inspect:
  show                 session status and centroids
  history              per-iteration summary
  csv [iteration]      distance table of an iteration
  log                  recent events
  export               write a report to the configured sink

  help, quit
`)
}

func (s *Shell) printStep(res lloyd.StepResult) {
	switch {
	case res.Iteration == 0:
		fmt.Fprintf(s.out, "Nothing to do (state: %s)\n", s.session.State())
	case res.Converged:
		fmt.Fprintf(s.out, "Iteration %d: converged (inertia %.4f)\n", res.Iteration, res.Inertia)
	case res.MaxIterationsReached:
		fmt.Fprintf(s.out, "Iteration %d: maximum iterations reached (inertia %.4f)\n", res.Iteration, res.Inertia)
	default:
		fmt.Fprintf(s.out, "Iteration %d: centroids updated (inertia %.4f)\n", res.Iteration, res.Inertia)
	}
}

func (s *Shell) printRun(res lloyd.RunResult) {
	switch {
	case res.Converged:
		fmt.Fprintf(s.out, "Converged after %d iterations in %s\n", res.Iterations, res.Duration)
	case res.MaxIterationsReached:
		fmt.Fprintf(s.out, "Stopped at the iteration cap (%d) without converging\n", res.Iterations)
	default:
		fmt.Fprintf(s.out, "Run ended at iteration %d (state: %s)\n", res.Iterations, s.session.State())
	}
}

func (s *Shell) printStatus() {
	snap := s.session.Snapshot()

	fmt.Fprintf(s.out, "State:      %s\n", snap.State)
	fmt.Fprintf(s.out, "Points:     %d\n", len(snap.Points))
	fmt.Fprintf(s.out, "K:          %d\n", snap.K)
	fmt.Fprintf(s.out, "Init:       %s\n", snap.InitMethod)
	fmt.Fprintf(s.out, "Iteration:  %d/%d\n", snap.Iteration, snap.MaxIterations)
	s.printCentroids()
}

func (s *Shell) printCentroids() {
	centroids := s.session.Centroids()
	if len(centroids) == 0 {
		return
	}
	sizes := s.session.ClusterSizes()

	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Cluster\tCentroid\tPoints")
	for c, centroid := range centroids {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", history.ClusterLabel(c), centroid, sizes[c])
	}
	_ = tw.Flush()
}

func (s *Shell) printHistory() error {
	hist := s.session.History()
	if hist.Len() == 0 {
		fmt.Fprintln(s.out, "No iterations recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Iteration\tInertia\tReassigned")
	for _, rec := range hist.Records() {
		churn, err := hist.Churn(rec.Iteration)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%d\t%.4f\t%d\n", rec.Iteration, rec.Inertia(), churn.GetCardinality())
	}
	return tw.Flush()
}

func (s *Shell) printEvents() {
	events := s.session.Events()
	for i := len(events) - 1; i >= 0; i-- {
		fmt.Fprintln(s.out, events[i])
	}
}

package lloyd

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/lloyd/codec"
	"github.com/hupe1980/lloyd/model"
)

// threeGroups holds three tight groups of three points far apart.
func threeGroups() []model.Point {
	return []model.Point{
		{X: 0, Y: 0}, {X: 0.5, Y: 0}, {X: 0, Y: 0.5},
		{X: 10, Y: 10}, {X: 10.5, Y: 10}, {X: 10, Y: 10.5},
		{X: -10, Y: 10}, {X: -9.5, Y: 10}, {X: -10, Y: 10.5},
	}
}

func newGroupsSession(t *testing.T, optFns ...Option) *Session {
	t.Helper()

	opts := append([]Option{WithK(3), WithSeed(42), WithInitMethod(InitUniform)}, optFns...)
	s := New(opts...)
	for _, p := range threeGroups() {
		require.NoError(t, s.AddPoint(p))
	}
	return s
}

func TestStartValidation(t *testing.T) {
	ctx := context.Background()

	t.Run("InvalidK", func(t *testing.T) {
		s := newGroupsSession(t, WithK(0))
		assert.ErrorIs(t, s.Start(ctx), ErrInvalidK)
		assert.Equal(t, StateIdle, s.State())
	})

	t.Run("NoPoints", func(t *testing.T) {
		s := New()
		assert.ErrorIs(t, s.Start(ctx), ErrInsufficientData)
		assert.Equal(t, StateIdle, s.State())
	})

	t.Run("FewerPointsThanK", func(t *testing.T) {
		s := newGroupsSession(t, WithK(10))
		err := s.Start(ctx)

		var ip *ErrInsufficientPoints
		require.True(t, errors.As(err, &ip))
		assert.Equal(t, 9, ip.Points)
		assert.Equal(t, 10, ip.K)
		assert.ErrorIs(t, err, ErrInsufficientPointsSentinel)

		assert.Equal(t, StateIdle, s.State())
		assert.Empty(t, s.Centroids())
		assert.Empty(t, s.Assignments())
		assert.Equal(t, int64(42), s.Seed(), "failed start must not consume randomness")
	})

	t.Run("AlreadyRunning", func(t *testing.T) {
		s := newGroupsSession(t)
		require.NoError(t, s.Start(ctx))
		assert.ErrorIs(t, s.Start(ctx), ErrSessionRunning)
	})

	t.Run("ResetsRunState", func(t *testing.T) {
		s := newGroupsSession(t)
		require.NoError(t, s.Start(ctx))

		assert.Equal(t, StateRunning, s.State())
		assert.Equal(t, 0, s.Iteration())
		assert.Len(t, s.Centroids(), 3)
		assert.Equal(t, []int{-1, -1, -1, -1, -1, -1, -1, -1, -1}, s.Assignments())
		assert.Equal(t, 0, s.History().Len())
	})
}

func TestSeparatedGroupsConverge(t *testing.T) {
	ctx := context.Background()
	s := newGroupsSession(t)
	require.NoError(t, s.Start(ctx))

	var res StepResult
	for i := 0; i < 5 && s.State() == StateRunning; i++ {
		var err error
		res, err = s.Step(ctx)
		require.NoError(t, err)
	}

	require.True(t, res.Converged)
	assert.Equal(t, StateConverged, s.State())
	assert.Equal(t, []int{3, 3, 3}, s.ClusterSizes())

	a := s.Assignments()
	for g := 0; g < 3; g++ {
		assert.Equal(t, a[g*3], a[g*3+1], "group %d", g)
		assert.Equal(t, a[g*3], a[g*3+2], "group %d", g)
	}
	assert.NotEqual(t, a[0], a[3])
	assert.NotEqual(t, a[0], a[6])
	assert.NotEqual(t, a[3], a[6])

	assert.Equal(t, s.Iteration(), s.History().Len())
	assert.Len(t, s.History().Trajectory(), s.Iteration())
}

func TestStep(t *testing.T) {
	ctx := context.Background()

	t.Run("NoopWhenIdle", func(t *testing.T) {
		s := newGroupsSession(t)
		res, err := s.Step(ctx)
		require.NoError(t, err)
		assert.Equal(t, StepResult{}, res)
		assert.Equal(t, 0, s.Iteration())

		run, err := s.RunToConvergence(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, run.Iterations)
		assert.Equal(t, StateIdle, s.State())
	})

	t.Run("NoopWhenConverged", func(t *testing.T) {
		s := newGroupsSession(t)
		require.NoError(t, s.Start(ctx))
		_, err := s.RunToConvergence(ctx)
		require.NoError(t, err)

		iter := s.Iteration()
		centroids := s.Centroids()

		res, err := s.Step(ctx)
		require.NoError(t, err)
		assert.Equal(t, StepResult{}, res)
		assert.Equal(t, iter, s.Iteration())
		assert.Equal(t, centroids, s.Centroids())
	})

	t.Run("FirstStepChangesEverything", func(t *testing.T) {
		s := newGroupsSession(t)
		require.NoError(t, s.Start(ctx))

		res, err := s.Step(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Iteration)
		assert.True(t, res.Changed)

		churn, err := s.History().Churn(1)
		require.NoError(t, err)
		assert.Equal(t, uint64(9), churn.GetCardinality())
	})

	t.Run("CanceledContext", func(t *testing.T) {
		s := newGroupsSession(t)
		require.NoError(t, s.Start(ctx))

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := s.Step(cctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, s.Iteration())
	})
}

func TestTwoPhaseStep(t *testing.T) {
	ctx := context.Background()

	t.Run("PhaseOrder", func(t *testing.T) {
		s := newGroupsSession(t)
		require.NoError(t, s.Start(ctx))

		_, err := s.UpdateStep(ctx)
		assert.ErrorIs(t, err, ErrPhaseOrder)

		_, err = s.AssignStep(ctx)
		require.NoError(t, err)
		_, err = s.AssignStep(ctx)
		assert.ErrorIs(t, err, ErrPhaseOrder)
	})

	t.Run("MatchesStep", func(t *testing.T) {
		split := newGroupsSession(t)
		whole := newGroupsSession(t)
		require.NoError(t, split.Start(ctx))
		require.NoError(t, whole.Start(ctx))

		for whole.State() == StateRunning {
			want, err := whole.Step(ctx)
			require.NoError(t, err)

			changed, err := split.AssignStep(ctx)
			require.NoError(t, err)
			assert.Equal(t, want.Changed, changed)

			got, err := split.UpdateStep(ctx)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}

		assert.Equal(t, whole.Centroids(), split.Centroids())
		assert.Equal(t, whole.Assignments(), split.Assignments())
		assert.Equal(t, StateConverged, split.State())
	})

	t.Run("StepCompletesPendingAssign", func(t *testing.T) {
		s := newGroupsSession(t)
		require.NoError(t, s.Start(ctx))

		_, err := s.AssignStep(ctx)
		require.NoError(t, err)

		res, err := s.Step(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Iteration)
		assert.True(t, res.Changed)
		assert.Equal(t, 1, s.History().Len())
	})
}

func TestMaxIterations(t *testing.T) {
	ctx := context.Background()
	s := newGroupsSession(t, WithMaxIterations(1))
	require.NoError(t, s.Start(ctx))

	res, err := s.Step(ctx)
	require.NoError(t, err)
	assert.True(t, res.Moved)
	assert.False(t, res.Converged)
	assert.True(t, res.MaxIterationsReached)
	assert.Equal(t, StateRunning, s.State())

	centroids := s.Centroids()
	res, err = s.Step(ctx)
	require.NoError(t, err)
	assert.True(t, res.MaxIterationsReached)
	assert.Equal(t, 1, res.Iteration)
	assert.Equal(t, centroids, s.Centroids())
	assert.Equal(t, 1, s.History().Len())

	changed, err := s.AssignStep(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	run, err := s.RunToConvergence(ctx)
	require.NoError(t, err)
	assert.True(t, run.MaxIterationsReached)
	assert.False(t, run.Converged)

	assert.Equal(t, EventWarning, s.Events()[0].Level)
}

func TestRunToConvergence(t *testing.T) {
	ctx := context.Background()

	t.Run("Converges", func(t *testing.T) {
		metrics := &BasicMetricsCollector{}
		s := newGroupsSession(t, WithMetricsCollector(metrics))
		require.NoError(t, s.Start(ctx))

		res, err := s.RunToConvergence(ctx)
		require.NoError(t, err)
		assert.True(t, res.Converged)
		assert.False(t, res.MaxIterationsReached)
		assert.Equal(t, s.Iteration(), res.Iterations)

		stats := metrics.GetStats()
		assert.Equal(t, int64(1), stats.StartCount)
		assert.Equal(t, int64(res.Iterations), stats.StepCount)
		assert.Equal(t, int64(1), stats.StepsUnchanged)
		assert.Equal(t, int64(1), stats.RunsConverged)
	})

	t.Run("Canceled", func(t *testing.T) {
		s := newGroupsSession(t)
		require.NoError(t, s.Start(ctx))
		_, err := s.Step(ctx)
		require.NoError(t, err)

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err = s.RunToConvergence(cctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, StateRunning, s.State())

		_, err = s.ExportCSV(1)
		assert.NoError(t, err, "history before the stop stays readable")
	})
}

func TestStopAndRestart(t *testing.T) {
	ctx := context.Background()
	s := newGroupsSession(t)
	require.NoError(t, s.Start(ctx))
	_, err := s.Step(ctx)
	require.NoError(t, err)

	s.Stop()
	assert.Equal(t, StateAborted, s.State())
	assert.Equal(t, 1, s.History().Len())

	res, err := s.Step(ctx)
	require.NoError(t, err)
	assert.Equal(t, StepResult{}, res)

	require.NoError(t, s.AddPoint(model.Point{X: 1, Y: 1}))
	assert.Len(t, s.Assignments(), 10)
	assert.Equal(t, -1, s.Assignments()[9])

	require.NoError(t, s.Start(ctx))
	assert.Equal(t, StateRunning, s.State())
	assert.Equal(t, 0, s.History().Len())

	s.Stop()
	s.Stop()
	assert.Equal(t, StateAborted, s.State())
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	s := newGroupsSession(t)
	require.NoError(t, s.Start(ctx))
	_, err := s.RunToConvergence(ctx)
	require.NoError(t, err)

	s.Reset(ctx)

	assert.Equal(t, StateIdle, s.State())
	assert.Empty(t, s.Points())
	assert.Empty(t, s.Centroids())
	assert.Empty(t, s.Assignments())
	assert.Equal(t, 0, s.Iteration())
	assert.Equal(t, 0, s.History().Len())
	assert.Empty(t, s.History().Trajectory())
	assert.Equal(t, 3, s.K())

	events := s.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "Algorithm reset", events[0].Message)

	_, err = s.ExportCSV(1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPoints(t *testing.T) {
	ctx := context.Background()

	t.Run("AddPoints", func(t *testing.T) {
		s := New()
		res, err := s.AddPoints(ctx, "(-1.5, 2.0)\nbad line\n(3,-4)")
		require.NoError(t, err)
		assert.Equal(t, 2, res.Added)
		assert.Equal(t, 1, res.Errors)
		assert.Equal(t, []model.Point{{X: -1.5, Y: 2}, {X: 3, Y: -4}}, s.Points())
		assert.Equal(t, EventWarning, s.Events()[0].Level)
	})

	t.Run("RejectedWhileRunning", func(t *testing.T) {
		s := newGroupsSession(t)
		require.NoError(t, s.Start(ctx))

		assert.ErrorIs(t, s.AddPoint(model.Point{X: 1, Y: 2}), ErrSessionRunning)
		_, err := s.AddPoints(ctx, "(1, 2)")
		assert.ErrorIs(t, err, ErrSessionRunning)
		assert.ErrorIs(t, s.Generate(10, 2, 1), ErrSessionRunning)
		assert.ErrorIs(t, s.SetK(2), ErrSessionRunning)
		assert.Len(t, s.Points(), 9)
	})

	t.Run("NonFinite", func(t *testing.T) {
		s := New()
		assert.Error(t, s.AddPoint(model.Point{X: 1, Y: math.NaN()}))
		assert.Empty(t, s.Points())
	})

	t.Run("GenerateIsReproducible", func(t *testing.T) {
		a, b := New(), New()
		require.NoError(t, a.Generate(50, 4, 7))
		require.NoError(t, b.Generate(50, 4, 7))

		assert.Len(t, a.Points(), 50)
		assert.Equal(t, a.Points(), b.Points())
		assert.Equal(t, 4, a.K())
		assert.Equal(t, a.Seed(), b.Seed())
	})

	t.Run("GenerateDropsRun", func(t *testing.T) {
		s := newGroupsSession(t)
		require.NoError(t, s.Start(ctx))
		s.Stop()

		require.NoError(t, s.Generate(20, 2, 3))
		assert.Equal(t, StateIdle, s.State())
		assert.Empty(t, s.Centroids())
		assert.Equal(t, 0, s.History().Len())
	})
}

func TestSettings(t *testing.T) {
	s := New()
	assert.Equal(t, DefaultK, s.K())
	assert.Equal(t, InitKMeansPlusPlus, s.InitMethod())
	assert.Equal(t, 100, s.MaxIterations())

	assert.ErrorIs(t, s.SetK(0), ErrInvalidK)
	require.NoError(t, s.SetK(5))
	assert.Equal(t, 5, s.K())

	require.NoError(t, s.SetInitMethod(InitUniform))
	assert.Equal(t, InitUniform, s.InitMethod())
	assert.ErrorIs(t, s.SetInitMethod(InitMethod(9)), ErrUnknownInitMethod)

	s.SetSeed(1234)
	assert.Equal(t, int64(1234), s.Seed())

	t.Run("ChangingKDiscardsFinishedRun", func(t *testing.T) {
		ctx := context.Background()
		s := newGroupsSession(t)
		require.NoError(t, s.Start(ctx))
		_, err := s.RunToConvergence(ctx)
		require.NoError(t, err)
		require.Equal(t, StateConverged, s.State())

		require.NoError(t, s.SetK(3))
		assert.Equal(t, StateConverged, s.State())
		assert.Len(t, s.Centroids(), 3)

		require.NoError(t, s.SetK(5))
		snap := s.Snapshot()
		assert.Equal(t, StateIdle, snap.State)
		assert.Equal(t, 5, snap.K)
		assert.Empty(t, snap.Centroids)
		assert.Empty(t, snap.Assignments)
		assert.Len(t, snap.Points, 9)
		assert.Equal(t, 0, s.History().Len())

		require.NoError(t, s.Start(ctx))
		assert.Len(t, s.Centroids(), 5)
	})

	m, err := ParseInitMethod("random")
	require.NoError(t, err)
	assert.Equal(t, InitUniform, m)
	_, err = ParseInitMethod("forgy")
	assert.ErrorIs(t, err, ErrUnknownInitMethod)
}

func TestExportCSV(t *testing.T) {
	ctx := context.Background()
	s := newGroupsSession(t)
	require.NoError(t, s.Start(ctx))
	_, err := s.Step(ctx)
	require.NoError(t, err)

	b, err := s.ExportCSV(1)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 10)
	assert.Equal(t, "Point,X,Y,Distance_to_C1,Distance_to_C2,Distance_to_C3,Assigned_Cluster,Assigned_Distance", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,0.0000,0.0000,"))

	_, err = s.ExportCSV(2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()

	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			s := newGroupsSession(t, WithCodec(c))
			require.NoError(t, s.Start(ctx))
			_, err := s.RunToConvergence(ctx)
			require.NoError(t, err)

			b, err := s.MarshalSnapshot()
			require.NoError(t, err)

			var got struct {
				ID           string           `json:"id"`
				State        string           `json:"state"`
				InitMethod   string           `json:"init_method"`
				Centroids    []model.Centroid `json:"centroids"`
				ClusterSizes []int            `json:"cluster_sizes"`
			}
			require.NoError(t, c.Unmarshal(b, &got))
			assert.Equal(t, s.ID(), got.ID)
			assert.Equal(t, "converged", got.State)
			assert.Equal(t, "uniform", got.InitMethod)
			assert.Equal(t, s.Centroids(), got.Centroids)
			assert.Equal(t, []int{3, 3, 3}, got.ClusterSizes)
		})
	}
}

func TestEvents(t *testing.T) {
	s := New(WithEventLogSize(3))
	for i := 0; i < 5; i++ {
		require.NoError(t, s.AddPoint(model.Point{X: float64(i), Y: 0}))
	}

	events := s.Events()
	require.Len(t, events, 3)
	assert.Equal(t, "Added custom point at (4.00, 0.00)", events[0].Message)
	assert.Equal(t, "Added custom point at (2.00, 0.00)", events[2].Message)
	assert.Equal(t, EventInfo, events[0].Level)
}

func TestSessionIDs(t *testing.T) {
	a, b := New(), New()
	assert.NotEmpty(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

package lloyd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hupe1980/lloyd/codec"
	"github.com/hupe1980/lloyd/dataset"
	"github.com/hupe1980/lloyd/history"
	"github.com/hupe1980/lloyd/internal/kmeans"
	"github.com/hupe1980/lloyd/model"
	"github.com/hupe1980/lloyd/rng"
)

// InitMethod selects the centroid initialization strategy.
type InitMethod = kmeans.InitMethod

const (
	// InitUniform picks k distinct points uniformly at random.
	InitUniform = kmeans.InitUniform
	// InitKMeansPlusPlus spreads the initial centroids out with D² weighting.
	InitKMeansPlusPlus = kmeans.InitKMeansPlusPlus
)

// ParseInitMethod resolves an init method name such as "uniform" or "kmeans++".
func ParseInitMethod(name string) (InitMethod, error) {
	return kmeans.ParseInitMethod(name)
}

// State is the lifecycle phase of a Session.
type State int

const (
	// StateIdle means no run has started or the last one was discarded.
	StateIdle State = iota
	// StateRunning means centroids are initialized and stepping is allowed.
	StateRunning
	// StateConverged means the latest update-step moved no centroid.
	StateConverged
	// StateAborted means the run was stopped before converging.
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateConverged:
		return "converged"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// StepResult describes one completed iteration.
type StepResult struct {
	Iteration int `json:"iteration"`
	// Changed reports whether any point switched clusters in the assign-step.
	Changed bool `json:"changed"`
	// Moved reports whether any centroid moved by more than kmeans.Epsilon.
	Moved                bool    `json:"moved"`
	Converged            bool    `json:"converged"`
	MaxIterationsReached bool    `json:"max_iterations_reached"`
	Inertia              float64 `json:"inertia"`
}

// RunResult summarizes RunToConvergence.
type RunResult struct {
	Iterations           int           `json:"iterations"`
	Converged            bool          `json:"converged"`
	MaxIterationsReached bool          `json:"max_iterations_reached"`
	Duration             time.Duration `json:"duration"`
}

// Session is an interactive K-Means run over a 2D point set.
//
// All methods are safe for concurrent use; a single mutex serializes them so
// an iteration is never re-entered.
type Session struct {
	mu sync.Mutex

	id            string
	src           *rng.Source
	k             int
	method        InitMethod
	maxIterations int

	state       State
	iteration   int
	points      []model.Point
	centroids   []model.Centroid
	assignments []int
	// assigned is set between an assign-step and its update-step.
	assigned  bool
	startedAt time.Time

	hist   *history.History
	events *eventLog

	codec   codec.Codec
	logger  *Logger
	metrics MetricsCollector
}

// New creates an idle Session without points.
func New(optFns ...Option) *Session {
	opts := applyOptions(optFns)

	id := uuid.NewString()
	return &Session{
		id:            id,
		src:           rng.New(opts.seed),
		k:             opts.k,
		method:        opts.initMethod,
		maxIterations: opts.maxIterations,
		hist:          history.New(),
		events:        newEventLog(opts.eventLogSize),
		codec:         opts.codec,
		logger:        opts.logger.WithSession(id),
		metrics:       opts.metricsCollector,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Generate reseeds the random cursor, sets k and replaces the point set with
// synthetic blobs. Centroids, assignments and history are dropped and the
// session returns to Idle.
func (s *Session) Generate(numPoints, k int, seed int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return ErrSessionRunning
	}

	s.src.Reseed(seed)
	s.k = k
	s.points = dataset.Generate(numPoints, k, s.src)
	s.clearRunLocked()
	s.state = StateIdle

	s.events.add(EventInfo, "Generated random dataset with %d points", len(s.points))
	s.logger.Info("dataset generated", "points", len(s.points), "k", k, "seed", seed)
	return nil
}

// AddPoint appends a user point. Non-finite coordinates are rejected.
func (s *Session) AddPoint(p model.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return ErrSessionRunning
	}
	if !p.IsFinite() {
		return fmt.Errorf("invalid point %s", p)
	}

	s.appendPointLocked(p)
	s.events.add(EventInfo, "Added custom point at (%.2f, %.2f)", p.X, p.Y)
	return nil
}

// AddPoints parses text with one "(x, y)" pair per line and appends every
// valid point. Blank lines are skipped, other unparsable lines are counted in
// ParseResult.Errors.
func (s *Session) AddPoints(ctx context.Context, text string) (dataset.ParseResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return dataset.ParseResult{}, ErrSessionRunning
	}

	res := dataset.Parse(text)
	for _, p := range res.Points {
		s.appendPointLocked(p)
	}

	s.logger.LogParse(ctx, res.Added, res.Errors)
	if res.Errors > 0 {
		s.events.add(EventWarning, "Added %d points (%d errors)", res.Added, res.Errors)
	} else {
		s.events.add(EventSuccess, "Added %d points", res.Added)
	}
	return res, nil
}

func (s *Session) appendPointLocked(p model.Point) {
	s.points = append(s.points, p)
	// Points added after a finished run stay unassigned until the next Start.
	if s.assignments != nil {
		s.assignments = append(s.assignments, -1)
	}
}

// SetK changes the cluster count used by the next Start. Changing k after a
// finished run discards that run and returns the session to Idle.
func (s *Session) SetK(k int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return ErrSessionRunning
	}
	if k < 1 {
		return ErrInvalidK
	}
	if k == s.k {
		return nil
	}
	s.k = k
	if s.state != StateIdle {
		s.clearRunLocked()
		s.state = StateIdle
	}
	return nil
}

// SetInitMethod changes the initialization used by the next Start.
func (s *Session) SetInitMethod(m InitMethod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateRunning {
		return ErrSessionRunning
	}
	if m != InitUniform && m != InitKMeansPlusPlus {
		return fmt.Errorf("%w: %d", ErrUnknownInitMethod, int(m))
	}
	s.method = m
	return nil
}

// SetSeed repositions the random cursor.
func (s *Session) SetSeed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Reseed(seed)
}

// Start validates the configuration, initializes k centroids and moves the
// session to Running. Nothing is modified when validation fails.
//
// Start is allowed from Idle, Converged and Aborted; a finished run is
// discarded and a new one begins on the same points.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.startLocked()
	s.metrics.RecordStart(len(s.points), s.k, err)
	s.logger.LogStart(ctx, len(s.points), s.k, s.method, err)
	return err
}

func (s *Session) startLocked() error {
	switch {
	case s.state == StateRunning:
		return ErrSessionRunning
	case s.k < 1:
		return ErrInvalidK
	case len(s.points) == 0:
		return ErrInsufficientData
	case len(s.points) < s.k:
		return &ErrInsufficientPoints{Points: len(s.points), K: s.k}
	}

	centroids, err := kmeans.Initialize(s.points, s.k, s.method, s.src)
	if err != nil {
		return translateError(err, len(s.points), s.k)
	}

	s.centroids = centroids
	s.assignments = kmeans.Unassigned(len(s.points))
	s.iteration = 0
	s.assigned = false
	s.hist.Begin(model.ClonePoints(s.points), s.k)
	s.state = StateRunning
	s.startedAt = time.Now()

	s.events.add(EventSuccess, "Algorithm started - Centroids initialized")
	return nil
}

// AssignStep runs the first half of an iteration: every point moves to its
// nearest centroid and the iteration is recorded. It reports whether any
// assignment changed.
//
// AssignStep is a no-op unless the session is Running and below the
// iteration cap. Calling it twice without UpdateStep returns ErrPhaseOrder.
func (s *Session) AssignStep(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning || s.iteration >= s.maxIterations {
		return false, nil
	}
	if s.assigned {
		return false, ErrPhaseOrder
	}
	return s.assignLocked()
}

func (s *Session) assignLocked() (bool, error) {
	assignments, distances := kmeans.AssignStep(s.points, s.centroids)

	changed := false
	for i, c := range assignments {
		if s.assignments[i] != c {
			changed = true
			break
		}
	}

	s.iteration++
	if err := s.hist.Append(history.Record{Iteration: s.iteration, Distances: distances}); err != nil {
		s.iteration--
		return false, err
	}
	s.assignments = assignments
	s.assigned = true
	return changed, nil
}

// UpdateStep runs the second half of an iteration: every centroid moves to
// the mean of its points. When no centroid moved the session converges.
//
// UpdateStep is a no-op unless the session is Running. Calling it without a
// preceding AssignStep returns ErrPhaseOrder.
func (s *Session) UpdateStep(ctx context.Context) (StepResult, error) {
	if err := ctx.Err(); err != nil {
		return StepResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return StepResult{}, nil
	}
	if !s.assigned {
		return StepResult{}, ErrPhaseOrder
	}

	res := s.updateLocked(ctx)
	// The assign half of a split step is not known here; churn tells.
	if churn, err := s.hist.Churn(s.iteration); err == nil {
		res.Changed = !churn.IsEmpty()
	}
	s.logger.LogStep(ctx, res)
	return res, nil
}

func (s *Session) updateLocked(ctx context.Context) StepResult {
	centroids, moved := kmeans.UpdateStep(s.points, s.centroids, s.assignments)
	s.centroids = centroids
	s.assigned = false
	s.hist.AppendTrajectory(centroids)

	res := StepResult{
		Iteration: s.iteration,
		Moved:     moved,
		Inertia:   kmeans.Inertia(s.points, centroids, s.assignments),
	}

	switch {
	case !moved:
		res.Converged = true
		s.state = StateConverged
		s.events.add(EventSuccess, "Converged after %d iterations!", s.iteration)
		s.logger.LogConverged(ctx, s.iteration, time.Since(s.startedAt))
	case s.iteration >= s.maxIterations:
		res.MaxIterationsReached = true
		s.events.add(EventWarning, "Maximum iterations (%d) reached", s.maxIterations)
		s.logger.LogMaxIterations(ctx, s.maxIterations)
	default:
		s.events.add(EventInfo, "Iteration %d completed - Centroids updated", s.iteration)
	}
	return res
}

// Step runs one full iteration. A pending assign-step from AssignStep is
// completed instead of starting a new iteration.
//
// Step is a no-op unless the session is Running. At the iteration cap it
// returns a result with MaxIterationsReached set and changes nothing.
func (s *Session) Step(ctx context.Context) (StepResult, error) {
	if err := ctx.Err(); err != nil {
		return StepResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return StepResult{}, nil
	}
	return s.stepLocked(ctx)
}

func (s *Session) stepLocked(ctx context.Context) (StepResult, error) {
	if !s.assigned && s.iteration >= s.maxIterations {
		return StepResult{Iteration: s.iteration, MaxIterationsReached: true}, nil
	}

	start := time.Now()

	var changed bool
	if s.assigned {
		churn, err := s.hist.Churn(s.iteration)
		if err != nil {
			return StepResult{}, err
		}
		changed = !churn.IsEmpty()
	} else {
		var err error
		if changed, err = s.assignLocked(); err != nil {
			return StepResult{}, err
		}
	}

	res := s.updateLocked(ctx)
	res.Changed = changed

	s.metrics.RecordStep(time.Since(start), res.Moved)
	s.logger.LogStep(ctx, res)
	return res, nil
}

// RunToConvergence steps until the session converges, reaches the iteration
// cap, is stopped, or ctx is done. On cancellation ctx.Err() is returned and
// the history recorded so far stays valid.
func (s *Session) RunToConvergence(ctx context.Context) (res RunResult, err error) {
	start := time.Now()

	defer func() {
		res.Duration = time.Since(start)
		s.metrics.RecordRun(res.Iterations, res.Converged, res.Duration)
	}()

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		s.mu.Lock()
		if s.state != StateRunning {
			s.mu.Unlock()
			return res, nil
		}
		step, err := s.stepLocked(ctx)
		s.mu.Unlock()
		if err != nil {
			return res, err
		}

		res.Iterations = step.Iteration
		res.Converged = step.Converged
		res.MaxIterationsReached = step.MaxIterationsReached
		if step.Converged || step.MaxIterationsReached {
			return res, nil
		}
	}
}

// Stop aborts a running session. Points, centroids and history are kept.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return
	}
	s.state = StateAborted
	s.assigned = false
	s.events.add(EventWarning, "Algorithm stopped at iteration %d", s.iteration)
	s.logger.Info("clustering stopped", "iteration", s.iteration)
}

// Reset drops points, centroids, assignments, history and events and returns
// the session to Idle. The random cursor and k are kept.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.points = nil
	s.clearRunLocked()
	s.state = StateIdle
	s.events.clear()
	s.events.add(EventInfo, "Algorithm reset")
	s.logger.LogReset(ctx)
}

func (s *Session) clearRunLocked() {
	s.centroids = nil
	s.assignments = nil
	s.iteration = 0
	s.assigned = false
	s.hist.Clear()
}

// State returns the lifecycle phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// K returns the configured cluster count.
func (s *Session) K() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.k
}

// InitMethod returns the configured initialization.
func (s *Session) InitMethod() InitMethod {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.method
}

// MaxIterations returns the iteration cap.
func (s *Session) MaxIterations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.maxIterations
}

// Iteration returns the number of completed assign-steps of the current run.
func (s *Session) Iteration() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.iteration
}

// Seed returns the current position of the random cursor.
func (s *Session) Seed() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Seed()
}

// Points returns a copy of the point set.
func (s *Session) Points() []model.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.ClonePoints(s.points)
}

// Centroids returns a copy of the current centroids.
func (s *Session) Centroids() []model.Centroid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.CloneCentroids(s.centroids)
}

// Assignments returns a copy of the current assignments, -1 meaning unassigned.
func (s *Session) Assignments() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.assignments == nil {
		return nil
	}
	out := make([]int, len(s.assignments))
	copy(out, s.assignments)
	return out
}

// ClusterSizes returns the number of points assigned to each centroid.
func (s *Session) ClusterSizes() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return kmeans.Sizes(s.assignments, len(s.centroids))
}

// History returns the iteration ledger of the current run. Callers must treat
// it as read-only.
func (s *Session) History() *history.History {
	return s.hist
}

// Events returns the most recent session events, newest first.
func (s *Session) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events.list()
}

// ExportCSV renders the distance table of a 1-based iteration.
func (s *Session) ExportCSV(iteration int) ([]byte, error) {
	return s.hist.ExportCSV(iteration)
}

// Snapshot is a self-contained view of a session for presentation layers.
type Snapshot struct {
	ID            string           `json:"id"`
	State         State            `json:"state"`
	K             int              `json:"k"`
	InitMethod    InitMethod       `json:"init_method"`
	Iteration     int              `json:"iteration"`
	MaxIterations int              `json:"max_iterations"`
	Points        []model.Point    `json:"points"`
	Centroids     []model.Centroid `json:"centroids"`
	Assignments   []int            `json:"assignments"`
	ClusterSizes  []int            `json:"cluster_sizes"`
	Events        []Event          `json:"events"`
}

// Snapshot captures the current session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:            s.id,
		State:         s.state,
		K:             s.k,
		InitMethod:    s.method,
		Iteration:     s.iteration,
		MaxIterations: s.maxIterations,
		Points:        model.ClonePoints(s.points),
		Centroids:     model.CloneCentroids(s.centroids),
		ClusterSizes:  kmeans.Sizes(s.assignments, len(s.centroids)),
		Events:        s.events.list(),
	}
	if s.assignments != nil {
		snap.Assignments = append([]int(nil), s.assignments...)
	}
	return snap
}

// MarshalSnapshot encodes Snapshot with the configured codec.
func (s *Session) MarshalSnapshot() ([]byte, error) {
	snap := s.Snapshot()
	b, err := s.codec.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return b, nil
}

// Package player drives a session at a fixed pace, rendering a frame after
// each half of every iteration.
package player

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/hupe1980/lloyd"
)

// Phase identifies which half of an iteration a frame shows.
type Phase int

const (
	PhaseAssign Phase = iota
	PhaseUpdate
)

func (p Phase) String() string {
	if p == PhaseAssign {
		return "assign"
	}
	return "update"
}

// Frame is passed to the Renderer after every half-step.
type Frame struct {
	Phase    Phase
	Snapshot lloyd.Snapshot
	// Result is set for PhaseUpdate frames.
	Result lloyd.StepResult
}

// Renderer draws frames. Returning an error stops playback.
type Renderer interface {
	Render(ctx context.Context, f Frame) error
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(ctx context.Context, f Frame) error

// Render implements Renderer.
func (fn RenderFunc) Render(ctx context.Context, f Frame) error { return fn(ctx, f) }

// Player paces a session. The delay is the time per full iteration; each
// half-step gets half of it.
type Player struct {
	session  *lloyd.Session
	renderer Renderer
	limiter  *rate.Limiter
}

// New creates a Player. A delay of zero or less plays without pause.
func New(session *lloyd.Session, renderer Renderer, delay time.Duration) *Player {
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay / 2)
	}
	return &Player{
		session:  session,
		renderer: renderer,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

// SetDelay changes the pace, also while playing.
func (p *Player) SetDelay(delay time.Duration) {
	if delay <= 0 {
		p.limiter.SetLimit(rate.Inf)
		return
	}
	p.limiter.SetLimit(rate.Every(delay / 2))
}

// Play steps until the session leaves Running, the iteration cap is reached
// or ctx is done. When ctx is canceled the session is stopped and ctx.Err()
// is returned. An error from the Renderer ends playback without stopping the
// session.
func (p *Player) Play(ctx context.Context) (res lloyd.RunResult, err error) {
	start := time.Now()
	defer func() { res.Duration = time.Since(start) }()

	for p.session.State() == lloyd.StateRunning {
		if p.session.Iteration() >= p.session.MaxIterations() {
			res.MaxIterationsReached = true
			break
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return res, p.abort(ctx, err)
		}
		// A pending assign-step started elsewhere is completed below.
		if _, err := p.session.AssignStep(ctx); err != nil && !errors.Is(err, lloyd.ErrPhaseOrder) {
			return res, p.abort(ctx, err)
		}
		if err := p.render(ctx, Frame{Phase: PhaseAssign}); err != nil {
			return res, err
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return res, p.abort(ctx, err)
		}
		step, err := p.session.UpdateStep(ctx)
		if err != nil {
			return res, p.abort(ctx, err)
		}
		if err := p.render(ctx, Frame{Phase: PhaseUpdate, Result: step}); err != nil {
			return res, err
		}

		res.Iterations = step.Iteration
		res.Converged = step.Converged
		res.MaxIterationsReached = step.MaxIterationsReached
	}

	return res, nil
}

func (p *Player) render(ctx context.Context, f Frame) error {
	f.Snapshot = p.session.Snapshot()
	return p.renderer.Render(ctx, f)
}

// abort stops the session when playback ends because ctx is done.
func (p *Player) abort(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		p.session.Stop()
		return ctxErr
	}
	return err
}

package provisioning

import (
	"context"
	"fmt"
	"time"
)

// Pipeline runs phases in order. The first failure aborts the run and hands
// it to Rollback unless the failure is a persistence error.
type Pipeline struct {
	Phases   []Phase
	Rollback Phase
}

// NewPipeline creates a pipeline from the given phases.
func NewPipeline(phases ...Phase) *Pipeline {
	return &Pipeline{Phases: phases}
}

// WithRollback sets the phase run on the abort path.
func (p *Pipeline) WithRollback(rollback Phase) *Pipeline {
	p.Rollback = rollback
	return p
}

// Run executes all phases sequentially. It returns nil when the run reached
// the done stage and a *RunError otherwise.
func (p *Pipeline) Run(ctx *Context) error {
	start := time.Now()
	defer p.stopApplication(ctx)

	for i, phase := range p.Phases {
		if err := ctx.State.Advance(phase.Stage()); err != nil {
			return p.abort(ctx, err)
		}

		name := fmt.Sprintf("%s (%d/%d)", phase.Name(), i+1, len(p.Phases))
		phaseStart := time.Now()
		LogPhaseStart(ctx.Observer, name)

		err := phase.Provision(ctx)
		ctx.Metrics.RecordPhase(phase.Name(), time.Since(phaseStart), err)
		if err != nil {
			LogPhaseFailed(ctx.Observer, name, err)
			return p.abort(ctx, err)
		}

		LogPhaseComplete(ctx.Observer, name, time.Since(phaseStart))
	}

	if err := ctx.State.Advance(StageDone); err != nil {
		return p.abort(ctx, err)
	}
	ctx.Log.Info("install completed", "duration", time.Since(start).Round(time.Millisecond))
	return nil
}

func (p *Pipeline) abort(ctx *Context, err error) error {
	failed := ctx.State.Stage
	runErr := &RunError{
		Stage:   failed,
		Kind:    KindOf(err),
		Message: MessageOf(err),
		Err:     err,
	}

	if advErr := ctx.State.Advance(StageAborted); advErr != nil {
		ctx.Log.Error(advErr, "failed to mark run as aborted")
	}

	if runErr.Kind == KindPersistence || p.Rollback == nil || ctx.State.Created.Empty() {
		return runErr
	}

	ctx.Observer.Printf("Rolling back changes made by this install...")
	if rbErr := p.Rollback.Provision(ctx); rbErr != nil {
		ctx.Log.Error(rbErr, "rollback incomplete")
		runErr.RollbackErr = rbErr
	}
	return runErr
}

func (p *Pipeline) stopApplication(ctx *Context) {
	if ctx.App == nil || ctx.Store == nil {
		return
	}
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := ctx.App.Stop(stopCtx); err != nil {
		ctx.Log.Error(err, "failed to stop application server")
	}
	ctx.Store = nil
}

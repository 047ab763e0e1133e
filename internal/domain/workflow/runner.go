package workflow

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/modxel/internal/editor"
	"github.com/GriffinCanCode/modxel/internal/infrastructure/logging"
	"github.com/GriffinCanCode/modxel/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/modxel/internal/infrastructure/tracing"
)

// Workflow outcomes reported to metrics
const (
	OutcomeCompleted = "completed"
	OutcomeCancelled = "cancelled"
	OutcomeFailed    = "failed"
)

// Runner drives workflows with an interactor, one at a time
type Runner struct {
	editor     editor.Editor
	interactor editor.Interactor
	logger     *logging.Logger
	metrics    *monitoring.Metrics
	tracer     *tracing.Tracer
}

// NewRunner creates a runner
func NewRunner(ed editor.Editor, interactor editor.Interactor, logger *logging.Logger, metrics *monitoring.Metrics) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{
		editor:     ed,
		interactor: interactor,
		logger:     logger.Named("workflow"),
		metrics:    metrics,
	}
}

// WithTracer records every run as a trace
func (r *Runner) WithTracer(tracer *tracing.Tracer) *Runner {
	r.tracer = tracer
	return r
}

// Run drives wf to completion. Cancellation by the user ends the workflow
// without an error.
func (r *Runner) Run(ctx context.Context, wf Workflow) error {
	span, ctx := r.tracer.StartSpan(ctx, "workflow "+wf.Name())
	log := r.logger.With(zap.String("workflow", wf.Name()), zap.String("run", string(span.TraceID)))
	log.Debug("workflow started")
	err := r.drive(ctx, wf)
	span.SetError(err)
	r.tracer.Finish(span)

	switch {
	case err == nil:
		log.Debug("workflow completed")
		r.metrics.RecordWorkflow(wf.Name(), OutcomeCompleted)
		return nil
	case errors.Is(err, editor.ErrCancelled), errors.Is(err, context.Canceled):
		log.Debug("workflow cancelled")
		r.metrics.RecordWorkflow(wf.Name(), OutcomeCancelled)
		return nil
	default:
		r.metrics.RecordWorkflow(wf.Name(), OutcomeFailed)
		return err
	}
}

func (r *Runner) drive(ctx context.Context, wf Workflow) error {
	step, err := wf.Start(ctx)
	for err == nil && step != nil {
		if cerr := ctx.Err(); cerr != nil {
			err = cerr
			break
		}

		var answer Answer
		switch {
		case step.Prompt != nil:
			answer.Text, err = r.interactor.Prompt(ctx, *step.Prompt)
		case step.Choice != nil:
			answer.Index, err = r.interactor.Choose(ctx, *step.Choice)
			if err == nil && answer.Index < 0 {
				err = editor.ErrCancelled
			}
		default:
			err = fmt.Errorf("workflow %s yielded an empty step", wf.Name())
		}
		if err != nil {
			break
		}

		step, err = wf.Resume(ctx, answer)
	}
	return err
}

// Execute runs wf and reports any failure to the editor
func (r *Runner) Execute(ctx context.Context, wf Workflow) error {
	err := r.Run(ctx, wf)
	if err != nil {
		r.Report(wf.Name(), err)
	}
	return err
}

// Report shows err to the user. Errors outside the taxonomy are logged.
func (r *Runner) Report(name string, err error) {
	msg, known := Describe(err)
	if !known {
		r.logger.Error("command failed",
			zap.String("command", name),
			zap.Error(err),
			zap.Stack("stack"))
	}
	r.editor.ErrorMessage(msg)
}

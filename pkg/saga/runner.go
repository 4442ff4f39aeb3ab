package saga

import (
	"context"
	"time"
)

// Logger is the logging surface the runner needs
type Logger interface {
	Info(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// NoOpLogger discards all log output
type NoOpLogger struct{}

func (l *NoOpLogger) Info(msg string, fields ...interface{})  {}
func (l *NoOpLogger) Warn(msg string, fields ...interface{})  {}
func (l *NoOpLogger) Error(msg string, fields ...interface{}) {}

// Runner executes saga definitions
type Runner struct {
	logger Logger
}

// NewRunner creates a saga runner
func NewRunner(logger Logger) *Runner {
	if logger == nil {
		logger = &NoOpLogger{}
	}
	return &Runner{logger: logger}
}

// Execute runs the definition's steps in order. On a step failure the
// completed steps are compensated in reverse order and the step's error is
// returned unchanged. Compensation failures are logged, not returned; the
// original failure is what the caller must see.
func (r *Runner) Execute(ctx context.Context, def *Definition) *Result {
	result := &Result{
		SagaName: def.Name,
		Status:   StatusRunning,
	}

	for _, step := range def.Steps {
		sr := &StepResult{
			StepName:  step.Name,
			Status:    StepStatusPending,
			StartedAt: time.Now(),
		}
		result.StepResults = append(result.StepResults, sr)

		stepCtx, cancel := context.WithTimeout(ctx, step.Timeout)
		err := step.Execute(stepCtx)
		cancel()

		sr.FinishedAt = time.Now()
		if err != nil {
			sr.Status = StepStatusFailed
			sr.Error = err.Error()
			result.Err = err
			r.logger.Error("saga step failed", "saga", def.Name, "step", step.Name, "error", err)
			r.compensate(ctx, def, result)
			return result
		}

		sr.Status = StepStatusCompleted
	}

	result.Status = StatusCompleted
	return result
}

// compensate undoes completed steps in reverse order
func (r *Runner) compensate(ctx context.Context, def *Definition, result *Result) {
	result.Status = StatusCompensating

	for i := len(result.StepResults) - 1; i >= 0; i-- {
		sr := result.StepResults[i]
		if sr.Status != StepStatusCompleted {
			continue
		}

		step := def.Steps[i]
		if step.Compensate == nil {
			continue
		}

		compCtx, cancel := context.WithTimeout(ctx, step.Timeout)
		err := step.Compensate(compCtx)
		cancel()

		if err != nil {
			r.logger.Error("saga compensation failed", "saga", def.Name, "step", step.Name, "error", err)
			continue
		}

		sr.Status = StepStatusCompensated
		r.logger.Info("saga step compensated", "saga", def.Name, "step", step.Name)
	}

	result.Status = StatusCompensated
}

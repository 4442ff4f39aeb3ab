// Package saga provides a small in-process saga engine: a named sequence of
// steps executed in order, where a step failure triggers compensation of the
// already-completed steps in reverse order. The failing step's error is
// returned to the caller unchanged so domain errors survive the rollback.
package saga

import (
	"context"
	"time"
)

// Status represents the current status of a saga instance
type Status string

const (
	StatusPending      Status = "pending"
	StatusRunning      Status = "running"
	StatusCompleted    Status = "completed"
	StatusCompensating Status = "compensating"
	StatusCompensated  Status = "compensated"
)

// StepStatus represents the status of a saga step
type StepStatus string

const (
	StepStatusPending     StepStatus = "pending"
	StepStatusCompleted   StepStatus = "completed"
	StepStatusFailed      StepStatus = "failed"
	StepStatusCompensated StepStatus = "compensated"
)

// ExecuteFunc runs a step's forward action
type ExecuteFunc func(ctx context.Context) error

// CompensateFunc undoes a step's forward action
type CompensateFunc func(ctx context.Context) error

// Step is a single forward action with an optional compensation
type Step struct {
	Name       string
	Execute    ExecuteFunc
	Compensate CompensateFunc
	Timeout    time.Duration
}

// Definition is an ordered list of steps forming one saga
type Definition struct {
	Name  string
	Steps []*Step
}

// NewDefinition creates a new saga definition
func NewDefinition(name string) *Definition {
	return &Definition{Name: name}
}

// AddStep appends a step, applying a default timeout when unset
func (d *Definition) AddStep(step *Step) *Definition {
	if step.Timeout == 0 {
		step.Timeout = 30 * time.Second
	}
	d.Steps = append(d.Steps, step)
	return d
}

// StepResult records the outcome of one step
type StepResult struct {
	StepName   string
	Status     StepStatus
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Result records the outcome of one saga execution
type Result struct {
	SagaName    string
	Status      Status
	StepResults []*StepResult
	Err         error
}

// SPDX-License-Identifier: MPL-2.0

// Package bootstrap runs the environment provisioning pipeline.
//
// The pipeline is an ordered list of named steps. Each step returns a
// result; the first failure short-circuits the remaining steps and the
// outcome names the step that failed. There are no retries.
package bootstrap

import (
	"context"
	"fmt"
)

type (
	// StepFunc executes one pipeline step.
	StepFunc func(ctx context.Context) error

	// Step is a named unit of the pipeline.
	Step struct {
		// Name is a short verb phrase shown in logs and failures.
		Name string
		Run  StepFunc
	}

	// StepResult records one executed step.
	StepResult struct {
		Name string
		Err  error
	}

	// Outcome is the result of a pipeline run. Executed holds a result for
	// every step that ran, in order; steps after the first failure never
	// run and have no entry.
	Outcome struct {
		Executed []StepResult
		// FailedStep is the name of the step that failed, or empty.
		FailedStep string
		// Err is the failing step's error, or nil.
		Err error
	}
)

// Success reports whether every executed step succeeded.
func (o *Outcome) Success() bool {
	return o.Err == nil
}

// runSteps executes steps in order, stopping at the first failure.
func runSteps(ctx context.Context, steps []Step) *Outcome {
	outcome := &Outcome{}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			outcome.FailedStep = step.Name
			outcome.Err = fmt.Errorf("cancelled before step %q: %w", step.Name, err)
			return outcome
		}

		err := step.Run(ctx)
		outcome.Executed = append(outcome.Executed, StepResult{Name: step.Name, Err: err})
		if err != nil {
			outcome.FailedStep = step.Name
			outcome.Err = err
			return outcome
		}
	}

	return outcome
}

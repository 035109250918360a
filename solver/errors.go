// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package solver

import "errors"

// Package-level error definitions.
var (
	// ErrInvalidProblem indicates a structurally invalid problem
	// definition (empty sets, duplicates, missing model).
	ErrInvalidProblem = errors.New("invalid problem")

	// ErrUnknownAgent indicates a reference to an agent outside the
	// declared agent set. Fatal precondition violation.
	ErrUnknownAgent = errors.New("unknown agent")

	// ErrUnknownTask indicates a reference to a task outside the
	// declared task set. Fatal precondition violation.
	ErrUnknownTask = errors.New("unknown task")

	// ErrBudgetExhausted indicates the run stopped on a step or time
	// limit before the frontier was exhausted. The result carries the
	// anytime best found so far.
	ErrBudgetExhausted = errors.New("search budget exhausted")
)

// SolverError wraps an error with the operation that produced it.
type SolverError struct {
	Op  string
	Err error
}

func (e *SolverError) Error() string {
	return "solver." + e.Op + ": " + e.Err.Error()
}

func (e *SolverError) Unwrap() error {
	return e.Err
}

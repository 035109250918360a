// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// Metrics contains the pre-defined instruments for the gapsolve solver.
//
// Description:
//
//	Counters and histograms covering the search loop: expansion steps,
//	generated successor states, recorded terminal states, best
//	improvements, and run durations. All instruments use the "gapsolve_"
//	prefix.
//
// Thread Safety: Safe for concurrent use after creation.
type Metrics struct {
	// SolverRunsTotal counts completed search runs.
	SolverRunsTotal metric.Int64Counter

	// SolverRunDuration records run duration in seconds.
	SolverRunDuration metric.Float64Histogram

	// SolverStepsTotal counts expansion steps across all runs.
	SolverStepsTotal metric.Int64Counter

	// SolverStatesGenerated counts successor states inserted into the
	// frontier.
	SolverStatesGenerated metric.Int64Counter

	// SolverTerminalStates counts recorded finished assignments.
	SolverTerminalStates metric.Int64Counter

	// SolverNewBestTotal counts best-assignment improvements.
	SolverNewBestTotal metric.Int64Counter
}

// NewMetrics creates all solver instruments on the given meter.
//
// Inputs:
//   - meter: The otel meter to create instruments on.
//
// Outputs:
//   - *Metrics: All instruments, ready to record.
//   - error: Non-nil if any instrument fails to register.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.SolverRunsTotal, err = meter.Int64Counter(
		"gapsolve_runs_total",
		metric.WithDescription("Total completed search runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create runs_total: %w", err)
	}

	m.SolverRunDuration, err = meter.Float64Histogram(
		"gapsolve_run_duration_seconds",
		metric.WithDescription("Search run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 300),
	)
	if err != nil {
		return nil, fmt.Errorf("create run_duration: %w", err)
	}

	m.SolverStepsTotal, err = meter.Int64Counter(
		"gapsolve_steps_total",
		metric.WithDescription("Total expansion steps"),
		metric.WithUnit("{step}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create steps_total: %w", err)
	}

	m.SolverStatesGenerated, err = meter.Int64Counter(
		"gapsolve_states_generated_total",
		metric.WithDescription("Successor states inserted into the frontier"),
		metric.WithUnit("{state}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create states_generated: %w", err)
	}

	m.SolverTerminalStates, err = meter.Int64Counter(
		"gapsolve_terminal_states_total",
		metric.WithDescription("Recorded finished assignments"),
		metric.WithUnit("{state}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create terminal_states: %w", err)
	}

	m.SolverNewBestTotal, err = meter.Int64Counter(
		"gapsolve_new_best_total",
		metric.WithDescription("Best-assignment improvements"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create new_best_total: %w", err)
	}

	return m, nil
}

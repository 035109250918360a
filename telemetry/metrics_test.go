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
	"context"
	"testing"

	"go.opentelemetry.io/otel/metric/noop"
)

func TestNewMetrics(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	m, err := NewMetrics(meter)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	if m.SolverRunsTotal == nil {
		t.Error("SolverRunsTotal is nil")
	}
	if m.SolverRunDuration == nil {
		t.Error("SolverRunDuration is nil")
	}
	if m.SolverStepsTotal == nil {
		t.Error("SolverStepsTotal is nil")
	}
	if m.SolverStatesGenerated == nil {
		t.Error("SolverStatesGenerated is nil")
	}
	if m.SolverTerminalStates == nil {
		t.Error("SolverTerminalStates is nil")
	}
	if m.SolverNewBestTotal == nil {
		t.Error("SolverNewBestTotal is nil")
	}
}

func TestMetrics_Record(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	m, err := NewMetrics(meter)
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	// Recording on noop instruments must not panic.
	ctx := context.Background()
	m.SolverRunsTotal.Add(ctx, 1)
	m.SolverRunDuration.Record(ctx, 0.25)
	m.SolverStepsTotal.Add(ctx, 10)
	m.SolverStatesGenerated.Add(ctx, 5)
	m.SolverTerminalStates.Add(ctx, 2)
	m.SolverNewBestTotal.Add(ctx, 1)
}

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

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const solverTracerName = "gapsolve.solver"

// ObservabilityConfig controls tracing for the solver.
type ObservabilityConfig struct {
	// TracingEnabled turns span emission on.
	TracingEnabled bool `json:"tracing_enabled" yaml:"tracing_enabled"`
}

// SearchTracer provides OpenTelemetry tracing for search runs.
//
// Thread Safety: Safe for concurrent use.
type SearchTracer struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	enabled bool
}

// NewSearchTracer creates a new tracer.
//
// Inputs:
//   - logger: Logger for structured logging (can be nil for the default).
//   - config: Observability configuration.
//
// Outputs:
//   - *SearchTracer: Tracer instance.
func NewSearchTracer(logger *slog.Logger, config ObservabilityConfig) *SearchTracer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchTracer{
		tracer:  otel.Tracer(solverTracerName),
		logger:  logger,
		enabled: config.TracingEnabled,
	}
}

// StartRun starts a span for an entire search run.
//
// Inputs:
//   - ctx: Parent context.
//   - problem: The problem being solved.
//   - config: Run configuration.
//
// Outputs:
//   - context.Context: Context with span.
//   - trace.Span: The created span (noop if tracing disabled).
func (t *SearchTracer) StartRun(ctx context.Context, problem *Problem, config Config) (context.Context, trace.Span) {
	if !t.enabled {
		return ctx, noop.Span{}
	}

	ctx, span := t.tracer.Start(ctx, "solver.run",
		trace.WithAttributes(
			attribute.Int("solver.agents", len(problem.Agents)),
			attribute.Int("solver.tasks", len(problem.Tasks)),
			attribute.Bool("solver.complete", config.Complete),
			attribute.Bool("solver.fair", config.Fair),
			attribute.Int("solver.max_steps", config.MaxSteps),
			attribute.String("solver.time_limit", config.TimeLimit.String()),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	t.logger.InfoContext(ctx, "search run started",
		slog.Int("agents", len(problem.Agents)),
		slog.Int("tasks", len(problem.Tasks)),
		slog.Bool("complete", config.Complete),
		slog.Bool("fair", config.Fair),
	)

	return ctx, span
}

// EndRun completes the run span.
//
// Inputs:
//   - span: The span to end.
//   - result: Run summary (can be nil).
//   - err: Error if the run stopped early.
func (t *SearchTracer) EndRun(span trace.Span, result *Result, err error) {
	if span == nil {
		return
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	if result != nil {
		span.SetAttributes(
			attribute.Int("solver.result.steps", result.Steps),
			attribute.Int("solver.result.states_generated", result.StatesGenerated),
			attribute.Int("solver.result.finished", result.Stats.TotalFinished),
			attribute.Float64("solver.result.best_profit", result.Stats.BestProfit),
			attribute.Float64("solver.result.best_fair_profit", result.Stats.BestFairProfit),
			attribute.Bool("solver.result.exhausted", result.Exhausted),
			attribute.String("solver.result.elapsed", result.Elapsed.String()),
		)
	}

	span.End()
}

// RecordNewBest adds a span event for an improved best assignment.
func (t *SearchTracer) RecordNewBest(ctx context.Context, s *State, profit float64) {
	if t.enabled {
		span := trace.SpanFromContext(ctx)
		span.AddEvent("solver.new_best",
			trace.WithAttributes(
				attribute.String("solver.state", s.ID()),
				attribute.Float64("solver.profit", profit),
			),
		)
	}

	t.logger.DebugContext(ctx, "new best assignment",
		slog.String("state", s.ID()),
		slog.Float64("profit", profit),
	)
}

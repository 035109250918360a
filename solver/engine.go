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
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/gapsolve/telemetry"
)

// Config configures one search run.
type Config struct {
	// Complete requires every agent and task to exhaust its budget
	// exactly; terminal states with slack are explored but not recorded.
	Complete bool `json:"complete" yaml:"complete"`

	// Fair maximizes the profit of the worst-off task first, using
	// total profit only as a tie-break.
	Fair bool `json:"fair" yaml:"fair"`

	// Verbose also reports terminal states that tie the current best.
	Verbose bool `json:"verbose" yaml:"verbose"`

	// MaxSteps bounds the number of expansion steps. 0 means unlimited.
	MaxSteps int `json:"max_steps" yaml:"max_steps"`

	// TimeLimit bounds the wall-clock duration of Run. 0 means unlimited.
	TimeLimit time.Duration `json:"time_limit" yaml:"time_limit"`
}

// DefaultConfig returns the default run configuration: plain profit
// maximization, exhaustive, no limits.
func DefaultConfig() Config {
	return Config{}
}

// Result summarizes a search run.
type Result struct {
	// Stats is the tracker's end-of-run summary.
	Stats Stats `json:"stats"`

	// Steps is the number of expansion steps performed.
	Steps int `json:"steps"`

	// StatesGenerated is the number of successor states inserted into
	// the frontier over the whole run.
	StatesGenerated int `json:"states_generated"`

	// Exhausted is true when the frontier emptied, i.e. the reachable
	// assignment lattice was fully enumerated and Stats holds the true
	// optimum. False results are anytime best guesses.
	Exhausted bool `json:"exhausted"`

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed"`
}

// Engine drives the profit-ordered exhaustive enumeration of the
// assignment lattice.
//
// Description:
//
//	The engine owns the open (frontier) and closed (explored) registries
//	and a cache of total profits populated at state generation time.
//	Each Step selects the open state with the highest cached profit,
//	moves it to the closed set, inserts its feasible successors into the
//	frontier, and hands terminal states to the tracker. Profit ties are
//	broken by the lexicographically smallest canonical state key, so
//	exploration order — and therefore the representative best — is
//	deterministic.
//
//	Termination is guaranteed: the lattice is finite (bounded by
//	budgets) and every transition strictly adds one (agent, task) pair,
//	so the search cannot cycle.
//
// Thread Safety: NOT safe for concurrent use. One engine drives one run.
type Engine struct {
	problem *Problem
	config  Config

	eval    *Evaluator
	profits *ProfitEvaluator
	tracker *Tracker

	// Frontier and explored registries, keyed by canonical state key.
	open     map[string]*State
	profitOf map[string]float64
	closed   map[string]struct{}

	steps     int
	generated int
	finished  bool

	reporter Reporter
	logger   *slog.Logger
	tracer   *SearchTracer
	metrics  *telemetry.Metrics

	// Run-scoped context for reporter interception.
	runCtx context.Context
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithReporter sets the progress reporter.
func WithReporter(reporter Reporter) Option {
	return func(e *Engine) {
		e.reporter = reporter
	}
}

// WithTracer sets the tracer for observability.
func WithTracer(tracer *SearchTracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

// WithMetrics sets the metric instruments recorded during the run.
func WithMetrics(metrics *telemetry.Metrics) Option {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

// NewEngine creates an engine for the given problem.
//
// Description:
//
//	Validates the problem, builds the evaluators and the tracker, and
//	seeds the frontier with the initial state (empty assignment merged
//	with hard assignments) at cached profit 0.
//
// Inputs:
//   - problem: The assignment problem. Validated here.
//   - config: Run configuration.
//   - opts: Optional logger, reporter, tracer, metrics.
//
// Outputs:
//   - *Engine: Ready to run.
//   - error: Non-nil if the problem is structurally invalid.
func NewEngine(problem *Problem, config Config, opts ...Option) (*Engine, error) {
	if err := problem.Validate(); err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}

	e := &Engine{
		problem:  problem,
		config:   config,
		eval:     NewEvaluator(problem),
		profits:  NewProfitEvaluator(problem),
		open:     make(map[string]*State),
		profitOf: make(map[string]float64),
		closed:   make(map[string]struct{}),
		logger:   slog.Default().With(slog.String("component", "solver_engine")),
		runCtx:   context.Background(),
	}
	for _, opt := range opts {
		opt(e)
	}

	// The tracker notifies through the engine so span events and metrics
	// ride along with the caller's reporter.
	e.tracker = NewTracker(config.Fair, config.Verbose, engineReporter{engine: e})

	initial := problem.InitialState()
	e.open[initial.Key()] = initial
	e.profitOf[initial.Key()] = 0

	return e, nil
}

// Step performs exactly one expansion iteration.
//
// Description:
//
//	Selects the most promising open state, expands it, and records it
//	with the tracker if terminal (subject to the complete filter).
//	External callers wanting cancellation or timeouts interleave their
//	checks between Step calls; Run does exactly that.
//
// Outputs:
//   - bool: False when the frontier is empty and nothing was done. The
//     enumeration is exhaustive once Step returns false.
func (e *Engine) Step() bool {
	if len(e.open) == 0 {
		return false
	}

	key := e.selectMostPromising()
	current := e.open[key]
	profit := e.profitOf[key]
	delete(e.open, key)
	delete(e.profitOf, key)
	e.closed[key] = struct{}{}

	terminal := true
	for _, agent := range e.problem.Agents {
		for _, task := range e.eval.FeasibleNextTasks(agent, current) {
			terminal = false

			next := current.WithTask(agent, task)
			nextKey := next.Key()
			if _, explored := e.closed[nextKey]; explored {
				// Reached before via another insertion order.
				continue
			}
			if _, queued := e.open[nextKey]; queued {
				continue
			}
			e.open[nextKey] = next
			e.profitOf[nextKey] = e.profits.TotalProfit(next)
			e.generated++
			if e.metrics != nil {
				e.metrics.SolverStatesGenerated.Add(e.runCtx, 1)
			}
		}
	}

	if terminal {
		if !e.config.Complete || e.eval.IsComplete(current) {
			fairProfit := 0.0
			if e.config.Fair {
				fairProfit = e.profits.FairProfit(current)
			}
			e.tracker.Record(current, profit, fairProfit)
			if e.metrics != nil {
				e.metrics.SolverTerminalStates.Add(e.runCtx, 1)
			}
		}
	}

	e.steps++
	if e.metrics != nil {
		e.metrics.SolverStepsTotal.Add(e.runCtx, 1)
	}
	return true
}

// Run drives Step to frontier exhaustion, honoring context cancellation
// and the configured step and time limits.
//
// Description:
//
//	Returns the anytime best-so-far in all cases. When the run stops
//	early the error distinguishes the cause: ctx.Err() for cancellation,
//	ErrBudgetExhausted for step/time limits. The reporter's OnFinished
//	fires on every exit path.
//
// Inputs:
//   - ctx: Cancellation context, checked between expansion steps.
//
// Outputs:
//   - *Result: Run summary; Exhausted reports whether the enumeration
//     completed.
//   - error: Nil on exhaustion, otherwise the stop cause.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	var span trace.Span
	if e.tracer != nil {
		ctx, span = e.tracer.StartRun(ctx, e.problem, e.config)
	}
	e.runCtx = ctx

	var runErr error
loop:
	for {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			break loop
		default:
		}
		if e.config.MaxSteps > 0 && e.steps >= e.config.MaxSteps {
			runErr = &SolverError{Op: "Run", Err: fmt.Errorf("%w: step limit %d", ErrBudgetExhausted, e.config.MaxSteps)}
			break loop
		}
		if e.config.TimeLimit > 0 && time.Since(start) > e.config.TimeLimit {
			runErr = &SolverError{Op: "Run", Err: fmt.Errorf("%w: time limit %s", ErrBudgetExhausted, e.config.TimeLimit)}
			break loop
		}
		if !e.Step() {
			break loop
		}
	}

	stats := e.tracker.Finish()
	result := &Result{
		Stats:           stats,
		Steps:           e.steps,
		StatesGenerated: e.generated,
		Exhausted:       len(e.open) == 0 && runErr == nil,
		Elapsed:         time.Since(start),
	}

	if e.metrics != nil {
		e.metrics.SolverRunsTotal.Add(ctx, 1)
		e.metrics.SolverRunDuration.Record(ctx, result.Elapsed.Seconds())
	}
	if e.tracer != nil {
		e.tracer.EndRun(span, result, runErr)
	}

	e.logger.Info("search run finished",
		slog.Int("steps", result.Steps),
		slog.Int("states_generated", result.StatesGenerated),
		slog.Int("finished_assignments", stats.TotalFinished),
		slog.Float64("best_profit", stats.BestProfit),
		slog.Bool("exhausted", result.Exhausted),
	)

	return result, runErr
}

// BestSoFar returns the tracker's current statistics without ending the
// run. Useful between Step calls for anytime consumers.
func (e *Engine) BestSoFar() Stats {
	return e.tracker.Stats()
}

// Finished returns the finished assignments recorded so far, in
// insertion order.
func (e *Engine) Finished() []FinishedAssignment {
	return e.tracker.Finished()
}

// FrontierSize returns the number of unexplored states.
func (e *Engine) FrontierSize() int {
	return len(e.open)
}

// selectMostPromising returns the open-set key with the maximum cached
// profit, ties broken by the smallest canonical key.
func (e *Engine) selectMostPromising() string {
	var bestKey string
	bestProfit := 0.0
	first := true
	for key, profit := range e.profitOf {
		if first || profit > bestProfit || (profit == bestProfit && key < bestKey) {
			bestKey = key
			bestProfit = profit
			first = false
		}
	}
	return bestKey
}

// engineReporter forwards tracker notifications to the caller's reporter
// and records span events and metrics alongside.
type engineReporter struct {
	engine *Engine
}

func (r engineReporter) OnNewBest(s *State, profit float64) {
	e := r.engine
	if e.metrics != nil {
		e.metrics.SolverNewBestTotal.Add(e.runCtx, 1)
	}
	if e.tracer != nil {
		e.tracer.RecordNewBest(e.runCtx, s, profit)
	}
	if e.reporter != nil {
		e.reporter.OnNewBest(s, profit)
	}
}

func (r engineReporter) OnTie(s *State, profit float64) {
	if r.engine.reporter != nil {
		r.engine.reporter.OnTie(s, profit)
	}
}

func (r engineReporter) OnFinished(stats Stats) {
	if r.engine.reporter != nil {
		r.engine.reporter.OnFinished(stats)
	}
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package report provides Reporter implementations for search runs:
// structured logging and human-readable console output.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/AleutianAI/gapsolve/solver"
)

// LogReporter emits progress as structured log records.
//
// Thread Safety: As safe as the underlying logger; the engine invokes it
// from a single goroutine.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a reporter logging to the given logger. A nil
// logger falls back to slog.Default().
func NewLogReporter(logger *slog.Logger) *LogReporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogReporter{logger: logger.With(slog.String("component", "solver_report"))}
}

func (r *LogReporter) OnNewBest(s *solver.State, profit float64) {
	r.logger.Info("new best assignment",
		slog.Float64("profit", profit),
		slog.String("assignment", s.String()),
	)
}

func (r *LogReporter) OnTie(s *solver.State, profit float64) {
	r.logger.Debug("best assignment tie",
		slog.Float64("profit", profit),
		slog.String("assignment", s.String()),
	)
}

func (r *LogReporter) OnFinished(stats solver.Stats) {
	attrs := []any{
		slog.Int("total_finished", stats.TotalFinished),
		slog.Float64("best_profit", stats.BestProfit),
		slog.Int("best_count", stats.BestCount),
	}
	if stats.Best != nil {
		attrs = append(attrs, slog.String("best_assignment", stats.Best.String()))
	}
	r.logger.Info("search finished", attrs...)
}

// ConsoleReporter prints progress lines and final statistics in a
// compact, human-readable format.
//
// New-best lines are bolded when the writer is a terminal.
type ConsoleReporter struct {
	w    io.Writer
	fair bool
	tty  bool
}

// NewConsoleReporter creates a console reporter.
//
// Inputs:
//   - w: Destination writer. Nil means os.Stdout.
//   - fair: Label final statistics with the fairness criterion.
func NewConsoleReporter(w io.Writer, fair bool) *ConsoleReporter {
	if w == nil {
		w = os.Stdout
	}
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &ConsoleReporter{w: w, fair: fair, tty: tty}
}

func (r *ConsoleReporter) OnNewBest(s *solver.State, profit float64) {
	line := formatAssignment(s, profit)
	if r.tty {
		fmt.Fprintf(r.w, "\x1b[1m%s\x1b[0m\n", line)
		return
	}
	fmt.Fprintln(r.w, line)
}

func (r *ConsoleReporter) OnTie(s *solver.State, profit float64) {
	fmt.Fprintln(r.w, formatAssignment(s, profit))
}

func (r *ConsoleReporter) OnFinished(stats solver.Stats) {
	fmt.Fprintf(r.w, "\nTotal number of assignments: %d\n", stats.TotalFinished)
	if r.fair {
		fmt.Fprintf(r.w, "Maximum fair profit: %s\n", formatProfit(stats.BestProfit))
		fmt.Fprintf(r.w, "Number of max fair profit assignments: %d\n\n", stats.BestCount)
	} else {
		fmt.Fprintf(r.w, "Maximum profit: %s\n", formatProfit(stats.BestProfit))
		fmt.Fprintf(r.w, "Number of max profit assignments: %d\n\n", stats.BestCount)
	}

	if stats.Best == nil {
		return
	}
	fmt.Fprintln(r.w, "Example of a maximum profit assignment:")
	for _, agent := range stats.Best.Agents() {
		tasks := make([]string, 0, len(stats.Best.Tasks(agent)))
		for _, t := range stats.Best.Tasks(agent) {
			tasks = append(tasks, string(t))
		}
		fmt.Fprintf(r.w, "Agent: %s\tTasks: %s\n", agent, strings.Join(tasks, ", "))
	}
}

// formatAssignment renders one progress line, e.g.
// "6 - (a: t1), (b: t2), (c: t1)".
func formatAssignment(s *solver.State, profit float64) string {
	var b strings.Builder
	b.WriteString(formatProfit(profit))
	b.WriteString(" - ")
	for i, agent := range s.Agents() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		b.WriteString(string(agent))
		b.WriteString(": ")
		for j, task := range s.Tasks(agent) {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(string(task))
		}
		b.WriteString(")")
	}
	return b.String()
}

// formatProfit renders integral profits without a decimal point.
func formatProfit(p float64) string {
	if p == float64(int64(p)) {
		return fmt.Sprintf("%d", int64(p))
	}
	return fmt.Sprintf("%g", p)
}

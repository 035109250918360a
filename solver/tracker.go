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

// Reporter receives progress notifications from a search run.
//
// Description:
//
//	OnNewBest fires whenever the tracked best improves. OnTie fires only
//	in verbose mode, when a terminal state matches the current best
//	without improving it (informational). OnFinished fires once at run
//	end with the final statistics.
//
//	Implementations must not call back into the engine; they are invoked
//	synchronously from the search loop.
type Reporter interface {
	OnNewBest(s *State, profit float64)
	OnTie(s *State, profit float64)
	OnFinished(stats Stats)
}

// NopReporter discards all notifications.
type NopReporter struct{}

func (NopReporter) OnNewBest(*State, float64) {}

func (NopReporter) OnTie(*State, float64) {}

func (NopReporter) OnFinished(Stats) {}

// Stats summarizes a completed (or interrupted) search run.
type Stats struct {
	// TotalFinished is the number of recorded finished assignments.
	TotalFinished int `json:"total_finished"`

	// BestProfit is the total profit of the best assignment. In fair
	// mode this is the total profit of the fair-best assignment.
	BestProfit float64 `json:"best_profit"`

	// BestFairProfit is the fair profit of the best assignment. Only
	// meaningful in fair mode.
	BestFairProfit float64 `json:"best_fair_profit,omitempty"`

	// BestCount is the number of finished assignments whose total
	// profit equals BestProfit.
	BestCount int `json:"best_count"`

	// Best is the first-recorded finished assignment achieving
	// BestProfit, as a deterministic representative. Nil when no
	// finished assignment was recorded.
	Best *State `json:"-"`
}

// finished is one entry of the finished-assignment registry.
type finished struct {
	state      *State
	profit     float64
	fairProfit float64
}

// Tracker records terminal states and maintains the current best under
// the plain or fair criterion.
//
// Description:
//
//	The finished-assignment registry grows monotonically during a run
//	and never shrinks. Both bests start at 0, matching the assumption
//	that profits are non-negative: an empty-profit terminal state never
//	displaces the initial best of 0 and is reported only as a verbose
//	tie.
//
// Thread Safety: Not safe for concurrent use. Owned by one Engine.
type Tracker struct {
	fair     bool
	verbose  bool
	reporter Reporter

	// order preserves registry insertion order for the deterministic
	// representative choice.
	order    []string
	registry map[string]finished

	bestProfit     float64
	bestFairProfit float64
}

// NewTracker creates a tracker.
//
// Inputs:
//   - fair: Use the fairness criterion (worst-off task first, total
//     profit as tie-break).
//   - verbose: Also report ties of the current best.
//   - reporter: Progress sink. Nil means NopReporter.
func NewTracker(fair, verbose bool, reporter Reporter) *Tracker {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Tracker{
		fair:     fair,
		verbose:  verbose,
		reporter: reporter,
		registry: make(map[string]finished),
	}
}

// Record hands a terminal state to the tracker.
//
// Description:
//
//	The state is stored in the finished registry, the best is updated
//	per the active criterion, and the reporter is notified of
//	improvements (and, in verbose mode, ties). Recording the same state
//	twice is a no-op for the registry but the engine never does that:
//	each state is expanded exactly once.
//
// Inputs:
//   - s: Terminal state (already filtered for completeness by the engine).
//   - profit: Cached total profit of s.
//   - fairProfit: Fair profit of s. Ignored in plain mode.
func (tr *Tracker) Record(s *State, profit, fairProfit float64) {
	key := s.Key()
	if _, seen := tr.registry[key]; !seen {
		tr.order = append(tr.order, key)
		tr.registry[key] = finished{state: s, profit: profit, fairProfit: fairProfit}
	}

	if tr.fair {
		switch {
		case fairProfit > tr.bestFairProfit,
			fairProfit == tr.bestFairProfit && profit > tr.bestProfit:
			tr.bestFairProfit = fairProfit
			tr.bestProfit = profit
			tr.reporter.OnNewBest(s, profit)
		case tr.verbose && profit >= tr.bestProfit && fairProfit >= tr.bestFairProfit:
			tr.reporter.OnTie(s, profit)
		}
		return
	}

	if profit > tr.bestProfit {
		tr.bestProfit = profit
		tr.reporter.OnNewBest(s, profit)
	} else if tr.verbose && profit >= tr.bestProfit {
		tr.reporter.OnTie(s, profit)
	}
}

// BestProfit returns the current best total profit.
func (tr *Tracker) BestProfit() float64 {
	return tr.bestProfit
}

// BestFairProfit returns the current best fair profit (fair mode only).
func (tr *Tracker) BestFairProfit() float64 {
	return tr.bestFairProfit
}

// TotalFinished returns the size of the finished-assignment registry.
func (tr *Tracker) TotalFinished() int {
	return len(tr.registry)
}

// FinishedAssignment is one recorded terminal state with its profits.
// FairProfit is zero unless the run used the fairness criterion.
type FinishedAssignment struct {
	State      *State
	Profit     float64
	FairProfit float64
}

// Finished returns the recorded finished assignments in insertion order.
func (tr *Tracker) Finished() []FinishedAssignment {
	out := make([]FinishedAssignment, 0, len(tr.order))
	for _, key := range tr.order {
		entry := tr.registry[key]
		out = append(out, FinishedAssignment{
			State:      entry.state,
			Profit:     entry.profit,
			FairProfit: entry.fairProfit,
		})
	}
	return out
}

// Stats builds the end-of-run summary.
//
// The representative best is the first-recorded finished assignment whose
// total profit equals the final best, mirroring registry insertion order.
func (tr *Tracker) Stats() Stats {
	stats := Stats{
		TotalFinished:  len(tr.registry),
		BestProfit:     tr.bestProfit,
		BestFairProfit: tr.bestFairProfit,
	}
	for _, key := range tr.order {
		entry := tr.registry[key]
		if entry.profit == tr.bestProfit {
			if stats.Best == nil {
				stats.Best = entry.state
			}
			stats.BestCount++
		}
	}
	return stats
}

// Finish emits the final statistics to the reporter and returns them.
func (tr *Tracker) Finish() Stats {
	stats := tr.Stats()
	tr.reporter.OnFinished(stats)
	return stats
}

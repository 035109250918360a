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

// ProfitEvaluator computes the total and fair profit of a state.
//
// Thread Safety: Stateless apart from the problem reference; safe for
// concurrent use as long as the problem is not modified.
type ProfitEvaluator struct {
	problem *Problem
}

// NewProfitEvaluator creates a profit evaluator for the given problem.
func NewProfitEvaluator(problem *Problem) *ProfitEvaluator {
	return &ProfitEvaluator{problem: problem}
}

// TotalProfit sums profit(agent, task) over every pair in the state.
//
// Full recomputation; the engine caches the result per state at
// generation time, so each state is priced exactly once.
func (p *ProfitEvaluator) TotalProfit(s *State) float64 {
	total := 0.0
	for _, a := range s.Agents() {
		for _, t := range s.Tasks(a) {
			total += p.problem.Model.Profit(a, t)
		}
	}
	return total
}

// FairProfit returns the minimum, over all declared tasks, of the profit
// attributed to that task. A task with no assigned agents contributes 0
// and therefore dominates the minimum.
func (p *ProfitEvaluator) FairProfit(s *State) float64 {
	perTask := make(map[Task]float64, len(p.problem.Tasks))
	for _, t := range p.problem.Tasks {
		perTask[t] = 0
	}
	for _, a := range s.Agents() {
		for _, t := range s.Tasks(a) {
			perTask[t] += p.problem.Model.Profit(a, t)
		}
	}

	first := true
	min := 0.0
	for _, t := range p.problem.Tasks {
		if first || perTask[t] < min {
			min = perTask[t]
			first = false
		}
	}
	return min
}

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

import "sort"

// Evaluator answers budget and feasibility questions about states of one
// problem.
//
// Thread Safety: Stateless apart from the problem reference; safe for
// concurrent use as long as the problem is not modified.
type Evaluator struct {
	problem *Problem
}

// NewEvaluator creates an evaluator for the given problem.
func NewEvaluator(problem *Problem) *Evaluator {
	return &Evaluator{problem: problem}
}

// RemainingAgentBudget returns the agent's capacity minus the agent-side
// cost of every task it currently holds.
//
// A negative result is only possible with an internally inconsistent
// CostModel (cost exceeding budget on a pair the model itself admitted).
func (e *Evaluator) RemainingAgentBudget(agent Agent, s *State) float64 {
	remaining := e.problem.Model.AgentBudget(agent)
	for _, t := range s.Tasks(agent) {
		remaining -= e.problem.Model.AgentCost(agent, t)
	}
	return remaining
}

// RemainingTaskBudget returns the task's capacity minus the task-side
// cost contributed by every agent currently assigned to it.
func (e *Evaluator) RemainingTaskBudget(task Task, s *State) float64 {
	remaining := e.problem.Model.TaskBudget(task)
	for _, a := range s.AgentsFor(task) {
		remaining -= e.problem.Model.TaskCost(a, task)
	}
	return remaining
}

// FeasibleNextTasks returns the tasks the agent may still legally take:
// not already held, agent-side cost within the agent's remaining budget,
// task-side cost within the task's remaining budget.
//
// The result is sorted lexicographically so successor generation order is
// reproducible across runs.
func (e *Evaluator) FeasibleNextTasks(agent Agent, s *State) []Task {
	remaining := e.RemainingAgentBudget(agent, s)

	var feasible []Task
	for _, t := range e.problem.Tasks {
		if s.HasTask(agent, t) {
			continue
		}
		if e.problem.Model.AgentCost(agent, t) > remaining {
			continue
		}
		if e.problem.Model.TaskCost(agent, t) > e.RemainingTaskBudget(t, s) {
			continue
		}
		feasible = append(feasible, t)
	}
	sort.Slice(feasible, func(i, j int) bool { return feasible[i] < feasible[j] })
	return feasible
}

// IsTerminal reports whether no agent has any feasible next task.
func (e *Evaluator) IsTerminal(s *State) bool {
	for _, a := range e.problem.Agents {
		if len(e.FeasibleNextTasks(a, s)) > 0 {
			return false
		}
	}
	return true
}

// IsComplete reports whether every agent and every task has exactly zero
// remaining budget. Only meaningful for terminal states, but defined for
// any state.
func (e *Evaluator) IsComplete(s *State) bool {
	for _, a := range e.problem.Agents {
		if e.RemainingAgentBudget(a, s) != 0 {
			return false
		}
	}
	for _, t := range e.problem.Tasks {
		if e.RemainingTaskBudget(t, s) != 0 {
			return false
		}
	}
	return true
}

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
	"fmt"
	"sort"
)

// CostModel supplies budgets, costs and profits for a search run.
//
// Description:
//
//	All five operations must be pure and deterministic for the lifetime
//	of a run, and must not read or mutate any state owned by the engine.
//	Budgets and costs are expected to be non-negative; profits are
//	assumed non-negative for the optimality guarantee. None of this is
//	validated at runtime — a misbehaving model yields undefined results,
//	not an error.
//
//	Values are float64. The complete-assignment check compares remaining
//	budgets against exact zero, so models should stick to exactly
//	representable (typically integral) values when the complete
//	constraint is in play.
type CostModel interface {
	// AgentBudget returns the total capacity of an agent.
	AgentBudget(a Agent) float64

	// AgentCost returns the agent-side cost of assigning a to t.
	AgentCost(a Agent, t Task) float64

	// TaskBudget returns the total capacity of a task.
	TaskBudget(t Task) float64

	// TaskCost returns the task-side cost of assigning a to t.
	TaskCost(a Agent, t Task) float64

	// Profit returns the profit of assigning a to t.
	Profit(a Agent, t Task) float64
}

// FuncModel adapts five plain functions into a CostModel.
//
// All fields are required; a nil field panics on use. Callers wanting
// defaults should build a TableModel instead.
type FuncModel struct {
	AgentBudgetFunc func(a Agent) float64
	AgentCostFunc   func(a Agent, t Task) float64
	TaskBudgetFunc  func(t Task) float64
	TaskCostFunc    func(a Agent, t Task) float64
	ProfitFunc      func(a Agent, t Task) float64
}

func (m FuncModel) AgentBudget(a Agent) float64 { return m.AgentBudgetFunc(a) }

func (m FuncModel) AgentCost(a Agent, t Task) float64 { return m.AgentCostFunc(a, t) }

func (m FuncModel) TaskBudget(t Task) float64 { return m.TaskBudgetFunc(t) }

func (m FuncModel) TaskCost(a Agent, t Task) float64 { return m.TaskCostFunc(a, t) }

func (m FuncModel) Profit(a Agent, t Task) float64 { return m.ProfitFunc(a, t) }

// TableModel is a CostModel backed by lookup tables with explicit
// per-table defaults. Missing entries fall back to the table's default;
// there is no implicit global default.
type TableModel struct {
	// AgentBudgets maps agent → capacity.
	AgentBudgets map[Agent]float64

	// TaskBudgets maps task → capacity.
	TaskBudgets map[Task]float64

	// AgentCosts maps (agent, task) → agent-side cost.
	AgentCosts map[Pair]float64

	// TaskCosts maps (agent, task) → task-side cost.
	TaskCosts map[Pair]float64

	// Profits maps (agent, task) → profit.
	Profits map[Pair]float64

	// DefaultAgentCost is used for pairs absent from AgentCosts.
	DefaultAgentCost float64

	// DefaultTaskCost is used for pairs absent from TaskCosts.
	DefaultTaskCost float64

	// DefaultProfit is used for pairs absent from Profits.
	DefaultProfit float64
}

func (m *TableModel) AgentBudget(a Agent) float64 { return m.AgentBudgets[a] }

func (m *TableModel) TaskBudget(t Task) float64 { return m.TaskBudgets[t] }

func (m *TableModel) AgentCost(a Agent, t Task) float64 {
	if c, ok := m.AgentCosts[Pair{Agent: a, Task: t}]; ok {
		return c
	}
	return m.DefaultAgentCost
}

func (m *TableModel) TaskCost(a Agent, t Task) float64 {
	if c, ok := m.TaskCosts[Pair{Agent: a, Task: t}]; ok {
		return c
	}
	return m.DefaultTaskCost
}

func (m *TableModel) Profit(a Agent, t Task) float64 {
	if p, ok := m.Profits[Pair{Agent: a, Task: t}]; ok {
		return p
	}
	return m.DefaultProfit
}

// Problem is a complete assignment problem definition.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after the
// engine has been constructed from it.
type Problem struct {
	// Agents is the agent set. Required, no duplicates.
	Agents []Agent

	// Tasks is the task set. Required, no duplicates.
	Tasks []Task

	// Model supplies budgets, costs and profits. Required.
	Model CostModel

	// Hard maps agents to tasks forced into the initial state. Optional.
	// Hard assignments count against budgets like any other assignment.
	Hard map[Agent][]Task
}

// Validate checks the structural preconditions of the problem.
//
// Description:
//
//	Catches empty or duplicated agent/task sets, a missing model, and
//	hard assignments referencing undeclared agents or tasks. It does not
//	attempt to validate CostModel behavior (purity, sign); those are
//	documented preconditions.
//
// Outputs:
//   - error: Non-nil on the first violation found, wrapping a package
//     sentinel error.
func (p *Problem) Validate() error {
	if len(p.Agents) == 0 {
		return &SolverError{Op: "Validate", Err: fmt.Errorf("%w: empty agent set", ErrInvalidProblem)}
	}
	if len(p.Tasks) == 0 {
		return &SolverError{Op: "Validate", Err: fmt.Errorf("%w: empty task set", ErrInvalidProblem)}
	}
	if p.Model == nil {
		return &SolverError{Op: "Validate", Err: fmt.Errorf("%w: nil cost model", ErrInvalidProblem)}
	}

	agents := make(map[Agent]struct{}, len(p.Agents))
	for _, a := range p.Agents {
		if _, dup := agents[a]; dup {
			return &SolverError{Op: "Validate", Err: fmt.Errorf("%w: duplicate agent %q", ErrInvalidProblem, a)}
		}
		agents[a] = struct{}{}
	}
	tasks := make(map[Task]struct{}, len(p.Tasks))
	for _, t := range p.Tasks {
		if _, dup := tasks[t]; dup {
			return &SolverError{Op: "Validate", Err: fmt.Errorf("%w: duplicate task %q", ErrInvalidProblem, t)}
		}
		tasks[t] = struct{}{}
	}

	for a, forced := range p.Hard {
		if _, ok := agents[a]; !ok {
			return &SolverError{Op: "Validate", Err: fmt.Errorf("%w: hard assignment references unknown agent %q", ErrUnknownAgent, a)}
		}
		for _, t := range forced {
			if _, ok := tasks[t]; !ok {
				return &SolverError{Op: "Validate", Err: fmt.Errorf("%w: hard assignment references unknown task %q", ErrUnknownTask, t)}
			}
		}
	}
	return nil
}

// InitialState builds the starting state: every agent with an empty task
// set, merged with the hard assignments.
func (p *Problem) InitialState() *State {
	s := NewState(p.Agents)
	for _, a := range sortedHardAgents(p.Hard) {
		for _, t := range p.Hard[a] {
			s = s.WithTask(a, t)
		}
	}
	return s
}

// sortedHardAgents fixes the hard-assignment merge order independent of
// map iteration.
func sortedHardAgents(hard map[Agent][]Task) []Agent {
	agents := make([]Agent, 0, len(hard))
	for a := range hard {
		agents = append(agents, a)
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i] < agents[j] })
	return agents
}

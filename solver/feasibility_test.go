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
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRemainingBudgets verifies both budget ledgers against a known state.
func TestRemainingBudgets(t *testing.T) {
	p := referenceProblem()
	eval := NewEvaluator(p)

	s := p.InitialState()
	assert.Equal(t, 1.0, eval.RemainingAgentBudget("a", s))
	assert.Equal(t, 2.0, eval.RemainingAgentBudget("b", s))
	assert.Equal(t, 2.0, eval.RemainingTaskBudget("t1", s))

	s = s.WithTask("b", "t1")
	assert.Equal(t, 1.0, eval.RemainingAgentBudget("b", s))
	assert.Equal(t, 1.0, eval.RemainingTaskBudget("t1", s))
	assert.Equal(t, 2.0, eval.RemainingTaskBudget("t2", s))

	s = s.WithTask("a", "t1")
	assert.Equal(t, 0.0, eval.RemainingAgentBudget("a", s))
	assert.Equal(t, 0.0, eval.RemainingTaskBudget("t1", s))
}

// TestFeasibleNextTasks_ExcludesHeld verifies an agent is never offered a
// task it already holds.
func TestFeasibleNextTasks_ExcludesHeld(t *testing.T) {
	p := referenceProblem()
	eval := NewEvaluator(p)

	s := p.InitialState().WithTask("b", "t1")
	assert.Equal(t, []Task{"t2"}, eval.FeasibleNextTasks("b", s))
}

// TestFeasibleNextTasks_AgentBudget verifies agent-side budget pruning.
func TestFeasibleNextTasks_AgentBudget(t *testing.T) {
	p := referenceProblem()
	eval := NewEvaluator(p)

	// Agent a has budget 1; after one task nothing further fits.
	s := p.InitialState().WithTask("a", "t1")
	assert.Empty(t, eval.FeasibleNextTasks("a", s))
}

// TestFeasibleNextTasks_TaskBudget verifies task-side budget pruning.
func TestFeasibleNextTasks_TaskBudget(t *testing.T) {
	p := referenceProblem()
	eval := NewEvaluator(p)

	// Task t1 has budget 2; once two agents hold it, a third may not.
	s := p.InitialState().WithTask("a", "t1").WithTask("b", "t1")
	assert.Equal(t, []Task{"t2"}, eval.FeasibleNextTasks("c", s))
}

// TestFeasibleNextTasks_Sorted verifies the deterministic ordering.
func TestFeasibleNextTasks_Sorted(t *testing.T) {
	p := referenceProblem()
	eval := NewEvaluator(p)

	assert.Equal(t, []Task{"t1", "t2"}, eval.FeasibleNextTasks("b", p.InitialState()))
}

// TestIsTerminal tests the no-feasible-successor predicate.
func TestIsTerminal(t *testing.T) {
	p := referenceProblem()
	eval := NewEvaluator(p)

	assert.False(t, eval.IsTerminal(p.InitialState()))

	full := p.InitialState().
		WithTask("a", "t1").
		WithTask("b", "t1").
		WithTask("b", "t2").
		WithTask("c", "t2")
	assert.True(t, eval.IsTerminal(full))
}

// TestIsComplete verifies the exact-exhaustion predicate on both sides.
func TestIsComplete(t *testing.T) {
	p := referenceProblem()
	eval := NewEvaluator(p)

	assert.False(t, eval.IsComplete(p.InitialState()))

	full := p.InitialState().
		WithTask("a", "t1").
		WithTask("b", "t1").
		WithTask("b", "t2").
		WithTask("c", "t2")
	assert.True(t, eval.IsComplete(full))

	// One unfilled agent slot breaks completeness.
	partial := p.InitialState().
		WithTask("a", "t1").
		WithTask("b", "t1").
		WithTask("c", "t2")
	assert.False(t, eval.IsComplete(partial))
}

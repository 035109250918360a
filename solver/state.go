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
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// Agent identifies an entity that takes on tasks, subject to a budget.
type Agent string

// Task identifies an entity that receives agents, subject to a budget.
type Task string

// State is an immutable snapshot of an assignment: which tasks each agent
// currently holds.
//
// Description:
//
//	States are value objects. Two states are equal iff their agent→tasks
//	mappings are equal; equality is expressed through the canonical Key,
//	which also serves as the deterministic secondary ordering key for
//	frontier selection. A State is never mutated after construction;
//	WithTask builds a new State that shares no mutable data with its
//	parent.
//
// Thread Safety: Immutable after creation; safe for concurrent use.
type State struct {
	// assigned maps each agent to its sorted task list. Never mutated.
	assigned map[Agent][]Task

	// key is the canonical serialization: agents in lexicographic order,
	// each followed by its tasks in lexicographic order.
	key string
}

// NewState creates the base state: every agent present, no tasks assigned.
func NewState(agents []Agent) *State {
	assigned := make(map[Agent][]Task, len(agents))
	for _, a := range agents {
		assigned[a] = nil
	}
	return &State{assigned: assigned, key: canonicalKey(assigned)}
}

// WithTask returns a new State with task added to agent's set.
//
// Description:
//
//	The receiver is left untouched. Adding a task the agent already
//	holds returns a state equal to the receiver.
//
// Inputs:
//   - agent: The agent receiving the task. Must exist in the state.
//   - task: The task to add.
//
// Outputs:
//   - *State: The successor state.
func (s *State) WithTask(agent Agent, task Task) *State {
	next := make(map[Agent][]Task, len(s.assigned))
	for a, tasks := range s.assigned {
		if a != agent {
			next[a] = tasks
			continue
		}
		merged := make([]Task, 0, len(tasks)+1)
		inserted := false
		for _, t := range tasks {
			if t == task {
				// Already held; keep the set semantics.
				inserted = true
			}
			if !inserted && t > task {
				merged = append(merged, task)
				inserted = true
			}
			merged = append(merged, t)
		}
		if !inserted {
			merged = append(merged, task)
		}
		next[a] = merged
	}
	return &State{assigned: next, key: canonicalKey(next)}
}

// Key returns the canonical serialization of the state.
//
// The key is stable across runs and implementations: it depends only on
// the agent→tasks mapping, never on map iteration order.
func (s *State) Key() string {
	return s.key
}

// ID returns a short content hash of the state, suitable for log lines.
func (s *State) ID() string {
	sum := sha256.Sum256([]byte(s.key))
	return hex.EncodeToString(sum[:])[:12]
}

// Agents returns the agents of the state in lexicographic order.
func (s *State) Agents() []Agent {
	agents := make([]Agent, 0, len(s.assigned))
	for a := range s.assigned {
		agents = append(agents, a)
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i] < agents[j] })
	return agents
}

// Tasks returns the tasks held by agent, in lexicographic order. The
// returned slice must not be modified.
func (s *State) Tasks(agent Agent) []Task {
	return s.assigned[agent]
}

// HasTask reports whether agent currently holds task.
func (s *State) HasTask(agent Agent, task Task) bool {
	for _, t := range s.assigned[agent] {
		if t == task {
			return true
		}
	}
	return false
}

// AgentsFor returns the agents assigned to task, in lexicographic order.
func (s *State) AgentsFor(task Task) []Agent {
	var agents []Agent
	for a, tasks := range s.assigned {
		for _, t := range tasks {
			if t == task {
				agents = append(agents, a)
				break
			}
		}
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i] < agents[j] })
	return agents
}

// Pairs returns every (agent, task) pair present in the state, ordered by
// agent then task.
func (s *State) Pairs() []Pair {
	var pairs []Pair
	for _, a := range s.Agents() {
		for _, t := range s.assigned[a] {
			pairs = append(pairs, Pair{Agent: a, Task: t})
		}
	}
	return pairs
}

// Pair is a single (agent, task) assignment.
type Pair struct {
	Agent Agent `json:"agent"`
	Task  Task  `json:"task"`
}

// Equal reports structural equality of two states.
func (s *State) Equal(other *State) bool {
	if other == nil {
		return false
	}
	return s.key == other.key
}

// String renders the state on a single line, e.g. "(a: t1, t2), (b: t1)".
func (s *State) String() string {
	var b strings.Builder
	for i, a := range s.Agents() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		b.WriteString(string(a))
		b.WriteString(":")
		for j, t := range s.assigned[a] {
			if j > 0 {
				b.WriteString(",")
			}
			b.WriteString(" ")
			b.WriteString(string(t))
		}
		b.WriteString(")")
	}
	return b.String()
}

// canonicalKey serializes an agent→tasks mapping deterministically.
// Task lists are assumed sorted (State maintains that invariant).
// Identifiers are escaped so names containing the key delimiters cannot
// make structurally different states collide.
func canonicalKey(assigned map[Agent][]Task) string {
	agents := make([]string, 0, len(assigned))
	for a := range assigned {
		agents = append(agents, string(a))
	}
	sort.Strings(agents)

	var b strings.Builder
	for i, a := range agents {
		if i > 0 {
			b.WriteByte(';')
		}
		b.WriteString(escapeKeyPart(a))
		b.WriteByte('=')
		for j, t := range assigned[Agent(a)] {
			if j > 0 {
				b.WriteByte(',')
			}
			b.WriteString(escapeKeyPart(string(t)))
		}
	}
	return b.String()
}

// escapeKeyPart backslash-escapes the canonical-key delimiters in an
// identifier.
func escapeKeyPart(s string) string {
	if !strings.ContainsAny(s, `\;=,`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	for _, r := range s {
		switch r {
		case '\\', ';', '=', ',':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

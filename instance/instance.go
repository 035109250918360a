// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package instance loads assignment problem instances from YAML or JSON
// files and turns them into solver problems and run configurations.
package instance

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/gapsolve/solver"
)

// Package-level error definitions.
var (
	ErrParse       = errors.New("parse instance")
	ErrInvalidPair = errors.New("invalid pair key")
)

// instanceValidate is the validator instance for instance files.
var instanceValidate *validator.Validate

func init() {
	instanceValidate = validator.New()
}

// Instance is a file-level description of an assignment problem plus its
// run configuration.
//
// Pair-keyed tables use "agent/task" keys, e.g. "alice/review". Costs
// and profits omitted from the tables fall back to the explicit default
// for that table; there is no implicit global default.
type Instance struct {
	// Name labels the instance in logs and the results archive.
	Name string `json:"name" yaml:"name" validate:"required"`

	// Agents maps agent identifier → capacity budget.
	Agents map[string]float64 `json:"agents" yaml:"agents" validate:"required,min=1"`

	// Tasks maps task identifier → capacity budget.
	Tasks map[string]float64 `json:"tasks" yaml:"tasks" validate:"required,min=1"`

	// Costs holds the agent-side and task-side cost tables.
	Costs CostsSection `json:"costs" yaml:"costs"`

	// Profits holds the profit table.
	Profits ProfitsSection `json:"profits" yaml:"profits"`

	// Hard maps agent → tasks forced into the initial assignment.
	Hard map[string][]string `json:"hard,omitempty" yaml:"hard,omitempty"`

	// Run carries the search flags and limits.
	Run RunSection `json:"run" yaml:"run"`
}

// CostsSection declares per-pair costs with explicit defaults.
type CostsSection struct {
	// DefaultAgentCost applies to pairs absent from Agent.
	DefaultAgentCost float64 `json:"default_agent_cost" yaml:"default_agent_cost" validate:"gte=0"`

	// DefaultTaskCost applies to pairs absent from Task.
	DefaultTaskCost float64 `json:"default_task_cost" yaml:"default_task_cost" validate:"gte=0"`

	// Agent maps "agent/task" → agent-side cost.
	Agent map[string]float64 `json:"agent,omitempty" yaml:"agent,omitempty"`

	// Task maps "agent/task" → task-side cost.
	Task map[string]float64 `json:"task,omitempty" yaml:"task,omitempty"`
}

// ProfitsSection declares per-pair profits with an explicit default.
type ProfitsSection struct {
	// Default applies to pairs absent from Table.
	Default float64 `json:"default" yaml:"default" validate:"gte=0"`

	// Table maps "agent/task" → profit.
	Table map[string]float64 `json:"table,omitempty" yaml:"table,omitempty"`
}

// RunSection carries the run flags and limits.
type RunSection struct {
	// Complete requires exact budget exhaustion of recorded assignments.
	Complete bool `json:"complete" yaml:"complete"`

	// Fair maximizes the worst-off task's profit first.
	Fair bool `json:"fair" yaml:"fair"`

	// Verbose also reports ties of the current best.
	Verbose bool `json:"verbose" yaml:"verbose"`

	// MaxSteps bounds expansion steps. 0 means unlimited.
	MaxSteps int `json:"max_steps" yaml:"max_steps" validate:"gte=0"`

	// TimeLimit bounds wall-clock duration, as a Go duration string
	// ("30s", "5m"). Empty means unlimited.
	TimeLimit string `json:"time_limit,omitempty" yaml:"time_limit,omitempty"`
}

// Load reads an instance from a YAML or JSON file and applies
// environment overrides.
//
// Description:
//
//	YAML is tried first, JSON second. Environment variables override the
//	run flags:
//	GAPSOLVE_COMPLETE, GAPSOLVE_FAIR, GAPSOLVE_VERBOSE,
//	GAPSOLVE_MAX_STEPS, GAPSOLVE_TIME_LIMIT.
//
// Inputs:
//   - path: Path to the instance file.
//
// Outputs:
//   - *Instance: Parsed and validated instance.
//   - error: Non-nil if the file is unreadable, unparseable or invalid.
func Load(path string) (*Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read instance: %w", err)
	}

	inst := &Instance{}
	if err := yaml.Unmarshal(data, inst); err != nil {
		if jsonErr := json.Unmarshal(data, inst); jsonErr != nil {
			return nil, fmt.Errorf("%w (tried YAML and JSON): YAML error: %v, JSON error: %v", ErrParse, err, jsonErr)
		}
	}

	loadRunFromEnv(&inst.Run)

	if err := inst.Validate(); err != nil {
		return nil, fmt.Errorf("invalid instance: %w", err)
	}
	return inst, nil
}

func loadRunFromEnv(run *RunSection) {
	if v := os.Getenv("GAPSOLVE_COMPLETE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			run.Complete = b
		}
	}
	if v := os.Getenv("GAPSOLVE_FAIR"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			run.Fair = b
		}
	}
	if v := os.Getenv("GAPSOLVE_VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			run.Verbose = b
		}
	}
	if v := os.Getenv("GAPSOLVE_MAX_STEPS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			run.MaxSteps = i
		}
	}
	if v := os.Getenv("GAPSOLVE_TIME_LIMIT"); v != "" {
		run.TimeLimit = v
	}
}

// Validate checks the instance structurally: struct tags first, then
// pair keys and hard assignments against the declared sets.
func (in *Instance) Validate() error {
	if err := instanceValidate.Struct(in); err != nil {
		return err
	}

	for key := range in.Costs.Agent {
		if err := in.checkPair(key); err != nil {
			return err
		}
	}
	for key := range in.Costs.Task {
		if err := in.checkPair(key); err != nil {
			return err
		}
	}
	for key := range in.Profits.Table {
		if err := in.checkPair(key); err != nil {
			return err
		}
	}

	for agent, tasks := range in.Hard {
		if _, ok := in.Agents[agent]; !ok {
			return fmt.Errorf("hard assignment references unknown agent %q", agent)
		}
		for _, task := range tasks {
			if _, ok := in.Tasks[task]; !ok {
				return fmt.Errorf("hard assignment references unknown task %q", task)
			}
		}
	}

	if in.Run.TimeLimit != "" {
		if _, err := time.ParseDuration(in.Run.TimeLimit); err != nil {
			return fmt.Errorf("invalid time_limit %q: %w", in.Run.TimeLimit, err)
		}
	}
	return nil
}

func (in *Instance) checkPair(key string) error {
	agent, task, err := splitPair(key)
	if err != nil {
		return err
	}
	if _, ok := in.Agents[agent]; !ok {
		return fmt.Errorf("pair %q references unknown agent %q", key, agent)
	}
	if _, ok := in.Tasks[task]; !ok {
		return fmt.Errorf("pair %q references unknown task %q", key, task)
	}
	return nil
}

// splitPair splits an "agent/task" key.
func splitPair(key string) (agent, task string, err error) {
	idx := strings.Index(key, "/")
	if idx <= 0 || idx == len(key)-1 {
		return "", "", fmt.Errorf("%w: %q (want \"agent/task\")", ErrInvalidPair, key)
	}
	return key[:idx], key[idx+1:], nil
}

// Problem builds the solver problem for this instance.
//
// Outputs:
//   - *solver.Problem: Agents, tasks, a TableModel with the instance's
//     tables and defaults, and the hard assignments.
//   - error: Non-nil if a pair key fails to parse (Load already rules
//     this out; direct constructors may not have validated).
func (in *Instance) Problem() (*solver.Problem, error) {
	// Sorted sets keep expansion order independent of map iteration.
	agents := make([]solver.Agent, 0, len(in.Agents))
	agentBudgets := make(map[solver.Agent]float64, len(in.Agents))
	for a, budget := range in.Agents {
		agents = append(agents, solver.Agent(a))
		agentBudgets[solver.Agent(a)] = budget
	}
	sort.Slice(agents, func(i, j int) bool { return agents[i] < agents[j] })

	tasks := make([]solver.Task, 0, len(in.Tasks))
	taskBudgets := make(map[solver.Task]float64, len(in.Tasks))
	for t, budget := range in.Tasks {
		tasks = append(tasks, solver.Task(t))
		taskBudgets[solver.Task(t)] = budget
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i] < tasks[j] })

	agentCosts, err := pairTable(in.Costs.Agent)
	if err != nil {
		return nil, err
	}
	taskCosts, err := pairTable(in.Costs.Task)
	if err != nil {
		return nil, err
	}
	profits, err := pairTable(in.Profits.Table)
	if err != nil {
		return nil, err
	}

	var hard map[solver.Agent][]solver.Task
	if len(in.Hard) > 0 {
		hard = make(map[solver.Agent][]solver.Task, len(in.Hard))
		for a, forced := range in.Hard {
			ts := make([]solver.Task, 0, len(forced))
			for _, t := range forced {
				ts = append(ts, solver.Task(t))
			}
			hard[solver.Agent(a)] = ts
		}
	}

	return &solver.Problem{
		Agents: agents,
		Tasks:  tasks,
		Model: &solver.TableModel{
			AgentBudgets:     agentBudgets,
			TaskBudgets:      taskBudgets,
			AgentCosts:       agentCosts,
			TaskCosts:        taskCosts,
			Profits:          profits,
			DefaultAgentCost: in.Costs.DefaultAgentCost,
			DefaultTaskCost:  in.Costs.DefaultTaskCost,
			DefaultProfit:    in.Profits.Default,
		},
		Hard: hard,
	}, nil
}

func pairTable(table map[string]float64) (map[solver.Pair]float64, error) {
	if len(table) == 0 {
		return nil, nil
	}
	out := make(map[solver.Pair]float64, len(table))
	for key, value := range table {
		agent, task, err := splitPair(key)
		if err != nil {
			return nil, err
		}
		out[solver.Pair{Agent: solver.Agent(agent), Task: solver.Task(task)}] = value
	}
	return out, nil
}

// Config builds the solver run configuration for this instance.
func (in *Instance) Config() solver.Config {
	cfg := solver.Config{
		Complete: in.Run.Complete,
		Fair:     in.Run.Fair,
		Verbose:  in.Run.Verbose,
		MaxSteps: in.Run.MaxSteps,
	}
	if in.Run.TimeLimit != "" {
		if d, err := time.ParseDuration(in.Run.TimeLimit); err == nil {
			cfg.TimeLimit = d
		}
	}
	return cfg
}

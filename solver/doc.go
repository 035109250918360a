// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package solver implements a generalized multi-assignment solver.
//
// Architecture:
//
//	The solver assigns agents to tasks where each agent may take multiple
//	tasks and each task may receive multiple agents, under per-agent and
//	per-task budgets supplied by a caller CostModel, maximizing a caller
//	profit function.
//
//	┌──────────────────────────────────────────────────────────────┐
//	│                        SEARCH RUN                            │
//	├──────────────────────────────────────────────────────────────┤
//	│                                                              │
//	│   Engine.Run / Engine.Step                                   │
//	│      │                                                       │
//	│      ▼                                                       │
//	│   frontier ──max cached profit──▶ current state              │
//	│      ▲                                │                      │
//	│      │                                ▼                      │
//	│   Evaluator.FeasibleNextTasks ──▶ successor states           │
//	│      (budget checks)                  │                      │
//	│                                       ▼                      │
//	│   ProfitEvaluator ──────────▶ cached total profit            │
//	│                                       │                      │
//	│                         terminal?     ▼                      │
//	│   Tracker ◀──────────────────── finished state               │
//	│      │                                                       │
//	│      ▼                                                       │
//	│   Reporter (OnNewBest / OnTie / OnFinished)                  │
//	│                                                              │
//	└──────────────────────────────────────────────────────────────┘
//
// The search is an exhaustive, profit-ordered enumeration of the
// reachable assignment lattice: anytime best guesses while running, the
// true optimum once the frontier empties. It is not a pruned
// branch-and-bound; its cost is proportional to the number of reachable
// feasible partial assignments.
//
// Modes:
//
//	Plain:    maximize total profit.
//	Fair:     maximize the worst-off task's profit, total profit as
//	          tie-break.
//	Complete: only record terminal states in which every agent and task
//	          budget is exactly exhausted.
//
// CostModel Contract:
//
//	Cost and profit functions MUST:
//	1. Be pure and deterministic for the lifetime of a run
//	2. Return non-negative budgets and costs
//	3. Not touch engine-owned state
//
//	Violations are not detected; results are undefined.
package solver

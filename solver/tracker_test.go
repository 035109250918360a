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
	"github.com/stretchr/testify/require"
)

// captureReporter records every notification for assertions.
type captureReporter struct {
	newBest  []float64
	ties     []float64
	finished []Stats
}

func (r *captureReporter) OnNewBest(_ *State, profit float64) {
	r.newBest = append(r.newBest, profit)
}

func (r *captureReporter) OnTie(_ *State, profit float64) {
	r.ties = append(r.ties, profit)
}

func (r *captureReporter) OnFinished(stats Stats) {
	r.finished = append(r.finished, stats)
}

func trackerState(tasks ...Task) *State {
	s := NewState([]Agent{"a"})
	for _, t := range tasks {
		s = s.WithTask("a", t)
	}
	return s
}

// TestTracker_PlainImprovement verifies the plain-profit best policy.
func TestTracker_PlainImprovement(t *testing.T) {
	rep := &captureReporter{}
	tr := NewTracker(false, false, rep)

	tr.Record(trackerState("t1"), 2, 0)
	tr.Record(trackerState("t2"), 5, 0)
	tr.Record(trackerState("t3"), 5, 0) // tie, silent without verbose
	tr.Record(trackerState("t4"), 3, 0)

	assert.Equal(t, []float64{2, 5}, rep.newBest)
	assert.Empty(t, rep.ties)
	assert.Equal(t, 5.0, tr.BestProfit())
	assert.Equal(t, 4, tr.TotalFinished())
}

// TestTracker_VerboseTies verifies ties are reported only in verbose mode.
func TestTracker_VerboseTies(t *testing.T) {
	rep := &captureReporter{}
	tr := NewTracker(false, true, rep)

	tr.Record(trackerState("t1"), 5, 0)
	tr.Record(trackerState("t2"), 5, 0)
	tr.Record(trackerState("t3"), 4, 0)

	assert.Equal(t, []float64{5}, rep.newBest)
	assert.Equal(t, []float64{5}, rep.ties)
}

// TestTracker_FairOrdering verifies the fairness criterion: the worst-off
// task decides, total profit only breaks ties.
func TestTracker_FairOrdering(t *testing.T) {
	rep := &captureReporter{}
	tr := NewTracker(true, false, rep)

	// A lower total with a better fair profit wins.
	tr.Record(trackerState("t1"), 10, 1)
	tr.Record(trackerState("t2"), 7, 3)
	assert.Equal(t, 3.0, tr.BestFairProfit())
	assert.Equal(t, 7.0, tr.BestProfit())

	// Equal fair profit falls back to total profit.
	tr.Record(trackerState("t3"), 9, 3)
	assert.Equal(t, 9.0, tr.BestProfit())

	// A higher total with a worse fair profit does not displace the best.
	tr.Record(trackerState("t4"), 20, 2)
	assert.Equal(t, 3.0, tr.BestFairProfit())
	assert.Equal(t, 9.0, tr.BestProfit())

	assert.Equal(t, []float64{10, 7, 9}, rep.newBest)
}

// TestTracker_Stats verifies the summary: best count and the
// first-recorded representative.
func TestTracker_Stats(t *testing.T) {
	tr := NewTracker(false, false, nil)

	first := trackerState("t1")
	tr.Record(first, 5, 0)
	tr.Record(trackerState("t2"), 3, 0)
	tr.Record(trackerState("t3"), 5, 0)

	stats := tr.Stats()
	assert.Equal(t, 3, stats.TotalFinished)
	assert.Equal(t, 5.0, stats.BestProfit)
	assert.Equal(t, 2, stats.BestCount)
	require.NotNil(t, stats.Best)
	assert.True(t, first.Equal(stats.Best))
}

// TestTracker_EmptyStats verifies the zero-run summary.
func TestTracker_EmptyStats(t *testing.T) {
	tr := NewTracker(false, false, nil)

	stats := tr.Stats()
	assert.Equal(t, 0, stats.TotalFinished)
	assert.Equal(t, 0, stats.BestCount)
	assert.Nil(t, stats.Best)
}

// TestTracker_Finish verifies OnFinished fires with the final summary.
func TestTracker_Finish(t *testing.T) {
	rep := &captureReporter{}
	tr := NewTracker(false, false, rep)
	tr.Record(trackerState("t1"), 4, 0)

	stats := tr.Finish()
	require.Len(t, rep.finished, 1)
	assert.Equal(t, stats, rep.finished[0])
	assert.Equal(t, 4.0, stats.BestProfit)
}

// TestTracker_Finished verifies the registry accessor preserves insertion
// order.
func TestTracker_Finished(t *testing.T) {
	tr := NewTracker(false, false, nil)
	tr.Record(trackerState("t2"), 1, 0)
	tr.Record(trackerState("t1"), 2, 0)

	finished := tr.Finished()
	require.Len(t, finished, 2)
	assert.Equal(t, []Task{"t2"}, finished[0].State.Tasks("a"))
	assert.Equal(t, 1.0, finished[0].Profit)
	assert.Equal(t, []Task{"t1"}, finished[1].State.Tasks("a"))
}

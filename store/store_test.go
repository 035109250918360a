// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/gapsolve/solver"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(InMemoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func testRecord(id string, startedAt time.Time) *Record {
	return &Record{
		ID:        id,
		Instance:  "reference",
		StartedAt: startedAt,
		Stats:     solver.Stats{TotalFinished: 2, BestProfit: 9, BestCount: 1},
		Best: []solver.Pair{
			{Agent: "a", Task: "t1"},
			{Agent: "b", Task: "t1"},
			{Agent: "b", Task: "t2"},
			{Agent: "c", Task: "t2"},
		},
		Steps:           10,
		StatesGenerated: 12,
		Exhausted:       true,
		Elapsed:         25 * time.Millisecond,
	}
}

// TestOpen_RequiresPath verifies a persistent archive needs a path.
func TestOpen_RequiresPath(t *testing.T) {
	_, err := Open(Config{})
	require.Error(t, err)
}

// TestArchive_SaveLoad round-trips one record.
func TestArchive_SaveLoad(t *testing.T) {
	a := openTestArchive(t)

	want := testRecord("run-1", time.Now().UTC())
	require.NoError(t, a.Save(want))

	got, err := a.Load("run-1")
	require.NoError(t, err)
	assert.Equal(t, want.Instance, got.Instance)
	assert.Equal(t, want.Stats.BestProfit, got.Stats.BestProfit)
	assert.Equal(t, want.Best, got.Best)
	assert.Equal(t, want.Steps, got.Steps)
	assert.True(t, got.Exhausted)
}

// TestArchive_SaveEmptyID rejects records without an ID.
func TestArchive_SaveEmptyID(t *testing.T) {
	a := openTestArchive(t)
	assert.Error(t, a.Save(&Record{}))
}

// TestArchive_LoadNotFound verifies the sentinel error.
func TestArchive_LoadNotFound(t *testing.T) {
	a := openTestArchive(t)

	_, err := a.Load("missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

// TestArchive_List verifies listing sorts most recent first.
func TestArchive_List(t *testing.T) {
	a := openTestArchive(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, a.Save(testRecord("run-old", base)))
	require.NoError(t, a.Save(testRecord("run-new", base.Add(time.Hour))))
	require.NoError(t, a.Save(testRecord("run-mid", base.Add(time.Minute))))

	records, err := a.List()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "run-new", records[0].ID)
	assert.Equal(t, "run-mid", records[1].ID)
	assert.Equal(t, "run-old", records[2].ID)
}

// TestArchive_ListEmpty verifies an empty archive lists cleanly.
func TestArchive_ListEmpty(t *testing.T) {
	a := openTestArchive(t)

	records, err := a.List()
	require.NoError(t, err)
	assert.Empty(t, records)
}

// TestNewRecord builds a record from a run result.
func TestNewRecord(t *testing.T) {
	best := solver.NewState([]solver.Agent{"a"}).WithTask("a", "t1")
	result := &solver.Result{
		Stats:           solver.Stats{TotalFinished: 1, BestProfit: 3, BestCount: 1, Best: best},
		Steps:           2,
		StatesGenerated: 1,
		Exhausted:       true,
		Elapsed:         time.Millisecond,
	}

	rec := NewRecord("reference", solver.Config{Fair: true}, result)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "reference", rec.Instance)
	assert.True(t, rec.Fair)
	assert.False(t, rec.Complete)
	assert.Equal(t, []solver.Pair{{Agent: "a", Task: "t1"}}, rec.Best)
	assert.Equal(t, 2, rec.Steps)
}

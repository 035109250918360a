// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package store archives completed search runs in an embedded BadgerDB.
//
// The solver itself is stateless between runs; the archive is strictly a
// post-run record written by the CLI: the run's statistics and one
// representative best assignment, keyed by run ID.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/AleutianAI/gapsolve/solver"
)

// Package-level error definitions.
var (
	ErrNotFound = errors.New("run not found")
)

// runKeyPrefix namespaces run records in the key space.
const runKeyPrefix = "run/"

// Record is one archived search run.
type Record struct {
	// ID is the run identifier (UUID string).
	ID string `json:"id"`

	// Instance is the instance name the run solved.
	Instance string `json:"instance"`

	// StartedAt is when the run began, UTC.
	StartedAt time.Time `json:"started_at"`

	// Complete, Fair mirror the run flags.
	Complete bool `json:"complete"`
	Fair     bool `json:"fair"`

	// Stats is the end-of-run summary.
	Stats solver.Stats `json:"stats"`

	// Best is the representative best assignment as (agent, task) pairs.
	Best []solver.Pair `json:"best,omitempty"`

	// Steps, StatesGenerated and Exhausted mirror the run result.
	Steps           int  `json:"steps"`
	StatesGenerated int  `json:"states_generated"`
	Exhausted       bool `json:"exhausted"`

	// Elapsed is the wall-clock run duration.
	Elapsed time.Duration `json:"elapsed"`
}

// Config holds configuration for the run archive.
type Config struct {
	// Path is the directory for database files. Required unless
	// InMemory is true.
	Path string

	// InMemory keeps the archive in memory only. Useful for testing.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger is the logger for database operations. Nil disables
	// BadgerDB's internal logging.
	Logger *slog.Logger
}

// DefaultConfig returns production defaults: persistent, synchronous.
func DefaultConfig() Config {
	return Config{SyncWrites: true}
}

// InMemoryConfig returns configuration for tests: in-memory, async.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

// Archive is the run archive.
//
// Thread Safety: Safe for concurrent use.
type Archive struct {
	db *badger.DB
}

// Open creates and opens the run archive.
//
// Inputs:
//   - cfg: Archive configuration. Path is required unless InMemory.
//
// Outputs:
//   - *Archive: The opened archive. Caller must Close() when done.
//   - error: Non-nil if the path is invalid or the database cannot open.
func Open(cfg Config) (*Archive, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent archive")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("create archive directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// NewRecord builds an archive record from a run result.
//
// A fresh UUID becomes the run ID; the representative best assignment is
// flattened to (agent, task) pairs for storage.
func NewRecord(instanceName string, cfg solver.Config, result *solver.Result) *Record {
	rec := &Record{
		ID:              uuid.NewString(),
		Instance:        instanceName,
		StartedAt:       time.Now().UTC().Add(-result.Elapsed),
		Complete:        cfg.Complete,
		Fair:            cfg.Fair,
		Stats:           result.Stats,
		Steps:           result.Steps,
		StatesGenerated: result.StatesGenerated,
		Exhausted:       result.Exhausted,
		Elapsed:         result.Elapsed,
	}
	if result.Stats.Best != nil {
		rec.Best = result.Stats.Best.Pairs()
	}
	return rec
}

// Save writes a record to the archive.
//
// Inputs:
//   - rec: The record. ID must be non-empty.
//
// Outputs:
//   - error: Non-nil on serialization or write failure.
func (a *Archive) Save(rec *Record) error {
	if rec.ID == "" {
		return errors.New("record ID is empty")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	err = a.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(runKeyPrefix+rec.ID), data)
	})
	if err != nil {
		return fmt.Errorf("save record %s: %w", rec.ID, err)
	}
	return nil
}

// Load reads one record by run ID.
func (a *Archive) Load(id string) (*Record, error) {
	var rec Record
	err := a.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(runKeyPrefix + id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// List returns all archived records, most recent first.
func (a *Archive) List() ([]*Record, error) {
	var records []*Record
	err := a.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(runKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec Record
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			records = append(records, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	// Keys are UUIDs, so iteration order carries no meaning; sort by
	// start time instead.
	sort.Slice(records, func(i, j int) bool {
		return records[i].StartedAt.After(records[j].StartedAt)
	})
	return records, nil
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command gapsolve solves generalized multi-assignment problems from
// instance files.
//
// Usage:
//
//	gapsolve solve instance.yaml
//	gapsolve solve instance.yaml --fair --complete --verbose
//	gapsolve solve instance.yaml --archive ./runs --time-limit 30s
//	gapsolve runs list --archive ./runs
//	gapsolve runs show <run-id> --archive ./runs
//
// With tracing / metrics:
//
//	OTEL_TRACES_EXPORTER=stdout gapsolve solve instance.yaml
//	OTEL_METRICS_EXPORTER=stdout gapsolve solve instance.yaml
package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setupLogger installs the process-wide slog default.
func setupLogger(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
}

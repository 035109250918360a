// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRootCommand_Wiring verifies the subcommand and flag registration.
func TestRootCommand_Wiring(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["solve"], "solve command missing")
	assert.True(t, names["runs"], "runs command missing")
	assert.True(t, names["version"], "version command missing")

	for _, flag := range []string{"complete", "fair", "verbose", "max-steps", "time-limit", "archive", "json"} {
		assert.NotNil(t, solveCmd.Flags().Lookup(flag), "solve flag %q missing", flag)
	}
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("log-level"))
}

// TestRunsCommands_RequireArchive verifies runs subcommands fail without
// the archive flag.
func TestRunsCommands_RequireArchive(t *testing.T) {
	runsArchive = ""
	_, err := openArchive()
	require.Error(t, err)
}

// TestSetupLogger_BadLevel verifies an unknown level falls back to info
// without panicking.
func TestSetupLogger_BadLevel(t *testing.T) {
	setupLogger("nonsense")
	setupLogger("debug")
}

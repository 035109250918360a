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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/AleutianAI/gapsolve/instance"
	"github.com/AleutianAI/gapsolve/report"
	"github.com/AleutianAI/gapsolve/solver"
	"github.com/AleutianAI/gapsolve/store"
	"github.com/AleutianAI/gapsolve/telemetry"
)

const version = "1.0.0"

var (
	logLevel string

	// solve flags
	flagComplete  bool
	flagFair      bool
	flagVerbose   bool
	flagMaxSteps  int
	flagTimeLimit time.Duration
	flagArchive   string
	flagJSON      bool

	// runs flags
	runsArchive string
)

var rootCmd = &cobra.Command{
	Use:   "gapsolve",
	Short: "Generalized multi-assignment solver",
	Long: "gapsolve assigns agents to tasks under per-agent and per-task " +
		"budgets, maximizing profit. Supports fair (worst-off task first) " +
		"and complete (exact budget exhaustion) modes.",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger(logLevel)
	},
}

var solveCmd = &cobra.Command{
	Use:   "solve <instance-file>",
	Short: "Solve an assignment instance",
	Args:  cobra.ExactArgs(1),
	RunE:  runSolve,
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect archived runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one archived run",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gapsolve version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("gapsolve " + version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info",
		"Log level: debug, info, warn, error")

	rootCmd.AddCommand(solveCmd)
	solveCmd.Flags().BoolVar(&flagComplete, "complete", false,
		"Require every agent and task budget to be exactly exhausted")
	solveCmd.Flags().BoolVar(&flagFair, "fair", false,
		"Maximize the worst-off task's profit first")
	solveCmd.Flags().BoolVar(&flagVerbose, "verbose", false,
		"Also print terminal states tying the current best")
	solveCmd.Flags().IntVar(&flagMaxSteps, "max-steps", 0,
		"Stop after this many expansion steps (0 = unlimited)")
	solveCmd.Flags().DurationVar(&flagTimeLimit, "time-limit", 0,
		"Stop after this wall-clock duration (0 = unlimited)")
	solveCmd.Flags().StringVar(&flagArchive, "archive", "",
		"Directory of the run archive; when set, the run is recorded there")
	solveCmd.Flags().BoolVar(&flagJSON, "json", false,
		"Print the run result as JSON instead of console text")

	rootCmd.AddCommand(runsCmd)
	runsCmd.PersistentFlags().StringVar(&runsArchive, "archive", "",
		"Directory of the run archive")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)

	rootCmd.AddCommand(versionCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Init(ctx, telemetry.DefaultConfig())
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Warn("telemetry shutdown", slog.String("error", err.Error()))
		}
	}()

	inst, err := instance.Load(args[0])
	if err != nil {
		return err
	}

	problem, err := inst.Problem()
	if err != nil {
		return err
	}

	cfg := inst.Config()
	// Explicit flags override the instance file.
	if cmd.Flags().Changed("complete") {
		cfg.Complete = flagComplete
	}
	if cmd.Flags().Changed("fair") {
		cfg.Fair = flagFair
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = flagVerbose
	}
	if cmd.Flags().Changed("max-steps") {
		cfg.MaxSteps = flagMaxSteps
	}
	if cmd.Flags().Changed("time-limit") {
		cfg.TimeLimit = flagTimeLimit
	}

	logger := slog.Default().With(slog.String("instance", inst.Name))

	var reporter solver.Reporter
	if flagJSON {
		reporter = solver.NopReporter{}
	} else {
		reporter = report.NewConsoleReporter(os.Stdout, cfg.Fair)
	}

	metrics, err := telemetry.NewMetrics(otel.Meter("gapsolve.solver"))
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	tracer := solver.NewSearchTracer(logger, solver.ObservabilityConfig{
		TracingEnabled: os.Getenv("OTEL_TRACES_EXPORTER") != "" && os.Getenv("OTEL_TRACES_EXPORTER") != "none",
	})

	engine, err := solver.NewEngine(problem, cfg,
		solver.WithLogger(logger),
		solver.WithReporter(reporter),
		solver.WithTracer(tracer),
		solver.WithMetrics(metrics),
	)
	if err != nil {
		return err
	}

	result, runErr := engine.Run(ctx)
	if runErr != nil && !errors.Is(runErr, solver.ErrBudgetExhausted) && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if runErr != nil {
		logger.Warn("run stopped early; result is the best guess so far",
			slog.String("cause", runErr.Error()))
	}

	if flagJSON {
		out := struct {
			*solver.Result
			Best []solver.Pair `json:"best,omitempty"`
		}{Result: result}
		if result.Stats.Best != nil {
			out.Best = result.Stats.Best.Pairs()
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	}

	if flagArchive != "" {
		if err := archiveRun(inst.Name, cfg, result, logger); err != nil {
			return err
		}
	}
	return nil
}

func archiveRun(name string, cfg solver.Config, result *solver.Result, logger *slog.Logger) error {
	archCfg := store.DefaultConfig()
	archCfg.Path = flagArchive
	arch, err := store.Open(archCfg)
	if err != nil {
		return err
	}
	defer arch.Close()

	rec := store.NewRecord(name, cfg, result)
	if err := arch.Save(rec); err != nil {
		return err
	}
	logger.Info("run archived", slog.String("run_id", rec.ID))
	return nil
}

func runRunsList(cmd *cobra.Command, args []string) error {
	arch, err := openArchive()
	if err != nil {
		return err
	}
	defer arch.Close()

	records, err := arch.List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("no archived runs")
		return nil
	}
	for _, rec := range records {
		fmt.Printf("%s  %-20s  profit=%g finished=%d exhausted=%t  %s\n",
			rec.ID, rec.Instance, rec.Stats.BestProfit,
			rec.Stats.TotalFinished, rec.Exhausted,
			rec.StartedAt.Format(time.RFC3339))
	}
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	arch, err := openArchive()
	if err != nil {
		return err
	}
	defer arch.Close()

	rec, err := arch.Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

func openArchive() (*store.Archive, error) {
	if runsArchive == "" {
		return nil, errors.New("--archive is required")
	}
	cfg := store.DefaultConfig()
	cfg.Path = runsArchive
	return store.Open(cfg)
}

package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gitrdm/paraspace/internal/config"
	"github.com/gitrdm/paraspace/internal/perr"
	"github.com/gitrdm/paraspace/internal/planner"
	"github.com/gitrdm/paraspace/internal/problem"
	"github.com/spf13/cobra"
)

var (
	outputFlag string
	configFlag string
)

var solveCmd = &cobra.Command{
	Use:   "solve <problem.json>",
	Short: "Solve a timeline planning problem and print the resulting plan",
	Args:  cobra.ExactArgs(1),
	RunE:  runSolve,
}

func init() {
	solveCmd.Flags().StringVar(&outputFlag, "output", "", "Write the solution JSON to this path instead of stdout")
	solveCmd.Flags().StringVar(&configFlag, "config", "", "Path to an optional YAML config file")
}

func runSolve(cmd *cobra.Command, args []string) (err error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if outputFlag != "" {
		cfg.OutputPath = outputFlag
	}
	level := parseLevel(cfg.LogLevel)
	if logLevelFlag != "info" {
		level = parseLevel(logLevelFlag)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading problem file: %w", err)
	}
	var p problem.Problem
	if err := json.Unmarshal(raw, &p); err != nil {
		return fmt.Errorf("parsing problem json: %w", err)
	}

	// A solver-side fatal condition (an indeterminate SMT result, an
	// unreachable expansion target, a malformed causal graph) surfaces as
	// a panic rather than an error; this is the one place it is caught,
	// converted into a clean non-zero exit.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fatal planner condition: %v", r)
		}
	}()

	sol, err := planner.Solve(&p, logger)
	if err != nil {
		var perrErr *perr.Error
		if errors.As(err, &perrErr) {
			fmt.Fprintf(os.Stderr, "no solution: %s\n", perrErr.Error())
			os.Exit(1)
		}
		return err
	}

	out, err := json.MarshalIndent(sol, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding solution json: %w", err)
	}
	out = append(out, '\n')

	if cfg.OutputPath != "" {
		if err := os.WriteFile(cfg.OutputPath, out, 0o644); err != nil {
			return fmt.Errorf("writing solution file: %w", err)
		}
	} else {
		if _, err := os.Stdout.Write(out); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "solved: %d tokens\n", len(sol.Tokens))
	return nil
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

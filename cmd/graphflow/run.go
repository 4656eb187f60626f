package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/gridline-ai/graphflow"
	"github.com/gridline-ai/graphflow/steps"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute a YAML-defined graph",
	Long: `Loads a graph definition from a YAML file, runs it against the
built-in step registry, and prints the run record. Initial state values
are set with repeated -i key=value flags; values are parsed as JSON when
possible, otherwise as strings.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, _ := cmd.Flags().GetString("file")
		inputs, _ := cmd.Flags().GetStringArray("input")
		logsDir, _ := cmd.Flags().GetString("logs")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		asJSON, _ := cmd.Flags().GetBool("json")
		verbose, _ := cmd.Flags().GetBool("verbose")

		if file == "" {
			return fmt.Errorf("graph file is required")
		}

		graph, err := graphflow.LoadFile(file)
		if err != nil {
			return fmt.Errorf("failed to load graph: %w", err)
		}
		color.Cyan("Graph: %s (start: %s, %d nodes)", graph.GraphID, graph.StartNode, len(graph.Nodes))

		state := graphflow.NewState()
		for _, input := range inputs {
			key, value, ok := strings.Cut(input, "=")
			if !ok {
				return fmt.Errorf("invalid input format %q, use key=value", input)
			}
			var parsed any
			if err := json.Unmarshal([]byte(value), &parsed); err != nil {
				parsed = value
			}
			state.Data[key] = parsed
		}

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		if verbose {
			logger = graphflow.NewLogger(slog.LevelDebug)
		}

		var runLogger graphflow.RunLogger = graphflow.NewNullRunLogger()
		if logsDir != "" {
			runLogger = graphflow.NewFileRunLogger(logsDir)
			color.Blue("Run logs: %s", logsDir)
		}

		registry := graphflow.NewRegistry()
		steps.Register(registry)

		engine, err := graphflow.NewEngine(graphflow.EngineOptions{
			Registry:  registry,
			Logger:    logger,
			RunLogger: runLogger,
		})
		if err != nil {
			return err
		}

		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		run := graphflow.NewRun(graphflow.NewRunID(), graph.GraphID)
		color.Green("Starting run %s", run.RunID)

		start := time.Now()
		run, err = engine.Execute(ctx, graph, state, graphflow.NewToolRegistry(), run)
		if err != nil {
			return fmt.Errorf("run failed to start: %w", err)
		}

		color.White("Run finished in %v", time.Since(start))
		switch run.Status {
		case graphflow.RunStatusCompleted:
			color.Green("Status: %s (%d iterations)", run.Status, run.Iteration)
		case graphflow.RunStatusMaxIterations:
			color.Yellow("Status: %s (%d iterations)", run.Status, run.Iteration)
		default:
			color.Red("Status: %s (%d iterations)", run.Status, run.Iteration)
		}

		if asJSON {
			out, err := json.MarshalIndent(run, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
		} else {
			color.Magenta("Final state:")
			for key, value := range run.FinalState.Data {
				if data, err := json.Marshal(value); err == nil {
					fmt.Printf("  %s: %s\n", key, string(data))
				} else {
					fmt.Printf("  %s: %v\n", key, value)
				}
			}
		}

		if run.Status != graphflow.RunStatusCompleted {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("file", "f", "", "Path to the YAML graph definition (required)")
	runCmd.Flags().StringArrayP("input", "i", nil, "Initial state value in key=value form (repeatable)")
	runCmd.Flags().StringP("logs", "l", "", "Directory for per-run JSONL logs")
	runCmd.Flags().DurationP("timeout", "t", 0, "Run timeout (e.g. 30s, 5m)")
	runCmd.Flags().Bool("json", false, "Print the full run record as JSON")
}

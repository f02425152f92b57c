package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/memsim/memsim/internal/tracing"
	sim "github.com/memsim/memsim/sim"
	"github.com/memsim/memsim/sim/trace"
	"github.com/memsim/memsim/sim/workload"
)

// version is reported in trace resources.
const version = "0.1.0"

var (
	// CLI flags for memory geometry
	configPath    string // Optional YAML defaults file
	numFrames     int    // Total frames in the store
	framesPerLine int    // Frames per row in dumps
	moveCost      int64  // ms charged per frame moved by compaction
	algorithms    []string
	logLevel      string // Log verbosity level

	// CLI flags for output
	printMetrics bool   // Print the metrics block after each run
	printSummary bool   // Print a comparison table after all runs
	quiet        bool   // Suppress the event log
	traceOutput  string // OpenTelemetry span output file ("-" for stdout, empty disables)
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "memsim",
	Short: "Discrete-event simulator for contiguous and paged memory allocation",
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run <process-file>",
	Short: "Run a process file through each memory allocation algorithm",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", cfg.LogLevel)
		}
		logrus.SetLevel(level)

		ctx := context.Background()
		procs, err := workload.LoadProcesses(ctx, args[0])
		if err != nil {
			logrus.Fatalf("Error: %v", err)
		}
		algs, err := parseAlgorithms(cfg.Algorithms)
		if err != nil {
			logrus.Fatalf("Invalid algorithms: %v", err)
		}

		if traceOutput != "" {
			provider, err := tracing.Init("memsim", version, traceOutput)
			if err != nil {
				logrus.Fatalf("Unable to initialise tracing: %v", err)
			}
			defer func() {
				if err := provider.Shutdown(ctx); err != nil {
					logrus.Warnf("flushing traces: %v", err)
				}
			}()
		}

		logrus.Infof("Starting %d runs with %d frames (%d per line), move cost %d ms/frame",
			len(algs), cfg.Memory.NumFrames, cfg.Memory.FramesPerLine, cfg.Memory.MoveCostPerFrame)

		out := cmd.OutOrStdout()
		results := make([]runResult, 0, len(algs))
		for i, alg := range algs {
			if i > 0 && !quiet {
				fmt.Fprintln(out)
			}
			var onRecord func(trace.Record)
			if !quiet {
				renderer := trace.NewRenderer(out, trace.NewSimulationTrace("", alg.String(), !alg.Contiguous, cfg.Memory.FramesPerLine))
				onRecord = func(r trace.Record) {
					if err := renderer.Write(r); err != nil {
						logrus.Fatalf("Writing event log: %v", err)
					}
				}
			}
			res := runAlgorithm(ctx, procs, cfg.Memory, alg, onRecord)
			if printMetrics {
				res.Metrics.Fprint(out, cfg.Memory.NumFrames)
			}
			results = append(results, res)
		}
		if printSummary {
			fmt.Fprintln(out)
			writeComparison(out, results)
		}
		logrus.Info("Simulation complete.")
	},
}

// resolveConfig layers the defaults file (if any) under explicitly set flags.
func resolveConfig(cmd *cobra.Command) (Config, error) {
	cfg := DefaultConfig()
	if configPath != "" {
		loaded, err := loadDefaultsConfig(context.Background(), configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	flags := cmd.Flags()
	if configPath == "" || flags.Changed("frames") {
		cfg.Memory.NumFrames = numFrames
	}
	if configPath == "" || flags.Changed("frames-per-line") {
		cfg.Memory.FramesPerLine = framesPerLine
	}
	if configPath == "" || flags.Changed("move-cost") {
		cfg.Memory.MoveCostPerFrame = moveCost
	}
	if configPath == "" || flags.Changed("algorithms") {
		cfg.Algorithms = algorithms
	}
	if configPath == "" || flags.Changed("log") {
		cfg.LogLevel = logLevel
	}
	return cfg, cfg.Validate()
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerMemoryFlags adds the flags shared by run and serve.
func registerMemoryFlags(c *cobra.Command) {
	c.Flags().StringVar(&configPath, "config", "", "YAML defaults file (memory, algorithms, log)")
	c.Flags().IntVar(&numFrames, "frames", sim.DefaultNumFrames, "Total number of memory frames")
	c.Flags().IntVar(&framesPerLine, "frames-per-line", sim.DefaultFramesPerLine, "Frames per row in memory dumps")
	c.Flags().Int64Var(&moveCost, "move-cost", sim.DefaultMoveCostPerFrame, "Time (ms) to move one frame during defragmentation")
	c.Flags().StringSliceVar(&algorithms, "algorithms", sim.DefaultAlgorithms, "Comma-separated algorithms (next-fit, first-fit, best-fit, non-contiguous)")
	c.Flags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
}

// init sets up CLI flags and subcommands
func init() {
	registerMemoryFlags(runCmd)
	runCmd.Flags().BoolVar(&printMetrics, "metrics", false, "Print a metrics block after each run")
	runCmd.Flags().BoolVar(&printSummary, "summary", false, "Print a comparison table after all runs")
	runCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress the event log")
	runCmd.Flags().StringVar(&traceOutput, "trace-output", "", "Write OpenTelemetry spans to this file (\"-\" for stdout)")

	// Attach `run` as a subcommand to `root`
	rootCmd.AddCommand(runCmd)
}

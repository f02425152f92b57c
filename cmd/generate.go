package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/memsim/memsim/sim/workload"
)

var (
	genSpec   = workload.DefaultGeneratorSpec()
	genOutput string // Output path or afs URL; empty writes to stdout
)

// generateCmd writes a seeded random process file in the line format
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a reproducible random process file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		spec, err := workload.Generate(genSpec)
		if err != nil {
			logrus.Fatalf("Error: %v", err)
		}
		if genOutput != "" {
			err = spec.Save(context.Background(), genOutput)
		} else {
			err = spec.WriteLines(cmd.OutOrStdout())
		}
		if err != nil {
			logrus.Fatalf("Writing processes: %v", err)
		}
		logrus.Infof("Generated %d processes (seed %d)", len(spec.Processes), genSpec.Seed)
	},
}

func init() {
	d := workload.DefaultGeneratorSpec()
	generateCmd.Flags().Int64Var(&genSpec.Seed, "seed", d.Seed, "Seed for reproducible generation")
	generateCmd.Flags().IntVar(&genSpec.Processes, "processes", d.Processes, "Number of processes (1-26)")
	generateCmd.Flags().IntVar(&genSpec.MinFrames, "min-frames", d.MinFrames, "Smallest process size in frames")
	generateCmd.Flags().IntVar(&genSpec.MaxFrames, "max-frames", d.MaxFrames, "Largest process size in frames")
	generateCmd.Flags().IntVar(&genSpec.MaxBursts, "max-bursts", d.MaxBursts, "Most arrival/run pairs per process")
	generateCmd.Flags().Float64Var(&genSpec.MeanGap, "mean-gap", d.MeanGap, "Mean ms between a departure and the next arrival")
	generateCmd.Flags().Float64Var(&genSpec.MeanRun, "mean-run", d.MeanRun, "Mean residency in ms")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "Write to this path or URL instead of stdout")
	rootCmd.AddCommand(generateCmd)
}

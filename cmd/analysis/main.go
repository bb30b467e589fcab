// Command analysis runs accuracy experiments against tally's sketches and
// exports estimates and raw counter state as CSV for plotting.
package main

import (
	"os"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var level string

	root := &cobra.Command{
		Use:           "analysis",
		Short:         "Measure count-min sketch and spectral Bloom filter accuracy",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := logger.ParseLevel(level)
			if err != nil {
				return err
			}
			logger.SetLevel(lvl)
			logger.SetFormatter(&logger.TextFormatter{FullTimestamp: true})
			return nil
		},
	}
	root.PersistentFlags().StringVar(&level, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newSweepCmd("cms", "Sweep count-min sketch width over a fixed stream", defaultCMSExperiment()),
		newSweepCmd("sbf", "Sweep stream size into a fixed-width spectral Bloom filter", defaultSBFExperiment()),
		newRunCmd(),
	)
	return root
}

func newSweepCmd(use, short string, e Experiment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAndWrite(&e)
		},
	}
	bindExperimentFlags(cmd.Flags(), &e)
	return cmd
}

func newRunCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every experiment in a YAML run file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rf, err := LoadRunFile(path)
			if err != nil {
				return err
			}
			for i := range rf.Experiments {
				if err = runAndWrite(&rf.Experiments[i]); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&path, "config", "c", "experiments.yaml", "path to the run file")
	return cmd
}

// bindExperimentFlags exposes e's fields as flags, using e's current values
// as defaults.
func bindExperimentFlags(fs *pflag.FlagSet, e *Experiment) {
	fs.StringVar(&e.Name, "name", e.Name, "experiment name")
	fs.IntVarP(&e.NumHashFunctions, "hash-functions", "k", e.NumHashFunctions, "number of hash functions")
	fs.StringVar(&e.Hasher, "hasher", e.Hasher, "hash function (xxh3, murmur3, xxhash64)")
	fs.StringVar(&e.Policy, "policy", e.Policy, "spectral Bloom filter update policy (minimal-increase, minimum-selection)")
	fs.StringVar(&e.Sweep, "sweep", e.Sweep, "swept parameter (width, stream)")
	fs.IntVar(&e.Min, "min", e.Min, "first value of the swept parameter")
	fs.IntVar(&e.Max, "max", e.Max, "exclusive upper bound of the swept parameter")
	fs.IntVar(&e.Step, "step", e.Step, "sweep step")
	fs.IntVarP(&e.Width, "width", "w", e.Width, "fixed width for stream sweeps")
	fs.IntVar(&e.StreamSize, "stream-size", e.StreamSize, "fixed stream size for width sweeps")
	fs.IntVar(&e.PoolSize, "pool-size", e.PoolSize, "number of distinct keys to draw from")
	fs.StringVar(&e.Distribution, "distribution", e.Distribution, "key distribution (zipf, random)")
	fs.Float64Var(&e.Alpha, "alpha", e.Alpha, "zipf exponent, must be > 1")
	fs.Uint64Var(&e.Seed, "seed", e.Seed, "random seed")
	fs.StringVarP(&e.OutputDir, "out", "o", e.OutputDir, "output directory, recreated on each run")
}

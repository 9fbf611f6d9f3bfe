package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	arena "github.com/pavanmanishd/framearena"
	"github.com/pavanmanishd/framearena/arenaprom"
)

var (
	runConfigPath string
	runJSON       bool
	runMetrics    bool
	runFlags      = defaultConfig()
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().StringVar(&runConfigPath, "config", "", "YAML file with simulation settings")
	cmd.Flags().Uint64Var(&runFlags.PrimarySize, "primary", runFlags.PrimarySize, "Primary Stack size in bytes")
	cmd.Flags().Uint32Var(&runFlags.FrameSize, "frame", runFlags.FrameSize, "Frame Stack size in bytes")
	cmd.Flags().IntVar(&runFlags.Frames, "frames", runFlags.Frames, "Frames to run per level")
	cmd.Flags().IntVar(&runFlags.Levels, "levels", runFlags.Levels, "Levels to play")
	cmd.Flags().Uint32Var(&runFlags.Particles, "particles", runFlags.Particles, "Particle pool capacity")
	cmd.Flags().BoolVar(&runFlags.Debug, "debug", false, "Panic on exhaustion and bad pool releases")
	cmd.Flags().BoolVar(&runJSON, "json", false, "Print final arena metrics as JSON")
	cmd.Flags().BoolVar(&runMetrics, "metrics", false, "Print final arena metrics in Prometheus text format")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the simulation",
		Long: `The run command starts an arena, plays the configured number of levels
and frames, then prints a summary and the final state of both stacks.

Example:
  arenasim run
  arenasim run --levels 5 --frames 600 --particles 1024
  arenasim run --config sim.yaml --metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd)
			if err != nil {
				return err
			}
			return runSimulation(cmd.OutOrStdout(), newLogger(cmd.ErrOrStderr()), cfg,
				outputOptions{json: runJSON, metrics: runMetrics})
		},
	}
}

// resolveConfig starts from the config file, if any, and applies every flag
// that was set explicitly on the command line.
func resolveConfig(cmd *cobra.Command) (simConfig, error) {
	if runConfigPath == "" {
		return runFlags, runFlags.validate()
	}
	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("primary") {
		cfg.PrimarySize = runFlags.PrimarySize
	}
	if flags.Changed("frame") {
		cfg.FrameSize = runFlags.FrameSize
	}
	if flags.Changed("frames") {
		cfg.Frames = runFlags.Frames
	}
	if flags.Changed("levels") {
		cfg.Levels = runFlags.Levels
	}
	if flags.Changed("particles") {
		cfg.Particles = runFlags.Particles
	}
	if flags.Changed("debug") {
		cfg.Debug = runFlags.Debug
	}
	return cfg, cfg.validate()
}

type outputOptions struct {
	json    bool
	metrics bool
}

func runSimulation(out io.Writer, log *slog.Logger, cfg simConfig, opts outputOptions) (err error) {
	a, err := arena.StartUp(arena.Config{
		PrimarySize: cfg.PrimarySize,
		FrameSize:   cfg.FrameSize,
		Debug:       cfg.Debug,
		Logger:      log,
		OnOutOfMemory: func(err error) {
			log.Error("could not start arena", slog.Any("err", err))
		},
	})
	if err != nil {
		return errors.Wrap(err, "failed to start arena")
	}
	defer func() {
		err = errors.CombineErrors(err, a.ShutDown())
	}()

	w, err := simulate(a, cfg, log)
	if err != nil {
		return errors.Wrap(err, "simulation failed")
	}

	s := w.sum
	printInfo(out, "levels: %d, frames: %d\n", s.Levels, s.Frames)
	printInfo(out, "particles spawned: %d, despawned: %d, peak: %d\n", s.Spawned, s.Despawned, s.PeakParticles)
	printInfo(out, "peak primary used: %d bytes, peak frame used: %d bytes\n", s.PeakPrimaryUsed, s.PeakFrameUsed)
	a.Print(log)

	if opts.json {
		data, err := a.Metrics().MarshalJSON()
		if err != nil {
			return errors.Wrap(err, "failed to encode metrics")
		}
		fmt.Fprintln(out, string(data))
	}
	if opts.metrics {
		if err := writeMetrics(out, a, w.particles); err != nil {
			return err
		}
	}
	return nil
}

// writeMetrics gathers the arena collector into a private registry and
// writes it in the Prometheus text format.
func writeMetrics(out io.Writer, a *arena.Arena, particles arenaprom.PoolSource) error {
	reg := prometheus.NewRegistry()
	if err := reg.Register(arenaprom.NewCollector(a, arenaprom.WithPool("particles", particles))); err != nil {
		return errors.Wrap(err, "failed to register collector")
	}
	families, err := reg.Gather()
	if err != nil {
		return errors.Wrap(err, "failed to gather metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return errors.Wrap(err, "failed to write metrics")
		}
	}
	return nil
}

package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pedflow/pedflow/internal/core"
	"github.com/pedflow/pedflow/internal/observability"
	"github.com/pedflow/pedflow/internal/sim"
)

var (
	runOutput     string
	runModel      string
	runSeed       int64
	runSequential bool
)

var runCmd = &cobra.Command{
	Use:   "run <scene.json>",
	Short: "Simulate a scene file and write the trajectory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := observability.GetLogger()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read scene: %w", err)
		}
		scene, err := core.DecodeScene(data)
		if err != nil {
			return fmt.Errorf("decode scene: %w", err)
		}
		if runModel != "" {
			scene.SelectedModel = runModel
		}
		if runSeed != 0 {
			scene.Seed = runSeed
		}

		runCfg := cfg.RunConfig()
		runCfg.Logger = log
		if runSequential {
			runCfg.Parallel = false
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		tr, err := sim.Simulate(ctx, scene, runCfg)
		if err != nil {
			return err
		}

		out, err := core.EncodeTrajectory(tr)
		if err != nil {
			return fmt.Errorf("encode trajectory: %w", err)
		}
		path := runOutput
		if path == "" {
			path = strings.TrimSuffix(args[0], ".json") + ".trajectory.json"
		}
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return fmt.Errorf("write trajectory: %w", err)
		}

		log.Info("trajectory written",
			zap.String("path", path),
			zap.Int("frames", len(tr.Frames)),
			zap.Int("agents", tr.AgentCount))
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&runOutput, "output", "o", "", "trajectory output path")
	runCmd.Flags().StringVarP(&runModel, "model", "m", "", "override the scene's selected model")
	runCmd.Flags().Int64Var(&runSeed, "seed", 0, "override the scene's random seed")
	runCmd.Flags().BoolVar(&runSequential, "sequential", false, "disable the parallel force pass")
	rootCmd.AddCommand(runCmd)
}

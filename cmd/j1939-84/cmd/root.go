package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/roffe/j1939/pkg/config"
)

var (
	logger *zap.Logger
	cfg    config.Config
)

var rootCmd = &cobra.Command{
	Use:          "j1939-84",
	Short:        "J1939-84 OBD communications compliance tester",
	Long:         `Runs J1939-84 test steps against a vehicle and reports PASS, WARN and FAIL outcomes per step`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig(cmd)
		if err != nil {
			return err
		}
		zc := zap.NewProductionConfig()
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zc.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if cfg.Debug {
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zc.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

const (
	flagConfig      = "config"
	flagVehicle     = "vehicle"
	flagDebug       = "debug"
	flagAttempts    = "attempts"
	flagRetryDelay  = "retry-delay"
	flagStepTimeout = "step-timeout"
	flagNoColor     = "no-color"
	flagInteractive = "interactive"
	flagSteps       = "steps"
	flagFailOn      = "fail-on"
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringP(flagConfig, "c", "j1939-84.yaml", "configuration file")
	pf.StringP(flagVehicle, "v", "", "simulated vehicle description")
	pf.BoolP(flagDebug, "d", false, "debug mode")
	pf.Uint(flagAttempts, 3, "attempts per destination specific request")
	pf.Duration(flagRetryDelay, 0, "delay between destination specific attempts")
	pf.Duration(flagStepTimeout, 0, "time limit of one step, 0 = no limit")
	pf.Bool(flagNoColor, false, "disable colored output")
	pf.BoolP(flagInteractive, "i", false, "ask before acting on the vehicle")
	pf.StringSliceP(flagSteps, "s", nil, "steps to run as part.step, empty = all")
	pf.String(flagFailOn, "FAIL", "least severe outcome that fails the run, FAIL or WARN")
}

// loadConfig reads the configuration file, flags set on the command line win
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	f := cmd.Flags()
	path, err := f.GetString(flagConfig)
	if err != nil {
		return config.Config{}, err
	}
	c, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if f.Changed(flagVehicle) {
		c.Vehicle, _ = f.GetString(flagVehicle)
	}
	if f.Changed(flagDebug) {
		c.Debug, _ = f.GetBool(flagDebug)
	}
	if f.Changed(flagAttempts) {
		n, _ := f.GetUint(flagAttempts)
		c.Attempts = int(n)
	}
	if f.Changed(flagRetryDelay) {
		c.RetryDelay, _ = f.GetDuration(flagRetryDelay)
	}
	if f.Changed(flagStepTimeout) {
		c.StepTimeout, _ = f.GetDuration(flagStepTimeout)
	}
	if f.Changed(flagNoColor) {
		noColor, _ := f.GetBool(flagNoColor)
		c.Colors = !noColor
	}
	if f.Changed(flagInteractive) {
		c.Interactive, _ = f.GetBool(flagInteractive)
	}
	if f.Changed(flagSteps) {
		c.Steps, _ = f.GetStringSlice(flagSteps)
	}
	if f.Changed(flagFailOn) {
		c.FailOn, _ = f.GetString(flagFailOn)
	}
	if err := c.Validate(); err != nil {
		return config.Config{}, err
	}
	return c, nil
}

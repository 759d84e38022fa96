package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/winject/internal/config"
	"github.com/bnema/winject/internal/logger"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage winject configuration",
	Long:  `Manage winject configuration including the backend, driver, and rate limits.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()

		logger.Info("Current Configuration:")
		logger.Infof("Config file: %s\n", config.GetConfigPath())

		logger.Info("[Server]")
		logger.Infof("  Transport: %s", cfg.Server.Transport)
		logger.Infof("  HTTP Address: %s", cfg.Server.HTTPAddr)

		logger.Info("\n[Input]")
		logger.Infof("  Backend: %s", cfg.Input.Backend)
		logger.Infof("  Driver: %s", cfg.Input.Driver)
		logger.Infof("  Simulator Dir: %s", orAuto(cfg.Input.SimDir))
		logger.Infof("  AHK Executable: %s", orAuto(cfg.Input.AHKExe))
		logger.Infof("  AHK Timeout: %d seconds", cfg.Input.AHKTimeout)

		logger.Info("\n[Rate]")
		logger.Infof("  Move Rate: %.0f Hz", cfg.Rate.MoveHz)
		logger.Infof("  Max Step: %d px", cfg.Rate.MaxDelta)
		logger.Infof("  Smoothing: %.2f", cfg.Rate.Smooth)
		logger.Infof("  Clicks/sec: %.1f", cfg.Rate.ClicksPerSec)
		logger.Infof("  Keys/sec: %.1f", cfg.Rate.KeysPerSec)

		logger.Info("\n[Logging]")
		logger.Infof("  Log Level: %s", orDefault(cfg.Logging.LogLevel))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(config.GetConfigPath())
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

func orAuto(s string) string {
	if s == "" {
		return "(auto-detect)"
	}
	return s
}

func orDefault(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}

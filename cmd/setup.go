package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/bnema/winject/internal/backend"
	"github.com/bnema/winject/internal/config"
	"github.com/bnema/winject/internal/ui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactively configure the injection backend and rate limits",
	Long: `Walk through backend, driver, and rate limit configuration and write the
result to the config file. Run "winject backends" first to see which
injection paths are ready on this machine.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	fmt.Println(ui.FormatAppHeader("SETUP", "Backend and rate limit configuration"))
	fmt.Println()

	cfg := config.Get()
	inputCfg := cfg.Input
	rateCfg := cfg.Rate

	moveHz := strconv.FormatFloat(rateCfg.MoveHz, 'f', -1, 64)
	clicksPerSec := strconv.FormatFloat(rateCfg.ClicksPerSec, 'f', -1, 64)
	keysPerSec := strconv.FormatFloat(rateCfg.KeysPerSec, 'f', -1, 64)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Input backend").
				Description("simdll loads the simulator in-process; ahk scripts it through AutoHotkey; auto tries both").
				Options(
					huh.NewOption("Simulator DLL (recommended)", "simdll"),
					huh.NewOption("AutoHotkey v2", "ahk"),
					huh.NewOption("Auto (DLL, then AHK)", "auto"),
				).
				Value(&inputCfg.Backend),

			huh.NewSelect[string]().
				Title("Simulator driver").
				Description("AnyDriver probes each installed driver in turn").
				Options(
					huh.NewOption("AnyDriver", "AnyDriver"),
					huh.NewOption("SendInput (no driver)", "SendInput"),
					huh.NewOption("Logitech G Hub (classic)", "Logitech"),
					huh.NewOption("Logitech G Hub (new)", "LogitechGHubNew"),
					huh.NewOption("Razer Synapse", "Razer"),
					huh.NewOption("DD", "DD"),
					huh.NewOption("MouClassInputInjection", "MouClassInputInjection"),
				).
				Value(&inputCfg.Driver),

			huh.NewInput().
				Title("Simulator directory").
				Description("Directory containing IbInputSimulator.dll (empty to auto-detect)").
				Value(&inputCfg.SimDir),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Mouse move rate (Hz)").
				Description("Steps per second while walking the cursor, 15-480").
				Value(&moveHz).
				Validate(validateFloat),

			huh.NewInput().
				Title("Clicks per second").
				Value(&clicksPerSec).
				Validate(validateFloat),

			huh.NewInput().
				Title("Keys per second").
				Value(&keysPerSec).
				Validate(validateFloat),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	rateCfg.MoveHz, _ = strconv.ParseFloat(moveHz, 64)
	rateCfg.ClicksPerSec, _ = strconv.ParseFloat(clicksPerSec, 64)
	rateCfg.KeysPerSec, _ = strconv.ParseFloat(keysPerSec, 64)

	if err := config.UpdateInput(inputCfg); err != nil {
		return fmt.Errorf("failed to save input config: %w", err)
	}
	if err := config.UpdateRate(rateCfg); err != nil {
		return fmt.Errorf("failed to save rate config: %w", err)
	}

	fmt.Println(ui.SuccessStyle.Render("✓ Configuration saved"))
	fmt.Println(ui.SubtleStyle.Render("Config file: " + config.GetConfigPath()))
	fmt.Println()

	// Show whether the chosen backend is actually usable right now
	for _, info := range backend.Probe(backendOptions(cfg)) {
		if info.Name != inputCfg.Backend && inputCfg.Backend != "auto" {
			continue
		}
		if info.Ready {
			fmt.Println(ui.SuccessStyle.Render(fmt.Sprintf("✓ %s backend is ready", info.Name)))
		} else {
			fmt.Println(ui.WarningStyle.Render(fmt.Sprintf("! %s backend is not ready: %s", info.Name, info.Details)))
		}
	}
	return nil
}

func validateFloat(s string) error {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return fmt.Errorf("enter a number")
	}
	return nil
}

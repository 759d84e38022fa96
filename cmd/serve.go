package cmd

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bnema/winject/internal/backend"
	"github.com/bnema/winject/internal/config"
	"github.com/bnema/winject/internal/logger"
	"github.com/bnema/winject/internal/mcpserver"
)

var (
	serveTransport string
	serveHTTPAddr  string
	serveBackend   string
	serveDriver    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Run the MCP server over stdio (for local clients that spawn the process)
or streamable HTTP. The injection backend is selected at startup and
serving refuses to start without a ready driver-level path.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveTransport, "transport", "t", "", "Transport: stdio or http")
	serveCmd.Flags().StringVar(&serveHTTPAddr, "http-addr", "", "Bind address for the http transport")
	serveCmd.Flags().StringVarP(&serveBackend, "backend", "b", "", "Input backend: simdll, ahk, or auto")
	serveCmd.Flags().StringVarP(&serveDriver, "driver", "d", "", "Simulator driver (AnyDriver, SendInput, Logitech, Razer, DD, MouClassInputInjection, LogitechGHubNew)")

	// Bind flags to viper
	viper.BindPFlag("server.transport", serveCmd.Flags().Lookup("transport"))
	viper.BindPFlag("server.http_addr", serveCmd.Flags().Lookup("http-addr"))
	viper.BindPFlag("input.backend", serveCmd.Flags().Lookup("backend"))
	viper.BindPFlag("input.driver", serveCmd.Flags().Lookup("driver"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	// Use flag values if provided, otherwise use config
	if serveTransport != "" {
		cfg.Server.Transport = serveTransport
	}
	if serveHTTPAddr != "" {
		cfg.Server.HTTPAddr = serveHTTPAddr
	}
	if serveBackend != "" {
		cfg.Input.Backend = serveBackend
	}
	if serveDriver != "" {
		cfg.Input.Driver = serveDriver
	}

	be, err := backend.Select(cfg.Input.Backend, backendOptions(cfg))
	if err != nil {
		return fmt.Errorf("no usable input backend: %w", err)
	}

	srv := mcpserver.New(cfg, be, Version)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Infof("Starting winject %s (backend=%s transport=%s)",
		Version, be.Info().Name, cfg.Server.Transport)
	return srv.Run(ctx)
}

func backendOptions(cfg *config.Config) backend.Options {
	return backend.Options{
		Driver:     cfg.Input.Driver,
		SimDir:     cfg.Input.SimDir,
		AHKExe:     cfg.Input.AHKExe,
		AHKTimeout: time.Duration(cfg.Input.AHKTimeout) * time.Second,
	}
}

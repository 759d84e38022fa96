package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"runtime"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bnema/winject/internal/screen"
	"github.com/bnema/winject/internal/winman"
)

const (
	resourceDesktop      = "winject://desktop"
	resourceActiveWindow = "winject://active-window"
	resourceRate         = "winject://rate"
	resourceEnv          = "winject://env"
	resourceInstructions = "winject://instructions"
)

func (s *Server) registerResources() {
	s.mcp.AddResource(&mcp.Resource{
		URI:         resourceDesktop,
		Name:        "desktop",
		Description: "Virtual screen geometry and monitors",
		MIMEType:    "application/json",
	}, s.readDesktop)

	s.mcp.AddResource(&mcp.Resource{
		URI:         resourceActiveWindow,
		Name:        "active-window",
		Description: "The current foreground window",
		MIMEType:    "application/json",
	}, s.readActiveWindow)

	s.mcp.AddResource(&mcp.Resource{
		URI:         resourceRate,
		Name:        "rate",
		Description: "Current rate limiting and motion shaping settings",
		MIMEType:    "application/json",
	}, s.readRate)

	s.mcp.AddResource(&mcp.Resource{
		URI:         resourceEnv,
		Name:        "env",
		Description: "Server version, platform, backend state, and the WINJECT_* environment",
		MIMEType:    "application/json",
	}, s.readEnv)

	s.mcp.AddResource(&mcp.Resource{
		URI:         resourceInstructions,
		Name:        "instructions",
		Description: "How to drive this server effectively",
		MIMEType:    "text/markdown",
	}, s.readInstructions)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) readDesktop(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	desktop, err := screen.Info()
	if err != nil {
		return nil, err
	}
	x, y := s.cursorPos()
	return jsonResource(resourceDesktop, desktopInfoOutput{
		Desktop: desktop,
		Cursor:  cursorOut{X: x, Y: y},
	})
}

func (s *Server) readActiveWindow(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	w, err := winman.Active()
	if err != nil {
		return nil, err
	}
	return jsonResource(resourceActiveWindow, toWindowOut(w))
}

func (s *Server) readRate(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return jsonResource(resourceRate, toRateSettings(s.limiter.Config()))
}

// envKeys are the environment variables the server reads, directly or
// through viper's WINJECT_ prefix.
var envKeys = []string{
	"WINJECT_SERVER_TRANSPORT",
	"WINJECT_SERVER_HTTP_ADDR",
	"WINJECT_INPUT_BACKEND",
	"WINJECT_INPUT_DRIVER",
	"WINJECT_INPUT_SIM_DIR",
	"WINJECT_INPUT_AHK_EXE",
	"WINJECT_INPUT_AHK_TIMEOUT",
	"WINJECT_RATE_MOVE_HZ",
	"WINJECT_RATE_MAX_DELTA",
	"WINJECT_RATE_SMOOTH",
	"WINJECT_RATE_CLICKS_PER_SEC",
	"WINJECT_RATE_KEYS_PER_SEC",
	"WINJECT_SIM_DIR",
	"WINJECT_AHK_EXE",
	"WINJECT_LOG_LEVEL",
}

// liveEnv reports the current value of every known WINJECT_* variable,
// empty when unset.
func liveEnv() map[string]string {
	env := make(map[string]string, len(envKeys))
	for _, k := range envKeys {
		env[k] = os.Getenv(k)
	}
	return env
}

func (s *Server) readEnv(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	info := s.be.Info()
	return jsonResource(resourceEnv, map[string]any{
		"name":      serverName,
		"version":   s.version,
		"platform":  runtime.GOOS,
		"arch":      runtime.GOARCH,
		"transport": s.cfg.Server.Transport,
		"backend": map[string]any{
			"name":    info.Name,
			"ready":   info.Ready,
			"details": info.Details,
		},
		"env": liveEnv(),
	})
}

func (s *Server) readInstructions(_ context.Context, _ *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      resourceInstructions,
			MIMEType: "text/markdown",
			Text:     instructions,
		}},
	}, nil
}

// Package backend abstracts the driver-level input injection paths.
//
// Two backends exist: the simulator DLL loaded in-process (preferred) and an
// AutoHotkey v2 scripted path that drives the same simulator out-of-process.
// Both are gated on their prerequisite files existing on disk; selection is a
// preference-ordered lookup over those readiness checks.
package backend

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bnema/winject/internal/logger"
)

// ErrNotReady is returned by operations on a backend whose prerequisites
// were missing at construction time.
var ErrNotReady = errors.New("input backend not ready")

// Button identifies a mouse button.
type Button string

const (
	ButtonLeft   Button = "left"
	ButtonRight  Button = "right"
	ButtonMiddle Button = "middle"
)

// Axis identifies a scroll axis.
type Axis string

const (
	AxisVertical   Axis = "vertical"
	AxisHorizontal Axis = "horizontal"
)

// Direction identifies a scroll direction.
type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// Info describes a backend and whether it can inject input.
type Info struct {
	Name    string
	Ready   bool
	Details string
}

// Backend is a driver-level input injection path.
type Backend interface {
	Info() Info

	// Mouse
	Move(x, y int) error
	Click(x, y int, button Button, clicks int) error
	Drag(x1, y1, x2, y2 int) error
	Scroll(times int, axis Axis, direction Direction) error

	// Keyboard
	SendText(text string) error
	Hotkey(combo string) error
	KeyDown(key string) error
	KeyUp(key string) error

	Close() error
}

// Options carries backend tuning resolved from configuration.
type Options struct {
	Driver     string        // simulator driver name, e.g. "AnyDriver", "Logitech"
	SimDir     string        // explicit simulator directory; empty means probe candidates
	AHKExe     string        // explicit AutoHotkey v2 executable; empty means probe
	AHKTimeout time.Duration // per-script execution timeout
}

// Constructors are indirected so selection logic is testable without the
// real prerequisites on disk.
var (
	newSimDLL = func(opts Options) Backend { return newSimDLLBackend(opts) }
	newAHK    = func(opts Options) Backend { return NewAHK(opts) }
)

// Probe reports the readiness of every known backend without selecting
// one. Used by diagnostics commands.
func Probe(opts Options) []Info {
	return []Info{
		newSimDLL(opts).Info(),
		newAHK(opts).Info(),
	}
}

// Select picks an injection backend by preference name.
//
// "simdll" (the default) strictly requires the DLL path to be ready. "auto"
// tries the DLL first and falls back to the AHK path. "ahk" requires the
// scripted path. There is no further fallback: failing to find a
// driver-level path is a startup error, never a silent downgrade.
func Select(name string, opts Options) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "simdll", "sim":
		be := newSimDLL(opts)
		if info := be.Info(); !info.Ready {
			return nil, fmt.Errorf("simulator DLL backend not ready: %s", info.Details)
		}
		logger.Info("Using simulator DLL backend for input injection")
		return be, nil

	case "auto":
		be := newSimDLL(opts)
		if be.Info().Ready {
			logger.Info("Using simulator DLL backend for input injection")
			return be, nil
		}
		logger.Warnf("Simulator DLL backend not ready (%s), trying AHK", be.Info().Details)
		ahk := newAHK(opts)
		if ahk.Info().Ready {
			logger.Info("Using AutoHotkey backend for input injection")
			return ahk, nil
		}
		return nil, fmt.Errorf("no driver-level backend is ready (dll: %s; ahk: %s)",
			be.Info().Details, ahk.Info().Details)

	case "ahk":
		ahk := newAHK(opts)
		if info := ahk.Info(); !info.Ready {
			return nil, fmt.Errorf("AHK backend not ready: %s", info.Details)
		}
		logger.Info("Using AutoHotkey backend for input injection")
		return ahk, nil

	default:
		return nil, fmt.Errorf("unsupported input backend %q (use \"simdll\", \"ahk\", or \"auto\")", name)
	}
}

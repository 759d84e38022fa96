package backend

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/bnema/winject/internal/keymap"
	"github.com/bnema/winject/internal/logger"
)

const defaultAHKTimeout = 10 * time.Second

// AHK injects input by generating AutoHotkey v2 scripts that load the
// simulator DLL, and executing them with a real interpreter. Slower than
// the in-process path (one process per operation) but useful when the
// binding cannot be loaded into this process.
type AHK struct {
	exe     string
	dll     string
	include string
	driver  string
	timeout time.Duration

	// runScript is swapped out in tests.
	runScript func(ctx context.Context, exe, scriptPath string) ([]byte, error)
}

// NewAHK builds the scripted backend. Readiness requires an AutoHotkey v2
// executable plus the simulator DLL and its AHK include on disk.
func NewAHK(opts Options) *AHK {
	dir := findSimDir(opts.SimDir)
	dll, include := simPaths(dir)
	timeout := opts.AHKTimeout
	if timeout <= 0 {
		timeout = defaultAHKTimeout
	}
	return &AHK{
		exe:       findAHKExe(opts.AHKExe),
		dll:       dll,
		include:   include,
		driver:    opts.Driver,
		timeout:   timeout,
		runScript: execAHK,
	}
}

func (a *AHK) Info() Info {
	var missing []string
	if a.exe == "" {
		missing = append(missing, "AutoHotkey v2 executable")
	}
	if a.dll == "" {
		missing = append(missing, simDLLName)
	}
	if a.include == "" {
		missing = append(missing, simIncludeName)
	}
	info := Info{Name: "ahk"}
	if len(missing) > 0 {
		info.Details = "missing: " + strings.Join(missing, ", ")
		return info
	}
	info.Ready = true
	info.Details = fmt.Sprintf("exe=%s dll=%s", a.exe, a.dll)
	return info
}

func (a *AHK) Move(x, y int) error {
	return a.run(moveBody(x, y))
}

func (a *AHK) Click(x, y int, button Button, clicks int) error {
	body, err := clickBody(x, y, button, clicks)
	if err != nil {
		return err
	}
	return a.run(body)
}

func (a *AHK) Drag(x1, y1, x2, y2 int) error {
	return a.run(dragBody(x1, y1, x2, y2))
}

func (a *AHK) Scroll(times int, axis Axis, direction Direction) error {
	body, err := scrollBody(times, axis, direction)
	if err != nil {
		return err
	}
	return a.run(body)
}

func (a *AHK) SendText(text string) error {
	if text == "" {
		return nil
	}
	return a.run(textBody(text))
}

func (a *AHK) Hotkey(combo string) error {
	sc, err := keymap.ParseShortcut(combo)
	if err != nil {
		return err
	}
	return a.run("Send " + ahkQuote(keymap.AHKSequence(sc)))
}

func (a *AHK) KeyDown(key string) error {
	return a.run(fmt.Sprintf(`Send "{%s down}"`, keymap.AHKName(key)))
}

func (a *AHK) KeyUp(key string) error {
	return a.run(fmt.Sprintf(`Send "{%s up}"`, keymap.AHKName(key)))
}

func (a *AHK) Close() error { return nil }

// run renders a full script around body and executes it.
func (a *AHK) run(body string) error {
	if !a.Info().Ready {
		return fmt.Errorf("%w: %s", ErrNotReady, a.Info().Details)
	}
	script := renderScript(a.dll, a.include, driverSendType(a.driver), body)

	f, err := os.CreateTemp("", "winject-*.ahk")
	if err != nil {
		return fmt.Errorf("creating script file: %w", err)
	}
	path := f.Name()
	defer os.Remove(path)
	if _, err := f.WriteString(script); err != nil {
		f.Close()
		return fmt.Errorf("writing script file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing script file: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	out, err := a.runScript(ctx, a.exe, path)
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg != "" {
			return fmt.Errorf("ahk script failed: %s: %w", msg, err)
		}
		return fmt.Errorf("ahk script failed: %w", err)
	}
	logger.Debugf("AHK script completed (%d bytes)", len(script))
	return nil
}

func execAHK(ctx context.Context, exe, scriptPath string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, exe, "/ErrorStdOut", scriptPath)
	return cmd.CombinedOutput()
}

// renderScript wraps an operation body in the simulator prelude. The script
// initializes the driver binding, runs the body with hooked Send functions,
// and tears the binding down before exiting.
func renderScript(dll, include string, sendType int, body string) string {
	var b bytes.Buffer
	fmt.Fprintf(&b, "#Requires AutoHotkey v2.0\n")
	fmt.Fprintf(&b, "#SingleInstance Off\n")
	fmt.Fprintf(&b, "#DllLoad \"%s\"\n", dll)
	fmt.Fprintf(&b, "#Include \"%s\"\n", include)
	fmt.Fprintf(&b, "SendMode \"Event\"\n")
	fmt.Fprintf(&b, "SetKeyDelay 3, 3\n")
	fmt.Fprintf(&b, "SetMouseDelay 1\n")
	fmt.Fprintf(&b, "if IbSendInit(%d) != 0 {\n", sendType)
	fmt.Fprintf(&b, "    FileAppend \"IbSendInit failed\", \"*\"\n")
	fmt.Fprintf(&b, "    ExitApp 2\n")
	fmt.Fprintf(&b, "}\n")
	fmt.Fprintf(&b, "%s\n", body)
	fmt.Fprintf(&b, "IbSendDestroy()\n")
	fmt.Fprintf(&b, "ExitApp 0\n")
	return b.String()
}

func moveBody(x, y int) string {
	return fmt.Sprintf("MouseMove %d, %d, 0", x, y)
}

func clickBody(x, y int, button Button, clicks int) (string, error) {
	name, err := ahkButton(button)
	if err != nil {
		return "", err
	}
	if clicks < 1 {
		clicks = 1
	}
	return fmt.Sprintf("MouseClick \"%s\", %d, %d, %d, 0", name, x, y, clicks), nil
}

func dragBody(x1, y1, x2, y2 int) string {
	return fmt.Sprintf("MouseClickDrag \"Left\", %d, %d, %d, %d, 0", x1, y1, x2, y2)
}

func scrollBody(times int, axis Axis, direction Direction) (string, error) {
	if times < 1 {
		times = 1
	}
	var wheel string
	switch {
	case axis == AxisVertical && direction == DirectionUp:
		wheel = "WheelUp"
	case axis == AxisVertical && direction == DirectionDown:
		wheel = "WheelDown"
	case axis == AxisHorizontal && direction == DirectionLeft:
		wheel = "WheelLeft"
	case axis == AxisHorizontal && direction == DirectionRight:
		wheel = "WheelRight"
	default:
		return "", fmt.Errorf("invalid scroll %s/%s", axis, direction)
	}
	return fmt.Sprintf(`Send "{%s %d}"`, wheel, times), nil
}

func textBody(text string) string {
	return "SendText " + ahkQuote(text)
}

// ahkQuote renders s as an AutoHotkey v2 double-quoted string literal.
// Backslashes are literal in AHK; the escape character is the backtick.
func ahkQuote(s string) string {
	r := strings.NewReplacer(
		"`", "``",
		`"`, "`\"",
		"\r", "`r",
		"\n", "`n",
		"\t", "`t",
	)
	return `"` + r.Replace(s) + `"`
}

func ahkButton(b Button) (string, error) {
	switch b {
	case ButtonLeft, "":
		return "Left", nil
	case ButtonRight:
		return "Right", nil
	case ButtonMiddle:
		return "Middle", nil
	default:
		return "", fmt.Errorf("unknown mouse button %q", b)
	}
}

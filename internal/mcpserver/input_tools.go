package mcpserver

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bnema/winject/internal/backend"
	"github.com/bnema/winject/internal/clip"
	"github.com/bnema/winject/internal/logger"
	"github.com/bnema/winject/internal/rate"
)

// moveMaxSteps bounds the stepped move loop so a pathological smoothing
// config can never spin forever. The final snap covers the residual.
const moveMaxSteps = 3000

type rateSettings struct {
	MoveHz       float64 `json:"move_hz"`
	MaxDelta     int     `json:"max_delta"`
	Smooth       float64 `json:"smooth"`
	ClicksPerSec float64 `json:"clicks_per_sec"`
	KeysPerSec   float64 `json:"keys_per_sec"`
}

func toRateSettings(c rate.Config) rateSettings {
	return rateSettings{
		MoveHz:       c.MoveHz,
		MaxDelta:     c.MaxDelta,
		Smooth:       c.Smooth,
		ClicksPerSec: c.ClicksPerSec,
		KeysPerSec:   c.KeysPerSec,
	}
}

func (s *Server) registerInputTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "input_info",
		Description: "Report the active injection backend, its readiness, the cursor position, and the current rate limits.",
	}, s.handleInputInfo)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "mouse_move",
		Description: "Move the cursor to a virtual-screen location. Motion is stepped and rate limited, not teleported.",
	}, s.handleMouseMove)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "mouse_click",
		Description: "Click a mouse button, optionally moving to a location first.",
	}, s.handleMouseClick)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "mouse_drag",
		Description: "Press the left button at one location and release it at another, moving smoothly in between.",
	}, s.handleMouseDrag)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "mouse_scroll",
		Description: "Scroll the wheel vertically or horizontally, optionally moving to a location first.",
	}, s.handleMouseScroll)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "type_text",
		Description: "Type text into the focused window, paced by the key rate limit. Method \"clipboard\" pastes instead of typing; \"vk\" taps per-character key events.",
	}, s.handleTypeText)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "send_shortcut",
		Description: "Send a modifier shortcut like \"ctrl+shift+p\" or \"alt+tab\".",
	}, s.handleSendShortcut)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "key",
		Description: "Low-level key control: tap a key repeatedly, hold it for a duration, or press and release it separately.",
	}, s.handleKey)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "key_combo",
		Description: "Press several keys together: down in order, released in reverse.",
	}, s.handleKeyCombo)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "clipboard_get",
		Description: "Read the system clipboard as text.",
	}, s.handleClipboardGet)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "clipboard_set",
		Description: "Replace the system clipboard with text.",
	}, s.handleClipboardSet)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "rate_configure",
		Description: "Adjust rate limiting and motion shaping. Omitted fields keep their current value; all values are clamped into safe ranges.",
	}, s.handleRateConfigure)
}

type inputInfoInput struct{}

type cursorOut struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type inputInfoOutput struct {
	Backend  string       `json:"backend"`
	Ready    bool         `json:"ready"`
	Details  string       `json:"details,omitempty"`
	Platform string       `json:"platform"`
	Cursor   cursorOut    `json:"cursor"`
	Rate     rateSettings `json:"rate"`
}

func (s *Server) handleInputInfo(_ context.Context, _ *mcp.CallToolRequest, _ inputInfoInput) (*mcp.CallToolResult, inputInfoOutput, error) {
	info := s.be.Info()
	x, y := s.cursorPos()
	return nil, inputInfoOutput{
		Backend:  info.Name,
		Ready:    info.Ready,
		Details:  info.Details,
		Platform: runtime.GOOS,
		Cursor:   cursorOut{X: x, Y: y},
		Rate:     toRateSettings(s.limiter.Config()),
	}, nil
}

type mouseMoveInput struct {
	To any `json:"to" jsonschema:"target location: [x,y] array, {x,y} object, or \"x,y\" string"`
}

type mouseMoveOutput struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Steps int `json:"steps"`
}

func (s *Server) handleMouseMove(ctx context.Context, _ *mcp.CallToolRequest, in mouseMoveInput) (*mcp.CallToolResult, mouseMoveOutput, error) {
	x, y, err := coerceLoc(in.To)
	if err != nil {
		return nil, mouseMoveOutput{}, err
	}
	steps, err := s.moveCursor(ctx, x, y)
	if err != nil {
		return nil, mouseMoveOutput{}, err
	}
	fx, fy := s.cursorPos()
	return nil, mouseMoveOutput{X: fx, Y: fy, Steps: steps}, nil
}

// moveCursor walks the cursor toward (x, y) in rate-limited, clamped steps
// and snaps to the exact target at the end.
func (s *Server) moveCursor(ctx context.Context, x, y int) (int, error) {
	steps := 0
	for ; steps < moveMaxSteps; steps++ {
		cx, cy := s.cursorPos()
		if cx == x && cy == y {
			return steps, nil
		}
		nx, ny := s.limiter.FilterTarget(cx, cy, x, y)
		if nx == cx && ny == cy {
			// smoothing rounded the step to zero; snap below
			break
		}
		if err := s.limiter.Wait(ctx, rate.KindMove); err != nil {
			return steps, err
		}
		if err := s.be.Move(nx, ny); err != nil {
			return steps, err
		}
	}
	if err := s.limiter.Wait(ctx, rate.KindMove); err != nil {
		return steps, err
	}
	return steps + 1, s.be.Move(x, y)
}

type mouseClickInput struct {
	At     any    `json:"at,omitempty" jsonschema:"optional location to move to first; omit to click in place"`
	Button string `json:"button,omitempty" jsonschema:"left (default), right, or middle"`
	Clicks int    `json:"clicks,omitempty" jsonschema:"click count, default 1 (2 = double click)"`
}

type mouseClickOutput struct {
	X      int    `json:"x"`
	Y      int    `json:"y"`
	Button string `json:"button"`
	Clicks int    `json:"clicks"`
}

func (s *Server) handleMouseClick(ctx context.Context, _ *mcp.CallToolRequest, in mouseClickInput) (*mcp.CallToolResult, mouseClickOutput, error) {
	x, y := s.cursorPos()
	if in.At != nil {
		var err error
		x, y, err = coerceLoc(in.At)
		if err != nil {
			return nil, mouseClickOutput{}, err
		}
		if _, err := s.moveCursor(ctx, x, y); err != nil {
			return nil, mouseClickOutput{}, err
		}
	}

	button := backend.Button(strings.ToLower(strings.TrimSpace(in.Button)))
	if button == "" {
		button = backend.ButtonLeft
	}
	clicks := in.Clicks
	if clicks < 1 {
		clicks = 1
	}

	if err := s.limiter.Wait(ctx, rate.KindClick); err != nil {
		return nil, mouseClickOutput{}, err
	}
	if err := s.be.Click(x, y, button, clicks); err != nil {
		return nil, mouseClickOutput{}, err
	}
	logger.Debugf("Clicked %s x%d at (%d, %d)", button, clicks, x, y)
	return nil, mouseClickOutput{X: x, Y: y, Button: string(button), Clicks: clicks}, nil
}

type mouseDragInput struct {
	From any `json:"from" jsonschema:"drag start location"`
	To   any `json:"to" jsonschema:"drag end location"`
}

type mouseDragOutput struct {
	FromX int `json:"from_x"`
	FromY int `json:"from_y"`
	ToX   int `json:"to_x"`
	ToY   int `json:"to_y"`
}

func (s *Server) handleMouseDrag(ctx context.Context, _ *mcp.CallToolRequest, in mouseDragInput) (*mcp.CallToolResult, mouseDragOutput, error) {
	x1, y1, err := coerceLoc(in.From)
	if err != nil {
		return nil, mouseDragOutput{}, fmt.Errorf("from: %w", err)
	}
	x2, y2, err := coerceLoc(in.To)
	if err != nil {
		return nil, mouseDragOutput{}, fmt.Errorf("to: %w", err)
	}

	if _, err := s.moveCursor(ctx, x1, y1); err != nil {
		return nil, mouseDragOutput{}, err
	}
	if err := s.limiter.Wait(ctx, rate.KindClick); err != nil {
		return nil, mouseDragOutput{}, err
	}
	if err := s.be.Drag(x1, y1, x2, y2); err != nil {
		return nil, mouseDragOutput{}, err
	}
	return nil, mouseDragOutput{FromX: x1, FromY: y1, ToX: x2, ToY: y2}, nil
}

type mouseScrollInput struct {
	At        any    `json:"at,omitempty" jsonschema:"optional location to move to first; omit to scroll in place"`
	Times     int    `json:"times,omitempty" jsonschema:"wheel notches, default 1"`
	Axis      string `json:"axis,omitempty" jsonschema:"vertical (default) or horizontal"`
	Direction string `json:"direction,omitempty" jsonschema:"up/down for vertical, left/right for horizontal; default down"`
}

type mouseScrollOutput struct {
	Times     int    `json:"times"`
	Axis      string `json:"axis"`
	Direction string `json:"direction"`
}

func (s *Server) handleMouseScroll(ctx context.Context, _ *mcp.CallToolRequest, in mouseScrollInput) (*mcp.CallToolResult, mouseScrollOutput, error) {
	if in.At != nil {
		x, y, err := coerceLoc(in.At)
		if err != nil {
			return nil, mouseScrollOutput{}, err
		}
		if _, err := s.moveCursor(ctx, x, y); err != nil {
			return nil, mouseScrollOutput{}, err
		}
	}

	times := in.Times
	if times < 1 {
		times = 1
	}
	axis := backend.Axis(strings.ToLower(strings.TrimSpace(in.Axis)))
	if axis == "" {
		axis = backend.AxisVertical
	}
	dir := backend.Direction(strings.ToLower(strings.TrimSpace(in.Direction)))
	if dir == "" {
		if axis == backend.AxisVertical {
			dir = backend.DirectionDown
		} else {
			dir = backend.DirectionRight
		}
	}

	if err := s.limiter.Wait(ctx, rate.KindClick); err != nil {
		return nil, mouseScrollOutput{}, err
	}
	if err := s.be.Scroll(times, axis, dir); err != nil {
		return nil, mouseScrollOutput{}, err
	}
	return nil, mouseScrollOutput{Times: times, Axis: string(axis), Direction: string(dir)}, nil
}

type typeTextInput struct {
	Text       string `json:"text" jsonschema:"text to type into the focused window"`
	Method     string `json:"method,omitempty" jsonschema:"unicode (default) sends the text as unicode input; clipboard pastes via ctrl+v; vk taps per-character key events"`
	PressEnter bool   `json:"press_enter,omitempty" jsonschema:"press enter after the text"`
}

type typeTextOutput struct {
	Chars  int    `json:"chars"`
	Method string `json:"method"`
}

func (s *Server) handleTypeText(ctx context.Context, _ *mcp.CallToolRequest, in typeTextInput) (*mcp.CallToolResult, typeTextOutput, error) {
	method := strings.ToLower(strings.TrimSpace(in.Method))
	switch method {
	case "", "auto", "unicode":
		method = "unicode"
	case "vk", "keys":
		method = "vk"
	case "clipboard":
	default:
		return nil, typeTextOutput{}, fmt.Errorf("unknown type method %q (use \"unicode\", \"clipboard\", or \"vk\")", in.Method)
	}

	if in.Text != "" {
		var err error
		switch method {
		case "unicode":
			err = s.typeKeys(ctx, in.Text)
		case "clipboard":
			err = s.typeViaClipboard(ctx, in.Text)
		case "vk":
			err = s.typeVK(ctx, in.Text)
		}
		if err != nil {
			return nil, typeTextOutput{}, err
		}
	}

	if in.PressEnter {
		if err := s.limiter.Wait(ctx, rate.KindKey); err != nil {
			return nil, typeTextOutput{}, err
		}
		if err := s.tapKey("enter"); err != nil {
			return nil, typeTextOutput{}, err
		}
	}

	return nil, typeTextOutput{Chars: len([]rune(in.Text)), Method: method}, nil
}

// typeKeys sends contiguous printable runs as single SendText calls, one
// key slot each, so backends that spawn a process per call stay cheap.
// Newlines and tabs go through the key path so they land as real key
// presses.
func (s *Server) typeKeys(ctx context.Context, text string) error {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for text != "" {
		if err := s.limiter.Wait(ctx, rate.KindKey); err != nil {
			return err
		}
		switch text[0] {
		case '\n':
			if err := s.tapKey("enter"); err != nil {
				return err
			}
			text = text[1:]
		case '\t':
			if err := s.tapKey("tab"); err != nil {
				return err
			}
			text = text[1:]
		default:
			chunk := text
			if i := strings.IndexAny(text, "\n\t"); i >= 0 {
				chunk, text = text[:i], text[i:]
			} else {
				text = ""
			}
			if err := s.be.SendText(chunk); err != nil {
				return err
			}
		}
	}
	return nil
}

// typeVK taps each character as a key event. Some games ignore injected
// text but accept plain key presses. Characters with no key mapping are
// skipped rather than failing the rest of the string.
func (s *Server) typeVK(ctx context.Context, text string) error {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, r := range text {
		if err := s.limiter.Wait(ctx, rate.KindKey); err != nil {
			return err
		}
		name := string(r)
		switch r {
		case '\n':
			name = "enter"
		case '\t':
			name = "tab"
		case ' ':
			name = "space"
		}
		if err := s.tapKey(name); err != nil {
			logger.Debugf("Skipping %q: %v", name, err)
		}
	}
	return nil
}

func (s *Server) tapKey(key string) error {
	if err := s.be.KeyDown(key); err != nil {
		return err
	}
	time.Sleep(3 * time.Millisecond)
	return s.be.KeyUp(key)
}

// typeViaClipboard stashes the clipboard, pastes the text with ctrl+v, and
// restores the previous contents.
func (s *Server) typeViaClipboard(ctx context.Context, text string) error {
	prev, prevErr := clip.GetText()
	if err := clip.SetText(text); err != nil {
		return err
	}
	if err := s.limiter.Wait(ctx, rate.KindKey); err != nil {
		return err
	}
	if err := s.be.Hotkey("ctrl+v"); err != nil {
		return err
	}
	if prevErr == nil {
		// give the paste a moment to read the clipboard before restoring
		time.Sleep(200 * time.Millisecond)
		if err := clip.SetText(prev); err != nil {
			logger.Warnf("Could not restore clipboard: %v", err)
		}
	}
	return nil
}

type sendShortcutInput struct {
	Combo string `json:"combo" jsonschema:"shortcut such as ctrl+c, alt+tab, or win+r"`
}

type sendShortcutOutput struct {
	Combo string `json:"combo"`
}

func (s *Server) handleSendShortcut(ctx context.Context, _ *mcp.CallToolRequest, in sendShortcutInput) (*mcp.CallToolResult, sendShortcutOutput, error) {
	if strings.TrimSpace(in.Combo) == "" {
		return nil, sendShortcutOutput{}, fmt.Errorf("empty shortcut")
	}
	if err := s.limiter.Wait(ctx, rate.KindKey); err != nil {
		return nil, sendShortcutOutput{}, err
	}
	if err := s.be.Hotkey(in.Combo); err != nil {
		return nil, sendShortcutOutput{}, err
	}
	return nil, sendShortcutOutput{Combo: in.Combo}, nil
}

type keyInput struct {
	Key        string `json:"key" jsonschema:"key name, e.g. enter, escape, f5, a"`
	Action     string `json:"action,omitempty" jsonschema:"tap (default), down, up, or hold"`
	Times      int    `json:"times,omitempty" jsonschema:"tap repetitions, default 1"`
	IntervalMS *int   `json:"interval_ms,omitempty" jsonschema:"delay between taps in milliseconds, default 40"`
	HoldMS     int    `json:"hold_ms,omitempty" jsonschema:"how long to hold the key for action hold"`
}

type keyOutput struct {
	Key    string `json:"key"`
	Action string `json:"action"`
	Times  int    `json:"times"`
}

func (s *Server) handleKey(ctx context.Context, _ *mcp.CallToolRequest, in keyInput) (*mcp.CallToolResult, keyOutput, error) {
	if strings.TrimSpace(in.Key) == "" {
		return nil, keyOutput{}, fmt.Errorf("empty key")
	}
	action := strings.ToLower(strings.TrimSpace(in.Action))
	if action == "" {
		action = "tap"
	}
	times := in.Times
	if times < 1 {
		times = 1
	}

	switch action {
	case "down", "up", "hold":
		if err := s.limiter.Wait(ctx, rate.KindKey); err != nil {
			return nil, keyOutput{}, err
		}
		var err error
		switch action {
		case "down":
			err = s.be.KeyDown(in.Key)
		case "up":
			err = s.be.KeyUp(in.Key)
		case "hold":
			err = s.holdKey(in.Key, in.HoldMS)
		}
		if err != nil {
			return nil, keyOutput{}, err
		}
		return nil, keyOutput{Key: in.Key, Action: action, Times: 1}, nil
	case "tap":
	default:
		return nil, keyOutput{}, fmt.Errorf("unknown key action %q (use \"tap\", \"down\", \"up\", or \"hold\")", in.Action)
	}

	interval := 40 * time.Millisecond
	if in.IntervalMS != nil && *in.IntervalMS >= 0 {
		interval = time.Duration(*in.IntervalMS) * time.Millisecond
	}
	// The down-to-up gap follows the tap interval but stays short enough
	// that key repeat never kicks in.
	pressGap := min(interval, 250*time.Millisecond)
	for i := 0; i < times; i++ {
		if err := s.limiter.Wait(ctx, rate.KindKey); err != nil {
			return nil, keyOutput{}, err
		}
		if err := s.be.KeyDown(in.Key); err != nil {
			return nil, keyOutput{}, err
		}
		time.Sleep(pressGap)
		if err := s.be.KeyUp(in.Key); err != nil {
			return nil, keyOutput{}, err
		}
		if interval > 0 && i < times-1 {
			time.Sleep(interval)
		}
	}
	return nil, keyOutput{Key: in.Key, Action: action, Times: times}, nil
}

// holdKey presses the key for the given duration, releasing it even when
// the press fails partway.
func (s *Server) holdKey(key string, holdMS int) error {
	if err := s.be.KeyDown(key); err != nil {
		return err
	}
	if holdMS > 0 {
		time.Sleep(time.Duration(holdMS) * time.Millisecond)
	}
	return s.be.KeyUp(key)
}

type keyComboInput struct {
	Keys   []string `json:"keys" jsonschema:"keys pressed together, held in order and released in reverse"`
	HoldMS *int     `json:"hold_ms,omitempty" jsonschema:"how long to hold the combo in milliseconds, default 300"`
}

type keyComboOutput struct {
	Keys   []string `json:"keys"`
	HoldMS int      `json:"hold_ms"`
}

func (s *Server) handleKeyCombo(ctx context.Context, _ *mcp.CallToolRequest, in keyComboInput) (*mcp.CallToolResult, keyComboOutput, error) {
	if len(in.Keys) == 0 {
		return nil, keyComboOutput{}, fmt.Errorf("empty key list")
	}
	hold := 300 * time.Millisecond
	holdMS := 300
	if in.HoldMS != nil && *in.HoldMS >= 0 {
		holdMS = *in.HoldMS
		hold = time.Duration(holdMS) * time.Millisecond
	}

	var pressed []string
	release := func() {
		for i := len(pressed) - 1; i >= 0; i-- {
			if err := s.be.KeyUp(pressed[i]); err != nil {
				logger.Warnf("Releasing %q: %v", pressed[i], err)
			}
		}
	}

	for _, key := range in.Keys {
		if err := s.limiter.Wait(ctx, rate.KindKey); err != nil {
			release()
			return nil, keyComboOutput{}, err
		}
		if err := s.be.KeyDown(key); err != nil {
			release()
			return nil, keyComboOutput{}, err
		}
		pressed = append(pressed, key)
	}
	time.Sleep(hold)
	release()

	return nil, keyComboOutput{Keys: in.Keys, HoldMS: holdMS}, nil
}

type clipboardGetInput struct{}

type clipboardGetOutput struct {
	Text string `json:"text"`
}

func (s *Server) handleClipboardGet(_ context.Context, _ *mcp.CallToolRequest, _ clipboardGetInput) (*mcp.CallToolResult, clipboardGetOutput, error) {
	text, err := clip.GetText()
	if err != nil {
		return nil, clipboardGetOutput{}, err
	}
	return nil, clipboardGetOutput{Text: text}, nil
}

type clipboardSetInput struct {
	Text string `json:"text" jsonschema:"text to place on the clipboard"`
}

type clipboardSetOutput struct {
	Chars int `json:"chars"`
}

func (s *Server) handleClipboardSet(_ context.Context, _ *mcp.CallToolRequest, in clipboardSetInput) (*mcp.CallToolResult, clipboardSetOutput, error) {
	if err := clip.SetText(in.Text); err != nil {
		return nil, clipboardSetOutput{}, err
	}
	return nil, clipboardSetOutput{Chars: len([]rune(in.Text))}, nil
}

type rateConfigureInput struct {
	MoveHz       *float64 `json:"move_hz,omitempty" jsonschema:"mouse move steps per second, 15-480"`
	MaxDelta     *int     `json:"max_delta,omitempty" jsonschema:"max pixels per move step per axis, min 1"`
	Smooth       *float64 `json:"smooth,omitempty" jsonschema:"motion smoothing factor, 0-0.98"`
	ClicksPerSec *float64 `json:"clicks_per_sec,omitempty" jsonschema:"click events per second, 1-60"`
	KeysPerSec   *float64 `json:"keys_per_sec,omitempty" jsonschema:"key events per second, 1-60"`
}

func (s *Server) handleRateConfigure(_ context.Context, _ *mcp.CallToolRequest, in rateConfigureInput) (*mcp.CallToolResult, rateSettings, error) {
	cfg := s.limiter.Config()
	if in.MoveHz != nil {
		cfg.MoveHz = *in.MoveHz
	}
	if in.MaxDelta != nil {
		cfg.MaxDelta = *in.MaxDelta
	}
	if in.Smooth != nil {
		cfg.Smooth = *in.Smooth
	}
	if in.ClicksPerSec != nil {
		cfg.ClicksPerSec = *in.ClicksPerSec
	}
	if in.KeysPerSec != nil {
		cfg.KeysPerSec = *in.KeysPerSec
	}

	applied := s.limiter.SetConfig(cfg)
	logger.Infof("Rate limits updated: move=%.0fHz delta=%d smooth=%.2f clicks=%.1f/s keys=%.1f/s",
		applied.MoveHz, applied.MaxDelta, applied.Smooth, applied.ClicksPerSec, applied.KeysPerSec)
	return nil, toRateSettings(applied), nil
}

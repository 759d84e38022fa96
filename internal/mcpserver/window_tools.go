package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bnema/winject/internal/logger"
	"github.com/bnema/winject/internal/screen"
	"github.com/bnema/winject/internal/winman"
)

func (s *Server) registerWindowTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "desktop_info",
		Description: "Report the virtual screen, every monitor, and the cursor position.",
	}, s.handleDesktopInfo)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "window_info",
		Description: "Describe a window by handle, or the foreground window when no handle is given.",
	}, s.handleWindowInfo)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "window_list",
		Description: "List windows in Z order, filtered by free-text query, title, class, or process id. Set parent_hwnd to list a window's children.",
	}, s.handleWindowList)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "window_select",
		Description: "Find the window whose title best matches a query and bring it to the foreground.",
	}, s.handleWindowSelect)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "window_activate",
		Description: "Bring a window to the foreground by handle, with optional show state and always-on-top pinning.",
	}, s.handleWindowActivate)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "window_set_pos",
		Description: "Move, resize, and/or restack a window. Accepts loc/size in any coordinate form or split x/y/width/height fields; omitted fields keep the current geometry.",
	}, s.handleWindowSetPos)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "window_close",
		Description: "Ask a window to close. The application may prompt to save or refuse.",
	}, s.handleWindowClose)
}

// windowOut is the wire shape of one window.
type windowOut struct {
	HWND      string `json:"hwnd"`
	Title     string `json:"title"`
	Class     string `json:"class"`
	PID       uint32 `json:"pid"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Visible   bool   `json:"visible"`
	Minimized bool   `json:"minimized"`
	Cloaked   bool   `json:"cloaked,omitempty"`
}

func toWindowOut(w winman.Window) windowOut {
	return windowOut{
		HWND:      winman.FormatHWND(w.HWND),
		Title:     w.Title,
		Class:     w.Class,
		PID:       w.PID,
		X:         int(w.Rect.Left),
		Y:         int(w.Rect.Top),
		Width:     w.Rect.Width(),
		Height:    w.Rect.Height(),
		Visible:   w.Visible,
		Minimized: w.Minimized,
		Cloaked:   w.Cloaked,
	}
}

type desktopInfoInput struct{}

type desktopInfoOutput struct {
	Desktop screen.Desktop `json:"desktop"`
	Cursor  cursorOut      `json:"cursor"`
}

func (s *Server) handleDesktopInfo(_ context.Context, _ *mcp.CallToolRequest, _ desktopInfoInput) (*mcp.CallToolResult, desktopInfoOutput, error) {
	desktop, err := screen.Info()
	if err != nil {
		return nil, desktopInfoOutput{}, err
	}
	x, y := s.cursorPos()
	return nil, desktopInfoOutput{Desktop: desktop, Cursor: cursorOut{X: x, Y: y}}, nil
}

type windowInfoInput struct {
	HWND any `json:"hwnd,omitempty" jsonschema:"window handle as number or decimal/0x-hex string; omit for the foreground window"`
}

type windowInfoOutput struct {
	Window windowOut `json:"window"`
}

func (s *Server) handleWindowInfo(_ context.Context, _ *mcp.CallToolRequest, in windowInfoInput) (*mcp.CallToolResult, windowInfoOutput, error) {
	var (
		w   winman.Window
		err error
	)
	if in.HWND == nil {
		w, err = winman.Active()
	} else {
		var hwnd uintptr
		hwnd, err = coerceHWND(in.HWND)
		if err == nil {
			w, err = winman.Get(hwnd)
		}
	}
	if err != nil {
		return nil, windowInfoOutput{}, err
	}
	return nil, windowInfoOutput{Window: toWindowOut(w)}, nil
}

type windowListInput struct {
	Query         string `json:"query,omitempty" jsonschema:"free-text filter matched against title, class, and process id"`
	Title         string `json:"title,omitempty" jsonschema:"case-insensitive title substring filter"`
	Class         string `json:"class,omitempty" jsonschema:"exact window class filter"`
	PID           uint32 `json:"pid,omitempty" jsonschema:"owning process id filter"`
	All           bool   `json:"all,omitempty" jsonschema:"include invisible windows; only visible ones are listed by default"`
	SkipMinimized bool   `json:"skip_minimized,omitempty" jsonschema:"drop minimized windows"`
	SkipCloaked   bool   `json:"skip_cloaked,omitempty" jsonschema:"drop DWM-cloaked windows"`
	ParentHWND    any    `json:"parent_hwnd,omitempty" jsonschema:"enumerate child windows of this handle instead of top-level windows"`
	Limit         int    `json:"limit,omitempty" jsonschema:"max results, default 50"`
}

type windowListOutput struct {
	Windows []windowOut `json:"windows"`
	Total   int         `json:"total"`
}

func (s *Server) handleWindowList(_ context.Context, _ *mcp.CallToolRequest, in windowListInput) (*mcp.CallToolResult, windowListOutput, error) {
	var (
		all []winman.Window
		err error
	)
	if in.ParentHWND != nil {
		var parent uintptr
		parent, err = coerceHWND(in.ParentHWND)
		if err == nil {
			all, err = winman.ListChildren(parent)
		}
	} else {
		all, err = winman.List()
	}
	if err != nil {
		return nil, windowListOutput{}, err
	}

	limit := in.Limit
	if limit <= 0 {
		limit = 50
	}
	filtered := winman.Apply(all, winman.Filter{
		Query:         in.Query,
		Title:         in.Title,
		Class:         in.Class,
		PID:           in.PID,
		VisibleOnly:   !in.All,
		SkipMinimized: in.SkipMinimized,
		SkipCloaked:   in.SkipCloaked,
		Limit:         limit,
	})

	out := windowListOutput{Windows: make([]windowOut, 0, len(filtered)), Total: len(all)}
	for _, w := range filtered {
		out.Windows = append(out.Windows, toWindowOut(w))
	}
	return nil, out, nil
}

type windowSelectInput struct {
	Title string `json:"title" jsonschema:"title query; exact match wins over prefix over substring"`
	Index *int   `json:"index,omitempty" jsonschema:"pick the nth match in Z order instead of the best title match"`
}

type windowSelectOutput struct {
	Window    windowOut `json:"window"`
	Activated bool      `json:"activated"`
}

func (s *Server) handleWindowSelect(_ context.Context, _ *mcp.CallToolRequest, in windowSelectInput) (*mcp.CallToolResult, windowSelectOutput, error) {
	all, err := winman.List()
	if err != nil {
		return nil, windowSelectOutput{}, err
	}

	var w winman.Window
	if in.Index != nil {
		matches := winman.Apply(all, winman.Filter{
			Query:       in.Title,
			VisibleOnly: true,
			SkipCloaked: true,
		})
		if *in.Index < 0 || *in.Index >= len(matches) {
			return nil, windowSelectOutput{}, fmt.Errorf("index %d out of range, %d windows matched", *in.Index, len(matches))
		}
		w = matches[*in.Index]
	} else {
		// Prefer visible windows, falling back to the full list so minimized
		// and background windows can still be selected by name.
		visible := winman.Apply(all, winman.Filter{VisibleOnly: true, SkipCloaked: true})
		w, err = winman.BestMatch(visible, in.Title)
		if err != nil {
			w, err = winman.BestMatch(all, in.Title)
		}
		if err != nil {
			return nil, windowSelectOutput{}, err
		}
	}

	activated := true
	if err := winman.Activate(w.HWND, winman.ActivateOptions{}); err != nil {
		logger.Warnf("Selected %s but activation failed: %v", winman.FormatHWND(w.HWND), err)
		activated = false
	}
	return nil, windowSelectOutput{Window: toWindowOut(w), Activated: activated}, nil
}

type windowActivateInput struct {
	HWND    any    `json:"hwnd" jsonschema:"window handle as number or decimal/0x-hex string"`
	Show    string `json:"show,omitempty" jsonschema:"restore, show, minimize, or maximize; default restores when minimized"`
	Topmost *bool  `json:"topmost,omitempty" jsonschema:"pin (true) or unpin (false) the window above others; omit to leave unchanged"`
}

type windowActivateOutput struct {
	Window windowOut `json:"window"`
}

func (s *Server) handleWindowActivate(_ context.Context, _ *mcp.CallToolRequest, in windowActivateInput) (*mcp.CallToolResult, windowActivateOutput, error) {
	hwnd, err := coerceHWND(in.HWND)
	if err != nil {
		return nil, windowActivateOutput{}, err
	}
	opts := winman.ActivateOptions{
		Show:    strings.ToLower(strings.TrimSpace(in.Show)),
		Topmost: in.Topmost,
	}
	if err := winman.Activate(hwnd, opts); err != nil {
		return nil, windowActivateOutput{}, err
	}
	w, err := winman.Get(hwnd)
	if err != nil {
		return nil, windowActivateOutput{}, err
	}
	return nil, windowActivateOutput{Window: toWindowOut(w)}, nil
}

type windowSetPosInput struct {
	HWND   any    `json:"hwnd" jsonschema:"window handle as number or decimal/0x-hex string"`
	Loc    any    `json:"loc,omitempty" jsonschema:"new top-left corner: [x,y] array, {x,y} object, or \"x,y\" string"`
	Size   any    `json:"size,omitempty" jsonschema:"new size: [w,h] array, {w,h} object, or \"w,h\" string"`
	X      *int   `json:"x,omitempty" jsonschema:"new left edge"`
	Y      *int   `json:"y,omitempty" jsonschema:"new top edge"`
	Width  *int   `json:"width,omitempty" jsonschema:"new width in pixels"`
	Height *int   `json:"height,omitempty" jsonschema:"new height in pixels"`
	Z      string `json:"z,omitempty" jsonschema:"z order change: topmost, notopmost, top, or bottom"`
}

// setPosFromInput folds the loc/size shapes and the split fields into one
// placement. loc and size win over the split fields when both are given.
func setPosFromInput(in windowSetPosInput) (winman.Pos, error) {
	pos := winman.Pos{X: in.X, Y: in.Y, W: in.Width, H: in.Height, Z: strings.ToLower(strings.TrimSpace(in.Z))}
	if in.Loc != nil {
		x, y, err := coerceLoc(in.Loc)
		if err != nil {
			return winman.Pos{}, err
		}
		pos.X, pos.Y = &x, &y
	}
	if in.Size != nil {
		w, h, err := coerceSize(in.Size)
		if err != nil {
			return winman.Pos{}, err
		}
		pos.W, pos.H = &w, &h
	}
	if pos.X == nil && pos.Y == nil && pos.W == nil && pos.H == nil && pos.Z == "" {
		return winman.Pos{}, fmt.Errorf("nothing to change: give loc, size, x, y, width, height, or z")
	}
	return pos, nil
}

type windowSetPosOutput struct {
	Window windowOut `json:"window"`
}

func (s *Server) handleWindowSetPos(_ context.Context, _ *mcp.CallToolRequest, in windowSetPosInput) (*mcp.CallToolResult, windowSetPosOutput, error) {
	hwnd, err := coerceHWND(in.HWND)
	if err != nil {
		return nil, windowSetPosOutput{}, err
	}
	pos, err := setPosFromInput(in)
	if err != nil {
		return nil, windowSetPosOutput{}, err
	}
	if err := winman.SetPos(hwnd, pos); err != nil {
		return nil, windowSetPosOutput{}, err
	}
	w, err := winman.Get(hwnd)
	if err != nil {
		return nil, windowSetPosOutput{}, err
	}
	return nil, windowSetPosOutput{Window: toWindowOut(w)}, nil
}

type windowCloseInput struct {
	HWND any `json:"hwnd" jsonschema:"window handle as number or decimal/0x-hex string"`
}

type windowCloseOutput struct {
	HWND   string `json:"hwnd"`
	Closed bool   `json:"closed"`
}

func (s *Server) handleWindowClose(_ context.Context, _ *mcp.CallToolRequest, in windowCloseInput) (*mcp.CallToolResult, windowCloseOutput, error) {
	hwnd, err := coerceHWND(in.HWND)
	if err != nil {
		return nil, windowCloseOutput{}, err
	}
	if err := winman.Close(hwnd); err != nil {
		return nil, windowCloseOutput{}, err
	}
	return nil, windowCloseOutput{HWND: winman.FormatHWND(hwnd), Closed: true}, nil
}

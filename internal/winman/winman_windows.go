//go:build windows

package winman

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/bnema/winject/internal/logger"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	dwmapi                       = windows.NewLazySystemDLL("dwmapi.dll")
	procEnumWindows              = user32.NewProc("EnumWindows")
	procEnumChildWindows         = user32.NewProc("EnumChildWindows")
	procIsWindow                 = user32.NewProc("IsWindow")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procIsIconic                 = user32.NewProc("IsIconic")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
	procGetClassNameW            = user32.NewProc("GetClassNameW")
	procGetWindowRect            = user32.NewProc("GetWindowRect")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procSetForegroundWindow      = user32.NewProc("SetForegroundWindow")
	procBringWindowToTop         = user32.NewProc("BringWindowToTop")
	procShowWindow               = user32.NewProc("ShowWindow")
	procSetWindowPos             = user32.NewProc("SetWindowPos")
	procPostMessageW             = user32.NewProc("PostMessageW")
	procAttachThreadInput        = user32.NewProc("AttachThreadInput")
	procDwmGetWindowAttribute    = dwmapi.NewProc("DwmGetWindowAttribute")
)

const (
	swRestore  = 9
	swShow     = 5
	swMinimize = 6
	swMaximize = 3

	swpNoSize     = 0x0001
	swpNoMove     = 0x0002
	swpNoZOrder   = 0x0004
	swpNoActivate = 0x0010
	swpShowWindow = 0x0040

	wmClose = 0x0010

	dwmwaCloaked = 14
)

// Insert-after handles for SetWindowPos Z ordering.
var (
	hwndTop       = uintptr(0)
	hwndBottom    = uintptr(1)
	hwndTopmost   = ^uintptr(0)     // -1
	hwndNoTopmost = ^uintptr(0) - 1 // -2
)

func insertAfterFor(z string) (uintptr, error) {
	switch z {
	case "topmost":
		return hwndTopmost, nil
	case "notopmost":
		return hwndNoTopmost, nil
	case "top":
		return hwndTop, nil
	case "bottom":
		return hwndBottom, nil
	}
	return 0, fmt.Errorf("unknown z order %q (use topmost, notopmost, top, or bottom)", z)
}

// List snapshots every top-level window, in Z order.
func List() ([]Window, error) {
	var out []Window
	cb := windows.NewCallback(func(hwnd, _ uintptr) uintptr {
		out = append(out, snapshot(hwnd))
		return 1
	})
	procEnumWindows.Call(cb, 0)
	return out, nil
}

// ListChildren snapshots the child windows of a parent.
func ListChildren(parent uintptr) ([]Window, error) {
	if ok, _, _ := procIsWindow.Call(parent); ok == 0 {
		return nil, fmt.Errorf("%w: handle %s", ErrNotFound, FormatHWND(parent))
	}
	var out []Window
	cb := windows.NewCallback(func(hwnd, _ uintptr) uintptr {
		out = append(out, snapshot(hwnd))
		return 1
	})
	procEnumChildWindows.Call(parent, cb, 0)
	return out, nil
}

// Get snapshots a single window by handle.
func Get(hwnd uintptr) (Window, error) {
	if ok, _, _ := procIsWindow.Call(hwnd); ok == 0 {
		return Window{}, fmt.Errorf("%w: handle %s", ErrNotFound, FormatHWND(hwnd))
	}
	return snapshot(hwnd), nil
}

// Active returns the foreground window.
func Active() (Window, error) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return Window{}, fmt.Errorf("%w: no foreground window", ErrNotFound)
	}
	return snapshot(hwnd), nil
}

// Activate applies the requested show state and brings the window to the
// foreground. SetForegroundWindow is refused when another process owns
// the foreground; attaching to its input thread lifts that restriction.
func Activate(hwnd uintptr, opts ActivateOptions) error {
	if ok, _, _ := procIsWindow.Call(hwnd); ok == 0 {
		return fmt.Errorf("%w: handle %s", ErrNotFound, FormatHWND(hwnd))
	}

	switch opts.Show {
	case "":
		if iconic, _, _ := procIsIconic.Call(hwnd); iconic != 0 {
			procShowWindow.Call(hwnd, swRestore)
		} else {
			procShowWindow.Call(hwnd, swShow)
		}
	case "restore":
		procShowWindow.Call(hwnd, swRestore)
	case "show":
		procShowWindow.Call(hwnd, swShow)
	case "maximize":
		procShowWindow.Call(hwnd, swMaximize)
	case "minimize":
		procShowWindow.Call(hwnd, swMinimize)
		return applyTopmost(hwnd, opts.Topmost)
	default:
		return fmt.Errorf("unknown show state %q (use restore, show, minimize, or maximize)", opts.Show)
	}
	procSetForegroundWindow.Call(hwnd)

	if fg, _, _ := procGetForegroundWindow.Call(); fg == hwnd {
		return nil
	}

	fg, _, _ := procGetForegroundWindow.Call()
	fgThread, _, _ := procGetWindowThreadProcessId.Call(fg, 0)
	targetThread, _, _ := procGetWindowThreadProcessId.Call(hwnd, 0)
	if fgThread != targetThread {
		procAttachThreadInput.Call(fgThread, targetThread, 1)
		procSetForegroundWindow.Call(hwnd)
		procBringWindowToTop.Call(hwnd)
		procAttachThreadInput.Call(fgThread, targetThread, 0)
	}
	time.Sleep(50 * time.Millisecond)

	if fg, _, _ := procGetForegroundWindow.Call(); fg != hwnd {
		logger.Warnf("Window %s did not reach the foreground", FormatHWND(hwnd))
		return fmt.Errorf("could not bring window %s to the foreground", FormatHWND(hwnd))
	}
	return applyTopmost(hwnd, opts.Topmost)
}

func applyTopmost(hwnd uintptr, topmost *bool) error {
	if topmost == nil {
		return nil
	}
	after := hwndNoTopmost
	if *topmost {
		after = hwndTopmost
	}
	ok, _, callErr := procSetWindowPos.Call(hwnd, after, 0, 0, 0, 0,
		swpNoMove|swpNoSize|swpShowWindow)
	if ok == 0 {
		return fmt.Errorf("setting topmost on %s: %w", FormatHWND(hwnd), callErr)
	}
	return nil
}

// SetPos moves and/or resizes a window, optionally changing its Z order.
// Nil placement fields keep the window's current geometry.
func SetPos(hwnd uintptr, pos Pos) error {
	w, err := Get(hwnd)
	if err != nil {
		return err
	}

	insertAfter := hwndTop
	flags := uintptr(swpNoActivate)
	if pos.Z == "" {
		flags |= swpNoZOrder
	} else {
		insertAfter, err = insertAfterFor(pos.Z)
		if err != nil {
			return err
		}
	}

	x, y := int(w.Rect.Left), int(w.Rect.Top)
	width, height := w.Rect.Width(), w.Rect.Height()
	if pos.X != nil {
		x = *pos.X
	}
	if pos.Y != nil {
		y = *pos.Y
	}
	if pos.W != nil {
		width = *pos.W
	}
	if pos.H != nil {
		height = *pos.H
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", width, height)
	}

	ok, _, callErr := procSetWindowPos.Call(hwnd, insertAfter,
		uintptr(uint32(int32(x))), uintptr(uint32(int32(y))),
		uintptr(uint32(int32(width))), uintptr(uint32(int32(height))),
		flags)
	if ok == 0 {
		return fmt.Errorf("SetWindowPos on %s: %w", FormatHWND(hwnd), callErr)
	}
	return nil
}

// Close asks the window to close. WM_CLOSE is a request, not a kill; the
// application may prompt or refuse.
func Close(hwnd uintptr) error {
	if ok, _, _ := procIsWindow.Call(hwnd); ok == 0 {
		return fmt.Errorf("%w: handle %s", ErrNotFound, FormatHWND(hwnd))
	}
	ok, _, callErr := procPostMessageW.Call(hwnd, wmClose, 0, 0)
	if ok == 0 {
		return fmt.Errorf("posting WM_CLOSE to %s: %w", FormatHWND(hwnd), callErr)
	}
	return nil
}

func snapshot(hwnd uintptr) Window {
	w := Window{HWND: hwnd}

	var buf [512]uint16
	if n, _, _ := procGetWindowTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf))); n > 0 {
		w.Title = windows.UTF16ToString(buf[:n])
	}
	if n, _, _ := procGetClassNameW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf))); n > 0 {
		w.Class = windows.UTF16ToString(buf[:n])
	}

	var pid uint32
	procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
	w.PID = pid

	procGetWindowRect.Call(hwnd, uintptr(unsafe.Pointer(&w.Rect)))

	vis, _, _ := procIsWindowVisible.Call(hwnd)
	w.Visible = vis != 0
	iconic, _, _ := procIsIconic.Call(hwnd)
	w.Minimized = iconic != 0

	var cloaked uint32
	procDwmGetWindowAttribute.Call(hwnd, dwmwaCloaked,
		uintptr(unsafe.Pointer(&cloaked)), unsafe.Sizeof(cloaked))
	w.Cloaked = cloaked != 0

	return w
}

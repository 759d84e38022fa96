// Package winman enumerates and manipulates top-level windows.
//
// The syscall layer is windows-only; matching, filtering and handle
// parsing are portable so callers and tests work everywhere.
package winman

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrUnsupported is returned by every manipulation call on platforms
	// without a window manager we can talk to.
	ErrUnsupported = errors.New("window management requires windows")

	// ErrNotFound is returned when no window matches a query.
	ErrNotFound = errors.New("no matching window")
)

// Rect is a window rectangle in virtual-screen coordinates.
type Rect struct {
	Left   int32 `json:"left"`
	Top    int32 `json:"top"`
	Right  int32 `json:"right"`
	Bottom int32 `json:"bottom"`
}

func (r Rect) Width() int  { return int(r.Right - r.Left) }
func (r Rect) Height() int { return int(r.Bottom - r.Top) }

// Window is a snapshot of one top-level window.
type Window struct {
	HWND      uintptr `json:"hwnd"`
	Title     string  `json:"title"`
	Class     string  `json:"class"`
	PID       uint32  `json:"pid"`
	Rect      Rect    `json:"rect"`
	Visible   bool    `json:"visible"`
	Minimized bool    `json:"minimized"`
	Cloaked   bool    `json:"cloaked"`
}

// Filter narrows a window enumeration. String fields match
// case-insensitively; Title is a substring match, Class is exact, and
// Query matches any of title, class, or the decimal process id.
type Filter struct {
	Query         string
	Title         string
	Class         string
	PID           uint32
	VisibleOnly   bool
	SkipMinimized bool
	SkipCloaked   bool
	Limit         int
}

// Match reports whether w passes the filter.
func (f Filter) Match(w Window) bool {
	if f.VisibleOnly && !w.Visible {
		return false
	}
	if f.SkipMinimized && w.Minimized {
		return false
	}
	if f.SkipCloaked && w.Cloaked {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(w.Title), q) &&
			!strings.Contains(strings.ToLower(w.Class), q) &&
			!strings.Contains(strconv.FormatUint(uint64(w.PID), 10), q) {
			return false
		}
	}
	if f.Title != "" && !strings.Contains(strings.ToLower(w.Title), strings.ToLower(f.Title)) {
		return false
	}
	if f.Class != "" && !strings.EqualFold(w.Class, f.Class) {
		return false
	}
	if f.PID != 0 && w.PID != f.PID {
		return false
	}
	return true
}

// Apply filters windows and truncates to the filter limit.
func Apply(windows []Window, f Filter) []Window {
	out := make([]Window, 0, len(windows))
	for _, w := range windows {
		if !f.Match(w) {
			continue
		}
		out = append(out, w)
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out
}

// BestMatch picks the window whose title best matches query: exact match
// first, then prefix, then substring, all case-insensitive. Ties go to
// enumeration order, which puts windows higher in the Z order first.
func BestMatch(windows []Window, query string) (Window, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Window{}, fmt.Errorf("%w: empty title query", ErrNotFound)
	}

	best := -1
	bestRank := 0
	for i, w := range windows {
		title := strings.ToLower(w.Title)
		var rank int
		switch {
		case title == q:
			rank = 3
		case strings.HasPrefix(title, q):
			rank = 2
		case strings.Contains(title, q):
			rank = 1
		default:
			continue
		}
		if rank > bestRank {
			best, bestRank = i, rank
		}
	}
	if best < 0 {
		return Window{}, fmt.Errorf("%w: title %q", ErrNotFound, query)
	}
	return windows[best], nil
}

// ParseHWND accepts a window handle as decimal or 0x-prefixed hex.
func ParseHWND(s string) (uintptr, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty window handle")
	}
	base := 10
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 64)
	if err != nil || v == 0 {
		return 0, fmt.Errorf("invalid window handle %q", s)
	}
	return uintptr(v), nil
}

// FormatHWND renders a handle the way users pass it back in.
func FormatHWND(h uintptr) string {
	return fmt.Sprintf("0x%X", uint64(h))
}

// Pos describes a window placement change. Nil fields keep the current
// value. Z is one of "topmost", "notopmost", "top", "bottom", or empty to
// leave the Z order alone.
type Pos struct {
	X *int
	Y *int
	W *int
	H *int
	Z string
}

// ActivateOptions tune how a window is brought forward. Show is one of
// "restore", "show", "minimize", "maximize", or empty for restore-if-
// minimized. Topmost nil leaves the always-on-top state unchanged.
type ActivateOptions struct {
	Show    string
	Topmost *bool
}

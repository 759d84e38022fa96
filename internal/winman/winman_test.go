package winman

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleWindows() []Window {
	return []Window{
		{HWND: 0x100, Title: "Untitled - Notepad", Class: "Notepad", PID: 100, Visible: true},
		{HWND: 0x200, Title: "Mozilla Firefox", Class: "MozillaWindowClass", PID: 200, Visible: true},
		{HWND: 0x300, Title: "notes.txt - Notepad", Class: "Notepad", PID: 101, Visible: true, Minimized: true},
		{HWND: 0x400, Title: "Hidden Helper", Class: "HelperClass", PID: 300, Visible: false},
		{HWND: 0x500, Title: "Settings", Class: "ApplicationFrameWindow", PID: 400, Visible: true, Cloaked: true},
	}
}

func TestFilterMatch(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		want   []uintptr
	}{
		{"no filter keeps everything", Filter{}, []uintptr{0x100, 0x200, 0x300, 0x400, 0x500}},
		{"title substring case-insensitive", Filter{Title: "notepad"}, []uintptr{0x100, 0x300}},
		{"class exact case-insensitive", Filter{Class: "notepad"}, []uintptr{0x100, 0x300}},
		{"pid", Filter{PID: 200}, []uintptr{0x200}},
		{"visible only drops hidden", Filter{VisibleOnly: true}, []uintptr{0x100, 0x200, 0x300, 0x500}},
		{"skip cloaked", Filter{VisibleOnly: true, SkipCloaked: true}, []uintptr{0x100, 0x200, 0x300}},
		{"skip minimized", Filter{SkipMinimized: true}, []uintptr{0x100, 0x200, 0x400, 0x500}},
		{"query matches title", Filter{Query: "firefox"}, []uintptr{0x200}},
		{"query matches class", Filter{Query: "helperclass"}, []uintptr{0x400}},
		{"query matches pid", Filter{Query: "400"}, []uintptr{0x500}},
		{"limit truncates", Filter{Limit: 2}, []uintptr{0x100, 0x200}},
		{"combined", Filter{Title: "notepad", PID: 101}, []uintptr{0x300}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(sampleWindows(), tt.filter)
			hwnds := make([]uintptr, 0, len(got))
			for _, w := range got {
				hwnds = append(hwnds, w.HWND)
			}
			assert.Equal(t, tt.want, hwnds)
		})
	}
}

func TestBestMatch(t *testing.T) {
	windows := []Window{
		{HWND: 1, Title: "Notes"},
		{HWND: 2, Title: "notes.txt - Notepad"},
		{HWND: 3, Title: "My Notes"},
	}

	t.Run("exact beats prefix and substring", func(t *testing.T) {
		w, err := BestMatch(windows, "notes")
		require.NoError(t, err)
		assert.Equal(t, uintptr(1), w.HWND)
	})

	t.Run("prefix beats substring", func(t *testing.T) {
		w, err := BestMatch(windows, "notes.txt")
		require.NoError(t, err)
		assert.Equal(t, uintptr(2), w.HWND)
	})

	t.Run("substring fallback", func(t *testing.T) {
		w, err := BestMatch(windows, "my no")
		require.NoError(t, err)
		assert.Equal(t, uintptr(3), w.HWND)
	})

	t.Run("ties keep z order", func(t *testing.T) {
		w, err := BestMatch(windows, "ote")
		require.NoError(t, err)
		assert.Equal(t, uintptr(1), w.HWND)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := BestMatch(windows, "terminal")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty query", func(t *testing.T) {
		_, err := BestMatch(windows, "  ")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestParseHWND(t *testing.T) {
	tests := []struct {
		in      string
		want    uintptr
		wantErr bool
	}{
		{"123456", 123456, false},
		{"0x1E240", 123456, false},
		{"0X1e240", 123456, false},
		{" 42 ", 42, false},
		{"0", 0, true},
		{"", 0, true},
		{"abc", 0, true},
		{"0x", 0, true},
		{"-5", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseHWND(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.in)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestFormatHWND(t *testing.T) {
	assert.Equal(t, "0x1E240", FormatHWND(123456))

	h, err := ParseHWND(FormatHWND(0xABCD))
	require.NoError(t, err)
	assert.Equal(t, uintptr(0xABCD), h)
}

func TestRectSize(t *testing.T) {
	r := Rect{Left: -1920, Top: 0, Right: 0, Bottom: 1080}
	assert.Equal(t, 1920, r.Width())
	assert.Equal(t, 1080, r.Height())
}

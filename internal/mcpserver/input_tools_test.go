package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/winject/internal/backend"
	"github.com/bnema/winject/internal/config"
	"github.com/bnema/winject/internal/rate"
)

// recordBackend tracks every injection call and keeps a simulated cursor so
// the stepped move loop sees its own progress.
type recordBackend struct {
	calls []string
	x, y  int
	fail  error
}

func (r *recordBackend) Info() backend.Info {
	return backend.Info{Name: "record", Ready: true}
}

func (r *recordBackend) Move(x, y int) error {
	if r.fail != nil {
		return r.fail
	}
	r.calls = append(r.calls, fmt.Sprintf("move(%d,%d)", x, y))
	r.x, r.y = x, y
	return nil
}

func (r *recordBackend) Click(x, y int, b backend.Button, clicks int) error {
	if r.fail != nil {
		return r.fail
	}
	r.calls = append(r.calls, fmt.Sprintf("click(%d,%d,%s,%d)", x, y, b, clicks))
	return nil
}

func (r *recordBackend) Drag(x1, y1, x2, y2 int) error {
	r.calls = append(r.calls, fmt.Sprintf("drag(%d,%d,%d,%d)", x1, y1, x2, y2))
	r.x, r.y = x2, y2
	return nil
}

func (r *recordBackend) Scroll(times int, a backend.Axis, d backend.Direction) error {
	r.calls = append(r.calls, fmt.Sprintf("scroll(%d,%s,%s)", times, a, d))
	return nil
}

func (r *recordBackend) SendText(text string) error {
	r.calls = append(r.calls, "text("+text+")")
	return nil
}

func (r *recordBackend) Hotkey(combo string) error {
	r.calls = append(r.calls, "hotkey("+combo+")")
	return nil
}

func (r *recordBackend) KeyDown(key string) error {
	if r.fail != nil {
		return r.fail
	}
	r.calls = append(r.calls, "down("+key+")")
	return nil
}

func (r *recordBackend) KeyUp(key string) error {
	r.calls = append(r.calls, "up("+key+")")
	return nil
}

func (r *recordBackend) Close() error { return nil }

func newTestServer(t *testing.T) (*Server, *recordBackend) {
	t.Helper()
	be := &recordBackend{}
	cfg := config.DefaultConfig
	s := New(&cfg, be, "test")
	s.cursorPos = func() (int, int) { return be.x, be.y }
	// fast limits so tests spend no real time sleeping
	s.limiter.SetConfig(rate.Config{MoveHz: 480, MaxDelta: 60, ClicksPerSec: 60, KeysPerSec: 60})
	return s, be
}

func TestMoveCursorSteps(t *testing.T) {
	s, be := newTestServer(t)

	steps, err := s.moveCursor(context.Background(), 600, 0)
	require.NoError(t, err)

	// 600px at 60px per step is 10 steps; arrival needs no snap.
	assert.Equal(t, 10, steps)
	assert.Equal(t, 600, be.x)
	assert.Equal(t, 0, be.y)

	// No intermediate step may exceed the per-axis clamp.
	prev := 0
	for _, c := range be.calls {
		var x, y int
		_, err := fmt.Sscanf(c, "move(%d,%d)", &x, &y)
		require.NoError(t, err)
		assert.LessOrEqual(t, x-prev, 60, "step %s", c)
		prev = x
	}
}

func TestMoveCursorSmoothingSnaps(t *testing.T) {
	s, be := newTestServer(t)
	s.limiter.SetConfig(rate.Config{MoveHz: 480, MaxDelta: 60, Smooth: 0.9, ClicksPerSec: 60, KeysPerSec: 60})

	_, err := s.moveCursor(context.Background(), 100, 50)
	require.NoError(t, err)

	// Smoothing keeps rounding steps down, so the loop must still land
	// exactly on the target via the final snap.
	assert.Equal(t, 100, be.x)
	assert.Equal(t, 50, be.y)
}

func TestMoveCursorAlreadyThere(t *testing.T) {
	s, be := newTestServer(t)

	steps, err := s.moveCursor(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, steps)
	assert.Empty(t, be.calls)
}

func TestMoveCursorCancelled(t *testing.T) {
	s, _ := newTestServer(t)
	s.limiter.SetConfig(rate.Config{MoveHz: 15, MaxDelta: 1, ClicksPerSec: 60, KeysPerSec: 60})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.moveCursor(ctx, 5000, 5000)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHandleMouseMove(t *testing.T) {
	s, be := newTestServer(t)

	_, out, err := s.handleMouseMove(context.Background(), nil, mouseMoveInput{To: []any{float64(120), float64(80)}})
	require.NoError(t, err)
	assert.Equal(t, 120, out.X)
	assert.Equal(t, 80, out.Y)
	assert.Equal(t, 120, be.x)

	_, _, err = s.handleMouseMove(context.Background(), nil, mouseMoveInput{To: "not a location"})
	assert.Error(t, err)
}

func TestHandleMouseClick(t *testing.T) {
	t.Run("defaults to single left click in place", func(t *testing.T) {
		s, be := newTestServer(t)
		be.x, be.y = 33, 44

		_, out, err := s.handleMouseClick(context.Background(), nil, mouseClickInput{})
		require.NoError(t, err)
		assert.Equal(t, "left", out.Button)
		assert.Equal(t, 1, out.Clicks)
		assert.Equal(t, []string{"click(33,44,left,1)"}, be.calls)
	})

	t.Run("moves first when a location is given", func(t *testing.T) {
		s, be := newTestServer(t)

		_, out, err := s.handleMouseClick(context.Background(), nil, mouseClickInput{
			At:     map[string]any{"x": float64(10), "y": float64(20)},
			Button: "Right",
			Clicks: 2,
		})
		require.NoError(t, err)
		assert.Equal(t, "right", out.Button)
		assert.Equal(t, 10, out.X)
		assert.Equal(t, "click(10,20,right,2)", be.calls[len(be.calls)-1])
	})
}

func TestHandleMouseDrag(t *testing.T) {
	s, be := newTestServer(t)

	_, out, err := s.handleMouseDrag(context.Background(), nil, mouseDragInput{
		From: "10,10",
		To:   "50,50",
	})
	require.NoError(t, err)
	assert.Equal(t, 50, out.ToX)
	assert.Equal(t, "drag(10,10,50,50)", be.calls[len(be.calls)-1])
}

func TestHandleMouseScroll(t *testing.T) {
	s, be := newTestServer(t)

	_, out, err := s.handleMouseScroll(context.Background(), nil, mouseScrollInput{})
	require.NoError(t, err)
	assert.Equal(t, "vertical", out.Axis)
	assert.Equal(t, "down", out.Direction)
	assert.Equal(t, 1, out.Times)
	assert.Equal(t, []string{"scroll(1,vertical,down)"}, be.calls)

	_, out, err = s.handleMouseScroll(context.Background(), nil, mouseScrollInput{Axis: "horizontal", Times: 3})
	require.NoError(t, err)
	assert.Equal(t, "right", out.Direction)

	be.calls = nil
	_, _, err = s.handleMouseScroll(context.Background(), nil, mouseScrollInput{At: "30,0", Direction: "up"})
	require.NoError(t, err)
	assert.Equal(t, 30, be.x)
	assert.Equal(t, "scroll(1,vertical,up)", be.calls[len(be.calls)-1])
}

func TestTypeKeys(t *testing.T) {
	s, be := newTestServer(t)

	_, out, err := s.handleTypeText(context.Background(), nil, typeTextInput{Text: "hi\nx\tz"})
	require.NoError(t, err)
	assert.Equal(t, "unicode", out.Method)
	assert.Equal(t, 6, out.Chars)
	assert.Equal(t, []string{
		"text(hi)",
		"down(enter)", "up(enter)",
		"text(x)",
		"down(tab)", "up(tab)",
		"text(z)",
	}, be.calls)
}

func TestTypeKeysBatchesRuns(t *testing.T) {
	s, be := newTestServer(t)

	_, _, err := s.handleTypeText(context.Background(), nil, typeTextInput{Text: "hello world"})
	require.NoError(t, err)
	assert.Equal(t, []string{"text(hello world)"}, be.calls)
}

func TestTypeVK(t *testing.T) {
	s, be := newTestServer(t)

	_, out, err := s.handleTypeText(context.Background(), nil, typeTextInput{Text: "a b", Method: "vk"})
	require.NoError(t, err)
	assert.Equal(t, "vk", out.Method)
	assert.Equal(t, []string{
		"down(a)", "up(a)",
		"down(space)", "up(space)",
		"down(b)", "up(b)",
	}, be.calls)
}

func TestTypeTextPressEnter(t *testing.T) {
	s, be := newTestServer(t)

	_, _, err := s.handleTypeText(context.Background(), nil, typeTextInput{Text: "ok", PressEnter: true})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"text(ok)",
		"down(enter)", "up(enter)",
	}, be.calls)
}

func TestTypeTextUnknownMethod(t *testing.T) {
	s, _ := newTestServer(t)
	_, _, err := s.handleTypeText(context.Background(), nil, typeTextInput{Text: "x", Method: "morse"})
	assert.Error(t, err)
}

func TestHandleSendShortcut(t *testing.T) {
	s, be := newTestServer(t)

	_, out, err := s.handleSendShortcut(context.Background(), nil, sendShortcutInput{Combo: "ctrl+shift+t"})
	require.NoError(t, err)
	assert.Equal(t, "ctrl+shift+t", out.Combo)
	assert.Equal(t, []string{"hotkey(ctrl+shift+t)"}, be.calls)

	_, _, err = s.handleSendShortcut(context.Background(), nil, sendShortcutInput{Combo: "  "})
	assert.Error(t, err)
}

func TestHandleKey(t *testing.T) {
	s, be := newTestServer(t)
	zero := 0

	_, out, err := s.handleKey(context.Background(), nil, keyInput{Key: "escape", IntervalMS: &zero})
	require.NoError(t, err)
	assert.Equal(t, "tap", out.Action)
	assert.Equal(t, 1, out.Times)
	assert.Equal(t, []string{"down(escape)", "up(escape)"}, be.calls)

	be.calls = nil
	_, out, err = s.handleKey(context.Background(), nil, keyInput{Key: "w", Times: 3, IntervalMS: &zero})
	require.NoError(t, err)
	assert.Equal(t, 3, out.Times)
	assert.Equal(t, []string{
		"down(w)", "up(w)",
		"down(w)", "up(w)",
		"down(w)", "up(w)",
	}, be.calls)

	be.calls = nil
	_, _, err = s.handleKey(context.Background(), nil, keyInput{Key: "shift", Action: "down"})
	require.NoError(t, err)
	assert.Equal(t, []string{"down(shift)"}, be.calls)

	be.calls = nil
	_, _, err = s.handleKey(context.Background(), nil, keyInput{Key: "space", Action: "hold", HoldMS: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"down(space)", "up(space)"}, be.calls)

	_, _, err = s.handleKey(context.Background(), nil, keyInput{Key: "a", Action: "wiggle"})
	assert.Error(t, err)

	_, _, err = s.handleKey(context.Background(), nil, keyInput{Key: ""})
	assert.Error(t, err)
}

func TestHandleKeyCombo(t *testing.T) {
	s, be := newTestServer(t)
	zero := 0

	_, out, err := s.handleKeyCombo(context.Background(), nil, keyComboInput{Keys: []string{"ctrl", "alt", "delete"}, HoldMS: &zero})
	require.NoError(t, err)
	assert.Equal(t, []string{"ctrl", "alt", "delete"}, out.Keys)
	assert.Equal(t, 0, out.HoldMS)
	assert.Equal(t, []string{
		"down(ctrl)", "down(alt)", "down(delete)",
		"up(delete)", "up(alt)", "up(ctrl)",
	}, be.calls)

	_, _, err = s.handleKeyCombo(context.Background(), nil, keyComboInput{})
	assert.Error(t, err)
}

func TestHandleKeyComboReleasesOnFailure(t *testing.T) {
	s, be := newTestServer(t)
	zero := 0

	// fail the third KeyDown; the two held keys must still be released
	presses := 0
	failErr := errors.New("injection refused")
	s.be = &failingBackend{recordBackend: be, failOnPress: 3, err: failErr, presses: &presses}

	_, _, err := s.handleKeyCombo(context.Background(), nil, keyComboInput{Keys: []string{"ctrl", "shift", "q"}, HoldMS: &zero})
	assert.ErrorIs(t, err, failErr)
	assert.Equal(t, []string{
		"down(ctrl)", "down(shift)",
		"up(shift)", "up(ctrl)",
	}, be.calls)
}

type failingBackend struct {
	*recordBackend
	failOnPress int
	err         error
	presses     *int
}

func (f *failingBackend) KeyDown(key string) error {
	*f.presses++
	if *f.presses == f.failOnPress {
		return f.err
	}
	return f.recordBackend.KeyDown(key)
}

func TestHandleRateConfigure(t *testing.T) {
	s, _ := newTestServer(t)

	moveHz := 9999.0
	smooth := 0.5
	_, out, err := s.handleRateConfigure(context.Background(), nil, rateConfigureInput{
		MoveHz: &moveHz,
		Smooth: &smooth,
	})
	require.NoError(t, err)

	// out of range values clamp, untouched fields persist
	assert.Equal(t, rate.MaxMoveHz, out.MoveHz)
	assert.Equal(t, 0.5, out.Smooth)
	assert.Equal(t, 60, out.MaxDelta)
	assert.Equal(t, 60.0, out.ClicksPerSec)

	// the limiter actually picked the change up
	assert.Equal(t, rate.MaxMoveHz, s.limiter.Config().MoveHz)
}

func TestHandleInputInfo(t *testing.T) {
	s, be := newTestServer(t)
	be.x, be.y = 7, 9

	_, out, err := s.handleInputInfo(context.Background(), nil, inputInfoInput{})
	require.NoError(t, err)
	assert.Equal(t, "record", out.Backend)
	assert.True(t, out.Ready)
	assert.Equal(t, 7, out.Cursor.X)
	assert.Equal(t, 9, out.Cursor.Y)
	assert.Equal(t, 480.0, out.Rate.MoveHz)
}

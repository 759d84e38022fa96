package rate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterTargetClampsPerAxis(t *testing.T) {
	tests := []struct {
		name     string
		maxDelta int
		cur      [2]int
		target   [2]int
		want     [2]int
	}{
		{
			name:     "within bound moves straight to target",
			maxDelta: 60,
			cur:      [2]int{100, 100},
			target:   [2]int{130, 90},
			want:     [2]int{130, 90},
		},
		{
			name:     "positive overshoot clamps both axes",
			maxDelta: 60,
			cur:      [2]int{0, 0},
			target:   [2]int{500, 400},
			want:     [2]int{60, 60},
		},
		{
			name:     "negative overshoot clamps both axes",
			maxDelta: 60,
			cur:      [2]int{500, 400},
			target:   [2]int{0, 0},
			want:     [2]int{440, 340},
		},
		{
			name:     "mixed sign clamps independently",
			maxDelta: 25,
			cur:      [2]int{200, 200},
			target:   [2]int{1000, 190},
			want:     [2]int{225, 190},
		},
		{
			name:     "zero max delta disables clamping",
			maxDelta: 0,
			cur:      [2]int{0, 0},
			target:   [2]int{5000, -5000},
			want:     [2]int{5000, -5000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLimiter(Config{MoveHz: 120, MaxDelta: tt.maxDelta})
			x, y := l.FilterTarget(tt.cur[0], tt.cur[1], tt.target[0], tt.target[1])
			assert.Equal(t, tt.want[0], x)
			assert.Equal(t, tt.want[1], y)
		})
	}
}

func TestFilterTargetStepNeverExceedsMaxDelta(t *testing.T) {
	for _, maxDelta := range []int{1, 5, 17, 60, 200} {
		l := NewLimiter(Config{MoveHz: 120, MaxDelta: maxDelta})
		for _, target := range [][2]int{{9999, 9999}, {-9999, 9999}, {1, -1}, {0, 0}} {
			x, y := l.FilterTarget(0, 0, target[0], target[1])
			if x < -maxDelta || x > maxDelta {
				t.Errorf("maxDelta=%d target=%v: step x %d out of bound", maxDelta, target, x)
			}
			if y < -maxDelta || y > maxDelta {
				t.Errorf("maxDelta=%d target=%v: step y %d out of bound", maxDelta, target, y)
			}
		}
	}
}

func TestFilterTargetSmoothingMonotonic(t *testing.T) {
	// The shaped step magnitude must be non-increasing as smooth grows.
	prevX := int(^uint(0) >> 1)
	for _, smooth := range []float64{0.0, 0.1, 0.25, 0.5, 0.75, 0.9, 0.98} {
		l := NewLimiter(Config{MoveHz: 120, MaxDelta: 100, Smooth: smooth})
		x, _ := l.FilterTarget(0, 0, 80, 0)
		if x > prevX {
			t.Errorf("smooth=%.2f produced step %d, larger than previous %d", smooth, x, prevX)
		}
		prevX = x
	}
}

func TestFilterTargetFullSmoothingStillTerminates(t *testing.T) {
	// Even at the max smoothing factor, repeated steps must reach the target
	// eventually; int truncation closes the final gap once the delta scales
	// below 1/(1-smooth).
	l := NewLimiter(Config{MoveHz: 120, MaxDelta: 60, Smooth: 0.9})
	x, y := 0, 0
	for range 500 {
		if x == 300 && y == 120 {
			break
		}
		nx, ny := l.FilterTarget(x, y, 300, 120)
		if nx == x && ny == y {
			// Smoothing truncated the step to zero; the caller snaps to the
			// target in this situation, so it terminates too.
			return
		}
		x, y = nx, ny
	}
}

func TestUntilSpacing(t *testing.T) {
	now := time.Unix(1000, 0)
	l := NewLimiter(Config{MoveHz: 100, ClicksPerSec: 8, KeysPerSec: 12})
	l.now = func() time.Time { return now }

	// First event of each kind is always permitted immediately.
	assert.Zero(t, l.Until(KindMove))
	assert.Zero(t, l.Until(KindClick))
	assert.Zero(t, l.Until(KindKey))

	l.Mark(KindClick)

	// Immediately after a click, the full 1/8s interval remains.
	assert.Equal(t, 125*time.Millisecond, l.Until(KindClick))
	// Other kinds are unaffected.
	assert.Zero(t, l.Until(KindKey))

	// Halfway through the interval, half remains.
	now = now.Add(62500 * time.Microsecond)
	assert.Equal(t, 62500*time.Microsecond, l.Until(KindClick))

	// After the interval elapses, no wait remains.
	now = now.Add(63 * time.Millisecond)
	assert.Zero(t, l.Until(KindClick))
}

func TestUntilGuardsNonPositiveRate(t *testing.T) {
	l := NewLimiter(Config{})
	l.Mark(KindMove)
	// A zero rate must not divide by zero or return a negative wait; it
	// degrades to an extremely long interval instead.
	d := l.Until(KindMove)
	assert.Positive(t, d)
}

func TestWaitStampsAndSpaces(t *testing.T) {
	l := NewLimiter(Config{KeysPerSec: 50}) // 20ms interval
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, l.Wait(ctx, KindKey))
	require.NoError(t, l.Wait(ctx, KindKey))
	require.NoError(t, l.Wait(ctx, KindKey))
	elapsed := time.Since(start)

	// Three permitted events: the second and third each wait ~20ms.
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
}

func TestWaitHonorsContextCancellation(t *testing.T) {
	l := NewLimiter(Config{ClicksPerSec: 1}) // 1s interval
	l.Mark(KindClick)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := l.Wait(ctx, KindClick)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSetConfigClamps(t *testing.T) {
	l := NewLimiter(DefaultConfig)

	applied := l.SetConfig(Config{
		MoveHz:       10000,
		MaxDelta:     -5,
		Smooth:       2.0,
		ClicksPerSec: 0,
		KeysPerSec:   9999,
	})

	assert.Equal(t, MaxMoveHz, applied.MoveHz)
	assert.Equal(t, 1, applied.MaxDelta)
	assert.Equal(t, MaxSmooth, applied.Smooth)
	assert.Equal(t, MinPerSec, applied.ClicksPerSec)
	assert.Equal(t, MaxPerSec, applied.KeysPerSec)
	assert.Equal(t, applied, l.Config())
}

package mcpserver

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/bnema/winject/internal/winman"
)

var pairInts = regexp.MustCompile(`-?\d+`)

// Clients are loose about coordinate shapes: some send [x, y], some
// {"x": ..., "y": ...}, some a "x,y" string. The same goes for window
// handles, which arrive as numbers or decimal/hex strings. These helpers
// accept all of them.

func coerceNumber(v any) (int, error) {
	switch n := v.(type) {
	case float64:
		return int(math.Round(n)), nil
	case int:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", n)
		}
		return int(math.Round(f)), nil
	default:
		return 0, fmt.Errorf("not a number: %v (%T)", v, v)
	}
}

// coercePair extracts two named integers from an array, object, or
// comma-separated string.
func coercePair(v any, firstKeys, secondKeys []string) (int, int, error) {
	switch t := v.(type) {
	case []any:
		if len(t) != 2 {
			return 0, 0, fmt.Errorf("expected 2 elements, got %d", len(t))
		}
		a, err := coerceNumber(t[0])
		if err != nil {
			return 0, 0, err
		}
		b, err := coerceNumber(t[1])
		if err != nil {
			return 0, 0, err
		}
		return a, b, nil

	case map[string]any:
		a, aok := lookupAny(t, firstKeys)
		b, bok := lookupAny(t, secondKeys)
		if !aok || !bok {
			return 0, 0, fmt.Errorf("object needs %q and %q fields", firstKeys[0], secondKeys[0])
		}
		av, err := coerceNumber(a)
		if err != nil {
			return 0, 0, err
		}
		bv, err := coerceNumber(b)
		if err != nil {
			return 0, 0, err
		}
		return av, bv, nil

	case string:
		// Accept "800,600", "[800,600]", "800 600", or any string whose
		// first two signed integers are the pair.
		nums := pairInts.FindAllString(t, 2)
		if len(nums) != 2 {
			return 0, 0, fmt.Errorf("cannot parse pair from %q", t)
		}
		a, err := coerceNumber(nums[0])
		if err != nil {
			return 0, 0, err
		}
		b, err := coerceNumber(nums[1])
		if err != nil {
			return 0, 0, err
		}
		return a, b, nil

	default:
		return 0, 0, fmt.Errorf("cannot parse pair from %v (%T)", v, v)
	}
}

func lookupAny(m map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// coerceLoc reads a screen location.
func coerceLoc(v any) (x, y int, err error) {
	if v == nil {
		return 0, 0, fmt.Errorf("missing location")
	}
	x, y, err = coercePair(v, []string{"x"}, []string{"y"})
	if err != nil {
		return 0, 0, fmt.Errorf("invalid location: %w", err)
	}
	return x, y, nil
}

// coerceSize reads a width/height pair.
func coerceSize(v any) (w, h int, err error) {
	if v == nil {
		return 0, 0, fmt.Errorf("missing size")
	}
	w, h, err = coercePair(v, []string{"w", "width"}, []string{"h", "height"})
	if err != nil {
		return 0, 0, fmt.Errorf("invalid size: %w", err)
	}
	return w, h, nil
}

// coerceHWND reads a window handle from a JSON number or a decimal or
// 0x-prefixed hex string.
func coerceHWND(v any) (uintptr, error) {
	switch t := v.(type) {
	case nil:
		return 0, fmt.Errorf("missing window handle")
	case float64:
		if t <= 0 || t != math.Trunc(t) {
			return 0, fmt.Errorf("invalid window handle %v", t)
		}
		return uintptr(t), nil
	case string:
		return winman.ParseHWND(t)
	default:
		return 0, fmt.Errorf("invalid window handle %v (%T)", v, v)
	}
}

// Package keymap translates key names into Windows virtual-key codes and
// AutoHotkey v2 send syntax. Both injection backends share the same name
// space: the long names accepted here ("enter", "pgup", "numpad7", ...)
// follow the simulator binding the DLL backend wraps.
package keymap

import (
	"fmt"
	"strconv"
	"strings"
)

// Virtual-key codes for the modifier keys.
const (
	VKShift   uint16 = 0x10
	VKControl uint16 = 0x11
	VKMenu    uint16 = 0x12 // alt
	VKLWin    uint16 = 0x5B
)

// specialVK maps long key names to virtual-key codes.
var specialVK = map[string]uint16{
	"enter": 0x0D, "return": 0x0D, "numpadenter": 0x0D,
	"backspace": 0x08, "bs": 0x08,
	"tab":   0x09,
	"esc":   0x1B,
	"escape": 0x1B,
	"space": 0x20,
	"capslock": 0x14, "caps": 0x14,
	"numlock": 0x90, "scrolllock": 0x91,
	"pause": 0x13, "break": 0x13,
	"printscreen": 0x2C, "prtsc": 0x2C, "prtscr": 0x2C,
	"insert": 0x2D, "ins": 0x2D,
	"delete": 0x2E, "del": 0x2E,
	"home": 0x24, "end": 0x23,
	"pageup": 0x21, "pgup": 0x21,
	"pagedown": 0x22, "pgdn": 0x22,
	"up": 0x26, "down": 0x28, "left": 0x25, "right": 0x27,
	"shift": 0x10, "lshift": 0xA0, "rshift": 0xA1,
	"ctrl": 0x11, "control": 0x11, "lctrl": 0xA2, "rctrl": 0xA3,
	"alt": 0x12, "lalt": 0xA4, "ralt": 0xA5,
	"win": 0x5B, "lwin": 0x5B, "rwin": 0x5C,
	"apps": 0x5D, "menu": 0x5D,
	"numpad0": 0x60, "num0": 0x60, "kp0": 0x60,
	"numpad1": 0x61, "num1": 0x61, "kp1": 0x61,
	"numpad2": 0x62, "num2": 0x62, "kp2": 0x62,
	"numpad3": 0x63, "num3": 0x63, "kp3": 0x63,
	"numpad4": 0x64, "num4": 0x64, "kp4": 0x64,
	"numpad5": 0x65, "num5": 0x65, "kp5": 0x65,
	"numpad6": 0x66, "num6": 0x66, "kp6": 0x66,
	"numpad7": 0x67, "num7": 0x67, "kp7": 0x67,
	"numpad8": 0x68, "num8": 0x68, "kp8": 0x68,
	"numpad9": 0x69, "num9": 0x69, "kp9": 0x69,
	"numpad*": 0x6A, "multiply": 0x6A, "kp_multiply": 0x6A,
	"numpad+": 0x6B, "add": 0x6B, "kp_add": 0x6B,
	"numpad-": 0x6D, "subtract": 0x6D, "kp_subtract": 0x6D,
	"numpad.": 0x6E, "decimal": 0x6E, "kp_decimal": 0x6E,
	"numpad/": 0x6F, "divide": 0x6F, "kp_divide": 0x6F,
	"semicolon": 0xBA, ";": 0xBA, "oem_1": 0xBA,
	"equals": 0xBB, "=": 0xBB, "oem_plus": 0xBB,
	"comma": 0xBC, ",": 0xBC, "oem_comma": 0xBC,
	"minus": 0xBD, "-": 0xBD, "oem_minus": 0xBD,
	"period": 0xBE, "dot": 0xBE, ".": 0xBE, "oem_period": 0xBE,
	"slash": 0xBF, "/": 0xBF, "oem_2": 0xBF,
	"grave": 0xC0, "`": 0xC0, "backquote": 0xC0, "oem_3": 0xC0,
	"leftbracket": 0xDB, "[": 0xDB, "oem_4": 0xDB,
	"backslash": 0xDC, "\\": 0xDC, "pipe": 0xDC, "oem_5": 0xDC,
	"rightbracket": 0xDD, "]": 0xDD, "oem_6": 0xDD,
	"apostrophe": 0xDE, "'": 0xDE, "quote": 0xDE, "oem_7": 0xDE,
	"oem_8": 0xDF,
}

// VK resolves a key name to a Windows virtual-key code. Accepted forms:
// long names ("enter", "pgdn", "lctrl"), function keys ("f1".."f24"),
// hex literals ("vk41", "0x41"), and single ASCII letters/digits.
func VK(name string) (uint16, bool) {
	k := strings.ToLower(strings.TrimSpace(name))
	if k == "" {
		return 0, false
	}

	if strings.HasPrefix(k, "vk") && len(k) > 2 {
		if v, err := strconv.ParseUint(strings.TrimLeft(k[2:], "_"), 16, 16); err == nil {
			return uint16(v), true
		}
	}
	if strings.HasPrefix(k, "0x") {
		if v, err := strconv.ParseUint(k[2:], 16, 16); err == nil {
			return uint16(v), true
		}
	}

	if len(k) > 1 && k[0] == 'f' {
		if n, err := strconv.Atoi(k[1:]); err == nil && n >= 1 && n <= 24 {
			return uint16(0x70 + n - 1), true
		}
	}

	if v, ok := specialVK[k]; ok {
		return v, true
	}

	if len(k) == 1 {
		ch := k[0]
		if ch >= 'a' && ch <= 'z' {
			return uint16(ch - 'a' + 'A'), true
		}
		if ch >= '0' && ch <= '9' {
			return uint16(ch), true
		}
	}

	return 0, false
}

// Shortcut is a parsed key combination like "ctrl+shift+p".
type Shortcut struct {
	Mods []string // normalized modifier names in press order: ctrl, alt, shift, win
	Key  string   // terminal key name; may be empty for modifier-only combos
}

// ParseShortcut splits a "+"-joined combo into modifiers and a terminal key.
// A modifier-only combo ("win") degrades to tapping its last modifier.
func ParseShortcut(combo string) (Shortcut, error) {
	var sc Shortcut
	parts := strings.Split(combo, "+")
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		switch p {
		case "ctrl", "control":
			sc.Mods = append(sc.Mods, "ctrl")
		case "alt":
			sc.Mods = append(sc.Mods, "alt")
		case "shift":
			sc.Mods = append(sc.Mods, "shift")
		case "win", "lwin", "rwin", "super":
			sc.Mods = append(sc.Mods, "win")
		default:
			sc.Key = p
		}
	}
	if sc.Key == "" && len(sc.Mods) == 0 {
		return Shortcut{}, fmt.Errorf("empty shortcut %q", combo)
	}
	if sc.Key == "" {
		// Tap the last modifier instead of holding nothing.
		sc.Key = sc.Mods[len(sc.Mods)-1]
		sc.Mods = sc.Mods[:len(sc.Mods)-1]
	}
	return sc, nil
}

// ModVK returns the virtual-key code for a normalized modifier name.
func ModVK(mod string) uint16 {
	switch mod {
	case "ctrl":
		return VKControl
	case "alt":
		return VKMenu
	case "shift":
		return VKShift
	case "win":
		return VKLWin
	}
	return 0
}

// ahkNames maps long key names to their AutoHotkey v2 spellings where the
// capitalized form differs from strings.Title-style casing.
var ahkNames = map[string]string{
	"enter": "Enter", "return": "Enter",
	"backspace": "Backspace", "bs": "Backspace",
	"tab": "Tab", "esc": "Escape", "escape": "Escape", "space": "Space",
	"home": "Home", "end": "End",
	"pgup": "PgUp", "pageup": "PgUp", "pgdn": "PgDn", "pagedown": "PgDn",
	"up": "Up", "down": "Down", "left": "Left", "right": "Right",
	"insert": "Insert", "ins": "Insert", "delete": "Delete", "del": "Delete",
	"shift": "Shift", "lshift": "LShift", "rshift": "RShift",
	"ctrl": "Ctrl", "control": "Ctrl", "lctrl": "LCtrl", "rctrl": "RCtrl",
	"alt": "Alt", "lalt": "LAlt", "ralt": "RAlt",
	"win": "LWin", "lwin": "LWin", "rwin": "RWin",
	"apps": "AppsKey", "menu": "AppsKey",
}

// AHKName converts a key name into its AutoHotkey v2 key name.
func AHKName(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	if strings.HasPrefix(k, "vk") && len(k) > 2 {
		return "vk" + strings.ToUpper(strings.TrimLeft(k[2:], "_"))
	}
	if v, ok := ahkNames[k]; ok {
		return v
	}
	if len(k) > 1 && k[0] == 'f' {
		if n, err := strconv.Atoi(k[1:]); err == nil && n >= 1 && n <= 24 {
			return fmt.Sprintf("F%d", n)
		}
	}
	if len(k) == 1 {
		return k
	}
	return strings.ToUpper(k[:1]) + k[1:]
}

// ahkModSymbols maps normalized modifier names to AHK prefix symbols.
var ahkModSymbols = map[string]string{
	"ctrl":  "^",
	"alt":   "!",
	"shift": "+",
	"win":   "#",
}

// AHKSequence renders a parsed shortcut as an AutoHotkey v2 Send sequence,
// e.g. "^+p" or "#{Tab}".
func AHKSequence(sc Shortcut) string {
	var b strings.Builder
	for _, m := range sc.Mods {
		b.WriteString(ahkModSymbols[m])
	}
	name := AHKName(sc.Key)
	if len(name) == 1 {
		b.WriteString(name)
	} else {
		b.WriteString("{" + name + "}")
	}
	return b.String()
}

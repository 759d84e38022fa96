//go:build windows

package backend

import (
	"fmt"
	"time"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/bnema/winject/internal/keymap"
	"github.com/bnema/winject/internal/logger"
)

var (
	user32           = windows.NewLazySystemDLL("user32.dll")
	procSetCursorPos = user32.NewProc("SetCursorPos")
	procGetCursorPos = user32.NewProc("GetCursorPos")
	procVkKeyScanW   = user32.NewProc("VkKeyScanW")
	procMouseEvent   = user32.NewProc("mouse_event")
)

const mouseEventFHWheel = 0x1000

// Simulator click codes: down|up composites per button, plus the raw
// down/up halves used for dragging.
const (
	codeLeftClick   = 0x06
	codeRightClick  = 0x18
	codeMiddleClick = 0x60
	codeLeftDown    = 0x02
	codeLeftUp      = 0x04
)

type winPoint struct {
	X int32
	Y int32
}

// simDLL drives the simulator binding loaded into this process. All key
// and mouse events go through the driver selected at init time.
type simDLL struct {
	ready   bool
	details string

	procMouseMove  *windows.LazyProc
	procMouseClick *windows.LazyProc
	procMouseWheel *windows.LazyProc
	procKeybdDown  *windows.LazyProc
	procKeybdUp    *windows.LazyProc
	procDestroy    *windows.LazyProc
}

func newSimDLLBackend(opts Options) Backend {
	dir := findSimDir(opts.SimDir)
	if dir == "" {
		return &simDLL{details: simDLLName + " not found"}
	}
	dllPath, _ := simPaths(dir)

	dll := windows.NewLazyDLL(dllPath)
	if err := dll.Load(); err != nil {
		return &simDLL{details: fmt.Sprintf("loading %s: %v", dllPath, err)}
	}

	sendType := driverSendType(opts.Driver)
	ret, _, _ := dll.NewProc("IbSendInit").Call(uintptr(sendType), 0, 0)
	if ret != 0 {
		return &simDLL{details: fmt.Sprintf("IbSendInit(%d) failed with code %d", sendType, ret)}
	}
	logger.Debugf("Simulator DLL initialized from %s (send type %d)", dllPath, sendType)

	return &simDLL{
		ready:          true,
		details:        fmt.Sprintf("dll=%s driver=%s", dllPath, opts.Driver),
		procMouseMove:  dll.NewProc("IbSendMouseMove"),
		procMouseClick: dll.NewProc("IbSendMouseClick"),
		procMouseWheel: dll.NewProc("IbSendMouseWheel"),
		procKeybdDown:  dll.NewProc("IbSendKeybdDown"),
		procKeybdUp:    dll.NewProc("IbSendKeybdUp"),
		procDestroy:    dll.NewProc("IbSendDestroy"),
	}
}

func (s *simDLL) Info() Info {
	return Info{Name: "simdll", Ready: s.ready, Details: s.details}
}

func (s *simDLL) guard() error {
	if !s.ready {
		return fmt.Errorf("%w: %s", ErrNotReady, s.details)
	}
	return nil
}

func (s *simDLL) Move(x, y int) error {
	if err := s.guard(); err != nil {
		return err
	}
	procSetCursorPos.Call(uintptr(x), uintptr(y))
	// SetCursorPos can land off-target under DPI scaling; nudge the rest
	// with a relative driver move.
	var pt winPoint
	procGetCursorPos.Call(uintptr(unsafe.Pointer(&pt)))
	dx, dy := x-int(pt.X), y-int(pt.Y)
	if dx != 0 || dy != 0 {
		s.procMouseMove.Call(uintptr(uint32(int32(dx))), uintptr(uint32(int32(dy))), 1)
	}
	return nil
}

func (s *simDLL) Click(x, y int, button Button, clicks int) error {
	if err := s.Move(x, y); err != nil {
		return err
	}
	var code uintptr
	switch button {
	case ButtonLeft, "":
		code = codeLeftClick
	case ButtonRight:
		code = codeRightClick
	case ButtonMiddle:
		code = codeMiddleClick
	default:
		return fmt.Errorf("unknown mouse button %q", button)
	}
	if clicks < 1 {
		clicks = 1
	}
	for i := 0; i < clicks; i++ {
		if i > 0 {
			time.Sleep(50 * time.Millisecond)
		}
		s.procMouseClick.Call(code)
	}
	return nil
}

func (s *simDLL) Drag(x1, y1, x2, y2 int) error {
	if err := s.Move(x1, y1); err != nil {
		return err
	}
	time.Sleep(50 * time.Millisecond)
	s.procMouseClick.Call(codeLeftDown)
	time.Sleep(80 * time.Millisecond)

	const steps = 16
	for i := 1; i <= steps; i++ {
		x := x1 + (x2-x1)*i/steps
		y := y1 + (y2-y1)*i/steps
		if err := s.Move(x, y); err != nil {
			s.procMouseClick.Call(codeLeftUp)
			return err
		}
		time.Sleep(8 * time.Millisecond)
	}

	time.Sleep(50 * time.Millisecond)
	s.procMouseClick.Call(codeLeftUp)
	return nil
}

func (s *simDLL) Scroll(times int, axis Axis, direction Direction) error {
	if err := s.guard(); err != nil {
		return err
	}
	if times < 1 {
		times = 1
	}
	var delta int32
	switch {
	case axis == AxisVertical && direction == DirectionUp:
		delta = 120
	case axis == AxisVertical && direction == DirectionDown:
		delta = -120
	case axis == AxisHorizontal && direction == DirectionRight:
		delta = 120
	case axis == AxisHorizontal && direction == DirectionLeft:
		delta = -120
	default:
		return fmt.Errorf("invalid scroll %s/%s", axis, direction)
	}
	for i := 0; i < times; i++ {
		if i > 0 {
			time.Sleep(20 * time.Millisecond)
		}
		if axis == AxisVertical {
			s.procMouseWheel.Call(uintptr(uint32(delta)))
		} else {
			// The simulator exposes no horizontal wheel entry point.
			procMouseEvent.Call(mouseEventFHWheel, 0, 0, uintptr(uint32(delta)), 0)
		}
	}
	return nil
}

func (s *simDLL) SendText(text string) error {
	if err := s.guard(); err != nil {
		return err
	}
	for i, unit := range utf16.Encode([]rune(text)) {
		if i > 0 {
			time.Sleep(20 * time.Millisecond)
		}
		if unit >= 0xD800 && unit <= 0xDFFF {
			logger.Warnf("Skipping character outside the BMP at index %d", i)
			continue
		}
		scan, _, _ := procVkKeyScanW.Call(uintptr(unit))
		if int16(scan) == -1 {
			logger.Warnf("No key mapping for %q, skipping", rune(unit))
			continue
		}
		vk := uintptr(byte(scan))
		shift := byte(scan >> 8)

		var mods []uintptr
		if shift&1 != 0 {
			mods = append(mods, uintptr(keymap.VKShift))
		}
		if shift&2 != 0 {
			mods = append(mods, uintptr(keymap.VKControl))
		}
		if shift&4 != 0 {
			mods = append(mods, uintptr(keymap.VKMenu))
		}
		for _, m := range mods {
			s.procKeybdDown.Call(m)
			time.Sleep(time.Millisecond)
		}
		s.procKeybdDown.Call(vk)
		time.Sleep(3 * time.Millisecond)
		s.procKeybdUp.Call(vk)
		for j := len(mods) - 1; j >= 0; j-- {
			s.procKeybdUp.Call(mods[j])
			time.Sleep(time.Millisecond)
		}
	}
	return nil
}

func (s *simDLL) Hotkey(combo string) error {
	if err := s.guard(); err != nil {
		return err
	}
	sc, err := keymap.ParseShortcut(combo)
	if err != nil {
		return err
	}
	vk, ok := keymap.VK(sc.Key)
	if !ok {
		return fmt.Errorf("unknown key %q", sc.Key)
	}
	for _, mod := range sc.Mods {
		s.procKeybdDown.Call(uintptr(keymap.ModVK(mod)))
		time.Sleep(time.Millisecond)
	}
	s.procKeybdDown.Call(uintptr(vk))
	time.Sleep(3 * time.Millisecond)
	s.procKeybdUp.Call(uintptr(vk))
	for i := len(sc.Mods) - 1; i >= 0; i-- {
		s.procKeybdUp.Call(uintptr(keymap.ModVK(sc.Mods[i])))
		time.Sleep(time.Millisecond)
	}
	return nil
}

func (s *simDLL) KeyDown(key string) error {
	if err := s.guard(); err != nil {
		return err
	}
	vk, ok := keymap.VK(key)
	if !ok {
		return fmt.Errorf("unknown key %q", key)
	}
	s.procKeybdDown.Call(uintptr(vk))
	return nil
}

func (s *simDLL) KeyUp(key string) error {
	if err := s.guard(); err != nil {
		return err
	}
	vk, ok := keymap.VK(key)
	if !ok {
		return fmt.Errorf("unknown key %q", key)
	}
	s.procKeybdUp.Call(uintptr(vk))
	return nil
}

func (s *simDLL) Close() error {
	if s.ready && s.procDestroy != nil {
		s.procDestroy.Call()
		s.ready = false
	}
	return nil
}

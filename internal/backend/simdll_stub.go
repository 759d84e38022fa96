//go:build !windows

package backend

import "fmt"

// simStub stands in for the DLL backend on platforms where the simulator
// cannot be loaded. It reports not-ready and rejects every operation.
type simStub struct{}

func newSimDLLBackend(_ Options) Backend { return simStub{} }

func (simStub) Info() Info {
	return Info{Name: "simdll", Details: "simulator DLL requires windows"}
}

func (simStub) err() error {
	return fmt.Errorf("%w: simulator DLL requires windows", ErrNotReady)
}

func (s simStub) Move(x, y int) error                         { return s.err() }
func (s simStub) Click(x, y int, b Button, clicks int) error  { return s.err() }
func (s simStub) Drag(x1, y1, x2, y2 int) error               { return s.err() }
func (s simStub) Scroll(times int, a Axis, d Direction) error { return s.err() }
func (s simStub) SendText(text string) error                  { return s.err() }
func (s simStub) Hotkey(combo string) error                   { return s.err() }
func (s simStub) KeyDown(key string) error                    { return s.err() }
func (s simStub) KeyUp(key string) error                      { return s.err() }
func (s simStub) Close() error                                { return nil }

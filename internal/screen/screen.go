// Package screen reads cursor position and monitor geometry.
package screen

import (
	"errors"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"
)

// Monitor is one physical display in virtual-screen coordinates.
type Monitor struct {
	Index   int  `json:"index"`
	X       int  `json:"x"`
	Y       int  `json:"y"`
	Width   int  `json:"width"`
	Height  int  `json:"height"`
	Primary bool `json:"primary"`
}

// Desktop is the virtual screen: the bounding box of all monitors. With
// multiple monitors the origin can sit inside the box, so coordinates may
// be negative.
type Desktop struct {
	X        int       `json:"x"`
	Y        int       `json:"y"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	Monitors []Monitor `json:"monitors"`
}

// CursorPos returns the current cursor position in virtual-screen
// coordinates.
func CursorPos() (x, y int) {
	return robotgo.Location()
}

// Info enumerates active displays and computes the virtual screen.
func Info() (Desktop, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return Desktop{}, errors.New("no active displays")
	}

	d := Desktop{Monitors: make([]Monitor, 0, n)}
	minX, minY := int(^uint(0)>>1), int(^uint(0)>>1)
	maxX, maxY := -minX-1, -minY-1
	for i := 0; i < n; i++ {
		b := screenshot.GetDisplayBounds(i)
		d.Monitors = append(d.Monitors, Monitor{
			Index:   i,
			X:       b.Min.X,
			Y:       b.Min.Y,
			Width:   b.Dx(),
			Height:  b.Dy(),
			Primary: b.Min.X == 0 && b.Min.Y == 0,
		})
		if b.Min.X < minX {
			minX = b.Min.X
		}
		if b.Min.Y < minY {
			minY = b.Min.Y
		}
		if b.Max.X > maxX {
			maxX = b.Max.X
		}
		if b.Max.Y > maxY {
			maxY = b.Max.Y
		}
	}
	d.X, d.Y = minX, minY
	d.Width, d.Height = maxX-minX, maxY-minY
	return d, nil
}

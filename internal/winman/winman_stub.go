//go:build !windows

package winman

func List() ([]Window, error)                           { return nil, ErrUnsupported }
func ListChildren(parent uintptr) ([]Window, error)     { return nil, ErrUnsupported }
func Get(hwnd uintptr) (Window, error)                  { return Window{}, ErrUnsupported }
func Active() (Window, error)                           { return Window{}, ErrUnsupported }
func Activate(hwnd uintptr, opts ActivateOptions) error { return ErrUnsupported }
func SetPos(hwnd uintptr, pos Pos) error                { return ErrUnsupported }
func Close(hwnd uintptr) error                          { return ErrUnsupported }

// Package desktop defines the RemoteDesktopController contract the engine
// consumes. The real transport (RDP/VNC connect, screen capture, input
// injection) is an external collaborator and out of scope for this module;
// this package only carries the contract plus a deterministic in-memory
// fake used by engine tests.
package desktop

import "context"

// Config describes how to reach the remote desktop.
type Config struct {
	Host   string
	Port   int
	Width  int
	Height int
}

// Controller is the thin interface the execution engine depends on. Every
// method suspends on ctx — callers must be prepared for it to return
// context.Canceled/context.DeadlineExceeded at any suspension point.
type Controller interface {
	Connect(ctx context.Context, cfg Config) error
	Disconnect(ctx context.Context) error
	IsConnected() bool

	CaptureScreenshot(ctx context.Context) ([]byte, error)

	Click(ctx context.Context, x, y int) error
	DoubleClick(ctx context.Context, x, y int) error
	RightClick(ctx context.Context, x, y int) error

	SendKeys(ctx context.Context, text string) error
	SendKeyCombo(ctx context.Context, combo string) error
}

// DeviceError wraps a failure raised by the remote-desktop controller.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return "device error during " + e.Op + ": " + e.Err.Error()
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// NewDeviceError wraps err as a DeviceError for operation op.
func NewDeviceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &DeviceError{Op: op, Err: err}
}

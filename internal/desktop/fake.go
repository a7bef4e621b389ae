package desktop

import (
	"context"
	"fmt"
	"sync"
)

// Fake is a deterministic in-memory Controller used by engine tests. It
// never touches a network or a real screen: CaptureScreenshot returns
// whatever byte slice is next in Screenshots (looping on the last one once
// exhausted), and every input method just records the call it received.
type Fake struct {
	mu sync.Mutex

	connected bool

	// Screenshots is consumed in order by CaptureScreenshot. Once the last
	// entry has been served, subsequent calls keep returning it.
	Screenshots [][]byte
	shotIndex   int

	// Calls records every method invocation in order, for assertions.
	Calls []string

	// ConnectErr, if set, is returned by Connect instead of succeeding.
	ConnectErr error
	// CaptureErr, if set, is returned by CaptureScreenshot instead of the
	// next screenshot.
	CaptureErr error
}

// NewFake returns a Fake pre-loaded with the given screenshots.
func NewFake(screenshots ...[]byte) *Fake {
	return &Fake{Screenshots: screenshots}
}

func (f *Fake) Connect(ctx context.Context, cfg Config) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, fmt.Sprintf("Connect(%s:%d)", cfg.Host, cfg.Port))
	if f.ConnectErr != nil {
		return f.ConnectErr
	}
	f.connected = true
	return nil
}

func (f *Fake) Disconnect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "Disconnect")
	f.connected = false
	return nil
}

func (f *Fake) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *Fake) CaptureScreenshot(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, "CaptureScreenshot")
	if f.CaptureErr != nil {
		return nil, f.CaptureErr
	}
	if len(f.Screenshots) == 0 {
		return []byte("fake-screenshot"), nil
	}
	idx := f.shotIndex
	if idx >= len(f.Screenshots) {
		idx = len(f.Screenshots) - 1
	} else {
		f.shotIndex++
	}
	return f.Screenshots[idx], nil
}

func (f *Fake) Click(ctx context.Context, x, y int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, fmt.Sprintf("Click(%d,%d)", x, y))
	return nil
}

func (f *Fake) DoubleClick(ctx context.Context, x, y int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, fmt.Sprintf("DoubleClick(%d,%d)", x, y))
	return nil
}

func (f *Fake) RightClick(ctx context.Context, x, y int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, fmt.Sprintf("RightClick(%d,%d)", x, y))
	return nil
}

func (f *Fake) SendKeys(ctx context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, fmt.Sprintf("SendKeys(%q)", text))
	return nil
}

func (f *Fake) SendKeyCombo(ctx context.Context, combo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, fmt.Sprintf("SendKeyCombo(%q)", combo))
	return nil
}

var _ Controller = (*Fake)(nil)

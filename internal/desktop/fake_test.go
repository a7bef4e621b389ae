package desktop

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFake_ConnectTracksState(t *testing.T) {
	f := NewFake()
	ctx := context.Background()

	assert.False(t, f.IsConnected(), "expected not connected initially")
	require.NoError(t, f.Connect(ctx, Config{Host: "10.0.0.5", Port: 3389}))
	assert.True(t, f.IsConnected(), "expected connected after Connect")
	require.NoError(t, f.Disconnect(ctx))
	assert.False(t, f.IsConnected(), "expected not connected after Disconnect")
}

func TestFake_ConnectErr(t *testing.T) {
	f := NewFake()
	f.ConnectErr = errors.New("refused")
	err := f.Connect(context.Background(), Config{})
	require.Error(t, err, "expected ConnectErr to surface")
	assert.False(t, f.IsConnected(), "expected not connected after failed Connect")
}

func TestFake_CaptureScreenshotAdvancesThenSticks(t *testing.T) {
	f := NewFake([]byte("one"), []byte("two"))
	ctx := context.Background()

	first, _ := f.CaptureScreenshot(ctx)
	second, _ := f.CaptureScreenshot(ctx)
	third, _ := f.CaptureScreenshot(ctx)

	assert.Equal(t, []byte("one"), first)
	assert.Equal(t, []byte("two"), second)
	assert.Equal(t, []byte("two"), third)
}

func TestFake_CaptureScreenshotDefaultWhenEmpty(t *testing.T) {
	f := NewFake()
	shot, err := f.CaptureScreenshot(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, shot, "expected a non-empty default screenshot")
}

func TestFake_RecordsCalls(t *testing.T) {
	f := NewFake()
	ctx := context.Background()
	_ = f.Click(ctx, 10, 20)
	_ = f.SendKeyCombo(ctx, "Ctrl+C")
	_ = f.SendKeys(ctx, "hello")

	want := []string{`Click(10,20)`, `SendKeyCombo("Ctrl+C")`, `SendKeys("hello")`}
	assert.Equal(t, want, f.Calls)
}

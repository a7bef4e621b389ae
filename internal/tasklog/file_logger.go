package tasklog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// FileLogger writes one JSONL file per task run under dir, plus a
// screenshots/<task>/<n>-<prefix>.png archive alongside it. A failed
// SaveScreenshot is kept on lastErr and also returned; failures writing log
// records are not reported.
type FileLogger struct {
	dir string

	mu       sync.Mutex
	file     *os.File
	logger   zerolog.Logger
	taskName string
	seq      int
	lastErr  error
	start    time.Time
}

// NewFileLogger returns a FileLogger rooted at dir. dir is created lazily
// on the first StartTaskLog call.
func NewFileLogger(dir string) *FileLogger {
	return &FileLogger{dir: dir}
}

func (f *FileLogger) StartTaskLog(taskName string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating log directory: %w", err)
	}

	safeName := sanitizeName(taskName)
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	path := filepath.Join(f.dir, fmt.Sprintf("%s-%s.jsonl", safeName, timestamp))

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating task log %q: %w", path, err)
	}

	f.file = file
	f.logger = zerolog.New(file).With().Timestamp().Logger()
	f.taskName = taskName
	f.seq = 0
	f.start = time.Now()

	return path, nil
}

func (f *FileLogger) LogTaskStart(taskName string, params map[string]string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return
	}
	evt := f.logger.Info().Str("kind", KindTaskStart).Str("taskName", taskName)
	for k, v := range params {
		evt = evt.Str("param."+k, v)
	}
	evt.Msg("task started")
}

func (f *FileLogger) LogStepStart(index int, description string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return
	}
	f.logger.Info().
		Str("kind", KindStepStart).
		Int("stepIndex", index).
		Str("description", description).
		Msg("step started")
}

func (f *FileLogger) LogStepComplete(index int, success bool, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return
	}
	evt := f.logger.Info().
		Str("kind", KindStepComplete).
		Int("stepIndex", index).
		Bool("success", success)
	if err != nil {
		evt = evt.Str("error", err.Error())
	}
	evt.Msg("step complete")
}

func (f *FileLogger) LogTaskComplete(success bool, durationMs int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return
	}
	evt := f.logger.Info().
		Str("kind", KindTaskComplete).
		Bool("success", success).
		Int64("durationMs", durationMs)
	if err != nil {
		evt = evt.Str("error", err.Error())
	}
	evt.Msg("task complete")
}

func (f *FileLogger) LogAction(stepIndex int, kind string, detail map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return
	}
	evt := f.logger.Info().
		Str("kind", KindAction).
		Int("stepIndex", stepIndex).
		Str("actionKind", kind)
	for k, v := range detail {
		evt = evt.Interface("detail."+k, v)
	}
	evt.Msg("action")
}

func (f *FileLogger) SaveScreenshot(pngBytes []byte, prefix string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	shotDir := filepath.Join(f.dir, "screenshots", sanitizeName(f.taskName))
	if err := os.MkdirAll(shotDir, 0o755); err != nil {
		f.lastErr = err
		return "", err
	}

	f.seq++
	path := filepath.Join(shotDir, fmt.Sprintf("%03d-%s.png", f.seq, sanitizeName(prefix)))
	if err := os.WriteFile(path, pngBytes, 0o644); err != nil {
		f.lastErr = err
		return "", err
	}
	return path, nil
}

func (f *FileLogger) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	return f.file.Sync()
}

func sanitizeName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		case r == ' ':
			out = append(out, '-')
		}
	}
	if len(out) == 0 {
		return "task"
	}
	return string(out)
}

var _ Logger = (*FileLogger)(nil)

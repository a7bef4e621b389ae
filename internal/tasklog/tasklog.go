// Package tasklog defines the TaskLogger contract the engine uses for
// structured, best-effort logging of a task run, plus a JSONL file-backed
// implementation.
package tasklog

import "time"

// Logger records the lifecycle of one task execution. Every method is
// best-effort from the engine's point of view: the Log* methods report no
// errors, and the engine ignores the errors StartTaskLog, SaveScreenshot and
// Flush return.
type Logger interface {
	// StartTaskLog opens (or creates) the log for a task run and returns
	// its path on disk.
	StartTaskLog(taskName string) (string, error)

	LogTaskStart(taskName string, params map[string]string)
	LogStepStart(index int, description string)
	LogStepComplete(index int, success bool, err error)
	LogTaskComplete(success bool, durationMs int64, err error)
	LogAction(stepIndex int, kind string, detail map[string]any)

	// SaveScreenshot archives pngBytes under a name derived from prefix
	// and returns the path it was written to.
	SaveScreenshot(pngBytes []byte, prefix string) (string, error)

	// Flush ensures every buffered record has been written to disk.
	Flush() error
}

// Record is one logged event as Fake keeps it in memory. Kind distinguishes
// the record's shape; only the fields relevant to Kind are populated.
// FileLogger does not use this type: it writes its JSONL lines through
// zerolog.
type Record struct {
	Time        time.Time      `json:"time"`
	Kind        string         `json:"kind"`
	TaskName    string         `json:"taskName,omitempty"`
	Params      map[string]string `json:"params,omitempty"`
	StepIndex   int            `json:"stepIndex,omitempty"`
	Description string         `json:"description,omitempty"`
	ActionKind  string         `json:"actionKind,omitempty"`
	Detail      map[string]any `json:"detail,omitempty"`
	Success     bool           `json:"success,omitempty"`
	Error       string         `json:"error,omitempty"`
	DurationMs  int64          `json:"durationMs,omitempty"`
}

const (
	KindTaskStart    = "task_start"
	KindStepStart    = "step_start"
	KindStepComplete = "step_complete"
	KindTaskComplete = "task_complete"
	KindAction       = "action"
)

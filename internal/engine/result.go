package engine

// TaskExecutionResult is what Execute returns, win or lose: enough detail
// for a caller to diagnose a failure without re-reading the log file.
type TaskExecutionResult struct {
	Success       bool
	Error         string
	FailedAtStep  string
	Outputs       map[string]string
	StepsCompleted int
	StepsTotal     int
	DurationMs     int64
	LogFile        string
	ScreenshotPath string
}

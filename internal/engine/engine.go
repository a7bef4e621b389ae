// Package engine implements the MBL task interpreter: a sequential
// step/action executor driving a remote-desktop controller and a
// vision-model client from a parsed, validated TaskDefinition.
package engine

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/phillarmonic/deskflow/internal/ast"
	"github.com/phillarmonic/deskflow/internal/config"
	"github.com/phillarmonic/deskflow/internal/desktop"
	"github.com/phillarmonic/deskflow/internal/tasklog"
	"github.com/phillarmonic/deskflow/internal/vision"
)

// Engine runs one MBL task at a time against its collaborators. There is no
// internal parallelism: the step loop, the expect-retry loop, and the
// if-branch resolver are ordinary sequential loops.
type Engine struct {
	Desktop desktop.Controller
	Vision  vision.Client
	Logger  tasklog.Logger
	Config  *config.EngineConfig

	running atomic.Bool

	statusTaskName atomic.Value // string
	statusStepName atomic.Value // string
}

// New builds an Engine from its collaborators and configuration.
func New(d desktop.Controller, v vision.Client, l tasklog.Logger, cfg *config.EngineConfig) *Engine {
	e := &Engine{Desktop: d, Vision: v, Logger: l, Config: cfg}
	e.statusTaskName.Store("")
	e.statusStepName.Store("")
	return e
}

// IsRunning reports whether a task is currently executing.
func (e *Engine) IsRunning() bool { return e.running.Load() }

// CurrentTaskName returns the name of the task currently executing, or "".
func (e *Engine) CurrentTaskName() string { return e.statusTaskName.Load().(string) }

// CurrentStepName returns the description of the step currently executing,
// or "".
func (e *Engine) CurrentStepName() string { return e.statusStepName.Load().(string) }

// Execute runs task to completion (or failure, abort, timeout, or
// cancellation). task must have already passed validation. Execute
// serialises itself against concurrent callers via a single-flight guard;
// a second concurrent call receives a TaskAlreadyRunningError without
// touching the rest of the engine.
func (e *Engine) Execute(ctx context.Context, task *ast.TaskDefinition, params map[string]string) (*TaskExecutionResult, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, &TaskAlreadyRunningError{}
	}
	defer e.running.Store(false)
	defer e.statusTaskName.Store("")
	defer e.statusStepName.Store("")

	e.statusTaskName.Store(task.Name)

	result := &TaskExecutionResult{
		StepsTotal: len(task.Steps),
	}

	execCtx := NewExecutionContext(task.Name, params)

	for _, name := range task.Inputs {
		if !execCtx.HasParameter(name) {
			err := &MissingInputError{Name: name}
			result.Error = err.Error()
			return result, err
		}
	}

	logPath, logErr := e.Logger.StartTaskLog(task.Name)
	if logErr == nil {
		result.LogFile = logPath
	}
	e.Logger.LogTaskStart(task.Name, params)

	start := time.Now()

	var runErr error
	var failedStep string

	for i, step := range task.Steps {
		e.statusStepName.Store(step.Description)
		execCtx.CurrentStepIndex = i
		execCtx.CurrentStepName = step.Description
		e.Logger.LogStepStart(i, step.Description)

		stepTimeoutSeconds := step.TimeoutSeconds
		if stepTimeoutSeconds <= 0 {
			stepTimeoutSeconds = e.Config.DefaultExpectTimeoutSeconds
		}
		stepCtx, cancel := context.WithTimeout(ctx, time.Duration(stepTimeoutSeconds)*time.Second)

		runner := &stepRunner{
			engine:      e,
			outerCtx:    ctx,
			stepCtx:     stepCtx,
			execCtx:     execCtx,
			stepDesc:    step.Description,
			stepSeconds: stepTimeoutSeconds,
		}
		err := runner.run(step.Actions)
		cancel()

		if err != nil {
			e.Logger.LogStepComplete(i, false, err)
			runErr = err
			failedStep = step.Description
			e.dispatchHandler(ctx, execCtx, task, err)
			break
		}

		e.Logger.LogStepComplete(i, true, nil)
		result.StepsCompleted++
	}

	durationMs := time.Since(start).Milliseconds()
	result.DurationMs = durationMs
	result.Outputs = execCtx.Outputs()
	result.ScreenshotPath = execCtx.LastScreenshot()

	if runErr != nil {
		result.Success = false
		result.Error = runErr.Error()
		result.FailedAtStep = failedStep
	} else {
		result.Success = true
	}

	e.Logger.LogTaskComplete(result.Success, durationMs, runErr)
	_ = e.Logger.Flush()

	return result, runErr
}

// dispatchHandler runs the task's on-timeout or on-error handler (if any)
// appropriate to err's classification. Handlers run under the outer
// (caller) token, never the expired step token, and their own failures are
// logged but never overwrite the original error.
func (e *Engine) dispatchHandler(ctx context.Context, execCtx *ExecutionContext, task *ast.TaskDefinition, err error) {
	var handler *ast.ErrorHandler

	switch err.(type) {
	case *StepTimedOutError, *ExpectExhaustedError:
		handler = task.OnTimeout
	case *AbortError, *CancelledError:
		handler = nil
	default:
		handler = task.OnError
	}

	if handler == nil {
		return
	}

	runner := &stepRunner{
		engine:      e,
		outerCtx:    ctx,
		stepCtx:     ctx,
		execCtx:     execCtx,
		stepDesc:    "handler",
		stepSeconds: e.Config.DefaultExpectTimeoutSeconds,
	}
	if handlerErr := runner.run(handler.Actions); handlerErr != nil {
		e.Logger.LogAction(execCtx.CurrentStepIndex, "handler_error", map[string]any{
			"error": handlerErr.Error(),
		})
	}
}

// classify turns a context expiry into the right engine error, distinguishing
// an outer cancellation from a step-local timeout.
func classify(outerCtx, stepCtx context.Context, stepDesc string, stepSeconds int) error {
	if stepCtx.Err() == nil {
		return nil
	}
	if outerCtx.Err() != nil {
		return &CancelledError{}
	}
	return &StepTimedOutError{Step: stepDesc, Seconds: stepSeconds}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

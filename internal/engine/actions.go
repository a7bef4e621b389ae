package engine

import (
	"context"
	"errors"

	"github.com/phillarmonic/deskflow/internal/ast"
	"github.com/phillarmonic/deskflow/internal/prompt"
	"github.com/phillarmonic/deskflow/internal/protocol"
)

// stepRunner executes one step's (or one handler's) action list against a
// shared ExecutionContext. outerCtx is the caller's token; stepCtx is
// outerCtx wrapped with the step's deadline (equal to outerCtx for handler
// bodies, which run without their own separate deadline).
type stepRunner struct {
	engine   *Engine
	outerCtx context.Context
	stepCtx  context.Context
	execCtx  *ExecutionContext

	stepDesc    string
	stepSeconds int
}

// checkDone returns the classified error if either context has expired,
// else nil.
func (r *stepRunner) checkDone() error {
	return classify(r.outerCtx, r.stepCtx, r.stepDesc, r.stepSeconds)
}

// reclassify turns a raw context.Canceled/DeadlineExceeded bubbling up from
// a collaborator call into the right engine error (Cancelled vs.
// StepTimedOut), leaving any other error untouched.
func (r *stepRunner) reclassify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		if classified := r.checkDone(); classified != nil {
			return classified
		}
	}
	return err
}

func (r *stepRunner) sleepMs(ms int) error {
	if err := r.checkDone(); err != nil {
		return err
	}
	if err := sleepCtx(r.stepCtx, msDuration(ms)); err != nil {
		return r.checkDone()
	}
	return nil
}

// run executes actions in order, stopping at the first error.
func (r *stepRunner) run(actions []ast.Action) error {
	for _, action := range actions {
		if err := r.checkDone(); err != nil {
			return err
		}
		if err := r.dispatch(action); err != nil {
			return err
		}
	}
	return nil
}

func (r *stepRunner) dispatch(action ast.Action) error {
	switch a := action.(type) {
	case *ast.Expect:
		return r.doExpect(a)
	case *ast.Click:
		return r.doClick(a)
	case *ast.Type:
		return r.doType(a)
	case *ast.Select:
		return r.doSelect(a)
	case *ast.Key:
		return r.doKey(a)
	case *ast.Extract:
		return r.doExtract(a)
	case *ast.Output:
		r.execCtx.RecordOutput(a.VariableName)
		return nil
	case *ast.Screenshot:
		return r.doScreenshot()
	case *ast.Abort:
		return &AbortError{Message: a.Message}
	case *ast.IfScreenShows:
		return r.doIf(a)
	default:
		return nil
	}
}

// capture takes a screenshot, archives it, and records its path.
func (r *stepRunner) capture(prefix string) ([]byte, error) {
	png, err := r.engine.Desktop.CaptureScreenshot(r.stepCtx)
	if err != nil {
		return nil, r.reclassify(err)
	}
	path, logErr := r.engine.Logger.SaveScreenshot(png, prefix)
	if logErr == nil {
		r.execCtx.RecordScreenshot(path)
	}
	return png, nil
}

// ask sends a screenshot plus prompt to the vision model and accounts for
// token usage.
func (r *stepRunner) ask(png []byte, userPrompt string) (string, error) {
	systemPrompt := prompt.System(r.engine.Config.RemoteDesktop.Width, r.engine.Config.RemoteDesktop.Height)
	reply, err := r.engine.Vision.Send(r.stepCtx, png, systemPrompt, userPrompt)
	if err != nil {
		return "", r.reclassify(err)
	}
	r.execCtx.AddTokens(reply.InputTokens, reply.OutputTokens)
	return reply.Text, nil
}

func (r *stepRunner) postClickDelay() error {
	return r.sleepMs(r.engine.Config.PostClickDelayMs)
}

func (r *stepRunner) postActionDelay() error {
	return r.sleepMs(r.engine.Config.PostActionDelayMs)
}

func (r *stepRunner) doExpect(a *ast.Expect) error {
	retryIntervals := r.engine.Config.ExpectRetryIntervalsMs
	maxAttempts := 1 + len(retryIntervals)

	var lastText string
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := r.checkDone(); err != nil {
			return err
		}

		png, err := r.capture("expect")
		if err != nil {
			return err
		}
		text, err := r.ask(png, prompt.Expect(a.Description))
		if err != nil {
			return err
		}
		lastText = text

		if protocol.ParseExpect(text) == protocol.Match {
			return nil
		}

		if attempt < maxAttempts-1 {
			if err := r.sleepMs(retryIntervals[attempt]); err != nil {
				return err
			}
		}
	}

	return &ExpectExhaustedError{Description: a.Description, LastText: lastText}
}

func (r *stepRunner) locate(target string) (protocol.Coordinate, error) {
	png, err := r.capture("locate")
	if err != nil {
		return protocol.Coordinate{}, err
	}
	text, err := r.ask(png, prompt.Locate(target))
	if err != nil {
		return protocol.Coordinate{}, err
	}
	return protocol.ParseCoordinate(text), nil
}

func (r *stepRunner) doClick(a *ast.Click) error {
	coord, err := r.locate(a.Target)
	if err != nil {
		return err
	}
	if !coord.Found {
		return &ElementNotFoundError{Target: a.Target, Detail: coord.ErrorDetail}
	}

	switch a.Kind {
	case ast.ClickDouble:
		err = r.engine.Desktop.DoubleClick(r.stepCtx, coord.X, coord.Y)
	case ast.ClickRight:
		err = r.engine.Desktop.RightClick(r.stepCtx, coord.X, coord.Y)
	default:
		err = r.engine.Desktop.Click(r.stepCtx, coord.X, coord.Y)
	}
	if err != nil {
		return r.reclassify(err)
	}
	return r.postClickDelay()
}

func (r *stepRunner) resolveValue(value string, isParam bool) (string, error) {
	if !isParam {
		return value, nil
	}
	v, ok := r.execCtx.ResolveValue(value)
	if !ok {
		return "", &MissingInputError{Name: value}
	}
	return v, nil
}

func (r *stepRunner) doType(a *ast.Type) error {
	value, err := r.resolveValue(a.Value, a.IsParam)
	if err != nil {
		return err
	}

	coord, err := r.locate(a.Target)
	if err != nil {
		return err
	}
	if !coord.Found {
		return &ElementNotFoundError{Target: a.Target, Detail: coord.ErrorDetail}
	}

	if err := r.engine.Desktop.Click(r.stepCtx, coord.X, coord.Y); err != nil {
		return r.reclassify(err)
	}
	if err := r.postClickDelay(); err != nil {
		return err
	}

	if !a.Append {
		if err := r.engine.Desktop.SendKeyCombo(r.stepCtx, "Ctrl+A"); err != nil {
			return r.reclassify(err)
		}
		if err := r.engine.Desktop.SendKeyCombo(r.stepCtx, "Delete"); err != nil {
			return r.reclassify(err)
		}
	}

	if err := r.engine.Desktop.SendKeys(r.stepCtx, value); err != nil {
		return r.reclassify(err)
	}
	return r.postActionDelay()
}

func (r *stepRunner) doSelect(a *ast.Select) error {
	value, err := r.resolveValue(a.Value, a.IsParam)
	if err != nil {
		return err
	}

	dropdown, err := r.locate(a.Target)
	if err != nil {
		return err
	}
	if !dropdown.Found {
		return &ElementNotFoundError{Target: a.Target, Detail: dropdown.ErrorDetail}
	}
	if err := r.engine.Desktop.Click(r.stepCtx, dropdown.X, dropdown.Y); err != nil {
		return r.reclassify(err)
	}
	if err := r.sleepMs(r.engine.Config.PostClickDelayMs + 300); err != nil {
		return err
	}

	png, err := r.capture("select")
	if err != nil {
		return err
	}
	text, err := r.ask(png, prompt.SelectOption(value, a.Target))
	if err != nil {
		return err
	}
	option := protocol.ParseCoordinate(text)
	if !option.Found {
		return &ElementNotFoundError{Target: value, Detail: option.ErrorDetail}
	}
	if err := r.engine.Desktop.Click(r.stepCtx, option.X, option.Y); err != nil {
		return r.reclassify(err)
	}
	return r.postClickDelay()
}

func (r *stepRunner) doKey(a *ast.Key) error {
	if err := r.engine.Desktop.SendKeyCombo(r.stepCtx, a.KeyCombo); err != nil {
		return r.reclassify(err)
	}
	return r.postActionDelay()
}

func (r *stepRunner) doExtract(a *ast.Extract) error {
	png, err := r.capture("extract")
	if err != nil {
		return err
	}
	text, err := r.ask(png, prompt.Extract(a.Source))
	if err != nil {
		return err
	}
	extraction := protocol.ParseExtract(text)
	if !extraction.Found {
		return &ElementNotFoundError{Target: a.Source, Detail: "value not found"}
	}
	if extraction.Empty {
		r.execCtx.RecordExtract(a.VariableName, "")
	} else {
		r.execCtx.RecordExtract(a.VariableName, extraction.Value)
	}
	return nil
}

func (r *stepRunner) doScreenshot() error {
	_, err := r.capture("screenshot")
	return err
}

func (r *stepRunner) doIf(a *ast.IfScreenShows) error {
	png, err := r.capture("if")
	if err != nil {
		return err
	}
	text, err := r.ask(png, prompt.IfScreenShows(a.Condition))
	if err != nil {
		return err
	}
	if protocol.ParseBoolean(text) {
		return r.run(a.Then)
	}
	return r.run(a.Else)
}

package engine

import "strings"

// ExecutionContext is constructed fresh for one task run and discarded when
// Execute returns. It is never shared across concurrent tasks — the engine
// only ever runs one task at a time.
type ExecutionContext struct {
	TaskName string

	// parameters is keyed by a case-folded form of the identifier;
	// NewExecutionContext, Parameter and HasParameter do the folding so
	// callers never see the internal casing.
	parameters map[string]string

	// ExtractedValues is case-sensitive, per the engine's value-resolution
	// rule: parameters win on collision, extracted values are the fallback.
	ExtractedValues map[string]string

	// DeclaredOutputs is the de-duplicated, ordered sequence of names an
	// Output action has named.
	DeclaredOutputs []string
	declaredSet     map[string]bool

	CurrentStepIndex int
	CurrentStepName  string

	ScreenshotPaths []string
	TotalTokensUsed int
}

// NewExecutionContext builds an ExecutionContext from the caller's
// parameters map, preserved case-insensitively.
func NewExecutionContext(taskName string, params map[string]string) *ExecutionContext {
	folded := make(map[string]string, len(params))
	for k, v := range params {
		folded[foldKey(k)] = v
	}
	return &ExecutionContext{
		TaskName:        taskName,
		parameters:      folded,
		ExtractedValues: make(map[string]string),
		declaredSet:     make(map[string]bool),
	}
}

func foldKey(name string) string {
	return strings.ToLower(name)
}

// Parameter looks up name case-insensitively.
func (c *ExecutionContext) Parameter(name string) (string, bool) {
	v, ok := c.parameters[foldKey(name)]
	return v, ok
}

// HasParameter reports whether name was supplied by the caller.
func (c *ExecutionContext) HasParameter(name string) bool {
	_, ok := c.parameters[foldKey(name)]
	return ok
}

// ResolveValue implements the engine's flat value-resolution rule: for a
// parameter-valued Type/Select, Parameter wins, ExtractedValues is the
// fallback, and absence of both is MissingInput.
func (c *ExecutionContext) ResolveValue(name string) (string, bool) {
	if v, ok := c.Parameter(name); ok {
		return v, true
	}
	if v, ok := c.ExtractedValues[name]; ok {
		return v, true
	}
	return "", false
}

// RecordExtract stores a successfully extracted value. Empty values are
// recorded as "", matching the Extract action's EMPTY handling.
func (c *ExecutionContext) RecordExtract(name, value string) {
	c.ExtractedValues[name] = value
}

// RecordOutput appends name to DeclaredOutputs, idempotently.
func (c *ExecutionContext) RecordOutput(name string) {
	if c.declaredSet[name] {
		return
	}
	c.declaredSet[name] = true
	c.DeclaredOutputs = append(c.DeclaredOutputs, name)
}

// RecordScreenshot appends path to ScreenshotPaths.
func (c *ExecutionContext) RecordScreenshot(path string) {
	if path == "" {
		return
	}
	c.ScreenshotPaths = append(c.ScreenshotPaths, path)
}

// LastScreenshot returns the most recently recorded screenshot path, or "".
func (c *ExecutionContext) LastScreenshot() string {
	if len(c.ScreenshotPaths) == 0 {
		return ""
	}
	return c.ScreenshotPaths[len(c.ScreenshotPaths)-1]
}

// AddTokens accumulates model token usage.
func (c *ExecutionContext) AddTokens(input, output int) {
	c.TotalTokensUsed += input + output
}

// Outputs builds the result's outputs map by walking DeclaredOutputs in
// order and looking each name up in ExtractedValues; a declared output
// whose value never materialised (e.g. extracted only in a branch that
// didn't run) is simply omitted.
func (c *ExecutionContext) Outputs() map[string]string {
	out := make(map[string]string, len(c.DeclaredOutputs))
	for _, name := range c.DeclaredOutputs {
		if v, ok := c.ExtractedValues[name]; ok {
			out[name] = v
		}
	}
	return out
}

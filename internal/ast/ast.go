// Package ast defines the tree produced by the MBL parser: a TaskDefinition
// made of Steps, each a flat ordered list of Actions.
package ast

import "strings"

// Node is any AST node capable of rendering itself for debugging.
type Node interface {
	String() string
}

// TaskDefinition is the root of a parsed MBL task.
type TaskDefinition struct {
	Name      string
	FileName  string
	Inputs    []string // declared input parameter names, order preserved
	Steps     []*Step
	OnTimeout *ErrorHandler // optional
	OnError   *ErrorHandler // optional
}

func (t *TaskDefinition) String() string {
	var b strings.Builder
	b.WriteString("task \"" + t.Name + "\"\n")
	if len(t.Inputs) > 0 {
		b.WriteString("input " + strings.Join(t.Inputs, ", ") + "\n")
	}
	for _, s := range t.Steps {
		b.WriteString(s.String())
	}
	if t.OnTimeout != nil {
		b.WriteString("on timeout\n" + t.OnTimeout.String())
	}
	if t.OnError != nil {
		b.WriteString("on error\n" + t.OnError.String())
	}
	return b.String()
}

// Step is a named group of actions with an optional per-step timeout.
type Step struct {
	Description    string
	TimeoutSeconds int // 0 means "not set"; engine falls back to config default
	Actions        []Action
}

func (s *Step) String() string {
	var b strings.Builder
	b.WriteString("step \"" + s.Description + "\"\n")
	if s.TimeoutSeconds > 0 {
		b.WriteString("  timeout " + itoa(s.TimeoutSeconds) + "\n")
	}
	for _, a := range s.Actions {
		b.WriteString("  " + a.String() + "\n")
	}
	return b.String()
}

// ErrorHandler holds the action list run by "on timeout" or "on error".
type ErrorHandler struct {
	Actions []Action
}

func (h *ErrorHandler) String() string {
	var b strings.Builder
	for _, a := range h.Actions {
		b.WriteString("  " + a.String() + "\n")
	}
	return b.String()
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

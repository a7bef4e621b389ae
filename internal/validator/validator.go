// Package validator performs the static checks that must pass before a
// parsed TaskDefinition is allowed to execute.
package validator

import (
	"fmt"

	"github.com/phillarmonic/deskflow/internal/ast"
)

// Validate runs every static check over task and returns the ordered list
// of human-readable problems found (empty slice if the task is valid).
func Validate(task *ast.TaskDefinition) []string {
	var problems []string

	if len(task.Steps) == 0 {
		problems = append(problems, "task must have at least one step")
	}

	inputs := make(map[string]bool, len(task.Inputs))
	for _, name := range task.Inputs {
		inputs[name] = true
	}

	extracted := map[string]bool{}
	for _, step := range task.Steps {
		problems = append(problems, checkActions(step.Actions, inputs, extracted, false)...)
	}

	if task.OnTimeout != nil {
		// Handler bodies see everything the main body extracted, but their
		// own extracts are only visible to later actions within the same
		// handler (a fresh copy, not the shared main-body set).
		handlerExtracted := cloneSet(extracted)
		problems = append(problems, checkActions(task.OnTimeout.Actions, inputs, handlerExtracted, false)...)
	}
	if task.OnError != nil {
		handlerExtracted := cloneSet(extracted)
		problems = append(problems, checkActions(task.OnError.Actions, inputs, handlerExtracted, false)...)
	}

	return problems
}

func cloneSet(s map[string]bool) map[string]bool {
	clone := make(map[string]bool, len(s))
	for k, v := range s {
		clone[k] = v
	}
	return clone
}

// checkActions walks actions depth-first, mutating extracted in place as it
// goes, so later actions (including actions after an "if" block) see names
// extracted earlier, even when the extract happened inside a branch.
// insideIf marks whether this call is already nested inside an
// IfScreenShows, for the no-nested-if check.
func checkActions(actions []ast.Action, inputs map[string]bool, extracted map[string]bool, insideIf bool) []string {
	var problems []string

	for _, action := range actions {
		switch a := action.(type) {
		case *ast.Type:
			if a.IsParam && !inputs[a.Value] {
				problems = append(problems, fmt.Sprintf("type references undeclared parameter %q", a.Value))
			}
		case *ast.Select:
			if a.IsParam && !inputs[a.Value] {
				problems = append(problems, fmt.Sprintf("select references undeclared parameter %q", a.Value))
			}
		case *ast.Extract:
			extracted[a.VariableName] = true
		case *ast.Output:
			if !extracted[a.VariableName] {
				problems = append(problems, fmt.Sprintf("output %q has no preceding extract", a.VariableName))
			}
		case *ast.IfScreenShows:
			if insideIf {
				problems = append(problems, fmt.Sprintf("nested \"if screen shows %q\" is not allowed", a.Condition))
			}
			problems = append(problems, checkActions(a.Then, inputs, extracted, true)...)
			problems = append(problems, checkActions(a.Else, inputs, extracted, true)...)
		}
	}

	return problems
}

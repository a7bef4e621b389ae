package parser

import (
	"testing"

	"github.com/phillarmonic/deskflow/internal/ast"
)

func mustParse(t *testing.T, source string) *ast.TaskDefinition {
	t.Helper()
	task, err := ParseFile("test.mbl", source)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	return task
}

func TestParser_MinimalClick(t *testing.T) {
	task := mustParse(t, "task \"T\"\nstep \"s\"\n  click \"Save\"")

	if task.Name != "T" {
		t.Fatalf("name = %q", task.Name)
	}
	if len(task.Steps) != 1 {
		t.Fatalf("steps = %d", len(task.Steps))
	}
	if len(task.Steps[0].Actions) != 1 {
		t.Fatalf("actions = %d", len(task.Steps[0].Actions))
	}
	click, ok := task.Steps[0].Actions[0].(*ast.Click)
	if !ok {
		t.Fatalf("action type = %T", task.Steps[0].Actions[0])
	}
	if click.Kind != ast.ClickSingle || click.Target != "Save" {
		t.Fatalf("click = %+v", click)
	}
}

func TestParser_InputsAndParamType(t *testing.T) {
	src := `task "T"
input name, age
step "s"
  timeout 5
  type name into "Field"
`
	task := mustParse(t, src)
	if len(task.Inputs) != 2 || task.Inputs[0] != "name" || task.Inputs[1] != "age" {
		t.Fatalf("inputs = %v", task.Inputs)
	}
	typeAction, ok := task.Steps[0].Actions[0].(*ast.Type)
	if !ok {
		t.Fatalf("action type = %T", task.Steps[0].Actions[0])
	}
	if !typeAction.IsParam || typeAction.Value != "name" || typeAction.Target != "Field" {
		t.Fatalf("type action = %+v", typeAction)
	}
}

func TestParser_StepTimeout(t *testing.T) {
	src := "task \"T\"\nstep \"s\"\n  timeout 30\n  click \"Save\"\n"
	task := mustParse(t, src)
	if task.Steps[0].TimeoutSeconds != 30 {
		t.Fatalf("timeout = %d", task.Steps[0].TimeoutSeconds)
	}
}

func TestParser_ExtractOutput(t *testing.T) {
	src := "task \"T\"\nstep \"s\"\n  extract total from \"Total\"\n  output total\n"
	task := mustParse(t, src)
	extract, ok := task.Steps[0].Actions[0].(*ast.Extract)
	if !ok || extract.VariableName != "total" || extract.Source != "Total" {
		t.Fatalf("extract = %+v (%T)", task.Steps[0].Actions[0], task.Steps[0].Actions[0])
	}
	output, ok := task.Steps[0].Actions[1].(*ast.Output)
	if !ok || output.VariableName != "total" {
		t.Fatalf("output = %+v", task.Steps[0].Actions[1])
	}
}

func TestParser_IfElseEnd(t *testing.T) {
	src := `task "T"
step "s"
  if screen shows "Dialog"
    click "OK"
  else
    click "Cancel"
  end
`
	task := mustParse(t, src)
	ifAction, ok := task.Steps[0].Actions[0].(*ast.IfScreenShows)
	if !ok {
		t.Fatalf("action type = %T", task.Steps[0].Actions[0])
	}
	if ifAction.Condition != "Dialog" {
		t.Fatalf("condition = %q", ifAction.Condition)
	}
	if len(ifAction.Then) != 1 || len(ifAction.Else) != 1 {
		t.Fatalf("then=%d else=%d", len(ifAction.Then), len(ifAction.Else))
	}
}

func TestParser_NestedIfParsesButIsFlaggedLaterByValidator(t *testing.T) {
	src := `task "T"
step "s"
  if screen shows "a"
    if screen shows "b"
      click "OK"
    end
  end
`
	task := mustParse(t, src)
	outer, ok := task.Steps[0].Actions[0].(*ast.IfScreenShows)
	if !ok {
		t.Fatalf("action type = %T", task.Steps[0].Actions[0])
	}
	if len(outer.Then) != 1 {
		t.Fatalf("then = %d", len(outer.Then))
	}
	if _, ok := outer.Then[0].(*ast.IfScreenShows); !ok {
		t.Fatalf("expected nested if to parse structurally, got %T", outer.Then[0])
	}
}

func TestParser_Handlers(t *testing.T) {
	src := `task "T"
step "s"
  click "Save"
on timeout
  abort "t/o"
on error
  screenshot
`
	task := mustParse(t, src)
	if task.OnTimeout == nil || len(task.OnTimeout.Actions) != 1 {
		t.Fatalf("onTimeout = %+v", task.OnTimeout)
	}
	if task.OnError == nil || len(task.OnError.Actions) != 1 {
		t.Fatalf("onError = %+v", task.OnError)
	}
}

func TestParser_DuplicateHandlersAcceptLast(t *testing.T) {
	src := `task "T"
step "s"
  click "Save"
on timeout
  abort "first"
on timeout
  abort "second"
`
	task := mustParse(t, src)
	abort, ok := task.OnTimeout.Actions[0].(*ast.Abort)
	if !ok || abort.Message != "second" {
		t.Fatalf("expected last 'on timeout' to win, got %+v", task.OnTimeout)
	}
}

func TestParser_KeyAction(t *testing.T) {
	task := mustParse(t, "task \"T\"\nstep \"s\"\n  key Ctrl+C\n")
	key, ok := task.Steps[0].Actions[0].(*ast.Key)
	if !ok || key.KeyCombo != "Ctrl+C" {
		t.Fatalf("key = %+v", task.Steps[0].Actions[0])
	}
}

func TestParser_MissingStepIsAnError(t *testing.T) {
	_, err := ParseFile("test.mbl", "task \"T\"\n")
	if err == nil {
		t.Fatalf("expected a parse error for a task with no steps")
	}
}

func TestParser_UnterminatedIfIsAnError(t *testing.T) {
	src := "task \"T\"\nstep \"s\"\n  if screen shows \"a\"\n    click \"OK\"\n"
	_, err := ParseFile("test.mbl", src)
	if err == nil {
		t.Fatalf("expected a parse error for a missing 'end'")
	}
}

package validator

import (
	"strings"
	"testing"

	"github.com/phillarmonic/deskflow/internal/parser"
)

func TestValidate_RejectsNestedIf(t *testing.T) {
	src := `task "T"
step "x"
  if screen shows "a"
    if screen shows "b"
      click "OK"
    end
  end
`
	task, err := parser.ParseFile("t.mbl", src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	problems := Validate(task)
	if len(problems) == 0 {
		t.Fatalf("expected a nested-if validation error")
	}
	found := false
	for _, p := range problems {
		if strings.Contains(p, "\"b\"") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected error to mention \"b\", got %v", problems)
	}
}

func TestValidate_OutputWithoutExtract(t *testing.T) {
	src := "task \"T\"\nstep \"x\"\n  output foo\n"
	task, err := parser.ParseFile("t.mbl", src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	problems := Validate(task)
	if len(problems) == 0 {
		t.Fatalf("expected a missing-extract validation error")
	}
	found := false
	for _, p := range problems {
		if strings.Contains(p, "foo") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected error to mention foo, got %v", problems)
	}
}

func TestValidate_UndeclaredParameter(t *testing.T) {
	src := "task \"T\"\nstep \"x\"\n  type undeclared into \"x\"\n"
	task, err := parser.ParseFile("t.mbl", src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	problems := Validate(task)
	found := false
	for _, p := range problems {
		if strings.Contains(p, "undeclared") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected error to mention undeclared, got %v", problems)
	}
}

func TestValidate_ExtractThenOutputIsValid(t *testing.T) {
	src := "task \"T\"\nstep \"x\"\n  extract total from \"Total\"\n  output total\n"
	task, err := parser.ParseFile("t.mbl", src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if problems := Validate(task); len(problems) != 0 {
		t.Fatalf("expected no problems, got %v", problems)
	}
}

func TestValidate_ExtractInsideIfVisibleAfterBlock(t *testing.T) {
	src := `task "T"
step "x"
  if screen shows "a"
    extract total from "Total"
  end
  output total
`
	task, err := parser.ParseFile("t.mbl", src)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if problems := Validate(task); len(problems) != 0 {
		t.Fatalf("expected extract inside if to be visible after the block, got %v", problems)
	}
}

func TestValidate_AtLeastOneStep(t *testing.T) {
	// Hand-build a task with zero steps bypassing the parser's own check.
	task, err := parser.ParseFile("t.mbl", "task \"T\"\nstep \"x\"\n  click \"Save\"\n")
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	task.Steps = nil
	problems := Validate(task)
	found := false
	for _, p := range problems {
		if strings.Contains(p, "at least one step") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected an at-least-one-step error, got %v", problems)
	}
}

// Package prompt builds the fixed English prompts sent to the vision model.
// Every function here is a pure, deterministic string builder: same inputs,
// same prompt, every time.
package prompt

import "fmt"

// System returns the system prompt, parameterised by the remote desktop's
// resolution so the model can reason about absolute pixel coordinates.
func System(width, height int) string {
	return fmt.Sprintf(
		"You are an automation assistant for a remote Windows desktop session "+
			"captured at %dx%d resolution. You will be shown a screenshot and "+
			"asked to locate an element, judge whether the screen matches a "+
			"description, read a value, or answer a yes/no question. Reply with "+
			"ONLY the exact format requested for each instruction; never add "+
			"commentary, punctuation, or explanation beyond what is asked.",
		width, height,
	)
}

// Expect builds the prompt for an "expect" assertion.
func Expect(description string) string {
	return fmt.Sprintf(
		"Does the current screen match this description: %q?\n"+
			"Reply with exactly one word on the first line: MATCH, NO_MATCH, or "+
			"UNCERTAIN.",
		description,
	)
}

// Locate builds the prompt used by click/double-click/right-click/type
// (before typing)/select (dropdown phase) to find an element's coordinates.
func Locate(target string) string {
	return fmt.Sprintf(
		"Locate this UI element on the screen: %q.\n"+
			"If you find it, reply with exactly its center coordinates as "+
			"\"x,y\" (integers, comma-separated) and nothing else.\n"+
			"If you cannot find it, reply with \"NOT_FOUND: <short reason>\".",
		target,
	)
}

// SelectOption builds the prompt used for the second phase of a select
// action: finding the already-open option within a target dropdown/list.
func SelectOption(value, target string) string {
	return fmt.Sprintf(
		"The dropdown/list %q is now open. Locate the option labelled %q.\n"+
			"If you find it, reply with exactly its center coordinates as "+
			"\"x,y\" and nothing else.\n"+
			"If you cannot find it, reply with \"NOT_FOUND: <short reason>\".",
		target, value,
	)
}

// Extract builds the prompt used to read a value off the screen.
func Extract(source string) string {
	return fmt.Sprintf(
		"Read the value shown at/in this location on the screen: %q.\n"+
			"Reply with exactly the value and nothing else.\n"+
			"If the field is visibly present but blank, reply with \"EMPTY\".\n"+
			"If you cannot find the field at all, reply with \"NOT_FOUND\".",
		source,
	)
}

// IfScreenShows builds the prompt for a conditional branch.
func IfScreenShows(condition string) string {
	return fmt.Sprintf(
		"Does the current screen match this description: %q?\n"+
			"Reply with exactly one word: YES or NO.",
		condition,
	)
}

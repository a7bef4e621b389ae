package ast

import "fmt"

// Action is a closed tagged variant: exactly the twelve kinds below
// implement it. actionNode is unexported so no other package can add a
// thirteenth kind — adding one is a compile-time-visible change everywhere
// an exhaustive switch over Action must be extended.
type Action interface {
	Node
	actionNode()
}

// Expect polls the screen until description matches, retrying per engine
// configuration.
type Expect struct {
	Description string
}

func (*Expect) actionNode()      {}
func (e *Expect) String() string { return fmt.Sprintf("expect %q", e.Description) }

// ClickKind distinguishes the three click variants, which share a shape.
type ClickKind int

const (
	ClickSingle ClickKind = iota
	ClickDouble
	ClickRight
)

// Click clicks (single, double, or right) on the element described by Target.
type Click struct {
	Kind   ClickKind
	Target string
}

func (*Click) actionNode() {}
func (c *Click) String() string {
	switch c.Kind {
	case ClickDouble:
		return fmt.Sprintf("double-click %q", c.Target)
	case ClickRight:
		return fmt.Sprintf("right-click %q", c.Target)
	default:
		return fmt.Sprintf("click %q", c.Target)
	}
}

// Type enters Value (a literal or, if IsParam, a declared input's resolved
// value) into the field described by Target, optionally appending instead of
// replacing the current contents.
type Type struct {
	Value   string
	IsParam bool
	Target  string
	Append  bool
}

func (*Type) actionNode() {}
func (t *Type) String() string {
	suffix := ""
	if t.Append {
		suffix = " append"
	}
	return fmt.Sprintf("type %s%s into %q", valueLiteral(t.Value, t.IsParam), suffix, t.Target)
}

// Select chooses Value from the dropdown/list described by Target.
type Select struct {
	Value   string
	IsParam bool
	Target  string
}

func (*Select) actionNode() {}
func (s *Select) String() string {
	return fmt.Sprintf("select %s in %q", valueLiteral(s.Value, s.IsParam), s.Target)
}

func valueLiteral(value string, isParam bool) string {
	if isParam {
		return value
	}
	return fmt.Sprintf("%q", value)
}

// Key sends a single key combination (e.g. "Ctrl+C") to the remote desktop.
type Key struct {
	KeyCombo string
}

func (*Key) actionNode()      {}
func (k *Key) String() string { return fmt.Sprintf("key %s", k.KeyCombo) }

// Extract reads a value described by Source off the screen and stores it
// under VariableName.
type Extract struct {
	VariableName string
	Source       string
}

func (*Extract) actionNode() {}
func (e *Extract) String() string {
	return fmt.Sprintf("extract %s from %q", e.VariableName, e.Source)
}

// Output declares that VariableName (previously extracted) should appear in
// the task's result outputs.
type Output struct {
	VariableName string
}

func (*Output) actionNode()      {}
func (o *Output) String() string { return fmt.Sprintf("output %s", o.VariableName) }

// Screenshot captures and archives the current screen with no assertion.
type Screenshot struct{}

func (*Screenshot) actionNode()      {}
func (*Screenshot) String() string { return "screenshot" }

// Abort immediately fails the task with Message.
type Abort struct {
	Message string
}

func (*Abort) actionNode()      {}
func (a *Abort) String() string { return fmt.Sprintf("abort %q", a.Message) }

// IfScreenShows branches on whether the model judges Condition true of the
// current screen. Then/Else must not themselves contain an IfScreenShows —
// enforced by the validator, not by this type or the parser (the parser
// accepts a nested if and builds it into the tree; the validator rejects it).
type IfScreenShows struct {
	Condition string
	Then      []Action
	Else      []Action // nil if no "else" clause
}

func (*IfScreenShows) actionNode() {}
func (i *IfScreenShows) String() string {
	return fmt.Sprintf("if screen shows %q (then=%d else=%d)", i.Condition, len(i.Then), len(i.Else))
}

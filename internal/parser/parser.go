// Package parser implements the recursive-descent MBL parser: tokens in,
// *ast.TaskDefinition out.
package parser

import (
	"fmt"

	"github.com/phillarmonic/deskflow/internal/ast"
	"github.com/phillarmonic/deskflow/internal/errors"
	"github.com/phillarmonic/deskflow/internal/lexer"
)

// Parser consumes a token slice produced by the lexer and builds a
// *ast.TaskDefinition, or accumulates errors.ParseError entries.
type Parser struct {
	tokens   []lexer.Token
	pos      int
	filename string
	errs     *errors.ParseErrorList
}

// New creates a parser over tokens. filename and source are only used to
// render errors with source context.
func New(tokens []lexer.Token, filename, source string) *Parser {
	if len(tokens) == 0 {
		tokens = []lexer.Token{{Type: lexer.EOF}}
	}
	return &Parser{
		tokens:   tokens,
		filename: filename,
		errs:     errors.NewParseErrorList(filename, source),
	}
}

// ParseFile is a convenience entry point: lex source, then parse it.
func ParseFile(filename, source string) (*ast.TaskDefinition, error) {
	tokens, err := lexer.Lex(source)
	if err != nil {
		if lexErr, ok := err.(*lexer.LexError); ok {
			list := errors.NewParseErrorList(filename, source)
			list.Add(lexErr.Message, lexer.Token{Type: lexer.ILLEGAL, Line: lexErr.Line})
			return nil, list
		}
		return nil, err
	}
	return New(tokens, filename, source).ParseTask()
}

func (p *Parser) cur() lexer.Token {
	return p.tokens[p.pos]
}

func (p *Parser) advance() lexer.Token {
	t := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) addError(msg string) {
	p.errs.Add(msg, p.cur())
}

// skipTrivia skips INDENT and NEWLINE tokens, which carry no semantic
// weight for the parser — structure is keyword-driven, not layout-driven.
func (p *Parser) skipTrivia() {
	for p.cur().Type == lexer.INDENT || p.cur().Type == lexer.NEWLINE {
		p.advance()
	}
}

func (p *Parser) skipIndent() {
	for p.cur().Type == lexer.INDENT {
		p.advance()
	}
}

// expectType checks the current token's type, consuming it on success and
// recording an error without consuming anything on failure (parseActions
// advances past a token that made no progress, so parsing can continue and
// collect further errors instead of stopping at the first mistake).
func (p *Parser) expectType(tt lexer.TokenType) (lexer.Token, bool) {
	p.skipIndent()
	if p.cur().Type != tt {
		p.addError(fmt.Sprintf("expected %s, got %s %q", tt, p.cur().Type, p.cur().Value))
		return lexer.Token{}, false
	}
	return p.advance(), true
}

func (p *Parser) expectString() (string, bool) {
	tok, ok := p.expectType(lexer.STRING)
	return tok.Value, ok
}

func (p *Parser) expectIdent() (string, bool) {
	tok, ok := p.expectType(lexer.IDENT)
	return tok.Value, ok
}

func (p *Parser) expectKeyCombo() (string, bool) {
	tok, ok := p.expectType(lexer.KEYCOMBO)
	return tok.Value, ok
}

func (p *Parser) expectInteger() (int, bool) {
	tok, ok := p.expectType(lexer.INTEGER)
	if !ok {
		return 0, false
	}
	n := 0
	for _, c := range tok.Value {
		n = n*10 + int(c-'0')
	}
	return n, true
}

func (p *Parser) expectNewline() {
	p.skipIndent()
	if p.cur().Type == lexer.NEWLINE {
		p.advance()
		return
	}
	if p.cur().Type == lexer.EOF {
		return
	}
	p.addError(fmt.Sprintf("expected end of line, got %s %q", p.cur().Type, p.cur().Value))
}

// ParseTask parses a full MBL task: the "task" header, optional "input"
// line, one or more "step" blocks, and optional "on timeout"/"on error"
// handlers.
func (p *Parser) ParseTask() (*ast.TaskDefinition, error) {
	p.skipTrivia()

	if _, ok := p.expectType(lexer.TASK); !ok {
		return nil, p.errs
	}
	name, ok := p.expectString()
	if !ok {
		return nil, p.errs
	}
	p.expectNewline()
	p.skipTrivia()

	task := &ast.TaskDefinition{Name: name, FileName: p.filename}

	if p.cur().Type == lexer.INPUT {
		task.Inputs = p.parseInput()
		p.skipTrivia()
	}

	for p.cur().Type == lexer.STEP {
		task.Steps = append(task.Steps, p.parseStep())
		p.skipTrivia()
	}

	if len(task.Steps) == 0 {
		// Not a hard stop: the validator reports "at least one step" too, but
		// a task with zero steps and trailing garbage is still a parse-level
		// problem worth surfacing precisely.
		p.addError("expected at least one \"step\" block")
	}

	for p.cur().Type == lexer.ON {
		kind, handler := p.parseHandler()
		switch kind {
		case lexer.TIMEOUT:
			task.OnTimeout = handler
		case lexer.ERROR:
			task.OnError = handler
		}
		p.skipTrivia()
	}

	if p.cur().Type != lexer.EOF {
		p.addError(fmt.Sprintf("unexpected token %s %q after task body", p.cur().Type, p.cur().Value))
	}

	if p.errs.HasErrors() {
		return nil, p.errs
	}
	return task, nil
}

func (p *Parser) parseInput() []string {
	p.advance() // "input"
	var names []string
	name, ok := p.expectIdent()
	if !ok {
		p.expectNewline()
		return names
	}
	names = append(names, name)
	for p.cur().Type == lexer.COMMA {
		p.advance()
		if name, ok := p.expectIdent(); ok {
			names = append(names, name)
		}
	}
	p.expectNewline()
	return names
}

func (p *Parser) parseStep() *ast.Step {
	p.advance() // "step"
	desc, _ := p.expectString()
	p.expectNewline()
	p.skipTrivia()

	step := &ast.Step{Description: desc}

	if p.cur().Type == lexer.TIMEOUT {
		p.advance()
		if n, ok := p.expectInteger(); ok {
			step.TimeoutSeconds = n
		}
		p.expectNewline()
		p.skipTrivia()
	}

	step.Actions = p.parseActions(map[lexer.TokenType]bool{
		lexer.STEP: true,
		lexer.ON:   true,
		lexer.EOF:  true,
	})
	return step
}

// parseActions parses a flat action list until a terminator token type is
// reached (used both for step bodies and for if/else/handler bodies, which
// each have their own terminator set).
func (p *Parser) parseActions(terminators map[lexer.TokenType]bool) []ast.Action {
	var actions []ast.Action
	for {
		p.skipTrivia()
		if terminators[p.cur().Type] {
			return actions
		}
		startPos := p.pos
		action := p.parseAction()
		if action != nil {
			actions = append(actions, action)
		}
		if p.pos == startPos {
			// parseAction made no progress (unrecoverable token); advance to
			// avoid looping forever, the error was already recorded.
			p.advance()
		}
		p.skipTrivia()
	}
}

func (p *Parser) parseAction() ast.Action {
	p.skipIndent()
	switch p.cur().Type {
	case lexer.EXPECT:
		p.advance()
		desc, _ := p.expectString()
		p.expectNewline()
		return &ast.Expect{Description: desc}

	case lexer.CLICK:
		p.advance()
		target, _ := p.expectString()
		p.expectNewline()
		return &ast.Click{Kind: ast.ClickSingle, Target: target}

	case lexer.DOUBLECLICK:
		p.advance()
		target, _ := p.expectString()
		p.expectNewline()
		return &ast.Click{Kind: ast.ClickDouble, Target: target}

	case lexer.RIGHTCLICK:
		p.advance()
		target, _ := p.expectString()
		p.expectNewline()
		return &ast.Click{Kind: ast.ClickRight, Target: target}

	case lexer.TYPE:
		return p.parseType()

	case lexer.SELECT:
		return p.parseSelect()

	case lexer.KEY:
		p.advance()
		combo, _ := p.expectKeyCombo()
		p.expectNewline()
		return &ast.Key{KeyCombo: combo}

	case lexer.EXTRACT:
		p.advance()
		name, _ := p.expectIdent()
		p.expectType(lexer.FROM)
		source, _ := p.expectString()
		p.expectNewline()
		return &ast.Extract{VariableName: name, Source: source}

	case lexer.OUTPUT:
		p.advance()
		name, _ := p.expectIdent()
		p.expectNewline()
		return &ast.Output{VariableName: name}

	case lexer.SCREENSHOT:
		p.advance()
		p.expectNewline()
		return &ast.Screenshot{}

	case lexer.ABORT:
		p.advance()
		msg, _ := p.expectString()
		p.expectNewline()
		return &ast.Abort{Message: msg}

	case lexer.IF:
		return p.parseIf()

	default:
		p.addError(fmt.Sprintf("unexpected token %s %q: expected an action", p.cur().Type, p.cur().Value))
		return nil
	}
}

func (p *Parser) parseType() ast.Action {
	p.advance() // "type"
	value, isParam := p.parseValue()
	appendFlag := false
	if p.cur().Type == lexer.APPEND {
		p.advance()
		appendFlag = true
	}
	p.expectType(lexer.INTO)
	target, _ := p.expectString()
	p.expectNewline()
	return &ast.Type{Value: value, IsParam: isParam, Target: target, Append: appendFlag}
}

func (p *Parser) parseSelect() ast.Action {
	p.advance() // "select"
	value, isParam := p.parseValue()
	p.expectType(lexer.IN)
	target, _ := p.expectString()
	p.expectNewline()
	return &ast.Select{Value: value, IsParam: isParam, Target: target}
}

// parseValue parses a STRING literal (isParam=false) or an IDENT reference
// to a declared input (isParam=true).
func (p *Parser) parseValue() (string, bool) {
	p.skipIndent()
	switch p.cur().Type {
	case lexer.STRING:
		tok := p.advance()
		return tok.Value, false
	case lexer.IDENT:
		tok := p.advance()
		return tok.Value, true
	default:
		p.addError(fmt.Sprintf("expected a string literal or parameter name, got %s %q", p.cur().Type, p.cur().Value))
		return "", false
	}
}

func (p *Parser) parseIf() ast.Action {
	p.advance() // "if"
	p.expectType(lexer.SCREEN)
	p.expectType(lexer.SHOWS)
	cond, _ := p.expectString()
	p.expectNewline()
	p.skipTrivia()

	thenActions := p.parseActions(map[lexer.TokenType]bool{
		lexer.ELSE: true,
		lexer.END:  true,
		lexer.EOF:  true,
	})

	var elseActions []ast.Action
	if p.cur().Type == lexer.ELSE {
		p.advance()
		p.expectNewline()
		p.skipTrivia()
		elseActions = p.parseActions(map[lexer.TokenType]bool{
			lexer.END: true,
			lexer.EOF: true,
		})
	}

	p.expectType(lexer.END)
	p.expectNewline()

	return &ast.IfScreenShows{Condition: cond, Then: thenActions, Else: elseActions}
}

// parseHandler parses "on timeout" / "on error" and returns which kind it
// was so the caller can apply accept-last semantics (see SPEC_FULL.md §9).
func (p *Parser) parseHandler() (lexer.TokenType, *ast.ErrorHandler) {
	p.advance() // "on"
	var kind lexer.TokenType
	switch p.cur().Type {
	case lexer.TIMEOUT, lexer.ERROR:
		kind = p.cur().Type
		p.advance()
	default:
		p.addError(fmt.Sprintf("expected \"timeout\" or \"error\" after \"on\", got %s %q", p.cur().Type, p.cur().Value))
	}
	p.expectNewline()
	p.skipTrivia()

	actions := p.parseActions(map[lexer.TokenType]bool{
		lexer.ON:  true,
		lexer.EOF: true,
	})
	return kind, &ast.ErrorHandler{Actions: actions}
}

package lexer

import (
	"fmt"
	"strconv"
	"strings"
)

// LexError is a lexical error tied to a source line.
type LexError struct {
	Line    int
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

func newLexError(line int, format string, args ...interface{}) *LexError {
	return &LexError{Line: line, Message: fmt.Sprintf(format, args...)}
}

// Lex tokenizes MBL source text, operating line by line as described in the
// language reference: indentation and comment handling happen once per
// physical line, then the remainder of the line is scanned for tokens.
func Lex(source string) ([]Token, error) {
	var tokens []Token

	lines := strings.Split(source, "\n")
	for idx, raw := range lines {
		lineNum := idx + 1
		line := strings.TrimSuffix(raw, "\r")

		if strings.TrimSpace(line) == "" {
			continue // blank line: no tokens at all
		}

		indent, rest := leadingIndent(line)
		if strings.HasPrefix(rest, "#") {
			continue // comment-only line: no tokens at all
		}

		if indent > 0 {
			tokens = append(tokens, Token{Type: INDENT, Value: strconv.Itoa(indent), Line: lineNum})
		}

		lineTokens, err := tokenizeLine(rest, lineNum)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, lineTokens...)
		tokens = append(tokens, Token{Type: NEWLINE, Value: "\n", Line: lineNum})
	}

	tokens = append(tokens, Token{Type: EOF, Line: len(lines) + 1})
	return tokens, nil
}

// leadingIndent measures indentation width (space=1, tab=4) and returns the
// remainder of the line starting at the first non-whitespace character.
func leadingIndent(line string) (int, string) {
	indent := 0
	i := 0
	for i < len(line) {
		switch line[i] {
		case ' ':
			indent++
			i++
		case '\t':
			indent += 4
			i++
		default:
			return indent, line[i:]
		}
	}
	return indent, ""
}

func tokenizeLine(rest string, lineNum int) ([]Token, error) {
	var tokens []Token
	j := 0

	for j < len(rest) {
		c := rest[j]

		switch {
		case c == ' ' || c == '\t':
			j++

		case c == '#':
			return tokens, nil // unquoted '#': stop at the inline comment

		case c == '"':
			content, nj, err := readString(rest, j, lineNum)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, Token{Type: STRING, Value: content, Line: lineNum})
			j = nj

		case c == ',':
			tokens = append(tokens, Token{Type: COMMA, Value: ",", Line: lineNum})
			j++

		case isDigit(c):
			start := j
			for j < len(rest) && isDigit(rest[j]) {
				j++
			}
			numStr := rest[start:j]
			if j < len(rest) && isIdentStart(rest[j]) {
				return nil, newLexError(lineNum, "invalid token %q: digit run followed by identifier character", numStr+string(rest[j]))
			}
			if len(numStr) == 1 && j < len(rest) && rest[j] == '+' {
				combo, nj, err := continueCombo(rest, j, numStr, lineNum)
				if err != nil {
					return nil, err
				}
				tokens = append(tokens, Token{Type: KEYCOMBO, Value: combo, Line: lineNum})
				j = nj
			} else {
				tokens = append(tokens, Token{Type: INTEGER, Value: numStr, Line: lineNum})
			}

		case isIdentStart(c):
			if kwType, kwVal, nj, ok := matchHyphenKeyword(rest, j); ok {
				tokens = append(tokens, Token{Type: kwType, Value: kwVal, Line: lineNum})
				j = nj
				continue
			}

			start := j
			for j < len(rest) && isIdentPart(rest[j]) {
				j++
			}
			word := rest[start:j]
			lowerWord := strings.ToLower(word)
			isNamed := namedKeys[lowerWord]
			isSingleUpper := len(word) == 1 && word[0] >= 'A' && word[0] <= 'Z'
			followedByPlus := j < len(rest) && rest[j] == '+'
			precededByKey := len(tokens) > 0 && tokens[len(tokens)-1].Type == KEY

			// A namedKeys match (e.g. "end", "enter", "escape") only starts a
			// combo when it's the key operand of a "key" action or is itself
			// chained with "+". Standalone elsewhere it's an ordinary word,
			// which matters for "end" doubling as the block-terminator
			// keyword: "if screen shows ... end" must still lex END.
			if (isNamed && (precededByKey || followedByPlus)) || (isSingleUpper && followedByPlus) {
				combo, nj, err := continueCombo(rest, j, word, lineNum)
				if err != nil {
					return nil, err
				}
				tokens = append(tokens, Token{Type: KEYCOMBO, Value: combo, Line: lineNum})
				j = nj
			} else {
				tok := LookupIdent(word)
				tok.Line = lineNum
				tokens = append(tokens, tok)
			}

		default:
			return nil, newLexError(lineNum, "illegal character %q", c)
		}
	}

	return tokens, nil
}

// readString reads a "..." literal starting at rest[start] (the opening
// quote). Returns the content and the index just past the closing quote.
func readString(rest string, start int, lineNum int) (string, int, error) {
	j := start + 1
	for j < len(rest) && rest[j] != '"' {
		j++
	}
	if j >= len(rest) {
		return "", 0, newLexError(lineNum, "unterminated string literal")
	}
	return rest[start+1 : j], j + 1, nil
}

// continueCombo greedily consumes "+segment" groups following an already
// recognised key component, joining them into a single combo string.
func continueCombo(rest string, j int, first string, lineNum int) (string, int, error) {
	combo := first
	for j < len(rest) && rest[j] == '+' {
		j++
		segStart := j
		switch {
		case j < len(rest) && isDigit(rest[j]):
			for j < len(rest) && isDigit(rest[j]) {
				j++
			}
		case j < len(rest) && isIdentStart(rest[j]):
			for j < len(rest) && isIdentPart(rest[j]) {
				j++
			}
		default:
			return "", 0, newLexError(lineNum, "empty key-combo segment after '+'")
		}
		seg := rest[segStart:j]
		if seg == "" {
			return "", 0, newLexError(lineNum, "empty key-combo segment after '+'")
		}
		combo += "+" + seg
	}
	return combo, j, nil
}

// matchHyphenKeyword recognises the multi-character keywords "double-click"
// and "right-click" as whole tokens, provided they are followed by a
// non-identifier character or end of line.
func matchHyphenKeyword(rest string, j int) (TokenType, string, int, bool) {
	candidates := []struct {
		word string
		typ  TokenType
	}{
		{"double-click", DOUBLECLICK},
		{"right-click", RIGHTCLICK},
	}
	for _, cand := range candidates {
		end := j + len(cand.word)
		if end > len(rest) {
			continue
		}
		if !strings.EqualFold(rest[j:end], cand.word) {
			continue
		}
		if end < len(rest) && isIdentPart(rest[end]) {
			continue
		}
		return cand.typ, cand.word, end, true
	}
	return ILLEGAL, "", 0, false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

package lexer

import "testing"

func TestLex_MinimalClick(t *testing.T) {
	input := "task \"T\"\n step \"s\"\n  click \"Save\""

	tokens, err := Lex(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expect := []struct {
		typ TokenType
		val string
	}{
		{TASK, "task"},
		{STRING, "T"},
		{NEWLINE, "\n"},
		{INDENT, "1"},
		{STEP, "step"},
		{STRING, "s"},
		{NEWLINE, "\n"},
		{INDENT, "2"},
		{CLICK, "click"},
		{STRING, "Save"},
		{NEWLINE, "\n"},
		{EOF, ""},
	}

	if len(tokens) != len(expect) {
		t.Fatalf("token count mismatch: got %d, want %d (%v)", len(tokens), len(expect), tokens)
	}
	for i, e := range expect {
		if tokens[i].Type != e.typ || tokens[i].Value != e.val {
			t.Fatalf("token[%d] = %v, want type=%v value=%q", i, tokens[i], e.typ, e.val)
		}
	}
}

func TestLex_BlankAndCommentLinesProduceNoTokens(t *testing.T) {
	input := "task \"T\"\n\n  # a comment\n step \"s\"\n  click \"Save\" # trailing comment"

	tokens, err := Lex(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, tok := range tokens {
		if tok.Type == ILLEGAL {
			t.Fatalf("unexpected illegal token: %v", tok)
		}
	}

	// "click \"Save\"" is followed by a comment that must not produce tokens.
	lastNonEOF := tokens[len(tokens)-2]
	if lastNonEOF.Type != NEWLINE {
		t.Fatalf("expected trailing inline comment to stop at newline, got %v", lastNonEOF)
	}
}

func TestLex_DoubleAndRightClickKeywords(t *testing.T) {
	tokens, err := Lex("double-click \"Icon\"\nright-click \"Icon\"")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Type != DOUBLECLICK {
		t.Fatalf("expected DOUBLECLICK, got %v", tokens[0])
	}
	// find second keyword (after STRING, NEWLINE)
	var found bool
	for _, tok := range tokens {
		if tok.Type == RIGHTCLICK {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected RIGHTCLICK token, got %v", tokens)
	}
}

func TestLex_KeyCombos(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"key Ctrl+C", "Ctrl+C"},
		{"key Ctrl+Shift+Delete", "Ctrl+Shift+Delete"},
		{"key Enter", "Enter"},
		{"key A+1", "A+1"},
	}
	for _, tc := range cases {
		tokens, err := Lex(tc.input)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.input, err)
		}
		var combo *Token
		for i := range tokens {
			if tokens[i].Type == KEYCOMBO {
				combo = &tokens[i]
			}
		}
		if combo == nil {
			t.Fatalf("%s: expected a KEYCOMBO token, got %v", tc.input, tokens)
		}
		if combo.Value != tc.want {
			t.Fatalf("%s: combo = %q, want %q", tc.input, combo.Value, tc.want)
		}
	}
}

func TestLex_PlainSingleLetterIdentifierIsNotAKeyCombo(t *testing.T) {
	tokens, err := Lex("extract A from \"Field\"")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, tok := range tokens {
		if tok.Type == KEYCOMBO {
			t.Fatalf("unexpected key combo for bare identifier: %v", tokens)
		}
	}
}

func TestLex_UnterminatedStringFails(t *testing.T) {
	_, err := Lex(`click "Save`)
	if err == nil {
		t.Fatalf("expected an unterminated string error")
	}
	lexErr, ok := err.(*LexError)
	if !ok {
		t.Fatalf("expected *LexError, got %T", err)
	}
	if lexErr.Line != 1 {
		t.Fatalf("expected line 1, got %d", lexErr.Line)
	}
}

func TestLex_DigitFollowedByIdentifierIsAnError(t *testing.T) {
	_, err := Lex("timeout 30x")
	if err == nil {
		t.Fatalf("expected a lex error for '30x'")
	}
}

func TestLex_KeywordsAreCaseInsensitive(t *testing.T) {
	tokens, err := Lex("TASK \"T\"")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tokens[0].Type != TASK {
		t.Fatalf("expected TASK, got %v", tokens[0])
	}
	if tokens[0].Value != "task" {
		t.Fatalf("expected lowercased keyword value, got %q", tokens[0].Value)
	}
}

func TestLex_CommaAndIdentifiers(t *testing.T) {
	tokens, err := Lex("input name, age")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []TokenType{INPUT, IDENT, COMMA, IDENT, NEWLINE, EOF}
	if len(tokens) != len(want) {
		t.Fatalf("token count = %d, want %d (%v)", len(tokens), len(want), tokens)
	}
	for i, typ := range want {
		if tokens[i].Type != typ {
			t.Fatalf("token[%d].Type = %v, want %v", i, tokens[i].Type, typ)
		}
	}
}

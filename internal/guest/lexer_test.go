package guest

import "testing"

func TestLexerTokenStream(t *testing.T) {
	src := `let x = [1, 2.5] ; print x.len(); // trailing comment
`
	want := []TokenType{
		TokenLet, TokenIdentifier, TokenAssign,
		TokenLBracket, TokenInteger, TokenComma, TokenFloat, TokenRBracket,
		TokenSemicolon,
		TokenPrint, TokenIdentifier, TokenDot, TokenIdentifier, TokenLParen, TokenRParen, TokenSemicolon,
		TokenEOF,
	}

	lex := NewLexer(src)
	for i, wantType := range want {
		tok := lex.Next()
		if tok.Type != wantType {
			t.Fatalf("token %d: got %s, want %s", i, tok.Type, wantType)
		}
	}
}

func TestLexerNumberLiterals(t *testing.T) {
	cases := []struct {
		src  string
		typ  TokenType
		text string
	}{
		{"42", TokenInteger, "42"},
		{"3.14", TokenFloat, "3.14"},
		{"7.", TokenInteger, "7"}, // trailing dot with no digit after is not part of the number
	}
	for _, c := range cases {
		tok := NewLexer(c.src).Next()
		if tok.Type != c.typ {
			t.Errorf("%q: type = %s, want %s", c.src, tok.Type, c.typ)
		}
		if tok.Literal != c.text {
			t.Errorf("%q: literal = %q, want %q", c.src, tok.Literal, c.text)
		}
	}
}

func TestLexerReservedWordsVsIdentifiers(t *testing.T) {
	lex := NewLexer("let letter")
	first := lex.Next()
	if first.Type != TokenLet {
		t.Errorf("first token = %s, want TokenLet", first.Type)
	}
	second := lex.Next()
	if second.Type != TokenIdentifier || second.Literal != "letter" {
		t.Errorf("second token = %v, want identifier %q", second, "letter")
	}
}

func TestLexerUnknownCharacterIsError(t *testing.T) {
	tok := NewLexer("@").Next()
	if tok.Type != TokenError {
		t.Errorf("type = %s, want TokenError", tok.Type)
	}
}

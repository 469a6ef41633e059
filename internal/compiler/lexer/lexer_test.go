package lexer

import (
	"strings"
	"testing"
)

// Helper function to create a lexer and scan tokens
func scanSource(source string) ([]Token, []LexError) {
	lexer := New(source)
	return lexer.ScanTokens()
}

// Helper to check if tokens match expected types
func checkTokenTypes(t *testing.T, tokens []Token, expected []TokenType) {
	t.Helper()

	// Remove EOF token for comparison
	actual := tokens
	if len(actual) > 0 && actual[len(actual)-1].Type == TOKEN_EOF {
		actual = actual[:len(actual)-1]
	}

	if len(actual) != len(expected) {
		t.Errorf("Expected %d tokens, got %d", len(expected), len(actual))
		t.Logf("Expected: %v", expected)
		t.Logf("Got: %v", tokensToTypes(actual))
		return
	}

	for i, token := range actual {
		if token.Type != expected[i] {
			t.Errorf("Token %d: expected %s, got %s", i, expected[i], token.Type)
		}
	}
}

func tokensToTypes(tokens []Token) []TokenType {
	types := make([]TokenType, len(tokens))
	for i, t := range tokens {
		types[i] = t.Type
	}
	return types
}

func TestLexer_Punctuation(t *testing.T) {
	source := "(){},:@::-+"
	tokens, errors := scanSource(source)

	if len(errors) > 0 {
		t.Errorf("Unexpected errors: %v", errors)
	}

	expected := []TokenType{
		TOKEN_LPAREN, TOKEN_RPAREN,
		TOKEN_LBRACE, TOKEN_RBRACE,
		TOKEN_COMMA, TOKEN_COLON,
		TOKEN_AT, TOKEN_DOUBLE_COLON,
		TOKEN_MINUS, TOKEN_PLUS,
	}

	checkTokenTypes(t, tokens, expected)
}

func TestLexer_Keywords(t *testing.T) {
	source := "package schema enum type dyn iter Self true false"
	tokens, errors := scanSource(source)

	if len(errors) > 0 {
		t.Errorf("Unexpected errors: %v", errors)
	}

	expected := []TokenType{
		TOKEN_PACKAGE, TOKEN_SCHEMA, TOKEN_ENUM, TOKEN_TYPE,
		TOKEN_DYN, TOKEN_ITER, TOKEN_SELF, TOKEN_TRUE, TOKEN_FALSE,
	}

	checkTokenTypes(t, tokens, expected)

	if tokens[7].Literal != true || tokens[8].Literal != false {
		t.Errorf("Expected bool literals, got %v and %v", tokens[7].Literal, tokens[8].Literal)
	}
}

// Primitive type names are plain identifiers; the compiler interprets them.
func TestLexer_PrimitiveNamesAreIdentifiers(t *testing.T) {
	tokens, errors := scanSource("bool str usize u64 i64 f64 u32 i32 f32 u8")

	if len(errors) > 0 {
		t.Errorf("Unexpected errors: %v", errors)
	}

	for _, tok := range tokens[:len(tokens)-1] {
		if tok.Type != TOKEN_IDENTIFIER {
			t.Errorf("Expected identifier for %q, got %s", tok.Lexeme, tok.Type)
		}
	}
}

func TestLexer_Identifiers(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{"str_default", "str_default"},
		{"ParentTrait", "ParentTrait"},
		{"_private", "_private"},
		{"value123", "value123"},
		{"self", "self"},
	}

	for _, tt := range tests {
		tokens, errors := scanSource(tt.source)

		if len(errors) > 0 {
			t.Errorf("Unexpected errors for %s: %v", tt.source, errors)
		}

		if tokens[0].Type != TOKEN_IDENTIFIER {
			t.Errorf("Expected identifier token, got %s", tokens[0].Type)
		}

		if tokens[0].Lexeme != tt.want {
			t.Errorf("Expected lexeme %s, got %s", tt.want, tokens[0].Lexeme)
		}
	}
}

func TestLexer_Numbers(t *testing.T) {
	tests := []struct {
		source  string
		typ     TokenType
		literal string
	}{
		{"42", TOKEN_INT_LITERAL, "42"},
		{"1_000_000", TOKEN_INT_LITERAL, "1000000"},
		{"18446744073709551615", TOKEN_INT_LITERAL, "18446744073709551615"},
		{"3.14", TOKEN_FLOAT_LITERAL, "3.14"},
		{"1e10", TOKEN_FLOAT_LITERAL, "1e10"},
		{"2.5E-3", TOKEN_FLOAT_LITERAL, "2.5E-3"},
	}

	for _, tt := range tests {
		tokens, errors := scanSource(tt.source)

		if len(errors) > 0 {
			t.Errorf("Unexpected errors for %s: %v", tt.source, errors)
			continue
		}

		if tokens[0].Type != tt.typ {
			t.Errorf("%s: expected %s, got %s", tt.source, tt.typ, tokens[0].Type)
		}

		if tokens[0].Literal != tt.literal {
			t.Errorf("%s: expected literal %q, got %v", tt.source, tt.literal, tokens[0].Literal)
		}
	}
}

func TestLexer_NegativeNumber(t *testing.T) {
	tokens, errors := scanSource("-12")

	if len(errors) > 0 {
		t.Errorf("Unexpected errors: %v", errors)
	}

	checkTokenTypes(t, tokens, []TokenType{TOKEN_MINUS, TOKEN_INT_LITERAL})
}

func TestLexer_Strings(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{`":)"`, ":)"},
		{`"two words"`, "two words"},
		{`"say \"hi\""`, `say "hi"`},
		{`"tab\there"`, "tab\there"},
		{`""`, ""},
	}

	for _, tt := range tests {
		tokens, errors := scanSource(tt.source)

		if len(errors) > 0 {
			t.Errorf("Unexpected errors for %s: %v", tt.source, errors)
			continue
		}

		if tokens[0].Type != TOKEN_STRING_LITERAL {
			t.Errorf("Expected string literal, got %s", tokens[0].Type)
		}

		if tokens[0].Literal != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, tokens[0].Literal)
		}
	}
}

func TestLexer_Comments(t *testing.T) {
	source := `# a hash comment
// a slash comment
schema // trailing
`
	tokens, errors := scanSource(source)

	if len(errors) > 0 {
		t.Errorf("Unexpected errors: %v", errors)
	}

	checkTokenTypes(t, tokens, []TokenType{TOKEN_SCHEMA})

	if tokens[0].Line != 3 {
		t.Errorf("Expected schema on line 3, got %d", tokens[0].Line)
	}
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		source  string
		message string
	}{
		{`"unterminated`, "Unterminated string"},
		{"\"broken\nline\"", "Unterminated string"},
		{`"bad \q escape"`, "Unknown escape"},
		{"$", "Unexpected character"},
		{"/ x", "did you mean '//'"},
		{"1e", "expected digits after exponent"},
	}

	for _, tt := range tests {
		_, errors := scanSource(tt.source)

		if len(errors) == 0 {
			t.Errorf("Expected error for %q", tt.source)
			continue
		}

		if !strings.Contains(errors[0].Message, tt.message) {
			t.Errorf("Expected error containing %q, got %q", tt.message, errors[0].Message)
		}
	}
}

func TestLexer_Positions(t *testing.T) {
	source := "schema Parent {\n  name: str\n}"
	tokens, _ := scanSource(source)

	tests := []struct {
		index  int
		line   int
		column int
	}{
		{0, 1, 1}, // schema
		{1, 1, 8}, // Parent
		{3, 2, 3}, // name
		{4, 2, 7}, // :
		{5, 2, 9}, // str
		{6, 3, 1}, // }
	}

	for _, tt := range tests {
		tok := tokens[tt.index]
		if tok.Line != tt.line || tok.Column != tt.column {
			t.Errorf("Token %d (%s): expected %d:%d, got %d:%d",
				tt.index, tok.Lexeme, tt.line, tt.column, tok.Line, tok.Column)
		}
	}
}

func TestLexer_Declaration(t *testing.T) {
	source := `@enumtrait::Num(preset(Serial), start(3), increment(2))
serial: u64`
	tokens, errors := scanSource(source)

	if len(errors) > 0 {
		t.Errorf("Unexpected errors: %v", errors)
	}

	expected := []TokenType{
		TOKEN_AT, TOKEN_IDENTIFIER, TOKEN_DOUBLE_COLON, TOKEN_IDENTIFIER, TOKEN_LPAREN,
		TOKEN_IDENTIFIER, TOKEN_LPAREN, TOKEN_IDENTIFIER, TOKEN_RPAREN, TOKEN_COMMA,
		TOKEN_IDENTIFIER, TOKEN_LPAREN, TOKEN_INT_LITERAL, TOKEN_RPAREN, TOKEN_COMMA,
		TOKEN_IDENTIFIER, TOKEN_LPAREN, TOKEN_INT_LITERAL, TOKEN_RPAREN,
		TOKEN_RPAREN,
		TOKEN_IDENTIFIER, TOKEN_COLON, TOKEN_IDENTIFIER,
	}

	checkTokenTypes(t, tokens, expected)
}

func TestTokenType_String(t *testing.T) {
	if TOKEN_DOUBLE_COLON.String() != "DOUBLE_COLON" {
		t.Errorf("Expected DOUBLE_COLON, got %s", TOKEN_DOUBLE_COLON.String())
	}
	if TokenType(999).String() != "UNKNOWN(999)" {
		t.Errorf("Expected UNKNOWN(999), got %s", TokenType(999).String())
	}
}

func TestIsKeyword(t *testing.T) {
	if !IsKeyword("schema") || !IsKeyword("Self") {
		t.Error("Expected schema and Self to be keywords")
	}
	if IsKeyword("str") || IsKeyword("self") {
		t.Error("Expected str and self not to be keywords")
	}
}

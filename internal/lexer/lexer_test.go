package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mypl/internal/errs"
	"mypl/internal/token"
)

func tokenize(t *testing.T, source string) []token.Token {
	t.Helper()
	lex := New(source)
	var toks []token.Token
	for {
		tok, err := lex.Next()
		require.NoError(t, err)
		toks = append(toks, tok)
		if tok.Kind == token.EOS {
			return toks
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func TestNextSkipsWhitespaceAndEmitsComments(t *testing.T) {
	toks := tokenize(t, "  \t\n// a comment\n  x")
	require.Len(t, toks, 3)
	assert.Equal(t, token.COMMENT, toks[0].Kind)
	assert.Equal(t, " a comment", toks[0].Lexeme)
	assert.Equal(t, token.ID, toks[1].Kind)
	assert.Equal(t, "x", toks[1].Lexeme)
	assert.Equal(t, token.EOS, toks[2].Kind)
}

func TestNextKeywordsAndIdentifiers(t *testing.T) {
	toks := tokenize(t, "int x struct true false null foo_bar")
	assert.Equal(t, []token.Kind{
		token.INT_TYPE, token.ID, token.STRUCT, token.BOOL_VAL,
		token.BOOL_VAL, token.NULL_VAL, token.ID, token.EOS,
	}, kinds(toks))
}

func TestNextNumbers(t *testing.T) {
	toks := tokenize(t, "42 3.14")
	require.Len(t, toks, 3)
	assert.Equal(t, token.INT_VAL, toks[0].Kind)
	assert.Equal(t, "42", toks[0].Lexeme)
	assert.Equal(t, token.DOUBLE_VAL, toks[1].Kind)
	assert.Equal(t, "3.14", toks[1].Lexeme)
}

func TestNextString(t *testing.T) {
	toks := tokenize(t, `"blue"`)
	require.Len(t, toks, 2)
	assert.Equal(t, token.STRING_VAL, toks[0].Kind)
	assert.Equal(t, "blue", toks[0].Lexeme)
}

func TestNextOperatorsDisambiguateOnLookahead(t *testing.T) {
	toks := tokenize(t, "< <= > >= == != = .")
	assert.Equal(t, []token.Kind{
		token.LESS, token.LESS_EQ, token.GREATER, token.GREATER_EQ,
		token.EQUAL, token.NOT_EQUAL, token.ASSIGN, token.DOT, token.EOS,
	}, kinds(toks))
}

func TestNextUnterminatedStringIsLexerError(t *testing.T) {
	lex := New("\"blue\nnot closed")
	_, err := lex.Next()
	require.Error(t, err)
	assert.True(t, errs.IsLexerError(err))
}

func TestNextIdentifierMayNotStartWithUnderscore(t *testing.T) {
	lex := New("_foo")
	_, err := lex.Next()
	require.Error(t, err)
	assert.True(t, errs.IsLexerError(err))
}

func TestPositionsAreOneBased(t *testing.T) {
	toks := tokenize(t, "x\ny")
	require.Len(t, toks, 3)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 1, toks[0].Column)
	assert.Equal(t, 2, toks[1].Line)
	assert.Equal(t, 1, toks[1].Column)
}

package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mypl/internal/ast"
	"mypl/internal/errs"
)

func TestParseStructAndFunction(t *testing.T) {
	src := `
		struct Node {
			int val;
			Node next;
		}

		int fib(int n) {
			if (n <= 1) {
				return n;
			}
			return fib(n - 1) + fib(n - 2);
		}

		void main() {
			int x = fib(8);
			print(itos(x));
		}
	`
	prog, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Structs, 1)
	assert.Equal(t, "Node", prog.Structs[0].Name.Lexeme)
	require.Len(t, prog.Structs[0].Fields, 2)

	require.Len(t, prog.Functions, 2)
	assert.Equal(t, "fib", prog.Functions[0].Name.Lexeme)
	assert.Equal(t, "main", prog.Functions[1].Name.Lexeme)
}

func TestParseVarDeclAndArrayDict(t *testing.T) {
	src := `
		void main() {
			array int xs = new int[3];
			xs[0] = 1;
			dict(string,int) counts = new dict();
			counts["a"] = 1;
		}
	`
	prog, err := Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Functions, 1)
	body := prog.Functions[0].Body
	require.Len(t, body, 4)

	decl, ok := body[0].(*ast.VarDecl)
	require.True(t, ok)
	assert.True(t, decl.VarDef.DataType.IsArray)

	assign, ok := body[1].(*ast.AssignStmt)
	require.True(t, ok)
	require.Len(t, assign.Lvalue, 1)
	assert.NotNil(t, assign.Lvalue[0].ArrayExpr)
}

func TestParseExprIsRightAssociativeNoPrecedence(t *testing.T) {
	src := `
		void main() {
			int x = 1 + 2 * 3;
		}
	`
	prog, err := Parse(src)
	require.NoError(t, err)
	decl := prog.Functions[0].Body[0].(*ast.VarDecl)
	e := decl.Expr
	require.NotNil(t, e.Op)
	// "1 + 2 * 3" parses as 1 + (2 * 3), not (1 + 2) * 3: no precedence,
	// right associativity means the whole remainder is the Rest subtree.
	rest := e.Rest
	require.NotNil(t, rest.Op)
}

func TestParseMissingSemicolonIsParserError(t *testing.T) {
	src := `
		void main() {
			int x = 1
		}
	`
	_, err := Parse(src)
	require.Error(t, err)
	assert.True(t, errs.IsParserError(err))
}

func TestParseUnknownTopLevelTokenIsParserError(t *testing.T) {
	_, err := Parse("123")
	require.Error(t, err)
	assert.True(t, errs.IsParserError(err))
}

func TestParseUnterminatedStringPropagatesLexerError(t *testing.T) {
	// The bad literal is reached through the advance() call that follows
	// the '=' in a var declaration, not through eat(); a LexerError raised
	// there must still surface as-is, not get swallowed into a ParserError
	// from the parser limping on with a stale current token.
	src := `
		void main() {
			string x = "unterminated
		}
	`
	_, err := Parse(src)
	require.Error(t, err)
	assert.True(t, errs.IsLexerError(err))
	assert.False(t, errs.IsParserError(err))
}

package codegen

import (
	"strconv"

	"mypl/internal/ast"
	"mypl/internal/token"
)

// literalValue converts a SimpleRValue's token into the runtime value its
// PUSH instruction carries. Strings are already escape-decoded by the
// lexer, so they pass through unchanged.
func literalValue(v *ast.SimpleRValue) any {
	switch v.Value.Kind {
	case token.INT_VAL:
		n, _ := strconv.ParseInt(v.Value.Lexeme, 10, 64)
		return n
	case token.DOUBLE_VAL:
		f, _ := strconv.ParseFloat(v.Value.Lexeme, 64)
		return f
	case token.STRING_VAL:
		return v.Value.Lexeme
	case token.BOOL_VAL:
		return v.Value.Lexeme == "true"
	default: // NULL_VAL
		return nil
	}
}

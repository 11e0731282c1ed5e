// Package errs defines the four typed error kinds produced by the MyPL
// pipeline: lexer, parser, static (semantic checker), and VM errors. Each
// stage fails fast on its first error; later stages never see a
// partially-failed artifact.
package errs

import (
	"errors"
	"fmt"
)

// LexerError reports a lexical error at the position where it began.
type LexerError struct {
	Msg    string
	Line   int
	Column int
}

func NewLexerError(msg string, line, column int) error {
	return LexerError{Msg: msg, Line: line, Column: column}
}

func (e LexerError) Error() string {
	return fmt.Sprintf("LexerError: %s at line %d, column %d", e.Msg, e.Line, e.Column)
}

// IsLexerError reports whether err is (or wraps) a LexerError.
func IsLexerError(err error) bool {
	var le LexerError
	return errors.As(err, &le)
}

// ParserError reports a grammar violation, carrying the offending lexeme.
type ParserError struct {
	Msg    string
	Lexeme string
	Line   int
	Column int
}

func NewParserError(msg, lexeme string, line, column int) error {
	return ParserError{Msg: msg, Lexeme: lexeme, Line: line, Column: column}
}

func (e ParserError) Error() string {
	if e.Lexeme == "" {
		return fmt.Sprintf("ParserError: %s at line %d, column %d", e.Msg, e.Line, e.Column)
	}
	return fmt.Sprintf("ParserError: %s (found %q) at line %d, column %d", e.Msg, e.Lexeme, e.Line, e.Column)
}

func IsParserError(err error) bool {
	var pe ParserError
	return errors.As(err, &pe)
}

// StaticError reports a semantic-checking violation.
type StaticError struct {
	Msg    string
	Line   int
	Column int
}

func NewStaticError(msg string, line, column int) error {
	return StaticError{Msg: msg, Line: line, Column: column}
}

func (e StaticError) Error() string {
	return fmt.Sprintf("StaticError: %s at line %d, column %d", e.Msg, e.Line, e.Column)
}

func IsStaticError(err error) bool {
	var se StaticError
	return errors.As(err, &se)
}

// VMError reports a fatal runtime violation, located by function name,
// program counter, and the instruction being executed when it fired.
type VMError struct {
	Msg         string
	FuncName    string
	PC          int
	Instruction string
}

func NewVMError(msg, funcName string, pc int, instruction string) error {
	return VMError{Msg: msg, FuncName: funcName, PC: pc, Instruction: instruction}
}

func (e VMError) Error() string {
	return fmt.Sprintf("VMError: %s (in %s at pc %d, instruction %s)", e.Msg, e.FuncName, e.PC, e.Instruction)
}

func IsVMError(err error) bool {
	var ve VMError
	return errors.As(err, &ve)
}

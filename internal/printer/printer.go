// Package printer pretty-prints a MyPL ast.Program back to source text.
//
// It exists to support a round-trip property test (parse, print, re-parse,
// and compare the two ASTs) and to back `cmd/mypl ast` debugging output; it
// sits alongside the compile-and-execute pipeline rather than in it.
package printer

import (
	"fmt"
	"io"
	"strings"

	"mypl/internal/ast"
	"mypl/internal/token"
)

// Print writes prog back out as MyPL source.
func Print(w io.Writer, prog *ast.Program) {
	p := &printerState{w: w}
	p.program(prog)
}

type printerState struct {
	w      io.Writer
	indent int
}

func (p *printerState) emit(s string) { fmt.Fprint(p.w, s) }

func (p *printerState) emitIndent() { p.emit(strings.Repeat("  ", p.indent)) }

func (p *printerState) program(prog *ast.Program) {
	for _, s := range prog.Structs {
		p.structDef(s)
		p.emit("\n")
	}
	for _, f := range prog.Functions {
		p.funDef(f)
		p.emit("\n")
	}
}

func (p *printerState) structDef(s *ast.StructDef) {
	p.emit("struct " + s.Name.Lexeme + " {\n")
	p.indent++
	for _, f := range s.Fields {
		p.emitIndent()
		p.varDef(f)
		p.emit(";\n")
	}
	p.indent--
	p.emit("}\n")
}

func (p *printerState) varDef(v ast.VarDef) {
	p.dataType(v.DataType)
	p.emit(" " + v.Name.Lexeme)
}

func (p *printerState) dataType(dt ast.DataType) {
	switch {
	case dt.IsDict:
		p.emit("dict(" + dt.KeyType.Lexeme + ", " + dt.ElementType.Lexeme + ")")
	case dt.IsArray:
		p.emit("array " + dt.ElementType.Lexeme)
	default:
		p.emit(dt.TypeName.Lexeme)
	}
}

func (p *printerState) funDef(f *ast.FunDef) {
	p.dataType(f.ReturnType)
	p.emit(" " + f.Name.Lexeme + "(")
	for i, prm := range f.Params {
		if i > 0 {
			p.emit(", ")
		}
		p.varDef(prm)
	}
	p.emit(") {\n")
	p.indent++
	for _, st := range f.Body {
		p.stmt(st)
	}
	p.indent--
	p.emit("}\n")
}

func (p *printerState) stmts(stmts []ast.Stmt) {
	p.emit("{\n")
	p.indent++
	for _, st := range stmts {
		p.stmt(st)
	}
	p.indent--
	p.emitIndent()
	p.emit("}\n")
}

func (p *printerState) stmt(s ast.Stmt) {
	p.emitIndent()
	switch st := s.(type) {
	case *ast.VarDecl:
		p.varDef(st.VarDef)
		if st.Expr != nil {
			p.emit(" = ")
			p.expr(*st.Expr)
		}
		p.emit(";\n")
	case *ast.AssignStmt:
		p.path(st.Lvalue)
		p.emit(" = ")
		p.expr(st.Expr)
		p.emit(";\n")
	case *ast.IfStmt:
		p.emit("if (")
		p.expr(st.IfPart.Condition)
		p.emit(") ")
		p.stmts(st.IfPart.Stmts)
		for _, ei := range st.ElseIfs {
			p.indent--
			p.emitIndent()
			p.indent++
			p.emit("elseif (")
			p.expr(ei.Condition)
			p.emit(") ")
			p.stmts(ei.Stmts)
		}
		if st.ElseStmts != nil {
			p.indent--
			p.emitIndent()
			p.indent++
			p.emit("else ")
			p.stmts(st.ElseStmts)
		}
	case *ast.WhileStmt:
		p.emit("while (")
		p.expr(st.Condition)
		p.emit(") ")
		p.stmts(st.Stmts)
	case *ast.ForStmt:
		p.emit("for (")
		p.varDef(st.VarDecl.VarDef)
		if st.VarDecl.Expr != nil {
			p.emit(" = ")
			p.expr(*st.VarDecl.Expr)
		}
		p.emit("; ")
		p.expr(st.Condition)
		p.emit("; ")
		p.path(st.AssignStmt.Lvalue)
		p.emit(" = ")
		p.expr(st.AssignStmt.Expr)
		p.emit(") ")
		p.stmts(st.Stmts)
	case *ast.ReturnStmt:
		p.emit("return")
		if st.Expr != nil {
			p.emit(" ")
			p.expr(*st.Expr)
		}
		p.emit(";\n")
	case *ast.CallExpr:
		p.callExpr(st)
		p.emit(";\n")
	}
}

func (p *printerState) path(path []ast.VarRef) {
	for i, ref := range path {
		if i > 0 {
			p.emit(".")
		}
		p.emit(ref.Name.Lexeme)
		if ref.ArrayExpr != nil {
			p.emit("[")
			p.expr(*ref.ArrayExpr)
			p.emit("]")
		}
	}
}

func (p *printerState) callExpr(c *ast.CallExpr) {
	p.emit(c.FunName.Lexeme + "(")
	for i, a := range c.Args {
		if i > 0 {
			p.emit(", ")
		}
		p.expr(a)
	}
	p.emit(")")
}

func (p *printerState) expr(e ast.Expr) {
	if e.NotOp {
		p.emit("not ")
	}
	p.term(e.First)
	if e.Op != nil {
		p.emit(" " + e.Op.Lexeme + " ")
		p.expr(*e.Rest)
	}
}

func (p *printerState) term(t ast.Term) {
	switch tm := t.(type) {
	case *ast.SimpleTerm:
		p.rvalue(tm.RValue)
	case *ast.ComplexTerm:
		p.emit("(")
		p.expr(*tm.Expr)
		p.emit(")")
	}
}

// escapeString re-encodes a lexer-decoded string lexeme back into source
// form, undoing readString's \n/\t/\"/\\ decoding so the printed literal
// re-lexes to the same value instead of tripping readString's
// unterminated-string check on an embedded raw newline.
func escapeString(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func (p *printerState) rvalue(rv ast.RValue) {
	switch v := rv.(type) {
	case *ast.SimpleRValue:
		if v.Value.Kind == token.STRING_VAL {
			p.emit("\"" + escapeString(v.Value.Lexeme) + "\"")
		} else {
			p.emit(v.Value.Lexeme)
		}
	case *ast.NewRValue:
		p.emit("new ")
		switch {
		case v.IsDict:
			p.emit("dict()")
		case v.ArrayExpr != nil:
			p.emit(v.Type.Lexeme + "[")
			p.expr(*v.ArrayExpr)
			p.emit("]")
		default:
			p.emit(v.Type.Lexeme + "(")
			for i, a := range v.StructParams {
				if i > 0 {
					p.emit(", ")
				}
				p.expr(a)
			}
			p.emit(")")
		}
	case *ast.CallExpr:
		p.callExpr(v)
	case *ast.VarRValue:
		p.path(v.Path)
	}
}

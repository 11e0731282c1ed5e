// Package codegen lowers a checked ast.Program to per-function bytecode
// frame templates. It re-derives each expression's type
// while walking (the checker itself annotates nothing) using the same
// scoped-table shape as the checker, just storing types instead of
// validating them, so every access site dispatches to GETI/GETD or
// SETI/SETD without a separate name registry.
package codegen

import (
	"mypl/internal/ast"
	"mypl/internal/frame"
	"mypl/internal/opcode"
	"mypl/internal/symtable"
	"mypl/internal/token"
	"mypl/internal/vartable"
)

// Generate lowers every function in prog to a frame.Template, keyed by
// function name.
func Generate(prog *ast.Program) map[string]*frame.Template {
	g := &generator{structs: make(map[string]*ast.StructDef)}
	for _, sd := range prog.Structs {
		g.structs[sd.Name.Lexeme] = sd
	}
	out := make(map[string]*frame.Template)
	for _, fd := range prog.Functions {
		out[fd.Name.Lexeme] = g.genFunDef(fd)
	}
	return out
}

type generator struct {
	structs map[string]*ast.StructDef
	vars    *vartable.Table
	types   *symtable.Table
	instrs  []opcode.Instruction
}

func (g *generator) emit(op opcode.Op, operand any) int {
	g.instrs = append(g.instrs, opcode.Instruction{Opcode: op, Operand: operand})
	return len(g.instrs) - 1
}

func (g *generator) emitOp(op opcode.Op) int { return g.emit(op, nil) }

func (g *generator) patch(idx int, addr int) {
	g.instrs[idx].Operand = addr
}

func (g *generator) genFunDef(fd *ast.FunDef) *frame.Template {
	g.vars = vartable.New()
	g.types = symtable.New()
	g.instrs = nil
	g.vars.Push()
	g.types.Push()

	for _, p := range fd.Params {
		slot := g.vars.Add(p.Name.Lexeme)
		g.types.Add(p.Name.Lexeme, p.DataType)
		g.emit(opcode.STORE, slot)
	}
	for _, st := range fd.Body {
		g.genStmt(st)
	}
	if len(g.instrs) == 0 || g.instrs[len(g.instrs)-1].Opcode != opcode.RET {
		g.emit(opcode.PUSH, nil)
		g.emitOp(opcode.RET)
	}
	g.types.Pop()
	g.vars.Pop()

	return &frame.Template{
		FunName:      fd.Name.Lexeme,
		ArgCount:     len(fd.Params),
		Instructions: g.instrs,
	}
}

func (g *generator) genBlock(stmts []ast.Stmt) {
	g.vars.Push()
	g.types.Push()
	for _, st := range stmts {
		g.genStmt(st)
	}
	g.types.Pop()
	g.vars.Pop()
}

func (g *generator) genStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.VarDecl:
		g.genVarDecl(st)
	case *ast.AssignStmt:
		g.genAssignStmt(st)
	case *ast.IfStmt:
		g.genIfStmt(st)
	case *ast.WhileStmt:
		g.genWhileStmt(st)
	case *ast.ForStmt:
		g.genForStmt(st)
	case *ast.ReturnStmt:
		g.genReturnStmt(st)
	case *ast.CallExpr:
		g.genCallExpr(st)
		g.emitOp(opcode.POP)
	}
}

func (g *generator) genVarDecl(vd *ast.VarDecl) {
	if vd.Expr != nil {
		g.genExpr(vd.Expr)
	} else {
		g.emit(opcode.PUSH, nil)
	}
	slot := g.vars.Add(vd.VarDef.Name.Lexeme)
	g.types.Add(vd.VarDef.Name.Lexeme, vd.VarDef.DataType)
	g.emit(opcode.STORE, slot)
}

func (g *generator) elementType(dt ast.DataType) ast.DataType {
	return ast.DataType{TypeName: *dt.ElementType}
}

func (g *generator) fieldType(dt ast.DataType, fieldName string) ast.DataType {
	sd := g.structs[dt.TypeName.Lexeme]
	for _, f := range sd.Fields {
		if f.Name.Lexeme == fieldName {
			return f.DataType
		}
	}
	return ast.DataType{}
}

func (g *generator) genAssignStmt(as *ast.AssignStmt) {
	path := as.Lvalue
	head := path[0]
	slot, _ := g.vars.Get(head.Name.Lexeme)
	headType, _ := g.types.Get(head.Name.Lexeme)

	if len(path) == 1 {
		if head.ArrayExpr == nil {
			g.genExpr(&as.Expr)
			g.emit(opcode.STORE, slot)
			return
		}
		g.emit(opcode.LOAD, slot)
		g.genExpr(head.ArrayExpr)
		g.genExpr(&as.Expr)
		if headType.IsDict {
			g.emitOp(opcode.SETD)
		} else {
			g.emitOp(opcode.SETI)
		}
		return
	}

	g.emit(opcode.LOAD, slot)
	curType := headType
	if head.ArrayExpr != nil {
		g.genExpr(head.ArrayExpr)
		if curType.IsDict {
			g.emitOp(opcode.GETD)
		} else {
			g.emitOp(opcode.GETI)
		}
		curType = g.elementType(curType)
	}
	for i := 1; i < len(path)-1; i++ {
		step := path[i]
		g.emit(opcode.GETF, step.Name.Lexeme)
		curType = g.fieldType(curType, step.Name.Lexeme)
		if step.ArrayExpr != nil {
			g.genExpr(step.ArrayExpr)
			if curType.IsDict {
				g.emitOp(opcode.GETD)
			} else {
				g.emitOp(opcode.GETI)
			}
			curType = g.elementType(curType)
		}
	}
	final := path[len(path)-1]
	if final.ArrayExpr == nil {
		g.genExpr(&as.Expr)
		g.emit(opcode.SETF, final.Name.Lexeme)
		return
	}
	g.emit(opcode.GETF, final.Name.Lexeme)
	fieldDT := g.fieldType(curType, final.Name.Lexeme)
	g.genExpr(final.ArrayExpr)
	g.genExpr(&as.Expr)
	if fieldDT.IsDict {
		g.emitOp(opcode.SETD)
	} else {
		g.emitOp(opcode.SETI)
	}
}

func (g *generator) genIfStmt(is *ast.IfStmt) {
	var pendingEndJumps []int

	jmpf := g.genCondAndJumpf(is.IfPart.Condition)
	g.genBlock(is.IfPart.Stmts)
	pendingEndJumps = append(pendingEndJumps, g.emit(opcode.JMP, nil))
	g.patch(jmpf, len(g.instrs))

	for _, ei := range is.ElseIfs {
		jmpf = g.genCondAndJumpf(ei.Condition)
		g.genBlock(ei.Stmts)
		pendingEndJumps = append(pendingEndJumps, g.emit(opcode.JMP, nil))
		g.patch(jmpf, len(g.instrs))
	}

	if is.ElseStmts != nil {
		g.genBlock(is.ElseStmts)
	}

	end := g.emitOp(opcode.NOP)
	for _, idx := range pendingEndJumps {
		g.patch(idx, end)
	}
}

// genCondAndJumpf lowers cond and emits a placeholder JMPF, returning its
// index so the caller can patch it once the jump target is known.
func (g *generator) genCondAndJumpf(cond ast.Expr) int {
	g.genExpr(&cond)
	return g.emit(opcode.JMPF, nil)
}

func (g *generator) genWhileStmt(ws *ast.WhileStmt) {
	start := len(g.instrs)
	jmpf := g.genCondAndJumpf(ws.Condition)
	g.genBlock(ws.Stmts)
	g.emit(opcode.JMP, start)
	end := g.emitOp(opcode.NOP)
	g.patch(jmpf, end)
}

func (g *generator) genForStmt(fs *ast.ForStmt) {
	g.vars.Push()
	g.types.Push()
	defer func() {
		g.types.Pop()
		g.vars.Pop()
	}()

	g.genVarDecl(fs.VarDecl)
	condStart := len(g.instrs)
	jmpf := g.genCondAndJumpf(fs.Condition)
	g.genBlock(fs.Stmts)
	g.genAssignStmt(fs.AssignStmt)
	g.emit(opcode.JMP, condStart)
	end := g.emitOp(opcode.NOP)
	g.patch(jmpf, end)
}

func (g *generator) genReturnStmt(rs *ast.ReturnStmt) {
	if rs.Expr != nil {
		g.genExpr(rs.Expr)
	} else {
		g.emit(opcode.PUSH, nil)
	}
	g.emitOp(opcode.RET)
}

func (g *generator) genExpr(e *ast.Expr) {
	if e.Op != nil && (e.Op.Kind == token.GREATER || e.Op.Kind == token.GREATER_EQ) {
		// Only CMPLT/CMPLE exist, so '>'/'>=' are lowered by evaluating the
		// operands in reverse order and comparing with the flipped opcode.
		g.genExpr(e.Rest)
		g.genTerm(e.First)
		if e.NotOp {
			g.emitOp(opcode.NOT)
		}
		if e.Op.Kind == token.GREATER {
			g.emitOp(opcode.CMPLT)
		} else {
			g.emitOp(opcode.CMPLE)
		}
		return
	}

	g.genTerm(e.First)
	if e.NotOp {
		g.emitOp(opcode.NOT)
	}
	if e.Op == nil {
		return
	}
	g.genExpr(e.Rest)
	g.emitOp(binOpcode(e.Op.Kind))
}

func binOpcode(kind token.Kind) opcode.Op {
	switch kind {
	case token.PLUS:
		return opcode.ADD
	case token.MINUS:
		return opcode.SUB
	case token.TIMES:
		return opcode.MUL
	case token.DIVIDE:
		return opcode.DIV
	case token.AND:
		return opcode.AND
	case token.OR:
		return opcode.OR
	case token.EQUAL:
		return opcode.CMPEQ
	case token.NOT_EQUAL:
		return opcode.CMPNE
	case token.LESS:
		return opcode.CMPLT
	case token.LESS_EQ:
		return opcode.CMPLE
	default:
		panic("codegen: unknown binary operator kind")
	}
}

func (g *generator) genTerm(t ast.Term) {
	switch tm := t.(type) {
	case *ast.SimpleTerm:
		g.genRValue(tm.RValue)
	case *ast.ComplexTerm:
		g.genExpr(tm.Expr)
	}
}

func (g *generator) genRValue(rv ast.RValue) {
	switch v := rv.(type) {
	case *ast.SimpleRValue:
		g.genLiteral(v)
	case *ast.NewRValue:
		g.genNewRValue(v)
	case *ast.CallExpr:
		g.genCallExpr(v)
	case *ast.VarRValue:
		g.genPath(v.Path)
	}
}

func (g *generator) genPath(path []ast.VarRef) {
	head := path[0]
	slot, _ := g.vars.Get(head.Name.Lexeme)
	curType, _ := g.types.Get(head.Name.Lexeme)
	g.emit(opcode.LOAD, slot)
	if head.ArrayExpr != nil {
		g.genExpr(head.ArrayExpr)
		if curType.IsDict {
			g.emitOp(opcode.GETD)
		} else {
			g.emitOp(opcode.GETI)
		}
		curType = g.elementType(curType)
	}
	for _, step := range path[1:] {
		g.emit(opcode.GETF, step.Name.Lexeme)
		curType = g.fieldType(curType, step.Name.Lexeme)
		if step.ArrayExpr != nil {
			g.genExpr(step.ArrayExpr)
			if curType.IsDict {
				g.emitOp(opcode.GETD)
			} else {
				g.emitOp(opcode.GETI)
			}
			curType = g.elementType(curType)
		}
	}
}

func (g *generator) genNewRValue(nv *ast.NewRValue) {
	switch {
	case nv.IsDict:
		g.emitOp(opcode.ALLOCD)
	case nv.ArrayExpr != nil:
		g.genExpr(nv.ArrayExpr)
		g.emitOp(opcode.ALLOCA)
	default:
		g.emitOp(opcode.ALLOCS)
		sd := g.structs[nv.Type.Lexeme]
		for i, arg := range nv.StructParams {
			g.emitOp(opcode.DUP)
			g.genExpr(&arg)
			g.emit(opcode.SETF, sd.Fields[i].Name.Lexeme)
		}
	}
}

func (g *generator) genCallExpr(call *ast.CallExpr) {
	name := call.FunName.Lexeme
	switch name {
	case "print":
		g.genExpr(&call.Args[0])
		g.emitOp(opcode.WRITE)
		g.emit(opcode.PUSH, nil)
	case "input":
		g.emitOp(opcode.READ)
	case "itos", "dtos":
		g.genExpr(&call.Args[0])
		g.emitOp(opcode.TOSTR)
	case "stoi", "dtoi":
		g.genExpr(&call.Args[0])
		g.emitOp(opcode.TOINT)
	case "stod", "itod":
		g.genExpr(&call.Args[0])
		g.emitOp(opcode.TODBL)
	case "length":
		g.genExpr(&call.Args[0])
		g.emitOp(opcode.LEN)
	case "get":
		g.genExpr(&call.Args[0])
		g.genExpr(&call.Args[1])
		g.emitOp(opcode.GETC)
	case "keys":
		g.genExpr(&call.Args[0])
		g.emitOp(opcode.KEYS)
	case "in":
		g.genExpr(&call.Args[0])
		g.genExpr(&call.Args[1])
		g.emitOp(opcode.IN)
	default:
		for i := range call.Args {
			g.genExpr(&call.Args[i])
		}
		g.emit(opcode.CALL, name)
	}
}

func (g *generator) genLiteral(v *ast.SimpleRValue) {
	g.emit(opcode.PUSH, literalValue(v))
}

// Package checker implements MyPL's semantic checker: it walks a Program
// enforcing the type system and scope rules, failing on the first
// violation with a StaticError.
package checker

import (
	"fmt"

	"mypl/internal/ast"
	"mypl/internal/errs"
	"mypl/internal/symtable"
	"mypl/internal/token"
)

// builtins may not be redefined as a struct or function name.
var builtins = map[string]bool{
	"print": true, "input": true, "itos": true, "itod": true, "dtos": true,
	"dtoi": true, "stoi": true, "stod": true, "length": true, "get": true,
	"keys": true, "in": true,
}

var voidType = ast.DataType{TypeName: token.Token{Kind: token.VOID, Lexeme: "void"}}

func isNullType(dt ast.DataType) bool {
	return !dt.IsArray && !dt.IsDict && dt.TypeName.Kind == token.VOID
}

func isScalarBaseKind(k token.Kind) bool {
	switch k {
	case token.INT_TYPE, token.DOUBLE_TYPE, token.BOOL_TYPE, token.STRING_TYPE:
		return true
	}
	return false
}

func isBoolType(dt ast.DataType) bool {
	return !dt.IsArray && !dt.IsDict && dt.TypeName.Kind == token.BOOL_TYPE
}

func isIntType(dt ast.DataType) bool {
	return !dt.IsArray && !dt.IsDict && dt.TypeName.Kind == token.INT_TYPE
}

// typesCompatible reports whether a value of type actual may be stored
// where declared is expected: null is compatible with any declared type,
// and an unspecified `new dict()` is compatible with any dict type; all
// other pairs require exact equality.
func typesCompatible(declared, actual ast.DataType) bool {
	if isNullType(actual) {
		return true
	}
	if declared.IsDict && actual.IsDict && actual.KeyType == nil && actual.ElementType == nil {
		return true
	}
	return declared.Equal(actual)
}

// Checker holds the struct/function registries and the scoped symbol table
// maintained during one Check pass.
type Checker struct {
	structs   map[string]*ast.StructDef
	functions map[string]*ast.FunDef
	syms      *symtable.Table
	retType   ast.DataType
}

// Check validates prog against MyPL's type system and scope rules.
func Check(prog *ast.Program) error {
	c := &Checker{
		structs:   make(map[string]*ast.StructDef),
		functions: make(map[string]*ast.FunDef),
		syms:      symtable.New(),
	}
	if err := c.registerStructs(prog); err != nil {
		return err
	}
	if err := c.registerFunctions(prog); err != nil {
		return err
	}
	if _, ok := c.functions["main"]; !ok {
		return errs.NewStaticError("program has no 'main' function", 0, 0)
	}
	mainFn := c.functions["main"]
	if !isVoidReturn(mainFn.ReturnType) || len(mainFn.Params) != 0 {
		return errs.NewStaticError("'main' must return void and take no parameters", mainFn.Name.Line, mainFn.Name.Column)
	}
	for _, sd := range prog.Structs {
		if err := c.checkStructDef(sd); err != nil {
			return err
		}
	}
	for _, fd := range prog.Functions {
		if err := c.checkFunDef(fd); err != nil {
			return err
		}
	}
	return nil
}

func isVoidReturn(dt ast.DataType) bool {
	return !dt.IsArray && !dt.IsDict && dt.TypeName.Kind == token.VOID
}

func (c *Checker) registerStructs(prog *ast.Program) error {
	for _, sd := range prog.Structs {
		if builtins[sd.Name.Lexeme] {
			return errs.NewStaticError(fmt.Sprintf("'%s' is a built-in name and cannot be redefined", sd.Name.Lexeme), sd.Name.Line, sd.Name.Column)
		}
		if _, dup := c.structs[sd.Name.Lexeme]; dup {
			return errs.NewStaticError(fmt.Sprintf("duplicate struct definition '%s'", sd.Name.Lexeme), sd.Name.Line, sd.Name.Column)
		}
		c.structs[sd.Name.Lexeme] = sd
	}
	return nil
}

func (c *Checker) registerFunctions(prog *ast.Program) error {
	for _, fd := range prog.Functions {
		if builtins[fd.Name.Lexeme] {
			return errs.NewStaticError(fmt.Sprintf("'%s' is a built-in name and cannot be redefined", fd.Name.Lexeme), fd.Name.Line, fd.Name.Column)
		}
		if _, dup := c.functions[fd.Name.Lexeme]; dup {
			return errs.NewStaticError(fmt.Sprintf("duplicate function definition '%s'", fd.Name.Lexeme), fd.Name.Line, fd.Name.Column)
		}
		c.functions[fd.Name.Lexeme] = fd
	}
	return nil
}

// validateTypeName checks that tok names a concrete type: a scalar base
// type or a declared struct. void is rejected here; callers checking a
// return type use validateReturnType instead.
func (c *Checker) validateTypeName(tok token.Token) error {
	if isScalarBaseKind(tok.Kind) {
		return nil
	}
	if tok.Kind == token.ID {
		if _, ok := c.structs[tok.Lexeme]; ok {
			return nil
		}
		return errs.NewStaticError(fmt.Sprintf("unknown type '%s'", tok.Lexeme), tok.Line, tok.Column)
	}
	return errs.NewStaticError(fmt.Sprintf("'%s' is not a valid type here", tok.Lexeme), tok.Line, tok.Column)
}

func (c *Checker) validateDataType(dt ast.DataType) error {
	switch {
	case dt.IsDict:
		if !isScalarBaseKind(dt.KeyType.Kind) {
			return errs.NewStaticError("dict key type must be a base type", dt.KeyType.Line, dt.KeyType.Column)
		}
		return c.validateTypeName(*dt.ElementType)
	case dt.IsArray:
		return c.validateTypeName(*dt.ElementType)
	default:
		return c.validateTypeName(dt.TypeName)
	}
}

func (c *Checker) validateReturnType(dt ast.DataType) error {
	if isVoidReturn(dt) {
		return nil
	}
	return c.validateDataType(dt)
}

func (c *Checker) checkStructDef(sd *ast.StructDef) error {
	seen := make(map[string]bool)
	for _, f := range sd.Fields {
		if seen[f.Name.Lexeme] {
			return errs.NewStaticError(fmt.Sprintf("duplicate field '%s' in struct '%s'", f.Name.Lexeme, sd.Name.Lexeme), f.Name.Line, f.Name.Column)
		}
		seen[f.Name.Lexeme] = true
		if err := c.validateDataType(f.DataType); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkFunDef(fd *ast.FunDef) error {
	if err := c.validateReturnType(fd.ReturnType); err != nil {
		return err
	}
	c.syms.Push()
	defer c.syms.Pop()
	seen := make(map[string]bool)
	for _, p := range fd.Params {
		if seen[p.Name.Lexeme] {
			return errs.NewStaticError(fmt.Sprintf("duplicate parameter '%s' in function '%s'", p.Name.Lexeme, fd.Name.Lexeme), p.Name.Line, p.Name.Column)
		}
		seen[p.Name.Lexeme] = true
		if err := c.validateDataType(p.DataType); err != nil {
			return err
		}
		c.syms.Add(p.Name.Lexeme, p.DataType)
	}
	prevRet := c.retType
	c.retType = fd.ReturnType
	defer func() { c.retType = prevRet }()
	for _, st := range fd.Body {
		if err := c.checkStmt(st); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkBlock(stmts []ast.Stmt) error {
	c.syms.Push()
	defer c.syms.Pop()
	for _, st := range stmts {
		if err := c.checkStmt(st); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkStmt(s ast.Stmt) error {
	switch st := s.(type) {
	case *ast.VarDecl:
		return c.checkVarDecl(st)
	case *ast.AssignStmt:
		return c.checkAssignStmt(st)
	case *ast.IfStmt:
		return c.checkIfStmt(st)
	case *ast.WhileStmt:
		if err := c.checkCondition(&st.Condition); err != nil {
			return err
		}
		return c.checkBlock(st.Stmts)
	case *ast.ForStmt:
		return c.checkForStmt(st)
	case *ast.ReturnStmt:
		return c.checkReturnStmt(st)
	case *ast.CallExpr:
		_, err := c.checkCallExpr(st)
		return err
	default:
		return errs.NewStaticError(fmt.Sprintf("unhandled statement kind %T", s), 0, 0)
	}
}

func (c *Checker) checkVarDecl(vd *ast.VarDecl) error {
	if c.syms.ExistsInCurrEnv(vd.VarDef.Name.Lexeme) {
		return errs.NewStaticError(fmt.Sprintf("'%s' is already declared in this scope", vd.VarDef.Name.Lexeme), vd.VarDef.Name.Line, vd.VarDef.Name.Column)
	}
	if err := c.validateDataType(vd.VarDef.DataType); err != nil {
		return err
	}
	if vd.Expr != nil {
		rt, err := c.checkExpr(vd.Expr)
		if err != nil {
			return err
		}
		if !typesCompatible(vd.VarDef.DataType, rt) {
			return errs.NewStaticError(fmt.Sprintf("cannot initialize '%s' of type %s with value of type %s", vd.VarDef.Name.Lexeme, vd.VarDef.DataType, rt), vd.VarDef.Name.Line, vd.VarDef.Name.Column)
		}
	}
	c.syms.Add(vd.VarDef.Name.Lexeme, vd.VarDef.DataType)
	return nil
}

func (c *Checker) checkAssignStmt(as *ast.AssignStmt) error {
	lvalType, err := c.checkPath(as.Lvalue)
	if err != nil {
		return err
	}
	rt, err := c.checkExpr(&as.Expr)
	if err != nil {
		return err
	}
	if !typesCompatible(lvalType, rt) {
		return errs.NewStaticError(fmt.Sprintf("cannot assign value of type %s to target of type %s", rt, lvalType), as.Lvalue[0].Name.Line, as.Lvalue[0].Name.Column)
	}
	return nil
}

// checkPath resolves a non-empty variable path and returns the type of its
// final step: the head must already be in scope; each further step walks a
// struct field or indexes an array/dict.
func (c *Checker) checkPath(path []ast.VarRef) (ast.DataType, error) {
	head := path[0]
	dt, ok := c.syms.Get(head.Name.Lexeme)
	if !ok {
		return ast.DataType{}, errs.NewStaticError(fmt.Sprintf("undeclared variable '%s'", head.Name.Lexeme), head.Name.Line, head.Name.Column)
	}
	dt, err := c.applyIndex(dt, head)
	if err != nil {
		return ast.DataType{}, err
	}
	for _, step := range path[1:] {
		dt, err = c.fieldType(dt, step.Name)
		if err != nil {
			return ast.DataType{}, err
		}
		dt, err = c.applyIndex(dt, step)
		if err != nil {
			return ast.DataType{}, err
		}
	}
	return dt, nil
}

// applyIndex checks ref's optional `[expr]` subscript against dt and
// returns the resulting (possibly narrowed) type.
func (c *Checker) applyIndex(dt ast.DataType, ref ast.VarRef) (ast.DataType, error) {
	if ref.ArrayExpr == nil {
		return dt, nil
	}
	idxType, err := c.checkExpr(ref.ArrayExpr)
	if err != nil {
		return ast.DataType{}, err
	}
	switch {
	case dt.IsArray:
		if !isIntType(idxType) {
			return ast.DataType{}, errs.NewStaticError("array index must be an int", ref.Name.Line, ref.Name.Column)
		}
		return ast.DataType{TypeName: *dt.ElementType}, nil
	case dt.IsDict:
		if !typesCompatible(ast.DataType{TypeName: *dt.KeyType}, idxType) {
			return ast.DataType{}, errs.NewStaticError("dict key type mismatch", ref.Name.Line, ref.Name.Column)
		}
		return ast.DataType{TypeName: *dt.ElementType}, nil
	default:
		return ast.DataType{}, errs.NewStaticError(fmt.Sprintf("'%s' is not indexable", ref.Name.Lexeme), ref.Name.Line, ref.Name.Column)
	}
}

func (c *Checker) fieldType(dt ast.DataType, fieldName token.Token) (ast.DataType, error) {
	if dt.IsArray || dt.IsDict {
		return ast.DataType{}, errs.NewStaticError(fmt.Sprintf("cannot access field '%s' of a non-struct value", fieldName.Lexeme), fieldName.Line, fieldName.Column)
	}
	sd, ok := c.structs[dt.TypeName.Lexeme]
	if !ok {
		return ast.DataType{}, errs.NewStaticError(fmt.Sprintf("'%s' is not a struct type", dt.TypeName.Lexeme), fieldName.Line, fieldName.Column)
	}
	for _, f := range sd.Fields {
		if f.Name.Lexeme == fieldName.Lexeme {
			return f.DataType, nil
		}
	}
	return ast.DataType{}, errs.NewStaticError(fmt.Sprintf("struct '%s' has no field '%s'", sd.Name.Lexeme, fieldName.Lexeme), fieldName.Line, fieldName.Column)
}

func (c *Checker) checkCondition(e *ast.Expr) error {
	dt, err := c.checkExpr(e)
	if err != nil {
		return err
	}
	if !isBoolType(dt) {
		return errs.NewStaticError(fmt.Sprintf("condition must be bool, got %s", dt), 0, 0)
	}
	return nil
}

func (c *Checker) checkIfStmt(is *ast.IfStmt) error {
	if err := c.checkCondition(&is.IfPart.Condition); err != nil {
		return err
	}
	if err := c.checkBlock(is.IfPart.Stmts); err != nil {
		return err
	}
	for _, ei := range is.ElseIfs {
		if err := c.checkCondition(&ei.Condition); err != nil {
			return err
		}
		if err := c.checkBlock(ei.Stmts); err != nil {
			return err
		}
	}
	if is.ElseStmts != nil {
		if err := c.checkBlock(is.ElseStmts); err != nil {
			return err
		}
	}
	return nil
}

func (c *Checker) checkForStmt(fs *ast.ForStmt) error {
	c.syms.Push()
	defer c.syms.Pop()
	if err := c.checkVarDecl(fs.VarDecl); err != nil {
		return err
	}
	if err := c.checkCondition(&fs.Condition); err != nil {
		return err
	}
	if err := c.checkAssignStmt(fs.AssignStmt); err != nil {
		return err
	}
	return c.checkBlock(fs.Stmts)
}

func (c *Checker) checkReturnStmt(rs *ast.ReturnStmt) error {
	if rs.Expr == nil {
		if !isVoidReturn(c.retType) {
			return errs.NewStaticError(fmt.Sprintf("function must return a value of type %s", c.retType), 0, 0)
		}
		return nil
	}
	rt, err := c.checkExpr(rs.Expr)
	if err != nil {
		return err
	}
	if isVoidReturn(c.retType) {
		return errs.NewStaticError("void function cannot return a value", 0, 0)
	}
	if !typesCompatible(c.retType, rt) {
		return errs.NewStaticError(fmt.Sprintf("returned type %s does not match declared return type %s", rt, c.retType), 0, 0)
	}
	return nil
}

func (c *Checker) checkExpr(e *ast.Expr) (ast.DataType, error) {
	t1, err := c.checkTerm(e.First)
	if err != nil {
		return ast.DataType{}, err
	}
	if e.NotOp {
		if !isBoolType(t1) {
			return ast.DataType{}, errs.NewStaticError(fmt.Sprintf("'not' requires a bool operand, got %s", t1), 0, 0)
		}
	}
	if e.Op == nil {
		return t1, nil
	}
	t2, err := c.checkExpr(e.Rest)
	if err != nil {
		return ast.DataType{}, err
	}
	return c.checkBinOp(*e.Op, t1, t2)
}

func (c *Checker) checkBinOp(op token.Token, lhs, rhs ast.DataType) (ast.DataType, error) {
	switch op.Kind {
	case token.PLUS, token.MINUS, token.TIMES, token.DIVIDE:
		return c.checkArith(op, lhs, rhs)
	case token.LESS, token.LESS_EQ, token.GREATER, token.GREATER_EQ:
		return c.checkRelational(op, lhs, rhs)
	case token.EQUAL, token.NOT_EQUAL:
		if !(isNullType(lhs) || isNullType(rhs) || lhs.Equal(rhs)) {
			return ast.DataType{}, errs.NewStaticError(fmt.Sprintf("cannot compare %s and %s", lhs, rhs), op.Line, op.Column)
		}
		return ast.DataType{TypeName: token.Token{Kind: token.BOOL_TYPE, Lexeme: "bool"}}, nil
	case token.AND, token.OR:
		if !isBoolType(lhs) || !isBoolType(rhs) {
			return ast.DataType{}, errs.NewStaticError(fmt.Sprintf("'%s' requires bool operands", op.Lexeme), op.Line, op.Column)
		}
		return ast.DataType{TypeName: token.Token{Kind: token.BOOL_TYPE, Lexeme: "bool"}}, nil
	default:
		return ast.DataType{}, errs.NewStaticError(fmt.Sprintf("unknown operator '%s'", op.Lexeme), op.Line, op.Column)
	}
}

func (c *Checker) checkArith(op token.Token, lhs, rhs ast.DataType) (ast.DataType, error) {
	if isNullType(lhs) || isNullType(rhs) {
		return ast.DataType{}, errs.NewStaticError("null cannot be used in an arithmetic expression", op.Line, op.Column)
	}
	if op.Kind == token.PLUS && lhs.TypeName.Kind == token.STRING_TYPE && rhs.Equal(lhs) {
		return lhs, nil
	}
	numeric := (lhs.TypeName.Kind == token.INT_TYPE || lhs.TypeName.Kind == token.DOUBLE_TYPE)
	if numeric && lhs.Equal(rhs) && !lhs.IsArray && !lhs.IsDict {
		return lhs, nil
	}
	return ast.DataType{}, errs.NewStaticError(fmt.Sprintf("operator '%s' requires matching int, double, or string (for +) operands, got %s and %s", op.Lexeme, lhs, rhs), op.Line, op.Column)
}

func (c *Checker) checkRelational(op token.Token, lhs, rhs ast.DataType) (ast.DataType, error) {
	ordered := func(dt ast.DataType) bool {
		return !dt.IsArray && !dt.IsDict && (dt.TypeName.Kind == token.INT_TYPE || dt.TypeName.Kind == token.DOUBLE_TYPE || dt.TypeName.Kind == token.STRING_TYPE)
	}
	if !ordered(lhs) || !lhs.Equal(rhs) {
		return ast.DataType{}, errs.NewStaticError(fmt.Sprintf("operator '%s' requires matching int, double, or string operands, got %s and %s", op.Lexeme, lhs, rhs), op.Line, op.Column)
	}
	return ast.DataType{TypeName: token.Token{Kind: token.BOOL_TYPE, Lexeme: "bool"}}, nil
}

func (c *Checker) checkTerm(t ast.Term) (ast.DataType, error) {
	switch tm := t.(type) {
	case *ast.SimpleTerm:
		return c.checkRValue(tm.RValue)
	case *ast.ComplexTerm:
		return c.checkExpr(tm.Expr)
	default:
		return ast.DataType{}, errs.NewStaticError(fmt.Sprintf("unhandled term kind %T", t), 0, 0)
	}
}

func (c *Checker) checkRValue(rv ast.RValue) (ast.DataType, error) {
	switch v := rv.(type) {
	case *ast.SimpleRValue:
		return literalType(v.Value), nil
	case *ast.NewRValue:
		return c.checkNewRValue(v)
	case *ast.CallExpr:
		return c.checkCallExpr(v)
	case *ast.VarRValue:
		return c.checkPath(v.Path)
	default:
		return ast.DataType{}, errs.NewStaticError(fmt.Sprintf("unhandled rvalue kind %T", rv), 0, 0)
	}
}

func literalType(tok token.Token) ast.DataType {
	switch tok.Kind {
	case token.INT_VAL:
		return ast.DataType{TypeName: token.Token{Kind: token.INT_TYPE, Lexeme: "int"}}
	case token.DOUBLE_VAL:
		return ast.DataType{TypeName: token.Token{Kind: token.DOUBLE_TYPE, Lexeme: "double"}}
	case token.STRING_VAL:
		return ast.DataType{TypeName: token.Token{Kind: token.STRING_TYPE, Lexeme: "string"}}
	case token.BOOL_VAL:
		return ast.DataType{TypeName: token.Token{Kind: token.BOOL_TYPE, Lexeme: "bool"}}
	default: // NULL_VAL
		return voidType
	}
}

func (c *Checker) checkNewRValue(nv *ast.NewRValue) (ast.DataType, error) {
	if nv.IsDict {
		return ast.DataType{IsDict: true}, nil
	}
	if nv.ArrayExpr != nil {
		sizeType, err := c.checkExpr(nv.ArrayExpr)
		if err != nil {
			return ast.DataType{}, err
		}
		if !isIntType(sizeType) {
			return ast.DataType{}, errs.NewStaticError("array size must be an int", nv.Type.Line, nv.Type.Column)
		}
		if err := c.validateTypeName(nv.Type); err != nil {
			return ast.DataType{}, err
		}
		elem := nv.Type
		return ast.DataType{IsArray: true, ElementType: &elem}, nil
	}
	sd, ok := c.structs[nv.Type.Lexeme]
	if !ok {
		return ast.DataType{}, errs.NewStaticError(fmt.Sprintf("unknown struct type '%s'", nv.Type.Lexeme), nv.Type.Line, nv.Type.Column)
	}
	if len(nv.StructParams) != len(sd.Fields) {
		return ast.DataType{}, errs.NewStaticError(fmt.Sprintf("struct '%s' expects %d constructor arguments, got %d", sd.Name.Lexeme, len(sd.Fields), len(nv.StructParams)), nv.Type.Line, nv.Type.Column)
	}
	for i, arg := range nv.StructParams {
		at, err := c.checkExpr(&arg)
		if err != nil {
			return ast.DataType{}, err
		}
		if !typesCompatible(sd.Fields[i].DataType, at) {
			return ast.DataType{}, errs.NewStaticError(fmt.Sprintf("constructor argument %d of '%s' expects %s, got %s", i+1, sd.Name.Lexeme, sd.Fields[i].DataType, at), nv.Type.Line, nv.Type.Column)
		}
	}
	return ast.DataType{TypeName: nv.Type}, nil
}

func (c *Checker) checkCallExpr(call *ast.CallExpr) (ast.DataType, error) {
	name := call.FunName.Lexeme
	if bt, ok, err := c.checkBuiltinCall(call); ok || err != nil {
		return bt, err
	}
	fd, ok := c.functions[name]
	if !ok {
		return ast.DataType{}, errs.NewStaticError(fmt.Sprintf("call to undeclared function '%s'", name), call.FunName.Line, call.FunName.Column)
	}
	if len(call.Args) != len(fd.Params) {
		return ast.DataType{}, errs.NewStaticError(fmt.Sprintf("function '%s' expects %d arguments, got %d", name, len(fd.Params), len(call.Args)), call.FunName.Line, call.FunName.Column)
	}
	for i := range call.Args {
		at, err := c.checkExpr(&call.Args[i])
		if err != nil {
			return ast.DataType{}, err
		}
		if !typesCompatible(fd.Params[i].DataType, at) {
			return ast.DataType{}, errs.NewStaticError(fmt.Sprintf("argument %d of '%s' expects %s, got %s", i+1, name, fd.Params[i].DataType, at), call.FunName.Line, call.FunName.Column)
		}
	}
	return fd.ReturnType, nil
}

// checkBuiltinCall handles the fixed-arity, fixed-signature built-ins
// (print, length, get, stoi, stod, itos, dtos, itod, dtoi, input, in, keys).
// ok is false (with a nil error) when name isn't a built-in, so the caller
// falls through to user-function resolution.
func (c *Checker) checkBuiltinCall(call *ast.CallExpr) (ast.DataType, bool, error) {
	name := call.FunName.Lexeme
	boolT := ast.DataType{TypeName: token.Token{Kind: token.BOOL_TYPE, Lexeme: "bool"}}
	intT := ast.DataType{TypeName: token.Token{Kind: token.INT_TYPE, Lexeme: "int"}}
	dblT := ast.DataType{TypeName: token.Token{Kind: token.DOUBLE_TYPE, Lexeme: "double"}}
	strT := ast.DataType{TypeName: token.Token{Kind: token.STRING_TYPE, Lexeme: "string"}}

	arity := func(n int) error {
		if len(call.Args) != n {
			return errs.NewStaticError(fmt.Sprintf("'%s' expects %d argument(s), got %d", name, n, len(call.Args)), call.FunName.Line, call.FunName.Column)
		}
		return nil
	}
	argType := func(i int) (ast.DataType, error) { return c.checkExpr(&call.Args[i]) }

	switch name {
	case "print":
		if err := arity(1); err != nil {
			return ast.DataType{}, true, err
		}
		at, err := argType(0)
		if err != nil {
			return ast.DataType{}, true, err
		}
		if at.IsArray || at.IsDict || !isScalarBaseKind(at.TypeName.Kind) {
			return ast.DataType{}, true, errs.NewStaticError("print requires an int, double, bool, or string argument", call.FunName.Line, call.FunName.Column)
		}
		return voidType, true, nil
	case "input":
		if err := arity(0); err != nil {
			return ast.DataType{}, true, err
		}
		return strT, true, nil
	case "itos":
		if err := arity(1); err != nil {
			return ast.DataType{}, true, err
		}
		if at, err := argType(0); err != nil || !at.Equal(intT) {
			return ast.DataType{}, true, builtinArgErr(err, name, "int", call.FunName)
		}
		return strT, true, nil
	case "dtos":
		if err := arity(1); err != nil {
			return ast.DataType{}, true, err
		}
		if at, err := argType(0); err != nil || !at.Equal(dblT) {
			return ast.DataType{}, true, builtinArgErr(err, name, "double", call.FunName)
		}
		return strT, true, nil
	case "stoi":
		if err := arity(1); err != nil {
			return ast.DataType{}, true, err
		}
		if at, err := argType(0); err != nil || !at.Equal(strT) {
			return ast.DataType{}, true, builtinArgErr(err, name, "string", call.FunName)
		}
		return intT, true, nil
	case "dtoi":
		if err := arity(1); err != nil {
			return ast.DataType{}, true, err
		}
		if at, err := argType(0); err != nil || !at.Equal(dblT) {
			return ast.DataType{}, true, builtinArgErr(err, name, "double", call.FunName)
		}
		return intT, true, nil
	case "itod":
		if err := arity(1); err != nil {
			return ast.DataType{}, true, err
		}
		if at, err := argType(0); err != nil || !at.Equal(intT) {
			return ast.DataType{}, true, builtinArgErr(err, name, "int", call.FunName)
		}
		return dblT, true, nil
	case "stod":
		if err := arity(1); err != nil {
			return ast.DataType{}, true, err
		}
		if at, err := argType(0); err != nil || !at.Equal(strT) {
			return ast.DataType{}, true, builtinArgErr(err, name, "string", call.FunName)
		}
		return dblT, true, nil
	case "length":
		if err := arity(1); err != nil {
			return ast.DataType{}, true, err
		}
		at, err := argType(0)
		if err != nil {
			return ast.DataType{}, true, err
		}
		if !at.IsArray && !at.IsDict && at.TypeName.Kind != token.STRING_TYPE {
			return ast.DataType{}, true, errs.NewStaticError("'length' requires a string, array, or dict argument", call.FunName.Line, call.FunName.Column)
		}
		return intT, true, nil
	case "get":
		if err := arity(2); err != nil {
			return ast.DataType{}, true, err
		}
		i, err := argType(0)
		if err != nil {
			return ast.DataType{}, true, err
		}
		s, err := argType(1)
		if err != nil {
			return ast.DataType{}, true, err
		}
		if !i.Equal(intT) || !s.Equal(strT) {
			return ast.DataType{}, true, errs.NewStaticError("'get' expects (int, string)", call.FunName.Line, call.FunName.Column)
		}
		return strT, true, nil
	case "keys":
		if err := arity(1); err != nil {
			return ast.DataType{}, true, err
		}
		d, err := argType(0)
		if err != nil {
			return ast.DataType{}, true, err
		}
		if !d.IsDict || d.KeyType == nil {
			return ast.DataType{}, true, errs.NewStaticError("'keys' requires a dict argument", call.FunName.Line, call.FunName.Column)
		}
		kt := *d.KeyType
		return ast.DataType{IsArray: true, ElementType: &kt}, true, nil
	case "in":
		if err := arity(2); err != nil {
			return ast.DataType{}, true, err
		}
		d, err := argType(0)
		if err != nil {
			return ast.DataType{}, true, err
		}
		k, err := argType(1)
		if err != nil {
			return ast.DataType{}, true, err
		}
		if !d.IsDict || d.KeyType == nil {
			return ast.DataType{}, true, errs.NewStaticError("'in' requires a dict as its first argument", call.FunName.Line, call.FunName.Column)
		}
		if !typesCompatible(ast.DataType{TypeName: *d.KeyType}, k) {
			return ast.DataType{}, true, errs.NewStaticError("'in' key type does not match the dict's key type", call.FunName.Line, call.FunName.Column)
		}
		return boolT, true, nil
	default:
		return ast.DataType{}, false, nil
	}
}

func builtinArgErr(argErr error, name, wantType string, fn token.Token) error {
	if argErr != nil {
		return argErr
	}
	return errs.NewStaticError(fmt.Sprintf("'%s' expects a %s argument", name, wantType), fn.Line, fn.Column)
}

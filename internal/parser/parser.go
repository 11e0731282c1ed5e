// Package parser implements a recursive-descent parser over a MyPL token
// stream, producing an ast.Program.
package parser

import (
	"fmt"

	"mypl/internal/ast"
	"mypl/internal/errs"
	"mypl/internal/lexer"
	"mypl/internal/token"
)

// Parser consumes tokens one at a time with a single token of lookahead.
type Parser struct {
	lex       *lexer.Lexer
	currToken token.Token
}

// New builds a parser over source, priming the first lookahead token.
func New(source string) (*Parser, error) {
	p := &Parser{lex: lexer.New(source)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p, nil
}

// advance fetches the next non-comment token into currToken.
func (p *Parser) advance() error {
	for {
		tok, err := p.lex.Next()
		if err != nil {
			return err
		}
		if tok.Kind == token.COMMENT {
			continue
		}
		p.currToken = tok
		return nil
	}
}

func (p *Parser) match(kind token.Kind) bool {
	return p.currToken.Kind == kind
}

func (p *Parser) matchAny(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.currToken.Kind == k {
			return true
		}
	}
	return false
}

// eat consumes the current token if it has the expected kind, else returns a
// ParserError naming msg.
func (p *Parser) eat(kind token.Kind, msg string) (token.Token, error) {
	if !p.match(kind) {
		return token.Token{}, errs.NewParserError(msg, p.currToken.Lexeme, p.currToken.Line, p.currToken.Column)
	}
	tok := p.currToken
	if kind == token.EOS {
		return tok, nil
	}
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	return tok, nil
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return errs.NewParserError(fmt.Sprintf(format, args...), p.currToken.Lexeme, p.currToken.Line, p.currToken.Column)
}

// Parse parses a complete program: zero or more struct and function
// definitions followed by end-of-stream. The parser never consumes past EOS.
func Parse(source string) (*ast.Program, error) {
	p, err := New(source)
	if err != nil {
		return nil, err
	}
	return p.parseProgram()
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for !p.match(token.EOS) {
		switch {
		case p.match(token.STRUCT):
			sd, err := p.parseStructDef()
			if err != nil {
				return nil, err
			}
			prog.Structs = append(prog.Structs, sd)
		case p.match(token.VOID) || p.isDataTypeStart():
			fd, err := p.parseFunDef()
			if err != nil {
				return nil, err
			}
			prog.Functions = append(prog.Functions, fd)
		default:
			return nil, p.errorf("expected struct or function definition")
		}
	}
	if _, err := p.eat(token.EOS, "expected end of input"); err != nil {
		return nil, err
	}
	return prog, nil
}

func (p *Parser) isDataTypeStart() bool {
	return token.BaseTypes[p.currToken.Kind] || p.match(token.ID) || p.match(token.ARRAY) || p.match(token.DICT)
}

func (p *Parser) parseStructDef() (*ast.StructDef, error) {
	if _, err := p.eat(token.STRUCT, "expected 'struct'"); err != nil {
		return nil, err
	}
	name, err := p.eat(token.ID, "expected struct name")
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(token.LBRACE, "expected '{'"); err != nil {
		return nil, err
	}
	var fields []ast.VarDef
	for !p.match(token.RBRACE) {
		dt, err := p.parseDataType()
		if err != nil {
			return nil, err
		}
		fname, err := p.eat(token.ID, "expected field name")
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(token.SEMICOLON, "expected ';' after field"); err != nil {
			return nil, err
		}
		fields = append(fields, ast.VarDef{DataType: dt, Name: fname})
	}
	if _, err := p.eat(token.RBRACE, "expected '}'"); err != nil {
		return nil, err
	}
	return &ast.StructDef{Name: name, Fields: fields}, nil
}

// parseDataType parses `data_type := ID | base_type | 'array' (ID | base_type)
// | 'dict' '(' base_type ',' base_type ')'`.
func (p *Parser) parseDataType() (ast.DataType, error) {
	switch {
	case p.match(token.ARRAY):
		if err := p.advance(); err != nil {
			return ast.DataType{}, err
		}
		elem, err := p.eatTypeNameToken()
		if err != nil {
			return ast.DataType{}, err
		}
		return ast.DataType{IsArray: true, ElementType: &elem}, nil
	case p.match(token.DICT):
		if err := p.advance(); err != nil {
			return ast.DataType{}, err
		}
		if _, err := p.eat(token.LPAREN, "expected '(' after 'dict'"); err != nil {
			return ast.DataType{}, err
		}
		key, err := p.eatBaseTypeToken()
		if err != nil {
			return ast.DataType{}, err
		}
		if _, err := p.eat(token.COMMA, "expected ',' in dict type"); err != nil {
			return ast.DataType{}, err
		}
		elem, err := p.eatBaseTypeToken()
		if err != nil {
			return ast.DataType{}, err
		}
		if _, err := p.eat(token.RPAREN, "expected ')' closing dict type"); err != nil {
			return ast.DataType{}, err
		}
		return ast.DataType{IsDict: true, KeyType: &key, ElementType: &elem}, nil
	default:
		name, err := p.eatTypeNameToken()
		if err != nil {
			return ast.DataType{}, err
		}
		return ast.DataType{TypeName: name}, nil
	}
}

func (p *Parser) eatTypeNameToken() (token.Token, error) {
	if token.BaseTypes[p.currToken.Kind] || p.match(token.ID) {
		tok := p.currToken
		if err := p.advance(); err != nil {
			return token.Token{}, err
		}
		return tok, nil
	}
	return token.Token{}, p.errorf("expected a type name")
}

func (p *Parser) eatBaseTypeToken() (token.Token, error) {
	if !token.BaseTypes[p.currToken.Kind] || p.match(token.VOID) {
		return token.Token{}, p.errorf("expected a base type")
	}
	return p.eatTypeNameToken()
}

// parseReturnType parses `'void' | data_type`.
func (p *Parser) parseReturnType() (ast.DataType, error) {
	if p.match(token.VOID) {
		tok := p.currToken
		if err := p.advance(); err != nil {
			return ast.DataType{}, err
		}
		return ast.DataType{TypeName: tok}, nil
	}
	return p.parseDataType()
}

func (p *Parser) parseFunDef() (*ast.FunDef, error) {
	rt, err := p.parseReturnType()
	if err != nil {
		return nil, err
	}
	name, err := p.eat(token.ID, "expected function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(token.LPAREN, "expected '(' after function name"); err != nil {
		return nil, err
	}
	var params []ast.VarDef
	if !p.match(token.RPAREN) {
		params, err = p.parseParams()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.eat(token.RPAREN, "expected ')' closing parameter list"); err != nil {
		return nil, err
	}
	if _, err := p.eat(token.LBRACE, "expected '{'"); err != nil {
		return nil, err
	}
	var body []ast.Stmt
	for !p.match(token.RBRACE) {
		st, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		body = append(body, st)
	}
	if _, err := p.eat(token.RBRACE, "expected '}' closing function body"); err != nil {
		return nil, err
	}
	return &ast.FunDef{ReturnType: rt, Name: name, Params: params, Body: body}, nil
}

func (p *Parser) parseParams() ([]ast.VarDef, error) {
	var params []ast.VarDef
	for {
		dt, err := p.parseDataType()
		if err != nil {
			return nil, err
		}
		name, err := p.eat(token.ID, "expected parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, ast.VarDef{DataType: dt, Name: name})
		if !p.match(token.COMMA) {
			return params, nil
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
}

// parseStmt parses `while_stmt | if_stmt | for_stmt | return_stmt ';' |
// id_lead_stmt | vdecl_stmt ';'`.
func (p *Parser) parseStmt() (ast.Stmt, error) {
	switch {
	case p.match(token.WHILE):
		return p.parseWhileStmt()
	case p.match(token.IF):
		return p.parseIfStmt()
	case p.match(token.FOR):
		return p.parseForStmt()
	case p.match(token.RETURN):
		return p.parseReturnStmt()
	case p.match(token.ID):
		return p.parseIDLeadStmt()
	case token.BaseTypes[p.currToken.Kind] && !p.match(token.VOID), p.match(token.ARRAY), p.match(token.DICT):
		return p.parseVarDeclStmt()
	default:
		return nil, p.errorf("expected a statement")
	}
}

// parseIDLeadStmt handles the three productions that start with an ID: a
// call expression, a struct-typed variable declaration, or an assignment.
func (p *Parser) parseIDLeadStmt() (ast.Stmt, error) {
	idTok, err := p.eat(token.ID, "expected identifier")
	if err != nil {
		return nil, err
	}
	switch {
	case p.match(token.LPAREN):
		call, err := p.parseCallTail(idTok)
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(token.SEMICOLON, "expected ';' after call"); err != nil {
			return nil, err
		}
		return call, nil
	case p.match(token.ID):
		vdecl, err := p.parseNamedVarDecl(ast.DataType{TypeName: idTok})
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(token.SEMICOLON, "expected ';' after variable declaration"); err != nil {
			return nil, err
		}
		return vdecl, nil
	default:
		assign, err := p.parseAssignTail(idTok)
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(token.SEMICOLON, "expected ';' after assignment"); err != nil {
			return nil, err
		}
		return assign, nil
	}
}

func (p *Parser) parseVarDeclStmt() (ast.Stmt, error) {
	dt, err := p.parseDataType()
	if err != nil {
		return nil, err
	}
	vdecl, err := p.parseNamedVarDecl(dt)
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(token.SEMICOLON, "expected ';' after variable declaration"); err != nil {
		return nil, err
	}
	return vdecl, nil
}

// parseNamedVarDecl parses `ID ('=' expr)?` given an already-parsed
// DataType, without consuming the trailing ';' — callers own that, since a
// for-loop's init declaration shares this production but not its terminator.
func (p *Parser) parseNamedVarDecl(dt ast.DataType) (*ast.VarDecl, error) {
	name, err := p.eat(token.ID, "expected variable name")
	if err != nil {
		return nil, err
	}
	var expr *ast.Expr
	if p.match(token.ASSIGN) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		expr = &e
	}
	return &ast.VarDecl{VarDef: ast.VarDef{DataType: dt, Name: name}, Expr: expr}, nil
}

// parseCallTail parses the `(arg_list?)` after an already-consumed name.
func (p *Parser) parseCallTail(name token.Token) (*ast.CallExpr, error) {
	if _, err := p.eat(token.LPAREN, "expected '('"); err != nil {
		return nil, err
	}
	var args []ast.Expr
	if !p.match(token.RPAREN) {
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, e)
			if !p.match(token.COMMA) {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.eat(token.RPAREN, "expected ')' closing call"); err != nil {
		return nil, err
	}
	return &ast.CallExpr{FunName: name, Args: args}, nil
}

// parseAssignTail parses the remainder of `var_path '=' expr` after the
// leading identifier has already been consumed.
func (p *Parser) parseAssignTail(head token.Token) (*ast.AssignStmt, error) {
	path, err := p.parsePathTail(head)
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(token.ASSIGN, "expected '=' in assignment"); err != nil {
		return nil, err
	}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return &ast.AssignStmt{Lvalue: path, Expr: expr}, nil
}

// parsePathTail parses `('[' expr ']')? ('.' ID ('[' expr ']')?)*` given an
// already-consumed head identifier, producing the full path.
func (p *Parser) parsePathTail(head token.Token) ([]ast.VarRef, error) {
	ref := ast.VarRef{Name: head}
	if p.match(token.LBRACKET) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		idx, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(token.RBRACKET, "expected ']' closing index"); err != nil {
			return nil, err
		}
		ref.ArrayExpr = &idx
	}
	path := []ast.VarRef{ref}
	for p.match(token.DOT) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		name, err := p.eat(token.ID, "expected field name after '.'")
		if err != nil {
			return nil, err
		}
		step := ast.VarRef{Name: name}
		if p.match(token.LBRACKET) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.eat(token.RBRACKET, "expected ']' closing index"); err != nil {
				return nil, err
			}
			step.ArrayExpr = &idx
		}
		path = append(path, step)
	}
	return path, nil
}

func (p *Parser) parseBasicIf() (ast.BasicIf, error) {
	if _, err := p.eat(token.LPAREN, "expected '(' after condition keyword"); err != nil {
		return ast.BasicIf{}, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return ast.BasicIf{}, err
	}
	if _, err := p.eat(token.RPAREN, "expected ')' closing condition"); err != nil {
		return ast.BasicIf{}, err
	}
	stmts, err := p.parseBlock()
	if err != nil {
		return ast.BasicIf{}, err
	}
	return ast.BasicIf{Condition: cond, Stmts: stmts}, nil
}

func (p *Parser) parseBlock() ([]ast.Stmt, error) {
	if _, err := p.eat(token.LBRACE, "expected '{'"); err != nil {
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.match(token.RBRACE) {
		st, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
	}
	if _, err := p.eat(token.RBRACE, "expected '}' closing block"); err != nil {
		return nil, err
	}
	return stmts, nil
}

func (p *Parser) parseIfStmt() (ast.Stmt, error) {
	if err := p.advance(); err != nil { // 'if'
		return nil, err
	}
	ifPart, err := p.parseBasicIf()
	if err != nil {
		return nil, err
	}
	stmt := &ast.IfStmt{IfPart: ifPart}
	for p.match(token.ELSEIF) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		bi, err := p.parseBasicIf()
		if err != nil {
			return nil, err
		}
		stmt.ElseIfs = append(stmt.ElseIfs, bi)
	}
	if p.match(token.ELSE) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		stmts, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.ElseStmts = stmts
	}
	return stmt, nil
}

func (p *Parser) parseWhileStmt() (ast.Stmt, error) {
	if err := p.advance(); err != nil { // 'while'
		return nil, err
	}
	if _, err := p.eat(token.LPAREN, "expected '(' after 'while'"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(token.RPAREN, "expected ')' closing while condition"); err != nil {
		return nil, err
	}
	stmts, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{Condition: cond, Stmts: stmts}, nil
}

func (p *Parser) parseForStmt() (ast.Stmt, error) {
	if err := p.advance(); err != nil { // 'for'
		return nil, err
	}
	if _, err := p.eat(token.LPAREN, "expected '(' after 'for'"); err != nil {
		return nil, err
	}
	initDT, err := p.parseDataType()
	if err != nil {
		return nil, err
	}
	vdecl, err := p.parseNamedVarDecl(initDT)
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(token.SEMICOLON, "expected ';' after for-loop init"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(token.SEMICOLON, "expected ';' after for-loop condition"); err != nil {
		return nil, err
	}
	idTok, err := p.eat(token.ID, "expected identifier in for-loop update")
	if err != nil {
		return nil, err
	}
	assign, err := p.parseAssignTail(idTok)
	if err != nil {
		return nil, err
	}
	if _, err := p.eat(token.RPAREN, "expected ')' closing for-loop header"); err != nil {
		return nil, err
	}
	stmts, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.ForStmt{VarDecl: vdecl, Condition: cond, AssignStmt: assign, Stmts: stmts}, nil
}

func (p *Parser) parseReturnStmt() (ast.Stmt, error) {
	if err := p.advance(); err != nil { // 'return'
		return nil, err
	}
	var expr *ast.Expr
	if !p.match(token.SEMICOLON) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		expr = &e
	}
	if _, err := p.eat(token.SEMICOLON, "expected ';' after return"); err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{Expr: expr}, nil
}

// parseExpr parses `'not'? ( '(' expr ')' | rvalue ) (bin_op expr)?`, a
// right-associative chain; grouping is always explicit via parentheses.
func (p *Parser) parseExpr() (ast.Expr, error) {
	e := ast.Expr{}
	if p.match(token.NOT) {
		if err := p.advance(); err != nil {
			return ast.Expr{}, err
		}
		e.NotOp = true
	}
	term, err := p.parseTerm()
	if err != nil {
		return ast.Expr{}, err
	}
	e.First = term
	if p.isBinOp() {
		op := p.currToken
		if err := p.advance(); err != nil {
			return ast.Expr{}, err
		}
		rest, err := p.parseExpr()
		if err != nil {
			return ast.Expr{}, err
		}
		e.Op = &op
		e.Rest = &rest
	}
	return e, nil
}

func (p *Parser) isBinOp() bool {
	return p.matchAny(token.PLUS, token.MINUS, token.TIMES, token.DIVIDE,
		token.AND, token.OR, token.EQUAL, token.NOT_EQUAL,
		token.LESS, token.LESS_EQ, token.GREATER, token.GREATER_EQ)
}

func (p *Parser) parseTerm() (ast.Term, error) {
	if p.match(token.LPAREN) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(token.RPAREN, "expected ')' closing parenthesized expression"); err != nil {
			return nil, err
		}
		return &ast.ComplexTerm{Expr: &e}, nil
	}
	rv, err := p.parseRValue()
	if err != nil {
		return nil, err
	}
	return &ast.SimpleTerm{RValue: rv}, nil
}

// parseRValue parses `literal | 'null' | new_rvalue | call_expr | var_path`.
func (p *Parser) parseRValue() (ast.RValue, error) {
	switch {
	case p.matchAny(token.INT_VAL, token.DOUBLE_VAL, token.STRING_VAL, token.BOOL_VAL, token.NULL_VAL):
		tok := p.currToken
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &ast.SimpleRValue{Value: tok}, nil
	case p.match(token.NEW):
		return p.parseNewRValue()
	case p.match(token.ID):
		idTok, err := p.eat(token.ID, "expected identifier")
		if err != nil {
			return nil, err
		}
		if p.match(token.LPAREN) {
			return p.parseCallTail(idTok)
		}
		path, err := p.parsePathTail(idTok)
		if err != nil {
			return nil, err
		}
		return &ast.VarRValue{Path: path}, nil
	default:
		return nil, p.errorf("expected a value")
	}
}

// parseNewRValue parses `'new' (ID ( '(' arg_list? ')' | '[' expr ']' ) |
// base_type '[' expr ']' | 'dict' '(' ')')`.
func (p *Parser) parseNewRValue() (ast.RValue, error) {
	if err := p.advance(); err != nil { // 'new'
		return nil, err
	}
	if p.match(token.DICT) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		if _, err := p.eat(token.LPAREN, "expected '(' after 'new dict'"); err != nil {
			return nil, err
		}
		if _, err := p.eat(token.RPAREN, "expected ')' — 'new dict()' takes no arguments"); err != nil {
			return nil, err
		}
		return &ast.NewRValue{IsDict: true}, nil
	}
	typeTok, err := p.eatTypeNameToken()
	if err != nil {
		return nil, err
	}
	switch {
	case p.match(token.LBRACKET):
		if err := p.advance(); err != nil {
			return nil, err
		}
		sizeExpr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.eat(token.RBRACKET, "expected ']' closing array size"); err != nil {
			return nil, err
		}
		return &ast.NewRValue{Type: typeTok, ArrayExpr: &sizeExpr}, nil
	case p.match(token.LPAREN):
		if err := p.advance(); err != nil {
			return nil, err
		}
		var args []ast.Expr
		if !p.match(token.RPAREN) {
			for {
				e, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				args = append(args, e)
				if !p.match(token.COMMA) {
					break
				}
				if err := p.advance(); err != nil {
					return nil, err
				}
			}
		}
		if _, err := p.eat(token.RPAREN, "expected ')' closing constructor arguments"); err != nil {
			return nil, err
		}
		return &ast.NewRValue{Type: typeTok, StructParams: args}, nil
	default:
		return nil, p.errorf("expected '(' or '[' after 'new %s'", typeTok.Lexeme)
	}
}

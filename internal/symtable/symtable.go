// Package symtable implements the semantic checker's scoped symbol table:
// a stack of name->DataType scopes, pushed and popped at every block.
package symtable

import "mypl/internal/ast"

// Table is a stack of scopes, innermost last. It is not safe for concurrent
// use; the checker visits the AST single-threaded.
type Table struct {
	scopes []map[string]ast.DataType
}

// New returns an empty Table with no scopes pushed.
func New() *Table {
	return &Table{}
}

// Push opens a new, empty innermost scope.
func (t *Table) Push() {
	t.scopes = append(t.scopes, make(map[string]ast.DataType))
}

// Pop discards the innermost scope. It panics if no scope is open, since
// every Push in the checker is matched by exactly one Pop.
func (t *Table) Pop() {
	if len(t.scopes) == 0 {
		panic("symtable: Pop with no open scope")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Add binds name to dt in the innermost scope, overwriting any prior binding
// for name in that same scope. Callers must check ExistsInCurrEnv first to
// reject redeclaration.
func (t *Table) Add(name string, dt ast.DataType) {
	t.scopes[len(t.scopes)-1][name] = dt
}

// Get returns the type bound to name, searching from the innermost scope
// outward, and whether it was found.
func (t *Table) Get(name string) (ast.DataType, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if dt, ok := t.scopes[i][name]; ok {
			return dt, true
		}
	}
	return ast.DataType{}, false
}

// Exists reports whether name is bound in any open scope.
func (t *Table) Exists(name string) bool {
	_, ok := t.Get(name)
	return ok
}

// ExistsInCurrEnv reports whether name is bound in the innermost scope only,
// distinct from Exists so shadowing across nested scopes stays legal while
// redeclaration within one scope is rejected.
func (t *Table) ExistsInCurrEnv(name string) bool {
	if len(t.scopes) == 0 {
		return false
	}
	_, ok := t.scopes[len(t.scopes)-1][name]
	return ok
}

// Depth returns the number of currently open scopes.
func (t *Table) Depth() int {
	return len(t.scopes)
}

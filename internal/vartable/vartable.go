// Package vartable implements the code generator's scoped name->slot table.
// Slots are assigned monotonically across the whole frame: entering and
// leaving nested scopes never reuses a slot index.
package vartable

// Table is a stack of scopes mapping a local variable name to its slot
// index in the runtime frame's locals array.
type Table struct {
	scopes    []map[string]int
	totalVars int
}

// New returns an empty Table with no scopes pushed and no slots assigned.
func New() *Table {
	return &Table{}
}

// Push opens a new, empty innermost scope.
func (t *Table) Push() {
	t.scopes = append(t.scopes, make(map[string]int))
}

// Pop discards the innermost scope. Slots already assigned within it are
// not reclaimed: TotalVars keeps counting across the whole function.
func (t *Table) Pop() {
	if len(t.scopes) == 0 {
		panic("vartable: Pop with no open scope")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Add binds name to the next unused slot in the innermost scope and
// returns that slot.
func (t *Table) Add(name string) int {
	slot := t.totalVars
	t.totalVars++
	t.scopes[len(t.scopes)-1][name] = slot
	return slot
}

// Get returns the slot bound to name, searching from the innermost scope
// outward, and whether it was found.
func (t *Table) Get(name string) (int, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if slot, ok := t.scopes[i][name]; ok {
			return slot, true
		}
	}
	return 0, false
}

// TotalVars returns the next slot index that Add would assign.
func (t *Table) TotalVars() int {
	return t.totalVars
}

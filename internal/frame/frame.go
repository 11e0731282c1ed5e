// Package frame defines the code generator's output unit, a FrameTemplate,
// and the virtual machine's runtime activation of one, a Frame.
package frame

import "mypl/internal/opcode"

// Template is the immutable per-function program the code generator
// produces: the function's name, how many of its locals are parameters,
// and its instruction list.
type Template struct {
	FunName      string
	ArgCount     int
	Instructions []opcode.Instruction
}

// Frame is a runtime activation of a Template: its own program counter,
// operand stack, and locals array. A Frame is pushed onto the VM's call
// stack on CALL and popped on RET; it never runs again afterward.
//
// Variables and set are kept as parallel slices rather than a single slice
// of pointers so that an explicit MyPL null (represented as a nil any) is
// distinguishable from a slot that was never STOREd into.
type Frame struct {
	Template  *Template
	PC        int
	Operands  []any
	Variables []any
	set       []bool
}

// NewFrame returns a fresh Frame ready to execute tmpl from instruction 0.
func NewFrame(tmpl *Template) *Frame {
	return &Frame{Template: tmpl}
}

// Push appends v to the operand stack.
func (f *Frame) Push(v any) {
	f.Operands = append(f.Operands, v)
}

// Pop removes and returns the top of the operand stack. It panics on an
// empty stack; that can only happen from a code generator defect, since a
// well-formed frame's stack effects always balance.
func (f *Frame) Pop() any {
	n := len(f.Operands)
	v := f.Operands[n-1]
	f.Operands = f.Operands[:n-1]
	return v
}

// SetVar writes v to local slot i, growing Variables as needed.
func (f *Frame) SetVar(i int, v any) {
	for len(f.Variables) <= i {
		f.Variables = append(f.Variables, nil)
		f.set = append(f.set, false)
	}
	f.Variables[i] = v
	f.set[i] = true
}

// GetVar reads local slot i and whether it has been set.
func (f *Frame) GetVar(i int) (any, bool) {
	if i < 0 || i >= len(f.Variables) || !f.set[i] {
		return nil, false
	}
	return f.Variables[i], true
}

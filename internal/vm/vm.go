// Package vm implements the MyPL virtual machine: a dispatch loop over
// frame templates, a call stack, and a heap for structs, arrays, and
// dicts.
package vm

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"mypl/internal/errs"
	"mypl/internal/frame"
	"mypl/internal/heap"
	"mypl/internal/opcode"
)

// VM executes frame templates produced by internal/codegen against a
// single heap and call stack. It is single-use: construct one per run.
type VM struct {
	templates map[string]*frame.Template
	heap      *heap.Heap
	stack     []*frame.Frame
	stdout    io.Writer
	stdin     *bufio.Reader
}

// New returns a VM ready to Run the given frame templates, writing WRITE
// output to stdout and reading READ input from stdin.
func New(templates map[string]*frame.Template, stdout io.Writer, stdin io.Reader) *VM {
	return &VM{
		templates: templates,
		heap:      heap.New(),
		stdout:    stdout,
		stdin:     bufio.NewReader(stdin),
	}
}

// Run loads and executes "main". main must take no parameters.
func (m *VM) Run() error {
	mainTmpl, ok := m.templates["main"]
	if !ok {
		return errs.NewVMError("no 'main' function defined", "", 0, "")
	}
	m.stack = []*frame.Frame{frame.NewFrame(mainTmpl)}
	return m.dispatch()
}

func (m *VM) top() *frame.Frame { return m.stack[len(m.stack)-1] }

func (m *VM) dispatch() error {
	for len(m.stack) > 0 {
		f := m.top()
		if f.PC >= len(f.Template.Instructions) {
			return m.vmError(f, "fell off the end of a frame without returning", opcode.Instruction{})
		}
		instr := f.Template.Instructions[f.PC]
		pc := f.PC
		f.PC++
		if err := m.step(f, instr, pc); err != nil {
			return err
		}
	}
	return nil
}

func (m *VM) vmError(f *frame.Frame, msg string, instr opcode.Instruction) error {
	return errs.NewVMError(msg, f.Template.FunName, f.PC-1, instr.String())
}

func (m *VM) step(f *frame.Frame, instr opcode.Instruction, pc int) error {
	fail := func(msg string) error { f.PC = pc + 1; return m.vmError(f, msg, instr) }

	switch instr.Opcode {
	case opcode.PUSH:
		f.Push(instr.Operand)
	case opcode.POP:
		f.Pop()
	case opcode.DUP:
		v := f.Pop()
		f.Push(v)
		f.Push(v)
	case opcode.WRITE:
		fmt.Fprint(m.stdout, formatValue(f.Pop()))
	case opcode.STORE:
		f.SetVar(instr.Operand.(int), f.Pop())
	case opcode.LOAD:
		v, ok := f.GetVar(instr.Operand.(int))
		if !ok {
			return fail(fmt.Sprintf("local slot %d is unset", instr.Operand))
		}
		f.Push(v)

	case opcode.ADD, opcode.SUB, opcode.MUL, opcode.DIV:
		rhs, lhs := f.Pop(), f.Pop()
		v, err := arith(instr.Opcode, lhs, rhs)
		if err != nil {
			return fail(err.Error())
		}
		f.Push(v)

	case opcode.AND, opcode.OR:
		rhs, lhs := f.Pop(), f.Pop()
		lb, lok := lhs.(bool)
		rb, rok := rhs.(bool)
		if !lok || !rok {
			return fail("logical operator requires bool operands")
		}
		if instr.Opcode == opcode.AND {
			f.Push(lb && rb)
		} else {
			f.Push(lb || rb)
		}
	case opcode.NOT:
		b, ok := f.Pop().(bool)
		if !ok {
			return fail("'not' requires a bool operand")
		}
		f.Push(!b)

	case opcode.CMPLT, opcode.CMPLE:
		rhs, lhs := f.Pop(), f.Pop()
		v, err := compareOrdered(instr.Opcode, lhs, rhs)
		if err != nil {
			return fail(err.Error())
		}
		f.Push(v)
	case opcode.CMPEQ:
		rhs, lhs := f.Pop(), f.Pop()
		f.Push(lhs == rhs)
	case opcode.CMPNE:
		rhs, lhs := f.Pop(), f.Pop()
		f.Push(lhs != rhs)

	case opcode.JMP:
		f.PC = instr.Operand.(int)
	case opcode.JMPF:
		b, ok := f.Pop().(bool)
		if !ok {
			return fail("branch condition must be bool")
		}
		if !b {
			f.PC = instr.Operand.(int)
		}
	case opcode.NOP:
		// no-op, used only as a jump target

	case opcode.CALL:
		name := instr.Operand.(string)
		tmpl, ok := m.templates[name]
		if !ok {
			return fail(fmt.Sprintf("call to undefined function '%s'", name))
		}
		callee := frame.NewFrame(tmpl)
		for i := 0; i < tmpl.ArgCount; i++ {
			callee.Push(f.Pop())
		}
		m.stack = append(m.stack, callee)
	case opcode.RET:
		v := f.Pop()
		m.stack = m.stack[:len(m.stack)-1]
		if len(m.stack) > 0 {
			m.top().Push(v)
		}

	case opcode.ALLOCS:
		f.Push(m.heap.AllocStruct())
	case opcode.SETF:
		v, id := f.Pop(), f.Pop()
		sid, ok := id.(heap.ID)
		if !ok {
			return fail("cannot set a field on a null or non-struct value")
		}
		if !m.heap.SetField(sid, instr.Operand.(string), v) {
			return fail("unknown struct instance")
		}
	case opcode.GETF:
		id := f.Pop()
		sid, ok := id.(heap.ID)
		if !ok {
			return fail("cannot read a field of a null or non-struct value")
		}
		v, ok := m.heap.GetField(sid, instr.Operand.(string))
		if !ok {
			return fail(fmt.Sprintf("struct has no field '%s'", instr.Operand))
		}
		f.Push(v)

	case opcode.ALLOCA:
		n := f.Pop()
		ni, ok := n.(int64)
		if !ok || ni < 0 {
			return fail("array size must be a non-negative int")
		}
		f.Push(m.heap.AllocArray(int(ni)))
	case opcode.GETI:
		i, id := f.Pop(), f.Pop()
		aid, ok := id.(heap.ID)
		ii, iok := i.(int64)
		if !ok || !iok {
			return fail("null array or index")
		}
		v, ok := m.heap.GetIndex(aid, int(ii))
		if !ok {
			return fail("array index out of bounds")
		}
		f.Push(v)
	case opcode.SETI:
		v, i, id := f.Pop(), f.Pop(), f.Pop()
		aid, ok := id.(heap.ID)
		ii, iok := i.(int64)
		if !ok || !iok {
			return fail("null array or index")
		}
		if !m.heap.SetIndex(aid, int(ii), v) {
			return fail("array index out of bounds")
		}

	case opcode.ALLOCD:
		f.Push(m.heap.AllocDict())
	case opcode.GETD:
		k, id := f.Pop(), f.Pop()
		did, ok := id.(heap.ID)
		if !ok {
			return fail("null dict")
		}
		v, ok := m.heap.Get(did, k)
		if !ok {
			return fail("dict has no such key")
		}
		f.Push(v)
	case opcode.SETD:
		v, k, id := f.Pop(), f.Pop(), f.Pop()
		did, ok := id.(heap.ID)
		if !ok {
			return fail("null dict")
		}
		m.heap.Set(did, k, v)
	case opcode.IN:
		k, id := f.Pop(), f.Pop()
		did, ok := id.(heap.ID)
		if !ok {
			return fail("null dict")
		}
		f.Push(m.heap.Has(did, k))
	case opcode.KEYS:
		id := f.Pop()
		did, ok := id.(heap.ID)
		if !ok {
			return fail("null dict")
		}
		keys, ok := m.heap.Keys(did)
		if !ok {
			return fail("unknown dict instance")
		}
		arrID := m.heap.AllocArray(len(keys))
		for i, k := range keys {
			m.heap.SetIndex(arrID, i, k)
		}
		f.Push(arrID)

	case opcode.READ:
		// ReadString returns io.EOF once the stream is exhausted, along with
		// whatever partial line (possibly empty) it already buffered; that
		// partial content is still a valid read, so the error is ignored.
		line, _ := m.stdin.ReadString('\n')
		f.Push(trimNewline(line))
	case opcode.LEN:
		v, err := m.length(f.Pop())
		if err != nil {
			return fail(err.Error())
		}
		f.Push(v)
	case opcode.TOINT:
		v, err := toInt(f.Pop())
		if err != nil {
			return fail(err.Error())
		}
		f.Push(v)
	case opcode.TODBL:
		v, err := toDouble(f.Pop())
		if err != nil {
			return fail(err.Error())
		}
		f.Push(v)
	case opcode.TOSTR:
		v, err := toStr(f.Pop())
		if err != nil {
			return fail(err.Error())
		}
		f.Push(v)
	case opcode.GETC:
		s, i := f.Pop(), f.Pop()
		str, sok := s.(string)
		ii, iok := i.(int64)
		if !sok || !iok {
			return fail("null string or index")
		}
		if ii < 0 || int(ii) >= len(str) {
			return fail("string index out of bounds")
		}
		f.Push(string(str[ii]))

	default:
		return fail(fmt.Sprintf("unimplemented opcode %s", instr.Opcode))
	}
	return nil
}

func arith(op opcode.Op, lhs, rhs any) (any, error) {
	if lhs == nil || rhs == nil {
		return nil, fmt.Errorf("null cannot be used in an arithmetic operation")
	}
	if li, lok := lhs.(int64); lok {
		ri, rok := rhs.(int64)
		if !rok {
			return nil, fmt.Errorf("mismatched operand types")
		}
		switch op {
		case opcode.ADD:
			return li + ri, nil
		case opcode.SUB:
			return li - ri, nil
		case opcode.MUL:
			return li * ri, nil
		case opcode.DIV:
			if ri == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return li / ri, nil
		}
	}
	if lf, lok := lhs.(float64); lok {
		rf, rok := rhs.(float64)
		if !rok {
			return nil, fmt.Errorf("mismatched operand types")
		}
		switch op {
		case opcode.ADD:
			return lf + rf, nil
		case opcode.SUB:
			return lf - rf, nil
		case opcode.MUL:
			return lf * rf, nil
		case opcode.DIV:
			if rf == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return lf / rf, nil
		}
	}
	if ls, lok := lhs.(string); lok && op == opcode.ADD {
		rs, rok := rhs.(string)
		if !rok {
			return nil, fmt.Errorf("mismatched operand types")
		}
		return ls + rs, nil
	}
	return nil, fmt.Errorf("unsupported operand types for arithmetic")
}

func compareOrdered(op opcode.Op, lhs, rhs any) (bool, error) {
	if lhs == nil || rhs == nil {
		return false, fmt.Errorf("null cannot be compared with '<' or '<='")
	}
	switch l := lhs.(type) {
	case int64:
		r, ok := rhs.(int64)
		if !ok {
			return false, fmt.Errorf("mismatched operand types")
		}
		if op == opcode.CMPLT {
			return l < r, nil
		}
		return l <= r, nil
	case float64:
		r, ok := rhs.(float64)
		if !ok {
			return false, fmt.Errorf("mismatched operand types")
		}
		if op == opcode.CMPLT {
			return l < r, nil
		}
		return l <= r, nil
	case string:
		r, ok := rhs.(string)
		if !ok {
			return false, fmt.Errorf("mismatched operand types")
		}
		if op == opcode.CMPLT {
			return l < r, nil
		}
		return l <= r, nil
	default:
		return false, fmt.Errorf("unsupported operand types for comparison")
	}
}

func (m *VM) length(v any) (int64, error) {
	switch x := v.(type) {
	case string:
		return int64(len(x)), nil
	case heap.ID:
		if n, ok := m.heap.ArrayLen(x); ok {
			return int64(n), nil
		}
		if n, ok := m.heap.DictLen(x); ok {
			return int64(n), nil
		}
		return 0, fmt.Errorf("unknown heap instance")
	default:
		return 0, fmt.Errorf("'length' requires a string, array, or dict")
	}
}

func toInt(v any) (int64, error) {
	switch x := v.(type) {
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to int", x)
		}
		return n, nil
	case float64:
		return int64(x), nil
	default:
		return 0, fmt.Errorf("cannot convert value to int")
	}
}

func toDouble(v any) (float64, error) {
	switch x := v.(type) {
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to double", x)
		}
		return f, nil
	case int64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("cannot convert value to double")
	}
}

func toStr(v any) (string, error) {
	switch x := v.(type) {
	case int64:
		return strconv.FormatInt(x, 10), nil
	case float64:
		return formatDouble(x), nil
	default:
		return "", fmt.Errorf("cannot convert value to string")
	}
}

func formatDouble(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case bool:
		if x {
			return "true"
		}
		return "false"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatDouble(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func trimNewline(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	if len(s) > 0 && s[len(s)-1] == '\r' {
		s = s[:len(s)-1]
	}
	return s
}

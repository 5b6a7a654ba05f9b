package machine

import (
	"fmt"
	"io"
	"os"
)

const (
	// FramesMax bounds the call depth.
	FramesMax = 64
	// StackMax is the fixed capacity of the value stack.
	StackMax = FramesMax * 256
)

// A callFrame records one call of a closure: the instruction pointer into
// its function's chunk and the base index of its stack window. Slot 0 of
// the window holds the callee itself.
type callFrame struct {
	closure *Closure
	ip      int
	slots   int
}

// Machine is the virtual machine: the value stack, the call frames, the
// globals and the open-upvalue list, sharing a heap with the compiler. A
// machine runs one function at a time to completion; it is not safe for
// concurrent use.
type Machine struct {
	cfg    Config
	heap   *Heap
	stdout io.Writer
	stderr io.Writer

	stack        []Value
	top          int
	frames       [FramesMax]callFrame
	frameCount   int
	openUpvalues *Upvalue // sorted strictly descending by slot
	globals      Table
}

// New creates a machine and its heap. Stdout receives print output, stderr
// receives runtime errors and diagnostics; nil selects os.Stdout and
// os.Stderr.
func New(cfg Config, stdout, stderr io.Writer) *Machine {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	m := &Machine{
		cfg:    cfg,
		stdout: stdout,
		stderr: stderr,
		stack:  make([]Value, StackMax),
	}
	m.heap = NewHeap(cfg, stderr)
	m.heap.AddRoots(m)
	return m
}

// Heap returns the machine's heap, shared with the compiler so that
// compile-time constants are managed objects.
func (m *Machine) Heap() *Heap { return m.heap }

// Free tears the machine down, draining the heap's object list. The
// machine is unusable afterwards.
func (m *Machine) Free() {
	m.resetStack()
	m.globals = Table{}
	m.heap.Free()
}

// RuntimeError is returned by RunFunction when execution fails. The
// message and stack trace have already been written to stderr when it is
// returned.
type RuntimeError struct {
	Msg string
}

func (e *RuntimeError) Error() string { return e.Msg }

// DefineNative installs a host function under name in the globals. The
// stack gymnastics keep both objects visible to the collector while the
// globals table grows.
func (m *Machine) DefineNative(name string, fn NativeFn) {
	m.push(ObjectValue(m.heap.CopyString(name)))
	m.push(ObjectValue(m.heap.NewNative(fn)))
	s, _ := AsString(m.stack[m.top-2])
	m.globals.Set(s, m.stack[m.top-1])
	m.pop()
	m.pop()
}

// RunFunction wraps the compiled top-level function in a closure and runs
// it to completion. On failure the error is a *RuntimeError and the stack
// has been reset.
func (m *Machine) RunFunction(fn *Function) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(stackOverflow); ok {
				err = m.runtimeError("Stack overflow.")
				return
			}
			panic(r)
		}
	}()

	m.push(ObjectValue(fn))
	closure := m.heap.NewClosure(fn)
	m.pop()
	m.push(ObjectValue(closure))
	if err := m.call(closure, 0); err != nil {
		return err
	}
	return m.run()
}

// MarkRoots implements RootMarker: the value stack, every frame's closure,
// the open upvalues and the globals are roots. The interning table is
// deliberately absent; it is weak.
func (m *Machine) MarkRoots(h *Heap) {
	for i := 0; i < m.top; i++ {
		h.MarkValue(m.stack[i])
	}
	for i := 0; i < m.frameCount; i++ {
		h.MarkObject(m.frames[i].closure)
	}
	for u := m.openUpvalues; u != nil; u = u.next {
		h.MarkObject(u)
	}
	h.MarkTable(&m.globals)
}

// StackDepth returns the number of live value-stack slots. It is zero
// between top-level statements.
func (m *Machine) StackDepth() int { return m.top }

// stackOverflow is the panic payload used when a push exceeds the fixed
// stack; RunFunction converts it into a runtime error.
type stackOverflow struct{}

func (m *Machine) push(v Value) {
	if m.top == len(m.stack) {
		panic(stackOverflow{})
	}
	m.stack[m.top] = v
	m.top++
}

func (m *Machine) pop() Value {
	m.top--
	return m.stack[m.top]
}

func (m *Machine) peek(distance int) Value {
	return m.stack[m.top-distance-1]
}

func (m *Machine) resetStack() {
	m.top = 0
	m.frameCount = 0
	m.openUpvalues = nil
}

// runtimeError reports a fatal execution error: the message, then the
// stack trace from the innermost frame outward, then a stack reset.
func (m *Machine) runtimeError(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(m.stderr, msg)

	for i := m.frameCount - 1; i >= 0; i-- {
		frame := &m.frames[i]
		fn := frame.closure.Fn
		line := fn.Chunk.Lines[frame.ip-1]
		if fn.Name == nil {
			fmt.Fprintf(m.stderr, "[line %d] in script\n", line)
		} else {
			fmt.Fprintf(m.stderr, "[line %d] in %s()\n", line, fn.Name)
		}
	}

	m.resetStack()
	return &RuntimeError{Msg: msg}
}

func (m *Machine) call(c *Closure, argc int) error {
	if argc != c.Fn.Arity {
		return m.runtimeError("Expected %d arguments but got %d.", c.Fn.Arity, argc)
	}
	if m.frameCount == FramesMax {
		return m.runtimeError("Stack overflow.")
	}
	frame := &m.frames[m.frameCount]
	m.frameCount++
	frame.closure = c
	frame.ip = 0
	frame.slots = m.top - argc - 1
	return nil
}

func (m *Machine) callValue(callee Value, argc int) error {
	switch o := callee.Obj().(type) {
	case *Closure:
		return m.call(o, argc)
	case *Native:
		result := o.fn(m.stack[m.top-argc : m.top])
		m.top -= argc + 1
		m.push(result)
		return nil
	}
	return m.runtimeError("Can only call functions and classes.")
}

// captureUpvalue returns the open upvalue for a stack slot, reusing an
// existing one so that every closure over the same variable shares it. The
// open list is kept strictly descending by slot.
func (m *Machine) captureUpvalue(slot int) *Upvalue {
	var prev *Upvalue
	u := m.openUpvalues
	for u != nil && u.slot > slot {
		prev = u
		u = u.next
	}
	if u != nil && u.slot == slot {
		return u
	}

	created := m.heap.newUpvalue(slot)
	created.next = u
	if prev == nil {
		m.openUpvalues = created
	} else {
		prev.next = created
	}
	return created
}

// closeUpvalues closes every open upvalue at or above the given slot,
// moving the stack value into the upvalue's own cell.
func (m *Machine) closeUpvalues(from int) {
	for m.openUpvalues != nil && m.openUpvalues.slot >= from {
		u := m.openUpvalues
		u.closed = m.stack[u.slot]
		u.slot = -1
		m.openUpvalues = u.next
		u.next = nil
	}
}

func (m *Machine) readByte(frame *callFrame) byte {
	b := frame.closure.Fn.Chunk.Code[frame.ip]
	frame.ip++
	return b
}

func (m *Machine) readShort(frame *callFrame) int {
	code := frame.closure.Fn.Chunk.Code
	hi, lo := code[frame.ip], code[frame.ip+1]
	frame.ip += 2
	return int(hi)<<8 | int(lo)
}

func (m *Machine) readConstant(frame *callFrame) Value {
	return frame.closure.Fn.Chunk.Constants[m.readByte(frame)]
}

func (m *Machine) readString(frame *callFrame) *String {
	s, _ := AsString(m.readConstant(frame))
	return s
}

// run is the dispatch loop over the current frame's instruction pointer.
func (m *Machine) run() error {
	frame := &m.frames[m.frameCount-1]

	for {
		if m.cfg.TraceExecution {
			m.traceInstruction(frame)
		}

		switch op := Opcode(m.readByte(frame)); op {
		case CONSTANT:
			m.push(m.readConstant(frame))

		case NIL:
			m.push(Nil)
		case TRUE:
			m.push(True)
		case FALSE:
			m.push(False)
		case POP:
			m.pop()

		case GETLOCAL:
			slot := int(m.readByte(frame))
			m.push(m.stack[frame.slots+slot])

		case SETLOCAL:
			slot := int(m.readByte(frame))
			m.stack[frame.slots+slot] = m.peek(0)

		case GETGLOBAL:
			name := m.readString(frame)
			v, ok := m.globals.Get(name)
			if !ok {
				return m.runtimeError("Undefined variable '%s'.", name)
			}
			m.push(v)

		case DEFINEGLOBAL:
			name := m.readString(frame)
			m.globals.Set(name, m.peek(0))
			m.pop()

		case SETGLOBAL:
			name := m.readString(frame)
			if m.globals.Set(name, m.peek(0)) {
				// the table must not retain the accidental definition
				m.globals.Delete(name)
				return m.runtimeError("Undefined variable '%s'.", name)
			}

		case GETUPVALUE:
			slot := int(m.readByte(frame))
			u := frame.closure.Upvalues[slot]
			if u.slot >= 0 {
				m.push(m.stack[u.slot])
			} else {
				m.push(u.closed)
			}

		case SETUPVALUE:
			slot := int(m.readByte(frame))
			u := frame.closure.Upvalues[slot]
			if u.slot >= 0 {
				m.stack[u.slot] = m.peek(0)
			} else {
				u.closed = m.peek(0)
			}

		case EQUAL:
			b := m.pop()
			a := m.pop()
			m.push(Bool(Equal(a, b)))

		case GREATER, LESS, SUBTRACT, MULTIPLY, DIVIDE:
			if err := m.binaryNum(op); err != nil {
				return err
			}

		case ADD:
			switch {
			case isString(m.peek(0)) && isString(m.peek(1)):
				m.concatenate()
			case m.peek(0).IsNumber() && m.peek(1).IsNumber():
				b := m.pop().Num()
				a := m.pop().Num()
				m.push(Number(a + b))
			default:
				return m.runtimeError("Operands must be two numbers or two strings.")
			}

		case NOT:
			m.push(Bool(!Truth(m.pop())))

		case NEGATE:
			if !m.peek(0).IsNumber() {
				return m.runtimeError("Operand must be a number.")
			}
			m.push(Number(-m.pop().Num()))

		case PRINT:
			fmt.Fprintln(m.stdout, m.pop())

		case JUMP:
			offset := m.readShort(frame)
			frame.ip += offset

		case JUMPFALSE:
			// the condition stays on the stack; the compiler pops it
			offset := m.readShort(frame)
			if !Truth(m.peek(0)) {
				frame.ip += offset
			}

		case LOOP:
			offset := m.readShort(frame)
			frame.ip -= offset

		case CALL:
			argc := int(m.readByte(frame))
			if err := m.callValue(m.peek(argc), argc); err != nil {
				return err
			}
			frame = &m.frames[m.frameCount-1]

		case CLOSURE:
			fn, _ := AsFunction(m.readConstant(frame))
			closure := m.heap.NewClosure(fn)
			m.push(ObjectValue(closure))
			for i := range closure.Upvalues {
				isLocal := m.readByte(frame)
				index := int(m.readByte(frame))
				if isLocal != 0 {
					closure.Upvalues[i] = m.captureUpvalue(frame.slots + index)
				} else {
					closure.Upvalues[i] = frame.closure.Upvalues[index]
				}
			}

		case CLOSEUPVALUE:
			m.closeUpvalues(m.top - 1)
			m.pop()

		case RETURN:
			result := m.pop()
			m.closeUpvalues(frame.slots)
			m.frameCount--
			if m.frameCount == 0 {
				m.pop()
				return nil
			}
			m.top = frame.slots
			m.push(result)
			frame = &m.frames[m.frameCount-1]

		default:
			return m.runtimeError("Unknown opcode %d.", op)
		}
	}
}

func (m *Machine) binaryNum(op Opcode) error {
	if !m.peek(0).IsNumber() || !m.peek(1).IsNumber() {
		return m.runtimeError("Operands must be numbers.")
	}
	b := m.pop().Num()
	a := m.pop().Num()
	switch op {
	case GREATER:
		m.push(Bool(a > b))
	case LESS:
		m.push(Bool(a < b))
	case SUBTRACT:
		m.push(Number(a - b))
	case MULTIPLY:
		m.push(Number(a * b))
	case DIVIDE:
		m.push(Number(a / b))
	}
	return nil
}

// concatenate joins the two strings on top of the stack. The operands stay
// on the stack until the result exists so the collector can see them.
func (m *Machine) concatenate() {
	b, _ := AsString(m.peek(0))
	a, _ := AsString(m.peek(1))
	result := m.heap.TakeString(a.str + b.str)
	m.pop()
	m.pop()
	m.push(ObjectValue(result))
}

func isString(v Value) bool {
	_, ok := AsString(v)
	return ok
}

// traceInstruction dumps the stack and the disassembled instruction about
// to execute.
func (m *Machine) traceInstruction(frame *callFrame) {
	fmt.Fprint(m.stderr, "          ")
	for i := 0; i < m.top; i++ {
		fmt.Fprintf(m.stderr, "[ %s ]", m.stack[i])
	}
	fmt.Fprintln(m.stderr)
	DisassembleInstruction(m.stderr, &frame.closure.Fn.Chunk, frame.ip)
}

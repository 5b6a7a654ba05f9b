package machine

// ObjKind discriminates the heap object variants.
type ObjKind uint8

const (
	KindString ObjKind = iota
	KindFunction
	KindNative
	KindClosure
	KindUpvalue
)

// objHeader is the common header embedded in every heap object: the kind
// tag, the GC mark bit and the next link of the heap's intrusive object
// list.
type objHeader struct {
	kind   ObjKind
	marked bool
	next   Object
	bytes  int // size charged to the heap at allocation time
}

func (h *objHeader) header() *objHeader { return h }

// Object is implemented by every heap-allocated value. All objects are
// created through the Heap so that they are linked into the object list and
// accounted for by the collector.
type Object interface {
	header() *objHeader
	// String renders the object in the canonical print format.
	String() string
}

// String is an immutable interned string. Because of interning, two string
// values with the same content are the same object, so identity comparison
// is content comparison.
type String struct {
	objHeader
	str  string
	hash uint32
}

func (s *String) String() string { return s.str }

// Len returns the length of the string in bytes.
func (s *String) Len() int { return len(s.str) }

// Hash returns the precomputed FNV-1a hash of the contents.
func (s *String) Hash() uint32 { return s.hash }

// Function is a compiled function: its bytecode chunk, arity and upvalue
// count. Name is nil for the top-level script.
type Function struct {
	objHeader
	Arity        int
	UpvalueCount int
	Chunk        Chunk
	Name         *String
}

func (f *Function) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return "<fn " + f.Name.str + ">"
}

// NativeFn is the host-provided callable ABI. The args slice is a transient
// view of the value stack: natives must not retain it across calls back
// into the machine, as any allocation may move the collector.
type NativeFn func(args []Value) Value

// Native wraps a host function as a callable heap object.
type Native struct {
	objHeader
	fn NativeFn
}

func (n *Native) String() string { return "<native fn>" }

// Closure pairs a function with the upvalues captured when it was created.
type Closure struct {
	objHeader
	Fn       *Function
	Upvalues []*Upvalue
}

func (c *Closure) String() string { return c.Fn.String() }

// Upvalue is the indirection through which a closure reaches a variable of
// an enclosing function. While the variable lives on the stack the upvalue
// is open and slot is its stack index; when the variable's scope exits the
// value moves into closed and slot becomes -1. Open upvalues are threaded
// on the machine's open list in strictly descending slot order.
type Upvalue struct {
	objHeader
	slot   int
	closed Value
	next   *Upvalue
}

func (u *Upvalue) String() string { return "upvalue" }

// fnv-1a
const (
	hashOffset = 2166136261
	hashPrime  = 16777619
)

func hashString(s string) uint32 {
	h := uint32(hashOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= hashPrime
	}
	return h
}

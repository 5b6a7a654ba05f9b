package machine

import (
	"fmt"
	"io"
	"strings"
)

// Heap owns every runtime object: the intrusive allocation list walked at
// sweep time, the weak string-interning table and the collector bookkeeping.
// A heap is created by New and shared with the compiler so that compile-time
// constants live in the same managed space as runtime values.
type Heap struct {
	cfg    Config
	stderr io.Writer

	objects        Object // head of the allocation list, newest first
	strings        Table  // interning table; keys are weak
	bytesAllocated int
	nextGC         int

	gray       []Object
	roots      []RootMarker
	temps      []Value // in-flight allocations protected from collection
	collecting bool
}

// RootMarker is implemented by the owners of GC roots: the machine (stack,
// frames, globals, open upvalues) and the compiler (the chain of in-flight
// functions). Implementations call MarkValue/MarkObject for each root.
type RootMarker interface {
	MarkRoots(h *Heap)
}

// NewHeap returns an empty heap. Diagnostics (GC log) go to stderr.
func NewHeap(cfg Config, stderr io.Writer) *Heap {
	if cfg.NextGC <= 0 {
		cfg.NextGC = DefaultNextGC
	}
	return &Heap{cfg: cfg, stderr: stderr, nextGC: cfg.NextGC}
}

// AddRoots registers a root provider for the lifetime of its work; the
// compiler registers itself around a compilation, the machine for its whole
// lifetime.
func (h *Heap) AddRoots(m RootMarker) {
	h.roots = append(h.roots, m)
}

// RemoveRoots unregisters a previously added root provider.
func (h *Heap) RemoveRoots(m RootMarker) {
	for i, r := range h.roots {
		if r == m {
			h.roots = append(h.roots[:i], h.roots[i+1:]...)
			return
		}
	}
}

// protect pins a value as a temporary root across an allocation that could
// trigger a collection; release drops the most recent pin.
func (h *Heap) protect(v Value) { h.temps = append(h.temps, v) }
func (h *Heap) release()        { h.temps = h.temps[:len(h.temps)-1] }

// allocate links o into the object list and charges size bytes, possibly
// collecting first. The object being created is not yet linked when the
// collection runs, so it cannot be swept.
func (h *Heap) allocate(o Object, size int) {
	h.bytesAllocated += size
	if h.cfg.StressGC || h.bytesAllocated > h.nextGC {
		h.Collect()
	}

	hdr := o.header()
	hdr.bytes = size
	hdr.next = h.objects
	h.objects = o

	if h.cfg.LogGC {
		fmt.Fprintf(h.stderr, "%p allocate %d for %d\n", o, size, hdr.kind)
	}
}

// CopyString interns the contents of s, allocating a new string object only
// when no live string with the same bytes exists. The bytes are copied so
// that the returned object does not pin the source text s was sliced from.
func (h *Heap) CopyString(s string) *String {
	hash := hashString(s)
	if interned := h.strings.findString(s, hash); interned != nil {
		return interned
	}
	return h.allocateString(strings.Clone(s), hash)
}

// TakeString is CopyString for a buffer the caller already owns (such as a
// concatenation result): on an interning hit the buffer is simply dropped.
func (h *Heap) TakeString(s string) *String {
	hash := hashString(s)
	if interned := h.strings.findString(s, hash); interned != nil {
		return interned
	}
	return h.allocateString(s, hash)
}

func (h *Heap) allocateString(s string, hash uint32) *String {
	str := &String{objHeader: objHeader{kind: KindString}, str: s, hash: hash}
	h.allocate(str, sizeString+len(s))

	// The interning insert below can grow the table; keep the fresh string
	// visible to the collector until it is reachable through it.
	h.protect(ObjectValue(str))
	h.strings.Set(str, Nil)
	h.release()

	return str
}

// NewFunction allocates an empty function; the compiler fills in its chunk,
// arity and upvalue count.
func (h *Heap) NewFunction() *Function {
	fn := &Function{objHeader: objHeader{kind: KindFunction}}
	h.allocate(fn, sizeFunction)
	return fn
}

// NewNative wraps fn as a callable object.
func (h *Heap) NewNative(fn NativeFn) *Native {
	n := &Native{objHeader: objHeader{kind: KindNative}, fn: fn}
	h.allocate(n, sizeNative)
	return n
}

// NewClosure allocates a closure over fn with room for its upvalues; the
// slots are filled by the CLOSURE instruction.
func (h *Heap) NewClosure(fn *Function) *Closure {
	c := &Closure{
		objHeader: objHeader{kind: KindClosure},
		Fn:        fn,
		Upvalues:  make([]*Upvalue, fn.UpvalueCount),
	}
	h.allocate(c, sizeClosure+sizeSlot*fn.UpvalueCount)
	return c
}

func (h *Heap) newUpvalue(slot int) *Upvalue {
	u := &Upvalue{objHeader: objHeader{kind: KindUpvalue}, slot: slot}
	h.allocate(u, sizeUpvalue)
	return u
}

// BytesAllocated returns the current accounted heap size.
func (h *Heap) BytesAllocated() int { return h.bytesAllocated }

// Objects iterates the allocation list, calling fn for each live object.
func (h *Heap) Objects(fn func(Object) bool) {
	for o := h.objects; o != nil; o = o.header().next {
		if !fn(o) {
			return
		}
	}
}

// Free drops every object and the interning table. The heap is unusable
// afterwards; this is the teardown half of the machine lifecycle.
func (h *Heap) Free() {
	o := h.objects
	for o != nil {
		next := o.header().next
		o.header().next = nil
		o = next
	}
	h.objects = nil
	h.strings = Table{}
	h.gray = nil
	h.roots = nil
	h.temps = nil
	h.bytesAllocated = 0
}

// Approximate per-object sizes used for the collection trigger. They only
// need to grow with real memory use, not match it exactly.
const (
	sizeString   = 48
	sizeFunction = 160
	sizeNative   = 32
	sizeClosure  = 48
	sizeUpvalue  = 56
	sizeSlot     = 8
)

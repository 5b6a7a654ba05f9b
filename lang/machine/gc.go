package machine

import "fmt"

// Collect runs a full stop-the-world mark-and-sweep collection: mark every
// root, trace the gray worklist to a fixpoint, drop interning entries whose
// key died, then sweep the allocation list. The collector is synchronous
// and non-reentrant; a collection triggered while one is in progress is a
// no-op.
func (h *Heap) Collect() {
	if h.collecting {
		return
	}
	h.collecting = true
	defer func() { h.collecting = false }()

	if h.cfg.LogGC {
		fmt.Fprintf(h.stderr, "-- gc begin\n")
	}
	before := h.bytesAllocated

	h.markRoots()
	h.traceReferences()
	h.removeWhiteStrings()
	h.sweep()

	h.nextGC = h.bytesAllocated * 2
	if h.nextGC < h.cfg.NextGC {
		h.nextGC = h.cfg.NextGC
	}

	if h.cfg.LogGC {
		fmt.Fprintf(h.stderr, "-- gc end\n")
		fmt.Fprintf(h.stderr, "   collected %d bytes (from %d to %d) next at %d\n",
			before-h.bytesAllocated, before, h.bytesAllocated, h.nextGC)
	}
}

func (h *Heap) markRoots() {
	for _, v := range h.temps {
		h.MarkValue(v)
	}
	for _, m := range h.roots {
		m.MarkRoots(h)
	}
}

// MarkValue marks the object payload of v, if any.
func (h *Heap) MarkValue(v Value) {
	if v.kind == KindObject {
		h.MarkObject(v.obj)
	}
}

// MarkObject marks o and queues it on the gray worklist for tracing.
// Marking nil or an already-marked object is a no-op.
func (h *Heap) MarkObject(o Object) {
	if o == nil {
		return
	}
	hdr := o.header()
	if hdr.marked {
		return
	}
	if h.cfg.LogGC {
		fmt.Fprintf(h.stderr, "%p mark %s\n", o, o.String())
	}
	hdr.marked = true
	h.gray = append(h.gray, o)
}

// MarkTable marks every key and value of a strong table (the globals).
func (h *Heap) MarkTable(t *Table) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.key != nil {
			h.MarkObject(e.key)
		}
		h.MarkValue(e.value)
	}
}

func (h *Heap) traceReferences() {
	for len(h.gray) > 0 {
		o := h.gray[len(h.gray)-1]
		h.gray = h.gray[:len(h.gray)-1]
		h.blacken(o)
	}
}

// blacken marks the outgoing references of an already-marked object.
// Strings and natives are leaves. Nilable fields are checked before being
// boxed into Object: a nil *String or *Upvalue inside the interface would
// slip past MarkObject's nil check. The name is nil on every top-level
// script function, and a closure's upvalue slots are filled one by one by
// the CLOSURE instruction, so a collection can observe both mid-flight.
func (h *Heap) blacken(o Object) {
	switch o := o.(type) {
	case *Function:
		if o.Name != nil {
			h.MarkObject(o.Name)
		}
		for _, c := range o.Chunk.Constants {
			h.MarkValue(c)
		}
	case *Closure:
		h.MarkObject(o.Fn)
		for _, u := range o.Upvalues {
			if u != nil {
				h.MarkObject(u)
			}
		}
	case *Upvalue:
		h.MarkValue(o.closed)
	}
}

// removeWhiteStrings drops interning entries whose key is about to be
// swept. The interning table holds its keys weakly: it never keeps a
// string alive on its own.
func (h *Heap) removeWhiteStrings() {
	t := &h.strings
	for i := range t.entries {
		e := &t.entries[i]
		if e.key != nil && !e.key.marked {
			t.Delete(e.key)
		}
	}
}

// sweep unlinks and discards every unmarked object and clears the mark bit
// on survivors.
func (h *Heap) sweep() {
	var previous Object
	o := h.objects
	for o != nil {
		hdr := o.header()
		if hdr.marked {
			hdr.marked = false
			previous = o
			o = hdr.next
			continue
		}

		unreached := o
		o = hdr.next
		if previous != nil {
			previous.header().next = o
		} else {
			h.objects = o
		}
		h.free(unreached)
	}
}

// free returns an object's bytes to the accounting and severs its links so
// that stale references fail fast rather than resurrect the list.
func (h *Heap) free(o Object) {
	if h.cfg.LogGC {
		fmt.Fprintf(h.stderr, "%p free %s\n", o, o.String())
	}
	hdr := o.header()
	h.bytesAllocated -= hdr.bytes
	hdr.next = nil
}

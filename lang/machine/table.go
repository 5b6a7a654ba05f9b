package machine

// Table is an open-addressing hash table keyed by interned strings, probing
// linearly with stride 1. Deleted entries leave tombstones so that probe
// chains stay intact; count includes tombstones.
type Table struct {
	count   int
	entries []entry
}

// An entry slot is empty (key nil, value nil), a tombstone (key nil, value
// true) or live (key non-nil).
type entry struct {
	key   *String
	value Value
}

const tableMaxLoad = 0.75

// Get looks up key and returns its value.
func (t *Table) Get(key *String) (Value, bool) {
	if t.count == 0 {
		return Nil, false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return Nil, false
	}
	return e.value, true
}

// Set stores value under key, reporting whether the key was new.
func (t *Table) Set(key *String, value Value) bool {
	if float64(t.count+1) > float64(len(t.entries))*tableMaxLoad {
		t.adjustCapacity(growCapacity(len(t.entries)))
	}

	e := findEntry(t.entries, key)
	isNew := e.key == nil
	if isNew && e.value.IsNil() {
		// a fresh slot, not a recycled tombstone
		t.count++
	}
	e.key = key
	e.value = value
	return isNew
}

// Delete removes key, leaving a tombstone in its slot. It reports whether
// the key was present.
func (t *Table) Delete(key *String) bool {
	if t.count == 0 {
		return false
	}
	e := findEntry(t.entries, key)
	if e.key == nil {
		return false
	}
	e.key = nil
	e.value = True
	return true
}

// AddAll copies every live entry of t into dst.
func (t *Table) AddAll(dst *Table) {
	for i := range t.entries {
		e := &t.entries[i]
		if e.key != nil {
			dst.Set(e.key, e.value)
		}
	}
}

// Len returns the number of live entries.
func (t *Table) Len() int {
	n := 0
	for i := range t.entries {
		if t.entries[i].key != nil {
			n++
		}
	}
	return n
}

// findEntry returns the slot for key: its live entry if present, otherwise
// the first tombstone passed on the probe chain (so insertions reuse it),
// otherwise the terminating empty slot. Keys are interned so comparison is
// by pointer.
func findEntry(entries []entry, key *String) *entry {
	index := int(key.hash) % len(entries)
	var tombstone *entry
	for {
		e := &entries[index]
		if e.key == nil {
			if e.value.IsNil() {
				// empty slot terminates the chain
				if tombstone != nil {
					return tombstone
				}
				return e
			}
			if tombstone == nil {
				tombstone = e
			}
		} else if e.key == key {
			return e
		}
		index = (index + 1) % len(entries)
	}
}

// findString is the interning lookup: it probes like findEntry but compares
// length, hash and bytes instead of key identity, because the string being
// looked up is not interned yet. Returns nil when the probe chain ends at
// an empty slot.
func (t *Table) findString(s string, hash uint32) *String {
	if t.count == 0 {
		return nil
	}
	index := int(hash) % len(t.entries)
	for {
		e := &t.entries[index]
		if e.key == nil {
			if e.value.IsNil() {
				return nil
			}
			// tombstone, keep probing
		} else if e.key.Len() == len(s) && e.key.hash == hash && e.key.str == s {
			return e.key
		}
		index = (index + 1) % len(t.entries)
	}
}

// adjustCapacity rehashes every live entry into a new slot array.
// Tombstones are not carried over, so count is recomputed from live
// entries.
func (t *Table) adjustCapacity(capacity int) {
	entries := make([]entry, capacity)
	t.count = 0
	for i := range t.entries {
		e := &t.entries[i]
		if e.key == nil {
			continue
		}
		dst := findEntry(entries, e.key)
		dst.key = e.key
		dst.value = e.value
		t.count++
	}
	t.entries = entries
}

func growCapacity(n int) int {
	if n < 8 {
		return 8
	}
	return n * 2
}

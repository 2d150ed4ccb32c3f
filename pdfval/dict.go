package pdfval

// Dict is a PDF dictionary. Entries keep insertion order so that
// round-tripped and newly-built documents serialize reproducibly
// (same input, same output bytes), which plain map iteration in Go
// cannot guarantee on its own.
type Dict struct {
	keys   []Name
	values map[Name]Value
}

// NewDict returns an empty, ready-to-use Dict.
func NewDict() Dict {
	return Dict{values: make(map[Name]Value)}
}

func (Dict) isValue() {}

func (d Dict) Clone() Value {
	out := NewDict()
	for _, k := range d.keys {
		out.Set(k, d.values[k].Clone())
	}
	return out
}

// Len returns the number of entries.
func (d Dict) Len() int { return len(d.keys) }

// Get returns the value for name, or Null{} if absent (Dict lookup
// never fails; callers distinguish "absent" from "explicitly null"
// with Has when it matters, e.g. inherited page attributes).
func (d Dict) Get(name Name) Value {
	if v, ok := d.values[name]; ok {
		return v
	}
	return Null{}
}

// Has reports whether name is present, regardless of its value.
func (d Dict) Has(name Name) bool {
	_, ok := d.values[name]
	return ok
}

// Set inserts or overwrites name. Insertion order is preserved for an
// overwrite; a brand-new key is appended.
func (d *Dict) Set(name Name, v Value) {
	if d.values == nil {
		d.values = make(map[Name]Value)
	}
	if _, ok := d.values[name]; !ok {
		d.keys = append(d.keys, name)
	}
	d.values[name] = v
}

// Delete removes name, if present.
func (d *Dict) Delete(name Name) {
	if _, ok := d.values[name]; !ok {
		return
	}
	delete(d.values, name)
	for i, k := range d.keys {
		if k == name {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the entry names in insertion order. The returned slice
// must not be mutated by the caller.
func (d Dict) Keys() []Name { return d.keys }

// Range calls f for every entry, in insertion order.
func (d Dict) Range(f func(name Name, v Value)) {
	for _, k := range d.keys {
		f(k, d.values[k])
	}
}

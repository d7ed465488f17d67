package value

// hashFNV1a computes the 32-bit FNV-1a hash of s, precomputed once per
// interned string so that later hash-table lookups never re-scan the
// bytes.
func hashFNV1a(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

// InternString returns the unique *ObjString for chars, allocating and
// registering a new one the first time a given byte sequence is seen.
// Every later call with an identical sequence returns the same object,
// so object identity can stand in for content equality (spec's "two
// strings with the same byte content always share the same object").
func (h *Heap) InternString(chars string) *ObjString {
	if s, ok := h.strings.Get(chars); ok {
		return s
	}
	s := &ObjString{Chars: chars, Hash: hashFNV1a(chars)}
	// Insert into the (weak) intern table before linking into the
	// allocation list: the table lookup above already proved this is a
	// new entry, and there is no allocation between here and the return
	// that could trigger a collection, so no window exists where s is
	// unreachable-yet-needed.
	h.strings.Put(chars, s)
	h.register(s, int64(len(chars))+24)
	return s
}

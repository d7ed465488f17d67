package value

// MaybeCollect runs a collection if stress mode is enabled or
// bytesAllocated has grown past nextGC. markRoots is called to mark
// every root the caller currently owns (VM stack/frames/globals/
// upvalues, or the compiler's chain of in-progress functions).
func (h *Heap) MaybeCollect(markRoots func(mark func(Value))) {
	if h.StressGC || h.bytesAllocated > h.nextGC {
		h.collect(markRoots)
	}
}

// Collect forces a collection unconditionally, for tests that assert
// GC liveness/idempotence directly.
func (h *Heap) Collect(markRoots func(mark func(Value))) {
	h.collect(markRoots)
}

func (h *Heap) collect(markRoots func(mark func(Value))) {
	h.Collections++
	h.gray = h.gray[:0]

	if markRoots != nil {
		markRoots(h.mark)
	}
	h.traceReferences()
	h.sweepStrings()
	h.sweep()

	h.nextGC = h.bytesAllocated * 2
	if h.nextGC < initialNextGC {
		h.nextGC = initialNextGC
	}
}

// mark marks a single value: if it wraps an Obj that isn't already
// marked, the Obj is marked and pushed onto the gray worklist for
// later tracing.
func (h *Heap) mark(v Value) {
	if !v.IsObj() {
		return
	}
	o := v.obj
	if o == nil || o.isMarked() {
		return
	}
	o.setMarked(true)
	h.gray = append(h.gray, o)
}

// traceReferences pops objects off the gray worklist and blackens each
// one: Blacken calls h.mark on every Value the object directly
// references, which may push more objects onto the worklist.
func (h *Heap) traceReferences() {
	for len(h.gray) > 0 {
		n := len(h.gray) - 1
		o := h.gray[n]
		h.gray = h.gray[:n]
		o.Blacken(h.mark)
	}
}

// sweepStrings removes weak references to unmarked strings from the
// intern table before the main sweep frees them, so a freed string
// never lingers as a dangling key.
func (h *Heap) sweepStrings() {
	var dead []string
	h.strings.Iter(func(k string, v *ObjString) bool {
		if !v.isMarked() {
			dead = append(dead, k)
		}
		return false
	})
	for _, k := range dead {
		h.strings.Delete(k)
	}
}

// sweep walks the allocation list, unlinking and dropping every
// unmarked object and clearing the mark bit of every survivor so the
// next collection starts clean.
func (h *Heap) sweep() {
	var prev Obj
	obj := h.objects
	for obj != nil {
		if obj.isMarked() {
			obj.setMarked(false)
			prev = obj
			obj = obj.nextObj()
			continue
		}

		unreached := obj
		obj = obj.nextObj()
		if prev != nil {
			prev.setNextObj(obj)
		} else {
			h.objects = obj
		}
		// Go's own GC reclaims unreached's memory once nothing --
		// including this heap's own list, just unlinked above --
		// references it anymore; freeSize approximates the C original's
		// bytesAllocated -= size accounting at the free site.
		h.bytesAllocated -= freeSize(unreached)
	}
}

// freeSize approximates the size freeSize(o) contributed to
// bytesAllocated when it was allocated, since Go has no sizeof for
// interface values with variable-length payloads.
func freeSize(o Obj) int64 {
	switch v := o.(type) {
	case *ObjString:
		return int64(len(v.Chars)) + 24
	case *ObjFunction:
		return 64
	case *ObjNative:
		return 32
	case *ObjClosure:
		return int64(24 + 8*len(v.Upvalues))
	case *ObjUpvalue:
		return 32
	case *ObjClass:
		return 48
	case *ObjInstance:
		return 48
	case *ObjBoundMethod:
		return 40
	default:
		return 0
	}
}

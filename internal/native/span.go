package native

// Span is a pointer plus element count view over an array allocation.
// It is only meaningful while the allocation at Ptr is live.
type Span[T any] struct {
	Ptr Ptr
	N   int
}

func (s Span[T]) IsNull() bool { return s.Ptr.IsNull() }

func (s Span[T]) Len() int {
	if s.IsNull() || s.N < 0 {
		return 0
	}
	return s.N
}

// Slice returns the backing array limited to Len elements. A Null span, a
// freed allocation or a type mismatch yields nil.
func (s Span[T]) Slice(h *Heap) []T {
	if s.IsNull() {
		return nil
	}
	arr, ok := LoadAs[[]T](h, s.Ptr)
	if !ok {
		return nil
	}
	n := s.Len()
	if n > len(arr) {
		n = len(arr)
	}
	return arr[:n]
}

// At returns a pointer to element i. Every index outside [0, Len) is
// reported as not found, including negative indexes and math.MaxInt.
func (s Span[T]) At(h *Heap, i int) (*T, bool) {
	if i < 0 || i >= s.Len() {
		return nil, false
	}
	arr := s.Slice(h)
	if i >= len(arr) {
		return nil, false
	}
	return &arr[i], true
}

package xslices

func Filter[T any, S ~[]T](s S, f func(T) bool) (r S) {
	r = make(S, 0, len(s))
	for _, v := range s {
		if f(v) {
			r = append(r, v)
		}
	}
	return r
}

// FlatMap returns the concatenation of f applied to every element of
// s.
func FlatMap[T, R any, S ~[]T](s S, f func(T) []R) (r []R) {
	r = make([]R, 0, len(s))
	for _, v := range s {
		r = append(r, f(v)...)
	}
	return r
}

// Package structs generic helpers for values, slices and maps
package structs

// If returns a when cond is true, otherwise b
func If[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}

// Ref returns a pointer to a copy of v
func Ref[T any](v T) *T {
	return &v
}

// Deref returns the value pointed to by v or def if v is nil
func Deref[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

// Map applies f to every element of in
func Map[T, R any](in []T, f func(T) R) []R {
	out := make([]R, 0, len(in))
	for i := range in {
		out = append(out, f(in[i]))
	}
	return out
}

// SliceToMap builds a map keyed by key(v)
func SliceToMap[K comparable, V any](in []V, key func(V) K) map[K]V {
	out := make(map[K]V, len(in))
	for _, v := range in {
		out[key(v)] = v
	}
	return out
}

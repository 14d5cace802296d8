package slicest

// Map converts slice S to a slice of U.
func Map[T any, S ~[]T, U any](s S, fn func(T) U) []U {
	return MapI(s, func(_ int, t T) U { return fn(t) })
}

// MapI converts slice S to a slice of U.
// - I: Provides index to callback.
func MapI[T any, S ~[]T, U any](s S, fn func(int, T) U) []U {
	result := make([]U, 0, len(s))
	for i, t := range s {
		result = append(result, fn(i, t))
	}
	return result
}

package textutil

// Ternary returns a when cond holds and b otherwise. It keeps one-line
// either/or rendering choices readable in CLI output code.
func Ternary[T any](cond bool, a, b T) T {
	if cond {
		return a
	}
	return b
}

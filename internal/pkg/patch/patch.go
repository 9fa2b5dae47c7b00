// Package patch has small helpers for optional (pointer) fields.
package patch

// Coalesce returns *ptr, or fallback when ptr is nil.
func Coalesce[T any](ptr *T, fallback T) T {
	if ptr != nil {
		return *ptr
	}
	return fallback
}

// Clone returns a pointer to a copy of *ptr, so stored records never share
// optional fields with callers.
func Clone[T any](ptr *T) *T {
	if ptr == nil {
		return nil
	}
	v := *ptr
	return &v
}

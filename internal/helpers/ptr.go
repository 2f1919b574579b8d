package helpers

// Ptr returns &v, or nil when v is an untyped nil. Mostly used for optional flag shorthands.
func Ptr[T any](v T) *T {
	if any(v) == nil {
		return nil
	}
	return &v
}

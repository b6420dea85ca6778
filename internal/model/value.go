package model

// Value is a numeric cell that may be missing. The zero Value is missing,
// so cells default to absent until a parse succeeds.
type Value struct {
	F     float64
	Valid bool
}

// Num returns a present Value.
func Num(f float64) Value { return Value{F: f, Valid: true} }

// Missing reports whether the cell has no usable numeric value.
func (v Value) Missing() bool { return !v.Valid }

package model

import (
	"fmt"
	"strings"
)

// MatrixKey identifies a matrix cell: the ordered pair of colliding categories.
// Row is the element being modified, Col the element it collides with.
type MatrixKey struct {
	Row string
	Col string
}

// String renders the key in its persisted "row:col" form.
func (k MatrixKey) String() string {
	return k.Row + ":" + k.Col
}

// Diagonal reports whether both sides name the same category.
func (k MatrixKey) Diagonal() bool {
	return k.Row == k.Col
}

// ParseMatrixKey parses the "row:col" form.
func ParseMatrixKey(s string) (MatrixKey, error) {
	row, col, ok := strings.Cut(s, ":")
	if !ok || row == "" || col == "" || strings.Contains(col, ":") {
		return MatrixKey{}, fmt.Errorf("invalid matrix key %q: expected row:col", s)
	}
	return MatrixKey{Row: row, Col: col}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (k MatrixKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *MatrixKey) UnmarshalText(text []byte) error {
	parsed, err := ParseMatrixKey(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

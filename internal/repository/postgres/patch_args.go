package postgres

import (
	"github.com/lib/pq"

	"eventsnap/internal/domain"
)

// Helpers translating set patch fields into SQL arguments. An explicit null
// becomes the column's cleared form: NULL for nullable columns, the zero
// value for NOT NULL scalars, and the empty array for text[] columns.

func stringArg(f domain.Field[string]) string {
	if f.Null {
		return ""
	}
	return f.Value
}

func intArg(f domain.Field[int]) int {
	if f.Null {
		return 0
	}
	return f.Value
}

func floatArg(f domain.Field[float64]) float64 {
	if f.Null {
		return 0
	}
	return f.Value
}

func boolArg(f domain.Field[bool]) bool {
	if f.Null {
		return false
	}
	return f.Value
}

func textArrayArg(f domain.Field[[]string]) interface{} {
	if f.Null || f.Value == nil {
		return pq.Array([]string{})
	}
	return pq.Array(f.Value)
}

// nullableArg returns the argument for a nullable column: nil on explicit
// null, the value otherwise.
func nullableArg[T any](f domain.Field[T]) interface{} {
	if f.Null {
		return nil
	}
	return f.Value
}

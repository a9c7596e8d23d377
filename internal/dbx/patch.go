package dbx

import (
	"fmt"
	"strings"
)

// Set is one column assignment of a sparse update. Column must come from
// code, never from request input; Value is always bound as a parameter.
type Set struct {
	Column string
	Value  any
}

// Sets accumulates assignments for the fields a patch actually carries.
type Sets []Set

// Add appends col = value when value is non-nil. It accepts the pointer
// fields of patch structs directly.
func Add[T any](s Sets, col string, value *T) Sets {
	if value == nil {
		return s
	}
	return append(s, Set{Column: col, Value: *value})
}

// AddNull appends col = value when set is true. A nil value writes NULL.
func AddNull[T any](s Sets, col string, set bool, value *T) Sets {
	if !set {
		return s
	}
	if value == nil {
		return append(s, Set{Column: col, Value: nil})
	}
	return append(s, Set{Column: col, Value: *value})
}

// BuildUpdate renders
//
//	UPDATE table SET c1 = $1, ..., [extra] WHERE key = $n [RETURNING ...]
//
// extra holds literal assignments such as "updated_at = NOW()". It returns the
// statement and its arguments, with the key value bound last.
func BuildUpdate(table string, sets Sets, extra []string, key string, keyValue any, returning string) (string, []any) {
	parts := make([]string, 0, len(sets)+len(extra))
	args := make([]any, 0, len(sets)+1)
	for i, s := range sets {
		parts = append(parts, fmt.Sprintf("%s = $%d", s.Column, i+1))
		args = append(args, s.Value)
	}
	parts = append(parts, extra...)
	args = append(args, keyValue)

	var b strings.Builder
	fmt.Fprintf(&b, "UPDATE %s SET %s WHERE %s = $%d", table, strings.Join(parts, ", "), key, len(args))
	if returning != "" {
		b.WriteString(" RETURNING ")
		b.WriteString(returning)
	}
	return b.String(), args
}

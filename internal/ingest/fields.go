package ingest

import (
	"database/sql"
	"strings"

	"ttvdrops/internal/gqljson"
)

// field copies one json key onto one column of T. apply reports whether the column changed,
// it never overwrites a column with an empty value.
type field[T any] struct {
	key   string
	apply func(rec *T, value gqljson.Value) bool
}

// lookup resolves keys like `image.image1xURL`.
func lookup(obj gqljson.Value, key string) gqljson.Value {
	return obj.Get(strings.Split(key, ".")...)
}

// applyFields runs every field in the table against obj and returns how many columns changed.
func applyFields[T any](rec *T, obj gqljson.Value, fields []field[T]) int {
	dirty := 0
	for _, f := range fields {
		value := lookup(obj, f.key)
		if value.Empty() {
			continue
		}
		if f.apply(rec, value) {
			dirty++
		}
	}
	return dirty
}

func setString(column *sql.NullString, value string) bool {
	if value == "" {
		return false
	}
	if column.Valid && column.String == value {
		return false
	}
	*column = sql.NullString{String: value, Valid: true}
	return true
}

func stringField[T any](key string, column func(*T) *sql.NullString) field[T] {
	return field[T]{
		key: key,
		apply: func(rec *T, value gqljson.Value) bool {
			s, ok := value.Str()
			if !ok {
				return false
			}
			return setString(column(rec), s)
		},
	}
}

// derivedField stores derive(value) instead of the value itself, ex. a url built from a slug.
func derivedField[T any](key string, column func(*T) *sql.NullString, derive func(string) string) field[T] {
	return field[T]{
		key: key,
		apply: func(rec *T, value gqljson.Value) bool {
			s, ok := value.Str()
			if !ok || s == "" {
				return false
			}
			return setString(column(rec), derive(s))
		},
	}
}

func intField[T any](key string, column func(*T) *sql.NullInt64) field[T] {
	return field[T]{
		key: key,
		apply: func(rec *T, value gqljson.Value) bool {
			n, ok := value.Int()
			if !ok {
				return false
			}
			c := column(rec)
			if c.Valid && c.Int64 == n {
				return false
			}
			*c = sql.NullInt64{Int64: n, Valid: true}
			return true
		},
	}
}

func boolField[T any](key string, column func(*T) *sql.NullBool) field[T] {
	return field[T]{
		key: key,
		apply: func(rec *T, value gqljson.Value) bool {
			b, ok := value.Bool()
			if !ok {
				return false
			}
			c := column(rec)
			if c.Valid && c.Bool == b {
				return false
			}
			*c = sql.NullBool{Bool: b, Valid: true}
			return true
		},
	}
}

func timeField[T any](key string, column func(*T) *sql.NullTime) field[T] {
	return field[T]{
		key: key,
		apply: func(rec *T, value gqljson.Value) bool {
			t, ok := value.Time()
			if !ok {
				return false
			}
			c := column(rec)
			if c.Valid && c.Time.Equal(t) {
				return false
			}
			*c = sql.NullTime{Time: t, Valid: true}
			return true
		},
	}
}

// setParent points a reference column at parentID, an empty parentID leaves the column alone.
func setParent(column *sql.NullString, parentID string) bool {
	return setString(column, parentID)
}

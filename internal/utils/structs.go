package utils

import (
	"reflect"
)

var ColumnTag = "db"

// StructTagValues returns the column names declared by the db tags of input,
// descending into embedded structs.
func StructTagValues(input any) []string {
	t := reflect.TypeOf(input)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	return appendColumns(make([]string, 0, t.NumField()), t)
}

func appendColumns(out []string, t reflect.Type) []string {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct && field.Tag.Get(ColumnTag) == "" {
			out = appendColumns(out, field.Type)
			continue
		}

		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get(ColumnTag)
		if tag == "" || tag == "-" {
			continue
		}

		out = append(out, tag)
	}

	return out
}

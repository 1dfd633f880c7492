package core

import (
	"reflect"
	"strings"
)

// Separator joins path segments into a path key.
const Separator = "."

// Descend indexes into container one name at a time and returns the final value.
// Maps with string keys, structs (exported fields, honoring deepmock tags), pointers,
// interfaces and Getters are indexable. Anything else, or a missing or nil
// intermediate, reports not found. Descend never panics.
func Descend(container any, path []string) (any, bool) {
	current := container

	for _, name := range path {
		next, ok := index(current, name)
		if !ok {
			return nil, false
		}

		current = next
	}

	return current, true
}

// JoinPath returns the path key for path.
func JoinPath(path []string) string {
	return strings.Join(path, Separator)
}

// Lookup resolves key against store. An exact entry wins. Otherwise the first
// stored key, in insertion order, that is a dotted prefix of key is descended into
// with the remaining segments. The first qualifying prefix wins even when a longer
// one exists.
func Lookup(store *Store, key string) (any, bool) {
	if value, ok := store.Get(key); ok {
		return value, true
	}

	for _, entry := range store.entries() {
		if !isDottedPrefix(entry.key, key) {
			continue
		}

		return Descend(entry.value, SplitPath(strings.TrimPrefix(key, entry.key)))
	}

	return nil, false
}

// SplitPath splits a path key into its segments. Empty segments are dropped.
func SplitPath(key string) []string {
	parts := strings.Split(key, Separator)
	segments := make([]string, 0, len(parts))

	for _, part := range parts {
		if part != "" {
			segments = append(segments, part)
		}
	}

	return segments
}

// fieldByPathName finds the exported struct field addressed by name, either by its
// deepmock tag or by its Go name.
func fieldByPathName(typ reflect.Type, name string) (reflect.StructField, bool) {
	for i := range typ.NumField() {
		field := typ.Field(i)

		segment, ok := segmentName(field)
		if ok && segment == name {
			return field, true
		}
	}

	return reflect.StructField{}, false
}

// index performs a single descent step.
func index(value any, name string) (any, bool) {
	if value == nil {
		return nil, false
	}

	if getter, ok := value.(Getter); ok {
		next := getter.Get(name)

		return next, next != nil
	}

	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}

		rv = rv.Elem()
	}

	switch rv.Kind() { //nolint:exhaustive // only maps and structs are indexable
	case reflect.Map:
		keyType := rv.Type().Key()
		if keyType.Kind() != reflect.String {
			return nil, false
		}

		elem := rv.MapIndex(reflect.ValueOf(name).Convert(keyType))

		return present(elem)
	case reflect.Struct:
		field, ok := fieldByPathName(rv.Type(), name)
		if !ok {
			return nil, false
		}

		elem, err := rv.FieldByIndexErr(field.Index)
		if err != nil {
			return nil, false
		}

		return present(elem)
	default:
		return nil, false
	}
}

// isDottedPrefix reports whether prefix addresses key or one of its ancestors.
func isDottedPrefix(prefix, key string) bool {
	return key == prefix || strings.HasPrefix(key, prefix+Separator)
}

// present converts a reflected element into a found value. Invalid elements and
// nil values are absent.
func present(elem reflect.Value) (any, bool) {
	if !elem.IsValid() || !elem.CanInterface() {
		return nil, false
	}

	switch elem.Kind() { //nolint:exhaustive // only nillable kinds matter
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if elem.IsNil() {
			return nil, false
		}
	}

	return elem.Interface(), true
}

package binder

import (
	"reflect"
	"strings"
	"unicode/utf8"
)

// sanitizeString drops control characters (except tab and newline) and
// replaces invalid UTF-8 sequences. Alert titles and bodies end up in SMS
// payloads and SSE frames, where stray NUL or escape bytes corrupt the wire.
func sanitizeString(s string) string {
	if utf8.ValidString(s) && !strings.ContainsFunc(s, isDroppedRune) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == utf8.RuneError || isDroppedRune(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isDroppedRune(r rune) bool {
	if r == '\t' || r == '\n' {
		return false
	}
	return r < 0x20 || r == 0x7f
}

// sanitizeStruct walks v and sanitizes every settable string field,
// recursing through structs, slices, maps and pointers.
func sanitizeStruct(v any) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return
	}
	sanitizeValue(rv.Elem())
}

func sanitizeValue(rv reflect.Value) {
	switch rv.Kind() {
	case reflect.String:
		if rv.CanSet() {
			rv.SetString(sanitizeString(rv.String()))
		}
	case reflect.Struct:
		for i := 0; i < rv.NumField(); i++ {
			sanitizeValue(rv.Field(i))
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			sanitizeValue(rv.Index(i))
		}
	case reflect.Map:
		for _, key := range rv.MapKeys() {
			val := rv.MapIndex(key)
			if val.Kind() == reflect.String {
				rv.SetMapIndex(key, reflect.ValueOf(sanitizeString(val.String())))
			}
		}
	case reflect.Ptr:
		if !rv.IsNil() {
			sanitizeValue(rv.Elem())
		}
	}
}

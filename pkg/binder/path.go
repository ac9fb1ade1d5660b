package binder

import (
	"net/http"
	"reflect"
)

// PathExtractor reads one named path parameter from a request. With chi this
// is chi.URLParam.
type PathExtractor func(r *http.Request, name string) string

// Path returns a binder that populates v from URL path parameters using
// `path:"name"` struct tags and the given extractor.
//
//	type getMessageRequest struct {
//		ID string `path:"id"`
//	}
//
//	r.Get("/messages/{id}", ...) // bound via binder.Path(chi.URLParam)
func Path(extract PathExtractor) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Ptr || rv.IsNil() {
			return ErrFailedToParsePath
		}
		elem := rv.Elem()
		if elem.Kind() != reflect.Struct {
			return ErrFailedToParsePath
		}

		values := make(map[string][]string)
		rt := elem.Type()
		for i := 0; i < elem.NumField(); i++ {
			name, skip := parseFieldTag(rt.Field(i), "path")
			if skip {
				continue
			}
			if v := extract(r, name); v != "" {
				values[name] = []string{v}
			}
		}
		return bindToStruct(v, "path", values, ErrFailedToParsePath)
	}
}

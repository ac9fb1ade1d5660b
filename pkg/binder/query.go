package binder

import (
	"net/http"
)

// Query returns a binder that populates v from URL query parameters using
// `query:"name"` struct tags. Untagged fields bind by lowercased field name;
// `query:"-"` skips a field. Slices accept repeated parameters or
// comma-separated values.
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", r.URL.Query(), ErrFailedToParseQuery)
	}
}

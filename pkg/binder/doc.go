// Package binder decodes HTTP request data into typed structs for the
// dispatch API. Three binders cover the surface: JSON for request bodies,
// Query for URL parameters and Path for router path segments.
//
// Each binder is a plain func(r *http.Request, v any) error, so handlers can
// compose them without a framework:
//
//	var req sendNotificationRequest
//	if err := binder.JSON()(r, &req); err != nil {
//		// map binder sentinel to 400/415
//	}
//
// Binding failures wrap a package sentinel (ErrFailedToParseJSON and
// friends), letting the HTTP layer pick status codes with errors.Is.
package binder

// Package directory resolves recipient IDs to contact profiles.
//
// The Lookup interface is the seam between delivery and whatever identity
// store a deployment uses; MemoryDirectory serves development and tests.
// MatchLanguage picks the best localized message variant for a recipient's
// preferred language.
package directory

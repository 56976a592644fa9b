// Package binder fills request structs from JSON bodies, path parameters and
// multipart file uploads. Binders plug into handler.Wrap and report
// ErrBinderNotApplicable when a request carries nothing for them.
package binder

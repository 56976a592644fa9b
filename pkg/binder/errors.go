package binder

import "errors"

// Common binding errors
var (
	ErrBinderNotApplicable  = errors.New("binder.not_applicable")
	ErrUnsupportedMediaType = errors.New("binder.unsupported_media_type")
	ErrMissingContentType   = errors.New("binder.missing_content_type")
	ErrInvalidJSON          = errors.New("binder.invalid_json")
	ErrInvalidPath          = errors.New("binder.invalid_path")
	ErrInvalidQuery         = errors.New("binder.invalid_query")
	ErrInvalidForm          = errors.New("binder.invalid_form")
	ErrFileTooLarge         = errors.New("binder.file_too_large")
)

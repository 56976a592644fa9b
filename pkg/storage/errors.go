package storage

import "errors"

var (
	ErrInvalidKey         = errors.New("storage.invalid_key")
	ErrObjectNotFound     = errors.New("storage.object_not_found")
	ErrInvalidConfig      = errors.New("storage.invalid_config")
	ErrUnknownDriver      = errors.New("storage.unknown_driver")
	ErrAccessDenied       = errors.New("storage.access_denied")
	ErrBucketNotFound     = errors.New("storage.bucket_not_found")
	ErrServiceUnavailable = errors.New("storage.service_unavailable")
	ErrOperationTimeout   = errors.New("storage.operation_timeout")
	ErrWriteFailed        = errors.New("storage.write_failed")
	ErrDeleteFailed       = errors.New("storage.delete_failed")
)

// Package storage stores uploaded binaries such as profile pictures.
//
// Two drivers implement Storage: LocalStorage writes below a directory and
// S3Storage writes to an S3 (or compatible) bucket through aws-sdk-go-v2.
// New picks one from Config.Driver. Keys are slash separated and may not
// contain "..".
package storage

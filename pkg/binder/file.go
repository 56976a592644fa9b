package binder

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"reflect"
	"strings"
)

// DefaultMaxMemory is the default maximum memory used for parsing multipart forms (10MB).
const DefaultMaxMemory = 10 << 20

// FileUpload represents an uploaded file with its metadata and content.
type FileUpload struct {
	// Filename is the base name provided by the client
	Filename string

	// Size is the size of the file in bytes
	Size int64

	// Header contains the MIME header fields for this file part
	Header textproto.MIMEHeader

	// Content holds the file data in memory
	Content []byte
}

// ContentType returns the MIME type of the uploaded file. The part header
// wins over the file extension.
func (f *FileUpload) ContentType() string {
	if ct := f.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err == nil {
			return mt
		}
	}
	return mime.TypeByExtension(strings.ToLower(filepath.Ext(f.Filename)))
}

// FileOption configures the file binder.
type FileOption func(*fileConfig)

type fileConfig struct {
	maxMemory int64
	maxSize   int64
}

// WithMaxFileSize rejects files larger than n bytes with ErrFileTooLarge.
func WithMaxFileSize(n int64) FileOption {
	return func(c *fileConfig) {
		c.maxSize = n
	}
}

// WithMaxMemory sets the multipart parser memory limit.
func WithMaxMemory(n int64) FileOption {
	return func(c *fileConfig) {
		c.maxMemory = n
	}
}

// File creates a binder for fields tagged `file:"name"` of type FileUpload
// or *FileUpload. Requests that are not multipart/form-data are skipped with
// ErrBinderNotApplicable.
func File(opts ...FileOption) func(r *http.Request, v any) error {
	cfg := fileConfig{maxMemory: DefaultMaxMemory}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(r *http.Request, v any) error {
		if mediaType(r.Header.Get("Content-Type")) != "multipart/form-data" {
			return ErrBinderNotApplicable
		}

		if r.MultipartForm == nil {
			if err := r.ParseMultipartForm(cfg.maxMemory); err != nil {
				return fmt.Errorf("%w: %w", ErrInvalidForm, err)
			}
		}

		rv, err := structValue(v, ErrInvalidForm)
		if err != nil {
			return err
		}

		rt := rv.Type()
		for i := range rv.NumField() {
			field := rv.Field(i)
			fieldType := rt.Field(i)
			if !field.CanSet() {
				continue
			}

			name, skip := parseFieldTag(fieldType, "file")
			if skip {
				continue
			}

			headers := r.MultipartForm.File[name]
			if len(headers) == 0 {
				continue
			}

			upload, err := readFileHeader(headers[0], cfg.maxSize)
			if err != nil {
				if errors.Is(err, ErrFileTooLarge) {
					return err
				}
				return fmt.Errorf("%w: field %s: %w", ErrInvalidForm, fieldType.Name, err)
			}

			if err := setFileField(field, fieldType.Type, upload); err != nil {
				return fmt.Errorf("%w: field %s: %v", ErrInvalidForm, fieldType.Name, err)
			}
		}

		return nil
	}
}

var fileUploadType = reflect.TypeFor[FileUpload]()

func setFileField(field reflect.Value, fieldType reflect.Type, upload *FileUpload) error {
	switch fieldType {
	case fileUploadType:
		field.Set(reflect.ValueOf(*upload))
	case reflect.PointerTo(fileUploadType):
		field.Set(reflect.ValueOf(upload))
	default:
		return fmt.Errorf("unsupported type for file field: %s", fieldType)
	}
	return nil
}

func readFileHeader(header *multipart.FileHeader, maxSize int64) (*FileUpload, error) {
	if maxSize > 0 && header.Size > maxSize {
		return nil, fmt.Errorf("%w: %q is %d bytes, limit is %d", ErrFileTooLarge, header.Filename, header.Size, maxSize)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file %q: %w", header.Filename, err)
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", header.Filename, err)
	}

	return &FileUpload{
		Filename: filepath.Base(header.Filename),
		Size:     int64(len(content)),
		Header:   header.Header,
		Content:  content,
	}, nil
}

package binder

import (
	"fmt"
	"net/http"
)

// Path creates a path parameter binder for fields tagged `path:"name"`.
// The extractor resolves a parameter by name, for chi that is chi.URLParam:
//
//	type roleRequest struct {
//		ID   string `path:"id"`
//		Role string `json:"role"`
//	}
//
//	r.Put("/users/{id}/role", handler.Wrap(changeRole,
//		handler.WithBinders[handler.Context, roleRequest](binder.Path(chi.URLParam), binder.JSON()),
//	))
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		if extractor == nil {
			return fmt.Errorf("%w: extractor function is nil", ErrInvalidPath)
		}

		rv, err := structValue(v, ErrInvalidPath)
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

			name, skip := parseFieldTag(fieldType, "path")
			if skip {
				continue
			}

			value := extractor(r, name)
			if value == "" {
				continue
			}
			if err := setFieldValue(field, fieldType.Type, value); err != nil {
				return fmt.Errorf("%w: field %s: %v", ErrInvalidPath, fieldType.Name, err)
			}
		}

		return nil
	}
}

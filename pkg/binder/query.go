package binder

import (
	"fmt"
	"net/http"
)

// Query creates a query parameter binder for fields tagged `query:"name"`.
// Only the first value of a repeated parameter is used, absent parameters
// leave the field untouched.
//
//	type listRequest struct {
//		Offset int `query:"offset"`
//		Limit  int `query:"limit"`
//	}
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		rv, err := structValue(v, ErrInvalidQuery)
		if err != nil {
			return err
		}

		values := r.URL.Query()
		rt := rv.Type()
		for i := range rv.NumField() {
			field := rv.Field(i)
			fieldType := rt.Field(i)
			if !field.CanSet() {
				continue
			}

			name, skip := parseFieldTag(fieldType, "query")
			if skip {
				continue
			}

			value := values.Get(name)
			if value == "" {
				continue
			}
			if err := setFieldValue(field, fieldType.Type, value); err != nil {
				return fmt.Errorf("%w: field %s: %v", ErrInvalidQuery, fieldType.Name, err)
			}
		}

		return nil
	}
}

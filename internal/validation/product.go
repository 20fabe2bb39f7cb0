package validation

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"produk/internal/errs"
	"produk/internal/models"
)

var validate = newValidator()

// newValidator configures a validator that reports fields by their JSON names,
// so error messages line up with what the client actually sent.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ProductPayload checks that every required product field is present. It does
// not stop at the first mismatch: the returned ValidationError lists one
// message per violated field.
func ProductPayload(payload *models.ProductPayload) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	validationErrors := err.(validator.ValidationErrors)
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, fmt.Sprintf("field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
	}
	return &errs.ValidationError{Errors: messages}
}

// TypeMismatch converts a JSON type error (e.g. a string where a number is
// expected) into the same per-field validation error shape that missing
// fields produce.
func TypeMismatch(ute *json.UnmarshalTypeError) error {
	return &errs.ValidationError{
		Errors: []string{fmt.Sprintf("field '%s' must be of type %s, got %s", ute.Field, ute.Type, ute.Value)},
	}
}

package core

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce    sync.Once
	recordValidator *validator.Validate
)

// getValidator returns the shared validator. Field names in messages use the
// mapstructure tag so they match the column names of the source data.
func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		recordValidator = validator.New(validator.WithRequiredStructEnabled())
		recordValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	})
	return recordValidator
}

func validateRecord(kind, key string, record any) error {
	err := getValidator().Struct(record)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validating %s: %w", kind, err)
	}

	ve := &ValidationError{Kind: kind, Key: key}
	for _, fe := range fieldErrs {
		ve.Fields = append(ve.Fields, fieldMessage(fe))
	}
	return ve
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "gte":
		return fmt.Sprintf("%s must be >= %s (got %v)", fe.Field(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
	}
}

// joinKey builds a record key from its parts, skipping empty ones.
func joinKey(sep string, parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, sep)
}

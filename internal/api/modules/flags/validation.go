package flags_module

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/ethanbaker/flagdash/pkg/flags"
	"github.com/ethanbaker/flagdash/pkg/sdk"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var registerOnce sync.Once

// RegisterValidators adds the flag specific rules to gin's validator. It is
// safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		// Report json field names instead of Go field names
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})

		v.RegisterValidation("kebabcase", func(fl validator.FieldLevel) bool {
			return flags.IsKebabCase(fl.Field().String())
		})
		v.RegisterValidation("environment", func(fl validator.FieldLevel) bool {
			return flags.Environment(fl.Field().String()).Valid()
		})
		v.RegisterValidation("future", func(fl validator.FieldLevel) bool {
			t, ok := fl.Field().Interface().(time.Time)
			return ok && t.After(time.Now())
		})

		v.RegisterCustomTypeFunc(nullableValue[string], flags.Nullable[string]{})
		v.RegisterCustomTypeFunc(nullableValue[time.Time], flags.Nullable[time.Time]{})
	})
}

// nullableValue exposes the concrete value of a Nullable to the validator,
// so unset and null fields are skipped by omitempty
func nullableValue[T any](field reflect.Value) any {
	if n, ok := field.Interface().(flags.Nullable[T]); ok && n.Present() {
		return n.Value
	}
	return nil
}

// bindJSON decodes and validates a JSON body. An empty body is decoded as
// an empty object.
func bindJSON(c *gin.Context, obj any) error {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		return binding.Validator.ValidateStruct(obj)
	}
	return err
}

// validationDetails converts a binding error into per field details
func validationDetails(err error) []sdk.ErrorDetail {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]sdk.ErrorDetail, 0, len(validationErrs))
		for _, fe := range validationErrs {
			details = append(details, sdk.ErrorDetail{
				Field:   fieldPath(fe.Namespace()),
				Message: fieldMessage(fe),
			})
		}
		return details
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return []sdk.ErrorDetail{{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("must be of type %s", jsonType(typeErr.Type)),
		}}
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return []sdk.ErrorDetail{{Field: "body", Message: "body is not valid JSON"}}
	}

	var timeErr *time.ParseError
	if errors.As(err, &timeErr) {
		return []sdk.ErrorDetail{{Field: "metadata.expiresAt", Message: "must be an ISO-8601 datetime"}}
	}

	return []sdk.ErrorDetail{{Field: "body", Message: err.Error()}}
}

// fieldPath drops the struct name from a validator namespace
func fieldPath(namespace string) string {
	if _, path, ok := strings.Cut(namespace, "."); ok {
		return path
	}
	return namespace
}

// fieldMessage describes the rule a field failed
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "kebabcase":
		return "must be kebab-case (lowercase letters, numbers, hyphens only) and cannot start or end with a hyphen"
	case "environment":
		return "must be one of development, staging, production"
	case "future":
		return "must be a future date"
	default:
		return fmt.Sprintf("failed the '%s' rule", fe.Tag())
	}
}

// jsonType names a Go type the way a JSON client would
func jsonType(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Bool:
		return "boolean"
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Struct, reflect.Map:
		return "object"
	case reflect.Int, reflect.Int64, reflect.Float64:
		return "number"
	default:
		return t.String()
	}
}

// parseID validates the :id path parameter
func parseID(c *gin.Context) (string, []sdk.ErrorDetail) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", []sdk.ErrorDetail{{Field: "id", Message: "must be a UUID"}}
	}
	return id, nil
}

// parseListQuery builds a store filter from the GET /flags query string
func parseListQuery(c *gin.Context) (*flags.Filter, []sdk.ErrorDetail) {
	filter := &flags.Filter{
		Search: c.Query("search"),
		Tags:   c.QueryArray("tag"),
	}
	var details []sdk.ErrorDetail

	if env, ok := c.GetQuery("environment"); ok {
		e := flags.Environment(env)
		if !e.Valid() {
			details = append(details, sdk.ErrorDetail{Field: "environment", Message: "must be one of development, staging, production"})
		} else {
			filter.Environment = &e
		}
	}

	if enabled, ok := c.GetQuery("enabled"); ok {
		switch enabled {
		case "true", "false":
			b := enabled == "true"
			filter.Enabled = &b
		default:
			details = append(details, sdk.ErrorDetail{Field: "enabled", Message: "must be 'true' or 'false'"})
		}
	}

	return filter, details
}

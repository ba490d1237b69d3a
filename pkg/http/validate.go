package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = newValidator()

// newValidator reports fields by their wire name rather than the Go name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query", "param", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// RegisterValidation adds a custom tag to the request validator. message is
// a format with a single %s for the field name. Call it during init.
func RegisterValidation(tag, message string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
	messages[tag] = message
}

// ReadAndValidateRequest binds path, query and body into req, applies
// `default` tags and validates. It returns nil when req is usable.
func ReadAndValidateRequest(c echo.Context, req interface{}) []ValidationError {
	if err := c.Bind(req); err != nil {
		return bindErrors(err)
	}
	if err := defaults.Set(req); err != nil {
		return []ValidationError{{Code: "ERR_DEFAULTS", Message: err.Error()}}
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return fieldErrors(err)
	}
	return nil
}

func bindErrors(err error) []ValidationError {
	var be *echo.BindingError
	if errors.As(err, &be) {
		return []ValidationError{{
			Code:    "ERR_BIND",
			Field:   be.Field,
			Message: fmt.Sprintf("%s has an invalid value", be.Field),
			Params:  map[string]interface{}{"values": be.Values},
		}}
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return []ValidationError{{Code: "ERR_BIND", Message: fmt.Sprint(he.Message)}}
	}
	return []ValidationError{{Code: "ERR_BIND", Message: err.Error()}}
}

func fieldErrors(err error) []ValidationError {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return []ValidationError{{Code: "ERR_UNKNOWN", Message: err.Error()}}
	}
	out := make([]ValidationError, 0, len(ves))
	for _, fe := range ves {
		out = append(out, ValidationError{
			Code:    "ERR_" + strings.ToUpper(fe.Tag()),
			Field:   fe.Field(),
			Message: fieldMessage(fe),
			Params:  fieldParams(fe),
		})
	}
	return out
}

var messages = map[string]string{
	"required": "%s is required",
	"uuid":     "%s must be a valid UUID",
	"gt":       "%s must be greater than %s",
	"gte":      "%s must be at least %s",
	"lt":       "%s must be less than %s",
	"lte":      "%s must be at most %s",
	"min":      "%s must be at least %s",
	"max":      "%s must be at most %s",
}

func fieldMessage(fe validator.FieldError) string {
	if fe.Tag() == "oneof" {
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	if format, ok := messages[fe.Tag()]; ok {
		if strings.Count(format, "%s") == 1 {
			return fmt.Sprintf(format, fe.Field())
		}
		msg := fmt.Sprintf(format, fe.Field(), fe.Param())
		if fe.Kind() == reflect.String {
			msg += " characters"
		}
		return msg
	}
	return fmt.Sprintf("%s failed validation: %s", fe.Field(), fe.Tag())
}

func fieldParams(fe validator.FieldError) map[string]interface{} {
	switch fe.Tag() {
	case "min", "gte":
		return map[string]interface{}{"min": fe.Param()}
	case "max", "lte":
		return map[string]interface{}{"max": fe.Param()}
	case "gt", "lt":
		return map[string]interface{}{"value": fe.Param()}
	case "oneof":
		return map[string]interface{}{"options": strings.Fields(fe.Param())}
	}
	return nil
}

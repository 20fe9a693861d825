package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Tag     string `json:"tag"`
	Value   string `json:"value,omitempty"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (v ValidationErrors) Error() string {
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, "; ")
}

var (
	columnName = `[A-Za-z_][A-Za-z0-9_]*`
	sortTerm   = columnName + `(\s+(?i:asc|desc))?`

	sortOrderPattern  = regexp.MustCompile(`^\s*` + sortTerm + `(\s*,\s*` + sortTerm + `)*\s*$`)
	projectionPattern = regexp.MustCompile(`^\s*` + columnName + `(\s*,\s*` + columnName + `)*\s*$`)
	mimeTypePattern   = regexp.MustCompile(`^(\*|[A-Za-z0-9][A-Za-z0-9.+-]*)/(\*|[A-Za-z0-9][A-Za-z0-9.+-]*)$`)
)

// New creates a new validator instance
func New() *Validator {
	v := validator.New()

	// Report fields by their json or query names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	v.RegisterValidation("sortorder", validateSortOrder)
	v.RegisterValidation("projection", validateProjection)
	v.RegisterValidation("mimetype", validateMIMEType)

	return &Validator{validate: v}
}

// Validate validates a struct and returns validation errors
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var validationErrs ValidationErrors
	for _, err := range fieldErrs {
		validationErrs = append(validationErrs, ValidationError{
			Field:   err.Field(),
			Message: msgForTag(err),
			Tag:     err.Tag(),
			Value:   fmt.Sprintf("%v", err.Value()),
		})
	}

	return validationErrs
}

// msgForTag returns a human-readable error message for a validation tag
func msgForTag(fe validator.FieldError) string {
	field := fe.Field()

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "sortorder":
		return fmt.Sprintf("%s must be a list of columns, each optionally followed by ASC or DESC", field)
	case "projection":
		return fmt.Sprintf("%s must be a comma-separated list of column names", field)
	case "mimetype":
		return fmt.Sprintf("%s must be a MIME type such as text/plain or text/*", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation (%s)", field, fe.Tag())
	}
}

// Custom validators

// validateSortOrder accepts "col [ASC|DESC], ...". Column existence is
// checked by the provider.
func validateSortOrder(fl validator.FieldLevel) bool {
	return sortOrderPattern.MatchString(fl.Field().String())
}

func validateProjection(fl validator.FieldLevel) bool {
	return projectionPattern.MatchString(fl.Field().String())
}

// validateMIMEType accepts a concrete type or a type/* and */* wildcard
func validateMIMEType(fl validator.FieldLevel) bool {
	mt := fl.Field().String()
	if mt == "*/*" {
		return true
	}
	if strings.HasPrefix(mt, "*/") {
		return false
	}
	return mimeTypePattern.MatchString(mt)
}

// Package validation checks request payloads against their struct tags and
// converts failures into errs.FieldError lists.
//
// Besides the validator built-ins it registers "allowedchars", which matches
// a field against the configured allow-list pattern.
package validation

import (
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/atinyakov/go-bookmarks/internal/errs"
)

// TagAllowedChars is the struct tag bound to the configured pattern.
const TagAllowedChars = "allowedchars"

var messages = map[string]string{
	"required":      "Must not be empty",
	TagAllowedChars: "Must only contain allowed characters",
	"alpha":         "Must only contain letters",
	"url":           "Must be a valid URL",
}

type Validator struct {
	validate *validator.Validate
}

// New returns a Validator whose "allowedchars" rule uses allowed.
func New(allowed *regexp.Regexp) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// RegisterValidation only fails on an empty tag or a nil func.
	_ = v.RegisterValidation(TagAllowedChars, func(fl validator.FieldLevel) bool {
		return allowed.MatchString(fl.Field().String())
	})

	return &Validator{validate: v}
}

// Struct validates s and returns a VALIDATION_FAILED *errs.Error listing every
// broken field, or nil.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return errs.NewMalformed(http.StatusBadRequest, err.Error())
	}

	fields := make([]errs.FieldError, 0, len(ve))
	for _, fe := range ve {
		msg, ok := messages[fe.Tag()]
		if !ok {
			msg = "Failed rule " + fe.Tag()
		}
		fields = append(fields, errs.FieldError{Field: fe.Field(), Error: msg})
	}

	return errs.NewValidation(fields)
}

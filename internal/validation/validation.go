// Package validation holds the shared struct validator and the custom
// rules used by request binding and by the services.
package validation

import (
	"fmt"
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var slugRegexp = regexp.MustCompile(`^[a-z0-9_]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	registerRules(v)
	return v
}

func registerRules(v *validator.Validate) {
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("slug", isSlug)
}

func isSlug(fl validator.FieldLevel) bool {
	return slugRegexp.MatchString(fl.Field().String())
}

// Struct validates v using its `validate` tags.
func Struct(v any) error {
	return validate.Struct(v)
}

// Var validates a single value against tag.
func Var(field any, tag string) error {
	return validate.Var(field, tag)
}

// RegisterGinRules installs the custom rules on gin's binding validator.
func RegisterGinRules() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
	}
	registerRules(v)
	return nil
}

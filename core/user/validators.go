package user

import (
	"github.com/go-playground/validator/v10"

	"github.com/darasahq/darasa/core"
)

var (
	roleTag  = "role"
	roleText = "must be one of: teacher, student"
)

func init() {
	_ = core.Validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, roleTag, roleText)
}

// roleValidation checks that the field holds a known role.
func roleValidation(fl validator.FieldLevel) bool {
	return Role(fl.Field().String()).Valid()
}

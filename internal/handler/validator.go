package handler

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var phoneRE = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{5,19}$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("phone", validPhone)
	}
}

// validPhone accepts international numbers with common separators.
func validPhone(fl validator.FieldLevel) bool {
	return phoneRE.MatchString(fl.Field().String())
}

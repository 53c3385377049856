package utils

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

var Validate *validator.Validate

var hexColorPattern = regexp.MustCompile(`^#([A-Fa-f0-9]{6})$`)

func InitValidator() {
	if Validate != nil {
		return
	}
	v := validator.New()
	_ = v.RegisterValidation("hexcolor6", func(fl validator.FieldLevel) bool {
		return IsHexColor(fl.Field().String())
	})
	Validate = v
}

// IsHexColor reports whether s is a six digit RGB color such as "#E26C2D".
func IsHexColor(s string) bool {
	return hexColorPattern.MatchString(s)
}

package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"send-to-print/pkg/constants"
)

var confirmationCodeRe = regexp.MustCompile(`^\d{4,5}$`)

// registerRules регистрирует теги, которые мы используем в struct tags
func registerRules(v *validator.Validate) error {
	if err := v.RegisterValidation("confirmation_code", isConfirmationCode); err != nil {
		return err
	}
	if err := v.RegisterValidation("print_color", isPrintColor); err != nil {
		return err
	}
	if err := v.RegisterValidation("order_status", isOrderStatus); err != nil {
		return err
	}
	return nil
}

// isConfirmationCode - код выдачи из 4-5 цифр
func isConfirmationCode(fl validator.FieldLevel) bool {
	return confirmationCodeRe.MatchString(fl.Field().String())
}

func isPrintColor(fl validator.FieldLevel) bool {
	c := fl.Field().String()
	return c == constants.ColorBW || c == constants.ColorColor
}

func isOrderStatus(fl validator.FieldLevel) bool {
	return constants.IsKnownStatus(fl.Field().String())
}

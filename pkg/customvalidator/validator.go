package customvalidator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// CustomValidator - адаптер go-playground/validator под echo.Validator.
type CustomValidator struct {
	validator *validator.Validate
}

func NewCustomValidator(v *validator.Validate) *CustomValidator {
	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// RegisterCustomValidations регистрирует кастомные правила валидации.
func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("email", isGoodEmailFormat); err != nil {
		return err
	}
	if err := v.RegisterValidation("status_name", isStatusName); err != nil {
		return err
	}
	return nil
}

func isGoodEmailFormat(fl validator.FieldLevel) bool {
	emailRegex := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRegex.MatchString(fl.Field().String())
}

// isStatusName - имя статуса: буквы (кириллица/латиница), цифры, пробелы и дефисы.
func isStatusName(fl validator.FieldLevel) bool {
	re := regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} \-]*$`)
	return re.MatchString(fl.Field().String())
}

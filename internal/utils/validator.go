// internal/utils/validator.go
package utils

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("strong_password", validateStrongPassword)
	validate.RegisterValidation("coupon_code", validateCouponCode)
	validate.RegisterValidation("pincode", validatePincode)
	validate.RegisterValidation("slug", validateSlug)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateStrongPassword(fl validator.FieldLevel) bool {
	password := fl.Field().String()

	if len(password) < 8 {
		return false
	}

	var hasUpper, hasLower, hasNumber bool

	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	return hasUpper && hasLower && hasNumber
}

func validateCouponCode(fl validator.FieldLevel) bool {
	code := fl.Field().String()

	// Coupon codes are uppercase alphanumeric, 3-50 characters
	if len(code) < 3 || len(code) > 50 {
		return false
	}

	matched, _ := regexp.MatchString("^[A-Z0-9]+$", code)
	return matched
}

func validatePincode(fl validator.FieldLevel) bool {
	// Indian PIN codes are six digits, first digit non-zero
	matched, _ := regexp.MatchString("^[1-9][0-9]{5}$", fl.Field().String())
	return matched
}

func validateSlug(fl validator.FieldLevel) bool {
	matched, _ := regexp.MatchString("^[a-z0-9]+(-[a-z0-9]+)*$", fl.Field().String())
	return matched
}

// Validation tags for common fields
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Message string `json:"message"`
}

func GetValidationErrors(err error) []ValidationError {
	var validationErrors []ValidationError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			validationErrors = append(validationErrors, ValidationError{
				Field:   strings.ToLower(e.Field()),
				Tag:     e.Tag(),
				Message: getValidationMessage(e),
			})
		}
	}

	return validationErrors
}

func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "strong_password":
		return "Password must contain at least 8 characters with uppercase, lowercase and a number"
	case "coupon_code":
		return "Coupon code must be 3-50 uppercase letters and digits"
	case "pincode":
		return "PIN code must be a valid six digit code"
	case "slug":
		return "Slug may contain only lowercase letters, digits and hyphens"
	default:
		return e.Field() + " is invalid"
	}
}

package validator

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/ejtx16/shrink-iq-web-app/pkg/response"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var slugPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Slugs that would shadow application routes.
var reservedSlugs = map[string]bool{
	"api":     true,
	"healthz": true,
	"readyz":  true,
}

func init() {
	validate = validator.New()

	validate.RegisterValidation("slug", validateSlug)
	validate.RegisterValidation("httpurl", validateHTTPURL)
}

func Validate(data interface{}) []response.ValidationError {
	var validationErrors []response.ValidationError

	err := validate.Struct(data)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, response.ValidationError{
				Field:   err.Field(),
				Message: getErrorMessage(err),
			})
		}
	}

	return validationErrors
}

func validateSlug(fl validator.FieldLevel) bool {
	return slugPattern.MatchString(fl.Field().String())
}

// validateHTTPURL requires a well-formed absolute URL with an http or
// https scheme; the builtin "url" tag accepts any scheme.
func validateHTTPURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

func IsReservedSlug(slug string) bool {
	return reservedSlugs[strings.ToLower(slug)]
}

func getErrorMessage(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "httpurl":
		return fmt.Sprintf("%s must be a valid http or https URL", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "slug":
		return fmt.Sprintf("%s can only contain letters, numbers, hyphens, and underscores", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, err.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

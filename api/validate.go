package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var validate = validator.New()

// ReadAndValidateRequest binds req from the path, query and body, fills
// `default` tags and validates it.
func ReadAndValidateRequest(c echo.Context, req any) *AppError {
	if err := c.Bind(req); err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) {
			return BadRequestError(fmt.Sprintf("%v", he.Message)).WithError(err)
		}
		return BadRequestError(err.Error()).WithError(err)
	}
	if err := defaults.Set(req); err != nil {
		return InternalError().WithError(err)
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			e := NewAppError("ERR_"+strings.ToUpper(fe.Tag()), errorMessage(fe), 400)
			e.Field = strings.ToLower(fe.Field())
			return e.WithError(err)
		}
		return BadRequestError(err.Error()).WithError(err)
	}
	return nil
}

func errorMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

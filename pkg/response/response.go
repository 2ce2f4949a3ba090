package response

import (
	"errors"
	"net/http"

	"github.com/alimikegami/astromart/pkg/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

type ValidationError struct {
	Field string `json:"field"`
	Tag   string `json:"tag"`
}

type ErrorResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Errors  interface{} `json:"errors"`
}

func WriteSuccessResponse(c echo.Context, message string, data interface{}) error {
	resp := SuccessResponse{}
	resp.Status = "success"
	resp.Data = data
	resp.Message = message

	return c.JSON(http.StatusOK, resp)
}

func WriteCreatedResponse(c echo.Context, message string, data interface{}) error {
	resp := SuccessResponse{}
	resp.Status = "success"
	resp.Data = data
	resp.Message = message

	return c.JSON(http.StatusCreated, resp)
}

func validationErrors(err error) []ValidationError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil
	}

	res := make([]ValidationError, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		res = append(res, ValidationError{Field: fieldErr.Field(), Tag: fieldErr.Tag()})
	}

	return res
}

// WriteErrorResponse maps err to its status code. Field level validation
// failures are listed in errors when the caller passes none.
func WriteErrorResponse(c echo.Context, err error, errorList interface{}) error {
	statusCode := errs.GetErrorStatusCode(err)
	resp := ErrorResponse{}
	resp.Status = "error"
	resp.Message = err.Error()
	resp.Errors = errorList

	if statusCode == http.StatusInternalServerError {
		resp.Message = errs.ErrInternalServer.Error()
	}

	if fieldErrs := validationErrors(err); errorList == nil && fieldErrs != nil {
		resp.Message = errs.ErrClient.Error()
		resp.Errors = fieldErrs
	}

	return c.JSON(statusCode, resp)
}

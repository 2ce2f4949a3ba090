package middleware

import (
	"net/http"

	"github.com/alimikegami/astromart/pkg/errs"
	"github.com/alimikegami/astromart/pkg/response"
	"github.com/alimikegami/astromart/pkg/utils"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
)

func IsLoggedIn(jwtSecret string) echo.MiddlewareFunc {
	return middleware.JWTWithConfig(middleware.JWTConfig{
		SigningKey: []byte(jwtSecret),
		ErrorHandlerWithContext: func(err error, c echo.Context) error {
			errorResponse := map[string]interface{}{
				"status":  "error",
				"message": "Invalid or expired JWT",
				"errors":  nil,
			}
			return c.JSON(http.StatusUnauthorized, errorResponse)
		},
	})
}

// IsAdmin must run after IsLoggedIn.
func IsAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user, err := utils.ExtractTokenUser(c)
		if err != nil {
			return response.WriteErrorResponse(c, err, nil)
		}

		if !user.IsAdmin() {
			log.Ctx(c.Request().Context()).Warn().Str("component", "IsAdmin").Str("external_id", user.ExternalID).Str("path", c.Path()).Msg("admin route denied")
			return response.WriteErrorResponse(c, errs.ErrUnauthorized, nil)
		}

		return next(c)
	}
}

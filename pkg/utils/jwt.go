package utils

import (
	"time"

	"github.com/alimikegami/astromart/pkg/errs"
	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
)

const RoleAdmin = "admin"
const RoleUser = "user"

type TokenUser struct {
	UserID     int64
	ExternalID string
	Name       string
	Email      string
	Role       string
}

func (u TokenUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func CreateJWTToken(user TokenUser, jwtSecretKey string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{}
	claims["authorized"] = true
	claims["userID"] = user.UserID
	claims["name"] = user.Name
	claims["email"] = user.Email
	claims["externalID"] = user.ExternalID
	claims["role"] = user.Role
	claims["exp"] = time.Now().Add(ttl).Unix()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(jwtSecretKey))
}

// ExtractTokenUser reads the principal that the JWT middleware stored on c.
func ExtractTokenUser(c echo.Context) (TokenUser, error) {
	user, ok := c.Get("user").(*jwt.Token)
	if !ok || !user.Valid {
		return TokenUser{}, errs.ErrNotLoggedIn
	}

	claims, ok := user.Claims.(jwt.MapClaims)
	if !ok {
		return TokenUser{}, errs.ErrNotLoggedIn
	}

	var tokenUser TokenUser
	if userID, ok := claims["userID"].(float64); ok {
		tokenUser.UserID = int64(userID)
	}
	tokenUser.ExternalID, _ = claims["externalID"].(string)
	tokenUser.Name, _ = claims["name"].(string)
	tokenUser.Email, _ = claims["email"].(string)
	tokenUser.Role, _ = claims["role"].(string)

	if tokenUser.ExternalID == "" {
		return TokenUser{}, errs.ErrNotLoggedIn
	}

	return tokenUser, nil
}

package controller

import (
	"github.com/alimikegami/astromart/internal/dto"
	"github.com/alimikegami/astromart/internal/service"
	pkgdto "github.com/alimikegami/astromart/pkg/dto"
	"github.com/alimikegami/astromart/pkg/response"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type UserController struct {
	service service.UserService
}

func CreateUserController(g *echo.Group, admin *echo.Group, service service.UserService) {
	uc := UserController{
		service: service,
	}
	g.POST("/users/register", uc.AddUser)
	g.POST("/users/login", uc.Login)

	admin.GET("/users", uc.GetUsers)
	admin.GET("/users/:id", uc.GetUser)
	admin.PUT("/users/:id/role", uc.SetUserRole)
}

func (c *UserController) AddUser(e echo.Context) error {
	payload := dto.UserRequest{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "AddUser").Msg("")
	}

	err = c.service.AddUser(e.Request().Context(), payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", nil)
}

func (c *UserController) Login(e echo.Context) error {
	payload := dto.UserRequest{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "Login").Msg("")
	}

	respPayload, err := c.service.Login(e.Request().Context(), payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", respPayload)
}

func (c *UserController) GetUsers(e echo.Context) error {
	payload := pkgdto.Filter{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "GetUsers").Msg("")
	}

	resp, err := c.service.GetUsers(e.Request().Context(), payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *UserController) GetUser(e echo.Context) error {
	resp, err := c.service.GetUser(e.Request().Context(), e.Param("id"))
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *UserController) SetUserRole(e echo.Context) error {
	payload := dto.RoleRequest{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "SetUserRole").Msg("")
	}

	payload.ExternalID = e.Param("id")
	err = c.service.SetUserRole(e.Request().Context(), payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", nil)
}

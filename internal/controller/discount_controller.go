package controller

import (
	"github.com/alimikegami/astromart/internal/dto"
	"github.com/alimikegami/astromart/internal/service"
	"github.com/alimikegami/astromart/pkg/response"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type DiscountController struct {
	service service.DiscountService
}

func CreateDiscountController(g *echo.Group, admin *echo.Group, service service.DiscountService, isLoggedIn echo.MiddlewareFunc) {
	c := DiscountController{
		service: service,
	}
	g.GET("/discounts/:code", c.GetDiscount, isLoggedIn)

	admin.GET("/discounts", c.GetDiscounts)
	admin.POST("/discounts", c.CreateDiscount)
	admin.DELETE("/discounts/:code", c.DeleteDiscount)
}

func (c *DiscountController) GetDiscount(e echo.Context) error {
	resp, err := c.service.GetDiscount(e.Request().Context(), e.Param("code"))
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *DiscountController) GetDiscounts(e echo.Context) error {
	resp, err := c.service.GetDiscounts(e.Request().Context())
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *DiscountController) CreateDiscount(e echo.Context) error {
	payload := dto.DiscountRequest{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "CreateDiscount").Msg("")
	}

	resp, err := c.service.CreateDiscount(e.Request().Context(), payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteCreatedResponse(e, "", resp)
}

func (c *DiscountController) DeleteDiscount(e echo.Context) error {
	err := c.service.DeleteDiscount(e.Request().Context(), e.Param("code"))
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", nil)
}

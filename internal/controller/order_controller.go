package controller

import (
	"github.com/alimikegami/astromart/internal/dto"
	"github.com/alimikegami/astromart/internal/service"
	pkgdto "github.com/alimikegami/astromart/pkg/dto"
	"github.com/alimikegami/astromart/pkg/response"
	"github.com/alimikegami/astromart/pkg/utils"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type OrderController struct {
	service service.OrderService
}

func CreateOrderController(g *echo.Group, admin *echo.Group, service service.OrderService, isLoggedIn echo.MiddlewareFunc) {
	c := OrderController{
		service: service,
	}
	g.POST("/orders", c.PlaceOrder, isLoggedIn)
	g.GET("/orders", c.GetOrders, isLoggedIn)
	g.GET("/orders/:id", c.GetOrder, isLoggedIn)

	admin.GET("/orders", c.GetAllOrders)
	admin.PUT("/orders/:id/status", c.UpdateOrderStatus)
}

func (c *OrderController) PlaceOrder(e echo.Context) error {
	user, err := utils.ExtractTokenUser(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	payload := dto.OrderRequest{}
	err = e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "PlaceOrder").Msg("")
	}

	resp, err := c.service.PlaceOrder(e.Request().Context(), user, payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteCreatedResponse(e, "", resp)
}

func (c *OrderController) GetOrders(e echo.Context) error {
	user, err := utils.ExtractTokenUser(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	filter := pkgdto.Filter{}
	err = e.Bind(&filter)
	if err != nil {
		log.Error().Err(err).Str("component", "GetOrders").Msg("")
	}

	resp, err := c.service.GetOrders(e.Request().Context(), user.ExternalID, filter)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *OrderController) GetOrder(e echo.Context) error {
	user, err := utils.ExtractTokenUser(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	resp, err := c.service.GetOrder(e.Request().Context(), user.ExternalID, e.Param("id"))
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *OrderController) GetAllOrders(e echo.Context) error {
	filter := pkgdto.Filter{}
	err := e.Bind(&filter)
	if err != nil {
		log.Error().Err(err).Str("component", "GetAllOrders").Msg("")
	}

	resp, err := c.service.GetAllOrders(e.Request().Context(), filter)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *OrderController) UpdateOrderStatus(e echo.Context) error {
	payload := dto.OrderStatusRequest{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "UpdateOrderStatus").Msg("")
	}

	payload.ID = e.Param("id")
	resp, err := c.service.UpdateOrderStatus(e.Request().Context(), payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

package controller

import (
	"github.com/alimikegami/astromart/internal/domain"
	"github.com/alimikegami/astromart/internal/dto"
	"github.com/alimikegami/astromart/internal/pricing"
	"github.com/alimikegami/astromart/internal/service"
	"github.com/alimikegami/astromart/internal/store"
	"github.com/alimikegami/astromart/pkg/response"
	"github.com/alimikegami/astromart/pkg/utils"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type CartController struct {
	service service.CartService
}

func CreateCartController(g *echo.Group, service service.CartService, isLoggedIn echo.MiddlewareFunc) {
	c := CartController{
		service: service,
	}
	g.GET("/cart", c.GetCart, isLoggedIn)
	g.GET("/cart/stream", c.StreamCart, isLoggedIn)
	g.GET("/cart/total", c.GetTotal, isLoggedIn)
	g.POST("/cart", c.AddToCart, isLoggedIn)
	g.PUT("/cart/:productId", c.UpdateQuantity, isLoggedIn)
	g.DELETE("/cart/:productId", c.RemoveFromCart, isLoggedIn)
	g.DELETE("/cart", c.ClearCart, isLoggedIn)
}

func (c *CartController) GetCart(e echo.Context) error {
	user, err := utils.ExtractTokenUser(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	resp, err := c.service.GetCart(e.Request().Context(), user.ExternalID)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *CartController) GetTotal(e echo.Context) error {
	user, err := utils.ExtractTokenUser(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	total, err := c.service.GetTotal(e.Request().Context(), user.ExternalID)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", dto.CartTotalResponse{Total: pricing.ToFloat(total)})
}

func (c *CartController) AddToCart(e echo.Context) error {
	user, err := utils.ExtractTokenUser(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	payload := dto.CartItemRequest{}
	err = e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "AddToCart").Msg("")
	}

	err = c.service.AddToCart(e.Request().Context(), user.ExternalID, payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", nil)
}

func (c *CartController) UpdateQuantity(e echo.Context) error {
	user, err := utils.ExtractTokenUser(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	payload := dto.CartItemRequest{}
	err = e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "UpdateQuantity").Msg("")
	}

	payload.ProductID = e.Param("productId")
	err = c.service.UpdateQuantity(e.Request().Context(), user.ExternalID, payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", nil)
}

func (c *CartController) RemoveFromCart(e echo.Context) error {
	user, err := utils.ExtractTokenUser(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	err = c.service.RemoveFromCart(e.Request().Context(), user.ExternalID, e.Param("productId"))
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", nil)
}

func (c *CartController) ClearCart(e echo.Context) error {
	user, err := utils.ExtractTokenUser(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	err = c.service.ClearCart(e.Request().Context(), user.ExternalID)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", nil)
}

// StreamCart sends the caller's priced cart now and again after every change.
func (c *CartController) StreamCart(e echo.Context) error {
	user, err := utils.ExtractTokenUser(e)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	ctx := e.Request().Context()
	sub := c.service.SubscribeCart(user.ExternalID)

	cart, err := c.service.GetCart(ctx, user.ExternalID)
	if err != nil {
		sub.Close()
		return response.WriteErrorResponse(e, err, nil)
	}

	openStream(e)
	if err := writeEvent(e, "cart", cart); err != nil {
		sub.Close()
		return nil
	}

	return streamEvents(e, "cart", sub, func(event store.Event[domain.Cart]) error {
		cart, err := c.service.GetCart(ctx, user.ExternalID)
		if err != nil {
			return err
		}

		return writeEvent(e, "cart", cart)
	})
}

package controller

import (
	"mime"
	"net/http"
	"path/filepath"

	"github.com/alimikegami/astromart/internal/domain"
	"github.com/alimikegami/astromart/internal/dto"
	"github.com/alimikegami/astromart/internal/service"
	"github.com/alimikegami/astromart/internal/store"
	pkgdto "github.com/alimikegami/astromart/pkg/dto"
	"github.com/alimikegami/astromart/pkg/errs"
	"github.com/alimikegami/astromart/pkg/response"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type ProductController struct {
	service service.ProductService
}

func CreateProductController(g *echo.Group, admin *echo.Group, service service.ProductService) {
	c := ProductController{
		service: service,
	}
	g.GET("/products", c.GetProducts)
	g.GET("/products/stream", c.StreamProducts)
	g.GET("/products/:id", c.GetProductByID)
	g.GET("/products/:id/images", c.ListImages)
	g.GET("/products/:id/images/:name", c.GetImage)

	admin.POST("/products", c.AddProduct)
	admin.POST("/products/preview", c.PreviewMarkup)
	admin.PUT("/products/:id", c.UpdateProduct)
	admin.DELETE("/products/:id", c.DeleteProduct)
	admin.POST("/products/:id/images", c.UploadImage)
}

func (c *ProductController) GetProducts(e echo.Context) error {
	filter := pkgdto.Filter{}
	err := e.Bind(&filter)
	if err != nil {
		log.Error().Err(err).Str("component", "GetProducts").Msg("")
	}

	resp, err := c.service.GetProducts(e.Request().Context(), filter)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *ProductController) GetProductByID(e echo.Context) error {
	resp, err := c.service.GetProductByID(e.Request().Context(), e.Param("id"))
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *ProductController) AddProduct(e echo.Context) error {
	payload := dto.ProductRequest{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "AddProduct").Msg("")
	}

	resp, err := c.service.AddProduct(e.Request().Context(), payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteCreatedResponse(e, "", resp)
}

func (c *ProductController) UpdateProduct(e echo.Context) error {
	payload := dto.ProductRequest{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "UpdateProduct").Msg("")
	}

	payload.ID = e.Param("id")
	resp, err := c.service.UpdateProduct(e.Request().Context(), payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *ProductController) DeleteProduct(e echo.Context) error {
	err := c.service.DeleteProduct(e.Request().Context(), e.Param("id"))
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", nil)
}

func (c *ProductController) PreviewMarkup(e echo.Context) error {
	payload := dto.MarkupRequest{}
	err := e.Bind(&payload)
	if err != nil {
		log.Error().Err(err).Str("component", "PreviewMarkup").Msg("")
	}

	resp, err := c.service.PreviewMarkup(e.Request().Context(), payload)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *ProductController) UploadImage(e echo.Context) error {
	file, err := e.FormFile("image")
	if err != nil {
		log.Error().Err(err).Str("component", "UploadImage").Msg("")
		return response.WriteErrorResponse(e, errs.ErrClient, nil)
	}

	src, err := file.Open()
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}
	defer src.Close()

	err = c.service.UploadImage(e.Request().Context(), e.Param("id"), filepath.Base(file.Filename), src)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteCreatedResponse(e, "", nil)
}

func (c *ProductController) ListImages(e echo.Context) error {
	resp, err := c.service.ListImages(e.Request().Context(), e.Param("id"))
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}

	return response.WriteSuccessResponse(e, "", resp)
}

func (c *ProductController) GetImage(e echo.Context) error {
	name := e.Param("name")
	reader, err := c.service.OpenImage(e.Request().Context(), e.Param("id"), name)
	if err != nil {
		return response.WriteErrorResponse(e, err, nil)
	}
	defer reader.Close()

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = echo.MIMEOctetStream
	}

	return e.Stream(http.StatusOK, contentType, reader)
}

// StreamProducts sends the current catalog followed by every change to it.
func (c *ProductController) StreamProducts(e echo.Context) error {
	snapshot, sub := c.service.SubscribeProducts()
	if snapshot == nil {
		snapshot = []dto.ProductResponse{}
	}

	openStream(e)
	if err := writeEvent(e, "snapshot", snapshot); err != nil {
		sub.Close()
		return nil
	}

	return streamEvents(e, "catalog", sub, func(event store.Event[domain.Product]) error {
		if event.Deleted {
			return writeEvent(e, "product_deleted", map[string]string{"id": event.Key})
		}

		return writeEvent(e, "product", dto.NewProductResponse(event.Value))
	})
}

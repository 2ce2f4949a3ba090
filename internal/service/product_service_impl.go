package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alimikegami/astromart/internal/domain"
	"github.com/alimikegami/astromart/internal/dto"
	"github.com/alimikegami/astromart/internal/repository"
	"github.com/alimikegami/astromart/internal/store"
	pkgdto "github.com/alimikegami/astromart/pkg/dto"
	"github.com/alimikegami/astromart/pkg/errs"
	"github.com/rs/zerolog/log"
)

type ProductServiceImpl struct {
	productRepo repository.ProductRepository
	imageRepo   repository.ImageRepository
	catalog     *store.Store[domain.Product]
	publisher   EventPublisher
	renderer    MarkupRenderer
}

func CreateProductService(productRepo repository.ProductRepository, imageRepo repository.ImageRepository, catalog *store.Store[domain.Product], publisher EventPublisher, renderer MarkupRenderer) ProductService {
	return &ProductServiceImpl{
		productRepo: productRepo,
		imageRepo:   imageRepo,
		catalog:     catalog,
		publisher:   publisher,
		renderer:    renderer,
	}
}

func imagePrefix(productID string) string {
	return fmt.Sprintf("products/%s/", productID)
}

// publish records the change in the live catalog and announces it to other
// instances. A failed announcement is logged; the periodic resync repairs it.
func (s *ProductServiceImpl) publish(ctx context.Context, eventType string, product domain.Product) {
	id := product.ID.Hex()
	event := dto.ProductEvent{ID: id, UpdatedAt: product.UpdatedAt}

	if eventType == dto.EventProductDeleted {
		s.catalog.Delete(id, product.UpdatedAt)
	} else {
		s.catalog.Apply(id, product, product.UpdatedAt)
		event.Product = &product
	}

	if err := s.publisher.Publish(ctx, eventType, id, event); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "ProductService").Str("event_type", eventType).Msg("")
	}
}

func (s *ProductServiceImpl) renderBody(ctx context.Context, markdown string) (*domain.ProductBody, error) {
	if strings.TrimSpace(markdown) == "" {
		return nil, nil
	}

	html, err := s.renderer.Render(ctx, markdown)
	if err != nil {
		return nil, err
	}

	return &domain.ProductBody{Markdown: markdown, HTML: html}, nil
}

func (s *ProductServiceImpl) AddProduct(ctx context.Context, req dto.ProductRequest) (resp dto.ProductResponse, err error) {
	if err = req.Validate(); err != nil {
		return
	}

	body, err := s.renderBody(ctx, req.Markdown)
	if err != nil {
		return
	}

	timestamp := time.Now().UnixMilli()
	product := domain.Product{
		Name:            req.Name,
		Price:           req.Price,
		Description:     req.Description,
		QuantityInStock: req.QuantityInStock,
		IsAvailable:     req.IsAvailable == nil || *req.IsAvailable,
		SalePercentage:  req.SalePercentage,
		Body:            body,
		CreatedAt:       timestamp,
		UpdatedAt:       timestamp,
	}

	product.ID, err = s.productRepo.AddProduct(ctx, product)
	if err != nil {
		return
	}

	s.publish(ctx, dto.EventProductCreated, product)

	return dto.NewProductResponse(product), nil
}

func (s *ProductServiceImpl) GetProducts(ctx context.Context, filter pkgdto.Filter) (resp pkgdto.PaginationResponse, err error) {
	if err = filter.Validate(); err != nil {
		return
	}

	products, err := s.productRepo.GetProducts(ctx, filter)
	if err != nil {
		return
	}

	count, err := s.productRepo.CountProducts(ctx, filter)
	if err != nil {
		return
	}

	records := make([]dto.ProductResponse, 0, len(products))
	for _, product := range products {
		records = append(records, dto.NewProductResponse(product))
	}

	resp.Metadata = pkgdto.PaginationMetadata{TotalCount: uint64(count), Page: uint64(filter.Page), Limit: filter.Limit}
	resp.Records = records

	return
}

func (s *ProductServiceImpl) GetProductByID(ctx context.Context, id string) (resp dto.ProductResponse, err error) {
	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return
	}

	return dto.NewProductResponse(product), nil
}

func (s *ProductServiceImpl) UpdateProduct(ctx context.Context, req dto.ProductRequest) (resp dto.ProductResponse, err error) {
	if err = req.Validate(); err != nil {
		return
	}

	current, err := s.productRepo.GetProductByID(ctx, req.ID)
	if err != nil {
		return
	}

	body := current.Body
	if req.Markdown != "" && (body == nil || body.Markdown != req.Markdown) {
		if body, err = s.renderBody(ctx, req.Markdown); err != nil {
			return
		}
	}

	current.Name = req.Name
	current.Price = req.Price
	current.Description = req.Description
	current.QuantityInStock = req.QuantityInStock
	if req.IsAvailable != nil {
		current.IsAvailable = *req.IsAvailable
	}
	current.SalePercentage = req.SalePercentage
	current.Body = body
	current.UpdatedAt = time.Now().UnixMilli()

	if err = s.productRepo.UpdateProduct(ctx, current); err != nil {
		return
	}
	current.Version++

	s.publish(ctx, dto.EventProductUpdated, current)

	return dto.NewProductResponse(current), nil
}

func (s *ProductServiceImpl) DeleteProduct(ctx context.Context, id string) (err error) {
	product, err := s.productRepo.GetProductByID(ctx, id)
	if err != nil {
		return
	}

	if err = s.productRepo.DeleteProduct(ctx, id); err != nil {
		return
	}

	if err := s.imageRepo.DeleteImages(ctx, imagePrefix(id)); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "DeleteProduct").Str("product_id", id).Msg("failed to remove product images")
	}

	product.UpdatedAt = time.Now().UnixMilli()
	s.publish(ctx, dto.EventProductDeleted, product)

	return nil
}

func (s *ProductServiceImpl) PreviewMarkup(ctx context.Context, req dto.MarkupRequest) (resp dto.MarkupResponse, err error) {
	resp.HTML, err = s.renderer.Render(ctx, req.Markdown)

	return
}

func validImageName(name string) bool {
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, "/\\")
}

func (s *ProductServiceImpl) UploadImage(ctx context.Context, productID string, name string, source io.Reader) (err error) {
	if !validImageName(name) {
		return errs.ErrClient
	}

	if _, err = s.productRepo.GetProductByID(ctx, productID); err != nil {
		return
	}

	if err = s.imageRepo.UploadImage(ctx, imagePrefix(productID)+name, source); err != nil {
		return
	}

	if err = s.productRepo.AddProductImage(ctx, productID, name, time.Now().UnixMilli()); err != nil {
		return
	}

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		return
	}

	s.publish(ctx, dto.EventProductUpdated, product)

	return nil
}

func (s *ProductServiceImpl) ListImages(ctx context.Context, productID string) (resp []dto.ImageResponse, err error) {
	images, err := s.imageRepo.ListImages(ctx, imagePrefix(productID))
	if err != nil {
		return
	}

	resp = make([]dto.ImageResponse, 0, len(images))
	for _, image := range images {
		resp = append(resp, dto.ImageResponse{
			Name:       image.Name,
			Path:       image.Path,
			Size:       image.Size,
			UploadedAt: image.UploadedAt,
		})
	}

	return
}

func (s *ProductServiceImpl) OpenImage(ctx context.Context, productID string, name string) (reader io.ReadCloser, err error) {
	if !validImageName(name) {
		return nil, errs.ErrNotFound
	}

	return s.imageRepo.OpenImage(ctx, imagePrefix(productID)+name)
}

func (s *ProductServiceImpl) SubscribeProducts() (snapshot []dto.ProductResponse, sub *store.Subscription[domain.Product]) {
	sub = s.catalog.Subscribe("")
	for _, product := range s.catalog.List() {
		snapshot = append(snapshot, dto.NewProductResponse(product))
	}

	return snapshot, sub
}

// ResyncCatalog reloads every product from the database into the live
// catalog and drops entries that no longer exist.
func (s *ProductServiceImpl) ResyncCatalog(ctx context.Context) (err error) {
	asOf := time.Now().UnixMilli()

	products, err := s.productRepo.GetProducts(ctx, pkgdto.Filter{})
	if err != nil {
		return
	}

	values := make(map[string]domain.Product, len(products))
	timestamps := make(map[string]int64, len(products))
	for _, product := range products {
		id := product.ID.Hex()
		values[id] = product
		timestamps[id] = product.UpdatedAt
	}

	s.catalog.Reconcile(values, timestamps, asOf)
	log.Ctx(ctx).Debug().Str("component", "ResyncCatalog").Int("products", len(products)).Msg("catalog resynced")

	return nil
}

func decodeEventData(data interface{}, out interface{}) error {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return err
	}

	return json.Unmarshal(dataBytes, out)
}

// HandleEvent applies catalog changes published by any instance.
func (s *ProductServiceImpl) HandleEvent(ctx context.Context, msg dto.KafkaMessage) (err error) {
	switch msg.EventType {
	case dto.EventProductCreated, dto.EventProductUpdated:
		var event dto.ProductEvent
		if err = decodeEventData(msg.Data, &event); err != nil {
			return
		}
		if event.Product == nil {
			return errors.New("product event without product")
		}
		s.catalog.Apply(event.ID, *event.Product, event.UpdatedAt)
	case dto.EventProductDeleted:
		var event dto.ProductEvent
		if err = decodeEventData(msg.Data, &event); err != nil {
			return
		}
		s.catalog.Delete(event.ID, event.UpdatedAt)
	}

	return nil
}

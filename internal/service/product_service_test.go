package service

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/alimikegami/astromart/internal/domain"
	"github.com/alimikegami/astromart/internal/dto"
	pkgdto "github.com/alimikegami/astromart/pkg/dto"
	"github.com/alimikegami/astromart/pkg/errs"
)

func (s *ServiceTestSuite) Test_AddProduct() {
	sale := 20.0

	resp, err := s.productService.AddProduct(s.ctx, dto.ProductRequest{
		Name:            "Moon Rock",
		Price:           20,
		QuantityInStock: 5,
		SalePercentage:  &sale,
		Markdown:        "**genuine**",
	})
	s.Require().NoError(err)

	s.Equal("Moon Rock", resp.Name)
	s.Equal(16.0, resp.SalePrice)
	s.True(resp.IsAvailable)
	s.Require().NotNil(resp.Body)
	s.Equal("<p>**genuine**</p>", resp.Body.HTML)

	stored := s.mongo.product(resp.ID)
	s.Equal(int64(5), stored.QuantityInStock)

	cached, ok := s.catalog.Get(resp.ID)
	s.True(ok)
	s.Equal("Moon Rock", cached.Name)

	s.Len(s.publisher.ofType(dto.EventProductCreated), 1)
}

func (s *ServiceTestSuite) Test_AddProductValidation() {
	negativeSale := -1.0
	bigSale := 101.0

	testCases := []struct {
		Name    string
		Request dto.ProductRequest
	}{
		{Name: "missing name", Request: dto.ProductRequest{Price: 1}},
		{Name: "blank name", Request: dto.ProductRequest{Name: "   ", Price: 1}},
		{Name: "negative price", Request: dto.ProductRequest{Name: "x", Price: -1}},
		{Name: "negative stock", Request: dto.ProductRequest{Name: "x", QuantityInStock: -1}},
		{Name: "negative sale", Request: dto.ProductRequest{Name: "x", SalePercentage: &negativeSale}},
		{Name: "sale above 100", Request: dto.ProductRequest{Name: "x", SalePercentage: &bigSale}},
	}

	for _, tc := range testCases {
		s.Run(tc.Name, func() {
			_, err := s.productService.AddProduct(s.ctx, tc.Request)
			s.ErrorIs(err, errs.ErrClient)
		})
	}

	count, err := s.mongo.CountProducts(s.ctx, pkgdto.Filter{})
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *ServiceTestSuite) Test_AddProductRenderFailure() {
	s.renderer.err = fmt.Errorf("%w: markup service down", errs.ErrBadGateway)

	_, err := s.productService.AddProduct(s.ctx, dto.ProductRequest{Name: "Comet Dust", Price: 3, Markdown: "# dust"})
	s.ErrorIs(err, errs.ErrBadGateway)

	count, err := s.mongo.CountProducts(s.ctx, pkgdto.Filter{})
	s.Require().NoError(err)
	s.Zero(count)
	s.Empty(s.publisher.ofType(dto.EventProductCreated))
}

func (s *ServiceTestSuite) Test_UpdateProduct() {
	product := s.seedProduct("Moon Rock", 20, 5)
	available := false

	resp, err := s.productService.UpdateProduct(s.ctx, dto.ProductRequest{
		ID:              product.ID.Hex(),
		Name:            "Moon Rock XL",
		Price:           25,
		QuantityInStock: 7,
		IsAvailable:     &available,
	})
	s.Require().NoError(err)

	s.Equal("Moon Rock XL", resp.Name)
	s.False(resp.IsAvailable)
	s.Zero(s.renderer.calls)

	stored := s.mongo.product(product.ID.Hex())
	s.Equal(int64(7), stored.QuantityInStock)
	s.Equal(int64(1), stored.Version)

	cached, ok := s.catalog.Get(product.ID.Hex())
	s.True(ok)
	s.Equal(25.0, cached.Price)
	s.Len(s.publisher.ofType(dto.EventProductUpdated), 1)
}

func (s *ServiceTestSuite) Test_UpdateProductNotFound() {
	_, err := s.productService.UpdateProduct(s.ctx, dto.ProductRequest{ID: "64b7f0c2a1b2c3d4e5f60718", Name: "Ghost", Price: 1})
	s.ErrorIs(err, errs.ErrNotFound)
}

func (s *ServiceTestSuite) Test_DeleteProduct() {
	product := s.seedProduct("Moon Rock", 20, 5)
	id := product.ID.Hex()

	s.Require().NoError(s.productService.UploadImage(s.ctx, id, "front.png", strings.NewReader("png")))

	s.Require().NoError(s.productService.DeleteProduct(s.ctx, id))

	_, err := s.productService.GetProductByID(s.ctx, id)
	s.ErrorIs(err, errs.ErrNotFound)

	_, ok := s.catalog.Get(id)
	s.False(ok)

	images, err := s.productService.ListImages(s.ctx, id)
	s.Require().NoError(err)
	s.Empty(images)

	s.Len(s.publisher.ofType(dto.EventProductDeleted), 1)

	stale := product
	stale.Name = "Zombie"
	s.False(s.catalog.Apply(id, stale, product.UpdatedAt-1))
}

func (s *ServiceTestSuite) Test_GetProducts() {
	for i := 0; i < 5; i++ {
		s.mongo.seedProduct(domain.Product{Name: fmt.Sprintf("Star %d", i), Price: 1, CreatedAt: int64(i)})
	}

	resp, err := s.productService.GetProducts(s.ctx, pkgdto.Filter{Limit: 2, Page: 2})
	s.Require().NoError(err)

	s.Equal(uint64(5), resp.Metadata.TotalCount)
	records := resp.Records.([]dto.ProductResponse)
	s.Require().Len(records, 2)
	s.Equal("Star 2", records[0].Name)
	s.Equal("Star 3", records[1].Name)
}

func (s *ServiceTestSuite) Test_GetProductsRejectsNegativePaging() {
	_, err := s.productService.GetProducts(s.ctx, pkgdto.Filter{Limit: 10, Page: -1})
	s.ErrorIs(err, errs.ErrClient)

	_, err = s.orderService.GetAllOrders(s.ctx, pkgdto.Filter{Limit: -1, Page: 1})
	s.ErrorIs(err, errs.ErrClient)
}

func (s *ServiceTestSuite) Test_ProductImages() {
	product := s.seedProduct("Moon Rock", 20, 5)
	id := product.ID.Hex()

	s.Require().NoError(s.productService.UploadImage(s.ctx, id, "front.png", strings.NewReader("front")))
	s.Require().NoError(s.productService.UploadImage(s.ctx, id, "front.png", strings.NewReader("replaced")))
	s.Require().NoError(s.productService.UploadImage(s.ctx, id, "side.png", strings.NewReader("side")))

	images, err := s.productService.ListImages(s.ctx, id)
	s.Require().NoError(err)
	s.Require().Len(images, 2)
	s.Equal("front.png", images[0].Name)
	s.Equal("products/"+id+"/front.png", images[0].Path)

	reader, err := s.productService.OpenImage(s.ctx, id, "front.png")
	s.Require().NoError(err)
	defer reader.Close()
	content, err := io.ReadAll(reader)
	s.Require().NoError(err)
	s.Equal("replaced", string(content))

	s.ElementsMatch([]string{"front.png", "side.png"}, s.mongo.product(id).Images)

	s.ErrorIs(s.productService.UploadImage(s.ctx, id, "../escape.png", strings.NewReader("x")), errs.ErrClient)
	s.ErrorIs(s.productService.UploadImage(s.ctx, "64b7f0c2a1b2c3d4e5f60718", "a.png", strings.NewReader("x")), errs.ErrNotFound)

	_, err = s.productService.OpenImage(s.ctx, id, "missing.png")
	s.ErrorIs(err, errs.ErrNotFound)
}

func (s *ServiceTestSuite) Test_SubscribeProducts() {
	product := s.seedProduct("Moon Rock", 20, 5)
	s.Require().NoError(s.productService.ResyncCatalog(s.ctx))

	snapshot, sub := s.productService.SubscribeProducts()
	defer sub.Close()

	s.Require().Len(snapshot, 1)
	s.Equal(product.ID.Hex(), snapshot[0].ID)

	_, err := s.productService.AddProduct(s.ctx, dto.ProductRequest{Name: "Comet Dust", Price: 3})
	s.Require().NoError(err)

	select {
	case event := <-sub.Events():
		s.Equal("Comet Dust", event.Value.Name)
	case <-time.After(time.Second):
		s.Fail("no catalog event received")
	}
}

func (s *ServiceTestSuite) Test_ResyncCatalogDropsVanishedProducts() {
	gone := domain.Product{Name: "Gone"}
	gone = s.mongo.seedProduct(gone)
	s.catalog.Apply(gone.ID.Hex(), gone, 1)
	s.Require().NoError(s.mongo.DeleteProduct(s.ctx, gone.ID.Hex()))

	kept := s.seedProduct("Kept", 1, 1)

	s.Require().NoError(s.productService.ResyncCatalog(s.ctx))

	_, ok := s.catalog.Get(gone.ID.Hex())
	s.False(ok)
	_, ok = s.catalog.Get(kept.ID.Hex())
	s.True(ok)
}

func (s *ServiceTestSuite) Test_ProductHandleEvent() {
	product := s.seedProduct("Moon Rock", 20, 5)
	id := product.ID.Hex()

	newer := product
	newer.Name = "Moon Rock v2"
	s.Require().NoError(s.productService.HandleEvent(s.ctx, eventMessage(dto.EventProductUpdated, dto.ProductEvent{ID: id, Product: &newer, UpdatedAt: 200})))

	older := product
	older.Name = "Moon Rock v1"
	s.Require().NoError(s.productService.HandleEvent(s.ctx, eventMessage(dto.EventProductUpdated, dto.ProductEvent{ID: id, Product: &older, UpdatedAt: 100})))

	cached, ok := s.catalog.Get(id)
	s.Require().True(ok)
	s.Equal("Moon Rock v2", cached.Name)

	s.Require().NoError(s.productService.HandleEvent(s.ctx, eventMessage(dto.EventProductDeleted, dto.ProductEvent{ID: id, UpdatedAt: 300})))
	_, ok = s.catalog.Get(id)
	s.False(ok)

	s.Error(s.productService.HandleEvent(s.ctx, eventMessage(dto.EventProductCreated, dto.ProductEvent{ID: id, UpdatedAt: 400})))
	s.NoError(s.productService.HandleEvent(s.ctx, eventMessage(dto.EventOrderCreated, dto.OrderCreated{})))
}

func (s *ServiceTestSuite) Test_PreviewMarkup() {
	resp, err := s.productService.PreviewMarkup(s.ctx, dto.MarkupRequest{Markdown: "hi"})
	s.Require().NoError(err)
	s.Equal("<p>hi</p>", resp.HTML)
}

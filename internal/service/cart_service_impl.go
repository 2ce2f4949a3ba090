package service

import (
	"context"
	"time"

	"github.com/alimikegami/astromart/internal/domain"
	"github.com/alimikegami/astromart/internal/dto"
	"github.com/alimikegami/astromart/internal/pricing"
	"github.com/alimikegami/astromart/internal/repository"
	"github.com/alimikegami/astromart/internal/store"
	pkgdto "github.com/alimikegami/astromart/pkg/dto"
	"github.com/alimikegami/astromart/pkg/errs"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type CartServiceImpl struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	carts       *store.Store[domain.Cart]
}

func CreateCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository, carts *store.Store[domain.Cart]) CartService {
	return &CartServiceImpl{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		carts:       carts,
	}
}

// nextTimestamp keeps cart versions strictly increasing even when two writes
// land in the same millisecond.
func nextTimestamp(previous int64) int64 {
	now := time.Now().UnixMilli()
	if now <= previous {
		return previous + 1
	}

	return now
}

func (s *CartServiceImpl) save(ctx context.Context, cart domain.Cart) error {
	cart.UpdatedAt = nextTimestamp(cart.UpdatedAt)

	if err := s.cartRepo.UpsertCart(ctx, cart); err != nil {
		return err
	}

	s.carts.Apply(cart.UserID, cart, cart.UpdatedAt)

	return nil
}

func (s *CartServiceImpl) GetCart(ctx context.Context, userID string) (resp dto.CartResponse, err error) {
	cart, err := s.cartRepo.GetCart(ctx, userID)
	if err != nil {
		return
	}

	return s.buildResponse(ctx, cart)
}

func (s *CartServiceImpl) buildResponse(ctx context.Context, cart domain.Cart) (resp dto.CartResponse, err error) {
	resp = dto.CartResponse{UserID: cart.UserID, Items: []dto.CartItemResponse{}, UpdatedAt: cart.UpdatedAt}
	if cart.IsEmpty() {
		return resp, nil
	}

	products, err := s.cartProducts(ctx, cart)
	if err != nil {
		return
	}

	var lines []pricing.Line
	for _, item := range cart.Items {
		product, ok := products[item.ProductID]
		if !ok {
			continue
		}

		unitPrice := pricing.Price(product.Price)
		lines = append(lines, pricing.Line{UnitPrice: unitPrice, Quantity: item.Quantity})
		resp.Items = append(resp.Items, dto.CartItemResponse{
			ProductID: item.ProductID,
			Name:      product.Name,
			UnitPrice: pricing.ToFloat(unitPrice),
			Quantity:  item.Quantity,
			LineTotal: pricing.ToFloat(pricing.Subtotal(lines[len(lines)-1:])),
			InStock:   product.QuantityInStock,
			AddedAt:   item.AddedAt,
		})
	}

	resp.Subtotal = pricing.ToFloat(pricing.Subtotal(lines))
	resp.Total = pricing.ToFloat(pricing.CartTotal(lines))

	return resp, nil
}

func (s *CartServiceImpl) cartProducts(ctx context.Context, cart domain.Cart) (map[string]domain.Product, error) {
	ids := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.GetProducts(ctx, pkgdto.Filter{ProductIds: ids})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]domain.Product, len(products))
	for _, product := range products {
		byID[product.ID.Hex()] = product
	}

	return byID, nil
}

func (s *CartServiceImpl) AddToCart(ctx context.Context, userID string, req dto.CartItemRequest) (err error) {
	if req.Quantity <= 0 {
		return errs.ErrClient
	}

	product, err := s.productRepo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return
	}

	if !product.IsAvailable {
		return errs.ErrProductUnavailable
	}

	cart, err := s.cartRepo.GetCart(ctx, userID)
	if err != nil {
		return
	}

	i := cart.IndexOf(req.ProductID)
	quantity := req.Quantity
	if i >= 0 {
		quantity += cart.Items[i].Quantity
	}

	if quantity > product.QuantityInStock {
		log.Ctx(ctx).Info().Str("component", "AddToCart").Str("product_id", req.ProductID).Int64("requested", quantity).Int64("in_stock", product.QuantityInStock).Msg("out of stock")
		return errs.ErrOutOfStock
	}

	if i >= 0 {
		cart.Items[i].Quantity = quantity
	} else {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID: req.ProductID,
			Quantity:  quantity,
			AddedAt:   time.Now().UnixMilli(),
		})
	}

	return s.save(ctx, cart)
}

func (s *CartServiceImpl) UpdateQuantity(ctx context.Context, userID string, req dto.CartItemRequest) (err error) {
	if req.Quantity <= 0 {
		return s.RemoveFromCart(ctx, userID, req.ProductID)
	}

	product, err := s.productRepo.GetProductByID(ctx, req.ProductID)
	if err != nil {
		return
	}

	if req.Quantity > product.QuantityInStock {
		return errs.ErrOutOfStock
	}

	cart, err := s.cartRepo.GetCart(ctx, userID)
	if err != nil {
		return
	}

	i := cart.IndexOf(req.ProductID)
	if i < 0 {
		return errs.ErrNotFound
	}
	cart.Items[i].Quantity = req.Quantity

	return s.save(ctx, cart)
}

func (s *CartServiceImpl) RemoveFromCart(ctx context.Context, userID string, productID string) (err error) {
	cart, err := s.cartRepo.GetCart(ctx, userID)
	if err != nil {
		return
	}

	i := cart.IndexOf(productID)
	if i < 0 {
		return nil
	}
	cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)

	return s.save(ctx, cart)
}

func (s *CartServiceImpl) ClearCart(ctx context.Context, userID string) (err error) {
	cart, err := s.cartRepo.GetCart(ctx, userID)
	if err != nil {
		return
	}

	cart.Items = []domain.CartItem{}

	return s.save(ctx, cart)
}

func (s *CartServiceImpl) GetTotal(ctx context.Context, userID string) (total decimal.Decimal, err error) {
	resp, err := s.GetCart(ctx, userID)
	if err != nil {
		return
	}

	return decimal.NewFromFloat(resp.Total), nil
}

func (s *CartServiceImpl) SubscribeCart(userID string) (sub *store.Subscription[domain.Cart]) {
	return s.carts.Subscribe(userID)
}

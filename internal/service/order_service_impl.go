package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alimikegami/astromart/internal/domain"
	"github.com/alimikegami/astromart/internal/dto"
	"github.com/alimikegami/astromart/internal/infrastructure/metrics"
	"github.com/alimikegami/astromart/internal/pricing"
	"github.com/alimikegami/astromart/internal/repository"
	"github.com/alimikegami/astromart/internal/store"
	pkgdto "github.com/alimikegami/astromart/pkg/dto"
	"github.com/alimikegami/astromart/pkg/errs"
	"github.com/alimikegami/astromart/pkg/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type OrderServiceImpl struct {
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	cartRepo     repository.CartRepository
	discountRepo repository.DiscountRepository
	catalog      *store.Store[domain.Product]
	carts        *store.Store[domain.Cart]
	publisher    EventPublisher
}

func CreateOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, cartRepo repository.CartRepository, discountRepo repository.DiscountRepository, catalog *store.Store[domain.Product], carts *store.Store[domain.Cart], publisher EventPublisher) OrderService {
	return &OrderServiceImpl{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		cartRepo:     cartRepo,
		discountRepo: discountRepo,
		catalog:      catalog,
		carts:        carts,
		publisher:    publisher,
	}
}

func (s *OrderServiceImpl) discountFor(ctx context.Context, code string) (*domain.Discount, error) {
	code = normalizeCode(code)
	if code == "" {
		return nil, nil
	}

	discount, err := s.discountRepo.GetDiscountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown discount code %q", errs.ErrClient, code)
		}
		return nil, err
	}

	return &discount, nil
}

func orderOutcome(err error) string {
	switch {
	case err == nil:
		return "placed"
	case errors.Is(err, errs.ErrTransactionConflict), errors.Is(err, errs.ErrOutOfStock):
		return "conflict"
	case errs.IsValidation(err), errors.Is(err, errs.ErrNotLoggedIn):
		return "rejected"
	default:
		return "failed"
	}
}

func recordOutcome(err error) {
	metrics.OrdersTotal.WithLabelValues(orderOutcome(err)).Inc()
}

// PlaceOrder turns the user's cart into an order. Stock is checked and
// decremented, the order inserted and the cart emptied in one transaction;
// nothing is persisted unless all of it commits.
func (s *OrderServiceImpl) PlaceOrder(ctx context.Context, user utils.TokenUser, req dto.OrderRequest) (resp dto.OrderResponse, err error) {
	defer func() { recordOutcome(err) }()

	if user.ExternalID == "" {
		return resp, errs.ErrNotLoggedIn
	}

	discount, err := s.discountFor(ctx, req.DiscountCode)
	if err != nil {
		return
	}

	var (
		order    domain.Order
		touched  []domain.Product
		emptied  domain.Cart
		now      = time.Now().UnixMilli()
		number   uuid.UUID
		trxError error
	)

	number, err = uuid.NewV7()
	if err != nil {
		return
	}

	trxError = s.orderRepo.HandleTrx(ctx, func(trxCtx context.Context) error {
		touched = touched[:0]

		cart, err := s.cartRepo.GetCart(trxCtx, user.ExternalID)
		if err != nil {
			return err
		}

		if cart.IsEmpty() {
			return errs.ErrEmptyCart
		}

		products := make([]domain.OrderProduct, 0, len(cart.Items))
		lines := make([]pricing.Line, 0, len(cart.Items))

		for _, item := range cart.Items {
			product, err := s.productRepo.GetProductByID(trxCtx, item.ProductID)
			if err != nil {
				if errors.Is(err, errs.ErrNotFound) {
					return fmt.Errorf("%w: product %s no longer exists", errs.ErrClient, item.ProductID)
				}
				return err
			}

			if product.QuantityInStock < item.Quantity {
				log.Ctx(ctx).Warn().Str("component", "PlaceOrder").Str("product_id", item.ProductID).Int64("requested", item.Quantity).Int64("in_stock", product.QuantityInStock).Msg("stock changed before checkout")
				return errs.ErrTransactionConflict
			}

			lines = append(lines, pricing.Line{UnitPrice: pricing.Price(product.Price), Quantity: item.Quantity})
			products = append(products, domain.OrderProduct{
				ProductID:       item.ProductID,
				Name:            product.Name,
				Price:           product.Price,
				SalePercentage:  product.SalePercentage,
				QuantityOrdered: item.Quantity,
			})

			product.QuantityInStock -= item.Quantity
			product.UpdatedAt = now
			touched = append(touched, product)
		}

		var pct *float64
		if discount != nil {
			pct = &discount.Percentage
		}
		breakdown := pricing.Compute(lines, pct)

		order = domain.Order{
			Number:    number.String(),
			UserID:    user.ExternalID,
			UserEmail: user.Email,
			Products:  products,
			Subtotal:  pricing.ToFloat(breakdown.Subtotal),
			Tax:       pricing.ToFloat(breakdown.Tax),
			Total:     pricing.ToFloat(breakdown.Total),
			Timestamp: now,
			Status:    domain.OrderStatusPending,
			UpdatedAt: now,
		}
		if discount != nil {
			order.Discount = &domain.OrderDiscount{
				Code:       discount.Code,
				Percentage: discount.Percentage,
				Amount:     pricing.ToFloat(breakdown.Discount),
			}
		}

		order.ID, err = s.orderRepo.AddOrder(trxCtx, order)
		if err != nil {
			return err
		}

		for _, product := range touched {
			if err := s.productRepo.SetProductQuantity(trxCtx, product); err != nil {
				return err
			}
		}

		emptied = domain.Cart{UserID: cart.UserID, Items: []domain.CartItem{}, UpdatedAt: nextTimestamp(cart.UpdatedAt)}

		return s.cartRepo.UpsertCart(trxCtx, emptied)
	})
	if trxError != nil {
		log.Ctx(ctx).Info().Err(trxError).Str("component", "PlaceOrder").Str("user_id", user.ExternalID).Msg("order not placed")
		return resp, trxError
	}

	for _, product := range touched {
		product.Version++
		s.applyProduct(ctx, product)
	}
	s.carts.Apply(emptied.UserID, emptied, emptied.UpdatedAt)

	s.announceOrder(ctx, order)
	metrics.OrderAmount.Observe(order.Total)

	return dto.NewOrderResponse(order), nil
}

func (s *OrderServiceImpl) applyProduct(ctx context.Context, product domain.Product) {
	id := product.ID.Hex()
	s.catalog.Apply(id, product, product.UpdatedAt)

	event := dto.ProductEvent{ID: id, Product: &product, UpdatedAt: product.UpdatedAt}
	if err := s.publisher.Publish(ctx, dto.EventProductUpdated, id, event); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "OrderService").Str("event_type", dto.EventProductUpdated).Msg("")
	}
}

func (s *OrderServiceImpl) announceOrder(ctx context.Context, order domain.Order) {
	event := dto.OrderCreated{
		OrderID:   order.ID.Hex(),
		Number:    order.Number,
		UserID:    order.UserID,
		UserEmail: order.UserEmail,
		Products:  order.Products,
		Total:     order.Total,
		Timestamp: order.Timestamp,
	}

	if err := s.publisher.Publish(ctx, dto.EventOrderCreated, order.ID.Hex(), event); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "OrderService").Str("event_type", dto.EventOrderCreated).Msg("")
	}
}

func newOrderResponses(orders []domain.Order) []dto.OrderResponse {
	resp := make([]dto.OrderResponse, 0, len(orders))
	for _, order := range orders {
		resp = append(resp, dto.NewOrderResponse(order))
	}

	return resp
}

func (s *OrderServiceImpl) GetOrders(ctx context.Context, userID string, filter pkgdto.Filter) (resp []dto.OrderResponse, err error) {
	if err = filter.Validate(); err != nil {
		return
	}

	orders, err := s.orderRepo.GetOrdersByUserID(ctx, userID, filter)
	if err != nil {
		return
	}

	return newOrderResponses(orders), nil
}

// GetOrder hides orders that belong to somebody else behind ErrNotFound.
func (s *OrderServiceImpl) GetOrder(ctx context.Context, userID string, orderID string) (resp dto.OrderResponse, err error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return
	}

	if order.UserID != userID {
		return resp, errs.ErrNotFound
	}

	return dto.NewOrderResponse(order), nil
}

func (s *OrderServiceImpl) GetAllOrders(ctx context.Context, filter pkgdto.Filter) (resp pkgdto.PaginationResponse, err error) {
	if err = filter.Validate(); err != nil {
		return
	}

	orders, err := s.orderRepo.GetOrders(ctx, filter)
	if err != nil {
		return
	}

	count, err := s.orderRepo.CountOrders(ctx, filter)
	if err != nil {
		return
	}

	resp.Metadata = pkgdto.PaginationMetadata{TotalCount: uint64(count), Page: uint64(filter.Page), Limit: filter.Limit}
	resp.Records = newOrderResponses(orders)

	return
}

func (s *OrderServiceImpl) UpdateOrderStatus(ctx context.Context, req dto.OrderStatusRequest) (resp dto.OrderResponse, err error) {
	status, ok := domain.ParseOrderStatus(req.Status)
	if !ok {
		return resp, errs.ErrClient
	}

	order, err := s.orderRepo.GetOrderByID(ctx, req.ID)
	if err != nil {
		return
	}

	from := order.Status
	if !from.CanTransitionTo(status) {
		return resp, fmt.Errorf("%w: %s to %s", errs.ErrInvalidStatusTransition, from, status)
	}

	order.Status = status
	order.UpdatedAt = time.Now().UnixMilli()

	if status != domain.OrderStatusCancelled {
		if err = s.orderRepo.UpdateOrderStatus(ctx, order, from); err != nil {
			return
		}

		return dto.NewOrderResponse(order), nil
	}

	var restored []domain.Product
	err = s.orderRepo.HandleTrx(ctx, func(trxCtx context.Context) error {
		restored = restored[:0]

		if err := s.orderRepo.UpdateOrderStatus(trxCtx, order, from); err != nil {
			return err
		}

		for _, item := range order.Products {
			product, err := s.productRepo.GetProductByID(trxCtx, item.ProductID)
			if err != nil {
				if errors.Is(err, errs.ErrNotFound) {
					continue
				}
				return err
			}

			product.QuantityInStock += item.QuantityOrdered
			product.UpdatedAt = order.UpdatedAt
			if err := s.productRepo.SetProductQuantity(trxCtx, product); err != nil {
				return err
			}
			restored = append(restored, product)
		}

		return nil
	})
	if err != nil {
		return
	}

	for _, product := range restored {
		product.Version++
		s.applyProduct(ctx, product)
	}

	return dto.NewOrderResponse(order), nil
}

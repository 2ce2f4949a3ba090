package service

import (
	"context"
	"io"

	"github.com/alimikegami/astromart/internal/domain"
	"github.com/alimikegami/astromart/internal/dto"
	"github.com/alimikegami/astromart/internal/store"
	pkgdto "github.com/alimikegami/astromart/pkg/dto"
	"github.com/alimikegami/astromart/pkg/utils"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"gopkg.in/gomail.v2"
)

type ProductService interface {
	AddProduct(ctx context.Context, req dto.ProductRequest) (resp dto.ProductResponse, err error)
	GetProducts(ctx context.Context, filter pkgdto.Filter) (resp pkgdto.PaginationResponse, err error)
	GetProductByID(ctx context.Context, id string) (resp dto.ProductResponse, err error)
	UpdateProduct(ctx context.Context, req dto.ProductRequest) (resp dto.ProductResponse, err error)
	DeleteProduct(ctx context.Context, id string) (err error)
	PreviewMarkup(ctx context.Context, req dto.MarkupRequest) (resp dto.MarkupResponse, err error)
	UploadImage(ctx context.Context, productID string, name string, source io.Reader) (err error)
	ListImages(ctx context.Context, productID string) (resp []dto.ImageResponse, err error)
	OpenImage(ctx context.Context, productID string, name string) (reader io.ReadCloser, err error)
	SubscribeProducts() (snapshot []dto.ProductResponse, sub *store.Subscription[domain.Product])
	ResyncCatalog(ctx context.Context) (err error)
	HandleEvent(ctx context.Context, msg dto.KafkaMessage) (err error)
}

type CartService interface {
	GetCart(ctx context.Context, userID string) (resp dto.CartResponse, err error)
	AddToCart(ctx context.Context, userID string, req dto.CartItemRequest) (err error)
	UpdateQuantity(ctx context.Context, userID string, req dto.CartItemRequest) (err error)
	RemoveFromCart(ctx context.Context, userID string, productID string) (err error)
	ClearCart(ctx context.Context, userID string) (err error)
	GetTotal(ctx context.Context, userID string) (total decimal.Decimal, err error)
	SubscribeCart(userID string) (sub *store.Subscription[domain.Cart])
}

type DiscountService interface {
	GetDiscount(ctx context.Context, code string) (resp dto.DiscountResponse, err error)
	GetDiscounts(ctx context.Context) (resp []dto.DiscountResponse, err error)
	CreateDiscount(ctx context.Context, req dto.DiscountRequest) (resp dto.DiscountResponse, err error)
	DeleteDiscount(ctx context.Context, code string) (err error)
}

type OrderService interface {
	PlaceOrder(ctx context.Context, user utils.TokenUser, req dto.OrderRequest) (resp dto.OrderResponse, err error)
	GetOrders(ctx context.Context, userID string, filter pkgdto.Filter) (resp []dto.OrderResponse, err error)
	GetOrder(ctx context.Context, userID string, orderID string) (resp dto.OrderResponse, err error)
	GetAllOrders(ctx context.Context, filter pkgdto.Filter) (resp pkgdto.PaginationResponse, err error)
	UpdateOrderStatus(ctx context.Context, req dto.OrderStatusRequest) (resp dto.OrderResponse, err error)
}

type UserService interface {
	AddUser(ctx context.Context, req dto.UserRequest) (err error)
	Login(ctx context.Context, req dto.UserRequest) (resp dto.LoginResponse, err error)
	GetUsers(ctx context.Context, filter pkgdto.Filter) (resp pkgdto.PaginationResponse, err error)
	GetUser(ctx context.Context, externalID string) (resp dto.UserResponse, err error)
	SetUserRole(ctx context.Context, req dto.RoleRequest) (err error)
	GrantAdminByEmail(ctx context.Context, email string) (err error)
}

type NotificationService interface {
	HandleEvent(ctx context.Context, msg dto.KafkaMessage) (err error)
}

type EventPublisher interface {
	Publish(ctx context.Context, eventType string, key string, data interface{}) error
}

type MarkupRenderer interface {
	Render(ctx context.Context, markdown string) (string, error)
}

type Mailer interface {
	Send(message *gomail.Message) error
}

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

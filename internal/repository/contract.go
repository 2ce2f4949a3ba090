package repository

import (
	"context"
	"io"

	"github.com/alimikegami/astromart/internal/domain"
	pkgdto "github.com/alimikegami/astromart/pkg/dto"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductRepository interface {
	AddProduct(ctx context.Context, data domain.Product) (id primitive.ObjectID, err error)
	GetProducts(ctx context.Context, filter pkgdto.Filter) (data []domain.Product, err error)
	CountProducts(ctx context.Context, filter pkgdto.Filter) (count int64, err error)
	GetProductByID(ctx context.Context, id string) (product domain.Product, err error)
	UpdateProduct(ctx context.Context, data domain.Product) (err error)
	DeleteProduct(ctx context.Context, id string) (err error)
	// SetProductQuantity writes data.QuantityInStock only if the stored
	// version still equals data.Version, and bumps the version.
	SetProductQuantity(ctx context.Context, data domain.Product) (err error)
	AddProductImage(ctx context.Context, id string, name string, updatedAt int64) (err error)
}

type CartRepository interface {
	GetCart(ctx context.Context, userID string) (cart domain.Cart, err error)
	UpsertCart(ctx context.Context, cart domain.Cart) (err error)
}

type DiscountRepository interface {
	AddDiscount(ctx context.Context, data domain.Discount) (err error)
	GetDiscountByCode(ctx context.Context, code string) (data domain.Discount, err error)
	GetDiscounts(ctx context.Context) (data []domain.Discount, err error)
	DeleteDiscount(ctx context.Context, code string) (err error)
}

type OrderRepository interface {
	// HandleTrx runs fn inside one multi-document transaction. fn must use the
	// context it is given for every read and write that belongs to it.
	HandleTrx(ctx context.Context, fn func(ctx context.Context) error) error
	AddOrder(ctx context.Context, data domain.Order) (id primitive.ObjectID, err error)
	GetOrderByID(ctx context.Context, id string) (data domain.Order, err error)
	GetOrdersByUserID(ctx context.Context, userID string, filter pkgdto.Filter) (data []domain.Order, err error)
	GetOrders(ctx context.Context, filter pkgdto.Filter) (data []domain.Order, err error)
	CountOrders(ctx context.Context, filter pkgdto.Filter) (count int64, err error)
	// UpdateOrderStatus moves the order from status `from` to data.Status.
	UpdateOrderStatus(ctx context.Context, data domain.Order, from domain.OrderStatus) (err error)
}

type ImageRepository interface {
	UploadImage(ctx context.Context, path string, source io.Reader) (err error)
	ListImages(ctx context.Context, prefix string) (data []domain.ProductImage, err error)
	OpenImage(ctx context.Context, path string) (reader io.ReadCloser, err error)
	DeleteImages(ctx context.Context, prefix string) (err error)
}

type UserRepository interface {
	GetUserByEmail(ctx context.Context, email string) (res domain.User, err error)
	AddUser(ctx context.Context, data domain.User) (id int64, err error)
	GetUserByExternalID(ctx context.Context, externalID string) (data domain.User, err error)
	UpdateUserRole(ctx context.Context, data domain.User) (err error)
	GetUsers(ctx context.Context, filter pkgdto.Filter) (data []domain.User, err error)
	CountUsers(ctx context.Context, filter pkgdto.Filter) (count int64, err error)
}

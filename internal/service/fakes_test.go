package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/alimikegami/astromart/internal/domain"
	"github.com/alimikegami/astromart/internal/dto"
	pkgdto "github.com/alimikegami/astromart/pkg/dto"
	"github.com/alimikegami/astromart/pkg/errs"
	"github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gopkg.in/gomail.v2"
)

type trxKey struct{}

// fakeTrx stages writes until commit, when every staged document is checked
// against the version (or status) it was read at.
type fakeTrx struct {
	products        map[string]domain.Product
	productVersions map[string]int64
	carts           map[string]domain.Cart
	orders          map[string]domain.Order
	orderStatuses   map[string]domain.OrderStatus
}

func trxFrom(ctx context.Context) *fakeTrx {
	trx, _ := ctx.Value(trxKey{}).(*fakeTrx)
	return trx
}

// fakeMongo implements the product, cart, discount and order repositories.
type fakeMongo struct {
	mu        sync.Mutex
	products  map[string]domain.Product
	carts     map[string]domain.Cart
	discounts map[string]domain.Discount
	orders    map[string]domain.Order

	beforeCommit func()
	commits      int
}

func newFakeMongo() *fakeMongo {
	return &fakeMongo{
		products:  map[string]domain.Product{},
		carts:     map[string]domain.Cart{},
		discounts: map[string]domain.Discount{},
		orders:    map[string]domain.Order{},
	}
}

func (f *fakeMongo) seedProduct(p domain.Product) domain.Product {
	f.mu.Lock()
	defer f.mu.Unlock()

	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	f.products[p.ID.Hex()] = p

	return p
}

func (f *fakeMongo) product(id string) domain.Product {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.products[id]
}

func (f *fakeMongo) orderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.orders)
}

func (f *fakeMongo) HandleTrx(ctx context.Context, fn func(ctx context.Context) error) error {
	trx := &fakeTrx{
		products:        map[string]domain.Product{},
		productVersions: map[string]int64{},
		carts:           map[string]domain.Cart{},
		orders:          map[string]domain.Order{},
		orderStatuses:   map[string]domain.OrderStatus{},
	}

	if err := fn(context.WithValue(ctx, trxKey{}, trx)); err != nil {
		return err
	}

	if f.beforeCommit != nil {
		f.beforeCommit()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for id, version := range trx.productVersions {
		if current, ok := f.products[id]; !ok || current.Version != version {
			return errs.ErrTransactionConflict
		}
	}
	for id, status := range trx.orderStatuses {
		if f.orders[id].Status != status {
			return errs.ErrTransactionConflict
		}
	}

	for id, p := range trx.products {
		f.products[id] = p
	}
	for id, c := range trx.carts {
		f.carts[id] = c
	}
	for id, o := range trx.orders {
		f.orders[id] = o
	}
	f.commits++

	return nil
}

func (f *fakeMongo) AddProduct(ctx context.Context, data domain.Product) (id primitive.ObjectID, err error) {
	data.ID = primitive.NewObjectID()
	f.seedProduct(data)

	return data.ID, nil
}

func matchesProduct(p domain.Product, filter pkgdto.Filter) bool {
	if filter.Q != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Q)) {
		return false
	}

	if len(filter.ProductIds) > 0 {
		for _, id := range filter.ProductIds {
			if id == p.ID.Hex() {
				return true
			}
		}
		return false
	}

	return true
}

func (f *fakeMongo) GetProducts(ctx context.Context, filter pkgdto.Filter) (data []domain.Product, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data = []domain.Product{}
	for _, p := range f.products {
		if matchesProduct(p, filter) {
			data = append(data, p)
		}
	}
	sort.Slice(data, func(i, j int) bool { return data[i].CreatedAt < data[j].CreatedAt })

	if filter.Limit != 0 && filter.Page != 0 {
		start := int(filter.Offset())
		if start > len(data) {
			start = len(data)
		}
		end := start + filter.Limit
		if end > len(data) {
			end = len(data)
		}
		data = data[start:end]
	}

	return data, nil
}

func (f *fakeMongo) CountProducts(ctx context.Context, filter pkgdto.Filter) (count int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, p := range f.products {
		if matchesProduct(p, filter) {
			count++
		}
	}

	return count, nil
}

func (f *fakeMongo) GetProductByID(ctx context.Context, id string) (product domain.Product, err error) {
	if trx := trxFrom(ctx); trx != nil {
		if p, ok := trx.products[id]; ok {
			return p, nil
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	product, ok := f.products[id]
	if !ok {
		return product, errs.ErrNotFound
	}

	return product, nil
}

func (f *fakeMongo) UpdateProduct(ctx context.Context, data domain.Product) (err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, ok := f.products[data.ID.Hex()]
	if !ok {
		return errs.ErrNotFound
	}

	data.Version = current.Version + 1
	data.Images = current.Images
	f.products[data.ID.Hex()] = data

	return nil
}

func (f *fakeMongo) DeleteProduct(ctx context.Context, id string) (err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.products[id]; !ok {
		return errs.ErrNotFound
	}
	delete(f.products, id)

	return nil
}

func (f *fakeMongo) SetProductQuantity(ctx context.Context, data domain.Product) (err error) {
	id := data.ID.Hex()

	trx := trxFrom(ctx)
	if trx == nil {
		f.mu.Lock()
		defer f.mu.Unlock()

		current, ok := f.products[id]
		if !ok || current.Version != data.Version {
			return errs.ErrTransactionConflict
		}
		current.QuantityInStock = data.QuantityInStock
		current.UpdatedAt = data.UpdatedAt
		current.Version++
		f.products[id] = current

		return nil
	}

	current, err := f.GetProductByID(ctx, id)
	if err != nil || current.Version != data.Version {
		return errs.ErrTransactionConflict
	}

	if _, staged := trx.productVersions[id]; !staged {
		trx.productVersions[id] = current.Version
	}
	current.QuantityInStock = data.QuantityInStock
	current.UpdatedAt = data.UpdatedAt
	current.Version++
	trx.products[id] = current

	return nil
}

func (f *fakeMongo) AddProductImage(ctx context.Context, id string, name string, updatedAt int64) (err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, ok := f.products[id]
	if !ok {
		return errs.ErrNotFound
	}

	for _, image := range current.Images {
		if image == name {
			current.UpdatedAt = updatedAt
			f.products[id] = current
			return nil
		}
	}
	current.Images = append(current.Images, name)
	current.UpdatedAt = updatedAt
	f.products[id] = current

	return nil
}

func (f *fakeMongo) GetCart(ctx context.Context, userID string) (cart domain.Cart, err error) {
	if trx := trxFrom(ctx); trx != nil {
		if c, ok := trx.carts[userID]; ok {
			return c, nil
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	cart, ok := f.carts[userID]
	if !ok {
		return domain.Cart{UserID: userID, Items: []domain.CartItem{}}, nil
	}

	cart.Items = append([]domain.CartItem{}, cart.Items...)

	return cart, nil
}

func (f *fakeMongo) UpsertCart(ctx context.Context, cart domain.Cart) (err error) {
	cart.Items = append([]domain.CartItem{}, cart.Items...)

	if trx := trxFrom(ctx); trx != nil {
		trx.carts[cart.UserID] = cart
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.carts[cart.UserID] = cart

	return nil
}

func (f *fakeMongo) AddDiscount(ctx context.Context, data domain.Discount) (err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.discounts[data.Code]; ok {
		return errs.ErrConflict
	}
	f.discounts[data.Code] = data

	return nil
}

func (f *fakeMongo) GetDiscountByCode(ctx context.Context, code string) (data domain.Discount, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.discounts[code]
	if !ok {
		return data, errs.ErrNotFound
	}

	return data, nil
}

func (f *fakeMongo) GetDiscounts(ctx context.Context) (data []domain.Discount, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data = []domain.Discount{}
	for _, d := range f.discounts {
		data = append(data, d)
	}
	sort.Slice(data, func(i, j int) bool { return data[i].Code < data[j].Code })

	return data, nil
}

func (f *fakeMongo) DeleteDiscount(ctx context.Context, code string) (err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.discounts[code]; !ok {
		return errs.ErrNotFound
	}
	delete(f.discounts, code)

	return nil
}

func (f *fakeMongo) AddOrder(ctx context.Context, data domain.Order) (id primitive.ObjectID, err error) {
	data.ID = primitive.NewObjectID()

	if trx := trxFrom(ctx); trx != nil {
		trx.orders[data.ID.Hex()] = data
		return data.ID, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.orders[data.ID.Hex()] = data

	return data.ID, nil
}

func (f *fakeMongo) GetOrderByID(ctx context.Context, id string) (data domain.Order, err error) {
	if trx := trxFrom(ctx); trx != nil {
		if o, ok := trx.orders[id]; ok {
			return o, nil
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.orders[id]
	if !ok {
		return data, errs.ErrNotFound
	}

	return data, nil
}

func (f *fakeMongo) listOrders(keep func(domain.Order) bool, filter pkgdto.Filter) []domain.Order {
	f.mu.Lock()
	defer f.mu.Unlock()

	data := []domain.Order{}
	for _, o := range f.orders {
		if filter.Status != "" && string(o.Status) != filter.Status {
			continue
		}
		if keep(o) {
			data = append(data, o)
		}
	}
	sort.Slice(data, func(i, j int) bool { return data[i].Timestamp > data[j].Timestamp })

	return data
}

func (f *fakeMongo) GetOrdersByUserID(ctx context.Context, userID string, filter pkgdto.Filter) (data []domain.Order, err error) {
	return f.listOrders(func(o domain.Order) bool { return o.UserID == userID }, filter), nil
}

func (f *fakeMongo) GetOrders(ctx context.Context, filter pkgdto.Filter) (data []domain.Order, err error) {
	return f.listOrders(func(domain.Order) bool { return true }, filter), nil
}

func (f *fakeMongo) CountOrders(ctx context.Context, filter pkgdto.Filter) (count int64, err error) {
	return int64(len(f.listOrders(func(domain.Order) bool { return true }, filter))), nil
}

func (f *fakeMongo) UpdateOrderStatus(ctx context.Context, data domain.Order, from domain.OrderStatus) (err error) {
	id := data.ID.Hex()

	current, err := f.GetOrderByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Status != from {
		return errs.ErrTransactionConflict
	}

	current.Status = data.Status
	current.UpdatedAt = data.UpdatedAt

	if trx := trxFrom(ctx); trx != nil {
		if _, staged := trx.orderStatuses[id]; !staged {
			trx.orderStatuses[id] = from
		}
		trx.orders[id] = current
		return nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.orders[id] = current

	return nil
}

type fakeImages struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newFakeImages() *fakeImages {
	return &fakeImages{files: map[string][]byte{}}
}

func (f *fakeImages) UploadImage(ctx context.Context, path string, source io.Reader) (err error) {
	data, err := io.ReadAll(source)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.files[path] = data

	return nil
}

func (f *fakeImages) ListImages(ctx context.Context, prefix string) (data []domain.ProductImage, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data = []domain.ProductImage{}
	for path, content := range f.files {
		if strings.HasPrefix(path, prefix) {
			data = append(data, domain.ProductImage{Name: strings.TrimPrefix(path, prefix), Path: path, Size: int64(len(content))})
		}
	}
	sort.Slice(data, func(i, j int) bool { return data[i].Name < data[j].Name })

	return data, nil
}

func (f *fakeImages) OpenImage(ctx context.Context, path string) (reader io.ReadCloser, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	content, ok := f.files[path]
	if !ok {
		return nil, errs.ErrNotFound
	}

	return io.NopCloser(bytes.NewReader(content)), nil
}

func (f *fakeImages) DeleteImages(ctx context.Context, prefix string) (err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for path := range f.files {
		if strings.HasPrefix(path, prefix) {
			delete(f.files, path)
		}
	}

	return nil
}

type publishedEvent struct {
	EventType string
	Key       string
	Data      interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(ctx context.Context, eventType string, key string, data interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, publishedEvent{EventType: eventType, Key: key, Data: data})

	return nil
}

func (p *fakePublisher) ofType(eventType string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()

	var events []publishedEvent
	for _, e := range p.events {
		if e.EventType == eventType {
			events = append(events, e)
		}
	}

	return events
}

type fakeRenderer struct {
	calls int
	err   error
}

func (r *fakeRenderer) Render(ctx context.Context, markdown string) (string, error) {
	r.calls++
	if r.err != nil {
		return "", r.err
	}

	return "<p>" + markdown + "</p>", nil
}

type fakeMailer struct {
	sent []*gomail.Message
	err  error
}

func (m *fakeMailer) Send(message *gomail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, message)

	return nil
}

type fakeUsers struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]domain.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[int64]domain.User{}}
}

func (f *fakeUsers) find(match func(domain.User) bool) domain.User {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if match(u) {
			return u
		}
	}

	return domain.User{}
}

func (f *fakeUsers) GetUserByEmail(ctx context.Context, email string) (res domain.User, err error) {
	return f.find(func(u domain.User) bool { return u.Email == email }), nil
}

func (f *fakeUsers) AddUser(ctx context.Context, data domain.User) (id int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	data.ID = f.nextID
	f.users[data.ID] = data

	return data.ID, nil
}

func (f *fakeUsers) GetUserByExternalID(ctx context.Context, externalID string) (data domain.User, err error) {
	return f.find(func(u domain.User) bool { return u.ExternalID == externalID }), nil
}

func (f *fakeUsers) UpdateUserRole(ctx context.Context, data domain.User) (err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, u := range f.users {
		if u.ExternalID == data.ExternalID {
			u.Role = data.Role
			u.UpdatedAt = data.UpdatedAt
			f.users[id] = u
			return nil
		}
	}

	return errs.ErrNotFound
}

func (f *fakeUsers) GetUsers(ctx context.Context, filter pkgdto.Filter) (data []domain.User, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data = []domain.User{}
	for _, u := range f.users {
		data = append(data, u)
	}
	sort.Slice(data, func(i, j int) bool { return data[i].ID < data[j].ID })

	return data, nil
}

func (f *fakeUsers) CountUsers(ctx context.Context, filter pkgdto.Filter) (count int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return int64(len(f.users)), nil
}

type fakeReader struct {
	messages []kafka.Message
	cancel   context.CancelFunc
	errs     []error
}

func (r *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.errs) > 0 {
		err := r.errs[0]
		r.errs = r.errs[1:]
		return kafka.Message{}, err
	}

	if len(r.messages) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}

	msg := r.messages[0]
	r.messages = r.messages[1:]

	return msg, nil
}

var errBoom = errors.New("boom")

// eventMessage round-trips data through JSON the way it arrives from the broker.
func eventMessage(eventType string, data interface{}) dto.KafkaMessage {
	raw, _ := json.Marshal(dto.KafkaMessage{EventType: eventType, Data: data})

	var msg dto.KafkaMessage
	_ = json.Unmarshal(raw, &msg)

	return msg
}

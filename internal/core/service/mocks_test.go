package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rl1809/storefront/internal/core/domain"
)

var errBackendDown = errors.New("backend down")

// Mock ProductRepository
type mockProducts struct {
	mu       sync.Mutex
	products map[string]domain.Product
	created  []domain.Product
	updated  []domain.Product
	deleted  []string
	listErr  error
}

func newMockProducts(products ...domain.Product) *mockProducts {
	m := &mockProducts{products: make(map[string]domain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockProducts) ListProducts(ctx context.Context) ([]domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockProducts) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, errors.New("product not found")
	}
	return &p, nil
}

func (m *mockProducts) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	product.ID = "new-product"
	m.created = append(m.created, product)
	return &product, nil
}

func (m *mockProducts) UpdateProduct(ctx context.Context, product domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updated = append(m.updated, product)
	return nil
}

func (m *mockProducts) DeleteProduct(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	return nil
}

// Mock DeliveryRepository
type mockDeliveries struct {
	mu         sync.Mutex
	deliveries []domain.Delivery
	created    []domain.Delivery
	statuses   map[string]domain.OrderStatus
	deleted    []string
	createErr  error
	listErr    error
	onCreate   func()
}

func newMockDeliveries(deliveries ...domain.Delivery) *mockDeliveries {
	return &mockDeliveries{deliveries: deliveries, statuses: make(map[string]domain.OrderStatus)}
}

func (m *mockDeliveries) ListDeliveries(ctx context.Context) ([]domain.Delivery, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.Delivery, len(m.deliveries))
	copy(out, m.deliveries)
	return out, nil
}

func (m *mockDeliveries) CreateDelivery(ctx context.Context, delivery domain.Delivery) (*domain.Delivery, error) {
	if m.onCreate != nil {
		m.onCreate()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	delivery.ID = "delivery-1"
	m.created = append(m.created, delivery)
	return &delivery, nil
}

func (m *mockDeliveries) UpdateDeliveryStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[id] = status
	return nil
}

func (m *mockDeliveries) DeleteDelivery(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	return nil
}

// Mock IdempotencyStore
type mockIdempotency struct {
	mu       sync.Mutex
	keys     map[string]bool
	released []string
}

func newMockIdempotency() *mockIdempotency {
	return &mockIdempotency{keys: make(map[string]bool)}
}

func (m *mockIdempotency) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys[key] {
		return false, nil
	}
	m.keys[key] = true
	return true, nil
}

func (m *mockIdempotency) ReleaseIdempotency(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, key)
	m.released = append(m.released, key)
	return nil
}

func (m *mockIdempotency) Ping(ctx context.Context) error {
	return nil
}

// Mock ReviewRepository
type mockReviews struct {
	reviews   map[string][]domain.Review
	created   []domain.Review
	replies   map[string][]domain.Reply
	listErr   error
	createErr error
}

func newMockReviews() *mockReviews {
	return &mockReviews{
		reviews: make(map[string][]domain.Review),
		replies: make(map[string][]domain.Reply),
	}
}

func (m *mockReviews) ListReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.reviews[productID], nil
}

func (m *mockReviews) CreateReview(ctx context.Context, review domain.Review) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, review)
	m.reviews[review.ProductID] = append(m.reviews[review.ProductID], review)
	return nil
}

func (m *mockReviews) ReplyToReview(ctx context.Context, reviewID string, reply domain.Reply) error {
	m.replies[reviewID] = append(m.replies[reviewID], reply)
	return nil
}

// Mock UserRepository
type mockUsers struct {
	users       map[string]domain.User
	created     []domain.User
	carts       []string
	createErr   error
	cartErr     error
	searchCalls int
}

func newMockUsers(users ...domain.User) *mockUsers {
	m := &mockUsers{users: make(map[string]domain.User)}
	for _, u := range users {
		m.users[u.Username] = u
	}
	return m
}

func (m *mockUsers) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	u, ok := m.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *mockUsers) SearchUsers(ctx context.Context, username string) ([]domain.User, error) {
	m.searchCalls++
	var out []domain.User
	for _, u := range m.users {
		if u.Username == username {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockUsers) GetUser(ctx context.Context, id string) (*domain.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, errors.New("user not found")
}

func (m *mockUsers) CreateUser(ctx context.Context, user domain.User) (*domain.User, error) {
	if m.createErr != nil {
		return nil, m.createErr
	}
	user.ID = "user-" + user.Username
	m.created = append(m.created, user)
	m.users[user.Username] = user
	return &user, nil
}

func (m *mockUsers) CreateCart(ctx context.Context, userID, username string) error {
	m.carts = append(m.carts, userID)
	return m.cartErr
}

// Mock ReportRepository
type mockReports struct {
	saved    [][]domain.DailyRevenue
	history  []domain.DailyRevenue
	from, to string
	listErr  error
}

func (m *mockReports) SaveDailyRevenue(ctx context.Context, days []domain.DailyRevenue) error {
	m.saved = append(m.saved, days)
	return nil
}

func (m *mockReports) ListDailyRevenue(ctx context.Context, from, to string) ([]domain.DailyRevenue, error) {
	m.from, m.to = from, to
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.history, nil
}

var (
	customer = domain.Session{UserID: "u1", Username: "alice", Role: domain.RoleCustomer}
	admin    = domain.Session{UserID: "a1", Username: "root", Role: domain.RoleAdmin}
)

func validAddress() domain.Address {
	return domain.Address{
		Recipient: "Alice",
		Phone:     "0900000000",
		Street:    "1 Le Loi",
		City:      "Ho Chi Minh",
	}
}

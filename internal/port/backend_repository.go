package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type ProductRepository interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, product domain.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

type DeliveryRepository interface {
	ListDeliveries(ctx context.Context) ([]domain.Delivery, error)
	CreateDelivery(ctx context.Context, delivery domain.Delivery) (*domain.Delivery, error)
	UpdateDeliveryStatus(ctx context.Context, id string, status domain.OrderStatus) error
	DeleteDelivery(ctx context.Context, id string) error
}

type ReviewRepository interface {
	ListReviews(ctx context.Context, productID string) ([]domain.Review, error)
	CreateReview(ctx context.Context, review domain.Review) error
	ReplyToReview(ctx context.Context, reviewID string, reply domain.Reply) error
}

type UserRepository interface {
	// FindByUsername returns nil, nil when no such user exists
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	SearchUsers(ctx context.Context, username string) ([]domain.User, error)
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, user domain.User) (*domain.User, error)

	// CreateCart provisions the backend cart record for a new user
	CreateCart(ctx context.Context, userID, username string) error
}

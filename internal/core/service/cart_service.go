package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

type CheckoutRequest struct {
	RequestID       string         `json:"request_id"`
	Address         domain.Address `json:"address"`
	BuyNowProductID string         `json:"buy_now_product_id,omitempty"`
}

type CheckoutResult struct {
	RequestID string                 `json:"request_id"`
	Payload   domain.CheckoutPayload `json:"payload"`
	Delivery  *domain.Delivery       `json:"delivery"`
}

// CartService owns the session cart and hands it over to checkout.
type CartService struct {
	cart        *domain.Cart
	products    port.ProductRepository
	deliveries  port.DeliveryRepository
	idempotency port.IdempotencyStore
	logger      *zap.Logger
	now         func() time.Time
}

func NewCartService(
	cart *domain.Cart,
	products port.ProductRepository,
	deliveries port.DeliveryRepository,
	idempotency port.IdempotencyStore,
	logger *zap.Logger,
) *CartService {
	return &CartService{
		cart:        cart,
		products:    products,
		deliveries:  deliveries,
		idempotency: idempotency,
		logger:      logger,
		now:         time.Now,
	}
}

// Add fetches the product and adds one unit of it to the cart.
func (s *CartService) Add(ctx context.Context, productID string) (domain.CartView, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return domain.CartView{}, fmt.Errorf("fetch product %s: %w", productID, err)
	}
	return s.cart.Add(*product), nil
}

// Remove takes one unit of the product out of the cart. Unknown products are
// ignored.
func (s *CartService) Remove(productID string) domain.CartView {
	line, ok := s.cart.Lookup(productID)
	if !ok {
		return s.cart.View()
	}
	return s.cart.Remove(line.Product)
}

func (s *CartService) View() domain.CartView {
	return s.cart.View()
}

func (s *CartService) Subscribe(fn func(domain.CartView)) func() {
	return s.cart.Subscribe(fn)
}

// Checkout submits the cart, or a single buy-now product, as a pending
// delivery. A request id can only be submitted once per user; on backend
// failure the id is released so the same request can be retried.
func (s *CartService) Checkout(ctx context.Context, session domain.Session, req CheckoutRequest) (*CheckoutResult, error) {
	if !session.LoggedIn() {
		return nil, ErrNotLoggedIn
	}
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	fromCart := req.BuyNowProductID == ""
	var payload domain.CheckoutPayload
	var taken []domain.CartLine
	if fromCart {
		// The submitted lines leave the cart now; anything added while the
		// delivery is in flight stays behind for the next checkout.
		taken, _ = s.cart.Take()
		payload = domain.PayloadFromLines(taken)
	} else {
		product, err := s.products.GetProduct(ctx, req.BuyNowProductID)
		if err != nil {
			return nil, fmt.Errorf("fetch product %s: %w", req.BuyNowProductID, err)
		}
		payload = domain.BuyNow(*product)
	}
	if len(payload) == 0 {
		return nil, ErrEmptyCart
	}

	submitted := false
	defer func() {
		if !submitted && len(taken) > 0 {
			s.cart.Restore(taken)
		}
	}()

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	idempotencyKey := fmt.Sprintf("checkout:%s:%s", session.Username, requestID)

	ok, err := s.idempotency.SetIdempotency(ctx, idempotencyKey)
	if err != nil {
		return nil, fmt.Errorf("idempotency check failed: %w", err)
	}
	if !ok {
		return nil, ErrDuplicateRequest
	}

	summary := domain.Summarize(payload.Lines())
	delivery := domain.Delivery{
		UserID:     session.UserID,
		Username:   session.Username,
		Items:      payload.ToOrderItems(),
		Address:    req.Address,
		Status:     domain.OrderStatusPending,
		TotalPrice: domain.Ptr(summary.TotalAmount),
		CreatedAt:  domain.Ptr(s.now().UTC()),
	}

	created, err := s.deliveries.CreateDelivery(ctx, delivery)
	if err != nil {
		if rollbackErr := s.idempotency.ReleaseIdempotency(ctx, idempotencyKey); rollbackErr != nil {
			s.logger.Error("release idempotency key failed",
				zap.String("key", idempotencyKey),
				zap.Error(rollbackErr))
		}
		return nil, fmt.Errorf("submit delivery: %w", err)
	}
	submitted = true

	s.logger.Info("checkout submitted",
		zap.String("request_id", requestID),
		zap.String("username", session.Username),
		zap.Int("items", summary.TotalQty),
		zap.Int64("total", summary.TotalAmount),
		zap.Bool("buy_now", !fromCart))

	return &CheckoutResult{RequestID: requestID, Payload: payload, Delivery: created}, nil
}

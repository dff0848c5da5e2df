package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

type ProductReviews struct {
	Reviews []domain.Review `json:"reviews"`
	Mine    *domain.Review  `json:"mine,omitempty"`
}

type ReviewService struct {
	reviews port.ReviewRepository
	logger  *zap.Logger
}

func NewReviewService(reviews port.ReviewRepository, logger *zap.Logger) *ReviewService {
	return &ReviewService{reviews: reviews, logger: logger}
}

// List loads the reviews of a product. Failures degrade to an empty list.
func (s *ReviewService) List(ctx context.Context, session domain.Session, productID string) ProductReviews {
	reviews, err := s.reviews.ListReviews(ctx, productID)
	if err != nil {
		s.logger.Warn("list reviews failed", zap.String("product_id", productID), zap.Error(err))
		return ProductReviews{Reviews: []domain.Review{}}
	}

	out := ProductReviews{Reviews: reviews}
	if session.LoggedIn() {
		if mine, ok := domain.FindReviewBy(reviews, session.Username); ok {
			out.Mine = mine
		}
	}
	return out
}

// Submit posts the session user's review. Each user reviews a product once.
func (s *ReviewService) Submit(ctx context.Context, session domain.Session, productID string, rating int, comment string) error {
	if !session.LoggedIn() {
		return ErrNotLoggedIn
	}

	review := domain.Review{
		Username:  session.Username,
		ProductID: productID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}
	if err := review.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReview, err)
	}

	existing, err := s.reviews.ListReviews(ctx, productID)
	if err != nil {
		return fmt.Errorf("list reviews: %w", err)
	}
	if _, ok := domain.FindReviewBy(existing, session.Username); ok {
		return ErrAlreadyReviewed
	}

	if err := s.reviews.CreateReview(ctx, review); err != nil {
		return err
	}
	s.logger.Info("review submitted",
		zap.String("product_id", productID),
		zap.String("username", session.Username),
		zap.Int("rating", rating))
	return nil
}

func (s *ReviewService) Reply(ctx context.Context, session domain.Session, reviewID, content string) error {
	if !session.LoggedIn() {
		return ErrNotLoggedIn
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyReply
	}
	return s.reviews.ReplyToReview(ctx, reviewID, domain.Reply{User: session.Username, Content: content})
}

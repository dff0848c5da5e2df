package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rl1809/storefront/internal/core/domain"
)

const reviewsPath = "/reviews"

func (c *Client) ListReviews(ctx context.Context, productID string) ([]domain.Review, error) {
	if err := checkID(productID); err != nil {
		return nil, err
	}
	return getList[domain.Review](ctx, c, reviewsPath+"/product/"+productID, nil)
}

func (c *Client) CreateReview(ctx context.Context, review domain.Review) error {
	body := struct {
		Username  string `json:"username"`
		ProductID string `json:"productId"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comment"`
	}{review.Username, review.ProductID, review.Rating, review.Comment}

	if err := c.do(ctx, http.MethodPost, reviewsPath, nil, body, nil); err != nil {
		return fmt.Errorf("create review: %w", err)
	}
	return nil
}

func (c *Client) ReplyToReview(ctx context.Context, reviewID string, reply domain.Reply) error {
	if err := checkID(reviewID); err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodPost, reviewsPath+"/reply/"+reviewID, nil, reply, nil); err != nil {
		return fmt.Errorf("reply to review %s: %w", reviewID, err)
	}
	return nil
}

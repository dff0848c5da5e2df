package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rl1809/storefront/internal/core/domain"
)

const deliveriesPath = "/deliveries"

func (c *Client) ListDeliveries(ctx context.Context) ([]domain.Delivery, error) {
	return getList[domain.Delivery](ctx, c, deliveriesPath, nil)
}

func (c *Client) CreateDelivery(ctx context.Context, delivery domain.Delivery) (*domain.Delivery, error) {
	created := delivery
	if err := c.do(ctx, http.MethodPost, deliveriesPath, nil, delivery, &created); err != nil {
		return nil, fmt.Errorf("create delivery: %w", err)
	}
	return &created, nil
}

func (c *Client) UpdateDeliveryStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	if err := checkID(id); err != nil {
		return err
	}
	body := map[string]domain.OrderStatus{"status": status}
	if err := c.do(ctx, http.MethodPut, deliveriesPath+"/"+id, nil, body, nil); err != nil {
		return fmt.Errorf("update delivery %s: %w", id, err)
	}
	return nil
}

func (c *Client) DeleteDelivery(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodDelete, deliveriesPath+"/"+id, nil, nil, nil); err != nil {
		return fmt.Errorf("delete delivery %s: %w", id, err)
	}
	return nil
}

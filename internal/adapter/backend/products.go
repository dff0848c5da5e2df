package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rl1809/storefront/internal/core/domain"
)

const productsPath = "/products"

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return getList[domain.Product](ctx, c, productsPath, nil)
}

func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	var product domain.Product
	if err := c.do(ctx, http.MethodGet, productsPath+"/"+id, nil, nil, &product); err != nil {
		return nil, err
	}
	if product.ID == "" {
		product.ID = id
	}
	return &product, nil
}

func (c *Client) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	created := product
	if err := c.do(ctx, http.MethodPost, productsPath, nil, product, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateProduct(ctx context.Context, product domain.Product) error {
	if err := checkID(product.ID); err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodPut, productsPath+"/"+product.ID, nil, product, nil); err != nil {
		return fmt.Errorf("update product %s: %w", product.ID, err)
	}
	return nil
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodDelete, productsPath+"/"+id, nil, nil, nil); err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// ProductInput is the admin form for creating or editing a product.
type ProductInput struct {
	Name   string             `json:"name" validate:"required"`
	Type   domain.ProductType `json:"type" validate:"required,oneof=available preorder"`
	Price  int64              `json:"price" validate:"gte=0"`
	Brand  string             `json:"brand"`
	Stock  int                `json:"stock" validate:"gte=0"`
	Scale  string             `json:"scale"`
	Images []string           `json:"images"`
}

func (in ProductInput) toProduct() domain.Product {
	images := make([]string, 0, len(in.Images))
	for _, img := range in.Images {
		if img = strings.TrimSpace(img); img != "" {
			images = append(images, img)
		}
	}
	return domain.Product{
		Name:   domain.Ptr(strings.TrimSpace(in.Name)),
		Price:  domain.Ptr(in.Price),
		Type:   in.Type,
		Images: images,
		Brand:  in.Brand,
		Stock:  in.Stock,
		Scale:  in.Scale,
	}
}

// ProductDetail is the product screen model.
type ProductDetail struct {
	Product      domain.Product `json:"product"`
	DisplayName  string         `json:"display_name"`
	PriceLabel   string         `json:"price_label"`
	IsPreorder   bool           `json:"is_preorder"`
	DepositPrice *int64         `json:"deposit_price,omitempty"`
	DepositLabel string         `json:"deposit_label,omitempty"`
}

type CatalogService struct {
	products port.ProductRepository
	logger   *zap.Logger
	now      func() time.Time
}

func NewCatalogService(products port.ProductRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{products: products, logger: logger, now: time.Now}
}

func (s *CatalogService) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	products, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return domain.FilterProducts(products, filter, s.now()), nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (*ProductDetail, error) {
	product, err := s.products.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &ProductDetail{
		Product:     *product,
		DisplayName: domain.DisplayName(*product),
		PriceLabel:  domain.FormatVND(product.ListPrice()),
		IsPreorder:  domain.IsPreorder(*product),
	}
	if detail.IsPreorder {
		deposit := domain.DepositPrice(*product)
		detail.DepositPrice = &deposit
		detail.DepositLabel = domain.FormatVND(deposit)
	}
	return detail, nil
}

func (s *CatalogService) Create(ctx context.Context, session domain.Session, in ProductInput) (*domain.Product, error) {
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	product := in.toProduct()
	product.ReleaseDate = domain.Ptr(s.now().UTC())

	created, err := s.products.CreateProduct(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	s.logger.Info("product created", zap.String("name", in.Name), zap.String("by", session.Username))
	return created, nil
}

func (s *CatalogService) Update(ctx context.Context, session domain.Session, id string, in ProductInput) error {
	if !session.IsAdmin() {
		return ErrForbidden
	}
	if err := validateStruct(in); err != nil {
		return err
	}

	product := in.toProduct()
	product.ID = id
	if err := s.products.UpdateProduct(ctx, product); err != nil {
		return err
	}
	s.logger.Info("product updated", zap.String("product_id", id), zap.String("by", session.Username))
	return nil
}

func (s *CatalogService) Delete(ctx context.Context, session domain.Session, id string) error {
	if !session.IsAdmin() {
		return ErrForbidden
	}
	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.logger.Info("product deleted", zap.String("product_id", id), zap.String("by", session.Username))
	return nil
}

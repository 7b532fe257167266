package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"attire-store/internal/model"
	"attire-store/internal/repository"
	"attire-store/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	images      storage.Store
	currency    string
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	productRepo repository.ProductRepository,
	images storage.Store,
	currency string,
	logger zerolog.Logger,
) ProductService {
	return &productService{
		productRepo: productRepo,
		images:      images,
		currency:    currency,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// List retrieves active products matching the filter.
func (s *productService) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	if filter.Limit <= 0 {
		filter.Limit = 10
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", filter.Limit).
			Int("offset", filter.Offset).
			Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Msg("retrieved products")

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id.String()).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// GetBySlug retrieves a single product by its URL slug.
func (s *productService) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	if slug == "" {
		return nil, model.ErrProductNotFound
	}

	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		s.logger.Error().Err(err).Str("slug", slug).Msg("failed to get product by slug")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// Create creates a product with a generated slug and stores its images.
func (s *productService) Create(ctx context.Context, req *model.CreateProductRequest, images []*multipart.FileHeader) (*model.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.productRepo.ExistsBySKU(ctx, req.SKU)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	if exists {
		s.logger.Warn().Str("sku", req.SKU).Msg("duplicate SKU")
		return nil, model.ErrSKUTaken
	}

	stock := 0
	if req.Stock != nil {
		stock = *req.Stock
	}

	now := time.Now()
	product := &model.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Slug:        GenerateSlug(req.Name),
		SKU:         req.SKU,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    s.currency,
		Sizes:       orEmpty(req.Sizes),
		Colors:      orEmpty(req.Colors),
		Stock:       stock,
		Active:      true,
		Images:      []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	urls, err := s.storeImages(ctx, product.ID, images)
	if err != nil {
		return nil, err
	}
	product.Images = urls

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Str("sku", product.SKU).
		Int("images", len(product.Images)).
		Msg("product created")

	return product, nil
}

// Update rewrites a product's mutable fields and appends any new images.
func (s *productService) Update(ctx context.Context, id uuid.UUID, req *model.CreateProductRequest, images []*multipart.FileHeader) (*model.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	product.Name = req.Name
	product.Description = req.Description
	product.PriceCents = req.PriceCents
	if req.Sizes != nil {
		product.Sizes = req.Sizes
	}
	if req.Colors != nil {
		product.Colors = req.Colors
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	product.UpdatedAt = time.Now()

	urls, err := s.storeImages(ctx, product.ID, images)
	if err != nil {
		return nil, err
	}
	product.Images = append(product.Images, urls...)

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product updated")
	return product, nil
}

// Delete soft-deletes a product so existing order lines keep a valid reference.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if product == nil {
		return model.ErrProductNotFound
	}

	if err := s.productRepo.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product deactivated")
	return nil
}

// storeImages uploads each file and returns its URL, preserving input order.
func (s *productService) storeImages(ctx context.Context, productID uuid.UUID, images []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(images))
	for i, header := range images {
		file, err := header.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open uploaded image: %w", err)
		}

		key := fmt.Sprintf("products/%s/%d%s", productID, i, filepath.Ext(header.Filename))
		url, err := s.images.Save(ctx, key, header.Header.Get("Content-Type"), file)
		file.Close()
		if err != nil {
			s.logger.Error().Err(err).Str("key", key).Msg("failed to store image")
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, nil
}

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugHyphens = regexp.MustCompile(`-+`)
)

// GenerateSlug derives a URL-safe slug from a product name.
func GenerateSlug(name string) string {
	slug := strings.ToLower(name)
	slug = slugInvalid.ReplaceAllString(slug, "")
	slug = slugSpaces.ReplaceAllString(slug, "-")
	slug = slugHyphens.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

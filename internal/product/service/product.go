package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	inErrors "github.com/widyatma/catalog/internal/errors"
	"github.com/widyatma/catalog/internal/log"
	inOtel "github.com/widyatma/catalog/internal/otel"
	"github.com/widyatma/catalog/internal/repository"
	"github.com/widyatma/catalog/internal/product/cache"
	"github.com/widyatma/catalog/product/pkg/request"
	"github.com/widyatma/catalog/product/pkg/response"
)

type ProductService struct {
	queries *repository.Queries
	cache   *redis.Client
}

func NewProductService(queries *repository.Queries, cache *redis.Client) ProductService {
	return ProductService{queries: queries, cache: cache}
}

func numericFromDecimal(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Exp:              d.Exponent(),
		InfinityModifier: pgtype.Finite,
		Int:              d.Coefficient(),
		NaN:              false,
		Valid:            true,
	}
}

// cacheable reports whether the listing is the default storefront page;
// only that one is worth a cache entry.
func cacheable(query request.ProductQuery) bool {
	return query.Category == "" && query.Search == "" && query.Page == 1 &&
		query.Limit == request.DefaultPageSize
}

func (svc ProductService) FindProducts(
	c context.Context,
	query request.ProductQuery,
) (response.ProductList, error) {
	c, span := inOtel.Tracer.Start(c, "ProductService FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService FindProducts").
		Str(log.KeyQuery, fmt.Sprintf("category=%s search=%s page=%d limit=%d", query.Category, query.Search, query.Page, query.Limit)).
		Logger()

	if cacheable(query) {
		logger.Trace().Str(log.KeyCacheKey, cache.KeyProductList).Msg("finding products in cache")
		if cached, err := svc.cache.Get(c, cache.KeyProductList).Result(); err == nil {
			list := response.ProductList{}
			if err := json.Unmarshal([]byte(cached), &list); err == nil {
				span.AddEvent("found products in cache")
				logger.Debug().Msg("found products in cache")
				return list, nil
			}
		}
		logger.Trace().Msg("products not in cache")
	}

	logger = logger.With().Str(log.KeyProcess, "finding products in database").Logger()
	logger.Trace().Msg("finding products in database")
	span.AddEvent("finding products in database")
	search := repository.EscapeLike(query.Search)
	products, err := svc.queries.FindProducts(c, repository.FindProductsParams{
		Category: query.Category,
		Search:   search,
		Limit:    int32(query.Limit),
		Offset:   int32(query.Offset()),
	})
	if err != nil {
		err = fmt.Errorf("failed to find products in database with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ProductList{}, err
	}
	span.AddEvent("found products in database")
	logger.Info().Msg("found products in database")

	logger = logger.With().Str(log.KeyProcess, "counting products in database").Logger()
	logger.Trace().Msg("counting products in database")
	total, err := svc.queries.CountProducts(c, query.Category, search)
	if err != nil {
		err = fmt.Errorf("failed to count products in database with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.ProductList{}, err
	}

	list := response.ProductList{
		Products: make([]response.Product, 0, len(products)),
		Total:    total,
		Page:     query.Page,
		Limit:    query.Limit,
	}
	for _, p := range products {
		list.Products = append(list.Products, p.Response())
	}

	if cacheable(query) {
		logger = logger.With().
			Str(log.KeyProcess, "inserting products to cache").
			Str(log.KeyCacheKey, cache.KeyProductList).
			Logger()
		logger.Trace().Msg("inserting products to cache")
		span.AddEvent("inserting products to cache")
		payload, err := json.Marshal(list)
		if err == nil {
			err = svc.cache.Set(c, cache.KeyProductList, payload, cache.TTL).Err()
		}
		if err != nil {
			// Listing still succeeded; the cache miss only costs latency.
			err = fmt.Errorf("failed to insert products to cache with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Warn().Err(err).Msg(err.Error())
		} else {
			span.AddEvent("inserted products to cache")
			logger.Info().Msg("inserted products to cache")
		}
	}

	return list, nil
}

func (svc ProductService) FindProductBySlug(
	c context.Context,
	slug string,
) (response.Product, error) {
	c, span := inOtel.Tracer.Start(c, "ProductService FindProductBySlug")
	defer span.End()

	cacheKey := cache.KeyProductSlug + slug
	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService FindProductBySlug").
		Str(log.KeySlug, slug).
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger.Trace().Msg("finding product in cache")
	if cached, err := svc.cache.Get(c, cacheKey).Result(); err == nil {
		product := response.Product{}
		if err := json.Unmarshal([]byte(cached), &product); err == nil {
			span.AddEvent("found product in cache")
			logger.Debug().Msg("found product in cache")
			return product, nil
		}
	}
	logger.Trace().Msg("product not in cache")

	logger = logger.With().Str(log.KeyProcess, "finding product in database").Logger()
	logger.Trace().Msg("finding product in database")
	span.AddEvent("finding product in database")
	found, err := svc.queries.FindProductBySlug(c, slug)
	if err != nil {
		if repository.IsNotFound(err) {
			err = fmt.Errorf("%w: slug=%s", inErrors.ErrProductNotFound, slug)
			inOtel.RecordError(err, span)
			logger.Info().Err(err).Msg(err.Error())
			return response.Product{}, err
		}
		err = fmt.Errorf("failed to find product in database with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	span.AddEvent("found product in database")
	product := found.Response()
	logger.Info().Msg("found product in database")

	logger = logger.With().Str(log.KeyProcess, "inserting product to cache").Logger()
	logger.Trace().Msg("inserting product to cache")
	span.AddEvent("inserting product to cache")
	payload, err := json.Marshal(product)
	if err == nil {
		err = svc.cache.Set(c, cacheKey, payload, cache.TTL).Err()
	}
	if err != nil {
		err = fmt.Errorf("failed to insert product to cache with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
		return product, nil
	}
	span.AddEvent("inserted product to cache")
	logger.Info().Msg("inserted product to cache")

	return product, nil
}

// FindProductByIdentifier resolves an ambiguous path parameter by trying the
// primary id first and falling back to the slug. Updates historically carry
// either value, so both must keep resolving.
func (svc ProductService) FindProductByIdentifier(
	c context.Context,
	identifier string,
) (repository.Product, error) {
	c, span := inOtel.Tracer.Start(c, "ProductService FindProductByIdentifier")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService FindProductByIdentifier").
		Str(log.KeyIdentifier, identifier).
		Logger()

	if id, err := uuid.Parse(identifier); err == nil {
		logger.Trace().Msg("finding product by id")
		span.AddEvent("finding product by id")
		product, err := svc.queries.FindProductById(c, id)
		if err == nil {
			span.AddEvent("found product by id")
			logger.Info().Msg("found product by id")
			return product, nil
		}
		if !repository.IsNotFound(err) {
			err = fmt.Errorf("failed to find product by id with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return repository.Product{}, err
		}
	}

	logger.Trace().Msg("finding product by slug")
	span.AddEvent("finding product by slug")
	product, err := svc.queries.FindProductBySlug(c, identifier)
	if err != nil {
		if repository.IsNotFound(err) {
			err = fmt.Errorf("%w: identifier=%s", inErrors.ErrProductNotFound, identifier)
			inOtel.RecordError(err, span)
			logger.Info().Err(err).Msg(err.Error())
			return repository.Product{}, err
		}
		err = fmt.Errorf("failed to find product by slug with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return repository.Product{}, err
	}
	span.AddEvent("found product by slug")
	logger.Info().Msg("found product by slug")

	return product, nil
}

func (svc ProductService) InsertProduct(
	c context.Context,
	param request.Product,
) (response.Product, error) {
	c, span := inOtel.Tracer.Start(c, "ProductService InsertProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService InsertProduct").
		Str(log.KeySlug, *param.Slug).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "checking slug in database").Logger()
	logger.Trace().Msg("checking slug in database")
	span.AddEvent("checking slug in database")
	_, err := svc.queries.FindProductBySlug(c, *param.Slug)
	if err == nil {
		err = fmt.Errorf("%w: slug=%s", inErrors.ErrSlugExists, *param.Slug)
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	if !repository.IsNotFound(err) {
		err = fmt.Errorf("failed to check slug in database with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	span.AddEvent("slug is not taken")
	logger.Info().Msg("slug is not taken")

	image := repository.DefaultImage
	if param.Image != nil && *param.Image != "" {
		image = *param.Image
	}

	logger = logger.With().Str(log.KeyProcess, "inserting product to database").Logger()
	logger.Trace().Msg("inserting product to database")
	span.AddEvent("inserting product to database")
	inserted, err := svc.queries.InsertProduct(c, repository.InsertProductParams{
		ID:          uuid.New(),
		Name:        *param.Name,
		Slug:        *param.Slug,
		Description: *param.Description,
		Price:       numericFromDecimal(*param.Price),
		Category:    *param.Category,
		Inventory:   int32(param.Inventory.IntPart()),
		Image:       image,
	})
	if err != nil {
		// Two concurrent creates can both pass the pre-check; the unique
		// index is the authority and its rejection maps to the same error.
		if repository.IsUniqueViolation(err) {
			err = fmt.Errorf("%w: slug=%s", inErrors.ErrSlugExists, *param.Slug)
			inOtel.RecordError(err, span)
			logger.Info().Err(err).Msg(err.Error())
			return response.Product{}, err
		}
		err = fmt.Errorf("failed to insert product to database with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	span.AddEvent("inserted product to database")
	logger = logger.With().Str(log.KeyProductID, inserted.ID.String()).Logger()
	logger.Info().Msg("inserted product to database")

	logger = logger.With().Str(log.KeyProcess, "invalidating listing cache").Logger()
	logger.Trace().Msg("invalidating listing cache")
	span.AddEvent("invalidating listing cache")
	if err := svc.cache.Del(c, cache.KeyProductList).Err(); err != nil {
		err = fmt.Errorf("failed to invalidate listing cache with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
	} else {
		span.AddEvent("invalidated listing cache")
		logger.Info().Msg("invalidated listing cache")
	}

	return inserted.Response(), nil
}

func (svc ProductService) UpdateProduct(
	c context.Context,
	identifier string,
	param request.Product,
) (response.Product, error) {
	c, span := inOtel.Tracer.Start(c, "ProductService UpdateProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService UpdateProduct").
		Str(log.KeyIdentifier, identifier).
		Logger()

	existing, err := svc.FindProductByIdentifier(c, identifier)
	if err != nil {
		return response.Product{}, err
	}

	if param.Slug != nil && *param.Slug != existing.Slug {
		logger = logger.With().Str(log.KeyProcess, "checking slug in database").Logger()
		logger.Trace().Msg("checking slug in database")
		span.AddEvent("checking slug in database")
		_, err := svc.queries.FindProductBySlug(c, *param.Slug)
		if err == nil {
			err = fmt.Errorf("%w: slug=%s", inErrors.ErrSlugExists, *param.Slug)
			inOtel.RecordError(err, span)
			logger.Info().Err(err).Msg(err.Error())
			return response.Product{}, err
		}
		if !repository.IsNotFound(err) {
			err = fmt.Errorf("failed to check slug in database with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Product{}, err
		}
		span.AddEvent("slug is not taken")
		logger.Info().Msg("slug is not taken")
	}

	updateParams := repository.UpdateProductParams{
		ID:          existing.ID,
		Name:        param.Name,
		Slug:        param.Slug,
		Description: param.Description,
		Category:    param.Category,
		Image:       param.Image,
	}
	if param.Price != nil {
		updateParams.Price = numericFromDecimal(*param.Price)
	}
	if param.Inventory != nil {
		inventory := int32(param.Inventory.IntPart())
		updateParams.Inventory = &inventory
	}

	logger = logger.With().Str(log.KeyProcess, "updating product in database").Logger()
	logger.Trace().Msg("updating product in database")
	span.AddEvent("updating product in database")
	updated, err := svc.queries.UpdateProduct(c, updateParams)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			err = fmt.Errorf("%w: slug=%s", inErrors.ErrSlugExists, *param.Slug)
			inOtel.RecordError(err, span)
			logger.Info().Err(err).Msg(err.Error())
			return response.Product{}, err
		}
		err = fmt.Errorf("failed to update product in database with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	span.AddEvent("updated product in database")
	logger = logger.With().Str(log.KeyProductID, updated.ID.String()).Logger()
	logger.Info().Msg("updated product in database")

	// Invalidate the listing plus both detail entries; the old slug's entry
	// must not keep serving after a rename.
	cacheKeys := []string{cache.KeyProductList, cache.KeyProductSlug + existing.Slug}
	if updated.Slug != existing.Slug {
		cacheKeys = append(cacheKeys, cache.KeyProductSlug+updated.Slug)
	}
	logger = logger.With().Str(log.KeyProcess, "invalidating caches").Logger()
	logger.Trace().Msg("invalidating caches")
	span.AddEvent("invalidating caches")
	if err := svc.cache.Del(c, cacheKeys...).Err(); err != nil {
		err = fmt.Errorf("failed to invalidate caches with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
	} else {
		span.AddEvent("invalidated caches")
		logger.Info().Msg("invalidated caches")
	}

	return updated.Response(), nil
}

// FindRecommendedProducts is the storefront feed: in-stock products ordered
// by inventory depth then recency, at most 12.
func (svc ProductService) FindRecommendedProducts(
	c context.Context,
) ([]response.Product, error) {
	c, span := inOtel.Tracer.Start(c, "ProductService FindRecommendedProducts")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService FindRecommendedProducts").
		Logger()

	logger.Trace().Msg("finding recommended products in database")
	span.AddEvent("finding recommended products in database")
	products, err := svc.queries.FindRecommendedProducts(c)
	if err != nil {
		err = fmt.Errorf("failed to find recommended products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	span.AddEvent("found recommended products in database")
	logger.Info().Msg("found recommended products in database")

	recommended := make([]response.Product, 0, len(products))
	for _, p := range products {
		recommended = append(recommended, p.Response())
	}
	return recommended, nil
}

func (svc ProductService) InventoryStats(
	c context.Context,
) (response.InventoryStats, error) {
	c, span := inOtel.Tracer.Start(c, "ProductService InventoryStats")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "ProductService InventoryStats").
		Logger()

	logger.Trace().Msg("aggregating inventory stats in database")
	span.AddEvent("aggregating inventory stats in database")
	stats, err := svc.queries.InventoryStats(c)
	if err != nil {
		err = fmt.Errorf("failed to aggregate inventory stats with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.InventoryStats{}, err
	}

	counts, err := svc.queries.CountProductsByCategory(c)
	if err != nil {
		err = fmt.Errorf("failed to count products by category with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.InventoryStats{}, err
	}
	span.AddEvent("aggregated inventory stats in database")
	logger.Info().Msg("aggregated inventory stats in database")

	categories := map[string]int64{}
	for _, row := range counts {
		categories[row.Category] = row.Total
	}
	return response.InventoryStats{
		TotalProducts:  stats.TotalProducts,
		TotalInventory: stats.TotalInventory,
		LowStock:       stats.LowStock,
		OutOfStock:     stats.OutOfStock,
		Categories:     categories,
	}, nil
}

package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	inErrors "github.com/widyatma/catalog/internal/errors"
	"github.com/widyatma/catalog/internal/repository"
	"github.com/widyatma/catalog/product/pkg/request"
)

type testEnv struct {
	pool           *pgxpool.Pool
	cache          *redis.Client
	pgContainer    *postgres.PostgresContainer
	redisContainer *testRedis.RedisContainer
	service        ProductService
}

func setup(t *testing.T, c context.Context) testEnv {
	pgContainer, err := postgres.Run(
		c,
		"postgres:16.6-alpine3.21",
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_DB":       "postgres",
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_PORT":     "5432",
			"POSTGRES_USER":     "postgres",
		}),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.WithDatabase("postgres"),
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			filepath.Join("..", "..", "..", "migrations", "20250901100000_create_table_products.up.sql"),
		),
	)
	if err != nil {
		t.Fatalf("failed running postgres container with error: %s", err)
	}

	pgConnStr, err := pgContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting postgres connection string with error: %s", err)
	}

	pgConfig, err := pgxpool.ParseConfig(pgConnStr)
	if err != nil {
		t.Fatalf("failed parsing pgconfig with error: %s", err)
	}

	pool, err := pgxpool.NewWithConfig(c, pgConfig)
	if err != nil {
		t.Fatalf("failed creating postgres pool with error: %s", err)
	}

	if err = pool.Ping(c); err != nil {
		t.Fatalf("failed ping postgres pool with error: %s", err)
	}

	redisContainer, err := testRedis.Run(c, "redis:7.4.2-alpine3.21")
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}

	redisConnStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}

	redisOpt, err := redis.ParseURL(redisConnStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}

	redisClient := redis.NewClient(redisOpt)
	if err = redisClient.Ping(c).Err(); err != nil {
		t.Fatalf("failed ping redis client with error: %s", err)
	}

	queries := repository.New(pool)
	return testEnv{
		pool:           pool,
		cache:          redisClient,
		pgContainer:    pgContainer,
		redisContainer: redisContainer,
		service:        NewProductService(queries, redisClient),
	}
}

func (env testEnv) teardown(t *testing.T) {
	env.cache.Close()
	env.pool.Close()
	if err := env.pgContainer.Terminate(context.Background()); err != nil {
		t.Fatalf("failed to terminate container: %s", err)
	}
	if err := env.redisContainer.Terminate(context.Background()); err != nil {
		t.Fatalf("failed to terminate container: %s", err)
	}
}

func str(s string) *string { return &s }

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func newProduct(name, slug, category, price, inventory string) request.Product {
	return request.Product{
		Name:        str(name),
		Slug:        str(slug),
		Description: str("A reasonably long product description"),
		Price:       dec(price),
		Category:    str(category),
		Inventory:   dec(inventory),
	}
}

func TestProductService(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	c := zerolog.New(nil).WithContext(context.Background())
	env := setup(t, c)
	defer env.teardown(t)
	svc := env.service

	t.Run("insert and find by slug", func(t *testing.T) {
		created, err := svc.InsertProduct(c, newProduct("Wireless Headphones", "wireless-headphones", "Electronics", "29.99", "10"))
		require.NoError(t, err)
		assert.Equal(t, "wireless-headphones", created.Slug)
		assert.True(t, created.Price.Equal(decimal.RequireFromString("29.99")))
		assert.Equal(t, repository.DefaultImage, created.Image)

		found, err := svc.FindProductBySlug(c, "wireless-headphones")
		require.NoError(t, err)
		assert.Equal(t, created.ID, found.ID)
	})

	t.Run("duplicate slug is rejected", func(t *testing.T) {
		_, err := svc.InsertProduct(c, newProduct("Other Headphones", "wireless-headphones", "Electronics", "19.99", "5"))
		assert.ErrorIs(t, err, inErrors.ErrSlugExists)
	})

	t.Run("find by slug misses", func(t *testing.T) {
		_, err := svc.FindProductBySlug(c, "no-such-product")
		assert.ErrorIs(t, err, inErrors.ErrProductNotFound)
	})

	t.Run("update by id and by slug resolve the same product", func(t *testing.T) {
		created, err := svc.InsertProduct(c, newProduct("Novel", "novel", "Books", "12.50", "3"))
		require.NoError(t, err)

		byId, err := svc.UpdateProduct(c, created.ID.String(), request.Product{Inventory: dec("7")})
		require.NoError(t, err)
		assert.Equal(t, created.ID, byId.ID)
		assert.Equal(t, 7, byId.Inventory)

		bySlug, err := svc.UpdateProduct(c, "novel", request.Product{Price: dec("14.00")})
		require.NoError(t, err)
		assert.Equal(t, created.ID, bySlug.ID)
		// Partial update must keep every field the payload omitted.
		assert.Equal(t, 7, bySlug.Inventory)
		assert.Equal(t, "Novel", bySlug.Name)
		assert.True(t, bySlug.Price.Equal(decimal.RequireFromString("14.00")))
		assert.True(t, bySlug.LastUpdated.After(created.LastUpdated))
	})

	t.Run("update rejects a taken slug", func(t *testing.T) {
		_, err := svc.InsertProduct(c, newProduct("Board Game", "board-game", "Toys & Games", "35.00", "4"))
		require.NoError(t, err)

		_, err = svc.UpdateProduct(c, "board-game", request.Product{Slug: str("novel")})
		assert.ErrorIs(t, err, inErrors.ErrSlugExists)
	})

	t.Run("update misses unknown identifier", func(t *testing.T) {
		_, err := svc.UpdateProduct(c, "missing-product", request.Product{Inventory: dec("1")})
		assert.ErrorIs(t, err, inErrors.ErrProductNotFound)
	})

	t.Run("listing filters and counts independently of the page", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			_, err := svc.InsertProduct(c, newProduct(
				fmt.Sprintf("Shirt %d", i),
				fmt.Sprintf("shirt-%d", i),
				"Clothing",
				"9.99",
				"2",
			))
			require.NoError(t, err)
		}

		list, err := svc.FindProducts(c, request.ProductQuery{Category: "Clothing", Page: 1, Limit: 2}.Normalize())
		require.NoError(t, err)
		assert.Len(t, list.Products, 2)
		assert.EqualValues(t, 5, list.Total)

		list, err = svc.FindProducts(c, request.ProductQuery{Search: "shirt", Page: 3, Limit: 2}.Normalize())
		require.NoError(t, err)
		assert.Len(t, list.Products, 1)
		assert.EqualValues(t, 5, list.Total)
	})

	t.Run("search matches name and description as a literal substring", func(t *testing.T) {
		_, err := svc.InsertProduct(c, request.Product{
			Name:        str("Juice 100% Orange"),
			Slug:        str("orange-juice"),
			Description: str("Freshly squeezed with no additives"),
			Price:       dec("4.50"),
			Category:    str("Food & Beverages"),
			Inventory:   dec("20"),
		})
		require.NoError(t, err)

		list, err := svc.FindProducts(c, request.ProductQuery{Search: "100%"}.Normalize())
		require.NoError(t, err)
		require.Len(t, list.Products, 1)
		assert.Equal(t, "orange-juice", list.Products[0].Slug)

		list, err = svc.FindProducts(c, request.ProductQuery{Search: "SQUEEZED"}.Normalize())
		require.NoError(t, err)
		require.Len(t, list.Products, 1)
		assert.Equal(t, "orange-juice", list.Products[0].Slug)
	})

	t.Run("recommended feed skips out of stock and orders by inventory", func(t *testing.T) {
		_, err := svc.InsertProduct(c, newProduct("Sold Out Lamp", "sold-out-lamp", "Home & Garden", "40.00", "0"))
		require.NoError(t, err)

		recommended, err := svc.FindRecommendedProducts(c)
		require.NoError(t, err)
		require.NotEmpty(t, recommended)
		assert.LessOrEqual(t, len(recommended), 12)
		for i, p := range recommended {
			assert.Positive(t, p.Inventory)
			if i > 0 {
				assert.GreaterOrEqual(t, recommended[i-1].Inventory, p.Inventory)
			}
		}
	})

	t.Run("inventory stats", func(t *testing.T) {
		stats, err := svc.InventoryStats(c)
		require.NoError(t, err)
		assert.Positive(t, stats.TotalProducts)
		assert.EqualValues(t, 1, stats.OutOfStock)
		assert.Positive(t, stats.LowStock)
		assert.EqualValues(t, 1, stats.Categories["Books"])
		assert.EqualValues(t, 5, stats.Categories["Clothing"])
	})

	t.Run("mutations invalidate the default listing cache", func(t *testing.T) {
		_, err := svc.FindProducts(c, request.ProductQuery{}.Normalize())
		require.NoError(t, err)
		require.Equal(t, int64(1), env.cache.Exists(c, "products:list").Val())

		_, err = svc.InsertProduct(c, newProduct("Yoga Mat", "yoga-mat", "Sports & Outdoors", "25.00", "8"))
		require.NoError(t, err)
		assert.Equal(t, int64(0), env.cache.Exists(c, "products:list").Val())
	})
}

package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultImage is applied when a create omits the image URL.
const DefaultImage = "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?w=600"

type Queries struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

type Product struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description string
	Price       pgtype.Numeric
	Category    string
	Inventory   int32
	Image       string
	LastUpdated pgtype.Timestamptz
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

const productColumns = `id, name, slug, description, price, category, inventory, image, last_updated, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	p := Product{}
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&p.Price,
		&p.Category,
		&p.Inventory,
		&p.Image,
		&p.LastUpdated,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	return p, err
}

type InsertProductParams struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description string
	Price       pgtype.Numeric
	Category    string
	Inventory   int32
	Image       string
}

func (q *Queries) InsertProduct(c context.Context, arg InsertProductParams) (Product, error) {
	row := q.pool.QueryRow(c, `
		INSERT INTO products (id, name, slug, description, price, category, inventory, image, last_updated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		RETURNING `+productColumns,
		arg.ID,
		arg.Name,
		arg.Slug,
		arg.Description,
		arg.Price,
		arg.Category,
		arg.Inventory,
		arg.Image,
	)
	return scanProduct(row)
}

// UpdateProductParams carries one optional slot per mutable field; nil slots
// keep the stored value. last_updated is always refreshed server-side.
type UpdateProductParams struct {
	ID          uuid.UUID
	Name        *string
	Slug        *string
	Description *string
	Price       pgtype.Numeric
	Category    *string
	Inventory   *int32
	Image       *string
}

func (q *Queries) UpdateProduct(c context.Context, arg UpdateProductParams) (Product, error) {
	row := q.pool.QueryRow(c, `
		UPDATE products SET
			name        = COALESCE($2, name),
			slug        = COALESCE($3, slug),
			description = COALESCE($4, description),
			price       = COALESCE($5, price),
			category    = COALESCE($6, category),
			inventory   = COALESCE($7, inventory),
			image       = COALESCE($8, image),
			last_updated = now(),
			updated_at   = now()
		WHERE id = $1
		RETURNING `+productColumns,
		arg.ID,
		arg.Name,
		arg.Slug,
		arg.Description,
		arg.Price,
		arg.Category,
		arg.Inventory,
		arg.Image,
	)
	return scanProduct(row)
}

// FindProductsParams is the store-side form of the listing query:
// empty Category or Search disables that predicate. Search must already be
// LIKE-escaped via EscapeLike.
type FindProductsParams struct {
	Category string
	Search   string
	Limit    int32
	Offset   int32
}

const productFilter = `
	($1 = '' OR category = $1)
	AND ($2 = '' OR name ILIKE '%' || $2 || '%' OR description ILIKE '%' || $2 || '%')`

func (q *Queries) FindProducts(c context.Context, arg FindProductsParams) ([]Product, error) {
	rows, err := q.pool.Query(c, `
		SELECT `+productColumns+`
		FROM products
		WHERE `+productFilter+`
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`,
		arg.Category,
		arg.Search,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CountProducts evaluates the same filter independently of the page window.
func (q *Queries) CountProducts(c context.Context, category string, search string) (int64, error) {
	var total int64
	err := q.pool.QueryRow(c, `
		SELECT count(*)
		FROM products
		WHERE `+productFilter,
		category,
		search,
	).Scan(&total)
	return total, err
}

func (q *Queries) FindProductById(c context.Context, id uuid.UUID) (Product, error) {
	row := q.pool.QueryRow(c, `
		SELECT `+productColumns+`
		FROM products
		WHERE id = $1`,
		id,
	)
	return scanProduct(row)
}

func (q *Queries) FindProductBySlug(c context.Context, slug string) (Product, error) {
	row := q.pool.QueryRow(c, `
		SELECT `+productColumns+`
		FROM products
		WHERE slug = $1`,
		slug,
	)
	return scanProduct(row)
}

// FindRecommendedProducts returns the recommendation feed: in-stock products
// ordered by inventory depth then recency, capped at 12.
func (q *Queries) FindRecommendedProducts(c context.Context) ([]Product, error) {
	rows, err := q.pool.Query(c, `
		SELECT `+productColumns+`
		FROM products
		WHERE inventory > 0
		ORDER BY inventory DESC, created_at DESC
		LIMIT 12`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

type InventoryStatsRow struct {
	TotalProducts  int64
	TotalInventory int64
	LowStock       int64
	OutOfStock     int64
}

func (q *Queries) InventoryStats(c context.Context) (InventoryStatsRow, error) {
	s := InventoryStatsRow{}
	err := q.pool.QueryRow(c, `
		SELECT
			count(*),
			COALESCE(sum(inventory), 0),
			count(*) FILTER (WHERE inventory > 0 AND inventory < 10),
			count(*) FILTER (WHERE inventory = 0)
		FROM products`,
	).Scan(&s.TotalProducts, &s.TotalInventory, &s.LowStock, &s.OutOfStock)
	return s, err
}

type CategoryCountRow struct {
	Category string
	Total    int64
}

func (q *Queries) CountProductsByCategory(c context.Context) ([]CategoryCountRow, error) {
	rows, err := q.pool.Query(c, `
		SELECT category, count(*)
		FROM products
		GROUP BY category
		ORDER BY category`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []CategoryCountRow{}
	for rows.Next() {
		r := CategoryCountRow{}
		if err := rows.Scan(&r.Category, &r.Total); err != nil {
			return nil, err
		}
		counts = append(counts, r)
	}
	return counts, rows.Err()
}

// IsNotFound reports whether err means no row matched.
func IsNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUniqueViolation reports whether err is the store's duplicate-key
// rejection; it is the authority behind the slug pre-check, since two
// concurrent creates can both pass the check before either commits.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// EscapeLike escapes LIKE metacharacters so a search term matches as a
// literal substring.
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

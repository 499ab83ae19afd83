package repositories

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProductRepository interface {
	// Query returns one page of active products matching filter, plus the
	// size of the whole filtered set.
	Query(ctx context.Context, filter *models.ProductFilter) (*models.ProductPage, error)
	GetActiveBySlug(ctx context.Context, slug string) (*models.Product, error)

	List(ctx context.Context, limit, offset int) ([]*models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

const productColumns = `p.id, p.name, p.slug, COALESCE(p.description, ''), p.category, COALESCE(p.subcategory, ''), p.price, p.old_price, COALESCE(p.image, ''), p.rating, p.is_active, p.is_new, p.is_featured, p.is_limited_edition, p.is_blue_monday_sale, p.created_at, p.updated_at`

type productRepo struct {
	db DB
}

func NewProductRepo(db DB) ProductRepository {
	return &productRepo{db: db}
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &p.Description, &p.Category, &p.Subcategory, &p.Price, &p.OldPrice,
		&p.Image, &p.Rating, &p.IsActive, &p.IsNew, &p.IsFeatured, &p.IsLimitedEdition, &p.IsBlueMondaySale,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// productWhere builds the WHERE clause shared by the count and page queries.
func productWhere(filter *models.ProductFilter) (string, []any) {
	where := []string{"p.is_active = TRUE"}
	args := []any{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("LOWER(p.category) = LOWER($%d)", len(args)))
	}
	if filter.Subcategory != "" {
		args = append(args, filter.Subcategory)
		where = append(where, fmt.Sprintf("LOWER(p.subcategory) = LOWER($%d)", len(args)))
	}
	if filter.IsNew {
		where = append(where, "p.is_new = TRUE")
	}
	if filter.IsFeatured {
		where = append(where, "p.is_featured = TRUE")
	}
	if filter.IsLimitedEdition {
		where = append(where, "p.is_limited_edition = TRUE")
	}
	if filter.OnSale {
		where = append(where, "(p.old_price IS NOT NULL OR p.is_blue_monday_sale = TRUE)")
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(p.name ILIKE $%d OR COALESCE(p.description, '') ILIKE $%d OR p.category ILIKE $%d)", n, n, n))
	}

	return strings.Join(where, " AND "), args
}

// productOrderBy whitelists sort keys; anything unknown sorts newest first.
func productOrderBy(sort string) string {
	switch sort {
	case models.SortFeatured:
		return "p.is_featured DESC, p.created_at DESC, p.id ASC"
	case models.SortPriceAsc:
		return "p.price ASC, p.created_at DESC, p.id ASC"
	case models.SortPriceDesc:
		return "p.price DESC, p.created_at DESC, p.id ASC"
	case models.SortRating:
		return "p.rating DESC, p.created_at DESC, p.id ASC"
	default:
		return "p.created_at DESC, p.id ASC"
	}
}

func (r *productRepo) Query(ctx context.Context, filter *models.ProductFilter) (*models.ProductPage, error) {
	filter.Normalize()
	where, args := productWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM products p WHERE ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, translateError("count products", err)
	}

	page := &models.ProductPage{Items: []*models.Product{}, Total: total}
	if total == 0 || filter.Offset() >= total {
		return page, nil
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM products p WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		productColumns, where, productOrderBy(filter.Sort), n+1, n+2)
	args = append(args, filter.Limit, filter.Offset())

	rows, err := r.db.Query(ctx, query, args...)
	items, err := collect("query products", rows, err, scanProduct)
	if err != nil {
		return nil, err
	}
	page.Items = items
	return page, nil
}

func (r *productRepo) GetActiveBySlug(ctx context.Context, slug string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.slug = $1 AND p.is_active = TRUE`
	p, err := scanProduct(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		return nil, translateError("get product by slug", err)
	}
	return p, nil
}

func (r *productRepo) List(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		ORDER BY p.created_at DESC, p.id ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	return collect("list products", rows, err, scanProduct)
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products p WHERE p.id = $1`
	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateError("get product", err)
	}
	return p, nil
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, name, slug, description, category, subcategory, price, old_price, image, rating,
			is_active, is_new, is_featured, is_limited_edition, is_blue_monday_sale, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, product.ID, product.Name, product.Slug, product.Description, product.Category,
		product.Subcategory, product.Price, product.OldPrice, product.Image, product.Rating, product.IsActive,
		product.IsNew, product.IsFeatured, product.IsLimitedEdition, product.IsBlueMondaySale).
		Scan(&product.CreatedAt, &product.UpdatedAt)
	return translateError("create product", err)
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET name = $1, slug = $2, description = $3, category = $4, subcategory = $5, price = $6, old_price = $7,
			image = $8, rating = $9, is_active = $10, is_new = $11, is_featured = $12, is_limited_edition = $13,
			is_blue_monday_sale = $14, updated_at = NOW()
		WHERE id = $15
	`
	tag, err := r.db.Exec(ctx, query, product.Name, product.Slug, product.Description, product.Category,
		product.Subcategory, product.Price, product.OldPrice, product.Image, product.Rating, product.IsActive,
		product.IsNew, product.IsFeatured, product.IsLimitedEdition, product.IsBlueMondaySale, product.ID)
	return expectOneRow("update product", tag, err)
}

func (r *productRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE products SET is_active = $1, updated_at = NOW() WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, active, id)
	return expectOneRow("set product active", tag, err)
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM products WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	return expectOneRow("delete product", tag, err)
}

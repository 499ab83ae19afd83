package repositories

import (
	"context"

	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CategoryReader is the read side used to assemble the storefront hierarchy.
// Every method returns active rows only, ordered by (order, name).
type CategoryReader interface {
	ListActiveCategories(ctx context.Context) ([]*models.Category, error)
	GetActiveCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)
	ListActiveSubcategories(ctx context.Context, categoryID uuid.UUID) ([]*models.Subcategory, error)
	GetActiveSubcategoryBySlug(ctx context.Context, categoryID uuid.UUID, slug string) (*models.Subcategory, error)
	ListActiveSubSubcategories(ctx context.Context, subcategoryID uuid.UUID) ([]*models.SubSubcategory, error)
}

type CategoryRepository interface {
	CategoryReader

	ListCategories(ctx context.Context) ([]*models.Category, error)
	GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	UpdateCategory(ctx context.Context, category *models.Category) error
	SetCategoryActive(ctx context.Context, id uuid.UUID, active bool) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error

	ListSubcategories(ctx context.Context, categoryID uuid.UUID) ([]*models.Subcategory, error)
	GetSubcategoryByID(ctx context.Context, id uuid.UUID) (*models.Subcategory, error)
	CreateSubcategory(ctx context.Context, sub *models.Subcategory) error
	UpdateSubcategory(ctx context.Context, sub *models.Subcategory) error
	SetSubcategoryActive(ctx context.Context, id uuid.UUID, active bool) error
	DeleteSubcategory(ctx context.Context, id uuid.UUID) error

	ListSubSubcategories(ctx context.Context, subcategoryID uuid.UUID) ([]*models.SubSubcategory, error)
	GetSubSubcategoryByID(ctx context.Context, id uuid.UUID) (*models.SubSubcategory, error)
	CreateSubSubcategory(ctx context.Context, leaf *models.SubSubcategory) error
	UpdateSubSubcategory(ctx context.Context, leaf *models.SubSubcategory) error
	SetSubSubcategoryActive(ctx context.Context, id uuid.UUID, active bool) error
	DeleteSubSubcategory(ctx context.Context, id uuid.UUID) error
}

const (
	categoryColumns       = `id, name, slug, COALESCE(description, ''), COALESCE(image, ''), display_order, is_active, created_at, updated_at`
	subcategoryColumns    = `id, category_id, name, slug, COALESCE(description, ''), COALESCE(image, ''), sort_order, is_active, created_at, updated_at`
	subSubcategoryColumns = `id, subcategory_id, name, slug, COALESCE(description, ''), COALESCE(image, ''), sort_order, is_active, created_at, updated_at`
)

type categoryRepo struct {
	db DB
}

func NewCategoryRepo(db DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func scanCategory(row pgx.Row) (*models.Category, error) {
	c := &models.Category{}
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.Image, &c.DisplayOrder, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func scanSubcategory(row pgx.Row) (*models.Subcategory, error) {
	s := &models.Subcategory{}
	err := row.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Slug, &s.Description, &s.Image, &s.SortOrder, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func scanSubSubcategory(row pgx.Row) (*models.SubSubcategory, error) {
	l := &models.SubSubcategory{}
	err := row.Scan(&l.ID, &l.SubcategoryID, &l.Name, &l.Slug, &l.Description, &l.Image, &l.SortOrder, &l.IsActive, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// collect drains rows through scan, translating any failure.
func collect[T any](op string, rows pgx.Rows, err error, scan func(pgx.Row) (T, error)) ([]T, error) {
	if err != nil {
		return nil, translateError(op, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, translateError(op, err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(op, err)
	}
	return out, nil
}

func (r *categoryRepo) ListActiveCategories(ctx context.Context) ([]*models.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE is_active = TRUE
		ORDER BY display_order ASC, name ASC
	`
	rows, err := r.db.Query(ctx, query)
	return collect("list active categories", rows, err, scanCategory)
}

func (r *categoryRepo) GetActiveCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE slug = $1 AND is_active = TRUE
	`
	c, err := scanCategory(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		return nil, translateError("get category by slug", err)
	}
	return c, nil
}

func (r *categoryRepo) ListActiveSubcategories(ctx context.Context, categoryID uuid.UUID) ([]*models.Subcategory, error) {
	query := `
		SELECT ` + subcategoryColumns + `
		FROM subcategories
		WHERE category_id = $1 AND is_active = TRUE
		ORDER BY sort_order ASC, name ASC
	`
	rows, err := r.db.Query(ctx, query, categoryID)
	return collect("list active subcategories", rows, err, scanSubcategory)
}

func (r *categoryRepo) GetActiveSubcategoryBySlug(ctx context.Context, categoryID uuid.UUID, slug string) (*models.Subcategory, error) {
	query := `
		SELECT ` + subcategoryColumns + `
		FROM subcategories
		WHERE category_id = $1 AND slug = $2 AND is_active = TRUE
	`
	s, err := scanSubcategory(r.db.QueryRow(ctx, query, categoryID, slug))
	if err != nil {
		return nil, translateError("get subcategory by slug", err)
	}
	return s, nil
}

func (r *categoryRepo) ListActiveSubSubcategories(ctx context.Context, subcategoryID uuid.UUID) ([]*models.SubSubcategory, error) {
	query := `
		SELECT ` + subSubcategoryColumns + `
		FROM sub_subcategories
		WHERE subcategory_id = $1 AND is_active = TRUE
		ORDER BY sort_order ASC, name ASC
	`
	rows, err := r.db.Query(ctx, query, subcategoryID)
	return collect("list active sub-subcategories", rows, err, scanSubSubcategory)
}

func (r *categoryRepo) ListCategories(ctx context.Context) ([]*models.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		ORDER BY display_order ASC, name ASC
	`
	rows, err := r.db.Query(ctx, query)
	return collect("list categories", rows, err, scanCategory)
}

func (r *categoryRepo) GetCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE id = $1
	`
	c, err := scanCategory(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateError("get category", err)
	}
	return c, nil
}

func (r *categoryRepo) CreateCategory(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, name, slug, description, image, display_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, category.ID, category.Name, category.Slug, category.Description,
		category.Image, category.DisplayOrder, category.IsActive).Scan(&category.CreatedAt, &category.UpdatedAt)
	return translateError("create category", err)
}

func (r *categoryRepo) UpdateCategory(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $1, slug = $2, description = $3, image = $4, display_order = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7
	`
	tag, err := r.db.Exec(ctx, query, category.Name, category.Slug, category.Description, category.Image,
		category.DisplayOrder, category.IsActive, category.ID)
	return expectOneRow("update category", tag, err)
}

func (r *categoryRepo) SetCategoryActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE categories SET is_active = $1, updated_at = NOW() WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, active, id)
	return expectOneRow("set category active", tag, err)
}

// DeleteCategory removes the row; subcategories and their leaves go with it via ON DELETE CASCADE.
func (r *categoryRepo) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM categories WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	return expectOneRow("delete category", tag, err)
}

func (r *categoryRepo) ListSubcategories(ctx context.Context, categoryID uuid.UUID) ([]*models.Subcategory, error) {
	query := `
		SELECT ` + subcategoryColumns + `
		FROM subcategories
		WHERE category_id = $1
		ORDER BY sort_order ASC, name ASC
	`
	rows, err := r.db.Query(ctx, query, categoryID)
	return collect("list subcategories", rows, err, scanSubcategory)
}

func (r *categoryRepo) GetSubcategoryByID(ctx context.Context, id uuid.UUID) (*models.Subcategory, error) {
	query := `
		SELECT ` + subcategoryColumns + `
		FROM subcategories
		WHERE id = $1
	`
	s, err := scanSubcategory(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateError("get subcategory", err)
	}
	return s, nil
}

func (r *categoryRepo) CreateSubcategory(ctx context.Context, sub *models.Subcategory) error {
	query := `
		INSERT INTO subcategories (id, category_id, name, slug, description, image, sort_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, sub.ID, sub.CategoryID, sub.Name, sub.Slug, sub.Description,
		sub.Image, sub.SortOrder, sub.IsActive).Scan(&sub.CreatedAt, &sub.UpdatedAt)
	return translateError("create subcategory", err)
}

func (r *categoryRepo) UpdateSubcategory(ctx context.Context, sub *models.Subcategory) error {
	query := `
		UPDATE subcategories
		SET category_id = $1, name = $2, slug = $3, description = $4, image = $5, sort_order = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8
	`
	tag, err := r.db.Exec(ctx, query, sub.CategoryID, sub.Name, sub.Slug, sub.Description, sub.Image,
		sub.SortOrder, sub.IsActive, sub.ID)
	return expectOneRow("update subcategory", tag, err)
}

func (r *categoryRepo) SetSubcategoryActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE subcategories SET is_active = $1, updated_at = NOW() WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, active, id)
	return expectOneRow("set subcategory active", tag, err)
}

func (r *categoryRepo) DeleteSubcategory(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM subcategories WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	return expectOneRow("delete subcategory", tag, err)
}

func (r *categoryRepo) ListSubSubcategories(ctx context.Context, subcategoryID uuid.UUID) ([]*models.SubSubcategory, error) {
	query := `
		SELECT ` + subSubcategoryColumns + `
		FROM sub_subcategories
		WHERE subcategory_id = $1
		ORDER BY sort_order ASC, name ASC
	`
	rows, err := r.db.Query(ctx, query, subcategoryID)
	return collect("list sub-subcategories", rows, err, scanSubSubcategory)
}

func (r *categoryRepo) GetSubSubcategoryByID(ctx context.Context, id uuid.UUID) (*models.SubSubcategory, error) {
	query := `
		SELECT ` + subSubcategoryColumns + `
		FROM sub_subcategories
		WHERE id = $1
	`
	l, err := scanSubSubcategory(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, translateError("get sub-subcategory", err)
	}
	return l, nil
}

func (r *categoryRepo) CreateSubSubcategory(ctx context.Context, leaf *models.SubSubcategory) error {
	query := `
		INSERT INTO sub_subcategories (id, subcategory_id, name, slug, description, image, sort_order, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, leaf.ID, leaf.SubcategoryID, leaf.Name, leaf.Slug, leaf.Description,
		leaf.Image, leaf.SortOrder, leaf.IsActive).Scan(&leaf.CreatedAt, &leaf.UpdatedAt)
	return translateError("create sub-subcategory", err)
}

func (r *categoryRepo) UpdateSubSubcategory(ctx context.Context, leaf *models.SubSubcategory) error {
	query := `
		UPDATE sub_subcategories
		SET subcategory_id = $1, name = $2, slug = $3, description = $4, image = $5, sort_order = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8
	`
	tag, err := r.db.Exec(ctx, query, leaf.SubcategoryID, leaf.Name, leaf.Slug, leaf.Description, leaf.Image,
		leaf.SortOrder, leaf.IsActive, leaf.ID)
	return expectOneRow("update sub-subcategory", tag, err)
}

func (r *categoryRepo) SetSubSubcategoryActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE sub_subcategories SET is_active = $1, updated_at = NOW() WHERE id = $2`
	tag, err := r.db.Exec(ctx, query, active, id)
	return expectOneRow("set sub-subcategory active", tag, err)
}

func (r *categoryRepo) DeleteSubSubcategory(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM sub_subcategories WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	return expectOneRow("delete sub-subcategory", tag, err)
}

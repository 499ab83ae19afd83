package repositories

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"storefront/internal/common"
	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var productCols = []string{"id", "name", "slug", "description", "category", "subcategory", "price", "old_price", "image",
	"rating", "is_active", "is_new", "is_featured", "is_limited_edition", "is_blue_monday_sale", "created_at", "updated_at"}

type ProductRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    ProductRepository
	context context.Context
	now     time.Time
}

func (suite *ProductRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewProductRepo(mock)
	suite.context = context.Background()
	suite.now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
}

func (suite *ProductRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestProductRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ProductRepoTestSuite))
}

func (suite *ProductRepoTestSuite) productRow(rows *pgxmock.Rows, name string, oldPrice *float64) *pgxmock.Rows {
	return rows.AddRow(uuid.New(), name, name, "", "phones", "", 10.0, oldPrice, "", 4.5,
		true, false, false, false, false, suite.now, suite.now)
}

func (suite *ProductRepoTestSuite) TestQuery_CountIsIndependentOfPage() {
	filter := &models.ProductFilter{OnSale: true, Page: 2, Limit: 8}
	where := `p.is_active = TRUE AND (p.old_price IS NOT NULL OR p.is_blue_monday_sale = TRUE)`

	suite.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products p WHERE ` + where)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(20))

	rows := pgxmock.NewRows(productCols)
	old := 12.0
	for i := 0; i < 8; i++ {
		suite.productRow(rows, "item", &old)
	}
	suite.mock.ExpectQuery(regexp.QuoteMeta(`FROM products p WHERE `+where+` ORDER BY p.created_at DESC, p.id ASC LIMIT $1 OFFSET $2`)).
		WithArgs(8, 8).
		WillReturnRows(rows)

	page, err := suite.repo.Query(suite.context, filter)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 20, page.Total)
	assert.Len(suite.T(), page.Items, 8)
	require.NotNil(suite.T(), page.Items[0].OldPrice)
	assert.Equal(suite.T(), 12.0, *page.Items[0].OldPrice)
}

func (suite *ProductRepoTestSuite) TestQuery_FiltersBindInOrder() {
	filter := &models.ProductFilter{Category: "Phones", Subcategory: "iphone", IsNew: true, Search: "pro", Sort: models.SortPriceAsc}

	suite.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products p WHERE p.is_active = TRUE AND LOWER(p.category) = LOWER($1) AND LOWER(p.subcategory) = LOWER($2) AND p.is_new = TRUE AND (p.name ILIKE $3 OR COALESCE(p.description, '') ILIKE $3 OR p.category ILIKE $3)`)).
		WithArgs("Phones", "iphone", "%pro%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	suite.mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY p.price ASC, p.created_at DESC, p.id ASC LIMIT $4 OFFSET $5`)).
		WithArgs("Phones", "iphone", "%pro%", models.DefaultPageSize, 0).
		WillReturnRows(suite.productRow(pgxmock.NewRows(productCols), "iphone-16-pro", nil))

	page, err := suite.repo.Query(suite.context, filter)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, page.Total)
	require.Len(suite.T(), page.Items, 1)
	assert.Nil(suite.T(), page.Items[0].OldPrice)
}

func (suite *ProductRepoTestSuite) TestQuery_UnknownSortUsesNewest() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products p WHERE p.is_active = TRUE`)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	suite.mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY p.created_at DESC, p.id ASC`)).
		WithArgs(models.DefaultPageSize, 0).
		WillReturnRows(suite.productRow(pgxmock.NewRows(productCols), "a", nil))

	_, err := suite.repo.Query(suite.context, &models.ProductFilter{Sort: "name; DROP TABLE products"})

	assert.NoError(suite.T(), err)
}

func (suite *ProductRepoTestSuite) TestQuery_PageBeyondTotalSkipsPageQuery() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products p`)).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))

	page, err := suite.repo.Query(suite.context, &models.ProductFilter{Page: 5, Limit: 8})

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, page.Total)
	assert.NotNil(suite.T(), page.Items)
	assert.Empty(suite.T(), page.Items)
}

func (suite *ProductRepoTestSuite) TestQuery_CountFailureIsUnavailable() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM products p`)).
		WillReturnError(errors.New("i/o timeout"))

	_, err := suite.repo.Query(suite.context, &models.ProductFilter{})

	assert.ErrorIs(suite.T(), err, common.ErrUnavailable)
}

func (suite *ProductRepoTestSuite) TestGetActiveBySlug_MissingOrInactive() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`FROM products p WHERE p.slug = $1 AND p.is_active = TRUE`)).
		WithArgs("retired").
		WillReturnRows(pgxmock.NewRows(productCols))

	_, err := suite.repo.GetActiveBySlug(suite.context, "retired")

	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *ProductRepoTestSuite) TestCreate_DuplicateSlugIsConflict() {
	product := &models.Product{ID: uuid.New(), Name: "Case", Slug: "case", Category: "accessories", IsActive: true}
	args := make([]any, 15)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}

	suite.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO products`)).
		WithArgs(args...).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "products_slug_key"})

	err := suite.repo.Create(suite.context, product)

	assert.ErrorIs(suite.T(), err, common.ErrConflict)
}

func (suite *ProductRepoTestSuite) TestSetActive() {
	id := uuid.New()
	suite.mock.ExpectExec(regexp.QuoteMeta(`UPDATE products SET is_active = $1, updated_at = NOW() WHERE id = $2`)).
		WithArgs(false, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(suite.T(), suite.repo.SetActive(suite.context, id, false))
}

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unique violation", &pgconn.PgError{Code: "23505"}, common.ErrConflict},
		{"foreign key", &pgconn.PgError{Code: "23503"}, common.ErrValidation},
		{"not null", &pgconn.PgError{Code: "23502", ColumnName: "name"}, common.ErrValidation},
		{"bad number", &pgconn.PgError{Code: "22003"}, common.ErrValidation},
		{"other pg error", &pgconn.PgError{Code: "57P01"}, common.ErrUnavailable},
		{"network", errors.New("connection reset"), common.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translateError("op", tt.err), tt.want)
		})
	}

	assert.NoError(t, translateError("op", nil))
}

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
	"github.com/stretchr/testify/suite"
)

var categoryCols = []string{"id", "name", "slug", "description", "image", "display_order", "is_active", "created_at", "updated_at"}
var subcategoryCols = []string{"id", "category_id", "name", "slug", "description", "image", "sort_order", "is_active", "created_at", "updated_at"}

type CategoryRepoTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	repo    CategoryRepository
	context context.Context
	now     time.Time
}

func (suite *CategoryRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock
	suite.repo = NewCategoryRepo(mock)
	suite.context = context.Background()
	suite.now = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
}

func (suite *CategoryRepoTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestCategoryRepoTestSuite(t *testing.T) {
	suite.Run(t, new(CategoryRepoTestSuite))
}

func (suite *CategoryRepoTestSuite) TestListActiveCategories_OrderedActiveOnly() {
	phones, audio := uuid.New(), uuid.New()
	rows := pgxmock.NewRows(categoryCols).
		AddRow(phones, "Phones", "phones", "", "", 1, true, suite.now, suite.now).
		AddRow(audio, "Audio", "audio", "Sound", "audio.jpg", 3, true, suite.now, suite.now)

	suite.mock.ExpectQuery(regexp.QuoteMeta(`FROM categories WHERE is_active = TRUE ORDER BY display_order ASC, name ASC`)).
		WillReturnRows(rows)

	categories, err := suite.repo.ListActiveCategories(suite.context)

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), categories, 2)
	assert.Equal(suite.T(), phones, categories[0].ID)
	assert.Equal(suite.T(), "Sound", categories[1].Description)
}

func (suite *CategoryRepoTestSuite) TestListActiveCategories_EmptyIsNotNil() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`FROM categories WHERE is_active = TRUE`)).
		WillReturnRows(pgxmock.NewRows(categoryCols))

	categories, err := suite.repo.ListActiveCategories(suite.context)

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), categories)
	assert.Empty(suite.T(), categories)
}

func (suite *CategoryRepoTestSuite) TestListActiveCategories_ConnectionFailureIsUnavailable() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`FROM categories`)).
		WillReturnError(errors.New("dial tcp: connection refused"))

	_, err := suite.repo.ListActiveCategories(suite.context)

	assert.ErrorIs(suite.T(), err, common.ErrUnavailable)
	assert.NotErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *CategoryRepoTestSuite) TestGetActiveCategoryBySlug_NotFound() {
	suite.mock.ExpectQuery(regexp.QuoteMeta(`FROM categories WHERE slug = $1 AND is_active = TRUE`)).
		WithArgs("retired").
		WillReturnRows(pgxmock.NewRows(categoryCols))

	_, err := suite.repo.GetActiveCategoryBySlug(suite.context, "retired")

	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *CategoryRepoTestSuite) TestListActiveSubcategories() {
	categoryID := uuid.New()
	rows := pgxmock.NewRows(subcategoryCols).
		AddRow(uuid.New(), categoryID, "iPhone", "iphone", nil, nil, 1, true, suite.now, suite.now)

	suite.mock.ExpectQuery(regexp.QuoteMeta(`FROM subcategories WHERE category_id = $1 AND is_active = TRUE ORDER BY sort_order ASC, name ASC`)).
		WithArgs(categoryID).
		WillReturnRows(rows)

	subs, err := suite.repo.ListActiveSubcategories(suite.context, categoryID)

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), subs, 1)
	assert.Equal(suite.T(), categoryID, subs[0].CategoryID)
	assert.Equal(suite.T(), "", subs[0].Description)
}

func (suite *CategoryRepoTestSuite) TestCreateCategory_Success() {
	category := &models.Category{ID: uuid.New(), Name: "Phones", Slug: "phones", DisplayOrder: 1, IsActive: true}

	suite.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO categories (id, name, slug, description, image, display_order, is_active, created_at, updated_at)`)).
		WithArgs(category.ID, "Phones", "phones", "", "", 1, true).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(suite.now, suite.now))

	err := suite.repo.CreateCategory(suite.context, category)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.now, category.CreatedAt)
}

func (suite *CategoryRepoTestSuite) TestCreateCategory_DuplicateSlugIsConflict() {
	category := &models.Category{ID: uuid.New(), Name: "Phones", Slug: "phones", IsActive: true}

	suite.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO categories`)).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "categories_slug_key"})

	err := suite.repo.CreateCategory(suite.context, category)

	assert.ErrorIs(suite.T(), err, common.ErrConflict)
}

func (suite *CategoryRepoTestSuite) TestCreateSubcategory_MissingParentIsValidation() {
	sub := &models.Subcategory{ID: uuid.New(), CategoryID: uuid.New(), Name: "Orphan", Slug: "orphan", IsActive: true}

	suite.mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO subcategories`)).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23503"})

	err := suite.repo.CreateSubcategory(suite.context, sub)

	assert.ErrorIs(suite.T(), err, common.ErrValidation)
}

func (suite *CategoryRepoTestSuite) TestSetCategoryActive_UnknownIDIsNotFound() {
	id := uuid.New()
	suite.mock.ExpectExec(regexp.QuoteMeta(`UPDATE categories SET is_active = $1, updated_at = NOW() WHERE id = $2`)).
		WithArgs(false, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := suite.repo.SetCategoryActive(suite.context, id, false)

	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *CategoryRepoTestSuite) TestDeleteCategory() {
	id := uuid.New()
	suite.mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM categories WHERE id = $1`)).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := suite.repo.DeleteCategory(suite.context, id)

	assert.NoError(suite.T(), err)
}

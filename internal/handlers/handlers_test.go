package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/caching"
	"storefront/internal/common"
	"storefront/internal/fallback"
	"storefront/internal/menu"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testSecret = "test-signing-secret"

var errDown = errors.New("connection refused")

// unreachableCategories fails every live hierarchy read.
type unreachableCategories struct {
	repositories.CategoryReader
}

func (unreachableCategories) ListActiveCategories(context.Context) ([]*models.Category, error) {
	return nil, common.Unavailable("list categories", errDown)
}

func (unreachableCategories) GetActiveCategoryBySlug(context.Context, string) (*models.Category, error) {
	return nil, common.Unavailable("get category", errDown)
}

// unreachableProducts fails listings.
type unreachableProducts struct {
	repositories.ProductRepository
}

func (unreachableProducts) Query(context.Context, *models.ProductFilter) (*models.ProductPage, error) {
	return nil, common.Unavailable("count products", errDown)
}

type downPinger struct{}

func (downPinger) Ping(context.Context) error { return errDown }

func signToken(t *testing.T, subject, role string) string {
	t.Helper()
	claims := &middleware.AdminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	claims.AppMetadata.Role = role
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

type HandlersTestSuite struct {
	suite.Suite
	categories *repositories.MemoryCategoryRepo
	products   *repositories.MemoryProductRepo
	activity   *repositories.MemoryActivityLogRepo
	cache      *caching.MemoryCache
	dataset    *fallback.Dataset
}

func TestHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(HandlersTestSuite))
}

func (suite *HandlersTestSuite) SetupTest() {
	dataset, err := fallback.Default()
	suite.Require().NoError(err)
	suite.dataset = dataset
	suite.categories = repositories.NewMemoryCategoryRepo()
	suite.products = repositories.NewMemoryProductRepo()
	suite.activity = repositories.NewMemoryActivityLogRepo()
	suite.cache = caching.NewMemoryCache()

	_, err = fallback.Seed(context.Background(), dataset, suite.categories, suite.products)
	suite.Require().NoError(err)
}

// server builds the full route table. Nil readers fall back to the seeded
// memory repositories.
func (suite *HandlersTestSuite) server(categoryReader repositories.CategoryReader, productRepo repositories.ProductRepository, db Pinger) *echo.Echo {
	if categoryReader == nil {
		categoryReader = suite.categories
	}
	if productRepo == nil {
		productRepo = suite.products
	}

	policy := menu.NewPolicy([]string{"iphone"}, nil)
	hierarchySvc := services.NewHierarchyService(categoryReader, suite.cache, suite.dataset, policy, services.HierarchyOptions{Timeout: time.Second})
	productSvc := services.NewProductService(productRepo, suite.cache, time.Second, time.Minute)
	contentSvc := services.NewContentService(repositories.NewMemoryContentRepo(), suite.cache, time.Minute)
	activitySvc := services.NewActivityLogService(suite.activity)
	adminSvc := services.NewCatalogAdminService(suite.categories, suite.products, hierarchySvc, suite.cache)

	auth, err := middleware.NewAdminAuth(middleware.AuthConfig{Secret: testSecret})
	suite.Require().NoError(err)

	e := echo.New()
	e.Validator = common.NewRequestValidator()
	router := &Router{
		Categories: NewCategoryHandlers(hierarchySvc),
		Products:   NewProductHandlers(productSvc),
		Content:    NewContentHandlers(contentSvc),
		Health:     NewHealthHandlers(db, suite.cache, nil, "test"),
		Admin:      NewAdminHandlers(adminSvc, activitySvc),
		AdminAuth:  auth,
		Activity:   middleware.NewActivityMiddleware(activitySvc),
	}
	router.RegisterRoutes(e)
	return e
}

func do(e *echo.Echo, method, target, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

type hierarchyBody struct {
	Data   []*models.Category `json:"data"`
	Source string             `json:"source"`
}

func (suite *HandlersTestSuite) TestGetHierarchy_Live() {
	e := suite.server(nil, nil, nil)

	rec := do(e, http.MethodGet, "/api/categories/hierarchy", "", "")

	suite.Equal(http.StatusOK, rec.Code)
	suite.Equal("live", rec.Header().Get(SourceHeader))
	var body hierarchyBody
	decode(suite.T(), rec, &body)
	suite.Equal("live", body.Source)
	suite.Require().NotEmpty(body.Data)
	suite.Equal("phones", body.Data[0].Slug)
	suite.NotEmpty(body.Data[0].Subcategories)
}

func (suite *HandlersTestSuite) TestGetHierarchy_ScopedByQuery() {
	e := suite.server(nil, nil, nil)

	rec := do(e, http.MethodGet, "/api/categories/hierarchy?category=audio", "", "")

	suite.Equal(http.StatusOK, rec.Code)
	var body hierarchyBody
	decode(suite.T(), rec, &body)
	suite.Require().Len(body.Data, 1)
	suite.Equal("audio", body.Data[0].Slug)
}

func (suite *HandlersTestSuite) TestGetHierarchy_StoreDownServesFallback() {
	e := suite.server(unreachableCategories{}, nil, nil)

	rec := do(e, http.MethodGet, "/api/categories/hierarchy", "", "")

	suite.Equal(http.StatusOK, rec.Code)
	suite.Equal("fallback", rec.Header().Get(SourceHeader))
	var body hierarchyBody
	decode(suite.T(), rec, &body)
	suite.Len(body.Data, len(suite.dataset.Tree()))
}

func (suite *HandlersTestSuite) TestListCategories_Flat() {
	e := suite.server(nil, nil, nil)

	rec := do(e, http.MethodGet, "/api/categories", "", "")

	suite.Equal(http.StatusOK, rec.Code)
	var body hierarchyBody
	decode(suite.T(), rec, &body)
	suite.Require().NotEmpty(body.Data)
	for _, c := range body.Data {
		suite.Empty(c.Subcategories)
	}
}

func (suite *HandlersTestSuite) TestGetCategory_UnknownSlugIs404() {
	e := suite.server(nil, nil, nil)

	rec := do(e, http.MethodGet, "/api/categories/not-a-category", "", "")

	suite.Equal(http.StatusNotFound, rec.Code)
	var body common.ErrorResponse
	decode(suite.T(), rec, &body)
	suite.Equal("NOT_FOUND", body.Error.Code)
}

func (suite *HandlersTestSuite) TestGetMenu_GenerationGrouping() {
	e := suite.server(nil, nil, nil)

	rec := do(e, http.MethodGet, "/api/categories/phones/subcategories/iphone/menu", "", "")

	suite.Equal(http.StatusOK, rec.Code)
	var body struct {
		Mode    string       `json:"mode"`
		Columns int          `json:"columns"`
		Groups  []menu.Group `json:"groups"`
		Source  string       `json:"source"`
	}
	decode(suite.T(), rec, &body)
	suite.Equal(menu.ModeGeneration, body.Mode)
	suite.Require().NotEmpty(body.Groups)
	suite.Equal("17", body.Groups[0].Key)
	suite.Equal("iPhone 17", body.Groups[0].Label)
	suite.Equal(menu.OtherKey, body.Groups[len(body.Groups)-1].Key)
	suite.Equal(menu.ColumnsFor(len(body.Groups)), body.Columns)
}

func (suite *HandlersTestSuite) TestGetMenu_UnknownSubcategory() {
	e := suite.server(nil, nil, nil)

	rec := do(e, http.MethodGet, "/api/categories/phones/subcategories/nope/menu", "", "")

	suite.Equal(http.StatusNotFound, rec.Code)
}

type listingBody struct {
	Products   []*models.Product `json:"products"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"totalPages"`
}

func (suite *HandlersTestSuite) TestListProducts_PagingEnvelope() {
	e := suite.server(nil, nil, nil)
	all := len(suite.dataset.Products())

	rec := do(e, http.MethodGet, "/api/products?page=1&limit=2", "", "")

	suite.Equal(http.StatusOK, rec.Code)
	suite.Empty(rec.Header().Get(DegradedHeader))
	var body listingBody
	decode(suite.T(), rec, &body)
	suite.Equal(all, body.Total)
	suite.Equal(1, body.Page)
	suite.Equal(2, body.Limit)
	suite.LessOrEqual(len(body.Products), 2)
	suite.Equal((all+1)/2, body.TotalPages)
}

func (suite *HandlersTestSuite) TestListProducts_SaleFilter() {
	e := suite.server(nil, nil, nil)

	rec := do(e, http.MethodGet, "/api/products?sale=true&limit=50", "", "")

	suite.Equal(http.StatusOK, rec.Code)
	var body listingBody
	decode(suite.T(), rec, &body)
	suite.Require().NotEmpty(body.Products)
	for _, p := range body.Products {
		suite.True(p.OldPrice != nil || p.IsBlueMondaySale, p.Slug)
	}
}

func (suite *HandlersTestSuite) TestListByCategory_UsesPathSlug() {
	e := suite.server(nil, nil, nil)

	rec := do(e, http.MethodGet, "/api/products/category/phones?limit=50", "", "")

	suite.Equal(http.StatusOK, rec.Code)
	var body listingBody
	decode(suite.T(), rec, &body)
	suite.Require().NotEmpty(body.Products)
	for _, p := range body.Products {
		suite.Equal("phones", p.Category)
	}
}

func (suite *HandlersTestSuite) TestListProducts_StoreDownIsEmptyAndFlagged() {
	e := suite.server(nil, unreachableProducts{}, nil)

	rec := do(e, http.MethodGet, "/api/products?search=iphone", "", "")

	suite.Equal(http.StatusOK, rec.Code)
	suite.Equal("true", rec.Header().Get(DegradedHeader))
	var body listingBody
	decode(suite.T(), rec, &body)
	suite.NotNil(body.Products)
	suite.Empty(body.Products)
	suite.Equal(0, body.Total)
}

func (suite *HandlersTestSuite) TestGetProductBySlug() {
	e := suite.server(nil, nil, nil)
	product := suite.dataset.Products()[0]

	rec := do(e, http.MethodGet, "/api/products/slug/"+product.Slug, "", "")
	suite.Equal(http.StatusOK, rec.Code)
	var got models.Product
	decode(suite.T(), rec, &got)
	suite.Equal(product.ID, got.ID)

	suite.Require().NoError(suite.products.SetActive(context.Background(), product.ID, false))
	suite.Require().NoError(suite.cache.DeleteProductBySlug(context.Background(), product.Slug))

	rec = do(e, http.MethodGet, "/api/products/slug/"+product.Slug, "", "")
	suite.Equal(http.StatusNotFound, rec.Code)
}

func (suite *HandlersTestSuite) TestGetContent_UnknownKeyPlaceholder() {
	e := suite.server(nil, nil, nil)

	rec := do(e, http.MethodGet, "/api/content/about", "", "")

	suite.Equal(http.StatusOK, rec.Code)
	var body struct {
		Content map[string]any `json:"content"`
	}
	decode(suite.T(), rec, &body)
	suite.Equal("about", body.Content["page_key"])
	suite.Equal("", body.Content["title"])
	suite.Equal("", body.Content["subtitle"])
	suite.Equal([]any{}, body.Content["items"])
}

func (suite *HandlersTestSuite) TestAdmin_RequiresCredential() {
	e := suite.server(nil, nil, nil)

	rec := do(e, http.MethodPost, "/api/admin/categories", `{"name":"Wearables"}`, "")
	suite.Equal(http.StatusUnauthorized, rec.Code)

	rec = do(e, http.MethodPost, "/api/admin/categories", `{"name":"Wearables"}`, "not-a-jwt")
	suite.Equal(http.StatusUnauthorized, rec.Code)
}

func (suite *HandlersTestSuite) TestAdmin_NonAdminIsForbidden() {
	e := suite.server(nil, nil, nil)

	rec := do(e, http.MethodPost, "/api/admin/categories", `{"name":"Wearables"}`, signToken(suite.T(), "user-1", "customer"))

	suite.Equal(http.StatusForbidden, rec.Code)
	var body common.ErrorResponse
	decode(suite.T(), rec, &body)
	suite.Equal("FORBIDDEN", body.Error.Code)
}

func (suite *HandlersTestSuite) TestAdmin_CreateCategoryRecordsActivity() {
	e := suite.server(nil, nil, nil)
	token := signToken(suite.T(), "admin-1", "admin")

	rec := do(e, http.MethodPost, "/api/admin/categories", `{"name":"Wearables","display_order":9}`, token)

	suite.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var created models.Category
	decode(suite.T(), rec, &created)
	suite.Equal("wearables", created.Slug)
	suite.True(created.IsActive)

	rec = do(e, http.MethodGet, "/api/categories/wearables", "", "")
	suite.Equal(http.StatusOK, rec.Code)

	entries, err := suite.activity.ListRecent(context.Background(), 10)
	suite.Require().NoError(err)
	suite.Require().Len(entries, 1)
	suite.Equal("admin-1", entries[0].Actor)
	suite.Equal(http.MethodPost, entries[0].Method)
	suite.Equal("/api/admin/categories", entries[0].Route)
	suite.Equal(http.StatusCreated, entries[0].StatusCode)
}

func (suite *HandlersTestSuite) TestAdmin_ValidationAndConflict() {
	e := suite.server(nil, nil, nil)
	token := signToken(suite.T(), "admin-1", "admin")

	rec := do(e, http.MethodPost, "/api/admin/categories", `{"description":"no name"}`, token)
	suite.Equal(http.StatusBadRequest, rec.Code)
	var body common.ErrorResponse
	decode(suite.T(), rec, &body)
	suite.Equal("VALIDATION_ERROR", body.Error.Code)
	suite.Contains(body.Error.Details, "name")

	rec = do(e, http.MethodPost, "/api/admin/categories", `{"name":"Phones"}`, token)
	suite.Equal(http.StatusConflict, rec.Code)

	rec = do(e, http.MethodPut, "/api/admin/categories/not-a-uuid", `{"name":"X"}`, token)
	suite.Equal(http.StatusBadRequest, rec.Code)
}

func (suite *HandlersTestSuite) TestAdmin_SoftDeleteHidesCategory() {
	e := suite.server(nil, nil, nil)
	token := signToken(suite.T(), "admin-1", "admin")
	audio, ok := suite.dataset.Subtree("audio")
	suite.Require().True(ok)

	rec := do(e, http.MethodDelete, "/api/admin/categories/"+audio.ID.String(), "", token)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, "/api/categories/audio", "", "")
	suite.Equal(http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodGet, "/api/admin/categories", "", token)
	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), `"slug":"audio"`)
}

func (suite *HandlersTestSuite) TestAdmin_UpsertContent() {
	e := suite.server(nil, nil, nil)
	token := signToken(suite.T(), "admin-1", "admin")

	rec := do(e, http.MethodPut, "/api/admin/content/about", `{"title":"About us","items":[{"text":"hello"}]}`, token)
	suite.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	rec = do(e, http.MethodGet, "/api/content/about", "", "")
	suite.Equal(http.StatusOK, rec.Code)
	suite.Contains(rec.Body.String(), `"title":"About us"`)
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantCode   int
		wantDB     string
		wantStatus string
	}{
		{"memory backend", nil, http.StatusOK, "disabled", "healthy"},
		{"database down", downPinger{}, http.StatusServiceUnavailable, "unhealthy", "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			h := NewHealthHandlers(tt.db, caching.NewMemoryCache(), nil, "test")
			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			rec := httptest.NewRecorder()

			require.NoError(t, h.HealthCheck(e.NewContext(req, rec)))

			assert.Equal(t, tt.wantCode, rec.Code)
			var body HealthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, tt.wantDB, body.Services["database"])
			assert.Equal(t, "healthy", body.Services["cache"])
			assert.Equal(t, "disabled", body.Services["storage"])
			assert.Equal(t, tt.wantDB != "unhealthy", body.DatabaseReachable)
		})
	}
}

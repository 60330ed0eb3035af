package public

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pagespark/pagespark/internal/config"
	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/provider"
	"github.com/pagespark/pagespark/internal/repository"
	"github.com/pagespark/pagespark/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupTemplateHandlerTest(t *testing.T) (*Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:public_template_handler_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Template{},
		&models.TemplatePurchase{},
		&models.TemplateAnalytics{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Generator.SiteBaseDomain = "pagespark.site"

	templateRepo := repository.NewTemplateRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	purchaseRepo := repository.NewTemplatePurchaseRepository(db)
	analyticsRepo := repository.NewTemplateAnalyticsRepository(db)

	h := &Handler{Container: &provider.Container{
		Config:           cfg,
		TemplateService:  service.NewTemplateService(templateRepo, categoryRepo, purchaseRepo, nil, nil),
		AnalyticsService: service.NewAnalyticsService(analyticsRepo, templateRepo),
	}}
	return h, db
}

func seedPublicCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()
	category := &models.Category{
		Slug:     "landing",
		NameJSON: models.JSON(map[string]interface{}{"en-US": "Landing Pages"}),
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("seed category failed: %v", err)
	}
	return category
}

func seedPublicTemplate(t *testing.T, db *gorm.DB, categoryID uint, slug, status string, price decimal.Decimal) *models.Template {
	t.Helper()
	template := &models.Template{
		CategoryID:  categoryID,
		Slug:        slug,
		TitleJSON:   models.JSON(map[string]interface{}{"en-US": slug}),
		Framework:   constants.FrameworkNext,
		PriceAmount: models.NewMoneyFromDecimal(price),
		Currency:    "USD",
		Status:      status,
	}
	if err := db.Create(template).Error; err != nil {
		t.Fatalf("seed template failed: %v", err)
	}
	return template
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) (int, map[string]interface{}) {
	t.Helper()
	var envelope struct {
		StatusCode int             `json:"status_code"`
		Data       json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	data := map[string]interface{}{}
	if len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		_ = json.Unmarshal(envelope.Data, &data)
	}
	return envelope.StatusCode, data
}

func TestGetTemplatesOnlyLive(t *testing.T) {
	h, db := setupTemplateHandlerTest(t)
	category := seedPublicCategory(t, db)
	seedPublicTemplate(t, db, category.ID, "saas-launch", constants.TemplateStatusLive, decimal.NewFromInt(29))
	seedPublicTemplate(t, db, category.ID, "half-baked", constants.TemplateStatusDraft, decimal.Zero)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/public/templates?page=1&page_size=20", nil)

	h.GetTemplates(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected HTTP 200, got %d", w.Code)
	}
	var envelope struct {
		StatusCode int               `json:"status_code"`
		Data       []models.Template `json:"data"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response failed: %v", err)
	}
	if envelope.StatusCode != 0 {
		t.Fatalf("expected status_code 0, got %d", envelope.StatusCode)
	}
	if envelope.Pagination.Total != 1 || len(envelope.Data) != 1 {
		t.Fatalf("expected only the live template, got total=%d len=%d", envelope.Pagination.Total, len(envelope.Data))
	}
	if envelope.Data[0].Slug != "saas-launch" {
		t.Fatalf("unexpected template slug %q", envelope.Data[0].Slug)
	}
}

func TestGetTemplateBySlugDraftHidden(t *testing.T) {
	h, db := setupTemplateHandlerTest(t)
	category := seedPublicCategory(t, db)
	seedPublicTemplate(t, db, category.ID, "half-baked", constants.TemplateStatusDraft, decimal.Zero)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/public/templates/half-baked", nil)
	c.Params = gin.Params{{Key: "slug", Value: "half-baked"}}

	h.GetTemplateBySlug(c)

	statusCode, _ := decodeEnvelope(t, w)
	if statusCode != 404 {
		t.Fatalf("expected status_code 404 for draft template, got %d", statusCode)
	}
}

func TestDownloadTemplateFree(t *testing.T) {
	h, db := setupTemplateHandlerTest(t)
	category := seedPublicCategory(t, db)
	template := seedPublicTemplate(t, db, category.ID, "conference-page", constants.TemplateStatusLive, decimal.Zero)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/templates/conference-page/download", nil)
	c.Params = gin.Params{{Key: "slug", Value: "conference-page"}}
	c.Set("user_id", uint(7))

	h.DownloadTemplate(c)

	statusCode, data := decodeEnvelope(t, w)
	if statusCode != 0 {
		t.Fatalf("expected status_code 0, got %d", statusCode)
	}
	wantURL := "https://assets.pagespark.site/templates/conference-page.zip"
	if data["download_url"] != wantURL {
		t.Fatalf("expected download_url %q, got %v", wantURL, data["download_url"])
	}

	// 下载计数应已落库
	var analytics models.TemplateAnalytics
	if err := db.Where("template_id = ?", template.ID).First(&analytics).Error; err != nil {
		t.Fatalf("expected analytics row: %v", err)
	}
	if analytics.Downloads != 1 {
		t.Fatalf("expected downloads 1, got %d", analytics.Downloads)
	}
}

func TestDownloadTemplatePaidRequiresPurchase(t *testing.T) {
	h, db := setupTemplateHandlerTest(t)
	category := seedPublicCategory(t, db)
	template := seedPublicTemplate(t, db, category.ID, "saas-launch", constants.TemplateStatusLive, decimal.NewFromInt(29))

	run := func(uid uint) (int, map[string]interface{}) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/templates/saas-launch/download", nil)
		c.Params = gin.Params{{Key: "slug", Value: "saas-launch"}}
		c.Set("user_id", uid)
		h.DownloadTemplate(c)
		return decodeEnvelope(t, w)
	}

	statusCode, _ := run(7)
	if statusCode != 403 {
		t.Fatalf("expected status_code 403 without purchase, got %d", statusCode)
	}

	purchase := &models.TemplatePurchase{
		UserID:     7,
		TemplateID: template.ID,
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(29)),
		Currency:   "USD",
	}
	if err := db.Create(purchase).Error; err != nil {
		t.Fatalf("seed purchase failed: %v", err)
	}

	statusCode, data := run(7)
	if statusCode != 0 {
		t.Fatalf("expected status_code 0 after purchase, got %d", statusCode)
	}
	if data["slug"] != "saas-launch" {
		t.Fatalf("unexpected slug in payload: %v", data["slug"])
	}
}

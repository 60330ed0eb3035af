package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/pagespark/pagespark/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupTemplateAnalyticsRepositoryTest(t *testing.T) *GormTemplateAnalyticsRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:template_analytics_repository_test_%d?mode=memory&cache=shared", time.Now().UnixNano())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.TemplateAnalytics{}); err != nil {
		t.Fatalf("migrate analytics failed: %v", err)
	}
	return NewTemplateAnalyticsRepository(db)
}

func TestTemplateAnalyticsUpsertAccumulates(t *testing.T) {
	repo := setupTemplateAnalyticsRepositoryTest(t)
	const templateID = 101
	const day = "2026-08-30"

	if err := repo.IncrementViews(templateID, day, 3); err != nil {
		t.Fatalf("first increment failed: %v", err)
	}
	if err := repo.IncrementViews(templateID, day, 2); err != nil {
		t.Fatalf("second increment failed: %v", err)
	}
	if err := repo.IncrementDownloads(templateID, day, 1); err != nil {
		t.Fatalf("increment downloads failed: %v", err)
	}
	if err := repo.AddPurchase(templateID, day, models.NewMoneyFromDecimal(decimal.NewFromInt(49))); err != nil {
		t.Fatalf("add purchase failed: %v", err)
	}

	rows, err := repo.ListByTemplate(templateID, day, day)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows want 1 got %d", len(rows))
	}
	row := rows[0]
	if row.Views != 5 {
		t.Fatalf("views want 5 got %d", row.Views)
	}
	if row.Downloads != 1 {
		t.Fatalf("downloads want 1 got %d", row.Downloads)
	}
	if row.Purchases != 1 {
		t.Fatalf("purchases want 1 got %d", row.Purchases)
	}
	if row.Revenue.String() != "49.00" {
		t.Fatalf("revenue want 49.00 got %s", row.Revenue.String())
	}
}

func TestTemplateAnalyticsSeparateDays(t *testing.T) {
	repo := setupTemplateAnalyticsRepositoryTest(t)
	const templateID = 202

	if err := repo.IncrementViews(templateID, "2026-08-28", 1); err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if err := repo.IncrementViews(templateID, "2026-08-29", 1); err != nil {
		t.Fatalf("increment failed: %v", err)
	}

	rows, err := repo.ListByTemplate(templateID, "2026-08-28", "2026-08-29")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows want 2 got %d", len(rows))
	}
	if rows[0].Day != "2026-08-28" || rows[1].Day != "2026-08-29" {
		t.Fatalf("rows should be ordered by day, got %s %s", rows[0].Day, rows[1].Day)
	}
}

func TestTemplateAnalyticsIgnoresInvalidInput(t *testing.T) {
	repo := setupTemplateAnalyticsRepositoryTest(t)
	if err := repo.IncrementViews(0, "2026-08-30", 1); err != nil {
		t.Fatalf("zero template id should be a no-op, got %v", err)
	}
	if err := repo.IncrementViews(303, "", 1); err != nil {
		t.Fatalf("empty day should be a no-op, got %v", err)
	}
	if err := repo.IncrementViews(303, "2026-08-30", 0); err != nil {
		t.Fatalf("zero delta should be a no-op, got %v", err)
	}
	rows, err := repo.ListByTemplate(303, "2026-08-30", "2026-08-30")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("no rows expected, got %d", len(rows))
	}
}

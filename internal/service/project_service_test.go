package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/pagespark/pagespark/internal/config"
	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/queue"
	"github.com/pagespark/pagespark/internal/repository"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupProjectServiceTest(t *testing.T) (*ProjectService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:project_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Template{}, &models.Project{}, &models.Plan{}, &models.Subscription{}); err != nil {
		t.Fatalf("migrate project tables failed: %v", err)
	}

	cfg := &config.Config{}
	cfg.Generator.SiteBaseDomain = "sites.pagespark.dev"

	queueClient, err := queue.NewClient(nil)
	if err != nil {
		t.Fatalf("create queue client failed: %v", err)
	}

	svc := NewProjectService(cfg,
		repository.NewProjectRepository(db),
		repository.NewTemplateRepository(db),
		repository.NewSubscriptionRepository(db),
		queueClient,
	)
	return svc, db
}

func TestNormalizeSubdomain(t *testing.T) {
	cases := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "  My-Site  ", want: "my-site"},
		{raw: "abc", want: "abc"},
		{raw: "a1-b2", want: "a1-b2"},
		{raw: "ab", wantErr: true},
		{raw: "-abc", wantErr: true},
		{raw: "abc-", wantErr: true},
		{raw: "UPPER_CASE", wantErr: true},
		{raw: "www", wantErr: true},
		{raw: "admin", wantErr: true},
		{raw: "", wantErr: true},
	}
	for _, tc := range cases {
		got, err := NormalizeSubdomain(tc.raw)
		if tc.wantErr {
			if err != ErrSubdomainInvalid {
				t.Fatalf("%q: want ErrSubdomainInvalid got %v", tc.raw, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tc.raw, err)
		}
		if got != tc.want {
			t.Fatalf("%q: want %q got %q", tc.raw, tc.want, got)
		}
	}
}

func TestProjectCreateFreeLimit(t *testing.T) {
	svc, _ := setupProjectServiceTest(t)
	userID := uint(time.Now().UnixNano() % 1000000)

	first, err := svc.Create(userID, CreateProjectInput{
		Name:      "Portfolio",
		Subdomain: fmt.Sprintf("limit-a-%d", userID),
		Prompt:    "minimal portfolio site",
	})
	if err != nil {
		t.Fatalf("first project failed: %v", err)
	}
	if first.Status != constants.ProjectStatusGenerating {
		t.Fatalf("new project status want generating got %s", first.Status)
	}

	_, err = svc.Create(userID, CreateProjectInput{
		Name:      "Second",
		Subdomain: fmt.Sprintf("limit-b-%d", userID),
	})
	if err != ErrProjectLimitReached {
		t.Fatalf("want ErrProjectLimitReached got %v", err)
	}
}

func TestProjectCreateSubscribedLimit(t *testing.T) {
	svc, db := setupProjectServiceTest(t)
	userID := uint(1000000 + time.Now().UnixNano()%1000000)

	plan := &models.Plan{
		Code:         fmt.Sprintf("pro-%d", userID),
		NameJSON:     models.JSON{"en-US": "Pro"},
		Interval:     constants.PlanIntervalMonth,
		ProjectLimit: 3,
		IsActive:     true,
	}
	if err := db.Create(plan).Error; err != nil {
		t.Fatalf("create plan failed: %v", err)
	}
	end := time.Now().Add(24 * time.Hour)
	sub := &models.Subscription{
		UserID:           userID,
		PlanID:           plan.ID,
		Status:           constants.SubscriptionStatusActive,
		ProviderType:     constants.PaymentProviderStripe,
		CurrentPeriodEnd: &end,
	}
	if err := db.Create(sub).Error; err != nil {
		t.Fatalf("create subscription failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Create(userID, CreateProjectInput{
			Name:      fmt.Sprintf("Site %d", i),
			Subdomain: fmt.Sprintf("sub-%d-%d", userID, i),
		}); err != nil {
			t.Fatalf("project %d failed: %v", i, err)
		}
	}
	if _, err := svc.Create(userID, CreateProjectInput{
		Name:      "Overflow",
		Subdomain: fmt.Sprintf("sub-%d-over", userID),
	}); err != ErrProjectLimitReached {
		t.Fatalf("want ErrProjectLimitReached got %v", err)
	}
}

func TestProjectSubdomainConflict(t *testing.T) {
	svc, _ := setupProjectServiceTest(t)
	base := time.Now().UnixNano() % 1000000
	subdomain := fmt.Sprintf("conflict-%d", base)

	if _, err := svc.Create(uint(2000000+base), CreateProjectInput{Name: "One", Subdomain: subdomain}); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	if _, err := svc.Create(uint(3000000+base), CreateProjectInput{Name: "Two", Subdomain: subdomain}); err != ErrSubdomainExists {
		t.Fatalf("want ErrSubdomainExists got %v", err)
	}
}

func TestProjectPublishFlow(t *testing.T) {
	svc, _ := setupProjectServiceTest(t)
	userID := uint(4000000 + time.Now().UnixNano()%1000000)

	project, err := svc.Create(userID, CreateProjectInput{
		Name:      "Launch",
		Subdomain: fmt.Sprintf("launch-%d", userID),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// generating 阶段不可发布
	if _, err := svc.Publish(userID, project.ID); err != ErrProjectStatusInvalid {
		t.Fatalf("publish while generating: want ErrProjectStatusInvalid got %v", err)
	}

	if err := svc.MarkReady(project.ID, models.JSON{"theme": "dark"}); err != nil {
		t.Fatalf("mark ready failed: %v", err)
	}

	published, err := svc.Publish(userID, project.ID)
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if published.Status != constants.ProjectStatusPublished {
		t.Fatalf("status want published got %s", published.Status)
	}
	if published.PublishedAt == nil {
		t.Fatal("published_at should be set")
	}
	if got := svc.SiteURL(published); got != fmt.Sprintf("https://launch-%d.sites.pagespark.dev", userID) {
		t.Fatalf("unexpected site url %q", got)
	}

	// 其他用户不可见
	if _, err := svc.Get(userID+1, project.ID); err != ErrProjectNotFound {
		t.Fatalf("cross-user get: want ErrProjectNotFound got %v", err)
	}
}

func TestProjectMarkFailedAndRegenerate(t *testing.T) {
	svc, _ := setupProjectServiceTest(t)
	userID := uint(5000000 + time.Now().UnixNano()%1000000)

	project, err := svc.Create(userID, CreateProjectInput{
		Name:      "Retry",
		Subdomain: fmt.Sprintf("retry-%d", userID),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := svc.MarkFailed(project.ID, "generator timeout"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	failed, err := svc.Get(userID, project.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if failed.Status != constants.ProjectStatusFailed || failed.FailReason != "generator timeout" {
		t.Fatalf("unexpected failed state %s/%s", failed.Status, failed.FailReason)
	}

	regenerated, err := svc.Regenerate(userID, project.ID, "brighter colors")
	if err != nil {
		t.Fatalf("regenerate failed: %v", err)
	}
	if regenerated.Status != constants.ProjectStatusGenerating {
		t.Fatalf("status want generating got %s", regenerated.Status)
	}
	if regenerated.Prompt != "brighter colors" {
		t.Fatalf("prompt not updated: %q", regenerated.Prompt)
	}
	if regenerated.FailReason != "" {
		t.Fatal("fail reason should be cleared")
	}
}

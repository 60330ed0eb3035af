package main

import (
	"fmt"
	"time"

	"github.com/pagespark/pagespark/internal/config"
	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/logger"
	"github.com/pagespark/pagespark/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加分类
	categories := []models.Category{
		{
			NameJSON: models.JSON(map[string]interface{}{
				"zh-CN": "落地页",
				"en-US": "Landing Pages",
			}),
			DescriptionJSON: models.JSON(map[string]interface{}{
				"zh-CN": "产品发布与营销落地页模板",
				"en-US": "Templates for product launches and marketing pages",
			}),
			Slug:      "landing",
			SortOrder: 300,
		},
		{
			NameJSON: models.JSON(map[string]interface{}{
				"zh-CN": "作品集",
				"en-US": "Portfolios",
			}),
			DescriptionJSON: models.JSON(map[string]interface{}{
				"zh-CN": "设计师与开发者个人作品集模板",
				"en-US": "Portfolio templates for designers and developers",
			}),
			Slug:      "portfolio",
			SortOrder: 200,
		},
		{
			NameJSON: models.JSON(map[string]interface{}{
				"zh-CN": "电商",
				"en-US": "E-commerce",
			}),
			DescriptionJSON: models.JSON(map[string]interface{}{
				"zh-CN": "在线商店与商品展示模板",
				"en-US": "Online store and product showcase templates",
			}),
			Slug:      "ecommerce",
			SortOrder: 100,
		},
	}

	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Slug)
			}
		} else {
			stdLog.Printf("Category already exists: %s", cat.Slug)
		}
	}

	// 获取分类ID
	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("slug IN ?", []string{"landing", "portfolio", "ecommerce"}).Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}
	landingID := categoryIDs["landing"]
	portfolioID := categoryIDs["portfolio"]
	ecommerceID := categoryIDs["ecommerce"]

	now := time.Now()
	deployedAt := now.Add(-48 * time.Hour)

	// 添加模板
	templates := []models.Template{
		{
			TitleJSON: models.JSON(map[string]interface{}{
				"zh-CN": "SaaS 产品发布页",
				"en-US": "SaaS Launch Page",
			}),
			Slug: "saas-launch",
			DescriptionJSON: models.JSON(map[string]interface{}{
				"zh-CN": "面向 SaaS 产品的现代落地页，含定价区块与注册表单。",
				"en-US": "A modern landing page for SaaS products with pricing and signup sections.",
			}),
			CategoryID:   landingID,
			Framework:    "next",
			PreviewImage: "https://images.unsplash.com/photo-1460925895917-afdab827c52f?w=1200",
			DemoURL:      "https://demo.pagespark.site/saas-launch",
			Tags:         models.StringArray([]string{"SaaS", "Landing", "Pricing"}),
			PriceAmount:  models.NewMoneyFromDecimal(decimal.NewFromFloat(29.00)),
			Currency:     "USD",
			Status:       constants.TemplateStatusLive,
			IsFeatured:   true,
			SortOrder:    300,
			DeployedAt:   &deployedAt,
		},
		{
			TitleJSON: models.JSON(map[string]interface{}{
				"zh-CN": "极简作品集",
				"en-US": "Minimal Portfolio",
			}),
			Slug: "minimal-portfolio",
			DescriptionJSON: models.JSON(map[string]interface{}{
				"zh-CN": "留白为主的作品集模板，适合摄影师与插画师。",
				"en-US": "A whitespace-first portfolio template for photographers and illustrators.",
			}),
			CategoryID:   portfolioID,
			Framework:    "astro",
			PreviewImage: "https://images.unsplash.com/photo-1467232004584-a241de8bcf5d?w=1200",
			DemoURL:      "https://demo.pagespark.site/minimal-portfolio",
			Tags:         models.StringArray([]string{"Portfolio", "Minimal"}),
			PriceAmount:  models.NewMoneyFromDecimal(decimal.Zero),
			Currency:     "USD",
			Status:       constants.TemplateStatusLive,
			IsFeatured:   true,
			SortOrder:    260,
			DeployedAt:   &deployedAt,
		},
		{
			TitleJSON: models.JSON(map[string]interface{}{
				"zh-CN": "单品商店",
				"en-US": "Single Product Store",
			}),
			Slug: "single-product-store",
			DescriptionJSON: models.JSON(map[string]interface{}{
				"zh-CN": "聚焦单一商品的电商模板，含评价与 FAQ 区块。",
				"en-US": "An e-commerce template focused on one product with reviews and FAQ sections.",
			}),
			CategoryID:   ecommerceID,
			Framework:    "next",
			PreviewImage: "https://images.unsplash.com/photo-1472851294608-062f824d29cc?w=1200",
			DemoURL:      "https://demo.pagespark.site/single-product-store",
			Tags:         models.StringArray([]string{"E-commerce", "Store"}),
			PriceAmount:  models.NewMoneyFromDecimal(decimal.NewFromFloat(49.00)),
			Currency:     "USD",
			Status:       constants.TemplateStatusLive,
			SortOrder:    220,
			DeployedAt:   &deployedAt,
		},
		{
			TitleJSON: models.JSON(map[string]interface{}{
				"zh-CN": "会议活动页",
				"en-US": "Conference Page",
			}),
			Slug: "conference-page",
			DescriptionJSON: models.JSON(map[string]interface{}{
				"zh-CN": "活动与会议宣传页，含日程表与讲师卡片。",
				"en-US": "An event page with agenda table and speaker cards.",
			}),
			CategoryID:   landingID,
			Framework:    "plain",
			PreviewImage: "https://images.unsplash.com/photo-1540575467063-178a50c2df87?w=1200",
			DemoURL:      "https://demo.pagespark.site/conference-page",
			Tags:         models.StringArray([]string{"Event", "Landing"}),
			PriceAmount:  models.NewMoneyFromDecimal(decimal.Zero),
			Currency:     "USD",
			Status:       constants.TemplateStatusLive,
			SortOrder:    180,
			DeployedAt:   &deployedAt,
		},
		{
			TitleJSON: models.JSON(map[string]interface{}{
				"zh-CN": "开发者简历页",
				"en-US": "Developer Resume",
			}),
			Slug: "developer-resume",
			DescriptionJSON: models.JSON(map[string]interface{}{
				"zh-CN": "面向开发者的单页简历模板，草稿状态用于演示发布流程。",
				"en-US": "A one-page resume template for developers, kept in draft to demo the deploy flow.",
			}),
			CategoryID:   portfolioID,
			Framework:    "astro",
			PreviewImage: "https://images.unsplash.com/photo-1498050108023-c5249f4df085?w=1200",
			Tags:         models.StringArray([]string{"Resume", "Portfolio"}),
			PriceAmount:  models.NewMoneyFromDecimal(decimal.NewFromFloat(19.00)),
			Currency:     "USD",
			Status:       constants.TemplateStatusDraft,
			SortOrder:    140,
		},
	}

	for _, tpl := range templates {
		if tpl.CategoryID == 0 {
			stdLog.Printf("Skip template %s: category_id missing", tpl.Slug)
			continue
		}
		var existing models.Template
		if err := models.DB.Where("slug = ?", tpl.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&tpl).Error; err != nil {
				stdLog.Printf("Failed to create template %s: %v", tpl.Slug, err)
			} else {
				stdLog.Printf("Created template: %s", tpl.Slug)
			}
		} else {
			existing.TitleJSON = tpl.TitleJSON
			existing.DescriptionJSON = tpl.DescriptionJSON
			existing.CategoryID = tpl.CategoryID
			existing.Framework = tpl.Framework
			existing.PreviewImage = tpl.PreviewImage
			existing.DemoURL = tpl.DemoURL
			existing.Tags = tpl.Tags
			existing.PriceAmount = tpl.PriceAmount
			existing.Currency = tpl.Currency
			existing.Status = tpl.Status
			existing.IsFeatured = tpl.IsFeatured
			existing.SortOrder = tpl.SortOrder
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update template %s: %v", tpl.Slug, err)
			} else {
				stdLog.Printf("Updated template: %s", tpl.Slug)
			}
		}
	}

	// 添加订阅计划
	plans := []models.Plan{
		{
			Code: "starter",
			NameJSON: models.JSON(map[string]interface{}{
				"zh-CN": "入门版",
				"en-US": "Starter",
			}),
			DescriptionJSON: models.JSON(map[string]interface{}{
				"zh-CN": "适合个人尝鲜，单项目与基础生成能力。",
				"en-US": "For individuals getting started, one project with basic generation.",
			}),
			PriceAmount:  models.NewMoneyFromDecimal(decimal.Zero),
			Currency:     "USD",
			Interval:     constants.PlanIntervalMonth,
			Features:     models.StringArray([]string{"1 project", "pagespark.site subdomain", "Community support"}),
			ProjectLimit: 1,
			IsActive:     true,
			SortOrder:    300,
		},
		{
			Code: "pro",
			NameJSON: models.JSON(map[string]interface{}{
				"zh-CN": "专业版",
				"en-US": "Pro",
			}),
			DescriptionJSON: models.JSON(map[string]interface{}{
				"zh-CN": "适合自由职业者，更多项目与优先生成队列。",
				"en-US": "For freelancers, more projects and a priority generation queue.",
			}),
			PriceAmount:  models.NewMoneyFromDecimal(decimal.NewFromFloat(12.00)),
			Currency:     "USD",
			Interval:     constants.PlanIntervalMonth,
			Features:     models.StringArray([]string{"10 projects", "Priority generation", "Email support"}),
			ProjectLimit: 10,
			IsActive:     true,
			SortOrder:    200,
		},
		{
			Code: "business",
			NameJSON: models.JSON(map[string]interface{}{
				"zh-CN": "商业版",
				"en-US": "Business",
			}),
			DescriptionJSON: models.JSON(map[string]interface{}{
				"zh-CN": "适合团队与工作室，项目数量不限。",
				"en-US": "For teams and studios, unlimited projects.",
			}),
			PriceAmount:  models.NewMoneyFromDecimal(decimal.NewFromFloat(49.00)),
			Currency:     "USD",
			Interval:     constants.PlanIntervalMonth,
			Features:     models.StringArray([]string{"Unlimited projects", "Priority generation", "Dedicated support"}),
			ProjectLimit: 0,
			IsActive:     true,
			SortOrder:    100,
		},
	}

	for _, plan := range plans {
		var existing models.Plan
		if err := models.DB.Where("code = ?", plan.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&plan).Error; err != nil {
				stdLog.Printf("Failed to create plan %s: %v", plan.Code, err)
			} else {
				stdLog.Printf("Created plan: %s", plan.Code)
			}
		} else {
			existing.NameJSON = plan.NameJSON
			existing.DescriptionJSON = plan.DescriptionJSON
			existing.PriceAmount = plan.PriceAmount
			existing.Currency = plan.Currency
			existing.Interval = plan.Interval
			existing.Features = plan.Features
			existing.ProjectLimit = plan.ProjectLimit
			existing.IsActive = plan.IsActive
			existing.SortOrder = plan.SortOrder
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update plan %s: %v", plan.Code, err)
			} else {
				stdLog.Printf("Updated plan: %s", plan.Code)
			}
		}
	}

	// 添加支付渠道（密钥留空，后台补全后启用）
	channels := []models.PaymentChannel{
		{
			Name:            "Stripe",
			ProviderType:    constants.PaymentProviderStripe,
			InteractionMode: constants.PaymentInteractionRedirect,
			FeeRate:         models.NewMoneyFromDecimal(decimal.NewFromFloat(2.9)),
			ConfigJSON: models.JSON(map[string]interface{}{
				"secret_key":     "",
				"webhook_secret": "",
			}),
			IsActive:  false,
			SortOrder: 200,
		},
		{
			Name:            "微信支付",
			ProviderType:    constants.PaymentProviderWechatpay,
			InteractionMode: constants.PaymentInteractionQR,
			FeeRate:         models.NewMoneyFromDecimal(decimal.NewFromFloat(0.6)),
			ConfigJSON: models.JSON(map[string]interface{}{
				"mch_id":      "",
				"app_id":      "",
				"api_v3_key":  "",
				"serial_no":   "",
				"private_key": "",
			}),
			IsActive:  false,
			SortOrder: 100,
		},
	}

	for _, ch := range channels {
		var existing models.PaymentChannel
		if err := models.DB.Where("provider_type = ? AND name = ?", ch.ProviderType, ch.Name).First(&existing).Error; err != nil {
			if err := models.DB.Create(&ch).Error; err != nil {
				stdLog.Printf("Failed to create payment channel %s: %v", ch.Name, err)
			} else {
				stdLog.Printf("Created payment channel: %s", ch.Name)
			}
		} else {
			stdLog.Printf("Payment channel already exists: %s", ch.Name)
		}
	}

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 3 Categories")
	fmt.Println("- 5 Templates (4 live + 1 draft)")
	fmt.Println("- 3 Plans (starter/pro/business)")
	fmt.Println("- 2 Payment channels (disabled until configured)")
}

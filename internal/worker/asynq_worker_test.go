package worker

import (
	"testing"

	"github.com/pagespark/pagespark/internal/models"
	"github.com/pagespark/pagespark/internal/provider"
)

func TestBuildSiteConfigWithoutTemplate(t *testing.T) {
	consumer := NewConsumer(&provider.Container{})
	project := &models.Project{
		Name:      "My Landing",
		Subdomain: "my-landing",
		Prompt:    "A SaaS landing page with Pricing table and contact form",
	}

	cfg, err := consumer.buildSiteConfig(project)
	if err != nil {
		t.Fatalf("build site config failed: %v", err)
	}
	if cfg["theme"] != "default" {
		t.Fatalf("theme = %v, want default", cfg["theme"])
	}
	if cfg["subdomain"] != "my-landing" {
		t.Fatalf("subdomain = %v", cfg["subdomain"])
	}
	sections, ok := cfg["sections"].([]string)
	if !ok {
		t.Fatalf("sections missing: %v", cfg["sections"])
	}
	want := map[string]bool{"pricing": false, "contact": false}
	for _, section := range sections {
		if _, exists := want[section]; exists {
			want[section] = true
		}
	}
	for section, seen := range want {
		if !seen {
			t.Fatalf("section %q not derived from prompt, got %v", section, sections)
		}
	}
}

func TestLocalizedText(t *testing.T) {
	j := models.JSON{
		"en-US": "Pro Plan",
		"zh-CN": "专业版",
	}
	if got := localizedText(j, "zh-CN"); got != "专业版" {
		t.Fatalf("locale match failed: %q", got)
	}
	if got := localizedText(j, "fr-FR"); got != "Pro Plan" {
		t.Fatalf("fallback to supported locale failed: %q", got)
	}
	if got := localizedText(models.JSON{"ja-JP": "プラン"}, "en-US"); got != "プラン" {
		t.Fatalf("any-value fallback failed: %q", got)
	}
	if got := localizedText(nil, "en-US"); got != "" {
		t.Fatalf("nil json should yield empty, got %q", got)
	}
}

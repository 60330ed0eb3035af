package public

import (
	"time"

	"github.com/pagespark/pagespark/internal/cache"
	"github.com/pagespark/pagespark/internal/constants"
	"github.com/pagespark/pagespark/internal/http/response"

	"github.com/gin-gonic/gin"
)

const (
	publicConfigCacheKey = "public:config"
	publicConfigCacheTTL = 60 * time.Second
)

// GetConfig 获取前台全局配置
func (h *Handler) GetConfig(c *gin.Context) {
	var cached map[string]interface{}
	if hit, err := cache.GetJSON(c.Request.Context(), publicConfigCacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	data := map[string]interface{}{
		"languages":     constants.SupportedLocales,
		"site_currency": constants.SiteCurrencyDefault,
	}
	if h.Config != nil {
		data["site_base_domain"] = h.Config.Generator.SiteBaseDomain
	}

	channels, err := h.PaymentService.ListActiveChannels()
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}
	publicChannels := make([]map[string]interface{}, 0, len(channels))
	for _, channel := range channels {
		publicChannels = append(publicChannels, map[string]interface{}{
			"id":               channel.ID,
			"name":             channel.Name,
			"provider_type":    channel.ProviderType,
			"interaction_mode": channel.InteractionMode,
			"fee_rate":         channel.FeeRate,
		})
	}
	data["payment_channels"] = publicChannels

	if h.CaptchaService != nil {
		data["captcha"] = map[string]interface{}{
			"provider": "image",
			"scenes": map[string]bool{
				constants.CaptchaSceneUserLogin:  h.CaptchaService.IsSceneEnabled(constants.CaptchaSceneUserLogin),
				constants.CaptchaSceneAdminLogin: h.CaptchaService.IsSceneEnabled(constants.CaptchaSceneAdminLogin),
			},
		}
	}

	_ = cache.SetJSON(c.Request.Context(), publicConfigCacheKey, data, publicConfigCacheTTL)
	response.Success(c, data)
}

// GetCategories 获取模板分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "error.category_fetch_failed", err)
		return
	}
	response.Success(c, categories)
}

// GetPlans 获取定价页可见的订阅计划
func (h *Handler) GetPlans(c *gin.Context) {
	plans, err := h.PlanService.ListActive()
	if err != nil {
		respondError(c, response.CodeInternal, "error.plan_fetch_failed", err)
		return
	}
	response.Success(c, plans)
}

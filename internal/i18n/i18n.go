package i18n

import (
	"fmt"
	"strings"

	"github.com/pagespark/pagespark/internal/constants"

	"github.com/gin-gonic/gin"
)

const localeContextKey = "locale"

// ResolveLocale 解析请求语言（优先 query，其次 Accept-Language，最后回退默认语言）
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return constants.LocaleEnUS
	}
	if value, ok := c.Get(localeContextKey); ok {
		if locale, ok := value.(string); ok && locale != "" {
			return normalizeLocale(locale)
		}
	}

	locale := strings.TrimSpace(c.Query("locale"))
	if locale == "" {
		locale = parseAcceptLanguage(c.GetHeader("Accept-Language"))
	}
	locale = normalizeLocale(locale)
	c.Set(localeContextKey, locale)
	return locale
}

// T 按语言查找文案，缺失时回退默认语言，再回退 key 本身
func T(locale, key string) string {
	locale = normalizeLocale(locale)
	if table, ok := messages[locale]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if locale != constants.LocaleEnUS {
		if msg, ok := messages[constants.LocaleEnUS][key]; ok {
			return msg
		}
	}
	return key
}

// Sprintf 查找文案并格式化参数
func Sprintf(locale, key string, args ...interface{}) string {
	format := T(locale, key)
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

func normalizeLocale(locale string) string {
	trimmed := strings.TrimSpace(locale)
	if trimmed == "" {
		return constants.LocaleEnUS
	}
	for _, supported := range constants.SupportedLocales {
		if strings.EqualFold(trimmed, supported) {
			return supported
		}
	}
	// 仅语言前缀匹配（例如 zh → zh-CN）
	prefix := strings.ToLower(trimmed)
	if idx := strings.IndexAny(prefix, "-_"); idx > 0 {
		prefix = prefix[:idx]
	}
	for _, supported := range constants.SupportedLocales {
		if strings.HasPrefix(strings.ToLower(supported), prefix) {
			return supported
		}
	}
	return constants.LocaleEnUS
}

func parseAcceptLanguage(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	for _, part := range strings.Split(header, ",") {
		lang := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if lang == "" || lang == "*" {
			continue
		}
		return lang
	}
	return ""
}

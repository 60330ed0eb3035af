package service

import (
	"net/mail"
	"strings"
)

// normalizeEmail 邮箱归一化：去空格、转小写、格式校验
func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", ErrInvalidEmail
	}
	return trimmed, nil
}

// NormalizeEmail 导出版本，供 handler 与其他服务复用
func NormalizeEmail(email string) (string, error) {
	return normalizeEmail(email)
}

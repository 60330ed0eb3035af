package admin

import handlershared "github.com/pagespark/pagespark/internal/http/handlers/shared"

// CaptchaPayloadRequest 验证码请求载荷
type CaptchaPayloadRequest = handlershared.CaptchaPayloadRequest

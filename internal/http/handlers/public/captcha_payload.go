package public

import handlershared "github.com/pagespark/pagespark/internal/http/handlers/shared"

// CaptchaPayloadRequest 验证码请求载荷
// 未启用场景允许空载荷，由 service 层按配置判定是否必填。
type CaptchaPayloadRequest = handlershared.CaptchaPayloadRequest

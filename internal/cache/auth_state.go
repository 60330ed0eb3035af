package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/pagespark/pagespark/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// 纪元键的存活时间必须长于快照，保证批量撤销在受影响快照的生命周期内可见
const sessionEpochTTL = time.Hour

// AdminSessionState 管理员会话快照
// 说明：以令牌哈希为键的 Redis 缓存，减少会话校验的数据库往返；
// 数据库中的会话行始终是最终依据，快照过期或未命中时回源。
type AdminSessionState struct {
	SessionID uint   `json:"session_id"`
	AdminID   uint   `json:"admin_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
	ExpiresAt int64  `json:"expires_at"`
	Revoked   bool   `json:"revoked"`
	Epoch     int64  `json:"epoch"`
	UpdatedAt int64  `json:"updated_at"`
}

// UserAuthState 用户鉴权快照
// token_invalid_before 为 Unix 秒时间戳，0 表示未设置
type UserAuthState struct {
	UserID             uint   `json:"user_id"`
	Status             string `json:"status"`
	TokenVersion       uint64 `json:"token_version"`
	TokenInvalidBefore int64  `json:"token_invalid_before"`
	UpdatedAt          int64  `json:"updated_at"`
}

func adminSessionStateKey(token string) string {
	// 缓存键只存令牌哈希，避免明文令牌落入 Redis
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("auth:admin_session:%s", hex.EncodeToString(sum[:]))
}

func userAuthStateKey(userID uint) string {
	return fmt.Sprintf("auth:user:%d", userID)
}

func adminSessionEpochKey(adminID uint) string {
	return fmt.Sprintf("auth:admin_epoch:%d", adminID)
}

// AdminSessionEpoch 当前撤销纪元，Redis 未启用或未设置时为 0
func AdminSessionEpoch(ctx context.Context, adminID uint) int64 {
	client := Client()
	if client == nil || adminID == 0 {
		return 0
	}
	val, err := client.Get(ctx, buildKey(adminSessionEpochKey(adminID))).Int64()
	if err != nil {
		return 0
	}
	return val
}

// BumpAdminSessionEpoch 递增撤销纪元
// 批量撤销（改密、禁用、删除）走不了按令牌删除，递增纪元让该管理员的
// 全部会话快照立即失效，下次校验回源数据库。
func BumpAdminSessionEpoch(ctx context.Context, adminID uint) error {
	client := Client()
	if client == nil || adminID == 0 {
		return nil
	}
	key := buildKey(adminSessionEpochKey(adminID))
	if err := client.Incr(ctx, key).Err(); err != nil {
		return err
	}
	return client.Expire(ctx, key, sessionEpochTTL).Err()
}

// BuildAdminSessionState 从会话与管理员模型构建快照
func BuildAdminSessionState(session *models.AdminSession, admin *models.AdminUser) *AdminSessionState {
	if session == nil || admin == nil {
		return nil
	}
	return &AdminSessionState{
		SessionID: session.ID,
		AdminID:   admin.ID,
		Email:     admin.Email,
		Role:      admin.Role,
		IsActive:  admin.IsActive,
		ExpiresAt: session.ExpiresAt.Unix(),
		Revoked:   session.RevokedAt != nil,
		UpdatedAt: time.Now().Unix(),
	}
}

// GetAdminSessionState 获取会话快照
func GetAdminSessionState(ctx context.Context, token string) (*AdminSessionState, bool, error) {
	if token == "" {
		return nil, false, nil
	}
	var state AdminSessionState
	hit, err := GetJSON(ctx, adminSessionStateKey(token), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetAdminSessionState 写入会话快照
func SetAdminSessionState(ctx context.Context, token string, state *AdminSessionState) error {
	if token == "" || state == nil || state.SessionID == 0 {
		return nil
	}
	state.Epoch = AdminSessionEpoch(ctx, state.AdminID)
	return SetJSON(ctx, adminSessionStateKey(token), state, authStateCacheTTL)
}

// DelAdminSessionState 删除会话快照（登出、撤销时调用）
func DelAdminSessionState(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return Del(ctx, adminSessionStateKey(token))
}

// BuildUserAuthState 从用户模型构建鉴权快照
func BuildUserAuthState(user *models.User) *UserAuthState {
	if user == nil {
		return nil
	}
	state := &UserAuthState{
		UserID:       user.ID,
		Status:       user.Status,
		TokenVersion: user.TokenVersion,
		UpdatedAt:    time.Now().Unix(),
	}
	if user.TokenInvalidBefore != nil {
		state.TokenInvalidBefore = user.TokenInvalidBefore.Unix()
	}
	return state
}

// GetUserAuthState 获取用户鉴权快照
func GetUserAuthState(ctx context.Context, userID uint) (*UserAuthState, bool, error) {
	if userID == 0 {
		return nil, false, nil
	}
	var state UserAuthState
	hit, err := GetJSON(ctx, userAuthStateKey(userID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetUserAuthState 写入用户鉴权快照
func SetUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil || state.UserID == 0 {
		return nil
	}
	return SetJSON(ctx, userAuthStateKey(state.UserID), state, authStateCacheTTL)
}

// DelUserAuthState 删除用户鉴权快照
func DelUserAuthState(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, userAuthStateKey(userID))
}

package dto

import "time"

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required,max=128"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	AccessToken  string    `json:"accessToken"`
	ExpiresAtUTC time.Time `json:"expiresAtUtc"`
	Username     string    `json:"username"`
	Role         string    `json:"role"`
}

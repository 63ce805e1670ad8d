package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"student-events/internal/dto"
	"student-events/internal/model"
	"student-events/pkg/jwt"
)

type mockBlacklist struct {
	entries map[string]time.Duration
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.entries[jti] = ttl
	return nil
}

func setupTestAuthService(t *testing.T) (AuthService, *jwt.Manager, *mockBlacklist) {
	t.Helper()
	env := newTestEnv()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}
	_ = env.users.Create(context.Background(), &model.User{
		UserID:       "user-1",
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	})

	jwtMgr := jwt.NewManager(&env.cfg.Auth)
	bl := &mockBlacklist{entries: make(map[string]time.Duration)}
	return NewAuthService(env.repo, jwtMgr, bl, env.logger), jwtMgr, bl
}

func TestAuthService_Login_Success(t *testing.T) {
	svc, jwtMgr, _ := setupTestAuthService(t)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "admin", Password: "correct-password"})
	if err != nil {
		t.Fatalf("Login 失败: %v", err)
	}
	if resp.Username != "admin" || resp.Role != model.RoleAdmin {
		t.Errorf("响应用户信息不正确: %+v", resp)
	}
	if !resp.ExpiresAtUTC.After(time.Now()) {
		t.Errorf("过期时间应在未来，实际 %v", resp.ExpiresAtUTC)
	}

	claims, err := jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("解析 Token 失败: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != model.RoleAdmin {
		t.Errorf("Token 声明不正确: %+v", claims)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "admin", Password: "wrong"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{Username: "ghost", Password: "x"})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Logout_BlacklistsJTI(t *testing.T) {
	svc, jwtMgr, bl := setupTestAuthService(t)

	resp, _ := svc.Login(context.Background(), &dto.LoginRequest{Username: "admin", Password: "correct-password"})
	claims, _ := jwtMgr.ParseToken(resp.AccessToken)

	if err := svc.Logout(context.Background(), claims); err != nil {
		t.Fatalf("Logout 失败: %v", err)
	}
	ttl, ok := bl.entries[claims.ID]
	if !ok {
		t.Fatal("jti 未加入黑名单")
	}
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("黑名单 TTL 应为剩余有效期，实际 %v", ttl)
	}
}

func TestAuthService_Logout_NoBlacklist(t *testing.T) {
	env := newTestEnv()
	svc := NewAuthService(env.repo, jwt.NewManager(&env.cfg.Auth), nil, env.logger)

	if err := svc.Logout(context.Background(), &jwt.Claims{}); err != nil {
		t.Errorf("无黑名单存储时 Logout 应为空操作，实际: %v", err)
	}
}

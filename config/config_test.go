package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Auth:   AuthConfig{JWTSecret: "test-secret-key-for-unit-testing"},
		Sync: SyncConfig{
			Cron:            "@hourly",
			UserPageSize:    50,
			EventPageSize:   100,
			LookbackMonths:  1,
			LookaheadMonths: 3,
			EventWorkers:    1,
		},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("期望校验通过，实际: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	cases := map[string]func(c *Config){
		"空密钥":     func(c *Config) { c.Auth.JWTSecret = "" },
		"密钥过短":    func(c *Config) { c.Auth.JWTSecret = "short" },
		"端口越界":    func(c *Config) { c.Server.Port = 70000 },
		"页大小为0":   func(c *Config) { c.Sync.UserPageSize = 0 },
		"并发数为0":   func(c *Config) { c.Sync.EventWorkers = 0 },
		"回溯月份为负":  func(c *Config) { c.Sync.LookbackMonths = -1 },
		"cron 无效": func(c *Config) { c.Sync.Cron = "every hour" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("期望校验失败")
			}
		})
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
server:
  port: 9090
auth:
  jwt_secret: "file-secret-key-1234567890"
sync:
  cron: "*/30 * * * *"
  event_workers: 4
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("写入配置文件失败: %v", err)
	}
	t.Setenv("STUDENT_EVENTS_SYNC_USER_PAGE_SIZE", "25")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("期望 port=9090，实际=%d", cfg.Server.Port)
	}
	if cfg.Sync.EventWorkers != 4 {
		t.Errorf("期望 event_workers=4，实际=%d", cfg.Sync.EventWorkers)
	}
	if cfg.Sync.UserPageSize != 25 {
		t.Errorf("期望环境变量覆盖 user_page_size=25，实际=%d", cfg.Sync.UserPageSize)
	}
	if cfg.Sync.EventPageSize != 100 {
		t.Errorf("期望默认 event_page_size=100，实际=%d", cfg.Sync.EventPageSize)
	}
	if cfg.Graph.RequestTimeout != 30*time.Second {
		t.Errorf("期望默认 request_timeout=30s，实际=%v", cfg.Graph.RequestTimeout)
	}
}

func TestGraphConfig_TokenEndpoint(t *testing.T) {
	c := &GraphConfig{TenantID: "tenant-1"}
	want := "https://login.microsoftonline.com/tenant-1/oauth2/v2.0/token"
	if got := c.TokenEndpoint(); got != want {
		t.Errorf("期望 %s，实际 %s", want, got)
	}

	c.TokenURL = "http://localhost/token"
	if got := c.TokenEndpoint(); got != "http://localhost/token" {
		t.Errorf("期望使用显式 token_url，实际 %s", got)
	}
}

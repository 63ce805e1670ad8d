package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"student-events/config"
	"student-events/internal/api/handler"
	"student-events/internal/api/middleware"
	"student-events/pkg/jwt"
	"student-events/pkg/redis"
)

const (
	maxBodyBytes    = 1 << 20
	loginRateLimit  = 10
	loginRateWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 可为 nil：此时不做 Token 黑名单校验与登录限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login", middleware.RateLimit(rdb, loginRateLimit, loginRateWindow), h.Auth.Login)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 学生模块
			students := authorized.Group("/students")
			{
				students.GET("", h.Student.ListStudents)
				students.GET("/export", h.Export.ExportStudents)
				students.GET("/:id/events", h.Student.GetStudentEvents)
				students.GET("/:id/calendar.ics", h.Export.ExportStudentCalendar)
			}

			// 事件模块
			authorized.GET("/events", h.Event.ListEvents)

			// 手动同步（异步执行，立即返回 202）
			sync := authorized.Group("/sync", middleware.RoleAuth("admin"))
			{
				sync.POST("/students", h.Sync.SyncStudents)
				sync.POST("/events", h.Sync.SyncEvents)
			}

			// 开发辅助（feature.dev_endpoints 关闭时 404）
			dev := authorized.Group("/dev", middleware.FeatureGate(cfg.Feature.DevEndpoints), middleware.RoleAuth("admin"))
			{
				dev.POST("/seed-sample", h.Dev.SeedSample)
			}
		}
	}

	return r
}

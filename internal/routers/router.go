package routers

import (
	"time"

	"github.com/haierkeys/snapshot-share-service/internal/app"
	"github.com/haierkeys/snapshot-share-service/internal/middleware"
	"github.com/haierkeys/snapshot-share-service/internal/routers/api_router"
	"github.com/haierkeys/snapshot-share-service/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

var methodLimiters = limiter.NewMethodLimiter().AddBuckets(
	limiter.BucketRule{
		Key:          "/api/shares",
		FillInterval: time.Second,
		Capacity:     50,
		Quantum:      50,
	},
	limiter.BucketRule{
		Key:          "/api/s/",
		FillInterval: time.Second,
		Capacity:     100,
		Quantum:      100,
	},
)

// NewRouter assembles the public HTTP router.
// NewRouter 组装公开 HTTP 路由
func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()

	r := gin.New()

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfo())
		api.Use(middleware.TraceMiddleware()) // Trace ID 中间件
		api.Use(middleware.Metrics())
		api.Use(middleware.RateLimiter(methodLimiters))
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
		api.Use(middleware.Cors())
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.AccessLog())
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		// 创建 Handlers（注入 App Container）
		shareHandler := api_router.NewShareHandler(appContainer)
		resolveHandler := api_router.NewResolveHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)
		versionHandler := api_router.NewVersionHandler(appContainer)

		// 公开解析接口（无需认证，持有 ID 即可访问）
		api.GET("/s/:id", resolveHandler.Resolve)
		api.POST("/s/:id/view", resolveHandler.TrackView)

		api.GET("/health", healthHandler.Check)
		api.GET("/version", versionHandler.ServerVersion)

		// 所有者接口
		auth := middleware.OwnerAuthTokenWithConfig(cfg.Security.AuthTokenKey)
		api.Use(auth).POST("/shares", shareHandler.Publish)
		api.Use(auth).GET("/shares", shareHandler.List)
		api.Use(auth).DELETE("/shares/:id", shareHandler.Revoke)
		api.Use(auth).PATCH("/shares/:id", shareHandler.Retouch)
		api.Use(auth).POST("/shares/reconcile", shareHandler.Reconcile)
	}

	r.Use(middleware.Cors())
	r.NoRoute(middleware.NoFound())

	return r
}

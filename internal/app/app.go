// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/haierkeys/snapshot-share-service/internal/dao"
	"github.com/haierkeys/snapshot-share-service/internal/domain"
	"github.com/haierkeys/snapshot-share-service/internal/service"
	pkgapp "github.com/haierkeys/snapshot-share-service/pkg/app"
	"github.com/haierkeys/snapshot-share-service/pkg/storage"
	"github.com/haierkeys/snapshot-share-service/pkg/workerpool"

	"go.uber.org/zap"
)

// currentApp 当前容器实例，配置热重载会替换它
// expvar 回调通过它读取最新的运行指标
var currentApp atomic.Pointer[App]

var expvarOnce sync.Once

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger
	Store  storage.Storager
	Dao    *dao.Dao

	// 并发控制组件
	workerPool *workerpool.Pool

	// Repository 层
	IdMapRepo      domain.IdMapRepository
	OwnerIndexRepo domain.OwnerIndexRepository
	ShareBlobRepo  domain.ShareBlobRepository

	// Service 层
	ShareService service.ShareService

	// 基础设施组件
	TokenManager pkgapp.TokenManager

	// 启动时间，健康检查用
	StartTime time.Time

	// 关闭控制
	shutdownCh chan struct{}
	wg         sync.WaitGroup
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
func NewApp(cfg *AppConfig, logger *zap.Logger) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		StartTime:  time.Now(),
		shutdownCh: make(chan struct{}),
	}

	// 初始化快照存储客户端
	store, err := storage.NewClient(&cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("init storage client: %w", err)
	}
	a.Store = store

	// 初始化 Worker Pool
	wpConfig := cfg.GetWorkerPoolConfig()
	a.workerPool = workerpool.New(&wpConfig, logger)

	// 初始化 DAO（使用依赖注入）
	a.Dao = dao.New(store, logger)

	// 初始化 TokenManager
	a.TokenManager = pkgapp.NewTokenManager(pkgapp.TokenConfig{
		SecretKey: cfg.Security.AuthTokenKey,
		Expiry:    cfg.GetTokenExpiry(),
	})

	// 初始化 Repository 层
	a.IdMapRepo = dao.NewIdMapRepository(a.Dao)
	a.OwnerIndexRepo = dao.NewOwnerIndexRepository(a.Dao)
	a.ShareBlobRepo = dao.NewShareBlobRepository(a.Dao)

	// 创建 ServiceConfig（从 AppConfig 提取 Service 层需要的配置）
	svcConfig := &service.ServiceConfig{
		Share: service.ShareServiceConfig{
			MaxBlobSize:     int(cfg.GetShareMaxBlobSize()),
			DefaultExpiry:   cfg.App.ShareDefaultExpiry,
			IDLength:        cfg.App.ShareIdLength,
			OwnerBucketSalt: cfg.Security.OwnerBucketSalt,
		},
	}

	// 初始化 Service 层（依赖注入）
	a.ShareService = service.NewShareService(a.IdMapRepo, a.OwnerIndexRepo, a.ShareBlobRepo, a.workerPool, logger, svcConfig)

	// 在 /debug/vars 暴露 Worker Pool 运行指标
	currentApp.Store(a)
	expvarOnce.Do(func() {
		expvar.Publish("workerpool", expvar.Func(func() any {
			if cur := currentApp.Load(); cur != nil {
				return cur.workerPool.GetMetrics()
			}
			return nil
		}))
	})

	logger.Info("App container initialized successfully",
		zap.String("storageType", cfg.Storage.Type),
		zap.Int("workerPoolMaxWorkers", wpConfig.MaxWorkers))

	return a, nil
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// StoragePing 探测快照存储可达性
// 对不存在对象的 Head 请求成功返回也算可达
func (a *App) StoragePing(ctx context.Context) error {
	_, err := a.Store.Head(ctx, dao.IdMapKey("_health"))
	return err
}

// SubmitAsyncTask 异步提交后台任务到 Worker Pool，不等待结果
// 任务计入后台操作，优雅关闭时会等待其完成
func (a *App) SubmitAsyncTask(ctx context.Context, task func(context.Context) error) error {
	finish := a.TrackOperation()
	err := a.workerPool.SubmitAsync(ctx, func(taskCtx context.Context) error {
		defer finish()
		return task(taskCtx)
	})
	if err != nil {
		finish()
	}
	return err
}

// WorkerPool 获取 Worker Pool（用于高级操作）
func (a *App) WorkerPool() *workerpool.Pool {
	return a.workerPool
}

// GetAuthTokenKey 获取 Token 密钥
func (a *App) GetAuthTokenKey() string {
	return a.config.Security.AuthTokenKey
}

// IsProductionMode 是否为生产模式
// 根据日志配置中的 Production 字段判断
func (a *App) IsProductionMode() bool {
	return a.config.Log.Production
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器
// 先停止 Worker Pool，再等待后台操作完成
// ctx 用于控制关闭超时，如果为 nil 则使用默认 30 秒超时
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("App container shutting down...")

	// 如果没有提供 context，使用默认超时
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	// 标记关闭
	select {
	case <-a.shutdownCh:
		// 已经关闭
		return nil
	default:
		close(a.shutdownCh)
	}

	var errs []error

	// 1. 关闭 Worker Pool（停止接受新任务，等待现有任务完成）
	if a.workerPool != nil {
		a.logger.Info("Shutting down worker pool...")
		if err := a.workerPool.Shutdown(ctx); err != nil {
			a.logger.Warn("Worker pool shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("worker pool shutdown: %w", err))
		} else {
			a.logger.Info("Worker pool shutdown completed")
		}
	}

	// 2. 等待所有后台操作完成
	done := make(chan struct{})
	go func() {
		a.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		a.logger.Info("All background operations completed")
	case <-ctx.Done():
		a.logger.Warn("Shutdown timeout waiting for background operations")
		errs = append(errs, fmt.Errorf("background operations timeout: %w", ctx.Err()))
	}

	if len(errs) > 0 {
		a.logger.Warn("App container shutdown completed with errors",
			zap.Int("errorCount", len(errs)))
		return fmt.Errorf("shutdown completed with %d errors: %v", len(errs), errs)
	}

	a.logger.Info("App container shutdown completed successfully")
	return nil
}

// IsShuttingDown 检查应用是否正在关闭
func (a *App) IsShuttingDown() bool {
	select {
	case <-a.shutdownCh:
		return true
	default:
		return false
	}
}

// ShutdownCh 返回关闭信号通道（用于监听关闭事件）
func (a *App) ShutdownCh() <-chan struct{} {
	return a.shutdownCh
}

// TrackOperation 跟踪后台操作（用于优雅关闭时等待）
// 返回一个函数，在操作完成时调用
func (a *App) TrackOperation() func() {
	a.wg.Add(1)
	return func() {
		a.wg.Done()
	}
}

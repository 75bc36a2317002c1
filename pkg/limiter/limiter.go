// Package limiter 基于令牌桶的接口限流
package limiter

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juju/ratelimit"
)

// Face 限流器统一接口
type Face interface {
	// Key 从请求中提取限流维度
	Key(c *gin.Context) string
	// GetBucket 按 key 取令牌桶
	GetBucket(key string) (*ratelimit.Bucket, bool)
	// AddBuckets 注册限流规则
	AddBuckets(rules ...BucketRule) Face
}

// BucketRule 单条限流规则
type BucketRule struct {
	// Key 匹配的 URI 前缀
	Key string
	// FillInterval 令牌放入间隔
	FillInterval time.Duration
	// Capacity 桶容量
	Capacity int64
	// Quantum 每次放入的令牌数
	Quantum int64
}

// Limiter 规则容器
type Limiter struct {
	limiterBuckets map[string]*ratelimit.Bucket
}

// Package service implements the business logic layer
// Package service 实现业务逻辑层
package service

// ServiceConfig service layer configuration
// ServiceConfig 服务层配置
type ServiceConfig struct {
	Share ShareServiceConfig // Share related config // 分享相关配置
}

// ShareServiceConfig share service configuration
// ShareServiceConfig 分享服务配置
type ShareServiceConfig struct {
	MaxBlobSize     int    // Encoded blob size cap in bytes, default 500KB // 内容对象编码后大小上限（字节），默认 500KB
	DefaultExpiry   string // Default share expiry (e.g., 30d, 24h, empty for never) // 默认过期时间（支持格式：30d、24h，空表示永不过期）
	IDLength        int    // Public share id length // 公开分享 ID 长度
	OwnerBucketSalt string // Salt for owner bucket hashing // 所有者桶哈希盐值
}

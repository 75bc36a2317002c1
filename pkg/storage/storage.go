// Package storage 统一对象存储接入层
// 本服务的全部持久状态都存放在这里抽象的对象存储中
package storage

import (
	"context"
	"io/fs"
	"net/url"
	"strings"

	"github.com/haierkeys/snapshot-share-service/pkg/code"
	"github.com/haierkeys/snapshot-share-service/pkg/storage/aliyun_oss"
	"github.com/haierkeys/snapshot-share-service/pkg/storage/aws_s3"
	"github.com/haierkeys/snapshot-share-service/pkg/storage/cloudflare_r2"
	"github.com/haierkeys/snapshot-share-service/pkg/storage/local_fs"
	"github.com/haierkeys/snapshot-share-service/pkg/storage/memory"
	"github.com/haierkeys/snapshot-share-service/pkg/storage/minio"
	"github.com/haierkeys/snapshot-share-service/pkg/storage/webdav"
)

type Type = string
type CloudType = Type

const OSS CloudType = "oss"
const R2 CloudType = "r2"
const S3 CloudType = "s3"
const LOCAL Type = "localfs"
const MinIO CloudType = "minio"
const WebDAV CloudType = "webdav"
const Memory Type = "memory"

var StorageTypeMap = map[Type]bool{
	OSS:    true,
	R2:     true,
	S3:     true,
	LOCAL:  true,
	MinIO:  true,
	WebDAV: true,
	Memory: true,
}

var CloudStorageTypeMap = map[Type]bool{
	OSS:   true,
	R2:    true,
	S3:    true,
	MinIO: true,
}

// ErrObjectNotExist 对象不存在
// 各后端将 SDK 自身的 not-found 错误归一化为该哨兵
var ErrObjectNotExist = fs.ErrNotExist

// Config Unified storage configuration
// Config 统一存储配置
type Config struct {
	Type Type `yaml:"type" default:"localfs"`

	// Common settings
	CustomPath string `yaml:"custom-path"`

	// Cloud Storage (S3/OSS/MinIO/R2)
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	BucketName      string `yaml:"bucket-name"`
	AccessKeyID     string `yaml:"access-key-id"`
	AccessKeySecret string `yaml:"access-key-secret"`
	AccountID       string `yaml:"account-id"` // Cloudflare R2 specific

	// WebDAV
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Path     string `yaml:"path"`

	// Local FS
	SavePath string `yaml:"save-path" default:"storage/shares"`
}

// Storager 后端无关的对象存储操作集合
// 所有实现都只承诺最终一致，调用方不得依赖跨对象的原子性
type Storager interface {
	// PutContent 整体覆盖写入对象，返回实际存储 key
	PutContent(ctx context.Context, pathKey string, content []byte, cType string) (string, error)
	// GetContent 读取对象全部内容，不存在时返回 ErrObjectNotExist
	GetContent(ctx context.Context, pathKey string) ([]byte, error)
	// Head 探测对象是否存在，不存在不视为错误
	Head(ctx context.Context, pathKey string) (bool, error)
	// Delete 删除对象，对象不存在时也返回 nil
	Delete(ctx context.Context, pathKey string) error
	// List 按前缀列举对象 key
	List(ctx context.Context, prefix string) ([]string, error)
}

// NormalizeKey 归一化对象 key
// 允许传入相对 key 或带主机的完整 URL，统一为去掉前导斜杠的路径
func NormalizeKey(pathKey string) string {
	if strings.Contains(pathKey, "://") {
		if u, err := url.Parse(pathKey); err == nil {
			pathKey = u.Path
		}
	}
	return strings.TrimPrefix(pathKey, "/")
}

// NewClient 按配置创建对应后端的存储客户端
func NewClient(config *Config) (Storager, error) {
	if config == nil {
		return nil, code.ErrorInvalidStorageType
	}

	switch config.Type {
	case LOCAL:
		cfg := &local_fs.Config{
			SavePath:   config.SavePath,
			CustomPath: config.CustomPath,
		}
		return local_fs.NewClient(cfg)
	case OSS:
		cfg := &aliyun_oss.Config{
			Endpoint:        config.Endpoint,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		}
		return aliyun_oss.NewClient(cfg)
	case R2:
		cfg := &cloudflare_r2.Config{
			AccountID:       config.AccountID,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		}
		return cloudflare_r2.NewClient(cfg)
	case S3:
		cfg := &aws_s3.Config{
			Region:          config.Region,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		}
		return aws_s3.NewClient(cfg)
	case MinIO:
		cfg := &minio.Config{
			Endpoint:        config.Endpoint,
			Region:          config.Region,
			BucketName:      config.BucketName,
			AccessKeyID:     config.AccessKeyID,
			AccessKeySecret: config.AccessKeySecret,
			CustomPath:      config.CustomPath,
		}
		return minio.NewClient(cfg)
	case WebDAV:
		cfg := &webdav.Config{
			Endpoint:   config.Endpoint,
			Path:       config.Path,
			User:       config.User,
			Password:   config.Password,
			CustomPath: config.CustomPath,
		}
		return webdav.NewClient(cfg)
	case Memory:
		return memory.NewClient(), nil
	}
	return nil, code.ErrorInvalidStorageType
}

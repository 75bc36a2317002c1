package domain

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrEntryConflict 公开 ID 已存在
	ErrEntryConflict = errors.New("id map entry already exists")
	// ErrEntryNotFound 公开 ID 不存在
	ErrEntryNotFound = errors.New("id map entry not found")
)

// IdMapRepository 全局 ID 映射仓储接口
type IdMapRepository interface {
	// Create 创建映射条目，ID 已存在时返回 ErrEntryConflict
	// 底层存储不提供 CAS，并发创建同一 ID 时以后写为准
	Create(ctx context.Context, id string, entry *IdMapEntry) error

	// Lookup 读取映射条目，不存在时返回 ErrEntryNotFound
	// 纯读操作，按存储内容原样返回，包括 revoked 状态
	Lookup(ctx context.Context, id string) (*IdMapEntry, error)

	// Revoke 将条目置为 revoked，幂等
	// 条目不存在时静默成功，且绝不凭空创建条目
	Revoke(ctx context.Context, id string) error
}

// OwnerIndexRepository 所有者索引仓储接口
// 整对象读改写，同一所有者的并发写入可能互相覆盖
type OwnerIndexRepository interface {
	// Load 加载所有者索引，不存在时返回空索引而非错误
	Load(ctx context.Context, ownerBucket string) (*OwnerIndex, error)

	// Save 整对象覆盖保存
	Save(ctx context.Context, ownerBucket string, index *OwnerIndex) error

	// Append 追加一条记录
	Append(ctx context.Context, ownerBucket string, record *ShareRecord) error

	// UpdateStatus 更新某条记录的状态
	UpdateStatus(ctx context.Context, ownerBucket string, id string, status ShareStatus) error

	// UpdateViewStats 增加访问计数并刷新最后访问时间
	UpdateViewStats(ctx context.Context, ownerBucket string, id string, viewCountIncr int64, lastAccessAt time.Time) error
}

// ShareBlobRepository 内容对象仓储接口
type ShareBlobRepository interface {
	// Put 编码并写入内容信封，返回实际存储 key
	Put(ctx context.Context, blobKey string, blob *ShareBlob) (string, error)

	// PutRaw 写入已编码的内容，发布路径用它避免二次编码
	PutRaw(ctx context.Context, blobKey string, content []byte) (string, error)

	// Get 读取并解码内容信封，不存在时返回 ErrObjectNotExist 哨兵
	Get(ctx context.Context, blobKey string) (*ShareBlob, error)

	// Head 探测内容对象是否存在
	Head(ctx context.Context, blobKey string) (bool, error)
}

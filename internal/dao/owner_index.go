package dao

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/haierkeys/snapshot-share-service/internal/domain"
	"github.com/haierkeys/snapshot-share-service/pkg/logger"
	"github.com/haierkeys/snapshot-share-service/pkg/storage"
)

// ownerIndexRepository 所有者索引仓储实现
// 所有变更是整对象读改写，同一所有者的并发写入可能互相覆盖；
// 丢失的增量由列表读修复兜底，属于已接受的限制
type ownerIndexRepository struct {
	*Dao
}

// NewOwnerIndexRepository 创建所有者索引仓储
func NewOwnerIndexRepository(d *Dao) domain.OwnerIndexRepository {
	return &ownerIndexRepository{Dao: d}
}

// Load 加载所有者索引，对象不存在时返回空索引
func (r *ownerIndexRepository) Load(ctx context.Context, ownerBucket string) (*domain.OwnerIndex, error) {
	content, err := r.store.GetContent(ctx, OwnerIndexKey(ownerBucket))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return &domain.OwnerIndex{}, nil
		}
		return nil, errors.Wrap(err, "owner index get")
	}

	var index domain.OwnerIndex
	if err := sonic.Unmarshal(content, &index); err != nil {
		// 索引损坏时按空索引处理并告警，索引只是投影，可重建
		r.logger.Error("owner index corrupt, treating as empty",
			zap.String(logger.FieldOwnerBucket, ownerBucket), zap.Error(err))
		return &domain.OwnerIndex{}, nil
	}
	return &index, nil
}

// Save 整对象覆盖保存
func (r *ownerIndexRepository) Save(ctx context.Context, ownerBucket string, index *domain.OwnerIndex) error {
	content, err := sonic.Marshal(index)
	if err != nil {
		return errors.Wrap(err, "owner index marshal")
	}
	if _, err := r.store.PutContent(ctx, OwnerIndexKey(ownerBucket), content, jsonContentType); err != nil {
		return errors.Wrap(err, "owner index put")
	}
	return nil
}

// Append 追加一条记录
func (r *ownerIndexRepository) Append(ctx context.Context, ownerBucket string, record *domain.ShareRecord) error {
	index, err := r.Load(ctx, ownerBucket)
	if err != nil {
		return err
	}
	index.Items = append(index.Items, record)
	return r.Save(ctx, ownerBucket, index)
}

// UpdateStatus 更新某条记录的状态，记录不存在时静默成功
func (r *ownerIndexRepository) UpdateStatus(ctx context.Context, ownerBucket string, id string, status domain.ShareStatus) error {
	index, err := r.Load(ctx, ownerBucket)
	if err != nil {
		return err
	}

	record := index.Find(id)
	if record == nil {
		r.logger.Warn("owner index record missing on status update",
			zap.String(logger.FieldOwnerBucket, ownerBucket), zap.String(logger.FieldShareID, id))
		return nil
	}
	record.Status = status
	record.UpdatedAt = time.Now()

	return r.Save(ctx, ownerBucket, index)
}

// UpdateViewStats 增加访问计数并刷新最后访问时间
// 读改写无保护，并发访问下计数有损但不回退
func (r *ownerIndexRepository) UpdateViewStats(ctx context.Context, ownerBucket string, id string, viewCountIncr int64, lastAccessAt time.Time) error {
	index, err := r.Load(ctx, ownerBucket)
	if err != nil {
		return err
	}

	record := index.Find(id)
	if record == nil {
		return nil
	}
	record.ViewCount += viewCountIncr
	record.LastAccessAt = &lastAccessAt

	return r.Save(ctx, ownerBucket, index)
}

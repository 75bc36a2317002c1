package dao

import (
	"context"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/haierkeys/snapshot-share-service/internal/domain"
	"github.com/haierkeys/snapshot-share-service/pkg/logger"
	"github.com/haierkeys/snapshot-share-service/pkg/storage"
)

// idMapRepository 全局 ID 映射仓储实现
type idMapRepository struct {
	*Dao
}

// NewIdMapRepository 创建全局 ID 映射仓储
func NewIdMapRepository(d *Dao) domain.IdMapRepository {
	return &idMapRepository{Dao: d}
}

// Create 创建映射条目
// 先 Head 探测再写入。底层没有 CAS，探测与写入之间的并发窗口内
// 同一 ID 的两次创建以后写为准，依赖 ID 熵值让碰撞停留在理论层面
func (r *idMapRepository) Create(ctx context.Context, id string, entry *domain.IdMapEntry) error {
	pathKey := IdMapKey(id)

	exist, err := r.store.Head(ctx, pathKey)
	if err != nil {
		return errors.Wrap(err, "idmap head")
	}
	if exist {
		return domain.ErrEntryConflict
	}

	content, err := sonic.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "idmap marshal")
	}
	if _, err := r.store.PutContent(ctx, pathKey, content, jsonContentType); err != nil {
		return errors.Wrap(err, "idmap put")
	}
	return nil
}

// Lookup 读取映射条目，按存储内容原样返回
func (r *idMapRepository) Lookup(ctx context.Context, id string) (*domain.IdMapEntry, error) {
	content, err := r.store.GetContent(ctx, IdMapKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, errors.Wrap(err, "idmap get")
	}

	var entry domain.IdMapEntry
	if err := sonic.Unmarshal(content, &entry); err != nil {
		return nil, errors.Wrap(err, "idmap unmarshal")
	}
	return &entry, nil
}

// Revoke 将条目置为 revoked
// 幂等：条目不存在或已撤销时直接成功，绝不凭空创建条目
func (r *idMapRepository) Revoke(ctx context.Context, id string) error {
	entry, err := r.Lookup(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrEntryNotFound) {
			return nil
		}
		return err
	}
	if entry.Status == domain.ShareStatusRevoked {
		return nil
	}

	entry.Status = domain.ShareStatusRevoked
	content, err := sonic.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, "idmap marshal")
	}
	if _, err := r.store.PutContent(ctx, IdMapKey(id), content, jsonContentType); err != nil {
		return errors.Wrap(err, "idmap put")
	}

	r.logger.Info("id map entry revoked", zap.String(logger.FieldShareID, id))
	return nil
}

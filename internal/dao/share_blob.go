package dao

import (
	"context"

	"github.com/pkg/errors"

	"github.com/haierkeys/snapshot-share-service/internal/domain"
	"github.com/haierkeys/snapshot-share-service/pkg/storage"
)

// shareBlobRepository 内容对象仓储实现
// 内容对象写入一次后不再修改，撤销只改映射状态，从不动内容
type shareBlobRepository struct {
	*Dao
}

// NewShareBlobRepository 创建内容对象仓储
func NewShareBlobRepository(d *Dao) domain.ShareBlobRepository {
	return &shareBlobRepository{Dao: d}
}

// Put 编码并写入内容信封
func (r *shareBlobRepository) Put(ctx context.Context, blobKey string, blob *domain.ShareBlob) (string, error) {
	content, err := domain.EncodeShareBlob(blob, 0)
	if err != nil {
		return "", err
	}
	return r.PutRaw(ctx, blobKey, content)
}

// PutRaw 写入已编码的内容
func (r *shareBlobRepository) PutRaw(ctx context.Context, blobKey string, content []byte) (string, error) {
	key, err := r.store.PutContent(ctx, storage.NormalizeKey(blobKey), content, jsonContentType)
	if err != nil {
		return "", errors.Wrap(err, "share blob put")
	}
	return key, nil
}

// Get 读取并解码内容信封
// blobKey 按存储内容原样使用，取回失败说明存储层真的有问题，不做任何 key 修补
func (r *shareBlobRepository) Get(ctx context.Context, blobKey string) (*domain.ShareBlob, error) {
	content, err := r.store.GetContent(ctx, storage.NormalizeKey(blobKey))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, storage.ErrObjectNotExist
		}
		return nil, errors.Wrap(err, "share blob get")
	}
	return domain.DecodeShareBlob(content)
}

// Head 探测内容对象是否存在
func (r *shareBlobRepository) Head(ctx context.Context, blobKey string) (bool, error) {
	exist, err := r.store.Head(ctx, storage.NormalizeKey(blobKey))
	if err != nil {
		return false, errors.Wrap(err, "share blob head")
	}
	return exist, nil
}

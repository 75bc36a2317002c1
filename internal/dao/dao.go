// Package dao 基于对象存储的数据访问层
// 全局 ID 映射、所有者索引、内容对象各自独立读写，不提供跨对象原子性
package dao

import (
	"go.uber.org/zap"

	"github.com/haierkeys/snapshot-share-service/pkg/storage"
)

const (
	shareKeyPrefix = "shares/"
	idMapKeyPrefix = "shares/_idmap/"
	indexFileName  = "_index.json"

	jsonContentType = "application/json"
)

type Dao struct {
	store  storage.Storager
	logger *zap.Logger
}

func New(store storage.Storager, logger *zap.Logger) *Dao {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dao{
		store:  store,
		logger: logger,
	}
}

// IdMapKey 全局 ID 映射对象 key: shares/_idmap/{id}.json
func IdMapKey(id string) string {
	return idMapKeyPrefix + id + ".json"
}

// ShareBlobKey 内容对象 key: shares/{ownerBucket}/{id}.json
// blobKey 由所有者桶和 ID 确定性拼出，公开解析永远不需要查所有者索引
func ShareBlobKey(ownerBucket, id string) string {
	return shareKeyPrefix + ownerBucket + "/" + id + ".json"
}

// OwnerIndexKey 所有者索引对象 key: shares/{ownerBucket}/_index.json
func OwnerIndexKey(ownerBucket string) string {
	return shareKeyPrefix + ownerBucket + "/" + indexFileName
}

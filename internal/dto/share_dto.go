package dto

import (
	"encoding/json"

	"github.com/haierkeys/snapshot-share-service/internal/domain"
	"github.com/haierkeys/snapshot-share-service/pkg/timex"
)

// SnapshotPayload 发布请求中的快照载荷
type SnapshotPayload struct {
	Type          string          `json:"type" binding:"required,share_kind"` // 快照类型: quote / timeline / combined
	SchemaVersion int             `json:"schemaVersion" binding:"required,min=1"`
	Quote         json.RawMessage `json:"quote,omitempty"`    // quote/combined 载荷
	Timeline      json.RawMessage `json:"timeline,omitempty"` // timeline/combined 载荷
}

// SharePublishRequest 发布分享请求
type SharePublishRequest struct {
	Snapshot  SnapshotPayload `json:"snapshot" binding:"required"`
	Title     string          `json:"title" binding:"omitempty,max=200"` // 自定义标题
	TaskID    string          `json:"taskId" binding:"omitempty,max=64"` // 来源任务 ID
	ExpiresAt *timex.Time     `json:"expiresAt"`                         // 过期时间，空则用服务端默认值
}

// SharePublishResponse 发布分享响应
type SharePublishResponse struct {
	ID        string      `json:"id"`
	BlobKey   string      `json:"blobKey"`
	ExpiresAt *timex.Time `json:"expiresAt,omitempty"`
	CreatedAt timex.Time  `json:"createdAt"`
}

// ShareResolveResponse 公开解析响应，即存储信封的原样投影
type ShareResolveResponse struct {
	Meta ShareBlobMeta   `json:"meta"`
	Data SnapshotPayload `json:"data"`
}

// ShareBlobMeta 解析响应中的信封元信息
type ShareBlobMeta struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	CreatedAt timex.Time  `json:"createdAt"`
	UpdatedAt timex.Time  `json:"updatedAt"`
	ExpiresAt *timex.Time `json:"expiresAt,omitempty"`
}

// ShareRecordResponse 所有者列表中的一条分享记录
type ShareRecordResponse struct {
	ID           string      `json:"id"`
	Type         string      `json:"type"`
	Title        string      `json:"title,omitempty"`
	TaskID       string      `json:"taskId,omitempty"`
	Status       string      `json:"status"`
	BlobKey      string      `json:"blobKey"`
	ViewCount    int64       `json:"viewCount"`
	CreatedAt    timex.Time  `json:"createdAt"`
	UpdatedAt    timex.Time  `json:"updatedAt"`
	ExpiresAt    *timex.Time `json:"expiresAt,omitempty"`
	LastAccessAt *timex.Time `json:"lastAccessAt,omitempty"`
}

// ShareRevokeResponse 撤销响应
type ShareRevokeResponse struct {
	ID string `json:"id"`
	OK bool   `json:"ok"`
}

// ShareTrackViewResponse 访问计数响应，总是成功形态
type ShareTrackViewResponse struct {
	OK bool `json:"ok"`
}

// ShareRetouchRequest 修改分享标题请求
type ShareRetouchRequest struct {
	Title string `json:"title" binding:"required,max=200"`
}

// ShareReconcileResponse 索引对账响应
type ShareReconcileResponse struct {
	Checked  int `json:"checked"`  // 对账的 active 记录数
	Repaired int `json:"repaired"` // 状态被修正并持久化的记录数
}

// NewShareRecordResponse 由领域模型构建响应，状态按当前时刻计算
func NewShareRecordResponse(record *domain.ShareRecord, status domain.ShareStatus) *ShareRecordResponse {
	out := &ShareRecordResponse{
		ID:        record.ID,
		Type:      string(record.Type),
		Title:     record.Title,
		TaskID:    record.TaskID,
		Status:    string(status),
		BlobKey:   record.BlobKey,
		ViewCount: record.ViewCount,
		CreatedAt: timex.Time(record.CreatedAt),
		UpdatedAt: timex.Time(record.UpdatedAt),
	}
	if record.ExpiresAt != nil {
		exp := timex.Time(*record.ExpiresAt)
		out.ExpiresAt = &exp
	}
	if record.LastAccessAt != nil {
		last := timex.Time(*record.LastAccessAt)
		out.LastAccessAt = &last
	}
	return out
}

// NewShareResolveResponse 由存储信封构建公开解析响应
func NewShareResolveResponse(blob *domain.ShareBlob) *ShareResolveResponse {
	out := &ShareResolveResponse{
		Meta: ShareBlobMeta{
			ID:        blob.Meta.ID,
			Type:      string(blob.Meta.Type),
			CreatedAt: timex.Time(blob.Meta.CreatedAt),
			UpdatedAt: timex.Time(blob.Meta.UpdatedAt),
		},
		Data: SnapshotPayload{
			Type:          string(blob.Data.Type),
			SchemaVersion: blob.Data.SchemaVersion,
			Quote:         blob.Data.Quote,
			Timeline:      blob.Data.Timeline,
		},
	}
	if blob.Meta.ExpiresAt != nil {
		exp := timex.Time(*blob.Meta.ExpiresAt)
		out.Meta.ExpiresAt = &exp
	}
	return out
}

// Package domain 定义领域模型和接口
package domain

import (
	"time"
)

// ShareType 定义分享快照类型
type ShareType string

const (
	ShareTypeQuote    ShareType = "quote"
	ShareTypeTimeline ShareType = "timeline"
	ShareTypeCombined ShareType = "combined"
)

// IsValid 判断是否为已知快照类型
func (t ShareType) IsValid() bool {
	switch t {
	case ShareTypeQuote, ShareTypeTimeline, ShareTypeCombined:
		return true
	}
	return false
}

// ShareStatus 定义分享状态
// expired 仅在读取时根据 expiresAt 计算，持久化状态只有 active/revoked
type ShareStatus string

const (
	ShareStatusActive  ShareStatus = "active"
	ShareStatusRevoked ShareStatus = "revoked"
	ShareStatusExpired ShareStatus = "expired"
)

// ShareRecord 分享记录领域模型（所有者视角）
type ShareRecord struct {
	ID           string      `json:"id"`               // 公开短 ID，创建后不可变
	Type         ShareType   `json:"type"`             // 快照类型
	Title        string      `json:"title,omitempty"`  // 所有者自定义标题
	TaskID       string      `json:"taskId,omitempty"` // 来源任务回链，仅所有者界面使用
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	ExpiresAt    *time.Time  `json:"expiresAt,omitempty"` // nil 表示永不过期
	Status       ShareStatus `json:"status"`
	BlobKey      string      `json:"blobKey"`                // 内容对象物理位置，创建后不可变
	ViewCount    int64       `json:"viewCount"`              // 访问计数，单调不减但有损
	LastAccessAt *time.Time  `json:"lastAccessAt,omitempty"` // 最后一次成功解析时间
}

// EffectiveStatus 计算给定时刻的有效状态
// 已撤销优先于过期，过期从不回写存储
func (r *ShareRecord) EffectiveStatus(now time.Time) ShareStatus {
	if r.Status == ShareStatusRevoked {
		return ShareStatusRevoked
	}
	if r.ExpiresAt != nil && !r.ExpiresAt.IsZero() && r.ExpiresAt.Before(now) {
		return ShareStatusExpired
	}
	return r.Status
}

// IdMapEntry 全局 ID 映射条目，公开解析的唯一权威依据
// OwnerBucket 显式携带所有者桶，避免从 blobKey 的路径约定反推
type IdMapEntry struct {
	BlobKey     string      `json:"blobKey"`
	Status      ShareStatus `json:"status"`
	ExpiresAt   *time.Time  `json:"expiresAt,omitempty"`
	OwnerBucket string      `json:"ownerBucket,omitempty"`
}

// Visible 判断条目在给定时刻是否可被公开解析
func (e *IdMapEntry) Visible(now time.Time) bool {
	if e.Status != ShareStatusActive {
		return false
	}
	if e.ExpiresAt != nil && !e.ExpiresAt.IsZero() && e.ExpiresAt.Before(now) {
		return false
	}
	return true
}

// OwnerIndex 单个所有者的全部分享记录
// 只是面向展示的非权威投影，读取方必须按需与全局映射比对
type OwnerIndex struct {
	Items []*ShareRecord `json:"items"`
}

// Find 按 ID 查找记录
func (idx *OwnerIndex) Find(id string) *ShareRecord {
	for _, item := range idx.Items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

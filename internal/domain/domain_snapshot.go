package domain

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// DefaultMaxBlobSize 单个内容对象编码后的默认大小上限
const DefaultMaxBlobSize = 500 * 1024

var (
	ErrSnapshotInvalid = errors.New("snapshot does not match its declared type")
	ErrBlobCorrupt     = errors.New("share blob failed schema validation")
	ErrBlobTooLarge    = errors.New("encoded share blob exceeds size cap")
)

// Snapshot 按类型区分的快照载荷
// 每种载荷携带独立的 schemaVersion，新增类型只加变体，不放宽既有变体
type Snapshot struct {
	Type          ShareType       `json:"type"`
	SchemaVersion int             `json:"schemaVersion"`
	Quote         json.RawMessage `json:"quote,omitempty"`
	Timeline      json.RawMessage `json:"timeline,omitempty"`
}

// Validate 校验快照结构与其声明类型一致
func (s *Snapshot) Validate() error {
	if !s.Type.IsValid() {
		return errors.Wrapf(ErrSnapshotInvalid, "unknown type %q", s.Type)
	}
	if s.SchemaVersion <= 0 {
		return errors.Wrap(ErrSnapshotInvalid, "schemaVersion must be positive")
	}

	hasQuote := len(s.Quote) > 0 && string(s.Quote) != "null"
	hasTimeline := len(s.Timeline) > 0 && string(s.Timeline) != "null"

	switch s.Type {
	case ShareTypeQuote:
		if !hasQuote {
			return errors.Wrap(ErrSnapshotInvalid, "quote payload missing")
		}
		if hasTimeline {
			return errors.Wrap(ErrSnapshotInvalid, "quote snapshot must not carry timeline payload")
		}
	case ShareTypeTimeline:
		if !hasTimeline {
			return errors.Wrap(ErrSnapshotInvalid, "timeline payload missing")
		}
		if hasQuote {
			return errors.Wrap(ErrSnapshotInvalid, "timeline snapshot must not carry quote payload")
		}
	case ShareTypeCombined:
		if !hasQuote || !hasTimeline {
			return errors.Wrap(ErrSnapshotInvalid, "combined snapshot requires quote and timeline payloads")
		}
	}
	return nil
}

// BlobMeta 内容信封元信息
type BlobMeta struct {
	ID        string     `json:"id"`
	Type      ShareType  `json:"type"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// ShareBlob 存储中的内容信封，发布后一经写入不再修改
type ShareBlob struct {
	Meta BlobMeta `json:"meta"`
	Data Snapshot `json:"data"`
}

// Validate 校验信封结构完整性
func (b *ShareBlob) Validate() error {
	if b.Meta.ID == "" {
		return errors.Wrap(ErrBlobCorrupt, "meta.id missing")
	}
	if b.Meta.Type != b.Data.Type {
		return errors.Wrapf(ErrBlobCorrupt, "meta.type %q does not match data.type %q", b.Meta.Type, b.Data.Type)
	}
	if err := b.Data.Validate(); err != nil {
		return errors.Wrap(ErrBlobCorrupt, err.Error())
	}
	return nil
}

// EffectiveExpiry 计算有效过期时间，信封元信息优先于映射条目
func (b *ShareBlob) EffectiveExpiry(entry *IdMapEntry) *time.Time {
	if b.Meta.ExpiresAt != nil && !b.Meta.ExpiresAt.IsZero() {
		return b.Meta.ExpiresAt
	}
	if entry != nil {
		return entry.ExpiresAt
	}
	return nil
}

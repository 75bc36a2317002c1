package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/haierkeys/snapshot-share-service/internal/dao"
	"github.com/haierkeys/snapshot-share-service/internal/domain"
	"github.com/haierkeys/snapshot-share-service/internal/dto"
	"github.com/haierkeys/snapshot-share-service/pkg/code"
	"github.com/haierkeys/snapshot-share-service/pkg/logger"
	"github.com/haierkeys/snapshot-share-service/pkg/storage"
	"github.com/haierkeys/snapshot-share-service/pkg/timex"
	"github.com/haierkeys/snapshot-share-service/pkg/util"
	"github.com/haierkeys/snapshot-share-service/pkg/workerpool"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ShareService defines the share business service interface
// ShareService 定义分享业务服务接口
type ShareService interface {
	// Publish stores a snapshot and makes it resolvable under a new public id
	// Publish 存储快照并以新的公开 ID 对外发布
	Publish(ctx context.Context, ownerID string, req *dto.SharePublishRequest) (*dto.SharePublishResponse, error)

	// Resolve resolves a public id to its stored snapshot envelope
	// Resolve 将公开 ID 解析为存储的快照信封
	Resolve(ctx context.Context, id string) (*dto.ShareResolveResponse, error)

	// List returns the owner's shares, re-verified against the global id map
	// List 返回所有者的分享列表，逐条与全局映射比对后输出
	List(ctx context.Context, ownerID string) ([]*dto.ShareRecordResponse, error)

	// Revoke hides a share from public resolution
	// Revoke 撤销分享，使其不再可被公开解析
	Revoke(ctx context.Context, ownerID string, id string) (*dto.ShareRevokeResponse, error)

	// TrackView records a successful public resolution, best-effort
	// TrackView 记录一次成功的公开解析，尽力而为
	TrackView(ctx context.Context, id string) *dto.ShareTrackViewResponse

	// Retouch updates the owner-facing title of a share
	// Retouch 修改分享的所有者标题
	Retouch(ctx context.Context, ownerID string, id string, req *dto.ShareRetouchRequest) (*dto.ShareRecordResponse, error)

	// Reconcile persists read-repair results back into the owner index
	// Reconcile 将读修复结果持久化回所有者索引
	Reconcile(ctx context.Context, ownerID string) (*dto.ShareReconcileResponse, error)
}

// shareService implementation of ShareService interface
// shareService 实现 ShareService 接口
type shareService struct {
	idMap      domain.IdMapRepository      // Global id map // 全局 ID 映射
	ownerIndex domain.OwnerIndexRepository // Owner index // 所有者索引
	blobRepo   domain.ShareBlobRepository  // Content blobs // 内容对象
	pool       *workerpool.Pool            // List verification fan-out // 列表校验扇出
	sf         *singleflight.Group         // Resolve de-duplication // 解析去重
	logger     *zap.Logger                 // Logger // 日志器
	config     *ServiceConfig              // Service configuration // 服务配置
}

// NewShareService creates ShareService instance
// NewShareService 创建 ShareService 实例
func NewShareService(idMap domain.IdMapRepository, ownerIndex domain.OwnerIndexRepository, blobRepo domain.ShareBlobRepository, pool *workerpool.Pool, logger *zap.Logger, config *ServiceConfig) ShareService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config == nil {
		config = &ServiceConfig{}
	}
	if config.Share.MaxBlobSize <= 0 {
		config.Share.MaxBlobSize = domain.DefaultMaxBlobSize
	}
	if config.Share.IDLength <= 0 {
		config.Share.IDLength = util.DefaultShareIDLength
	}
	return &shareService{
		idMap:      idMap,
		ownerIndex: ownerIndex,
		blobRepo:   blobRepo,
		pool:       pool,
		sf:         &singleflight.Group{},
		logger:     logger,
		config:     config,
	}
}

// ownerBucket 由所有者身份派生存储桶，原始身份从不落盘
func (s *shareService) ownerBucket(ownerID string) string {
	return util.EncodeOwnerBucket(ownerID, s.config.Share.OwnerBucketSalt)
}

// defaultExpiry 计算默认过期时间，未配置时返回 nil（永不过期）
func (s *shareService) defaultExpiry(now time.Time) *time.Time {
	if s.config.Share.DefaultExpiry == "" || s.config.Share.DefaultExpiry == "0" {
		return nil
	}
	d, err := util.ParseDuration(s.config.Share.DefaultExpiry)
	if err != nil || d <= 0 {
		return nil
	}
	exp := now.Add(d)
	return &exp
}

// Publish 发布一个不可变快照
// 写入顺序固定为 内容对象 → 全局映射 → 所有者索引：被引用者先于引用者存在，
// 任何可达引用都有效；后两步失败只会留下无害的孤儿对象，从不回滚已写内容
func (s *shareService) Publish(ctx context.Context, ownerID string, req *dto.SharePublishRequest) (*dto.SharePublishResponse, error) {
	now := time.Now().UTC()

	snapshot := domain.Snapshot{
		Type:          domain.ShareType(req.Snapshot.Type),
		SchemaVersion: req.Snapshot.SchemaVersion,
		Quote:         req.Snapshot.Quote,
		Timeline:      req.Snapshot.Timeline,
	}
	if err := snapshot.Validate(); err != nil {
		return nil, code.ErrorShareValidation.WithDetails(err.Error())
	}

	var expiresAt *time.Time
	if req.ExpiresAt != nil && !req.ExpiresAt.Time().IsZero() {
		exp := req.ExpiresAt.Time().UTC()
		expiresAt = &exp
	} else {
		expiresAt = s.defaultExpiry(now)
	}

	id := util.GenerateShareID(s.config.Share.IDLength)
	bucket := s.ownerBucket(ownerID)
	blobKey := dao.ShareBlobKey(bucket, id)

	blob := &domain.ShareBlob{
		Meta: domain.BlobMeta{
			ID:        id,
			Type:      snapshot.Type,
			CreatedAt: now,
			UpdatedAt: now,
			ExpiresAt: expiresAt,
		},
		Data: snapshot,
	}

	// 大小上限在任何存储写入之前检查
	content, err := domain.EncodeShareBlob(blob, s.config.Share.MaxBlobSize)
	if err != nil {
		if errors.Is(err, domain.ErrBlobTooLarge) {
			return nil, code.ErrorShareBlobTooLarge.WithDetails(err.Error())
		}
		return nil, code.ErrorShareValidation.WithDetails(err.Error())
	}

	if _, err := s.blobRepo.PutRaw(ctx, blobKey, content); err != nil {
		s.logger.Error("publish: blob write failed",
			zap.String(logger.FieldShareID, id), zap.String(logger.FieldBlobKey, blobKey), zap.Error(err))
		return nil, code.ErrorStoreUnavailable
	}

	entry := &domain.IdMapEntry{
		BlobKey:     blobKey,
		Status:      domain.ShareStatusActive,
		ExpiresAt:   expiresAt,
		OwnerBucket: bucket,
	}
	if err := s.idMap.Create(ctx, id, entry); err != nil {
		if errors.Is(err, domain.ErrEntryConflict) {
			// ID 熵值足够大，撞号属于异常情况；已写的内容对象留作孤儿
			s.logger.Error("publish: id collision", zap.String(logger.FieldShareID, id))
			return nil, code.ErrorShareIDConflict
		}
		s.logger.Error("publish: id map write failed, blob left orphaned",
			zap.String(logger.FieldShareID, id), zap.String(logger.FieldBlobKey, blobKey), zap.Error(err))
		return nil, code.ErrorStoreUnavailable
	}

	record := &domain.ShareRecord{
		ID:        id,
		Type:      snapshot.Type,
		Title:     req.Title,
		TaskID:    req.TaskID,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: expiresAt,
		Status:    domain.ShareStatusActive,
		BlobKey:   blobKey,
	}
	if err := s.ownerIndex.Append(ctx, bucket, record); err != nil {
		s.logger.Error("publish: owner index append failed, blob and map entry left in place",
			zap.String(logger.FieldShareID, id), zap.String(logger.FieldOwnerBucket, bucket), zap.Error(err))
		return nil, code.ErrorStoreUnavailable
	}

	resp := &dto.SharePublishResponse{
		ID:        id,
		BlobKey:   blobKey,
		CreatedAt: timex.Time(now),
	}
	if expiresAt != nil {
		exp := timex.Time(*expiresAt)
		resp.ExpiresAt = &exp
	}

	s.logger.Info("share published",
		zap.String(logger.FieldShareID, id),
		zap.String(logger.FieldOwnerBucket, bucket),
		zap.String(logger.FieldShareType, string(snapshot.Type)),
		zap.Int("size", len(content)))
	return resp, nil
}

// Resolve 公开解析，只依赖全局映射和内容对象
// 所有者索引故障或漂移绝不影响这条路径；missing/revoked/expired 对外不可区分
func (s *shareService) Resolve(ctx context.Context, id string) (*dto.ShareResolveResponse, error) {
	result, err, _ := s.sf.Do("resolve:"+id, func() (interface{}, error) {
		return s.resolve(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*dto.ShareResolveResponse), nil
}

func (s *shareService) resolve(ctx context.Context, id string) (*dto.ShareResolveResponse, error) {
	now := time.Now().UTC()

	entry, err := s.idMap.Lookup(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrEntryNotFound) {
			return nil, code.ErrorShareNotFound
		}
		s.logger.Error("resolve: id map lookup failed", zap.String(logger.FieldShareID, id), zap.Error(err))
		return nil, code.ErrorStoreUnavailable
	}

	if entry.Status != domain.ShareStatusActive {
		return nil, code.ErrorShareNotFound
	}

	// blobKey 原样使用，取回失败说明存储层真的有问题，不做 key 修补
	blob, err := s.blobRepo.Get(ctx, entry.BlobKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			// 映射存在但内容缺失，数据完整性问题，值得告警，不伪装成 NotFound
			s.logger.Error("resolve: blob missing for live id map entry",
				zap.String(logger.FieldShareID, id), zap.String(logger.FieldBlobKey, entry.BlobKey))
			return nil, code.ErrorShareCorrupt
		}
		if errors.Is(err, domain.ErrBlobCorrupt) {
			s.logger.Error("resolve: blob failed schema validation",
				zap.String(logger.FieldShareID, id), zap.String(logger.FieldBlobKey, entry.BlobKey), zap.Error(err))
			return nil, code.ErrorShareCorrupt
		}
		s.logger.Error("resolve: blob fetch failed", zap.String(logger.FieldShareID, id), zap.Error(err))
		return nil, code.ErrorStoreUnavailable
	}

	// 有效过期时间：信封元信息优先，缺失时回退到映射条目
	if exp := blob.EffectiveExpiry(entry); exp != nil && !exp.IsZero() && exp.Before(now) {
		return nil, code.ErrorShareNotFound
	}

	return dto.NewShareResolveResponse(blob), nil
}

// List 所有者列表，带读修复
// 索引只是可能过期的缓存：每个 active 候选并行地再查一次全局映射并探测内容对象，
// 任一校验失败即丢弃。修复只体现在响应里，从不在列表路径回写存储
func (s *shareService) List(ctx context.Context, ownerID string) ([]*dto.ShareRecordResponse, error) {
	now := time.Now().UTC()
	bucket := s.ownerBucket(ownerID)

	index, err := s.ownerIndex.Load(ctx, bucket)
	if err != nil {
		s.logger.Error("list: owner index load failed", zap.String(logger.FieldOwnerBucket, bucket), zap.Error(err))
		return nil, code.ErrorStoreUnavailable
	}

	var candidates []*domain.ShareRecord
	for _, item := range index.Items {
		if item.EffectiveStatus(now) == domain.ShareStatusActive {
			candidates = append(candidates, item)
		}
	}

	verified := make([]bool, len(candidates))
	var wg sync.WaitGroup
	for i, item := range candidates {
		i, item := i, item
		wg.Add(1)
		go func() {
			defer wg.Done()
			verify := func(ctx context.Context) error {
				verified[i] = s.verifyLive(ctx, item, now)
				return nil
			}
			if s.pool == nil {
				_ = verify(ctx)
				return
			}
			// 仅当任务从未入队时才内联校验；入队后任务归池所有，
			// 再执行一次会与 worker 并发写同一个结果槽
			err := s.pool.Submit(ctx, verify)
			if errors.Is(err, workerpool.ErrWorkerPoolFull) || errors.Is(err, workerpool.ErrWorkerPoolClosed) {
				_ = verify(ctx)
			}
		}()
	}
	wg.Wait()

	if ctx.Err() != nil {
		// 请求已取消，入队的校验可能还在 worker 中写结果槽，结果不再可读
		return nil, code.ErrorStoreUnavailable
	}

	out := make([]*dto.ShareRecordResponse, 0, len(candidates))
	for i, item := range candidates {
		if verified[i] {
			out = append(out, dto.NewShareRecordResponse(item, domain.ShareStatusActive))
		}
	}
	return out, nil
}

// verifyLive 双重校验：全局映射仍为可见，且内容对象仍然存在
func (s *shareService) verifyLive(ctx context.Context, item *domain.ShareRecord, now time.Time) bool {
	entry, err := s.idMap.Lookup(ctx, item.ID)
	if err != nil || !entry.Visible(now) {
		return false
	}
	exist, err := s.blobRepo.Head(ctx, item.BlobKey)
	return err == nil && exist
}

// Revoke 撤销分享
// 所有权通过所有者索引验证；全局映射的撤销是权威操作，索引回写尽力而为，
// 丢失的索引更新由列表读修复兜底。整体幂等
func (s *shareService) Revoke(ctx context.Context, ownerID string, id string) (*dto.ShareRevokeResponse, error) {
	bucket := s.ownerBucket(ownerID)

	index, err := s.ownerIndex.Load(ctx, bucket)
	if err != nil {
		s.logger.Error("revoke: owner index load failed", zap.String(logger.FieldOwnerBucket, bucket), zap.Error(err))
		return nil, code.ErrorStoreUnavailable
	}
	if index.Find(id) == nil {
		// 不在该所有者的索引里：可能是别人的 ID，也可能根本不存在
		return nil, code.ErrorShareForbidden
	}

	if err := s.idMap.Revoke(ctx, id); err != nil {
		s.logger.Error("revoke: id map revoke failed", zap.String(logger.FieldShareID, id), zap.Error(err))
		return nil, code.ErrorStoreUnavailable
	}

	if err := s.ownerIndex.UpdateStatus(ctx, bucket, id, domain.ShareStatusRevoked); err != nil {
		// 索引是投影，回写失败不影响撤销结果
		s.logger.Warn("revoke: owner index update lost, will be healed by read-repair",
			zap.String(logger.FieldShareID, id), zap.String(logger.FieldOwnerBucket, bucket), zap.Error(err))
	}

	s.logger.Info("share revoked", zap.String(logger.FieldShareID, id), zap.String(logger.FieldOwnerBucket, bucket))
	return &dto.ShareRevokeResponse{ID: id, OK: true}, nil
}

// TrackView 记录一次成功的公开解析
// 永远返回成功形态；计数读改写无保护，有损但单调不减
func (s *shareService) TrackView(ctx context.Context, id string) *dto.ShareTrackViewResponse {
	now := time.Now().UTC()

	entry, err := s.idMap.Lookup(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrEntryNotFound) {
			s.logger.Warn("track view: id map lookup failed", zap.String(logger.FieldShareID, id), zap.Error(err))
		}
		return &dto.ShareTrackViewResponse{OK: true}
	}

	bucket := entry.OwnerBucket
	if bucket == "" {
		// 旧条目没有显式桶字段时回退到 key 解析
		bucket = ownerBucketFromBlobKey(entry.BlobKey)
	}
	if bucket == "" {
		s.logger.Warn("track view: cannot determine owner bucket",
			zap.String(logger.FieldShareID, id), zap.String(logger.FieldBlobKey, entry.BlobKey))
		return &dto.ShareTrackViewResponse{OK: true}
	}

	if err := s.ownerIndex.UpdateViewStats(ctx, bucket, id, 1, now); err != nil {
		s.logger.Warn("track view: view stats update lost",
			zap.String(logger.FieldShareID, id), zap.String(logger.FieldOwnerBucket, bucket), zap.Error(err))
	}
	return &dto.ShareTrackViewResponse{OK: true}
}

// Retouch 修改分享标题，只动索引记录，内容对象保持不可变
func (s *shareService) Retouch(ctx context.Context, ownerID string, id string, req *dto.ShareRetouchRequest) (*dto.ShareRecordResponse, error) {
	now := time.Now().UTC()
	bucket := s.ownerBucket(ownerID)

	index, err := s.ownerIndex.Load(ctx, bucket)
	if err != nil {
		return nil, code.ErrorStoreUnavailable
	}
	record := index.Find(id)
	if record == nil {
		return nil, code.ErrorShareForbidden
	}

	record.Title = req.Title
	record.UpdatedAt = now
	if err := s.ownerIndex.Save(ctx, bucket, index); err != nil {
		s.logger.Error("retouch: owner index save failed", zap.String(logger.FieldShareID, id), zap.Error(err))
		return nil, code.ErrorStoreUnavailable
	}
	return dto.NewShareRecordResponse(record, record.EffectiveStatus(now)), nil
}

// Reconcile 显式对账：把读修复会丢弃的漂移持久化回所有者索引
// 这是唯一把修复结果写回存储的入口，列表路径仍然只读
func (s *shareService) Reconcile(ctx context.Context, ownerID string) (*dto.ShareReconcileResponse, error) {
	now := time.Now().UTC()
	bucket := s.ownerBucket(ownerID)

	index, err := s.ownerIndex.Load(ctx, bucket)
	if err != nil {
		return nil, code.ErrorStoreUnavailable
	}

	resp := &dto.ShareReconcileResponse{}
	for _, item := range index.Items {
		if item.Status != domain.ShareStatusActive {
			continue
		}
		resp.Checked++

		entry, err := s.idMap.Lookup(ctx, item.ID)
		if err != nil {
			if errors.Is(err, domain.ErrEntryNotFound) {
				item.Status = domain.ShareStatusRevoked
				item.UpdatedAt = now
				resp.Repaired++
			}
			continue
		}
		if entry.Status == domain.ShareStatusRevoked {
			item.Status = domain.ShareStatusRevoked
			item.UpdatedAt = now
			resp.Repaired++
			continue
		}
		if exist, err := s.blobRepo.Head(ctx, item.BlobKey); err == nil && !exist {
			item.Status = domain.ShareStatusRevoked
			item.UpdatedAt = now
			resp.Repaired++
		}
	}

	if resp.Repaired > 0 {
		if err := s.ownerIndex.Save(ctx, bucket, index); err != nil {
			s.logger.Error("reconcile: owner index save failed", zap.String(logger.FieldOwnerBucket, bucket), zap.Error(err))
			return nil, code.ErrorStoreUnavailable
		}
		s.logger.Info("owner index reconciled",
			zap.String(logger.FieldOwnerBucket, bucket),
			zap.Int("checked", resp.Checked),
			zap.Int("repaired", resp.Repaired))
	}
	return resp, nil
}

// ownerBucketFromBlobKey 从 shares/{ownerBucket}/{id}.json 布局反推所有者桶
// 依赖固定的 key 命名约定，仅作为旧条目的兼容回退
func ownerBucketFromBlobKey(blobKey string) string {
	key := storage.NormalizeKey(blobKey)
	parts := strings.Split(key, "/")
	if len(parts) < 3 || parts[0] != "shares" || parts[1] == "_idmap" {
		return ""
	}
	return parts[1]
}

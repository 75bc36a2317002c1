package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haierkeys/snapshot-share-service/internal/dao"
	"github.com/haierkeys/snapshot-share-service/internal/domain"
	"github.com/haierkeys/snapshot-share-service/internal/dto"
	"github.com/haierkeys/snapshot-share-service/pkg/code"
	"github.com/haierkeys/snapshot-share-service/pkg/storage/memory"
	"github.com/haierkeys/snapshot-share-service/pkg/timex"
	"github.com/haierkeys/snapshot-share-service/pkg/util"
	"github.com/haierkeys/snapshot-share-service/pkg/workerpool"
)

type testEnv struct {
	svc        ShareService
	store      *memory.Store
	idMap      domain.IdMapRepository
	ownerIndex domain.OwnerIndexRepository
	blobRepo   domain.ShareBlobRepository
	pool       *workerpool.Pool
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewClient()
	d := dao.New(store, nil)
	pool := workerpool.New(&workerpool.Config{MaxWorkers: 8, QueueSize: 64}, nil)
	t.Cleanup(func() { _ = pool.Shutdown(context.Background()) })

	idMap := dao.NewIdMapRepository(d)
	ownerIndex := dao.NewOwnerIndexRepository(d)
	blobRepo := dao.NewShareBlobRepository(d)

	svc := NewShareService(idMap, ownerIndex, blobRepo, pool, nil, &ServiceConfig{
		Share: ShareServiceConfig{OwnerBucketSalt: "test-salt"},
	})
	return &testEnv{
		svc:        svc,
		store:      store,
		idMap:      idMap,
		ownerIndex: ownerIndex,
		blobRepo:   blobRepo,
		pool:       pool,
	}
}

func quoteRequest(payload string) *dto.SharePublishRequest {
	return &dto.SharePublishRequest{
		Snapshot: dto.SnapshotPayload{
			Type:          "quote",
			SchemaVersion: 1,
			Quote:         json.RawMessage(payload),
		},
	}
}

func TestPublishResolve_RoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	payload := `{"total":1299.5,"currency":"USD","items":[{"name":"design","price":1299.5}]}`
	pub, err := env.svc.Publish(ctx, "owner-a", quoteRequest(payload))
	require.NoError(t, err)
	require.NotEmpty(t, pub.ID)
	assert.True(t, strings.HasSuffix(pub.BlobKey, pub.ID+".json"))

	got, err := env.svc.Resolve(ctx, pub.ID)
	require.NoError(t, err)
	assert.Equal(t, pub.ID, got.Meta.ID)
	assert.Equal(t, "quote", got.Meta.Type)
	assert.JSONEq(t, payload, string(got.Data.Quote))
}

func TestPublish_Validation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *dto.SharePublishRequest
	}{
		{"unknown type", &dto.SharePublishRequest{Snapshot: dto.SnapshotPayload{Type: "poll", SchemaVersion: 1, Quote: json.RawMessage(`{}`)}}},
		{"missing payload", &dto.SharePublishRequest{Snapshot: dto.SnapshotPayload{Type: "quote", SchemaVersion: 1}}},
		{"combined missing timeline", &dto.SharePublishRequest{Snapshot: dto.SnapshotPayload{Type: "combined", SchemaVersion: 1, Quote: json.RawMessage(`{}`)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.Publish(ctx, "owner-a", tt.req)
			require.Error(t, err)
			codeErr, ok := err.(*code.Code)
			require.True(t, ok)
			assert.Equal(t, code.ErrorShareValidation.Code(), codeErr.Code())
		})
	}
}

// 超限载荷必须在任何存储写入之前被拒绝
func TestPublish_SizeCapBeforeAnyWrite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	big, _ := json.Marshal(strings.Repeat("a", 600*1024))
	_, err := env.svc.Publish(ctx, "owner-a", quoteRequest(string(big)))
	require.Error(t, err)
	codeErr, ok := err.(*code.Code)
	require.True(t, ok)
	assert.Equal(t, code.ErrorShareBlobTooLarge.Code(), codeErr.Code())

	assert.Equal(t, 0, env.store.Len(), "no object may be written for an oversized payload")
}

func TestResolve_RevokedIndistinguishableFromMissing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pub, err := env.svc.Publish(ctx, "owner-a", quoteRequest(`{"total":1}`))
	require.NoError(t, err)

	_, err = env.svc.Revoke(ctx, "owner-a", pub.ID)
	require.NoError(t, err)

	_, errRevoked := env.svc.Resolve(ctx, pub.ID)
	_, errMissing := env.svc.Resolve(ctx, "neverissued00")

	require.Error(t, errRevoked)
	require.Error(t, errMissing)
	revokedCode := errRevoked.(*code.Code)
	missingCode := errMissing.(*code.Code)
	assert.Equal(t, missingCode.Code(), revokedCode.Code())
	assert.Equal(t, missingCode.Msg(), revokedCode.Msg())
}

func TestResolve_Expired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	past := timex.Time(time.Now().Add(-time.Hour))
	req := quoteRequest(`{"total":1}`)
	req.ExpiresAt = &past

	pub, err := env.svc.Publish(ctx, "owner-a", req)
	require.NoError(t, err)

	_, err = env.svc.Resolve(ctx, pub.ID)
	require.Error(t, err)
	assert.Equal(t, code.ErrorShareNotFound.Code(), err.(*code.Code).Code())
}

func TestResolve_CorruptBlob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pub, err := env.svc.Publish(ctx, "owner-a", quoteRequest(`{"total":1}`))
	require.NoError(t, err)

	// 原位破坏内容对象
	_, err = env.store.PutContent(ctx, pub.BlobKey, []byte("{broken"), "application/json")
	require.NoError(t, err)

	_, err = env.svc.Resolve(ctx, pub.ID)
	require.Error(t, err)
	assert.Equal(t, code.ErrorShareCorrupt.Code(), err.(*code.Code).Code())
}

func TestResolve_BlobMissing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pub, err := env.svc.Publish(ctx, "owner-a", quoteRequest(`{"total":1}`))
	require.NoError(t, err)

	require.NoError(t, env.store.Delete(ctx, pub.BlobKey))

	// 映射活跃但内容缺失是数据完整性问题，不伪装成 NotFound
	_, err = env.svc.Resolve(ctx, pub.ID)
	require.Error(t, err)
	assert.Equal(t, code.ErrorShareCorrupt.Code(), err.(*code.Code).Code())
}

// 列表读修复：索引仍标 active 但全局映射已撤销的条目绝不出现在结果里
func TestList_ReadRepair(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pubA, err := env.svc.Publish(ctx, "owner-a", quoteRequest(`{"total":1}`))
	require.NoError(t, err)
	pubB, err := env.svc.Publish(ctx, "owner-a", quoteRequest(`{"total":2}`))
	require.NoError(t, err)

	// 模拟丢失的索引回写：只撤销全局映射，索引保持 active
	require.NoError(t, env.idMap.Revoke(ctx, pubA.ID))

	list, err := env.svc.List(ctx, "owner-a")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pubB.ID, list[0].ID)

	// 读修复不持久化：索引里的陈旧记录原样保留
	bucket := util.EncodeOwnerBucket("owner-a", "test-salt")
	index, err := env.ownerIndex.Load(ctx, bucket)
	require.NoError(t, err)
	assert.Equal(t, domain.ShareStatusActive, index.Find(pubA.ID).Status)
}

func TestList_DropsMissingBlob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pubA, err := env.svc.Publish(ctx, "owner-a", quoteRequest(`{"total":1}`))
	require.NoError(t, err)
	pubB, err := env.svc.Publish(ctx, "owner-a", quoteRequest(`{"total":2}`))
	require.NoError(t, err)

	// 内容被带外删除
	require.NoError(t, env.store.Delete(ctx, pubA.BlobKey))

	list, err := env.svc.List(ctx, "owner-a")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pubB.ID, list[0].ID)
}

// slowHeadStore 包装内存存储，按开关让 Head 阻塞，模拟慢存储探测
type slowHeadStore struct {
	*memory.Store
	delay time.Duration
	slow  atomic.Bool
}

func (s *slowHeadStore) Head(ctx context.Context, pathKey string) (bool, error) {
	if s.slow.Load() {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
		}
	}
	return s.Store.Head(ctx, pathKey)
}

// 校验进行中取消请求不得让池 worker 崩溃，后续列表必须照常工作
func TestList_CancelledMidVerification(t *testing.T) {
	store := &slowHeadStore{Store: memory.NewClient(), delay: 300 * time.Millisecond}
	d := dao.New(store, nil)
	pool := workerpool.New(&workerpool.Config{MaxWorkers: 2, QueueSize: 16}, nil)
	t.Cleanup(func() { _ = pool.Shutdown(context.Background()) })

	svc := NewShareService(dao.NewIdMapRepository(d), dao.NewOwnerIndexRepository(d), dao.NewShareBlobRepository(d), pool, nil, &ServiceConfig{
		Share: ShareServiceConfig{OwnerBucketSalt: "test-salt"},
	})

	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err := svc.Publish(ctx, "owner-a", quoteRequest(fmt.Sprintf(`{"total":%d}`, i)))
		require.NoError(t, err)
	}
	store.slow.Store(true)

	listCtx, cancel := context.WithCancel(ctx)
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := svc.List(listCtx, "owner-a")
	require.Error(t, err)
	codeErr, ok := err.(*code.Code)
	require.True(t, ok)
	assert.Equal(t, code.ErrorStoreUnavailable.Code(), codeErr.Code())

	// 在途校验收尾后池必须完好，完整列表照常返回
	require.Eventually(t, func() bool { return pool.ActiveCount() == 0 }, 3*time.Second, 10*time.Millisecond)
	store.slow.Store(false)
	list, err := svc.List(ctx, "owner-a")
	require.NoError(t, err)
	assert.Len(t, list, 4)
}

func TestRevoke_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pub, err := env.svc.Publish(ctx, "owner-a", quoteRequest(`{"total":1}`))
	require.NoError(t, err)

	resp, err := env.svc.Revoke(ctx, "owner-a", pub.ID)
	require.NoError(t, err)
	assert.True(t, resp.OK)

	// 再次撤销是无操作成功
	resp, err = env.svc.Revoke(ctx, "owner-a", pub.ID)
	require.NoError(t, err)
	assert.True(t, resp.OK)
}

func TestRevoke_ForeignOwnerForbidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pub, err := env.svc.Publish(ctx, "owner-a", quoteRequest(`{"total":1}`))
	require.NoError(t, err)

	// 其他所有者即使猜到 ID 也不能撤销
	_, err = env.svc.Revoke(ctx, "owner-b", pub.ID)
	require.Error(t, err)
	assert.Equal(t, code.ErrorShareForbidden.Code(), err.(*code.Code).Code())

	// 分享仍可解析
	_, err = env.svc.Resolve(ctx, pub.ID)
	assert.NoError(t, err)
}

func TestTrackView_LossyButMonotonic(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pub, err := env.svc.Publish(ctx, "owner-a", quoteRequest(`{"total":1}`))
	require.NoError(t, err)

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := env.svc.TrackView(ctx, pub.ID)
			assert.True(t, resp.OK)
		}()
	}
	wg.Wait()

	list, err := env.svc.List(ctx, "owner-a")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.GreaterOrEqual(t, list[0].ViewCount, int64(1))
	assert.LessOrEqual(t, list[0].ViewCount, int64(n))
	require.NotNil(t, list[0].LastAccessAt)
}

func TestTrackView_UnknownIDStillOK(t *testing.T) {
	env := newTestEnv(t)

	resp := env.svc.TrackView(context.Background(), "neverissued00")
	assert.True(t, resp.OK)
}

// 旧映射条目缺少显式 ownerBucket 字段时回退到 blobKey 解析
func TestTrackView_LegacyEntryWithoutBucket(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pub, err := env.svc.Publish(ctx, "owner-a", quoteRequest(`{"total":1}`))
	require.NoError(t, err)

	entry, err := env.idMap.Lookup(ctx, pub.ID)
	require.NoError(t, err)
	entry.OwnerBucket = ""
	content, _ := json.Marshal(entry)
	_, err = env.store.PutContent(ctx, dao.IdMapKey(pub.ID), content, "application/json")
	require.NoError(t, err)

	resp := env.svc.TrackView(ctx, pub.ID)
	assert.True(t, resp.OK)

	list, err := env.svc.List(ctx, "owner-a")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(1), list[0].ViewCount)
}

func TestRetouch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pub, err := env.svc.Publish(ctx, "owner-a", quoteRequest(`{"total":1}`))
	require.NoError(t, err)

	got, err := env.svc.Retouch(ctx, "owner-a", pub.ID, &dto.ShareRetouchRequest{Title: "Q3 quote"})
	require.NoError(t, err)
	assert.Equal(t, "Q3 quote", got.Title)

	// 其他所有者不能改
	_, err = env.svc.Retouch(ctx, "owner-b", pub.ID, &dto.ShareRetouchRequest{Title: "hijack"})
	require.Error(t, err)
	assert.Equal(t, code.ErrorShareForbidden.Code(), err.(*code.Code).Code())
}

func TestReconcile_PersistsRepairs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pubA, err := env.svc.Publish(ctx, "owner-a", quoteRequest(`{"total":1}`))
	require.NoError(t, err)
	_, err = env.svc.Publish(ctx, "owner-a", quoteRequest(`{"total":2}`))
	require.NoError(t, err)

	// 映射已撤销、索引漂移为 active
	require.NoError(t, env.idMap.Revoke(ctx, pubA.ID))

	resp, err := env.svc.Reconcile(ctx, "owner-a")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Checked)
	assert.Equal(t, 1, resp.Repaired)

	// 修复已持久化，再跑一轮没有新修复
	resp, err = env.svc.Reconcile(ctx, "owner-a")
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Checked)
	assert.Equal(t, 0, resp.Repaired)
}

// Scenario: 同一所有者并发发布，两个 ID 各自可解析，列表最终都可见
func TestPublish_ConcurrentSameOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]string, 2)
	for i := 0; i < 2; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			pub, err := env.svc.Publish(ctx, "owner-a", quoteRequest(fmt.Sprintf(`{"total":%d}`, i)))
			if err == nil {
				ids[i] = pub.ID
			}
		}()
	}
	wg.Wait()

	for _, id := range ids {
		if id == "" {
			continue
		}
		_, err := env.svc.Resolve(ctx, id)
		assert.NoError(t, err, "id %s must resolve independently", id)
	}

	// 索引读改写竞态可能丢一条，丢失时所有者重试补回
	list, err := env.svc.List(ctx, "owner-a")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(list), 1)
}

// 往返性质：任意合法快照发布后解析回结构相等的内容
func TestProperty_PublishResolveRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	properties.Property("resolve returns structurally equal snapshot", prop.ForAll(
		func(owner string, total int64, label string) bool {
			payload := fmt.Sprintf(`{"total":%d,"label":%q}`, total, label)
			pub, err := env.svc.Publish(ctx, owner, quoteRequest(payload))
			if err != nil {
				t.Logf("publish failed: %v", err)
				return false
			}
			got, err := env.svc.Resolve(ctx, pub.ID)
			if err != nil {
				t.Logf("resolve failed: %v", err)
				return false
			}
			var want, have map[string]any
			if json.Unmarshal([]byte(payload), &want) != nil || json.Unmarshal(got.Data.Quote, &have) != nil {
				return false
			}
			return want["label"] == have["label"] && got.Meta.ID == pub.ID
		},
		gen.Identifier(),
		gen.Int64(),
		gen.AlphaString(),
	))

	properties.Property("revoke makes id unresolvable", prop.ForAll(
		func(owner string, total int64) bool {
			payload := fmt.Sprintf(`{"total":%d}`, total)
			pub, err := env.svc.Publish(ctx, owner, quoteRequest(payload))
			if err != nil {
				return false
			}
			if _, err := env.svc.Revoke(ctx, owner, pub.ID); err != nil {
				return false
			}
			_, err = env.svc.Resolve(ctx, pub.ID)
			codeErr, ok := err.(*code.Code)
			return ok && codeErr.Code() == code.ErrorShareNotFound.Code()
		},
		gen.Identifier(),
		gen.Int64(),
	))

	properties.TestingRun(t)
}

// Scenario A: 带 1 小时过期发布 → 立即可解析 → 2 小时后解析返回 NotFound
func TestScenario_ExpiryWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	exp := timex.Time(time.Now().Add(time.Hour))
	req := quoteRequest(`{"total":42}`)
	req.ExpiresAt = &exp

	pub, err := env.svc.Publish(ctx, "owner-a", req)
	require.NoError(t, err)

	got, err := env.svc.Resolve(ctx, pub.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":42}`, string(got.Data.Quote))

	// 把映射和信封的过期时间都拨到过去，模拟时钟前进 2 小时
	entry, err := env.idMap.Lookup(ctx, pub.ID)
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour).UTC()
	entry.ExpiresAt = &past
	content, _ := json.Marshal(entry)
	_, err = env.store.PutContent(ctx, dao.IdMapKey(pub.ID), content, "application/json")
	require.NoError(t, err)

	blob, err := env.blobRepo.Get(ctx, pub.BlobKey)
	require.NoError(t, err)
	blob.Meta.ExpiresAt = &past
	_, err = env.blobRepo.Put(ctx, pub.BlobKey, blob)
	require.NoError(t, err)

	_, err = env.svc.Resolve(ctx, pub.ID)
	require.Error(t, err)
	assert.Equal(t, code.ErrorShareNotFound.Code(), err.(*code.Code).Code())
}

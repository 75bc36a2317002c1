package routers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	internalApp "github.com/haierkeys/snapshot-share-service/internal/app"
	"github.com/haierkeys/snapshot-share-service/pkg/storage"
	"github.com/haierkeys/snapshot-share-service/pkg/validator"

	"github.com/creasty/defaults"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// res 统一响应信封
type res struct {
	Code   int             `json:"code"`
	Status bool            `json:"status"`
	Data   json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *internalApp.App) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	validator.RegisterCustom()

	cfg := new(internalApp.AppConfig)
	require.NoError(t, defaults.Set(cfg))
	cfg.Storage.Type = storage.Memory
	cfg.Security.AuthTokenKey = "router-test-key"
	cfg.Security.OwnerBucketSalt = "router-test-salt"

	appContainer, err := internalApp.NewApp(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = appContainer.Shutdown(nil) })

	uni := ut.New(en.New(), en.New(), zh.New())

	return NewRouter(appContainer, uni), appContainer
}

func ownerToken(t *testing.T, a *internalApp.App, ownerID string) string {
	t.Helper()
	token, err := a.TokenManager.Generate(ownerID, "127.0.0.1")
	require.NoError(t, err)
	return token
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("token", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func publishBody() map[string]any {
	return map[string]any{
		"snapshot": map[string]any{
			"type":          "quote",
			"schemaVersion": 1,
			"quote":         map[string]any{"symbol": "ACME", "price": 42.5},
		},
		"title": "morning quote",
	}
}

func TestRouter_PublishResolveRoundTrip(t *testing.T) {
	r, a := newTestRouter(t)
	token := ownerToken(t, a, "owner-a")

	w := doJSON(r, http.MethodPost, "/api/shares", token, publishBody())
	require.Equal(t, http.StatusOK, w.Code)

	var published res
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &published))
	require.True(t, published.Status)

	var data struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(published.Data, &data))
	require.NotEmpty(t, data.ID)

	// 公开解析不需要 Token
	w = doJSON(r, http.MethodGet, "/api/s/"+data.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resolved res
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resolved))
	assert.True(t, resolved.Status)

	var envelope struct {
		Meta struct {
			ID   string `json:"id"`
			Type string `json:"type"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(resolved.Data, &envelope))
	assert.Equal(t, data.ID, envelope.Meta.ID)
	assert.Equal(t, "quote", envelope.Meta.Type)
}

func TestRouter_PublishRequiresToken(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/shares", "", publishBody())
	require.Equal(t, http.StatusOK, w.Code)

	var body res
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Status)
	assert.Equal(t, 20001, body.Code)
}

func TestRouter_PublishRejectsUnknownKind(t *testing.T) {
	r, a := newTestRouter(t)
	token := ownerToken(t, a, "owner-a")

	body := publishBody()
	body["snapshot"].(map[string]any)["type"] = "diagram"

	w := doJSON(r, http.MethodPost, "/api/shares", token, body)
	require.Equal(t, http.StatusOK, w.Code)

	var got res
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.False(t, got.Status)
	assert.Equal(t, 10001, got.Code)
}

func TestRouter_RevokeThenResolveNotFound(t *testing.T) {
	r, a := newTestRouter(t)
	token := ownerToken(t, a, "owner-a")

	w := doJSON(r, http.MethodPost, "/api/shares", token, publishBody())
	var published res
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &published))
	var data struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(published.Data, &data))

	w = doJSON(r, http.MethodDelete, "/api/shares/"+data.ID, token, nil)
	var revoked res
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &revoked))
	require.True(t, revoked.Status)

	// 撤销后对外表现与不存在一致
	w = doJSON(r, http.MethodGet, "/api/s/"+data.ID, "", nil)
	var resolved res
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resolved))
	assert.False(t, resolved.Status)
	assert.Equal(t, 30001, resolved.Code)

	w = doJSON(r, http.MethodGet, "/api/s/nonexistent00", "", nil)
	var missing res
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &missing))
	assert.Equal(t, resolved.Code, missing.Code)
}

func TestRouter_RevokeForeignShareForbidden(t *testing.T) {
	r, a := newTestRouter(t)
	ownerA := ownerToken(t, a, "owner-a")
	ownerB := ownerToken(t, a, "owner-b")

	w := doJSON(r, http.MethodPost, "/api/shares", ownerA, publishBody())
	var published res
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &published))
	var data struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(published.Data, &data))

	w = doJSON(r, http.MethodDelete, "/api/shares/"+data.ID, ownerB, nil)
	var got res
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.False(t, got.Status)
	assert.Equal(t, 20003, got.Code)
}

func TestRouter_ListAndTrackView(t *testing.T) {
	r, a := newTestRouter(t)
	token := ownerToken(t, a, "owner-a")

	w := doJSON(r, http.MethodPost, "/api/shares", token, publishBody())
	var published res
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &published))
	var data struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(published.Data, &data))

	// 浏览上报总是成功
	w = doJSON(r, http.MethodPost, "/api/s/"+data.ID+"/view", "", nil)
	var tracked res
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tracked))
	assert.True(t, tracked.Status)

	w = doJSON(r, http.MethodPost, "/api/s/unknown000000/view", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tracked))
	assert.True(t, tracked.Status)

	// 计数在后台写入，列表最终反映这次浏览
	var list struct {
		List []struct {
			ID        string `json:"id"`
			ViewCount int64  `json:"viewCount"`
		} `json:"list"`
		Pager struct {
			TotalRows int `json:"totalRows"`
		} `json:"pager"`
	}
	require.Eventually(t, func() bool {
		w = doJSON(r, http.MethodGet, "/api/shares", token, nil)
		var listed res
		if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil || !listed.Status {
			return false
		}
		if err := json.Unmarshal(listed.Data, &list); err != nil {
			return false
		}
		return len(list.List) == 1 && list.List[0].ViewCount == 1
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, data.ID, list.List[0].ID)
	assert.Equal(t, 1, list.Pager.TotalRows)
}

func TestRouter_HealthAndVersion(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/api/health", "", nil)
	var health res
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.True(t, health.Status)

	w = doJSON(r, http.MethodGet, "/api/version", "", nil)
	var version res
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &version))
	assert.True(t, version.Status)
}

func TestRouter_NoRoute(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(r, http.MethodGet, "/api/nope", "", nil)
	var got res
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.False(t, got.Status)
	assert.Equal(t, 10002, got.Code)
}

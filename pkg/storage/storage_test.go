package storage

import (
	"context"
	"testing"

	"github.com/haierkeys/snapshot-share-service/pkg/code"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	t.Run("nil config", func(t *testing.T) {
		_, err := NewClient(nil)
		assert.ErrorIs(t, err, code.ErrorInvalidStorageType)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := NewClient(&Config{Type: "ftp"})
		assert.ErrorIs(t, err, code.ErrorInvalidStorageType)
	})

	t.Run("memory", func(t *testing.T) {
		client, err := NewClient(&Config{Type: Memory})
		require.NoError(t, err)
		require.NotNil(t, client)
	})

	t.Run("localfs", func(t *testing.T) {
		client, err := NewClient(&Config{Type: LOCAL, SavePath: t.TempDir()})
		require.NoError(t, err)
		require.NotNil(t, client)
	})
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"relative key", "shares/ab12/x.json", "shares/ab12/x.json"},
		{"leading slash", "/shares/ab12/x.json", "shares/ab12/x.json"},
		{"absolute url", "https://cdn.example.com/shares/ab12/x.json", "shares/ab12/x.json"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeKey(tt.in))
		})
	}
}

func TestStorager_RoundTrip(t *testing.T) {
	backends := map[string]*Config{
		"memory":  {Type: Memory},
		"localfs": {Type: LOCAL, SavePath: t.TempDir()},
	}

	for name, cfg := range backends {
		t.Run(name, func(t *testing.T) {
			client, err := NewClient(cfg)
			require.NoError(t, err)

			ctx := context.Background()
			content := []byte(`{"schemaVersion":1}`)

			_, err = client.PutContent(ctx, "shares/ab12/x.json", content, "application/json")
			require.NoError(t, err)

			got, err := client.GetContent(ctx, "shares/ab12/x.json")
			require.NoError(t, err)
			assert.Equal(t, content, got)

			exist, err := client.Head(ctx, "shares/ab12/x.json")
			require.NoError(t, err)
			assert.True(t, exist)

			exist, err = client.Head(ctx, "shares/ab12/missing.json")
			require.NoError(t, err)
			assert.False(t, exist)

			_, err = client.GetContent(ctx, "shares/ab12/missing.json")
			assert.ErrorIs(t, err, ErrObjectNotExist)

			keys, err := client.List(ctx, "shares/ab12/")
			require.NoError(t, err)
			assert.Contains(t, keys, "shares/ab12/x.json")

			require.NoError(t, client.Delete(ctx, "shares/ab12/x.json"))
			_, err = client.GetContent(ctx, "shares/ab12/x.json")
			assert.ErrorIs(t, err, ErrObjectNotExist)

			// 删除不存在的对象也应成功
			require.NoError(t, client.Delete(ctx, "shares/ab12/x.json"))
		})
	}
}

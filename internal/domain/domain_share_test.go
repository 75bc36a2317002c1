package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareRecord_EffectiveStatus(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name   string
		record ShareRecord
		want   ShareStatus
	}{
		{"active no expiry", ShareRecord{Status: ShareStatusActive}, ShareStatusActive},
		{"active future expiry", ShareRecord{Status: ShareStatusActive, ExpiresAt: &future}, ShareStatusActive},
		{"active past expiry", ShareRecord{Status: ShareStatusActive, ExpiresAt: &past}, ShareStatusExpired},
		{"revoked beats expiry", ShareRecord{Status: ShareStatusRevoked, ExpiresAt: &past}, ShareStatusRevoked},
		{"revoked", ShareRecord{Status: ShareStatusRevoked}, ShareStatusRevoked},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.EffectiveStatus(now))
		})
	}
}

func TestIdMapEntry_Visible(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.True(t, (&IdMapEntry{Status: ShareStatusActive}).Visible(now))
	assert.True(t, (&IdMapEntry{Status: ShareStatusActive, ExpiresAt: &future}).Visible(now))
	assert.False(t, (&IdMapEntry{Status: ShareStatusActive, ExpiresAt: &past}).Visible(now))
	assert.False(t, (&IdMapEntry{Status: ShareStatusRevoked}).Visible(now))
	assert.False(t, (&IdMapEntry{Status: ShareStatusRevoked, ExpiresAt: &future}).Visible(now))
}

func TestSnapshot_Validate(t *testing.T) {
	quote := json.RawMessage(`{"total":100}`)
	timeline := json.RawMessage(`{"events":[]}`)

	tests := []struct {
		name    string
		snap    Snapshot
		wantErr bool
	}{
		{"quote ok", Snapshot{Type: ShareTypeQuote, SchemaVersion: 1, Quote: quote}, false},
		{"timeline ok", Snapshot{Type: ShareTypeTimeline, SchemaVersion: 1, Timeline: timeline}, false},
		{"combined ok", Snapshot{Type: ShareTypeCombined, SchemaVersion: 1, Quote: quote, Timeline: timeline}, false},
		{"unknown type", Snapshot{Type: "poll", SchemaVersion: 1, Quote: quote}, true},
		{"zero schema version", Snapshot{Type: ShareTypeQuote, SchemaVersion: 0, Quote: quote}, true},
		{"quote missing payload", Snapshot{Type: ShareTypeQuote, SchemaVersion: 1}, true},
		{"quote with stray timeline", Snapshot{Type: ShareTypeQuote, SchemaVersion: 1, Quote: quote, Timeline: timeline}, true},
		{"combined missing timeline", Snapshot{Type: ShareTypeCombined, SchemaVersion: 1, Quote: quote}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.snap.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrSnapshotInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestShareBlob_EffectiveExpiry(t *testing.T) {
	metaExp := time.Now().Add(time.Hour)
	entryExp := time.Now().Add(2 * time.Hour)

	blob := &ShareBlob{Meta: BlobMeta{ExpiresAt: &metaExp}}
	entry := &IdMapEntry{ExpiresAt: &entryExp}

	// 信封优先
	assert.Equal(t, &metaExp, blob.EffectiveExpiry(entry))

	// 信封缺失时回退到映射条目
	blob.Meta.ExpiresAt = nil
	assert.Equal(t, &entryExp, blob.EffectiveExpiry(entry))

	// 两者皆空
	assert.Nil(t, blob.EffectiveExpiry(&IdMapEntry{}))
	assert.Nil(t, blob.EffectiveExpiry(nil))
}

func TestCodec_RoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	blob := &ShareBlob{
		Meta: BlobMeta{
			ID:        "a1b2c3d4e5f6",
			Type:      ShareTypeQuote,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Data: Snapshot{
			Type:          ShareTypeQuote,
			SchemaVersion: 1,
			Quote:         json.RawMessage(`{"total":100,"currency":"USD"}`),
		},
	}

	content, err := EncodeShareBlob(blob, DefaultMaxBlobSize)
	require.NoError(t, err)

	decoded, err := DecodeShareBlob(content)
	require.NoError(t, err)
	assert.Equal(t, blob.Meta.ID, decoded.Meta.ID)
	assert.Equal(t, blob.Meta.Type, decoded.Meta.Type)
	assert.JSONEq(t, string(blob.Data.Quote), string(decoded.Data.Quote))
}

func TestCodec_SizeCap(t *testing.T) {
	big := make([]byte, 600*1024)
	for i := range big {
		big[i] = 'a'
	}
	payload, _ := json.Marshal(string(big))

	blob := &ShareBlob{
		Meta: BlobMeta{ID: "a1b2c3d4e5f6", Type: ShareTypeQuote},
		Data: Snapshot{Type: ShareTypeQuote, SchemaVersion: 1, Quote: payload},
	}

	_, err := EncodeShareBlob(blob, DefaultMaxBlobSize)
	assert.ErrorIs(t, err, ErrBlobTooLarge)
}

func TestCodec_Corrupt(t *testing.T) {
	// 非法 JSON
	_, err := DecodeShareBlob([]byte(`{"meta":`))
	assert.ErrorIs(t, err, ErrBlobCorrupt)

	// 结构完整但类型不匹配
	_, err = DecodeShareBlob([]byte(`{"meta":{"id":"x","type":"quote"},"data":{"type":"timeline","schemaVersion":1,"timeline":{}}}`))
	assert.ErrorIs(t, err, ErrBlobCorrupt)

	// meta.id 缺失
	_, err = DecodeShareBlob([]byte(`{"meta":{"type":"quote"},"data":{"type":"quote","schemaVersion":1,"quote":{}}}`))
	assert.ErrorIs(t, err, ErrBlobCorrupt)
}

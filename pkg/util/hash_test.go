package util

import (
	"strings"
	"testing"
)

func TestEncodeOwnerBucket(t *testing.T) {
	b1 := EncodeOwnerBucket("owner-1", "salt")
	b2 := EncodeOwnerBucket("owner-1", "salt")
	b3 := EncodeOwnerBucket("owner-2", "salt")
	b4 := EncodeOwnerBucket("owner-1", "other-salt")

	// 相同输入必须稳定
	if b1 != b2 {
		t.Errorf("bucket not deterministic: %s != %s", b1, b2)
	}
	// 不同所有者、不同盐值必须得到不同桶
	if b1 == b3 {
		t.Errorf("different owners mapped to same bucket: %s", b1)
	}
	if b1 == b4 {
		t.Errorf("different salts mapped to same bucket: %s", b1)
	}

	if len(b1) != OwnerBucketLength {
		t.Errorf("bucket length = %d, want %d", len(b1), OwnerBucketLength)
	}
	// 桶标识不能泄露原始身份
	if strings.Contains(b1, "owner-1") {
		t.Errorf("bucket leaks raw identity: %s", b1)
	}
}

func TestGenerateShareID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := GenerateShareID(DefaultShareIDLength)
		if len(id) != DefaultShareIDLength {
			t.Fatalf("id length = %d, want %d", len(id), DefaultShareIDLength)
		}
		for _, c := range id {
			if !strings.ContainsRune(charset, c) {
				t.Fatalf("id contains invalid character %q", c)
			}
		}
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate id generated within 1000 draws: %s", id)
		}
		seen[id] = struct{}{}
	}
}

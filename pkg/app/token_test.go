package app

import (
	"testing"
	"time"
)

func TestTokenManager_GenerateAndParse(t *testing.T) {
	cfg := TokenConfig{
		SecretKey: "owner-secret",
		Expiry:    1 * time.Hour,
		Issuer:    "test-issuer",
	}
	tm := NewTokenManager(cfg)

	ownerID := "device-a1b2c3"

	// 1. 生成和解析
	token, err := tm.Generate(ownerID, "127.0.0.1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	parsedClaims, err := tm.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if parsedClaims.OwnerID != ownerID {
		t.Errorf("Expected OwnerID %q, got %q", ownerID, parsedClaims.OwnerID)
	}

	// 验证 ExpiresAt (由于只存了秒级 Unix 戳，允许 1 秒内的误差)
	now := time.Now()
	expectedExp := now.Add(cfg.Expiry)
	if parsedClaims.ExpiresAt.Unix() < expectedExp.Unix()-1 || parsedClaims.ExpiresAt.Unix() > expectedExp.Unix()+1 {
		t.Errorf("Expected ExpiresAt around %v, got %v", expectedExp, parsedClaims.ExpiresAt)
	}

	// 2. 错误的密钥
	wrongKeyCfg := cfg
	wrongKeyCfg.SecretKey = "wrong-secret"
	tmWrongKey := NewTokenManager(wrongKeyCfg)

	wrongToken, _ := tmWrongKey.Generate(ownerID, "127.0.0.1")
	if _, err = tm.Parse(wrongToken); err == nil {
		t.Error("Expected error when parsing token with wrong secret key, but got nil")
	}

	// 3. 篡改后的 Token
	tamperedToken := token + "tampered"
	if _, err = tm.Parse(tamperedToken); err == nil {
		t.Error("Expected error when parsing tampered token, but got nil")
	}
}

func TestTokenManager_Expired(t *testing.T) {
	tm := NewTokenManager(TokenConfig{
		SecretKey: "owner-secret",
		Expiry:    -1 * time.Hour,
	})

	token, err := tm.Generate("device-x", "127.0.0.1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if err := tm.Validate(token); err == nil {
		t.Error("Expected error when validating expired token, but got nil")
	}
}

package util

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
)

// EncodeMD5 对字符串进行MD5编码
// str: 待编码的字符串
// 返回值: MD5编码后的32位十六进制字符串
func EncodeMD5(str string) string {
	h := md5.New()
	h.Write([]byte(str))
	return hex.EncodeToString(h.Sum(nil))
}

// OwnerBucketLength 所有者桶标识长度（十六进制字符数）
const OwnerBucketLength = 16

// EncodeOwnerBucket 将所有者身份单向映射为桶标识
// 存储路径中只出现桶标识，不出现原始身份
// ownerID: 身份提供方给出的所有者身份
// salt: 部署级盐值，防止离线字典枚举
func EncodeOwnerBucket(ownerID string, salt string) string {
	mac := hmac.New(sha256.New, []byte(salt))
	mac.Write([]byte(ownerID))
	return hex.EncodeToString(mac.Sum(nil))[:OwnerBucketLength]
}

package util

import (
	cryptorand "crypto/rand"
	"math/big"
	"math/rand"
)

const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultShareIDLength 公开分享 ID 默认长度
// 62^12 ≈ 3.2e21，按构造保证碰撞可忽略，而非依赖存储层唯一性约束
const DefaultShareIDLength = 12

// GenerateShareID 生成指定长度的公开分享 ID
// 使用加密随机源，保证足够熵使碰撞属于异常情况
func GenerateShareID(length int) string {
	if length <= 0 {
		length = DefaultShareIDLength
	}
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, length)
	for i := range b {
		n, err := cryptorand.Int(cryptorand.Reader, max)
		if err != nil {
			// 加密随机源不可用时退回到全局 rand
			// 熵仍然足够使碰撞只是异常情况
			b[i] = charset[rand.Intn(len(charset))]
			continue
		}
		b[i] = charset[n.Int64()]
	}
	return string(b)
}

// GetRandomString 生成指定长度的随机字符串
func GetRandomString(length int) string {
	b := make([]byte, length)
	for i := range b {
		// 直接使用全局 rand，无需每次都 NewSource
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

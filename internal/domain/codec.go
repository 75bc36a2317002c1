package domain

import (
	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// EncodeShareBlob 序列化内容信封
// maxSize > 0 时对编码结果执行大小上限检查，超限返回 ErrBlobTooLarge
func EncodeShareBlob(blob *ShareBlob, maxSize int) ([]byte, error) {
	content, err := sonic.Marshal(blob)
	if err != nil {
		return nil, errors.Wrap(err, "encode share blob")
	}
	if maxSize > 0 && len(content) > maxSize {
		return nil, errors.Wrapf(ErrBlobTooLarge, "%d bytes > cap %d", len(content), maxSize)
	}
	return content, nil
}

// DecodeShareBlob 反序列化并校验内容信封
// 结构不合法一律归为 ErrBlobCorrupt，与对象缺失严格区分
func DecodeShareBlob(content []byte) (*ShareBlob, error) {
	var blob ShareBlob
	if err := sonic.Unmarshal(content, &blob); err != nil {
		return nil, errors.Wrap(ErrBlobCorrupt, err.Error())
	}
	if err := blob.Validate(); err != nil {
		return nil, err
	}
	return &blob, nil
}

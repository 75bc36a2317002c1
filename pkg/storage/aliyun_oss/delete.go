package aliyun_oss

import (
	"context"

	"github.com/pkg/errors"
)

// Delete 删除对象，不存在时静默成功
func (p *OSS) Delete(_ context.Context, pathKey string) error {
	if err := p.ensureBucket(); err != nil {
		return errors.Wrap(err, "aliyun_oss")
	}
	fileKey := p.key(pathKey)

	if err := p.Bucket.DeleteObject(fileKey); err != nil {
		return errors.Wrap(err, "aliyun_oss")
	}
	return nil
}

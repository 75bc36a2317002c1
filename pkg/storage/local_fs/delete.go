package local_fs

import (
	"context"
	"os"

	"github.com/haierkeys/snapshot-share-service/pkg/fileurl"
)

// Delete 删除文件，不存在时静默成功
func (p *LocalFS) Delete(_ context.Context, pathKey string) error {
	dstFileKey := p.getSavePath() + pathKey
	if fileurl.IsExist(dstFileKey) {
		return os.Remove(dstFileKey)
	}
	return nil
}

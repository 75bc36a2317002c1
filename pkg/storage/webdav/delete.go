package webdav

import (
	"context"

	"github.com/pkg/errors"
	"github.com/studio-b12/gowebdav"
)

// Delete 删除对象，不存在时静默成功
func (w *WebDAV) Delete(_ context.Context, pathKey string) error {
	fileKey := w.key(pathKey)

	if err := w.Client.Remove(fileKey); err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil
		}
		return errors.Wrap(err, "webdav")
	}
	return nil
}

package webdav

import (
	"context"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/haierkeys/snapshot-share-service/pkg/fileurl"

	"github.com/pkg/errors"
	"github.com/studio-b12/gowebdav"
)

func (w *WebDAV) key(pathKey string) string {
	return fileurl.PathSuffixCheckAdd(w.Config.CustomPath, "/") + pathKey
}

// PutContent 将二进制内容上传到 WebDAV 服务器，整体覆盖
func (w *WebDAV) PutContent(_ context.Context, pathKey string, content []byte, _ string) (string, error) {
	fileKey := w.key(pathKey)

	if dir := path.Dir(fileKey); dir != "." && dir != "/" {
		if err := w.Client.MkdirAll(dir, 0755); err != nil {
			return "", errors.Wrap(err, "webdav")
		}
	}

	if err := w.Client.Write(fileKey, content, os.ModePerm); err != nil {
		return "", errors.Wrap(err, "webdav")
	}
	return fileKey, nil
}

// GetContent 读取对象全部内容
func (w *WebDAV) GetContent(_ context.Context, pathKey string) ([]byte, error) {
	fileKey := w.key(pathKey)

	content, err := w.Client.Read(fileKey)
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return nil, fs.ErrNotExist
		}
		return nil, errors.Wrap(err, "webdav")
	}
	return content, nil
}

// Head 探测对象是否存在
func (w *WebDAV) Head(_ context.Context, pathKey string) (bool, error) {
	fileKey := w.key(pathKey)

	_, err := w.Client.Stat(fileKey)
	if err != nil {
		if gowebdav.IsErrNotFound(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "webdav")
	}
	return true, nil
}

// List 按前缀列举对象 key，返回的 key 不含 CustomPath 前缀
// WebDAV 没有原生前缀列举，从前缀所在目录向下递归遍历
func (w *WebDAV) List(_ context.Context, prefix string) ([]string, error) {
	custom := fileurl.PathSuffixCheckAdd(w.Config.CustomPath, "/")
	full := custom + prefix

	root := path.Dir(full)
	if strings.HasSuffix(full, "/") {
		root = strings.TrimSuffix(full, "/")
	}

	var keys []string
	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := w.Client.ReadDir(dir)
		if err != nil {
			if gowebdav.IsErrNotFound(err) {
				return nil
			}
			return errors.Wrap(err, "webdav")
		}
		for _, entry := range entries {
			childKey := dir + "/" + entry.Name()
			if entry.IsDir() {
				if err := walk(childKey); err != nil {
					return err
				}
				continue
			}
			rel := strings.TrimPrefix(childKey, custom)
			rel = strings.TrimPrefix(rel, "/")
			if strings.HasPrefix(rel, prefix) {
				keys = append(keys, rel)
			}
		}
		return nil
	}
	if err := walk(strings.TrimSuffix(root, "/")); err != nil {
		return nil, err
	}
	return keys, nil
}

package local_fs

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// PutContent 写入本地文件，整体覆盖
func (p *LocalFS) PutContent(_ context.Context, pathKey string, content []byte, _ string) (string, error) {
	dstFileKey := p.getSavePath() + pathKey

	if err := os.MkdirAll(filepath.Dir(dstFileKey), 0755); err != nil {
		return "", errors.Wrap(err, "local_fs")
	}
	if err := os.WriteFile(dstFileKey, content, 0644); err != nil {
		return "", errors.Wrap(err, "local_fs")
	}
	return pathKey, nil
}

// GetContent 读取本地文件全部内容
func (p *LocalFS) GetContent(_ context.Context, pathKey string) ([]byte, error) {
	dstFileKey := p.getSavePath() + pathKey

	content, err := os.ReadFile(dstFileKey)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fs.ErrNotExist
		}
		return nil, errors.Wrap(err, "local_fs")
	}
	return content, nil
}

// Head 探测文件是否存在
func (p *LocalFS) Head(_ context.Context, pathKey string) (bool, error) {
	dstFileKey := p.getSavePath() + pathKey

	_, err := os.Stat(dstFileKey)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "local_fs")
	}
	return true, nil
}

// List 按前缀列举文件 key
func (p *LocalFS) List(_ context.Context, prefix string) ([]string, error) {
	savePath := p.getSavePath()

	var keys []string
	err := filepath.WalkDir(savePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel := strings.TrimPrefix(filepath.ToSlash(path), savePath)
		if strings.HasPrefix(rel, prefix) {
			keys = append(keys, rel)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "local_fs")
	}
	return keys, nil
}

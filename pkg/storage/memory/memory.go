// Package memory 内存对象存储后端
// 用于本地开发与测试，进程退出即丢失
package memory

import (
	"context"
	"io/fs"
	"sort"
	"strings"
	"sync"
)

type Store struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewClient() *Store {
	return &Store{
		objects: make(map[string][]byte),
	}
}

// PutContent 写入对象，整体覆盖
func (s *Store) PutContent(_ context.Context, pathKey string, content []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := make([]byte, len(content))
	copy(buf, content)
	s.objects[pathKey] = buf
	return pathKey, nil
}

// GetContent 读取对象全部内容
func (s *Store) GetContent(_ context.Context, pathKey string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.objects[pathKey]
	if !ok {
		return nil, fs.ErrNotExist
	}
	buf := make([]byte, len(content))
	copy(buf, content)
	return buf, nil
}

// Head 探测对象是否存在
func (s *Store) Head(_ context.Context, pathKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.objects[pathKey]
	return ok, nil
}

// Delete 删除对象，不存在时静默成功
func (s *Store) Delete(_ context.Context, pathKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, pathKey)
	return nil
}

// List 按前缀列举对象 key，结果有序
func (s *Store) List(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Len 返回对象数，仅测试用
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

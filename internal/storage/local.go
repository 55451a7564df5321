package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ImageStore 图片存储接口：写入 path 对应的对象并返回可访问的 URL。
type ImageStore interface {
	Save(r io.Reader, path string) (string, error)
}

// LocalStore 本地磁盘存储实现
type LocalStore struct {
	baseDir string
	baseURL string
}

var _ ImageStore = (*LocalStore)(nil)

// NewLocalStore 创建本地存储实例
func NewLocalStore(baseDir, baseURL string) *LocalStore {
	return &LocalStore{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Save 将内容写入 baseDir 下的 path 并返回访问 URL。
// 写入失败时清理半成品文件。
func (s *LocalStore) Save(r io.Reader, path string) (string, error) {
	clean := strings.TrimLeft(filepath.ToSlash(filepath.Clean("/"+path)), "/")
	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(clean))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("create upload directory: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("write upload file: %w", err)
	}

	return s.baseURL + "/" + clean, nil
}

package videostore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"TikTokFactCheck/internal/logger"
)

// ErrOutsideRoot 表示路徑不在影片根目錄之下
var ErrOutsideRoot = errors.New("路徑不在影片根目錄之下")

var unsafeNameChars = regexp.MustCompile(`[^\p{L}\p{N}._-]+`)

// FileSystemStorage 管理 VIDEOS_DIR 底下的影片檔案
type FileSystemStorage struct {
	basePath string
	log      logger.Logger
}

// NewFileSystemStorage 建立影片儲存，根目錄不存在時會自動建立
func NewFileSystemStorage(videosDir string, log logger.Logger) (*FileSystemStorage, error) {
	if videosDir == "" {
		return nil, fmt.Errorf("影片目錄不得為空")
	}
	if log == nil {
		log = logger.NewNop()
	}
	absBasePath, err := filepath.Abs(videosDir)
	if err != nil {
		return nil, fmt.Errorf("無法取得影片目錄的絕對路徑 '%s': %w", videosDir, err)
	}
	if err := os.MkdirAll(absBasePath, 0o755); err != nil {
		return nil, fmt.Errorf("無法建立影片目錄 '%s': %w", absBasePath, err)
	}
	log.Info("[VideoStore] 初始化成功", logger.String("base_path", absBasePath))
	return &FileSystemStorage{basePath: absBasePath, log: log}, nil
}

// BasePath 回傳影片根目錄的絕對路徑
func (fs *FileSystemStorage) BasePath() string {
	return fs.basePath
}

// UserDir 回傳 (必要時建立) 使用者的子目錄
func (fs *FileSystemStorage) UserDir(username string) (string, error) {
	name := SanitizeName(strings.TrimPrefix(username, "@"))
	if name == "" {
		return "", fmt.Errorf("使用者名稱不得為空")
	}
	dir := filepath.Join(fs.basePath, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("無法建立使用者目錄 '%s': %w", dir, err)
	}
	return dir, nil
}

// AbsolutePath 將相對路徑轉為根目錄下的絕對路徑，拒絕路徑遍歷
func (fs *FileSystemStorage) AbsolutePath(relativePath string) (string, error) {
	if relativePath == "" {
		return "", fmt.Errorf("相對路徑不得為空")
	}
	absPath := filepath.Join(fs.basePath, filepath.FromSlash(relativePath))
	if !fs.contains(absPath) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, relativePath)
	}
	return absPath, nil
}

// RelativePath 回傳相對於根目錄的路徑 (斜線分隔)
func (fs *FileSystemStorage) RelativePath(absPath string) (string, error) {
	abs, err := filepath.Abs(absPath)
	if err != nil {
		return "", fmt.Errorf("無法解析路徑 '%s': %w", absPath, err)
	}
	if !fs.contains(abs) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, absPath)
	}
	rel, err := filepath.Rel(fs.basePath, abs)
	if err != nil {
		return "", fmt.Errorf("無法取得相對路徑 '%s': %w", absPath, err)
	}
	return filepath.ToSlash(rel), nil
}

// DeleteVideo 刪除影片檔案，並移除因此變空的使用者子目錄
func (fs *FileSystemStorage) DeleteVideo(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("無法解析路徑 '%s': %w", path, err)
	}
	if !fs.contains(abs) {
		return fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("無法刪除影片檔案 '%s': %w", abs, err)
	}
	fs.log.Info("[VideoStore] 影片已刪除", logger.String("path", abs))

	parentDir := filepath.Dir(abs)
	if parentDir != fs.basePath {
		if items, err := os.ReadDir(parentDir); err == nil && len(items) == 0 {
			_ = os.Remove(parentDir)
		}
	}
	return nil
}

func (fs *FileSystemStorage) contains(absPath string) bool {
	cleaned := filepath.Clean(absPath)
	return cleaned == fs.basePath || strings.HasPrefix(cleaned, fs.basePath+string(os.PathSeparator))
}

// SanitizeName 移除檔名中不安全的字元
func SanitizeName(name string) string {
	cleaned := unsafeNameChars.ReplaceAllString(strings.TrimSpace(name), "_")
	cleaned = strings.Trim(cleaned, "._")
	return cleaned
}

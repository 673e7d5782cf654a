package v2md

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	metadataFileName = "metadata.toml"
	topicFileName    = "topic.md"
	imagesDirName    = "images"
)

// Image 本地缓存的图片
type Image struct {
	URL        string `toml:"url"`        // 原始图片URL
	Local      string `toml:"local"`      // images/ 下的文件名
	FileSize   int64  `toml:"file_size"`  // 文件大小
	Downloaded bool   `toml:"downloaded"` // 是否已下载
}

// StoredTopic 本地保存的主题
type StoredTopic struct {
	Topic   Topic     `toml:"topic"`
	Replies []Reply   `toml:"replies"`
	Images  []Image   `toml:"images"`
	SavedAt time.Time `toml:"saved_at"`
}

// TopicStore manages saved topics in the user data directory. Each topic
// lives in <root>/<id>/ with metadata.toml, topic.md and images/.
type TopicStore struct {
	rootDir string
}

// NewTopicStore creates a topic store under the given root directory.
func NewTopicStore(rootDir string) *TopicStore {
	return &TopicStore{rootDir: rootDir}
}

// RootDir returns the root directory of the store.
func (ts *TopicStore) RootDir() string {
	return ts.rootDir
}

// EnsureRoot creates the root directory if missing.
func (ts *TopicStore) EnsureRoot() error {
	if ts.rootDir == "" {
		return NewConfigError("topic store root dir is empty", nil)
	}
	if err := os.MkdirAll(ts.rootDir, 0o755); err != nil {
		return NewIOError("failed to create topic store", err)
	}
	return nil
}

// TopicDir returns the directory path for one topic id.
func (ts *TopicStore) TopicDir(id int) string {
	return filepath.Join(ts.rootDir, strconv.Itoa(id))
}

// ImagesDir returns the image directory of one topic.
func (ts *TopicStore) ImagesDir(id int) string {
	return filepath.Join(ts.TopicDir(id), imagesDirName)
}

// SaveTopic writes metadata.toml and topic.md, replacing earlier copies.
func (ts *TopicStore) SaveTopic(stored *StoredTopic, markdown string) (string, error) {
	if stored == nil || stored.Topic.ID <= 0 {
		return "", NewValidationError("topic id is empty")
	}
	if err := ts.EnsureRoot(); err != nil {
		return "", err
	}

	dir := ts.TopicDir(stored.Topic.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", NewIOError("failed to create topic dir", err)
	}

	if stored.SavedAt.IsZero() {
		stored.SavedAt = time.Now()
	}
	metadata, err := toml.Marshal(stored)
	if err != nil {
		return "", NewIOError("failed to encode metadata", err)
	}
	if err := os.WriteFile(filepath.Join(dir, metadataFileName), metadata, 0o644); err != nil {
		return "", NewIOError("failed to write metadata", err)
	}
	if err := os.WriteFile(filepath.Join(dir, topicFileName), []byte(markdown), 0o644); err != nil {
		return "", NewIOError("failed to write topic markdown", err)
	}
	return dir, nil
}

// LoadTopic loads metadata.toml from the local store by id.
func (ts *TopicStore) LoadTopic(id int) (*StoredTopic, error) {
	if id <= 0 {
		return nil, NewValidationError("topic id is empty")
	}
	data, err := os.ReadFile(filepath.Join(ts.TopicDir(id), metadataFileName))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata from store: %w", err)
	}

	var stored StoredTopic
	if err := toml.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode metadata from store: %w", err)
	}
	return &stored, nil
}

// ExportTopic copies one stored topic directory into targetDir.
func (ts *TopicStore) ExportTopic(id int, targetDir string) (string, error) {
	if id <= 0 {
		return "", NewValidationError("topic id is empty")
	}
	if targetDir == "" {
		return "", NewValidationError("target dir is empty")
	}

	srcDir := ts.TopicDir(id)
	if _, err := os.Stat(srcDir); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("topic %d not found in local store", id)
		}
		return "", fmt.Errorf("failed to stat source dir: %w", err)
	}

	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create target dir: %w", err)
	}
	dstDir := filepath.Join(targetDir, strconv.Itoa(id))
	if err := copyDir(srcDir, dstDir); err != nil {
		return "", err
	}
	return dstDir, nil
}

func copyDir(srcDir, dstDir string) error {
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("failed to create destination root: %w", err)
	}

	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return fmt.Errorf("failed to build relative path: %w", err)
		}
		if rel == "." {
			return nil
		}

		dstPath := filepath.Join(dstDir, rel)
		if d.IsDir() {
			if err := os.MkdirAll(dstPath, 0o755); err != nil {
				return fmt.Errorf("failed to create destination dir: %w", err)
			}
			return nil
		}
		return copyFile(path, dstPath)
	})
}

func copyFile(srcPath, dstPath string) error {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file: %w", err)
	}

	dstFile, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}

	if err := os.Chmod(dstPath, srcInfo.Mode()); err != nil {
		return fmt.Errorf("failed to set destination file mode: %w", err)
	}
	return nil
}

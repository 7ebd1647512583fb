package ports

import (
	"bytes"
	"os"
	"path/filepath"

	atomicfile "github.com/natefinch/atomic"
)

// OSFilesystem implements Filesystem over the real disk, writing files
// atomically so a crash mid-write never leaves a tracked file half-written
// (grounded on FileManager.py's writeFile/moveFile, which relies on the
// same write-then-rename guarantee the OS filesystem gives a single
// directory).
type OSFilesystem struct{}

func (OSFilesystem) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}

func (OSFilesystem) Stat(path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return FileInfo{
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}, nil
}

func (OSFilesystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile writes data to path atomically: a temp file in the same
// directory is written and fsynced, then renamed over the destination, so
// a reader never observes a partial write.
func (OSFilesystem) WriteFile(path string, data []byte) error {
	return atomicfile.WriteFile(path, bytes.NewReader(data))
}

func (OSFilesystem) Remove(path string) error {
	return os.Remove(path)
}

func (OSFilesystem) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

func (OSFilesystem) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

var _ Filesystem = OSFilesystem{}

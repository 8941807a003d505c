// Package filesys provides the small set of file system operations the cc0
// stores and CLI drivers actually need: creating the data directory,
// creating or checking individual store files, listing segment-style
// artifacts, and copying a file aside before it gets overwritten.
package filesys

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	ErrIsNotDir = errors.New("path isn't a directory")
)

// CreateDir creates a directory at the specified path with the given permissions,
// then sets the directory's mode to 0755.
//
// If the directory already exists:
//   - If 'force' is true, it proceeds without error.
//   - If 'force' is false, it returns an error.
//
// It also returns an error if the existing path is a file (not a directory).
func CreateDir(dirPath string, permission os.FileMode, force bool) error {
	// Get file information for the given path.
	stat, err := os.Stat(dirPath)
	// If 'force' is false and the path exists
	// return the error (indicating the directory already exists).
	if !force && !os.IsNotExist(err) {
		if err == nil {
			return fmt.Errorf("directory %s already exists: %w", dirPath, os.ErrExist)
		}
		return err
	}

	// If the path exists and it's not a directory, return an error.
	if stat != nil && !stat.IsDir() {
		return ErrIsNotDir
	}

	// Create all necessary parent directories if they don't exist, with the specified permissions.
	if err := os.MkdirAll(dirPath, permission); err != nil {
		return err
	}

	// Change the permissions of the newly created directory to 0755 (rwxr-xr-x).
	return os.Chmod(dirPath, 0755)
}

// ReadDir lists paths under `dirName` matching a glob pattern (e.g.
// "backups/config-*.json"). Used for discovering segment-style artifacts
// that aren't tracked by any store's own cursor.
func ReadDir(dirName string) ([]string, error) {
	files, err := filepath.Glob(dirName)
	return files, err
}

// CreateFile creates a new file at the specified `filePath`.
//
// If the file already exists:
//   - If 'force' is true, it overwrites the existing file.
//   - If 'force' is false, it returns an error.
func CreateFile(filePath string, force bool) (*os.File, error) {
	// Check if the file exists.
	_, err := os.Stat(filePath)
	// If 'force' is false and the file exists, return an error.
	if !force && err == nil {
		return nil, fmt.Errorf("file %s already exists: %w", filePath, os.ErrExist)
	}
	// Create the file. If it exists and 'force' is true, it will be truncated.
	return os.Create(filePath)
}

// WriteFile writes the provided `contents` to the file at `filePath` with the given `permission`.
// If the file does not exist, it will be created. If it exists, it will be truncated.
func WriteFile(filePath string, permission os.FileMode, contents []byte) error {
	return os.WriteFile(filePath, contents, permission)
}

// CopyFile copies a single file from `sourcePath` to `destPath`.
// It reads the entire content of the source file into memory and then writes it to the destination.
// The destination file will have default permissions (0644).
func CopyFile(sourcePath, destPath string) error {
	// Read the entire content of the source file.
	input, err := os.ReadFile(sourcePath)
	if err != nil {
		return err
	}
	// Write the content to the destination file with permissions 0644 (rw-r--r--).
	return os.WriteFile(destPath, input, 0644)
}

// Exists checks if a file or directory at the given `file` path exists.
// It returns true if the file/directory exists, false if it does not,
// and an error if there's any other issue checking its status.
func Exists(file string) (bool, error) {
	_, err := os.Stat(file)
	if err == nil {
		return true, nil // Path exists.
	}
	// If the error indicates that the file does not exist, return false.
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

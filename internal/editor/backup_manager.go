// Package editor loads LaTeX documents, inserts corrections into exercise
// blocks and writes the result back with a backup.
package editor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"latex-corrector/internal/logger"
	"latex-corrector/internal/types"
)

// backupTimeLayout sorts lexicographically in chronological order.
const backupTimeLayout = "20060102_150405.000"

// BackupManager manages file backups for safe editing
type BackupManager struct {
	backupDir string
	now       func() time.Time
}

// NewBackupManager creates a new BackupManager
// If backupDir is empty, backups are created in the same directory as the original file
func NewBackupManager(backupDir string) *BackupManager {
	return &BackupManager{
		backupDir: backupDir,
		now:       time.Now,
	}
}

// CreateBackup copies the file next to itself (or into the backup directory)
// and returns the path to the backup file.
func (m *BackupManager) CreateBackup(path string) (string, error) {
	logger.Debug("creating backup", logger.String("path", path))

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", types.NewAppError(types.ErrFileNotFound, fmt.Sprintf("file does not exist: %s", path), err)
	}

	suffix := ".backup_" + m.now().Format(backupTimeLayout)
	backupPath := path + suffix
	if m.backupDir != "" {
		if err := os.MkdirAll(m.backupDir, 0755); err != nil {
			logger.Error("failed to create backup directory", err)
			return "", types.NewAppError(types.ErrInternal, "failed to create backup directory", err)
		}
		backupPath = filepath.Join(m.backupDir, filepath.Base(path)+suffix)
	}

	if err := copyFile(path, backupPath); err != nil {
		logger.Error("failed to copy file", err)
		return "", types.NewAppError(types.ErrInternal, "failed to create backup", err)
	}

	logger.Info("backup created", logger.String("backupPath", backupPath))
	return backupPath, nil
}

// Restore restores a file from its backup
func (m *BackupManager) Restore(backupPath string, originalPath string) error {
	logger.Debug("restoring from backup",
		logger.String("backupPath", backupPath),
		logger.String("originalPath", originalPath))

	if _, err := os.Stat(backupPath); os.IsNotExist(err) {
		return types.NewAppError(types.ErrFileNotFound, fmt.Sprintf("backup file does not exist: %s", backupPath), err)
	}

	if err := copyFile(backupPath, originalPath); err != nil {
		logger.Error("failed to restore backup", err)
		return types.NewAppError(types.ErrInternal, "failed to restore backup", err)
	}

	logger.Info("file restored from backup", logger.String("path", originalPath))
	return nil
}

// ListBackups lists all backups for a given file, newest first
func (m *BackupManager) ListBackups(path string) ([]string, error) {
	searchDir := filepath.Dir(path)
	if m.backupDir != "" {
		searchDir = m.backupDir
	}

	entries, err := os.ReadDir(searchDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var backups []string
	prefix := filepath.Base(path) + ".backup_"
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			backups = append(backups, filepath.Join(searchDir, entry.Name()))
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(backups)))
	return backups, nil
}

// CleanupBackups removes old backups, keeping only the most recent N backups
func (m *BackupManager) CleanupBackups(path string, keepCount int) error {
	backups, err := m.ListBackups(path)
	if err != nil {
		return err
	}

	removed := 0
	for i := keepCount; i < len(backups); i++ {
		if err := os.Remove(backups[i]); err != nil {
			logger.Warn("failed to remove backup", logger.Err(err), logger.String("path", backups[i]))
			continue
		}
		removed++
	}

	if removed > 0 {
		logger.Info("backup cleanup completed",
			logger.Int("totalBackups", len(backups)),
			logger.Int("removed", removed))
	}
	return nil
}

// GetLatestBackup returns the path to the most recent backup for a file
func (m *BackupManager) GetLatestBackup(path string) (string, error) {
	backups, err := m.ListBackups(path)
	if err != nil {
		return "", err
	}
	if len(backups) == 0 {
		return "", types.NewAppError(types.ErrFileNotFound, fmt.Sprintf("no backups found for file: %s", path), nil)
	}
	return backups[0], nil
}

// copyFile copies a file from src to dst, keeping its permissions
func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return err
	}

	destFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, sourceInfo.Mode().Perm())
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}

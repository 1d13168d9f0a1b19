package editor

import (
	"fmt"
	"os"

	"latex-corrector/internal/logger"
	"latex-corrector/internal/types"
)

// DefaultMaxDocumentSize is the largest file LoadDocument accepts by default.
const DefaultMaxDocumentSize = 10 * 1024 * 1024

// Document is a LaTeX file decoded to UTF-8.
type Document struct {
	Path     string
	Text     string
	Encoding Encoding
}

// LoadDocument reads and decodes a LaTeX file. A non-positive maxSize uses
// DefaultMaxDocumentSize.
func LoadDocument(path string, maxSize int64) (*Document, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxDocumentSize
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.NewAppError(types.ErrFileNotFound, fmt.Sprintf("file not found: %s", path), err)
		}
		return nil, types.NewAppError(types.ErrInternal, "failed to stat file", err)
	}
	if info.IsDir() {
		return nil, types.NewAppError(types.ErrInvalidInput, fmt.Sprintf("%s is a directory", path), nil)
	}
	if info.Size() > maxSize {
		return nil, types.NewAppErrorWithDetails(
			types.ErrDocumentTooLarge,
			"document too large",
			fmt.Sprintf("%d bytes, limit is %d", info.Size(), maxSize),
			nil,
		)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("failed to read document", err, logger.String("path", path))
		return nil, types.NewAppError(types.ErrInternal, "failed to read file", err)
	}

	text, enc, err := Decode(data)
	if err != nil {
		return nil, err
	}

	logger.Debug("document loaded",
		logger.String("path", path),
		logger.Int("bytes", len(text)),
		logger.String("encoding", string(enc)))
	return &Document{Path: path, Text: text, Encoding: enc}, nil
}

// Save writes text to the document's file as UTF-8. When backups is not nil a
// backup of the current file is made first and restored if the write fails.
// It returns the backup path, or "" when no backup was made.
func (d *Document) Save(text string, backups *BackupManager) (string, error) {
	perm := os.FileMode(0644)
	if info, err := os.Stat(d.Path); err == nil {
		perm = info.Mode().Perm()
	}

	backupPath := ""
	if backups != nil {
		var err error
		if backupPath, err = backups.CreateBackup(d.Path); err != nil {
			return "", err
		}
	}

	if err := os.WriteFile(d.Path, []byte(text), perm); err != nil {
		logger.Error("failed to write document", err, logger.String("path", d.Path))
		if backupPath != "" {
			if restoreErr := backups.Restore(backupPath, d.Path); restoreErr != nil {
				logger.Error("failed to restore backup", restoreErr)
			}
		}
		return backupPath, types.NewAppError(types.ErrInternal, "failed to write file", err)
	}

	d.Text = text
	d.Encoding = EncodingUTF8
	logger.Info("document saved", logger.String("path", d.Path))
	return backupPath, nil
}

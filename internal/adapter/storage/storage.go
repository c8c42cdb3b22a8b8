// Package storage keeps uploaded files and derived assets, grouped by
// session so they can be dropped together when the session expires.
package storage

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"bloomforge/internal/config"
	"bloomforge/internal/domain"

	"go.uber.org/zap"
)

// New builds the FileStore selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig, uploadDir string, logger *zap.Logger) (domain.FileStore, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocal(uploadDir)
	case "minio":
		return NewMinio(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// objectName joins a session id and a client supplied file name, keeping
// only the base name so uploads cannot escape their session directory.
func objectName(sessionID, name string) (string, error) {
	if sessionID == "" || strings.ContainsAny(sessionID, `/\`) || sessionID == "." || sessionID == ".." {
		return "", fmt.Errorf("invalid session id %q", sessionID)
	}
	base := filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	if base == "." || base == "/" || base == ".." || base == "" {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return path.Join(sessionID, base), nil
}

package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Local stores files under a root directory on disk.
type Local struct {
	root string
}

func NewLocal(root string) (*Local, error) {
	if root == "" {
		root = "uploads"
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Local{root: abs}, nil
}

// Save writes data to <root>/<sessionID>/<name> and returns that path.
func (l *Local) Save(_ context.Context, sessionID, name string, data []byte, _ string) (string, error) {
	obj, err := objectName(sessionID, name)
	if err != nil {
		return "", err
	}
	full := filepath.Join(l.root, filepath.FromSlash(obj))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", obj, err)
	}
	return full, nil
}

func (l *Local) Open(_ context.Context, p string) (io.ReadCloser, error) {
	full, err := l.resolve(p)
	if err != nil {
		return nil, err
	}
	return os.Open(full)
}

func (l *Local) resolve(p string) (string, error) {
	full, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(full, l.root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is outside the upload dir", p)
	}
	return full, nil
}

func (l *Local) Delete(_ context.Context, p string) error {
	full, err := l.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", p, err)
	}
	return nil
}

// DeleteSession removes the session directory. A missing directory is not an error.
func (l *Local) DeleteSession(_ context.Context, sessionID string) error {
	obj, err := objectName(sessionID, "x")
	if err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(l.root, filepath.Dir(filepath.FromSlash(obj))))
}

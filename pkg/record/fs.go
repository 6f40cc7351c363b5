package record

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	pkgerrors "github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/errors"
)

// fsStore keeps records as files under a root directory. It backs the local
// snapshot caches and the local vote log.
type fsStore struct {
	mu   sync.Mutex
	root string
}

func NewFS(root string) (Store, error) {
	if root == "" {
		return nil, pkgerrors.ErrEmptyKey
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}

	return &fsStore{root: root}, nil
}

func (s *fsStore) List(_ context.Context, prefix string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if strings.HasPrefix(rel, prefix) {
			paths = append(paths, rel)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}

func (s *fsStore) ReadJSON(_ context.Context, path string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(path)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return pkgerrors.ErrNotFound
		}

		return err
	}

	return json.Unmarshal(data, v)
}

func (s *fsStore) WriteJSON(_ context.Context, path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}

	return os.WriteFile(full, data, 0o644)
}

func (s *fsStore) AppendLine(_ context.Context, path, line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	full := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(full, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(line + "\n")

	return err
}

func (s *fsStore) ReadLines(_ context.Context, path string) ([]string, error) {
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(path)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}

	return lines, sc.Err()
}

func (s *fsStore) Upload(_ context.Context, localPath, remotePath, _ string) error {
	src, err := os.Open(localPath)
	if err != nil {
		return errors.Join(pkgerrors.ErrTransfer, err)
	}
	defer src.Close()

	full := filepath.Join(s.root, filepath.FromSlash(remotePath))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return errors.Join(pkgerrors.ErrTransfer, err)
	}
	dst, err := os.Create(full)
	if err != nil {
		return errors.Join(pkgerrors.ErrTransfer, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return errors.Join(pkgerrors.ErrTransfer, err)
	}

	return nil
}

// Root exposes the underlying directory of a filesystem store, for callers
// that hand paths to external tools.
func Root(s Store) string {
	if f, ok := s.(*fsStore); ok {
		return f.root
	}

	return ""
}

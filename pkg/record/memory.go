package record

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"

	pkgerrors "github.com/leaderboard-modeles-IA-francais/leaderboard/pkg/errors"
)

// memStore is an in-memory store used in tests and for ephemeral state.
type memStore struct {
	sync.Mutex

	objects map[string][]byte
	lines   map[string][]string
}

func NewInMemory() Store {
	return &memStore{
		objects: make(map[string][]byte),
		lines:   make(map[string][]string),
	}
}

func (s *memStore) List(_ context.Context, prefix string) ([]string, error) {
	s.Lock()
	defer s.Unlock()

	var paths []string
	for p := range s.objects {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}
	for p := range s.lines {
		if strings.HasPrefix(p, prefix) {
			paths = append(paths, p)
		}
	}

	return paths, nil
}

func (s *memStore) ReadJSON(_ context.Context, path string, v any) error {
	s.Lock()
	defer s.Unlock()

	data, ok := s.objects[path]
	if !ok {
		return pkgerrors.ErrNotFound
	}

	return json.Unmarshal(data, v)
}

func (s *memStore) WriteJSON(_ context.Context, path string, v any) error {
	if path == "" {
		return pkgerrors.ErrEmptyKey
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	s.Lock()
	defer s.Unlock()
	s.objects[path] = data

	return nil
}

func (s *memStore) AppendLine(_ context.Context, path, line string) error {
	if path == "" {
		return pkgerrors.ErrEmptyKey
	}

	s.Lock()
	defer s.Unlock()
	s.lines[path] = append(s.lines[path], line)

	return nil
}

func (s *memStore) ReadLines(_ context.Context, path string) ([]string, error) {
	s.Lock()
	defer s.Unlock()

	return append([]string(nil), s.lines[path]...), nil
}

func (s *memStore) Upload(_ context.Context, localPath, remotePath, _ string) error {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return pkgerrors.ErrTransfer
	}

	s.Lock()
	defer s.Unlock()
	s.objects[remotePath] = data

	return nil
}

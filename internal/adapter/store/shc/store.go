package shc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.ngs.io/geomag-api/internal/adapter/store"
	"go.ngs.io/geomag-api/internal/adapter/store/csv"
	"go.ngs.io/geomag-api/internal/domain"
)

// loaders maps file extensions (lower case) to their parsers. SHC wins when
// a directory holds both forms of one model.
var loaders = map[string]func(path string) (*domain.CoefficientTable, error){
	".shc": LoadFile,
	".csv": csv.LoadFile,
}

// Store serves the coefficient files (SHC, or CSV coefficient tables) of one
// directory. Tables are parsed on first
// use and cached for the lifetime of the store.
type Store struct {
	dir   string
	cache map[string]*domain.CoefficientTable // Keyed by upper-case model name.
	mu    sync.RWMutex                        // Protect cache.
}

var _ store.ModelLoader = (*Store)(nil)

// NewStore creates a store over dir.
func NewStore(dir string) *Store {
	return &Store{
		dir:   dir,
		cache: make(map[string]*domain.CoefficientTable),
	}
}

// Load returns the table of the named model, parsing <dir>/<name>.SHC or
// <dir>/<name>.csv (extension and name matched case-insensitively) on first
// use.
func (s *Store) Load(name string) (*domain.CoefficientTable, error) {
	key := strings.ToUpper(strings.TrimSpace(name))
	if key == "" {
		return nil, fmt.Errorf("%w: empty model name", store.ErrModelNotFound)
	}

	s.mu.RLock()
	table, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return table, nil
	}

	files, err := s.files()
	if err != nil {
		return nil, err
	}
	path, ok := files[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", store.ErrModelNotFound, name, s.dir)
	}

	table, err = loaders[strings.ToLower(filepath.Ext(path))](path)
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another goroutine may have won the race; keep the first table.
	if cached, ok := s.cache[key]; ok {
		return cached, nil
	}
	s.cache[key] = table
	return table, nil
}

// List loads and describes every model in the directory, sorted by name.
func (s *Store) List() ([]store.ModelInfo, error) {
	files, err := s.files()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]store.ModelInfo, 0, len(names))
	for _, name := range names {
		table, err := s.Load(name)
		if err != nil {
			return nil, err
		}
		out = append(out, store.Describe(table))
	}
	return out, nil
}

// files maps model names to the coefficient files of the directory.
func (s *Store) files() (map[string]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("models directory %s does not exist: %w", s.dir, err)
		}
		return nil, fmt.Errorf("failed to read models directory: %w", err)
	}

	out := make(map[string]string)
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if _, ok := loaders[ext]; entry.IsDir() || !ok {
			continue
		}
		name := ModelName(entry.Name())
		if prev, ok := out[name]; ok && strings.EqualFold(filepath.Ext(prev), ".shc") {
			continue
		}
		out[name] = filepath.Join(s.dir, entry.Name())
	}
	return out, nil
}

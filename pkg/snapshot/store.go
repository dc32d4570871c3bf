package snapshot

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tabkit/tabkit/pkg/errors"
)

// Store persists snapshot states. Implementations exist for the local
// filesystem, Redis, and S3-compatible object storage.
type Store interface {
	// Save persists a snapshot state.
	Save(ctx context.Context, st *State) error

	// Load retrieves a snapshot by id.
	Load(ctx context.Context, id string) (*State, error)

	// List returns all snapshots, newest first.
	List(ctx context.Context) ([]*State, error)

	// Delete removes a snapshot by id.
	Delete(ctx context.Context, id string) error

	// Name identifies the store implementation.
	Name() string
}

const localExt = ".snapshot.json"

// LocalStore keeps snapshots as JSON files in a directory.
type LocalStore struct {
	dir string
}

// NewLocalStore creates a filesystem store rooted at dir, creating the
// directory when missing.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeSnapshot, "resolve home directory")
		}
		dir = filepath.Join(home, ".tabkit", "snapshots")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, errors.CodeSnapshot, "create snapshot directory %s", dir)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the store's root directory.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Name identifies the store implementation.
func (s *LocalStore) Name() string {
	return "local"
}

func (s *LocalStore) path(id string) string {
	return filepath.Join(s.dir, id+localExt)
}

// Save writes the state atomically via a temp file rename.
func (s *LocalStore) Save(_ context.Context, st *State) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return errors.Wrapf(err, errors.CodeSnapshot, "marshal snapshot %s", st.ID)
	}

	path := s.path(st.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, errors.CodeSnapshot, "write snapshot %s", st.ID)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrapf(err, errors.CodeSnapshot, "finalize snapshot %s", st.ID)
	}
	return nil
}

// Load reads a snapshot by id.
func (s *LocalStore) Load(_ context.Context, id string) (*State, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.CodeSnapshot, "snapshot not found: %s", id)
		}
		return nil, errors.Wrapf(err, errors.CodeSnapshot, "read snapshot %s", id)
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, errors.Wrapf(err, errors.CodeSnapshot, "parse snapshot %s", id)
	}
	return &st, nil
}

// List returns all snapshots in the directory, newest first. Files that
// fail to parse are skipped.
func (s *LocalStore) List(_ context.Context) ([]*State, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeSnapshot, "list snapshot directory %s", s.dir)
	}

	var states []*State
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), localExt) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			continue
		}
		var st State
		if err := json.Unmarshal(data, &st); err != nil {
			continue
		}
		states = append(states, &st)
	}

	sort.Slice(states, func(i, j int) bool {
		return states[i].CreatedAt.After(states[j].CreatedAt)
	})
	return states, nil
}

// Delete removes a snapshot file. Deleting a missing snapshot is not an
// error.
func (s *LocalStore) Delete(_ context.Context, id string) error {
	if err := os.Remove(s.path(id)); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.CodeSnapshot, "delete snapshot %s", id)
	}
	return nil
}

// Compile-time interface check
var _ Store = (*LocalStore)(nil)

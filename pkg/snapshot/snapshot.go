// Package snapshot provides container state persistence for
// long-running edit sessions. A snapshot is a full point-in-time copy
// of one container; stores keep snapshots locally, in Redis, or in S3.
package snapshot

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tabkit/tabkit/pkg/container"
	"github.com/tabkit/tabkit/pkg/diag"
	"github.com/tabkit/tabkit/pkg/errors"
)

// State is a point-in-time copy of a container.
type State struct {
	// Identification
	ID   string `json:"id"`
	Name string `json:"name"`

	// Shape
	SourcePath  string   `json:"source_path,omitempty"`
	Orientation string   `json:"orientation"`
	Delimiter   string   `json:"delimiter"`
	Headers     []string `json:"headers"`

	// Metadata declarations
	MetaKeys []string          `json:"meta_keys,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`

	// Data
	Rows [][]string `json:"rows"`

	CreatedAt time.Time `json:"created_at"`
}

// Capture copies the container into a new snapshot state.
func Capture(c *container.Container, name string) *State {
	st := &State{
		ID:          uuid.NewString(),
		Name:        name,
		SourcePath:  c.Path(),
		Orientation: c.Orientation().String(),
		Delimiter:   c.Delimiter(),
		Headers:     c.HeaderNames(),
		MetaKeys:    c.MetadataKeys(),
		Rows:        c.Records(),
		CreatedAt:   time.Now().UTC(),
	}
	if len(st.MetaKeys) > 0 {
		st.Metadata = make(map[string]string, len(st.MetaKeys))
		for _, k := range st.MetaKeys {
			if v, ok := c.MetadataValue(k); ok {
				st.Metadata[k] = v
			}
		}
	}
	return st
}

// Restore rebuilds a container from a snapshot state. The snapshot's
// orientation, delimiter, headers, metadata, and records come back
// exactly as captured; additional options apply on top.
func Restore(st *State, opts ...container.Option) (*container.Container, error) {
	orient, ok := container.ParseOrientation(st.Orientation)
	if !ok {
		return nil, errors.Newf(errors.CodeSnapshot, "snapshot %s has unknown orientation %q", st.ID, st.Orientation)
	}

	base := []container.Option{
		container.WithOrientation(orient),
		container.WithDelimiter(st.Delimiter),
	}
	c := container.New(append(base, opts...)...)

	// Metadata first so SetHeaders can mark the trailing meta headers.
	for _, k := range st.MetaKeys {
		c.SetMetadata(k, st.Metadata[k])
	}
	c.SetHeaders(st.Headers)

	for i, row := range st.Rows {
		if err := c.AddRow(row, nil); err != nil {
			return nil, errors.Wrapf(err, errors.CodeSnapshot, "restore row %d of snapshot %s", i, st.ID)
		}
	}

	if st.SourcePath != "" {
		c.Attach(st.SourcePath)
	}
	return c, nil
}

// Manager couples a store with an interval for automatic snapshots.
type Manager struct {
	store    Store
	interval time.Duration
	log      *slog.Logger
}

// NewManager creates a snapshot manager. A zero interval disables
// automatic snapshots; Save and Restore still work.
func NewManager(store Store, interval time.Duration, log *slog.Logger) *Manager {
	if log == nil {
		log = diag.Discard()
	}
	return &Manager{store: store, interval: interval, log: log}
}

// Store returns the underlying store.
func (m *Manager) Store() Store {
	return m.store
}

// Save captures the container and persists it.
func (m *Manager) Save(ctx context.Context, c *container.Container, name string) (*State, error) {
	st := Capture(c, name)
	if err := m.store.Save(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Restore loads a snapshot by id and rebuilds the container.
func (m *Manager) Restore(ctx context.Context, id string, opts ...container.Option) (*container.Container, error) {
	st, err := m.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return Restore(st, opts...)
}

// Latest returns the most recent snapshot carrying the given name; an
// empty name matches every snapshot.
func (m *Manager) Latest(ctx context.Context, name string) (*State, error) {
	states, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}

	var latest *State
	for _, st := range states {
		if name != "" && st.Name != name {
			continue
		}
		if latest == nil || st.CreatedAt.After(latest.CreatedAt) {
			latest = st
		}
	}
	if latest == nil {
		return nil, errors.Newf(errors.CodeSnapshot, "no snapshot named %q", name)
	}
	return latest, nil
}

// Prune deletes old snapshots, keeping the newest keep per name. It
// returns the deleted states.
func (m *Manager) Prune(ctx context.Context, keep int) ([]*State, error) {
	if keep < 1 {
		return nil, errors.Newf(errors.CodeSnapshot, "keep must be at least 1, got %d", keep)
	}
	states, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}

	// List is newest first, so anything past the first keep per name
	// is stale.
	retained := make(map[string]int)
	var pruned []*State
	for _, st := range states {
		retained[st.Name]++
		if retained[st.Name] <= keep {
			continue
		}
		if err := m.store.Delete(ctx, st.ID); err != nil {
			return pruned, errors.Wrapf(err, errors.CodeSnapshot, "prune snapshot %s", st.ID)
		}
		m.log.Debug("pruned snapshot", "id", st.ID, "name", st.Name)
		pruned = append(pruned, st)
	}
	return pruned, nil
}

// Start begins interval snapshots of the container. The returned stop
// function takes one final snapshot and reports its outcome. With a
// zero interval only the final snapshot is taken. The container must
// not be mutated while a tick runs; callers serialize access.
func (m *Manager) Start(ctx context.Context, c *container.Container, name string) func() error {
	done := make(chan struct{})
	finished := make(chan error, 1)

	go func() {
		// A nil tick channel blocks forever, leaving only the final
		// snapshot on stop.
		var tick <-chan time.Time
		if m.interval > 0 {
			ticker := time.NewTicker(m.interval)
			defer ticker.Stop()
			tick = ticker.C
		}
		for {
			select {
			case <-done:
				_, err := m.Save(ctx, c, name)
				finished <- err
				return
			case <-ctx.Done():
				finished <- ctx.Err()
				return
			case <-tick:
				if _, err := m.Save(ctx, c, name); err != nil {
					m.log.Warn("auto snapshot failed", "name", name, "error", err)
				}
			}
		}
	}()

	var once sync.Once
	return func() error {
		var err error
		once.Do(func() {
			close(done)
			err = <-finished
		})
		return err
	}
}

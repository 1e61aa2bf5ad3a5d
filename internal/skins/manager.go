package skins

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tile2048/internal/core"
	"github.com/vovakirdan/tile2048/internal/games/t2048"
)

// ErrNotPersisted wraps store failures. The in-memory set is already updated
// when it is returned.
var ErrNotPersisted = errors.New("skins: not persisted")

// Store persists skins in their stringified-key form. *storage.Store satisfies it.
type Store interface {
	TileImages() (map[string]string, error)
	SaveTileImages(images map[string]string) error
}

// Manager owns the active skin set, keeps it in sync with a Store and caches
// each image's dominant colour for terminal rendering. Safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	store  Store
	logger *log.Logger
	size   int

	set    Set
	colors map[int]core.Color
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger used for skipped entries and colour failures.
func WithLogger(l *log.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithImageSize sets the edge length used by Import.
func WithImageSize(size int) ManagerOption {
	return func(m *Manager) {
		if size > 0 {
			m.size = size
		}
	}
}

// NewManager loads the persisted set. A nil store keeps skins in memory only.
// Corrupt entries are logged and dropped; a store read failure is returned.
func NewManager(store Store, opts ...ManagerOption) (*Manager, error) {
	m := &Manager{
		store:  store,
		logger: log.Default(),
		size:   DefaultImageSize,
		set:    Set{},
		colors: map[int]core.Color{},
	}
	for _, opt := range opts {
		opt(m)
	}

	if store == nil {
		return m, nil
	}

	raw, err := store.TileImages()
	if err != nil {
		return m, fmt.Errorf("skins: load: %w", err)
	}
	set, err := Decode(raw)
	if err != nil {
		m.logger.Warn("skipping invalid tile images", "err", err)
	}
	m.set = set
	for v, ref := range set {
		m.cacheColor(v, ref)
	}
	return m, nil
}

// cacheColor computes the dominant colour for a value. Callers hold mu.
func (m *Manager) cacheColor(value int, ref string) {
	c, err := DominantColor(ref)
	if err != nil {
		m.logger.Debug("no colour for tile image", "value", value, "err", err)
		delete(m.colors, value)
		return
	}
	m.colors[value] = c
}

// persist writes the current set. Callers hold mu.
func (m *Manager) persist() error {
	if m.store == nil {
		return nil
	}
	if err := m.store.SaveTileImages(m.set.Encode()); err != nil {
		return fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}
	return nil
}

// Set assigns an image reference to a value and persists the set.
// The in-memory set is updated even when persisting fails.
func (m *Manager) Set(value int, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.set.Put(value, ref); err != nil {
		return err
	}
	m.cacheColor(value, ref)
	return m.persist()
}

// Import crops and scales an image and assigns it to a value.
func (m *Manager) Import(value int, r io.Reader) error {
	if !t2048.IsTileValue(value) {
		return fmt.Errorf("%w: %d", ErrInvalidValue, value)
	}
	ref, err := Import(r, m.size)
	if err != nil {
		return err
	}
	return m.Set(value, ref)
}

// ImportDataURI normalizes an image sent as a data URI and assigns it to a value.
func (m *Manager) ImportDataURI(value int, uri string) error {
	if !t2048.IsTileValue(value) {
		return fmt.Errorf("%w: %d", ErrInvalidValue, value)
	}
	ref, err := ImportDataURI(uri, m.size)
	if err != nil {
		return err
	}
	return m.Set(value, ref)
}

// ImportFile is Import for a file on disk.
func (m *Manager) ImportFile(value int, path string) error {
	if !t2048.IsTileValue(value) {
		return fmt.Errorf("%w: %d", ErrInvalidValue, value)
	}
	ref, err := ImportFile(path, m.size)
	if err != nil {
		return err
	}
	return m.Set(value, ref)
}

// Reset removes the image for one value. Resetting an unskinned value is a no-op.
func (m *Manager) Reset(value int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.set.Remove(value) {
		return nil
	}
	delete(m.colors, value)
	return m.persist()
}

// ResetAll removes every image.
func (m *Manager) ResetAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.set.Clear()
	clear(m.colors)
	return m.persist()
}

// Get returns the image reference for a value.
func (m *Manager) Get(value int) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.set.Get(value)
}

// Values returns the skinned values in ascending order.
func (m *Manager) Values() []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.set.Values()
}

// Snapshot returns a copy of the active set.
func (m *Manager) Snapshot() Set {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.set.Clone()
}

// TileColor returns the dominant colour of a skinned value.
func (m *Manager) TileColor(value int) (core.Color, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.colors[value]
	return c, ok
}

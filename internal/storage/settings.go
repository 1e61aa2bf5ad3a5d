package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Setting keys shared with the browser client's local storage layout.
const (
	KeyHighScore  = "highScore"
	KeyTileImages = "tileImages"
)

// Get returns the raw value stored under key, or ErrNotFound.
func (s *Store) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("storage: cannot read %s: %w", key, err)
	}
	return value, nil
}

// Put stores value under key, replacing any previous value.
func (s *Store) Put(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot write %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM settings WHERE key = ?", key); err != nil {
		return fmt.Errorf("storage: cannot delete %s: %w", key, err)
	}
	return nil
}

// HighScore returns the persisted all-time high score, or 0 if none is stored.
// A corrupt value reads as 0.
func (s *Store) HighScore() (int, error) {
	v, err := s.Get(KeyHighScore)
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, nil
	}
	return n, nil
}

// SetHighScore stores score if it beats the persisted high score.
// Reports whether the stored value changed. The comparison and the write are
// one statement, so concurrent writers can never lower the stored value.
// A corrupt stored value compares as 0.
func (s *Store) SetHighScore(score int) (bool, error) {
	if score <= 0 {
		return false, nil
	}
	res, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
		 WHERE CAST(settings.value AS INTEGER) < CAST(excluded.value AS INTEGER)`,
		KeyHighScore, strconv.Itoa(score),
	)
	if err != nil {
		return false, fmt.Errorf("storage: cannot write %s: %w", KeyHighScore, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("storage: cannot write %s: %w", KeyHighScore, err)
	}
	return n > 0, nil
}

// TileImages returns the stored tile skins keyed by stringified tile value.
func (s *Store) TileImages() (map[string]string, error) {
	images := map[string]string{}
	v, err := s.Get(KeyTileImages)
	if errors.Is(err, ErrNotFound) {
		return images, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(v), &images); err != nil {
		return nil, fmt.Errorf("storage: cannot decode %s: %w", KeyTileImages, err)
	}
	return images, nil
}

// SaveTileImages replaces the stored tile skins. An empty map clears them.
func (s *Store) SaveTileImages(images map[string]string) error {
	if len(images) == 0 {
		return s.Delete(KeyTileImages)
	}
	data, err := json.Marshal(images)
	if err != nil {
		return fmt.Errorf("storage: cannot encode %s: %w", KeyTileImages, err)
	}
	return s.Put(KeyTileImages, string(data))
}

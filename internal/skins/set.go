// Package skins maps tile values to custom images. Images are stored as PNG
// data URIs so the terminal, SSH and web fronts share one representation.
package skins

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/vovakirdan/tile2048/internal/games/t2048"
)

var (
	// ErrInvalidValue is returned for tile values that are not powers of two >= 2.
	ErrInvalidValue = errors.New("skins: invalid tile value")
	// ErrEmptyImage is returned when an empty image reference is stored.
	ErrEmptyImage = errors.New("skins: empty image")
)

// TileValues lists the values offered by skin pickers, smallest first.
var TileValues = []int{2, 4, 8, 16, 32, 64, 128, 256, 512, 1024, 2048, 4096}

// Set maps tile values to image references.
type Set map[int]string

// Get returns the image for a value.
func (s Set) Get(value int) (string, bool) {
	ref, ok := s[value]
	return ref, ok
}

// Put assigns an image to a value.
func (s Set) Put(value int, ref string) error {
	if !t2048.IsTileValue(value) {
		return fmt.Errorf("%w: %d", ErrInvalidValue, value)
	}
	if ref == "" {
		return ErrEmptyImage
	}
	s[value] = ref
	return nil
}

// Remove deletes the image for a value and reports whether one existed.
func (s Set) Remove(value int) bool {
	_, ok := s[value]
	delete(s, value)
	return ok
}

// Clear removes every image.
func (s Set) Clear() {
	clear(s)
}

// Values returns the skinned values in ascending order.
func (s Set) Values() []int {
	out := make([]int, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for v, ref := range s {
		out[v] = ref
	}
	return out
}

// Encode converts the set to the stringified-key form used for persistence.
func (s Set) Encode() map[string]string {
	out := make(map[string]string, len(s))
	for v, ref := range s {
		out[strconv.Itoa(v)] = ref
	}
	return out
}

// Decode parses the persisted form. Invalid entries are skipped and reported
// in the returned error; the valid entries are always returned.
func Decode(m map[string]string) (Set, error) {
	s := make(Set, len(m))
	var errs []error
	for k, ref := range m {
		v, err := strconv.Atoi(k)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidValue, k))
			continue
		}
		if err := s.Put(v, ref); err != nil {
			errs = append(errs, err)
		}
	}
	return s, errors.Join(errs...)
}

package skins

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tile2048/internal/core"
)

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestSetPut(t *testing.T) {
	tests := []struct {
		value int
		ref   string
		want  error
	}{
		{2, "data:x", nil},
		{4096, "data:x", nil},
		{0, "data:x", ErrInvalidValue},
		{1, "data:x", ErrInvalidValue},
		{3, "data:x", ErrInvalidValue},
		{-2, "data:x", ErrInvalidValue},
		{8, "", ErrEmptyImage},
	}

	for _, tt := range tests {
		s := Set{}
		err := s.Put(tt.value, tt.ref)
		if !errors.Is(err, tt.want) {
			t.Errorf("Put(%d, %q) = %v, want %v", tt.value, tt.ref, err, tt.want)
		}
		if _, ok := s.Get(tt.value); ok != (tt.want == nil) {
			t.Errorf("Get(%d) present = %v", tt.value, ok)
		}
	}
}

func TestSetEncodeDecode(t *testing.T) {
	s := Set{}
	s.Put(2, "a")
	s.Put(2048, "b")

	enc := s.Encode()
	if enc["2"] != "a" || enc["2048"] != "b" || len(enc) != 2 {
		t.Errorf("Encode() = %v", enc)
	}

	dec, err := Decode(map[string]string{"2": "a", "2048": "b", "three": "c", "3": "d"})
	if err == nil {
		t.Error("expected error for invalid keys")
	}
	if got := dec.Values(); len(got) != 2 || got[0] != 2 || got[1] != 2048 {
		t.Errorf("Decode() values = %v, want [2 2048]", got)
	}

	if !dec.Remove(2) || dec.Remove(2) {
		t.Error("Remove should report presence once")
	}
	dec.Clear()
	if len(dec) != 0 {
		t.Error("Clear left entries")
	}
}

func TestImportCropsAndScales(t *testing.T) {
	// left half red, right half blue, wide aspect
	src := image.NewRGBA(image.Rect(0, 0, 300, 100))
	for y := range 100 {
		for x := range 300 {
			c := color.RGBA{R: 255, A: 255}
			if x >= 150 {
				c = color.RGBA{B: 255, A: 255}
			}
			src.Set(x, y, c)
		}
	}

	uri, err := Import(bytes.NewReader(pngBytes(t, src)), 0)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if !strings.HasPrefix(uri, "data:image/png;base64,") {
		t.Fatalf("unexpected prefix: %.30s", uri)
	}

	img, err := DecodeDataURI(uri)
	if err != nil {
		t.Fatalf("DecodeDataURI: %v", err)
	}
	if b := img.Bounds(); b.Dx() != DefaultImageSize || b.Dy() != DefaultImageSize {
		t.Errorf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), DefaultImageSize, DefaultImageSize)
	}

	// centred crop covers x in [100, 200): red then blue
	r, _, _, _ := img.At(5, 50).RGBA()
	_, _, b, _ := img.At(94, 50).RGBA()
	if r>>8 < 200 || b>>8 < 200 {
		t.Errorf("crop not centred: left r=%d right b=%d", r>>8, b>>8)
	}
}

func TestImportJPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, solidImage(40, 60, color.RGBA{G: 200, A: 255}), nil); err != nil {
		t.Fatal(err)
	}
	uri, err := Import(&buf, 16)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	img, _ := DecodeDataURI(uri)
	if img.Bounds().Dx() != 16 {
		t.Errorf("width = %d, want 16", img.Bounds().Dx())
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	if _, err := Import(strings.NewReader("not an image"), 0); err == nil {
		t.Error("expected decode error")
	}
}

func TestDominantColor(t *testing.T) {
	uri, err := EncodeDataURI(solidImage(10, 10, color.RGBA{R: 0xED, G: 0xC2, B: 0x2E, A: 255}))
	if err != nil {
		t.Fatal(err)
	}
	c, err := DominantColor(uri)
	if err != nil {
		t.Fatalf("DominantColor: %v", err)
	}
	if c.Hex() != "#EDC22E" {
		t.Errorf("DominantColor = %s, want #EDC22E", c.Hex())
	}

	transparent, _ := EncodeDataURI(image.NewRGBA(image.Rect(0, 0, 4, 4)))
	if _, err := DominantColor(transparent); err == nil {
		t.Error("expected error for transparent image")
	}

	if _, err := DominantColor("https://example.com/x.png"); !errors.Is(err, ErrNotDataURI) {
		t.Errorf("err = %v, want ErrNotDataURI", err)
	}
}

type memStore struct {
	data    map[string]string
	saveErr error
	saves   int
}

func (m *memStore) TileImages() (map[string]string, error) {
	out := map[string]string{}
	for k, v := range m.data {
		out[k] = v
	}
	return out, nil
}

func (m *memStore) SaveTileImages(images map[string]string) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.data = images
	return nil
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(&bytes.Buffer{}, log.Options{})
}

func TestManagerLifecycle(t *testing.T) {
	red, _ := EncodeDataURI(solidImage(4, 4, color.RGBA{R: 255, A: 255}))
	store := &memStore{data: map[string]string{"2": red, "bogus": "x"}}

	m, err := NewManager(store, WithLogger(quietLogger()))
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if got := m.Values(); len(got) != 1 || got[0] != 2 {
		t.Fatalf("Values() = %v, want [2]", got)
	}
	if c, ok := m.TileColor(2); !ok || c != core.NewRGB(255, 0, 0) {
		t.Errorf("TileColor(2) = %s, %v", c.Hex(), ok)
	}
	if _, ok := m.TileColor(4); ok {
		t.Error("TileColor(4) should be unset")
	}

	path := filepath.Join(t.TempDir(), "tile.png")
	if err := os.WriteFile(path, pngBytes(t, solidImage(20, 20, color.RGBA{B: 255, A: 255})), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := m.ImportFile(2048, path); err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if _, ok := store.data["2048"]; !ok {
		t.Error("import not persisted")
	}
	c, ok := m.TileColor(2048)
	if r, g, b := c.RGB(); !ok || b < 200 || r > 50 || g > 50 {
		t.Errorf("TileColor(2048) = %s, %v; want blue", c.Hex(), ok)
	}

	if err := m.ImportFile(3, path); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("ImportFile(3) err = %v, want ErrInvalidValue", err)
	}

	if err := m.Reset(2); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if _, ok := store.data["2"]; ok {
		t.Error("reset not persisted")
	}
	saves := store.saves
	if err := m.Reset(2); err != nil || store.saves != saves {
		t.Error("resetting an unskinned value should not persist")
	}

	if err := m.ResetAll(); err != nil {
		t.Fatalf("ResetAll: %v", err)
	}
	if len(m.Values()) != 0 || len(store.data) != 0 {
		t.Error("ResetAll left skins behind")
	}
}

func TestManagerPersistFailureKeepsMemory(t *testing.T) {
	boom := errors.New("disk full")
	store := &memStore{saveErr: boom}
	m, err := NewManager(store, WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}

	uri, _ := EncodeDataURI(solidImage(2, 2, color.White))
	err = m.Set(8, uri)
	if !errors.Is(err, boom) || !errors.Is(err, ErrNotPersisted) {
		t.Errorf("Set err = %v, want wrapped disk full", err)
	}
	if _, ok := m.Get(8); !ok {
		t.Error("in-memory set not updated")
	}
}

func TestManagerWithoutStore(t *testing.T) {
	m, err := NewManager(nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Import(16, bytes.NewReader(pngBytes(t, solidImage(8, 8, color.Black)))); err != nil {
		t.Fatalf("Import: %v", err)
	}
	snap := m.Snapshot()
	snap.Clear()
	if _, ok := m.Get(16); !ok {
		t.Error("Snapshot is not a copy")
	}
}

func TestImportDataURINormalizes(t *testing.T) {
	raw, err := EncodeDataURI(solidImage(30, 10, color.RGBA{R: 200, G: 100, A: 255}))
	if err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(nil, WithImageSize(8))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.ImportDataURI(32, raw); err != nil {
		t.Fatalf("ImportDataURI: %v", err)
	}
	ref, _ := m.Get(32)
	img, err := DecodeDataURI(ref)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 8 || b.Dy() != 8 {
		t.Errorf("size = %v, want 8x8", b)
	}

	if err := m.ImportDataURI(32, "data:text/plain,hello"); !errors.Is(err, ErrNotDataURI) {
		t.Errorf("err = %v, want ErrNotDataURI", err)
	}
}

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if _, err := store.SetHighScore(512); err != nil {
		t.Fatalf("SetHighScore() failed: %v", err)
	}
	store.Close()

	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	hs, err := store.HighScore()
	if err != nil || hs != 512 {
		t.Errorf("HighScore() = %d, %v; want 512", hs, err)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ExpandPath("~/.tile2048/x.db")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(home, ".tile2048", "x.db"); got != want {
		t.Errorf("ExpandPath = %q, want %q", got, want)
	}
	if got, _ := ExpandPath("/abs/x.db"); got != "/abs/x.db" {
		t.Errorf("absolute path changed: %q", got)
	}
}

func TestSettings(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) err = %v, want ErrNotFound", err)
	}

	if err := store.Put("k", "v1"); err != nil {
		t.Fatalf("Put() failed: %v", err)
	}
	if err := store.Put("k", "v2"); err != nil {
		t.Fatalf("Put() overwrite failed: %v", err)
	}
	if v, err := store.Get("k"); err != nil || v != "v2" {
		t.Errorf("Get(k) = %q, %v; want v2", v, err)
	}

	if err := store.Delete("k"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := store.Get("k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("after delete err = %v, want ErrNotFound", err)
	}
	if err := store.Delete("k"); err != nil {
		t.Errorf("Delete() of missing key failed: %v", err)
	}
}

func TestHighScoreOnlyRises(t *testing.T) {
	store := openTestStore(t)

	hs, err := store.HighScore()
	if err != nil || hs != 0 {
		t.Fatalf("initial HighScore() = %d, %v; want 0", hs, err)
	}

	steps := []struct {
		score   int
		changed bool
		want    int
	}{
		{100, true, 100},
		{50, false, 100},
		{100, false, 100},
		{2048, true, 2048},
	}
	for _, s := range steps {
		changed, err := store.SetHighScore(s.score)
		if err != nil {
			t.Fatalf("SetHighScore(%d) failed: %v", s.score, err)
		}
		if changed != s.changed {
			t.Errorf("SetHighScore(%d) changed = %v, want %v", s.score, changed, s.changed)
		}
		if hs, _ := store.HighScore(); hs != s.want {
			t.Errorf("after %d HighScore() = %d, want %d", s.score, hs, s.want)
		}
	}
}

func TestHighScoreCorruptValue(t *testing.T) {
	store := openTestStore(t)
	if err := store.Put(KeyHighScore, "not a number"); err != nil {
		t.Fatal(err)
	}
	if hs, err := store.HighScore(); err != nil || hs != 0 {
		t.Errorf("HighScore() = %d, %v; want 0, nil", hs, err)
	}

	changed, err := store.SetHighScore(8)
	if err != nil || !changed {
		t.Fatalf("SetHighScore(8) over corrupt value = %v, %v", changed, err)
	}
	if hs, _ := store.HighScore(); hs != 8 {
		t.Errorf("HighScore() = %d, want 8", hs)
	}
}

func TestHighScoreIgnoresNonPositive(t *testing.T) {
	store := openTestStore(t)
	if changed, err := store.SetHighScore(0); err != nil || changed {
		t.Errorf("SetHighScore(0) = %v, %v; want false, nil", changed, err)
	}
	if _, err := store.Get(KeyHighScore); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() err = %v, want ErrNotFound", err)
	}
}

func TestHighScoreConcurrentWritersNeverLower(t *testing.T) {
	store := openTestStore(t)

	const writers = 32
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := range writers {
		wg.Add(1)
		go func(score int) {
			defer wg.Done()
			if _, err := store.SetHighScore(score); err != nil {
				errs <- err
			}
		}((i*7)%writers + 1) // every score 1..writers, out of order
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("SetHighScore: %v", err)
	}

	if hs, _ := store.HighScore(); hs != writers {
		t.Errorf("HighScore() = %d, want %d", hs, writers)
	}
	if changed, _ := store.SetHighScore(writers - 1); changed {
		t.Error("lower score replaced the high score")
	}
}

func TestTileImages(t *testing.T) {
	store := openTestStore(t)

	images, err := store.TileImages()
	if err != nil {
		t.Fatalf("TileImages() failed: %v", err)
	}
	if len(images) != 0 {
		t.Errorf("expected no images, got %v", images)
	}

	in := map[string]string{"2": "data:image/png;base64,AAA", "2048": "data:image/png;base64,BBB"}
	if err := store.SaveTileImages(in); err != nil {
		t.Fatalf("SaveTileImages() failed: %v", err)
	}

	// stored as a JSON object under the shared key
	raw, err := store.Get(KeyTileImages)
	if err != nil {
		t.Fatalf("Get(tileImages) failed: %v", err)
	}
	if raw[0] != '{' {
		t.Errorf("raw value = %q, want JSON object", raw)
	}

	out, err := store.TileImages()
	if err != nil {
		t.Fatalf("TileImages() failed: %v", err)
	}
	if len(out) != 2 || out["2048"] != in["2048"] {
		t.Errorf("TileImages() = %v, want %v", out, in)
	}

	if err := store.SaveTileImages(nil); err != nil {
		t.Fatalf("SaveTileImages(nil) failed: %v", err)
	}
	if out, _ := store.TileImages(); len(out) != 0 {
		t.Errorf("expected cleared images, got %v", out)
	}
}

func TestTileImagesCorrupt(t *testing.T) {
	store := openTestStore(t)
	if err := store.Put(KeyTileImages, "{broken"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.TileImages(); err == nil {
		t.Error("expected decode error")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	for _, s := range []struct{ score, tile int }{{100, 16}, {50, 8}, {200, 32}} {
		if _, err := store.SaveScore("2048", s.score, s.tile); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}
	if _, err := store.SaveScore("2048_5x5", 500, 64); err != nil {
		t.Fatalf("SaveScore() failed: %v", err)
	}

	scores, err := store.TopScores("2048", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores, got %d", len(scores))
	}

	// Should be sorted descending
	want := []int{200, 100, 50}
	for i, w := range want {
		if scores[i].Score != w {
			t.Errorf("scores[%d] = %d, want %d", i, scores[i].Score, w)
		}
	}
	if scores[0].MaxTile != 32 {
		t.Errorf("MaxTile = %d, want 32", scores[0].MaxTile)
	}
	if scores[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not parsed")
	}

	big, err := store.TopScores("2048_5x5", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(big) != 1 || big[0].Score != 500 {
		t.Errorf("5x5 scores = %+v", big)
	}
}

func TestTopScoresLimit(t *testing.T) {
	store := openTestStore(t)

	for i := range 15 {
		if _, err := store.SaveScore("2048", i*10, 4); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}

	scores, err := store.TopScores("2048", 5)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 5 {
		t.Errorf("Expected 5 scores, got %d", len(scores))
	}
	if scores[0].Score != 140 {
		t.Errorf("Expected top score 140, got %d", scores[0].Score)
	}

	scores, _ = store.TopScores("2048", 0)
	if len(scores) != 10 {
		t.Errorf("default limit: got %d, want 10", len(scores))
	}
}

func TestBestScoreAndClear(t *testing.T) {
	store := openTestStore(t)

	best, err := store.BestScore("2048")
	if err != nil || best != 0 {
		t.Fatalf("BestScore() on empty = %d, %v", best, err)
	}

	store.SaveScore("2048", 300, 32)
	store.SaveScore("2048", 700, 64)
	store.SaveScore("2048_3x3", 900, 128)

	if best, _ := store.BestScore("2048"); best != 700 {
		t.Errorf("BestScore() = %d, want 700", best)
	}

	if err := store.ClearScores("2048"); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}
	if best, _ := store.BestScore("2048"); best != 0 {
		t.Errorf("after clear BestScore() = %d, want 0", best)
	}
	if best, _ := store.BestScore("2048_3x3"); best != 900 {
		t.Errorf("other variant cleared: %d", best)
	}
}

func TestGameStats(t *testing.T) {
	store := openTestStore(t)

	stats, err := store.GameStats("2048")
	if err != nil {
		t.Fatalf("GameStats() failed: %v", err)
	}
	if stats.GamesCount != 0 || !stats.LastPlayed.IsZero() {
		t.Errorf("empty stats = %+v", stats)
	}

	store.SaveScore("2048", 100, 16)
	store.SaveScore("2048", 300, 64)
	store.SaveScore("2048_6x6", 50, 8)

	stats, err = store.GameStats("2048")
	if err != nil {
		t.Fatalf("GameStats() failed: %v", err)
	}
	if stats.GamesCount != 2 || stats.HighScore != 300 || stats.BestTile != 64 || stats.TotalScore != 400 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.AvgScore != 200 {
		t.Errorf("AvgScore = %v, want 200", stats.AvgScore)
	}

	all, err := store.AllGamesStats()
	if err != nil {
		t.Fatalf("AllGamesStats() failed: %v", err)
	}
	if len(all) != 2 || all["2048_6x6"].GamesCount != 1 {
		t.Errorf("AllGamesStats() = %v", all)
	}
}

package session

import (
	"bytes"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tile2048/internal/games/t2048"
)

type fakeStore struct {
	mu      sync.Mutex
	high    int
	readErr error
	saveErr error
	saves   int
}

func (f *fakeStore) HighScore() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.high, f.readErr
}

func (f *fakeStore) SetHighScore(score int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	if f.saveErr != nil {
		return false, f.saveErr
	}
	if score > f.high {
		f.high = score
		return true, nil
	}
	return false, nil
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(&bytes.Buffer{}, log.Options{})
}

func newTestManager(opts ...Option) *Manager {
	return NewManager(append([]Option{WithLogger(quietLogger())}, opts...)...)
}

// mergeBoard has a guaranteed merge to the left in row 0.
var mergeBoard = t2048.Board{
	{2, 2, 0, 0},
	{0, 0, 0, 0},
	{0, 0, 0, 0},
	{0, 0, 0, 0},
}

func TestCreateAndGet(t *testing.T) {
	m := newTestManager()

	id, res := m.Create(CreateOptions{Size: 5, Seed: 1})
	if id == "" {
		t.Fatal("empty id")
	}
	if res.Board.Size() != 5 {
		t.Errorf("size = %d, want 5", res.Board.Size())
	}
	if n := 25 - len(t2048.EmptyCells(res.Board)); n != 2 {
		t.Errorf("new game has %d tiles, want 2", n)
	}

	got, err := m.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !got.Board.Equal(res.Board) {
		t.Error("Get returned a different board")
	}

	if _, err := m.Get("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) err = %v, want ErrNotFound", err)
	}
}

func TestCreateDefaults(t *testing.T) {
	m := newTestManager(WithDefaults(3, 0.9))
	id, res := m.Create(CreateOptions{})
	if res.Board.Size() != 3 {
		t.Errorf("size = %d, want 3", res.Board.Size())
	}
	if m.Count() != 1 || m.List()[0].ID != id {
		t.Errorf("List() = %+v", m.List())
	}
}

func TestGamesAreIndependent(t *testing.T) {
	m := newTestManager()
	a, _ := m.Create(CreateOptions{Seed: 1})
	b, _ := m.Create(CreateOptions{Seed: 1})

	if _, err := m.Load(a, mergeBoard, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Load(b, mergeBoard, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Move(a, t2048.DirLeft); err != nil {
		t.Fatal(err)
	}

	ra, _ := m.Get(a)
	rb, _ := m.Get(b)
	if ra.Score != 4 || rb.Score != 0 {
		t.Errorf("scores = %d, %d; want 4, 0", ra.Score, rb.Score)
	}
	if !rb.Board.Equal(mergeBoard) {
		t.Error("moving one game changed another")
	}
}

func TestMoveInvalidDirection(t *testing.T) {
	m := newTestManager()
	id, before := m.Create(CreateOptions{Seed: 2})

	if _, err := m.Move(id, t2048.Direction(42)); !errors.Is(err, t2048.ErrInvalidDirection) {
		t.Errorf("err = %v, want ErrInvalidDirection", err)
	}
	after, _ := m.Get(id)
	if !after.Board.Equal(before.Board) {
		t.Error("invalid move changed the board")
	}
	if _, err := m.Move("missing", t2048.DirUp); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestHighScorePersisted(t *testing.T) {
	store := &fakeStore{high: 2}
	m := newTestManager(WithStore(store))
	id, res := m.Create(CreateOptions{Seed: 3})
	if res.HighScore != 2 {
		t.Errorf("seeded high score = %d, want 2", res.HighScore)
	}

	m.Load(id, mergeBoard, 0)
	if _, err := m.Move(id, t2048.DirLeft); err != nil {
		t.Fatal(err)
	}
	if store.high != 4 {
		t.Errorf("stored high = %d, want 4", store.high)
	}
}

func TestHighScoreSaveFailureDoesNotFailMove(t *testing.T) {
	store := &fakeStore{saveErr: errors.New("locked")}
	m := newTestManager(WithStore(store))
	id, _ := m.Create(CreateOptions{Seed: 4})
	m.Load(id, mergeBoard, 0)

	res, err := m.Move(id, t2048.DirLeft)
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if !res.Moved || res.Score != 4 {
		t.Errorf("res = %+v", res)
	}
	if store.saves != 1 {
		t.Errorf("saves = %d, want 1", store.saves)
	}
}

func TestSubscribeReceivesMoves(t *testing.T) {
	m := newTestManager()
	id, _ := m.Create(CreateOptions{Seed: 5})
	m.Load(id, mergeBoard, 0)

	sub, err := m.Subscribe(id)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer m.Unsubscribe(sub)

	first := <-sub.Events()
	if first.Kind != EventSnapshot || !first.Result.Board.Equal(mergeBoard) {
		t.Errorf("first event = %+v", first)
	}

	res, _ := m.Move(id, t2048.DirLeft)
	select {
	case evt := <-sub.Events():
		if evt.Kind != EventMove || evt.Result.Score != res.Score || len(evt.Result.Merges) != 1 {
			t.Errorf("move event = %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("no move event")
	}

	// a move that changes nothing publishes nothing
	m.Load(id, t2048.Board{{2, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}, 0)
	<-sub.Events() // load snapshot
	m.Move(id, t2048.DirLeft)
	select {
	case evt := <-sub.Events():
		t.Errorf("unexpected event %+v", evt)
	default:
	}
}

func TestDeleteClosesSubscriptions(t *testing.T) {
	m := newTestManager()
	id, _ := m.Create(CreateOptions{Seed: 6})
	sub, _ := m.Subscribe(id)
	<-sub.Events()

	if err := m.Delete(id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}
	if evt := <-sub.Events(); evt.Kind != EventClosed {
		t.Errorf("last event = %s, want closed", evt.Kind)
	}
	if err := m.Delete(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete err = %v", err)
	}
	if _, err := m.Subscribe(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Subscribe after delete err = %v", err)
	}
}

func TestSubscriptionDropsOldest(t *testing.T) {
	sub := newSubscription("g", 2)
	for i := range 5 {
		sub.Send(Event{GameID: "g", Result: t2048.MoveResult{Score: i}})
	}
	a := <-sub.Events()
	b := <-sub.Events()
	if a.Result.Score != 3 || b.Result.Score != 4 {
		t.Errorf("kept scores %d, %d; want 3, 4", a.Result.Score, b.Result.Score)
	}

	sub.Close()
	sub.Close()
	sub.Send(Event{})
	select {
	case <-sub.Events():
		t.Error("send after close delivered")
	default:
	}
}

func TestRestartKeepsHighScore(t *testing.T) {
	m := newTestManager()
	id, _ := m.Create(CreateOptions{Seed: 7})
	m.Load(id, mergeBoard, 0)
	m.Move(id, t2048.DirLeft)

	res, err := m.Restart(id)
	if err != nil {
		t.Fatal(err)
	}
	if res.Score != 0 || res.HighScore != 4 {
		t.Errorf("restart score %d high %d", res.Score, res.HighScore)
	}
}

func TestPrune(t *testing.T) {
	m := newTestManager()
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	old, _ := m.Create(CreateOptions{Seed: 1})
	clock = clock.Add(time.Hour)
	fresh, _ := m.Create(CreateOptions{Seed: 2})

	if n := m.Prune(30 * time.Minute); n != 1 {
		t.Errorf("Prune removed %d, want 1", n)
	}
	if _, err := m.Get(old); !errors.Is(err, ErrNotFound) {
		t.Error("stale game survived")
	}
	if _, err := m.Get(fresh); err != nil {
		t.Error("fresh game pruned")
	}
}

func TestConcurrentMoves(t *testing.T) {
	m := newTestManager()
	id, _ := m.Create(CreateOptions{Seed: 8})

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(d t2048.Direction) {
			defer wg.Done()
			for range 50 {
				m.Move(id, d)
			}
		}(t2048.Direction(i % 4))
	}
	wg.Wait()

	res, err := m.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if err := res.Board.Validate(); err != nil {
		t.Errorf("board corrupted: %v", err)
	}
}

// slowStore reports each high score write and then stalls it.
type slowStore struct {
	fakeStore
	entered chan struct{}
	delay   time.Duration
}

func (s *slowStore) SetHighScore(score int) (bool, error) {
	select {
	case s.entered <- struct{}{}:
	default:
	}
	time.Sleep(s.delay)
	return s.fakeStore.SetHighScore(score)
}

// lastEvent drains the buffered events and returns the newest one.
func lastEvent(t *testing.T, sub *Subscription) Event {
	t.Helper()
	var last Event
	n := 0
	for len(sub.Events()) > 0 {
		last = <-sub.Events()
		n++
	}
	if n == 0 {
		t.Fatal("no events buffered")
	}
	return last
}

func TestEventsFollowMoveOrderDespiteSlowStore(t *testing.T) {
	store := &slowStore{entered: make(chan struct{}, 1), delay: 50 * time.Millisecond}
	m := newTestManager(WithStore(store))
	id, _ := m.Create(CreateOptions{Seed: 9})
	board := t2048.Board{
		{2, 2, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 8},
	}
	if _, err := m.Load(id, board, 0); err != nil {
		t.Fatal(err)
	}

	sub, err := m.Subscribe(id)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Unsubscribe(sub)

	// the left move merges, so it stalls writing the new high score
	done := make(chan error, 1)
	go func() {
		_, err := m.Move(id, t2048.DirLeft)
		done <- err
	}()
	select {
	case <-store.entered:
	case <-time.After(time.Second):
		t.Fatal("high score was never written")
	}

	if _, err := m.Move(id, t2048.DirUp); err != nil {
		t.Fatalf("Move(up): %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("Move(left): %v", err)
	}

	want, _ := m.Get(id)
	if last := lastEvent(t, sub); !last.Result.Board.Equal(want.Board) {
		t.Errorf("last event board = %v, engine board = %v", last.Result.Board, want.Board)
	}
}

func TestSubscribeDuringMovesSeesFinalState(t *testing.T) {
	m := newTestManager()
	id, _ := m.Create(CreateOptions{Seed: 10})

	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range 40 {
			if i == 5 {
				close(started)
			}
			m.Move(id, t2048.Direction(i%4))
		}
	}()

	<-started
	sub, err := m.Subscribe(id)
	if err != nil {
		t.Fatal(err)
	}
	defer m.Unsubscribe(sub)
	<-done

	want, _ := m.Get(id)
	if last := lastEvent(t, sub); !last.Result.Board.Equal(want.Board) {
		t.Errorf("last event board = %v, engine board = %v", last.Result.Board, want.Board)
	}
}

func TestSubscribeRacingDeleteIsAlwaysClosed(t *testing.T) {
	m := newTestManager()

	for i := range 200 {
		id, _ := m.Create(CreateOptions{Seed: int64(i + 1)})
		go m.Delete(id)

		sub, err := m.Subscribe(id)
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("Subscribe err = %v", err)
			}
			continue
		}

		select {
		case <-sub.Done():
		case <-time.After(time.Second):
			t.Fatalf("round %d: subscription never closed", i)
		}
		if last := lastEvent(t, sub); last.Kind != EventClosed {
			t.Errorf("round %d: last event = %s, want closed", i, last.Kind)
		}
	}
}

func TestDeletedGameRejectsMoves(t *testing.T) {
	m := newTestManager()
	id, _ := m.Create(CreateOptions{Seed: 11})
	g, err := m.lookup(id)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Delete(id); err != nil {
		t.Fatal(err)
	}

	// a handle taken before the delete must not revive the game
	g.mu.Lock()
	deleted := g.deleted
	g.mu.Unlock()
	if !deleted {
		t.Error("deleted game not marked")
	}
	if _, err := m.Move(id, t2048.DirLeft); !errors.Is(err, ErrNotFound) {
		t.Errorf("Move after delete err = %v, want ErrNotFound", err)
	}
}

package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vovakirdan/tile2048/internal/core"
	"github.com/vovakirdan/tile2048/internal/games/t2048"
	"github.com/vovakirdan/tile2048/internal/session"
	"github.com/vovakirdan/tile2048/internal/skins"
)

// maxBodyBytes bounds JSON request bodies. Skin uploads use skins.MaxImportBytes.
const maxBodyBytes = 64 << 10

// gameResponse is a game snapshot tagged with its ID.
type gameResponse struct {
	ID string `json:"id"`
	t2048.MoveResult
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// writeGameError maps session and engine errors to HTTP statuses.
func (s *Server) writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, t2048.ErrInvalidDirection), errors.Is(err, t2048.ErrInvalidBoard):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("game request failed", "err", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) handleListGames(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"games": s.games.List()})
}

type createGameRequest struct {
	Size int   `json:"size"`
	Seed int64 `json:"seed"`
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Size != 0 && (req.Size < t2048.MinSize || req.Size > t2048.MaxSize) {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("size must be between %d and %d", t2048.MinSize, t2048.MaxSize))
		return
	}

	id, res := s.games.Create(session.CreateOptions{Size: req.Size, Seed: req.Seed})
	w.Header().Set("Location", "/api/games/"+id)
	writeJSON(w, http.StatusCreated, gameResponse{ID: id, MoveResult: res})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := s.games.Get(id)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gameResponse{ID: id, MoveResult: res})
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	if err := s.games.Delete(chi.URLParam(r, "id")); err != nil {
		s.writeGameError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type moveRequest struct {
	Direction string `json:"direction"`
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	dir, err := t2048.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.move(w, chi.URLParam(r, "id"), dir)
}

type swipeRequest struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

// actionDirections maps swipe actions to engine directions.
var actionDirections = map[core.Action]t2048.Direction{
	core.ActionUp:    t2048.DirUp,
	core.ActionDown:  t2048.DirDown,
	core.ActionLeft:  t2048.DirLeft,
	core.ActionRight: t2048.DirRight,
}

// handleSwipe converts a touch displacement into a move.
// Swipes that do not pass the threshold answer 204 and change nothing.
func (s *Server) handleSwipe(w http.ResponseWriter, r *http.Request) {
	var req swipeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "id")

	dir, ok := actionDirections[core.SwipeAction(req.DX, req.DY, s.cfg.SwipeThreshold)]
	if !ok {
		if _, err := s.games.Get(id); err != nil {
			s.writeGameError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.move(w, id, dir)
}

func (s *Server) move(w http.ResponseWriter, id string, dir t2048.Direction) {
	res, err := s.games.Move(id, dir)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gameResponse{ID: id, MoveResult: res})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := s.games.Restart(id)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gameResponse{ID: id, MoveResult: res})
}

type loadBoardRequest struct {
	Board t2048.Board `json:"board"`
	Score int         `json:"score"`
}

// handleLoadBoard restores a saved board into a live game.
func (s *Server) handleLoadBoard(w http.ResponseWriter, r *http.Request) {
	var req loadBoardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	res, err := s.games.Load(id, req.Board, req.Score)
	if err != nil {
		s.writeGameError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gameResponse{ID: id, MoveResult: res})
}

func (s *Server) handleHighScore(w http.ResponseWriter, _ *http.Request) {
	hs := 0
	if s.scores != nil {
		var err error
		if hs, err = s.scores.HighScore(); err != nil {
			s.logger.Error("cannot read high score", "err", err)
			writeError(w, http.StatusInternalServerError, "cannot read high score")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"high_score": hs})
}

// skinsManager returns the manager or answers 503 when skins are disabled.
func (s *Server) skinsManager(w http.ResponseWriter) (*skins.Manager, bool) {
	if s.skins == nil {
		writeError(w, http.StatusServiceUnavailable, "skins are disabled")
		return nil, false
	}
	return s.skins, true
}

// skinValue parses the {value} URL parameter.
func skinValue(w http.ResponseWriter, r *http.Request) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, "value"))
	if err != nil || !t2048.IsTileValue(v) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid tile value %q", chi.URLParam(r, "value")))
		return 0, false
	}
	return v, true
}

// writeSkinError maps skin errors to HTTP statuses. A failed save still
// changed the live set, so it answers 200 with persisted=false.
func (s *Server) writeSkinError(w http.ResponseWriter, value int, err error) {
	switch {
	case errors.Is(err, skins.ErrNotPersisted):
		s.logger.Error("skin change not persisted", "value", value, "err", err)
		writeJSON(w, http.StatusOK, map[string]any{"value": value, "persisted": false})
	case errors.Is(err, skins.ErrInvalidValue), errors.Is(err, skins.ErrEmptyImage), errors.Is(err, skins.ErrNotDataURI):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	}
}

func (s *Server) handleListSkins(w http.ResponseWriter, _ *http.Request) {
	mgr, ok := s.skinsManager(w)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"skins": mgr.Snapshot().Encode()})
}

func (s *Server) handleGetSkin(w http.ResponseWriter, r *http.Request) {
	mgr, ok := s.skinsManager(w)
	if !ok {
		return
	}
	value, ok := skinValue(w, r)
	if !ok {
		return
	}
	ref, found := mgr.Get(value)
	if !found {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no skin for tile %d", value))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"value": value, "image": ref})
}

type putSkinRequest struct {
	Image string `json:"image"`
}

// handlePutSkin accepts either a JSON {"image": "data:..."} body or raw image
// bytes. Both are cropped and scaled before they are stored.
func (s *Server) handlePutSkin(w http.ResponseWriter, r *http.Request) {
	mgr, ok := s.skinsManager(w)
	if !ok {
		return
	}
	value, ok := skinValue(w, r)
	if !ok {
		return
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var err error
	if mediaType == "application/json" {
		var req putSkinRequest
		if err := decodeJSONLimit(w, r, &req, skins.MaxImportBytes*2); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if req.Image == "" {
			writeError(w, http.StatusBadRequest, skins.ErrEmptyImage.Error())
			return
		}
		err = mgr.ImportDataURI(value, req.Image)
	} else {
		err = mgr.Import(value, http.MaxBytesReader(w, r.Body, skins.MaxImportBytes))
	}
	if err != nil {
		s.writeSkinError(w, value, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"value": value, "persisted": true})
}

// decodeJSONLimit is decodeJSON with a caller-chosen size limit.
func decodeJSONLimit(w http.ResponseWriter, r *http.Request, v any, limit int64) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit)).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (s *Server) handleDeleteSkin(w http.ResponseWriter, r *http.Request) {
	mgr, ok := s.skinsManager(w)
	if !ok {
		return
	}
	value, ok := skinValue(w, r)
	if !ok {
		return
	}
	if err := mgr.Reset(value); err != nil {
		s.writeSkinError(w, value, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearSkins(w http.ResponseWriter, _ *http.Request) {
	mgr, ok := s.skinsManager(w)
	if !ok {
		return
	}
	if err := mgr.ResetAll(); err != nil {
		s.writeSkinError(w, 0, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

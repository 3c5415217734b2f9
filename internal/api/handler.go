// Package api is the REST query/admin surface: game creation, joining,
// moves, and read pass-throughs over games and move history.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/JavierTF/tictactoe-project/internal/auth"
	"github.com/JavierTF/tictactoe-project/internal/board"
	"github.com/JavierTF/tictactoe-project/internal/game"
)

// Handler handles HTTP requests.
type Handler struct {
	service *game.Service
	auth    auth.Authenticator
}

// NewHandler creates a new handler.
func NewHandler(service *game.Service, authenticator auth.Authenticator) *Handler {
	return &Handler{
		service: service,
		auth:    authenticator,
	}
}

// RegisterRoutes sets up the routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/games", h.withAuth(h.createGame))
	mux.HandleFunc("GET /api/v1/games", h.withAuth(h.listGames))
	mux.HandleFunc("GET /api/v1/games/waiting", h.withAuth(h.waitingGames))
	mux.HandleFunc("GET /api/v1/games/my-games", h.withAuth(h.myGames))
	mux.HandleFunc("GET /api/v1/games/{gameID}", h.withAuth(h.getGame))
	mux.HandleFunc("POST /api/v1/games/{gameID}/join", h.withAuth(h.joinGame))
	mux.HandleFunc("POST /api/v1/games/{gameID}/move", h.withAuth(h.makeMove))
	mux.HandleFunc("GET /api/v1/moves", h.withAuth(h.listMoves))
}

type authedHandler func(w http.ResponseWriter, r *http.Request, player string)

// withAuth resolves the caller's identity before dispatching.
func (h *Handler) withAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		player, err := h.auth.Authenticate(r)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "unauthenticated", "not authenticated")
			return
		}
		next(w, r, player)
	}
}

type createGameRequest struct {
	Player2 string `json:"player2"`
}

func (h *Handler) createGame(w http.ResponseWriter, r *http.Request, player string) {
	var req createGameRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, string(game.CodeValidation), "invalid request body")
		return
	}

	snap, err := h.service.Create(r.Context(), player, req.Player2)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, snap)
}

func (h *Handler) listGames(w http.ResponseWriter, r *http.Request, _ string) {
	filter := game.ListFilter{Status: game.Status(r.URL.Query().Get("status"))}
	h.respondGames(w, r, filter)
}

func (h *Handler) waitingGames(w http.ResponseWriter, r *http.Request, _ string) {
	h.respondGames(w, r, game.ListFilter{Status: game.StatusWaiting})
}

func (h *Handler) myGames(w http.ResponseWriter, r *http.Request, player string) {
	filter := game.ListFilter{
		Status: game.Status(r.URL.Query().Get("status")),
		Player: player,
	}
	h.respondGames(w, r, filter)
}

func (h *Handler) respondGames(w http.ResponseWriter, r *http.Request, filter game.ListFilter) {
	snaps, err := h.service.Games(r.Context(), filter)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snaps)
}

func (h *Handler) getGame(w http.ResponseWriter, r *http.Request, _ string) {
	snap, err := h.service.State(r.Context(), r.PathValue("gameID"))
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (h *Handler) joinGame(w http.ResponseWriter, r *http.Request, player string) {
	snap, err := h.service.Join(r.Context(), r.PathValue("gameID"), player)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

type makeMoveRequest struct {
	Position *int `json:"position"`
}

func (h *Handler) makeMove(w http.ResponseWriter, r *http.Request, player string) {
	var req makeMoveRequest
	if err := decodeBody(r, &req); err != nil || req.Position == nil {
		respondError(w, http.StatusBadRequest, string(game.CodeValidation), "position is required")
		return
	}

	snap, err := h.service.Move(r.Context(), r.PathValue("gameID"), player, *req.Position)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

// moveRecord is the wire form of one move-log entry.
type moveRecord struct {
	ID        string     `json:"id"`
	GameID    string     `json:"game_id"`
	Player    string     `json:"player"`
	Position  int        `json:"position"`
	Symbol    board.Mark `json:"symbol"`
	CreatedAt time.Time  `json:"created_at"`
}

func (h *Handler) listMoves(w http.ResponseWriter, r *http.Request, _ string) {
	gameID := r.URL.Query().Get("game")
	if gameID == "" {
		respondError(w, http.StatusBadRequest, string(game.CodeValidation), "game query parameter is required")
		return
	}

	moves, err := h.service.Moves(r.Context(), gameID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	records := make([]moveRecord, 0, len(moves))
	for _, m := range moves {
		records = append(records, moveRecord{
			ID:        m.ID,
			GameID:    m.GameID,
			Player:    m.PlayerID,
			Position:  m.Position,
			Symbol:    m.Symbol,
			CreatedAt: m.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, records)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	return json.NewDecoder(r.Body).Decode(target)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

// respondServiceError maps the service error taxonomy to HTTP statuses.
func respondServiceError(w http.ResponseWriter, err error) {
	var gameErr *game.Error
	if !errors.As(err, &gameErr) {
		respondError(w, http.StatusInternalServerError, "internal", "internal error")
		return
	}

	status := http.StatusInternalServerError
	switch gameErr.Code {
	case game.CodeValidation, game.CodeRuleViolation:
		status = http.StatusBadRequest
	case game.CodeNotFound:
		status = http.StatusNotFound
	case game.CodeConflict:
		status = http.StatusConflict
	case game.CodeUnavailable:
		status = http.StatusServiceUnavailable
	}
	respondError(w, status, string(gameErr.Code), gameErr.Message)
}

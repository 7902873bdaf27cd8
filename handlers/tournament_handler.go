package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/style-duel/middleware"
	"github.com/Dosada05/style-duel/models"
	"github.com/Dosada05/style-duel/services"
	"github.com/go-chi/chi/v5"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
	}
}

// StartHandler обрабатывает POST /tournaments/start.
// Повторный запуск при живой сессии возвращает её же (resumed=true), не 409.
func (h *TournamentHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to start a tournament")
		return
	}

	var input struct {
		Category       string `json:"category"`
		TournamentSize int    `json:"tournament_size"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Category == "" {
		badRequestResponse(w, r, errors.New("category is required"))
		return
	}
	// Размер проверяется до вызова движка; сервис перепроверит его сам.
	if !models.IsAllowedTournamentSize(input.TournamentSize) {
		unprocessableResponse(w, r, services.ErrInvalidTournamentSize)
		return
	}

	view, err := h.tournamentService.Start(r.Context(), currentUserID, input.Category, input.TournamentSize)
	if err != nil {
		mapTournamentServiceErrorToHTTP(w, r, err)
		return
	}

	status := http.StatusCreated
	if view.Resumed {
		status = http.StatusOK
	}
	if err := writeJSON(w, status, jsonResponse{"session": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ActiveSessionHandler обрабатывает GET /tournaments/active?category=...
func (h *TournamentHandler) ActiveSessionHandler(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	category := r.URL.Query().Get("category")
	if category == "" {
		badRequestResponse(w, r, errors.New("category query parameter is required"))
		return
	}

	view, err := h.tournamentService.GetActiveSession(r.Context(), currentUserID, category)
	if err != nil {
		mapTournamentServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"session": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SubmitChoiceHandler обрабатывает POST /tournaments/{sessionID}/choice.
func (h *TournamentHandler) SubmitChoiceHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.GetUserIDFromContext(r.Context()); err != nil {
		unauthorizedResponse(w, r, "authentication required to submit a choice")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		badRequestResponse(w, r, errors.New("missing sessionID"))
		return
	}

	var input struct {
		WinnerID       int64 `json:"winner_id"`
		ResponseTimeMs *int  `json:"response_time_ms"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.WinnerID <= 0 {
		badRequestResponse(w, r, errors.New("winner_id is required"))
		return
	}
	if input.ResponseTimeMs != nil && *input.ResponseTimeMs < 0 {
		badRequestResponse(w, r, errors.New("response_time_ms must not be negative"))
		return
	}

	outcome, err := h.tournamentService.SubmitChoice(r.Context(), sessionID, input.WinnerID, input.ResponseTimeMs)
	if err != nil {
		mapTournamentServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"outcome": outcome}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ChoiceHistoryHandler обрабатывает GET /tournaments/{sessionID}/choices.
func (h *TournamentHandler) ChoiceHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.GetUserIDFromContext(r.Context()); err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		badRequestResponse(w, r, errors.New("missing sessionID"))
		return
	}

	choices, err := h.tournamentService.GetChoiceHistory(r.Context(), sessionID)
	if err != nil {
		mapTournamentServiceErrorToHTTP(w, r, err)
		return
	}

	// Возвращаем список, даже если он пустой
	if err := writeJSON(w, http.StatusOK, jsonResponse{"choices": choices}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResultHandler обрабатывает GET /tournaments/{sessionID}/result.
func (h *TournamentHandler) ResultHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := middleware.GetUserIDFromContext(r.Context()); err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		badRequestResponse(w, r, errors.New("missing sessionID"))
		return
	}

	result, err := h.tournamentService.GetResult(r.Context(), sessionID)
	if err != nil {
		mapTournamentServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CategoriesHandler обрабатывает GET /categories — категории, в которых
// хватает одобренных изображений хотя бы на минимальную сетку.
func (h *TournamentHandler) CategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := h.tournamentService.GetCategories(r.Context())
	if err != nil {
		mapTournamentServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"categories": categories}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/avdeenko/club-system/middleware"
	"github.com/avdeenko/club-system/models"
	"github.com/avdeenko/club-system/services"
)

// minRosterSize is the manual-assignment floor enforced at this call
// site; the service primitive itself only requires non-empty sides.
const minRosterSize = 7

type MatchHandler struct {
	matchService      services.MatchService
	attendanceService services.AttendanceService
	rosterService     services.RosterService
	statsService      services.StatsService
}

func NewMatchHandler(
	matchService services.MatchService,
	attendanceService services.AttendanceService,
	rosterService services.RosterService,
	statsService services.StatsService,
) *MatchHandler {
	return &MatchHandler{
		matchService:      matchService,
		attendanceService: attendanceService,
		rosterService:     rosterService,
		statsService:      statsService,
	}
}

func (h *MatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateMatchInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.CreateMatch(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) List(w http.ResponseWriter, r *http.Request) {
	var statusFilter *models.MatchStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := models.MatchStatus(raw)
		switch status {
		case models.MatchStatusScheduled, models.MatchStatusCompleted, models.MatchStatusCancelled:
			statusFilter = &status
		default:
			badRequestResponse(w, r, fmt.Errorf("invalid status filter %q", raw))
			return
		}
	}

	matches, err := h.matchService.ListMatches(r.Context(), statusFilter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	summary, err := h.attendanceService.Summary(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match, "attendance": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.CancelMatch(r.Context(), matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"status": string(models.MatchStatusCancelled)}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Confirm is the player path: the acting user confirms or declines their
// own attendance. A repeated confirm is answered with the current record
// rather than an error.
func (h *MatchHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required")
		return
	}

	var input struct {
		Confirmed *bool `json:"confirmed"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Confirmed == nil {
		badRequestResponse(w, r, errors.New("confirmed flag is required"))
		return
	}

	record, err := h.attendanceService.SetAttendance(r.Context(), matchID, currentUserID, *input.Confirmed)
	if err != nil && !errors.Is(err, services.ErrAlreadyRegistered) {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"record": record}
	if errors.Is(err, services.ErrAlreadyRegistered) {
		response["message"] = services.ErrAlreadyRegistered.Error()
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ToggleConfirmation(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		UserID    int   `json:"user_id"`
		Confirmed *bool `json:"confirmed"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.UserID <= 0 {
		badRequestResponse(w, r, errors.New("user_id is required"))
		return
	}
	if input.Confirmed == nil {
		badRequestResponse(w, r, errors.New("confirmed flag is required"))
		return
	}

	record, err := h.attendanceService.ToggleByAdmin(r.Context(), matchID, input.UserID, *input.Confirmed)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"record": record}
	if record == nil {
		response = jsonResponse{"removed": true}
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) AssignTeams(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		TeamAPlayers []int `json:"team_a_players"`
		TeamBPlayers []int `json:"team_b_players"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.TeamAPlayers) < minRosterSize || len(input.TeamBPlayers) < minRosterSize {
		unprocessableEntityResponse(w, r, fmt.Errorf("each team requires at least %d players", minRosterSize))
		return
	}

	if err := h.rosterService.AssignTeams(r.Context(), matchID, input.TeamAPlayers, input.TeamBPlayers); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"assigned": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) DrawTeams(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.rosterService.DrawTeams(r.Context(), matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"assigned": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) UpdateStats(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Players []services.PlayerStatInput `json:"players"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.Players) == 0 {
		badRequestResponse(w, r, errors.New("players list must not be empty"))
		return
	}

	match, err := h.statsService.RecordStatistics(r.Context(), matchID, input.Players)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/avdeenko/club-system/live"
	"github.com/avdeenko/club-system/services"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin filtering is delegated to the CORS configuration of the
		// deployment; the hub only ever pushes public match state.
		return true
	},
}

type WebSocketHandler struct {
	hub          *live.Hub
	matchService services.MatchService
}

func NewWebSocketHandler(hub *live.Hub, matchService services.MatchService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:          hub,
		matchService: matchService,
	}
}

// ServeMatch subscribes the connection to a match room. Clients connect
// to /ws/matches/{matchID} and receive attendance and result events.
func (h *WebSocketHandler) ServeMatch(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if _, err := h.matchService.GetMatch(r.Context(), matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error to the client.
		slog.Error("failed to upgrade websocket connection", slog.Int("match_id", matchID), slog.Any("error", err))
		return
	}

	client := &live.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: live.MatchRoom(matchID),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

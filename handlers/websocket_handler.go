package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/fest-portal/leaderboard"
	"github.com/Dosada05/fest-portal/models"
	"github.com/Dosada05/fest-portal/services"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub              *leaderboard.Hub
	standingsService services.StandingsService
	upgrader         websocket.Upgrader
	logger           *slog.Logger
}

// NewWebSocketHandler: пустой allowedOrigins разрешает любой Origin.
func NewWebSocketHandler(hub *leaderboard.Hub, standingsService services.StandingsService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:              hub,
		standingsService: standingsService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// ServeStandings подключает live-табло к комнате standings. Первым сообщением
// табло получает самый свежий известный лидерборд, дальше идут рассылки хаба.
func (h *WebSocketHandler) ServeStandings(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	// Снимок читаем до регистрации: хаб сам выберет, что новее
	var initial *models.StandingsSnapshot
	if snap, err := h.standingsService.GetStandings(r.Context()); err != nil {
		h.logger.Warn("no standings to send to new display", slog.Any("error", err))
	} else {
		initial = &snap
	}

	client := leaderboard.NewClient(h.hub, conn, leaderboard.StandingsRoom)
	if !h.hub.JoinStandings(client, initial) {
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/fest-portal/leaderboard"
	"github.com/Dosada05/fest-portal/middleware"
	"github.com/Dosada05/fest-portal/models"
	"github.com/Dosada05/fest-portal/services"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/websocket"
)

func serve(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func teamRouter(svc services.TeamService) http.Handler {
	h := NewTeamHandler(svc)
	r := chi.NewRouter()
	r.Get("/teams/{teamID}", h.GetTeamByID)
	r.Post("/teams", h.CreateTeam)
	r.Delete("/teams/{teamID}", h.DeleteTeam)
	return r
}

func TestTeamHandlerStatusCodes(t *testing.T) {
	svc := &stubTeamService{teams: map[int]models.Team{1: {ID: 1, Name: "Red"}}}
	router := teamRouter(svc)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		setup  func()
		want   int
	}{
		{name: "get existing", method: http.MethodGet, target: "/teams/1", want: http.StatusOK},
		{name: "get missing", method: http.MethodGet, target: "/teams/2", want: http.StatusNotFound},
		{name: "get non-numeric id", method: http.MethodGet, target: "/teams/abc", want: http.StatusBadRequest},
		{name: "get negative id", method: http.MethodGet, target: "/teams/-1", want: http.StatusBadRequest},
		{name: "create", method: http.MethodPost, target: "/teams", body: `{"name":"Blue"}`, want: http.StatusCreated},
		{name: "create unknown field", method: http.MethodPost, target: "/teams", body: `{"title":"Blue"}`, want: http.StatusBadRequest},
		{name: "create empty body", method: http.MethodPost, target: "/teams", body: "", want: http.StatusBadRequest},
		{
			name: "create duplicate", method: http.MethodPost, target: "/teams", body: `{"name":"Red"}`,
			setup: func() { svc.createErr = services.ErrTeamNameConflict }, want: http.StatusConflict,
		},
		{
			name: "delete default", method: http.MethodDelete, target: "/teams/1",
			setup: func() { svc.deleteErr = services.ErrDefaultTeamUndeletable }, want: http.StatusConflict,
		},
		{
			name: "delete in use", method: http.MethodDelete, target: "/teams/1",
			setup: func() { svc.deleteErr = services.ErrTeamInUse }, want: http.StatusConflict,
		},
		{
			name: "delete", method: http.MethodDelete, target: "/teams/1",
			setup: func() { svc.deleteErr = nil }, want: http.StatusNoContent,
		},
		{
			name: "unexpected failure", method: http.MethodDelete, target: "/teams/1",
			setup: func() { svc.deleteErr = errors.New("boom") }, want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setup != nil {
				tt.setup()
			}
			rec := serve(t, router, tt.method, tt.target, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestCreateTeamSetsLocation(t *testing.T) {
	rec := serve(t, teamRouter(&stubTeamService{}), http.MethodPost, "/teams", `{"name":"Blue"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/api/teams/42" {
		t.Errorf("Location = %q", got)
	}
	var body struct {
		Team models.Team `json:"team"`
	}
	decode(t, rec, &body)
	if body.Team.Name != "Blue" {
		t.Errorf("team = %+v", body.Team)
	}
}

func TestCreateResultValidationIsBadRequest(t *testing.T) {
	h := NewResultHandler(&stubResultService{createErr: services.ErrCandidateTeamMismatch})
	r := chi.NewRouter()
	r.Post("/results", h.CreateResult)

	rec := serve(t, r, http.MethodPost, "/results", `{"event_id":1,"team_id":2,"candidate_id":3,"position":1,"points":10}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	decode(t, rec, &body)
	if body["error"] != services.ErrCandidateTeamMismatch.Error() {
		t.Errorf("error = %q", body["error"])
	}
}

func TestGetStandings(t *testing.T) {
	snap := models.StandingsSnapshot{
		Standings: []models.TeamScore{
			{TeamID: 1, TeamName: "A", TotalPoints: 15, Rank: 1},
			{TeamID: 2, TeamName: "B", TotalPoints: 15, Rank: 2},
		},
		ComputedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	t.Run("known", func(t *testing.T) {
		h := NewStandingsHandler(&stubStandingsService{snap: snap})
		rec := serve(t, http.HandlerFunc(h.GetStandings), http.MethodGet, "/standings", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var got models.StandingsSnapshot
		decode(t, rec, &got)
		if len(got.Standings) != 2 || got.Standings[0].TeamName != "A" {
			t.Errorf("standings = %+v", got.Standings)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		err := errors.Join(services.ErrStandingsUnavailable, leaderboard.ErrDataFetch)
		h := NewStandingsHandler(&stubStandingsService{err: err})
		rec := serve(t, http.HandlerFunc(h.GetStandings), http.MethodGet, "/standings", "")
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "standings\":") {
			t.Errorf("failure must not look like an empty standings list: %s", rec.Body.String())
		}
	})
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	auth := &stubAuthService{users: map[string]models.User{
		"admin@fest.local":  {ID: 7, Email: "admin@fest.local", Role: models.RoleAdmin},
		"viewer@fest.local": {ID: 8, Email: "viewer@fest.local", Role: models.RoleViewer},
	}}
	h := NewAuthHandler(auth, "secret")

	rec := serve(t, http.HandlerFunc(h.Login), http.MethodPost, "/login", `{"email":"admin@fest.local","password":"secret-pass"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	var body struct {
		Token string `json:"token"`
	}
	decode(t, rec, &body)

	me := chi.NewRouter()
	me.With(middleware.Authenticate("secret"), middleware.Authorize(models.RoleAdmin)).Get("/me", h.Me)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+body.Token)
	meRec := httptest.NewRecorder()
	me.ServeHTTP(meRec, req)
	if meRec.Code != http.StatusOK {
		t.Fatalf("/me status = %d (%s)", meRec.Code, meRec.Body.String())
	}

	rec = serve(t, http.HandlerFunc(h.Login), http.MethodPost, "/login", `{"email":"viewer@fest.local","password":"secret-pass"}`)
	if rec.Code != http.StatusForbidden {
		t.Errorf("viewer login status = %d, want 403", rec.Code)
	}
	rec = serve(t, http.HandlerFunc(h.Login), http.MethodPost, "/login", `{"email":"admin@fest.local","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", rec.Code)
	}
}

func TestLoginTokenClaims(t *testing.T) {
	auth := &stubAuthService{users: map[string]models.User{
		"admin@fest.local": {ID: 7, Email: "admin@fest.local", Role: models.RoleAdmin},
	}}
	h := NewAuthHandler(auth, "secret")
	fixed := time.Now().Truncate(time.Second)
	h.now = func() time.Time { return fixed }

	rec := serve(t, http.HandlerFunc(h.Login), http.MethodPost, "/login", `{"email":"admin@fest.local","password":"secret-pass"}`)
	var body struct {
		Token string `json:"token"`
	}
	decode(t, rec, &body)

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(body.Token, claims, func(*jwt.Token) (interface{}, error) { return []byte("secret"), nil }); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims["role"] != "admin" || claims["user_id"] != float64(7) {
		t.Errorf("claims = %v", claims)
	}
	if exp, _ := claims["exp"].(float64); int64(exp) != fixed.Add(tokenTTL).Unix() {
		t.Errorf("exp = %v", claims["exp"])
	}
}

func TestWebSocketSendsCurrentStandingsOnConnect(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := leaderboard.NewHub(discardLogger())
	go hub.Run(ctx)

	snap := models.StandingsSnapshot{Standings: []models.TeamScore{{TeamID: 3, TeamName: "C", TotalPoints: 9, Rank: 1}}}
	h := NewWebSocketHandler(hub, &stubStandingsService{snap: snap}, nil, discardLogger())
	srv := httptest.NewServer(http.HandlerFunc(h.ServeStandings))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg struct {
		Type    string                   `json:"type"`
		Payload models.StandingsSnapshot `json:"payload"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	if msg.Type != leaderboard.MessageStandingsUpdated || len(msg.Payload.Standings) != 1 {
		t.Errorf("message = %+v", msg)
	}
}

func TestWebSocketNewDisplayEndsOnNewestStandings(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := leaderboard.NewHub(discardLogger())
	go hub.Run(ctx)

	computed := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	stale := models.StandingsSnapshot{
		Standings:  []models.TeamScore{{TeamID: 1, TeamName: "A", TotalPoints: 10, Rank: 1}},
		ComputedAt: computed,
	}
	fresh := models.StandingsSnapshot{
		Standings:  []models.TeamScore{{TeamID: 1, TeamName: "A", TotalPoints: 99, Rank: 1}},
		ComputedAt: computed.Add(time.Second),
	}

	svc := &slowStandingsService{
		stubStandingsService: stubStandingsService{snap: stale},
		entered:              make(chan struct{}),
		release:              make(chan struct{}),
	}
	h := NewWebSocketHandler(hub, svc, nil, discardLogger())
	srv := httptest.NewServer(http.HandlerFunc(h.ServeStandings))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	select {
	case <-svc.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("handler never asked for standings")
	}
	// Новый пересчёт публикуется, пока табло ещё читает старый снимок
	hub.PublishStandings(fresh)
	close(svc.release)

	type message struct {
		Type    string                   `json:"type"`
		Payload models.StandingsSnapshot `json:"payload"`
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var first message
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(first.Payload.Standings) != 1 || first.Payload.Standings[0].TotalPoints != 99 {
		t.Fatalf("first message = %+v, want the 99-point standings", first.Payload)
	}

	conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var extra message
	if err := conn.ReadJSON(&extra); err == nil {
		t.Fatalf("unexpected follow-up message: %+v", extra.Payload)
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://fest.example"})
	req := httptest.NewRequest(http.MethodGet, "/ws/standings", nil)

	req.Header.Set("Origin", "https://fest.example")
	if !check(req) {
		t.Error("allowed origin rejected")
	}
	req.Header.Set("Origin", "https://evil.example")
	if check(req) {
		t.Error("foreign origin accepted")
	}
}

package httpapi

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"

	"github.com/riskibarqy/group-stage/internal/domain/tournament"
	"github.com/riskibarqy/group-stage/internal/infrastructure/realtime"
	"github.com/riskibarqy/group-stage/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/group-stage/internal/platform/id"
	"github.com/riskibarqy/group-stage/internal/platform/lock"
	"github.com/riskibarqy/group-stage/internal/platform/logging"
	"github.com/riskibarqy/group-stage/internal/usecase"
)

const testAdminToken = "test-admin-token"

type apiFixture struct {
	server *httptest.Server
	hub    *realtime.Hub
}

type envelope struct {
	APIVersion string `json:"apiVersion"`
	Data       any    `json:"data"`
	Error      *struct {
		Code   int    `json:"code"`
		Status string `json:"status"`
		Errors []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	logger := logging.NewNop()
	store := memory.NewStore()
	teams := memory.NewTeamRepository(store)
	matches := memory.NewMatchRepository(store)
	rules := tournament.DefaultRules()
	locks := lock.NewService(lock.NewMemoryStore(), id.NewUUIDGenerator(), nil, lock.DefaultOptions(), logger)
	lockOpts := lock.Options{TTL: 5 * time.Second, Timeout: time.Second, PollInterval: time.Millisecond}

	hub := realtime.NewHub(realtime.DefaultOptions(), logger)
	standings := usecase.NewStandingService(teams, matches, rules)
	broadcaster, err := usecase.NewBroadcaster(standings, teams, NewLivePublisher(hub), rules, 16, time.Second, logger)
	if err != nil {
		t.Fatalf("new broadcaster: %v", err)
	}

	handler := NewHandler(
		usecase.NewTeamService(teams, matches, locks, lockOpts, rules, broadcaster, logger),
		usecase.NewMatchService(teams, matches, locks, lockOpts, rules, broadcaster, logger),
		standings,
		usecase.NewAdminService(teams, matches, locks, lockOpts, broadcaster, logger),
		hub,
		logger,
	)
	srv := httptest.NewServer(NewRouter(handler, RouterConfig{AdminToken: testAdminToken}, logger))
	t.Cleanup(func() {
		_ = broadcaster.Close(context.Background())
		hub.Close()
		srv.Close()
	})

	return &apiFixture{server: srv, hub: hub}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, admin bool) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := sonic.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set(adminTokenHeader, testAdminToken)
	}

	resp, err := f.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	var out envelope
	if len(raw) > 0 {
		if err := sonic.Unmarshal(raw, &out); err != nil {
			t.Fatalf("unmarshal response %q: %v", raw, err)
		}
	}
	return resp.StatusCode, out
}

func (f *apiFixture) registerGroupOne(t *testing.T) {
	t.Helper()

	status, body := f.do(t, http.MethodPost, "/v1/teams", map[string]any{
		"teams": []map[string]any{
			{"team_name": "Alpha", "registration_date_ddmm": "01/01", "group_number": 1},
			{"team_name": "Bravo", "registration_date_ddmm": "02/01", "group_number": 1},
			{"team_name": "Charlie", "registration_date_ddmm": "03/01", "group_number": 1},
			{"team_name": "Delta", "registration_date_ddmm": "03/01", "group_number": 1},
			{"team_name": "Echo", "registration_date_ddmm": "05/01", "group_number": 2},
		},
	}, true)
	if status != http.StatusCreated {
		t.Fatalf("register teams: status %d body %+v", status, body)
	}
}

func results(fixtures ...[4]any) map[string]any {
	items := make([]map[string]any, 0, len(fixtures))
	for _, f := range fixtures {
		items = append(items, map[string]any{
			"result": []map[string]any{
				{"team_name": f[0], "goals_scored": f[1]},
				{"team_name": f[2], "goals_scored": f[3]},
			},
		})
	}
	return map[string]any{"results": items}
}

func reasonOf(t *testing.T, body envelope) string {
	t.Helper()
	if body.Error == nil || len(body.Error.Errors) == 0 {
		t.Fatalf("expected error envelope, got %+v", body)
	}
	return body.Error.Errors[0].Reason
}

func TestAPI_SubmitResultsAndReadStandings(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	f.registerGroupOne(t)

	status, body := f.do(t, http.MethodPost, "/v1/rounds/1/results", results(
		[4]any{"Alpha", 2, "Bravo", 1},
		[4]any{"Charlie", 0, "Delta", 0},
	), true)
	if status != http.StatusCreated {
		t.Fatalf("submit results: status %d body %+v", status, body)
	}

	status, body = f.do(t, http.MethodGet, "/v1/rounds/1/standings?group=1", nil, false)
	if status != http.StatusOK {
		t.Fatalf("get standings: status %d body %+v", status, body)
	}
	groups, _ := body.Data.([]any)
	if len(groups) != 1 {
		t.Fatalf("expected one group, got %+v", body.Data)
	}
	rows, _ := groups[0].(map[string]any)["standings"].([]any)
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows, got %d", len(rows))
	}

	type want struct {
		name     string
		position float64
		tied     bool
	}
	expected := []want{
		{name: "Alpha", position: 1},
		{name: "Charlie", position: 2, tied: true},
		{name: "Delta", position: 2, tied: true},
		{name: "Bravo", position: 4},
	}
	for i, w := range expected {
		row := rows[i].(map[string]any)
		if row["team_name"] != w.name || row["position"] != w.position || row["is_tied"] != w.tied {
			t.Fatalf("row %d: expected %+v, got %+v", i, w, row)
		}
	}
}

func TestAPI_SubmitResultsErrorMapping(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	f.registerGroupOne(t)

	if status, body := f.do(t, http.MethodPost, "/v1/rounds/1/results", results([4]any{"Alpha", 1, "Bravo", 0}), true); status != http.StatusCreated {
		t.Fatalf("seed results: status %d body %+v", status, body)
	}

	tests := []struct {
		name       string
		round      string
		payload    map[string]any
		wantStatus int
		wantReason string
	}{
		{name: "self match", round: "1", payload: results([4]any{"Alpha", 1, "Alpha", 0}), wantStatus: http.StatusBadRequest, wantReason: "selfMatch"},
		{name: "duplicate in batch", round: "2", payload: results([4]any{"Alpha", 1, "Bravo", 0}, [4]any{"Bravo", 2, "Alpha", 2}), wantStatus: http.StatusConflict, wantReason: "duplicateFixture"},
		{name: "already played", round: "1", payload: results([4]any{"Bravo", 3, "Alpha", 3}), wantStatus: http.StatusConflict, wantReason: "duplicateFixture"},
		{name: "unknown team", round: "1", payload: results([4]any{"Alpha", 1, "Zulu", 0}), wantStatus: http.StatusUnprocessableEntity, wantReason: "unknownTeam"},
		{name: "cross group", round: "1", payload: results([4]any{"Alpha", 1, "Echo", 0}), wantStatus: http.StatusUnprocessableEntity, wantReason: "crossGroupNotAllowed"},
		{name: "negative goals", round: "1", payload: results([4]any{"Charlie", -1, "Delta", 0}), wantStatus: http.StatusBadRequest, wantReason: "invalidInput"},
		{name: "round out of range", round: "9", payload: results([4]any{"Charlie", 1, "Delta", 0}), wantStatus: http.StatusBadRequest, wantReason: "invalidInput"},
		{name: "one sided result", round: "1", payload: map[string]any{"results": []map[string]any{{"result": []map[string]any{{"team_name": "Charlie", "goals_scored": 1}}}}}, wantStatus: http.StatusBadRequest, wantReason: "invalidInput"},
	}

	for _, tt := range tests {
		status, body := f.do(t, http.MethodPost, "/v1/rounds/"+tt.round+"/results", tt.payload, true)
		if status != tt.wantStatus {
			t.Fatalf("%s: expected status %d, got %d body %+v", tt.name, tt.wantStatus, status, body)
		}
		if got := reasonOf(t, body); got != tt.wantReason {
			t.Fatalf("%s: expected reason %q, got %q", tt.name, tt.wantReason, got)
		}
	}

	status, body := f.do(t, http.MethodPost, "/v1/rounds/3/results", results([4]any{"Alpha", 1, "Echo", 0}), true)
	if status != http.StatusCreated {
		t.Fatalf("expected cross-group fixture in final round, got %d body %+v", status, body)
	}
}

func TestAPI_AdminRoutesRequireToken(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	status, body := f.do(t, http.MethodPost, "/v1/teams", map[string]any{
		"teams": []map[string]any{{"team_name": "Alpha", "registration_date_ddmm": "01/01", "group_number": 1}},
	}, false)
	if status != http.StatusUnauthorized || reasonOf(t, body) != "unauthorized" {
		t.Fatalf("expected 401 unauthorized, got %d %+v", status, body)
	}

	if status, _ := f.do(t, http.MethodDelete, "/v1/admin/data", nil, false); status != http.StatusUnauthorized {
		t.Fatalf("expected reset without token to be rejected, got %d", status)
	}
}

func TestAPI_TeamLifecycle(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	f.registerGroupOne(t)

	status, body := f.do(t, http.MethodPost, "/v1/teams", map[string]any{
		"teams": []map[string]any{{"team_name": "Alpha", "registration_date_ddmm": "07/07", "group_number": 1}},
	}, true)
	if status != http.StatusConflict || reasonOf(t, body) != "duplicateTeamName" {
		t.Fatalf("expected duplicate name conflict, got %d %+v", status, body)
	}

	status, body = f.do(t, http.MethodGet, "/v1/teams?group=1", nil, false)
	if status != http.StatusOK {
		t.Fatalf("list teams: %d %+v", status, body)
	}
	teams, _ := body.Data.([]any)
	if len(teams) != 4 {
		t.Fatalf("expected 4 teams in group 1, got %d", len(teams))
	}
	alpha := teams[0].(map[string]any)
	alphaID := int64(alpha["id"].(float64))
	if alpha["registration_date_ddmm"] != "01/01" {
		t.Fatalf("unexpected registration date: %+v", alpha)
	}

	if status, body := f.do(t, http.MethodPost, "/v1/rounds/1/results", results([4]any{"Alpha", 3, "Bravo", 1}), true); status != http.StatusCreated {
		t.Fatalf("submit: %d %+v", status, body)
	}

	path := "/v1/teams/" + strconv.FormatInt(alphaID, 10)
	status, body = f.do(t, http.MethodPut, path, map[string]any{"team_name": "Alpha FC", "registration_date_ddmm": "29/02"}, true)
	if status != http.StatusOK {
		t.Fatalf("update team: %d %+v", status, body)
	}
	if got := body.Data.(map[string]any); got["team_name"] != "Alpha FC" || got["registration_date_ddmm"] != "29/02" {
		t.Fatalf("unexpected updated team: %+v", got)
	}

	status, body = f.do(t, http.MethodGet, path, nil, false)
	if status != http.StatusOK {
		t.Fatalf("get team: %d %+v", status, body)
	}
	matches, _ := body.Data.(map[string]any)["matches"].([]any)
	if len(matches) != 1 || matches[0].(map[string]any)["opponent_name"] != "Bravo" {
		t.Fatalf("unexpected match history: %+v", body.Data)
	}

	if status, _ := f.do(t, http.MethodDelete, path, nil, true); status != http.StatusNoContent {
		t.Fatalf("expected 204 on delete, got %d", status)
	}
	if status, body := f.do(t, http.MethodGet, path, nil, false); status != http.StatusNotFound || reasonOf(t, body) != "notFound" {
		t.Fatalf("expected 404 after delete, got %d %+v", status, body)
	}

	status, body = f.do(t, http.MethodGet, "/v1/rounds/1/results", nil, false)
	if status != http.StatusOK {
		t.Fatalf("list results: %d %+v", status, body)
	}
	if fixtures, _ := body.Data.([]any); len(fixtures) != 0 {
		t.Fatalf("expected deleted team's match to be gone, got %+v", fixtures)
	}
}

func TestAPI_ResetAll(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	f.registerGroupOne(t)

	if status, _ := f.do(t, http.MethodDelete, "/v1/admin/data", nil, true); status != http.StatusNoContent {
		t.Fatalf("expected 204 on reset, got %d", status)
	}
	status, body := f.do(t, http.MethodGet, "/v1/teams", nil, false)
	if status != http.StatusOK {
		t.Fatalf("list teams: %d", status)
	}
	if teams, _ := body.Data.([]any); len(teams) != 0 {
		t.Fatalf("expected empty roster, got %+v", teams)
	}
}

func TestAPI_InvalidQueryAndPath(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	paths := []string{
		"/v1/rounds/x/standings",
		"/v1/rounds/1/standings?group=abc",
		"/v1/rounds/1/standings?qualifying_count=-2",
		"/v1/rounds/1/results?group=7",
		"/v1/teams/0",
	}
	for _, path := range paths {
		if status, body := f.do(t, http.MethodGet, path, nil, false); status != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d %+v", path, status, body)
		}
	}
}

func TestAPI_StandingsStreamReceivesUpdates(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	f.registerGroupOne(t)

	wsURL := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/v1/ws/rounds/1/standings?group=1"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var snapshot realtime.Message
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if err := conn.ReadJSON(&snapshot); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if snapshot.Type != realtime.MessageSnapshot {
		t.Fatalf("expected snapshot first, got %+v", snapshot)
	}

	if status, body := f.do(t, http.MethodPost, "/v1/rounds/1/results", results([4]any{"Alpha", 2, "Bravo", 0}), true); status != http.StatusCreated {
		t.Fatalf("submit: %d %+v", status, body)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		_ = conn.SetReadDeadline(deadline)
		var msg struct {
			Type    string          `json:"type"`
			Payload groupRankingDTO `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("expected standings update, read failed: %v", err)
		}
		if msg.Type != realtime.MessageUpdate || len(msg.Payload.Standings) == 0 {
			continue
		}
		if top := msg.Payload.Standings[0]; top.TeamName == "Alpha" && top.Points == 3 {
			return
		}
	}
}

func TestAPI_StandingsStreamRequiresGroup(t *testing.T) {
	t.Parallel()

	f := newAPIFixture(t)
	if status, _ := f.do(t, http.MethodGet, "/v1/ws/rounds/1/standings", nil, false); status != http.StatusBadRequest {
		t.Fatalf("expected 400 without group, got %d", status)
	}
}

package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/snakegame-go/internal/api"
	"github.com/mcoot/snakegame-go/internal/api/apierr"
	"github.com/mcoot/snakegame-go/internal/api/response"
	"github.com/mcoot/snakegame-go/internal/factory"
	"github.com/mcoot/snakegame-go/internal/testutil"
)

// testServer wraps a router built on the in-memory test app
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()

	router := api.NewRouter(api.RouterConfig{
		Logger:             testutil.NopLogger(),
		AuthService:        app.AuthService,
		LeaderboardService: app.LeaderboardService,
		GameStateService:   app.GameStateService,
		Metrics:            app.Metrics,
		Gatherer:           app.Registry,
	})

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	switch b := body.(type) {
	case nil:
		reqBody = bytes.NewBuffer(nil)
	case string:
		reqBody = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reqBody = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// envelope is the decoded form of every API response
type envelope struct {
	Success bool             `json:"success"`
	Data    json.RawMessage  `json:"data"`
	Error   *apierr.APIError `json:"error"`
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env), rr.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func assertAPIError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, rr.Code, rr.Body.String())
	env := decode(t, rr, nil)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, code, env.Error.Code)
}

func signup(t *testing.T, ts *testServer, username, email, password string) response.AuthResponse {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/auth/signup", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp response.AuthResponse
	env := decode(t, rr, &resp)
	require.True(t, env.Success)
	return resp
}

func submit(t *testing.T, ts *testServer, username string, score int, mode string) *httptest.ResponseRecorder {
	t.Helper()
	return ts.request(http.MethodPost, "/api/leaderboard", map[string]any{
		"score":    score,
		"mode":     mode,
		"username": username,
	}, "")
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestSignupAndLogin(t *testing.T) {
	ts := newTestServer(t)

	signed := signup(t, ts, "algo", "algo@example.com", "secret123")
	assert.Equal(t, "algo", signed.User.Username)
	assert.Equal(t, "algo@example.com", signed.User.Email)
	assert.Nil(t, signed.User.AvatarURL)
	assert.True(t, factory.TestEpoch.Equal(signed.User.CreatedAt))
	assert.NotEmpty(t, signed.SessionToken)

	rr := ts.request(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "algo@example.com",
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var logged response.AuthResponse
	decode(t, rr, &logged)
	assert.Equal(t, signed.User.ID, logged.User.ID)
	assert.NotEqual(t, signed.SessionToken, logged.SessionToken)

	// Both sessions stay valid
	assert.Equal(t, 2, ts.app.Sessions.Len())
}

func TestSignupNeverExposesPasswordHash(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "algo",
		"email":    "algo@example.com",
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	body := rr.Body.String()
	assert.NotContains(t, body, "secret123")
	assert.NotContains(t, body, "$2a$")
	assert.NotContains(t, strings.ToLower(body), "password")
}

func TestSignupSetsSessionCookie(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "algo",
		"email":    "algo@example.com",
		"password": "secret123",
	}, "")
	require.Equal(t, http.StatusCreated, rr.Code)

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	// The cookie alone authenticates
	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.AddCookie(cookies[0])
	sessionRR := httptest.NewRecorder()
	ts.handler.ServeHTTP(sessionRR, req)

	var user response.User
	decode(t, sessionRR, &user)
	assert.Equal(t, "algo", user.Username)
}

func TestSignupDuplicates(t *testing.T) {
	ts := newTestServer(t)
	signup(t, ts, "algo", "algo@example.com", "pw1")

	rr := ts.request(http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "other",
		"email":    "algo@example.com",
		"password": "pw2",
	}, "")
	assertAPIError(t, rr, http.StatusConflict, apierr.CodeEmailExists)

	rr = ts.request(http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "algo",
		"email":    "other@example.com",
		"password": "pw2",
	}, "")
	assertAPIError(t, rr, http.StatusConflict, apierr.CodeUsernameExists)

	// Email wins when both collide
	rr = ts.request(http.MethodPost, "/api/auth/signup", map[string]string{
		"username": "algo",
		"email":    "algo@example.com",
		"password": "pw2",
	}, "")
	assertAPIError(t, rr, http.StatusConflict, apierr.CodeEmailExists)

	count, err := ts.app.Storage.CountUsers(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSignupValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"missing username", map[string]string{"email": "a@b.co", "password": "pw"}},
		{"missing email", map[string]string{"username": "algo", "password": "pw"}},
		{"missing password", map[string]string{"username": "algo", "email": "a@b.co"}},
		{"malformed email", map[string]string{"username": "algo", "email": "not-an-email", "password": "pw"}},
		{"unknown field", map[string]string{"username": "algo", "email": "a@b.co", "password": "pw", "role": "admin"}},
		{"malformed json", `{"username":`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := ts.request(http.MethodPost, "/api/auth/signup", tt.body, "")
			assertAPIError(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)
		})
	}
}

func TestConcurrentSignupsSameUsername(t *testing.T) {
	ts := newTestServer(t)

	const n = 10
	codes := make([]int, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rr := ts.request(http.MethodPost, "/api/auth/signup", map[string]string{
				"username": "algo",
				"email":    "algo" + string(rune('a'+i)) + "@example.com",
				"password": "pw",
			}, "")
			codes[i] = rr.Code
		}()
	}
	wg.Wait()

	created := 0
	for _, code := range codes {
		if code == http.StatusCreated {
			created++
		} else {
			assert.Equal(t, http.StatusConflict, code)
		}
	}
	assert.Equal(t, 1, created)
}

func TestLoginFailures(t *testing.T) {
	ts := newTestServer(t)
	signup(t, ts, "algo", "algo@example.com", "secret123")

	wrongPassword := ts.request(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "algo@example.com",
		"password": "nope",
	}, "")
	assertAPIError(t, wrongPassword, http.StatusUnauthorized, apierr.CodeInvalidCredentials)

	unknownEmail := ts.request(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "nobody@example.com",
		"password": "secret123",
	}, "")
	assertAPIError(t, unknownEmail, http.StatusUnauthorized, apierr.CodeInvalidCredentials)

	// Both failures are indistinguishable
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())

	// No session was issued by either attempt
	assert.Equal(t, 1, ts.app.Sessions.Len())
}

func TestSessionAndLogout(t *testing.T) {
	ts := newTestServer(t)
	signed := signup(t, ts, "algo", "algo@example.com", "secret123")

	rr := ts.request(http.MethodGet, "/api/auth/session", nil, signed.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var user response.User
	decode(t, rr, &user)
	assert.Equal(t, signed.User.ID, user.ID)

	rr = ts.request(http.MethodPost, "/api/auth/logout", nil, signed.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, decode(t, rr, nil).Success)

	rr = ts.request(http.MethodGet, "/api/auth/session", nil, signed.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	env := decode(t, rr, nil)
	assert.True(t, env.Success)
	assert.Equal(t, "null", string(env.Data))

	// Logging out again, or without any session, still succeeds
	rr = ts.request(http.MethodPost, "/api/auth/logout", nil, signed.SessionToken)
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = ts.request(http.MethodPost, "/api/auth/logout", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestSessionExpires(t *testing.T) {
	ts := newTestServer(t)
	signed := signup(t, ts, "algo", "algo@example.com", "secret123")

	ts.app.MockClock.Advance(24 * time.Hour)

	rr := ts.request(http.MethodGet, "/api/auth/session", nil, signed.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "null", string(decode(t, rr, nil).Data))
}

func TestLeaderboardScenario(t *testing.T) {
	ts := newTestServer(t)
	signup(t, ts, "algo", "algo@example.com", "pw1")
	signup(t, ts, "bob", "bob@example.com", "pw2")

	rr := submit(t, ts, "algo", 120, "walls")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var record response.ScoreRecord
	decode(t, rr, &record)
	assert.Equal(t, "algo", record.Username)
	assert.Equal(t, 120, record.Score)
	assert.Equal(t, "walls", record.Mode)
	assert.NotEmpty(t, record.ID)
	assert.NotContains(t, rr.Body.String(), `"rank"`)

	require.Equal(t, http.StatusCreated, submit(t, ts, "bob", 300, "walls").Code)
	require.Equal(t, http.StatusCreated, submit(t, ts, "algo", 90, "pass-through").Code)

	rr = ts.request(http.MethodGet, "/api/leaderboard?mode=walls", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var walls []response.LeaderboardEntry
	decode(t, rr, &walls)
	require.Len(t, walls, 2)
	assert.Equal(t, "bob", walls[0].Username)
	assert.Equal(t, 1, walls[0].Rank)
	assert.Equal(t, "algo", walls[1].Username)
	assert.Equal(t, 2, walls[1].Rank)

	rr = ts.request(http.MethodGet, "/api/leaderboard?mode=pass-through", nil, "")
	var passThrough []response.LeaderboardEntry
	decode(t, rr, &passThrough)
	require.Len(t, passThrough, 1)
	assert.Equal(t, 1, passThrough[0].Rank)
	assert.Equal(t, 90, passThrough[0].Score)

	rr = ts.request(http.MethodGet, "/api/leaderboard", nil, "")
	var all []response.LeaderboardEntry
	decode(t, rr, &all)
	require.Len(t, all, 3)
	assert.Equal(t, []int{300, 120, 90}, []int{all[0].Score, all[1].Score, all[2].Score})
	assert.Equal(t, []int{1, 2, 3}, []int{all[0].Rank, all[1].Rank, all[2].Rank})
}

func TestLeaderboardEmpty(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/leaderboard", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)
	env := decode(t, rr, nil)
	assert.True(t, env.Success)
	assert.Equal(t, "[]", string(env.Data))
}

func TestLeaderboardUnknownMode(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/leaderboard?mode=zigzag", nil, "")
	assertAPIError(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)

	rr = ts.request(http.MethodGet, "/api/leaderboard/stats?mode=zigzag", nil, "")
	assertAPIError(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)
}

func TestSubmitScoreFailures(t *testing.T) {
	ts := newTestServer(t)
	signup(t, ts, "algo", "algo@example.com", "pw1")

	assertAPIError(t, submit(t, ts, "ghost", 10, "walls"), http.StatusNotFound, apierr.CodeUserNotFound)
	assertAPIError(t, submit(t, ts, "Algo", 10, "walls"), http.StatusNotFound, apierr.CodeUserNotFound)
	assertAPIError(t, submit(t, ts, "algo", -1, "walls"), http.StatusBadRequest, apierr.CodeInvalidScore)
	assertAPIError(t, submit(t, ts, "algo", 10, "zigzag"), http.StatusBadRequest, apierr.CodeInvalidScore)

	rr := ts.request(http.MethodPost, "/api/leaderboard", map[string]any{"mode": "walls", "username": "algo"}, "")
	assertAPIError(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)

	// Nothing was recorded
	records, err := ts.app.Storage.ListScores(t.Context(), nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLeaderboardStats(t *testing.T) {
	ts := newTestServer(t)
	signup(t, ts, "algo", "algo@example.com", "pw1")
	for _, score := range []int{10, 20, 20, 50} {
		require.Equal(t, http.StatusCreated, submit(t, ts, "algo", score, "walls").Code)
	}
	require.Equal(t, http.StatusCreated, submit(t, ts, "algo", 1000, "pass-through").Code)

	rr := ts.request(http.MethodGet, "/api/leaderboard/stats?mode=walls", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	var stats response.Stats
	decode(t, rr, &stats)
	assert.Equal(t, "walls", stats.Mode)
	assert.Equal(t, 4, stats.Count)
	assert.Equal(t, 50, stats.Top)
	assert.InDelta(t, 25, stats.Mean, 1e-9)
	assert.InDelta(t, 20, stats.Median, 1e-9)
	assert.Equal(t, []int{20}, stats.Modes)
}

func TestGameSaveAndLoad(t *testing.T) {
	ts := newTestServer(t)
	algo := signup(t, ts, "algo", "algo@example.com", "pw1")
	bob := signup(t, ts, "bob", "bob@example.com", "pw2")

	// Nothing saved yet
	rr := ts.request(http.MethodGet, "/api/game/load", nil, algo.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "null", string(decode(t, rr, nil).Data))

	body := `{"gameState":{"snake":[{"x":5,"y":5},{"x":4,"y":5}],"food":{"x":9,"y":2},
		"direction":"RIGHT","score":30,"status":"paused","mode":"walls","speed":120}}`
	rr = ts.request(http.MethodPost, "/api/game/save", body, algo.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = ts.request(http.MethodGet, "/api/game/load", nil, algo.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	var saved response.SavedGame
	decode(t, rr, &saved)
	assert.Equal(t, 30, saved.GameState.Score)
	assert.Equal(t, "RIGHT", saved.GameState.Direction)
	assert.Equal(t, []response.Position{{X: 5, Y: 5}, {X: 4, Y: 5}}, saved.GameState.Snake)

	// Saved games are per user
	rr = ts.request(http.MethodGet, "/api/game/load", nil, bob.SessionToken)
	assert.Equal(t, "null", string(decode(t, rr, nil).Data))

	rr = ts.request(http.MethodDelete, "/api/game/save", nil, algo.SessionToken)
	require.Equal(t, http.StatusOK, rr.Code)
	rr = ts.request(http.MethodGet, "/api/game/load", nil, algo.SessionToken)
	assert.Equal(t, "null", string(decode(t, rr, nil).Data))
}

func TestGameRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	assertAPIError(t, ts.request(http.MethodGet, "/api/game/load", nil, ""), http.StatusUnauthorized, apierr.CodeUnauthorized)
	assertAPIError(t, ts.request(http.MethodGet, "/api/game/load", nil, "forged"), http.StatusUnauthorized, apierr.CodeUnauthorized)
	assertAPIError(t, ts.request(http.MethodPost, "/api/game/save", `{}`, ""), http.StatusUnauthorized, apierr.CodeUnauthorized)
}

func TestGameSaveRejectsInvalidState(t *testing.T) {
	ts := newTestServer(t)
	algo := signup(t, ts, "algo", "algo@example.com", "pw1")

	rr := ts.request(http.MethodPost, "/api/game/save", `{}`, algo.SessionToken)
	assertAPIError(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)

	body := `{"gameState":{"snake":[],"food":{"x":0,"y":0},"direction":"UP","score":0,"status":"idle","mode":"walls","speed":100}}`
	rr = ts.request(http.MethodPost, "/api/game/save", body, algo.SessionToken)
	assertAPIError(t, rr, http.StatusBadRequest, apierr.CodeInvalidGameState)

	body = `{"userId":"someone-else","gameState":{"snake":[{"x":1,"y":1}],"food":{"x":0,"y":0},
		"direction":"UP","score":0,"status":"idle","mode":"walls","speed":100}}`
	rr = ts.request(http.MethodPost, "/api/game/save", body, algo.SessionToken)
	assertAPIError(t, rr, http.StatusBadRequest, apierr.CodeInvalidRequest)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	assertAPIError(t, ts.request(http.MethodGet, "/api/nope", nil, ""), http.StatusNotFound, apierr.CodeNotFound)
	assertAPIError(t, ts.request(http.MethodPut, "/api/leaderboard", nil, ""), http.StatusMethodNotAllowed, apierr.CodeMethodNotAllowed)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	signup(t, ts, "algo", "algo@example.com", "pw1")
	ts.request(http.MethodGet, "/api/leaderboard", nil, "")

	rr := ts.request(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := rr.Body.String()
	assert.Contains(t, body, "snake_signups_total")
	assert.Contains(t, body, `route="/api/leaderboard"`)
}

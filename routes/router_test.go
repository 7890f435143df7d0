package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/cracker/config"
	"github.com/cppla/cracker/models"
	"github.com/cppla/cracker/store"
	"github.com/cppla/cracker/utils"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testAPI struct {
	t      *testing.T
	router *gin.Engine
	store  *store.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	config.Set(config.AppConfig{
		JWTSecret:          "test-secret",
		GinMode:            "test",
		RateLimitPerMinute: 100000,
		CacheTTLSeconds:    60,
		AllowedOrigins:     []string{"*"},
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.All()...))

	s := store.New(db, store.RetryPolicy{MaxAttempts: 2, InitialInterval: time.Millisecond})
	return &testAPI{t: t, router: SetupRouter(s), store: s}
}

func (a *testAPI) do(method, path string, body interface{}, token string) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func (a *testAPI) createUser(name, email string) models.User {
	a.t.Helper()
	status, env := a.do(http.MethodPost, "/api/v1/users", gin.H{"name": name, "email": email}, "")
	require.Equal(a.t, http.StatusCreated, status)
	var data struct {
		User models.User `json:"user"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &data))
	return data.User
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func allFlags(userID, date string) gin.H {
	return gin.H{
		"userId": userID, "date": date,
		"stepsCompleted": true, "waterGoalMet": true, "proteinGoalMet": true, "sleepGoalMet": true,
		"readingCompleted": true, "supplementsTaken": true, "exerciseCompleted": true, "adultingTaskDone": true,
	}
}

type statsPayload struct {
	CurrentStreak    int `json:"currentStreak"`
	LongestStreak    int `json:"longestStreak"`
	TotalDaysTracked int `json:"totalDaysTracked"`
	PerfectDays      int `json:"perfectDays"`
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	status, env := api.do(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, status)

	data := decode[struct {
		Status   string `json:"status"`
		Database struct {
			Connected bool `json:"connected"`
		} `json:"database"`
	}](t, env.Data)
	assert.Equal(t, "ok", data.Status)
	assert.True(t, data.Database.Connected)
}

func TestCreateAndLookupUser(t *testing.T) {
	api := newTestAPI(t)
	u := api.createUser("Holly", "holly@example.com")
	assert.NotEmpty(t, u.ID)

	status, _ := api.do(http.MethodPost, "/api/v1/users", gin.H{"name": "Again", "email": "holly@example.com"}, "")
	assert.Equal(t, http.StatusConflict, status)

	status, _ = api.do(http.MethodPost, "/api/v1/users", gin.H{"name": "No Email"}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do(http.MethodGet, "/api/v1/users", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do(http.MethodGet, "/api/v1/users?email=nobody@example.com", nil, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, env := api.do(http.MethodGet, "/api/v1/users?email=holly@example.com", nil, "")
	require.Equal(t, http.StatusOK, status)
	data := decode[struct {
		User              models.User              `json:"user"`
		ProgressEntries   []models.ProgressEntry   `json:"progressEntries"`
		ChallengeSettings models.ChallengeSettings `json:"challengeSettings"`
	}](t, env.Data)
	assert.Equal(t, u.ID, data.User.ID)
	assert.Empty(t, data.ProgressEntries)
	assert.Equal(t, 8000, data.ChallengeSettings.StepsGoal)
}

func TestSaveProgressReturnsStatsAndUpdatesLeaderboard(t *testing.T) {
	api := newTestAPI(t)
	u := api.createUser("Ivy", "ivy@example.com")

	body := allFlags(u.ID, "2024-12-01")
	body["adultingTask"] = "<b>renew passport</b>"
	status, env := api.do(http.MethodPost, "/api/v1/progress", body, "")
	require.Equal(t, http.StatusOK, status)
	saved := decode[struct {
		Entry struct {
			AdultingTask   string `json:"adultingTask"`
			CompletionRate int    `json:"completionRate"`
		} `json:"entry"`
		Stats statsPayload `json:"stats"`
	}](t, env.Data)
	assert.Equal(t, "renew passport", saved.Entry.AdultingTask)
	assert.Equal(t, 100, saved.Entry.CompletionRate)
	assert.Equal(t, statsPayload{1, 1, 1, 1}, saved.Stats)

	// a day with nothing done ends the current streak
	status, env = api.do(http.MethodPost, "/api/v1/progress", gin.H{"userId": u.ID, "date": "2024-12-02"}, "")
	require.Equal(t, http.StatusOK, status)
	saved = decode[struct {
		Entry struct {
			AdultingTask   string `json:"adultingTask"`
			CompletionRate int    `json:"completionRate"`
		} `json:"entry"`
		Stats statsPayload `json:"stats"`
	}](t, env.Data)
	assert.Equal(t, statsPayload{0, 1, 2, 1}, saved.Stats)

	status, env = api.do(http.MethodGet, "/api/v1/leaderboard", nil, "")
	require.Equal(t, http.StatusOK, status)
	board := decode[struct {
		Entries []struct {
			statsPayload
			User struct {
				Name string `json:"name"`
			} `json:"user"`
		} `json:"entries"`
	}](t, env.Data)
	require.Len(t, board.Entries, 1)
	assert.Equal(t, "Ivy", board.Entries[0].User.Name)
	assert.Equal(t, 2, board.Entries[0].TotalDaysTracked)
	assert.Equal(t, 0, board.Entries[0].CurrentStreak)
}

func TestPlainTextSurvivesSanitizing(t *testing.T) {
	api := newTestAPI(t)
	u := api.createUser("<i>Siobhán</i> O'Brien", "siobhan@example.com")
	assert.Equal(t, "Siobhán O'Brien", u.Name)

	status, env := api.do(http.MethodGet, "/api/v1/users?email=siobhan@example.com", nil, "")
	require.Equal(t, http.StatusOK, status)
	found := decode[struct {
		User models.User `json:"user"`
	}](t, env.Data)
	assert.Equal(t, "Siobhán O'Brien", found.User.Name)

	body := allFlags(u.ID, "2024-12-03")
	body["adultingTask"] = "pay rent & bills < 5pm"
	status, env = api.do(http.MethodPost, "/api/v1/progress", body, "")
	require.Equal(t, http.StatusOK, status)
	saved := decode[struct {
		Entry struct {
			AdultingTask string `json:"adultingTask"`
		} `json:"entry"`
	}](t, env.Data)
	assert.Equal(t, "pay rent & bills < 5pm", saved.Entry.AdultingTask)

	status, env = api.do(http.MethodGet, "/api/v1/progress?userId="+u.ID+"&date=2024-12-03", nil, "")
	require.Equal(t, http.StatusOK, status)
	stored := decode[struct {
		AdultingTask string `json:"adultingTask"`
	}](t, env.Data)
	assert.Equal(t, "pay rent & bills < 5pm", stored.AdultingTask)
}

func TestSaveProgressValidation(t *testing.T) {
	api := newTestAPI(t)
	u := api.createUser("Noel", "noel@example.com")

	status, _ := api.do(http.MethodPost, "/api/v1/progress", gin.H{"userId": u.ID}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do(http.MethodPost, "/api/v1/progress", gin.H{"userId": u.ID, "date": "12/01/2024"}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do(http.MethodPost, "/api/v1/progress", gin.H{"userId": u.ID, "date": "2024-12-01", "sleepHours": 30}, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do(http.MethodPost, "/api/v1/progress", gin.H{"userId": "ghost", "date": "2024-12-01"}, "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestSaveProgressRejectsOtherUsersToken(t *testing.T) {
	api := newTestAPI(t)
	alice := api.createUser("Alice", "alice@example.com")
	bob := api.createUser("Bob", "bob@example.com")

	status, env := api.do(http.MethodPost, "/api/v1/users/login", gin.H{"email": "alice@example.com"}, "")
	require.Equal(t, http.StatusOK, status)
	token := decode[struct {
		Token string `json:"token"`
	}](t, env.Data).Token
	require.NotEmpty(t, token)

	status, _ = api.do(http.MethodPost, "/api/v1/progress", allFlags(bob.ID, "2024-12-01"), token)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = api.do(http.MethodPost, "/api/v1/progress", allFlags(alice.ID, "2024-12-01"), token)
	assert.Equal(t, http.StatusOK, status)
}

func TestGetProgress(t *testing.T) {
	api := newTestAPI(t)
	u := api.createUser("Rudy", "rudy@example.com")

	for _, d := range []string{"2024-12-03", "2024-12-01", "2024-12-02"} {
		status, _ := api.do(http.MethodPost, "/api/v1/progress", gin.H{"userId": u.ID, "date": d, "stepsCompleted": true, "waterGoalMet": true}, "")
		require.Equal(t, http.StatusOK, status)
	}

	status, env := api.do(http.MethodGet, "/api/v1/progress?userId="+u.ID, nil, "")
	require.Equal(t, http.StatusOK, status)
	list := decode[struct {
		Entries []struct {
			Date           time.Time `json:"date"`
			CompletionRate int       `json:"completionRate"`
		} `json:"entries"`
		Summary struct {
			statsPayload
			CompletionRate int `json:"completionRate"`
			PerfectDayRate int `json:"perfectDayRate"`
		} `json:"summary"`
	}](t, env.Data)
	require.Len(t, list.Entries, 3)
	assert.Equal(t, "2024-12-01", list.Entries[0].Date.UTC().Format(models.DateLayout))
	assert.Equal(t, "2024-12-03", list.Entries[2].Date.UTC().Format(models.DateLayout))
	assert.Equal(t, 25, list.Entries[0].CompletionRate)
	assert.Equal(t, statsPayload{3, 3, 3, 0}, list.Summary.statsPayload)
	assert.Equal(t, 25, list.Summary.CompletionRate)
	assert.Equal(t, 0, list.Summary.PerfectDayRate)

	status, env = api.do(http.MethodGet, "/api/v1/progress?userId="+u.ID+"&date=2024-12-02", nil, "")
	require.Equal(t, http.StatusOK, status)
	one := decode[struct {
		StepsCompleted bool `json:"stepsCompleted"`
	}](t, env.Data)
	assert.True(t, one.StepsCompleted)

	status, _ = api.do(http.MethodGet, "/api/v1/progress?userId="+u.ID+"&date=2024-12-09", nil, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = api.do(http.MethodGet, "/api/v1/progress", nil, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestLeaderboardOrderAndRecompute(t *testing.T) {
	api := newTestAPI(t)
	a := api.createUser("A", "a@example.com")
	b := api.createUser("B", "b@example.com")

	for _, d := range []string{"2024-12-01", "2024-12-02"} {
		status, _ := api.do(http.MethodPost, "/api/v1/progress", allFlags(b.ID, d), "")
		require.Equal(t, http.StatusOK, status)
	}
	status, _ := api.do(http.MethodPost, "/api/v1/progress", allFlags(a.ID, "2024-12-01"), "")
	require.Equal(t, http.StatusOK, status)

	status, env := api.do(http.MethodGet, "/api/v1/leaderboard", nil, "")
	require.Equal(t, http.StatusOK, status)
	board := decode[struct {
		Entries []struct {
			UserID string `json:"userId"`
		} `json:"entries"`
	}](t, env.Data)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, b.ID, board.Entries[0].UserID)
	assert.Equal(t, a.ID, board.Entries[1].UserID)

	status, env = api.do(http.MethodPost, "/api/v1/leaderboard", gin.H{"userId": a.ID}, "")
	require.Equal(t, http.StatusOK, status)
	entry := decode[struct {
		Entry statsPayload `json:"entry"`
	}](t, env.Data)
	assert.Equal(t, statsPayload{1, 1, 1, 1}, entry.Entry)

	status, _ = api.do(http.MethodPost, "/api/v1/leaderboard", gin.H{"userId": "ghost"}, "")
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = api.do(http.MethodPost, "/api/v1/leaderboard", gin.H{}, "")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSettingsRequireAuthForUpdate(t *testing.T) {
	api := newTestAPI(t)
	u := api.createUser("Mistle", "mistle@example.com")

	status, _ := api.do(http.MethodPut, "/api/v1/settings", gin.H{"stepsGoal": 12000}, "")
	assert.Equal(t, http.StatusUnauthorized, status)

	token, err := utils.GenerateToken(u.ID, u.Email, time.Hour)
	require.NoError(t, err)
	status, env := api.do(http.MethodPut, "/api/v1/settings", gin.H{"stepsGoal": 12000, "startDate": "2024-12-01", "endDate": "2024-12-24"}, token)
	require.Equal(t, http.StatusOK, status)
	updated := decode[struct {
		Settings models.ChallengeSettings `json:"settings"`
	}](t, env.Data)
	assert.Equal(t, 12000, updated.Settings.StepsGoal)

	status, _ = api.do(http.MethodPut, "/api/v1/settings", gin.H{"endDate": "not-a-date"}, token)
	assert.Equal(t, http.StatusBadRequest, status)

	status, env = api.do(http.MethodGet, "/api/v1/settings?userId="+u.ID, nil, "")
	require.Equal(t, http.StatusOK, status)
	got := decode[struct {
		Settings models.ChallengeSettings `json:"settings"`
	}](t, env.Data)
	assert.Equal(t, 12000, got.Settings.StepsGoal)
	assert.Equal(t, 7.0, got.Settings.SleepGoal)
}

func TestLogoutRevokesToken(t *testing.T) {
	api := newTestAPI(t)
	u := api.createUser("Star", "star@example.com")
	token, err := utils.GenerateToken(u.ID, u.Email, time.Hour)
	require.NoError(t, err)

	status, _ := api.do(http.MethodPost, "/api/v1/users/logout", nil, token)
	require.Equal(t, http.StatusOK, status)

	status, _ = api.do(http.MethodPut, "/api/v1/settings", gin.H{"stepsGoal": 9000}, token)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestShare(t *testing.T) {
	api := newTestAPI(t)
	u := api.createUser("Jingle", "jingle@example.com")
	status, _ := api.do(http.MethodPost, "/api/v1/progress", allFlags(u.ID, "2024-12-01"), "")
	require.Equal(t, http.StatusOK, status)
	status, _ = api.do(http.MethodPost, "/api/v1/progress", gin.H{"userId": u.ID, "date": "2024-12-02", "readingCompleted": true}, "")
	require.Equal(t, http.StatusOK, status)

	status, env := api.do(http.MethodPost, "/api/v1/share", gin.H{"userId": u.ID}, "")
	require.Equal(t, http.StatusOK, status)
	shared := decode[struct {
		Summary struct {
			UserName string `json:"userName"`
			Message  string `json:"message"`
			Stats    struct {
				TotalDays      int `json:"totalDays"`
				PerfectDays    int `json:"perfectDays"`
				CurrentStreak  int `json:"currentStreak"`
				CompletionRate int `json:"completionRate"`
			} `json:"stats"`
		} `json:"summary"`
		ShareURL string `json:"shareUrl"`
	}](t, env.Data)
	assert.Equal(t, "Jingle", shared.Summary.UserName)
	assert.NotEmpty(t, shared.Summary.Message)
	assert.Equal(t, 2, shared.Summary.Stats.TotalDays)
	assert.Equal(t, 1, shared.Summary.Stats.PerfectDays)
	assert.Equal(t, 2, shared.Summary.Stats.CurrentStreak)
	assert.Equal(t, 50, shared.Summary.Stats.CompletionRate)
	assert.Equal(t, "/community/share/"+u.ID, shared.ShareURL)

	status, _ = api.do(http.MethodPost, "/api/v1/share", gin.H{"userId": "ghost"}, "")
	assert.Equal(t, http.StatusNotFound, status)

	status, env = api.do(http.MethodGet, "/api/v1/share", nil, "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), "recentShares")
}

func TestMetricsAndNoRoute(t *testing.T) {
	api := newTestAPI(t)
	api.do(http.MethodGet, "/api/v1/leaderboard", nil, "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cracker_http_requests_total")

	status, env := api.do(http.MethodGet, "/api/v1/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, 40400, env.Code)
}

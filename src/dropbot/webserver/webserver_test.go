package webserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/trackclub/dropbot/src/dropbot/components/round"
	"github.com/trackclub/dropbot/src/dropbot/config"
	"github.com/trackclub/dropbot/src/dropbot/data"
	"github.com/trackclub/dropbot/src/dropbot/types"
)

type stubGateway struct {
	mu        sync.Mutex
	threadSeq int
	msgSeq    int
}

func (g *stubGateway) CreateThread(channelID, name string, autoArchiveMinutes int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.threadSeq++
	return fmt.Sprintf("thread-%d", g.threadSeq), nil
}

func (g *stubGateway) CreateWebhook(channelID, name string) (string, error) {
	return "https://discord.com/api/webhooks/1/x", nil
}

func (g *stubGateway) WebhookSend(webhookURL, content string, opts round.SendOptions) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.msgSeq++
	return fmt.Sprintf("msg-%d", g.msgSeq), nil
}

func (g *stubGateway) FetchMessageReactions(channelID, messageID string) (map[string]int, error) {
	return nil, nil
}

func (g *stubGateway) AddReaction(channelID, messageID, emoji string) error { return nil }

func (g *stubGateway) EditThread(threadID string, locked, archived bool) error { return nil }

func (g *stubGateway) ResolveChannel(channelID string) error { return nil }

func newTestServer(t *testing.T) (*gin.Engine, *data.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, data.Migrate(db))

	store := data.NewStore(db, data.Defaults{
		ChannelID:       "chan-1",
		DurationSeconds: 600,
		WebhookURL:      "https://discord.com/api/webhooks/1/seeded",
		AllowDomains:    types.DefaultAllowDomains,
	})
	manager := round.NewManager(round.Config{
		Store:      store,
		Gateway:    &stubGateway{},
		GraceDelay: 10 * time.Millisecond,
	})
	cfg := config.Config{APIToken: "secret"}
	return New(cfg, store, manager), store
}

func doJSON(t *testing.T, g *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func TestHealthzIsOpen(t *testing.T) {
	g, _ := newTestServer(t)
	w := doJSON(t, g, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	g, _ := newTestServer(t)

	w := doJSON(t, g, http.MethodGet, "/api/v1/status?guild_id=g1", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, g, http.MethodGet, "/api/v1/status?guild_id=g1", "wrong", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, g, http.MethodGet, "/api/v1/status?guild_id=g1", "secret", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStartAndEndRoundOverAPI(t *testing.T) {
	g, store := newTestServer(t)

	w := doJSON(t, g, http.MethodPost, "/api/v1/rounds/start", "secret",
		map[string]interface{}{"guild_id": "g1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	running, err := store.GetRunningRound("g1")
	require.NoError(t, err)
	require.NotNil(t, running)

	// Second start conflicts while the round runs.
	w = doJSON(t, g, http.MethodPost, "/api/v1/rounds/start", "secret",
		map[string]interface{}{"guild_id": "g1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, g, http.MethodPost, "/api/v1/rounds/end", "secret",
		map[string]interface{}{"guild_id": "g1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	ended, err := store.FetchRound(running.ID)
	require.NoError(t, err)
	assert.Equal(t, types.RoundEnded, ended.Status)

	w = doJSON(t, g, http.MethodPost, "/api/v1/rounds/end", "secret",
		map[string]interface{}{"guild_id": "g1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStartRoundRequiresChannel(t *testing.T) {
	g, store := newTestServer(t)

	_, err := store.GetOrCreateSettings("g2")
	require.NoError(t, err)
	require.NoError(t, store.UpdateSettings("g2", map[string]interface{}{"channel_id": ""}))

	w := doJSON(t, g, http.MethodPost, "/api/v1/rounds/start", "secret",
		map[string]interface{}{"guild_id": "g2"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusReportsRunningRound(t *testing.T) {
	g, _ := newTestServer(t)

	w := doJSON(t, g, http.MethodPost, "/api/v1/rounds/start", "secret",
		map[string]interface{}{"guild_id": "g1", "duration_minutes": 20})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, g, http.MethodGet, "/api/v1/status?guild_id=g1", "secret", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["webhook_set"])
	assert.Contains(t, resp, "running_round")
}

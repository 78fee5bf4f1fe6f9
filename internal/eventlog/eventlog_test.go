package eventlog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sentrywaf/waf/internal/models"
	"github.com/sentrywaf/waf/internal/realtime"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AttackLog{}))
	return db
}

func TestRecord_InsertsRowAndReturnsID(t *testing.T) {
	db := newTestDB(t)
	w := New(db, nil)

	entry, err := w.Record(context.Background(), Fields{
		IPAddress:   "1.2.3.4",
		Method:      "GET",
		Endpoint:    "/",
		ActionTaken: models.ActionAllow,
	})
	require.NoError(t, err)
	require.NotEmpty(t, entry.ID)

	var count int64
	require.NoError(t, db.Model(&models.AttackLog{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestRecord_NilHubDoesNotPanic(t *testing.T) {
	db := newTestDB(t)
	w := New(db, nil)
	require.NotPanics(t, func() {
		_, err := w.Record(context.Background(), Fields{IPAddress: "1.1.1.1", Method: "GET", Endpoint: "/", ActionTaken: models.ActionAllow})
		require.NoError(t, err)
	})
}

func TestRecord_BroadcastsToSubscribers(t *testing.T) {
	db := newTestDB(t)
	hub := realtime.NewHub()

	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(rw, r, nil)
		require.NoError(t, err)
		hub.Attach(conn)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Count() == 1 }, time.Second, 5*time.Millisecond)

	w := New(db, hub)
	entry, err := w.Record(context.Background(), Fields{
		IPAddress:   "9.9.9.9",
		Method:      "GET",
		Endpoint:    "/admin",
		ActionTaken: "block",
		ThreatScore: 100,
		ThreatTypes: []string{models.IPBlockedCategory},
	})
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var envelope struct {
		Type string           `json:"type"`
		Data models.AttackLog `json:"data"`
	}
	require.NoError(t, json.Unmarshal(msg, &envelope))
	require.Equal(t, "new_log", envelope.Type)
	require.Equal(t, entry.ID, envelope.Data.ID)
	require.Equal(t, "9.9.9.9", envelope.Data.IPAddress)
}

package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staypulse/internal/config"
	apierrors "staypulse/internal/errors"
	"staypulse/internal/shared/testutil"
	"staypulse/pkg/contracts/events"
)

func newTestServer(t *testing.T, origins []string) (*httptest.Server, *Hub) {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	hub := NewHub(nil, logger)
	h := NewHandler(HandlerConfig{
		Listings:       newTestListings(t),
		Hub:            hub,
		WebSocket:      config.Default().WebSocket,
		AllowedOrigins: origins,
		RequestTimeout: time.Second,
		ErrorHandler:   apierrors.NewErrorHandler(logger, false),
		Logger:         logger,
	})
	srv := httptest.NewServer(h)
	t.Cleanup(func() {
		hub.Shutdown(context.Background())
		srv.Close()
	})
	return srv, hub
}

type wireMessage struct {
	Type    events.MessageType `json:"type"`
	ReplyTo string             `json:"reply_to"`
	Data    json.RawMessage    `json:"data"`
}

func TestHandlerSessionRoundTrip(t *testing.T) {
	srv, hub := newTestServer(t, nil)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var hello wireMessage
	require.NoError(t, conn.ReadJSON(&hello))
	require.Equal(t, events.MessageTypeConnect, hello.Type)
	var connect events.ConnectData
	require.NoError(t, json.Unmarshal(hello.Data, &connect))
	assert.NotEmpty(t, connect.SessionID)
	assert.Equal(t, 3, connect.Rows)
	assert.Equal(t, 1, hub.SessionCount())

	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"id":   "q1",
		"type": "select",
		"data": map[string]interface{}{
			"view":     "overview",
			"criteria": map[string]interface{}{"neighbourhood_group": "Manhattan"},
		},
	}))

	var reply wireMessage
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, events.MessageTypeView, reply.Type)
	assert.Equal(t, "q1", reply.ReplyTo)

	var update struct {
		View      events.View `json:"view"`
		Selection struct {
			NeighbourhoodGroup string `json:"neighbourhood_group"`
		} `json:"selection"`
	}
	require.NoError(t, json.Unmarshal(reply.Data, &update))
	assert.Equal(t, events.ViewOverview, update.View)
	assert.Equal(t, "Manhattan", update.Selection.NeighbourhoodGroup)

	conn.Close()
	assert.Eventually(t, func() bool { return hub.SessionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandlerRejectsPlainHTTP(t *testing.T) {
	srv, hub := newTestServer(t, nil)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, 0, hub.SessionCount())
}

func TestHandlerRejectsForeignOrigin(t *testing.T) {
	srv, _ := newTestServer(t, []string{"https://dashboard.example.com"})

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://dashboard.example.com/"})

	tests := []struct {
		name   string
		origin string
		host   string
		want   bool
	}{
		{"no origin", "", "api.local", true},
		{"configured", "https://dashboard.example.com", "api.local", true},
		{"same host", "http://api.local", "api.local", true},
		{"foreign", "https://evil.example.com", "api.local", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws/session", nil)
			r.Host = tt.host
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, check(r))
		})
	}

	assert.True(t, originChecker(nil)(httptest.NewRequest(http.MethodGet, "/", nil)))
}

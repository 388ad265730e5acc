package browser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeDevTools(t *testing.T, reply func(req devtoolsRequest) interface{}) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		var req devtoolsRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}
		// 無関係なイベントを先に送る
		_ = conn.WriteJSON(map[string]interface{}{"method": "Target.targetCreated"})
		_ = conn.WriteJSON(reply(req))
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestProbeDevToolsReturnsProduct(t *testing.T) {
	url := fakeDevTools(t, func(req devtoolsRequest) interface{} {
		assert.Equal(t, "Browser.getVersion", req.Method)
		return map[string]interface{}{
			"id":     req.ID,
			"result": map[string]string{"product": "HeadlessChrome/120.0"},
		}
	})

	product, err := ProbeDevTools(context.Background(), url, 2*time.Second)
	require.NoError(t, err)
	assert.Equal(t, "HeadlessChrome/120.0", product)
}

func TestProbeDevToolsReportsProtocolError(t *testing.T) {
	url := fakeDevTools(t, func(req devtoolsRequest) interface{} {
		return map[string]interface{}{
			"id":    req.ID,
			"error": map[string]string{"message": "not allowed"},
		}
	})

	_, err := ProbeDevTools(context.Background(), url, 2*time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not allowed")
}

func TestProbeDevToolsUnreachable(t *testing.T) {
	_, err := ProbeDevTools(context.Background(), "ws://127.0.0.1:1/devtools/browser/x", 500*time.Millisecond)
	assert.Error(t, err)
}

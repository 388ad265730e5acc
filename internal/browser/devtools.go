package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
)

type devtoolsRequest struct {
	ID     int    `json:"id"`
	Method string `json:"method"`
}

type devtoolsResponse struct {
	ID     int `json:"id"`
	Result struct {
		Product string `json:"product"`
	} `json:"result"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ProbeDevTools リモートブラウザの DevTools に接続し Browser.getVersion を呼ぶ
// 応答があれば生存とみなし、ブラウザの製品名を返す
func ProbeDevTools(ctx context.Context, wsURL string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	conn.SetWriteDeadline(deadline)
	conn.SetReadDeadline(deadline)

	if err := conn.WriteJSON(devtoolsRequest{ID: 1, Method: "Browser.getVersion"}); err != nil {
		return "", err
	}

	// イベントが先に届くことがあるので id=1 の応答まで読み飛ばす
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return "", err
		}
		var resp devtoolsResponse
		if err := json.Unmarshal(data, &resp); err != nil {
			continue
		}
		if resp.ID != 1 {
			continue
		}
		if resp.Error != nil {
			return "", fmt.Errorf("devtools: %s", resp.Error.Message)
		}
		return resp.Result.Product, nil
	}
}

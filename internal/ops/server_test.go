package ops

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	tests := []struct {
		name        string
		browserErr  error
		discordErr  error
		wantStatus  int
		wantBrowser string
		wantDiscord string
	}{
		{
			name:        "all healthy",
			wantStatus:  http.StatusOK,
			wantBrowser: "ok",
			wantDiscord: "ok",
		},
		{
			name:        "browser down",
			browserErr:  errors.New("engine not running"),
			wantStatus:  http.StatusServiceUnavailable,
			wantBrowser: "error",
			wantDiscord: "ok",
		},
		{
			name:        "gateway disconnected",
			discordErr:  errors.New("gateway not ready"),
			wantStatus:  http.StatusServiceUnavailable,
			wantBrowser: "ok",
			wantDiscord: "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(":0", map[string]Checker{
				"browser": CheckFunc(func(context.Context) error { return tt.browserErr }),
				"discord": CheckFunc(func(context.Context) error { return tt.discordErr }),
			})

			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body healthResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.NotEmpty(t, body.Version)
			assert.Equal(t, tt.wantBrowser, body.Checks["browser"].Status)
			assert.Equal(t, tt.wantDiscord, body.Checks["discord"].Status)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := New(":0", nil)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "streakbot_render_duration_seconds"))
}

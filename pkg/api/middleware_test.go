package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		apiKey         string
		requestHeader  string
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "valid API key",
			apiKey:         "test-key",
			requestHeader:  "test-key",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "missing API key header",
			apiKey:         "test-key",
			requestHeader:  "",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Missing X-API-Key header",
		},
		{
			name:           "invalid API key",
			apiKey:         "test-key",
			requestHeader:  "wrong-key",
			expectedStatus: http.StatusUnauthorized,
			expectedError:  "Invalid API key",
		},
		{
			name:           "authentication disabled",
			apiKey:         "",
			requestHeader:  "",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "authentication disabled ignores header",
			apiKey:         "",
			requestHeader:  "anything",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			metrics := NewMetrics(prometheus.NewRegistry())
			handler := apiKeyMiddleware(tt.apiKey, metrics)(testHandler)

			req := httptest.NewRequest("GET", "/test", nil)
			if tt.requestHeader != "" {
				req.Header.Set("X-API-Key", tt.requestHeader)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedError != "" {
				var response APIResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.False(t, response.Success)
				assert.Equal(t, tt.expectedError, response.Error)
				assert.Equal(t, float64(1), testutil.ToFloat64(metrics.authRequestsTotal.WithLabelValues(statusError)))
			}
		})
	}
}

func TestSendSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	sendSuccess(w, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response APIResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.True(t, response.Success)
	assert.Equal(t, map[string]interface{}{"key": "value"}, response.Data)
	assert.Empty(t, response.Error)
}

func TestSendError(t *testing.T) {
	w := httptest.NewRecorder()
	sendError(w, "Test error message", http.StatusBadRequest)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response APIResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.False(t, response.Success)
	assert.Equal(t, "Test error message", response.Error)
	assert.Nil(t, response.Data)
}

func TestSendReplay(t *testing.T) {
	w := httptest.NewRecorder()
	sendReplay(w, `level "1".slc`, []byte("SLC3RPLY"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/octet-stream", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Equal(t, "SLC3RPLY", w.Body.String())
}

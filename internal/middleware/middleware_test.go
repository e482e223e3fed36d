package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"svc/internal/logging"
	shared "svc/shared/types"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestChain_RequestIDReachesHandlerAndLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := &logging.Logger{Logger: zap.New(core)}

	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.RequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})
	h := Chain(inner, Logger(logger), RequestID, Recover(logger))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/branches", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, seen, fields["request_id"])
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, "/branches", fields["path"])
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestLogger_LevelFollowsStatus(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
		want   zapcore.Level
		logged bool
	}{
		{"ok", "/api/status", http.StatusOK, zapcore.InfoLevel, true},
		{"client error", "/api/branches", http.StatusConflict, zapcore.WarnLevel, true},
		{"server error", "/api/commits", http.StatusInternalServerError, zapcore.ErrorLevel, true},
		{"health", HealthPath, http.StatusOK, zapcore.DebugLevel, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.InfoLevel)
			logger := &logging.Logger{Logger: zap.New(core)}
			h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte("body"))
			}))

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			entries := logs.FilterMessage("request completed").All()
			if !tt.logged {
				assert.Empty(t, entries)
				return
			}
			require.Len(t, entries, 1)
			assert.Equal(t, tt.want, entries[0].Level)
			assert.Equal(t, int64(4), entries[0].ContextMap()["bytes"])
		})
	}
}

func TestRequestID_KeepsValidIncomingID(t *testing.T) {
	id := uuid.New().String()
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "not-a-uuid", rec.Header().Get(RequestIDHeader))
}

func TestRecover(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	logger := &logging.Logger{Logger: zap.New(core)}

	h := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body shared.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL", body.Type)
	assert.Equal(t, -1, body.Code)
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"svc/internal/repo"
	shared "svc/shared/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	root string
	mux  *http.ServeMux
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	root := t.TempDir()
	r, err := repo.Init(root, repo.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() })

	mux := http.NewServeMux()
	NewHandler(r, nil).Register(mux)
	return &testServer{root: root, mux: mux}
}

func (s *testServer) write(t *testing.T, name, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(s.root, name), []byte(data), 0644))
}

func (s *testServer) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHandler_Health(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, rec)["status"])
}

func TestHandler_AddCommitShow(t *testing.T) {
	s := newTestServer(t)
	s.write(t, "a.txt", "x")

	rec := s.do(t, http.MethodPost, "/api/files", shared.FileRequest{Path: "a.txt"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, shared.FileResponse{Path: "a.txt", Hash: 615}, decode[shared.FileResponse](t, rec))

	rec = s.do(t, http.MethodPost, "/api/commits", shared.CommitRequest{Message: "first"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, shared.CommitResponse{ID: "443094", Committed: true}, decode[shared.CommitResponse](t, rec))

	rec = s.do(t, http.MethodPost, "/api/commits", shared.CommitRequest{Message: "again"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[shared.CommitResponse](t, rec).Committed)

	rec = s.do(t, http.MethodGet, "/api/commits/443094", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	c := decode[shared.Commit](t, rec)
	assert.Equal(t, "first", c.Message)
	assert.Equal(t, "master", c.Branch)
	assert.Empty(t, c.Parents)
	require.Len(t, c.Records, 1)
	assert.Equal(t, "add", c.Records[0].Change)
	assert.Equal(t, []shared.SnapshotEntry{{Name: "a.txt", Hash: 615}}, c.Snapshot)

	rec = s.do(t, http.MethodGet, "/api/commits/ffffff", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/commits", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]shared.Commit](t, rec), 1)
}

func TestHandler_StatusAndRemove(t *testing.T) {
	s := newTestServer(t)
	s.write(t, "a.txt", "x")
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/files", shared.FileRequest{Path: "a.txt"}).Code)

	rec := s.do(t, http.MethodGet, "/api/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decode[shared.StatusResponse](t, rec)
	assert.Equal(t, "master", st.Branch)
	assert.True(t, st.Uncommitted)
	assert.Equal(t, []shared.FileStatus{{Path: "a.txt", State: "staged", Status: "staged", LastHash: 615}}, st.Files)

	rec = s.do(t, http.MethodDelete, "/api/files/a.txt", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/api/files/a.txt", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, -2, decode[shared.ErrorResponse](t, rec).Code)
}

func TestHandler_ErrorMapping(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		target     string
		body       any
		wantStatus int
		wantCode   int
	}{
		{"duplicate branch", http.MethodPost, "/api/branches", shared.BranchRequest{Name: "master"}, http.StatusConflict, -2},
		{"invalid branch", http.MethodPost, "/api/branches", shared.BranchRequest{Name: "bad name!"}, http.StatusBadRequest, -1},
		{"missing name", http.MethodPost, "/api/branches", shared.BranchRequest{}, http.StatusBadRequest, -1},
		{"unknown checkout", http.MethodPost, "/api/checkout", shared.BranchRequest{Name: "nope"}, http.StatusNotFound, -1},
		{"unknown reset", http.MethodPost, "/api/reset", shared.ResetRequest{ID: "abcdef"}, http.StatusNotFound, -2},
		{"missing file", http.MethodPost, "/api/files", shared.FileRequest{Path: "missing.txt"}, http.StatusNotFound, -3},
		{"outside root", http.MethodPost, "/api/files", shared.FileRequest{Path: "../etc/passwd"}, http.StatusBadRequest, -1},
		{"meta dir", http.MethodGet, "/api/hash?path=.svc/db", nil, http.StatusBadRequest, -1},
		{"hash missing", http.MethodGet, "/api/hash?path=missing.txt", nil, http.StatusNotFound, -2},
		{"merge self", http.MethodPost, "/api/merge", shared.MergeRequest{Branch: "master"}, http.StatusConflict, -3},
		{"merge unknown", http.MethodPost, "/api/merge", shared.MergeRequest{Branch: "nope"}, http.StatusNotFound, -2},
		{"unknown log branch", http.MethodGet, "/api/commits?branch=nope", nil, http.StatusNotFound, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decode[shared.ErrorResponse](t, rec).Code)
		})
	}

	rec := s.do(t, http.MethodGet, "/api/branches", nil)
	assert.Equal(t, shared.BranchesResponse{Active: "master", Branches: []string{"master"}}, decode[shared.BranchesResponse](t, rec))
}

func TestHandler_CreateBranchRejectsInvalidName(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/branches", shared.BranchRequest{Name: "no way"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[shared.ErrorResponse](t, rec)
	assert.Equal(t, -1, body.Code)
	assert.Equal(t, "INVALID_ARGUMENT", body.Type)
	assert.Equal(t, map[string]any{"name": "no way"}, body.Details)
}

func TestHandler_BranchMergeFlow(t *testing.T) {
	s := newTestServer(t)
	s.write(t, "a.txt", "x")
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/files", shared.FileRequest{Path: "a.txt"}).Code)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/commits", shared.CommitRequest{Message: "first"}).Code)

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/branches", shared.BranchRequest{Name: "dev"}).Code)
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/checkout", shared.BranchRequest{Name: "dev"}).Code)

	s.write(t, "b.txt", "x")
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/files", shared.FileRequest{Path: "b.txt"}).Code)
	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/commits", shared.CommitRequest{Message: "add b"}).Code)

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/checkout", shared.BranchRequest{Name: "master"}).Code)

	rec := s.do(t, http.MethodPost, "/api/merge", shared.MergeRequest{Branch: "dev"})
	require.Equal(t, http.StatusCreated, rec.Code)
	merged := decode[shared.CommitResponse](t, rec)
	assert.Equal(t, "b36804", merged.ID)

	rec = s.do(t, http.MethodGet, "/api/commits/"+merged.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	c := decode[shared.Commit](t, rec)
	assert.Equal(t, "Merged branch dev", c.Message)
	assert.Len(t, c.Parents, 2)

	rec = s.do(t, http.MethodPost, "/api/reset", shared.ResetRequest{ID: "443094"})
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/status", nil)
	assert.Equal(t, "443094", decode[shared.StatusResponse](t, rec).Head)
}

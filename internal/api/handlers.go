// internal/api/handlers.go
package api

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"svc/internal/commit"
	"svc/internal/engine"
	"svc/internal/errors"
	"svc/internal/logging"
	"svc/internal/repo"
	"svc/internal/validation"
	"svc/internal/workspace"
	shared "svc/shared/types"

	"go.uber.org/zap"
)

// Handler serves one repository over HTTP.
type Handler struct {
	repo   *repo.Repository
	logger *logging.Logger
}

func NewHandler(r *repo.Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Handler{repo: r, logger: logger}
}

// Register installs every route on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("GET /api/status", h.Status)
	mux.HandleFunc("GET /api/hash", h.Hash)
	mux.HandleFunc("POST /api/files", h.Add)
	mux.HandleFunc("DELETE /api/files/{path...}", h.Remove)

	mux.HandleFunc("POST /api/commits", h.Commit)
	mux.HandleFunc("GET /api/commits", h.Log)
	mux.HandleFunc("GET /api/commits/{id}", h.GetCommit)

	mux.HandleFunc("GET /api/branches", h.ListBranches)
	mux.HandleFunc("POST /api/branches", h.CreateBranch)
	mux.HandleFunc("POST /api/checkout", h.Checkout)
	mux.HandleFunc("POST /api/reset", h.Reset)
	mux.HandleFunc("POST /api/merge", h.Merge)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	body := shared.ErrorResponse{Type: "INTERNAL", Message: err.Error(), Code: errors.CodeOf(err)}

	var e *errors.Error
	switch {
	case stderrors.As(err, &e):
		body.Type = string(e.Type)
		body.Message = e.Message
		body.Details = e.Details
	case stderrors.Is(err, workspace.ErrOutsideRoot):
		status = http.StatusBadRequest
		body.Type = string(errors.ErrorTypeInvalidArgument)
	}

	if status >= http.StatusInternalServerError {
		h.logger.For(r.Context()).Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, body)
}

func (h *Handler) cleanPath(path string) (string, error) {
	clean, err := h.repo.Workspace.Clean(path)
	if err != nil {
		return "", errors.ValidationError(err.Error(), map[string]string{"path": path})
	}
	return clean, nil
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// StatusView renders the active branch and its roster for the wire.
func StatusView(e *engine.Engine) (shared.StatusResponse, error) {
	files, err := e.Status()
	if err != nil {
		return shared.StatusResponse{}, err
	}

	resp := shared.StatusResponse{
		Branch:      e.ActiveBranch(),
		Uncommitted: e.HasUncommittedChanges(),
		Files:       make([]shared.FileStatus, 0, len(files)),
	}
	if head := e.Head(); head != nil {
		resp.Head = head.ID()
	}
	for _, f := range files {
		resp.Files = append(resp.Files, shared.FileStatus{
			Path:     f.Path,
			State:    f.State.String(),
			Status:   string(f.Status),
			LastHash: int64(f.LastHash),
		})
	}
	return resp, nil
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	var resp shared.StatusResponse
	err := h.repo.View(func(e *engine.Engine) error {
		var err error
		resp, err = StatusView(e)
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Hash(w http.ResponseWriter, r *http.Request) {
	path, err := h.cleanPath(r.URL.Query().Get("path"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var resp shared.FileResponse
	err = h.repo.View(func(e *engine.Engine) error {
		hash, err := e.HashFile(path)
		resp = shared.FileResponse{Path: path, Hash: int64(hash)}
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	var req shared.FileRequest
	if err := validation.DecodeRequest(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	path, err := h.cleanPath(req.Path)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var resp shared.FileResponse
	err = h.repo.Update(func(e *engine.Engine) error {
		hash, err := e.Add(path)
		resp = shared.FileResponse{Path: path, Hash: int64(hash)}
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	path, err := h.cleanPath(r.PathValue("path"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var resp shared.FileResponse
	err = h.repo.Update(func(e *engine.Engine) error {
		hash, err := e.Remove(path)
		resp = shared.FileResponse{Path: path, Hash: int64(hash)}
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	var req shared.CommitRequest
	if err := validation.DecodeRequest(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	var id string
	err := h.repo.Update(func(e *engine.Engine) error {
		var err error
		id, err = e.Commit(req.Message)
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if id == "" {
		writeJSON(w, http.StatusOK, shared.CommitResponse{})
		return
	}
	writeJSON(w, http.StatusCreated, shared.CommitResponse{ID: id, Committed: true})
}

// CommitView renders a commit for the wire.
func CommitView(e *engine.Engine, c *commit.Commit) shared.Commit {
	view := shared.Commit{
		ID:      c.ID(),
		Message: c.Message(),
		Branch:  e.BranchName(c.BranchID()),
		Parents: e.ParentIDs(c),
	}

	records := c.Records()
	view.Records = make([]shared.Record, 0, len(records))
	for _, rec := range records {
		out := shared.Record{FileName: rec.FileName, Change: rec.Change.String()}
		if rec.OldHash != nil {
			v := int64(*rec.OldHash)
			out.OldHash = &v
		}
		if rec.NewHash != nil {
			v := int64(*rec.NewHash)
			out.NewHash = &v
		}
		view.Records = append(view.Records, out)
	}

	entries := c.Snapshot().Entries()
	view.Snapshot = make([]shared.SnapshotEntry, 0, len(entries))
	for _, entry := range entries {
		view.Snapshot = append(view.Snapshot, shared.SnapshotEntry{Name: entry.Name, Hash: int64(entry.Hash)})
	}
	return view
}

func (h *Handler) Log(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("branch")

	var views []shared.Commit
	err := h.repo.View(func(e *engine.Engine) error {
		commits, err := e.Log(name)
		if err != nil {
			return err
		}
		views = make([]shared.Commit, 0, len(commits))
		for _, c := range commits {
			views = append(views, CommitView(e, c))
		}
		return nil
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) GetCommit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var view shared.Commit
	err := h.repo.View(func(e *engine.Engine) error {
		c := e.GetCommit(id)
		if c == nil {
			return errors.NotFound(-2, "commit not found: "+id)
		}
		view = CommitView(e, c)
		return nil
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) ListBranches(w http.ResponseWriter, r *http.Request) {
	var resp shared.BranchesResponse
	h.repo.View(func(e *engine.Engine) error {
		resp = shared.BranchesResponse{Active: e.ActiveBranch(), Branches: e.ListBranches()}
		return nil
	})
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) CreateBranch(w http.ResponseWriter, r *http.Request) {
	var req shared.BranchRequest
	if err := validation.DecodeRequest(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := validation.ValidateBranchName(req.Name); err != nil {
		h.writeError(w, r, err)
		return
	}

	err := h.repo.Update(func(e *engine.Engine) error {
		return e.Branch(req.Name)
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req shared.BranchRequest
	if err := validation.DecodeRequest(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	err := h.repo.Update(func(e *engine.Engine) error {
		return e.Checkout(req.Name)
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	var req shared.ResetRequest
	if err := validation.DecodeRequest(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	err := h.repo.Update(func(e *engine.Engine) error {
		return e.Reset(req.ID)
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *Handler) Merge(w http.ResponseWriter, r *http.Request) {
	var req shared.MergeRequest
	if err := validation.DecodeRequest(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	resolutions := make([]engine.Resolution, 0, len(req.Resolutions))
	for _, res := range req.Resolutions {
		name, err := h.cleanPath(res.FileName)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		resolved := ""
		if res.ResolvedFile != "" {
			if resolved, err = h.cleanPath(res.ResolvedFile); err != nil {
				h.writeError(w, r, err)
				return
			}
		}
		resolutions = append(resolutions, engine.Resolution{FileName: name, ResolvedFile: resolved})
	}

	var id string
	err := h.repo.Update(func(e *engine.Engine) error {
		var err error
		id, err = e.Merge(req.Branch, resolutions)
		return err
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if id == "" {
		writeJSON(w, http.StatusOK, shared.CommitResponse{})
		return
	}
	writeJSON(w, http.StatusCreated, shared.CommitResponse{ID: id, Committed: true})
}

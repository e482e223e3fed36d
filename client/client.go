// client/client.go
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"svc/internal/errors"
	shared "svc/shared/types"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: time.Second * 10,
		},
	}
}

// do sends body as JSON and decodes a response of status want into out.
// Error bodies are returned as *errors.Error so callers can use
// errors.CodeOf.
func (c *Client) do(ctx context.Context, method, path string, body, out any, want ...int) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	for _, status := range want {
		if resp.StatusCode == status {
			if out == nil {
				return nil
			}
			return json.NewDecoder(resp.Body).Decode(out)
		}
	}

	var apiErr shared.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Message == "" {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
	return &errors.Error{
		Type:    errors.ErrorType(apiErr.Type),
		Message: apiErr.Message,
		Code:    apiErr.Code,
		Details: apiErr.Details,
	}
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, http.StatusOK)
}

func (c *Client) Status(ctx context.Context) (*shared.StatusResponse, error) {
	var resp shared.StatusResponse
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Hash(ctx context.Context, path string) (int64, error) {
	var resp shared.FileResponse
	err := c.do(ctx, http.MethodGet, "/api/hash?path="+url.QueryEscape(path), nil, &resp, http.StatusOK)
	return resp.Hash, err
}

func (c *Client) Add(ctx context.Context, path string) (int64, error) {
	var resp shared.FileResponse
	err := c.do(ctx, http.MethodPost, "/api/files", shared.FileRequest{Path: path}, &resp, http.StatusCreated)
	return resp.Hash, err
}

func (c *Client) Remove(ctx context.Context, path string) (int64, error) {
	var resp shared.FileResponse
	err := c.do(ctx, http.MethodDelete, "/api/files/"+escapePath(path), nil, &resp, http.StatusOK)
	return resp.Hash, err
}

// Commit returns the new commit id, or "" when there was nothing to commit.
func (c *Client) Commit(ctx context.Context, message string) (string, error) {
	var resp shared.CommitResponse
	err := c.do(ctx, http.MethodPost, "/api/commits", shared.CommitRequest{Message: message}, &resp,
		http.StatusCreated, http.StatusOK)
	return resp.ID, err
}

func (c *Client) GetCommit(ctx context.Context, id string) (*shared.Commit, error) {
	var resp shared.Commit
	if err := c.do(ctx, http.MethodGet, "/api/commits/"+url.PathEscape(id), nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Log returns the first-parent history of branch, the active one when empty.
func (c *Client) Log(ctx context.Context, branch string) ([]shared.Commit, error) {
	path := "/api/commits"
	if branch != "" {
		path += "?branch=" + url.QueryEscape(branch)
	}
	var resp []shared.Commit
	if err := c.do(ctx, http.MethodGet, path, nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ListBranches(ctx context.Context) (*shared.BranchesResponse, error) {
	var resp shared.BranchesResponse
	if err := c.do(ctx, http.MethodGet, "/api/branches", nil, &resp, http.StatusOK); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) CreateBranch(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, "/api/branches", shared.BranchRequest{Name: name}, nil, http.StatusCreated)
}

func (c *Client) Checkout(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodPost, "/api/checkout", shared.BranchRequest{Name: name}, nil, http.StatusOK)
}

func (c *Client) Reset(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/reset", shared.ResetRequest{ID: id}, nil, http.StatusOK)
}

// Merge returns the merge commit id, or "" when there was nothing to commit.
func (c *Client) Merge(ctx context.Context, branch string, resolutions []shared.Resolution) (string, error) {
	var resp shared.CommitResponse
	req := shared.MergeRequest{Branch: branch, Resolutions: resolutions}
	err := c.do(ctx, http.MethodPost, "/api/merge", req, &resp, http.StatusCreated, http.StatusOK)
	return resp.ID, err
}

func escapePath(path string) string {
	u := url.URL{Path: path}
	return u.EscapedPath()
}
